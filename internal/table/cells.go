package table

import (
	"time"

	"launchdeck/internal/reconcile"
)

// Tag is a colored label cell.
type Tag struct {
	Text  string
	Color string
}

// Cells is the rendered text of one row, before styling.
type Cells struct {
	Favorite string
	Name     string
	Rocket   [2]Tag
	Date     string
	Status   Tag
}

const (
	StarFilled  = "★"
	StarOutline = "☆"
)

// FormatRow renders row's cells. Absent rocket fields become "" here and
// nowhere earlier.
func FormatRow(row reconcile.ViewRow, loc *time.Location) Cells {
	rocketType := row.Rocket.DisplayType()
	rocketName := row.Rocket.DisplayName()
	return Cells{
		Favorite: FavoriteMark(row.Favorite),
		Name:     row.Name,
		Rocket: [2]Tag{
			{Text: rocketType, Color: ColorFor(rocketType)},
			{Text: rocketName, Color: ColorFor(rocketName)},
		},
		Date:   ShortFormat(row.LaunchDate, loc),
		Status: StatusTag(row.LaunchSuccess),
	}
}

// FavoriteMark is the star drawn in the favorite column.
func FavoriteMark(fav bool) string {
	if fav {
		return StarFilled
	}
	return StarOutline
}

// StatusTag renders the defaulted success flag; an unreported outcome
// shows as failed.
func StatusTag(success bool) Tag {
	if success {
		return Tag{Text: "succeed", Color: "green"}
	}
	return Tag{Text: "failed", Color: "red"}
}
