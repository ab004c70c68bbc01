// Package reconcile merges fetched launch records with the favorites map and
// the accumulated filter options, producing the rows the table displays.
//
// Reconcile is pure: inputs are never mutated and the same inputs always
// give the same output. Rows are rebuilt from scratch on every call.
package reconcile

import (
	"time"

	"launchdeck/internal/favorites"
	"launchdeck/internal/launches"
)

// Status is the launch outcome as reported by the server.
type Status int

const (
	StatusUnknown Status = iota
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RocketLabel keeps the rocket fields optional; they become "" only when
// rendered.
type RocketLabel struct {
	Name *string
	Type *string
}

// DisplayName is the rocket name or "".
func (r RocketLabel) DisplayName() string {
	if r.Name == nil {
		return ""
	}
	return *r.Name
}

// DisplayType is the rocket type or "".
func (r RocketLabel) DisplayType() string {
	if r.Type == nil {
		return ""
	}
	return *r.Type
}

// ViewRow is one table row.
type ViewRow struct {
	// Key is the launch id; "" when the record had none.
	Key    string
	Name   string
	Rocket RocketLabel
	// LaunchDate is zero when the date was absent or unparseable.
	LaunchDate time.Time
	// LaunchSuccess defaults to false when the server sent no value.
	LaunchSuccess bool
	Status        Status
	Favorite      bool
}

// HasKey reports whether the row takes part in favorites bookkeeping.
func (r ViewRow) HasKey() bool {
	return r.Key != ""
}

// Result is the output of one reconciliation.
type Result struct {
	Rows      []ViewRow
	Favorites favorites.Map
	Filters   FilterSets
	// Added lists ids that got a default entry in this pass, in record order.
	Added []string

	filtersGrew bool
}

// Changed reports whether this pass grew the favorites map or either
// filter set. A second pass over the same records never reports a change.
func (r Result) Changed() bool {
	return r.FavoritesChanged() || r.filtersGrew
}

// FavoritesChanged reports whether the favorites map needs persisting.
func (r Result) FavoritesChanged() bool {
	return len(r.Added) > 0
}

// Reconcile merges records into favs and filters and rebuilds the rows.
//
// Ids seen for the first time get a false entry; existing entries are never
// overwritten. Records without an id stay visible but are left out of the
// favorites map.
func Reconcile(records []launches.LaunchRecord, favs favorites.Map, filters FilterSets) Result {
	merged := favs.Clone()
	var added []string
	for _, rec := range records {
		id := rec.Identifier()
		if id == "" {
			continue
		}
		if _, ok := merged[id]; ok {
			continue
		}
		merged[id] = false
		added = append(added, id)
	}

	names := make([]string, 0, len(records))
	types := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.RocketName())
		types = append(types, rec.RocketType())
	}
	nextFilters := FilterSets{
		RocketNames: filters.RocketNames.With(names...),
		RocketTypes: filters.RocketTypes.With(types...),
	}

	grew := nextFilters.RocketNames.Len() != filters.RocketNames.Len() ||
		nextFilters.RocketTypes.Len() != filters.RocketTypes.Len()

	return Result{
		Rows:        Rows(records, merged),
		Favorites:   merged,
		Filters:     nextFilters,
		Added:       added,
		filtersGrew: grew,
	}
}

// Rows projects records into view rows using favs for the favorite flag.
// Used alone when only the favorites map changed.
func Rows(records []launches.LaunchRecord, favs favorites.Map) []ViewRow {
	rows := make([]ViewRow, len(records))
	for i, rec := range records {
		row := ViewRow{
			Key:        rec.Identifier(),
			Name:       rec.Mission(),
			LaunchDate: ParseLaunchDate(rec.LaunchDateUTC),
		}
		if rec.Rocket != nil {
			row.Rocket = RocketLabel{Name: rec.Rocket.RocketName, Type: rec.Rocket.RocketType}
		}
		if rec.LaunchSuccess != nil {
			row.LaunchSuccess = *rec.LaunchSuccess
			if *rec.LaunchSuccess {
				row.Status = StatusSucceeded
			} else {
				row.Status = StatusFailed
			}
		}
		if row.Key != "" {
			row.Favorite = favs[row.Key]
		}
		rows[i] = row
	}
	return rows
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseLaunchDate parses an ISO-like launch timestamp. Absent or
// unparseable input yields the zero time.
func ParseLaunchDate(s *string) time.Time {
	if s == nil || *s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return t
		}
	}
	return time.Time{}
}
