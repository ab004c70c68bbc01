// Package table holds the presentation rules of the launch table: column
// definitions, sorting, filtering, pagination and cell formatting. It is
// independent of any terminal toolkit; the ui package renders its output.
package table

// ColumnKey identifies a column.
type ColumnKey string

const (
	ColumnFavorite ColumnKey = "favorite"
	ColumnName     ColumnKey = "name"
	ColumnRocket   ColumnKey = "rocket"
	ColumnDate     ColumnKey = "launch_date"
	ColumnStatus   ColumnKey = "launch_success"
)

// Column describes how one column is laid out, sorted and filtered.
type Column struct {
	Key   ColumnKey
	Title string
	// Width is in terminal cells. Zero sizes the column to its content.
	Width int
	// SortPriority orders multi-column sorting; higher compares first.
	// Zero means the column is not sortable.
	SortPriority int
	// SortDirections is the cycle a sort toggle walks through.
	SortDirections []SortOrder
	DefaultOrder   SortOrder
	Filterable     bool
}

// Sortable reports whether the column takes part in sorting.
func (c Column) Sortable() bool {
	return c.SortPriority > 0
}

// NextOrder returns the order that follows cur in the column's cycle.
// An unsorted column starts at the first direction.
func (c Column) NextOrder(cur SortOrder) SortOrder {
	if len(c.SortDirections) == 0 {
		return SortNone
	}
	for i, d := range c.SortDirections {
		if d == cur && i+1 < len(c.SortDirections) {
			return c.SortDirections[i+1]
		}
		if d == cur {
			break
		}
	}
	return c.SortDirections[0]
}

// Columns returns the launch table columns in display order.
func Columns() []Column {
	return []Column{
		{
			Key:            ColumnFavorite,
			Title:          "",
			Width:          3,
			SortPriority:   3,
			SortDirections: []SortOrder{SortDescend, SortDescend},
			DefaultOrder:   SortDescend,
		},
		{Key: ColumnName, Title: "Name", Width: 30},
		{Key: ColumnRocket, Title: "Rocket", Filterable: true},
		{
			Key:            ColumnDate,
			Title:          "Launch Date",
			Width:          14,
			SortPriority:   2,
			SortDirections: []SortOrder{SortDescend, SortAscend, SortDescend},
			DefaultOrder:   SortDescend,
		},
		{Key: ColumnStatus, Title: "Status", Filterable: true},
	}
}

// ColumnByKey looks up a column definition.
func ColumnByKey(key ColumnKey) (Column, bool) {
	for _, c := range Columns() {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}
