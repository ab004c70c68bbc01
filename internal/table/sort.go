package table

import (
	"sort"

	"launchdeck/internal/reconcile"
)

// SortOrder is the direction of a column sort.
type SortOrder int

const (
	SortNone SortOrder = iota
	SortAscend
	SortDescend
)

func (o SortOrder) String() string {
	switch o {
	case SortAscend:
		return "ascend"
	case SortDescend:
		return "descend"
	default:
		return "none"
	}
}

// SortState is the current order of each sortable column.
type SortState struct {
	Favorite SortOrder
	Date     SortOrder
}

// DefaultSortState is favorites first, newest first.
func DefaultSortState() SortState {
	fav, _ := ColumnByKey(ColumnFavorite)
	date, _ := ColumnByKey(ColumnDate)
	return SortState{Favorite: fav.DefaultOrder, Date: date.DefaultOrder}
}

// CycleDate advances the date column through descend, ascend, descend.
func (s SortState) CycleDate() SortState {
	date, _ := ColumnByKey(ColumnDate)
	s.Date = date.NextOrder(s.Date)
	return s
}

// CycleFavorite advances the favorite column. Its cycle only holds
// descend, so the order never changes once set.
func (s SortState) CycleFavorite() SortState {
	fav, _ := ColumnByKey(ColumnFavorite)
	s.Favorite = fav.NextOrder(s.Favorite)
	return s
}

type comparator struct {
	priority int
	order    SortOrder
	cmp      func(a, b reconcile.ViewRow) int
}

// Sort returns a sorted copy of rows. Columns compare in descending
// priority; ties fall through to the next column and finally keep their
// input order.
func Sort(rows []reconcile.ViewRow, state SortState) []reconcile.ViewRow {
	out := append([]reconcile.ViewRow(nil), rows...)

	comparators := []comparator{
		{priority: 3, order: state.Favorite, cmp: compareFavorite},
		{priority: 2, order: state.Date, cmp: compareDate},
	}
	sort.SliceStable(comparators, func(i, j int) bool {
		return comparators[i].priority > comparators[j].priority
	})

	sort.SliceStable(out, func(i, j int) bool {
		for _, c := range comparators {
			if c.order == SortNone {
				continue
			}
			r := c.cmp(out[i], out[j])
			if c.order == SortDescend {
				r = -r
			}
			if r != 0 {
				return r < 0
			}
		}
		return false
	})
	return out
}

func compareFavorite(a, b reconcile.ViewRow) int {
	return boolInt(a.Favorite) - boolInt(b.Favorite)
}

// compareDate orders rows chronologically; rows without a date sort as
// the oldest.
func compareDate(a, b reconcile.ViewRow) int {
	return a.LaunchDate.Compare(b.LaunchDate)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
