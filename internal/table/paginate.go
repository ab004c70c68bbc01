package table

import "launchdeck/internal/reconcile"

// Page describes one page of a paginated row set.
type Page struct {
	// Index is 1-based and already clamped to [1, Pages].
	Index int
	Size  int
	Total int
	Pages int
}

// PageCount is the number of pages needed for total rows. An empty set
// still has one (empty) page.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Paginate returns the rows of page index (1-based). Out-of-range indexes
// clamp to the first or last page; a non-positive size shows everything.
func Paginate(rows []reconcile.ViewRow, index, size int) ([]reconcile.ViewRow, Page) {
	total := len(rows)
	if size <= 0 {
		size = total
	}
	pages := PageCount(total, size)
	if index < 1 {
		index = 1
	}
	if index > pages {
		index = pages
	}
	p := Page{Index: index, Size: size, Total: total, Pages: pages}
	if total == 0 {
		return nil, p
	}

	start := (index - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	return rows[start:end], p
}

// View runs the table pipeline: filter, then sort, then paginate.
func View(rows []reconcile.ViewRow, f Filters, sets reconcile.FilterSets, s SortState, index, size int) ([]reconcile.ViewRow, Page) {
	return Paginate(Sort(Apply(rows, f, sets), s), index, size)
}
