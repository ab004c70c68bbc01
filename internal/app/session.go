package app

import (
	"context"
	"errors"
	"fmt"

	"launchdeck/internal/favorites"
	"launchdeck/internal/launches"
	"launchdeck/internal/reconcile"
	"launchdeck/internal/table"

	"go.uber.org/zap"
)

// ErrNoKey is returned when toggling a row whose launch has no identifier.
var ErrNoKey = errors.New("launch has no identifier")

const (
	placeholderLoading     = "Loading..."
	placeholderMissingData = "Error : Data not found"
)

// Session is the view state of one launch table. It is owned by a single
// event loop and is not safe for concurrent use; fetches may run
// elsewhere but their results must be handed back through CompleteFetch
// on the owning goroutine.
type Session struct {
	favs   *favorites.Store
	logger *zap.Logger

	mode      launches.Kind
	baseLimit int
	window    launches.Request

	pageIndex int
	pageSize  int

	seq   uint64
	state launches.State
	err   error

	records   []launches.LaunchRecord
	favorites favorites.Map
	filters   reconcile.FilterSets
	rows      []reconcile.ViewRow

	sort   table.SortState
	filter table.Filters
}

func newSession(favs *favorites.Store, logger *zap.Logger, mode launches.Kind, limit, pageSize int) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = 30
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Session{
		favs:      favs,
		logger:    logger,
		mode:      mode,
		baseLimit: limit,
		window:    launches.Request{Kind: mode, Limit: limit},
		pageIndex: 1,
		pageSize:  pageSize,
		state:     launches.StateLoading,
		favorites: favorites.Map{},
		sort:      table.DefaultSortState(),
	}
}

// Mode is the active query kind.
func (s *Session) Mode() launches.Kind { return s.mode }

// Window is the fetch window the next BeginFetch will request.
func (s *Session) Window() launches.Request { return s.window }

// State is the state of the latest fetch.
func (s *Session) State() launches.State { return s.state }

// Err is the latest fetch error, if the session is in the error state.
func (s *Session) Err() error { return s.err }

// Rows returns every reconciled row of the current window, unfiltered and
// in server order.
func (s *Session) Rows() []reconcile.ViewRow {
	return append([]reconcile.ViewRow(nil), s.rows...)
}

// Favorites returns a copy of the session's favorites map.
func (s *Session) Favorites() favorites.Map { return s.favorites.Clone() }

// FilterSets returns the rocket filter options accumulated so far.
func (s *Session) FilterSets() reconcile.FilterSets { return s.filters }

// Filters returns the active filter selection.
func (s *Session) Filters() table.Filters { return s.filter }

// SortState returns the active sort.
func (s *Session) SortState() table.SortState { return s.sort }

// PageSize is the rows per page.
func (s *Session) PageSize() int { return s.pageSize }

// BeginFetch starts a fetch of the current window and returns its sequence
// number. Only the result carrying the latest sequence number is applied.
func (s *Session) BeginFetch() (uint64, launches.Request) {
	s.seq++
	s.state = launches.StateLoading
	s.err = nil
	s.logger.Debug("fetch started",
		zap.Uint64("seq", s.seq),
		zap.String("kind", s.window.Kind.String()),
		zap.Int("offset", s.window.Offset),
		zap.Int("limit", s.window.Limit))
	return s.seq, s.window
}

// CompleteFetch applies the result of fetch seq. Results of superseded
// fetches are discarded and reported as not applied. A failed fetch clears
// the rows. The returned error comes from persisting the favorites map.
func (s *Session) CompleteFetch(ctx context.Context, seq uint64, res launches.Result) (bool, error) {
	if seq != s.seq {
		s.logger.Debug("discarding stale fetch result", zap.Uint64("seq", seq), zap.Uint64("latest", s.seq))
		return false, nil
	}

	if res.State == launches.StateError {
		s.state = launches.StateError
		s.err = res.Err
		s.records = nil
		s.rows = nil
		s.logger.Info("fetch failed", zap.Uint64("seq", seq), zap.Error(res.Err))
		return true, nil
	}

	s.state = launches.StateReady
	s.err = nil
	s.records = res.Records
	s.pageIndex = 1
	return true, s.reconcile(ctx)
}

// Refresh fetches the current window through f and applies the result.
func (s *Session) Refresh(ctx context.Context, f Fetcher) error {
	seq, req := s.BeginFetch()
	res := f.Fetch(ctx, req)
	if _, err := s.CompleteFetch(ctx, seq, res); err != nil {
		return err
	}
	return s.err
}

// reconcile rebuilds the rows and persists the favorites map when it grew.
func (s *Session) reconcile(ctx context.Context) error {
	res := reconcile.Reconcile(s.records, s.favorites, s.filters)
	s.rows = res.Rows
	s.favorites = res.Favorites
	s.filters = res.Filters

	s.logger.Debug("reconciled",
		zap.Int("rows", len(res.Rows)),
		zap.Int("new_ids", len(res.Added)),
		zap.Int("rocket_names", res.Filters.RocketNames.Len()),
		zap.Int("rocket_types", res.Filters.RocketTypes.Len()))

	if !res.FavoritesChanged() || s.favs == nil {
		return nil
	}
	if err := s.favs.Set(ctx, s.favorites); err != nil {
		return fmt.Errorf("failed to persist favorites: %w", err)
	}
	return nil
}

// ToggleFavorite flips the favorite flag of key and persists it. Rows
// without an identifier return ErrNoKey and change nothing.
func (s *Session) ToggleFavorite(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrNoKey
	}

	var v bool
	if s.favs != nil {
		var err error
		if v, err = s.favs.Toggle(ctx, key); err != nil {
			return false, err
		}
		m, err := s.favs.Get(ctx)
		if err != nil {
			return false, err
		}
		s.favorites = m
	} else {
		m := s.favorites.Clone()
		m[key] = !m[key]
		v = m[key]
		s.favorites = m
	}

	if err := s.reconcile(ctx); err != nil {
		return v, err
	}
	return v, nil
}

// ReloadFavorites re-reads the favorites map, e.g. after another process
// rewrote it, and rebuilds the rows.
func (s *Session) ReloadFavorites(ctx context.Context) error {
	if s.favs == nil {
		return nil
	}
	m, err := s.favs.Get(ctx)
	if err != nil {
		return err
	}
	s.favorites = m
	return s.reconcile(ctx)
}

// SetMode switches between past and upcoming launches. It reports whether
// a fetch is needed.
func (s *Session) SetMode(kind launches.Kind) bool {
	if kind == s.mode {
		return false
	}
	s.mode = kind
	s.window = launches.Request{Kind: kind, Limit: windowLimit(s.baseLimit, s.pageSize)}
	s.pageIndex = 1
	return true
}

// ToggleMode flips the mode and always needs a fetch.
func (s *Session) ToggleMode() {
	if s.mode == launches.Past {
		s.SetMode(launches.Upcoming)
		return
	}
	s.SetMode(launches.Past)
}

// SetPage moves to page index (1-based, local to the fetched window) with
// the given size. It reports whether the window changed and a fetch is
// needed:
//   - a different size refetches a window sized to a multiple of it
//   - paging past the last page moves to the next window
//   - paging before the first page moves to the previous window
//
// Upcoming launches have no offset, so paging clamps to the window.
func (s *Session) SetPage(index, size int) bool {
	if size <= 0 {
		size = s.pageSize
	}

	if size != s.pageSize {
		s.pageSize = size
		s.pageIndex = 1
		s.window.Limit = windowLimit(s.baseLimit, size)
		s.window.Offset = 0
		return true
	}

	_, page := s.VisibleRows()
	switch {
	case index > page.Pages && s.canPage() && s.state == launches.StateReady && len(s.records) >= s.window.Limit:
		s.window.Offset += s.window.Limit
		s.pageIndex = 1
		return true
	case index < 1 && s.canPage() && s.window.Offset > 0:
		s.window.Offset -= s.window.Limit
		if s.window.Offset < 0 {
			s.window.Offset = 0
		}
		// CompleteFetch resets to the first page of the new window.
		s.pageIndex = 1
		return true
	}

	if index < 1 {
		index = 1
	}
	if index > page.Pages {
		index = page.Pages
	}
	s.pageIndex = index
	return false
}

// NextWindow advances to the window after the current one. It reports
// false in upcoming mode, which has no offset.
func (s *Session) NextWindow() bool {
	if !s.canPage() {
		return false
	}
	s.window.Offset += s.window.Limit
	s.pageIndex = 1
	return true
}

// PrevWindow moves back one window. It reports false at offset zero.
func (s *Session) PrevWindow() bool {
	if !s.canPage() || s.window.Offset == 0 {
		return false
	}
	s.window.Offset -= s.window.Limit
	if s.window.Offset < 0 {
		s.window.Offset = 0
	}
	s.pageIndex = 1
	return true
}

// SetOffset moves the window to start at offset. It reports false in
// upcoming mode, where the offset is never sent.
func (s *Session) SetOffset(offset int) bool {
	if !s.canPage() || offset < 0 {
		return false
	}
	s.window.Offset = offset
	s.pageIndex = 1
	return true
}

func (s *Session) canPage() bool {
	return s.mode == launches.Past
}

// windowLimit is the smallest multiple of size that is at least base.
func windowLimit(base, size int) int {
	if size >= base {
		return size
	}
	n := (base + size - 1) / size
	return n * size
}

// SetRocketFilter replaces the rocket filter selection. Group names select
// every option of their group.
func (s *Session) SetRocketFilter(values ...string) {
	s.filter.Rocket = append([]string(nil), values...)
	s.pageIndex = 1
}

// SetStatusFilter replaces the status filter selection.
func (s *Session) SetStatusFilter(values ...table.StatusValue) {
	s.filter.Status = append([]table.StatusValue(nil), values...)
	s.pageIndex = 1
}

// ClearFilters drops every filter selection.
func (s *Session) ClearFilters() {
	s.filter = table.Filters{}
	s.pageIndex = 1
}

// CycleDateSort advances the launch date sort.
func (s *Session) CycleDateSort() table.SortOrder {
	s.sort = s.sort.CycleDate()
	return s.sort.Date
}

// VisibleRows returns the filtered, sorted rows of the current page.
func (s *Session) VisibleRows() ([]reconcile.ViewRow, table.Page) {
	return table.View(s.rows, s.filter, s.filters, s.sort, s.pageIndex, s.pageSize)
}

// Placeholder is the text shown instead of the table, or "" when the
// table should be shown.
func (s *Session) Placeholder() string {
	switch s.state {
	case launches.StateLoading:
		return placeholderLoading
	case launches.StateError:
		if errors.Is(s.err, launches.ErrMissingData) {
			return placeholderMissingData
		}
		if s.err == nil {
			return "Error : unknown error"
		}
		return "Error : " + s.err.Error()
	default:
		return ""
	}
}
