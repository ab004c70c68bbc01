package app

import (
	"context"
	"fmt"
	"testing"

	"launchdeck/internal/favorites"
	"launchdeck/internal/launches"
	"launchdeck/internal/reconcile"
	"launchdeck/internal/store"
	"launchdeck/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func str(s string) *string { return &s }
func boolp(b bool) *bool   { return &b }

// fakeFetcher serves canned results and records every request.
type fakeFetcher struct {
	fn    func(req launches.Request) launches.Result
	calls []launches.Request
}

func (f *fakeFetcher) Fetch(_ context.Context, req launches.Request) launches.Result {
	f.calls = append(f.calls, req)
	return f.fn(req)
}

func ready(records ...launches.LaunchRecord) launches.Result {
	return launches.Result{State: launches.StateReady, Records: records}
}

// window returns n records numbered from offset, alternating outcomes.
func window(offset, n int) []launches.LaunchRecord {
	out := make([]launches.LaunchRecord, n)
	for i := range out {
		id := fmt.Sprintf("L%03d", offset+i)
		out[i] = launches.LaunchRecord{
			ID:            str(id),
			MissionName:   str("mission " + id),
			Rocket:        &launches.Rocket{RocketName: str("Falcon 9"), RocketType: str("FT")},
			LaunchDateUTC: str(fmt.Sprintf("2020-01-%02dT00:00:00.000Z", (offset+i)%28+1)),
			LaunchSuccess: boolp(i%2 == 0),
		}
	}
	return out
}

func pagedFetcher(total int) *fakeFetcher {
	return &fakeFetcher{fn: func(req launches.Request) launches.Result {
		n := req.Limit
		if req.Offset+n > total {
			n = total - req.Offset
		}
		if n < 0 {
			n = 0
		}
		return ready(window(req.Offset, n)...)
	}}
}

func newTestSession(t *testing.T) (*Session, *favorites.Store) {
	t.Helper()
	favs := favorites.NewStore(store.NewMemoryStore(), zap.NewNop())
	s := newSession(favs, zap.NewNop(), launches.Past, 30, 10)
	require.NoError(t, s.ReloadFavorites(context.Background()))
	return s, favs
}

func rowKeys(rows []reconcile.ViewRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Key
	}
	return out
}

func TestSession_InitialState(t *testing.T) {
	s, _ := newTestSession(t)

	assert.Equal(t, launches.StateLoading, s.State())
	assert.Equal(t, "Loading...", s.Placeholder())
	assert.Equal(t, launches.Request{Kind: launches.Past, Offset: 0, Limit: 30}, s.Window())
	rows, page := s.VisibleRows()
	assert.Empty(t, rows)
	assert.Equal(t, 1, page.Pages)
}

func TestSession_RefreshReconcilesAndPersists(t *testing.T) {
	ctx := context.Background()
	s, favs := newTestSession(t)
	require.NoError(t, favs.Set(ctx, favorites.Map{"L001": true}))
	require.NoError(t, s.ReloadFavorites(ctx))

	f := pagedFetcher(100)
	require.NoError(t, s.Refresh(ctx, f))

	assert.Equal(t, launches.StateReady, s.State())
	assert.Equal(t, "", s.Placeholder())
	assert.Len(t, s.Rows(), 30)

	stored, err := favs.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 30)
	assert.True(t, stored["L001"], "existing favorite kept")
	assert.False(t, stored["L000"])

	rows, page := s.VisibleRows()
	require.Len(t, rows, 10)
	assert.Equal(t, "L001", rows[0].Key, "favorites sort first")
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, []string{"Falcon 9"}, s.FilterSets().RocketNames.Values())
}

func TestSession_StaleResultDiscarded(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	first, _ := s.BeginFetch()
	second, _ := s.BeginFetch()

	applied, err := s.CompleteFetch(ctx, first, ready(window(0, 5)...))
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, launches.StateLoading, s.State())
	assert.Empty(t, s.Rows())

	applied, err = s.CompleteFetch(ctx, second, ready(window(100, 2)...))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, []string{"L100", "L101"}, rowKeys(s.Rows()))

	applied, _ = s.CompleteFetch(ctx, first, ready(window(0, 5)...))
	assert.False(t, applied, "late result after a newer one is still discarded")
	assert.Equal(t, []string{"L100", "L101"}, rowKeys(s.Rows()))
}

func TestSession_FailedFetchClearsRows(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	require.NoError(t, s.Refresh(ctx, pagedFetcher(10)))
	require.Len(t, s.Rows(), 10)

	seq, req := s.BeginFetch()
	qe := &launches.QueryError{Request: req, Message: `Cannot query field "launchesPast"`}
	applied, err := s.CompleteFetch(ctx, seq, launches.Result{State: launches.StateError, Err: qe})

	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, launches.StateError, s.State())
	assert.Empty(t, s.Rows(), "no stale rows after a failure")
	assert.Equal(t, `Error : Cannot query field "launchesPast"`, s.Placeholder())
	assert.Equal(t, 1, s.FilterSets().RocketNames.Len(), "filter options survive failures")
}

func TestSession_MissingDataPlaceholder(t *testing.T) {
	s, _ := newTestSession(t)
	f := &fakeFetcher{fn: func(launches.Request) launches.Result {
		return launches.Result{State: launches.StateError, Err: launches.ErrMissingData}
	}}

	err := s.Refresh(context.Background(), f)

	assert.ErrorIs(t, err, launches.ErrMissingData)
	assert.Equal(t, "Error : Data not found", s.Placeholder())
}

func TestSession_ToggleFavorite(t *testing.T) {
	ctx := context.Background()
	s, favs := newTestSession(t)
	require.NoError(t, s.Refresh(ctx, pagedFetcher(10)))
	before, err := favs.Get(ctx)
	require.NoError(t, err)

	v, err := s.ToggleFavorite(ctx, "L005")
	require.NoError(t, err)
	assert.True(t, v)

	after, err := favs.Get(ctx)
	require.NoError(t, err)
	for id, was := range before {
		if id == "L005" {
			assert.True(t, after[id])
			continue
		}
		assert.Equal(t, was, after[id], "entry %s must not change", id)
	}
	assert.True(t, s.Favorites()["L005"])

	rows, _ := s.VisibleRows()
	assert.Equal(t, "L005", rows[0].Key)
	assert.True(t, rows[0].Favorite)

	v, err = s.ToggleFavorite(ctx, "L005")
	require.NoError(t, err)
	assert.False(t, v)
}

func TestSession_ToggleWithoutKey(t *testing.T) {
	ctx := context.Background()
	s, favs := newTestSession(t)
	f := &fakeFetcher{fn: func(launches.Request) launches.Result {
		return ready(launches.LaunchRecord{MissionName: str("anonymous")})
	}}
	require.NoError(t, s.Refresh(ctx, f))
	require.Len(t, s.Rows(), 1)

	_, err := s.ToggleFavorite(ctx, s.Rows()[0].Key)

	assert.ErrorIs(t, err, ErrNoKey)
	stored, _ := favs.Get(ctx)
	assert.Empty(t, stored)
}

func TestSession_ToggleWithoutStore(t *testing.T) {
	s := newSession(nil, nil, launches.Past, 0, 0)
	v, err := s.ToggleFavorite(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, v)
	assert.Equal(t, favorites.Map{"x": true}, s.Favorites())
}

func TestSession_ReloadFavoritesPicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	s, favs := newTestSession(t)
	require.NoError(t, s.Refresh(ctx, pagedFetcher(10)))

	m, _ := favs.Get(ctx)
	m["L009"] = true
	require.NoError(t, favs.Set(ctx, m))
	require.NoError(t, s.ReloadFavorites(ctx))

	rows, _ := s.VisibleRows()
	assert.Equal(t, "L009", rows[0].Key)
}

func TestSession_SetMode(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	f := pagedFetcher(100)
	require.NoError(t, s.Refresh(ctx, f))
	require.True(t, s.NextWindow())

	assert.False(t, s.SetMode(launches.Past))
	assert.True(t, s.SetMode(launches.Upcoming))
	assert.Equal(t, launches.Request{Kind: launches.Upcoming, Limit: 30}, s.Window())

	require.NoError(t, s.Refresh(ctx, f))
	assert.Equal(t, launches.Upcoming, f.calls[len(f.calls)-1].Kind)

	s.ToggleMode()
	assert.Equal(t, launches.Past, s.Mode())
}

func TestSession_SetModeKeepsPageSizedWindow(t *testing.T) {
	s, _ := newTestSession(t)
	require.True(t, s.SetPage(1, 20))
	require.Equal(t, 40, s.Window().Limit)

	require.True(t, s.SetMode(launches.Upcoming))
	assert.Equal(t, launches.Request{Kind: launches.Upcoming, Limit: 40}, s.Window())

	s.ToggleMode()
	assert.Equal(t, launches.Request{Kind: launches.Past, Limit: 40}, s.Window())
}

func TestSession_PagingWithinWindow(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	require.NoError(t, s.Refresh(ctx, pagedFetcher(100)))

	assert.False(t, s.SetPage(2, 10))
	_, page := s.VisibleRows()
	assert.Equal(t, 2, page.Index)

	assert.False(t, s.SetPage(3, 0), "zero size keeps the current size")
	_, page = s.VisibleRows()
	assert.Equal(t, 3, page.Index)
}

func TestSession_PagingPastWindowFetchesNext(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	f := pagedFetcher(45)
	require.NoError(t, s.Refresh(ctx, f))

	require.True(t, s.SetPage(4, 10))
	assert.Equal(t, 30, s.Window().Offset)
	require.NoError(t, s.Refresh(ctx, f))
	assert.Len(t, s.Rows(), 15, "new window replaces the rows")

	assert.False(t, s.SetPage(3, 10), "short window is the last one")
	_, page := s.VisibleRows()
	assert.Equal(t, 2, page.Index)

	require.True(t, s.SetPage(0, 10))
	assert.Equal(t, 0, s.Window().Offset)
}

func TestSession_PageSizeChangeRefetches(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	f := pagedFetcher(100)
	require.NoError(t, s.Refresh(ctx, f))

	require.True(t, s.SetPage(1, 20))
	assert.Equal(t, launches.Request{Kind: launches.Past, Offset: 0, Limit: 40}, s.Window())
	assert.Equal(t, 20, s.PageSize())

	require.NoError(t, s.Refresh(ctx, f))
	rows, page := s.VisibleRows()
	assert.Len(t, rows, 20)
	assert.Equal(t, 2, page.Pages)
}

func TestSession_UpcomingPagingClamps(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	s.SetMode(launches.Upcoming)
	require.NoError(t, s.Refresh(ctx, pagedFetcher(100)))

	assert.False(t, s.SetPage(9, 10))
	assert.False(t, s.NextWindow())
	assert.False(t, s.PrevWindow())
	_, page := s.VisibleRows()
	assert.Equal(t, 3, page.Index)
}

func TestSession_Windows(t *testing.T) {
	s, _ := newTestSession(t)

	assert.False(t, s.PrevWindow())
	assert.True(t, s.NextWindow())
	assert.True(t, s.NextWindow())
	assert.Equal(t, 60, s.Window().Offset)
	assert.True(t, s.PrevWindow())
	assert.Equal(t, 30, s.Window().Offset)
}

func TestSession_Filters(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	f := &fakeFetcher{fn: func(launches.Request) launches.Result {
		return ready(
			launches.LaunchRecord{ID: str("ok"), Rocket: &launches.Rocket{RocketName: str("Falcon 9")}, LaunchSuccess: boolp(true)},
			launches.LaunchRecord{ID: str("bad"), Rocket: &launches.Rocket{RocketName: str("Falcon 1")}, LaunchSuccess: boolp(false)},
			launches.LaunchRecord{ID: str("unknown"), Rocket: &launches.Rocket{RocketName: str("Starship")}},
		)
	}}
	require.NoError(t, s.Refresh(ctx, f))

	s.SetStatusFilter(table.StatusFailed)
	rows, _ := s.VisibleRows()
	assert.Equal(t, []string{"bad"}, rowKeys(rows))

	s.SetStatusFilter(table.StatusSucceed)
	rows, _ = s.VisibleRows()
	assert.Equal(t, []string{"ok"}, rowKeys(rows))

	s.SetStatusFilter()
	s.SetRocketFilter("Falcon")
	rows, _ = s.VisibleRows()
	assert.ElementsMatch(t, []string{"ok", "bad"}, rowKeys(rows))
	assert.True(t, s.Filters().Active())

	s.ClearFilters()
	rows, _ = s.VisibleRows()
	assert.Len(t, rows, 3)
}

func TestSession_CycleDateSort(t *testing.T) {
	s, _ := newTestSession(t)

	assert.Equal(t, table.SortAscend, s.CycleDateSort())
	assert.Equal(t, table.SortDescend, s.CycleDateSort())
	assert.Equal(t, table.SortDescend, s.SortState().Favorite)
}

func TestSession_SetOffset(t *testing.T) {
	s, _ := newTestSession(t)

	assert.True(t, s.SetOffset(90))
	assert.Equal(t, 90, s.Window().Offset)
	assert.False(t, s.SetOffset(-1))

	s.SetMode(launches.Upcoming)
	assert.False(t, s.SetOffset(30))
	assert.Equal(t, 0, s.Window().Offset)
}

func TestWindowLimit(t *testing.T) {
	assert.Equal(t, 30, windowLimit(30, 10))
	assert.Equal(t, 40, windowLimit(30, 20))
	assert.Equal(t, 50, windowLimit(30, 50))
}
