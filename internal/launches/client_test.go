package launches

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"launchdeck/internal/logging"
	"launchdeck/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

const twoLaunches = `{"data":{"launchesPast":[
	{"id":"a","mission_name":"Starlink-15","rocket":{"rocket_name":"Falcon 9","rocket_type":"FT"},"launch_date_utc":"2020-10-24T15:31:00.000Z","launch_success":true},
	{"id":"b","mission_name":"Sentinel-6","rocket":{"rocket_name":"Falcon 9","rocket_type":"FT"},"launch_date_utc":"2020-11-21T17:17:00.000Z","launch_success":null}
]}}`

func newServer(t *testing.T, handler func(w http.ResponseWriter, req gqlRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		handler(w, req)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(server *httptest.Server, cache *Cache) *Client {
	return NewClient(Options{Endpoint: server.URL, HTTPClient: server.Client(), Cache: cache}, logging.Nop())
}

func TestPast_Success(t *testing.T) {
	var got gqlRequest
	server := newServer(t, func(w http.ResponseWriter, req gqlRequest) {
		got = req
		w.Write([]byte(twoLaunches))
	})

	res := newTestClient(server, nil).Past(context.Background(), 0, 30)

	require.Equal(t, StateReady, res.State, "err: %v", res.Err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "a", res.Records[0].Identifier(), "server order preserved")
	assert.Equal(t, "b", res.Records[1].Identifier())
	assert.Equal(t, "Falcon 9", res.Records[0].RocketName())
	assert.Nil(t, res.Records[1].LaunchSuccess, "null success stays absent")
	assert.NotEmpty(t, res.RequestID)

	assert.True(t, strings.Contains(got.Query, "launchesPast(offset: $offset, limit: $limit)"))
	assert.Equal(t, float64(0), got.Variables["offset"])
	assert.Equal(t, float64(30), got.Variables["limit"])
}

func TestUpcoming_SendsLimitOnly(t *testing.T) {
	var got gqlRequest
	server := newServer(t, func(w http.ResponseWriter, req gqlRequest) {
		got = req
		w.Write([]byte(`{"data":{"launchesUpcoming":[{"id":"u1","mission_name":"Crew-9"}]}}`))
	})

	res := newTestClient(server, nil).Upcoming(context.Background(), 10)

	require.Equal(t, StateReady, res.State, "err: %v", res.Err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "", res.Records[0].RocketName(), "absent rocket reads as empty")
	assert.True(t, strings.Contains(got.Query, "query future_launch"))
	_, hasOffset := got.Variables["offset"]
	assert.False(t, hasOffset)
	assert.Equal(t, float64(10), got.Variables["limit"])
}

func TestFetch_GraphQLErrorVerbatim(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, req gqlRequest) {
		w.Write([]byte(`{"errors":[{"message":"Cannot query field \"launchesPast\""}]}`))
	})

	res := newTestClient(server, nil).Past(context.Background(), 0, 30)

	require.Equal(t, StateError, res.State)
	var qe *QueryError
	require.True(t, errors.As(res.Err, &qe))
	assert.Equal(t, `Cannot query field "launchesPast"`, res.Err.Error())
	assert.Empty(t, res.Records)
}

func TestFetch_NullListIsMissingData(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, req gqlRequest) {
		w.Write([]byte(`{"data":{"launchesPast":null}}`))
	})

	res := newTestClient(server, nil).Past(context.Background(), 0, 30)

	require.Equal(t, StateError, res.State)
	assert.ErrorIs(t, res.Err, ErrMissingData)
}

func TestFetch_EmptyListIsReady(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, req gqlRequest) {
		w.Write([]byte(`{"data":{"launchesPast":[]}}`))
	})

	res := newTestClient(server, nil).Past(context.Background(), 60, 30)

	require.Equal(t, StateReady, res.State)
	assert.Empty(t, res.Records)
}

func TestFetch_NullItemsKeepTheirSlot(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, req gqlRequest) {
		w.Write([]byte(`{"data":{"launchesPast":[null,{"id":"x"}]}}`))
	})

	res := newTestClient(server, nil).Past(context.Background(), 0, 30)

	require.Equal(t, StateReady, res.State)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "", res.Records[0].Identifier())
	assert.Equal(t, "x", res.Records[1].Identifier())
}

func TestFetch_ServerErrorNoRetry(t *testing.T) {
	var calls int32
	server := newServer(t, func(w http.ResponseWriter, req gqlRequest) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	})

	res := newTestClient(server, nil).Past(context.Background(), 0, 30)

	require.Equal(t, StateError, res.State)
	assert.Contains(t, res.Err.Error(), "500")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "failed fetch is not retried")
}

func TestFetch_InvalidWindow(t *testing.T) {
	c := NewClient(Options{Endpoint: "http://127.0.0.1:1"}, logging.Nop())

	res := c.Past(context.Background(), -1, 30)
	assert.Equal(t, StateError, res.State)

	res = c.Past(context.Background(), 0, 0)
	assert.Equal(t, StateError, res.State)
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := newServer(t, func(w http.ResponseWriter, req gqlRequest) {
		<-release
		w.Write([]byte(twoLaunches))
	})
	defer close(release)

	c := NewClient(Options{Endpoint: server.URL, HTTPClient: server.Client(), Timeout: 50 * time.Millisecond}, logging.Nop())
	res := c.Past(context.Background(), 0, 30)

	assert.Equal(t, StateError, res.State)
}

func TestFetch_CacheHitSkipsNetwork(t *testing.T) {
	var calls int32
	server := newServer(t, func(w http.ResponseWriter, req gqlRequest) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(twoLaunches))
	})
	c := newTestClient(server, NewCache(time.Minute, nil, nil))

	first := c.Past(context.Background(), 0, 30)
	second := c.Past(context.Background(), 0, 30)

	require.Equal(t, StateReady, second.State)
	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	c.Past(context.Background(), 30, 30)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "different window misses the cache")
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	var calls int32
	server := newServer(t, func(w http.ResponseWriter, req gqlRequest) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Write([]byte(`{"errors":[{"message":"busy"}]}`))
			return
		}
		w.Write([]byte(twoLaunches))
	})
	c := newTestClient(server, NewCache(time.Minute, nil, nil))

	assert.Equal(t, StateError, c.Past(context.Background(), 0, 30).State)
	assert.Equal(t, StateReady, c.Past(context.Background(), 0, 30).State)
}

func TestCache_Expiry(t *testing.T) {
	cache := NewCache(time.Minute, nil, nil)
	now := time.Date(2023, 1, 4, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Put(context.Background(), "k", []LaunchRecord{{}})
	_, ok := cache.Get(context.Background(), "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestCache_PersistsAcrossInstances(t *testing.T) {
	kv := store.NewMemoryStore()
	id := "a"

	NewCache(time.Hour, kv, nil).Put(context.Background(), "launches:past:0:30", []LaunchRecord{{ID: &id}})

	records, ok := NewCache(time.Hour, kv, nil).Get(context.Background(), "launches:past:0:30")
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].Identifier())
}

func TestCache_StaleEntryRemovedFromBackend(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	cache := NewCache(time.Minute, kv, nil)
	now := time.Date(2023, 1, 4, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Put(ctx, "launches:past:0:30", []LaunchRecord{{}})
	_, found, err := kv.Get(ctx, "launches:past:0:30")
	require.NoError(t, err)
	require.True(t, found)

	now = now.Add(2 * time.Minute)
	_, ok := cache.Get(ctx, "launches:past:0:30")
	assert.False(t, ok)

	_, found, err = kv.Get(ctx, "launches:past:0:30")
	require.NoError(t, err)
	assert.False(t, found, "expired window is deleted, not left behind")
}

func TestCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(time.Minute, nil, nil)
	id := "a"
	in := []LaunchRecord{{ID: &id}}
	cache.Put(ctx, "k", in)

	other := "changed"
	in[0].ID = &other
	got, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	got[0].ID = &other

	again, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "a", again[0].Identifier())
}

func TestFetch_ConcurrentIdenticalWindowsFillCache(t *testing.T) {
	var calls int32
	server := newServer(t, func(w http.ResponseWriter, req gqlRequest) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(twoLaunches))
	})
	cache := NewCache(time.Minute, nil, nil)
	c := newTestClient(server, cache)

	var wg sync.WaitGroup
	results := make([]Result, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Past(context.Background(), 0, 30)
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		require.Equal(t, StateReady, res.State, "err: %v", res.Err)
	}
	_, ok := cache.Get(context.Background(), Request{Kind: Past, Limit: 30}.CacheKey())
	assert.True(t, ok, "a shared flight still fills the cache")

	third := c.Past(context.Background(), 0, 30)
	assert.True(t, third.FromCache)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRequest_CacheKey(t *testing.T) {
	assert.Equal(t, "launches:past:0:30", Request{Kind: Past, Limit: 30}.CacheKey())
	assert.Equal(t, "launches:upcoming:0:10", Request{Kind: Upcoming, Limit: 10}.CacheKey())
}

func TestKind(t *testing.T) {
	assert.Equal(t, "past_launch", Past.Operation())
	assert.Equal(t, "future_launch", Upcoming.Operation())
	assert.Equal(t, "upcoming", Upcoming.String())
}
