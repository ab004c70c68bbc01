package launches

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"launchdeck/internal/logging"

	"github.com/google/uuid"
	"github.com/machinebox/graphql"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const pastLaunchQuery = `
query past_launch($offset: Int, $limit: Int) {
  launchesPast(offset: $offset, limit: $limit) {
    mission_name
    rocket {
      rocket_name
      rocket_type
    }
    launch_date_utc
    launch_success
    id
  }
}
`

const futureLaunchQuery = `
query future_launch($offset: Int, $limit: Int) {
  launchesUpcoming(offset: $offset, limit: $limit) {
    mission_name
    rocket {
      rocket_name
      rocket_type
    }
    launch_date_utc
    launch_success
    id
  }
}
`

type pastResponse struct {
	LaunchesPast []*LaunchRecord `json:"launchesPast"`
}

type upcomingResponse struct {
	LaunchesUpcoming []*LaunchRecord `json:"launchesUpcoming"`
}

// Options configures a Client.
type Options struct {
	Endpoint string
	// Timeout bounds each request. Zero leaves the request unbounded.
	Timeout    time.Duration
	HTTPClient *http.Client
	// Cache is optional.
	Cache *Cache
}

// Client issues the launch queries. It does not retry.
type Client struct {
	gql      *graphql.Client
	endpoint string
	timeout  time.Duration
	cache    *Cache
	group    singleflight.Group
	logger   *zap.Logger
}

// NewClient creates a client for opts.Endpoint.
func NewClient(opts Options, logger *logging.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	log := logger.Get(logging.CategoryQuery)

	gql := graphql.NewClient(opts.Endpoint, graphql.WithHTTPClient(httpClient))
	gql.Log = func(s string) { log.Debug(s) }

	return &Client{
		gql:      gql,
		endpoint: opts.Endpoint,
		timeout:  opts.Timeout,
		cache:    opts.Cache,
		logger:   log,
	}
}

// Past runs past_launch(offset, limit).
func (c *Client) Past(ctx context.Context, offset, limit int) Result {
	return c.Fetch(ctx, Request{Kind: Past, Offset: offset, Limit: limit})
}

// Upcoming runs future_launch(limit). The offset variable is not sent.
func (c *Client) Upcoming(ctx context.Context, limit int) Result {
	return c.Fetch(ctx, Request{Kind: Upcoming, Limit: limit})
}

// Fetch runs req. The returned Result is never in the loading state.
// Records keep the server order.
func (c *Client) Fetch(ctx context.Context, req Request) Result {
	requestID := uuid.NewString()
	log := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("operation", req.Kind.Operation()),
		zap.Int("offset", req.Offset),
		zap.Int("limit", req.Limit),
	)

	if err := req.Validate(); err != nil {
		return Result{Request: req, State: StateError, RequestID: requestID,
			Err: &QueryError{Request: req, Message: err.Error(), Err: err}}
	}

	key := req.CacheKey()
	if c.cache != nil {
		if records, ok := c.cache.Get(ctx, key); ok {
			log.Debug("served from cache", zap.Int("records", len(records)))
			return Result{Request: req, State: StateReady, Records: records, FromCache: true, RequestID: requestID}
		}
	}

	timer := logging.StartTimer(log, "fetch")
	// Callers sharing one flight all see shared=true, so the flight itself
	// fills the cache.
	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		records, err := c.run(ctx, req)
		if err == nil && c.cache != nil {
			c.cache.Put(ctx, key, records)
		}
		return records, err
	})
	timer.Stop()

	if err != nil {
		log.Warn("fetch failed", zap.Error(err))
		if errors.Is(err, ErrMissingData) {
			return Result{Request: req, State: StateError, Err: ErrMissingData, RequestID: requestID}
		}
		return Result{Request: req, State: StateError, RequestID: requestID,
			Err: &QueryError{Request: req, Message: serverMessage(err), Err: err}}
	}

	records := v.([]LaunchRecord)
	log.Info("fetched launches", zap.Int("records", len(records)), zap.Bool("shared", shared))
	return Result{Request: req, State: StateReady, Records: records, RequestID: requestID}
}

func (c *Client) run(ctx context.Context, req Request) ([]LaunchRecord, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var list []*LaunchRecord
	switch req.Kind {
	case Upcoming:
		gr := graphql.NewRequest(futureLaunchQuery)
		gr.Var("limit", req.Limit)
		var resp upcomingResponse
		if err := c.gql.Run(ctx, gr, &resp); err != nil {
			return nil, err
		}
		list = resp.LaunchesUpcoming
	default:
		gr := graphql.NewRequest(pastLaunchQuery)
		gr.Var("offset", req.Offset)
		gr.Var("limit", req.Limit)
		var resp pastResponse
		if err := c.gql.Run(ctx, gr, &resp); err != nil {
			return nil, err
		}
		list = resp.LaunchesPast
	}

	if list == nil {
		return nil, ErrMissingData
	}
	return flatten(list), nil
}

// flatten turns null list items into records with every field absent.
func flatten(list []*LaunchRecord) []LaunchRecord {
	records := make([]LaunchRecord, len(list))
	for i, r := range list {
		if r != nil {
			records[i] = *r
		}
	}
	return records
}

// serverMessage strips the client library's prefix so GraphQL error
// messages reach the table unchanged.
func serverMessage(err error) string {
	return strings.TrimPrefix(err.Error(), "graphql: ")
}
