// Package launches fetches launch records from the SpaceX GraphQL API.
package launches

import (
	"errors"
	"fmt"
)

// Rocket is the nested rocket descriptor. Either field may be absent.
type Rocket struct {
	RocketName *string `json:"rocket_name"`
	RocketType *string `json:"rocket_type"`
}

// LaunchRecord is one launch as returned by the server. Every field may be
// absent.
type LaunchRecord struct {
	ID            *string `json:"id"`
	MissionName   *string `json:"mission_name"`
	Rocket        *Rocket `json:"rocket"`
	LaunchDateUTC *string `json:"launch_date_utc"`
	LaunchSuccess *bool   `json:"launch_success"`
}

// Identifier returns the launch id, or "" when absent.
func (r LaunchRecord) Identifier() string {
	return deref(r.ID)
}

// Mission returns the mission name, or "" when absent.
func (r LaunchRecord) Mission() string {
	return deref(r.MissionName)
}

// RocketName returns the rocket name, or "" when absent.
func (r LaunchRecord) RocketName() string {
	if r.Rocket == nil {
		return ""
	}
	return deref(r.Rocket.RocketName)
}

// RocketType returns the rocket type, or "" when absent.
func (r LaunchRecord) RocketType() string {
	if r.Rocket == nil {
		return ""
	}
	return deref(r.Rocket.RocketType)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Kind selects the past or upcoming launch query.
type Kind int

const (
	Past Kind = iota
	Upcoming
)

func (k Kind) String() string {
	if k == Upcoming {
		return "upcoming"
	}
	return "past"
}

// Operation is the GraphQL operation name for the kind.
func (k Kind) Operation() string {
	if k == Upcoming {
		return "future_launch"
	}
	return "past_launch"
}

// Request is one fetch window.
type Request struct {
	Kind   Kind
	Offset int
	Limit  int
}

// Validate checks offset >= 0 and limit > 0.
func (r Request) Validate() error {
	if r.Offset < 0 {
		return fmt.Errorf("offset must be non-negative, got %d", r.Offset)
	}
	if r.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", r.Limit)
	}
	return nil
}

// CacheKey identifies the window in the response cache.
func (r Request) CacheKey() string {
	return fmt.Sprintf("launches:%s:%d:%d", r.Kind, r.Offset, r.Limit)
}

// State of a fetch as seen by the table.
type State int

const (
	StateLoading State = iota
	StateError
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Result is the outcome of one fetch.
type Result struct {
	Request   Request
	State     State
	Records   []LaunchRecord
	Err       error
	FromCache bool
	RequestID string
}

// ErrMissingData means the query succeeded but the launch list was null.
var ErrMissingData = errors.New("data not found")

// QueryError carries a transport or GraphQL failure. Error returns the
// server message verbatim.
type QueryError struct {
	Request Request
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	return e.Message
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
