package dispatch

import (
	"context"

	"github.com/ytget/stockdesk/internal/api"
)

// Func is a unit of work executed by a call worker.
type Func func(ctx context.Context) (*api.Response, error)

// Runner defines the interface for the dispatch service.
type Runner interface {
	// Dispatch sends req to the backend on a new worker.
	Dispatch(req api.Request) *Call
	// Go runs fn on a new worker under the given label.
	Go(label string, fn Func) *Call
}

// Monitor reports call activity to an observer such as a busy indicator.
type Monitor interface {
	// SetUpdateCallback registers fn for every call state change. fn runs
	// on the goroutine that changed the call.
	SetUpdateCallback(fn func(*Call))
	// Active returns the number of calls still in flight.
	Active() int
}
