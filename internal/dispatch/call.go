package dispatch

import (
	"sync"
	"time"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/model"
)

// Call is the handle for one in-flight backend call.
type Call struct {
	ID    string
	Label string

	mu         sync.Mutex
	status     model.Status
	startedAt  time.Time
	finishedAt time.Time
	thens      []func(*api.Response, error)

	done chan struct{}
	resp *api.Response
	err  error
}

func newCall(id, label string) *Call {
	return &Call{
		ID:     id,
		Label:  label,
		status: model.StatusPending,
		done:   make(chan struct{}),
	}
}

// Status returns the current lifecycle state.
func (c *Call) Status() model.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Elapsed returns how long the worker ran, or has been running.
func (c *Call) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.startedAt.IsZero() {
		return 0
	}
	if c.finishedAt.IsZero() {
		return time.Since(c.startedAt)
	}
	return c.finishedAt.Sub(c.startedAt)
}

// Done is closed when the call has completed.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Resolve blocks until the call completes and returns its result. It may be
// called any number of times; every caller sees the same result.
func (c *Call) Resolve() (*api.Response, error) {
	<-c.done
	return c.resp, c.err
}

// Then registers fn to run once with the result. It never blocks: fn runs on
// the call's worker after completion, or on a fresh goroutine when the call
// has already completed.
func (c *Call) Then(fn func(*api.Response, error)) {
	c.mu.Lock()
	if !c.status.IsFinished() {
		c.thens = append(c.thens, fn)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	go fn(c.resp, c.err)
}

func (c *Call) setRunning() {
	c.mu.Lock()
	c.status = model.StatusRunning
	c.startedAt = time.Now()
	c.mu.Unlock()
}

// finish publishes the result and returns the continuations to run.
func (c *Call) finish(resp *api.Response, err error) []func(*api.Response, error) {
	c.mu.Lock()
	c.resp, c.err = resp, err
	if err != nil {
		c.status = model.StatusFailed
	} else {
		c.status = model.StatusCompleted
	}
	c.finishedAt = time.Now()
	thens := c.thens
	c.thens = nil
	c.mu.Unlock()

	close(c.done)
	return thens
}

// Completed returns a call that has already finished with the given result.
// It lets callers short-circuit work that needs no network round trip.
func Completed(resp *api.Response, err error) *Call {
	c := newCall("", "completed")
	c.finish(resp, err)
	return c
}

// ResolveAll waits for every call and returns the first error in argument order.
func ResolveAll(calls ...*Call) ([]*api.Response, error) {
	out := make([]*api.Response, len(calls))
	var firstErr error
	for i, c := range calls {
		resp, err := c.Resolve()
		out[i] = resp
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return out, firstErr
}
