package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/apperr"
)

// CallIDPrefix marks identifiers issued by the dispatcher.
const CallIDPrefix = "call-"

// Service executes backend calls, one worker goroutine per call
type Service struct {
	doer       api.Doer
	calls      map[string]*Call
	callsMutex sync.RWMutex
	onUpdate   func(*Call) // callback for UI updates
	logger     *slog.Logger
}

// NewService creates a new dispatch service
func NewService(doer api.Doer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		doer:   doer,
		calls:  make(map[string]*Call),
		logger: logger,
	}
}

// SetUpdateCallback sets the callback function for call status changes
func (s *Service) SetUpdateCallback(callback func(*Call)) {
	s.callsMutex.Lock()
	s.onUpdate = callback
	s.callsMutex.Unlock()
}

// Dispatch sends req to the backend without blocking the caller
func (s *Service) Dispatch(req api.Request) *Call {
	return s.Go(req.String(), func(ctx context.Context) (*api.Response, error) {
		return s.doer.Do(ctx, req)
	})
}

// Go runs fn on a new worker without blocking the caller
func (s *Service) Go(label string, fn Func) *Call {
	call := newCall(generateCallID(), label)

	s.callsMutex.Lock()
	s.calls[call.ID] = call
	s.callsMutex.Unlock()

	s.notifyUpdate(call)
	go s.run(call, fn)
	return call
}

// Active returns the number of calls whose workers have not finished
func (s *Service) Active() int {
	s.callsMutex.RLock()
	defer s.callsMutex.RUnlock()
	return len(s.calls)
}

// Wait blocks until no calls are in flight or the timeout elapses. It reports
// whether the service drained.
func (s *Service) Wait(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		s.callsMutex.RLock()
		pending := make([]*Call, 0, len(s.calls))
		for _, c := range s.calls {
			pending = append(pending, c)
		}
		s.callsMutex.RUnlock()

		if len(pending) == 0 {
			return true
		}
		for _, c := range pending {
			left := time.Until(deadline)
			if left <= 0 {
				return false
			}
			select {
			case <-c.Done():
			case <-time.After(left):
				return false
			}
		}
	}
}

// run executes a call on its worker goroutine
func (s *Service) run(call *Call, fn Func) {
	call.setRunning()
	s.notifyUpdate(call)

	resp, err := s.execute(call, fn)

	s.callsMutex.Lock()
	delete(s.calls, call.ID)
	s.callsMutex.Unlock()

	thens := call.finish(resp, err)
	if err != nil {
		s.logger.Warn("call failed", "id", call.ID, "call", call.Label, "kind", apperr.KindOf(err), "error", err)
	} else {
		s.logger.Debug("call completed", "id", call.ID, "call", call.Label, "elapsed", call.Elapsed())
	}
	s.notifyUpdate(call)

	for _, fn := range thens {
		fn(resp, err)
	}
}

// execute converts a worker panic into a failed call
func (s *Service) execute(call *Call, fn Func) (resp *api.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("call worker panicked", "id", call.ID, "call", call.Label, "panic", r)
			resp, err = nil, &apperr.Error{Kind: apperr.KindUnknown, Message: fmt.Sprintf("internal error: %v", r)}
		}
	}()
	return fn(context.Background())
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(call *Call) {
	s.callsMutex.RLock()
	cb := s.onUpdate
	s.callsMutex.RUnlock()
	if cb != nil {
		cb(call)
	}
}

// generateCallID generates a time-ordered call ID using UUID v7
func generateCallID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(CallIDPrefix+"%d", time.Now().UnixNano())
	}
	return CallIDPrefix + id.String()
}
