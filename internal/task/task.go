// ABOUTME: Cancellable task scope tied to a screen's lifetime
// ABOUTME: Work runs off the UI loop; continuations are dispatched back and dropped after Close

package task

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Dispatcher runs continuations on the owner's loop.
type Dispatcher interface {
	Dispatch(fn func())
}

// Scope owns the context of every task started for one screen.
// Closing it cancels in-flight work and suppresses continuations that
// have not run yet.
type Scope struct {
	ctx      context.Context
	cancel   context.CancelFunc
	dispatch Dispatcher

	mu     sync.Mutex
	closed bool
	group  errgroup.Group
}

// NewScope creates a scope whose context derives from parent.
// A nil dispatcher runs continuations inline.
func NewScope(parent context.Context, d Dispatcher) *Scope {
	if d == nil {
		d = &Inline{}
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel, dispatch: d}
}

// Context returns the scope's context. It is cancelled by Close.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close cancels the scope. It is safe to call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// Wait blocks until every task started on the scope has returned.
func (s *Scope) Wait() {
	_ = s.group.Wait()
}

func (s *Scope) deliver(fn func()) {
	if s.Closed() {
		return
	}
	s.dispatch.Dispatch(func() {
		// The scope may close between dispatch and execution.
		if s.Closed() {
			return
		}
		fn()
	})
}

// Run executes work on its own goroutine with the scope's context and
// dispatches done with the result. It returns false, without running
// anything, when the scope is already closed.
func Run[T any](s *Scope, work func(ctx context.Context) (T, error), done func(T, error)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	s.group.Go(func() error {
		v, err := work(s.ctx)
		if done != nil {
			s.deliver(func() { done(v, err) })
		}
		return nil
	})
	return true
}
