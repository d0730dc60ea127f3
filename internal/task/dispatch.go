// ABOUTME: Dispatchers that run task continuations
// ABOUTME: Inline runs them serialized on the caller; Loop queues them for a UI loop

package task

import "sync"

// Inline runs each continuation immediately, one at a time.
type Inline struct {
	mu sync.Mutex
}

// Dispatch implements Dispatcher.
func (i *Inline) Dispatch(fn func()) {
	i.mu.Lock()
	defer i.mu.Unlock()
	fn()
}

// Loop queues continuations until the owning loop drains them.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	notify chan struct{}
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{notify: make(chan struct{}, 1)}
}

// Dispatch implements Dispatcher.
func (l *Loop) Dispatch(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// Ready fires after Dispatch queues work. It is buffered by one, so a
// single receive may stand for several queued continuations.
func (l *Loop) Ready() <-chan struct{} {
	return l.notify
}

// Pending returns the number of queued continuations.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Drain runs every queued continuation on the calling goroutine and
// returns how many ran.
func (l *Loop) Drain() int {
	l.mu.Lock()
	queue := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}
