// Package singleflight coordinates a single in-flight operation whose outcome is shared by every
// caller that asked for it while it was running.
//
// A caller joins with a Continuation. The first caller of a flight becomes its Leader and is
// responsible for producing the outcome and calling ResolveAll. Callers arriving while the flight is
// active are queued behind the leader and resumed, in arrival order, with the same outcome.
//
// Invalidate ends the current flight from outside: queued callers are resumed with an error and the
// leader's later Commit and ResolveAll become no-ops.
package singleflight

import (
	"errors"
	"sync"
)

// ErrFlightAborted is returned by Leader.Commit when the flight was invalidated before it finished
var ErrFlightAborted = errors.New("flight aborted")

// Continuation receives the outcome of the flight it joined. It is invoked exactly once.
type Continuation[T any] func(T, error)

// Coordinator is safe for concurrent use. The zero value is ready to use.
type Coordinator[T any] struct {
	mu     sync.Mutex
	active bool
	epoch  uint64
	queue  []Continuation[T]
}

// Leader is held by the caller that started the current flight.
type Leader[T any] struct {
	c     *Coordinator[T]
	epoch uint64
}

// JoinOrLead queues cont on the active flight. If no flight is active a new one is started and the
// caller becomes its leader; cont is then the first entry of the new flight's queue.
func (c *Coordinator[T]) JoinOrLead(cont Continuation[T]) (*Leader[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queue = append(c.queue, cont)
	if c.active {
		return nil, false
	}
	c.active = true
	c.epoch++
	return &Leader[T]{c: c, epoch: c.epoch}, true
}

// Commit runs fn while holding the coordinator lock, but only if this leader's flight has not been
// invalidated. It lets the leader publish side effects atomically with respect to Invalidate.
func (l *Leader[T]) Commit(fn func() error) error {
	l.c.mu.Lock()
	defer l.c.mu.Unlock()

	if !l.currentLocked() {
		return ErrFlightAborted
	}
	return fn()
}

// ResolveAll ends the flight and resumes every queued continuation in arrival order. It returns the
// number of continuations resumed, 0 if the flight was invalidated.
func (l *Leader[T]) ResolveAll(v T, err error) int {
	l.c.mu.Lock()
	if !l.currentLocked() {
		l.c.mu.Unlock()
		return 0
	}
	queue := l.c.takeLocked()
	l.c.mu.Unlock()

	resume(queue, v, err)
	return len(queue)
}

// Abort ends this leader's flight with err, the way Invalidate does, but only if the flight is still
// current. fn, if not nil, runs under the coordinator lock first. A stale leader gets ErrFlightAborted
// and fn is not run.
func (l *Leader[T]) Abort(fn func() error, err error) (int, error) {
	l.c.mu.Lock()
	if !l.currentLocked() {
		l.c.mu.Unlock()
		return 0, ErrFlightAborted
	}
	l.c.epoch++
	var fnErr error
	if fn != nil {
		fnErr = fn()
	}
	queue := l.c.takeLocked()
	l.c.mu.Unlock()

	var zero T
	resume(queue, zero, err)
	return len(queue), fnErr
}

// Current reports whether this leader still owns the active flight.
func (l *Leader[T]) Current() bool {
	l.c.mu.Lock()
	defer l.c.mu.Unlock()
	return l.currentLocked()
}

func (l *Leader[T]) currentLocked() bool {
	return l.c.active && l.c.epoch == l.epoch
}

// Invalidate ends any active flight. fn, if not nil, runs under the coordinator lock first, so no
// leader can Commit between fn and the end of the flight. Queued continuations are resumed with the
// zero value and err. It returns the number of continuations resumed and fn's error.
func (c *Coordinator[T]) Invalidate(fn func() error, err error) (int, error) {
	c.mu.Lock()
	c.epoch++
	var fnErr error
	if fn != nil {
		fnErr = fn()
	}
	queue := c.takeLocked()
	c.mu.Unlock()

	var zero T
	resume(queue, zero, err)
	return len(queue), fnErr
}

// InFlight reports whether a flight is active.
func (c *Coordinator[T]) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Pending returns the number of continuations queued on the active flight, leader included.
func (c *Coordinator[T]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *Coordinator[T]) takeLocked() []Continuation[T] {
	queue := c.queue
	c.queue = nil
	c.active = false
	return queue
}

func resume[T any](queue []Continuation[T], v T, err error) {
	for _, cont := range queue {
		if cont != nil {
			cont(v, err)
		}
	}
}
