// Package engine - timer.go
// Cancellable delayed callbacks. Every scheduled action returns a handle;
// starting a new question cancels the previous question's handles, so a
// late fire can never mutate a round that has already moved on.
package engine

import (
	"sync"
	"time"
)

// TimerHandle wraps a pending delayed callback. Cancel is idempotent and
// safe to call after the timer has fired.
type TimerHandle struct {
	mu    sync.Mutex
	timer *time.Timer
	done  bool
}

// Cancel stops the pending callback if it has not fired yet.
func (h *TimerHandle) Cancel() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return
	}
	h.done = true
	h.timer.Stop()
}

// schedule arms a delayed callback and returns its handle. The callback runs
// at most once and never after Cancel.
func schedule(d time.Duration, fn func()) *TimerHandle {
	h := &TimerHandle{}
	h.timer = time.AfterFunc(d, func() {
		h.mu.Lock()
		if h.done {
			h.mu.Unlock()
			return
		}
		h.done = true
		h.mu.Unlock()
		fn()
	})
	return h
}
