package engine

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleFires(t *testing.T) {
	fired := make(chan struct{})
	schedule(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("Scheduled callback never fired")
	}
}

func TestCancelPreventsFire(t *testing.T) {
	var fired int32
	h := schedule(30*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	h.Cancel()

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Error("Cancelled callback fired anyway")
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	h := schedule(10*time.Millisecond, func() {})
	h.Cancel()
	h.Cancel() // Second cancel must be a no-op, not a panic.

	// Cancel after fire is equally harmless.
	h2 := schedule(time.Millisecond, func() {})
	time.Sleep(50 * time.Millisecond)
	h2.Cancel()
}

func TestCancelNilHandle(t *testing.T) {
	var h *TimerHandle
	h.Cancel() // Handles are nil before the first question is served.
}
