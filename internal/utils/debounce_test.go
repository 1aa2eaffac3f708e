package utils

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebounceKeepsLastCallPerKey(t *testing.T) {
	var d Debouncer
	var a, b atomic.Int32
	done := make(chan struct{}, 2)

	d.Debounce("a", 20*time.Millisecond, func() { a.Add(1); done <- struct{}{} })
	d.Debounce("a", 20*time.Millisecond, func() { a.Add(10); done <- struct{}{} })
	d.Debounce("b", 20*time.Millisecond, func() { b.Add(1); done <- struct{}{} })

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for debounced calls")
		}
	}
	if got := a.Load(); got != 10 {
		t.Errorf("key a ran %d, want only the last call (10)", got)
	}
	if got := b.Load(); got != 1 {
		t.Errorf("key b ran %d, want 1", got)
	}
	if d.Pending("a") || d.Pending("b") {
		t.Error("expected nothing pending after the calls ran")
	}
}

func TestDebounceStop(t *testing.T) {
	var d Debouncer
	var calls atomic.Int32

	d.Debounce("a", 10*time.Millisecond, func() { calls.Add(1) })
	if !d.Pending("a") {
		t.Fatal("expected a pending call")
	}
	d.Stop()
	d.Debounce("a", time.Millisecond, func() { calls.Add(1) })

	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("expected no calls after Stop, got %d", got)
	}
}
