package watch

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	var count atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func() {
		count.Add(1)
	})
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(10 * time.Millisecond)
	}
	if !d.Pending() {
		t.Error("expected a pending callback during the burst")
	}

	time.Sleep(150 * time.Millisecond)
	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 callback, got %d", got)
	}
	if d.Pending() {
		t.Error("nothing should be pending after the callback")
	}
}

func TestDebouncer_StopCancels(t *testing.T) {
	var count atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() {
		count.Add(1)
	})

	d.Trigger()
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	if count.Load() != 0 {
		t.Error("stopped debouncer must not fire")
	}
	if d.Pending() {
		t.Error("stopped debouncer must not report pending")
	}
}
