package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBurstRunsOnceWithLastValue(t *testing.T) {
	t.Parallel()

	clock := NewManualScheduler()
	d := New(clock, 250*time.Millisecond)

	var runs []string
	for i, value := range []string{"1", "12", "123", "1234", "12345"} {
		value := value
		if i > 0 {
			clock.Advance(20 * time.Millisecond)
		}
		d.Trigger(func() { runs = append(runs, value) })
	}

	clock.Advance(249 * time.Millisecond)
	if len(runs) != 0 {
		t.Fatalf("validation ran before the quiet period: %v", runs)
	}
	clock.Advance(time.Millisecond)
	if len(runs) != 1 || runs[0] != "12345" {
		t.Fatalf("expected one run with last value, got %v", runs)
	}
	if clock.Pending() != 0 || d.Pending() {
		t.Fatalf("no task should remain pending")
	}
}

func TestCancelAndFlush(t *testing.T) {
	t.Parallel()

	clock := NewManualScheduler()
	d := New(clock, 100*time.Millisecond)

	calls := 0
	d.Trigger(func() { calls++ })
	if !d.Cancel() {
		t.Fatalf("cancel should report a pending call")
	}
	if d.Cancel() {
		t.Fatalf("second cancel should report nothing pending")
	}
	clock.Advance(time.Second)
	if calls != 0 {
		t.Fatalf("cancelled call ran")
	}

	d.Trigger(func() { calls++ })
	if !d.Flush() {
		t.Fatalf("flush should run the pending call")
	}
	if calls != 1 {
		t.Fatalf("flush did not run the call")
	}
	clock.Advance(time.Second)
	if calls != 1 {
		t.Fatalf("flushed call ran twice")
	}
	if d.Flush() {
		t.Fatalf("flush with nothing pending should report false")
	}
}

func TestManualSchedulerOrdersByDueTime(t *testing.T) {
	t.Parallel()

	clock := NewManualScheduler()
	var order []int
	clock.AfterFunc(30*time.Millisecond, func() { order = append(order, 3) })
	clock.AfterFunc(10*time.Millisecond, func() {
		order = append(order, 1)
		clock.AfterFunc(10*time.Millisecond, func() { order = append(order, 2) })
	})
	stopped := clock.AfterFunc(15*time.Millisecond, func() { order = append(order, 99) })
	if !stopped.Stop() {
		t.Fatalf("stop should succeed on a pending task")
	}

	if ran := clock.Advance(30 * time.Millisecond); ran != 3 {
		t.Fatalf("expected 3 tasks, ran %d", ran)
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("unexpected order %v", order)
	}
	if clock.Now() != 30*time.Millisecond {
		t.Fatalf("clock not advanced: %v", clock.Now())
	}
}

func TestRealSchedulerDebounces(t *testing.T) {
	t.Parallel()

	d := New(nil, 20*time.Millisecond)
	var calls atomic.Int32
	done := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		d.Trigger(func() {
			calls.Add(1)
			done <- struct{}{}
		})
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("debounced call never ran")
	}
	time.Sleep(40 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single call, got %d", got)
	}
}
