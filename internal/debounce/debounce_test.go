package debounce

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu   sync.Mutex
	got  []string
	done chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 16)}
}

func (r *recorder) emit(v string) {
	r.mu.Lock()
	r.got = append(r.got, v)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recorder) values() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.got...)
}

func waitEmit(t *testing.T, r *recorder) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for emission")
	}
}

func TestBurstEmitsOnlyFinalValue(t *testing.T) {
	r := newRecorder()
	d := New(50*time.Millisecond, r.emit)

	d.Push("a")
	d.Push("ab")
	d.Push("abc")

	waitEmit(t, r)
	time.Sleep(100 * time.Millisecond)

	got := r.values()
	if len(got) != 1 || got[0] != "abc" {
		t.Fatalf("expected single emission abc, got %v", got)
	}
	if d.Pending() {
		t.Fatalf("expected nothing pending after emission")
	}
}

func TestSeparateBurstsEmitEach(t *testing.T) {
	r := newRecorder()
	d := New(20*time.Millisecond, r.emit)

	d.Push("first")
	waitEmit(t, r)
	d.Push("second")
	waitEmit(t, r)

	got := r.values()
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("unexpected emissions: %v", got)
	}
}

func TestStopSuppressesAndRestarts(t *testing.T) {
	r := newRecorder()
	d := New(30*time.Millisecond, r.emit)

	d.Push("dropped")
	d.Stop()
	if d.Pending() {
		t.Fatalf("expected nothing pending after Stop")
	}
	time.Sleep(80 * time.Millisecond)
	if got := r.values(); len(got) != 0 {
		t.Fatalf("expected no emission after Stop, got %v", got)
	}

	d.Push("kept")
	waitEmit(t, r)
	if got := r.values(); len(got) != 1 || got[0] != "kept" {
		t.Fatalf("expected restart to emit kept, got %v", got)
	}
}

func TestFlushEmitsImmediately(t *testing.T) {
	r := newRecorder()
	d := New(time.Hour, r.emit)

	d.Push("now")
	d.Flush()
	if got := r.values(); len(got) != 1 || got[0] != "now" {
		t.Fatalf("expected flush to emit now, got %v", got)
	}
	d.Flush()
	if got := r.values(); len(got) != 1 {
		t.Fatalf("expected second flush to be a no-op, got %v", got)
	}
}

func TestStaleTimerDoesNotEmit(t *testing.T) {
	r := newRecorder()
	d := New(time.Hour, r.emit)

	d.Push("old")
	d.mu.Lock()
	staleSeq := d.seq
	d.mu.Unlock()
	d.Push("new")

	d.fire(staleSeq)
	if got := r.values(); len(got) != 0 {
		t.Fatalf("stale timer emitted %v", got)
	}
	d.Stop()
}
