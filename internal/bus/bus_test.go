package bus_test

import (
	"context"
	"testing"
	"time"

	"github.com/forgelabs/pulse/internal/bus"
)

type cancelEvent struct {
	Msg string
}

func collect[T any](r bus.Reader[T]) []T {
	var out []T
	r.ForEach(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

func TestEmitForEachOrderAndAdvance(t *testing.T) {
	b := bus.NewBus(nil)
	w := bus.WriterFor[int](b)
	r := bus.ReaderFor[int](b)

	w.Emit(1)
	w.Emit(2)

	if got := collect(r); len(got) != 0 {
		t.Fatalf("expected no events before Advance, got %v", got)
	}

	b.Advance()
	got := collect(r)
	want := []int{1, 2}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if gotAfter := collect(r); len(gotAfter) != 0 {
		t.Fatalf("expected no events on a second iteration of the same tick, got %v", gotAfter)
	}
}

func TestCancelPropagatesToWaiter(t *testing.T) {
	b := bus.NewBus(nil)
	w := bus.WriterFor[cancelEvent](b)
	r := bus.ReaderFor[cancelEvent](b)

	res := w.EmitResult(cancelEvent{Msg: "please-cancel"})
	b.Advance()

	r.ForEach(func(e cancelEvent) bool {
		if e.Msg != "please-cancel" {
			t.Fatalf("unexpected event payload: %v", e.Msg)
		}
		r.Cancel()
		return true
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if !res.Wait(ctx) {
		t.Fatalf("Wait should report cancelled=true")
	}
}

func TestCompleteNoReaderResolvesUnreadEvents(t *testing.T) {
	b := bus.NewBus(nil)
	w := bus.WriterFor[string](b)

	res := w.EmitResult("foo")
	b.Advance()
	b.CompleteNoReader()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if res.Wait(ctx) {
		t.Fatalf("expected cancelled=false when nothing read the event")
	}
}

func TestDrainRequiresCompleteNoReaderToResolveWaiters(t *testing.T) {
	b := bus.NewBus(nil)
	w := bus.WriterFor[int](b)
	r := bus.ReaderFor[int](b)

	res := w.EmitResult(10)
	b.Advance()

	vals := r.Drain()
	if len(vals) != 1 || vals[0] != 10 {
		t.Fatalf("Drain returned %v, want [10]", vals)
	}

	waitDone := make(chan struct{})
	go func() {
		defer close(waitDone)
		_ = res.Wait(context.Background())
	}()

	select {
	case <-waitDone:
		t.Fatalf("Wait completed before CompleteNoReader; expected to block")
	case <-time.After(20 * time.Millisecond):
	}

	b.CompleteNoReader()
	select {
	case <-waitDone:
	case <-time.After(time.Second):
		t.Fatalf("Wait didn't complete after CompleteNoReader")
	}
	if res.Cancelled() {
		t.Fatalf("unexpected cancellation after CompleteNoReader")
	}
}

func TestEmitManyAndDrainTo(t *testing.T) {
	b := bus.NewBus(nil)
	w := bus.WriterFor[int](b)
	r := bus.ReaderFor[int](b)

	w.EmitMany([]int{1, 2, 3})
	b.Advance()

	got := collect(r)
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("EmitMany -> got %d events, want %d", len(got), len(want))
	}

	w.EmitMany([]int{4, 5, 6, 7})
	b.Advance()
	buf := make([]int, 3)
	n := r.DrainTo(buf)
	if n != 3 {
		t.Fatalf("expected DrainTo to fill 3 slots, got %d", n)
	}
	if buf[0] != 4 || buf[1] != 5 || buf[2] != 6 {
		t.Fatalf("unexpected DrainTo contents: %v", buf)
	}
}

type emitDiag struct {
	name  string
	count int
}

func (d *emitDiag) BeginTick() string                            { return "" }
func (d *emitDiag) PhaseStart(string)                            {}
func (d *emitDiag) PhaseEnd(string, time.Duration)                {}
func (d *emitDiag) SystemStart(string, string)                    {}
func (d *emitDiag) SystemEnd(string, string, error, time.Duration) {}
func (d *emitDiag) EventEmit(name string, count int) {
	d.name = name
	d.count += count
}
func (d *emitDiag) BackgroundHarvest(string, time.Duration) {}

func TestDiagnosticsReceivesEventEmit(t *testing.T) {
	diagnose := &emitDiag{}
	b := bus.NewBus(diagnose)
	w := bus.WriterFor[int](b)
	w.Emit(1)
	w.EmitMany([]int{2, 3})

	if diagnose.count != 3 {
		t.Fatalf("expected 3 total emitted events recorded, got %d", diagnose.count)
	}
}
