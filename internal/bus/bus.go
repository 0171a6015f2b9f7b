package bus

import (
	"reflect"
	"sync"

	"github.com/forgelabs/pulse/internal/diag"
)

// Bus is a per-type payload event bus with tick-based delivery: everything
// written during tick T becomes readable starting tick T+1, mirroring the
// scheduler's symbolic NewEvents/CurrentEvents rotation.
type Bus struct {
	stores   sync.Map // key: reflect.Type, value: *store[T]
	diagnose diag.Diagnostics
}

// NewBus constructs a Bus. A nil diagnose disables EventEmit reporting.
func NewBus(diagnose diag.Diagnostics) *Bus {
	return &Bus{diagnose: diagnose}
}

// Advance flips write->read buffers for every registered type. Call once
// per tick, after CompleteNoReader.
func (b *Bus) Advance() {
	b.stores.Range(func(_, v any) bool {
		if adv, ok := v.(advancer); ok {
			adv.advance()
		}
		return true
	})
}

// CompleteNoReader closes completion signals for events with no readers
// that started for the tick. Call once per tick, before Advance.
func (b *Bus) CompleteNoReader() {
	b.stores.Range(func(_, v any) bool {
		if cmp, ok := v.(completer); ok {
			cmp.completeNoReader()
		}
		return true
	})
}

// WriterFor returns a type-safe writer bound to this bus.
func WriterFor[T any](b *Bus) Writer[T] {
	return Writer[T]{store: ensureStore[T](b)}
}

// ReaderFor returns a type-safe reader bound to this bus.
func ReaderFor[T any](b *Bus) Reader[T] {
	return Reader[T]{store: ensureStore[T](b)}
}

type advancer interface{ advance() }
type completer interface{ completeNoReader() }

func ensureStore[T any](b *Bus) *store[T] {
	t := baseType(reflect.TypeOf((*T)(nil)).Elem())

	if v, ok := b.stores.Load(t); ok {
		return v.(*store[T])
	}
	st := &store[T]{name: t.String(), diagnose: b.diagnose}
	actual, _ := b.stores.LoadOrStore(t, st)
	return actual.(*store[T])
}

func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
