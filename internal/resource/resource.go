// Package resource provides the heterogeneous, type-keyed storage the
// scheduler hands to systems on each tick: a conservative ResourceMap shared
// across the whole run, plus a per-system Reservation used for systems that
// need their own private scratch space (the Local borrow kind).
package resource

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Map is a heterogeneous, type-keyed store. Every resource type may appear
// at most once. It is safe for concurrent Get/GetPtr provided callers
// respect the same Shared/Unique discipline the scheduler's access package
// enforces — Map itself does not serialize individual Get calls against
// each other, matching the teacher's "ensure no concurrent access" contract
// rather than silently guarding every access with a mutex.
type Map struct {
	mu        sync.RWMutex
	resources map[reflect.Type]any
}

// NewMap creates an empty resource map.
func NewMap() *Map {
	return &Map{resources: make(map[reflect.Type]any)}
}

// Keys returns every resource type currently stored.
func (m *Map) Keys() []reflect.Type {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]reflect.Type, 0, len(m.resources))
	for t := range m.resources {
		keys = append(keys, t)
	}
	return keys
}

// ConservativelyInsert inserts resource under its dynamic type, failing if a
// resource of that type already exists.
func (m *Map) ConservativelyInsert(res any) error {
	t := reflect.TypeOf(res)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resources[t]; ok {
		return fmt.Errorf("resource of type %s already exists", t)
	}
	m.resources[t] = res
	return nil
}

// ConservativelyInsertDefault inserts the zero value produced by newFn under
// its type, failing if one is already present.
func (m *Map) ConservativelyInsertDefault(newFn func() any) error {
	return m.ConservativelyInsert(newFn())
}

// MergeError collects every type collision found during a ConservativelyMerge,
// rather than aborting at the first one — a dropped merge for one resource
// type should not hide collisions in the rest of the batch.
type MergeError struct {
	Collisions []reflect.Type
}

func (e *MergeError) Error() string {
	names := make([]string, len(e.Collisions))
	for i, t := range e.Collisions {
		names[i] = t.String()
	}
	return fmt.Sprintf("existing resource of type(s): %s", strings.Join(names, ", "))
}

// ConservativelyMerge folds other into m. Every type already present in m is
// left untouched and recorded as a collision; all other types from other are
// moved in. Returns a *MergeError listing every collision found, or nil if
// other merged cleanly.
func (m *Map) ConservativelyMerge(other *Map) error {
	other.mu.Lock()
	taken := other.resources
	other.resources = make(map[reflect.Type]any)
	other.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	var collisions []reflect.Type
	for t, v := range taken {
		if _, ok := m.resources[t]; ok {
			collisions = append(collisions, t)
			continue
		}
		m.resources[t] = v
	}
	if len(collisions) > 0 {
		return &MergeError{Collisions: collisions}
	}
	return nil
}

// Get returns the resource of type T, or the zero value and false if absent.
//
// Safety: callers must ensure no concurrent Unique access to T is underway —
// Map trusts the scheduler's access-conflict checks for this, same as the
// teacher's "ensure no concurrent mutable access" contract on get/get_mut.
func Get[T any](m *Map) (T, bool) {
	var zero T
	t := reflect.TypeFor[T]()
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.resources[t]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// GetPtr returns the stored *T so callers may mutate it in place, or nil if
// absent. The resource must have been inserted as a *T (not a T) — in-place
// mutation requires the map to hold the pointer itself, not a copy boxed
// behind an interface.
//
// Safety: callers must ensure exclusive (Unique) access to T is held for the
// duration the pointer is used.
func GetPtr[T any](m *Map) *T {
	t := reflect.TypeFor[*T]()
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.resources[t]
	if !ok {
		return nil
	}
	ptr, ok := v.(*T)
	if !ok {
		return nil
	}
	return ptr
}

// Insert unconditionally replaces (or creates) the stored value of type T,
// returning the previous value if any.
//
// Safety: callers must ensure no reference obtained from Get/GetPtr is still
// alive; prefer ConservativelyInsert when a collision should be an error
// instead of a silent overwrite.
func Insert[T any](m *Map, res T) (T, bool) {
	t := reflect.TypeOf(res)
	m.mu.Lock()
	defer m.mu.Unlock()
	old, existed := m.resources[t]
	m.resources[t] = res
	if !existed {
		var zero T
		return zero, false
	}
	typed, _ := old.(T)
	return typed, true
}

// Remove deletes the resource of type T and returns it, if present.
func Remove[T any](m *Map) (T, bool) {
	var zero T
	t := reflect.TypeFor[T]()
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.resources[t]
	if !ok {
		return zero, false
	}
	delete(m.resources, t)
	typed, ok := v.(T)
	return typed, ok
}

// Take moves the resource of type T out of the map, leaving newFn()'s
// result in its slot, and returns it. If T is absent, Take returns newFn()'s
// result and leaves the slot empty. This backs the Take borrow kind.
func Take[T any](m *Map, newFn func() T) T {
	if v, ok := Remove[T](m); ok {
		Insert(m, newFn())
		return v
	}
	return newFn()
}
