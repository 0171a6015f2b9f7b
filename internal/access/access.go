// Package access tracks which resource types a system touches, and at what
// strength, so the scheduler can tell which systems may run in the same
// batch without tearing each other's data.
package access

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Kind is the strength of a resource access.
type Kind uint8

const (
	// Shared grants concurrent read-only access. Many systems may hold a
	// Shared access to the same type at once.
	Shared Kind = iota
	// Unique grants exclusive read-write access. No other system may hold
	// any access, Shared or Unique, to the same type concurrently.
	Unique
)

func (k Kind) String() string {
	if k == Unique {
		return "unique"
	}
	return "shared"
}

// TypeIndex assigns small, stable integers to reflect.Type values so access
// sets can be represented as compact bitsets instead of map lookups.
type TypeIndex struct {
	mu sync.Mutex
	m  map[reflect.Type]int
}

func (ti *TypeIndex) ensure() {
	if ti.m == nil {
		ti.m = make(map[reflect.Type]int)
	}
}

// IndexOf returns t's stable index, assigning a new one on first sight.
func (ti *TypeIndex) IndexOf(t reflect.Type) int {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	ti.ensure()
	if idx, ok := ti.m[t]; ok {
		return idx
	}
	idx := len(ti.m)
	ti.m[t] = idx
	return idx
}

// Map is a partial mapping from resource type to the strongest access a
// system declares against it. A type absent from the map is untouched.
type Map struct {
	Reads  []reflect.Type
	Writes []reflect.Type

	readsSet  map[reflect.Type]struct{}
	writesSet map[reflect.Type]struct{}

	readsBits  *BitSet
	writesBits *BitSet
	bitsReady  bool
}

// NewMap builds an empty access map.
func NewMap() *Map {
	return &Map{}
}

// Add declares an access of the given kind against t. Adding Unique after
// Shared (or vice versa) upgrades the type to appear in both Reads and
// Writes, matching the conservative "Unique implies exclusivity" rule: a
// conflict check only needs to see the type once in Writes to reject any
// concurrent touch.
func (m *Map) Add(t reflect.Type, kind Kind) {
	switch kind {
	case Shared:
		if !slices.Contains(m.Reads, t) {
			m.Reads = append(m.Reads, t)
		}
	case Unique:
		if !slices.Contains(m.Writes, t) {
			m.Writes = append(m.Writes, t)
		}
	}
}

// PrepareSets precomputes lookup sets and, when ti is non-nil, compact
// bitsets for the fast conflict-check path. Call once after all Add calls,
// before the map is used in a hot conflict loop.
func (m *Map) PrepareSets(ti *TypeIndex) {
	build := func(dst *map[reflect.Type]struct{}, src []reflect.Type) {
		if len(src) == 0 {
			*dst = nil
			return
		}
		s := make(map[reflect.Type]struct{}, len(src))
		for _, t := range src {
			s[t] = struct{}{}
		}
		*dst = s
	}
	build(&m.readsSet, m.Reads)
	build(&m.writesSet, m.Writes)

	if ti == nil {
		return
	}
	buildBits := func(src []reflect.Type) *BitSet {
		if len(src) == 0 {
			return nil
		}
		b := &BitSet{}
		for _, t := range src {
			b.Set(ti.IndexOf(t))
		}
		return b
	}
	m.readsBits = buildBits(m.Reads)
	m.writesBits = buildBits(m.Writes)
	m.bitsReady = true
}

// Conflicts reports whether m and other may not execute concurrently: true
// iff some type is Unique on at least one side and touched (Shared or
// Unique) on the other.
func (m *Map) Conflicts(other *Map) bool {
	if m == nil || other == nil {
		return false
	}

	// Fast path: compact bitsets, when both sides prepared them.
	if m.writesBits != nil && other.readsBits != nil && m.writesBits.anyIntersect(other.readsBits) {
		return true
	}
	if m.writesBits != nil && other.writesBits != nil && m.writesBits.anyIntersect(other.writesBits) {
		return true
	}
	if m.readsBits != nil && other.writesBits != nil && m.readsBits.anyIntersect(other.writesBits) {
		return true
	}
	if m.bitsReady && other.bitsReady {
		// Both sides fully resolved via bitsets; no need to fall back.
		return false
	}

	// Fallback: precomputed sets (or linear scan if neither prepared).
	if other.readsSet != nil {
		for _, w := range m.Writes {
			if _, ok := other.readsSet[w]; ok {
				return true
			}
		}
	} else {
		for _, w := range m.Writes {
			if slices.Contains(other.Reads, w) {
				return true
			}
		}
	}
	if other.writesSet != nil {
		for _, w := range m.Writes {
			if _, ok := other.writesSet[w]; ok {
				return true
			}
		}
		for _, r := range m.Reads {
			if _, ok := other.writesSet[r]; ok {
				return true
			}
		}
	} else {
		for _, w := range m.Writes {
			if slices.Contains(other.Writes, w) {
				return true
			}
		}
		for _, r := range m.Reads {
			if slices.Contains(other.Writes, r) {
				return true
			}
		}
	}
	return false
}

// ConflictType returns the first type responsible for a conflict between m
// and other, or nil (via ok=false) if none. Used to build diagnostic
// messages such as ConflictError's.
func (m *Map) ConflictType(other *Map) (reflect.Type, bool) {
	for _, w := range m.Writes {
		if slices.Contains(other.Reads, w) || slices.Contains(other.Writes, w) {
			return w, true
		}
	}
	for _, r := range m.Reads {
		if slices.Contains(other.Writes, r) {
			return r, true
		}
	}
	return nil, false
}

// Accesses splits a system's declared resource touches into the half the
// Scheduler itself reserves (built-in bookkeeping resources such as the
// event pools and the tick counter) and the half the system declared for
// its own use. Conflict checks only ever compare System halves against each
// other; the Scheduler half is consulted separately by the blacklist.
type Accesses struct {
	Scheduler *Map
	System    *Map
}

// NewAccesses creates an Accesses with both halves initialized empty.
func NewAccesses() *Accesses {
	return &Accesses{Scheduler: NewMap(), System: NewMap()}
}

// Conflicts reports whether the System halves of a and b conflict. Only the
// System half participates in ordinary dispatch conflict checks; the
// Scheduler half is reserved for the scheduler's own bookkeeping resources
// and is validated separately by the blacklist package.
func (a *Accesses) Conflicts(b *Accesses) bool {
	if a == nil || b == nil {
		return false
	}
	return a.System.Conflicts(b.System)
}

// PrepareSets prepares both halves for fast conflict checking.
func (a *Accesses) PrepareSets(ti *TypeIndex) {
	a.Scheduler.PrepareSets(ti)
	a.System.PrepareSets(ti)
}

// ConflictError describes a resource both sides touch incompatibly. Its
// Error text has the form "conflicting access in system "<name>"; from
// <type>".
type ConflictError struct {
	System string
	Type   reflect.Type
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting access in system %q; from %s", e.System, e.Type)
}
