// Package blacklist implements the scheduler's per-phase access-forbidding
// rules: a system is blocked for a phase if any entry in its access map
// matches a rule that is still alive.
package blacklist

import (
	"reflect"
	"sync"

	"github.com/forgelabs/pulse/internal/access"
	"github.com/forgelabs/pulse/internal/phase"
	"github.com/forgelabs/pulse/internal/tick"
)

type kindRule struct {
	kind     access.Kind
	lifetime tick.Lifetime
}

type typedRule struct {
	typ      reflect.Type
	kind     access.Kind
	lifetime tick.Lifetime
}

// Blacklist is the rule set for a single phase: "any access of kind K is
// forbidden" entries plus "specific (type, kind) is forbidden" entries.
type Blacklist struct {
	mu          sync.Mutex
	kindRules   []kindRule
	typedRules  []typedRule
}

// New creates an empty blacklist.
func New() *Blacklist {
	return &Blacklist{}
}

// InsertKindRule forbids any access of kind for the rule's lifetime.
func (b *Blacklist) InsertKindRule(kind access.Kind, lifetime tick.Lifetime) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.kindRules = append(b.kindRules, kindRule{kind: kind, lifetime: lifetime})
}

// InsertTypedRule forbids kind access to typ for the rule's lifetime.
func (b *Blacklist) InsertTypedRule(typ reflect.Type, kind access.Kind, lifetime tick.Lifetime) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.typedRules = append(b.typedRules, typedRule{typ: typ, kind: kind, lifetime: lifetime})
}

// CheckBlocked reports whether m's declared accesses match any live rule.
func (b *Blacklist) CheckBlocked(m *access.Map) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, rule := range b.kindRules {
		types := m.Reads
		if rule.kind == access.Unique {
			types = m.Writes
		}
		if len(types) > 0 {
			return true
		}
	}
	for _, rule := range b.typedRules {
		if contains(m, rule.typ, rule.kind) {
			return true
		}
	}
	return false
}

func contains(m *access.Map, typ reflect.Type, kind access.Kind) bool {
	list := m.Reads
	if kind == access.Unique {
		list = m.Writes
	}
	for _, t := range list {
		if t == typ {
			return true
		}
	}
	return false
}

// Tick ages every rule by one tick and reaps expired ones. Called once per
// tick during the Ticking phase.
func (b *Blacklist) Tick() {
	b.mu.Lock()
	defer b.mu.Unlock()

	alive := b.kindRules[:0]
	for _, rule := range b.kindRules {
		if rule.lifetime.Advance() {
			alive = append(alive, rule)
		}
	}
	b.kindRules = alive

	aliveTyped := b.typedRules[:0]
	for _, rule := range b.typedRules {
		if rule.lifetime.Advance() {
			aliveTyped = append(aliveTyped, rule)
		}
	}
	b.typedRules = aliveTyped
}

// Registry holds one Blacklist per phase.
type Registry struct {
	mu         sync.RWMutex
	blacklists map[phase.Phase]*Blacklist
}

// NewRegistry creates a registry with an empty Blacklist for every phase.
func NewRegistry() *Registry {
	r := &Registry{blacklists: make(map[phase.Phase]*Blacklist)}
	for _, p := range phase.All() {
		r.blacklists[p] = New()
	}
	return r
}

// For returns the Blacklist for p, creating one if necessary.
func (r *Registry) For(p phase.Phase) *Blacklist {
	r.mu.RLock()
	b, ok := r.blacklists[p]
	r.mu.RUnlock()
	if ok {
		return b
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.blacklists[p]; ok {
		return b
	}
	b = New()
	r.blacklists[p] = b
	return b
}

// TickAll ages and reaps every phase's rules. Called once per tick during
// the Ticking phase.
func (r *Registry) TickAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.blacklists {
		b.Tick()
	}
}
