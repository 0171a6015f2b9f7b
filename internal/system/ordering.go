package system

import "github.com/forgelabs/pulse/internal/ids"

// Ordering is a system's declared position relative to its peers: "Before"
// lists systems this one must run ahead of; "After" lists systems this one
// must run behind. Priority is a soft tiebreak used only when ordering
// alone leaves a choice (e.g. which of several simultaneously-ready leaves a
// worker should prefer).
//
// Not to be confused: Before holds the ids of systems this node precedes,
// not the ids of systems preceding it.
type Ordering struct {
	Before   []ids.SystemId
	After    []ids.SystemId
	Priority float64
}

// Subsume restricts Before and After to members of superset, dropping any
// reference to a system outside it. Used when a tick's candidate set is
// partitioned into independent components: each component's graph should
// only see edges within itself.
func (o Ordering) Subsume(superset map[ids.SystemId]struct{}) Ordering {
	out := Ordering{Priority: o.Priority}
	for _, b := range o.Before {
		if _, ok := superset[b]; ok {
			out.Before = append(out.Before, b)
		}
	}
	for _, a := range o.After {
		if _, ok := superset[a]; ok {
			out.After = append(out.After, a)
		}
	}
	return out
}
