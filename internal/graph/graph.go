// Package graph builds and drives the execution DAGs the dispatcher polls:
// one DAG per weakly-connected component of a tick's candidate set, with
// edges honoring declared before/after ordering and atomic per-node status
// so multiple workers may race to claim a leaf.
package graph

import (
	"sort"
	"sync/atomic"

	"github.com/forgelabs/pulse/internal/ids"
)

// Status is a node's position in its lifecycle within one tick's dispatch.
type Status int32

const (
	// Blocked means at least one predecessor has not reached Complete. Not
	// a leaf; excluded from Leaves regardless of predecessor count because
	// by construction a Blocked node always has predecessors > 0.
	Blocked Status = iota
	// Ready means every predecessor is Complete and no worker has claimed
	// the node yet.
	Ready
	// Executing means a worker is actively running the node's system.
	Executing
	// Pending means a worker claimed the node and is waiting on an async
	// task to resolve; it does not free successors.
	Pending
	// Complete means the node finished; its successors may now be Ready.
	Complete
)

// node is one system's position in the graph.
type node struct {
	id           ids.SystemId
	status       atomic.Int32
	predecessors atomic.Int32 // remaining uncompleted predecessor count
	successors   []ids.SystemId
}

// Graph is a DAG over one weakly-connected component of a tick's candidate
// set. Edges run u -> v iff v ∈ u.Before or u ∈ v.After, intersected with
// the node set — references outside the set are silently dropped.
type Graph struct {
	nodes map[ids.SystemId]*node
	order []ids.SystemId // deterministic iteration order, by insertion
}

// Member describes one node to add to a Graph: its id and the before/after
// sets it declared, already intersected with the candidate set by the
// caller (references outside the set are the caller's responsibility to
// drop before calling Build).
type Member struct {
	Id     ids.SystemId
	Before []ids.SystemId
	After  []ids.SystemId
}

// Build constructs a Graph from members. Nodes with no predecessors start
// Ready; all others start Blocked, promoted to Ready by MarkComplete once
// their last outstanding predecessor finishes.
func Build(members []Member) *Graph {
	g := &Graph{nodes: make(map[ids.SystemId]*node, len(members))}
	for _, m := range members {
		g.nodes[m.Id] = &node{id: m.Id}
		g.order = append(g.order, m.Id)
	}

	addEdge := func(from, to ids.SystemId) {
		u, uok := g.nodes[from]
		v, vok := g.nodes[to]
		if !uok || !vok || from == to {
			return
		}
		for _, s := range u.successors {
			if s == to {
				return // already an edge
			}
		}
		u.successors = append(u.successors, to)
		v.predecessors.Add(1)
	}

	for _, m := range members {
		for _, b := range m.Before {
			addEdge(m.Id, b)
		}
		for _, a := range m.After {
			addEdge(a, m.Id)
		}
	}

	for _, id := range g.order {
		n := g.nodes[id]
		if n.predecessors.Load() == 0 {
			n.status.Store(int32(Ready))
		} else {
			n.status.Store(int32(Blocked))
		}
	}
	return g
}

// Len reports the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Finished reports whether every node has reached Complete.
func (g *Graph) Finished() bool {
	for _, id := range g.order {
		if Status(g.nodes[id].status.Load()) != Complete {
			return false
		}
	}
	return true
}

// LeafHandle lets a dispatcher worker attempt to claim a specific node.
type LeafHandle struct {
	g *Graph
	n *node
}

// Id returns the handle's system id.
func (h LeafHandle) Id() ids.SystemId { return h.n.id }

// TryClaim attempts the Ready -> Executing transition via compare-and-swap.
// This is the single linearization point for a node's Init→Executing
// transition across concurrently racing workers.
func (h LeafHandle) TryClaim() bool {
	return h.n.status.CompareAndSwap(int32(Ready), int32(Executing))
}

// Status returns the node's current status.
func (h LeafHandle) Status() Status {
	return Status(h.n.status.Load())
}

// Abort reverts an Executing claim back to Ready. Used when a claim must be
// rolled back after TryClaim succeeds but a side condition outside the
// graph's knowledge (an access-reservation conflict) means the claim cannot
// proceed — another worker may then retry the same leaf on a later pass.
func (h LeafHandle) Abort() bool {
	return h.n.status.CompareAndSwap(int32(Executing), int32(Ready))
}

// MarkPending sets the node Pending without freeing its successors — used
// when an async system's task has not yet resolved.
func (h LeafHandle) MarkPending() {
	h.n.status.Store(int32(Pending))
}

// MarkExecuting resumes a Pending node back to Executing, for a worker
// re-polling a previously-parked async task.
func (h LeafHandle) MarkExecuting() {
	h.n.status.Store(int32(Executing))
}

// Leaves returns a handle for every node that is either Ready to claim or
// Pending a previously-parked async task's result — the set a dispatcher
// worker may attempt to claim or re-poll. Blocked nodes (outstanding
// predecessors) are never included.
func (g *Graph) Leaves() []LeafHandle {
	var out []LeafHandle
	for _, id := range g.order {
		n := g.nodes[id]
		st := Status(n.status.Load())
		if st == Ready || st == Pending {
			out = append(out, LeafHandle{g: g, n: n})
		}
	}
	return out
}

// MarkComplete transitions id to Complete and decrements the predecessor
// count of every successor, promoting newly-free successors from Blocked
// to Ready. The decrement and the zero-check are a single atomic
// read-modify-write so two predecessors of a shared successor completing
// concurrently on different workers can never both observe a nonzero
// remainder and leave the successor stuck Blocked.
func (g *Graph) MarkComplete(id ids.SystemId) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	n.status.Store(int32(Complete))
	for _, succId := range n.successors {
		succ := g.nodes[succId]
		if succ.predecessors.Add(-1) == 0 {
			succ.status.CompareAndSwap(int32(Blocked), int32(Ready))
		}
	}
}

// MarkPending transitions id to Pending without freeing successors.
func (g *Graph) MarkPending(id ids.SystemId) {
	if n, ok := g.nodes[id]; ok {
		n.status.Store(int32(Pending))
	}
}

// SortedIds returns every node id sorted ascending by id value — a
// deterministic order useful for tests and diagnostics.
func (g *Graph) SortedIds() []ids.SystemId {
	out := append([]ids.SystemId(nil), g.order...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
