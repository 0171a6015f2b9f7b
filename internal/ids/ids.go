// Package ids provides the scheduler's stable, hash-based identifiers.
package ids

import "hash/fnv"

// Id is a 64-bit stable hash of a display name. Two identifiers collide iff
// their source strings collide under FNV-1a; this is a documented hazard,
// not a guarantee of uniqueness.
type Id uint64

// FromName hashes a display name into an Id.
func FromName(name string) Id {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return Id(h.Sum64())
}

// SystemId identifies a registered system.
type SystemId Id

// SystemIdFromName hashes a system's display name.
func SystemIdFromName(name string) SystemId {
	return SystemId(FromName(name))
}

// EventId identifies a symbolic event.
type EventId Id

// EventIdFromName hashes an event's display name.
func EventIdFromName(name string) EventId {
	return EventId(FromName(name))
}
