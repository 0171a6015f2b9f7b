package resource

// The functions below are the seven ways a system may borrow a resource out
// of a Map. Each pairs a retrieval function with the Kind its caller should
// record against the type in an access.Map before scheduling — callers are
// expected to declare that access themselves (see the AccessRead/AccessWrite
// builders in the root pulse package), since Map has no notion of access
// declarations on its own.

// ResolveShared retrieves a read-only view of T. Declares a Shared access.
func ResolveShared[T any](m *Map) (T, bool) {
	return Get[T](m)
}

// ResolveUnique retrieves a mutable pointer to T. Declares a Unique access.
func ResolveUnique[T any](m *Map) *T {
	return GetPtr[T](m)
}

// ResolveTake moves T out of the map, leaving zero()'s result in its slot,
// and hands the value to the caller outright. Declares a Unique access, same as Unique,
// since it mutates the map's contents.
func ResolveTake[T any](m *Map, zero func() T) T {
	return Take[T](m, zero)
}

// ResolveOwned retrieves a copy of T via cloneFn, leaving the stored value
// untouched. Declares no access at all on the scheduler's conflict graph —
// concurrent readers of the source value are unaffected by a clone, matching
// the Rust original's Owned (backed by ToOwned) declaring zero accesses.
func ResolveOwned[T any](m *Map, cloneFn func(T) T) (T, bool) {
	v, ok := Get[T](m)
	if !ok {
		var zero T
		return zero, false
	}
	return cloneFn(v), true
}

// ResolveArcMutex retrieves a shared, independently-lockable handle stored
// as *Shared[T] (a *sync.Mutex-guarded value). Declares a Shared access
// against the handle type itself — the handle grants its own mutual
// exclusion once retrieved, so no Unique access against the map is needed.
func ResolveArcMutex[T any](m *Map) (*Shared[T], bool) {
	return Get[*Shared[T]](m)
}

// ResolveOptional adapts any retrieval function so a missing resource yields
// the zero value and ok=false instead of failing scheduling criteria — an
// Optional dependency never blocks a system from being eligible to run.
func ResolveOptional[T any](retrieve func() (T, bool)) (T, bool) {
	return retrieve()
}

// ResolveLocal is ResolveShared/ResolveUnique/etc. retargeted at a system's
// own Reservation map instead of the shared run-wide Map — callers pass the
// Handle's Map() in place of the global one. The function exists purely to
// name the pattern; Local carries no behavior beyond "use this map instead
// of that one".
func ResolveLocal[T any](local *Map, retrieve func(*Map) T) T {
	return retrieve(local)
}
