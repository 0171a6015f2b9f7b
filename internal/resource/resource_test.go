package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ n int }

func TestConservativelyInsertRejectsDuplicate(t *testing.T) {
	m := NewMap()
	assert.NoError(t, m.ConservativelyInsert(counter{n: 1}), "first insert should succeed")
	assert.Error(t, m.ConservativelyInsert(counter{n: 2}), "second insert of the same type should fail")
}

func TestGetAndGetPtr(t *testing.T) {
	m := NewMap()
	_ = m.ConservativelyInsert(&counter{n: 5})
	p := GetPtr[counter](m)
	require.NotNil(t, p)
	assert.Equal(t, 5, p.n)

	p.n = 9
	p2 := GetPtr[counter](m)
	assert.Equal(t, 9, p2.n, "mutation through GetPtr should be visible to subsequent GetPtr calls")
}

func TestTakeLeavesDefaultBehind(t *testing.T) {
	m := NewMap()
	_ = m.ConservativelyInsert(counter{n: 42})
	taken := Take[counter](m, func() counter { return counter{} })
	assert.Equal(t, 42, taken.n)

	left, ok := Get[counter](m)
	assert.True(t, ok, "Take should leave newFn's value in the slot")
	assert.Equal(t, 0, left.n, "Take should leave newFn's value in the slot")

	Remove[counter](m)
	again := Take[counter](m, func() counter { return counter{n: -1} })
	assert.Equal(t, -1, again.n, "Take on an absent type should fall back to newFn's result")
}

func TestConservativelyMergeCollectsAllCollisions(t *testing.T) {
	dst := NewMap()
	_ = dst.ConservativelyInsert(counter{n: 1})
	_ = dst.ConservativelyInsert("dst-string")

	src := NewMap()
	_ = src.ConservativelyInsert(counter{n: 2}) // collides with dst
	_ = src.ConservativelyInsert("src-string")  // collides with dst
	_ = src.ConservativelyInsert(3.14)          // new, should merge in

	err := dst.ConservativelyMerge(src)
	require.Error(t, err, "expected a MergeError reporting both collisions")

	merr, ok := err.(*MergeError)
	require.True(t, ok, "expected *MergeError, got %T", err)
	assert.Len(t, merr.Collisions, 2)

	v, ok := Get[float64](dst)
	assert.True(t, ok, "non-colliding type should have merged in")
	assert.Equal(t, 3.14, v)

	cv, ok := Get[counter](dst)
	assert.True(t, ok)
	assert.Equal(t, 1, cv.n, "colliding destination value must be left untouched")
}

func TestReservationSingleOwner(t *testing.T) {
	r := NewReservation()
	h1 := r.TryAcquire()
	require.NotNil(t, h1, "first TryAcquire should succeed")
	assert.Nil(t, r.TryAcquire(), "second concurrent TryAcquire should fail while held")

	h1.Release()
	h2 := r.TryAcquire()
	require.NotNil(t, h2, "TryAcquire should succeed after Release")
	h2.Release()
}

func TestSharedLockUnlock(t *testing.T) {
	s := NewShared(counter{n: 1})
	p := s.Lock()
	p.n++
	s.Unlock()
	p2 := s.Lock()
	defer s.Unlock()
	assert.Equal(t, 2, p2.n, "expected mutation to persist across Lock/Unlock")
}

func TestResolveOwnedDoesNotMutateSource(t *testing.T) {
	m := NewMap()
	_ = m.ConservativelyInsert([]int{1, 2, 3})
	clone, ok := ResolveOwned[[]int](m, func(s []int) []int {
		out := make([]int, len(s))
		copy(out, s)
		return out
	})
	require.True(t, ok)

	clone[0] = 99
	orig, _ := Get[[]int](m)
	assert.Equal(t, 1, orig[0], "mutating the clone must not affect the stored slice")
}
