package rand

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 64; i++ {
		require.Equal(t, a.Uint64(), b.Uint64(), "stream diverged at draw %d", i)
	}
}

func TestReseedResetsStream(t *testing.T) {
	r := New(7)
	first := make([]uint64, 8)
	for i := range first {
		first[i] = r.Uint64()
	}

	r.Reseed(7)
	second := make([]uint64, 8)
	for i := range second {
		second[i] = r.Uint64()
	}

	require.Equal(t, first, second)
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	require.NotEqual(t, a.Uint64(), b.Uint64())
}

func TestSeedRoundTrip(t *testing.T) {
	r := New(123)
	require.Equal(t, uint64(123), r.Seed())
	r.Reseed(456)
	require.Equal(t, uint64(456), r.Seed())
}

func TestUint32NBounds(t *testing.T) {
	r := New(99)
	for i := 0; i < 256; i++ {
		v := r.Uint32N(5)
		require.Less(t, v, uint32(5))
	}
}

func TestUint32NPanicsOnZero(t *testing.T) {
	r := New(1)
	require.Panics(t, func() { r.Uint32N(0) })
}

func TestIntNBounds(t *testing.T) {
	r := New(5)
	for i := 0; i < 256; i++ {
		v := r.IntN(10)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 10)
	}
}

func TestIntNPanicsOnNonPositive(t *testing.T) {
	r := New(1)
	require.Panics(t, func() { r.IntN(0) })
	require.Panics(t, func() { r.IntN(-1) })
}

func TestFloat32And64Range(t *testing.T) {
	r := New(3)
	for i := 0; i < 256; i++ {
		f32 := r.Float32()
		require.GreaterOrEqual(t, f32, float32(0))
		require.Less(t, f32, float32(1))

		f64 := r.Float64()
		require.GreaterOrEqual(t, f64, float64(0))
		require.Less(t, f64, float64(1))
	}
}

func TestPermIsPermutation(t *testing.T) {
	r := New(8)
	n := 20
	perm := r.Perm(n)
	require.Len(t, perm, n)

	seen := make(map[int]bool, n)
	for _, v := range perm {
		require.False(t, seen[v], "duplicate value %d in permutation", v)
		seen[v] = true
	}
}

func TestShuffleDeterministicForSameSeed(t *testing.T) {
	build := func(seed uint64) []int {
		r := New(seed)
		s := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		r.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
		return s
	}

	require.Equal(t, build(11), build(11))
}
