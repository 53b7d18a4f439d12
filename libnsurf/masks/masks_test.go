package masks

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomMask(rng *rand.Rand, n int, density float64) Bitmask {
	b := NewBitmask(n)
	for i := 0; i < n; i++ {
		if rng.Float64() < density {
			b.Set(i, true)
		}
	}
	return b
}

func TestBitmaskBasics(t *testing.T) {
	b := BitmaskOf(70, 3, 64, 69)
	require.Equal(t, 3, b.Bits())
	require.Equal(t, 3, b.FirstBit())
	require.Equal(t, 69, b.LastBit())
	require.Equal(t, 64, b.NextBit(4))
	require.Equal(t, -1, b.NextBit(70))
	require.False(t, b.AtMostOneBit())

	c := b.Clone()
	c.Complement()
	require.Equal(t, 67, c.Bits())
	require.False(t, c.Intersects(b))
	c.Or(b)
	require.Equal(t, 70, c.Bits())

	e := NewBitmask(70)
	require.True(t, e.IsEmpty())
	require.Equal(t, -1, e.FirstBit())
	require.Equal(t, -1, e.LastBit())
	require.True(t, e.AtMostOneBit())
	require.True(t, e.IsSubsetOf(b))

	x := BitmaskOf(5, 1, 3)
	y := BitmaskOf(5, 1, 2)
	x.Xor(y)
	require.Equal(t, "00110", x.String())
	x.AndNot(BitmaskOf(5, 2))
	require.Equal(t, "00010", x.String())
}

func TestBitmaskLess(t *testing.T) {
	// index 0 is most significant
	a := BitmaskOf(4, 1)    // 0100
	b := BitmaskOf(4, 0)    // 1000
	c := BitmaskOf(4, 1, 3) // 0101
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
	require.True(t, a.Less(c))
	require.True(t, c.Less(b))
	require.False(t, a.Less(a))

	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 200; trial++ {
		x := randomMask(rng, 90, 0.5)
		y := randomMask(rng, 90, 0.5)
		want := x.String() < y.String()
		if x.Less(y) != want {
			t.Fatal("nope")
		}
	}
}

func TestQitmaskArithmetic(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	const n = 100
	for trial := 0; trial < 50; trial++ {
		a, b := NewQitmask(n), NewQitmask(n)
		va, vb := make([]uint8, n), make([]uint8, n)
		for i := 0; i < n; i++ {
			va[i], vb[i] = uint8(rng.Intn(4)), uint8(rng.Intn(4))
			a.Set(i, va[i])
			b.Set(i, vb[i])
		}

		match := false
		has3 := false
		for i := 0; i < n; i++ {
			if va[i] != 0 && vb[i] != 0 {
				match = true
			}
			if va[i] == 3 {
				has3 = true
			}
		}
		require.Equal(t, match, a.HasNonZeroMatch(b))
		require.Equal(t, has3, a.Has3())

		sum := a.Clone()
		sum.Add(b)
		diff := a.Clone()
		diff.Sub(b)
		for i := 0; i < n; i++ {
			require.Equal(t, (va[i]+vb[i])%4, sum.Get(i))
			require.Equal(t, (va[i]+4-vb[i])%4, diff.Get(i))
		}
		diff.Add(b)
		require.True(t, diff.Equal(a))

		union := a.Clone()
		union.Or(b)
		for i := 0; i < n; i++ {
			require.Equal(t, va[i]|vb[i], union.Get(i))
		}
	}
}

func TestQitmaskDisjoint(t *testing.T) {
	a, b := NewQitmask(130), NewQitmask(130)
	a.Set(0, 1)
	a.Set(129, 2)
	b.Set(1, 3)
	b.Set(128, 1)
	require.False(t, a.HasNonZeroMatch(b))
	b.Set(129, 1)
	require.True(t, a.HasNonZeroMatch(b))
	require.Equal(t, "10", a.String()[:2])
	a.Reset()
	require.True(t, a.IsEmpty())
}

func bruteSubset(stored []Bitmask, x Bitmask) bool {
	for _, m := range stored {
		if m.IsSubsetOf(x) {
			return true
		}
	}
	return false
}

func bruteExtraSuperset(stored []Bitmask, x Bitmask, exc1, exc2 int) bool {
	for i, m := range stored {
		if i == exc1 || i == exc2 {
			continue
		}
		if x.IsSubsetOf(m) {
			return true
		}
	}
	return false
}

func TestTrieSetAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1234))
	for _, n := range []int{1, 5, 12, 70} {
		for trial := 0; trial < 40; trial++ {
			var T TrieSet
			count := 1 + rng.Intn(25)
			stored := make([]Bitmask, count)
			for i := range stored {
				stored[i] = randomMask(rng, n, 0.3+0.4*rng.Float64())
				T.Insert(stored[i])
			}
			require.Equal(t, count, T.Size())

			for q := 0; q < 30; q++ {
				x := randomMask(rng, n, rng.Float64())
				if T.HasSubset(x) != bruteSubset(stored, x) {
					t.Fatalf("hasSubset mismatch n=%d x=%v", n, x)
				}

				if count < 2 {
					continue
				}
				e1 := rng.Intn(count)
				e2 := (e1 + 1 + rng.Intn(count-1)) % count
				got := T.HasExtraSuperset(x, stored[e1], stored[e2])
				if got != bruteExtraSuperset(stored, x, e1, e2) {
					t.Fatalf("hasExtraSuperset mismatch n=%d x=%v", n, x)
				}
			}
		}
	}
}

func TestTrieSetClone(t *testing.T) {
	var T TrieSet
	T.Insert(BitmaskOf(8, 1, 2))
	T.Insert(BitmaskOf(8, 5))
	dup := T.Clone()
	dup.Insert(BitmaskOf(8, 0))
	require.Equal(t, 2, T.Size())
	require.Equal(t, 3, dup.Size())
	require.True(t, dup.HasSubset(BitmaskOf(8, 0, 7)))
	require.False(t, T.HasSubset(BitmaskOf(8, 0, 7)))
	require.Equal(t, "trie containing 2 sets", T.String())
}
