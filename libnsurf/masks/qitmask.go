package masks

import (
	"strings"
)

// Qitmask maps each slot of {0, ..., n-1} to a value in {0, 1, 2, 3}.
//
// Slot i has value lo_i + 2*hi_i, where lo and hi are parallel bit words.
// Copies of a Qitmask share storage; use Clone for an independent copy.
type Qitmask struct {
	n  int
	lo []uint64
	hi []uint64
}

// NewQitmask returns the all-zero qitmask of n slots.
func NewQitmask(n int) Qitmask {
	w := wordsNeeded(n)
	return Qitmask{
		n:  n,
		lo: make([]uint64, w),
		hi: make([]uint64, w),
	}
}

func (q Qitmask) Len() int {
	return q.n
}

func (q Qitmask) Get(i int) uint8 {
	w, s := i>>log2WordBits, uint(i&(wordBits-1))
	return uint8((q.lo[w]>>s)&1 | ((q.hi[w]>>s)&1)<<1)
}

func (q Qitmask) Set(i int, v uint8) {
	w, bit := i>>log2WordBits, uint64(1)<<uint(i&(wordBits-1))
	if v&1 != 0 {
		q.lo[w] |= bit
	} else {
		q.lo[w] &^= bit
	}
	if v&2 != 0 {
		q.hi[w] |= bit
	} else {
		q.hi[w] &^= bit
	}
}

// Reset sets every slot to zero.
func (q Qitmask) Reset() {
	clear(q.lo)
	clear(q.hi)
}

func (q Qitmask) Clone() Qitmask {
	return Qitmask{
		n:  q.n,
		lo: append([]uint64(nil), q.lo...),
		hi: append([]uint64(nil), q.hi...),
	}
}

// Add sets each slot of q to q[i] + o[i] mod 4.
func (q Qitmask) Add(o Qitmask) {
	for i := range q.lo {
		q.hi[i] ^= o.hi[i] ^ (q.lo[i] & o.lo[i])
		q.lo[i] ^= o.lo[i]
	}
}

// Sub sets each slot of q to q[i] - o[i] mod 4.
func (q Qitmask) Sub(o Qitmask) {
	for i := range q.lo {
		q.hi[i] ^= o.hi[i] ^ (o.lo[i] &^ q.lo[i])
		q.lo[i] ^= o.lo[i]
	}
}

// Or sets each slot of q to the bitwise or of q[i] and o[i].
func (q Qitmask) Or(o Qitmask) {
	for i := range q.lo {
		q.lo[i] |= o.lo[i]
		q.hi[i] |= o.hi[i]
	}
}

func (q Qitmask) IsEmpty() bool {
	for i := range q.lo {
		if q.lo[i]|q.hi[i] != 0 {
			return false
		}
	}
	return true
}

// Has3 returns true if some slot holds the value 3.
func (q Qitmask) Has3() bool {
	for i := range q.lo {
		if q.lo[i]&q.hi[i] != 0 {
			return true
		}
	}
	return false
}

// HasNonZeroMatch returns true if some slot is non-zero in both q and o.
func (q Qitmask) HasNonZeroMatch(o Qitmask) bool {
	for i := range q.lo {
		if (q.lo[i]|q.hi[i])&(o.lo[i]|o.hi[i]) != 0 {
			return true
		}
	}
	return false
}

// Support returns the set of non-zero slots.
func (q Qitmask) Support() Bitmask {
	b := NewBitmask(q.n)
	for i := range q.lo {
		b.words[i] = q.lo[i] | q.hi[i]
	}
	return b
}

func (q Qitmask) Equal(o Qitmask) bool {
	if q.n != o.n {
		return false
	}
	for i := range q.lo {
		if q.lo[i] != o.lo[i] || q.hi[i] != o.hi[i] {
			return false
		}
	}
	return true
}

// String renders q as a string of digits 0-3, slot 0 first.
func (q Qitmask) String() string {
	var buf strings.Builder
	buf.Grow(q.n)
	for i := 0; i < q.n; i++ {
		buf.WriteByte('0' + q.Get(i))
	}
	return buf.String()
}
