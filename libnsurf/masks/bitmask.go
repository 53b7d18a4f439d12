// Package masks implements the fixed-universe bit and qit sets used by the enumeration
// inner loops, plus a trie of bitmasks for subset and superset queries.
package masks

import (
	"math/bits"
	"strings"
)

const (
	wordBits     = 64
	log2WordBits = 6
)

func wordsNeeded(n int) int {
	return (n + wordBits - 1) >> log2WordBits
}

// Bitmask is a subset of the universe {0, ..., n-1}.
//
// Bits at or beyond n are always zero.  Copies of a Bitmask share storage; use Clone
// for an independent copy.
type Bitmask struct {
	n     int
	words []uint64
}

// NewBitmask returns the empty subset of a universe of size n.
func NewBitmask(n int) Bitmask {
	return Bitmask{
		n:     n,
		words: make([]uint64, wordsNeeded(n)),
	}
}

// BitmaskOf returns the subset of {0..n-1} holding the given indices.
func BitmaskOf(n int, idx ...int) Bitmask {
	b := NewBitmask(n)
	for _, i := range idx {
		b.Set(i, true)
	}
	return b
}

// Len returns the size of the universe.
func (b Bitmask) Len() int {
	return b.n
}

func (b Bitmask) Get(i int) bool {
	return b.words[i>>log2WordBits]&(1<<uint(i&(wordBits-1))) != 0
}

func (b Bitmask) Set(i int, v bool) {
	w, bit := i>>log2WordBits, uint64(1)<<uint(i&(wordBits-1))
	if v {
		b.words[w] |= bit
	} else {
		b.words[w] &^= bit
	}
}

// Reset clears every bit.
func (b Bitmask) Reset() {
	clear(b.words)
}

func (b Bitmask) Clone() Bitmask {
	return Bitmask{
		n:     b.n,
		words: append([]uint64(nil), b.words...),
	}
}

// CopyFrom overwrites b with the contents of src, which must share b's universe.
func (b Bitmask) CopyFrom(src Bitmask) {
	copy(b.words, src.words)
}

// Or sets b |= o.
func (b Bitmask) Or(o Bitmask) {
	for i, w := range o.words {
		b.words[i] |= w
	}
}

// And sets b &= o.
func (b Bitmask) And(o Bitmask) {
	for i, w := range o.words {
		b.words[i] &= w
	}
}

// Xor sets b ^= o.
func (b Bitmask) Xor(o Bitmask) {
	for i, w := range o.words {
		b.words[i] ^= w
	}
}

// AndNot sets b &^= o.
func (b Bitmask) AndNot(o Bitmask) {
	for i, w := range o.words {
		b.words[i] &^= w
	}
}

// Complement flips every bit of b within its universe.
func (b Bitmask) Complement() {
	for i := range b.words {
		b.words[i] = ^b.words[i]
	}
	b.trim()
}

func (b Bitmask) trim() {
	if r := b.n & (wordBits - 1); r != 0 {
		b.words[len(b.words)-1] &= (uint64(1) << uint(r)) - 1
	}
}

// IsEmpty returns true if no bit is set.
func (b Bitmask) IsEmpty() bool {
	for _, w := range b.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Bits returns the number of set bits.
func (b Bitmask) Bits() int {
	count := 0
	for _, w := range b.words {
		count += bits.OnesCount64(w)
	}
	return count
}

// FirstBit returns the smallest set index, or -1 if b is empty.
func (b Bitmask) FirstBit() int {
	for i, w := range b.words {
		if w != 0 {
			return i<<log2WordBits + bits.TrailingZeros64(w)
		}
	}
	return -1
}

// LastBit returns the largest set index, or -1 if b is empty.
func (b Bitmask) LastBit() int {
	for i := len(b.words) - 1; i >= 0; i-- {
		if w := b.words[i]; w != 0 {
			return i<<log2WordBits + wordBits - 1 - bits.LeadingZeros64(w)
		}
	}
	return -1
}

// NextBit returns the smallest set index >= i, or -1.
func (b Bitmask) NextBit(i int) int {
	if i >= b.n {
		return -1
	}
	x := i >> log2WordBits
	w := b.words[x] >> uint(i&(wordBits-1))
	if w != 0 {
		return i + bits.TrailingZeros64(w)
	}
	for x++; x < len(b.words); x++ {
		if b.words[x] != 0 {
			return x<<log2WordBits + bits.TrailingZeros64(b.words[x])
		}
	}
	return -1
}

// AtMostOneBit returns true if b has zero or one bits set.
func (b Bitmask) AtMostOneBit() bool {
	seen := false
	for _, w := range b.words {
		if w == 0 {
			continue
		}
		if seen || w&(w-1) != 0 {
			return false
		}
		seen = true
	}
	return true
}

func (b Bitmask) Equal(o Bitmask) bool {
	if b.n != o.n {
		return false
	}
	for i, w := range b.words {
		if o.words[i] != w {
			return false
		}
	}
	return true
}

// IsSubsetOf returns true if every bit of b is also set in o.
func (b Bitmask) IsSubsetOf(o Bitmask) bool {
	for i, w := range b.words {
		if w&^o.words[i] != 0 {
			return false
		}
	}
	return true
}

// Intersects returns true if b and o share a set bit.
func (b Bitmask) Intersects(o Bitmask) bool {
	for i, w := range b.words {
		if w&o.words[i] != 0 {
			return true
		}
	}
	return false
}

// Less orders bitmasks lexicographically with index 0 most significant:
// at the first index where b and o differ, the mask holding 0 sorts first.
func (b Bitmask) Less(o Bitmask) bool {
	for i, w := range b.words {
		if d := w ^ o.words[i]; d != 0 {
			return w&(d&-d) == 0
		}
	}
	return false
}

// String renders b as a string of 0s and 1s, index 0 first.
func (b Bitmask) String() string {
	var buf strings.Builder
	buf.Grow(b.n)
	for i := 0; i < b.n; i++ {
		if b.Get(i) {
			buf.WriteByte('1')
		} else {
			buf.WriteByte('0')
		}
	}
	return buf.String()
}
