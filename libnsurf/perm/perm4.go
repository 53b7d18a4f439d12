// Package perm implements permutations of {0, 1, 2, 3} packed into a single byte.
package perm

import (
	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/pkg/errors"
)

// Perm4 is a permutation of {0, 1, 2, 3}; the image of i occupies bits 2i and 2i+1.
type Perm4 uint8

// Identity is the identity permutation.
const Identity Perm4 = 0 | 1<<2 | 2<<4 | 3<<6

// Of returns the permutation mapping i to images[i].
// It panics if images is not a permutation.
func Of(a, b, c, d int) Perm4 {
	p, ok := tryOf([4]int{a, b, c, d})
	if !ok {
		panic("perm.Of: not a permutation")
	}
	return p
}

func tryOf(img [4]int) (Perm4, bool) {
	var seen uint8
	var p Perm4
	for i, v := range img {
		if v < 0 || v > 3 || seen&(1<<v) != 0 {
			return 0, false
		}
		seen |= 1 << v
		p |= Perm4(v) << (2 * i)
	}
	return p, true
}

// Transposition returns the permutation swapping a and b.
func Transposition(a, b int) Perm4 {
	img := [4]int{0, 1, 2, 3}
	img[a], img[b] = img[b], img[a]
	p, _ := tryOf(img)
	return p
}

// At returns the image of i.
func (p Perm4) At(i int) int {
	return int(p>>(2*i)) & 3
}

// PreImage returns the j with p.At(j) == i.
func (p Perm4) PreImage(i int) int {
	for j := 0; j < 4; j++ {
		if p.At(j) == i {
			return j
		}
	}
	return -1
}

// Compose returns p∘q, which maps i to p[q[i]].
func (p Perm4) Compose(q Perm4) Perm4 {
	var r Perm4
	for i := 0; i < 4; i++ {
		r |= Perm4(p.At(q.At(i))) << (2 * i)
	}
	return r
}

func (p Perm4) Inverse() Perm4 {
	var r Perm4
	for i := 0; i < 4; i++ {
		r |= Perm4(i) << (2 * p.At(i))
	}
	return r
}

// Sign returns +1 for even permutations and -1 for odd ones.
func (p Perm4) Sign() int {
	inv := 0
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if p.At(i) > p.At(j) {
				inv++
			}
		}
	}
	if inv&1 != 0 {
		return -1
	}
	return 1
}

func (p Perm4) IsIdentity() bool {
	return p == Identity
}

// Index returns the position of p (0..23) in the lexicographic ordering of S4.
func (p Perm4) Index() int {
	idx := 0
	used := 0
	for i := 0; i < 3; i++ {
		v := p.At(i)
		smaller := 0
		for w := 0; w < v; w++ {
			if used&(1<<w) == 0 {
				smaller++
			}
		}
		idx = idx*(4-i) + smaller
		used |= 1 << v
	}
	return idx
}

// FromIndex is the inverse of Index.
func FromIndex(idx int) Perm4 {
	var img [4]int
	avail := []int{0, 1, 2, 3}
	fact := 6
	for i := 0; i < 4; i++ {
		k := idx / fact
		idx %= fact
		img[i] = avail[k]
		avail = append(avail[:k], avail[k+1:]...)
		if i < 3 {
			fact /= 3 - i
		}
	}
	p, _ := tryOf(img)
	return p
}

// S4 holds all 24 permutations in lexicographic order.
var S4 = func() [24]Perm4 {
	var all [24]Perm4
	for i := range all {
		all[i] = FromIndex(i)
	}
	return all
}()

// String renders p as its four images, e.g. "1302".
func (p Perm4) String() string {
	return string([]byte{
		byte('0' + p.At(0)),
		byte('0' + p.At(1)),
		byte('0' + p.At(2)),
		byte('0' + p.At(3)),
	})
}

// Parse reads the four-digit form written by String.
func Parse(s string) (Perm4, error) {
	if len(s) != 4 {
		return 0, errors.Wrapf(gonsurf.ErrBadGluing, "permutation %q", s)
	}
	var img [4]int
	for i := 0; i < 4; i++ {
		img[i] = int(s[i]) - '0'
	}
	p, ok := tryOf(img)
	if !ok {
		return 0, errors.Wrapf(gonsurf.ErrBadGluing, "permutation %q", s)
	}
	return p, nil
}
