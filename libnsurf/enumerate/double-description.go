package enumerate

import (
	"sort"
	"sync/atomic"

	"github.com/2x3systems/gonsurf/libnsurf/maths"
	"github.com/2x3systems/gonsurf/libnsurf/masks"
	"github.com/2x3systems/gonsurf/libnsurf/normal"
	"github.com/2x3systems/gonsurf/libnsurf/tri"
)

// ddRay is an extreme ray of the cone built so far, with the set of coordinates at which it
// vanishes.
//
// support marks the non-zero coordinates and conflicts marks every coordinate that shares a
// disjointness group with one of them, so two rays combine admissibly only if neither's
// support meets the other's conflicts.
type ddRay struct {
	coords    maths.Vector[maths.Integer]
	facets    masks.Bitmask
	support   masks.Qitmask
	conflicts masks.Qitmask
	oct       int // octagon coordinate in the support, or -1
	dot       maths.Integer
}

// DoubleDescription computes the admissible extreme rays of {x >= 0 : Ex = 0} by
// intersecting the non-negative orthant with one hyperplane at a time.
//
// Combinations that would break the disjointness constraints are discarded as they are
// formed, so every ray kept is admissible.
type DoubleDescription struct {
	tri    *tri.Triangulation
	enc    normal.Encoding
	eqns   maths.Matrix[maths.Integer]
	bans   *BanConstraint
	cancel *atomic.Bool

	conflicts []masks.Qitmask // per coordinate: the other coordinates of its group
	isOct     []bool
	octPairs  masks.TrieSet // every pair of distinct octagon coordinates
	colPerm   []int
	common    masks.Bitmask // scratch
	union     masks.Bitmask // scratch

	nRaysMax   int
	nPairsSeen uint64
}

// NewDoubleDescription prepares a run in encoding enc.  extra rows (if any) are appended to
// the matching equations and must be indexed by enc.
func NewDoubleDescription(T *tri.Triangulation, enc normal.Encoding, extra extraConstraint, bans *BanConstraint, cancel *atomic.Bool) *DoubleDescription {
	E := normal.MatchingEquations(T, enc)
	N := E.Cols()
	eqns := maths.NewMatrix[maths.Integer](E.Rows()+len(extra.rows), N)
	for r := 0; r < E.Rows(); r++ {
		copy(eqns.Row(r), E.Row(r))
	}
	for i, row := range extra.rows {
		dst := eqns.Row(E.Rows() + i)
		for c, v := range row {
			dst[c] = maths.NewInteger(v)
		}
	}

	dd := &DoubleDescription{
		tri:       T,
		enc:       enc,
		eqns:      eqns,
		bans:      bans,
		cancel:    cancel,
		conflicts: make([]masks.Qitmask, N),
		isOct:     make([]bool, N),
		colPerm:   make([]int, N),
		common:    masks.NewBitmask(N),
		union:     masks.NewBitmask(N),
	}
	for c := range dd.conflicts {
		dd.conflicts[c] = masks.NewQitmask(N)
		dd.colPerm[c] = c
	}
	var octs []int
	for t := 0; t < T.Size(); t++ {
		group := enc.ValidityGroup(t)
		for _, c := range group {
			for _, other := range group {
				if other != c {
					dd.conflicts[c].Set(other, 1)
				}
			}
		}
		if enc.Octagons {
			for k := 0; k < 3; k++ {
				c := enc.Oct(t, k)
				dd.isOct[c] = true
				octs = append(octs, c)
			}
		}
	}
	for i, a := range octs {
		for _, b := range octs[i+1:] {
			dd.octPairs.Insert(masks.BitmaskOf(N, a, b))
		}
	}
	return dd
}

func (dd *DoubleDescription) cancelled() bool {
	return dd.cancel != nil && dd.cancel.Load()
}

// admissible returns true if p + n satisfies the disjointness constraints: at most one
// non-zero coordinate per group, and at most one octagon overall.  dd.common must hold the
// coordinates at which both rays vanish.
func (dd *DoubleDescription) admissible(p, n *ddRay) bool {
	if p.support.HasNonZeroMatch(n.conflicts) {
		return false
	}
	if p.oct < 0 || n.oct < 0 || p.oct == n.oct {
		return true
	}
	dd.union.CopyFrom(dd.common)
	dd.union.Complement()
	return !dd.octPairs.HasSubset(dd.union)
}

// newUnitRay returns the ray along coordinate c.
func (dd *DoubleDescription) newUnitRay(c int) *ddRay {
	N := dd.eqns.Cols()
	ray := &ddRay{
		coords:    maths.NewVector[maths.Integer](N),
		facets:    masks.NewBitmask(N),
		support:   masks.NewQitmask(N),
		conflicts: dd.conflicts[c].Clone(),
		oct:       -1,
	}
	ray.coords.Set(c, maths.NewInteger(1))
	ray.facets.Complement()
	ray.facets.Set(c, false)
	ray.support.Set(c, 1)
	if dd.isOct[c] {
		ray.oct = c
	}
	return ray
}

// combine returns the ray on the segment from p to n that lies on the current hyperplane.
func (dd *DoubleDescription) combine(p, n *ddRay) *ddRay {
	coords := p.coords.Clone()
	coords.Scale(n.dot.Abs())
	coords.AddScaled(n.coords, p.dot)
	coords.ScaleDown()

	ray := &ddRay{
		coords:    coords,
		facets:    dd.common.Clone(),
		support:   p.support.Clone(),
		conflicts: p.conflicts.Clone(),
		oct:       p.oct,
	}
	ray.support.Or(n.support)
	ray.conflicts.Or(n.conflicts)
	if ray.oct < 0 {
		ray.oct = n.oct
	}
	return ray
}

// hyperplaneOrder returns the equation rows sorted by their first non-zero column, which
// tends to keep the intermediate ray sets small.
func (dd *DoubleDescription) hyperplaneOrder() []int {
	first := make([]int, dd.eqns.Rows())
	order := make([]int, dd.eqns.Rows())
	for r := range order {
		order[r] = r
		first[r] = dd.eqns.Cols()
		for c, x := range dd.eqns.Row(r) {
			if !x.IsZero() {
				first[r] = c
				break
			}
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return first[order[i]] < first[order[j]]
	})
	return order
}

// Run computes the rays and passes each to emit.  It returns false if cancelled first, in
// which case nothing is emitted.
func (dd *DoubleDescription) Run(emit func(S *normal.Surface)) bool {
	N := dd.eqns.Cols()

	var rays []*ddRay
	for c := 0; c < N; c++ {
		if dd.bans != nil && dd.bans.Banned(c) {
			continue
		}
		rays = append(rays, dd.newUnitRay(c))
	}

	row := maths.NewVector[maths.Integer](N)
	for _, h := range dd.hyperplaneOrder() {
		if dd.cancelled() {
			return false
		}
		for c, x := range dd.eqns.Row(h) {
			row.Set(c, x)
		}

		var pos, neg, next []*ddRay
		trie := &masks.TrieSet{}
		for _, ray := range rays {
			ray.dot = ray.coords.Dot(row)
			switch ray.dot.Sign() {
			case 1:
				pos = append(pos, ray)
			case -1:
				neg = append(neg, ray)
			default:
				next = append(next, ray)
			}
			trie.Insert(ray.facets)
		}

		for _, p := range pos {
			if dd.cancelled() {
				return false
			}
			for _, n := range neg {
				dd.nPairsSeen++
				dd.common.CopyFrom(p.facets)
				dd.common.And(n.facets)
				if !dd.admissible(p, n) {
					continue
				}
				if trie.HasExtraSuperset(dd.common, p.facets, n.facets) {
					continue
				}
				next = append(next, dd.combine(p, n))
			}
		}
		rays = next
		if len(rays) > dd.nRaysMax {
			dd.nRaysMax = len(rays)
		}
	}

	if dd.cancelled() {
		return false
	}
	for _, ray := range rays {
		emit(normal.NewSurface(dd.tri, dd.enc, ray.coords, dd.colPerm))
	}
	return true
}
