package enumerate

import (
	"sync/atomic"

	"github.com/2x3systems/gonsurf/libnsurf/maths"
	"github.com/2x3systems/gonsurf/libnsurf/normal"
)

// TreeSingleSoln searches for one non-trivial solution, which need not be a vertex.
//
// There is no domination test, and quadrilateral types 0 and 1 are merged into a single
// branch (x0 >= 0, x1 = x2 = 0), so each quadrilateral type takes 1..3 (or 4..6 for an
// octagon).  To steer clear of vertex links, at every stage of the search some unmarked
// triangle coordinate is forced to zero: the tree branches on such a triangle first and on
// its tetrahedron's quadrilaterals straight after.
type TreeSingleSoln[T maths.Element[T]] struct {
	treeTraversal[T]

	nextZeroLevel int
	started       bool
	saved         []int
}

func NewTreeSingleSoln[T maths.Element[T]](tab *InitialTableau, bans *BanConstraint, cancel *atomic.Bool) *TreeSingleSoln[T] {
	S := &TreeSingleSoln[T]{}
	branchesPerQuad := 3
	if tab.enc.Octagons {
		branchesPerQuad = 6
	}
	S.init(tab, bans, branchesPerQuad, 2)
	S.cancel = cancel
	S.saved = make([]int, len(S.typ))
	return S
}

// Find runs the search until it reaches a solution (returning true) or runs out of tree.
//
// Calling Find again after true resumes the search past that solution, so that callers can
// reject a candidate and keep looking.
func (S *TreeSingleSoln[T]) Find() bool {
	if !S.started {
		S.started = true
		root := S.node(0)
		root.initStart()
		root.enforceBans(S.bans)
		S.nVisited++
		if !root.feasible {
			return false
		}

		useTriangle := S.nextUnmarkedTriangleType(S.nTets)
		if useTriangle < 0 {
			return false
		}
		S.level = -1
		S.setNext(useTriangle)
		S.level = 0
		S.nextZeroLevel = 0
	} else {
		if S.level < 0 {
			return false
		}
		copy(S.typ, S.saved)
		S.typ[S.typeOrder[S.level]]++
	}

	for !S.cancelled() {
		idx := S.typeOrder[S.level]

		outOfRange := false
		switch {
		case S.typ[idx] == 4:
			if S.octLevel < 0 {
				S.octLevel = S.level
			} else {
				outOfRange = true
			}
		case S.typ[idx] == 7:
			S.octLevel = -1
			outOfRange = true
		case idx >= S.nTets && S.typ[idx] == 2:
			outOfRange = true
		}
		if outOfRange {
			S.typ[idx] = 0
			S.level--
			if S.level < 0 {
				return false
			}
			S.typ[S.typeOrder[S.level]]++
			continue
		}

		S.nVisited++
		S.prepare(idx)

		if !S.node(S.level + 1).feasible {
			S.typ[idx]++
			continue
		}

		if S.level == S.nTypes-1 {
			S.finishLeaf()
			return true
		}

		if S.level == S.nextZeroLevel {
			if S.typ[idx] == 0 {
				// This triangle is now zero, so move on to its tetrahedron's quadrilaterals.
				S.setNext((idx - S.nTets) / 4)
			} else {
				// The triangle is positive here; force the next unmarked triangle to zero.
				useTriangle := S.nextUnmarkedTriangleType(idx + 1)
				if useTriangle < 0 {
					// Everything left is a multiple of a vertex link.
					S.level = -1
					return false
				}
				S.setNext(useTriangle)
				S.nextZeroLevel++
			}
		} else if S.typeOrder[S.level+1] < S.nTets {
			bestQuad, minBranches := -1, 5
			for i := S.level + 1; i < S.nTypes; i++ {
				if q := S.typeOrder[i]; q < S.nTets {
					if b := S.feasibleBranches(q); b < minBranches {
						minBranches, bestQuad = b, q
						if b == 0 {
							break
						}
					}
				}
			}
			if bestQuad >= 0 {
				S.setNext(bestQuad)
			}
		}
		S.level++
	}
	return false
}

func (S *TreeSingleSoln[T]) prepare(idx int) {
	level := S.level
	i := idx
	if S.typ[idx] == 0 {
		parent := S.node(level)
		if idx < S.nTets {
			S.typ[idx]++
			if S.octLevel < 0 {
				S.nextSlot[level+1] = S.nextSlot[level] + 5
				S.child(1).initClone(parent)
				S.child(2).initClone(parent)
				S.child(3).initClone(parent)
				parent.constrainZero(3*i + 2)
				S.child(0).initClone(parent)
				S.child(4).initClone(parent)
				parent.constrainZero(3*i + 1)
			} else {
				S.nextSlot[level+1] = S.nextSlot[level] + 2
				S.child(1).initClone(parent)
				parent.constrainZero(3*i + 2)
				S.child(0).initClone(parent)
				parent.constrainZero(3*i + 1)
			}
		} else {
			S.lpSlot[level+1] = S.lpSlot[level]
			S.nextSlot[level+1] = S.nextSlot[level] + 1
			S.child(0).initClone(parent)
			parent.constrainZero(2*S.nTets + idx)
			return
		}
	}

	if idx >= S.nTets {
		S.lpSlot[level+1] = S.nextSlot[level]
		S.node(level+1).constrainPositive(2*S.nTets + idx)
		return
	}

	if S.typ[idx] == 1 {
		S.lpSlot[level+1] = S.lpSlot[level]
	} else {
		S.lpSlot[level+1] = S.nextSlot[level] + S.typ[idx] - 2
	}
	lp := S.node(level + 1)
	switch S.typ[idx] {
	case 2:
		lp.constrainZero(3 * i)
		lp.constrainPositive(3*i + 1)
	case 3:
		lp.constrainZero(3 * i)
		lp.constrainZero(3*i + 1)
		lp.constrainPositive(3*i + 2)
	case 4:
		lp.constrainZero(3 * i)
		lp.constrainOct(3*i+1, 3*i+2)
	case 5:
		lp.constrainZero(3*i + 1)
		lp.constrainOct(3*i, 3*i+2)
	case 6:
		lp.constrainOct(3*i, 3*i+1)
	}
}

// finishLeaf pins down each merged quadrilateral branch at the leaf: zero if the system
// allows it, and otherwise shifted to be positive so the solution extracts correctly.
func (S *TreeSingleSoln[T]) finishLeaf() {
	copy(S.saved, S.typ)
	leaf := S.node(S.level + 1)
	tmp := &S.tmp[0]
	for i := 0; i < S.nTets; i++ {
		if S.typ[i] != 1 {
			continue
		}
		tmp.initClone(leaf)
		tmp.constrainZero(3 * i)
		if tmp.feasible {
			leaf.constrainZero(3 * i)
			S.typ[i] = 0
		} else {
			leaf.constrainPositive(3 * i)
		}
	}
}

// BuildSurface returns the solution found by the last successful call to Find.
func (S *TreeSingleSoln[T]) BuildSurface() *normal.Surface {
	return S.buildSurface()
}
