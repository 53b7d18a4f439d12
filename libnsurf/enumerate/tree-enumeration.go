package enumerate

import (
	"sync/atomic"

	"github.com/2x3systems/gonsurf/libnsurf/maths"
	"github.com/2x3systems/gonsurf/libnsurf/normal"
)

// TreeEnumeration walks the type tree depth first and stops at each vertex solution.
//
// Each quadrilateral type takes a value in 0..3 (0 meaning all three quadrilaterals are
// zero) or, when octagons are allowed, 4..6 for the octagon made of the other two
// quadrilaterals.  Each triangle type is 0 or 1.  A node is pruned if its LP is infeasible or
// if its type vector is dominated by one already found.
type TreeEnumeration[T maths.Element[T]] struct {
	treeTraversal[T]

	solns       *TypeTrie
	nSolns      uint64
	lastNonZero int
}

func NewTreeEnumeration[T maths.Element[T]](tab *InitialTableau, bans *BanConstraint, cancel *atomic.Bool) *TreeEnumeration[T] {
	E := &TreeEnumeration[T]{
		lastNonZero: -1,
	}
	branchesPerQuad := 4
	if tab.enc.Octagons {
		branchesPerQuad = 7
	}
	E.init(tab, bans, branchesPerQuad, 2)
	E.cancel = cancel
	E.solns = NewTypeTrie(branchesPerQuad)
	return E
}

// SolutionCount returns the number of solutions found so far.
func (E *TreeEnumeration[T]) SolutionCount() uint64 {
	return E.nSolns
}

// Next advances to the next vertex solution and returns true, or returns false once the
// search is exhausted or cancelled.  After true, BuildSurface returns the solution.
func (E *TreeEnumeration[T]) Next() bool {
	if E.lastNonZero < 0 {
		root := E.node(0)
		root.initStart()
		root.enforceBans(E.bans)
		E.nVisited++
		if !root.feasible {
			return false
		}
		E.level = 0
	} else {
		// Incrementing a trailing zero would dominate the previous solution, so resume from
		// the last non-zero type instead.
		E.level = E.lastNonZero
		E.typ[E.typeOrder[E.level]]++
	}

	for !E.cancelled() {
		idx := E.typeOrder[E.level]

		outOfRange := false
		switch {
		case E.typ[idx] == 4:
			if E.octLevel < 0 {
				E.octLevel = E.level
			} else {
				outOfRange = true
			}
		case E.typ[idx] == 7:
			E.octLevel = -1
			outOfRange = true
		case idx >= E.nTets && E.typ[idx] == 2:
			outOfRange = true
		}
		if outOfRange {
			E.typ[idx] = 0
			E.level--
			if E.level < 0 {
				return false
			}
			E.typ[E.typeOrder[E.level]]++
			E.lastNonZero = E.level
			continue
		}

		E.nVisited++

		if E.typ[idx] != 0 && E.solns.Dominates(E.typ[:E.nTypes]) {
			E.typ[idx]++
			E.lastNonZero = E.level
			continue
		}

		E.prepare(idx)

		// The zero vector is never a solution, but its clones were still needed above.
		if E.lastNonZero < 0 && E.level == E.nTypes-1 {
			E.typ[idx]++
			E.lastNonZero = E.level
			continue
		}

		if E.node(E.level + 1).feasible {
			if E.level < E.nTypes-1 {
				E.level++
			} else {
				E.solns.Insert(E.typ[:E.nTypes])
				E.nSolns++
				return true
			}
		} else {
			E.typ[idx]++
			E.lastNonZero = E.level
		}
	}
	return false
}

// prepare sets up the LP for the node below the current level.
//
// On the first visit (type 0) the parent's LP is constrained in place, spinning off clones
// along the way for the non-zero types to pick up later.
func (E *TreeEnumeration[T]) prepare(idx int) {
	level := E.level
	i := idx
	if E.typ[idx] == 0 {
		E.lpSlot[level+1] = E.lpSlot[level]
		parent := E.node(level)
		switch {
		case idx < E.nTets && E.octLevel < 0:
			E.nextSlot[level+1] = E.nextSlot[level] + 6
			E.child(0).initClone(parent)
			E.child(4).initClone(parent)
			E.child(5).initClone(parent)
			parent.constrainZero(3 * i)
			E.child(1).initClone(parent)
			E.child(3).initClone(parent)
			parent.constrainZero(3*i + 1)
			E.child(2).initClone(parent)
			parent.constrainZero(3*i + 2)

		case idx < E.nTets:
			E.nextSlot[level+1] = E.nextSlot[level] + 3
			E.child(0).initClone(parent)
			parent.constrainZero(3 * i)
			E.child(1).initClone(parent)
			parent.constrainZero(3*i + 1)
			E.child(2).initClone(parent)
			parent.constrainZero(3*i + 2)

		default:
			E.nextSlot[level+1] = E.nextSlot[level] + 1
			E.child(0).initClone(parent)
			parent.constrainZero(2*E.nTets + idx)
		}
		return
	}

	if idx >= E.nTets {
		E.lpSlot[level+1] = E.nextSlot[level]
		E.node(level+1).constrainPositive(2*E.nTets + idx)
		return
	}

	E.lpSlot[level+1] = E.nextSlot[level] + E.typ[idx] - 1
	lp := E.node(level + 1)
	switch E.typ[idx] {
	case 1:
		lp.constrainZero(3*i + 1)
		lp.constrainZero(3*i + 2)
		lp.constrainPositive(3 * i)
	case 2:
		lp.constrainZero(3*i + 2)
		lp.constrainPositive(3*i + 1)
	case 3:
		lp.constrainPositive(3*i + 2)
	case 4:
		lp.constrainOct(3*i+1, 3*i+2)
	case 5:
		lp.constrainZero(3*i + 1)
		lp.constrainOct(3*i, 3*i+2)
	case 6:
		lp.constrainZero(3*i + 2)
		lp.constrainOct(3*i, 3*i+1)
	}
}

// BuildSurface returns the solution found by the last successful call to Next.
func (E *TreeEnumeration[T]) BuildSurface() *normal.Surface {
	return E.buildSurface()
}
