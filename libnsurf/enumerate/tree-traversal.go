package enumerate

import (
	"sync/atomic"

	"github.com/2x3systems/gonsurf/libnsurf/maths"
	"github.com/2x3systems/gonsurf/libnsurf/normal"
)

// treeTraversal holds what TreeEnumeration and TreeSingleSoln share: the starting tableau,
// the type vector being built, and a pool of LP nodes indexed by level.
//
// Type indices below nTets are quadrilateral types (one per tableau tetrahedron position);
// indices nTets and beyond are triangle types, one per triangle column.  The search visits
// type indices in the order given by typeOrder, one level per index.
type treeTraversal[T maths.Element[T]] struct {
	tab    *InitialTableau
	bans   *BanConstraint
	cancel *atomic.Bool

	nTets  int
	nTypes int

	typ       []int
	typeOrder []int
	level     int

	// The level holding the one octagon type, -1 if octagons are still available, or
	// nTypes if octagons are never used.
	octLevel int

	lp       []LPData[T]
	lpSlot   []int // node in lp for each level
	nextSlot []int // first free node in lp for the children of each level
	tmp      []LPData[T]

	nVisited uint64
}

func (tt *treeTraversal[T]) init(tab *InitialTableau, bans *BanConstraint, branchesPerQuad, branchesPerTri int) {
	n := tab.tri.Size()
	tt.tab = tab
	tt.bans = bans
	tt.nTets = n
	tt.nTypes = n
	if tab.enc.Triangles {
		tt.nTypes = 5 * n
	}
	tt.typ = make([]int, tt.nTypes+1)
	tt.typeOrder = make([]int, tt.nTypes)
	for i := range tt.typeOrder {
		tt.typeOrder[i] = i
	}
	tt.octLevel = tt.nTypes
	if tab.enc.Octagons {
		tt.octLevel = -1
	}

	nTableaux := (branchesPerQuad-1)*n + 1
	if tab.enc.Triangles {
		nTableaux += (branchesPerTri - 1) * 4 * n
	}
	tt.lp = newLPPool[T](tab, nTableaux)
	tt.lpSlot = make([]int, tt.nTypes+1)
	tt.nextSlot = make([]int, tt.nTypes+1)
	tt.lpSlot[0] = 0
	tt.nextSlot[0] = 1
	tt.tmp = newLPPool[T](tab, 4)
}

func (tt *treeTraversal[T]) cancelled() bool {
	return tt.cancel != nil && tt.cancel.Load()
}

// node returns the LP for the given level.
func (tt *treeTraversal[T]) node(level int) *LPData[T] {
	return &tt.lp[tt.lpSlot[level]]
}

// child returns the i-th node spun off for the children of the current level.
func (tt *treeTraversal[T]) child(i int) *LPData[T] {
	return &tt.lp[tt.nextSlot[tt.level]+i]
}

// VisitedCount returns the number of search tree nodes examined so far.
func (tt *treeTraversal[T]) VisitedCount() uint64 {
	return tt.nVisited
}

// setNext moves type index next to position level+1 of typeOrder, shifting the entries
// between along by one.
func (tt *treeTraversal[T]) setNext(next int) {
	from := tt.level + 1
	pos := -1
	for i := from; i < tt.nTypes; i++ {
		if tt.typeOrder[i] == next {
			pos = i
			break
		}
	}
	if pos <= from {
		return
	}
	copy(tt.typeOrder[from+1:pos+1], tt.typeOrder[from:pos])
	tt.typeOrder[from] = next
}

// nextUnmarkedTriangleType returns the first triangle type index >= from whose column is
// not marked, or -1.
func (tt *treeTraversal[T]) nextUnmarkedTriangleType(from int) int {
	for ; from < tt.nTypes; from++ {
		if tt.bans == nil || !tt.bans.markedColumn(2*tt.nTets+from) {
			return from
		}
	}
	return -1
}

// feasibleBranches counts how many of the four quadrilateral branches (all zero, or one of
// the three types positive) are feasible for quadrilateral type q, starting from the node
// below the current level.
func (tt *treeTraversal[T]) feasibleBranches(q int) int {
	lp := tt.tmp
	lp[0].initClone(tt.node(tt.level + 1))

	lp[1].initClone(&lp[0])
	lp[1].constrainZero(3*q + 1)
	lp[1].constrainZero(3*q + 2)
	lp[1].constrainPositive(3 * q)

	lp[0].constrainZero(3 * q)
	if !lp[0].feasible {
		return b2i(lp[1].feasible)
	}

	lp[2].initClone(&lp[0])
	lp[2].constrainZero(3*q + 2)
	lp[2].constrainPositive(3*q + 1)

	lp[0].constrainZero(3*q + 1)
	if !lp[0].feasible {
		return b2i(lp[1].feasible) + b2i(lp[2].feasible)
	}

	lp[3].initClone(&lp[0])
	lp[3].constrainPositive(3*q + 2)

	lp[0].constrainZero(3*q + 2)
	return b2i(lp[0].feasible) + b2i(lp[1].feasible) + b2i(lp[2].feasible) + b2i(lp[3].feasible)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// buildSurface returns the solution at the current leaf in the requested encoding.
func (tt *treeTraversal[T]) buildSurface() *normal.Surface {
	tab := tt.tab
	tr := tab.tri
	v := tt.node(tt.nTypes).extractSolution(tt.typ)
	if !tab.enc.Octagons {
		return normal.NewSurface(tr, tab.enc, v, tab.columnPerm)
	}

	enc := tab.enc
	an := maths.NewVector[maths.Integer](enc.Len(tt.nTets))
	for t := 0; t < tt.nTets; t++ {
		for j := 0; j < 7; j++ {
			an.Set(10*t+j, v.At(7*t+j))
		}
	}
	if tt.octLevel >= 0 && tt.octLevel < tt.nTypes {
		octTet := tab.columnPerm[3*tt.typeOrder[tt.octLevel]] / 7
		octType := tt.typ[tt.typeOrder[tt.octLevel]] - 4
		an.Set(enc.Oct(octTet, octType), v.At(tab.lpEnc.Quad(octTet, (octType+1)%3)))
		for q := 0; q < 3; q++ {
			an.Set(enc.Quad(octTet, q), maths.Integer{})
		}
	}
	return normal.NewSurface(tr, enc, an, tab.columnPerm)
}

// Percent estimates how far through the search tree the traversal has progressed.
func (tt *treeTraversal[T]) Percent() float64 {
	percent, rng := 0.0, 100.0
	quadsRemaining := tt.nTets
	for i := 0; rng > 0.01 && i < tt.nTypes; i++ {
		t := tt.typ[tt.typeOrder[i]]
		if tt.typeOrder[i] >= tt.nTets {
			rng /= 2
			percent += rng * float64(t)
			continue
		}
		den := float64(3*quadsRemaining + 4)
		switch {
		case tt.octLevel == tt.nTypes || (tt.octLevel >= 0 && tt.octLevel < i):
			rng /= 4
			percent += rng * float64(t)
		case tt.octLevel == i:
			rng /= den
			percent += rng * ((den - 3) + float64(t-4))
		default:
			rng = rng * (den - 3) / (4 * den)
			percent += rng * float64(t)
		}
		quadsRemaining--
	}
	return percent
}
