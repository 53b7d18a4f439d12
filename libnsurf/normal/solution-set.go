package normal

import (
	"sync"

	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/emirpasic/gods/trees/redblacktree"
)

// CompareSolutions orders solutions by length and then lexicographically by coordinate.
func CompareSolutions(A, B gonsurf.Solution) int {
	if d := A.Len() - B.Len(); d != 0 {
		if d < 0 {
			return -1
		}
		return 1
	}
	SA, okA := A.(*Surface)
	SB, okB := B.(*Surface)
	for i := 0; i < A.Len(); i++ {
		var d int
		if okA && okB {
			d = SA.vec.At(i).Cmp(SB.vec.At(i))
		} else {
			d = A.Entry(i).Cmp(B.Entry(i))
		}
		if d != 0 {
			return d
		}
	}
	return 0
}

// SolutionSet is a sorted set of solutions, safe for concurrent use.
type SolutionSet struct {
	mu   sync.Mutex
	tree redblacktree.Tree
}

func NewSolutionSet() *SolutionSet {
	set := &SolutionSet{}
	set.tree.Comparator = func(A, B interface{}) int {
		return CompareSolutions(A.(gonsurf.Solution), B.(gonsurf.Solution))
	}
	return set
}

// TryAddSolution adds S and returns true if no equal solution was present.
func (set *SolutionSet) TryAddSolution(S gonsurf.Solution) bool {
	set.mu.Lock()
	defer set.mu.Unlock()

	if _, found := set.tree.Get(S); found {
		return false
	}
	set.tree.Put(S, nil)
	return true
}

// Emit adds S, so a SolutionSet can serve as an enumeration sink.
func (set *SolutionSet) Emit(S gonsurf.Solution) {
	set.TryAddSolution(S)
}

func (set *SolutionSet) Contains(S gonsurf.Solution) bool {
	set.mu.Lock()
	defer set.mu.Unlock()

	_, found := set.tree.Get(S)
	return found
}

func (set *SolutionSet) Len() int {
	set.mu.Lock()
	defer set.mu.Unlock()

	return set.tree.Size()
}

// Solutions returns the members in sorted order.
func (set *SolutionSet) Solutions() []gonsurf.Solution {
	set.mu.Lock()
	defer set.mu.Unlock()

	all := make([]gonsurf.Solution, 0, set.tree.Size())
	itr := set.tree.Iterator()
	for itr.Next() {
		all = append(all, itr.Key().(gonsurf.Solution))
	}
	return all
}

// Equal returns true if both sets hold the same solutions.
func (set *SolutionSet) Equal(other *SolutionSet) bool {
	A, B := set.Solutions(), other.Solutions()
	if len(A) != len(B) {
		return false
	}
	for i := range A {
		if CompareSolutions(A[i], B[i]) != 0 {
			return false
		}
	}
	return true
}
