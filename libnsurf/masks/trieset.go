package masks

import (
	"fmt"
)

// TrieSet is a multiset of bitmasks stored as a binary radix tree.
//
// A mask is inserted by walking from the root, taking child 0 or 1 according to each bit,
// down to the depth of its last set bit.  Each node counts the masks stored at or beneath it.
type TrieSet struct {
	root trieNode
}

type trieNode struct {
	child       [2]*trieNode
	descendants int // masks stored at or beneath this node
}

// Size returns the number of masks in the multiset.
func (T *TrieSet) Size() int {
	return T.root.descendants
}

// Insert adds one copy of mask to the multiset.
func (T *TrieSet) Insert(mask Bitmask) {
	T.root.descendants++
	last := mask.LastBit()
	node := &T.root
	for pos := 0; pos <= last; pos++ {
		b := 0
		if mask.Get(pos) {
			b = 1
		}
		if node.child[b] == nil {
			node.child[b] = &trieNode{}
		}
		node = node.child[b]
		node.descendants++
	}
}

// endsHere returns the number of masks whose path ends exactly at node.
func (node *trieNode) endsHere() int {
	n := node.descendants
	for _, c := range node.child {
		if c != nil {
			n -= c.descendants
		}
	}
	return n
}

// HasSubset returns true if some stored mask is a subset of superset.
func (T *TrieSet) HasSubset(superset Bitmask) bool {
	if T.root.descendants == 0 {
		return false
	}

	type frame struct {
		node  *trieNode
		level int
	}
	stack := make([]frame, 1, 32)
	stack[0] = frame{&T.root, 0}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Every mask ending here has no set bits at or beyond this level.
		if top.node.endsHere() > 0 {
			return true
		}
		if c := top.node.child[0]; c != nil {
			stack = append(stack, frame{c, top.level + 1})
		}
		if c := top.node.child[1]; c != nil && top.level < superset.Len() && superset.Get(top.level) {
			stack = append(stack, frame{c, top.level + 1})
		}
	}
	return false
}

// HasExtraSuperset returns true if some stored mask is a superset of subset, not counting
// one stored copy each of exc1 and exc2.
//
// exc1 and exc2 are assumed to be members of the multiset.
func (T *TrieSet) HasExtraSuperset(subset, exc1, exc2 Bitmask) bool {
	last := subset.LastBit()
	depth1, depth2 := exc1.LastBit()+1, exc2.LastBit()+1

	type frame struct {
		node  *trieNode
		level int
		on1   bool // the path so far agrees with exc1
		on2   bool // the path so far agrees with exc2
	}
	stack := make([]frame, 1, 32)
	stack[0] = frame{&T.root, 0, true, true}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.level > last {
			junk := 0
			if top.on1 && top.level <= depth1 {
				junk++
			}
			if top.on2 && top.level <= depth2 {
				junk++
			}
			if top.node.descendants > junk {
				return true
			}
			continue
		}

		lvl := top.level
		if c := top.node.child[1]; c != nil {
			stack = append(stack, frame{
				node:  c,
				level: lvl + 1,
				on1:   top.on1 && bitAt(exc1, lvl),
				on2:   top.on2 && bitAt(exc2, lvl),
			})
		}
		if c := top.node.child[0]; c != nil && !subset.Get(lvl) {
			stack = append(stack, frame{
				node:  c,
				level: lvl + 1,
				on1:   top.on1 && !bitAt(exc1, lvl),
				on2:   top.on2 && !bitAt(exc2, lvl),
			})
		}
	}
	return false
}

func bitAt(b Bitmask, i int) bool {
	return i < b.n && b.Get(i)
}

// Clone returns a deep copy of T.
func (T *TrieSet) Clone() *TrieSet {
	dup := &TrieSet{}
	dup.root = *cloneNode(&T.root)
	return dup
}

func cloneNode(src *trieNode) *trieNode {
	dst := &trieNode{
		descendants: src.descendants,
	}
	for i, c := range src.child {
		if c != nil {
			dst.child[i] = cloneNode(c)
		}
	}
	return dst
}

func (T *TrieSet) String() string {
	if T.root.descendants == 1 {
		return "trie containing 1 set"
	}
	return fmt.Sprintf("trie containing %d sets", T.root.descendants)
}
