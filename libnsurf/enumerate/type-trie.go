package enumerate

// TypeTrie stores type vectors found so far and answers whether a candidate is dominated by
// one of them.  Vectors a and b are compared entrywise: a dominates b if every non-zero
// entry of a equals the corresponding entry of b.
type TypeTrie struct {
	nTypes int
	root   typeNode
	size   int
}

type typeNode struct {
	child []*typeNode
	here  bool
}

func NewTypeTrie(nTypes int) *TypeTrie {
	return &TypeTrie{
		nTypes: nTypes,
	}
}

func (trie *TypeTrie) Size() int {
	return trie.size
}

func trimZeros(types []int) []int {
	n := len(types)
	for n > 0 && types[n-1] == 0 {
		n--
	}
	return types[:n]
}

// Insert adds the given type vector.
func (trie *TypeTrie) Insert(types []int) {
	node := &trie.root
	for _, t := range trimZeros(types) {
		if node.child == nil {
			node.child = make([]*typeNode, trie.nTypes)
		}
		next := node.child[t]
		if next == nil {
			next = &typeNode{}
			node.child[t] = next
		}
		node = next
	}
	if !node.here {
		node.here = true
		trie.size++
	}
}

// Dominates returns true if some stored vector dominates types.
func (trie *TypeTrie) Dominates(types []int) bool {
	return trie.root.dominates(trimZeros(types), 0)
}

func (node *typeNode) dominates(types []int, level int) bool {
	if node.here {
		return true
	}
	if level >= len(types) || node.child == nil {
		return false
	}
	if next := node.child[0]; next != nil && next.dominates(types, level+1) {
		return true
	}
	if t := types[level]; t != 0 {
		if next := node.child[t]; next != nil && next.dominates(types, level+1) {
			return true
		}
	}
	return false
}
