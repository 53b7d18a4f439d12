package catalog

import (
	"bytes"
	"hash/maphash"

	"github.com/2x3systems/gonsurf/gonsurf"
)

// dropDupes is a hash set of solution encodings, with the encodings packed into large
// shared buffers rather than allocated one by one.
type dropDupes struct {
	hashMap   map[uint64][]byte
	hasher    maphash.Hash
	bufPool   []byte
	bufPoolSz int
	opts      DropDupeOpts
}

const DefaultPoolSz = 32 * 1024

type DropDupeOpts struct {
	PoolSz int // 0 denotes DefaultPoolSz (32k)
}

// NewDropDupes returns an empty set that reports each distinct solution once.
func NewDropDupes(opts DropDupeOpts) gonsurf.SolutionAdder {
	return newDropDupes(opts)
}

func newDropDupes(opts DropDupeOpts) *dropDupes {
	if opts.PoolSz <= 0 {
		opts.PoolSz = DefaultPoolSz
	}
	return &dropDupes{
		hashMap: make(map[uint64][]byte),
		opts:    opts,
	}
}

func (set *dropDupes) Reset() {
	set.bufPoolSz = 0
	for k := range set.hashMap {
		delete(set.hashMap, k)
	}
}

// appendSolutionKey appends a byte encoding of S that differs for any two distinct solutions.
func appendSolutionKey(key []byte, S gonsurf.Solution) []byte {
	key = append(key, byte(S.Coords()))
	for i := 0; i < S.Len(); i++ {
		key = S.Entry(i).Append(key, 10)
		key = append(key, ',')
	}
	return key
}

func (set *dropDupes) TryAddSolution(S gonsurf.Solution) bool {
	var keyBuf [512]byte
	key := appendSolutionKey(keyBuf[:0], S)

	set.hasher.Reset()
	set.hasher.Write(key)
	hash := set.hasher.Sum64()

	existing, found := set.hashMap[hash]
	for found {
		if bytes.Equal(existing, key) {
			return false
		}
		hash++
		existing, found = set.hashMap[hash]
	}

	// New entry: copy the key into the pool, starting a fresh pool when this one is full.
	pos := set.bufPoolSz
	itemLen := len(key)
	if pos+itemLen > cap(set.bufPool) {
		allocSz := max(set.opts.PoolSz, itemLen)
		set.bufPool = make([]byte, allocSz)
		set.bufPoolSz = 0
		pos = 0
	}

	set.hashMap[hash] = append(set.bufPool[pos:pos], key...)
	set.bufPoolSz += itemLen
	return true
}
