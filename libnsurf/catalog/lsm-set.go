package catalog

import (
	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/dgraph-io/badger/v3"
)

// LSMSet is a solution set held in an in-memory badger db, for sets too large to keep
// as a plain map.  After one or more calls to TryAddSolution, call Close for cleanup.
type LSMSet struct {
	db *badger.DB
}

var _ gonsurf.SolutionAdder = (*LSMSet)(nil)

func NewLSMSet() *LSMSet {
	return &LSMSet{}
}

func (set *LSMSet) autoOpen() {
	if set.db == nil {
		dbOpts := badger.DefaultOptions("").WithInMemory(true)
		dbOpts.Logger = nil
		dbOpts.MetricsEnabled = false

		var err error
		set.db, err = badger.Open(dbOpts)
		if err != nil {
			panic(err)
		}
	}
}

// TryAddSolution adds S and returns true if no equal solution was added before.
func (set *LSMSet) TryAddSolution(S gonsurf.Solution) bool {
	var keyBuf [512]byte
	return set.tryAdd(appendSolutionKey(keyBuf[:0], S))
}

func (set *LSMSet) tryAdd(key []byte) bool {
	set.autoOpen()

	txn := set.db.NewTransaction(true)
	defer txn.Commit()

	added := false
	_, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		err = txn.Set(key, nil)
		added = true
	}
	if err != nil {
		panic(err)
	}
	return added
}

// Close removes all previously added solutions.
func (set *LSMSet) Close() {
	if set.db != nil {
		set.db.Close()
		set.db = nil
	}
}
