// Package catalog keeps enumeration results in a badger store so that repeated requests
// can be answered without enumerating again.
package catalog

import (
	"bytes"
	"encoding/binary"
	"runtime"
	"sync"
	"time"

	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/2x3systems/gonsurf/libnsurf/maths"
	"github.com/2x3systems/gonsurf/libnsurf/normal"
	"github.com/2x3systems/gonsurf/libnsurf/tri"
	"github.com/dgraph-io/badger/v3"
	"github.com/gogo/protobuf/proto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey                           => CatalogState

	gRunPrefix, RunID (16 bytes)               => RunRecord

	gSolutionPrefix, RunID, Index (8 bytes BE) => SolutionRecord
	...

	gRequestPrefix, RequestKey                 => RunID

where RequestKey is the triangulation's gluing list, NUL, then the enumeration options
that affect the result.  Solutions of a run are therefore contiguous and in emission order,
and a request can be mapped to its most recent committed run with one lookup.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
	gRunPrefix       = []byte{0x01}
	gSolutionPrefix  = []byte{0x02}
	gRequestPrefix   = []byte{0x03}
)

const (
	kMajorVers = 2024
	kMinorVers = 1
)

type Opts struct {
	DbPathName string // empty denotes an in-memory catalog
	ReadOnly   bool
}

// Catalog is a db wrapper holding solution lists of past enumeration runs.
type Catalog struct {
	mu         sync.Mutex
	readOnly   bool
	stateDirty bool
	state      CatalogState
	db         *badger.DB
}

func Open(opts Opts) (*Catalog, error) {
	cat := &Catalog{
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(gonsurf.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = true
		cat.state.MajorVers = kMajorVers
		cat.state.MinorVers = kMinorVers
	}
	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = errors.Wrapf(gonsurf.ErrBadCatalogParam, "catalog version %d.%d is incompatible", cat.state.MajorVers, cat.state.MinorVers)
	}
	if err != nil {
		cat.Close()
		return nil, err
	}

	klog.V(2).Infof("catalog: opened %q with %d runs", opts.DbPathName, cat.state.NumRuns)
	return cat, nil
}

func (cat *Catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshal(val, &cat.state)
		})
	})
}

func (cat *Catalog) flushState() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if !cat.stateDirty || cat.readOnly {
		return nil
	}
	stateBuf, err := proto.Marshal(&cat.state)
	if err != nil {
		return err
	}
	err = cat.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gCatalogStateKey, stateBuf)
	})
	if err == nil {
		cat.stateDirty = false
	}
	return err
}

func (cat *Catalog) Close() error {
	var err error
	if cat.db != nil {
		err = cat.flushState()
		if closeErr := cat.db.Close(); err == nil {
			err = closeErr
		}
		cat.db = nil
	}
	return err
}

func (cat *Catalog) IsReadOnly() bool {
	return cat.readOnly
}

// NumRuns returns the number of committed runs.
func (cat *Catalog) NumRuns() uint64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return cat.state.NumRuns
}

// NumSolutions returns the number of solutions over all committed runs.
func (cat *Catalog) NumSolutions() uint64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return cat.state.NumSolutions
}

func unmarshal(val []byte, msg proto.Message) error {
	if err := proto.Unmarshal(val, msg); err != nil {
		return errors.Wrap(gonsurf.ErrUnmarshal, err.Error())
	}
	return nil
}

func formRequestKey(key []byte, T *tri.Triangulation, opts *gonsurf.EnumOpts) []byte {
	key = append(key, gRequestPrefix...)
	key = append(key, T.String()...)
	key = append(key, 0)
	key = append(key, byte(opts.Coords), byte(opts.Which), byte(opts.Algorithm), byte(opts.Ban.Kind))
	key = binary.BigEndian.AppendUint32(key, uint32(opts.Constraints))
	key = binary.BigEndian.AppendUint32(key, uint32(opts.Ban.Edge))
	return key
}

func formRunKey(key []byte, id uuid.UUID) []byte {
	key = append(key, gRunPrefix...)
	return append(key, id[:]...)
}

func formSolutionKey(key []byte, id uuid.UUID, idx uint64) []byte {
	key = append(key, gSolutionPrefix...)
	key = append(key, id[:]...)
	return binary.BigEndian.AppendUint64(key, idx)
}

// Lookup returns the most recent committed run for the given request.
func (cat *Catalog) Lookup(T *tri.Triangulation, opts gonsurf.EnumOpts) (id uuid.UUID, found bool, err error) {
	var keyBuf [256]byte
	key := formRequestKey(keyBuf[:0], T, &opts)
	err = cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id, err = uuid.FromBytes(val)
			return err
		})
	})
	if err == badger.ErrKeyNotFound {
		return uuid.Nil, false, nil
	}
	return id, err == nil, err
}

// GetRun reads the record of a committed run.
func (cat *Catalog) GetRun(id uuid.UUID) (*RunRecord, error) {
	var keyBuf [32]byte
	rec := &RunRecord{}
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(formRunKey(keyBuf[:0], id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshal(val, rec)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, errors.Wrapf(gonsurf.ErrInvalidArgument, "no run %v", id)
	}
	return rec, err
}

// SelectRuns calls onHit with each committed run, in RunID order, until onHit returns false.
func (cat *Catalog) SelectRuns(onHit func(rec *RunRecord) bool) error {
	return cat.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         gRunPrefix,
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			rec := &RunRecord{}
			err := it.Item().Value(func(val []byte) error {
				return unmarshal(val, rec)
			})
			if err != nil {
				return err
			}
			if !onHit(rec) {
				break
			}
		}
		return nil
	})
}

// SelectSolutions calls onHit with each solution of the given run, in emission order, until
// onHit returns false.
func (cat *Catalog) SelectSolutions(id uuid.UUID, onHit func(rec *SolutionRecord) bool) error {
	var keyBuf [32]byte
	prefix := append(append(keyBuf[:0], gSolutionPrefix...), id[:]...)

	return cat.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   300,
			Prefix:         prefix,
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			rec := &SolutionRecord{}
			err := it.Item().Value(func(val []byte) error {
				return unmarshal(val, rec)
			})
			if err != nil {
				return err
			}
			if !onHit(rec) {
				break
			}
		}
		return nil
	})
}

// LoadSolutions rebuilds the triangulation and solutions of a committed run.
func (cat *Catalog) LoadSolutions(id uuid.UUID) (*tri.Triangulation, []*normal.Surface, error) {
	rec, err := cat.GetRun(id)
	if err != nil {
		return nil, nil, err
	}
	T, err := tri.Parse(rec.Triangulation)
	if err != nil {
		return nil, nil, err
	}

	var all []*normal.Surface
	var decodeErr error
	err = cat.SelectSolutions(id, func(sol *SolutionRecord) bool {
		var S *normal.Surface
		S, decodeErr = sol.Surface(T)
		if decodeErr != nil {
			return false
		}
		all = append(all, S)
		return true
	})
	if err == nil {
		err = decodeErr
	}
	if err != nil {
		return nil, nil, err
	}
	return T, all, nil
}

// Surface rebuilds the solution as a surface in T.
func (rec *SolutionRecord) Surface(T *tri.Triangulation) (*normal.Surface, error) {
	enc, err := normal.EncodingFor(gonsurf.Coords(rec.Coords))
	if err != nil {
		return nil, err
	}
	if len(rec.Entries) != enc.Len(T.Size()) {
		return nil, errors.Wrapf(gonsurf.ErrUnmarshal, "solution %d has %d entries", rec.Index, len(rec.Entries))
	}
	vec := maths.NewVector[maths.Integer](len(rec.Entries))
	for i, str := range rec.Entries {
		x, err := maths.ParseInteger(str)
		if err != nil {
			return nil, err
		}
		vec.Set(i, x)
	}
	var perm []int
	if len(rec.ColumnPerm) > 0 {
		perm = make([]int, len(rec.ColumnPerm))
		for i, c := range rec.ColumnPerm {
			perm[i] = int(c)
		}
	}
	return normal.NewSurface(T, enc, vec, perm), nil
}

// Run collects the solutions of one enumeration run.  It is a gonsurf.Sink; nothing becomes
// visible in the catalog until Commit.
type Run struct {
	cat   *Catalog
	id    uuid.UUID
	rec   RunRecord
	opts  gonsurf.EnumOpts
	T     *tri.Triangulation
	start time.Time
	wb    *badger.WriteBatch
	dupes *dropDupes
	err   error
}

// BeginRun starts a run recording solutions of T under opts.
func (cat *Catalog) BeginRun(T *tri.Triangulation, opts gonsurf.EnumOpts) (*Run, error) {
	if cat.readOnly {
		return nil, errors.Wrap(gonsurf.ErrBadCatalogParam, "catalog is read-only")
	}
	run := &Run{
		cat:   cat,
		id:    uuid.New(),
		opts:  opts,
		T:     T,
		start: time.Now(),
		wb:    cat.db.NewWriteBatch(),
		dupes: newDropDupes(DropDupeOpts{}),
	}
	run.rec = RunRecord{
		Triangulation: T.String(),
		Coords:        int32(opts.Coords),
		Which:         int32(opts.Which),
		Algorithm:     int32(opts.Algorithm),
		Constraints:   uint32(opts.Constraints),
		BanKind:       int32(opts.Ban.Kind),
		BanEdge:       int32(opts.Ban.Edge),
		StartedUnix:   run.start.Unix(),
	}
	run.rec.RunID = append([]byte(nil), run.id[:]...)
	return run, nil
}

func (run *Run) ID() uuid.UUID {
	return run.id
}

// NumSolutions returns the number of distinct solutions recorded so far.
func (run *Run) NumSolutions() uint64 {
	return run.rec.NumSolutions
}

// Emit records S unless an equal solution was already recorded in this run.
func (run *Run) Emit(S gonsurf.Solution) {
	if run.err != nil || !run.dupes.TryAddSolution(S) {
		return
	}

	rec := &SolutionRecord{
		Index:        run.rec.NumSolutions,
		Coords:       int32(S.Coords()),
		AlmostNormal: S.AlmostNormal(),
		Entries:      make([]string, S.Len()),
	}
	for i := range rec.Entries {
		rec.Entries[i] = S.Entry(i).String()
	}
	if perm := S.ColumnPerm(); len(perm) > 0 {
		rec.ColumnPerm = make([]int32, len(perm))
		for i, c := range perm {
			rec.ColumnPerm[i] = int32(c)
		}
	}

	val, err := proto.Marshal(rec)
	if err == nil {
		err = run.wb.Set(formSolutionKey(nil, run.id, rec.Index), val)
	}
	if err != nil {
		run.err = err
		return
	}
	run.rec.NumSolutions++
}

// Commit writes the run record and points the request at this run.  outcome is the error
// (if any) the enumeration returned; a cancelled or failed run is recorded but does not
// replace an earlier run of the same request.
func (run *Run) Commit(outcome error) error {
	if run.err != nil {
		run.wb.Cancel()
		return run.err
	}
	if err := run.wb.Flush(); err != nil {
		return err
	}

	run.rec.DurationNanos = int64(time.Since(run.start))
	run.rec.Outcome = "ok"
	if outcome != nil {
		run.rec.Outcome = outcome.Error()
	}
	val, err := proto.Marshal(&run.rec)
	if err != nil {
		return err
	}

	cat := run.cat
	err = cat.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(formRunKey(nil, run.id), val); err != nil {
			return err
		}
		if outcome != nil {
			return nil
		}
		return txn.Set(formRequestKey(nil, run.T, &run.opts), bytes.Clone(run.id[:]))
	})
	if err != nil {
		return err
	}

	cat.mu.Lock()
	cat.state.NumRuns++
	cat.state.NumSolutions += run.rec.NumSolutions
	cat.stateDirty = true
	cat.mu.Unlock()

	klog.V(2).Infof("catalog: committed run %v with %d solutions (%s)", run.id, run.rec.NumSolutions, run.rec.Outcome)
	return nil
}

// Discard drops everything recorded by an uncommitted run.
func (run *Run) Discard() {
	run.wb.Cancel()
}
