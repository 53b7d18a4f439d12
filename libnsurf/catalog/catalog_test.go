package catalog_test

import (
	"os"
	"path"
	"testing"

	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/2x3systems/gonsurf/libnsurf/catalog"
	"github.com/2x3systems/gonsurf/libnsurf/enumerate"
	"github.com/2x3systems/gonsurf/libnsurf/normal"
	"github.com/2x3systems/gonsurf/libnsurf/tri"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, cat *catalog.Catalog, T *tri.Triangulation, opts gonsurf.EnumOpts) (uuid.UUID, *normal.SolutionSet) {
	run, err := cat.BeginRun(T, opts)
	require.NoError(t, err)

	want := normal.NewSolutionSet()
	err = enumerate.Enumerate(T, opts, gonsurf.SinkFunc(func(S gonsurf.Solution) {
		want.Emit(S)
		run.Emit(S)
	}))
	require.NoError(t, err)
	require.NoError(t, run.Commit(nil))
	require.EqualValues(t, want.Len(), run.NumSolutions())
	return run.ID(), want
}

func TestBasics(t *testing.T) {
	dir, err := os.MkdirTemp("", "junk*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	opts := catalog.Opts{
		DbPathName: path.Join(dir, "TestBasics"),
	}
	cat, err := catalog.Open(opts)
	if err != nil {
		t.Fatal(err)
	}

	T := tri.TwistedKxI()
	std := gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard}
	quad := gonsurf.EnumOpts{Coords: gonsurf.CoordsQuad}

	if _, found, _ := cat.Lookup(T, std); found {
		t.Fatal("nope")
	}

	stdID, stdWant := record(t, cat, T, std)
	quadID, quadWant := record(t, cat, T, quad)
	require.Equal(t, 8, stdWant.Len())
	require.Equal(t, 6, quadWant.Len())

	id, found, err := cat.Lookup(T, std)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, stdID, id)

	id, found, err = cat.Lookup(T, quad)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, quadID, id)

	// Same triangulation text but different options is a different request
	if _, found, _ := cat.Lookup(T, gonsurf.EnumOpts{Coords: gonsurf.CoordsAlmostNormal}); found {
		t.Fatal("nope")
	}

	require.EqualValues(t, 2, cat.NumRuns())
	require.EqualValues(t, 14, cat.NumSolutions())
	require.NoError(t, cat.Close())

	// Reopen read-only and read everything back
	opts.ReadOnly = true
	cat, err = catalog.Open(opts)
	require.NoError(t, err)
	defer cat.Close()

	require.EqualValues(t, 2, cat.NumRuns())
	require.EqualValues(t, 14, cat.NumSolutions())

	_, err = cat.BeginRun(T, std)
	require.True(t, errors.Is(err, gonsurf.ErrBadCatalogParam))

	T2, surfaces, err := cat.LoadSolutions(stdID)
	require.NoError(t, err)
	require.Equal(t, T.String(), T2.String())
	got := normal.NewSolutionSet()
	for _, S := range surfaces {
		got.Emit(S)
	}
	require.True(t, got.Equal(stdWant))

	rec, err := cat.GetRun(quadID)
	require.NoError(t, err)
	require.Equal(t, "ok", rec.Outcome)
	require.EqualValues(t, 6, rec.NumSolutions)
	require.EqualValues(t, gonsurf.CoordsQuad, rec.Coords)

	runs := 0
	err = cat.SelectRuns(func(rec *catalog.RunRecord) bool {
		runs++
		return true
	})
	require.NoError(t, err)
	require.Equal(t, 2, runs)

	// Solutions come back in emission order and stop when asked
	var idx []uint64
	err = cat.SelectSolutions(quadID, func(rec *catalog.SolutionRecord) bool {
		idx = append(idx, rec.Index)
		return len(idx) < 4
	})
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1, 2, 3}, idx)

	_, err = cat.GetRun(uuid.New())
	require.True(t, errors.Is(err, gonsurf.ErrInvalidArgument))
}

func TestInMemory(t *testing.T) {
	cat, err := catalog.Open(catalog.Opts{})
	require.NoError(t, err)
	defer cat.Close()

	T := tri.LayeredLoopS3()
	opts := gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard}

	run, err := cat.BeginRun(T, opts)
	require.NoError(t, err)

	// Duplicates within a run are recorded once
	var all []gonsurf.Solution
	err = enumerate.Enumerate(T, opts, gonsurf.SinkFunc(func(S gonsurf.Solution) {
		all = append(all, S)
	}))
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, S := range all {
		run.Emit(S)
		run.Emit(S)
	}
	require.EqualValues(t, 3, run.NumSolutions())

	// A failed run is recorded but the request stays unanswered
	require.NoError(t, run.Commit(gonsurf.ErrCancelled))
	if _, found, _ := cat.Lookup(T, opts); found {
		t.Fatal("nope")
	}
	rec, err := cat.GetRun(run.ID())
	require.NoError(t, err)
	require.Equal(t, gonsurf.ErrCancelled.Error(), rec.Outcome)

	// A discarded run leaves nothing behind
	run, err = cat.BeginRun(T, opts)
	require.NoError(t, err)
	run.Emit(all[0])
	run.Discard()
	if _, err = cat.GetRun(run.ID()); err == nil {
		t.Fatal("nope")
	}
	require.EqualValues(t, 1, cat.NumRuns())

	if _, err = catalog.Open(catalog.Opts{ReadOnly: true}); !errors.Is(err, gonsurf.ErrBadCatalogParam) {
		t.Fatal("nope")
	}
}

func TestDropDupes(t *testing.T) {
	lsm := catalog.NewLSMSet()
	defer lsm.Close()

	for _, set := range []gonsurf.SolutionAdder{
		catalog.NewDropDupes(catalog.DropDupeOpts{PoolSz: 16}),
		lsm,
	} {
		checkSolutionAdder(t, set)
	}
}

func checkSolutionAdder(t *testing.T, set gonsurf.SolutionAdder) {
	T := tri.OneTet()

	A := normal.SurfaceOf(T, normal.EncodingStandard, 1, 1, 1, 1, 0, 0, 0)
	B := normal.SurfaceOf(T, normal.EncodingStandard, 0, 0, 0, 0, 1, 0, 0)
	C := normal.SurfaceOf(T, normal.EncodingStandard, 11, 1, 1, 1, 0, 0, 0)
	Aq := normal.SurfaceOf(T, normal.EncodingQuad, 1, 1, 1)

	for _, S := range []gonsurf.Solution{A, B, C, Aq} {
		require.True(t, set.TryAddSolution(S), S.String())
		require.False(t, set.TryAddSolution(S), S.String())
	}
	require.False(t, set.TryAddSolution(normal.SurfaceOf(T, normal.EncodingStandard, 1, 1, 1, 1, 0, 0, 0)))
}
