package enumerate

import (
	"errors"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/2x3systems/gonsurf/libnsurf/maths"
	"github.com/2x3systems/gonsurf/libnsurf/normal"
	"github.com/2x3systems/gonsurf/libnsurf/tri"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	name string
	make func() *tri.Triangulation

	// expected vertex counts in quad, standard and almost normal coordinates (-1: unchecked)
	quad, std, an int
}

var fixtures = []fixture{
	{"one-tet", tri.OneTet, 3, 7, 10},
	{"gieseking", tri.Gieseking, 0, 1, 1},
	{"figure-eight", tri.FigureEight, 4, 1, 1},
	{"layered-loop-s3", tri.LayeredLoopS3, 1, 3, 4},
	{"lst-123", tri.LST123, 3, 4, -1},
	{"twisted-kxi", tri.TwistedKxI, 6, 8, 13},
	{"doubled-tet", tri.DoubledTet, 3, 7, -1},
	{"layered-loop-c2", func() *tri.Triangulation { return tri.LayeredLoop(2, false) }, 3, 5, 5},
	{"layered-loop-twisted-c3", func() *tri.Triangulation { return tri.LayeredLoop(3, true) }, 4, 5, 5},
}

var allCoords = []gonsurf.Coords{gonsurf.CoordsQuad, gonsurf.CoordsStandard, gonsurf.CoordsAlmostNormal}

func collect(t *testing.T, T *tri.Triangulation, opts gonsurf.EnumOpts) *normal.SolutionSet {
	set := normal.NewSolutionSet()
	count := 0
	err := Enumerate(T, opts, gonsurf.SinkFunc(func(S gonsurf.Solution) {
		count++
		set.Emit(S)
	}))
	require.NoError(t, err)
	require.Equal(t, count, set.Len(), "duplicate solutions emitted")
	return set
}

// checkSolution verifies the properties every emitted vertex solution must have.
func checkSolution(t *testing.T, T *tri.Triangulation, sol gonsurf.Solution) *normal.Surface {
	S, ok := sol.(*normal.Surface)
	require.True(t, ok)
	require.Equal(t, S.Encoding().Len(T.Size()), S.Len())
	require.False(t, S.IsZero())

	v := S.Vector()
	for i := 0; i < v.Len(); i++ {
		require.True(t, v.At(i).Sign() >= 0, "negative coordinate in %v", S)
	}
	require.True(t, v.GCD().Equals(maths.NewInteger(1)), "not primitive: %v", S)

	E := normal.MatchingEquations(T, S.Encoding())
	require.True(t, E.MulVector(v).IsZero(), "matching equations fail on %v", S)
	require.True(t, S.IsDisjointValid(), "disjointness fails on %v", S)
	return S
}

func TestVertexCounts(t *testing.T) {
	for _, fx := range fixtures {
		T := fx.make()
		for i, c := range allCoords {
			want := []int{fx.quad, fx.std, fx.an}[i]
			set := collect(t, T, gonsurf.EnumOpts{Coords: c})
			for _, S := range set.Solutions() {
				checkSolution(t, T, S)
			}
			if want >= 0 {
				require.Equal(t, want, set.Len(), "%s in %v coordinates", fx.name, c)
			}
		}
	}
}

func TestEnginesAgree(t *testing.T) {
	for _, fx := range fixtures {
		T := fx.make()
		for _, c := range allCoords {
			tree := collect(t, T, gonsurf.EnumOpts{Coords: c, Algorithm: gonsurf.AlgorithmTree})
			dd := collect(t, T, gonsurf.EnumOpts{Coords: c, Algorithm: gonsurf.AlgorithmDoubleDescription})
			for _, S := range dd.Solutions() {
				checkSolution(t, T, S)
			}
			require.True(t, tree.Equal(dd), "%s in %v: tree %v, dd %v", fx.name, c, tree.Solutions(), dd.Solutions())
		}
	}
}

func TestLongerLoops(t *testing.T) {
	for _, T := range []*tri.Triangulation{tri.LayeredLoop(5, false), tri.LayeredLoop(6, true)} {
		for _, c := range []gonsurf.Coords{gonsurf.CoordsQuad, gonsurf.CoordsStandard} {
			tree := collect(t, T, gonsurf.EnumOpts{Coords: c, Algorithm: gonsurf.AlgorithmTree})
			dd := collect(t, T, gonsurf.EnumOpts{Coords: c, Algorithm: gonsurf.AlgorithmDoubleDescription})
			require.NotZero(t, tree.Len())
			require.True(t, tree.Equal(dd), "%v in %v", T, c)
			for _, S := range tree.Solutions() {
				checkSolution(t, T, S)
			}
		}
	}
}

func TestDoubleDescriptionColumns(t *testing.T) {
	T := tri.TwistedKxI()
	for _, c := range allCoords {
		set := collect(t, T, gonsurf.EnumOpts{Coords: c, Algorithm: gonsurf.AlgorithmDoubleDescription})
		for _, sol := range set.Solutions() {
			S := checkSolution(t, T, sol)
			colPerm := S.ColumnPerm()
			require.Len(t, colPerm, S.Len())
			for i, col := range colPerm {
				require.Equal(t, i, col)
			}
		}
	}
}

func TestLSTRays(t *testing.T) {
	T := tri.LST123()
	set := collect(t, T, gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard})

	for _, coords := range [][]int64{
		{1, 1, 1, 1, 0, 0, 0},
		{0, 0, 1, 1, 1, 0, 0},
		{1, 1, 0, 0, 0, 0, 1},
		{0, 0, 0, 0, 0, 1, 0},
	} {
		S := normal.SurfaceOf(T, normal.EncodingStandard, coords...)
		require.True(t, set.Contains(S), "missing %v", S)
	}
}

func TestNativeMatchesArbitrary(t *testing.T) {
	for _, fx := range fixtures {
		T := fx.make()
		for _, c := range allCoords {
			enc, err := normal.EncodingFor(c)
			require.NoError(t, err)
			bans, err := newBanConstraint(T, enc, gonsurf.BanPolicy{})
			require.NoError(t, err)
			tab := NewInitialTableau(T, enc, extraConstraint{}, true)
			bans.attach(tab)
			require.True(t, FitsNative(CoefficientBound(tab)))

			r := &run{T: T, opts: &gonsurf.EnumOpts{}, enc: enc, bans: bans}
			A, B := normal.NewSolutionSet(), normal.NewSolutionSet()
			require.NoError(t, enumerateTree[maths.Native](r, tab, A, newRunStats("test", "test")))
			require.NoError(t, enumerateTree[maths.Integer](r, tab, B, newRunStats("test", "test")))
			require.True(t, A.Equal(B), "%s in %v", fx.name, c)
		}
	}
}

func TestProjectAndLift(t *testing.T) {
	T := tri.LayeredLoopS3()
	std := collect(t, T, gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard})
	quad := collect(t, T, gonsurf.EnumOpts{Coords: gonsurf.CoordsQuad})
	require.NotZero(t, quad.Len())

	for _, sol := range quad.Solutions() {
		Q := sol.(*normal.Surface)
		L, err := normal.LiftQuad(Q)
		require.NoError(t, err)
		v := L.Vector()
		v.ScaleDown()
		lifted := normal.NewSurface(T, normal.EncodingStandard, v, nil)
		require.True(t, std.Contains(lifted), "lift %v of %v is not a vertex", lifted, Q)

		P, err := normal.ProjectToQuad(lifted)
		require.NoError(t, err)
		w := P.Vector()
		w.ScaleDown()
		require.True(t, w.Equal(Q.Vector()))
	}

	// Every non vertex-linking standard vertex projects onto a quad vertex up to scale.
	for _, sol := range std.Solutions() {
		S := sol.(*normal.Surface)
		if S.IsVertexLinking() {
			continue
		}
		P, err := normal.ProjectToQuad(S)
		require.NoError(t, err)
		w := P.Vector()
		w.ScaleDown()
		require.True(t, quad.Contains(normal.NewSurface(T, normal.EncodingQuad, w, nil)))
	}
}

func TestBoundaryBans(t *testing.T) {
	// Every disc in LST(1,2,3) and in a lone tetrahedron meets the boundary.
	for _, tc := range []struct {
		T    *tri.Triangulation
		kind gonsurf.BanKind
	}{
		{tri.LST123(), gonsurf.BanBoundary},
		{tri.LST123(), gonsurf.BanTorusBoundary},
		{tri.OneTet(), gonsurf.BanBoundary},
	} {
		for _, algo := range []gonsurf.Algorithm{gonsurf.AlgorithmTree, gonsurf.AlgorithmDoubleDescription} {
			set := collect(t, tc.T, gonsurf.EnumOpts{
				Coords:    gonsurf.CoordsStandard,
				Algorithm: algo,
				Ban:       gonsurf.BanPolicy{Kind: tc.kind},
			})
			require.Zero(t, set.Len(), "%v with %v bans", algo, tc.kind)
		}
	}

	// The boundary of a lone tetrahedron is a sphere, so a torus ban leaves it alone.
	plainTet := collect(t, tri.OneTet(), gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard})
	torusTet := collect(t, tri.OneTet(), gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard, Ban: gonsurf.BanPolicy{Kind: gonsurf.BanTorusBoundary}})
	require.True(t, plainTet.Equal(torusTet))

	// An ideal cusp is not a real boundary, so nothing is banned.
	T := tri.FigureEight()
	plain := collect(t, T, gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard})
	torus := collect(t, T, gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard, Ban: gonsurf.BanPolicy{Kind: gonsurf.BanTorusBoundary}})
	require.True(t, plain.Equal(torus))

	_, err := newBanConstraint(T, normal.EncodingQuad, gonsurf.BanPolicy{Kind: gonsurf.BanBoundary})
	require.True(t, errors.Is(err, gonsurf.ErrUnsupportedCombination))
}

func TestEdgeBans(t *testing.T) {
	for _, fx := range fixtures {
		T := fx.make()
		skel := T.Skeleton()
		for e := range skel.Edges {
			for _, c := range allCoords {
				enc, _ := normal.EncodingFor(c)
				policy := gonsurf.BanPolicy{Kind: gonsurf.BanEdge, Edge: e}
				bans, err := newBanConstraint(T, enc, policy)
				require.NoError(t, err)

				tree := collect(t, T, gonsurf.EnumOpts{Coords: c, Ban: policy})
				dd := collect(t, T, gonsurf.EnumOpts{Coords: c, Ban: policy, Algorithm: gonsurf.AlgorithmDoubleDescription})
				require.True(t, tree.Equal(dd), "%s edge %d in %v", fx.name, e, c)

				for _, sol := range tree.Solutions() {
					S := checkSolution(t, T, sol)
					for i := 0; i < S.Len(); i++ {
						if bans.Banned(i) && !S.At(i).IsZero() {
							t.Fatal("nope")
						}
					}
				}
			}
		}

		err := Enumerate(T, gonsurf.EnumOpts{Ban: gonsurf.BanPolicy{Kind: gonsurf.BanEdge, Edge: len(skel.Edges)}}, gonsurf.SinkFunc(func(gonsurf.Solution) {
			t.Fatal("nope")
		}))
		require.True(t, errors.Is(err, gonsurf.ErrInvalidArgument))
	}
}

func TestEulerConstraints(t *testing.T) {
	for _, T := range []*tri.Triangulation{tri.LayeredLoopS3(), tri.TwistedKxI(), tri.LST123(), tri.OneTet(), tri.DoubledTet()} {
		for _, c := range []gonsurf.Coords{gonsurf.CoordsStandard, gonsurf.CoordsAlmostNormal} {
			pos := collect(t, T, gonsurf.EnumOpts{Coords: c, Constraints: gonsurf.ConstraintEulerPositive})
			for _, sol := range pos.Solutions() {
				S := checkSolution(t, T, sol)
				chi, err := S.EulerChar()
				require.NoError(t, err)
				require.True(t, chi.Sign() > 0, "euler characteristic %v for %v", chi, S)
			}
		}

		// Vertex links are spheres or discs here, so some solution has positive Euler characteristic.
		pos := collect(t, T, gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard, Constraints: gonsurf.ConstraintEulerPositive})
		require.NotZero(t, pos.Len())

		zero := collect(t, T, gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard, Constraints: gonsurf.ConstraintEulerZero})
		for _, sol := range zero.Solutions() {
			S := checkSolution(t, T, sol)
			chi, err := S.EulerChar()
			require.NoError(t, err)
			require.True(t, chi.IsZero(), "euler characteristic %v for %v", chi, S)
		}
		dd := collect(t, T, gonsurf.EnumOpts{
			Coords:      gonsurf.CoordsStandard,
			Constraints: gonsurf.ConstraintEulerZero,
			Algorithm:   gonsurf.AlgorithmDoubleDescription,
		})
		require.True(t, zero.Equal(dd))
	}
}

type fakeSlopes struct {
	rows [2][]*big.Int
	err  error
}

func (src *fakeSlopes) SlopeRows(triangulation string, numTets int) ([2][]*big.Int, error) {
	return src.rows, src.err
}

func TestNonSpun(t *testing.T) {
	T := tri.FigureEight()
	n := T.Size()
	all := collect(t, T, gonsurf.EnumOpts{Coords: gonsurf.CoordsQuad})
	require.Equal(t, 4, all.Len())

	// Pick a quadrilateral that some but not all vertices use.
	col := 0
	for c := 0; c < 3*n; c++ {
		used := 0
		for _, S := range all.Solutions() {
			if S.Entry(c).Sign() != 0 {
				used++
			}
		}
		if used > 0 && used < all.Len() {
			col = c
			break
		}
	}

	src := &fakeSlopes{}
	src.rows[0] = make([]*big.Int, 3*n)
	src.rows[1] = make([]*big.Int, 3*n)
	src.rows[0][col] = big.NewInt(1)

	want := normal.NewSolutionSet()
	for _, S := range all.Solutions() {
		if S.Entry(col).Sign() == 0 {
			want.Emit(S)
		}
	}

	for _, algo := range []gonsurf.Algorithm{gonsurf.AlgorithmTree, gonsurf.AlgorithmDoubleDescription} {
		got := collect(t, T, gonsurf.EnumOpts{
			Coords:      gonsurf.CoordsQuad,
			Constraints: gonsurf.ConstraintNonSpun,
			Algorithm:   algo,
			Slopes:      src,
		})
		require.True(t, want.Equal(got), "%v: want %v, got %v", algo, want.Solutions(), got.Solutions())
	}

	// Missing or failing sources give an empty result.
	for _, slopes := range []gonsurf.SlopeSource{nil, &fakeSlopes{err: errors.New("no hyperbolic structure")}} {
		none := collect(t, T, gonsurf.EnumOpts{Coords: gonsurf.CoordsQuad, Constraints: gonsurf.ConstraintNonSpun, Slopes: slopes})
		require.Zero(t, none.Len())
	}
	short := &fakeSlopes{}
	short.rows[0] = make([]*big.Int, 1)
	require.Zero(t, collect(t, T, gonsurf.EnumOpts{Coords: gonsurf.CoordsQuad, Constraints: gonsurf.ConstraintNonSpun, Slopes: short}).Len())

	huge := &fakeSlopes{}
	huge.rows[0] = make([]*big.Int, 3*n)
	huge.rows[1] = make([]*big.Int, 3*n)
	huge.rows[0][0] = new(big.Int).Lsh(big.NewInt(1), 80)
	err := Enumerate(T, gonsurf.EnumOpts{Coords: gonsurf.CoordsQuad, Constraints: gonsurf.ConstraintNonSpun, Slopes: huge}, normal.NewSolutionSet())
	require.True(t, errors.Is(err, gonsurf.ErrCoefficientRange))

	// Non-ideal triangulations are a caller error.
	err = Enumerate(tri.LayeredLoopS3(), gonsurf.EnumOpts{Coords: gonsurf.CoordsQuad, Constraints: gonsurf.ConstraintNonSpun, Slopes: src}, normal.NewSolutionSet())
	require.True(t, errors.Is(err, gonsurf.ErrInvalidArgument))

	// Non-orientable cusps cannot carry slopes.
	require.Zero(t, collect(t, tri.Gieseking(), gonsurf.EnumOpts{Coords: gonsurf.CoordsQuad, Constraints: gonsurf.ConstraintNonSpun, Slopes: src}).Len())
}

func TestUnsupported(t *testing.T) {
	T := tri.FigureEight()
	for _, opts := range []gonsurf.EnumOpts{
		{Which: gonsurf.WhichFundamental},
		{Coords: gonsurf.CoordsStandard, Constraints: gonsurf.ConstraintEulerPositive | gonsurf.ConstraintEulerZero},
		{Coords: gonsurf.CoordsQuad, Constraints: gonsurf.ConstraintNonSpun | gonsurf.ConstraintEulerZero},
		{Coords: gonsurf.CoordsAlmostNormal, Constraints: gonsurf.ConstraintNonSpun},
		{Coords: gonsurf.CoordsStandard, Constraints: gonsurf.ConstraintNonSpun},
		{Coords: gonsurf.CoordsQuad, Constraints: gonsurf.ConstraintEulerPositive},
		{Coords: gonsurf.CoordsQuad, Constraints: gonsurf.ConstraintEulerZero},
		{Coords: gonsurf.CoordsAlmostNormal, Constraints: gonsurf.ConstraintEulerZero},
		{Coords: gonsurf.CoordsStandard, Constraints: gonsurf.ConstraintEulerPositive, Algorithm: gonsurf.AlgorithmDoubleDescription},
		{Coords: gonsurf.CoordsQuad, Which: gonsurf.WhichOneOf},
		{Coords: gonsurf.CoordsStandard, Which: gonsurf.WhichOneOf, Algorithm: gonsurf.AlgorithmDoubleDescription},
	} {
		err := Enumerate(T, opts, gonsurf.SinkFunc(func(gonsurf.Solution) {
			t.Fatal("nope")
		}))
		require.True(t, errors.Is(err, gonsurf.ErrUnsupportedCombination), "%+v: %v", opts, err)

		var ce *gonsurf.ComponentError
		require.True(t, errors.As(err, &ce))
		require.NotEmpty(t, ce.Component)
	}

	err := Enumerate(T, gonsurf.EnumOpts{Coords: gonsurf.Coords(7)}, normal.NewSolutionSet())
	require.True(t, errors.Is(err, gonsurf.ErrBadEncoding))
	err = Enumerate(nil, gonsurf.EnumOpts{}, normal.NewSolutionSet())
	require.True(t, errors.Is(err, gonsurf.ErrInvalidArgument))
	err = Enumerate(T, gonsurf.EnumOpts{Algorithm: gonsurf.Algorithm(9)}, normal.NewSolutionSet())
	require.True(t, errors.Is(err, gonsurf.ErrInvalidArgument))
}

func TestOverflowCap(t *testing.T) {
	for _, c := range allCoords {
		err := Enumerate(tri.FigureEight(), gonsurf.EnumOpts{
			Coords:          c,
			CoefficientBits: 4,
		}, gonsurf.SinkFunc(func(gonsurf.Solution) {
			t.Fatal("nope")
		}))
		require.True(t, errors.Is(err, gonsurf.ErrNumericOverflow))
		require.Equal(t, "overflow", errorLabel(err))
	}

	// A generous cap changes nothing.
	set := collect(t, tri.TwistedKxI(), gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard, CoefficientBits: 4096})
	require.Equal(t, 8, set.Len())

	err := catchOverflow(func() error {
		maths.Native(1 << 62).Mul(maths.Native(4))
		return nil
	})
	require.True(t, errors.Is(err, gonsurf.ErrNumericOverflow))

	// Slope rows near 2^40 fit in an int64 but their products during pivoting do not.
	T := tri.FigureEight()
	n := T.Size()
	extra := extraConstraint{kind: extraNonSpun, rows: [][]int64{make([]int64, 3*n), make([]int64, 3*n)}}
	for c := 0; c < 3*n; c++ {
		extra.rows[0][c] = 1<<40 + int64(7919*c) + 1
		extra.rows[1][c] = 1<<41 - int64(104729*c) - 3
	}
	bans, err := newBanConstraint(T, normal.EncodingQuad, gonsurf.BanPolicy{})
	require.NoError(t, err)
	tab := NewInitialTableau(T, normal.EncodingQuad, extra, true)
	bans.attach(tab)
	require.False(t, FitsNative(CoefficientBound(tab)))

	r := &run{T: T, opts: &gonsurf.EnumOpts{}, enc: normal.EncodingQuad, extra: extra, bans: bans}
	treeSet := normal.NewSolutionSet()
	err = catchOverflow(func() error {
		return enumerateTree[maths.Native](r, tab, treeSet, newRunStats("test", "test"))
	})
	require.True(t, errors.Is(err, gonsurf.ErrNumericOverflow), "%v", err)

	// Arbitrary precision gets through the same tableau.
	require.NoError(t, enumerateTree[maths.Integer](r, tab, normal.NewSolutionSet(), newRunStats("test", "test")))
}

func TestCancellation(t *testing.T) {
	T := tri.TwistedKxI()
	for _, algo := range []gonsurf.Algorithm{gonsurf.AlgorithmTree, gonsurf.AlgorithmDoubleDescription} {
		var full []gonsurf.Solution
		require.NoError(t, Enumerate(T, gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard, Algorithm: algo}, gonsurf.SinkFunc(func(S gonsurf.Solution) {
			full = append(full, S)
		})))
		require.Equal(t, 8, len(full))

		// Cancelled before the first feasibility test.
		cancel := &atomic.Bool{}
		cancel.Store(true)
		err := Enumerate(T, gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard, Algorithm: algo, Cancel: cancel}, gonsurf.SinkFunc(func(gonsurf.Solution) {
			t.Fatal("nope")
		}))
		require.True(t, errors.Is(err, gonsurf.ErrCancelled))

		// Cancelled part way through: what was emitted is a prefix of the full run.
		for stop := 1; stop < len(full); stop++ {
			cancel := &atomic.Bool{}
			var got []gonsurf.Solution
			err := Enumerate(T, gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard, Algorithm: algo, Cancel: cancel}, gonsurf.SinkFunc(func(S gonsurf.Solution) {
				got = append(got, S)
				if len(got) == stop {
					cancel.Store(true)
				}
			}))
			require.True(t, errors.Is(err, gonsurf.ErrCancelled))
			require.Equal(t, "cancelled", errorLabel(err))
			require.Equal(t, stop, len(got))
			for i := range got {
				require.Zero(t, normal.CompareSolutions(full[i], got[i]))
			}
		}
	}
}

func TestFindOne(t *testing.T) {
	for _, fx := range fixtures {
		T := fx.make()
		for _, c := range []gonsurf.Coords{gonsurf.CoordsStandard, gonsurf.CoordsAlmostNormal} {
			sol, err := FindOne(T, gonsurf.EnumOpts{Coords: c})
			require.NoError(t, err)
			if sol == nil {
				continue
			}
			S := sol.(*normal.Surface)
			require.False(t, S.IsZero())
			require.True(t, S.IsDisjointValid())
			E := normal.MatchingEquations(T, S.Encoding())
			require.True(t, E.MulVector(S.Vector()).IsZero())

			// Never a sum of every vertex link: some triangle is missing.
			missing := false
			for tet := 0; tet < T.Size(); tet++ {
				for v := 0; v < 4; v++ {
					if S.At(S.Encoding().Triangle(tet, v)).IsZero() {
						missing = true
					}
				}
			}
			require.True(t, missing, "%s: %v", fx.name, S)
		}
	}

	// A lone tetrahedron has quadrilateral discs, so something is always found.
	sol, err := FindOne(tri.OneTet(), gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard})
	require.NoError(t, err)
	require.NotNil(t, sol)

	// Rejecting every candidate walks the whole tree and finds nothing.
	calls := 0
	sol, err = FindOne(tri.OneTet(), gonsurf.EnumOpts{
		Coords: gonsurf.CoordsStandard,
		Accept: func(gonsurf.Solution) bool {
			calls++
			return false
		},
	})
	require.NoError(t, err)
	require.Nil(t, sol)
	require.True(t, calls > 1)

	// Rejecting only the first candidate resumes the search.
	var first gonsurf.Solution
	sol, err = FindOne(tri.OneTet(), gonsurf.EnumOpts{
		Coords: gonsurf.CoordsStandard,
		Accept: func(S gonsurf.Solution) bool {
			if first == nil {
				first = S
				return false
			}
			return true
		},
	})
	require.NoError(t, err)
	require.NotNil(t, first)
	require.NotNil(t, sol)

	// Through Enumerate, one-of mode emits at most one solution.
	count := 0
	require.NoError(t, Enumerate(tri.TwistedKxI(), gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard, Which: gonsurf.WhichOneOf}, gonsurf.SinkFunc(func(gonsurf.Solution) {
		count++
	})))
	require.True(t, count <= 1)

	cancel := &atomic.Bool{}
	cancel.Store(true)
	_, err = FindOne(tri.OneTet(), gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard, Cancel: cancel})
	require.True(t, errors.Is(err, gonsurf.ErrCancelled))

	// A hit counts as one emitted solution, a miss as none.
	found := solutionsEmitted.WithLabelValues("tree-single", "standard")
	before := testutil.ToFloat64(found)
	sol, err = FindOne(tri.OneTet(), gonsurf.EnumOpts{Coords: gonsurf.CoordsStandard})
	require.NoError(t, err)
	require.NotNil(t, sol)
	require.Equal(t, before+1, testutil.ToFloat64(found))

	sol, err = FindOne(tri.OneTet(), gonsurf.EnumOpts{
		Coords: gonsurf.CoordsStandard,
		Accept: func(gonsurf.Solution) bool { return false },
	})
	require.NoError(t, err)
	require.Nil(t, sol)
	require.Equal(t, before+1, testutil.ToFloat64(found))
}

func TestTypeTrie(t *testing.T) {
	trie := NewTypeTrie(4)
	require.False(t, trie.Dominates([]int{1, 2, 3}))

	trie.Insert([]int{1, 0, 2, 0})
	trie.Insert([]int{1, 0, 2})
	require.Equal(t, 1, trie.Size())

	require.True(t, trie.Dominates([]int{1, 0, 2}))
	require.True(t, trie.Dominates([]int{1, 3, 2, 1}))
	require.False(t, trie.Dominates([]int{1, 0, 3}))
	require.False(t, trie.Dominates([]int{0, 0, 2}))
	require.False(t, trie.Dominates([]int{1}))

	trie.Insert([]int{0, 0, 0, 3})
	require.True(t, trie.Dominates([]int{2, 1, 1, 3}))
	require.False(t, trie.Dominates([]int{2, 1, 1, 2}))
}

func TestPercent(t *testing.T) {
	T := tri.TwistedKxI()
	for _, enc := range []normal.Encoding{normal.EncodingStandard, normal.EncodingAlmostNormal} {
		bans, err := newBanConstraint(T, enc, gonsurf.BanPolicy{})
		require.NoError(t, err)
		tab := NewInitialTableau(T, enc, extraConstraint{}, true)
		bans.attach(tab)

		E := NewTreeEnumeration[maths.Integer](tab, bans, nil)
		for E.Next() {
			p := E.Percent()
			require.True(t, p >= 0 && p <= 100.0001, "percent %v", p)
		}
		require.NotZero(t, E.SolutionCount())
		require.NotZero(t, E.VisitedCount())
	}
}

func TestTableau(t *testing.T) {
	T := tri.TwistedKxI()
	for _, enc := range []normal.Encoding{normal.EncodingQuad, normal.EncodingStandard} {
		for _, enumeration := range []bool{true, false} {
			tab := NewInitialTableau(T, enc, extraConstraint{}, enumeration)
			require.Equal(t, enc.Len(T.Size()), tab.Columns())
			require.Equal(t, tab.Columns(), tab.CoordinateColumns())

			// The column permutation is a permutation.
			seen := make([]bool, tab.Columns())
			for _, c := range tab.ColumnPerm() {
				require.False(t, seen[c])
				seen[c] = true
			}

			E := normal.MatchingEquations(T, enc)
			require.Equal(t, E.RowBasis().Rows(), tab.Rank())
			require.NotEmpty(t, tab.String())
		}
	}
}
