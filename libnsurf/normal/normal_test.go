package normal

import (
	"errors"
	"testing"

	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/2x3systems/gonsurf/libnsurf/maths"
	"github.com/2x3systems/gonsurf/libnsurf/tri"
	"github.com/stretchr/testify/require"
)

func TestEncoding(t *testing.T) {
	for _, c := range []gonsurf.Coords{gonsurf.CoordsQuad, gonsurf.CoordsStandard, gonsurf.CoordsAlmostNormal} {
		enc, err := EncodingFor(c)
		require.NoError(t, err)
		require.Equal(t, c, enc.Coords())
		require.Equal(t, c.Block(), enc.Block())

		for i := 0; i < enc.Len(3); i++ {
			d := enc.DiscAt(i)
			var back int
			switch d.Kind {
			case DiscTriangle:
				back = enc.Triangle(d.Tet, d.Type)
			case DiscQuad:
				back = enc.Quad(d.Tet, d.Type)
			case DiscOct:
				back = enc.Oct(d.Tet, d.Type)
			}
			require.Equal(t, i, back)
		}
	}
	_, err := EncodingFor(gonsurf.Coords(9))
	require.True(t, errors.Is(err, gonsurf.ErrBadEncoding))
}

func TestDiscTables(t *testing.T) {
	for en := 0; en < 6; en++ {
		a, b := tri.EdgeVertices[en][0], tri.EdgeVertices[en][1]
		q := QuadMissing(en)
		require.Equal(t, q, QuadSeparating[a][b])
		require.Equal(t, q, QuadMissing(5-en))
		for _, m := range QuadMeeting[a][b] {
			if m == q {
				t.Fatal("nope")
			}
		}
	}
}

func lstRays(T *tri.Triangulation) (L, A, B, C *Surface) {
	L = SurfaceOf(T, EncodingStandard, 1, 1, 1, 1, 0, 0, 0)
	A = SurfaceOf(T, EncodingStandard, 0, 0, 1, 1, 1, 0, 0)
	B = SurfaceOf(T, EncodingStandard, 1, 1, 0, 0, 0, 0, 1)
	C = SurfaceOf(T, EncodingStandard, 0, 0, 0, 0, 0, 1, 0)
	return
}

func TestMatchingEquations(t *testing.T) {
	T := tri.LST123()
	E := MatchingEquations(T, EncodingStandard)
	require.Equal(t, 3, E.Rows())
	require.Equal(t, 7, E.Cols())

	L, A, B, C := lstRays(T)
	for _, S := range []*Surface{L, A, B, C} {
		require.True(t, E.MulVector(S.Vector()).IsZero(), S.String())
	}
	bad := SurfaceOf(T, EncodingStandard, 0, 0, 1, 0, 0, 0, 0)
	require.False(t, E.MulVector(bad.Vector()).IsZero())

	// Vertex links satisfy the equations.
	for _, T := range []*tri.Triangulation{tri.LayeredLoopS3(), tri.FigureEight(), tri.TwistedKxI()} {
		skel := T.Skeleton()
		for _, enc := range []Encoding{EncodingStandard, EncodingAlmostNormal} {
			E := MatchingEquations(T, enc)
			for _, vtx := range skel.Vertices {
				vec := maths.NewVector[maths.Integer](enc.Len(T.Size()))
				for _, c := range vtx.Embeddings {
					vec.Set(enc.Triangle(c.Tet, c.Vertex), maths.NewInteger(1))
				}
				require.True(t, E.MulVector(vec).IsZero())
			}
		}
	}

	require.Equal(t, 0, MatchingEquations(tri.OneTet(), EncodingQuad).Rows())
	require.Equal(t, 2, MatchingEquations(tri.FigureEight(), EncodingQuad).Rows())
}

func TestEulerChar(t *testing.T) {
	T := tri.LST123()
	L, A, B, C := lstRays(T)
	for i, S := range []*Surface{L, A, B, C} {
		chi, err := S.EulerChar()
		require.NoError(t, err)
		require.Equal(t, []string{"1", "0", "1", "0"}[i], chi.String())
	}

	S3 := tri.LayeredLoopS3()
	for _, vtx := range S3.Skeleton().Vertices {
		vec := maths.NewVector[maths.Integer](7)
		for _, c := range vtx.Embeddings {
			vec.Set(EncodingStandard.Triangle(c.Tet, c.Vertex), maths.NewInteger(1))
		}
		chi, err := NewSurface(S3, EncodingStandard, vec, nil).EulerChar()
		require.NoError(t, err)
		require.Equal(t, "2", chi.String())
	}

	coeffs, err := EulerCoefficients(tri.OneTet(), EncodingAlmostNormal)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, coeffs)

	_, err = EulerCoefficients(T, EncodingQuad)
	require.True(t, errors.Is(err, gonsurf.ErrUnsupportedCombination))
}

func TestSurfaceQueries(t *testing.T) {
	T := tri.LST123()
	L, A, _, C := lstRays(T)

	require.True(t, L.IsVertexLinking())
	require.False(t, A.IsVertexLinking())
	require.True(t, A.IsDisjointValid())
	require.False(t, SurfaceOf(T, EncodingStandard, 0, 0, 0, 0, 1, 1, 0).IsDisjointValid())

	bdry, err := C.HasRealBoundary()
	require.NoError(t, err)
	require.True(t, bdry)

	S3 := tri.LayeredLoopS3()
	bdry, err = SurfaceOf(S3, EncodingStandard, 1, 1, 1, 1, 0, 0, 0).HasRealBoundary()
	require.NoError(t, err)
	require.False(t, bdry)

	// The meridian disc C crosses the degree-one edge once.
	w, err := C.EdgeWeight(T.Skeleton().EdgeOf(0, 0))
	require.NoError(t, err)
	require.Equal(t, "1", w.String())
	_, err = C.EdgeWeight(7)
	require.True(t, errors.Is(err, gonsurf.ErrInvalidArgument))

	arcs, err := A.ArcCount(0, 3, 2)
	require.NoError(t, err)
	require.Equal(t, "2", arcs.String())
	_, err = A.ArcCount(0, 2, 2)
	require.Error(t, err)

	require.True(t, C.IsCompact())
	require.False(t, C.AlmostNormal())
	require.Equal(t, gonsurf.CoordsStandard, C.Coords())
	require.Equal(t, "(0, 0, 0, 0, 0, 1, 0)", C.String())
	require.Equal(t, int64(1), C.Entry(5).Int64())
}

func TestQuadConversion(t *testing.T) {
	T := tri.LST123()
	_, A, B, C := lstRays(T)
	for _, S := range []*Surface{A, B, C} {
		Q, err := ProjectToQuad(S)
		require.NoError(t, err)
		require.Equal(t, 3, Q.Len())

		back, err := LiftQuad(Q)
		require.NoError(t, err)
		require.Equal(t, 0, CompareSolutions(S, back), back.String())
	}

	_, err := LiftQuad(A)
	require.True(t, errors.Is(err, gonsurf.ErrBadEncoding))

	// Crossing face 0 takes corner 3 of the Gieseking tetrahedron back to itself, so the
	// second and third quadrilateral counts must agree.
	G := tri.Gieseking()
	spun := SurfaceOf(G, EncodingQuad, 0, 1, 0)
	_, err = LiftQuad(spun)
	require.True(t, errors.Is(err, gonsurf.ErrCannotLift))
	require.False(t, spun.IsCompact())
	_, err = spun.EulerChar()
	require.True(t, errors.Is(err, gonsurf.ErrCannotLift))

	oct := SurfaceOf(tri.OneTet(), EncodingAlmostNormal, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0)
	require.True(t, oct.AlmostNormal())
	_, err = ProjectToQuad(oct)
	require.True(t, errors.Is(err, gonsurf.ErrBadEncoding))
}

func TestSolutionSet(t *testing.T) {
	T := tri.LST123()
	L, A, B, C := lstRays(T)

	set := NewSolutionSet()
	for _, S := range []*Surface{C, B, A, L} {
		require.True(t, set.TryAddSolution(S))
	}
	require.False(t, set.TryAddSolution(SurfaceOf(T, EncodingStandard, 0, 0, 1, 1, 1, 0, 0)))
	require.Equal(t, 4, set.Len())
	require.True(t, set.Contains(B))

	all := set.Solutions()
	for i := 1; i < len(all); i++ {
		require.Equal(t, -1, CompareSolutions(all[i-1], all[i]))
	}
	require.Equal(t, C.String(), all[0].String())

	other := NewSolutionSet()
	for _, S := range all {
		other.Emit(S)
	}
	require.True(t, set.Equal(other))
	other.Emit(SurfaceOf(T, EncodingStandard, 2, 2, 2, 2, 0, 0, 0))
	require.False(t, set.Equal(other))
}

func TestSolutionStream(t *testing.T) {
	T := tri.LST123()
	L, A, B, C := lstRays(T)

	set := NewSolutionSet()
	set.TryAddSolution(A)

	stream := gonsurf.NewSolutionStream()
	go func() {
		for _, S := range []*Surface{L, A, B, C, B} {
			stream.Emit(S)
		}
		stream.Close()
	}()

	fresh := stream.AddTo(set).Select(func(S gonsurf.Solution) bool {
		return S.(*Surface).At(0).IsZero()
	})
	got := fresh.Collect()
	require.Len(t, got, 1)
	require.Equal(t, C.String(), got[0].String())
	require.Equal(t, 4, set.Len())
}
