package tri

import (
	"errors"
	"sort"
	"testing"

	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/2x3systems/gonsurf/libnsurf/perm"
	"github.com/stretchr/testify/require"
)

func TestOneTet(t *testing.T) {
	S := OneTet().Skeleton()
	require.Len(t, S.Vertices, 4)
	require.Len(t, S.Edges, 6)
	require.Len(t, S.Triangles, 4)
	require.Len(t, S.BoundaryComponents, 1)
	for _, v := range S.Vertices {
		require.Equal(t, VertexBoundary, v.Kind)
	}
	for _, e := range S.Edges {
		require.True(t, e.Boundary)
		require.Len(t, e.Embeddings, 1)
	}
	bc := S.BoundaryComponents[0]
	require.False(t, bc.Ideal)
	require.Equal(t, 2, bc.Euler)
	require.True(t, bc.Orientable)
	require.Len(t, bc.Vertices, 4)
	require.Equal(t, 1, S.EulerCharTri())
}

func TestFigureEight(t *testing.T) {
	S := FigureEight().Skeleton()
	require.Len(t, S.Vertices, 1)
	require.Len(t, S.Edges, 2)
	require.Len(t, S.Triangles, 4)
	require.True(t, S.IsOrientable())
	require.True(t, S.IsValid())
	require.True(t, S.IsIdeal())
	require.False(t, S.HasBoundaryTriangles())

	v := S.Vertices[0]
	require.Equal(t, VertexIdeal, v.Kind)
	require.Equal(t, 0, v.LinkEuler)
	require.True(t, v.LinkOrientable)

	require.Len(t, S.BoundaryComponents, 1)
	require.True(t, S.BoundaryComponents[0].Ideal)

	for _, e := range S.Edges {
		require.Len(t, e.Embeddings, 6)
		require.False(t, e.Boundary)
	}
}

func TestGieseking(t *testing.T) {
	S := Gieseking().Skeleton()
	require.Len(t, S.Vertices, 1)
	require.Len(t, S.Edges, 1)
	require.Len(t, S.Triangles, 2)
	require.False(t, S.IsOrientable())
	v := S.Vertices[0]
	require.Equal(t, VertexIdeal, v.Kind)
	require.Equal(t, 0, v.LinkEuler)
	require.False(t, v.LinkOrientable)
}

func TestLayeredLoopS3(t *testing.T) {
	S := LayeredLoopS3().Skeleton()
	require.Len(t, S.Vertices, 2)
	require.Len(t, S.Edges, 3)
	require.Len(t, S.Triangles, 2)
	require.True(t, S.IsClosed())
	require.True(t, S.IsOrientable())
	for _, v := range S.Vertices {
		require.Equal(t, VertexInternal, v.Kind)
	}
	require.Equal(t, 0, S.EulerCharTri())
}

func TestLayeredLoops(t *testing.T) {
	for length := 1; length <= 4; length++ {
		for _, twisted := range []bool{false, true} {
			S := LayeredLoop(length, twisted).Skeleton()
			require.True(t, S.IsClosed())
			require.True(t, S.IsValid())
			require.True(t, S.IsOrientable())
			require.Len(t, S.Triangles, 2*length)

			// Untwisted loops have two vertices, twisted ones a single vertex.
			nVerts := 2
			if twisted {
				nVerts = 1
			}
			require.Len(t, S.Vertices, nVerts, "length %d twisted %v", length, twisted)
			require.Len(t, S.Edges, nVerts+length)
		}
	}
	require.Equal(t, LayeredLoopS3().String(), LayeredLoop(1, false).String())
}

func TestDoubledTet(t *testing.T) {
	S := DoubledTet().Skeleton()
	require.Len(t, S.Vertices, 4)
	require.Len(t, S.Edges, 6)
	require.Len(t, S.Triangles, 4)
	require.True(t, S.IsClosed())
	require.True(t, S.IsOrientable())
	for _, e := range S.Edges {
		require.Len(t, e.Embeddings, 2)
	}
	for _, v := range S.Vertices {
		require.Equal(t, VertexInternal, v.Kind)
		require.Equal(t, 2, v.LinkEuler)
	}
}

func TestLST123(t *testing.T) {
	S := LST123().Skeleton()
	require.Len(t, S.Vertices, 1)
	require.Equal(t, VertexBoundary, S.Vertices[0].Kind)

	var degrees []int
	for _, e := range S.Edges {
		require.True(t, e.Boundary)
		degrees = append(degrees, len(e.Embeddings))
	}
	sort.Ints(degrees)
	require.Equal(t, []int{1, 2, 3}, degrees)

	require.Len(t, S.BoundaryComponents, 1)
	bc := S.BoundaryComponents[0]
	require.Equal(t, 0, bc.Euler)
	require.True(t, bc.Orientable)
	require.Len(t, bc.Triangles, 2)
	for _, ti := range bc.Triangles {
		f := S.Triangles[ti].Embeddings[0].Face()
		require.True(t, f == 2 || f == 3)
	}
}

func TestEdgeWalk(t *testing.T) {
	// Consecutive embeddings meet across faces: Verts[2] of one is glued to Verts[3] of the next.
	for _, T := range []*Triangulation{FigureEight(), Gieseking(), LayeredLoopS3(), LST123(), TwistedKxI(), LayeredLoop(3, true), DoubledTet()} {
		S := T.Skeleton()
		for _, e := range S.Edges {
			for i := 0; i+1 < len(e.Embeddings); i++ {
				a, b := e.Embeddings[i], e.Embeddings[i+1]
				u, g, ok := T.Adjacent(a.Tet, a.Verts.At(2))
				require.True(t, ok)
				require.Equal(t, b.Tet, u)
				require.Equal(t, b.Verts.At(3), g.At(a.Verts.At(2)))
				require.Equal(t, b.Verts.At(0), g.At(a.Verts.At(0)))
			}
			for _, emb := range e.Embeddings {
				require.Equal(t, e.Index, S.EdgeOf(emb.Tet, emb.Edge()))
			}
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, T := range []*Triangulation{OneTet(), FigureEight(), Gieseking(), LayeredLoopS3(), LST123(), TwistedKxI()} {
		str := T.String()
		T2, err := Parse(str)
		require.NoError(t, err)
		require.Equal(t, str, T2.String())
		require.Equal(t, T.Size(), T2.Size())
	}

	T := MustParse("2: 0.0 1 (1302), 0.1 1 (2031), 0.2 1 (0321), 0.3 1 (2103), 1.1 0 (2031)")
	require.Equal(t, FigureEight().String(), T.String())

	_, err := Parse("1: 0.0 0 (0123)")
	require.True(t, errors.Is(err, gonsurf.ErrBadGluing))
	_, err = Parse("1: 0.0 0 (1123)")
	require.True(t, errors.Is(err, gonsurf.ErrBadGluing))
	_, err = Parse("1: 0.0 ")
	require.True(t, errors.Is(err, gonsurf.ErrBadGluing))
}

func TestJoinUnjoin(t *testing.T) {
	T := New(2)
	require.NoError(t, T.Join(0, 3, 1, perm.Identity))
	require.Error(t, T.Join(1, 3, 0, perm.Identity))
	require.Len(t, T.Skeleton().Triangles, 7)

	require.NoError(t, T.Unjoin(1, 3))
	require.Len(t, T.Skeleton().Triangles, 8)
	_, _, ok := T.Adjacent(0, 3)
	require.False(t, ok)
	require.Error(t, T.Unjoin(0, 3))

	dup := T.Clone()
	require.NoError(t, dup.Join(0, 0, 1, perm.Of(1, 0, 2, 3)))
	_, _, ok = T.Adjacent(0, 0)
	require.False(t, ok)
}
