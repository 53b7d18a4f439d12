package normal

import (
	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/2x3systems/gonsurf/libnsurf/maths"
	"github.com/pkg/errors"
)

// ProjectToQuad drops the triangle coordinates of S.  Surfaces holding an octagon have no
// quadrilateral projection.
func ProjectToQuad(S *Surface) (*Surface, error) {
	if !S.enc.Triangles {
		return S, nil
	}
	if S.AlmostNormal() {
		return nil, errors.Wrap(gonsurf.ErrBadEncoding, "octagons have no quadrilateral projection")
	}
	n := S.tri.Size()
	vec := maths.NewVector[maths.Integer](EncodingQuad.Len(n))
	for t := 0; t < n; t++ {
		for q := 0; q < 3; q++ {
			vec.Set(EncodingQuad.Quad(t, q), S.vec.At(S.enc.Quad(t, q)))
		}
	}
	return NewSurface(S.tri, EncodingQuad, vec, nil), nil
}

// LiftQuad returns the smallest standard vector whose quadrilaterals are those of S.
//
// Triangle counts are propagated around each vertex link: crossing face f from corner v of
// tetrahedron t, the arc equation fixes the difference between the two triangle counts.
// Each link is then shifted so that its smallest triangle count is zero.  A link whose
// differences do not close up (as for spun surfaces) fails with ErrCannotLift.
func LiftQuad(S *Surface) (*Surface, error) {
	if S.enc.Triangles {
		return nil, errors.Wrap(gonsurf.ErrBadEncoding, "surface is not in quadrilateral coordinates")
	}
	T := S.tri
	skel := T.Skeleton()
	n := T.Size()
	quad := func(t, q int) maths.Integer {
		return S.vec.At(EncodingQuad.Quad(t, q))
	}

	tris := make([]maths.Integer, 4*n)
	known := make([]bool, 4*n)
	for vi := range skel.Vertices {
		vtx := &skel.Vertices[vi]
		start := vtx.Embeddings[0]
		known[4*start.Tet+start.Vertex] = true
		queue := []int{4*start.Tet + start.Vertex}
		for len(queue) > 0 {
			corner := queue[0]
			queue = queue[1:]
			t, v := corner/4, corner%4
			for f := 0; f < 4; f++ {
				if f == v {
					continue
				}
				u, g, ok := T.Adjacent(t, f)
				if !ok {
					continue
				}
				gv, gf := g.At(v), g.At(f)
				val := tris[corner].Add(quad(t, QuadSeparating[v][f])).Sub(quad(u, QuadSeparating[gv][gf]))
				adj := 4*u + gv
				if known[adj] {
					if !tris[adj].Equals(val) {
						return nil, errors.Wrapf(gonsurf.ErrCannotLift, "vertex %d link does not close up", vi)
					}
					continue
				}
				tris[adj] = val
				known[adj] = true
				queue = append(queue, adj)
			}
		}

		low := tris[4*start.Tet+start.Vertex]
		for _, c := range vtx.Embeddings {
			if x := tris[4*c.Tet+c.Vertex]; x.Cmp(low) < 0 {
				low = x
			}
		}
		for _, c := range vtx.Embeddings {
			i := 4*c.Tet + c.Vertex
			tris[i] = tris[i].Sub(low)
		}
	}

	vec := maths.NewVector[maths.Integer](EncodingStandard.Len(n))
	for t := 0; t < n; t++ {
		for v := 0; v < 4; v++ {
			vec.Set(EncodingStandard.Triangle(t, v), tris[4*t+v])
		}
		for q := 0; q < 3; q++ {
			vec.Set(EncodingStandard.Quad(t, q), quad(t, q))
		}
	}
	return NewSurface(T, EncodingStandard, vec, nil), nil
}
