package normal

import (
	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/2x3systems/gonsurf/libnsurf/maths"
	"github.com/2x3systems/gonsurf/libnsurf/tri"
	"github.com/pkg/errors"
)

// arcCoords appends the coordinates of the discs with an arc about vertex v on face f of
// tetrahedron t.
func (enc Encoding) arcCoords(dst []int, t, v, f int) []int {
	dst = append(dst, enc.Triangle(t, v), enc.Quad(t, QuadSeparating[v][f]))
	if enc.Octagons {
		dst = append(dst, enc.Oct(t, QuadMeeting[v][f][0]), enc.Oct(t, QuadMeeting[v][f][1]))
	}
	return dst
}

// MatchingEquations returns the matching equations of T in the given encoding, one row per
// equation and one column per coordinate.
//
// Encodings that store triangles get three rows per internal triangle, one for each arc
// type.  Quadrilateral coordinates get one row per internal edge.
func MatchingEquations(T *tri.Triangulation, enc Encoding) maths.Matrix[maths.Integer] {
	S := T.Skeleton()
	var rows [][]int64
	ncols := enc.Len(T.Size())

	if enc.Triangles {
		var lhs, rhs []int
		for _, face := range S.Triangles {
			if face.IsBoundary() {
				continue
			}
			e0, e1 := face.Embeddings[0], face.Embeddings[1]
			for i := 0; i < 3; i++ {
				row := make([]int64, ncols)
				lhs = enc.arcCoords(lhs[:0], e0.Tet, e0.Verts.At(i), e0.Verts.At(3))
				rhs = enc.arcCoords(rhs[:0], e1.Tet, e1.Verts.At(i), e1.Verts.At(3))
				for _, c := range lhs {
					row[c]++
				}
				for _, c := range rhs {
					row[c]--
				}
				rows = append(rows, row)
			}
		}
	} else {
		for _, edge := range S.Edges {
			if edge.Boundary || edge.Invalid {
				continue
			}
			row := make([]int64, ncols)
			for _, emb := range edge.Embeddings {
				p := emb.Verts
				row[enc.Quad(emb.Tet, QuadSeparating[p.At(0)][p.At(2)])]++
				row[enc.Quad(emb.Tet, QuadSeparating[p.At(0)][p.At(3)])]--
			}
			rows = append(rows, row)
		}
	}

	E := maths.NewMatrix[maths.Integer](len(rows), ncols)
	for r, row := range rows {
		for c, v := range row {
			if v != 0 {
				E.Set(r, c, maths.NewInteger(v))
			}
		}
	}
	return E
}

// ValidityGroup returns the coordinates of tetrahedron t of which at most one may be non-zero:
// its quadrilaterals, and its octagons if stored.
func (enc Encoding) ValidityGroup(t int) []int {
	group := []int{enc.Quad(t, 0), enc.Quad(t, 1), enc.Quad(t, 2)}
	if enc.Octagons {
		group = append(group, enc.Oct(t, 0), enc.Oct(t, 1), enc.Oct(t, 2))
	}
	return group
}

// arcsOnFace returns how many arcs a disc leaves on face f of its tetrahedron.
func arcsOnFace(d Disc, f int) int64 {
	switch d.Kind {
	case DiscTriangle:
		if d.Type == f {
			return 0
		}
		return 1
	case DiscQuad:
		return 1
	}
	return 2
}

// cornersOnEdge returns how many times a disc meets edge en of its tetrahedron.
func cornersOnEdge(d Disc, en int) int64 {
	switch d.Kind {
	case DiscTriangle:
		ends := tri.EdgeVertices[en]
		if ends[0] == d.Type || ends[1] == d.Type {
			return 1
		}
		return 0
	case DiscQuad:
		if d.Type == QuadMissing(en) {
			return 0
		}
		return 1
	}
	if d.Type == QuadMissing(en) {
		return 2
	}
	return 1
}

// EulerCoefficients returns c such that c·v is the Euler characteristic of the surface with
// vector v.
//
// Each disc contributes its face, minus its arcs on the faces of T that this tetrahedron
// holds the first embedding of, plus its corners on the edges it holds the first embedding of.
func EulerCoefficients(T *tri.Triangulation, enc Encoding) ([]int64, error) {
	if !enc.Triangles {
		return nil, errors.Wrap(gonsurf.ErrUnsupportedCombination, "euler characteristic needs triangle coordinates")
	}
	S := T.Skeleton()
	n := T.Size()
	coeffs := make([]int64, enc.Len(n))
	for t := 0; t < n; t++ {
		var ownsFace [4]bool
		var ownsEdge [6]bool
		for f := 0; f < 4; f++ {
			first := S.Triangles[S.TriangleOf(t, f)].Embeddings[0]
			ownsFace[f] = first.Tet == t && first.Face() == f
		}
		for en := 0; en < 6; en++ {
			first := S.Edges[S.EdgeOf(t, en)].Embeddings[0]
			ownsEdge[en] = first.Tet == t && first.Edge() == en
		}
		for i := 0; i < enc.Block(); i++ {
			c := t*enc.Block() + i
			d := enc.DiscAt(c)
			x := int64(1)
			for f := 0; f < 4; f++ {
				if ownsFace[f] {
					x -= arcsOnFace(d, f)
				}
			}
			for en := 0; en < 6; en++ {
				if ownsEdge[en] {
					x += cornersOnEdge(d, en)
				}
			}
			coeffs[c] = x
		}
	}
	return coeffs, nil
}
