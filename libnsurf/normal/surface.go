package normal

import (
	"math/big"

	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/2x3systems/gonsurf/libnsurf/maths"
	"github.com/2x3systems/gonsurf/libnsurf/tri"
	"github.com/pkg/errors"
)

// Surface is a normal or almost-normal surface given by its coordinate vector in some
// encoding of a fixed triangulation.  Surface implements gonsurf.Solution.
type Surface struct {
	tri     *tri.Triangulation
	enc     Encoding
	vec     maths.Vector[maths.Integer]
	colPerm []int
}

// NewSurface wraps vec, which S then owns.  colPerm may be nil.
func NewSurface(T *tri.Triangulation, enc Encoding, vec maths.Vector[maths.Integer], colPerm []int) *Surface {
	if vec.Len() != enc.Len(T.Size()) {
		panic("surface vector has the wrong length")
	}
	return &Surface{
		tri:     T,
		enc:     enc,
		vec:     vec,
		colPerm: colPerm,
	}
}

// SurfaceOf builds a surface from int64 coordinates.
func SurfaceOf(T *tri.Triangulation, enc Encoding, coords ...int64) *Surface {
	return NewSurface(T, enc, maths.VectorOf[maths.Integer](coords...), nil)
}

func (S *Surface) Triangulation() *tri.Triangulation {
	return S.tri
}

func (S *Surface) Encoding() Encoding {
	return S.enc
}

func (S *Surface) Coords() gonsurf.Coords {
	return S.enc.Coords()
}

func (S *Surface) Len() int {
	return S.vec.Len()
}

func (S *Surface) At(i int) maths.Integer {
	return S.vec.At(i)
}

func (S *Surface) Entry(i int) *big.Int {
	return S.vec.At(i).Big()
}

// Vector returns a copy of the coordinate vector.
func (S *Surface) Vector() maths.Vector[maths.Integer] {
	return S.vec.Clone()
}

func (S *Surface) ColumnPerm() []int {
	return S.colPerm
}

func (S *Surface) AlmostNormal() bool {
	if !S.enc.Octagons {
		return false
	}
	for t := 0; t < S.tri.Size(); t++ {
		for k := 0; k < 3; k++ {
			if !S.vec.At(S.enc.Oct(t, k)).IsZero() {
				return true
			}
		}
	}
	return false
}

func (S *Surface) String() string {
	return S.vec.String()
}

func (S *Surface) IsZero() bool {
	return S.vec.IsZero()
}

// IsVertexLinking returns true if S is made of triangles only.
func (S *Surface) IsVertexLinking() bool {
	for t := 0; t < S.tri.Size(); t++ {
		for _, c := range S.enc.ValidityGroup(t) {
			if !S.vec.At(c).IsZero() {
				return false
			}
		}
	}
	return true
}

// IsCompact returns true if S has finitely many discs.  Surfaces given in quadrilateral
// coordinates that have no triangle lift are spun and so non-compact.
func (S *Surface) IsCompact() bool {
	if S.enc.Triangles {
		return true
	}
	_, err := LiftQuad(S)
	return err == nil
}

// IsDisjointValid returns true if each tetrahedron holds at most one quadrilateral or octagon
// type, and at most one octagon type is used overall.
func (S *Surface) IsDisjointValid() bool {
	octs := 0
	for t := 0; t < S.tri.Size(); t++ {
		seen := 0
		for _, c := range S.enc.ValidityGroup(t) {
			if !S.vec.At(c).IsZero() {
				seen++
			}
		}
		if seen > 1 {
			return false
		}
		if S.enc.Octagons {
			for k := 0; k < 3; k++ {
				if !S.vec.At(S.enc.Oct(t, k)).IsZero() {
					octs++
				}
			}
		}
	}
	return octs <= 1
}

func (S *Surface) standard() (*Surface, error) {
	if S.enc.Triangles {
		return S, nil
	}
	return LiftQuad(S)
}

// ArcCount returns the number of arcs of S about vertex v of face f of tetrahedron t.
func (S *Surface) ArcCount(t, v, f int) (maths.Integer, error) {
	if v == f {
		return maths.Integer{}, errors.Wrapf(gonsurf.ErrInvalidArgument, "vertex %d is not on face %d", v, f)
	}
	std, err := S.standard()
	if err != nil {
		return maths.Integer{}, err
	}
	var sum maths.Integer
	for _, c := range std.enc.arcCoords(nil, t, v, f) {
		sum = sum.Add(std.vec.At(c))
	}
	return sum, nil
}

// EdgeWeight returns the number of times S meets edge e of its triangulation.
func (S *Surface) EdgeWeight(e int) (maths.Integer, error) {
	skel := S.tri.Skeleton()
	if e < 0 || e >= len(skel.Edges) {
		return maths.Integer{}, errors.Wrapf(gonsurf.ErrInvalidArgument, "edge %d", e)
	}
	std, err := S.standard()
	if err != nil {
		return maths.Integer{}, err
	}
	emb := skel.Edges[e].Embeddings[0]
	en := emb.Edge()
	block := std.enc.Block()
	var sum maths.Integer
	for i := 0; i < block; i++ {
		c := emb.Tet*block + i
		if k := cornersOnEdge(std.enc.DiscAt(c), en); k != 0 {
			sum = sum.Add(std.vec.At(c).Mul(maths.NewInteger(k)))
		}
	}
	return sum, nil
}

// EulerChar returns the Euler characteristic of S.  Spun surfaces fail with ErrCannotLift.
func (S *Surface) EulerChar() (maths.Integer, error) {
	std, err := S.standard()
	if err != nil {
		return maths.Integer{}, err
	}
	coeffs, err := EulerCoefficients(std.tri, std.enc)
	if err != nil {
		return maths.Integer{}, err
	}
	var chi maths.Integer
	for c, k := range coeffs {
		x := std.vec.At(c)
		if k != 0 && !x.IsZero() {
			chi = chi.Add(x.Mul(maths.NewInteger(k)))
		}
	}
	return chi, nil
}

// HasRealBoundary returns true if S meets a boundary triangle of its triangulation.
func (S *Surface) HasRealBoundary() (bool, error) {
	std, err := S.standard()
	if err != nil {
		return false, err
	}
	skel := std.tri.Skeleton()
	var coords []int
	for _, face := range skel.Triangles {
		if !face.IsBoundary() {
			continue
		}
		emb := face.Embeddings[0]
		f := emb.Face()
		for v := 0; v < 4; v++ {
			if v == f {
				continue
			}
			coords = std.enc.arcCoords(coords[:0], emb.Tet, v, f)
			for _, c := range coords {
				if !std.vec.At(c).IsZero() {
					return true, nil
				}
			}
		}
	}
	return false, nil
}
