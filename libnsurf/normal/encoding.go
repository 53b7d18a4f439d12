// Package normal maps normal and almost-normal disc types to vector coordinates and
// builds the linear systems those vectors must satisfy.
package normal

import (
	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/pkg/errors"
)

// Encoding describes which disc types a vector stores for each tetrahedron.
//
// Within a tetrahedron's block the triangles (if stored) come first, then the three
// quadrilaterals, then the three octagons (if stored).
type Encoding struct {
	Triangles bool
	Octagons  bool
}

var (
	EncodingQuad         = Encoding{}
	EncodingStandard     = Encoding{Triangles: true}
	EncodingAlmostNormal = Encoding{Triangles: true, Octagons: true}
)

// EncodingFor returns the encoding for a coordinate system.
func EncodingFor(c gonsurf.Coords) (Encoding, error) {
	switch c {
	case gonsurf.CoordsQuad:
		return EncodingQuad, nil
	case gonsurf.CoordsStandard:
		return EncodingStandard, nil
	case gonsurf.CoordsAlmostNormal:
		return EncodingAlmostNormal, nil
	}
	return Encoding{}, errors.Wrapf(gonsurf.ErrBadEncoding, "coords %d", int(c))
}

// Coords returns the coordinate system this encoding describes.
func (enc Encoding) Coords() gonsurf.Coords {
	switch {
	case enc.Octagons:
		return gonsurf.CoordsAlmostNormal
	case enc.Triangles:
		return gonsurf.CoordsStandard
	}
	return gonsurf.CoordsQuad
}

// Block returns the number of coordinates per tetrahedron.
func (enc Encoding) Block() int {
	n := 3
	if enc.Triangles {
		n += 4
	}
	if enc.Octagons {
		n += 3
	}
	return n
}

// Len returns the vector length for a triangulation of numTets tetrahedra.
func (enc Encoding) Len(numTets int) int {
	return enc.Block() * numTets
}

// Triangle returns the coordinate of the triangle of tetrahedron t about vertex v.
func (enc Encoding) Triangle(t, v int) int {
	if !enc.Triangles {
		panic("encoding stores no triangles")
	}
	return t*enc.Block() + v
}

// Quad returns the coordinate of quadrilateral type q of tetrahedron t.
func (enc Encoding) Quad(t, q int) int {
	c := t*enc.Block() + q
	if enc.Triangles {
		c += 4
	}
	return c
}

// Oct returns the coordinate of octagon type k of tetrahedron t.
func (enc Encoding) Oct(t, k int) int {
	if !enc.Octagons {
		panic("encoding stores no octagons")
	}
	return t*enc.Block() + 7 + k
}

// DiscKind is the shape of a normal or almost-normal disc.
type DiscKind int8

const (
	DiscTriangle DiscKind = iota
	DiscQuad
	DiscOct
)

// Disc names a coordinate by tetrahedron, shape and type.
type Disc struct {
	Tet  int
	Kind DiscKind
	Type int
}

// DiscAt returns the disc stored at coordinate c.
func (enc Encoding) DiscAt(c int) Disc {
	block := enc.Block()
	d := Disc{Tet: c / block}
	i := c % block
	if enc.Triangles {
		if i < 4 {
			d.Kind, d.Type = DiscTriangle, i
			return d
		}
		i -= 4
	}
	if i < 3 {
		d.Kind, d.Type = DiscQuad, i
	} else {
		d.Kind, d.Type = DiscOct, i-3
	}
	return d
}

// QuadSeparating[a][b] is the quadrilateral type that keeps vertices a and b on the same
// side (-1 if a == b).  Quadrilateral type q separates edge q from edge 5-q.
var QuadSeparating = [4][4]int{
	{-1, 0, 1, 2},
	{0, -1, 2, 1},
	{1, 2, -1, 0},
	{2, 1, 0, -1},
}

// QuadMeeting[a][b] holds the two quadrilateral types that meet edge ab.
var QuadMeeting = [4][4][2]int{
	{{-1, -1}, {1, 2}, {0, 2}, {0, 1}},
	{{1, 2}, {-1, -1}, {0, 1}, {0, 2}},
	{{0, 2}, {0, 1}, {-1, -1}, {1, 2}},
	{{0, 1}, {0, 2}, {1, 2}, {-1, -1}},
}

// QuadMissing returns the quadrilateral type that misses edge en (and its opposite edge).
func QuadMissing(en int) int {
	if en < 5-en {
		return en
	}
	return 5 - en
}
