package tri

import (
	"github.com/2x3systems/gonsurf/libnsurf/perm"
)

// OneTet returns a single tetrahedron with no gluings (a 3-ball).
func OneTet() *Triangulation {
	return New(1)
}

// FigureEight returns the two-tetrahedron ideal triangulation of the figure-eight knot complement.
func FigureEight() *Triangulation {
	return mustJoin(2,
		gluing{0, 0, 1, perm.Of(1, 3, 0, 2)},
		gluing{0, 1, 1, perm.Of(2, 0, 3, 1)},
		gluing{0, 2, 1, perm.Of(0, 3, 2, 1)},
		gluing{0, 3, 1, perm.Of(2, 1, 0, 3)},
	)
}

// Gieseking returns the one-tetrahedron ideal triangulation of the non-orientable
// Gieseking manifold.
func Gieseking() *Triangulation {
	return mustJoin(1,
		gluing{0, 0, 0, perm.Of(1, 2, 0, 3)},
		gluing{0, 2, 0, perm.Of(0, 2, 3, 1)},
	)
}

// LayeredLoopS3 returns the one-tetrahedron untwisted layered loop, a two-vertex 3-sphere.
func LayeredLoopS3() *Triangulation {
	return LayeredLoop(1, false)
}

// LayeredLoop returns the layered loop C(length), or the twisted layered loop C~(length).
// The untwisted loop is the lens space L(length,1).
func LayeredLoop(length int, twisted bool) *Triangulation {
	var gluings []gluing
	for i := 0; i+1 < length; i++ {
		gluings = append(gluings,
			gluing{i, 0, i + 1, perm.Of(1, 0, 2, 3)},
			gluing{i, 3, i + 1, perm.Of(0, 1, 3, 2)},
		)
	}
	last := length - 1
	if twisted {
		gluings = append(gluings,
			gluing{last, 0, 0, perm.Of(2, 3, 1, 0)},
			gluing{last, 3, 0, perm.Of(3, 2, 0, 1)},
		)
	} else {
		gluings = append(gluings,
			gluing{last, 0, 0, perm.Of(1, 0, 2, 3)},
			gluing{last, 3, 0, perm.Of(0, 1, 3, 2)},
		)
	}
	return mustJoin(length, gluings...)
}

// DoubledTet returns two tetrahedra glued face to face by the identity, a four-vertex 3-sphere.
func DoubledTet() *Triangulation {
	return mustJoin(2,
		gluing{0, 0, 1, perm.Identity},
		gluing{0, 1, 1, perm.Identity},
		gluing{0, 2, 1, perm.Identity},
		gluing{0, 3, 1, perm.Identity},
	)
}

// LST123 returns the one-tetrahedron layered solid torus LST(1,2,3), whose boundary torus
// is made of faces 2 and 3.
func LST123() *Triangulation {
	return mustJoin(1,
		gluing{0, 0, 0, perm.Of(1, 2, 3, 0)},
	)
}

// TwistedKxI returns a three-tetrahedron triangulation of a non-orientable twisted
// I-bundle over the Klein bottle.
func TwistedKxI() *Triangulation {
	return mustJoin(3,
		gluing{0, 0, 1, perm.Of(0, 1, 2, 3)},
		gluing{0, 1, 2, perm.Of(2, 1, 0, 3)},
		gluing{0, 2, 2, perm.Of(1, 3, 2, 0)},
		gluing{1, 1, 2, perm.Of(0, 3, 2, 1)},
		gluing{1, 2, 2, perm.Of(3, 1, 0, 2)},
	)
}

// Samples maps a short name to each sample triangulation above.
var Samples = map[string]func() *Triangulation{
	"one-tet":     OneTet,
	"figure8":     FigureEight,
	"gieseking":   Gieseking,
	"s3":          LayeredLoopS3,
	"lst123":      LST123,
	"twisted-kxi": TwistedKxI,
	"doubled-tet": DoubledTet,
	"c2":          func() *Triangulation { return LayeredLoop(2, false) },
	"twisted-c3":  func() *Triangulation { return LayeredLoop(3, true) },
}

type gluing struct {
	tet, face, adj int
	g              perm.Perm4
}

func mustJoin(size int, gluings ...gluing) *Triangulation {
	T := New(size)
	for _, gl := range gluings {
		if err := T.Join(gl.tet, gl.face, gl.adj, gl.g); err != nil {
			panic(err)
		}
	}
	return T
}
