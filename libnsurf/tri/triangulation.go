// Package tri holds 3-manifold triangulations as an owned pool of tetrahedra.
//
// Each tetrahedron records, per face, the index of the adjacent tetrahedron (or -1 for a
// boundary face) and the gluing permutation mapping its vertices onto the neighbour's.
// Skeletal data (vertices, edges, triangles, components, boundary components) is computed
// lazily and discarded whenever the gluings change.
package tri

import (
	"strconv"
	"strings"

	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/2x3systems/gonsurf/libnsurf/perm"
	"github.com/pkg/errors"
)

// Tetrahedron is one simplex of a Triangulation.
type Tetrahedron struct {
	adj  [4]int
	glue [4]perm.Perm4
}

// Triangulation is an owned pool of tetrahedra.
type Triangulation struct {
	tets []Tetrahedron
	skel *Skeleton
}

// New returns a triangulation of n unglued tetrahedra.
func New(n int) *Triangulation {
	T := &Triangulation{}
	T.AddTetrahedra(n)
	return T
}

// Size returns the number of tetrahedra.
func (T *Triangulation) Size() int {
	return len(T.tets)
}

// AddTetrahedra appends n unglued tetrahedra and returns the index of the first.
func (T *Triangulation) AddTetrahedra(n int) int {
	first := len(T.tets)
	for i := 0; i < n; i++ {
		T.tets = append(T.tets, Tetrahedron{
			adj: [4]int{-1, -1, -1, -1},
			glue: [4]perm.Perm4{
				perm.Identity, perm.Identity, perm.Identity, perm.Identity,
			},
		})
	}
	T.skel = nil
	return first
}

func (T *Triangulation) checkFace(t, f int) error {
	if t < 0 || t >= len(T.tets) || f < 0 || f > 3 {
		return errors.Wrapf(gonsurf.ErrBadGluing, "no face %d.%d", t, f)
	}
	return nil
}

// Adjacent returns the tetrahedron glued to face f of tetrahedron t and the gluing
// permutation, or ok == false if the face lies on the boundary.
func (T *Triangulation) Adjacent(t, f int) (u int, g perm.Perm4, ok bool) {
	tet := &T.tets[t]
	if tet.adj[f] < 0 {
		return -1, perm.Identity, false
	}
	return tet.adj[f], tet.glue[f], true
}

// Join glues face f of tetrahedron t to face g[f] of tetrahedron u, with vertex i of t
// mapped to vertex g[i] of u.  Both sides are updated together.
func (T *Triangulation) Join(t, f, u int, g perm.Perm4) error {
	if err := T.checkFace(t, f); err != nil {
		return err
	}
	uf := g.At(f)
	if err := T.checkFace(u, uf); err != nil {
		return err
	}
	if t == u && uf == f {
		return errors.Wrapf(gonsurf.ErrBadGluing, "face %d.%d glued to itself", t, f)
	}
	if T.tets[t].adj[f] >= 0 {
		return errors.Wrapf(gonsurf.ErrBadGluing, "face %d.%d already glued", t, f)
	}
	if T.tets[u].adj[uf] >= 0 {
		return errors.Wrapf(gonsurf.ErrBadGluing, "face %d.%d already glued", u, uf)
	}

	T.tets[t].adj[f] = u
	T.tets[t].glue[f] = g
	T.tets[u].adj[uf] = t
	T.tets[u].glue[uf] = g.Inverse()
	T.skel = nil
	return nil
}

// Unjoin makes face f of tetrahedron t (and its partner) boundary faces again.
func (T *Triangulation) Unjoin(t, f int) error {
	if err := T.checkFace(t, f); err != nil {
		return err
	}
	u := T.tets[t].adj[f]
	if u < 0 {
		return errors.Wrapf(gonsurf.ErrBadGluing, "face %d.%d is not glued", t, f)
	}
	uf := T.tets[t].glue[f].At(f)
	T.tets[t].adj[f] = -1
	T.tets[t].glue[f] = perm.Identity
	T.tets[u].adj[uf] = -1
	T.tets[u].glue[uf] = perm.Identity
	T.skel = nil
	return nil
}

// Clone returns an independent copy of T.
func (T *Triangulation) Clone() *Triangulation {
	return &Triangulation{
		tets: append([]Tetrahedron(nil), T.tets...),
	}
}

// Skeleton returns the skeletal data of T, computing it if needed.
//
// The returned value is a snapshot and must be treated as read-only.
func (T *Triangulation) Skeleton() *Skeleton {
	if T.skel == nil {
		T.skel = computeSkeleton(T)
	}
	return T.skel
}

// String writes T as a gluing list, e.g. "2: 0.0 1 (1302), 0.1 1 (2031)".
// Each glued face pair is listed once, from its lexicographically smaller side.
// The result parses back with Parse.
func (T *Triangulation) String() string {
	var buf strings.Builder
	buf.Grow(8 + 16*len(T.tets))
	buf.WriteString(strconv.Itoa(len(T.tets)))
	buf.WriteByte(':')

	count := 0
	for t := range T.tets {
		for f := 0; f < 4; f++ {
			u, g, ok := T.Adjacent(t, f)
			if !ok {
				continue
			}
			if uf := g.At(f); u < t || (u == t && uf < f) {
				continue
			}
			if count > 0 {
				buf.WriteByte(',')
			}
			count++
			buf.WriteByte(' ')
			buf.WriteString(strconv.Itoa(t))
			buf.WriteByte('.')
			buf.WriteString(strconv.Itoa(f))
			buf.WriteByte(' ')
			buf.WriteString(strconv.Itoa(u))
			buf.WriteString(" (")
			buf.WriteString(g.String())
			buf.WriteByte(')')
		}
	}
	return buf.String()
}
