package tri

import (
	"github.com/2x3systems/gonsurf/libnsurf/perm"
)

// EdgeNumber[a][b] is the number (0..5) of the tetrahedron edge joining vertices a and b.
var EdgeNumber = [4][4]int{
	{-1, 0, 1, 2},
	{0, -1, 3, 4},
	{1, 3, -1, 5},
	{2, 4, 5, -1},
}

// EdgeVertices maps edge number to its endpoints; edge i is opposite edge 5-i.
var EdgeVertices = [6][2]int{
	{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3},
}

// EdgeOrdering returns an even permutation sending 0, 1 to the endpoints of edge en.
func EdgeOrdering(en int) perm.Perm4 {
	return edgeOrdering[en]
}

var edgeOrdering = [6]perm.Perm4{
	perm.Of(0, 1, 2, 3),
	perm.Of(0, 2, 3, 1),
	perm.Of(0, 3, 1, 2),
	perm.Of(1, 2, 0, 3),
	perm.Of(1, 3, 2, 0),
	perm.Of(2, 3, 0, 1),
}

// TriangleOrdering returns the permutation sending 0, 1, 2 to the vertices of face f in
// increasing order, and 3 to f.
func TriangleOrdering(f int) perm.Perm4 {
	return triangleOrdering[f]
}

var triangleOrdering = [4]perm.Perm4{
	perm.Of(1, 2, 3, 0),
	perm.Of(0, 2, 3, 1),
	perm.Of(0, 1, 3, 2),
	perm.Of(0, 1, 2, 3),
}

// VertexKind classifies a vertex by its link.
type VertexKind int

const (
	VertexInternal VertexKind = iota // link is a sphere
	VertexBoundary                   // link is a disc
	VertexIdeal                      // link is closed but not a sphere
	VertexInvalid                    // link has boundary but is not a disc
)

func (k VertexKind) String() string {
	switch k {
	case VertexInternal:
		return "internal"
	case VertexBoundary:
		return "boundary"
	case VertexIdeal:
		return "ideal"
	}
	return "invalid"
}

// Corner is a vertex of a specific tetrahedron.
type Corner struct {
	Tet    int
	Vertex int
}

type Vertex struct {
	Index          int
	Embeddings     []Corner
	Kind           VertexKind
	LinkEuler      int
	LinkOrientable bool
	LinkClosed     bool
	Component      int
}

// EdgeEmbedding places an edge inside a tetrahedron: Verts[0] and Verts[1] are its endpoints.
type EdgeEmbedding struct {
	Tet   int
	Verts perm.Perm4
}

// Edge returns the number of the tetrahedron edge.
func (emb EdgeEmbedding) Edge() int {
	return EdgeNumber[emb.Verts.At(0)][emb.Verts.At(1)]
}

// Edge is an equivalence class of tetrahedron edges.
//
// Embeddings run around the edge in order; for a boundary edge they start and end at the
// boundary faces Verts[3] of the first embedding and Verts[2] of the last.
type Edge struct {
	Index      int
	Embeddings []EdgeEmbedding
	Boundary   bool
	Invalid    bool // identified with itself in reverse
}

// TriangleEmbedding places a triangle inside a tetrahedron: Verts[3] is the face number.
type TriangleEmbedding struct {
	Tet   int
	Verts perm.Perm4
}

func (emb TriangleEmbedding) Face() int {
	return emb.Verts.At(3)
}

type Triangle struct {
	Index      int
	Embeddings []TriangleEmbedding // one for a boundary triangle, else two
}

func (tri *Triangle) IsBoundary() bool {
	return len(tri.Embeddings) == 1
}

type Component struct {
	Tets       []int
	Orientable bool
}

// BoundaryComponent is either a connected set of boundary triangles or an ideal vertex.
type BoundaryComponent struct {
	Ideal      bool
	Triangles  []int
	Vertices   []int
	Euler      int
	Orientable bool
}

// Skeleton is the skeletal data of a Triangulation.
type Skeleton struct {
	Vertices           []Vertex
	Edges              []Edge
	Triangles          []Triangle
	Components         []Component
	BoundaryComponents []BoundaryComponent

	tetVertex    [][4]int
	tetEdge      [][6]int
	tetEdgeMap   [][6]perm.Perm4
	tetTriangle  [][4]int
	tetComponent []int
	orientation  []int
}

// VertexOf returns the index of the vertex class of vertex v of tetrahedron t.
func (S *Skeleton) VertexOf(t, v int) int {
	return S.tetVertex[t][v]
}

// EdgeOf returns the index of the edge class of edge en of tetrahedron t.
func (S *Skeleton) EdgeOf(t, en int) int {
	return S.tetEdge[t][en]
}

// EdgeMapping returns the embedding permutation of edge en of tetrahedron t.
func (S *Skeleton) EdgeMapping(t, en int) perm.Perm4 {
	return S.tetEdgeMap[t][en]
}

// TriangleOf returns the index of the triangle class of face f of tetrahedron t.
func (S *Skeleton) TriangleOf(t, f int) int {
	return S.tetTriangle[t][f]
}

// ComponentOf returns the component holding tetrahedron t.
func (S *Skeleton) ComponentOf(t int) int {
	return S.tetComponent[t]
}

// Orientation returns +1 or -1 for tetrahedron t; within an orientable component
// these signs give a consistent orientation.
func (S *Skeleton) Orientation(t int) int {
	return S.orientation[t]
}

func (S *Skeleton) IsOrientable() bool {
	for _, c := range S.Components {
		if !c.Orientable {
			return false
		}
	}
	return true
}

func (S *Skeleton) IsConnected() bool {
	return len(S.Components) <= 1
}

// IsValid returns true if no edge is reversed onto itself and every vertex link is a
// sphere, a disc, or a closed surface.
func (S *Skeleton) IsValid() bool {
	for i := range S.Edges {
		if S.Edges[i].Invalid {
			return false
		}
	}
	for i := range S.Vertices {
		if S.Vertices[i].Kind == VertexInvalid {
			return false
		}
	}
	return true
}

// IsIdeal returns true if some vertex is ideal.
func (S *Skeleton) IsIdeal() bool {
	for i := range S.Vertices {
		if S.Vertices[i].Kind == VertexIdeal {
			return true
		}
	}
	return false
}

// HasBoundaryTriangles returns true if some face is unglued.
func (S *Skeleton) HasBoundaryTriangles() bool {
	for i := range S.Triangles {
		if S.Triangles[i].IsBoundary() {
			return true
		}
	}
	return false
}

// IsClosed returns true if there are no boundary triangles and no ideal vertices.
func (S *Skeleton) IsClosed() bool {
	return !S.HasBoundaryTriangles() && !S.IsIdeal()
}

// EulerCharTri returns V - E + F - T computed over the cells of the triangulation.
func (S *Skeleton) EulerCharTri() int {
	return len(S.Vertices) - len(S.Edges) + len(S.Triangles) - len(S.tetComponent)
}

type unionFind []int

func newUnionFind(n int) unionFind {
	uf := make(unionFind, n)
	for i := range uf {
		uf[i] = i
	}
	return uf
}

func (uf unionFind) find(i int) int {
	for uf[i] != i {
		uf[i] = uf[uf[i]]
		i = uf[i]
	}
	return i
}

func (uf unionFind) union(i, j int) {
	ri, rj := uf.find(i), uf.find(j)
	if ri < rj {
		uf[rj] = ri
	} else if rj < ri {
		uf[ri] = rj
	}
}

func computeSkeleton(T *Triangulation) *Skeleton {
	n := len(T.tets)
	S := &Skeleton{
		tetVertex:    make([][4]int, n),
		tetEdge:      make([][6]int, n),
		tetEdgeMap:   make([][6]perm.Perm4, n),
		tetTriangle:  make([][4]int, n),
		tetComponent: make([]int, n),
		orientation:  make([]int, n),
	}
	S.calcComponents(T)
	S.calcTriangles(T)
	S.calcEdges(T)
	S.calcVertices(T)
	S.calcBoundary(T)
	return S
}

func (S *Skeleton) calcComponents(T *Triangulation) {
	n := len(T.tets)
	for t := range S.tetComponent {
		S.tetComponent[t] = -1
	}
	queue := make([]int, 0, n)
	for start := 0; start < n; start++ {
		if S.tetComponent[start] >= 0 {
			continue
		}
		ci := len(S.Components)
		S.Components = append(S.Components, Component{Orientable: true})
		comp := &S.Components[ci]

		S.tetComponent[start] = ci
		S.orientation[start] = 1
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			t := queue[0]
			queue = queue[1:]
			comp.Tets = append(comp.Tets, t)
			for f := 0; f < 4; f++ {
				u, g, ok := T.Adjacent(t, f)
				if !ok {
					continue
				}
				want := -S.orientation[t]
				if g.Sign() < 0 {
					want = S.orientation[t]
				}
				if S.tetComponent[u] < 0 {
					S.tetComponent[u] = ci
					S.orientation[u] = want
					queue = append(queue, u)
				} else if S.orientation[u] != want {
					comp.Orientable = false
				}
			}
		}
	}
}

func (S *Skeleton) calcTriangles(T *Triangulation) {
	for t := range S.tetTriangle {
		S.tetTriangle[t] = [4]int{-1, -1, -1, -1}
	}
	for t := range T.tets {
		for f := 0; f < 4; f++ {
			if S.tetTriangle[t][f] >= 0 {
				continue
			}
			idx := len(S.Triangles)
			p := triangleOrdering[f]
			tri := Triangle{
				Index:      idx,
				Embeddings: []TriangleEmbedding{{Tet: t, Verts: p}},
			}
			S.tetTriangle[t][f] = idx
			if u, g, ok := T.Adjacent(t, f); ok {
				tri.Embeddings = append(tri.Embeddings, TriangleEmbedding{Tet: u, Verts: g.Compose(p)})
				S.tetTriangle[u][g.At(f)] = idx
			}
			S.Triangles = append(S.Triangles, tri)
		}
	}
}

var swap23 = perm.Transposition(2, 3)

func (S *Skeleton) calcEdges(T *Triangulation) {
	for t := range S.tetEdge {
		S.tetEdge[t] = [6]int{-1, -1, -1, -1, -1, -1}
	}
	for t := range T.tets {
		for en := 0; en < 6; en++ {
			if S.tetEdge[t][en] >= 0 {
				continue
			}
			idx := len(S.Edges)
			S.Edges = append(S.Edges, Edge{Index: idx})
			edge := &S.Edges[idx]

			start := EdgeEmbedding{Tet: t, Verts: edgeOrdering[en]}
			S.tetEdge[t][en] = idx
			S.tetEdgeMap[t][en] = start.Verts

			var back []EdgeEmbedding
			fwd := []EdgeEmbedding{start}
			for dir := 0; dir < 2; dir++ {
				cur := start
				for {
					exit := cur.Verts.At(2)
					if dir == 1 {
						exit = cur.Verts.At(3)
					}
					u, g, ok := T.Adjacent(cur.Tet, exit)
					if !ok {
						edge.Boundary = true
						break
					}
					next := EdgeEmbedding{
						Tet:   u,
						Verts: g.Compose(cur.Verts).Compose(swap23),
					}
					ue := next.Edge()
					if S.tetEdge[u][ue] >= 0 {
						if S.tetEdgeMap[u][ue].At(0) != next.Verts.At(0) {
							edge.Invalid = true
						}
						break
					}
					S.tetEdge[u][ue] = idx
					S.tetEdgeMap[u][ue] = next.Verts
					if dir == 0 {
						fwd = append(fwd, next)
					} else {
						back = append(back, next)
					}
					cur = next
				}
			}

			edge.Embeddings = make([]EdgeEmbedding, 0, len(back)+len(fwd))
			for i := len(back) - 1; i >= 0; i-- {
				edge.Embeddings = append(edge.Embeddings, back[i])
			}
			edge.Embeddings = append(edge.Embeddings, fwd...)
		}
	}
}

func (S *Skeleton) calcVertices(T *Triangulation) {
	n := len(T.tets)
	corners := newUnionFind(4 * n)
	for t := 0; t < n; t++ {
		for f := 0; f < 4; f++ {
			u, g, ok := T.Adjacent(t, f)
			if !ok {
				continue
			}
			for v := 0; v < 4; v++ {
				if v != f {
					corners.union(4*t+v, 4*u+g.At(v))
				}
			}
		}
	}

	rootIndex := make(map[int]int)
	for t := 0; t < n; t++ {
		for v := 0; v < 4; v++ {
			r := corners.find(4*t + v)
			idx, ok := rootIndex[r]
			if !ok {
				idx = len(S.Vertices)
				rootIndex[r] = idx
				S.Vertices = append(S.Vertices, Vertex{
					Index:     idx,
					Component: S.tetComponent[t],
				})
			}
			S.tetVertex[t][v] = idx
			S.Vertices[idx].Embeddings = append(S.Vertices[idx].Embeddings, Corner{t, v})
		}
	}

	// Link vertices are the ends of edges: (t, v, w) is the end at v of edge vw.
	ends := newUnionFind(16 * n)
	boundaryHalfEdges := make([]int, len(S.Vertices))
	for t := 0; t < n; t++ {
		for f := 0; f < 4; f++ {
			u, g, ok := T.Adjacent(t, f)
			for v := 0; v < 4; v++ {
				if v == f {
					continue
				}
				if !ok {
					boundaryHalfEdges[S.tetVertex[t][v]]++
					continue
				}
				for w := 0; w < 4; w++ {
					if w != f && w != v {
						ends.union(16*t+4*v+w, 16*u+4*g.At(v)+g.At(w))
					}
				}
			}
		}
	}
	linkVerts := make([]int, len(S.Vertices))
	for t := 0; t < n; t++ {
		for v := 0; v < 4; v++ {
			for w := 0; w < 4; w++ {
				if w != v {
					if i := 16*t + 4*v + w; ends.find(i) == i {
						linkVerts[S.tetVertex[t][v]]++
					}
				}
			}
		}
	}

	for i := range S.Vertices {
		vtx := &S.Vertices[i]
		F := len(vtx.Embeddings)
		E := (3*F + boundaryHalfEdges[i]) / 2
		vtx.LinkEuler = linkVerts[i] - E + F
		vtx.LinkClosed = boundaryHalfEdges[i] == 0
		vtx.LinkOrientable = S.linkOrientable(T, vtx)
		switch {
		case vtx.LinkClosed && vtx.LinkEuler == 2:
			vtx.Kind = VertexInternal
		case vtx.LinkClosed:
			vtx.Kind = VertexIdeal
		case vtx.LinkEuler == 1:
			vtx.Kind = VertexBoundary
		default:
			vtx.Kind = VertexInvalid
		}
	}
}

// linkOrientable orients the link triangles of vtx from their tetrahedra and checks that
// the orientations agree across every glued face.
func (S *Skeleton) linkOrientable(T *Triangulation, vtx *Vertex) bool {
	sign := make(map[Corner]int, len(vtx.Embeddings))
	start := vtx.Embeddings[0]
	sign[start] = 1
	queue := []Corner{start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for f := 0; f < 4; f++ {
			if f == c.Vertex {
				continue
			}
			u, g, ok := T.Adjacent(c.Tet, f)
			if !ok {
				continue
			}
			next := Corner{u, g.At(c.Vertex)}
			want := -sign[c]
			if g.Sign() < 0 {
				want = sign[c]
			}
			if s, seen := sign[next]; !seen {
				sign[next] = want
				queue = append(queue, next)
			} else if s != want {
				return false
			}
		}
	}
	return true
}

func (S *Skeleton) calcBoundary(T *Triangulation) {
	nTri := len(S.Triangles)
	uf := newUnionFind(nTri)

	// Each boundary edge joins the boundary triangle Verts[3] of its first embedding to the
	// boundary triangle Verts[2] of its last.  rel is the relative sign of their orientations.
	type link struct {
		a, b int
		rel  int
	}
	var links []link
	for i := range S.Edges {
		e := &S.Edges[i]
		if !e.Boundary || e.Invalid {
			continue
		}
		first, last := e.Embeddings[0], e.Embeddings[len(e.Embeddings)-1]
		a := S.tetTriangle[first.Tet][first.Verts.At(3)]
		b := S.tetTriangle[last.Tet][last.Verts.At(2)]
		uf.union(a, b)
		links = append(links, link{a, b, first.Verts.Sign() * last.Verts.Sign()})
	}

	rootIndex := make(map[int]int)
	for i := range S.Triangles {
		if !S.Triangles[i].IsBoundary() {
			continue
		}
		r := uf.find(i)
		bi, ok := rootIndex[r]
		if !ok {
			bi = len(S.BoundaryComponents)
			rootIndex[r] = bi
			S.BoundaryComponents = append(S.BoundaryComponents, BoundaryComponent{Orientable: true})
		}
		S.BoundaryComponents[bi].Triangles = append(S.BoundaryComponents[bi].Triangles, i)
	}

	// Orientations by propagation along the boundary edges.
	sign := make([]int, nTri)
	adj := make(map[int][]link)
	for _, l := range links {
		adj[l.a] = append(adj[l.a], l)
		adj[l.b] = append(adj[l.b], link{l.b, l.a, l.rel})
	}
	for bi := range S.BoundaryComponents {
		bc := &S.BoundaryComponents[bi]
		start := bc.Triangles[0]
		sign[start] = 1
		queue := []int{start}
		for len(queue) > 0 {
			a := queue[0]
			queue = queue[1:]
			for _, l := range adj[a] {
				want := sign[a] * l.rel
				if sign[l.b] == 0 {
					sign[l.b] = want
					queue = append(queue, l.b)
				} else if sign[l.b] != want {
					bc.Orientable = false
				}
			}
		}

		verts := make(map[int]struct{})
		edges := make(map[int]struct{})
		for _, ti := range bc.Triangles {
			emb := S.Triangles[ti].Embeddings[0]
			for i := 0; i < 3; i++ {
				a := emb.Verts.At(i)
				verts[S.tetVertex[emb.Tet][a]] = struct{}{}
				b := emb.Verts.At((i + 1) % 3)
				edges[S.tetEdge[emb.Tet][EdgeNumber[a][b]]] = struct{}{}
			}
		}
		for v := range S.Vertices {
			if _, ok := verts[v]; ok {
				bc.Vertices = append(bc.Vertices, v)
			}
		}
		bc.Euler = len(verts) - len(edges) + len(bc.Triangles)
	}

	for i := range S.Vertices {
		vtx := &S.Vertices[i]
		if vtx.Kind != VertexIdeal {
			continue
		}
		S.BoundaryComponents = append(S.BoundaryComponents, BoundaryComponent{
			Ideal:      true,
			Vertices:   []int{i},
			Euler:      vtx.LinkEuler,
			Orientable: vtx.LinkOrientable,
		})
	}
}
