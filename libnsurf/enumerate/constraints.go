package enumerate

import (
	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/2x3systems/gonsurf/libnsurf/normal"
	"github.com/2x3systems/gonsurf/libnsurf/tri"
	"github.com/pkg/errors"
)

type extraKind int

const (
	extraNone extraKind = iota
	extraEulerPositive
	extraEulerZero
	extraNonSpun
)

func (kind extraKind) numRows() int {
	switch kind {
	case extraEulerPositive, extraEulerZero:
		return 1
	case extraNonSpun:
		return 2
	}
	return 0
}

func (kind extraKind) String() string {
	switch kind {
	case extraEulerPositive:
		return "euler-positive"
	case extraEulerZero:
		return "euler-zero"
	case extraNonSpun:
		return "non-spun"
	}
	return "none"
}

// extraConstraint holds the linear functions appended beneath the matching equations.
//
// Each row is indexed by the coordinates of the tableau's equations (standard coordinates
// whenever triangles are stored, else quadrilateral coordinates).  Every row gets its own
// extra column with coefficient -1, so that row·x equals that column's variable.
type extraConstraint struct {
	kind extraKind
	rows [][]int64

	// added to each of the two quadrilateral coefficients when they stand in for an octagon
	octAdjustment int64
}

// newExtraConstraint checks that cons can be imposed in encoding enc on T and builds its rows.
//
// An error wrapping ErrCannotSupply means the slope rows could not be supplied; callers
// treat the enumeration as having no solutions.
func newExtraConstraint(T *tri.Triangulation, enc normal.Encoding, cons gonsurf.Constraint, slopes gonsurf.SlopeSource) (extra extraConstraint, err error) {
	switch cons {
	case gonsurf.ConstraintNone:
		return extraConstraint{}, nil

	case gonsurf.ConstraintEulerPositive, gonsurf.ConstraintEulerZero:
		if !enc.Triangles {
			return extra, errors.Wrapf(gonsurf.ErrUnsupportedCombination, "%v needs triangle coordinates", cons)
		}
		extra.kind = extraEulerPositive
		if cons == gonsurf.ConstraintEulerZero {
			if enc.Octagons {
				return extra, errors.Wrap(gonsurf.ErrUnsupportedCombination, "euler-zero with octagons")
			}
			extra.kind = extraEulerZero
		} else {
			extra.octAdjustment = -1
		}
		coeffs, err := normal.EulerCoefficients(T, normal.EncodingStandard)
		if err != nil {
			return extra, err
		}
		extra.rows = [][]int64{coeffs}
		return extra, nil

	case gonsurf.ConstraintNonSpun:
		if enc.Triangles {
			return extra, errors.Wrapf(gonsurf.ErrUnsupportedCombination, "non-spun in %v coordinates", enc.Coords())
		}
		extra.kind = extraNonSpun
		extra.rows, err = slopeRows(T, slopes)
		return extra, err
	}
	return extra, errors.Wrapf(gonsurf.ErrUnsupportedCombination, "constraints %v together", cons)
}

// slopeRows fetches the two cusp slope rows for T.
//
// T must be ideal; anything else wrong with it, or with the source, gives ErrCannotSupply.
func slopeRows(T *tri.Triangulation, slopes gonsurf.SlopeSource) ([][]int64, error) {
	S := T.Skeleton()
	if !S.IsIdeal() {
		return nil, errors.Wrap(gonsurf.ErrInvalidArgument, "non-spun needs an ideal triangulation")
	}
	if !S.IsValid() || !S.IsOrientable() || len(S.BoundaryComponents) != 1 {
		return nil, errors.Wrap(gonsurf.ErrCannotSupply, "non-spun needs a valid orientable triangulation with one cusp")
	}
	if bc := S.BoundaryComponents[0]; !bc.Ideal || bc.Euler != 0 || !bc.Orientable {
		return nil, errors.Wrap(gonsurf.ErrCannotSupply, "cusp is not a torus")
	}
	if slopes == nil {
		return nil, errors.Wrap(gonsurf.ErrCannotSupply, "no slope source")
	}

	n := T.Size()
	rows, err := slopes.SlopeRows(T.String(), n)
	if err != nil {
		return nil, errors.Wrapf(gonsurf.ErrCannotSupply, "slope source: %v", err)
	}
	out := make([][]int64, 2)
	for i, row := range rows {
		if len(row) != 3*n {
			return nil, errors.Wrapf(gonsurf.ErrCannotSupply, "slope row %d has %d entries, want %d", i, len(row), 3*n)
		}
		out[i] = make([]int64, 3*n)
		for c, x := range row {
			if x == nil {
				continue
			}
			if !x.IsInt64() {
				return nil, errors.Wrapf(gonsurf.ErrCoefficientRange, "slope row %d column %d", i, c)
			}
			out[i][c] = x.Int64()
		}
	}
	return out, nil
}

// BanConstraint records which coordinates are banned (forced to zero) and which are marked.
//
// Both are held twice: indexed by the coordinates of the requested encoding (as the double
// description engine sees them), and indexed by tableau column.
type BanConstraint struct {
	banned []bool
	marked []bool

	tabBanned []bool
	tabMarked []bool
}

// newBanConstraint evaluates policy on T in encoding enc.
func newBanConstraint(T *tri.Triangulation, enc normal.Encoding, policy gonsurf.BanPolicy) (*BanConstraint, error) {
	n := T.Size()
	bans := &BanConstraint{
		banned: make([]bool, enc.Len(n)),
		marked: make([]bool, enc.Len(n)),
	}
	S := T.Skeleton()

	// banFace bans every disc with an arc on face f of tetrahedron t.
	banFace := func(t, f int) {
		for q := 0; q < 3; q++ {
			bans.banned[enc.Quad(t, q)] = true
		}
		if enc.Octagons {
			for k := 0; k < 3; k++ {
				bans.banned[enc.Oct(t, k)] = true
			}
		}
		if enc.Triangles {
			for v := 0; v < 4; v++ {
				if v != f {
					bans.banned[enc.Triangle(t, v)] = true
				}
			}
		}
	}

	switch policy.Kind {
	case gonsurf.BanNone:

	case gonsurf.BanBoundary:
		if !enc.Triangles {
			return nil, errors.Wrap(gonsurf.ErrUnsupportedCombination, "boundary bans need triangle coordinates")
		}
		for _, face := range S.Triangles {
			if face.IsBoundary() {
				emb := face.Embeddings[0]
				banFace(emb.Tet, emb.Face())
			}
		}

	case gonsurf.BanEdge:
		if policy.Edge < 0 || policy.Edge >= len(S.Edges) {
			return nil, errors.Wrapf(gonsurf.ErrInvalidArgument, "edge %d of a triangulation with %d edges", policy.Edge, len(S.Edges))
		}
		for _, emb := range S.Edges[policy.Edge].Embeddings {
			en := emb.Edge()
			for q := 0; q < 3; q++ {
				if q != normal.QuadMissing(en) {
					bans.banned[enc.Quad(emb.Tet, q)] = true
				}
			}
			if enc.Octagons {
				for k := 0; k < 3; k++ {
					bans.banned[enc.Oct(emb.Tet, k)] = true
				}
			}
			if enc.Triangles {
				bans.banned[enc.Triangle(emb.Tet, emb.Verts.At(0))] = true
				bans.banned[enc.Triangle(emb.Tet, emb.Verts.At(1))] = true
			}
		}

	case gonsurf.BanTorusBoundary:
		if !enc.Triangles {
			return nil, errors.Wrap(gonsurf.ErrUnsupportedCombination, "torus boundary bans need triangle coordinates")
		}
		for _, bc := range S.BoundaryComponents {
			if bc.Ideal || bc.Euler != 0 || !bc.Orientable {
				continue
			}
			for _, ti := range bc.Triangles {
				emb := S.Triangles[ti].Embeddings[0]
				banFace(emb.Tet, emb.Face())
			}
			for _, vi := range bc.Vertices {
				for _, c := range S.Vertices[vi].Embeddings {
					bans.marked[enc.Triangle(c.Tet, c.Vertex)] = true
				}
			}
		}

	default:
		return nil, errors.Wrapf(gonsurf.ErrInvalidArgument, "ban policy %v", policy.Kind)
	}
	return bans, nil
}

// attach indexes the bans by the columns of tab.
func (bans *BanConstraint) attach(tab *InitialTableau) {
	bans.tabBanned = make([]bool, tab.coordCols)
	bans.tabMarked = make([]bool, tab.coordCols)
	for c := 0; c < tab.coordCols; c++ {
		d := tab.lpEnc.DiscAt(tab.columnPerm[c])
		var i int
		if d.Kind == normal.DiscTriangle {
			i = tab.enc.Triangle(d.Tet, d.Type)
		} else {
			i = tab.enc.Quad(d.Tet, d.Type)
		}
		bans.tabBanned[c] = bans.banned[i]
		bans.tabMarked[c] = bans.marked[i]
	}
}

// Banned returns true if coordinate i of the requested encoding is banned.
func (bans *BanConstraint) Banned(i int) bool {
	return bans.banned[i]
}

// Marked returns true if coordinate i of the requested encoding is marked.
func (bans *BanConstraint) Marked(i int) bool {
	return bans.marked[i]
}

func (bans *BanConstraint) markedColumn(c int) bool {
	return bans.tabMarked[c]
}

func (bans *BanConstraint) count() (banned, marked int) {
	for i := range bans.banned {
		if bans.banned[i] {
			banned++
		}
		if bans.marked[i] {
			marked++
		}
	}
	return
}
