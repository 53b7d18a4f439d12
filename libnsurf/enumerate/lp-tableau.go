package enumerate

import (
	"strings"

	"github.com/2x3systems/gonsurf/libnsurf/maths"
	"github.com/2x3systems/gonsurf/libnsurf/normal"
	"github.com/2x3systems/gonsurf/libnsurf/tri"
)

// lpCol is one column of the starting tableau in sparse form.
type lpCol struct {
	rows  []int   // matching equation rows with a non-zero entry
	vals  []int64 // entries for rows
	extra []int64 // one coefficient per extra constraint row
}

// InitialTableau is the starting tableau for a tree traversal: a full-rank subset of the
// matching equations, any extra constraint rows beneath them, and a column permutation
// chosen to keep the search tree small.
//
// Tableau columns are grouped so that columns 3i, 3i+1, 3i+2 are the quadrilaterals of one
// tetrahedron, followed (if triangles are stored) by four triangle columns per tetrahedron
// starting at column 3n, followed by one column per extra constraint row.  Octagons never
// appear as columns; the tree represents an octagon as a pair of quadrilateral columns.
type InitialTableau struct {
	tri        *tri.Triangulation
	enc        normal.Encoding // the encoding solutions are reported in
	lpEnc      normal.Encoding // EncodingQuad or EncodingStandard
	extra      extraConstraint
	eqns       maths.Matrix[maths.Integer] // independent matching equations, original column order
	eqnRank    int
	rank       int // eqnRank plus the extra rows
	coordCols  int
	cols       int
	columnPerm []int
	col        []lpCol
}

// NewInitialTableau builds the starting tableau for T in the given encoding.
//
// If enumeration is set, the columns for standard coordinates follow the order chosen for
// quadrilateral coordinates, which suits a full vertex enumeration.
func NewInitialTableau(T *tri.Triangulation, enc normal.Encoding, extra extraConstraint, enumeration bool) *InitialTableau {
	lpEnc := normal.EncodingQuad
	if enc.Triangles {
		lpEnc = normal.EncodingStandard
	}
	E := normal.MatchingEquations(T, lpEnc)
	picked := E.IndependentRows()
	eqns := maths.NewMatrix[maths.Integer](len(picked), E.Cols())
	for r, src := range picked {
		copy(eqns.Row(r), E.Row(src))
	}

	n := T.Size()
	nExtra := extra.kind.numRows()
	tab := &InitialTableau{
		tri:       T,
		enc:       enc,
		lpEnc:     lpEnc,
		extra:     extra,
		eqns:      eqns,
		eqnRank:   len(picked),
		coordCols: lpEnc.Len(n),
	}
	tab.cols = tab.coordCols + nExtra
	tab.rank = tab.eqnRank + nExtra
	tab.columnPerm = make([]int, tab.cols)
	tab.reorder(enumeration)

	tab.col = make([]lpCol, tab.cols)
	for c := 0; c < tab.coordCols; c++ {
		col := &tab.col[c]
		orig := tab.columnPerm[c]
		for r := 0; r < tab.eqnRank; r++ {
			if x := eqns.At(r, orig); !x.IsZero() {
				v, _ := x.Int64()
				col.rows = append(col.rows, r)
				col.vals = append(col.vals, v)
			}
		}
		if nExtra > 0 {
			col.extra = make([]int64, nExtra)
			for i, row := range extra.rows {
				col.extra[i] = row[orig]
			}
		}
	}
	for i := 0; i < nExtra; i++ {
		col := &tab.col[tab.coordCols+i]
		col.extra = make([]int64, nExtra)
		col.extra[i] = -1
	}
	return tab
}

// place puts the columns of tetrahedron k at tableau position pos.
func (tab *InitialTableau) place(pos, k int) {
	n := tab.tri.Size()
	for q := 0; q < 3; q++ {
		tab.columnPerm[3*pos+q] = tab.lpEnc.Quad(k, q)
	}
	if tab.lpEnc.Triangles {
		for v := 0; v < 4; v++ {
			tab.columnPerm[3*n+4*pos+v] = tab.lpEnc.Triangle(k, v)
		}
	}
}

// touches returns true if equation row uses a quadrilateral of tetrahedron k.
func (tab *InitialTableau) touches(row, k int) bool {
	for q := 0; q < 3; q++ {
		if !tab.eqns.At(row, tab.lpEnc.Quad(k, q)).IsZero() {
			return true
		}
	}
	return false
}

// reorder chooses the column permutation.
//
// Rows are taken greedily, each time picking the row that touches the fewest tetrahedra not
// yet seen.  Newly touched tetrahedra are placed from the end of the tableau backwards, so
// tetrahedra that appear in sparse equations are branched on last.  Ties go to the lowest
// row, and tetrahedra within a row are placed in increasing order.
func (tab *InitialTableau) reorder(enumeration bool) {
	n := tab.tri.Size()

	if tab.lpEnc.Triangles && enumeration {
		quad := NewInitialTableau(tab.tri, normal.EncodingQuad, extraConstraint{}, true)
		for i := 0; i < n; i++ {
			tab.place(i, quad.columnPerm[3*i]/3)
		}
	} else {
		used := make([]bool, tab.eqnRank)
		touched := make([]bool, n)
		nTouched := 0
		for i := 0; i < tab.eqnRank; i++ {
			best, bestRow := n+1, -1
			for j := 0; j < tab.eqnRank; j++ {
				if used[j] {
					continue
				}
				curr := 0
				for k := 0; k < n && curr < best; k++ {
					if !touched[k] && tab.touches(j, k) {
						curr++
					}
				}
				if curr < best {
					best, bestRow = curr, j
				}
			}
			used[bestRow] = true
			for k := 0; k < n; k++ {
				if !touched[k] && tab.touches(bestRow, k) {
					touched[k] = true
					tab.place(n-nTouched-1, k)
					nTouched++
				}
			}
		}
		for k := 0; k < n; k++ {
			if !touched[k] {
				touched[k] = true
				tab.place(n-nTouched-1, k)
				nTouched++
			}
		}
	}

	for c := tab.coordCols; c < tab.cols; c++ {
		tab.columnPerm[c] = c
	}
}

func (tab *InitialTableau) Triangulation() *tri.Triangulation {
	return tab.tri
}

// ColumnPerm returns the permutation of columns: tableau column i holds coordinate
// ColumnPerm()[i] of the tableau's equations.  Extra constraint columns map to themselves.
func (tab *InitialTableau) ColumnPerm() []int {
	return tab.columnPerm
}

// Rank returns the number of independent rows, including extra constraint rows.
func (tab *InitialTableau) Rank() int {
	return tab.rank
}

// Columns returns the number of columns, including extra constraint columns.
func (tab *InitialTableau) Columns() int {
	return tab.cols
}

// CoordinateColumns returns the number of columns that hold surface coordinates.
func (tab *InitialTableau) CoordinateColumns() int {
	return tab.coordCols
}

// entry returns the entry of the starting tableau at row r and column c.
func (tab *InitialTableau) entry(r, c int) int64 {
	col := &tab.col[c]
	if r >= tab.eqnRank {
		if i := r - tab.eqnRank; i < len(col.extra) {
			return col.extra[i]
		}
		return 0
	}
	for k, row := range col.rows {
		if row == r {
			return col.vals[k]
		}
	}
	return 0
}

// multColByRow returns the dot product of the given row of ops with column c.
func multColByRow[T maths.Element[T]](tab *InitialTableau, ops []T, c int, octAdjust int64) T {
	var ans T
	col := &tab.col[c]
	for k, row := range col.rows {
		switch v := col.vals[k]; v {
		case 1:
			ans = ans.Add(ops[row])
		case -1:
			ans = ans.Sub(ops[row])
		default:
			ans = ans.Add(ops[row].Mul(ans.FromInt64(v)))
		}
	}
	for i, x := range col.extra {
		x += octAdjust
		if x != 0 {
			ans = ans.Add(ops[tab.eqnRank+i].Mul(ans.FromInt64(x)))
		}
	}
	return ans
}

func (tab *InitialTableau) String() string {
	var buf strings.Builder
	for r := 0; r < tab.rank; r++ {
		for c := 0; c < tab.cols; c++ {
			if c > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(maths.NewInteger(tab.entry(r, c)).String())
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}
