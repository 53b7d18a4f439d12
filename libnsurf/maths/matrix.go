package maths

import (
	"strings"
)

// Matrix is a dense row-major matrix.
//
// As with Vector, copies of a Matrix share storage; use Clone for an independent copy.
type Matrix[T Element[T]] struct {
	rows int
	cols int
	data []T
}

// NewMatrix returns a zero matrix of the given shape.
func NewMatrix[T Element[T]](rows, cols int) Matrix[T] {
	return Matrix[T]{
		rows: rows,
		cols: cols,
		data: make([]T, rows*cols),
	}
}

// Identity returns the n x n identity matrix.
func Identity[T Element[T]](n int) Matrix[T] {
	var zero T
	M := NewMatrix[T](n, n)
	for i := 0; i < n; i++ {
		M.data[i*n+i] = zero.FromInt64(1)
	}
	return M
}

// MatrixOf builds a matrix from equal-length rows of int64 values.
func MatrixOf[T Element[T]](rows ...[]int64) Matrix[T] {
	var zero T
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	M := NewMatrix[T](len(rows), cols)
	for r, row := range rows {
		if len(row) != cols {
			panic("ragged matrix rows")
		}
		for c, v := range row {
			M.data[r*cols+c] = zero.FromInt64(v)
		}
	}
	return M
}

func (M Matrix[T]) Rows() int {
	return M.rows
}

func (M Matrix[T]) Cols() int {
	return M.cols
}

func (M Matrix[T]) At(r, c int) T {
	return M.data[r*M.cols+c]
}

func (M Matrix[T]) Set(r, c int, v T) {
	M.data[r*M.cols+c] = v
}

// Row returns row r as a slice sharing M's storage.
func (M Matrix[T]) Row(r int) []T {
	return M.data[r*M.cols : (r+1)*M.cols]
}

func (M Matrix[T]) Clone() Matrix[T] {
	return Matrix[T]{
		rows: M.rows,
		cols: M.cols,
		data: append([]T(nil), M.data...),
	}
}

// CopyFrom overwrites M with the entries of src, which must have the same shape.
func (M Matrix[T]) CopyFrom(src Matrix[T]) {
	if M.rows != src.rows || M.cols != src.cols {
		panic("matrix shape mismatch")
	}
	copy(M.data, src.data)
}

func (M Matrix[T]) Equal(N Matrix[T]) bool {
	if M.rows != N.rows || M.cols != N.cols {
		return false
	}
	for i := range M.data {
		if M.data[i].Cmp(N.data[i]) != 0 {
			return false
		}
	}
	return true
}

func (M Matrix[T]) IsZero() bool {
	for _, x := range M.data {
		if !x.IsZero() {
			return false
		}
	}
	return true
}

func (M Matrix[T]) SwapRows(r1, r2 int) {
	if r1 == r2 {
		return
	}
	a, b := M.Row(r1), M.Row(r2)
	for i := range a {
		a[i], b[i] = b[i], a[i]
	}
}

func (M Matrix[T]) SwapCols(c1, c2 int) {
	if c1 == c2 {
		return
	}
	for r := 0; r < M.rows; r++ {
		i := r * M.cols
		M.data[i+c1], M.data[i+c2] = M.data[i+c2], M.data[i+c1]
	}
}

func (M Matrix[T]) NegateRow(r int) {
	row := M.Row(r)
	for i := range row {
		row[i] = row[i].Neg()
	}
}

func (M Matrix[T]) NegateCol(c int) {
	for r := 0; r < M.rows; r++ {
		i := r*M.cols + c
		M.data[i] = M.data[i].Neg()
	}
}

// AddRow sets row dest += coeff * row src.
func (M Matrix[T]) AddRow(dest, src int, coeff T) {
	d, s := M.Row(dest), M.Row(src)
	for i := range d {
		if !s[i].IsZero() {
			d[i] = d[i].Add(s[i].Mul(coeff))
		}
	}
}

// AddCol sets column dest += coeff * column src.
func (M Matrix[T]) AddCol(dest, src int, coeff T) {
	for r := 0; r < M.rows; r++ {
		i := r * M.cols
		if !M.data[i+src].IsZero() {
			M.data[i+dest] = M.data[i+dest].Add(M.data[i+src].Mul(coeff))
		}
	}
}

// CombRows replaces rows r1 and r2 with a*r1 + b*r2 and c*r1 + d*r2 respectively.
func (M Matrix[T]) CombRows(r1, r2 int, a, b, c, d T) {
	x, y := M.Row(r1), M.Row(r2)
	for i := range x {
		xi, yi := x[i], y[i]
		x[i] = a.Mul(xi).Add(b.Mul(yi))
		y[i] = c.Mul(xi).Add(d.Mul(yi))
	}
}

// CombCols replaces columns c1 and c2 with a*c1 + b*c2 and c*c1 + d*c2 respectively.
func (M Matrix[T]) CombCols(c1, c2 int, a, b, c, d T) {
	for r := 0; r < M.rows; r++ {
		i := r * M.cols
		xi, yi := M.data[i+c1], M.data[i+c2]
		M.data[i+c1] = a.Mul(xi).Add(b.Mul(yi))
		M.data[i+c2] = c.Mul(xi).Add(d.Mul(yi))
	}
}

// Mul returns the product M*N using the schoolbook algorithm.
func (M Matrix[T]) Mul(N Matrix[T]) Matrix[T] {
	if M.cols != N.rows {
		panic("matrix shape mismatch")
	}
	P := NewMatrix[T](M.rows, N.cols)
	for r := 0; r < M.rows; r++ {
		for k := 0; k < M.cols; k++ {
			m := M.data[r*M.cols+k]
			if m.IsZero() {
				continue
			}
			for c := 0; c < N.cols; c++ {
				n := N.data[k*N.cols+c]
				if !n.IsZero() {
					i := r*P.cols + c
					P.data[i] = P.data[i].Add(m.Mul(n))
				}
			}
		}
	}
	return P
}

// MulVector returns M*V.
func (M Matrix[T]) MulVector(V Vector[T]) Vector[T] {
	if M.cols != V.Len() {
		panic("matrix shape mismatch")
	}
	out := NewVector[T](M.rows)
	for r := 0; r < M.rows; r++ {
		var sum T
		for c, m := range M.Row(r) {
			if !m.IsZero() {
				sum = sum.Add(m.Mul(V.elts[c]))
			}
		}
		out.elts[r] = sum
	}
	return out
}

func (M Matrix[T]) Transpose() Matrix[T] {
	Mt := NewMatrix[T](M.cols, M.rows)
	for r := 0; r < M.rows; r++ {
		for c := 0; c < M.cols; c++ {
			Mt.data[c*M.rows+r] = M.data[r*M.cols+c]
		}
	}
	return Mt
}

// RowBasis returns a matrix whose rows are linearly independent and span the row space of M.
//
// The rows are in echelon form and each is divided through by the gcd of its entries.
func (M Matrix[T]) RowBasis() Matrix[T] {
	W := M.Clone()
	rank := 0
	for c := 0; c < W.cols && rank < W.rows; c++ {
		p := -1
		for r := rank; r < W.rows; r++ {
			if !W.At(r, c).IsZero() {
				p = r
				break
			}
		}
		if p < 0 {
			continue
		}
		W.SwapRows(rank, p)
		piv := W.At(rank, c)
		for r := rank + 1; r < W.rows; r++ {
			coeff := W.At(r, c)
			if coeff.IsZero() {
				continue
			}
			row, src := W.Row(r), W.Row(rank)
			for i := range row {
				row[i] = row[i].Mul(piv).Sub(src[i].Mul(coeff))
			}
			Vector[T]{elts: row}.ScaleDown()
		}
		rank++
	}

	B := Matrix[T]{
		rows: rank,
		cols: W.cols,
		data: W.data[:rank*W.cols],
	}
	for r := 0; r < rank; r++ {
		Vector[T]{elts: B.Row(r)}.ScaleDown()
	}
	return B
}

// IndependentRows returns the indices, in increasing order, of a maximal set of linearly
// independent rows of M.  Earlier rows are preferred.
func (M Matrix[T]) IndependentRows() []int {
	var (
		picked  []int
		echelon [][]T
		pivots  []int
	)
	for r := 0; r < M.rows; r++ {
		row := make([]T, M.cols)
		copy(row, M.Row(r))
		for k, ech := range echelon {
			p := pivots[k]
			coeff := row[p]
			if coeff.IsZero() {
				continue
			}
			base := ech[p]
			for i := range row {
				row[i] = row[i].Mul(base).Sub(ech[i].Mul(coeff))
			}
			Vector[T]{elts: row}.ScaleDown()
		}
		p := -1
		for i := range row {
			if !row[i].IsZero() {
				p = i
				break
			}
		}
		if p < 0 {
			continue
		}
		picked = append(picked, r)
		echelon = append(echelon, row)
		pivots = append(pivots, p)
	}
	return picked
}

// Det returns the determinant of a square matrix using fraction-free elimination.
func (M Matrix[T]) Det() T {
	var zero T
	if M.rows != M.cols {
		panic("determinant of a non-square matrix")
	}
	n := M.rows
	if n == 0 {
		return zero.FromInt64(1)
	}
	A := M.Clone()
	sign := 1
	prev := zero.FromInt64(1)
	for k := 0; k < n-1; k++ {
		if A.At(k, k).IsZero() {
			p := -1
			for i := k + 1; i < n; i++ {
				if !A.At(i, k).IsZero() {
					p = i
					break
				}
			}
			if p < 0 {
				return zero
			}
			A.SwapRows(k, p)
			sign = -sign
		}
		akk := A.At(k, k)
		for i := k + 1; i < n; i++ {
			aik := A.At(i, k)
			for j := k + 1; j < n; j++ {
				v := A.At(i, j).Mul(akk).Sub(aik.Mul(A.At(k, j)))
				A.Set(i, j, v.DivExact(prev))
			}
		}
		prev = akk
	}
	d := A.At(n-1, n-1)
	if sign < 0 {
		d = d.Neg()
	}
	return d
}

func (M Matrix[T]) String() string {
	var buf strings.Builder
	buf.WriteByte('[')
	for r := 0; r < M.rows; r++ {
		if r > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteByte('[')
		for _, x := range M.Row(r) {
			buf.WriteByte(' ')
			buf.WriteString(x.String())
		}
		buf.WriteString(" ]")
	}
	buf.WriteByte(']')
	return buf.String()
}
