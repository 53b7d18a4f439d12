package maths

// SmithNormalForm returns D, U and V with U*M*V = D, where U and V are unimodular and
// D is diagonal with d1 | d2 | ... | dk >= 0 followed by zero rows and columns.
//
// Pivots are chosen with minimal absolute value to limit coefficient growth.  Even so,
// intermediate entries can grow super-polynomially for adversarial inputs.
func SmithNormalForm(M Matrix[Integer]) (D, U, V Matrix[Integer]) {
	s := newSNF(M, false)
	s.run()
	return s.D, s.U, s.V
}

// MetricalSmithNormalForm is SmithNormalForm, except that pivots are tie-broken by the norms
// of their row and column, and after each pivot step the remaining block is greedily
// reduced by elementary operations that lower its Frobenius norm.
//
// This usually keeps U and V far smaller than plain SmithNormalForm does, at extra cost.
func MetricalSmithNormalForm(M Matrix[Integer]) (D, U, V Matrix[Integer]) {
	s := newSNF(M, true)
	s.run()
	return s.D, s.U, s.V
}

type snf struct {
	D      Matrix[Integer]
	U      Matrix[Integer]
	V      Matrix[Integer]
	metric bool
}

var intOne = NewInteger(1)

func newSNF(M Matrix[Integer], metric bool) *snf {
	return &snf{
		D:      M.Clone(),
		U:      Identity[Integer](M.rows),
		V:      Identity[Integer](M.cols),
		metric: metric,
	}
}

func (s *snf) swapRows(r1, r2 int) {
	s.D.SwapRows(r1, r2)
	s.U.SwapRows(r1, r2)
}

func (s *snf) swapCols(c1, c2 int) {
	s.D.SwapCols(c1, c2)
	s.V.SwapCols(c1, c2)
}

func (s *snf) addRow(dest, src int, coeff Integer) {
	s.D.AddRow(dest, src, coeff)
	s.U.AddRow(dest, src, coeff)
}

func (s *snf) addCol(dest, src int, coeff Integer) {
	s.D.AddCol(dest, src, coeff)
	s.V.AddCol(dest, src, coeff)
}

func (s *snf) run() {
	n := min(s.D.rows, s.D.cols)
	for k := 0; k < n; k++ {
		if !s.findPivot(k) {
			break
		}
		for {
			s.clearColumn(k)
			s.clearRow(k)
			if !s.isClear(k) {
				continue
			}
			if i := s.nonDivisible(k); i >= 0 {
				s.addRow(k, i, intOne)
				continue
			}
			break
		}
		if s.D.At(k, k).Sign() < 0 {
			s.D.NegateRow(k)
			s.U.NegateRow(k)
		}
		if s.metric {
			s.reduceBlock(k + 1)
		}
	}
}

// findPivot moves a minimal non-zero entry of the block (k.., k..) to (k, k).
func (s *snf) findPivot(k int) bool {
	bestRow, bestCol := -1, -1
	bestAbs := Infinity()
	bestNorm := Infinity()

	var rowNorms, colNorms []Integer
	if s.metric {
		rowNorms, colNorms = s.blockNorms(k)
	}

	for r := k; r < s.D.rows; r++ {
		for c := k; c < s.D.cols; c++ {
			x := s.D.At(r, c)
			if x.IsZero() {
				continue
			}
			a := Large(x.Abs())
			cmp := a.Cmp(bestAbs)
			if cmp > 0 {
				continue
			}
			if s.metric {
				norm := Large(rowNorms[r-k].Mul(colNorms[c-k]))
				if cmp == 0 && norm.Cmp(bestNorm) >= 0 {
					continue
				}
				bestNorm = norm
			} else if cmp == 0 {
				continue
			}
			bestAbs, bestRow, bestCol = a, r, c
		}
	}
	if bestRow < 0 {
		return false
	}
	s.swapRows(k, bestRow)
	s.swapCols(k, bestCol)
	return true
}

// blockNorms returns the l1 norms of the rows and columns of the block (k.., k..).
func (s *snf) blockNorms(k int) (rowNorms, colNorms []Integer) {
	rowNorms = make([]Integer, s.D.rows-k)
	colNorms = make([]Integer, s.D.cols-k)
	for r := k; r < s.D.rows; r++ {
		for c := k; c < s.D.cols; c++ {
			a := s.D.At(r, c).Abs()
			rowNorms[r-k] = rowNorms[r-k].Add(a)
			colNorms[c-k] = colNorms[c-k].Add(a)
		}
	}
	return
}

func (s *snf) clearColumn(k int) {
	for i := k + 1; i < s.D.rows; i++ {
		b := s.D.At(i, k)
		if b.IsZero() {
			continue
		}
		a := s.D.At(k, k)
		if b.Rem(a).IsZero() {
			s.addRow(i, k, b.Quo(a).Neg())
			continue
		}
		g, u, v := a.GCDWithCoeffs(b)
		c, d := b.Quo(g).Neg(), a.Quo(g)
		s.D.CombRows(k, i, u, v, c, d)
		s.U.CombRows(k, i, u, v, c, d)
	}
}

func (s *snf) clearRow(k int) {
	for j := k + 1; j < s.D.cols; j++ {
		b := s.D.At(k, j)
		if b.IsZero() {
			continue
		}
		a := s.D.At(k, k)
		if b.Rem(a).IsZero() {
			s.addCol(j, k, b.Quo(a).Neg())
			continue
		}
		g, u, v := a.GCDWithCoeffs(b)
		c, d := b.Quo(g).Neg(), a.Quo(g)
		s.D.CombCols(k, j, u, v, c, d)
		s.V.CombCols(k, j, u, v, c, d)
	}
}

func (s *snf) isClear(k int) bool {
	for i := k + 1; i < s.D.rows; i++ {
		if !s.D.At(i, k).IsZero() {
			return false
		}
	}
	for j := k + 1; j < s.D.cols; j++ {
		if !s.D.At(k, j).IsZero() {
			return false
		}
	}
	return true
}

// nonDivisible returns a row i > k holding an entry not divisible by the pivot, or -1.
func (s *snf) nonDivisible(k int) int {
	a := s.D.At(k, k)
	for i := k + 1; i < s.D.rows; i++ {
		for j := k + 1; j < s.D.cols; j++ {
			if !s.D.At(i, j).Rem(a).IsZero() {
				return i
			}
		}
	}
	return -1
}

// reduceBlock greedily adds or subtracts rows (then columns) of the block (k.., k..) from
// one another while doing so strictly lowers the squared norm of the row (or column) changed.
func (s *snf) reduceBlock(k int) {
	for improved := true; improved; {
		improved = false
		for i := k; i < s.D.rows; i++ {
			for j := k; j < s.D.rows; j++ {
				if i == j {
					continue
				}
				if sgn := s.rowGain(k, i, j); sgn != 0 {
					s.addRow(i, j, NewInteger(int64(sgn)))
					improved = true
				}
			}
		}
		for i := k; i < s.D.cols; i++ {
			for j := k; j < s.D.cols; j++ {
				if i == j {
					continue
				}
				if sgn := s.colGain(k, i, j); sgn != 0 {
					s.addCol(i, j, NewInteger(int64(sgn)))
					improved = true
				}
			}
		}
	}
}

// rowGain returns +1 or -1 if adding that multiple of row j to row i reduces the squared
// norm of row i, and 0 otherwise.  Since |x + sy|^2 - |x|^2 = |y|^2 + 2s<x,y>, a gain
// exists exactly when 2|<x,y>| > |y|^2.
func (s *snf) rowGain(k, i, j int) int {
	var dot, ny Integer
	for c := k; c < s.D.cols; c++ {
		x, y := s.D.At(i, c), s.D.At(j, c)
		if y.IsZero() {
			continue
		}
		dot = dot.Add(x.Mul(y))
		ny = ny.Add(y.Mul(y))
	}
	return gainSign(dot, ny)
}

func (s *snf) colGain(k, i, j int) int {
	var dot, ny Integer
	for r := k; r < s.D.rows; r++ {
		x, y := s.D.At(r, i), s.D.At(r, j)
		if y.IsZero() {
			continue
		}
		dot = dot.Add(x.Mul(y))
		ny = ny.Add(y.Mul(y))
	}
	return gainSign(dot, ny)
}

func gainSign(dot, ny Integer) int {
	if ny.IsZero() {
		return 0
	}
	twice := dot.Add(dot)
	if twice.Abs().Cmp(ny) <= 0 {
		return 0
	}
	if dot.Sign() > 0 {
		return -1
	}
	return 1
}
