package enumerate

import (
	"github.com/2x3systems/gonsurf/libnsurf/maths"
	"github.com/2x3systems/gonsurf/libnsurf/masks"
)

// LPData is one node's view of the tableau: the starting tableau transformed by a matrix of
// row operations, together with the right hand side and the current basis.
//
// The tableau itself is never stored.  Each entry is recomputed from rowOps and the sparse
// starting columns, which keeps clones small enough to hold one per level of the search tree.
//
// A column may be deactivated, which fixes its variable at zero.  Deactivated columns have
// basisRow == 0 without being basis[0]; see isActive.
type LPData[T maths.Element[T]] struct {
	tab      *InitialTableau
	rhs      []T
	rowOps   maths.Matrix[T]
	rank     int
	basis    []int
	basisRow []int
	feasible bool

	// When octPrimary >= 0, columns octPrimary and octSecondary are fused into a single
	// octagon column stored at octPrimary; octSecondary is deactivated.
	octPrimary   int
	octSecondary int

	// Basis sets for cycle detection in makeFeasible, shared by every node of a pool.
	scratch *basisScratch
}

type basisScratch struct {
	curr masks.Bitmask
	old  masks.Bitmask
}

// newLPPool allocates count nodes sized for tab.
func newLPPool[T maths.Element[T]](tab *InitialTableau, count int) []LPData[T] {
	pool := make([]LPData[T], count)
	scratch := &basisScratch{
		curr: masks.NewBitmask(tab.cols),
		old:  masks.NewBitmask(tab.cols),
	}
	for i := range pool {
		lp := &pool[i]
		lp.tab = tab
		lp.scratch = scratch
		lp.rhs = make([]T, tab.rank)
		lp.rowOps = maths.NewMatrix[T](tab.rank, tab.rank)
		lp.basis = make([]int, tab.rank)
		lp.basisRow = make([]int, tab.cols)
		lp.octPrimary = -1
		lp.octSecondary = -1
	}
	return pool
}

// fromInteger converts x to T, panicking with *maths.OverflowError if it does not fit.
func fromInteger[T maths.Element[T]](x maths.Integer) T {
	if v, ok := any(x).(T); ok {
		return v
	}
	i, ok := x.Int64()
	if !ok {
		panic(&maths.OverflowError{Op: "conversion"})
	}
	var zero T
	return zero.FromInt64(i)
}

func (lp *LPData[T]) IsFeasible() bool {
	return lp.feasible
}

// isActive returns false if column pos has been deactivated.
func (lp *LPData[T]) isActive(pos int) bool {
	return !(lp.basisRow[pos] == 0 && (lp.rank == 0 || lp.basis[0] != pos))
}

// entry returns the current tableau entry at row r and column c.
func (lp *LPData[T]) entry(r, c int) T {
	ops := lp.rowOps.Row(r)
	if c == lp.octPrimary {
		adj := lp.tab.extra.octAdjustment
		return multColByRow(lp.tab, ops, c, adj).Add(multColByRow(lp.tab, ops, lp.octSecondary, adj))
	}
	return multColByRow(lp.tab, ops, c, 0)
}

func (lp *LPData[T]) entrySign(r, c int) int {
	return lp.entry(r, c).Sign()
}

// initStart sets up the root node: an initial basis for the starting tableau, with any
// extra constraint columns constrained as their kind requires.
func (lp *LPData[T]) initStart() {
	var zero T
	one := zero.FromInt64(1)
	lp.rank = lp.tab.rank
	for r := 0; r < lp.rank; r++ {
		lp.rhs[r] = zero
		row := lp.rowOps.Row(r)
		for c := range row {
			row[c] = zero
		}
		row[r] = one
	}
	lp.octPrimary = -1
	lp.octSecondary = -1

	lp.findInitialBasis()
	lp.feasible = true

	last := lp.tab.cols - 1
	switch lp.tab.extra.kind {
	case extraEulerPositive:
		lp.constrainPositive(last)
	case extraEulerZero:
		lp.constrainZero(last)
	case extraNonSpun:
		lp.constrainZero(last - 1)
		lp.constrainZero(last)
	}
}

// initClone makes lp a copy of parent.
func (lp *LPData[T]) initClone(parent *LPData[T]) {
	lp.feasible = parent.feasible
	if !lp.feasible {
		return
	}
	copy(lp.rhs, parent.rhs)
	lp.rowOps.CopyFrom(parent.rowOps)
	lp.rank = parent.rank
	copy(lp.basis, parent.basis)
	copy(lp.basisRow, parent.basisRow)
	lp.octPrimary = parent.octPrimary
	lp.octSecondary = parent.octSecondary
}

// findInitialBasis runs Gauss-Jordan elimination over the starting tableau, recording the
// row operations in rowOps.  Rows found to be dependent are dropped.
func (lp *LPData[T]) findInitialBasis() {
	tab := lp.tab
	for c := range lp.basisRow {
		lp.basisRow[c] = -1
	}

	M := maths.NewMatrix[maths.Integer](lp.rank, tab.cols)
	for r := 0; r < lp.rank; r++ {
		for c := 0; c < tab.cols; c++ {
			if v := tab.entry(r, c); v != 0 {
				M.Set(r, c, maths.NewInteger(v))
			}
		}
	}
	ops := maths.Identity[maths.Integer](lp.rank)

	for row := 0; row < lp.rank; row++ {
		c := 0
		for ; c < tab.cols; c++ {
			if lp.basisRow[c] < 0 && !M.At(row, c).IsZero() {
				break
			}
		}
		if c == tab.cols {
			lp.rank--
			M.SwapRows(row, lp.rank)
			ops.SwapRows(row, lp.rank)
			row--
			continue
		}

		lp.basis[row] = c
		lp.basisRow[c] = row
		base := M.At(row, c)
		if base.Sign() < 0 {
			base = base.Neg()
			M.NegateRow(row)
			ops.NegateRow(row)
		}
		for r := 0; r < lp.rank; r++ {
			if r == row {
				continue
			}
			coeff := M.At(r, c)
			if coeff.IsZero() {
				continue
			}
			g := combRowAndNorm(ops, base, r, coeff, row)
			dst, src := M.Row(r), M.Row(row)
			for i := range dst {
				dst[i] = dst[i].Mul(base).Sub(coeff.Mul(src[i])).DivExact(g)
			}
		}
	}

	for r := 0; r < lp.tab.rank; r++ {
		row := lp.rowOps.Row(r)
		for c, x := range ops.Row(r) {
			row[c] = fromInteger[T](x)
		}
	}
}

// combRowAndNorm sets row dest of M to destCoeff*dest - srcCoeff*src and divides it through
// by the gcd of its entries, which is returned.
func combRowAndNorm[T maths.Element[T]](M maths.Matrix[T], destCoeff T, dest int, srcCoeff T, src int) T {
	var g T
	d, s := M.Row(dest), M.Row(src)
	gcdDone := false
	for i := range d {
		d[i] = d[i].Mul(destCoeff).Sub(srcCoeff.Mul(s[i]))
		if !gcdDone && !d[i].IsZero() {
			g = g.GCD(d[i])
			gcdDone = g.BitLen() == 1
		}
	}
	if g.IsZero() || g.BitLen() == 1 {
		return g.FromInt64(1)
	}
	for i := range d {
		if !d[i].IsZero() {
			d[i] = d[i].DivExact(g)
		}
	}
	return g
}

// dropRow removes row r, which no longer constrains anything, from the basis.
func (lp *LPData[T]) dropRow(r int) {
	lp.rank--
	if r == lp.rank {
		return
	}
	lp.rhs[r], lp.rhs[lp.rank] = lp.rhs[lp.rank], lp.rhs[r]
	lp.rowOps.SwapRows(r, lp.rank)
	lp.basis[r] = lp.basis[lp.rank]
	lp.basisRow[lp.basis[r]] = r
}

// pivot moves outCol out of the basis and inCol into it.
func (lp *LPData[T]) pivot(outCol, inCol int) {
	defRow := lp.basisRow[outCol]
	lp.basisRow[outCol] = -1
	lp.basisRow[inCol] = defRow
	lp.basis[defRow] = inCol

	base := lp.entry(defRow, inCol)
	if base.Sign() < 0 {
		base = base.Neg()
		lp.rhs[defRow] = lp.rhs[defRow].Neg()
		lp.rowOps.NegateRow(defRow)
	}
	for r := 0; r < lp.rank; r++ {
		if r == defRow {
			continue
		}
		coeff := lp.entry(r, inCol)
		if coeff.IsZero() {
			continue
		}
		g := combRowAndNorm(lp.rowOps, base, r, coeff, defRow)
		lp.rhs[r] = lp.rhs[r].Mul(base).Sub(coeff.Mul(lp.rhs[defRow])).DivExact(g)
	}
}

// lastNonBasic returns the largest active non-basic column whose entry in row r has the
// given sign (any non-zero sign if sign == 0), or -1.
func (lp *LPData[T]) lastNonBasic(r, sign int) int {
	for c := lp.tab.cols - 1; c >= 0; c-- {
		if lp.basisRow[c] >= 0 {
			continue
		}
		s := lp.entrySign(r, c)
		if (sign == 0 && s != 0) || (sign != 0 && s == sign) {
			return c
		}
	}
	return -1
}

// constrainZero fixes the variable in column pos at zero and deactivates the column.
func (lp *LPData[T]) constrainZero(pos int) {
	if !lp.isActive(pos) || !lp.feasible {
		return
	}

	perhapsInfeasible := false
	if r := lp.basisRow[pos]; r >= 0 {
		if lp.rhs[r].IsZero() {
			if c := lp.lastNonBasic(r, 0); c >= 0 {
				lp.pivot(pos, c)
			} else {
				lp.dropRow(r)
			}
		} else {
			c := lp.lastNonBasic(r, 1)
			if c < 0 {
				lp.feasible = false
				return
			}
			lp.pivot(pos, c)
			perhapsInfeasible = true
		}
	}

	lp.basisRow[pos] = 0
	if perhapsInfeasible {
		lp.makeFeasible()
	}
}

// constrainPositive requires the variable in column pos to be at least one, by substituting
// x = x' + 1.
func (lp *LPData[T]) constrainPositive(pos int) {
	if !lp.isActive(pos) {
		lp.feasible = false
	}
	if !lp.feasible {
		return
	}

	if r := lp.basisRow[pos]; r >= 0 {
		lp.rhs[r] = lp.rhs[r].Sub(lp.entry(r, pos))
		if lp.rhs[r].Sign() < 0 {
			lp.makeFeasible()
		}
		return
	}
	for r := 0; r < lp.rank; r++ {
		lp.rhs[r] = lp.rhs[r].Sub(lp.entry(r, pos))
	}
	lp.makeFeasible()
}

// constrainOct fuses quadrilateral columns q1 and q2 into one octagon column and requires it
// to be at least one.
func (lp *LPData[T]) constrainOct(q1, q2 int) {
	if !lp.isActive(q1) || !lp.isActive(q2) {
		lp.feasible = false
	}
	if !lp.feasible {
		return
	}

	row1, row2 := lp.basisRow[q1], lp.basisRow[q2]
	switch {
	case row1 < 0 && row2 < 0:
		lp.octPrimary, lp.octSecondary = q1, q2
		lp.basisRow[q2] = 0
		lp.constrainPositive(q1)

	case row1 < 0:
		lp.octPrimary, lp.octSecondary = q1, q2
		lp.constrainZero(q2)
		lp.constrainPositive(q1)

	case row2 < 0:
		lp.octPrimary, lp.octSecondary = q2, q1
		lp.constrainZero(q1)
		lp.constrainPositive(q2)

	default:
		lp.octPrimary, lp.octSecondary = q1, q2
		e1 := lp.entry(row1, q1)
		if !e1.IsZero() {
			if e1.Sign() < 0 {
				e1 = e1.Neg()
				lp.rhs[row1] = lp.rhs[row1].Neg()
				lp.rowOps.NegateRow(row1)
			}
			for r := 0; r < lp.rank; r++ {
				if r == row1 {
					continue
				}
				coeff := lp.entry(r, q1)
				if coeff.IsZero() {
					continue
				}
				g := combRowAndNorm(lp.rowOps, e1, r, coeff, row1)
				lp.rhs[r] = lp.rhs[r].Mul(e1).Sub(coeff.Mul(lp.rhs[row1])).DivExact(g)
			}
			lp.makeFeasible()
		} else if c := lp.lastNonBasic(row1, 0); c >= 0 {
			lp.pivot(q1, c)
			lp.makeFeasible()
		} else {
			if !lp.rhs[row1].IsZero() {
				lp.feasible = false
				return
			}
			lp.basisRow[q1] = -1
			lp.dropRow(row1)
		}
		lp.constrainZero(q2)
		lp.constrainPositive(q1)
	}
}

// makeFeasible pivots until every right hand side entry is non-negative, or marks the node
// infeasible.  If a basis repeats it falls back to Bland's rule.
func (lp *LPData[T]) makeFeasible() {
	currBasis, oldBasis := lp.scratch.curr, lp.scratch.old
	currBasis.Reset()
	for r := 0; r < lp.rank; r++ {
		currBasis.Set(lp.basis[r], true)
	}
	oldBasis.CopyFrom(currBasis)
	pow2, nPivots := 1, 0

	for {
		outRow := -1
		var outEntry T
		for r := 0; r < lp.rank; r++ {
			if lp.rhs[r].Sign() >= 0 {
				continue
			}
			e := lp.entry(r, lp.basis[r])
			if outRow < 0 || lp.rhs[r].Mul(outEntry).Cmp(lp.rhs[outRow].Mul(e)) < 0 {
				outRow, outEntry = r, e
			}
		}
		if outRow < 0 {
			return
		}

		c := lp.lastNonBasic(outRow, -1)
		if c < 0 {
			lp.feasible = false
			return
		}
		outCol := lp.basis[outRow]
		lp.pivot(outCol, c)

		currBasis.Set(outCol, false)
		currBasis.Set(c, true)
		if currBasis.Equal(oldBasis) {
			lp.makeFeasibleAntiCycling()
			return
		}
		nPivots++
		if nPivots == pow2 {
			oldBasis.CopyFrom(currBasis)
			pow2 <<= 1
		}
	}
}

func (lp *LPData[T]) makeFeasibleAntiCycling() {
	for {
		outCol := -1
		for r := 0; r < lp.rank; r++ {
			if lp.rhs[r].Sign() < 0 && lp.basis[r] > outCol {
				outCol = lp.basis[r]
			}
		}
		if outCol < 0 {
			return
		}
		c := lp.lastNonBasic(lp.basisRow[outCol], -1)
		if c < 0 {
			lp.feasible = false
			return
		}
		lp.pivot(outCol, c)
	}
}

// enforceBans deactivates every banned coordinate column.
func (lp *LPData[T]) enforceBans(bans *BanConstraint) {
	if bans == nil {
		return
	}
	for c, banned := range bans.tabBanned {
		if banned {
			lp.constrainZero(c)
		}
	}
}

// extractSolution returns the primitive integer vector (indexed by the tableau's encoding)
// at this node.  typ gives the branch taken at each tetrahedron and triangle; non-zero types
// below 4 mean the corresponding variable was shifted by constrainPositive.
func (lp *LPData[T]) extractSolution(typ []int) maths.Vector[maths.Integer] {
	tab := lp.tab
	n := tab.tri.Size()
	perm := tab.columnPerm

	lcm := maths.NewInteger(1)
	for r := 0; r < lp.rank; r++ {
		lcm = lcm.LCM(lp.entry(r, lp.basis[r]).ToInteger())
	}

	v := maths.NewVector[maths.Integer](tab.coordCols)
	for r := 0; r < lp.rank; r++ {
		c := lp.basis[r]
		if c >= tab.coordCols {
			continue
		}
		e := lp.entry(r, c).ToInteger()
		v.Set(perm[c], lcm.DivExact(e).Mul(lp.rhs[r].ToInteger()))
	}

	add := func(c int) {
		i := perm[c]
		v.Set(i, v.At(i).Add(lcm))
	}
	for i := 0; i < n; i++ {
		if t := typ[i]; t > 0 && t < 4 {
			add(3*i + t - 1)
		}
	}
	for c := 3 * n; c < tab.coordCols; c++ {
		if typ[c-2*n] != 0 {
			add(c)
		}
	}
	if lp.octPrimary >= 0 {
		add(lp.octPrimary)
		v.Set(perm[lp.octSecondary], v.At(perm[lp.octPrimary]))
	}

	v.ScaleDown()
	return v
}
