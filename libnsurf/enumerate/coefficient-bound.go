package enumerate

import (
	"sort"

	"github.com/2x3systems/gonsurf/libnsurf/maths"
)

// CoefficientBound returns an upper bound on the magnitude of every integer the tree
// traversal can produce for tab, in tableau entries and right hand sides alike.
//
// With X the Hadamard bound times the largest column sum and Y the Hadamard bound times
// rank times the largest starting right hand side, the worst intermediate value is 2XY;
// the result carries a further factor of 4 as margin.
func CoefficientBound(tab *InitialTableau) maths.Integer {
	n := tab.tri.Size()
	rank := tab.rank

	// Columns that constrainPositive or constrainOct can shift along one path.
	maxColsRHS := n
	if tab.lpEnc.Triangles {
		maxColsRHS = 5 * n
	}
	if tab.enc.Octagons {
		maxColsRHS++
	}
	if tab.extra.kind == extraEulerPositive {
		maxColsRHS++
	}

	maxEntry := maths.Integer{}
	maxColSum := maths.Integer{}
	colNorm := make([]maths.Integer, tab.cols)
	for c := 0; c < tab.cols; c++ {
		sum := maths.Integer{}
		for r := 0; r < rank; r++ {
			x := maths.NewInteger(tab.entry(r, c)).Abs()
			if x.IsZero() {
				continue
			}
			if x.Cmp(maxEntry) > 0 {
				maxEntry = x
			}
			sum = sum.Add(x)
			colNorm[c] = colNorm[c].Add(x.Mul(x))
		}
		if sum.Cmp(maxColSum) > 0 {
			maxColSum = sum
		}
	}

	maxOrigRHS := maxEntry.Mul(maths.NewInteger(int64(maxColsRHS)))

	sort.Slice(colNorm, func(i, j int) bool {
		return colNorm[i].Cmp(colNorm[j]) > 0
	})
	hadamardSquare := maths.NewInteger(1)
	for i := 0; i < rank && i < len(colNorm); i++ {
		if !colNorm[i].IsZero() {
			hadamardSquare = hadamardSquare.Mul(colNorm[i])
		}
	}

	if tab.enc.Octagons {
		// An octagon column is the sum of two quadrilateral columns.
		maxColSum = maxColSum.Mul(maths.NewInteger(2))
		hadamardSquare = hadamardSquare.Mul(maths.NewInteger(4))
	}

	worst := hadamardSquare.Mul(maths.NewInteger(2))
	worst = worst.Mul(maxColSum)
	worst = worst.Mul(maths.NewInteger(int64(rank)))
	worst = worst.Mul(maxOrigRHS)
	return worst.Mul(maths.NewInteger(4))
}

// FitsNative returns true if every value bounded by CoefficientBound fits in an int64.
func FitsNative(bound maths.Integer) bool {
	return bound.BitLen() <= 63
}
