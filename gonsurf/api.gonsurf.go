package gonsurf

import (
	"math/big"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Coords selects the coordinate system solutions are expressed in.
type Coords int32

const (
	CoordsQuad         Coords = iota // 3 quadrilateral types per tetrahedron
	CoordsStandard                   // 4 triangles + 3 quadrilaterals per tetrahedron
	CoordsAlmostNormal               // 4 triangles + 3 quadrilaterals + 3 octagons per tetrahedron
)

func (c Coords) String() string {
	switch c {
	case CoordsQuad:
		return "quad"
	case CoordsStandard:
		return "standard"
	case CoordsAlmostNormal:
		return "almost-normal"
	}
	return "unknown"
}

// ParseCoords reads the form written by Coords.String.
func ParseCoords(s string) (Coords, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quad", "q":
		return CoordsQuad, nil
	case "standard", "std", "s":
		return CoordsStandard, nil
	case "almost-normal", "an", "almostnormal":
		return CoordsAlmostNormal, nil
	}
	return 0, errors.Wrapf(ErrInvalidArgument, "coordinate system %q", s)
}

// Which selects the flavour of enumeration.
type Which int32

const (
	WhichVertex      Which = iota // all vertex rays
	WhichFundamental              // Hilbert basis (not supported)
	WhichOneOf                    // a single non-trivial vertex solution
)

func (w Which) String() string {
	switch w {
	case WhichVertex:
		return "vertex"
	case WhichFundamental:
		return "fundamental"
	case WhichOneOf:
		return "one-of"
	}
	return "unknown"
}

func ParseWhich(s string) (Which, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertex", "":
		return WhichVertex, nil
	case "fundamental":
		return WhichFundamental, nil
	case "one-of", "oneof", "one":
		return WhichOneOf, nil
	}
	return 0, errors.Wrapf(ErrInvalidArgument, "enumeration flavour %q", s)
}

// Algorithm selects the enumeration engine.
type Algorithm int32

const (
	AlgorithmDefault Algorithm = iota
	AlgorithmTree
	AlgorithmDoubleDescription
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmDefault:
		return "default"
	case AlgorithmTree:
		return "tree"
	case AlgorithmDoubleDescription:
		return "dd"
	}
	return "unknown"
}

func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "default", "":
		return AlgorithmDefault, nil
	case "tree":
		return AlgorithmTree, nil
	case "dd", "double-description", "doubledescription":
		return AlgorithmDoubleDescription, nil
	}
	return 0, errors.Wrapf(ErrInvalidArgument, "algorithm %q", s)
}

// Constraint is a set of extra linear constraints.
type Constraint uint32

const (
	ConstraintEulerPositive Constraint = 1 << iota // Euler characteristic >= 1
	ConstraintEulerZero                            // Euler characteristic == 0
	ConstraintNonSpun                              // both cusp slopes vanish

	ConstraintNone Constraint = 0
)

func (c Constraint) Has(flag Constraint) bool {
	return c&flag != 0
}

func (c Constraint) String() string {
	if c == ConstraintNone {
		return "none"
	}
	var parts []string
	if c.Has(ConstraintEulerPositive) {
		parts = append(parts, "euler-positive")
	}
	if c.Has(ConstraintEulerZero) {
		parts = append(parts, "euler-zero")
	}
	if c.Has(ConstraintNonSpun) {
		parts = append(parts, "non-spun")
	}
	return strings.Join(parts, ",")
}

// ParseConstraint reads a comma separated list in the form written by Constraint.String.
func ParseConstraint(s string) (Constraint, error) {
	c := ConstraintNone
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "", "none":
		case "euler-positive", "euler>0":
			c |= ConstraintEulerPositive
		case "euler-zero", "euler=0":
			c |= ConstraintEulerZero
		case "non-spun", "nonspun":
			c |= ConstraintNonSpun
		default:
			return 0, errors.Wrapf(ErrInvalidArgument, "constraint %q", part)
		}
	}
	return c, nil
}

// BanKind selects which disc types are forbidden.
type BanKind int32

const (
	BanNone          BanKind = iota
	BanBoundary              // discs meeting a boundary triangle
	BanEdge                  // discs meeting BanPolicy.Edge
	BanTorusBoundary         // discs meeting a real torus boundary; marks triangles in its vertex links
)

func (k BanKind) String() string {
	switch k {
	case BanNone:
		return "none"
	case BanBoundary:
		return "boundary"
	case BanEdge:
		return "edge"
	case BanTorusBoundary:
		return "torus-boundary"
	}
	return "unknown"
}

func ParseBanKind(s string) (BanKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return BanNone, nil
	case "boundary":
		return BanBoundary, nil
	case "edge":
		return BanEdge, nil
	case "torus-boundary", "torus":
		return BanTorusBoundary, nil
	}
	return 0, errors.Wrapf(ErrInvalidArgument, "ban policy %q", s)
}

// BanPolicy names a ban oracle and its parameter.
type BanPolicy struct {
	Kind BanKind
	Edge int // edge index for BanEdge
}

// Solution is one emitted vertex solution.
type Solution interface {

	// Coords returns the coordinate system of this vector.
	Coords() Coords

	// Len returns the number of coordinates.
	Len() int

	// Entry returns coordinate i as a newly allocated integer.
	Entry(i int) *big.Int

	// AlmostNormal returns true if some octagon coordinate is non-zero.
	AlmostNormal() bool

	// ColumnPerm returns the column permutation the enumerator used: tableau column i held
	// coordinate ColumnPerm()[i].
	ColumnPerm() []int

	String() string
}

// Sink receives each accepted solution, synchronously on the enumerating goroutine.
type Sink interface {
	Emit(S Solution)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(S Solution)

func (fn SinkFunc) Emit(S Solution) {
	fn(S)
}

// SlopeSource supplies the two cusp slope rows used by ConstraintNonSpun.
//
// Rows are indexed by quadrilateral coordinate (3 per tetrahedron).  An error means the
// rows cannot be supplied for this triangulation.
type SlopeSource interface {
	SlopeRows(triangulation string, numTets int) ([2][]*big.Int, error)
}

// EnumOpts configures an enumeration run.
type EnumOpts struct {
	Coords      Coords
	Which       Which
	Algorithm   Algorithm
	Constraints Constraint
	Ban         BanPolicy

	// Cancel is polled between branches and after each emitted solution.  May be nil.
	Cancel *atomic.Bool

	// CoefficientBits, if > 0, caps the bit length of tableau entries.  A worst-case bound
	// above the cap is rejected with ErrNumericOverflow before anything is emitted.
	CoefficientBits int

	// Accept, if set, filters candidate solutions in WhichOneOf mode; a rejected
	// candidate resumes the search.
	Accept func(S Solution) bool

	// Slopes supplies slope rows for ConstraintNonSpun.
	Slopes SlopeSource
}

// IsCancelled reports whether the cancellation flag is set.
func (opts *EnumOpts) IsCancelled() bool {
	return opts.Cancel != nil && opts.Cancel.Load()
}

// Block returns the number of coordinates per tetrahedron for c.
func (c Coords) Block() int {
	switch c {
	case CoordsQuad:
		return 3
	case CoordsStandard:
		return 7
	case CoordsAlmostNormal:
		return 10
	}
	return 0
}
