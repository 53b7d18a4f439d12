package maths

import (
	"math"
	"math/bits"
	"strconv"

	"github.com/2x3systems/gonsurf/gonsurf"
)

// Element is the arithmetic needed by Vector, Matrix and the LP tableau.
//
// Implementations are value types; every operation returns a new value.
type Element[T any] interface {
	FromInt64(v int64) T
	ToInteger() Integer

	Add(T) T
	Sub(T) T
	Mul(T) T
	Neg() T
	Abs() T
	Quo(T) T
	Rem(T) T
	DivExact(T) T
	GCD(T) T
	LCM(T) T

	Cmp(T) int
	Sign() int
	IsZero() bool
	BitLen() int
	String() string
}

// OverflowError is the panic value raised when a Native operation leaves the int64 range,
// or when a tableau entry exceeds its configured bit limit.
type OverflowError struct {
	Op string
}

func (e *OverflowError) Error() string {
	return "numeric overflow in " + e.Op
}

func (e *OverflowError) Unwrap() error {
	return gonsurf.ErrNumericOverflow
}

func overflow(op string) {
	panic(&OverflowError{Op: op})
}

// Native is a machine integer whose arithmetic panics with *OverflowError instead of wrapping.
type Native int64

func (a Native) FromInt64(v int64) Native {
	return Native(v)
}

func (a Native) ToInteger() Integer {
	return Integer{small: int64(a)}
}

func (a Native) Add(b Native) Native {
	s := a + b
	if (a^s)&(b^s) < 0 {
		overflow("add")
	}
	return s
}

func (a Native) Sub(b Native) Native {
	s := a - b
	if (a^b)&(a^s) < 0 {
		overflow("sub")
	}
	return s
}

func (a Native) Mul(b Native) Native {
	p, ok := mul64(int64(a), int64(b))
	if !ok {
		overflow("mul")
	}
	return Native(p)
}

func (a Native) Neg() Native {
	if a == math.MinInt64 {
		overflow("neg")
	}
	return -a
}

func (a Native) Abs() Native {
	if a < 0 {
		return a.Neg()
	}
	return a
}

func (a Native) Quo(b Native) Native {
	if a == math.MinInt64 && b == -1 {
		overflow("quo")
	}
	return a / b
}

func (a Native) Rem(b Native) Native {
	if b == -1 {
		return 0
	}
	return a % b
}

func (a Native) DivExact(b Native) Native {
	return a.Quo(b)
}

func (a Native) GCD(b Native) Native {
	g := gcdU64(absU64(int64(a)), absU64(int64(b)))
	if g > math.MaxInt64 {
		overflow("gcd")
	}
	return Native(g)
}

func (a Native) LCM(b Native) Native {
	if a == 0 || b == 0 {
		return 0
	}
	return a.Quo(a.GCD(b)).Mul(b).Abs()
}

func (a Native) Cmp(b Native) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (a Native) Sign() int {
	return a.Cmp(0)
}

func (a Native) IsZero() bool {
	return a == 0
}

func (a Native) BitLen() int {
	return bits.Len64(absU64(int64(a)))
}

func (a Native) String() string {
	return strconv.FormatInt(int64(a), 10)
}
