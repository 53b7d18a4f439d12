package maths

import (
	"math"
	"math/big"
	"math/bits"
	"strconv"
	"strings"

	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/pkg/errors"
)

// Integer is a signed arbitrary precision integer.
//
// Values that fit in an int64 are held inline and never allocate.  Larger magnitudes
// live in an immutable *big.Int that is never shared with callers, so Integer values
// may be copied freely.  The zero value is 0.
type Integer struct {
	small int64
	large *big.Int // non-nil only when the value does not fit in an int64
}

// NewInteger returns the Integer with value v.
func NewInteger(v int64) Integer {
	return Integer{small: v}
}

// IntegerFromBig returns a copy of b as an Integer.
func IntegerFromBig(b *big.Int) Integer {
	return reduce(new(big.Int).Set(b))
}

// ParseInteger reads a base-10 integer with an optional sign.
func ParseInteger(s string) (Integer, error) {
	str := strings.TrimSpace(s)
	if len(str) == 0 {
		return Integer{}, errors.Wrap(gonsurf.ErrParseInteger, "empty string")
	}
	if v, err := strconv.ParseInt(str, 10, 64); err == nil {
		return Integer{small: v}, nil
	}
	b, ok := new(big.Int).SetString(str, 10)
	if !ok {
		return Integer{}, errors.Wrapf(gonsurf.ErrParseInteger, "%q", s)
	}
	return reduce(b), nil
}

// reduce takes ownership of b and returns the canonical Integer for its value.
func reduce(b *big.Int) Integer {
	if b.IsInt64() {
		return Integer{small: b.Int64()}
	}
	return Integer{large: b}
}

// toBig returns a *big.Int holding I's value; the result must not be modified.
func (I Integer) toBig() *big.Int {
	if I.large != nil {
		return I.large
	}
	return big.NewInt(I.small)
}

// FromInt64 returns the Integer with value v.
func (I Integer) FromInt64(v int64) Integer {
	return Integer{small: v}
}

// ToInteger returns I.
func (I Integer) ToInteger() Integer {
	return I
}

// IsNative returns true if I is held inline (fits in an int64).
func (I Integer) IsNative() bool {
	return I.large == nil
}

// Int64 returns I as an int64 and whether the conversion was exact.
func (I Integer) Int64() (int64, bool) {
	if I.large != nil {
		return 0, false
	}
	return I.small, true
}

// Big returns a newly allocated copy of I.
func (I Integer) Big() *big.Int {
	return new(big.Int).Set(I.toBig())
}

func (I Integer) Sign() int {
	if I.large != nil {
		return I.large.Sign()
	}
	switch {
	case I.small > 0:
		return 1
	case I.small < 0:
		return -1
	}
	return 0
}

func (I Integer) IsZero() bool {
	return I.large == nil && I.small == 0
}

func (I Integer) Cmp(J Integer) int {
	if I.large == nil && J.large == nil {
		switch {
		case I.small < J.small:
			return -1
		case I.small > J.small:
			return 1
		}
		return 0
	}
	return I.toBig().Cmp(J.toBig())
}

func (I Integer) Equals(J Integer) bool {
	return I.Cmp(J) == 0
}

func (I Integer) Add(J Integer) Integer {
	if I.large == nil && J.large == nil {
		s := I.small + J.small
		if (I.small^s)&(J.small^s) >= 0 {
			return Integer{small: s}
		}
	}
	return reduce(new(big.Int).Add(I.toBig(), J.toBig()))
}

func (I Integer) Sub(J Integer) Integer {
	if I.large == nil && J.large == nil {
		s := I.small - J.small
		if (I.small^J.small)&(I.small^s) >= 0 {
			return Integer{small: s}
		}
	}
	return reduce(new(big.Int).Sub(I.toBig(), J.toBig()))
}

func (I Integer) Mul(J Integer) Integer {
	if I.large == nil && J.large == nil {
		if p, ok := mul64(I.small, J.small); ok {
			return Integer{small: p}
		}
	}
	return reduce(new(big.Int).Mul(I.toBig(), J.toBig()))
}

func (I Integer) Neg() Integer {
	if I.large == nil && I.small != math.MinInt64 {
		return Integer{small: -I.small}
	}
	return reduce(new(big.Int).Neg(I.toBig()))
}

func (I Integer) Abs() Integer {
	if I.Sign() >= 0 {
		return I
	}
	return I.Neg()
}

// Quo returns I / J truncated towards zero.  J must be non-zero.
func (I Integer) Quo(J Integer) Integer {
	if I.large == nil && J.large == nil {
		if !(I.small == math.MinInt64 && J.small == -1) {
			return Integer{small: I.small / J.small}
		}
	}
	return reduce(new(big.Int).Quo(I.toBig(), J.toBig()))
}

// Rem returns the remainder of I / J truncated towards zero, which has the sign of I.
func (I Integer) Rem(J Integer) Integer {
	if I.large == nil && J.large == nil {
		if J.small == -1 {
			return Integer{}
		}
		return Integer{small: I.small % J.small}
	}
	return reduce(new(big.Int).Rem(I.toBig(), J.toBig()))
}

// DivExact returns I / J where J is known to divide I exactly.
func (I Integer) DivExact(J Integer) Integer {
	return I.Quo(J)
}

// DivisionAlg returns q and r with I = q*J + r and 0 <= r < |J|.
func (I Integer) DivisionAlg(J Integer) (q, r Integer) {
	if I.large == nil && J.large == nil && !(I.small == math.MinInt64 && J.small == -1) {
		qs, rs := I.small/J.small, I.small%J.small
		if rs < 0 {
			if J.small > 0 {
				qs--
				rs += J.small
			} else {
				qs++
				rs -= J.small
			}
		}
		return Integer{small: qs}, Integer{small: rs}
	}
	qb, rb := new(big.Int).DivMod(I.toBig(), J.toBig(), new(big.Int))
	return reduce(qb), reduce(rb)
}

// Mod returns the remainder r of DivisionAlg, with 0 <= r < |J|.
func (I Integer) Mod(J Integer) Integer {
	_, r := I.DivisionAlg(J)
	return r
}

// GCD returns the non-negative greatest common divisor of I and J.
func (I Integer) GCD(J Integer) Integer {
	if I.large == nil && J.large == nil {
		g := gcdU64(absU64(I.small), absU64(J.small))
		if g <= math.MaxInt64 {
			return Integer{small: int64(g)}
		}
	}
	a := new(big.Int).Abs(I.toBig())
	b := new(big.Int).Abs(J.toBig())
	return reduce(new(big.Int).GCD(nil, nil, a, b))
}

// LCM returns the non-negative least common multiple of I and J.
func (I Integer) LCM(J Integer) Integer {
	if I.IsZero() || J.IsZero() {
		return Integer{}
	}
	g := I.GCD(J)
	return I.Quo(g).Mul(J).Abs()
}

// GCDWithCoeffs returns g = gcd(I, J) >= 0 together with u, v such that u*I + v*J = g.
func (I Integer) GCDWithCoeffs(J Integer) (g, u, v Integer) {
	x, y := new(big.Int), new(big.Int)
	gb := new(big.Int).GCD(x, y, I.toBig(), J.toBig())
	return reduce(gb), reduce(x), reduce(y)
}

// Pow returns I raised to the power e.
func (I Integer) Pow(e uint) Integer {
	return reduce(new(big.Int).Exp(I.toBig(), new(big.Int).SetUint64(uint64(e)), nil))
}

// BitLen returns the number of bits in |I|.
func (I Integer) BitLen() int {
	if I.large != nil {
		return I.large.BitLen()
	}
	return bits.Len64(absU64(I.small))
}

func (I Integer) String() string {
	if I.large != nil {
		return I.large.String()
	}
	return strconv.FormatInt(I.small, 10)
}

func absU64(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

func gcdU64(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// mul64 returns a*b and false if the product overflows.
func mul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (c < 0) != ((a < 0) != (b < 0)) || c/b != a {
		return 0, false
	}
	return c, true
}
