package maths

import (
	"strings"
)

// Vector is a fixed-length dense vector.
//
// A Vector value refers to its elements, so copies of a Vector share storage.
// Use Clone for an independent copy.
type Vector[T Element[T]] struct {
	elts []T
}

// NewVector returns a zero vector of length n.
func NewVector[T Element[T]](n int) Vector[T] {
	return Vector[T]{
		elts: make([]T, n),
	}
}

// VectorOf returns a vector holding the given values.
func VectorOf[T Element[T]](vals ...int64) Vector[T] {
	var zero T
	V := NewVector[T](len(vals))
	for i, v := range vals {
		V.elts[i] = zero.FromInt64(v)
	}
	return V
}

func (V Vector[T]) Len() int {
	return len(V.elts)
}

func (V Vector[T]) At(i int) T {
	return V.elts[i]
}

func (V Vector[T]) Set(i int, v T) {
	V.elts[i] = v
}

// Elements returns the backing elements of V.
func (V Vector[T]) Elements() []T {
	return V.elts
}

func (V Vector[T]) Clone() Vector[T] {
	return Vector[T]{
		elts: append([]T(nil), V.elts...),
	}
}

func (V Vector[T]) Equal(W Vector[T]) bool {
	if len(V.elts) != len(W.elts) {
		return false
	}
	for i := range V.elts {
		if V.elts[i].Cmp(W.elts[i]) != 0 {
			return false
		}
	}
	return true
}

func (V Vector[T]) IsZero() bool {
	for _, x := range V.elts {
		if !x.IsZero() {
			return false
		}
	}
	return true
}

func (V Vector[T]) checkLen(W Vector[T]) {
	if len(V.elts) != len(W.elts) {
		panic("vector length mismatch")
	}
}

// Add sets V += W.
func (V Vector[T]) Add(W Vector[T]) {
	V.checkLen(W)
	for i := range V.elts {
		V.elts[i] = V.elts[i].Add(W.elts[i])
	}
}

// Sub sets V -= W.
func (V Vector[T]) Sub(W Vector[T]) {
	V.checkLen(W)
	for i := range V.elts {
		V.elts[i] = V.elts[i].Sub(W.elts[i])
	}
}

// AddScaled sets V += c*W.
func (V Vector[T]) AddScaled(W Vector[T], c T) {
	V.checkLen(W)
	for i := range V.elts {
		if !W.elts[i].IsZero() {
			V.elts[i] = V.elts[i].Add(W.elts[i].Mul(c))
		}
	}
}

// Scale sets V *= c.
func (V Vector[T]) Scale(c T) {
	for i := range V.elts {
		V.elts[i] = V.elts[i].Mul(c)
	}
}

func (V Vector[T]) Negate() {
	for i := range V.elts {
		V.elts[i] = V.elts[i].Neg()
	}
}

func (V Vector[T]) Dot(W Vector[T]) T {
	V.checkLen(W)
	var sum T
	for i := range V.elts {
		if !V.elts[i].IsZero() && !W.elts[i].IsZero() {
			sum = sum.Add(V.elts[i].Mul(W.elts[i]))
		}
	}
	return sum
}

// GCD returns the non-negative gcd of all elements (zero for the zero vector).
func (V Vector[T]) GCD() T {
	var g T
	for _, x := range V.elts {
		if !x.IsZero() {
			g = g.GCD(x)
			if g.BitLen() == 1 {
				break
			}
		}
	}
	return g
}

// ScaleDown divides V through by the gcd of its elements and returns that gcd.
// The zero vector is left untouched.
func (V Vector[T]) ScaleDown() T {
	g := V.GCD()
	if g.IsZero() || g.BitLen() == 1 {
		return g
	}
	for i := range V.elts {
		if !V.elts[i].IsZero() {
			V.elts[i] = V.elts[i].DivExact(g)
		}
	}
	return g
}

// ToIntegers returns a copy of V as a Vector of Integer.
func (V Vector[T]) ToIntegers() Vector[Integer] {
	out := NewVector[Integer](len(V.elts))
	for i, x := range V.elts {
		out.elts[i] = x.ToInteger()
	}
	return out
}

func (V Vector[T]) String() string {
	var buf strings.Builder
	buf.WriteByte('(')
	for i, x := range V.elts {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(x.String())
	}
	buf.WriteByte(')')
	return buf.String()
}
