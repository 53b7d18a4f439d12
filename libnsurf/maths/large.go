package maths

// LargeInteger is an Integer that may also take the value +infinity.
//
// Infinity absorbs addition and multiplication by non-zero values, division by zero
// yields infinity, and -infinity is not representable: negating infinity or subtracting
// infinity from a finite value panics.
type LargeInteger struct {
	val Integer
	inf bool
}

// Infinity returns +infinity.
func Infinity() LargeInteger {
	return LargeInteger{inf: true}
}

func NewLargeInteger(v int64) LargeInteger {
	return LargeInteger{val: NewInteger(v)}
}

// Large promotes I to a finite LargeInteger.
func Large(I Integer) LargeInteger {
	return LargeInteger{val: I}
}

func (L LargeInteger) IsInfinite() bool {
	return L.inf
}

// Finite returns the value of a finite L.
func (L LargeInteger) Finite() Integer {
	if L.inf {
		panic("LargeInteger: infinite value has no finite representation")
	}
	return L.val
}

func (L LargeInteger) IsZero() bool {
	return !L.inf && L.val.IsZero()
}

func (L LargeInteger) Sign() int {
	if L.inf {
		return 1
	}
	return L.val.Sign()
}

func (L LargeInteger) Cmp(M LargeInteger) int {
	switch {
	case L.inf && M.inf:
		return 0
	case L.inf:
		return 1
	case M.inf:
		return -1
	}
	return L.val.Cmp(M.val)
}

func (L LargeInteger) Add(M LargeInteger) LargeInteger {
	if L.inf || M.inf {
		return Infinity()
	}
	return LargeInteger{val: L.val.Add(M.val)}
}

func (L LargeInteger) Sub(M LargeInteger) LargeInteger {
	if L.inf {
		return L
	}
	if M.inf {
		panic("LargeInteger: finite minus infinity is not representable")
	}
	return LargeInteger{val: L.val.Sub(M.val)}
}

func (L LargeInteger) Mul(M LargeInteger) LargeInteger {
	if L.IsZero() || M.IsZero() {
		return LargeInteger{}
	}
	if L.inf || M.inf {
		if L.Sign() < 0 || M.Sign() < 0 {
			panic("LargeInteger: negative times infinity is not representable")
		}
		return Infinity()
	}
	return LargeInteger{val: L.val.Mul(M.val)}
}

// Quo divides L by M truncating towards zero.  Division by zero yields infinity and
// a finite value divided by infinity yields zero.
func (L LargeInteger) Quo(M LargeInteger) LargeInteger {
	switch {
	case L.inf:
		return L
	case M.IsZero():
		return Infinity()
	case M.inf:
		return LargeInteger{}
	}
	return LargeInteger{val: L.val.Quo(M.val)}
}

func (L LargeInteger) Neg() LargeInteger {
	if L.inf {
		panic("LargeInteger: -infinity is not representable")
	}
	return LargeInteger{val: L.val.Neg()}
}

func (L LargeInteger) String() string {
	if L.inf {
		return "inf"
	}
	return L.val.String()
}
