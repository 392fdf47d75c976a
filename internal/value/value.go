// Package value provides a scalar measurement type with explicit
// "undefined" semantics. Arithmetic on an undefined operand yields an
// undefined result instead of panicking or silently treating missing
// data as zero, which keeps control loops alive across sensor gaps,
// invalid readings, and transient zero divisions.
package value

import "math"

// Value is a scalar that is either defined with a magnitude or
// undefined. The zero Value is undefined.
type Value struct {
	magnitude float64
	defined   bool
}

// New returns a defined Value, unless the raw reading is NaN, in which
// case the result is undefined.
func New(magnitude float64) Value {
	if math.IsNaN(magnitude) {
		return Value{}
	}
	return Value{magnitude: magnitude, defined: true}
}

// Undefined returns the undefined Value.
func Undefined() Value {
	return Value{}
}

// Defined reports whether v carries a valid magnitude.
func (v Value) Defined() bool {
	return v.defined
}

// Float returns the magnitude, or NaN when v is undefined.
func (v Value) Float() float64 {
	if !v.defined {
		return math.NaN()
	}
	return v.magnitude
}

// Add returns v + rhs; undefined if either operand is undefined.
func (v Value) Add(rhs Value) Value {
	if !v.defined || !rhs.defined {
		return Value{}
	}
	return New(v.magnitude + rhs.magnitude)
}

// Sub returns v - rhs; undefined if either operand is undefined.
func (v Value) Sub(rhs Value) Value {
	if !v.defined || !rhs.defined {
		return Value{}
	}
	return New(v.magnitude - rhs.magnitude)
}

// Mul returns v * rhs; undefined if either operand is undefined.
func (v Value) Mul(rhs Value) Value {
	if !v.defined || !rhs.defined {
		return Value{}
	}
	return New(v.magnitude * rhs.magnitude)
}

// Div returns v / rhs. The result is undefined if either operand is
// undefined, or if rhs is a defined zero: division by zero degrades to
// undefined rather than panicking or producing an infinity.
func (v Value) Div(rhs Value) Value {
	if !v.defined || !rhs.defined || rhs.magnitude == 0 {
		return Value{}
	}
	return New(v.magnitude / rhs.magnitude)
}

// Accumulate returns v + rhs, treating an undefined operand as
// contributing nothing. This is the one documented exception to
// undefined propagation, for accumulation contexts where a missing
// sample means "no new information" rather than "unknown total".
func (v Value) Accumulate(rhs Value) Value {
	if !v.defined {
		return rhs
	}
	if !rhs.defined {
		return v
	}
	return New(v.magnitude + rhs.magnitude)
}

// Neg returns -v; undefined if v is undefined.
func (v Value) Neg() Value {
	if !v.defined {
		return Value{}
	}
	return New(-v.magnitude)
}

// Abs returns |v|; undefined if v is undefined.
func (v Value) Abs() Value {
	if !v.defined {
		return Value{}
	}
	return New(math.Abs(v.magnitude))
}

// Equal reports whether two Values are equal. Two undefined Values are
// equal; an undefined Value equals nothing else.
func (v Value) Equal(rhs Value) bool {
	if !v.defined || !rhs.defined {
		return !v.defined && !rhs.defined
	}
	return v.magnitude == rhs.magnitude
}

// Less reports v < rhs; always false if either operand is undefined,
// mirroring IEEE NaN comparison semantics.
func (v Value) Less(rhs Value) bool {
	return v.defined && rhs.defined && v.magnitude < rhs.magnitude
}

// Greater reports v > rhs; always false if either operand is undefined.
func (v Value) Greater(rhs Value) bool {
	return v.defined && rhs.defined && v.magnitude > rhs.magnitude
}

// Clamp limits v to [lo, hi]. An undefined limit is ignored, so a
// one-sided clamp is expressed by passing Undefined() for the other
// bound. An undefined v stays undefined.
func (v Value) Clamp(lo, hi Value) Value {
	if !v.defined {
		return Value{}
	}
	if lo.defined && v.magnitude < lo.magnitude {
		return lo
	}
	if hi.defined && v.magnitude > hi.magnitude {
		return hi
	}
	return v
}

// Near reports whether a and b are within the factor significance of
// the larger of their magnitudes. Undefined operands are never near
// anything.
func Near(a, b Value, significance float64) bool {
	if !a.defined || !b.defined {
		return false
	}
	diff := math.Abs(a.magnitude - b.magnitude)
	return diff <= significance*math.Max(math.Abs(a.magnitude), math.Abs(b.magnitude))
}

// Scale maps v from the domain [d0, d1] to the range [r0, r1], without
// clipping. A zero-sized domain or an undefined v yields undefined.
func Scale(v Value, d0, d1, r0, r1 float64) Value {
	if !v.defined || d1 == d0 {
		return Value{}
	}
	return New(r0 + (v.magnitude-d0)*(r1-r0)/(d1-d0))
}
