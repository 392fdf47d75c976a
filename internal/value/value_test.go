package value_test

import (
	"math"
	"testing"

	"codeberg.org/nmarks/creditctl/internal/value"
	"github.com/stretchr/testify/assert"
)

func TestNewFromNaN(t *testing.T) {
	assert.False(t, value.New(math.NaN()).Defined(), "NaN reading should be undefined")
	assert.True(t, value.New(0).Defined())
	assert.True(t, value.New(-3.5).Defined())
}

func TestUndefinedPropagation(t *testing.T) {
	def := value.New(2.0)
	undef := value.Undefined()

	ops := map[string]func(a, b value.Value) value.Value{
		"add": value.Value.Add,
		"sub": value.Value.Sub,
		"mul": value.Value.Mul,
		"div": value.Value.Div,
	}

	for name, op := range ops {
		assert.False(t, op(undef, def).Defined(), "%s with undefined lhs", name)
		assert.False(t, op(def, undef).Defined(), "%s with undefined rhs", name)
		assert.False(t, op(undef, undef).Defined(), "%s with both undefined", name)
	}
}

func TestArithmetic(t *testing.T) {
	a := value.New(6.0)
	b := value.New(1.5)

	assert.InDelta(t, 7.5, a.Add(b).Float(), 1e-9)
	assert.InDelta(t, 4.5, a.Sub(b).Float(), 1e-9)
	assert.InDelta(t, 9.0, a.Mul(b).Float(), 1e-9)
	assert.InDelta(t, 4.0, a.Div(b).Float(), 1e-9)
	assert.InDelta(t, -6.0, a.Neg().Float(), 1e-9)
	assert.InDelta(t, 6.0, a.Neg().Abs().Float(), 1e-9)
}

func TestDivByDefinedZero(t *testing.T) {
	q := value.New(5.0).Div(value.New(0.0))
	assert.False(t, q.Defined(), "division by a defined zero should degrade to undefined")
}

func TestAccumulate(t *testing.T) {
	sum := value.Undefined()
	for _, s := range []value.Value{value.New(1), value.Undefined(), value.New(2), value.Undefined()} {
		sum = sum.Accumulate(s)
	}
	assert.InDelta(t, 3.0, sum.Float(), 1e-9, "undefined samples contribute nothing")

	assert.False(t, value.Undefined().Accumulate(value.Undefined()).Defined())
}

func TestComparisons(t *testing.T) {
	lo := value.New(1.0)
	hi := value.New(2.0)
	undef := value.Undefined()

	assert.True(t, lo.Less(hi))
	assert.True(t, hi.Greater(lo))
	assert.False(t, lo.Less(undef))
	assert.False(t, undef.Less(lo))
	assert.False(t, undef.Greater(lo))

	assert.True(t, undef.Equal(value.Undefined()), "two undefined values compare equal")
	assert.False(t, undef.Equal(lo))
	assert.False(t, lo.Equal(undef))
	assert.True(t, lo.Equal(value.New(1.0)))
}

func TestClamp(t *testing.T) {
	lo := value.New(-1.0)
	hi := value.New(1.0)

	assert.InDelta(t, 1.0, value.New(3.0).Clamp(lo, hi).Float(), 1e-9)
	assert.InDelta(t, -1.0, value.New(-3.0).Clamp(lo, hi).Float(), 1e-9)
	assert.InDelta(t, 0.5, value.New(0.5).Clamp(lo, hi).Float(), 1e-9)

	// Undefined limits are ignored (one-sided clamps).
	assert.InDelta(t, 3.0, value.New(3.0).Clamp(lo, value.Undefined()).Float(), 1e-9)
	assert.InDelta(t, -1.0, value.New(-3.0).Clamp(lo, value.Undefined()).Float(), 1e-9)

	assert.False(t, value.Undefined().Clamp(lo, hi).Defined())
}

func TestNear(t *testing.T) {
	assert.True(t, value.Near(value.New(1.0), value.New(1.00005), 1e-4))
	assert.False(t, value.Near(value.New(1.0), value.New(1.1), 1e-4))
	assert.False(t, value.Near(value.Undefined(), value.New(1.0), 1e-4))
}

func TestScale(t *testing.T) {
	// Map [0,1] drive onto [0,1500] heater watts.
	assert.InDelta(t, 750.0, value.Scale(value.New(0.5), 0, 1, 0, 1500).Float(), 1e-9)
	// Decreasing range.
	assert.InDelta(t, 25.0, value.Scale(value.New(0.75), 0, 1, 100, 0).Float(), 1e-9)
	// Degenerate domain or undefined input yields undefined.
	assert.False(t, value.Scale(value.New(0.5), 1, 1, 0, 10).Defined())
	assert.False(t, value.Scale(value.Undefined(), 0, 1, 0, 10).Defined())
}
