package value

import (
	"math"
	"strings"

	"asteria/internal/failure"
)

// promote reduces two numeric operands to a common representation: if
// either is real, both become real (as floats); otherwise both stay
// integer. ok is false if either operand is not numeric.
func promote(a, b Value) (ai, bi int64, ar, br float64, isReal, ok bool) {
	an := a.kind == Integer || a.kind == Real
	bn := b.kind == Integer || b.kind == Real
	if !an || !bn {
		return 0, 0, 0, 0, false, false
	}
	if a.kind == Real || b.kind == Real {
		if a.kind == Real {
			ar = a.r
		} else {
			ar = float64(a.i)
		}
		if b.kind == Real {
			br = b.r
		} else {
			br = float64(b.i)
		}
		return 0, 0, ar, br, true, true
	}
	return a.i, b.i, 0, 0, false, true
}

// Add implements `+`: numeric addition with promotion, or string
// concatenation when both operands are strings.
func Add(a, b Value) (Value, *failure.Failure) {
	if a.kind == String && b.kind == String {
		return Str(a.s + b.s), nil
	}
	ai, bi, ar, br, isReal, ok := promote(a, b)
	if !ok {
		return Value{}, a.TypeMismatch("operator +", "numeric or string")
	}
	if isReal {
		return Real(ar + br), nil
	}
	return Int(ai + bi), nil
}

func Sub(a, b Value) (Value, *failure.Failure) {
	ai, bi, ar, br, isReal, ok := promote(a, b)
	if !ok {
		return Value{}, a.TypeMismatch("operator -", "numeric")
	}
	if isReal {
		return Real(ar - br), nil
	}
	return Int(ai - bi), nil
}

// Mul implements `*`: numeric multiplication with promotion, or
// string-repeat when one operand is a string and the other an integer
// repeat count (negative counts fail).
func Mul(a, b Value) (Value, *failure.Failure) {
	if a.kind == String && b.kind == Integer {
		return repeatString(a.s, b.i)
	}
	if a.kind == Integer && b.kind == String {
		return repeatString(b.s, a.i)
	}
	ai, bi, ar, br, isReal, ok := promote(a, b)
	if !ok {
		return Value{}, a.TypeMismatch("operator *", "numeric or string*integer")
	}
	if isReal {
		return Real(ar * br), nil
	}
	return Int(ai * bi), nil
}

func repeatString(s string, count int64) (Value, *failure.Failure) {
	if count < 0 {
		return Value{}, failure.New(failure.TypeMismatch, "string repeat count must not be negative, got %d", count)
	}
	return Str(strings.Repeat(s, int(count))), nil
}

func Div(a, b Value) (Value, *failure.Failure) {
	ai, bi, ar, br, isReal, ok := promote(a, b)
	if !ok {
		return Value{}, a.TypeMismatch("operator /", "numeric")
	}
	if isReal {
		return Real(ar / br), nil
	}
	if bi == 0 {
		return Value{}, failure.New(failure.Arithmetic, "integer division by zero")
	}
	if ai == math.MinInt64 && bi == -1 {
		return Value{}, failure.New(failure.Arithmetic, "integer division overflow")
	}
	return Int(ai / bi), nil
}

func Mod(a, b Value) (Value, *failure.Failure) {
	ai, bi, ar, br, isReal, ok := promote(a, b)
	if !ok {
		return Value{}, a.TypeMismatch("operator %", "numeric")
	}
	if isReal {
		return Real(math.Mod(ar, br)), nil
	}
	if bi == 0 {
		return Value{}, failure.New(failure.Arithmetic, "integer modulo by zero")
	}
	if ai == math.MinInt64 && bi == -1 {
		return Value{}, failure.New(failure.Arithmetic, "integer modulo overflow")
	}
	return Int(ai % bi), nil
}

// Neg implements unary `-`.
func Neg(a Value) (Value, *failure.Failure) {
	switch a.kind {
	case Integer:
		return Int(-a.i), nil
	case Real:
		return Real(-a.r), nil
	default:
		return Value{}, a.TypeMismatch("unary -", "numeric")
	}
}

// ToInteger implements real-to-integer conversion: truncation toward
// zero, failing on non-finite input.
func ToInteger(a Value) (Value, *failure.Failure) {
	switch a.kind {
	case Integer:
		return a, nil
	case Real:
		if math.IsNaN(a.r) || math.IsInf(a.r, 0) {
			return Value{}, failure.New(failure.Arithmetic, "cannot convert non-finite real %v to integer", a.r)
		}
		return Int(int64(a.r)), nil
	default:
		return Value{}, a.TypeMismatch("integer conversion", "numeric")
	}
}

// ToReal promotes integer or real to real.
func ToReal(a Value) (Value, *failure.Failure) {
	switch a.kind {
	case Real:
		return a, nil
	case Integer:
		return Real(float64(a.i)), nil
	default:
		return Value{}, a.TypeMismatch("real conversion", "numeric")
	}
}
