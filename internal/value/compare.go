package value

import (
	"math"

	"asteria/internal/failure"
)

// Equal implements structural equality: NaN != NaN, arrays and objects
// compare element-wise and key-wise, functions and opaque handles compare
// by identity, an integer and a real compare numerically, and values of
// any other pair of different kinds are unequal.
// Equality never fails, unlike ordering comparisons (see Compare) — see
// DESIGN.md Open Questions for why the two diverge on cross-type operands.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		// Integers and reals compare equal across kinds when numerically
		// equal, matching the arithmetic promotion rule for operators.
		if a.kind == Integer && b.kind == Real {
			return float64(a.i) == b.r
		}
		if a.kind == Real && b.kind == Integer {
			return a.r == float64(b.i)
		}
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Boolean:
		return a.b == b.b
	case Integer:
		return a.i == b.i
	case Real:
		return a.r == b.r // NaN == NaN is false here, as IEEE-754 demands
	case String:
		return a.s == b.s
	case OpaqueKind:
		return a.op == b.op
	case FunctionKind:
		return a.fn == b.fn
	case ArrayKind:
		return equalArrays(a.arr, b.arr)
	case ObjectKind:
		return equalObjects(a.obj, b.obj)
	default:
		return false
	}
}

func equalArrays(a, b *Array) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if len(a.Elements) != len(b.Elements) {
		return false
	}
	for i := range a.Elements {
		if !Equal(a.Elements[i], b.Elements[i]) {
			return false
		}
	}
	return true
}

func equalObjects(a, b *Object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Len() != b.Len() {
		return false
	}
	for _, k := range a.keys {
		av := a.m[k]
		bv, ok := b.m[k]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}

// Compare implements ordering: defined only within the numeric types
// (integer/real, with promotion) and within string, never across them and
// never for null/boolean/opaque/function/array/object. Returns -1, 0, or
// 1; NaN on either side always fails with type_mismatch since it has no
// defined order.
func Compare(a, b Value) (int, *failure.Failure) {
	numeric := func(v Value) (float64, bool) {
		switch v.kind {
		case Integer:
			return float64(v.i), true
		case Real:
			return v.r, true
		default:
			return 0, false
		}
	}
	if af, aok := numeric(a); aok {
		if bf, bok := numeric(b); bok {
			if math.IsNaN(af) || math.IsNaN(bf) {
				return 0, failure.New(failure.TypeMismatch, "NaN has no defined order")
			}
			// Exact integer/integer comparison avoids float rounding for
			// magnitudes beyond 2^53.
			if a.kind == Integer && b.kind == Integer {
				switch {
				case a.i < b.i:
					return -1, nil
				case a.i > b.i:
					return 1, nil
				default:
					return 0, nil
				}
			}
			switch {
			case af < bf:
				return -1, nil
			case af > bf:
				return 1, nil
			default:
				return 0, nil
			}
		}
		return 0, failure.New(failure.TypeMismatch, "cannot order %s against %s", a.kind, b.kind)
	}
	if a.kind == String && b.kind == String {
		switch {
		case a.s < b.s:
			return -1, nil
		case a.s > b.s:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, failure.New(failure.TypeMismatch, "cannot order %s against %s", a.kind, b.kind)
}
