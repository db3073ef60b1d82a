package value

import (
	"math"
	"testing"
)

func TestDivIntegerOverflow(t *testing.T) {
	_, err := Div(Int(math.MinInt64), Int(-1))
	if err == nil {
		t.Fatal("expected overflow failure")
	}
}

func TestDivByZero(t *testing.T) {
	if _, err := Div(Int(1), Int(0)); err == nil {
		t.Fatal("expected division-by-zero failure")
	}
	if _, err := Div(Real(1), Real(0)); err != nil {
		t.Fatalf("real division by zero should not fail, got %v", err)
	}
}

func TestModOverflow(t *testing.T) {
	if _, err := Mod(Int(math.MinInt64), Int(-1)); err == nil {
		t.Fatal("expected overflow failure")
	}
}

func TestMulStringRepeat(t *testing.T) {
	got, err := Mul(Str("ab"), Int(3))
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if got.String_() != "ababab" {
		t.Errorf("got %q, want %q", got.String_(), "ababab")
	}
}

func TestMulStringRepeatNegativeCountFails(t *testing.T) {
	if _, err := Mul(Str("ab"), Int(-1)); err == nil {
		t.Fatal("expected failure for negative repeat count")
	}
}

func TestAddStringConcat(t *testing.T) {
	got, err := Add(Str("a"), Str("b"))
	if err != nil || got.String_() != "ab" {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestAddPromotesToReal(t *testing.T) {
	got, err := Add(Int(1), Real(0.5))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got.Kind() != Real || got.Float() != 1.5 {
		t.Errorf("got %v, want real 1.5", got)
	}
}

func TestToIntegerRejectsNonFinite(t *testing.T) {
	if _, err := ToInteger(Real(math.Inf(1))); err == nil {
		t.Fatal("expected failure converting +Inf to integer")
	}
}

func TestNegTypeMismatch(t *testing.T) {
	if _, err := Neg(Str("x")); err == nil {
		t.Fatal("expected type_mismatch negating a string")
	}
}
