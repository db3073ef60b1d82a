package value

import "testing"

func TestEqualCrossKindNumericPromotion(t *testing.T) {
	if !Equal(Int(2), Real(2.0)) {
		t.Error("Equal(2, 2.0) = false, want true")
	}
	if Equal(Int(2), Real(2.5)) {
		t.Error("Equal(2, 2.5) = true, want false")
	}
}

func TestEqualNaNNeverEqual(t *testing.T) {
	n := Real(nan())
	if Equal(n, n) {
		t.Error("Equal(NaN, NaN) = true, want false")
	}
}

func TestEqualArraysAndObjectsStructural(t *testing.T) {
	a := NewArray(Int(1), Str("x"))
	b := NewArray(Int(1), Str("x"))
	if !Equal(a, b) {
		t.Error("structurally equal arrays compared unequal")
	}

	oa := NewObject()
	oa.Set("k", Int(1))
	ob := NewObject()
	ob.Set("k", Int(1))
	if !Equal(ObjectVal(oa), ObjectVal(ob)) {
		t.Error("structurally equal objects compared unequal")
	}
}

func TestEqualFunctionsByIdentity(t *testing.T) {
	f := &Function{Name: "f"}
	a := FuncVal(f)
	b := FuncVal(f)
	c := FuncVal(&Function{Name: "f"})
	if !Equal(a, b) {
		t.Error("same function pointer compared unequal")
	}
	if Equal(a, c) {
		t.Error("distinct function pointers compared equal")
	}
}

func TestCompareNumericExactInt64(t *testing.T) {
	c, err := Compare(Int(5), Int(3))
	if err != nil || c != 1 {
		t.Fatalf("Compare(5, 3) = %d, %v", c, err)
	}
}

func TestCompareStringLexicographic(t *testing.T) {
	c, err := Compare(Str("abc"), Str("abd"))
	if err != nil || c != -1 {
		t.Fatalf("Compare(abc, abd) = %d, %v", c, err)
	}
}

func TestCompareNaNAlwaysFails(t *testing.T) {
	if _, err := Compare(Real(nan()), Int(1)); err == nil {
		t.Error("Compare(NaN, 1) succeeded, want failure")
	}
}

func TestCompareCrossTypeFails(t *testing.T) {
	if _, err := Compare(Str("1"), Int(1)); err == nil {
		t.Error("Compare(string, integer) succeeded, want failure")
	}
	if _, err := Compare(Bool(true), Bool(false)); err == nil {
		t.Error("Compare(boolean, boolean) succeeded, want failure")
	}
}
