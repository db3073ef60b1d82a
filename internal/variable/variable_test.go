package variable

import (
	"testing"

	"asteria/internal/value"
)

func TestSetOnImmutableFails(t *testing.T) {
	v := New(value.Int(1), true)
	if err := v.Set(value.Int(2)); err == nil {
		t.Fatal("expected immutable_assign setting a frozen variable")
	}
	if v.Get().Int() != 1 {
		t.Error("value should be unchanged after a failed Set")
	}
}

func TestForceSetBypassesImmutability(t *testing.T) {
	v := New(value.Int(1), true)
	v.ForceSet(value.Int(2))
	if v.Get().Int() != 2 {
		t.Errorf("got %d, want 2", v.Get().Int())
	}
}

func TestFreezeIsIdempotent(t *testing.T) {
	v := New(value.Int(1), false)
	v.Freeze()
	v.Freeze()
	if !v.IsImmutable() {
		t.Error("expected variable to be immutable after Freeze")
	}
}

func TestRetainRelease(t *testing.T) {
	v := New(value.Null_, false)
	v.Retain()
	v.Retain()
	v.Release()
	if got := v.RefCount(); got != 1 {
		t.Errorf("RefCount() = %d, want 1", got)
	}
}
