package reference

import (
	"testing"

	"asteria/internal/value"
	"asteria/internal/variable"
)

func TestReadArrayIndexNegative(t *testing.T) {
	v := variable.New(value.NewArray(value.Int(1), value.Int(2), value.Int(3)), false)
	r := FromVariable(v)
	r.ZoomIn(ArrayIndex(-1))
	got, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Int() != 3 {
		t.Errorf("got %d, want 3", got.Int())
	}
}

func TestReadArrayIndexOutOfRangeYieldsNull(t *testing.T) {
	v := variable.New(value.NewArray(value.Int(1)), false)
	r := FromVariable(v)
	r.ZoomIn(ArrayIndex(5))
	got, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !got.IsNull() {
		t.Errorf("got %v, want null", got)
	}
}

func TestReadMissingObjectKeyMidPathFails(t *testing.T) {
	v := variable.New(value.ObjectVal(value.NewObject()), false)
	r := FromVariable(v)
	r.ZoomIn(ObjectKey("a")).ZoomIn(ObjectKey("b"))
	if _, err := r.Read(); err == nil {
		t.Fatal("expected unset_member failure reading through a missing intermediate key")
	}
}

func TestReadMissingObjectKeyAtLeafYieldsNull(t *testing.T) {
	v := variable.New(value.ObjectVal(value.NewObject()), false)
	r := FromVariable(v)
	r.ZoomIn(ObjectKey("a"))
	got, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !got.IsNull() {
		t.Errorf("got %v, want null", got)
	}
}

func TestWriteAutoExtendsArrayForward(t *testing.T) {
	v := variable.New(value.NewArray(), false)
	r := FromVariable(v)
	r.ZoomIn(ArrayIndex(2))
	if _, err := r.Write(value.Str("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	arr := v.Get().Array().Elements
	if len(arr) != 3 || arr[2].String_() != "x" || !arr[0].IsNull() || !arr[1].IsNull() {
		t.Fatalf("got %v", arr)
	}
}

func TestWriteAutoExtendsArrayBackward(t *testing.T) {
	v := variable.New(value.NewArray(value.Int(9)), false)
	r := FromVariable(v)
	r.ZoomIn(ArrayIndex(-3))
	if _, err := r.Write(value.Str("y")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	arr := v.Get().Array().Elements
	if len(arr) != 3 || arr[0].String_() != "y" || arr[2].Int() != 9 {
		t.Fatalf("got %v", arr)
	}
}

func TestWriteThroughConstantFails(t *testing.T) {
	r := Constant(value.Int(1))
	if _, err := r.Write(value.Int(2)); err == nil {
		t.Fatal("expected not_assignable writing through a constant reference")
	}
}

func TestWriteThroughImmutableVariableFails(t *testing.T) {
	v := variable.New(value.Int(1), true)
	r := FromVariable(v)
	if _, err := r.Write(value.Int(2)); err == nil {
		t.Fatal("expected immutable_assign writing through a frozen variable")
	}
}

func TestUnsetRequiresPath(t *testing.T) {
	v := variable.New(value.Int(1), false)
	r := FromVariable(v)
	if _, err := r.Unset(); err == nil {
		t.Fatal("expected no_modifier unsetting a rootless reference")
	}
}

func TestUnsetArrayElementResetsToNullWithoutShrinking(t *testing.T) {
	v := variable.New(value.NewArray(value.Int(1), value.Int(2)), false)
	r := FromVariable(v)
	r.ZoomIn(ArrayIndex(0))
	old, err := r.Unset()
	if err != nil {
		t.Fatalf("Unset: %v", err)
	}
	if old.Int() != 1 {
		t.Errorf("old = %v, want 1", old)
	}
	arr := v.Get().Array().Elements
	if len(arr) != 2 || !arr[0].IsNull() {
		t.Fatalf("got %v", arr)
	}
}

func TestCloneIsIndependentOfOriginalPath(t *testing.T) {
	v := variable.New(value.NewArray(value.Int(1), value.Int(2)), false)
	r := FromVariable(v)
	r.ZoomIn(ArrayIndex(0))
	clone := r.Clone()
	clone.ZoomIn(ArrayIndex(1))

	got, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Kind() != value.Integer || got.Int() != 1 {
		t.Errorf("original reference path mutated by clone's ZoomIn: got %v", got)
	}
}

func TestZoomOutAtRootResetsToNullConstant(t *testing.T) {
	v := variable.New(value.Int(5), false)
	r := FromVariable(v)
	r.ZoomOut()
	got, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !got.IsNull() {
		t.Errorf("got %v, want null", got)
	}
	if _, err := r.Write(value.Int(1)); err == nil {
		t.Error("expected not_assignable after ZoomOut past the root")
	}
}
