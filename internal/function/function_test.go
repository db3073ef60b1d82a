package function

import (
	"testing"

	"asteria/internal/compiler"
	"asteria/internal/exec"
	"asteria/internal/failure"
	"asteria/internal/global"
	"asteria/internal/parser"
	"asteria/internal/reference"
	"asteria/internal/value"
)

// compileFunc declares the single function in source (by name) in a fresh
// root scope and returns the resulting callable value.
func compileFunc(t *testing.T, source, name string) (value.Value, *global.Global) {
	t.Helper()
	stmts, err := parser.Parse("<test>", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	block := compiler.CompileProgram(stmts)
	g := global.New(global.APILatest)
	sc := g.AcquireExecutive(nil)
	if _, _, ferr := exec.ExecuteBody(block, sc, g); ferr != nil {
		t.Fatalf("declare: %v", ferr)
	}
	ref, ok := sc.GetNamedReference(name)
	if !ok {
		t.Fatalf("function %q was not declared", name)
	}
	v, ferr := ref.Read()
	if ferr != nil {
		t.Fatalf("read: %v", ferr)
	}
	return v, g
}

func argRefs(vals ...value.Value) []*reference.Reference {
	refs := make([]*reference.Reference, len(vals))
	for i, v := range vals {
		refs[i] = reference.Temporary(v)
	}
	return refs
}

func TestInvokeScriptedBindsParamsAndReturns(t *testing.T) {
	fn, g := compileFunc(t, `func add(a, b) { return a + b; }`, "add")
	r, ferr := Invoke(g, fn, reference.Constant(value.Null_), argRefs(value.Int(3), value.Int(4)), false, failure.Location{File: "<test>", Line: 1})
	if ferr != nil {
		t.Fatalf("Invoke: %v", ferr)
	}
	v, _ := r.Read()
	if v.Int() != 7 {
		t.Errorf("got %d, want 7", v.Int())
	}
}

func TestInvokeScriptedMissingArgsBindNull(t *testing.T) {
	fn, g := compileFunc(t, `func f(a, b) { return a; }`, "f")
	r, ferr := Invoke(g, fn, reference.Constant(value.Null_), argRefs(), false, failure.Location{File: "<test>", Line: 1})
	if ferr != nil {
		t.Fatalf("Invoke: %v", ferr)
	}
	v, _ := r.Read()
	if !v.IsNull() {
		t.Errorf("got %v, want null", v)
	}
}

func TestInvokeScriptedNoReturnYieldsNull(t *testing.T) {
	fn, g := compileFunc(t, `func f() { var x = 1; }`, "f")
	r, ferr := Invoke(g, fn, reference.Constant(value.Null_), argRefs(), false, failure.Location{File: "<test>", Line: 1})
	if ferr != nil {
		t.Fatalf("Invoke: %v", ferr)
	}
	v, _ := r.Read()
	if !v.IsNull() {
		t.Errorf("got %v, want null", v)
	}
}

func TestInvokeScriptedVariadicTailViaVarg(t *testing.T) {
	fn, g := compileFunc(t, `func f(a, ...) { return __varg(); }`, "f")
	r, ferr := Invoke(g, fn, reference.Constant(value.Null_), argRefs(value.Int(1), value.Int(2), value.Int(3)), false, failure.Location{File: "<test>", Line: 1})
	if ferr != nil {
		t.Fatalf("Invoke: %v", ferr)
	}
	v, _ := r.Read()
	if v.Int() != 2 {
		t.Errorf("got %d, want 2 variadic tail elements", v.Int())
	}
}

func TestInvokeScriptedStrayBreakFails(t *testing.T) {
	fn, g := compileFunc(t, `func f() { break; }`, "f")
	if _, ferr := Invoke(g, fn, reference.Constant(value.Null_), argRefs(), false, failure.Location{File: "<test>", Line: 1}); ferr == nil {
		t.Fatal("expected a stray_control failure for a break escaping the function body")
	}
}

func TestInvokeScriptedReceiverBoundAsThis(t *testing.T) {
	fn, g := compileFunc(t, `func f() { return __this; }`, "f")
	r, ferr := Invoke(g, fn, reference.Constant(value.Str("receiver")), argRefs(), false, failure.Location{File: "<test>", Line: 1})
	if ferr != nil {
		t.Fatalf("Invoke: %v", ferr)
	}
	v, _ := r.Read()
	if v.String_() != "receiver" {
		t.Errorf("got %q, want %q", v.String_(), "receiver")
	}
}

func TestInvokeNativeFunction(t *testing.T) {
	g := global.New(global.APILatest)
	fn := &value.Function{
		Name: "double",
		Native: func(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
			return value.Int(args[0].Int() * 2), nil
		},
	}
	r, ferr := Invoke(g, value.FuncVal(fn), reference.Constant(value.Null_), argRefs(value.Int(21)), false, failure.Location{File: "<test>", Line: 1})
	if ferr != nil {
		t.Fatalf("Invoke: %v", ferr)
	}
	v, _ := r.Read()
	if v.Int() != 42 {
		t.Errorf("got %d, want 42", v.Int())
	}
}

func TestInvokeNativeFailurePushesFrame(t *testing.T) {
	g := global.New(global.APILatest)
	fn := &value.Function{
		Name: "fails",
		Native: func(_ interface{}, _ value.Value, _ []value.Value) (value.Value, *failure.Failure) {
			return value.Value{}, failure.New(failure.Argument, "bad call")
		},
	}
	_, ferr := Invoke(g, value.FuncVal(fn), reference.Constant(value.Null_), argRefs(), false, failure.Location{File: "<test>", Line: 7})
	if ferr == nil {
		t.Fatal("expected a failure")
	}
	if len(ferr.Backtrace) == 0 || ferr.Backtrace[0].Function != "fails" {
		t.Errorf("expected the native function name pushed onto the backtrace, got %+v", ferr.Backtrace)
	}
}
