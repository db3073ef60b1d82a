package eval

import (
	"testing"

	"asteria/internal/ast"
	"asteria/internal/compiler"
	"asteria/internal/global"
	"asteria/internal/parser"
	"asteria/internal/scope"
	"asteria/internal/value"
)

// evalExpr compiles and evaluates a single expression statement, returning
// its resulting value.
func evalExpr(t *testing.T, source string) value.Value {
	t.Helper()
	stmts, err := parser.Parse("<test>", source+";")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	es, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("stmts[0] is %T, want *ast.ExprStmt", stmts[0])
	}
	nodes := compiler.CompileExpr(es.Expr)
	sc := scope.New(scope.Executive, nil)
	g := global.New(global.APILatest)
	r, ferr := Eval(nodes, sc, g)
	if ferr != nil {
		t.Fatalf("Eval(%q): %v", source, ferr)
	}
	v, ferr := r.Read()
	if ferr != nil {
		t.Fatalf("Read: %v", ferr)
	}
	return v
}

func TestEvalArithmeticPrecedence(t *testing.T) {
	got := evalExpr(t, "1 + 2 * 3")
	if got.Int() != 7 {
		t.Errorf("got %d, want 7", got.Int())
	}
}

func TestEvalLogicalAndShortCircuits(t *testing.T) {
	got := evalExpr(t, "false && (1 / 0 == 0)")
	if got.Truthy() {
		t.Error("expected false, short-circuiting before the division")
	}
}

func TestEvalLogicalOrShortCircuits(t *testing.T) {
	got := evalExpr(t, "true || (1 / 0 == 0)")
	if !got.Truthy() {
		t.Error("expected true, short-circuiting before the division")
	}
}

func TestEvalCoalesceFallsThroughOnNull(t *testing.T) {
	got := evalExpr(t, "null ?? 42")
	if got.Int() != 42 {
		t.Errorf("got %d, want 42", got.Int())
	}
}

func TestEvalCoalesceKeepsNonNullLeft(t *testing.T) {
	got := evalExpr(t, "5 ?? 42")
	if got.Int() != 5 {
		t.Errorf("got %d, want 5", got.Int())
	}
}

func TestEvalTernaryBranch(t *testing.T) {
	if got := evalExpr(t, "1 < 2 ? 10 : 20"); got.Int() != 10 {
		t.Errorf("got %d, want 10", got.Int())
	}
	if got := evalExpr(t, "1 > 2 ? 10 : 20"); got.Int() != 20 {
		t.Errorf("got %d, want 20", got.Int())
	}
}

func TestEvalArrayLiteralAndIndex(t *testing.T) {
	got := evalExpr(t, "[1, 2, 3][1]")
	if got.Int() != 2 {
		t.Errorf("got %d, want 2", got.Int())
	}
}

func TestEvalObjectLiteralAndMember(t *testing.T) {
	got := evalExpr(t, `({a: 1, b: 2}).b`)
	if got.Int() != 2 {
		t.Errorf("got %d, want 2", got.Int())
	}
}

func TestEvalUndeclaredNameFails(t *testing.T) {
	stmts, err := parser.Parse("<test>", "nope;")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	es := stmts[0].(*ast.ExprStmt)
	nodes := compiler.CompileExpr(es.Expr)
	sc := scope.New(scope.Executive, nil)
	g := global.New(global.APILatest)
	if _, ferr := Eval(nodes, sc, g); ferr == nil {
		t.Fatal("expected an unset_member failure for an undeclared name")
	}
}

func TestEvalSubscriptOnNonContainerFails(t *testing.T) {
	stmts, err := parser.Parse("<test>", "(1)[0];")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	es := stmts[0].(*ast.ExprStmt)
	nodes := compiler.CompileExpr(es.Expr)
	sc := scope.New(scope.Executive, nil)
	g := global.New(global.APILatest)
	r, ferr := Eval(nodes, sc, g)
	if ferr != nil {
		t.Fatalf("Eval: %v", ferr)
	}
	if _, ferr := r.Read(); ferr == nil {
		t.Fatal("expected a type mismatch indexing an integer")
	}
}
