package compiler

import (
	"testing"

	"asteria/internal/ast"
	"asteria/internal/parser"
)

func parseExpr(t *testing.T, source string) ast.Expr {
	t.Helper()
	stmts, err := parser.Parse("<test>", source+";")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	es, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("stmts[0] is %T, want *ast.ExprStmt", stmts[0])
	}
	return es.Expr
}

func TestCompileExprBinaryIsPostfixOrdered(t *testing.T) {
	nodes := CompileExpr(parseExpr(t, "1 + 2"))
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
	if nodes[0].Kind != NLiteral || nodes[0].Lit.Int() != 1 {
		t.Errorf("nodes[0] = %+v", nodes[0])
	}
	if nodes[1].Kind != NLiteral || nodes[1].Lit.Int() != 2 {
		t.Errorf("nodes[1] = %+v", nodes[1])
	}
	if nodes[2].Kind != NOperator || nodes[2].Op != "+" {
		t.Errorf("nodes[2] = %+v", nodes[2])
	}
}

func TestCompileExprMethodCallHasReceiver(t *testing.T) {
	nodes := CompileExpr(parseExpr(t, "a.b(1)"))
	var call *Node
	for _, n := range nodes {
		if n.Kind == NFunctionCall {
			call = n
		}
	}
	if call == nil {
		t.Fatal("expected an NFunctionCall node")
	}
	if !call.HasReceiver || call.Argc != 1 {
		t.Errorf("call = %+v, want HasReceiver=true Argc=1", call)
	}
}

func TestCompileExprPlainCallHasNoReceiver(t *testing.T) {
	nodes := CompileExpr(parseExpr(t, "f(1, 2)"))
	last := nodes[len(nodes)-1]
	if last.Kind != NFunctionCall || last.HasReceiver || last.Argc != 2 {
		t.Errorf("last = %+v, want a plain 2-arg call", last)
	}
}

func TestCompileExprAssignSetsAssignFlag(t *testing.T) {
	nodes := CompileExpr(parseExpr(t, "x += 1"))
	last := nodes[len(nodes)-1]
	if last.Kind != NOperator || last.Op != "+" || !last.AssignFlag {
		t.Errorf("last = %+v, want op +'s AssignFlag set", last)
	}
}

func TestCompileExprIncDecPrefixFlag(t *testing.T) {
	pre := CompileExpr(parseExpr(t, "++x"))
	post := CompileExpr(parseExpr(t, "x++"))
	if !pre[len(pre)-1].Prefix {
		t.Error("prefix ++x should set Prefix=true")
	}
	if post[len(post)-1].Prefix {
		t.Error("postfix x++ should set Prefix=false")
	}
}

func TestCompileExprTernaryNestsBranches(t *testing.T) {
	nodes := CompileExpr(parseExpr(t, "a ? 1 : 2"))
	last := nodes[len(nodes)-1]
	if last.Kind != NBranch || len(last.Then) == 0 || len(last.Else) == 0 {
		t.Errorf("last = %+v, want populated Then/Else arms", last)
	}
}

func TestCompileProgramPreservesStatementOrder(t *testing.T) {
	stmts, err := parser.Parse("<test>", `var x = 1; return x;`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	block := CompileProgram(stmts)
	if len(block.Stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(block.Stmts))
	}
	if _, ok := block.Stmts[0].(*CVarDecl); !ok {
		t.Errorf("stmts[0] is %T, want *CVarDecl", block.Stmts[0])
	}
	if _, ok := block.Stmts[1].(*CReturn); !ok {
		t.Errorf("stmts[1] is %T, want *CReturn", block.Stmts[1])
	}
}

func TestCompileNestedBlockStatement(t *testing.T) {
	stmts, err := parser.Parse("<test>", `{ var x = 1; }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	block := CompileProgram(stmts)
	if _, ok := block.Stmts[0].(*CBlockStmt); !ok {
		t.Errorf("stmts[0] is %T, want *CBlockStmt", block.Stmts[0])
	}
}
