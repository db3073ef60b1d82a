package compiler

import (
	"asteria/internal/ast"
	"asteria/internal/value"
)

// CompileExpr lowers one expression into its postfix Node sequence.
func CompileExpr(e ast.Expr) []*Node {
	switch n := e.(type) {
	case *ast.Literal:
		return []*Node{{Kind: NLiteral, Lit: literalValue(n), Loc: n.Location}}
	case *ast.Ident:
		return []*Node{{Kind: NNamedRef, Name: n.Name, Loc: n.Location}}
	case *ast.Subscript:
		base := CompileExpr(n.Base)
		if n.Key != nil {
			return append(base, &Node{Kind: NSubscriptConst, Key: *n.Key, Loc: n.Location})
		}
		out := append(base, CompileExpr(n.Index)...)
		return append(out, &Node{Kind: NSubscriptExpr, Loc: n.Location})
	case *ast.Unary:
		out := CompileExpr(n.Operand)
		op := "neg"
		if n.Op == "!" {
			op = "!"
		}
		return append(out, &Node{Kind: NOperator, Op: op, Loc: n.Location})
	case *ast.IncDec:
		out := CompileExpr(n.Operand)
		return append(out, &Node{Kind: NOperator, Op: n.Op, AssignFlag: true, Prefix: n.Prefix, Loc: n.Location})
	case *ast.Binary:
		out := CompileExpr(n.Left)
		out = append(out, CompileExpr(n.Right)...)
		return append(out, &Node{Kind: NOperator, Op: n.Op, Loc: n.Location})
	case *ast.Assign:
		out := CompileExpr(n.Target)
		out = append(out, CompileExpr(n.Value)...)
		op := n.Op
		if op == "" {
			op = "="
		}
		return append(out, &Node{Kind: NOperator, Op: op, AssignFlag: true, Loc: n.Location})
	case *ast.Ternary:
		out := CompileExpr(n.Cond)
		return append(out, &Node{Kind: NBranch, Then: CompileExpr(n.Then), Else: CompileExpr(n.Else), Loc: n.Location})
	case *ast.Logical:
		out := CompileExpr(n.Left)
		return append(out, &Node{Kind: NLogical, IsOr: n.IsOr, Then: CompileExpr(n.Right), Loc: n.Location})
	case *ast.Coalesce:
		out := CompileExpr(n.Left)
		return append(out, &Node{Kind: NCoalesce, Then: CompileExpr(n.Right), Loc: n.Location})
	case *ast.Call:
		var out []*Node
		hasReceiver := false
		if sub, ok := n.Callee.(*ast.Subscript); ok {
			out = append(out, CompileExpr(sub.Base)...)
			out = append(out, &Node{Kind: NDup, Loc: sub.Location})
			if sub.Key != nil {
				out = append(out, &Node{Kind: NSubscriptConst, Key: *sub.Key, Loc: sub.Location})
			} else {
				out = append(out, CompileExpr(sub.Index)...)
				out = append(out, &Node{Kind: NSubscriptExpr, Loc: sub.Location})
			}
			hasReceiver = true
		} else {
			out = CompileExpr(n.Callee)
		}
		for _, a := range n.Args {
			out = append(out, CompileExpr(a)...)
		}
		return append(out, &Node{Kind: NFunctionCall, Argc: len(n.Args), Tail: n.Tail, HasReceiver: hasReceiver, Loc: n.Location})
	case *ast.ArrayLit:
		var out []*Node
		for _, el := range n.Elements {
			out = append(out, CompileExpr(el)...)
		}
		return append(out, &Node{Kind: NMakeArray, Argc: len(n.Elements), Loc: n.Location})
	case *ast.ObjectLit:
		var out []*Node
		for _, v := range n.Values {
			out = append(out, CompileExpr(v)...)
		}
		return append(out, &Node{Kind: NMakeObject, Keys: n.Keys, Argc: len(n.Values), Loc: n.Location})
	case *ast.FuncExpr:
		proto := &FuncProto{Name: n.Name, Params: n.Params, Variadic: n.Variadic, Body: CompileBlock(n.Body), Location: n.Location}
		return []*Node{{Kind: NMakeClosure, Proto: proto, Loc: n.Location}}
	default:
		panic("compiler: unhandled expression type")
	}
}

func literalValue(n *ast.Literal) value.Value {
	switch n.Kind {
	case ast.LitNull:
		return value.Null_
	case ast.LitBool:
		return value.Bool(n.Bool)
	case ast.LitInt:
		return value.Int(n.Int)
	case ast.LitReal:
		return value.Real(n.Real)
	case ast.LitString:
		return value.Str(n.Str)
	default:
		return value.Null_
	}
}
