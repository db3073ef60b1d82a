// Package exec runs a compiled statement tree, producing the Status sum
// that block execution short-circuits on: the first non-Next status a
// nested statement returns stops the block and is returned to its
// caller, all the way up to the function call runtime.
package exec

import (
	"asteria/internal/compiler"
	"asteria/internal/eval"
	"asteria/internal/failure"
	"asteria/internal/global"
	"asteria/internal/reference"
	"asteria/internal/scope"
	"asteria/internal/value"
	"asteria/internal/variable"
)

type Status uint8

const (
	StatusNext Status = iota
	StatusBreakUnspec
	StatusBreakSwitch
	StatusBreakWhile
	StatusBreakFor
	StatusContinueUnspec
	StatusContinueWhile
	StatusContinueFor
	StatusReturn
)

func isBreak(s Status) bool {
	return s == StatusBreakUnspec || s == StatusBreakSwitch || s == StatusBreakWhile || s == StatusBreakFor
}

func isContinue(s Status) bool {
	return s == StatusContinueUnspec || s == StatusContinueWhile || s == StatusContinueFor
}

// IsStray reports whether s is a break/continue escaping past every loop
// and switch that could have absorbed it — the function call runtime
// raises failure.StrayControl when a body finishes with one of these.
func IsStray(s Status) bool {
	return isBreak(s) || isContinue(s)
}

// ExecuteBlock runs b's statements in order in a fresh child scope of
// parent, returning the first non-Next status (or Next with the value
// of the block's last statement, which is null unless that statement
// produces one, for a function body's implicit return).
func ExecuteBlock(b *compiler.CompiledBlock, parent *scope.Scope, g *global.Global) (Status, value.Value, *failure.Failure) {
	sc := g.AcquireExecutive(parent)
	defer g.ReleaseExecutive(sc)
	return executeStmts(b.Stmts, sc, g)
}

// ExecuteBody runs a function body's statements directly in sc — the
// scope the call runtime already bound parameters and system references
// into — rather than opening a further nested child scope.
func ExecuteBody(b *compiler.CompiledBlock, sc *scope.Scope, g *global.Global) (Status, value.Value, *failure.Failure) {
	return executeStmts(b.Stmts, sc, g)
}

// executeStmts runs statements directly in sc, without opening another
// child scope — used when the caller (e.g. function invocation) has
// already set up the scope it wants declarations to land in.
func executeStmts(stmts []compiler.CompiledStmt, sc *scope.Scope, g *global.Global) (Status, value.Value, *failure.Failure) {
	var last value.Value = value.Null_
	for _, cs := range stmts {
		if g.Interrupted() {
			return StatusNext, value.Null_, failure.New(failure.Interrupted, "execution interrupted")
		}
		status, val, err := execStmt(cs, sc, g)
		if err != nil {
			return StatusNext, value.Null_, err
		}
		if status != StatusNext {
			return status, val, nil
		}
		last = val
	}
	return StatusNext, last, nil
}

func execStmt(cs compiler.CompiledStmt, sc *scope.Scope, g *global.Global) (Status, value.Value, *failure.Failure) {
	switch n := cs.(type) {
	case *compiler.CExprStmt:
		r, err := eval.Eval(n.Expr, sc, g)
		if err != nil {
			return StatusNext, value.Null_, err
		}
		v, err := r.Read()
		if err != nil {
			return StatusNext, value.Null_, err
		}
		return StatusNext, v, nil

	case *compiler.CVarDecl:
		if sc.IsDeclaredHere(n.Name) {
			return StatusNext, value.Null_, failure.New(failure.Redeclaration, "%q is already declared in this scope", n.Name).PushFrame(failure.Frame{Location: n.Loc})
		}
		val := value.Null_
		if n.Init != nil {
			r, err := eval.Eval(n.Init, sc, g)
			if err != nil {
				return StatusNext, value.Null_, err
			}
			val, err = r.Read()
			if err != nil {
				return StatusNext, value.Null_, err
			}
		}
		v := variable.New(val, n.Immutable)
		sc.Declare(n.Name, reference.FromVariable(v))
		return StatusNext, value.Null_, nil

	case *compiler.CBlockStmt:
		return ExecuteBlock(n.Block, sc, g)

	case *compiler.CIf:
		r, err := eval.Eval(n.Cond, sc, g)
		if err != nil {
			return StatusNext, value.Null_, err
		}
		cv, err := r.Read()
		if err != nil {
			return StatusNext, value.Null_, err
		}
		if cv.Truthy() {
			return ExecuteBlock(n.Then, sc, g)
		}
		if n.Else != nil {
			return ExecuteBlock(n.Else, sc, g)
		}
		return StatusNext, value.Null_, nil

	case *compiler.CSwitch:
		return execSwitch(n, sc, g)

	case *compiler.CWhile:
		return execWhile(n, sc, g)

	case *compiler.CFor:
		return execFor(n, sc, g)

	case *compiler.CForEach:
		return execForEach(n, sc, g)

	case *compiler.CTry:
		return execTry(n, sc, g)

	case *compiler.CThrow:
		r, err := eval.Eval(n.Expr, sc, g)
		if err != nil {
			return StatusNext, value.Null_, err
		}
		v, err := r.Read()
		if err != nil {
			return StatusNext, value.Null_, err
		}
		f := failure.New(failure.User, "%s", v.Render(false)).WithPayload(v)
		return StatusNext, value.Null_, f.PushFrame(failure.Frame{Location: n.Loc})

	case *compiler.CReturn:
		if n.Expr == nil {
			return StatusReturn, value.Null_, nil
		}
		r, err := eval.Eval(n.Expr, sc, g)
		if err != nil {
			return StatusNext, value.Null_, err
		}
		v, err := r.Read()
		if err != nil {
			return StatusNext, value.Null_, err
		}
		return StatusReturn, v, nil

	case *compiler.CBreak:
		return StatusBreakUnspec, value.Null_, nil

	case *compiler.CContinue:
		return StatusContinueUnspec, value.Null_, nil

	case *compiler.CFuncDecl:
		fn := &value.Function{
			Name:     n.Proto.Name,
			Location: n.Proto.Location,
			Params:   n.Proto.Params,
			Variadic: n.Proto.Variadic,
			Body:     n.Proto.Body,
			Closure:  sc,
		}
		if sc.IsDeclaredHere(n.Name) {
			return StatusNext, value.Null_, failure.New(failure.Redeclaration, "%q is already declared in this scope", n.Name).PushFrame(failure.Frame{Location: n.Loc})
		}
		sc.Declare(n.Name, reference.FromVariable(variable.New(value.FuncVal(fn), true)))
		return StatusNext, value.Null_, nil

	default:
		return StatusNext, value.Null_, failure.New(failure.TypeMismatch, "unhandled compiled statement")
	}
}
