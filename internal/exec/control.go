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

func execSwitch(n *compiler.CSwitch, sc *scope.Scope, g *global.Global) (Status, value.Value, *failure.Failure) {
	r, err := eval.Eval(n.Subject, sc, g)
	if err != nil {
		return StatusNext, value.Null_, err
	}
	subject, err := r.Read()
	if err != nil {
		return StatusNext, value.Null_, err
	}

	start := -1
	defaultIdx := -1
	for i, c := range n.Cases {
		if c.Expr == nil {
			defaultIdx = i
			continue
		}
		cr, err := eval.Eval(c.Expr, sc, g)
		if err != nil {
			return StatusNext, value.Null_, err
		}
		cv, err := cr.Read()
		if err != nil {
			return StatusNext, value.Null_, err
		}
		if value.Equal(subject, cv) {
			start = i
			break
		}
	}
	if start < 0 {
		start = defaultIdx
	}
	if start < 0 {
		return StatusNext, value.Null_, nil
	}

	caseSc := g.AcquireExecutive(sc)
	defer g.ReleaseExecutive(caseSc)
	for i := start; i < len(n.Cases); i++ {
		status, val, err := executeStmts(n.Cases[i].Body.Stmts, caseSc, g)
		if err != nil {
			return StatusNext, value.Null_, err
		}
		switch {
		case status == StatusBreakSwitch || status == StatusBreakUnspec:
			return StatusNext, value.Null_, nil
		case status != StatusNext:
			return status, val, nil
		}
	}
	return StatusNext, value.Null_, nil
}

func execWhile(n *compiler.CWhile, sc *scope.Scope, g *global.Global) (Status, value.Value, *failure.Failure) {
	first := true
	for {
		if n.DoWhile && first {
			// do-while runs the body once before the first test
		} else {
			r, err := eval.Eval(n.Cond, sc, g)
			if err != nil {
				return StatusNext, value.Null_, err
			}
			cv, err := r.Read()
			if err != nil {
				return StatusNext, value.Null_, err
			}
			if !cv.Truthy() {
				return StatusNext, value.Null_, nil
			}
		}
		first = false
		status, val, err := ExecuteBlock(n.Body, sc, g)
		if err != nil {
			return StatusNext, value.Null_, err
		}
		switch {
		case isBreak(status):
			return StatusNext, value.Null_, nil
		case isContinue(status):
			// The top-of-loop test (now that first is false) re-evaluates
			// n.Cond exactly once before the next iteration, whether this
			// is a do-while or a regular while.
			continue
		case status != StatusNext:
			return status, val, nil
		}
	}
}

func execFor(n *compiler.CFor, sc *scope.Scope, g *global.Global) (Status, value.Value, *failure.Failure) {
	loopSc := g.AcquireExecutive(sc)
	defer g.ReleaseExecutive(loopSc)
	if n.Init != nil {
		status, _, err := execStmt(n.Init, loopSc, g)
		if err != nil {
			return StatusNext, value.Null_, err
		}
		if status != StatusNext {
			return status, value.Null_, nil
		}
	}
	for {
		if n.Cond != nil {
			r, err := eval.Eval(n.Cond, loopSc, g)
			if err != nil {
				return StatusNext, value.Null_, err
			}
			cv, err := r.Read()
			if err != nil {
				return StatusNext, value.Null_, err
			}
			if !cv.Truthy() {
				return StatusNext, value.Null_, nil
			}
		}
		status, val, err := ExecuteBlock(n.Body, loopSc, g)
		if err != nil {
			return StatusNext, value.Null_, err
		}
		if isBreak(status) {
			return StatusNext, value.Null_, nil
		}
		if status != StatusNext && !isContinue(status) {
			return status, val, nil
		}
		if n.Step != nil {
			if _, err := eval.Eval(n.Step, loopSc, g); err != nil {
				return StatusNext, value.Null_, err
			}
		}
	}
}

func execForEach(n *compiler.CForEach, sc *scope.Scope, g *global.Global) (Status, value.Value, *failure.Failure) {
	r, err := eval.Eval(n.Subject, sc, g)
	if err != nil {
		return StatusNext, value.Null_, err
	}
	subject, err := r.Read()
	if err != nil {
		return StatusNext, value.Null_, err
	}

	iterSc := g.AcquireExecutive(sc)
	defer g.ReleaseExecutive(iterSc)

	runBody := func(key, val value.Value) (Status, value.Value, *failure.Failure) {
		iterSc.DisposeNamedReferences()
		if n.KeyName != "" {
			iterSc.Declare(n.KeyName, reference.FromVariable(variable.New(key, true)))
		}
		iterSc.Declare(n.ValueName, reference.FromVariable(variable.New(val, false)))
		return ExecuteBlock(n.Body, iterSc, g)
	}

	switch subject.Kind() {
	case value.ArrayKind:
		arr := subject.Array()
		for i, elem := range arr.Elements {
			status, val, err := runBody(value.Int(int64(i)), elem)
			if err != nil {
				return StatusNext, value.Null_, err
			}
			if isBreak(status) {
				return StatusNext, value.Null_, nil
			}
			if status != StatusNext && !isContinue(status) {
				return status, val, nil
			}
		}
	case value.ObjectKind:
		obj := subject.Object()
		for _, k := range obj.Keys() {
			v, _ := obj.Get(k)
			status, val, err := runBody(value.Str(k), v)
			if err != nil {
				return StatusNext, value.Null_, err
			}
			if isBreak(status) {
				return StatusNext, value.Null_, nil
			}
			if status != StatusNext && !isContinue(status) {
				return status, val, nil
			}
		}
	default:
		return StatusNext, value.Null_, subject.TypeMismatch("for-each", "array or object").PushFrame(failure.Frame{Location: n.Loc})
	}
	return StatusNext, value.Null_, nil
}

func execTry(n *compiler.CTry, sc *scope.Scope, g *global.Global) (Status, value.Value, *failure.Failure) {
	status, val, err := ExecuteBlock(n.Body, sc, g)
	if err == nil {
		return status, val, nil
	}
	catchSc := g.AcquireExecutive(sc)
	defer g.ReleaseExecutive(catchSc)
	catchSc.Declare(n.ExceptionName, reference.FromVariable(variable.New(exceptionValue(err), true)))
	return executeStmts(n.Catch.Stmts, catchSc, g)
}

// exceptionValue builds the `{value, backtrace[]}` object a catch clause
// binds its name to.
func exceptionValue(f *failure.Failure) value.Value {
	obj := value.NewObject()
	if payload, ok := f.Payload.(value.Value); ok {
		obj.Set("value", payload)
	} else {
		obj.Set("value", value.Str(f.Message))
	}
	frames := make([]value.Value, len(f.Backtrace))
	for i, fr := range f.Backtrace {
		fo := value.NewObject()
		fo.Set("function", value.Str(fr.Function))
		fo.Set("file", value.Str(fr.Location.File))
		fo.Set("line", value.Int(int64(fr.Location.Line)))
		fo.Set("column", value.Int(int64(fr.Location.Column)))
		fo.Set("statement_index", value.Int(int64(fr.StatementIndex)))
		frames[i] = value.ObjectVal(fo)
	}
	obj.Set("backtrace", value.NewArray(frames...))
	return value.ObjectVal(obj)
}
