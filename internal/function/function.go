// Package function implements the invocation protocol: acquiring a call
// frame, binding parameters and system references, running a scripted
// body or a native binding, and returning the call frame to the pool on
// exit. internal/eval calls into this package indirectly through the
// eval.CallHook variable it installs, breaking the
// eval -> function -> exec -> eval import cycle.
package function

import (
	"asteria/internal/compiler"
	"asteria/internal/eval"
	"asteria/internal/exec"
	"asteria/internal/failure"
	"asteria/internal/global"
	"asteria/internal/reference"
	"asteria/internal/scope"
	"asteria/internal/value"
	"asteria/internal/variable"
)

// Install wires eval.CallHook to Invoke. The root embedding package calls
// this once during program setup, before any script runs.
func Install() {
	eval.CallHook = Invoke
}

// Invoke runs callee (a value.FunctionKind value) with receiver bound as
// __this and args as its positional arguments, following the invocation
// protocol: bind parameters, inject system references, execute, release
// the call frame.
func Invoke(g *global.Global, callee value.Value, receiver *reference.Reference, args []*reference.Reference, tail bool, loc failure.Location) (*reference.Reference, *failure.Failure) {
	fn := callee.Function()
	if fn.IsNative() {
		return invokeNative(g, fn, receiver, args, loc)
	}
	return invokeScripted(g, fn, receiver, args, loc)
}

func invokeNative(g *global.Global, fn *value.Function, receiver *reference.Reference, args []*reference.Reference, loc failure.Location) (*reference.Reference, *failure.Failure) {
	recvVal, err := receiver.Read()
	if err != nil {
		return nil, err
	}
	argVals := make([]value.Value, len(args))
	for i, a := range args {
		v, err := a.Read()
		if err != nil {
			return nil, err
		}
		argVals[i] = v
	}
	result, err := fn.Native(g, recvVal, argVals)
	if err != nil {
		return nil, err.PushFrame(failure.Frame{Function: fn.Name, Location: loc})
	}
	return reference.Temporary(result), nil
}

func invokeScripted(g *global.Global, fn *value.Function, receiver *reference.Reference, args []*reference.Reference, loc failure.Location) (*reference.Reference, *failure.Failure) {
	closure, _ := fn.Closure.(*scope.Scope)
	body, _ := fn.Body.(*compiler.CompiledBlock)

	sc := g.AcquireExecutive(closure)
	defer g.ReleaseExecutive(sc)

	tail := bindParams(sc, fn, args)
	bindSystemRefs(sc, fn, receiver, loc, tail)

	status, val, err := exec.ExecuteBody(body, sc, g)
	if err != nil {
		return nil, err.PushFrame(failure.Frame{Function: fn.Name, Location: fn.Location})
	}
	switch status {
	case exec.StatusReturn:
		return reference.Temporary(val), nil
	case exec.StatusNext:
		return reference.Temporary(value.Null_), nil
	default:
		return nil, failure.New(failure.StrayControl, "break/continue escaped function %q", fn.Name).
			PushFrame(failure.Frame{Function: fn.Name, Location: fn.Location})
	}
}

// bindParams declares each of fn's parameters in sc, consuming one
// argument per name (null if exhausted), and — when fn is variadic —
// returns the unconsumed tail's values for __varg.
func bindParams(sc *scope.Scope, fn *value.Function, args []*reference.Reference) []value.Value {
	for i, name := range fn.Params {
		var v value.Value
		if i < len(args) {
			rv, err := args[i].Read()
			if err == nil {
				v = rv
			}
		}
		sc.Declare(name, reference.FromVariable(variable.New(v, false)))
	}
	if !fn.Variadic || len(args) <= len(fn.Params) {
		return nil
	}
	rest := args[len(fn.Params):]
	tail := make([]value.Value, len(rest))
	for i, r := range rest {
		v, err := r.Read()
		if err == nil {
			tail[i] = v
		}
	}
	return tail
}

func bindSystemRefs(sc *scope.Scope, fn *value.Function, receiver *reference.Reference, loc failure.Location, tail []value.Value) {
	sc.Declare("__this", receiver)

	funcDesc := value.NewObject()
	funcDesc.Set("name", value.Str(fn.Name))
	funcDesc.Set("file", value.Str(fn.Location.File))
	funcDesc.Set("line", value.Int(int64(fn.Location.Line)))
	sc.Declare("__func", reference.Constant(value.ObjectVal(funcDesc)))

	sc.Declare("__file", reference.Constant(value.Str(loc.File)))
	sc.Declare("__line", reference.Constant(value.Int(int64(loc.Line))))

	sc.Declare("__varg", reference.Constant(value.FuncVal(makeVarg(tail))))
}

// makeVarg builds the __varg native callable: called with no arguments it
// returns the variadic tail's length; called with one integer argument it
// returns that tail element, or null if out of range.
func makeVarg(tail []value.Value) *value.Function {
	return &value.Function{
		Name: "__varg",
		Native: func(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
			if len(args) == 0 {
				return value.Int(int64(len(tail))), nil
			}
			if len(args) != 1 || args[0].Kind() != value.Integer {
				return value.Value{}, failure.New(failure.Argument, "__varg expects zero or one integer argument")
			}
			i := args[0].Int()
			if i < 0 || i >= int64(len(tail)) {
				return value.Null_, nil
			}
			return tail[i], nil
		},
	}
}
