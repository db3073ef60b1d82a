// Package eval runs a compiled postfix Node sequence against a reference
// stack, the way the compiled expression form is specified to execute:
// push literals and named lookups, pop operands for operators, and leave
// exactly one Reference on the stack when done.
package eval

import (
	"asteria/internal/compiler"
	"asteria/internal/failure"
	"asteria/internal/global"
	"asteria/internal/reference"
	"asteria/internal/scope"
	"asteria/internal/value"
)

// CallHook performs an actual function invocation. internal/eval cannot
// import internal/function directly — invoking a script function means
// running its body, which is internal/exec, which in turn evaluates
// expressions through this package, so the three-way dependency is
// broken here with a hook internal/function installs into at program
// start (see the asteria root package's init wiring).
var CallHook func(g *global.Global, callee value.Value, receiver *reference.Reference, args []*reference.Reference, tail bool, loc failure.Location) (*reference.Reference, *failure.Failure)

// Eval runs nodes against sc/g and returns the single resulting
// reference.
func Eval(nodes []*compiler.Node, sc *scope.Scope, g *global.Global) (*reference.Reference, *failure.Failure) {
	var stack []*reference.Reference
	for _, n := range nodes {
		var err *failure.Failure
		stack, err = step(stack, n, sc, g)
		if err != nil {
			return nil, err
		}
	}
	if len(stack) != 1 {
		return nil, failure.New(failure.TypeMismatch, "expression left %d values on the stack, expected 1", len(stack))
	}
	return stack[0], nil
}

func push(stack []*reference.Reference, r *reference.Reference) []*reference.Reference {
	return append(stack, r)
}

func pop(stack []*reference.Reference) ([]*reference.Reference, *reference.Reference) {
	n := len(stack)
	return stack[:n-1], stack[n-1]
}

func step(stack []*reference.Reference, n *compiler.Node, sc *scope.Scope, g *global.Global) ([]*reference.Reference, *failure.Failure) {
	switch n.Kind {
	case compiler.NLiteral:
		return push(stack, reference.Temporary(n.Lit)), nil

	case compiler.NNamedRef:
		if r, ok := sc.GetNamedReference(n.Name); ok {
			return push(stack, r.Clone()), nil
		}
		if r, ok := g.LookupStandard(n.Name); ok {
			return push(stack, r.Clone()), nil
		}
		return nil, failure.New(failure.UnsetMember, "undeclared name %q", n.Name).PushFrame(failure.Frame{Location: n.Loc})

	case compiler.NDup:
		top := stack[len(stack)-1]
		return push(stack, top.Clone()), nil

	case compiler.NSubscriptConst:
		stack, base := pop(stack)
		return push(stack, base.ZoomIn(reference.ObjectKey(n.Key))), nil

	case compiler.NSubscriptExpr:
		stack, idxRef := pop(stack)
		stack, base := pop(stack)
		idx, err := idxRef.Read()
		if err != nil {
			return nil, err
		}
		switch idx.Kind() {
		case value.Integer:
			return push(stack, base.ZoomIn(reference.ArrayIndex(idx.Int()))), nil
		case value.String:
			return push(stack, base.ZoomIn(reference.ObjectKey(idx.String_()))), nil
		default:
			return nil, idx.TypeMismatch("subscript", "integer or string").PushFrame(failure.Frame{Location: n.Loc})
		}

	case compiler.NOperator:
		return evalOperator(stack, n)

	case compiler.NBranch:
		stack, cond := pop(stack)
		cv, err := cond.Read()
		if err != nil {
			return nil, err
		}
		seq := n.Else
		if cv.Truthy() {
			seq = n.Then
		}
		r, err := Eval(seq, sc, g)
		if err != nil {
			return nil, err
		}
		return push(stack, r), nil

	case compiler.NLogical:
		stack, left := pop(stack)
		lv, err := left.Read()
		if err != nil {
			return nil, err
		}
		if n.IsOr == lv.Truthy() {
			return push(stack, left), nil
		}
		r, err := Eval(n.Then, sc, g)
		if err != nil {
			return nil, err
		}
		return push(stack, r), nil

	case compiler.NCoalesce:
		stack, left := pop(stack)
		lv, err := left.Read()
		if err != nil {
			return nil, err
		}
		if !lv.IsNull() {
			return push(stack, left), nil
		}
		r, err := Eval(n.Then, sc, g)
		if err != nil {
			return nil, err
		}
		return push(stack, r), nil

	case compiler.NFunctionCall:
		stack, args := popN(stack, n.Argc)
		stack, calleeRef := pop(stack)
		receiver := reference.Constant(value.Null_)
		if n.HasReceiver {
			var recv *reference.Reference
			stack, recv = pop(stack)
			receiver = recv
		}
		calleeVal, err := calleeRef.Read()
		if err != nil {
			return nil, err
		}
		if calleeVal.Kind() != value.FunctionKind {
			return nil, calleeVal.TypeMismatch("function call", "function").PushFrame(failure.Frame{Location: n.Loc})
		}
		if CallHook == nil {
			return nil, failure.New(failure.Resource, "no function runtime installed")
		}
		result, err := CallHook(g, calleeVal, receiver, args, n.Tail, n.Loc)
		if err != nil {
			return nil, err
		}
		return push(stack, result), nil

	case compiler.NMakeArray:
		stack, elems := popN(stack, n.Argc)
		vals := make([]value.Value, len(elems))
		for i, e := range elems {
			v, err := e.Read()
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return push(stack, reference.Temporary(value.NewArray(vals...))), nil

	case compiler.NMakeObject:
		stack, elems := popN(stack, n.Argc)
		obj := value.NewObject()
		for i, e := range elems {
			v, err := e.Read()
			if err != nil {
				return nil, err
			}
			obj.Set(n.Keys[i], v)
		}
		return push(stack, reference.Temporary(value.ObjectVal(obj))), nil

	case compiler.NMakeClosure:
		fn := &value.Function{
			Name:     n.Proto.Name,
			Location: n.Proto.Location,
			Params:   n.Proto.Params,
			Variadic: n.Proto.Variadic,
			Body:     n.Proto.Body,
			Closure:  sc,
		}
		return push(stack, reference.Temporary(value.FuncVal(fn))), nil

	default:
		return nil, failure.New(failure.TypeMismatch, "unhandled node kind")
	}
}

// popN pops count references off the stack and returns them in their
// original left-to-right evaluation order.
func popN(stack []*reference.Reference, count int) ([]*reference.Reference, []*reference.Reference) {
	n := len(stack)
	out := make([]*reference.Reference, count)
	copy(out, stack[n-count:])
	return stack[:n-count], out
}
