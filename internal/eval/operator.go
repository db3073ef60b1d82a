package eval

import (
	"asteria/internal/compiler"
	"asteria/internal/failure"
	"asteria/internal/reference"
	"asteria/internal/value"
)

func evalOperator(stack []*reference.Reference, n *compiler.Node) ([]*reference.Reference, *failure.Failure) {
	switch n.Op {
	case "++", "--":
		return evalIncDec(stack, n)
	case "neg":
		stack, a := pop(stack)
		av, err := a.Read()
		if err != nil {
			return nil, err
		}
		r, err := value.Neg(av)
		if err != nil {
			return nil, withLoc(err, n)
		}
		return push(stack, reference.Temporary(r)), nil
	case "!":
		stack, a := pop(stack)
		av, err := a.Read()
		if err != nil {
			return nil, err
		}
		return push(stack, reference.Temporary(value.Bool(!av.Truthy()))), nil
	}
	if n.AssignFlag {
		return evalAssign(stack, n)
	}
	stack, b := pop(stack)
	stack, a := pop(stack)
	av, err := a.Read()
	if err != nil {
		return nil, err
	}
	bv, err := b.Read()
	if err != nil {
		return nil, err
	}
	result, err := applyBinary(n.Op, av, bv)
	if err != nil {
		return nil, withLoc(err, n)
	}
	return push(stack, reference.Temporary(result)), nil
}

func applyBinary(op string, a, b value.Value) (value.Value, *failure.Failure) {
	switch op {
	case "+":
		return value.Add(a, b)
	case "-":
		return value.Sub(a, b)
	case "*":
		return value.Mul(a, b)
	case "/":
		return value.Div(a, b)
	case "%":
		return value.Mod(a, b)
	case "==":
		return value.Bool(value.Equal(a, b)), nil
	case "!=":
		return value.Bool(!value.Equal(a, b)), nil
	case "<", ">", "<=", ">=":
		c, err := value.Compare(a, b)
		if err != nil {
			return value.Value{}, err
		}
		switch op {
		case "<":
			return value.Bool(c < 0), nil
		case ">":
			return value.Bool(c > 0), nil
		case "<=":
			return value.Bool(c <= 0), nil
		default:
			return value.Bool(c >= 0), nil
		}
	default:
		return value.Value{}, failure.New(failure.TypeMismatch, "unknown operator %q", op)
	}
}

func evalAssign(stack []*reference.Reference, n *compiler.Node) ([]*reference.Reference, *failure.Failure) {
	stack, valRef := pop(stack)
	stack, target := pop(stack)
	newVal, err := valRef.Read()
	if err != nil {
		return nil, err
	}
	if n.Op != "=" {
		oldVal, err := target.Read()
		if err != nil {
			return nil, err
		}
		newVal, err = applyBinary(n.Op, oldVal, newVal)
		if err != nil {
			return nil, withLoc(err, n)
		}
	}
	if _, err := target.Write(newVal); err != nil {
		return nil, withLoc(err, n)
	}
	return push(stack, reference.Temporary(newVal)), nil
}

func evalIncDec(stack []*reference.Reference, n *compiler.Node) ([]*reference.Reference, *failure.Failure) {
	stack, operand := pop(stack)
	old, err := operand.Read()
	if err != nil {
		return nil, err
	}
	delta := value.Int(1)
	op := "+"
	if n.Op == "--" {
		op = "-"
	}
	updated, err := applyBinary(op, old, delta)
	if err != nil {
		return nil, withLoc(err, n)
	}
	if _, err := operand.Write(updated); err != nil {
		return nil, withLoc(err, n)
	}
	if n.Prefix {
		return push(stack, reference.Temporary(updated)), nil
	}
	return push(stack, reference.Temporary(old)), nil
}

func withLoc(f *failure.Failure, n *compiler.Node) *failure.Failure {
	return f.PushFrame(failure.Frame{Location: n.Loc})
}
