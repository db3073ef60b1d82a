package exec

import (
	"testing"

	"asteria/internal/compiler"
	"asteria/internal/global"
	"asteria/internal/parser"
	"asteria/internal/value"
)

func run(t *testing.T, source string) value.Value {
	t.Helper()
	stmts, err := parser.Parse("<test>", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	block := compiler.CompileProgram(stmts)
	g := global.New(global.APILatest)
	root := g.AcquireExecutive(nil)
	defer g.ReleaseExecutive(root)
	_, val, ferr := ExecuteBody(block, root, g)
	if ferr != nil {
		t.Fatalf("execute: %v", ferr)
	}
	return val
}

func TestWhileBreak(t *testing.T) {
	got := run(t, `
		var i = 0;
		var sum = 0;
		while (i < 10) {
			if (i == 5) { break; }
			sum += i;
			i += 1;
		}
		return sum;
	`)
	if got.Int() != 10 {
		t.Errorf("got %d, want 10", got.Int())
	}
}

func TestDoWhileRunsBodyOnce(t *testing.T) {
	got := run(t, `
		var i = 0;
		var count = 0;
		do {
			count += 1;
			i += 1;
		} while (i < 0);
		return count;
	`)
	if got.Int() != 1 {
		t.Errorf("got %d, want 1", got.Int())
	}
}

func TestForContinueSkipsEvens(t *testing.T) {
	got := run(t, `
		var sum = 0;
		for (var i = 0; i < 6; i += 1) {
			if (i % 2 == 0) { continue; }
			sum += i;
		}
		return sum;
	`)
	if got.Int() != 9 {
		t.Errorf("got %d, want 9 (1+3+5)", got.Int())
	}
}

func TestForEachArrayAccumulatesIndexAndValue(t *testing.T) {
	got := run(t, `
		var total = 0;
		for (k, v in [10, 20, 30]) {
			total += k + v;
		}
		return total;
	`)
	if got.Int() != 63 {
		t.Errorf("got %d, want 63 (0+10 + 1+20 + 2+30)", got.Int())
	}
}

func TestSwitchFallsThroughUntilBreak(t *testing.T) {
	got := run(t, `
		var x = 1;
		var out = 0;
		switch (x) {
			case 1:
				out += 1;
			case 2:
				out += 2;
				break;
			case 3:
				out += 4;
		}
		return out;
	`)
	if got.Int() != 3 {
		t.Errorf("got %d, want 3 (fell through case 1 into case 2)", got.Int())
	}
}

func TestSwitchDefaultWhenNoCaseMatches(t *testing.T) {
	got := run(t, `
		var out = 0;
		switch (99) {
			case 1:
				out = 1;
				break;
			default:
				out = 2;
		}
		return out;
	`)
	if got.Int() != 2 {
		t.Errorf("got %d, want 2", got.Int())
	}
}

func TestTryCatchBindsExceptionValue(t *testing.T) {
	got := run(t, `
		var caught = null;
		try {
			throw "boom";
		} catch (e) {
			caught = e.value;
		}
		return caught;
	`)
	if got.String_() != "boom" {
		t.Errorf("got %q, want %q", got.String_(), "boom")
	}
}

func TestReturnShortCircuitsNestedLoops(t *testing.T) {
	got := run(t, `
		for (var i = 0; i < 3; i += 1) {
			for (var j = 0; j < 3; j += 1) {
				if (j == 1) { return i * 10 + j; }
			}
		}
		return -1;
	`)
	if got.Int() != 1 {
		t.Errorf("got %d, want 1", got.Int())
	}
}

func TestStrayBreakOutsideLoopFails(t *testing.T) {
	stmts, err := parser.Parse("<test>", `break;`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	block := compiler.CompileProgram(stmts)
	g := global.New(global.APILatest)
	root := g.AcquireExecutive(nil)
	defer g.ReleaseExecutive(root)
	status, _, ferr := ExecuteBody(block, root, g)
	if ferr != nil {
		t.Fatalf("execute: %v", ferr)
	}
	if !IsStray(status) {
		t.Errorf("status = %v, want a stray break", status)
	}
}
