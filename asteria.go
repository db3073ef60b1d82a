// Package asteria is the embedding API: construct a Global environment,
// load a script into a compiled Program, and execute it with an argument
// list to get back a Value or a Failure.
package asteria

import (
	"os"

	"asteria/internal/compiler"
	"asteria/internal/exec"
	"asteria/internal/failure"
	"asteria/internal/function"
	"asteria/internal/global"
	"asteria/internal/parser"
	"asteria/internal/reference"
	"asteria/internal/stdlib/chrono"
	"asteria/internal/stdlib/filesystem"
	"asteria/internal/stdlib/ini"
	"asteria/internal/value"
)

func init() {
	function.Install()
}

// Global wraps the runtime environment a compiled Program executes
// against, along with the standard-library bindings registered into it.
type Global struct {
	g *global.Global
}

// NewGlobal constructs a fresh environment at the given API version with
// the standard std.chrono/std.filesystem/std.ini bindings installed.
func NewGlobal(version global.APIVersion) *Global {
	g := global.New(version)

	std := value.NewObject()
	std.Set("chrono", value.ObjectVal(chrono.Register()))
	std.Set("filesystem", value.ObjectVal(filesystem.Register()))
	std.Set("ini", value.ObjectVal(ini.Register()))
	g.BindStandard("std", value.ObjectVal(std))

	return &Global{g: g}
}

// Env exposes the underlying *global.Global, e.g. so a host can call
// SetInterruptContext.
func (gl *Global) Env() *global.Global { return gl.g }

// Bind replaces or augments a top-level standard-library binding.
func (gl *Global) Bind(name string, v value.Value) { gl.g.BindStandard(name, v) }

// Program is a compiled script ready to run against any number of
// argument lists.
type Program struct {
	block *compiler.CompiledBlock
	gl    *Global
}

// LoadString compiles source (identified by display name file, starting
// at line 1) into a Program.
func (gl *Global) LoadString(file, source string) (*Program, *failure.Failure) {
	stmts, err := parser.Parse(file, source)
	if err != nil {
		return nil, err
	}
	return &Program{block: compiler.CompileProgram(stmts), gl: gl}, nil
}

// LoadFile reads path from disk and compiles it, using path as the
// display name.
func (gl *Global) LoadFile(path string) (*Program, *failure.Failure) {
	data, ioErr := os.ReadFile(path)
	if ioErr != nil {
		return nil, global.RaiseHostError(failure.Resource, ioErr)
	}
	return gl.LoadString(path, string(data))
}

// Execute runs the program's top-level statements in a fresh root scope,
// with args exposed as the variadic tail of a function with no named
// parameters: top-level code reaches them only through __varg()
// (the count) and __varg(i) (the i-th argument, or null out of range).
func (p *Program) Execute(args []value.Value) (value.Value, *failure.Failure) {
	g := p.gl.g
	root := g.AcquireExecutive(nil)
	defer g.ReleaseExecutive(root)

	vargFn := &value.Function{
		Name: "__varg",
		Native: func(_ interface{}, _ value.Value, callArgs []value.Value) (value.Value, *failure.Failure) {
			if len(callArgs) == 0 {
				return value.Int(int64(len(args))), nil
			}
			if len(callArgs) != 1 || callArgs[0].Kind() != value.Integer {
				return value.Value{}, failure.New(failure.Argument, "__varg expects zero or one integer argument")
			}
			i := callArgs[0].Int()
			if i < 0 || i >= int64(len(args)) {
				return value.Null_, nil
			}
			return args[i], nil
		},
	}
	root.Declare("__varg", reference.Constant(value.FuncVal(vargFn)))
	root.Declare("__this", reference.Constant(value.Null_))
	root.Declare("__func", reference.Constant(value.ObjectVal(value.NewObject())))
	root.Declare("__file", reference.Constant(value.Str(p.block.Location.File)))
	root.Declare("__line", reference.Constant(value.Int(int64(p.block.Location.Line))))

	status, val, err := exec.ExecuteBody(p.block, root, g)
	if err != nil {
		return value.Value{}, err
	}
	if exec.IsStray(status) {
		return value.Value{}, failure.New(failure.StrayControl, "break/continue escaped top-level script")
	}
	return val, nil
}
