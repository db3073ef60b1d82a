package value

import "asteria/internal/failure"

// Function is the callable alternative of Value. It carries
// just enough to satisfy the invocation protocol; the compiled body and
// captured scope are opaque to this package (asserted back to their
// concrete types by internal/function) so that the value model never
// needs to import the scope or compiler packages.
type Function struct {
	Name     string
	Location failure.Location
	Params   []string // ordered parameter names; a trailing "..." is not stored here
	Variadic bool     // set when the parameter list ends with "..."

	// Exactly one of Body/Native is set.
	Body    interface{} // *compiler.CompiledBlock for scripted functions
	Closure interface{} // *scope.Scope captured at declaration time
	Native  NativeFn    // set for functions registered via the binding adaptor
	Doc     string      // documentation string, native bindings only
}

// NativeFn is the uniform signature a binding adaptor callable exposes:
// given the global environment (opaque here — asserted to *global.Global
// by natives that need it, such as std.filesystem's file_stream), the
// receiver reference's value, and the already-
// evaluated argument list, it returns a result value or a failure.
type NativeFn func(global interface{}, receiver Value, args []Value) (Value, *failure.Failure)

func (f *Function) IsNative() bool { return f.Native != nil }
