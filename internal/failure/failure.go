// Package failure defines the single tagged failure kind that the
// execution core uses to surface every error condition, from a rejected
// parse to a script-level throw. Nothing upstream of this package invents
// a new error type: native bindings translate OS/library errors into one
// of the Kinds below (see Wrap), never a new kind visible to scripts.
package failure

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind is one of the enumerated failure categories the language surfaces.
type Kind string

const (
	Parse             Kind = "parse"
	TypeMismatch      Kind = "type_mismatch"
	Arithmetic        Kind = "arithmetic"
	NotAssignable     Kind = "not_assignable"
	ImmutableAssign   Kind = "immutable_assign"
	UnsetMember       Kind = "unset_member"
	NoModifier        Kind = "no_modifier"
	Resource          Kind = "resource"
	Argument          Kind = "argument"
	ArgumentMismatch  Kind = "argument_mismatch"
	Redeclaration     Kind = "redeclaration"
	StrayControl      Kind = "stray_control"
	Interrupted       Kind = "interrupted"
	User              Kind = "user"
)

// Location identifies a point in script source.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Frame is one entry of an ordered backtrace: the function active at the
// time of the failure, its source location, and a statement index field.
// The runtime does not record statement indices: every frame it builds
// leaves StatementIndex at 0.
type Frame struct {
	Function       string
	Location       Location
	StatementIndex int
}

func (f Frame) String() string {
	if f.Function == "" {
		return fmt.Sprintf("  at %s (#%d)", f.Location, f.StatementIndex)
	}
	return fmt.Sprintf("  at %s (%s, #%d)", f.Function, f.Location, f.StatementIndex)
}

// Payload is implemented by internal/value.Value; kept as an interface
// here so this low-level package never imports the value model (which
// itself depends on failure for its own error returns).
type Payload interface {
	FailureRender() string
}

// Failure is the single error channel the core ever raises. A Failure
// carries a message, a Kind tag, an optional Payload (populated only for
// Kind == User), and an ordered backtrace built up as the failure unwinds
// through nested function calls.
type Failure struct {
	Kind      Kind
	Message   string
	Payload   Payload
	Backtrace []Frame
	cause     error
}

func (f *Failure) Error() string {
	var sb strings.Builder
	sb.WriteString(string(f.Kind))
	sb.WriteString(": ")
	sb.WriteString(f.Message)
	for _, frame := range f.Backtrace {
		sb.WriteByte('\n')
		sb.WriteString(frame.String())
	}
	if f.cause != nil {
		sb.WriteString("\ncaused by: ")
		sb.WriteString(f.cause.Error())
	}
	return sb.String()
}

// Unwrap exposes the wrapped OS/library cause, if any, to errors.Is/As.
func (f *Failure) Unwrap() error { return f.cause }

// New builds a bare failure of the given kind with no backtrace yet.
func New(kind Kind, format string, args ...interface{}) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap translates a host/OS error (e.g. from os.Open) into a Failure of
// the given kind, preserving the original error as a traceable cause via
// github.com/pkg/errors so that %+v formatting during development still
// shows the real stack, while scripts only ever observe kind + message.
func Wrap(cause error, kind Kind, format string, args ...interface{}) *Failure {
	return &Failure{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		cause:   errors.WithStack(cause),
	}
}

// WithPayload attaches a script value to a User failure (from `throw`).
func (f *Failure) WithPayload(p Payload) *Failure {
	f.Payload = p
	return f
}

// PushFrame records one more level of unwinding, innermost call first: a
// caller appends frames as the failure propagates outward, so Backtrace
// is ordered from the throw site to the top-level caller.
func (f *Failure) PushFrame(fr Frame) *Failure {
	f.Backtrace = append(f.Backtrace, fr)
	return f
}
