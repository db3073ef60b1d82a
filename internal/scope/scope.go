// Package scope implements the lexical binding chain used by runtime
// execution: an Executive Scope holds live References produced by
// declarations, parameter binding, and for-loop iteration variables.
//
// The Analytic kind shares the same representation, but nothing outside
// this package creates one: the compiler does not consult scopes, so
// names are resolved, and undeclared ones detected, only at run time.
package scope

import "asteria/internal/reference"

// Kind distinguishes a compile-time placeholder scope from a live one.
type Kind uint8

const (
	Analytic Kind = iota
	Executive
)

// Scope is one link in the lexical parent chain. The chain's root is the
// outermost scope of a function body or the top-level script; callers
// that need stdlib fallback beyond that root do so explicitly (see
// internal/global), keeping this package free of any dependency on it.
type Scope struct {
	kind   Kind
	parent *Scope
	names  map[string]*reference.Reference
}

// New creates a fresh scope linked to parent (nil for a root scope).
func New(kind Kind, parent *Scope) *Scope {
	return &Scope{kind: kind, parent: parent, names: make(map[string]*reference.Reference)}
}

func (s *Scope) Kind() Kind       { return s.kind }
func (s *Scope) IsAnalytic() bool { return s.kind == Analytic }
func (s *Scope) Parent() *Scope   { return s.parent }

// Reparent rebinds this scope to a new parent and clears its own
// bindings, letting a pooled Executive scope be recycled for a new call
// frame without a fresh allocation.
func (s *Scope) Reparent(parent *Scope) {
	s.parent = parent
	for k := range s.names {
		delete(s.names, k)
	}
}

// Declare binds name to ref in this scope, shadowing any outer binding of
// the same name and overwriting a prior binding of the same name in this
// scope. Declare itself does not reject a repeated name; internal/exec
// checks IsDeclaredHere before declaring a variable or function.
func (s *Scope) Declare(name string, ref *reference.Reference) {
	s.names[name] = ref
}

// OpenNamedReference returns the reference bound to name in this scope,
// creating a fresh placeholder binding first if none exists yet.
func (s *Scope) OpenNamedReference(name string) *reference.Reference {
	if r, ok := s.names[name]; ok {
		return r
	}
	r := reference.Placeholder()
	s.names[name] = r
	return r
}

// GetNamedReference walks this scope and its ancestors looking for name,
// without creating anything. The bool is false if no scope in the chain
// binds it.
func (s *Scope) GetNamedReference(name string) (*reference.Reference, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if r, ok := cur.names[name]; ok {
			return r, true
		}
	}
	return nil, false
}

// IsDeclaredHere reports whether name is bound directly in this scope,
// ignoring ancestors — used by internal/exec to reject redeclaration
// within a single block.
func (s *Scope) IsDeclaredHere(name string) bool {
	_, ok := s.names[name]
	return ok
}

// DisposeNamedReferences clears this scope's own bindings, leaving the
// parent chain untouched. Called when a block exits, and before an
// Executive scope is returned to a pool.
func (s *Scope) DisposeNamedReferences() {
	for k := range s.names {
		delete(s.names, k)
	}
}
