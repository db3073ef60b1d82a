// Package global implements the process-wide runtime state a script
// execution needs beyond its own call stack: the standard library
// binding table, a pool of reusable Executive scopes, the API version a
// script was compiled against, a per-run session identifier, a
// host-interrupt hook the CLI driver wires to SIGINT, and a logical
// cycle collector over live Variables.
package global

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"asteria/internal/failure"
	"asteria/internal/reference"
	"asteria/internal/scope"
	"asteria/internal/value"
	"asteria/internal/variable"
)

// APIVersion gates which standard library bindings a script sees;
// scripts compiled against an older version never observe bindings added
// after it.
type APIVersion int

const (
	APIVersion1 APIVersion = 1
	APILatest   APIVersion = APIVersion1
)

// Global is the shared environment threaded through every call frame of
// one script execution. It is not safe for concurrent use by more than
// one goroutine at a time — scripts are single-threaded, matching the
// rest of the execution core.
type Global struct {
	Version   APIVersion
	SessionID uuid.UUID

	std *scope.Scope // root-level stdlib bindings, looked up as a last resort

	pool []*scope.Scope // recycled Executive scopes

	mu        sync.Mutex
	live      map[*variable.Variable]struct{} // tracked cells, for the cycle collector
	interrupt context.Context                 // cancelled to request cooperative abort
}

// New creates a Global environment at the given API version with no
// interrupt context (Interrupted never fires) until SetInterruptContext
// is called.
func New(version APIVersion) *Global {
	return &Global{
		Version:   version,
		SessionID: uuid.New(),
		std:       scope.New(scope.Executive, nil),
		live:      make(map[*variable.Variable]struct{}),
		interrupt: context.Background(),
	}
}

// SetInterruptContext wires a cancellable context (typically bound to
// SIGINT by the CLI driver) that Interrupted consults.
func (g *Global) SetInterruptContext(ctx context.Context) { g.interrupt = ctx }

// Interrupted reports whether the host has asked execution to abort.
// internal/exec checks this before executing each statement and fails
// with failure.Interrupted when it returns true.
func (g *Global) Interrupted() bool {
	select {
	case <-g.interrupt.Done():
		return true
	default:
		return false
	}
}

// BindStandard registers a standard-library binding at the top level,
// e.g. "std" mapped to an object aggregating the std.* namespaces.
func (g *Global) BindStandard(name string, v value.Value) {
	g.std.Declare(name, reference.Constant(v))
}

// LookupStandard resolves a name against the standard library table
// only — called by internal/eval after a local scope chain lookup misses.
func (g *Global) LookupStandard(name string) (*reference.Reference, bool) {
	return g.std.GetNamedReference(name)
}

// AcquireExecutive returns a pooled Executive scope parented to parent,
// reusing backing storage when one is available.
func (g *Global) AcquireExecutive(parent *scope.Scope) *scope.Scope {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := len(g.pool)
	if n == 0 {
		return scope.New(scope.Executive, parent)
	}
	s := g.pool[n-1]
	g.pool = g.pool[:n-1]
	s.Reparent(parent)
	return s
}

// ReleaseExecutive returns s to the pool for reuse by a later call frame.
// Callers must not touch s again afterwards.
func (g *Global) ReleaseExecutive(s *scope.Scope) {
	s.DisposeNamedReferences()
	g.mu.Lock()
	g.pool = append(g.pool, s)
	g.mu.Unlock()
}

// Track registers v with the cycle collector. Host bindings that hand
// back a fresh Variable to script code call this so CollectCycles can
// see it.
func (g *Global) Track(v *variable.Variable) {
	g.mu.Lock()
	g.live[v] = struct{}{}
	g.mu.Unlock()
}

// Untrack removes v from the collector's book-keeping, e.g. once a call
// frame that owned it has fully unwound.
func (g *Global) Untrack(v *variable.Variable) {
	g.mu.Lock()
	delete(g.live, v)
	g.mu.Unlock()
}

// CollectCycles sweeps tracked variables whose logical refcount has
// fallen to zero. Go's own tracing collector reclaims the memory
// regardless of what this does — this exists only so script-visible
// diagnostics (std.gc, if ever bound) can report a number, the same way
// the C++ Asteria runtime's manual collector did for its non-tracing
// host. It returns how many cells it untracked.
func (g *Global) CollectCycles() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for v := range g.live {
		if v.RefCount() <= 0 {
			delete(g.live, v)
			n++
		}
	}
	return n
}

// RaiseHostError wraps a host-side (e.g. OS, I/O) error as a failure of
// the given kind, for native bindings translating external failures.
func RaiseHostError(kind failure.Kind, err error) *failure.Failure {
	if err == nil {
		return nil
	}
	return failure.Wrap(err, kind, "host operation failed")
}
