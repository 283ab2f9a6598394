package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Transform is one registered operation over an in-memory table.
type Transform func(ctx context.Context, input Table) (Table, error)

// TableRunner executes "code" against in-memory tabular data. Go cannot
// evaluate generated source at run time, so the snippet's first line names
// a registered transform; everything after it is passed through untouched.
// This keeps the engine's execute/fix loop fully exercisable without an
// external interpreter.
type TableRunner struct {
	mu         sync.RWMutex
	transforms map[string]Transform
}

// NewTableRunner creates an empty runner.
func NewTableRunner() *TableRunner {
	return &TableRunner{transforms: make(map[string]Transform)}
}

// Register adds a named transform. Registering an existing name replaces
// it.
func (r *TableRunner) Register(name string, fn Transform) {
	r.mu.Lock()
	r.transforms[name] = fn
	r.mu.Unlock()
}

// Run resolves the transform named on the snippet's first line and applies
// it to the handle, which must be a Table.
func (r *TableRunner) Run(ctx context.Context, code string, handle any) (any, error) {
	name, _, _ := strings.Cut(strings.TrimSpace(code), "\n")
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("table runner: empty code snippet")
	}

	r.mu.RLock()
	fn, ok := r.transforms[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("table runner: unknown transform %q", name)
	}

	input, ok := handle.(Table)
	if !ok {
		return nil, fmt.Errorf("table runner: data handle is %T, want runner.Table", handle)
	}
	return fn(ctx, input)
}
