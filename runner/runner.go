// Package runner contains the injected capabilities that actually execute
// generated code. The workflow engine never interprets code itself; it
// hands the snippet and a caller-owned data handle to a Runner and records
// the outcome.
package runner

import "context"

// Runner executes a code snippet against a data handle. The handle is
// owned by the caller for the run's lifetime; implementations must not
// close it. A failed attempt returns a non-nil error whose text is the
// failure description surfaced to the fix node.
type Runner interface {
	Run(ctx context.Context, code string, handle any) (any, error)
}

// Func adapts a plain function to the Runner interface.
type Func func(ctx context.Context, code string, handle any) (any, error)

// Run implements Runner.
func (f Func) Run(ctx context.Context, code string, handle any) (any, error) {
	return f(ctx, code, handle)
}

// Table is the tabular result shape shared by the SQL and in-memory
// runners.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// RowCount returns the number of data rows.
func (t Table) RowCount() int {
	return len(t.Rows)
}
