package nodes

import (
	"context"
	"time"

	"github.com/alt-coder/codegraph-go/core"
	"github.com/alt-coder/codegraph-go/runner"
)

// ExecuteConfig customizes the code execution node. Key names default to
// the reserved state fields so most workflows configure nothing.
type ExecuteConfig struct {
	CodeKey   string
	DataKey   string
	ResultKey string
	ErrorKey  string
	// Timeout bounds one execution attempt. A timeout surfaces as an
	// execution error and routes to fix like any other failure. Zero
	// disables the bound.
	Timeout time.Duration
	// Pre transforms the snippet before it reaches the runner (strip
	// fences, add a LIMIT clause, ...).
	Pre func(code string) string
	// Post transforms the raw result before it is written to state. A
	// post-processing failure is treated as an execution error, not a
	// crash.
	Post func(result any) (any, error)
}

// DataKeyDefault is the state field holding the caller-owned data handle.
const DataKeyDefault = "data_handle"

// Execute runs exactly one execution attempt per invocation; looping is
// the routing policy's job. On success it writes the result and clears the
// error field. On failure it records the failure description verbatim and
// leaves any previous successful result untouched.
type Execute struct {
	runner runner.Runner
	cfg    ExecuteConfig
}

// NewExecute creates the code execution node around a runner capability.
func NewExecute(r runner.Runner, cfg ExecuteConfig) *Execute {
	if cfg.CodeKey == "" {
		cfg.CodeKey = core.KeyCodeSnippet
	}
	if cfg.DataKey == "" {
		cfg.DataKey = DataKeyDefault
	}
	if cfg.ResultKey == "" {
		cfg.ResultKey = core.KeyExecutionResult
	}
	if cfg.ErrorKey == "" {
		cfg.ErrorKey = core.KeyError
	}
	return &Execute{runner: r, cfg: cfg}
}

// ID implements core.Node.
func (n *Execute) ID() core.NodeID { return core.NodeExecute }

// Run implements core.Node.
func (n *Execute) Run(ctx context.Context, state core.State) (core.Delta, error) {
	code := state.String(n.cfg.CodeKey)
	if n.cfg.Pre != nil {
		code = n.cfg.Pre(code)
	}

	runCtx := ctx
	if n.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, n.cfg.Timeout)
		defer cancel()
	}

	result, err := n.runner.Run(runCtx, code, state[n.cfg.DataKey])
	if err != nil {
		// A cancelled run is not an execution failure; let the runtime
		// stop cleanly with the last checkpoint intact.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return core.Delta{n.cfg.ErrorKey: err.Error()}, nil
	}

	if n.cfg.Post != nil {
		result, err = n.cfg.Post(result)
		if err != nil {
			return core.Delta{n.cfg.ErrorKey: err.Error()}, nil
		}
	}

	return core.Delta{
		n.cfg.ResultKey: result,
		n.cfg.ErrorKey:  nil,
	}, nil
}
