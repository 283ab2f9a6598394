package nodes

import (
	"context"
	"fmt"

	"github.com/alt-coder/codegraph-go/core"
)

// FixConfig customizes the code fixing node's key names.
type FixConfig struct {
	CodeKey       string
	ErrorKey      string
	RetryCountKey string
}

// Fix replaces the code snippet with the repair capability's output and
// increments the retry count by exactly one. It never clears the error
// field; only the next successful execution does that. The runtime guards
// the retry ceiling: being entered at the ceiling is a routing bug, not
// this node's concern.
type Fix struct {
	repair Repairer
	cfg    FixConfig
}

// NewFix creates the code fixing node around a repair capability.
func NewFix(repair Repairer, cfg FixConfig) *Fix {
	if cfg.CodeKey == "" {
		cfg.CodeKey = core.KeyCodeSnippet
	}
	if cfg.ErrorKey == "" {
		cfg.ErrorKey = core.KeyError
	}
	if cfg.RetryCountKey == "" {
		cfg.RetryCountKey = core.KeyRetryCount
	}
	return &Fix{repair: repair, cfg: cfg}
}

// ID implements core.Node.
func (n *Fix) ID() core.NodeID { return core.NodeFix }

// Run implements core.Node. The retry count is incremented before
// delegating to the repair capability; a failed repair attempt still
// counts, and the partial delta keeps the run's diagnostics accurate.
func (n *Fix) Run(ctx context.Context, state core.State) (core.Delta, error) {
	retries := state.Int(n.cfg.RetryCountKey) + 1
	code, err := n.repair.Repair(ctx, state.String(n.cfg.CodeKey), state.String(n.cfg.ErrorKey))
	if err != nil {
		return core.Delta{n.cfg.RetryCountKey: retries}, fmt.Errorf("repair capability: %w", err)
	}
	return core.Delta{
		n.cfg.CodeKey:       code,
		n.cfg.RetryCountKey: retries,
	}, nil
}
