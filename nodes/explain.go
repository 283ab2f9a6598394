package nodes

import (
	"context"
	"fmt"
	"time"

	"github.com/alt-coder/codegraph-go/core"
)

// ExplainConfig customizes the explanation node's key names.
type ExplainConfig struct {
	CodeKey   string
	ResultKey string
	ErrorKey  string
}

// Explain appends a natural-language description of the run so far to the
// transcript: what the code and result accomplished, or — when the error
// field is set — what went wrong. It never mutates the code snippet or the
// error field.
type Explain struct {
	explainer Explainer
	cfg       ExplainConfig
}

// NewExplain creates the explanation node around an explanation
// capability.
func NewExplain(explainer Explainer, cfg ExplainConfig) *Explain {
	if cfg.CodeKey == "" {
		cfg.CodeKey = core.KeyCodeSnippet
	}
	if cfg.ResultKey == "" {
		cfg.ResultKey = core.KeyExecutionResult
	}
	if cfg.ErrorKey == "" {
		cfg.ErrorKey = core.KeyError
	}
	return &Explain{explainer: explainer, cfg: cfg}
}

// ID implements core.Node.
func (n *Explain) ID() core.NodeID { return core.NodeExplain }

// Run implements core.Node. A failing explanation capability degrades to a
// placeholder entry rather than aborting a run that already has results to
// report.
func (n *Explain) Run(ctx context.Context, state core.State) (core.Delta, error) {
	text, err := n.explainer.Explain(ctx,
		state.String(n.cfg.CodeKey),
		state[n.cfg.ResultKey],
		state.String(n.cfg.ErrorKey),
	)
	if err != nil {
		text = fmt.Sprintf("explanation unavailable: %v", err)
	}
	msg := core.Message{
		Role:      core.RoleAssistant,
		Content:   text,
		Node:      core.NodeExplain,
		Timestamp: time.Now().UTC(),
	}
	return core.Delta{core.KeyMessages: core.AppendMessage(state, msg)}, nil
}
