package nodes

import (
	"context"
	"errors"
	"strings"

	"github.com/alt-coder/codegraph-go/core"
)

// DefaultReviewPrompt mirrors the instruction shown to the human reviewer:
// the current code plus a yes-or-changes question. The {code} placeholder
// is replaced with the current code snippet.
const DefaultReviewPrompt = "Are the following code instructions correct? If not, please provide changes.\n\n{code}"

// defaultAffirmatives is the token set the stock accept predicate matches
// against, case-insensitively.
var defaultAffirmatives = []string{"yes", "y", "approve", "approved", "accept", "ok"}

// ReviewConfig customizes the human review node.
type ReviewConfig struct {
	// PromptTemplate is rendered with {code} replaced by the snippet.
	// Empty selects DefaultReviewPrompt.
	PromptTemplate string
	// Accept classifies a raw response as approval. Nil selects a
	// case-insensitive match against an affirmative token set.
	Accept func(response string) bool
}

// Review is the only node permitted to suspend indefinitely awaiting an
// external actor. On reject it records the raw feedback in the
// modification history so the next create step can use it; on accept it
// leaves the code untouched.
type Review struct {
	channel ReviewerChannel
	cfg     ReviewConfig
}

// NewReview creates the human review node around a reviewer channel.
func NewReview(channel ReviewerChannel, cfg ReviewConfig) *Review {
	if cfg.PromptTemplate == "" {
		cfg.PromptTemplate = DefaultReviewPrompt
	}
	if cfg.Accept == nil {
		cfg.Accept = AcceptAffirmative
	}
	return &Review{channel: channel, cfg: cfg}
}

// AcceptAffirmative is the default accept predicate: a case-insensitive
// match against a small affirmative token set. Anything else is a
// rejection carrying change requests.
func AcceptAffirmative(response string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(response))
	for _, token := range defaultAffirmatives {
		if trimmed == token {
			return true
		}
	}
	return false
}

// ID implements core.Node.
func (n *Review) ID() core.NodeID { return core.NodeReview }

// Run renders the prompt and classifies the response. A response injected
// by ResumeWithInput (present under the human response key) is consumed
// instead of prompting again, which is how a suspended run picks up where
// it left off.
func (n *Review) Run(ctx context.Context, state core.State) (core.Delta, error) {
	var response string
	if state.Has(core.KeyHumanResponse) {
		response = state.String(core.KeyHumanResponse)
	} else {
		prompt := strings.ReplaceAll(n.cfg.PromptTemplate, "{code}", state.String(core.KeyCodeSnippet))
		var err error
		response, err = n.channel.Prompt(ctx, prompt)
		if errors.Is(err, core.ErrAwaitingInput) {
			// The pending decision lands in the suspended checkpoint so an
			// inspector can tell the run is parked at review.
			return core.Delta{core.KeyHumanDecision: string(core.DecisionPending)}, err
		}
		if err != nil {
			return nil, err
		}
	}

	if n.cfg.Accept(response) {
		return core.Delta{
			core.KeyHumanDecision: string(core.DecisionAccepted),
			core.KeyHumanResponse: nil,
		}, nil
	}
	return core.Delta{
		core.KeyHumanDecision:       string(core.DecisionRejected),
		core.KeyModificationHistory: core.AppendHistory(state, core.KeyModificationHistory, response),
		core.KeyHumanResponse:       nil,
	}, nil
}
