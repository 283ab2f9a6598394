// Package nodes implements the built-in node kinds of the coding-agent
// graph: human review, code execution, code fixing, explanation and output
// reporting. Each node is a thin contract around an injected capability;
// the capabilities themselves (LLM prompt wrappers, runners, reviewer
// channels) live outside the engine.
package nodes

import "context"

// ReviewerChannel is the blocking human interaction channel. Prompt may
// suspend for unbounded time; it must honor context cancellation. An
// implementation that cannot answer in-process returns
// core.ErrAwaitingInput, which makes the runtime checkpoint the run and
// hand control back to the caller until ResumeWithInput supplies the
// response.
type ReviewerChannel interface {
	Prompt(ctx context.Context, text string) (string, error)
}

// ReviewerFunc adapts a function to the ReviewerChannel interface.
type ReviewerFunc func(ctx context.Context, text string) (string, error)

// Prompt implements ReviewerChannel.
func (f ReviewerFunc) Prompt(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Repairer takes the current code and the failure description and returns
// replacement code.
type Repairer interface {
	Repair(ctx context.Context, code, errorDescription string) (string, error)
}

// RepairerFunc adapts a function to the Repairer interface.
type RepairerFunc func(ctx context.Context, code, errorDescription string) (string, error)

// Repair implements Repairer.
func (f RepairerFunc) Repair(ctx context.Context, code, errorDescription string) (string, error) {
	return f(ctx, code, errorDescription)
}

// Explainer produces a natural-language description of what the code and
// its result accomplished, or of the failure when errorDescription is
// non-empty.
type Explainer interface {
	Explain(ctx context.Context, code string, result any, errorDescription string) (string, error)
}

// ExplainerFunc adapts a function to the Explainer interface.
type ExplainerFunc func(ctx context.Context, code string, result any, errorDescription string) (string, error)

// Explain implements Explainer.
func (f ExplainerFunc) Explain(ctx context.Context, code string, result any, errorDescription string) (string, error) {
	return f(ctx, code, result, errorDescription)
}
