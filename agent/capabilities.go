package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alt-coder/codegraph-go/core"
	"github.com/alt-coder/codegraph-go/llm"
	"github.com/alt-coder/codegraph-go/prompt"
	"github.com/alt-coder/codegraph-go/runner"
	"github.com/alt-coder/codegraph-go/structured"
)

// planInstructions is appended to the recommend prompt once, asking the
// model for the plan as structured YAML.
var planInstructions = prompt.GenerateStructuredPrompt[structured.Plan]()

// capabilities bundles the LLM-backed behaviors injected into the graph's
// nodes. All prompts share the dialect and schema description from the
// agent configuration; the question comes from run state.
type capabilities struct {
	provider llm.LLMProvider
	parser   *structured.Parser
	dialect  string
	schema   string
}

func newCapabilities(provider llm.LLMProvider, parser *structured.Parser, cfg *Config) *capabilities {
	return &capabilities{
		provider: provider,
		parser:   parser,
		dialect:  cfg.Dialect,
		schema:   cfg.SchemaDescription,
	}
}

func (c *capabilities) promptContext(state core.State) prompt.Context {
	return prompt.Context{
		Question: state.String(KeyQuestion),
		Dialect:  c.dialect,
		Schema:   c.schema,
	}
}

// recommend plans the analysis: it asks for a YAML step plan and stores its
// rendered text for the create step.
func (c *capabilities) recommend(ctx context.Context, state core.State) (core.Delta, error) {
	messages := []llm.Message{
		{Role: llm.RoleUser, Content: prompt.Recommend(c.promptContext(state)) + "\n\n" + planInstructions},
	}
	plan, err := c.parser.ExtractPlan(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("recommend steps: %w", err)
	}
	steps := plan.Text()
	msg := core.Message{
		Role:      core.RoleAssistant,
		Content:   steps,
		Node:      core.NodeRecommend,
		Timestamp: time.Now().UTC(),
	}
	return core.Delta{
		core.KeyRecommendedSteps: steps,
		core.KeyMessages:         core.AppendMessage(state, msg),
	}, nil
}

// create generates the query, feeding back any reviewer rejections from the
// modification history. It resets the review decision so a regenerated
// query gets a fresh review.
func (c *capabilities) create(ctx context.Context, state core.State) (core.Delta, error) {
	p := prompt.Create(
		c.promptContext(state),
		state.String(core.KeyRecommendedSteps),
		state.History(core.KeyModificationHistory),
	)
	code, err := c.parser.ExtractCode(ctx, []llm.Message{{Role: llm.RoleUser, Content: p}}, "sql")
	if err != nil {
		return nil, fmt.Errorf("create code: %w", err)
	}
	return core.Delta{
		core.KeyCodeSnippet:   code,
		core.KeyHumanDecision: nil,
	}, nil
}

// Repair implements nodes.Repairer.
func (c *capabilities) Repair(ctx context.Context, code, errorDescription string) (string, error) {
	p := prompt.Fix(prompt.Context{Dialect: c.dialect, Schema: c.schema}, code, errorDescription)
	return c.parser.ExtractCode(ctx, []llm.Message{{Role: llm.RoleUser, Content: p}}, "sql")
}

// Explain implements nodes.Explainer.
func (c *capabilities) Explain(ctx context.Context, code string, result any, errorDescription string) (string, error) {
	p := prompt.Explain(prompt.Context{Dialect: c.dialect, Schema: c.schema}, code, renderResult(result), errorDescription)
	msg, err := c.provider.CallLLM(ctx, []llm.Message{{Role: llm.RoleUser, Content: p}})
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

// renderResult turns an execution result into prompt text. Tables get a
// compact preview; anything else is printed as-is.
func renderResult(result any) string {
	table, ok := result.(runner.Table)
	if !ok {
		if result == nil {
			return ""
		}
		return fmt.Sprintf("%v", result)
	}

	const previewRows = 10
	var b strings.Builder
	fmt.Fprintf(&b, "%d row(s), columns: %s\n", table.RowCount(), strings.Join(table.Columns, ", "))
	for i, row := range table.Rows {
		if i >= previewRows {
			fmt.Fprintf(&b, "... %d more row(s)\n", table.RowCount()-previewRows)
			break
		}
		parts := make([]string, len(row))
		for j, v := range row {
			parts[j] = fmt.Sprintf("%v", v)
		}
		fmt.Fprintf(&b, "%s\n", strings.Join(parts, " | "))
	}
	return strings.TrimRight(b.String(), "\n")
}
