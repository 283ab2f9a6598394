package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alt-coder/codegraph-go/checkpoint"
	"github.com/alt-coder/codegraph-go/core"
	"github.com/alt-coder/codegraph-go/llm"
	"github.com/alt-coder/codegraph-go/nodes"
	"github.com/alt-coder/codegraph-go/runner"
)

// newTestProvider wires pattern-based responses for each workflow prompt.
// The keywords are disjoint across prompts, so each step gets its own
// response regardless of call order.
func newTestProvider(createSQL, fixedSQL string) *llm.MockProvider {
	provider := llm.NewMockProvider("test")
	provider.SetResponsePattern(map[string]string{
		"recommend the steps": "```yaml\nsteps:\n  - inspect the schema\n  - write the query\n```",
		"write one query":     "```sql\n" + createSQL + "\n```",
		"fix the query":       "```sql\n" + fixedSQL + "\n```",
		"explain what":        "The query counts the matching rows.",
	})
	return provider
}

// flakyRunner fails while the snippet contains "wrong" and succeeds
// otherwise.
func flakyRunner() runner.Runner {
	return runner.Func(func(ctx context.Context, code string, handle any) (any, error) {
		if strings.Contains(code, "wrong") {
			return nil, fmt.Errorf("no such column: wrong")
		}
		return runner.Table{Columns: []string{"n"}, Rows: [][]any{{int64(42)}}}, nil
	})
}

func TestAskFullPipeline(t *testing.T) {
	analyst, err := New(newTestProvider("SELECT count(*) FROM users", ""), flakyRunner(), nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	state, err := analyst.Ask(context.Background(), "how many users are there?", nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if got := state.String(core.KeyCodeSnippet); got != "SELECT count(*) FROM users" {
		t.Errorf("unexpected code snippet %q", got)
	}
	if state.Has(core.KeyError) {
		t.Errorf("unexpected error in state: %v", state[core.KeyError])
	}
	table, ok := state[core.KeyExecutionResult].(runner.Table)
	if !ok || table.RowCount() != 1 {
		t.Errorf("unexpected execution result %v", state[core.KeyExecutionResult])
	}
	if !strings.Contains(state.String(core.KeyRecommendedSteps), "inspect the schema") {
		t.Errorf("missing recommended steps: %q", state.String(core.KeyRecommendedSteps))
	}

	report, ok := analyst.Report(state)
	if !ok {
		t.Fatal("report missing from final state")
	}
	if len(report.Fields) != len(DefaultConfig().ReportFields) {
		t.Errorf("report has %d fields, want %d", len(report.Fields), len(DefaultConfig().ReportFields))
	}

	var sawExplanation bool
	for _, msg := range state.Messages() {
		if msg.Node == core.NodeExplain {
			sawExplanation = true
		}
	}
	if !sawExplanation {
		t.Error("transcript missing explanation message")
	}
}

func TestAskFixLoop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRetries = 1

	analyst, err := New(newTestProvider("SELECT wrong FROM users", "SELECT fixed FROM users"), flakyRunner(), nil, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	state, err := analyst.Ask(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if got := state.Int(core.KeyRetryCount); got != 1 {
		t.Errorf("retry count = %d, want 1", got)
	}
	if state.Has(core.KeyError) {
		t.Errorf("error should be cleared after successful retry, got %v", state[core.KeyError])
	}
	if got := state.String(core.KeyCodeSnippet); got != "SELECT fixed FROM users" {
		t.Errorf("unexpected final code %q", got)
	}
}

func TestAskRetriesExhausted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRetries = 1

	// Repair keeps producing failing code, so both attempts fail.
	analyst, err := New(newTestProvider("SELECT wrong FROM users", "SELECT wrong AS still FROM users"), flakyRunner(), nil, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	state, err := analyst.Ask(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if !state.Has(core.KeyError) {
		t.Fatal("expected unresolved error in final state")
	}
	if got := state.Int(core.KeyRetryCount); got != 1 {
		t.Errorf("retry count = %d, want 1", got)
	}

	report, ok := analyst.Report(state)
	if !ok {
		t.Fatal("report missing from final state")
	}
	for _, field := range report.Fields {
		if field.Name == core.KeyExecutionResult {
			if field.Available {
				t.Error("execution result should be reported as unavailable")
			}
			if field.Value != nodes.NotAvailable {
				t.Errorf("unavailable field rendered as %v", field.Value)
			}
		}
	}
}

func TestAskHumanReviewRejectThenAccept(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HumanInTheLoop = true

	responses := []string{"please add a WHERE clause", "yes"}
	reviewer := nodes.ReviewerFunc(func(ctx context.Context, text string) (string, error) {
		r := responses[0]
		responses = responses[1:]
		return r, nil
	})

	analyst, err := New(newTestProvider("SELECT count(*) FROM users", ""), flakyRunner(), reviewer, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	state, err := analyst.Ask(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	history := state.History(core.KeyModificationHistory)
	if len(history) != 1 || history[0] != "please add a WHERE clause" {
		t.Errorf("unexpected modification history %v", history)
	}
	if got := state.String(core.KeyHumanDecision); got != string(core.DecisionAccepted) {
		t.Errorf("decision = %q, want accepted", got)
	}
	if !state.Has(core.KeyExecutionResult) {
		t.Error("accepted code was not executed")
	}
}

func TestAskSuspendAndResumeWithInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HumanInTheLoop = true

	// This reviewer cannot answer in-process; the run must suspend.
	reviewer := nodes.ReviewerFunc(func(ctx context.Context, text string) (string, error) {
		return "", core.ErrAwaitingInput
	})

	store := checkpoint.NewMemoryStore()
	analyst, err := New(newTestProvider("SELECT count(*) FROM users", ""), flakyRunner(), reviewer, cfg,
		WithCheckpointStore(store))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = analyst.Ask(context.Background(), "q", nil, core.WithRunID("run-1"))
	if !errors.Is(err, core.ErrAwaitingInput) {
		t.Fatalf("Ask() error = %v, want ErrAwaitingInput", err)
	}

	state, err := analyst.ResumeWithInput(context.Background(), "run-1", "yes")
	if err != nil {
		t.Fatalf("ResumeWithInput() error = %v", err)
	}
	if got := state.String(core.KeyHumanDecision); got != string(core.DecisionAccepted) {
		t.Errorf("decision = %q, want accepted", got)
	}
	if _, ok := analyst.Report(state); !ok {
		t.Error("resumed run did not produce a report")
	}
}

func TestNewValidation(t *testing.T) {
	provider := llm.NewMockProvider("test")
	run := flakyRunner()

	if _, err := New(nil, run, nil, nil); err == nil {
		t.Error("expected error for nil provider")
	}
	if _, err := New(provider, nil, nil, nil); err == nil {
		t.Error("expected error for nil runner")
	}

	cfg := DefaultConfig()
	cfg.HumanInTheLoop = true
	if _, err := New(provider, run, nil, cfg); err == nil {
		t.Error("expected error for human-in-the-loop without reviewer")
	}

	cfg = DefaultConfig()
	cfg.MaxRetries = -1
	if _, err := New(provider, run, nil, cfg); err == nil {
		t.Error("expected error for negative max retries")
	}

	cfg = DefaultConfig()
	cfg.ReportFields = nil
	if _, err := New(provider, run, nil, cfg); err == nil {
		t.Error("expected error for empty report fields")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	content := "dialect: postgres\nmax_retries: 5\nhuman_in_the_loop: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Dialect != "postgres" {
		t.Errorf("dialect = %q, want postgres", cfg.Dialect)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("max_retries = %d, want 5", cfg.MaxRetries)
	}
	if !cfg.HumanInTheLoop {
		t.Error("human_in_the_loop not set")
	}
	// Omitted fields keep their defaults.
	if len(cfg.ReportFields) == 0 {
		t.Error("report_fields default lost")
	}
	if cfg.QueryTimeout != DefaultConfig().QueryTimeout {
		t.Errorf("query_timeout = %v, want default", cfg.QueryTimeout)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
