package nodes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alt-coder/codegraph-go/core"
)

func TestNewReporterRequiresFields(t *testing.T) {
	_, err := NewReporter(ReportConfig{})
	var buildErr *core.BuildError
	if !errors.As(err, &buildErr) {
		t.Errorf("NewReporter() error = %v, want BuildError", err)
	}
}

func TestReporterRendersMissingFields(t *testing.T) {
	reporter, err := NewReporter(ReportConfig{
		Fields: []string{core.KeyCodeSnippet, core.KeyExecutionResult, "never_set"},
	})
	if err != nil {
		t.Fatal(err)
	}

	state := core.State{
		core.KeyCodeSnippet:     "SELECT 1",
		core.KeyExecutionResult: nil, // nil reads as absent
	}
	delta, err := reporter.Run(context.Background(), state)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	report, ok := delta[core.KeyReport].(Report)
	if !ok {
		t.Fatalf("report = %T", delta[core.KeyReport])
	}
	if len(report.Fields) != 3 {
		t.Fatalf("report has %d fields, want 3", len(report.Fields))
	}

	byName := map[string]ReportField{}
	for _, f := range report.Fields {
		byName[f.Name] = f
	}
	if f := byName[core.KeyCodeSnippet]; !f.Available || f.Value != "SELECT 1" {
		t.Errorf("code field = %+v", f)
	}
	for _, name := range []string{core.KeyExecutionResult, "never_set"} {
		f := byName[name]
		if f.Available || f.Value != NotAvailable {
			t.Errorf("%s field = %+v, want %q", name, f, NotAvailable)
		}
	}
}

func TestReporterPreservesFieldOrder(t *testing.T) {
	fields := []string{"c", "a", "b"}
	reporter, err := NewReporter(ReportConfig{Fields: fields})
	if err != nil {
		t.Fatal(err)
	}

	delta, err := reporter.Run(context.Background(), core.State{})
	if err != nil {
		t.Fatal(err)
	}
	report := delta[core.KeyReport].(Report)
	for i, f := range report.Fields {
		if f.Name != fields[i] {
			t.Errorf("field %d = %q, want %q", i, f.Name, fields[i])
		}
	}
}

func TestReporterSummaryMentionsUnresolvedError(t *testing.T) {
	reporter, err := NewReporter(ReportConfig{Fields: []string{core.KeyCodeSnippet}})
	if err != nil {
		t.Fatal(err)
	}

	state := core.State{
		core.KeyCodeSnippet: "SELECT wrong",
		core.KeyError:       "no such column",
	}
	delta, err := reporter.Run(context.Background(), state)
	if err != nil {
		t.Fatal(err)
	}

	msgs, _ := delta[core.KeyMessages].([]core.Message)
	if len(msgs) != 1 {
		t.Fatalf("transcript = %v", msgs)
	}
	if !strings.Contains(msgs[0].Content, "no such column") {
		t.Errorf("summary does not mention the error: %q", msgs[0].Content)
	}
}

func TestReporterCustomDestKey(t *testing.T) {
	reporter, err := NewReporter(ReportConfig{Fields: []string{"x"}, DestKey: "final_report"})
	if err != nil {
		t.Fatal(err)
	}
	delta, err := reporter.Run(context.Background(), core.State{"x": 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := delta["final_report"].(Report); !ok {
		t.Error("report not written to custom key")
	}
}
