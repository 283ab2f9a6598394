package runner

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func sampleTable() Table {
	return Table{
		Columns: []string{"customer", "amount"},
		Rows: [][]any{
			{"acme", 120.0},
			{"globex", 75.5},
		},
	}
}

func TestTableRunnerDispatch(t *testing.T) {
	r := NewTableRunner()
	r.Register("row_count", func(ctx context.Context, input Table) (Table, error) {
		return Table{Columns: []string{"count"}, Rows: [][]any{{input.RowCount()}}}, nil
	})

	result, err := r.Run(context.Background(), "row_count", sampleTable())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	table := result.(Table)
	if table.Rows[0][0] != 2 {
		t.Errorf("result = %v", table.Rows)
	}
}

func TestTableRunnerFirstLineNamesTransform(t *testing.T) {
	r := NewTableRunner()
	r.Register("noop", func(ctx context.Context, input Table) (Table, error) {
		return input, nil
	})

	// Only the first line selects; the rest of the snippet is ignored.
	if _, err := r.Run(context.Background(), "noop\nextra explanatory text", sampleTable()); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestTableRunnerUnknownTransform(t *testing.T) {
	r := NewTableRunner()
	_, err := r.Run(context.Background(), "missing", sampleTable())
	if err == nil || !strings.Contains(err.Error(), "unknown transform") {
		t.Errorf("Run() error = %v", err)
	}
}

func TestTableRunnerEmptySnippet(t *testing.T) {
	r := NewTableRunner()
	if _, err := r.Run(context.Background(), "  \n", sampleTable()); err == nil {
		t.Error("expected error for empty snippet")
	}
}

func TestTableRunnerBadHandle(t *testing.T) {
	r := NewTableRunner()
	r.Register("noop", func(ctx context.Context, input Table) (Table, error) {
		return input, nil
	})
	if _, err := r.Run(context.Background(), "noop", "not a table"); err == nil {
		t.Error("expected error for wrong handle type")
	}
}

func TestTableRunnerTransformFailure(t *testing.T) {
	r := NewTableRunner()
	r.Register("boom", func(ctx context.Context, input Table) (Table, error) {
		return Table{}, fmt.Errorf("division by zero")
	})
	_, err := r.Run(context.Background(), "boom", sampleTable())
	if err == nil || !strings.Contains(err.Error(), "division by zero") {
		t.Errorf("Run() error = %v", err)
	}
}
