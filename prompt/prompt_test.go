package prompt

import (
	"strings"
	"testing"
)

func TestRecommend(t *testing.T) {
	p := Recommend(Context{Question: "top customers by revenue", Schema: "customers(id, name)"})
	if !strings.Contains(p, "top customers by revenue") {
		t.Error("prompt missing question")
	}
	if !strings.Contains(p, "customers(id, name)") {
		t.Error("prompt missing schema")
	}
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name     string
		ctx      Context
		steps    string
		feedback []string
		want     []string
		absent   []string
	}{
		{
			name: "dialect and question",
			ctx:  Context{Question: "count users", Dialect: "sqlite"},
			want: []string{"sqlite", "count users", "```sql"},
		},
		{
			name:  "includes steps",
			ctx:   Context{Question: "q"},
			steps: "1. inspect\n2. query",
			want:  []string{"Follow these steps", "1. inspect"},
		},
		{
			name:     "includes reviewer feedback",
			ctx:      Context{Question: "q"},
			feedback: []string{"use a join instead"},
			want:     []string{"reviewer rejected", "use a join instead"},
		},
		{
			name:   "no feedback section when empty",
			ctx:    Context{Question: "q"},
			absent: []string{"reviewer rejected"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Create(tt.ctx, tt.steps, tt.feedback)
			for _, w := range tt.want {
				if !strings.Contains(p, w) {
					t.Errorf("prompt missing %q:\n%s", w, p)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(p, a) {
					t.Errorf("prompt unexpectedly contains %q", a)
				}
			}
		})
	}
}

func TestFix(t *testing.T) {
	p := Fix(Context{Dialect: "postgres"}, "SELECT * FORM t", "syntax error near FORM")
	for _, w := range []string{"postgres", "SELECT * FORM t", "syntax error near FORM", "```sql"} {
		if !strings.Contains(p, w) {
			t.Errorf("prompt missing %q", w)
		}
	}
}

func TestExplain(t *testing.T) {
	p := Explain(Context{}, "SELECT 1", "1 row", "")
	if !strings.Contains(p, "SELECT 1") || !strings.Contains(p, "1 row") {
		t.Errorf("prompt missing code or result:\n%s", p)
	}
	if strings.Contains(p, "did not run successfully") {
		t.Error("error section present without error")
	}

	p = Explain(Context{}, "SELECT 1", "", "timeout")
	if !strings.Contains(p, "timeout") {
		t.Error("prompt missing error description")
	}
}

type testPlan struct {
	Steps   []string `yaml:"steps" description:"Ordered analysis steps"`
	Summary string   `yaml:"summary,omitempty" description:"One-line overview"`
}

func TestGenerateStructuredPrompt(t *testing.T) {
	p := GenerateStructuredPrompt[testPlan]()

	for _, w := range []string{"```yaml", "steps:", "summary:", "Ordered analysis steps", "One-line overview"} {
		if !strings.Contains(p, w) {
			t.Errorf("prompt missing %q:\n%s", w, p)
		}
	}
}

func TestGenerateStructuredPromptNonStruct(t *testing.T) {
	p := GenerateStructuredPrompt[string]()
	if !strings.Contains(p, "string") {
		t.Errorf("expected type name in fallback prompt, got %q", p)
	}
}
