// Package prompt builds the LLM prompts used by the SQL analyst workflow
// and generates structured-output instructions from Go types.
package prompt

import (
	"fmt"
	"strings"
)

// Context carries the facts every prompt may need: what the user asked,
// which SQL dialect the target database speaks, and a textual description
// of its schema.
type Context struct {
	Question string
	Dialect  string // e.g. "sqlite", "postgres"; empty means generic SQL
	Schema   string // table and column description, empty when unknown
}

func (c Context) dialect() string {
	if c.Dialect == "" {
		return "SQL"
	}
	return c.Dialect
}

// Recommend asks for a short numbered plan of analysis steps. The
// structured-output instructions for the plan type are appended by the
// caller via GenerateStructuredPrompt.
func Recommend(c Context) string {
	var b strings.Builder
	b.WriteString("You are a data analyst planning how to answer a question against a relational database.\n\n")
	fmt.Fprintf(&b, "Question: %s\n\n", c.Question)
	if c.Schema != "" {
		fmt.Fprintf(&b, "Database schema:\n%s\n\n", c.Schema)
	}
	b.WriteString("Recommend the steps needed to answer the question with a single query. Keep the plan short and concrete.")
	return b.String()
}

// Create asks for the query itself, following the recommended steps when
// present and any reviewer feedback from earlier rejections.
func Create(c Context, steps string, feedback []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert %s developer. Write one query that answers the question below.\n\n", c.dialect())
	fmt.Fprintf(&b, "Question: %s\n\n", c.Question)
	if c.Schema != "" {
		fmt.Fprintf(&b, "Database schema:\n%s\n\n", c.Schema)
	}
	if steps != "" {
		fmt.Fprintf(&b, "Follow these steps:\n%s\n\n", steps)
	}
	if len(feedback) > 0 {
		b.WriteString("A reviewer rejected earlier attempts. Address this feedback:\n")
		for _, f := range feedback {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Return only the query, inside a fenced ```sql code block. Do not modify the database: no INSERT, UPDATE, DELETE, or DDL.")
	return b.String()
}

// Fix asks for a corrected query given the failing one and the error the
// database returned.
func Fix(c Context, code, errorDescription string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following %s query failed.\n\n", c.dialect())
	fmt.Fprintf(&b, "```sql\n%s\n```\n\nError:\n%s\n\n", code, errorDescription)
	if c.Schema != "" {
		fmt.Fprintf(&b, "Database schema:\n%s\n\n", c.Schema)
	}
	b.WriteString("Fix the query. Return only the corrected query, inside a fenced ```sql code block.")
	return b.String()
}

// Explain asks for a plain-language explanation of the query and, when
// available, what its result shows.
func Explain(c Context, code, result, errorDescription string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Explain what the following %s query does, in plain language a non-technical reader can follow.\n\n", c.dialect())
	fmt.Fprintf(&b, "```sql\n%s\n```\n\n", code)
	if result != "" {
		fmt.Fprintf(&b, "Its result:\n%s\n\n", result)
	}
	if errorDescription != "" {
		fmt.Fprintf(&b, "The query did not run successfully. Last error:\n%s\n\n", errorDescription)
	}
	b.WriteString("Keep the explanation to a short paragraph.")
	return b.String()
}
