package core

// FieldSpec describes one workflow state field for introspection.
type FieldSpec struct {
	Name     string
	Type     string
	Default  any
	Required bool
}

// Schema is the ordered set of state fields a graph recognizes.
type Schema []FieldSpec

// DefaultSchema returns the reserved fields every coding-agent graph
// carries. Workflows extend it with their own fields via Config.Schema.
func DefaultSchema() Schema {
	return Schema{
		{Name: KeyCodeSnippet, Type: "string", Default: "", Required: true},
		{Name: KeyExecutionResult, Type: "any", Default: nil, Required: false},
		{Name: KeyError, Type: "string", Default: nil, Required: false},
		{Name: KeyRetryCount, Type: "int", Default: 0, Required: true},
		{Name: KeyHumanDecision, Type: "string", Default: nil, Required: false},
		{Name: KeyModificationHistory, Type: "[]string", Default: nil, Required: false},
		{Name: KeyMessages, Type: "[]core.Message", Default: nil, Required: false},
		{Name: KeyRecommendedSteps, Type: "string", Default: "", Required: false},
		{Name: KeyReport, Type: "nodes.Report", Default: nil, Required: false},
	}
}

// Fields returns the field names in schema order.
func (s Schema) Fields() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Describe looks up a field spec by name.
func (s Schema) Describe(name string) (FieldSpec, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// merge appends extra fields that are not already present, preserving
// order of both sides.
func (s Schema) merge(extra Schema) Schema {
	out := make(Schema, len(s), len(s)+len(extra))
	copy(out, s)
	for _, f := range extra {
		if _, ok := out.Describe(f.Name); !ok {
			out = append(out, f)
		}
	}
	return out
}
