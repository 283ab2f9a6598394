package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alt-coder/codegraph-go/core"
)

// NotAvailable is the placeholder rendered for a report field that was
// never set in state.
const NotAvailable = "not available"

// ReportField is one entry of the assembled report.
type ReportField struct {
	Name      string `json:"name"`
	Value     any    `json:"value"`
	Available bool   `json:"available"`
}

// Report is the structured object the reporting node writes to state.
type Report struct {
	Fields      []ReportField `json:"fields"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// ReportConfig customizes the output reporting node.
type ReportConfig struct {
	// Fields is the ordered list of state fields to include. An empty
	// list is a construction error.
	Fields []string
	// DestKey is the state field the report is written to. Defaults to
	// the reserved report key.
	DestKey string
}

// Reporter assembles the final report. It never fails at run time: fields
// missing from state are rendered as "not available" rather than treated
// as errors, so a run that exhausted its retries still produces a report
// documenting the failure.
type Reporter struct {
	cfg ReportConfig
}

// NewReporter validates the inclusion list at construction time, which is
// when the graph is built.
func NewReporter(cfg ReportConfig) (*Reporter, error) {
	if len(cfg.Fields) == 0 {
		return nil, &core.BuildError{Reason: "report node requires at least one field to include"}
	}
	if cfg.DestKey == "" {
		cfg.DestKey = core.KeyReport
	}
	return &Reporter{cfg: cfg}, nil
}

// ID implements core.Node.
func (n *Reporter) ID() core.NodeID { return core.NodeReport }

// Run implements core.Node.
func (n *Reporter) Run(_ context.Context, state core.State) (core.Delta, error) {
	report := Report{GeneratedAt: time.Now().UTC()}
	var missing []string
	for _, name := range n.cfg.Fields {
		if state.Has(name) {
			report.Fields = append(report.Fields, ReportField{Name: name, Value: state[name], Available: true})
		} else {
			report.Fields = append(report.Fields, ReportField{Name: name, Value: NotAvailable, Available: false})
			missing = append(missing, name)
		}
	}

	summary := fmt.Sprintf("Workflow finished; report covers %d field(s).", len(report.Fields))
	if len(missing) > 0 {
		summary += fmt.Sprintf(" Not available: %s.", strings.Join(missing, ", "))
	}
	if state.Has(core.KeyError) {
		summary += fmt.Sprintf(" Run ended with an unresolved error: %s", state.String(core.KeyError))
	}
	msg := core.Message{
		Role:      core.RoleAssistant,
		Content:   summary,
		Node:      core.NodeReport,
		Timestamp: report.GeneratedAt,
	}

	return core.Delta{
		n.cfg.DestKey:    report,
		core.KeyMessages: core.AppendMessage(state, msg),
	}, nil
}
