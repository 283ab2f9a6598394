package core

import (
	"fmt"
	"strings"
)

// Config controls how the coding-agent graph is wired.
type Config struct {
	// HumanInTheLoop inserts the review node between create and execute.
	HumanInTheLoop bool
	// BypassRecommendedSteps makes the create node the entry node.
	BypassRecommendedSteps bool
	// BypassExplainCode routes execution results straight to the report.
	BypassExplainCode bool
	// MaxRetries bounds the fix/execute loop. Negative values fail the
	// build; zero disables fixing entirely.
	MaxRetries int
	// ErrorKey is the state field whose presence signals an execution
	// failure. Defaults to KeyError.
	ErrorKey string
	// RetryCountKey is the state field tracking fix attempts. Defaults to
	// KeyRetryCount.
	RetryCountKey string
	// Schema lists workflow-specific state fields in addition to the
	// reserved ones.
	Schema Schema
}

// DefaultMaxRetries bounds the fix/execute loop when Config.MaxRetries is
// left at zero via DefaultConfig.
const DefaultMaxRetries = 3

// DefaultConfig returns the stock configuration: full pipeline, no human
// review, three fix attempts.
func DefaultConfig() Config {
	return Config{MaxRetries: DefaultMaxRetries}
}

// RouteFunc decides the next node given the state merged after the current
// node. Routing is pure: it inspects state and returns an identifier.
type RouteFunc func(state State) NodeID

// Graph is an executable coding-agent workflow: a node registry, an entry
// node and a routing policy, all validated at build time.
type Graph struct {
	entry  NodeID
	nodes  Registry
	routes map[NodeID]RouteFunc
	cfg    Config
	schema Schema
}

// Build assembles and validates the graph. It fails with a BuildError when
// a node the configuration needs is missing from the registry or when
// MaxRetries is negative.
func Build(reg Registry, cfg Config) (*Graph, error) {
	if cfg.MaxRetries < 0 {
		return nil, &BuildError{Reason: fmt.Sprintf("max retries must be >= 0, got %d", cfg.MaxRetries)}
	}
	if cfg.ErrorKey == "" {
		cfg.ErrorKey = KeyError
	}
	if cfg.RetryCountKey == "" {
		cfg.RetryCountKey = KeyRetryCount
	}

	required := []NodeID{NodeCreate, NodeExecute, NodeFix, NodeReport}
	if !cfg.BypassRecommendedSteps {
		required = append(required, NodeRecommend)
	}
	if !cfg.BypassExplainCode {
		required = append(required, NodeExplain)
	}
	if cfg.HumanInTheLoop {
		required = append(required, NodeReview)
	}
	nodes := make(Registry, len(required))
	for _, id := range required {
		n, ok := reg[id]
		if !ok || n == nil {
			return nil, &BuildError{Reason: fmt.Sprintf("node %q is not registered", id)}
		}
		nodes[id] = n
	}

	g := &Graph{
		nodes:  nodes,
		cfg:    cfg,
		routes: make(map[NodeID]RouteFunc),
		schema: DefaultSchema().merge(cfg.Schema),
	}

	if cfg.BypassRecommendedSteps {
		g.entry = NodeCreate
	} else {
		g.entry = NodeRecommend
		g.routes[NodeRecommend] = routeTo(NodeCreate)
	}

	if cfg.HumanInTheLoop {
		g.routes[NodeCreate] = routeTo(NodeReview)
		g.routes[NodeReview] = routeAfterReview()
	} else {
		g.routes[NodeCreate] = routeTo(NodeExecute)
	}

	g.routes[NodeExecute] = routeAfterExecute(cfg)
	g.routes[NodeFix] = routeTo(NodeExecute)
	if !cfg.BypassExplainCode {
		g.routes[NodeExplain] = routeTo(NodeReport)
	}
	g.routes[NodeReport] = routeTo(NodeEnd)

	return g, nil
}

// Entry returns the graph's entry node.
func (g *Graph) Entry() NodeID {
	return g.entry
}

// Route evaluates the routing policy for the node that just completed.
func (g *Graph) Route(from NodeID, state State) NodeID {
	route, ok := g.routes[from]
	if !ok {
		return NodeEnd
	}
	return route(state)
}

// Node resolves a registered node by identifier.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Config returns the configuration the graph was built with.
func (g *Graph) Config() Config {
	return g.cfg
}

// ListStateFields returns the ordered state field names the graph knows
// about.
func (g *Graph) ListStateFields() []string {
	return g.schema.Fields()
}

// DescribeStateField returns the spec for a named state field.
func (g *Graph) DescribeStateField(name string) (FieldSpec, error) {
	spec, ok := g.schema.Describe(name)
	if !ok {
		return FieldSpec{}, fmt.Errorf("unknown state field %q", name)
	}
	return spec, nil
}

// routeTo returns an unconditional route.
func routeTo(next NodeID) RouteFunc {
	return func(State) NodeID { return next }
}

// routeAfterExecute routes to fix while an error is present and retries
// remain, otherwise forward to explain (or straight to report when
// explanation is bypassed). Once the retry count reaches the ceiling the
// failure is carried forward so the report documents it.
func routeAfterExecute(cfg Config) RouteFunc {
	forward := NodeExplain
	if cfg.BypassExplainCode {
		forward = NodeReport
	}
	return func(state State) NodeID {
		if state.Has(cfg.ErrorKey) && state.Int(cfg.RetryCountKey) < cfg.MaxRetries {
			return NodeFix
		}
		return forward
	}
}

// routeAfterReview sends accepted code forward to execution and rejected
// code back to creation. An unset decision re-enters the review node, which
// covers resumption of a run suspended while awaiting input.
func routeAfterReview() RouteFunc {
	return func(state State) NodeID {
		switch Decision(state.String(KeyHumanDecision)) {
		case DecisionAccepted:
			return NodeExecute
		case DecisionRejected:
			return NodeCreate
		default:
			return NodeReview
		}
	}
}

// Mermaid renders the graph as a mermaid flowchart for documentation and
// debugging.
func (g *Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	fmt.Fprintf(&b, "    __start__([start]) --> %s\n", g.entry)
	if !g.cfg.BypassRecommendedSteps {
		fmt.Fprintf(&b, "    %s --> %s\n", NodeRecommend, NodeCreate)
	}
	if g.cfg.HumanInTheLoop {
		fmt.Fprintf(&b, "    %s --> %s\n", NodeCreate, NodeReview)
		fmt.Fprintf(&b, "    %s -->|accepted| %s\n", NodeReview, NodeExecute)
		fmt.Fprintf(&b, "    %s -->|rejected| %s\n", NodeReview, NodeCreate)
	} else {
		fmt.Fprintf(&b, "    %s --> %s\n", NodeCreate, NodeExecute)
	}
	forward := NodeExplain
	if g.cfg.BypassExplainCode {
		forward = NodeReport
	}
	fmt.Fprintf(&b, "    %s -->|error & retries left| %s\n", NodeExecute, NodeFix)
	fmt.Fprintf(&b, "    %s --> %s\n", NodeFix, NodeExecute)
	fmt.Fprintf(&b, "    %s -->|ok or retries exhausted| %s\n", NodeExecute, forward)
	if !g.cfg.BypassExplainCode {
		fmt.Fprintf(&b, "    %s --> %s\n", NodeExplain, NodeReport)
	}
	fmt.Fprintf(&b, "    %s --> __end__([end])\n", NodeReport)
	return b.String()
}
