package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alt-coder/codegraph-go/checkpoint"
	"github.com/alt-coder/codegraph-go/core"
	"github.com/alt-coder/codegraph-go/llm"
	"github.com/alt-coder/codegraph-go/nodes"
	"github.com/alt-coder/codegraph-go/runner"
	"github.com/alt-coder/codegraph-go/structured"
)

// SQLAnalyst answers natural-language questions against a database by
// planning, generating, optionally reviewing, executing, fixing and
// explaining a query. It composes a compiled graph with a runtime and
// delegates execution to it.
type SQLAnalyst struct {
	cfg     *Config
	graph   *core.Graph
	runtime *core.Runtime
}

// Option configures the analyst.
type Option func(*options)

type options struct {
	store        checkpoint.Store
	logger       *zap.Logger
	parserConfig *structured.Config
	reviewConfig nodes.ReviewConfig
}

// WithCheckpointStore persists run state after every step, enabling resume.
func WithCheckpointStore(store checkpoint.Store) Option {
	return func(o *options) { o.store = store }
}

// WithLogger sets the structured logger for the runtime.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithParserConfig overrides the structured-output parsing settings.
func WithParserConfig(cfg *structured.Config) Option {
	return func(o *options) { o.parserConfig = cfg }
}

// WithReviewConfig overrides the review prompt template or accept
// predicate.
func WithReviewConfig(cfg nodes.ReviewConfig) Option {
	return func(o *options) { o.reviewConfig = cfg }
}

// New assembles the analyst. The reviewer may be nil unless
// Config.HumanInTheLoop is set.
func New(provider llm.LLMProvider, run runner.Runner, reviewer nodes.ReviewerChannel, cfg *Config, opts ...Option) (*SQLAnalyst, error) {
	if provider == nil {
		return nil, fmt.Errorf("llm provider cannot be nil")
	}
	if run == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.HumanInTheLoop && reviewer == nil {
		return nil, fmt.Errorf("human_in_the_loop requires a reviewer channel")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	parser, err := structured.NewParser(provider, o.parserConfig)
	if err != nil {
		return nil, err
	}
	caps := newCapabilities(provider, parser, cfg)

	reporter, err := nodes.NewReporter(nodes.ReportConfig{Fields: cfg.ReportFields})
	if err != nil {
		return nil, err
	}

	reg := core.NewRegistry(
		core.NewNode(core.NodeRecommend, caps.recommend),
		core.NewNode(core.NodeCreate, caps.create),
		nodes.NewExecute(run, nodes.ExecuteConfig{Timeout: cfg.QueryTimeout}),
		nodes.NewFix(caps, nodes.FixConfig{}),
		nodes.NewExplain(caps, nodes.ExplainConfig{}),
		reporter,
	)
	if reviewer != nil {
		reg.Register(nodes.NewReview(reviewer, o.reviewConfig))
	}

	graph, err := core.Build(reg, core.Config{
		HumanInTheLoop:         cfg.HumanInTheLoop,
		BypassRecommendedSteps: cfg.BypassRecommendedSteps,
		BypassExplainCode:      cfg.BypassExplainCode,
		MaxRetries:             cfg.MaxRetries,
		Schema: core.Schema{
			{Name: KeyQuestion, Type: "string", Default: "", Required: true},
			{Name: nodes.DataKeyDefault, Type: "any", Default: nil, Required: false},
		},
	})
	if err != nil {
		return nil, err
	}

	var runtimeOpts []core.Option
	if o.store != nil {
		runtimeOpts = append(runtimeOpts, core.WithCheckpointStore(o.store))
	}
	if o.logger != nil {
		runtimeOpts = append(runtimeOpts, core.WithLogger(o.logger))
	}

	return &SQLAnalyst{
		cfg:     cfg,
		graph:   graph,
		runtime: core.NewRuntime(graph, runtimeOpts...),
	}, nil
}

// Ask runs the workflow for a question and returns the final state. The
// handle, when non-nil, is passed to the runner as the data handle.
func (a *SQLAnalyst) Ask(ctx context.Context, question string, handle any, opts ...core.RunOption) (core.State, error) {
	return a.runtime.Invoke(ctx, a.initialState(question, handle), opts...)
}

// AskAsync is Ask on its own goroutine, delivering the result on a channel.
func (a *SQLAnalyst) AskAsync(ctx context.Context, question string, handle any, opts ...core.RunOption) <-chan core.Result {
	return a.runtime.InvokeAsync(ctx, a.initialState(question, handle), opts...)
}

// Stream runs the workflow and emits a snapshot after each completed step.
func (a *SQLAnalyst) Stream(ctx context.Context, question string, handle any, opts ...core.RunOption) <-chan core.Snapshot {
	return a.runtime.Stream(ctx, a.initialState(question, handle), opts...)
}

// Resume continues a checkpointed run.
func (a *SQLAnalyst) Resume(ctx context.Context, runID string) (core.State, error) {
	return a.runtime.Resume(ctx, runID)
}

// ResumeWithInput continues a run suspended at the review step, supplying
// the reviewer's response.
func (a *SQLAnalyst) ResumeWithInput(ctx context.Context, runID, response string) (core.State, error) {
	return a.runtime.ResumeWithInput(ctx, runID, response)
}

// Report extracts the assembled report from a final state.
func (a *SQLAnalyst) Report(state core.State) (nodes.Report, bool) {
	report, ok := state[core.KeyReport].(nodes.Report)
	return report, ok
}

// Graph exposes the compiled graph for introspection.
func (a *SQLAnalyst) Graph() *core.Graph {
	return a.graph
}

// Mermaid renders the workflow as a mermaid flowchart.
func (a *SQLAnalyst) Mermaid() string {
	return a.graph.Mermaid()
}

func (a *SQLAnalyst) initialState(question string, handle any) core.State {
	state := core.State{KeyQuestion: question}
	if handle != nil {
		state[nodes.DataKeyDefault] = handle
	}
	return state
}
