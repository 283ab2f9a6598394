package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alt-coder/codegraph-go/checkpoint"
)

// Runtime drives graph execution. A single Runtime is safe to share across
// goroutines: every run carries its own state, and independent runs may be
// invoked in parallel. Within one run, nodes execute strictly one at a
// time and node outputs are merged into state before routing evaluates the
// next destination.
type Runtime struct {
	graph  *Graph
	store  checkpoint.Store
	logger *zap.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithCheckpointStore enables checkpointing: the full state plus the
// last-completed node is persisted after every node.
func WithCheckpointStore(store checkpoint.Store) Option {
	return func(r *Runtime) { r.store = store }
}

// WithLogger sets the structured logger for node transitions. Defaults to
// a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runtime) { r.logger = logger }
}

// NewRuntime creates a runtime for the compiled graph.
func NewRuntime(graph *Graph, opts ...Option) *Runtime {
	r := &Runtime{
		graph:  graph,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Graph returns the compiled graph this runtime executes.
func (r *Runtime) Graph() *Graph {
	return r.graph
}

// Snapshot is one intermediate state observed after a node completed. Err
// is set only on the final element of a stream.
type Snapshot struct {
	RunID string
	Node  NodeID
	State State
	Err   error
}

// Result is the outcome of an asynchronous invocation.
type Result struct {
	RunID string
	State State
	Err   error
}

// AwaitingInput is returned (wrapped) when a run suspends at the human
// review node. It satisfies errors.Is(err, ErrAwaitingInput) and carries
// the run identifier needed to resume.
type AwaitingInput struct {
	RunID  string
	Prompt string
}

func (e *AwaitingInput) Error() string {
	return fmt.Sprintf("run %s awaiting human input", e.RunID)
}

func (e *AwaitingInput) Is(target error) bool {
	return target == ErrAwaitingInput
}

// RunOption configures a single invocation.
type RunOption func(*runOptions)

type runOptions struct {
	runID string
}

// WithRunID pins the run identifier instead of generating one. Required
// when the caller wants to correlate checkpoints or resume later.
func WithRunID(id string) RunOption {
	return func(o *runOptions) { o.runID = id }
}

func newRunOptions(opts []RunOption) runOptions {
	o := runOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	return o
}

// Invoke executes the graph to completion and returns the final state.
// When the run suspends for human input the returned error wraps
// ErrAwaitingInput and the state reflects everything checkpointed so far.
func (r *Runtime) Invoke(ctx context.Context, initial State, opts ...RunOption) (State, error) {
	o := newRunOptions(opts)
	state := r.prepare(initial)
	return r.run(ctx, o.runID, state, r.graph.Entry(), "", nil)
}

// InvokeAsync runs Invoke on its own goroutine and delivers the result on
// the returned channel.
func (r *Runtime) InvokeAsync(ctx context.Context, initial State, opts ...RunOption) <-chan Result {
	o := newRunOptions(opts)
	out := make(chan Result, 1)
	go func() {
		state := r.prepare(initial)
		final, err := r.run(ctx, o.runID, state, r.graph.Entry(), "", nil)
		out <- Result{RunID: o.runID, State: final, Err: err}
		close(out)
	}()
	return out
}

// Stream executes the graph and emits a snapshot after every completed
// node. The sequence is lazy, finite and non-restartable; the channel is
// closed once the run halts. A terminal failure arrives as the last
// element's Err. Stream is the non-blocking execution surface, so there is
// no separate async variant.
func (r *Runtime) Stream(ctx context.Context, initial State, opts ...RunOption) <-chan Snapshot {
	o := newRunOptions(opts)
	out := make(chan Snapshot)
	go func() {
		defer close(out)
		state := r.prepare(initial)
		final, err := r.run(ctx, o.runID, state, r.graph.Entry(), "", func(s Snapshot) {
			select {
			case out <- s:
			case <-ctx.Done():
			}
		})
		if err != nil {
			select {
			case out <- Snapshot{RunID: o.runID, State: final, Err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return out
}

// Resume continues a checkpointed run from the node after the last one
// that completed. A run suspended for human input re-enters the review
// node and will suspend again unless input was provided via
// ResumeWithInput.
func (r *Runtime) Resume(ctx context.Context, runID string) (State, error) {
	return r.resume(ctx, runID, nil)
}

// ResumeWithInput injects the human response into the suspended run and
// continues it. This is the second half of the two-phase review protocol.
func (r *Runtime) ResumeWithInput(ctx context.Context, runID, response string) (State, error) {
	return r.resume(ctx, runID, func(state State) {
		state[KeyHumanResponse] = response
	})
}

func (r *Runtime) resume(ctx context.Context, runID string, inject func(State)) (State, error) {
	if r.store == nil {
		return nil, errors.New("resume requires a checkpoint store")
	}
	cp, err := r.store.Load(ctx, runID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	state := State(cp.State)
	if cp.Status == checkpoint.StatusCompleted {
		return state, nil
	}
	if inject != nil {
		inject(state)
	}
	next := r.graph.Entry()
	if cp.LastNode != "" {
		next = r.graph.Route(NodeID(cp.LastNode), state)
	}
	return r.run(ctx, runID, state, next, NodeID(cp.LastNode), nil)
}

// prepare copies the caller's initial state and fills schema defaults for
// missing fields, so the caller's map is never mutated by the run.
func (r *Runtime) prepare(initial State) State {
	state := make(State, len(initial))
	for k, v := range initial {
		state[k] = v
	}
	for _, f := range r.graph.schema {
		if _, ok := state[f.Name]; !ok && f.Default != nil {
			state[f.Name] = f.Default
		}
	}
	return state
}

// run is the single-threaded cooperative node loop shared by every
// execution surface.
func (r *Runtime) run(ctx context.Context, runID string, state State, current, last NodeID, emit func(Snapshot)) (State, error) {
	cfg := r.graph.Config()
	log := r.logger.With(zap.String("run_id", runID))

	for current != NodeEnd {
		// Cancellation between node invocations never discards the last
		// checkpointed state.
		if err := ctx.Err(); err != nil {
			log.Info("run cancelled", zap.String("next_node", string(current)))
			return state, err
		}

		node, ok := r.graph.Node(current)
		if !ok {
			return state, &ContractViolationError{Node: current, Reason: "routed to unregistered node", State: state}
		}
		if current == NodeFix && state.Int(cfg.RetryCountKey) >= cfg.MaxRetries {
			return state, &ContractViolationError{
				Node:   current,
				Reason: fmt.Sprintf("fix entered at retry ceiling (%s=%d, max=%d)", cfg.RetryCountKey, state.Int(cfg.RetryCountKey), cfg.MaxRetries),
				State:  state,
			}
		}

		log.Debug("node start", zap.String("node", string(current)))
		delta, err := node.Run(ctx, state)
		// A delta returned alongside an error records partial progress,
		// such as the retry count of a failed repair attempt.
		state.Merge(delta)
		if err != nil {
			if errors.Is(err, ErrAwaitingInput) {
				if cerr := r.save(ctx, runID, state, last, checkpoint.StatusAwaitingInput); cerr != nil {
					return state, cerr
				}
				log.Info("run suspended awaiting input", zap.String("node", string(current)))
				return state, &AwaitingInput{RunID: runID, Prompt: state.String(KeyCodeSnippet)}
			}
			var violation *ContractViolationError
			if errors.As(err, &violation) {
				return state, err
			}
			log.Error("node failed", zap.String("node", string(current)), zap.Error(err))
			return state, &NodeError{Node: current, Err: err}
		}

		if err := r.save(ctx, runID, state, current, checkpoint.StatusRunning); err != nil {
			return state, err
		}
		if emit != nil {
			emit(Snapshot{RunID: runID, Node: current, State: state.Clone()})
		}

		next := r.graph.Route(current, state)
		log.Debug("node complete", zap.String("node", string(current)), zap.String("next", string(next)))
		last = current
		current = next
	}

	if err := r.save(ctx, runID, state, last, checkpoint.StatusCompleted); err != nil {
		return state, err
	}
	log.Info("run completed")
	return state, nil
}

func (r *Runtime) save(ctx context.Context, runID string, state State, last NodeID, status checkpoint.Status) error {
	if r.store == nil {
		return nil
	}
	cp := &checkpoint.Checkpoint{
		RunID:     runID,
		State:     map[string]any(state),
		LastNode:  string(last),
		Status:    status,
		UpdatedAt: time.Now().UTC(),
	}
	if err := r.store.Save(ctx, cp); err != nil {
		return fmt.Errorf("checkpoint run %s: %w", runID, err)
	}
	return nil
}
