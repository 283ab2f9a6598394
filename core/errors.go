package core

import (
	"errors"
	"fmt"
)

// ErrAwaitingInput is returned by Invoke/Resume when the run reached the
// human review node and the reviewer channel cannot answer synchronously.
// The run is checkpointed; supply the response via ResumeWithInput.
var ErrAwaitingInput = errors.New("workflow awaiting human input")

// ErrRunNotFound is returned by Resume when no checkpoint exists for the
// run identifier.
var ErrRunNotFound = errors.New("no checkpoint for run")

// BuildError reports a malformed graph configuration. It is fatal at build
// time and never enters execution.
type BuildError struct {
	Reason string
}

func (e *BuildError) Error() string {
	return "graph build: " + e.Reason
}

// ContractViolationError signals a routing-policy bug, such as the fix node
// being entered at the retry ceiling. It aborts the run and carries the
// diagnostic state.
type ContractViolationError struct {
	Node   NodeID
	Reason string
	State  State
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("contract violation at node %s: %s", e.Node, e.Reason)
}

// NodeError wraps a fatal failure raised by a node itself (as opposed to an
// execution failure captured into state and handled by routing).
type NodeError struct {
	Node NodeID
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}
