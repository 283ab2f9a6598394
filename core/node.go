package core

import "context"

// Node is a unit of work in the graph. It reads a subset of the state and
// returns a partial update. Nodes must not mutate the state they receive;
// all writes go through the returned delta so the runtime can merge, log
// and checkpoint them in order.
//
// A non-nil error is a fatal node failure and aborts the run. Recoverable
// execution failures are not errors here: the execute node captures them
// into the state's error key and leaves recovery to the routing policy.
type Node interface {
	ID() NodeID
	Run(ctx context.Context, state State) (Delta, error)
}

// NodeFunc adapts a plain function to the Node interface.
type NodeFunc func(ctx context.Context, state State) (Delta, error)

type funcNode struct {
	id NodeID
	fn NodeFunc
}

// NewNode wraps fn as a Node with the given identifier.
func NewNode(id NodeID, fn NodeFunc) Node {
	return &funcNode{id: id, fn: fn}
}

func (n *funcNode) ID() NodeID { return n.id }

func (n *funcNode) Run(ctx context.Context, state State) (Delta, error) {
	return n.fn(ctx, state)
}

// Registry maps node identifiers to their implementations. The graph
// builder resolves every identifier it needs against the registry and
// fails fast on anything unresolved.
type Registry map[NodeID]Node

// NewRegistry builds a registry from the given nodes. A node registered
// twice overwrites the earlier entry.
func NewRegistry(nodes ...Node) Registry {
	reg := make(Registry, len(nodes))
	for _, n := range nodes {
		reg[n.ID()] = n
	}
	return reg
}

// Register adds a node to the registry.
func (r Registry) Register(n Node) {
	r[n.ID()] = n
}
