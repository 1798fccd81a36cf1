package graph

import (
	"context"
	"fmt"
	"slices"
)

// StateGraph represents a generic state-based graph with compile-time type
// safety. The type parameter S is the state type threaded through every node.
//
// Nodes run strictly one at a time: each node receives the current state and
// returns the next state. There is no fan-out and no reducer registry — the
// node's return value becomes the state the next node sees.
type StateGraph[S any] struct {
	// nodes is a map of node names to their corresponding Node objects
	nodes map[string]Node[S]

	// edges is a slice of Edge objects representing the connections between nodes
	edges []Edge

	// conditionalEdges contains a map between "From" node, while "To" node is derived based on the condition
	conditionalEdges map[string]func(ctx context.Context, state S) string

	// entryPoint is the name of the entry point node in the graph
	entryPoint string
}

// Node represents a typed node in the graph.
type Node[S any] struct {
	Name        string
	Description string
	Function    func(ctx context.Context, state S) (S, error)
}

// NewStateGraph creates a new instance of StateGraph.
// The type parameter S specifies the state type.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]Node[S]),
		conditionalEdges: make(map[string]func(ctx context.Context, state S) string),
	}
}

// AddNode adds a new node to the state graph with the given name, description
// and function.
func (g *StateGraph[S]) AddNode(name string, description string, fn func(ctx context.Context, state S) (S, error)) {
	g.nodes[name] = Node[S]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds a new edge to the state graph between the "from" and "to" nodes.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// AddConditionalEdge adds a conditional edge where the target node is
// determined at runtime from the just-produced state.
func (g *StateGraph[S]) AddConditionalEdge(from string, condition func(ctx context.Context, state S) string) {
	g.conditionalEdges[from] = condition
}

// SetEntryPoint sets the entry point node name for the state graph.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// Runnable represents a compiled state graph that can be invoked.
type Runnable[S any] struct {
	graph *StateGraph[S]
}

// Compile compiles the state graph and returns a Runnable instance.
func (g *StateGraph[S]) Compile() (*Runnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}

	for from := range g.conditionalEdges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, from)
		}
	}
	for _, edge := range g.edges {
		if _, ok := g.nodes[edge.From]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, edge.From)
		}
		if _, ok := g.nodes[edge.To]; !ok && edge.To != END {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, edge.To)
		}
	}

	return &Runnable[S]{graph: g}, nil
}

// Invoke executes the compiled state graph with the given input state and
// returns the final state.
func (r *Runnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	return r.InvokeWithConfig(ctx, initialState, nil)
}

// InvokeWithConfig executes the compiled state graph with the given input
// state and config. When execution pauses at an interrupt point, the returned
// error is a *GraphInterrupt and the returned state is valid.
func (r *Runnable[S]) InvokeWithConfig(ctx context.Context, initialState S, config *Config) (S, error) {
	state := initialState
	current := r.graph.entryPoint

	if config != nil {
		ctx = WithConfig(ctx, config)
		if config.ResumeFrom != "" {
			current = config.ResumeFrom
		}
	}

	runID := generateRunID()
	notifyStart(ctx, config, state, runID)

	for current != END {
		if config != nil && slices.Contains(config.InterruptBefore, current) {
			return state, &GraphInterrupt{Node: current, State: state, NextNodes: []string{current}}
		}

		node, ok := r.graph.nodes[current]
		if !ok {
			err := fmt.Errorf("%w: %s", ErrNodeNotFound, current)
			notifyError(ctx, config, err, runID)
			return state, err
		}

		next, err := r.executeNode(ctx, node, state)
		if err != nil {
			err = fmt.Errorf("error in node %s: %w", current, err)
			notifyError(ctx, config, err, runID)
			return state, err
		}
		state = next

		notifyStep(ctx, config, current, state)

		following, err := r.nextNode(ctx, current, state)
		if err != nil {
			notifyError(ctx, config, err, runID)
			return state, err
		}

		if config != nil && slices.Contains(config.InterruptAfter, current) {
			return state, &GraphInterrupt{Node: current, State: state, NextNodes: []string{following}}
		}

		current = following
	}

	notifyEnd(ctx, config, state, runID)
	return state, nil
}

// executeNode runs a single node, converting panics into errors so a
// misbehaving node cannot take down the caller.
func (r *Runnable[S]) executeNode(ctx context.Context, node Node[S], state S) (result S, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in node %s: %v", node.Name, p)
		}
	}()
	return node.Function(ctx, state)
}

// nextNode determines the node that follows current, preferring a conditional
// edge over static edges.
func (r *Runnable[S]) nextNode(ctx context.Context, current string, state S) (string, error) {
	if condition, ok := r.graph.conditionalEdges[current]; ok {
		next := condition(ctx, state)
		if next == "" {
			return "", fmt.Errorf("conditional edge returned empty next node from %s", current)
		}
		return next, nil
	}

	for _, edge := range r.graph.edges {
		if edge.From == current {
			return edge.To, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, current)
}

func notifyStart(ctx context.Context, config *Config, state any, runID string) {
	if config == nil {
		return
	}
	for _, cb := range config.Callbacks {
		cb.OnChainStart(ctx, state, runID)
	}
}

func notifyEnd(ctx context.Context, config *Config, state any, runID string) {
	if config == nil {
		return
	}
	for _, cb := range config.Callbacks {
		cb.OnChainEnd(ctx, state, runID)
	}
}

func notifyError(ctx context.Context, config *Config, err error, runID string) {
	if config == nil {
		return
	}
	for _, cb := range config.Callbacks {
		cb.OnChainError(ctx, err, runID)
	}
}

func notifyStep(ctx context.Context, config *Config, nodeName string, state any) {
	if config == nil {
		return
	}
	for _, cb := range config.Callbacks {
		cb.OnGraphStep(ctx, nodeName, state)
	}
}
