package graph

import (
	"errors"
	"fmt"
)

// END is a special constant used to represent the end node in the graph.
const END = "END"

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")
)

// Edge represents a static edge between two nodes in the graph.
type Edge struct {
	// From is the name of the node from which the edge originates.
	From string

	// To is the name of the node to which the edge points.
	To string
}

// GraphInterrupt is returned by Invoke when execution pauses at an interrupt
// point configured via Config.InterruptBefore or Config.InterruptAfter.
// It carries the state at the moment of the pause so the caller can persist
// it and later resume with Config.ResumeFrom.
type GraphInterrupt struct {
	// Node that caused the interruption
	Node string
	// State at the time of interruption
	State any
	// NextNodes that would have been executed if not interrupted
	NextNodes []string
}

func (e *GraphInterrupt) Error() string {
	return fmt.Sprintf("graph interrupted at node %s", e.Node)
}
