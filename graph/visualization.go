package graph

import (
	"fmt"
	"sort"
	"strings"
)

// DrawMermaid generates a Mermaid flowchart representation of the graph,
// useful for documentation and debugging. Conditional targets are only known
// at runtime, so conditional edges are rendered as a decision marker.
func (g *StateGraph[S]) DrawMermaid() string {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	if g.entryPoint != "" {
		sb.WriteString("    START([\"START\"])\n")
		sb.WriteString(fmt.Sprintf("    START --> %s\n", g.entryPoint))
	}

	nodeNames := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		nodeNames = append(nodeNames, name)
	}
	sort.Strings(nodeNames)

	for _, name := range nodeNames {
		node := g.nodes[name]
		label := node.Name
		if node.Description != "" {
			label = node.Description
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", name, label))
	}

	hasEnd := false
	for _, edge := range g.edges {
		if edge.To == END {
			hasEnd = true
		}
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", edge.From, edge.To))
	}

	// Conditional targets are only known at runtime, render a decision marker.
	condFroms := make([]string, 0, len(g.conditionalEdges))
	for from := range g.conditionalEdges {
		condFroms = append(condFroms, from)
	}
	sort.Strings(condFroms)
	for _, from := range condFroms {
		sb.WriteString(fmt.Sprintf("    %s_cond{\"?\"}\n", from))
		sb.WriteString(fmt.Sprintf("    %s -.-> %s_cond\n", from, from))
	}

	if hasEnd {
		sb.WriteString("    END([\"END\"])\n")
	}

	return sb.String()
}
