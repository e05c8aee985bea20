package builder

import (
	"fmt"
	"strings"
)

// Validate runs the structural checks that gate submission and returns an
// ordered list of human-readable errors; an empty list means the workflow
// is valid. All rules are evaluated, none short-circuit.
//
// The gate is deliberately minimal: no cycle detection, no reachability
// analysis, no port-type compatibility. Any output may legally feed any
// input, and the engine is trusted to cope with whatever passes here.
func Validate(w *Workflow) []string {
	var errs []string

	if strings.TrimSpace(w.Name) == "" {
		errs = append(errs, "Workflow name is required")
	}
	if len(w.nodes) == 0 {
		errs = append(errs, "At least one node is required")
	}

	hasStart, hasEnd := false, false
	for _, n := range w.nodes {
		switch n.Kind {
		case KindStart:
			hasStart = true
		case KindEnd:
			hasEnd = true
		}
	}
	if !hasStart {
		errs = append(errs, "Workflow must have a start node")
	}
	if !hasEnd {
		errs = append(errs, "Workflow must have an end node")
	}

	connected := make(map[string]bool, len(w.connections)*2)
	for _, c := range w.connections {
		connected[c.From.NodeID] = true
		connected[c.To.NodeID] = true
	}
	disconnected := 0
	for _, n := range w.nodes {
		if n.Kind == KindStart {
			continue
		}
		if !connected[n.ID] {
			disconnected++
		}
	}
	if disconnected > 0 {
		errs = append(errs, fmt.Sprintf("%d nodes are not connected to the workflow", disconnected))
	}

	return errs
}

// Valid reports whether the workflow passes Validate with no errors.
func Valid(w *Workflow) bool {
	return len(Validate(w)) == 0
}
