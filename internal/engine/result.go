package engine

import (
	"fmt"

	"github.com/avi3tal/flowforge/internal/builder"
)

// Status is the per-node outcome reported by the execution engine.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusPending Status = "pending"
)

// ExecutionStats summarizes one engine run.
type ExecutionStats struct {
	NodesExecuted  int     `json:"nodes_executed"`
	BranchesTaken  int     `json:"branches_taken"`
	LoopsCompleted int     `json:"loops_completed"`
	TotalTime      float64 `json:"total_time"`
}

// NodeResult is one executed node's outcome. Conditionals and loops may
// skip nodes, so the list does not necessarily cover the whole graph.
type NodeResult struct {
	NodeID        string  `json:"node_id"`
	NodeLabel     string  `json:"node_label"`
	NodeType      string  `json:"node_type"`
	Status        Status  `json:"status"`
	Output        any     `json:"output,omitempty"`
	Error         string  `json:"error,omitempty"`
	ExecutionTime float64 `json:"execution_time"`
}

// ExecutionResult is the engine's response to a submission. Its shape is a
// collaborator contract: consumed here, produced elsewhere.
type ExecutionResult struct {
	Stats         ExecutionStats `json:"execution_stats"`
	NodeResults   []NodeResult   `json:"node_results"`
	ExecutionPath []string       `json:"execution_path"`
	FinalOutput   any            `json:"final_output"`
}

// TraceEntry is one rendered row of the execution trace: an engine result
// correlated back onto the current graph.
type TraceEntry struct {
	NodeID string           `json:"node_id"`
	Label  string           `json:"label"`
	Kind   builder.NodeKind `json:"kind"`
	Result NodeResult       `json:"result"`
}

// fallbackLabel names results whose node no longer exists in the workflow.
func fallbackLabel(id string) string {
	return fmt.Sprintf("Node %s", id)
}

// RenderTrace maps the engine's node results onto the workflow by node ID.
// Results for unknown IDs render with a fallback label instead of failing
// the whole trace.
func RenderTrace(w *builder.Workflow, res *ExecutionResult) []TraceEntry {
	entries := make([]TraceEntry, 0, len(res.NodeResults))
	for _, nr := range res.NodeResults {
		entry := TraceEntry{NodeID: nr.NodeID, Result: nr}
		if n, ok := w.Node(nr.NodeID); ok {
			entry.Label = n.Label
			entry.Kind = n.Kind
		} else {
			entry.Label = fallbackLabel(nr.NodeID)
			entry.Kind = builder.NodeKind(nr.NodeType)
		}
		entries = append(entries, entry)
	}
	return entries
}

// PathLabels resolves the engine's traversal order into display labels for
// the left-to-right trace strip, with the same unknown-ID fallback.
func PathLabels(w *builder.Workflow, res *ExecutionResult) []string {
	labels := make([]string, 0, len(res.ExecutionPath))
	for _, id := range res.ExecutionPath {
		if n, ok := w.Node(id); ok {
			labels = append(labels, n.Label)
		} else {
			labels = append(labels, fallbackLabel(id))
		}
	}
	return labels
}
