package builder

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NodeKind identifies one of the built-in node types. The set is closed:
// kinds are chosen from a fixed menu and cannot be extended at runtime.
type NodeKind string

const (
	KindStart     NodeKind = "start"
	KindAction    NodeKind = "action"
	KindCondition NodeKind = "condition"
	KindLoop      NodeKind = "loop"
	KindDelay     NodeKind = "delay"
	KindEnd       NodeKind = "end"
)

// Port is the name of an attachment point on a node. A port is identified
// by the triple (node ID, direction, name); the name alone is unique within
// one direction of one node.
type Port string

// Position is a 2D canvas coordinate, measured from the top-left corner.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single step in a workflow graph. Kind, Inputs and Outputs are
// fixed at creation; Label, Position and Config are the only mutable fields,
// and mutation goes through Workflow methods so invariants hold.
type Node struct {
	ID       string     `json:"id"`
	Kind     NodeKind   `json:"kind"`
	Label    string     `json:"label"`
	Position Position   `json:"position"`
	Config   NodeConfig `json:"config,omitempty"`
	Inputs   []Port     `json:"inputs"`
	Outputs  []Port     `json:"outputs"`
}

// NodeConfig is the kind-dependent configuration payload. It is a sealed
// union: exactly one variant exists per configurable kind, and start/end
// nodes carry a nil config.
type NodeConfig interface {
	// Validate reports whether the payload values are in range.
	Validate() error

	configKind() NodeKind
}

// ActionConfig holds free-text instructions for an action node.
type ActionConfig struct {
	Instructions string `json:"instructions"`
}

func (ActionConfig) configKind() NodeKind { return KindAction }

func (ActionConfig) Validate() error { return nil }

// ConditionConfig holds a free-text boolean expression for a condition node.
type ConditionConfig struct {
	Expression string `json:"expression"`
}

func (ConditionConfig) configKind() NodeKind { return KindCondition }

func (ConditionConfig) Validate() error { return nil }

// DelayConfig holds the wait duration for a delay node, in whole seconds.
type DelayConfig struct {
	Seconds int `json:"seconds"`
}

func (DelayConfig) configKind() NodeKind { return KindDelay }

func (c DelayConfig) Validate() error {
	if c.Seconds < 0 {
		return errors.New("delay seconds must be non-negative")
	}
	return nil
}

// LoopConfig holds the iteration count for a loop node.
type LoopConfig struct {
	Iterations int `json:"iterations"`
}

func (LoopConfig) configKind() NodeKind { return KindLoop }

func (c LoopConfig) Validate() error {
	if c.Iterations < 1 {
		return errors.New("loop iterations must be positive")
	}
	return nil
}

// Endpoint names one side of a connection: a node and a port on it.
type Endpoint struct {
	NodeID string `json:"nodeId"`
	Port   Port   `json:"port"`
}

// Connection is a directed edge from one node's output port to another
// node's input port. Ports are not single-use: multiple connections may
// share an endpoint, and self-loops are not forbidden here. Structural
// soundness is the validator's job alone.
type Connection struct {
	ID   string   `json:"id"`
	From Endpoint `json:"from"`
	To   Endpoint `json:"to"`
}

func newID() string {
	return uuid.New().String()
}
