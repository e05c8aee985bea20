package builder

import (
	"fmt"

	"github.com/pkg/errors"
)

// Bounds describes the visible canvas extent and the fixed node footprint
// used for clamping and hit-testing.
type Bounds struct {
	Width      float64
	Height     float64
	NodeWidth  float64
	NodeHeight float64
}

// DefaultBounds returns the editor's standard canvas extent.
func DefaultBounds() Bounds {
	return Bounds{Width: 1200, Height: 800, NodeWidth: 160, NodeHeight: 80}
}

// Clamp forces a node origin inside [0, Width-NodeWidth] x [0, Height-NodeHeight].
func (b Bounds) Clamp(p Position) Position {
	maxX := b.Width - b.NodeWidth
	maxY := b.Height - b.NodeHeight
	if p.X < 0 {
		p.X = 0
	} else if p.X > maxX {
		p.X = maxX
	}
	if p.Y < 0 {
		p.Y = 0
	} else if p.Y > maxY {
		p.Y = maxY
	}
	return p
}

// Workflow is the complete editor graph: nodes, connections and metadata.
// All mutation is synchronous and single-threaded; the editor drives it
// from one event loop, so no locking is needed.
type Workflow struct {
	Name        string
	Description string

	nodes       []*Node
	index       map[string]*Node
	connections []*Connection

	// counters assigns the N in "<KindLabel> <N>" default labels. They only
	// ever increase, so numbers are not reused after deletion.
	counters map[NodeKind]int

	selected string
	bounds   Bounds
}

// Option configures a new Workflow.
type Option func(*Workflow)

// WithDescription sets the workflow description.
func WithDescription(desc string) Option {
	return func(w *Workflow) { w.Description = desc }
}

// WithBounds overrides the default canvas bounds.
func WithBounds(b Bounds) Option {
	return func(w *Workflow) { w.bounds = b }
}

// NewWorkflow creates an empty workflow.
func NewWorkflow(name string, opts ...Option) *Workflow {
	w := &Workflow{
		Name:     name,
		index:    make(map[string]*Node),
		counters: make(map[NodeKind]int),
		bounds:   DefaultBounds(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Bounds returns the canvas bounds the workflow clamps against.
func (w *Workflow) Bounds() Bounds {
	return w.bounds
}

// Nodes returns the nodes in insertion order. The slice is shared; callers
// must not mutate it.
func (w *Workflow) Nodes() []*Node {
	return w.nodes
}

// Connections returns the connections in insertion order. The slice is
// shared; callers must not mutate it.
func (w *Workflow) Connections() []*Connection {
	return w.connections
}

// Node looks a node up by ID.
func (w *Workflow) Node(id string) (*Node, bool) {
	n, ok := w.index[id]
	return n, ok
}

// Len returns the number of nodes.
func (w *Workflow) Len() int {
	return len(w.nodes)
}

// AddNode creates a node of the given kind at the given position, with a
// default numbered label. The position is clamped to the canvas bounds.
func (w *Workflow) AddNode(kind NodeKind, at Position) *Node {
	n := NewNode(kind, w.bounds.Clamp(at))

	w.counters[kind]++
	n.Label = fmt.Sprintf("%s %d", Type(kind).Label, w.counters[kind])

	w.nodes = append(w.nodes, n)
	w.index[n.ID] = n
	return n
}

// MoveNode updates a node's position, clamped to the canvas bounds.
func (w *Workflow) MoveNode(id string, to Position) error {
	n, ok := w.index[id]
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "move node %s", id)
	}
	n.Position = w.bounds.Clamp(to)
	return nil
}

// UpdateLabel replaces a node's display label.
func (w *Workflow) UpdateLabel(id, label string) error {
	n, ok := w.index[id]
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "update label of node %s", id)
	}
	n.Label = label
	return nil
}

// UpdateConfig replaces a node's config payload. The payload's variant must
// match the node's kind, and its values must be in range.
func (w *Workflow) UpdateConfig(id string, cfg NodeConfig) error {
	n, ok := w.index[id]
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "update config of node %s", id)
	}
	if cfg == nil {
		return errors.Wrapf(ErrConfigKindMismatch, "node %s is of kind %s", id, n.Kind)
	}
	if cfg.configKind() != n.Kind {
		return errors.Wrapf(ErrConfigKindMismatch, "node %s is of kind %s", id, n.Kind)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	n.Config = cfg
	return nil
}

// RemoveNode deletes a node and every connection that references it. A
// dangling connection never survives a deletion. If the node was selected,
// the selection is cleared.
func (w *Workflow) RemoveNode(id string) error {
	if _, ok := w.index[id]; !ok {
		return errors.Wrapf(ErrNodeNotFound, "remove node %s", id)
	}
	delete(w.index, id)

	nodes := w.nodes[:0]
	for _, n := range w.nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	w.nodes = nodes

	conns := w.connections[:0]
	for _, c := range w.connections {
		if c.From.NodeID != id && c.To.NodeID != id {
			conns = append(conns, c)
		}
	}
	w.connections = conns

	if w.selected == id {
		w.selected = ""
	}
	return nil
}

// Connect adds a directed connection from an output port to an input port.
// Both endpoints must reference existing nodes; beyond that no compatibility
// check is performed — any output may feed any input, including ports on the
// same node. The validator is the single source of truth for soundness.
func (w *Workflow) Connect(fromID string, fromPort Port, toID string, toPort Port) (*Connection, error) {
	if _, ok := w.index[fromID]; !ok {
		return nil, errors.Wrapf(ErrNodeNotFound, "connect from node %s", fromID)
	}
	if _, ok := w.index[toID]; !ok {
		return nil, errors.Wrapf(ErrNodeNotFound, "connect to node %s", toID)
	}

	c := &Connection{
		ID:   newID(),
		From: Endpoint{NodeID: fromID, Port: fromPort},
		To:   Endpoint{NodeID: toID, Port: toPort},
	}
	w.connections = append(w.connections, c)
	return c, nil
}

// Disconnect removes a connection by ID.
func (w *Workflow) Disconnect(id string) error {
	for i, c := range w.connections {
		if c.ID == id {
			w.connections = append(w.connections[:i], w.connections[i+1:]...)
			return nil
		}
	}
	return errors.Wrapf(ErrConnectionNotFound, "disconnect %s", id)
}

// Select marks a node as the single selected node, opening its config panel
// in the editor.
func (w *Workflow) Select(id string) error {
	if _, ok := w.index[id]; !ok {
		return errors.Wrapf(ErrNodeNotFound, "select node %s", id)
	}
	w.selected = id
	return nil
}

// ClearSelection deselects any selected node.
func (w *Workflow) ClearSelection() {
	w.selected = ""
}

// Selected returns the currently selected node, if any.
func (w *Workflow) Selected() (*Node, bool) {
	if w.selected == "" {
		return nil, false
	}
	n, ok := w.index[w.selected]
	return n, ok
}

// Restore rebuilds a workflow from previously exported parts, as when
// importing a portable document. Node IDs must be unique and every
// connection endpoint must resolve. The label counters restart at the
// per-kind node counts, and nothing is selected.
func Restore(name, description string, nodes []*Node, connections []*Connection, opts ...Option) (*Workflow, error) {
	w := NewWorkflow(name, opts...)
	w.Description = description

	for _, n := range nodes {
		if _, exists := w.index[n.ID]; exists {
			return nil, errors.Wrapf(ErrDuplicateNode, "restore node %s", n.ID)
		}
		n.Position = w.bounds.Clamp(n.Position)
		w.nodes = append(w.nodes, n)
		w.index[n.ID] = n
		w.counters[n.Kind]++
	}

	for _, c := range connections {
		if _, ok := w.index[c.From.NodeID]; !ok {
			return nil, errors.Wrapf(ErrNodeNotFound, "restore connection %s from node %s", c.ID, c.From.NodeID)
		}
		if _, ok := w.index[c.To.NodeID]; !ok {
			return nil, errors.Wrapf(ErrNodeNotFound, "restore connection %s to node %s", c.ID, c.To.NodeID)
		}
		w.connections = append(w.connections, c)
	}
	return w, nil
}
