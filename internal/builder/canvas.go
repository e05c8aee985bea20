package builder

// PointerEventType enumerates the discrete pointer events the canvas
// adapter translates host input into.
type PointerEventType int

const (
	PointerDown PointerEventType = iota
	PointerMove
	PointerUp
	PointerLeave
)

// PointerEvent is a host-independent pointer event in canvas coordinates.
// The host layer (whatever renders the canvas) is responsible only for
// producing these; the state machine below never touches UI types.
type PointerEvent struct {
	Type PointerEventType
	At   Position
}

// DragState is the controller's interaction state: either idle or dragging
// a single node. Offset is pointer position minus node origin, captured at
// pointer-down so the node does not jump to the pointer.
type DragState struct {
	Dragging bool
	NodeID   string
	Offset   Position
}

// Canvas drives node placement, movement and selection from pointer events.
// It is synchronous and single-threaded: all graph mutation happens on the
// interaction thread, one event at a time.
type Canvas struct {
	wf    *Workflow
	state DragState
}

// NewCanvas creates a controller over the given workflow.
func NewCanvas(wf *Workflow) *Canvas {
	return &Canvas{wf: wf}
}

// Workflow returns the workflow the canvas operates on.
func (c *Canvas) Workflow() *Workflow {
	return c.wf
}

// SetWorkflow swaps the workflow wholesale, as after an import, and resets
// the interaction state.
func (c *Canvas) SetWorkflow(wf *Workflow) {
	c.wf = wf
	c.state = DragState{}
}

// State returns the current interaction state.
func (c *Canvas) State() DragState {
	return c.state
}

// Handle advances the interaction state machine by one pointer event,
// mutating the workflow's position and selection as a side effect.
func (c *Canvas) Handle(ev PointerEvent) {
	switch ev.Type {
	case PointerDown:
		c.pointerDown(ev.At)
	case PointerMove:
		c.pointerMove(ev.At)
	case PointerUp, PointerLeave:
		c.state = DragState{}
	}
}

func (c *Canvas) pointerDown(at Position) {
	n, ok := c.hit(at)
	if !ok {
		if !c.state.Dragging {
			c.wf.ClearSelection()
		}
		return
	}

	_ = c.wf.Select(n.ID)
	c.state = DragState{
		Dragging: true,
		NodeID:   n.ID,
		Offset:   Position{X: at.X - n.Position.X, Y: at.Y - n.Position.Y},
	}
}

func (c *Canvas) pointerMove(at Position) {
	if !c.state.Dragging {
		return
	}
	_ = c.wf.MoveNode(c.state.NodeID, Position{
		X: at.X - c.state.Offset.X,
		Y: at.Y - c.state.Offset.Y,
	})
}

// hit returns the topmost node whose body contains the point. Later nodes
// draw on top, so the scan runs back to front.
func (c *Canvas) hit(at Position) (*Node, bool) {
	b := c.wf.Bounds()
	nodes := c.wf.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if at.X >= n.Position.X && at.X <= n.Position.X+b.NodeWidth &&
			at.Y >= n.Position.Y && at.Y <= n.Position.Y+b.NodeHeight {
			return n, true
		}
	}
	return nil, false
}
