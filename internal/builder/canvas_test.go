package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCanvas(t *testing.T) (*Canvas, *Node) {
	t.Helper()
	w := NewWorkflow("demo", WithBounds(Bounds{Width: 1000, Height: 600, NodeWidth: 100, NodeHeight: 50}))
	n := w.AddNode(KindAction, Position{X: 200, Y: 200})
	return NewCanvas(w), n
}

func TestDragStartsWithoutJump(t *testing.T) {
	c, n := testCanvas(t)

	// Grab the node 30,10 inside its body.
	c.Handle(PointerEvent{Type: PointerDown, At: Position{X: 230, Y: 210}})

	st := c.State()
	require.True(t, st.Dragging)
	assert.Equal(t, n.ID, st.NodeID)
	assert.Equal(t, Position{X: 30, Y: 10}, st.Offset)
	// Position unchanged until the pointer moves.
	assert.Equal(t, Position{X: 200, Y: 200}, n.Position)

	c.Handle(PointerEvent{Type: PointerMove, At: Position{X: 330, Y: 310}})
	assert.Equal(t, Position{X: 300, Y: 300}, n.Position)
}

func TestDragSelectsNode(t *testing.T) {
	c, n := testCanvas(t)

	c.Handle(PointerEvent{Type: PointerDown, At: Position{X: 210, Y: 210}})

	sel, ok := c.Workflow().Selected()
	require.True(t, ok)
	assert.Equal(t, n.ID, sel.ID)
}

func TestDragClampsToBounds(t *testing.T) {
	c, n := testCanvas(t)

	c.Handle(PointerEvent{Type: PointerDown, At: Position{X: 200, Y: 200}})
	c.Handle(PointerEvent{Type: PointerMove, At: Position{X: -500, Y: 5000}})

	assert.Equal(t, Position{X: 0, Y: 550}, n.Position)
}

func TestPointerUpEndsDrag(t *testing.T) {
	c, n := testCanvas(t)

	c.Handle(PointerEvent{Type: PointerDown, At: Position{X: 210, Y: 210}})
	c.Handle(PointerEvent{Type: PointerUp})

	assert.False(t, c.State().Dragging)

	// Moves after release are ignored.
	c.Handle(PointerEvent{Type: PointerMove, At: Position{X: 900, Y: 500}})
	assert.Equal(t, Position{X: 200, Y: 200}, n.Position)
}

func TestPointerLeaveEndsDrag(t *testing.T) {
	c, _ := testCanvas(t)

	c.Handle(PointerEvent{Type: PointerDown, At: Position{X: 210, Y: 210}})
	c.Handle(PointerEvent{Type: PointerLeave})

	assert.False(t, c.State().Dragging)
}

func TestDownOnEmptyCanvasClearsSelection(t *testing.T) {
	c, n := testCanvas(t)

	require.NoError(t, c.Workflow().Select(n.ID))
	c.Handle(PointerEvent{Type: PointerDown, At: Position{X: 900, Y: 10}})

	_, ok := c.Workflow().Selected()
	assert.False(t, ok)
	assert.False(t, c.State().Dragging)
}

func TestHitTestPicksTopmostNode(t *testing.T) {
	w := NewWorkflow("demo", WithBounds(Bounds{Width: 1000, Height: 600, NodeWidth: 100, NodeHeight: 50}))
	_ = w.AddNode(KindAction, Position{X: 100, Y: 100})
	top := w.AddNode(KindAction, Position{X: 120, Y: 110})
	c := NewCanvas(w)

	c.Handle(PointerEvent{Type: PointerDown, At: Position{X: 150, Y: 120}})

	assert.Equal(t, top.ID, c.State().NodeID)
}

func TestSetWorkflowResetsState(t *testing.T) {
	c, _ := testCanvas(t)
	c.Handle(PointerEvent{Type: PointerDown, At: Position{X: 210, Y: 210}})
	require.True(t, c.State().Dragging)

	c.SetWorkflow(NewWorkflow("other"))
	assert.False(t, c.State().Dragging)
}
