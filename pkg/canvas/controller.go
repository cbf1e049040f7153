package canvas

import (
	"fmt"
	"sync"

	"github.com/contractpulse/flowdesigner/pkg/models"
)

// Mode is the pointer interaction state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeNodeDragging
	ModePanning
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeNodeDragging:
		return "node_dragging"
	case ModePanning:
		return "panning"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// NodeMover is the part of the graph store the canvas needs.
type NodeMover interface {
	Nodes() []*models.WorkflowNode
	Node(id string) (*models.WorkflowNode, error)
	MoveNode(id string, position models.Position) error
}

// Controller turns pointer events into node moves, selection and view changes.
type Controller struct {
	mu         sync.Mutex
	store      NodeMover
	viewport   Viewport
	mode       Mode
	selectedID string
	draggedID  string
	dragOffset models.Position
	lastScreen models.Position
}

// NewController creates a controller over store with the reset view.
func NewController(store NodeMover) *Controller {
	return &Controller{
		store:    store,
		viewport: NewViewport(),
	}
}

// HitTest returns the topmost node under a screen point.
func (c *Controller) HitTest(screen models.Position) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := c.hit(c.viewport.ToCanvas(screen))
	if node == nil {
		return "", false
	}

	return node.ID, true
}

func (c *Controller) hit(p models.Position) *models.WorkflowNode {
	nodes := c.store.Nodes()

	for i := len(nodes) - 1; i >= 0; i-- {
		if NodeBounds(nodes[i].Position).Contains(p) {
			return nodes[i]
		}
	}

	return nil
}

// PointerDown selects and starts dragging the node under the pointer, or clears the
// selection and starts panning on empty canvas. It is ignored unless the controller is idle.
func (c *Controller) PointerDown(screen models.Position) Mode {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeIdle {
		return c.mode
	}

	c.lastScreen = screen
	pointer := c.viewport.ToCanvas(screen)

	node := c.hit(pointer)
	if node == nil {
		c.selectedID = ""
		c.mode = ModePanning

		return c.mode
	}

	c.selectedID = node.ID
	c.draggedID = node.ID
	c.dragOffset = pointer.Sub(node.Position)
	c.mode = ModeNodeDragging

	return c.mode
}

// PointerMove drags the picked node or pans the view.
func (c *Controller) PointerMove(screen models.Position) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delta := screen.Sub(c.lastScreen)
	c.lastScreen = screen

	switch c.mode {
	case ModeNodeDragging:
		position := c.viewport.ToCanvas(screen).Sub(c.dragOffset)

		err := c.store.MoveNode(c.draggedID, position)
		if err != nil {
			c.endInteraction()

			return fmt.Errorf("failed to drag node %s: %w", c.draggedID, err)
		}
	case ModePanning:
		c.viewport.PanBy(delta)
	case ModeIdle:
	}

	return nil
}

// PointerUp ends a drag or pan.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.endInteraction()
}

func (c *Controller) endInteraction() {
	c.mode = ModeIdle
	c.draggedID = ""
	c.dragOffset = models.Position{}
}

// Mode returns the interaction state.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mode
}

// Select marks a node as selected.
func (c *Controller) Select(id string) error {
	_, err := c.store.Node(id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.selectedID = id

	return nil
}

// ClearSelection deselects any node.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selectedID = ""
}

// Forget drops the selection if it points at a removed node.
func (c *Controller) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selectedID == id {
		c.selectedID = ""
	}

	if c.draggedID == id {
		c.endInteraction()
	}
}

// SelectedID returns the selected node id, or "".
func (c *Controller) SelectedID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.selectedID
}

// ZoomIn steps the zoom up.
func (c *Controller) ZoomIn() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.viewport.ZoomIn()
}

// ZoomOut steps the zoom down.
func (c *Controller) ZoomOut() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.viewport.ZoomOut()
}

// ResetView restores zoom 1 and no pan.
func (c *Controller) ResetView() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.viewport.Reset()
}

// Viewport returns the current transform.
func (c *Controller) Viewport() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.viewport
}

// State returns the transient view state.
func (c *Controller) State() models.CanvasViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.CanvasViewState{
		Zoom:           c.viewport.Zoom,
		PanOffset:      c.viewport.Pan,
		SelectedNodeID: c.selectedID,
		DraggedNodeID:  c.draggedID,
		DragOffset:     c.dragOffset,
	}
}

// Scene lays out the workflow under the current viewport and selection.
func (c *Controller) Scene(workflow *models.Workflow) Scene {
	c.mu.Lock()
	defer c.mu.Unlock()

	return BuildScene(workflow, c.viewport, c.selectedID)
}
