package canvas

import "sync"

// DragState is the interaction state of the editor: either Idle or Dragging.
type DragState interface {
	isDragState()
}

// Idle means no node is grabbed.
type Idle struct{}

// Dragging means NodeID is grabbed. Offset is the pointer position relative
// to the node's origin at grab time.
type Dragging struct {
	NodeID string
	Offset Point
}

func (Idle) isDragState()     {}
func (Dragging) isDragState() {}

// StateName returns "idle" or "dragging".
func StateName(s DragState) string {
	if _, ok := s.(Dragging); ok {
		return "dragging"
	}
	return "idle"
}

// Viewport locates the canvas in pointer coordinates. A detached viewport
// means the host has no canvas surface to measure against.
type Viewport struct {
	Origin   Point `json:"origin"`
	Attached bool  `json:"attached"`
}

// Editor owns the node collection, the viewport and the drag session of one
// workflow canvas. All methods are safe for concurrent use; each runs to
// completion before the next.
type Editor struct {
	mu       sync.RWMutex
	seed     []Node
	nodes    []Node
	index    map[string]int
	drag     DragState
	viewport Viewport
	mode     StandOffMode
}

// NewEditor creates an editor seeded with nodes. Positions are clamped to the
// canvas; a repeated ID keeps its first occurrence. The viewport starts
// attached at the pointer-space origin.
func NewEditor(nodes []Node) *Editor {
	e := &Editor{
		drag:     Idle{},
		viewport: Viewport{Attached: true},
		mode:     StandOffHorizontal,
	}
	e.seed = make([]Node, 0, len(nodes))
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		c := n.clone()
		c.Position = Clamp(c.Position)
		e.seed = append(e.seed, c)
	}
	e.reseedLocked()
	return e
}

func (e *Editor) reseedLocked() {
	e.nodes = make([]Node, len(e.seed))
	e.index = make(map[string]int, len(e.seed))
	for i, n := range e.seed {
		e.nodes[i] = n.clone()
		e.index[n.ID] = i
	}
	e.drag = Idle{}
}

// SetStandOffMode selects how connection lines stop short of their target.
func (e *Editor) SetStandOffMode(mode StandOffMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = mode
}

// AttachViewport records where the canvas origin sits in pointer coordinates.
func (e *Editor) AttachViewport(origin Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport = Viewport{Origin: origin, Attached: true}
}

// DetachViewport marks the canvas surface as unavailable. Moves are ignored
// until a viewport is attached again.
func (e *Editor) DetachViewport() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport = Viewport{}
}

// Viewport returns the current viewport.
func (e *Editor) Viewport() Viewport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.viewport
}

// State returns the current drag state.
func (e *Editor) State() DragState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.drag
}

// Nodes returns a copy of the node collection in seed order.
func (e *Editor) Nodes() []Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Node, len(e.nodes))
	for i, n := range e.nodes {
		out[i] = n.clone()
	}
	return out
}

// Node returns a copy of the node with the given ID.
func (e *Editor) Node(id string) (Node, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i, ok := e.index[id]
	if !ok {
		return Node{}, false
	}
	return e.nodes[i].clone(), true
}

// BeginDrag grabs nodeID at pointer. The grab offset is kept so later moves
// hold the grab point under the pointer. It returns false, changing nothing,
// when the node does not exist.
func (e *Editor) BeginDrag(nodeID string, pointer Point) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.index[nodeID]
	if !ok {
		dragEvents.WithLabelValues("ignored").Inc()
		return false
	}

	rendered := e.viewport.Origin.Add(e.nodes[i].Position)
	e.drag = Dragging{NodeID: nodeID, Offset: pointer.Sub(rendered)}
	dragEvents.WithLabelValues("begin").Inc()
	return true
}

// UpdateDrag moves the grabbed node so the grab point follows pointer,
// clamped to the canvas. It returns the moved node, or false when idle or
// when no viewport is attached.
func (e *Editor) UpdateDrag(pointer Point) (Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, ok := e.drag.(Dragging)
	if !ok || !e.viewport.Attached {
		dragEvents.WithLabelValues("ignored").Inc()
		return Node{}, false
	}
	i, ok := e.index[d.NodeID]
	if !ok {
		dragEvents.WithLabelValues("ignored").Inc()
		return Node{}, false
	}

	pos := Clamp(pointer.Sub(e.viewport.Origin).Sub(d.Offset))
	e.nodes[i].Position = pos
	dragEvents.WithLabelValues("move").Inc()
	nodePosition.WithLabelValues(d.NodeID, "x").Set(pos.X)
	nodePosition.WithLabelValues(d.NodeID, "y").Set(pos.Y)
	return e.nodes[i].clone(), true
}

// EndDrag releases any grabbed node. It reports whether a drag was active.
func (e *Editor) EndDrag() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, was := e.drag.(Dragging)
	e.drag = Idle{}
	dragEvents.WithLabelValues("end").Inc()
	return was
}

// Reset restores the seed positions and ends any drag.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reseedLocked()
}

// Render projects the current state into a scene. It never mutates the
// editor.
func (e *Editor) Render() Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return render(e.nodes, e.index, e.drag, e.mode)
}
