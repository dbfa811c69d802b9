package client

import "github.com/rmax-ai/flowcanvas/pkg/canvas"

// Pointer is a pointer event sent to the daemon.
type Pointer struct {
	// NodeID is required for a grab and ignored otherwise.
	NodeID string `json:"node_id,omitempty"`
	// X and Y are in pointer (page) coordinates.
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DragResult is the daemon's reply to a pointer event.
type DragResult struct {
	// State is "idle" or "dragging".
	State  string       `json:"state"`
	NodeID string       `json:"node_id,omitempty"`
	Node   *canvas.Node `json:"node,omitempty"`
}

// Status represents the daemon health.
type Status struct {
	Status string `json:"status"`
}

type viewportResult struct {
	Viewport canvas.Viewport `json:"viewport"`
}
