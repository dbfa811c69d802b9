package api

import "github.com/rmax-ai/flowcanvas/pkg/canvas"

// PointerRequest matches the body of POST /v1/drag/begin, /v1/drag/move and
// /v1/viewport. Coordinates are in pointer (client) space.
type PointerRequest struct {
	NodeID string  `json:"node_id,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// DragResponse reports the interaction state after a pointer event.
type DragResponse struct {
	State  string       `json:"state"` // idle, dragging
	NodeID string       `json:"node_id,omitempty"`
	Node   *canvas.Node `json:"node,omitempty"`
}

// ViewportResponse matches the response for POST /v1/viewport
type ViewportResponse struct {
	Viewport canvas.Viewport `json:"viewport"`
}
