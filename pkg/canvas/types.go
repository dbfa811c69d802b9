package canvas

import "math"

// Status is the execution state of a workflow step.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusRunning   Status = "running"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusRunning, StatusPending, StatusFailed:
		return true
	default:
		return false
	}
}

// Canvas geometry in logical pixels.
const (
	NodeWidth  = 80.0
	NodeHeight = 50.0

	// MaxX and MaxY bound the top-left corner of every node. The bounds are
	// fixed and do not follow the rendered viewport size.
	MaxX = 700.0
	MaxY = 300.0

	StandOff    = 15.0
	ArrowLength = 8.0
)

// ArrowAngle is the half-angle of an arrowhead.
const ArrowAngle = math.Pi / 6

// Point is a 2D coordinate. Depending on context it is canvas-local or in
// pointer (client) coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Node is a single step of the workflow graph.
type Node struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Status      Status   `json:"status"`
	Duration    string   `json:"duration"`
	Position    Point    `json:"position"`
	Connections []string `json:"connections"`
}

// Anchor returns the center of the node's box.
func (n Node) Anchor() Point {
	return Point{X: n.Position.X + NodeWidth/2, Y: n.Position.Y + NodeHeight/2}
}

func (n Node) clone() Node {
	c := n
	if n.Connections != nil {
		c.Connections = make([]string, len(n.Connections))
		copy(c.Connections, n.Connections)
	}
	return c
}

// Clamp limits p to the draggable extent, each axis independently.
func Clamp(p Point) Point {
	return Point{
		X: math.Max(0, math.Min(p.X, MaxX)),
		Y: math.Max(0, math.Min(p.Y, MaxY)),
	}
}

// InitialGraph returns the workflow graph the canvas is seeded with when no
// seed file is configured.
func InitialGraph() []Node {
	return []Node{
		{ID: "start", Name: "Start", Status: StatusCompleted, Duration: "0.1s", Position: Point{50, 100}, Connections: []string{"pageload", "auth"}},
		{ID: "pageload", Name: "Page Load", Status: StatusCompleted, Duration: "1.2s", Position: Point{200, 50}, Connections: []string{"datafetch"}},
		{ID: "auth", Name: "Auth Check", Status: StatusCompleted, Duration: "0.8s", Position: Point{200, 150}, Connections: []string{"datafetch"}},
		{ID: "datafetch", Name: "Data Fetch", Status: StatusRunning, Duration: "2.1s", Position: Point{350, 100}, Connections: []string{"render", "validate"}},
		{ID: "render", Name: "Render UI", Status: StatusPending, Duration: "-", Position: Point{500, 50}, Connections: []string{"end"}},
		{ID: "validate", Name: "Validate", Status: StatusPending, Duration: "-", Position: Point{500, 150}, Connections: []string{"end"}},
		{ID: "end", Name: "End", Status: StatusPending, Duration: "-", Position: Point{650, 100}, Connections: []string{}},
	}
}
