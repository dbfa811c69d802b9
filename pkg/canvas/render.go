package canvas

import "math"

// Stacking and scale of nodes on the node layer.
const (
	zResting  = 0
	zDragged  = 10
	scaleRest = 1.0
	scaleDrag = 1.05
)

// Instructions is the overlay text shown on the canvas.
const Instructions = "Drag nodes to reposition • Connections show workflow flow"

// Scene is a rendered canvas: a connection layer drawn beneath a node layer.
type Scene struct {
	Width        float64          `json:"width"`
	Height       float64          `json:"height"`
	Connections  []ConnectionView `json:"connections"`
	Nodes        []NodeView       `json:"nodes"`
	Skipped      []ConnectionRef  `json:"skipped,omitempty"`
	Legend       []LegendEntry    `json:"legend"`
	Instructions string           `json:"instructions"`
	Dragging     string           `json:"dragging,omitempty"`
}

// ConnectionRef names a directed connection.
type ConnectionRef struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Key returns the stable "<from>-<to>" identifier.
func (c ConnectionRef) Key() string { return c.From + "-" + c.To }

// ConnectionView is one rendered connection.
type ConnectionView struct {
	ConnectionRef
	Line        Segment `json:"line"`
	Arrow       Arrow   `json:"arrow"`
	Theta       float64 `json:"theta"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
	Dash        string  `json:"dash,omitempty"`
}

// NodeView is one rendered node.
type NodeView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Duration  string  `json:"duration"`
	Status    Status  `json:"status"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Fill      string  `json:"fill"`
	FillClass string  `json:"fill_class"`
	Z         int     `json:"z"`
	Scale     float64 `json:"scale"`
	Dragging  bool    `json:"dragging"`
	Pulse     bool    `json:"pulse"`
}

// LegendEntry is one row of the status legend.
type LegendEntry struct {
	Status Status `json:"status"`
	Label  string `json:"label"`
	Fill   string `json:"fill"`
	Pulse  bool   `json:"pulse"`
}

// Legend returns the static status legend.
func Legend() []LegendEntry {
	out := make([]LegendEntry, 0, len(legendOrder))
	for _, s := range legendOrder {
		st := StyleFor(s)
		out = append(out, LegendEntry{Status: s, Label: st.Label, Fill: st.Fill, Pulse: st.Pulse})
	}
	return out
}

// RenderNodes renders nodes without an editor; no node is being dragged. A
// repeated ID keeps its first occurrence, as in NewEditor.
func RenderNodes(nodes []Node, mode StandOffMode) Scene {
	unique := make([]Node, 0, len(nodes))
	index := make(map[string]int, len(nodes))
	for _, n := range nodes {
		if _, dup := index[n.ID]; dup {
			continue
		}
		index[n.ID] = len(unique)
		unique = append(unique, n)
	}
	return render(unique, index, Idle{}, mode)
}

func render(nodes []Node, index map[string]int, drag DragState, mode StandOffMode) Scene {
	dragged := ""
	if d, ok := drag.(Dragging); ok {
		dragged = d.NodeID
	}

	scene := Scene{
		Width:        MaxX + NodeWidth,
		Height:       MaxY + NodeHeight,
		Connections:  make([]ConnectionView, 0, len(nodes)),
		Nodes:        make([]NodeView, 0, len(nodes)),
		Legend:       Legend(),
		Instructions: Instructions,
		Dragging:     dragged,
	}

	for _, from := range nodes {
		style := StyleFor(from.Status)
		for _, toID := range from.Connections {
			ref := ConnectionRef{From: from.ID, To: toID}
			i, ok := index[toID]
			if !ok {
				scene.Skipped = append(scene.Skipped, ref)
				continue
			}
			line, arrow, theta := ConnectionGeometry(from.Anchor(), nodes[i].Anchor(), mode)
			scene.Connections = append(scene.Connections, ConnectionView{
				ConnectionRef: ref,
				Line:          line,
				Arrow:         arrow,
				Theta:         theta,
				Stroke:        style.Stroke,
				StrokeWidth:   2,
				Dash:          style.Dash,
			})
		}
	}

	for _, n := range nodes {
		style := StyleFor(n.Status)
		v := NodeView{
			ID:        n.ID,
			Name:      n.Name,
			Duration:  n.Duration,
			Status:    n.Status,
			X:         n.Position.X,
			Y:         n.Position.Y,
			Width:     NodeWidth,
			Height:    NodeHeight,
			Fill:      style.Fill,
			FillClass: style.FillClass,
			Z:         zResting,
			Scale:     scaleRest,
			Pulse:     style.Pulse,
		}
		if n.ID == dragged {
			v.Z = zDragged
			v.Scale = scaleDrag
			v.Dragging = true
		}
		scene.Nodes = append(scene.Nodes, v)
	}

	return scene
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
