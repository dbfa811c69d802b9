package canvas

import (
	"reflect"
	"testing"
)

func TestRender_InitialGraph(t *testing.T) {
	scene := NewEditor(InitialGraph()).Render()

	// Seven nodes; start and datafetch fan out, end has fan-in.
	if len(scene.Connections) != 8 {
		t.Errorf("Expected 8 connections, got %d", len(scene.Connections))
	}
	if len(scene.Nodes) != 7 {
		t.Errorf("Expected 7 nodes, got %d", len(scene.Nodes))
	}
	if len(scene.Skipped) != 0 {
		t.Errorf("Expected no skipped connections, got %v", scene.Skipped)
	}

	keys := make([]string, 0, len(scene.Connections))
	for _, c := range scene.Connections {
		keys = append(keys, c.Key())
	}
	want := []string{
		"start-pageload", "start-auth", "pageload-datafetch", "auth-datafetch",
		"datafetch-render", "datafetch-validate", "render-end", "validate-end",
	}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Expected connections %v, got %v", want, keys)
	}
}

func TestRender_ConnectionStyleFollowsSource(t *testing.T) {
	scene := NewEditor(InitialGraph()).Render()

	byKey := map[string]ConnectionView{}
	for _, c := range scene.Connections {
		byKey[c.Key()] = c
	}

	tests := []struct {
		key    string
		stroke string
		dash   string
	}{
		{"start-pageload", "#10b981", ""},
		{"datafetch-render", "#f59e0b", ""},
		{"render-end", "#6b7280", "5,5"},
	}
	for _, tt := range tests {
		c, ok := byKey[tt.key]
		if !ok {
			t.Errorf("Missing connection %s", tt.key)
			continue
		}
		if c.Stroke != tt.stroke || c.Dash != tt.dash || c.StrokeWidth != 2 {
			t.Errorf("Connection %s: got stroke %s dash %q width %v", tt.key, c.Stroke, c.Dash, c.StrokeWidth)
		}
	}
}

func TestRender_FailedSourceIsRedAndSolid(t *testing.T) {
	scene := RenderNodes([]Node{
		{ID: "a", Status: StatusFailed, Position: Point{X: 0, Y: 0}, Connections: []string{"b"}},
		{ID: "b", Status: StatusPending, Position: Point{X: 200, Y: 0}},
	}, StandOffHorizontal)

	if len(scene.Connections) != 1 {
		t.Fatalf("Expected 1 connection, got %d", len(scene.Connections))
	}
	c := scene.Connections[0]
	if c.Stroke != "#ef4444" || c.Dash != "" {
		t.Errorf("Expected solid red stroke, got %s %q", c.Stroke, c.Dash)
	}
	if c.Line.From != (Point{X: 40, Y: 25}) || c.Line.To != (Point{X: 225, Y: 25}) {
		t.Errorf("Unexpected line %+v", c.Line)
	}
}

func TestRender_DanglingConnectionSkipped(t *testing.T) {
	nodes := InitialGraph()
	nodes[0].Connections = append(nodes[0].Connections, "nowhere")

	scene := NewEditor(nodes).Render()
	if len(scene.Connections) != 8 {
		t.Errorf("Expected the 8 valid connections, got %d", len(scene.Connections))
	}
	want := []ConnectionRef{{From: "start", To: "nowhere"}}
	if !reflect.DeepEqual(scene.Skipped, want) {
		t.Errorf("Expected skipped %v, got %v", want, scene.Skipped)
	}
	if len(scene.Nodes) != 7 {
		t.Errorf("Expected 7 nodes, got %d", len(scene.Nodes))
	}
}

func TestRender_DraggedNodeOnTop(t *testing.T) {
	e := NewEditor(InitialGraph())
	e.BeginDrag("auth", Point{X: 200, Y: 150})
	scene := e.Render()

	if scene.Dragging != "auth" {
		t.Errorf("Expected scene to report auth dragging, got %q", scene.Dragging)
	}
	for _, n := range scene.Nodes {
		if n.ID == "auth" {
			if n.Z != zDragged || n.Scale != scaleDrag || !n.Dragging {
				t.Errorf("Expected dragged styling on auth, got %+v", n)
			}
			continue
		}
		if n.Z >= zDragged || n.Scale != scaleRest || n.Dragging {
			t.Errorf("Expected resting styling on %s, got %+v", n.ID, n)
		}
	}

	e.EndDrag()
	for _, n := range e.Render().Nodes {
		if n.Dragging {
			t.Errorf("Expected no dragged node after EndDrag, got %s", n.ID)
		}
	}
}

func TestRender_PulseOnlyOnRunning(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusRunning, StatusPending, StatusFailed} {
		for _, dragged := range []bool{false, true} {
			e := NewEditor([]Node{{ID: "n", Status: s}})
			if dragged {
				e.BeginDrag("n", Point{})
			}
			v := e.Render().Nodes[0]
			if v.Pulse != (s == StatusRunning) {
				t.Errorf("Status %s dragged=%v: pulse=%v", s, dragged, v.Pulse)
			}
		}
	}
}

func TestRender_IsPure(t *testing.T) {
	e := NewEditor(InitialGraph())
	e.BeginDrag("datafetch", Point{X: 350, Y: 100})
	before := e.Nodes()
	state := e.State()

	first := e.Render()
	second := e.Render()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical renders of the same state")
	}
	if !reflect.DeepEqual(before, e.Nodes()) || state != e.State() {
		t.Errorf("Expected Render to leave state untouched")
	}
}

func TestStyleFor_UnknownFallsBackToPending(t *testing.T) {
	if got := StyleFor(Status("mystery")); got != StyleFor(StatusPending) {
		t.Errorf("Expected pending style for unknown status, got %+v", got)
	}
}

func TestRenderNodes_DuplicateIDKeepsFirst(t *testing.T) {
	nodes := []Node{
		{ID: "a", Name: "First", Status: StatusCompleted, Position: Point{X: 0, Y: 0}, Connections: []string{"b"}},
		{ID: "b", Name: "B", Status: StatusPending, Position: Point{X: 200, Y: 0}},
		{ID: "a", Name: "Second", Status: StatusFailed, Position: Point{X: 400, Y: 200}, Connections: []string{"b"}},
	}

	scene := RenderNodes(nodes, StandOffHorizontal)

	if len(scene.Nodes) != 2 {
		t.Fatalf("expected 2 node views, got %d", len(scene.Nodes))
	}
	if scene.Nodes[0].ID != "a" || scene.Nodes[0].Name != "First" {
		t.Errorf("expected first occurrence of a, got %+v", scene.Nodes[0])
	}
	if len(scene.Connections) != 1 {
		t.Errorf("expected only the first a's connection, got %d", len(scene.Connections))
	}
}
