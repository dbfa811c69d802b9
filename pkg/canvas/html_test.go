package canvas

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteHTML_InitialGraph(t *testing.T) {
	e := NewEditor(InitialGraph())
	e.BeginDrag("validate", Point{X: 500, Y: 150})

	var buf bytes.Buffer
	if err := WriteHTML(&buf, e.Render()); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	out := buf.String()

	if got := strings.Count(out, `<g class="connection"`); got != 8 {
		t.Errorf("Expected 8 connection groups, got %d", got)
	}
	if got := strings.Count(out, `<polygon `); got != 8 {
		t.Errorf("Expected 8 arrowheads, got %d", got)
	}
	if got := strings.Count(out, `data-node-id=`); got != 7 {
		t.Errorf("Expected 7 nodes, got %d", got)
	}
	if got := strings.Count(out, `<div class="pulse">`); got != 1 {
		t.Errorf("Expected exactly 1 pulse badge, got %d", got)
	}
	if got := strings.Count(out, `class="node dragging"`); got != 1 {
		t.Errorf("Expected exactly 1 dragged node, got %d", got)
	}
	if !strings.Contains(out, `stroke-dasharray="5,5"`) {
		t.Errorf("Expected dashed strokes for pending sources")
	}
	if !strings.Contains(out, `x2="675" y2="125"`) {
		t.Errorf("Expected render-end line to stop 15px short of end")
	}
	if !strings.Contains(out, "Drag nodes to reposition") {
		t.Errorf("Expected instructions overlay")
	}
}

func TestWriteHTML_EscapesNames(t *testing.T) {
	scene := RenderNodes([]Node{{ID: "x", Name: "<script>alert(1)</script>", Status: StatusFailed}}, StandOffHorizontal)

	var buf bytes.Buffer
	if err := WriteHTML(&buf, scene); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Errorf("Expected node name to be escaped")
	}
}
