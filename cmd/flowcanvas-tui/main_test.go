package main

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rmax-ai/flowcanvas/pkg/canvas"
)

func newTestModel() model {
	return initialModel(canvas.NewEditor(canvas.InitialGraph()))
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
}

func release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone}
}

func TestModel_MouseDragMovesNode(t *testing.T) {
	m := newTestModel()

	// datafetch sits at (350,100): cell (35,5), screen row 7.
	var tm tea.Model = m
	tm, _ = tm.Update(press(36, 7))
	if _, ok := m.editor.State().(canvas.Dragging); !ok {
		t.Fatalf("expected dragging after press, got %s", canvas.StateName(m.editor.State()))
	}

	tm, _ = tm.Update(motion(46, 9))
	n, _ := m.editor.Node("datafetch")
	if n.Position != (canvas.Point{X: 450, Y: 140}) {
		t.Errorf("expected datafetch at (450,140) keeping the grab offset, got %+v", n.Position)
	}

	tm, _ = tm.Update(release(46, 9))
	if _, ok := m.editor.State().(canvas.Idle); !ok {
		t.Errorf("expected idle after release")
	}

	got := tm.(model)
	if len(got.log) != 2 {
		t.Fatalf("expected grab and drop log entries, got %d", len(got.log))
	}
	if !strings.Contains(got.log[1], "drop datafetch at (450, 140)") {
		t.Errorf("unexpected drop entry %q", got.log[1])
	}
}

func TestModel_PressOnEmptyCellStaysIdle(t *testing.T) {
	m := newTestModel()
	before := m.editor.Nodes()

	var tm tea.Model = m
	tm, _ = tm.Update(press(0, 2))
	tm.Update(motion(20, 10))

	if _, ok := m.editor.State().(canvas.Idle); !ok {
		t.Fatalf("expected idle")
	}
	after := m.editor.Nodes()
	for i := range before {
		if before[i].Position != after[i].Position {
			t.Errorf("node %s moved without a grab", before[i].ID)
		}
	}
}

func TestModel_LeavingCanvasEndsDrag(t *testing.T) {
	m := newTestModel()

	var tm tea.Model = m
	tm, _ = tm.Update(press(36, 7))
	tm, _ = tm.Update(motion(36, 0))

	if _, ok := m.editor.State().(canvas.Idle); !ok {
		t.Errorf("expected drag to end when the pointer leaves the canvas")
	}
	if n, _ := m.editor.Node("datafetch"); n.Position != (canvas.Point{X: 350, Y: 100}) {
		t.Errorf("expected datafetch unmoved, got %+v", n.Position)
	}
	if got := tm.(model); len(got.log) != 2 || !strings.Contains(got.log[1], "left canvas") {
		t.Errorf("expected leave entry in log, got %v", got.log)
	}
}

func TestModel_DragClampsToCanvas(t *testing.T) {
	m := newTestModel()

	var tm tea.Model = m
	tm, _ = tm.Update(press(36, 7))
	tm.Update(motion(gridCols-1, screen.Top+gridRows-1))

	n, _ := m.editor.Node("datafetch")
	if n.Position.X > canvas.MaxX || n.Position.Y > canvas.MaxY {
		t.Errorf("position escaped canvas: %+v", n.Position)
	}
}

func TestModel_ResetKey(t *testing.T) {
	m := newTestModel()

	var tm tea.Model = m
	tm, _ = tm.Update(press(36, 7))
	tm, _ = tm.Update(motion(46, 9))
	tm, _ = tm.Update(release(46, 9))
	tm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})

	if n, _ := m.editor.Node("datafetch"); n.Position != (canvas.Point{X: 350, Y: 100}) {
		t.Errorf("expected reset to restore datafetch, got %+v", n.Position)
	}
}

func TestGrid_HitTestPrefersTopmost(t *testing.T) {
	nodes := []canvas.NodeView{
		{ID: "below", X: 100, Y: 100},
		{ID: "above", X: 120, Y: 100},
	}
	g := grid{}

	if id, ok := g.HitTest(nodes, 13, 5); !ok || id != "above" {
		t.Errorf("expected above, got %q %v", id, ok)
	}
	if id, ok := g.HitTest(nodes, 10, 5); !ok || id != "below" {
		t.Errorf("expected below, got %q %v", id, ok)
	}
	if _, ok := g.HitTest(nodes, 10, 8); ok {
		t.Errorf("expected miss below the boxes")
	}
}

func TestArrowGlyph(t *testing.T) {
	tests := []struct {
		theta float64
		want  rune
	}{
		{0, '→'},
		{math.Pi / 2, '↓'},
		{math.Pi, '←'},
		{-math.Pi / 2, '↑'},
		{math.Pi / 4, '↘'},
		{-math.Pi / 4, '↗'},
		{0.1, '→'},
	}

	for _, tt := range tests {
		if got := arrowGlyph(tt.theta); got != tt.want {
			t.Errorf("arrowGlyph(%v) = %q, want %q", tt.theta, got, tt.want)
		}
	}
}

func TestDrawScene_PlacesNodesAndArrows(t *testing.T) {
	scene := canvas.NewEditor(canvas.InitialGraph()).Render()
	ra := drawScene(scene, false)

	if len(ra) != gridRows || len(ra[0]) != gridCols {
		t.Fatalf("unexpected raster size %dx%d", len(ra[0]), len(ra))
	}

	// start at (50,100): box corner at cell (5,5).
	if ra[5][5].r != '┌' {
		t.Errorf("expected box corner at (5,5), got %q", ra[5][5].r)
	}
	if got := string([]rune{ra[6][6].r, ra[6][7].r, ra[6][8].r}); got != "Sta" {
		t.Errorf("expected start label, got %q", got)
	}

	arrows := 0
	for _, row := range ra {
		for _, c := range row {
			if strings.ContainsRune("→↘↓↙←↖↑↗", c.r) {
				arrows++
			}
		}
	}
	if arrows == 0 {
		t.Errorf("expected arrow glyphs in raster")
	}
}

func TestDrawScene_DraggedNodeOnTop(t *testing.T) {
	editor := canvas.NewEditor(canvas.InitialGraph())
	editor.BeginDrag("start", canvas.Point{X: 50, Y: 100})
	editor.UpdateDrag(canvas.Point{X: 200, Y: 50})
	scene := editor.Render()

	// start now shares pageload's box at cell (20,2); pageload comes later in
	// the collection but must be painted underneath.
	ra := drawScene(scene, false)
	if got := string([]rune{ra[3][21].r, ra[3][22].r, ra[3][23].r}); got != "Sta" {
		t.Errorf("expected dragged start label on top, got %q", got)
	}
	if !ra[3][21].bold {
		t.Errorf("expected dragged node to be drawn bold")
	}

	if id, ok := (grid{}).HitTest(scene.Nodes, 22, 3); !ok || id != "start" {
		t.Errorf("expected press on the overlap to hit start, got %q %v", id, ok)
	}

	editor.EndDrag()
	if id, _ := (grid{}).HitTest(editor.Render().Nodes, 22, 3); id != "pageload" {
		t.Errorf("expected pageload on top once released, got %q", id)
	}
}
