package simulation

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rmax-ai/flowcanvas/pkg/api"
	"github.com/rmax-ai/flowcanvas/pkg/canvas"
)

func newDaemon(t *testing.T) (*httptest.Server, *canvas.Editor) {
	t.Helper()
	editor := canvas.NewEditor(canvas.InitialGraph())
	ts := httptest.NewServer(api.NewServer(editor, "").Handler())
	t.Cleanup(ts.Close)
	return ts, editor
}

func TestRunScenario_SinglePointerStaysInBounds(t *testing.T) {
	ts, editor := newDaemon(t)

	res := RunScenario(Scenario{
		Name:     "single",
		Duration: 300 * time.Millisecond,
		Seed:     42,
		Pointers: []PointerConfig{
			{Name: "mouse", Count: 1, Overshoot: 200, Behavior: BehaviorPeriodic, Rate: 50},
		},
		Invariants: []Invariant{
			{Metric: "out_of_bounds", Condition: "==", Value: 0},
			{Metric: "error_rate", Condition: "==", Value: 0},
			{Metric: "gestures", Condition: ">", Value: 0, Scope: "mouse"},
		},
	}, ts.URL)

	if !res.Success {
		t.Fatalf("expected success, got invariants %+v", res.Invariants)
	}
	if res.TotalGestures == 0 {
		t.Fatalf("expected gestures to run")
	}
	if res.TotalClamped == 0 {
		t.Errorf("expected some drops outside the canvas to be clamped")
	}
	for _, n := range editor.Nodes() {
		if n.Position != canvas.Clamp(n.Position) {
			t.Errorf("node %s out of bounds: %+v", n.ID, n.Position)
		}
	}
}

func TestRunScenario_ConcurrentPointers(t *testing.T) {
	ts, _ := newDaemon(t)

	res := RunScenario(Scenario{
		Name:     "contention",
		Duration: 300 * time.Millisecond,
		Seed:     7,
		Reset:    true,
		Pointers: []PointerConfig{
			{Name: "left", Count: 2, Nodes: []string{"start", "auth"}, Overshoot: 100, Behavior: BehaviorGreedy},
			{Name: "right", Count: 2, Nodes: []string{"end"}, Behavior: BehaviorGreedy},
		},
		Invariants: []Invariant{
			{Metric: "out_of_bounds", Condition: "==", Value: 0},
		},
	}, ts.URL)

	if !res.Success {
		t.Fatalf("expected layout to stay in bounds, got %+v", res.Invariants)
	}
	if res.PointerStats["left"].Gestures == 0 {
		t.Errorf("expected greedy pointers to run gestures")
	}

	// right never overshoots, so its drops can only be exact or land on a
	// node grabbed by another pointer.
	right := res.PointerStats["right"]
	if right.Clamped != 0 {
		t.Errorf("expected no clamped drops without overshoot, got %d (contended %d)", right.Clamped, right.Contended)
	}
	if sum := res.TotalClamped + res.TotalContended + res.TotalErrors; sum > res.TotalGestures {
		t.Errorf("outcomes %d exceed gestures %d", sum, res.TotalGestures)
	}
}

func TestClassify(t *testing.T) {
	target := canvas.Point{X: 100, Y: 100}

	tests := []struct {
		name  string
		moved canvas.Node
		want  gestureOutcome
	}{
		{"exact drop", canvas.Node{ID: "auth", Position: target}, outcomeExact},
		{"clamped drop", canvas.Node{ID: "auth", Position: canvas.Point{X: 100, Y: 0}}, outcomeClamped},
		{"other pointer's node", canvas.Node{ID: "end", Position: canvas.Point{X: 700, Y: 0}}, outcomeContended},
		{"other node at target", canvas.Node{ID: "end", Position: target}, outcomeContended},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify("auth", target, tt.moved); got != tt.want {
				t.Errorf("classify = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunScenario_UnknownScopeFails(t *testing.T) {
	ts, _ := newDaemon(t)

	res := RunScenario(Scenario{
		Name:       "scope",
		Duration:   50 * time.Millisecond,
		Invariants: []Invariant{{Metric: "gestures", Condition: ">", Value: 0, Scope: "ghost"}},
	}, ts.URL)

	if res.Success {
		t.Errorf("expected failure for unknown invariant scope")
	}
	if len(res.Invariants) != 1 || res.Invariants[0].Actual != "N/A" {
		t.Errorf("unexpected invariants %+v", res.Invariants)
	}
}

func TestRunScenario_DaemonDown(t *testing.T) {
	ts, _ := newDaemon(t)
	url := ts.URL
	ts.Close()

	res := RunScenario(Scenario{
		Name:       "down",
		Duration:   50 * time.Millisecond,
		Invariants: []Invariant{{Metric: "error_rate", Condition: "==", Value: 0}},
	}, url)

	if res.TotalErrors == 0 {
		t.Errorf("expected an error when the daemon is unreachable")
	}
}
