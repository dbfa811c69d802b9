package reports

import (
	"context"
	"encoding/csv"
	"testing"

	"github.com/rmax-ai/flowcanvas/pkg/canvas"
)

func readCSV(t *testing.T, gen Generator, params ReportParams) [][]string {
	t.Helper()
	r, err := gen.Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	return records
}

func TestLayoutReport(t *testing.T) {
	editor := canvas.NewEditor(canvas.InitialGraph())
	gen := NewLayoutReport(editor)

	records := readCSV(t, gen, ReportParams{})
	if len(records) != 8 {
		t.Fatalf("Expected header + 7 rows, got %d", len(records))
	}
	if records[0][0] != "id" || records[0][6] != "connections" {
		t.Errorf("Unexpected headers %v", records[0])
	}

	start := records[1]
	if start[0] != "start" || start[4] != "50" || start[5] != "100" || start[6] != "pageload;auth" {
		t.Errorf("Unexpected start row %v", start)
	}

	running := readCSV(t, gen, ReportParams{Filters: map[string]interface{}{"status": "running"}})
	if len(running) != 2 || running[1][0] != "datafetch" {
		t.Errorf("Expected only datafetch for status=running, got %v", running)
	}
}

func TestConnectionReport(t *testing.T) {
	nodes := canvas.InitialGraph()
	nodes[6].Connections = []string{"ghost"}
	editor := canvas.NewEditor(nodes)
	gen := NewConnectionReport(editor)

	records := readCSV(t, gen, ReportParams{})
	// header + 8 drawn + 1 skipped
	if len(records) != 10 {
		t.Fatalf("Expected 10 records, got %d", len(records))
	}

	first := records[1]
	if first[0] != "start-pageload" || first[3] != "#10b981" || first[4] != "false" || first[8] != "false" {
		t.Errorf("Unexpected first row %v", first)
	}
	if first[6] != "225" || first[7] != "75" {
		t.Errorf("Expected apex at (225,75), got (%s,%s)", first[6], first[7])
	}

	last := records[9]
	if last[0] != "end-ghost" || last[8] != "true" {
		t.Errorf("Expected skipped end-ghost row, got %v", last)
	}

	fromRender := readCSV(t, gen, ReportParams{Filters: map[string]interface{}{"from": "render"}})
	if len(fromRender) != 2 || fromRender[1][4] != "true" {
		t.Errorf("Expected one dashed row from render, got %v", fromRender)
	}
}

func TestNewReportGenerator(t *testing.T) {
	editor := canvas.NewEditor(canvas.InitialGraph())

	tests := []struct {
		reportType  ReportType
		expectError bool
	}{
		{ReportTypeLayout, false},
		{ReportTypeConnections, false},
		{ReportType("usage"), true},
	}

	for _, tt := range tests {
		t.Run(string(tt.reportType), func(t *testing.T) {
			gen, err := NewReportGenerator(tt.reportType, editor)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %s", tt.reportType)
				}
				return
			}
			if err != nil || gen == nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
