package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rmax-ai/flowcanvas/pkg/canvas"
)

// LayoutReport generates CSV rows of node positions.
type LayoutReport struct {
	src ReportSource
}

// NewLayoutReport creates a new LayoutReport generator.
func NewLayoutReport(src ReportSource) *LayoutReport {
	return &LayoutReport{src: src}
}

// Generate writes one row per node, in collection order. A "status" filter
// keeps only nodes with that status.
func (r *LayoutReport) Generate(ctx context.Context, params ReportParams) (io.Reader, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	headers := []string{"id", "name", "status", "duration", "x", "y", "connections"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	status, _ := params.Filters["status"].(string)

	for _, n := range r.src.Nodes() {
		if status != "" && string(n.Status) != status {
			continue
		}
		row := []string{
			n.ID,
			n.Name,
			string(n.Status),
			n.Duration,
			formatFloat(n.Position.X),
			formatFloat(n.Position.Y),
			strings.Join(n.Connections, ";"),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv writer: %w", err)
	}
	return buf, nil
}

// ConnectionReport generates CSV rows of rendered connections.
type ConnectionReport struct {
	src ReportSource
}

// NewConnectionReport creates a new ConnectionReport generator.
func NewConnectionReport(src ReportSource) *ConnectionReport {
	return &ConnectionReport{src: src}
}

// Generate writes one row per drawn connection followed by one row per
// skipped (dangling) connection. A "from" filter keeps one source node.
func (r *ConnectionReport) Generate(ctx context.Context, params ReportParams) (io.Reader, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	headers := []string{"key", "from", "to", "stroke", "dashed", "theta", "apex_x", "apex_y", "skipped"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	from, _ := params.Filters["from"].(string)
	scene := r.src.Render()

	for _, c := range scene.Connections {
		if from != "" && c.From != from {
			continue
		}
		row := []string{
			c.Key(),
			c.From,
			c.To,
			c.Stroke,
			strconv.FormatBool(c.Dash != ""),
			formatFloat(c.Theta),
			formatFloat(c.Arrow.Apex.X),
			formatFloat(c.Arrow.Apex.Y),
			"false",
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	for _, ref := range scene.Skipped {
		if from != "" && ref.From != from {
			continue
		}
		row := []string{ref.Key(), ref.From, ref.To, "", "", "", "", "", "true"}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv writer: %w", err)
	}
	return buf, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var _ ReportSource = (*canvas.Editor)(nil)
