package reports

import (
	"context"
	"io"

	"github.com/rmax-ai/flowcanvas/pkg/canvas"
)

type ReportType string

const (
	ReportTypeLayout      ReportType = "layout"
	ReportTypeConnections ReportType = "connections"
)

type ReportParams struct {
	Filters map[string]interface{}
}

// ReportSource defines the canvas data reports read.
type ReportSource interface {
	Nodes() []canvas.Node
	Render() canvas.Scene
}

type Generator interface {
	Generate(ctx context.Context, params ReportParams) (io.Reader, error)
}
