package canvas

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// seedFile is the on-disk shape of a seed graph.
type seedFile struct {
	Nodes []seedNode `json:"nodes"`
}

type seedNode struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Status      Status   `json:"status"`
	Duration    string   `json:"duration"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Connections []string `json:"connections"`
}

// LoadGraph reads a seed graph from a JSON file.
func LoadGraph(path string) ([]Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed graph: %w", err)
	}
	defer f.Close()

	nodes, err := DecodeGraph(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed graph %s: %w", path, err)
	}
	return nodes, nil
}

// DecodeGraph parses and validates a seed graph. Positions outside the canvas
// are clamped. Connections to unknown nodes are kept; rendering skips them.
func DecodeGraph(r io.Reader) ([]Node, error) {
	var sf seedFile
	if err := json.NewDecoder(r).Decode(&sf); err != nil {
		return nil, fmt.Errorf("failed to decode seed graph: %w", err)
	}
	if len(sf.Nodes) == 0 {
		return nil, invalidf("no nodes")
	}

	seen := make(map[string]bool, len(sf.Nodes))
	nodes := make([]Node, 0, len(sf.Nodes))
	for i, sn := range sf.Nodes {
		id := strings.TrimSpace(sn.ID)
		if id == "" {
			return nil, invalidf("node %d has an empty id", i)
		}
		if seen[id] {
			return nil, invalidf("duplicate node id %q", id)
		}
		seen[id] = true

		if !sn.Status.Valid() {
			return nil, invalidf("node %q has unknown status %q", id, sn.Status)
		}

		duration := sn.Duration
		if duration == "" {
			duration = "-"
		}
		name := sn.Name
		if name == "" {
			name = id
		}
		conns := sn.Connections
		if conns == nil {
			conns = []string{}
		}

		nodes = append(nodes, Node{
			ID:          id,
			Name:        name,
			Status:      sn.Status,
			Duration:    duration,
			Position:    Clamp(Point{X: sn.X, Y: sn.Y}),
			Connections: conns,
		})
	}
	return nodes, nil
}
