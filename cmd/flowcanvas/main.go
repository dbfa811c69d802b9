package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rmax-ai/flowcanvas/pkg/canvas"
	"github.com/rmax-ai/flowcanvas/pkg/client"
)

var (
	Version   = "v1.0.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const usage = `Usage:
  flowcanvas nodes
  flowcanvas scene
  flowcanvas move <node_id> <x> <y>
  flowcanvas report <layout|connections>
  flowcanvas reset
  flowcanvas version`

func main() {
	api := client.NewClient(os.Getenv("FLOWCANVAS_API"))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := run(ctx, api, os.Args[1:], os.Stdout); err != nil {
		fmt.Printf("Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(out, "flowcanvas %s (commit %s, built %s)\n", Version, Commit, BuildTime)
		return nil

	case "nodes":
		nodes, err := api.GetNodes(ctx)
		if err != nil {
			return daemonError(err)
		}
		for _, n := range nodes {
			fmt.Fprintf(out, "%-12s %-10s %-6s (%g, %g)\n", n.ID, n.Status, n.Duration, n.Position.X, n.Position.Y)
		}
		return nil

	case "scene":
		scene, err := api.GetScene(ctx)
		if err != nil {
			return daemonError(err)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(scene)

	case "move":
		if len(args) != 4 {
			return fmt.Errorf("move takes <node_id> <x> <y>\n%s", usage)
		}
		x, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid x: %w", err)
		}
		y, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("invalid y: %w", err)
		}
		n, err := api.MoveNode(ctx, args[1], canvas.Point{X: x, Y: y})
		if err != nil {
			return daemonError(err)
		}
		fmt.Fprintf(out, "Moved %s to (%g, %g)\n", n.ID, n.Position.X, n.Position.Y)
		return nil

	case "report":
		if len(args) != 2 {
			return fmt.Errorf("report takes <layout|connections>\n%s", usage)
		}
		body, err := api.GetReport(ctx, args[1])
		if err != nil {
			return daemonError(err)
		}
		_, err = out.Write(body)
		return err

	case "reset":
		if _, err := api.Reset(ctx); err != nil {
			return daemonError(err)
		}
		fmt.Fprintln(out, "Layout reset")
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func daemonError(err error) error {
	return fmt.Errorf("%w (is flowcanvas-d running?)", err)
}
