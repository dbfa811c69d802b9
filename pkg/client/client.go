package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rmax-ai/flowcanvas/pkg/canvas"
)

const defaultEndpoint = "http://127.0.0.1:8095"

// readAttempts bounds retries of idempotent reads.
const readAttempts = 3

// Client talks to a flowcanvas daemon.
type Client struct {
	endpoint string
	http     *http.Client
	backoff  BackoffStrategy
}

// NewClient creates a new flowcanvas client.
// endpoint defaults to "http://127.0.0.1:8095" if empty.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		backoff: DefaultBackoff(),
	}
}

// SetBackoff replaces the retry strategy for reads.
func (c *Client) SetBackoff(b BackoffStrategy) {
	c.backoff = b
}

// Ping checks the health of the daemon.
func (c *Client) Ping(ctx context.Context) (Status, error) {
	var status Status
	err := c.get(ctx, "/v1/health", &status)
	return status, err
}

// GetScene fetches the rendered scene.
func (c *Client) GetScene(ctx context.Context) (canvas.Scene, error) {
	var scene canvas.Scene
	err := c.get(ctx, "/v1/scene", &scene)
	return scene, err
}

// GetNodes fetches the node collection.
func (c *Client) GetNodes(ctx context.Context) ([]canvas.Node, error) {
	var nodes []canvas.Node
	err := c.get(ctx, "/v1/nodes", &nodes)
	return nodes, err
}

// GetViewport fetches the canvas origin the daemon measures pointers against.
func (c *Client) GetViewport(ctx context.Context) (canvas.Viewport, error) {
	var res viewportResult
	err := c.get(ctx, "/v1/viewport", &res)
	return res.Viewport, err
}

// GetReport fetches a CSV report ("layout" or "connections").
func (c *Client) GetReport(ctx context.Context, reportType string) ([]byte, error) {
	var body []byte
	err := retry(ctx, c.backoff, readAttempts, func() (bool, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"/v1/reports?type="+url.QueryEscape(reportType), nil)
		if err != nil {
			return false, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return true, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return true, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}
		if resp.StatusCode != 200 {
			return false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		return false, err
	})
	return body, err
}

// BeginDrag grabs a node at a pointer position.
func (c *Client) BeginDrag(ctx context.Context, p Pointer) (DragResult, error) {
	if p.NodeID == "" {
		return DragResult{}, fmt.Errorf("invalid pointer: missing node_id")
	}
	var res DragResult
	err := c.post(ctx, "/v1/drag/begin", p, &res)
	return res, err
}

// MoveDrag moves the grabbed node.
func (c *Client) MoveDrag(ctx context.Context, p Pointer) (DragResult, error) {
	var res DragResult
	err := c.post(ctx, "/v1/drag/move", p, &res)
	return res, err
}

// EndDrag releases the grabbed node.
func (c *Client) EndDrag(ctx context.Context) (DragResult, error) {
	var res DragResult
	err := c.post(ctx, "/v1/drag/end", nil, &res)
	return res, err
}

// Reset restores the seed layout and releases any drag.
func (c *Client) Reset(ctx context.Context) (DragResult, error) {
	var res DragResult
	err := c.post(ctx, "/v1/reset", nil, &res)
	return res, err
}

// MoveNode drags nodeID so its origin lands at target (canvas-local), as a
// pointer would: grab at the node's own origin, move, release. The daemon
// clamps the result. The returned node is the final state.
func (c *Client) MoveNode(ctx context.Context, nodeID string, target canvas.Point) (canvas.Node, error) {
	vp, err := c.GetViewport(ctx)
	if err != nil {
		return canvas.Node{}, fmt.Errorf("failed to fetch viewport: %w", err)
	}
	if !vp.Attached {
		return canvas.Node{}, fmt.Errorf("canvas viewport is not attached")
	}

	nodes, err := c.GetNodes(ctx)
	if err != nil {
		return canvas.Node{}, fmt.Errorf("failed to fetch nodes: %w", err)
	}
	var current *canvas.Node
	for i := range nodes {
		if nodes[i].ID == nodeID {
			current = &nodes[i]
			break
		}
	}
	if current == nil {
		return canvas.Node{}, fmt.Errorf("unknown node: %s", nodeID)
	}

	grab := vp.Origin.Add(current.Position)
	begin, err := c.BeginDrag(ctx, Pointer{NodeID: nodeID, X: grab.X, Y: grab.Y})
	if err != nil {
		return canvas.Node{}, err
	}
	if begin.State != "dragging" {
		return canvas.Node{}, fmt.Errorf("grab of %s was not accepted", nodeID)
	}

	drop := vp.Origin.Add(target)
	moved, moveErr := c.MoveDrag(ctx, Pointer{X: drop.X, Y: drop.Y})
	// Always release, even when the move failed or ctx is done.
	if _, err := c.EndDrag(context.WithoutCancel(ctx)); err != nil && moveErr == nil {
		moveErr = err
	}
	if moveErr != nil {
		return canvas.Node{}, moveErr
	}
	if moved.Node == nil {
		return canvas.Node{}, fmt.Errorf("move of %s was ignored", nodeID)
	}
	return *moved.Node, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return retry(ctx, c.backoff, readAttempts, func() (bool, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+path, nil)
		if err != nil {
			return false, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return true, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return true, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}
		if resp.StatusCode != 200 {
			return false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return false, nil
	})
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
