package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rmax-ai/flowcanvas/pkg/canvas"
	"github.com/rmax-ai/flowcanvas/pkg/client"
)

// Server adapts flowcanvas-d to the Model Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	apiClient *client.Client
}

// NewServer creates a new MCP server instance.
func NewServer(apiURL string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"flowcanvas",
			"1.0.0",
		),
		apiClient: client.NewClient(apiURL),
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	// flowcanvas://scene
	s.mcpServer.AddResource(mcp.NewResource(
		"flowcanvas://scene",
		"Workflow Canvas Scene",
		mcp.WithResourceDescription("Rendered workflow canvas: connection lines, arrowheads and node boxes with status styling"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadScene)

	// flowcanvas://nodes
	s.mcpServer.AddResource(mcp.NewResource(
		"flowcanvas://nodes",
		"Workflow Nodes",
		mcp.WithResourceDescription("Workflow steps with status, duration, position and outgoing connections"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadNodes)
}

// --- Tools ---

func (s *Server) registerTools() {
	// move_node
	s.mcpServer.AddTool(mcp.NewTool(
		"move_node",
		mcp.WithDescription("Drag a workflow node so its top-left corner lands at (x, y). Positions are clamped to the 700x300 canvas."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("The node to move (e.g., 'datafetch')")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Target x in canvas pixels")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Target y in canvas pixels")),
	), s.handleMoveNode)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"flowcanvas-aware",
		mcp.WithPromptDescription("Provides context about the workflow canvas (nodes, connections, statuses)"),
	), s.handleGetPrompt)
}

// --- Handlers ---

func (s *Server) handleReadScene(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	scene, err := s.apiClient.GetScene(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scene: %w", err)
	}
	return jsonResource(request.Params.URI, scene)
}

func (s *Server) handleReadNodes(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	nodes, err := s.apiClient.GetNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nodes: %w", err)
	}
	return jsonResource(request.Params.URI, nodes)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleMoveNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID := mcp.ParseString(request, "node_id", "")
	x := mcp.ParseFloat64(request, "x", 0)
	y := mcp.ParseFloat64(request, "y", 0)

	if nodeID == "" {
		return mcp.NewToolResultError("node_id is required"), nil
	}

	node, err := s.apiClient.MoveNode(ctx, nodeID, canvas.Point{X: x, Y: y})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	resultMsg := fmt.Sprintf("Moved %s to (%g, %g)", node.ID, node.Position.X, node.Position.Y)
	if node.Position.X != x || node.Position.Y != y {
		resultMsg += " (clamped to canvas)"
	}
	return mcp.NewToolResultText(resultMsg), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "flowcanvas-aware" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are looking at a workflow canvas from a QA testing dashboard.

Concepts:
- Node: one workflow step with a status (completed, running, pending, failed) and a duration label ("-" when not measured).
- Connection: a directed edge from a node to one of its listed targets. The stroke color follows the source node's status; pending sources are dashed.
- Position: the node's top-left corner in canvas pixels. Nodes are 80x50 and their corner stays within 700x300.

Read 'flowcanvas://nodes' for the graph. Use 'move_node' to rearrange steps; layout is not saved.
`

	return mcp.NewGetPromptResult(
		"flowcanvas-aware",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}
