package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rmax-ai/flowcanvas/pkg/canvas"
	"github.com/rmax-ai/flowcanvas/pkg/reports"
)

// Context keys
type contextKey string

const traceIDKey contextKey = "trace_id"

// tracerName is the instrumentation scope for request spans.
const tracerName = "flowcanvas"

// EditorInterface is the subset of canvas.Editor the API drives.
type EditorInterface interface {
	BeginDrag(nodeID string, pointer canvas.Point) bool
	UpdateDrag(pointer canvas.Point) (canvas.Node, bool)
	EndDrag() bool
	AttachViewport(origin canvas.Point)
	Viewport() canvas.Viewport
	Nodes() []canvas.Node
	Reset()
	Render() canvas.Scene
}

// Server encapsulates the HTTP API server
type Server struct {
	editor   EditorInterface
	server   *http.Server
	staticFS fs.FS
	tracer   trace.Tracer

	// TLS Config
	tlsCertFile string
	tlsKeyFile  string
}

// NewServer creates a new API server instance
func NewServer(editor EditorInterface, addr string) *Server {
	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("/v1/health", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	s := &Server{
		editor: editor,
		tracer: otel.Tracer(tracerName),
	}

	mux.HandleFunc("/v1/scene", s.handleScene)
	mux.HandleFunc("/v1/nodes", s.handleNodes)
	mux.HandleFunc("/v1/canvas", s.handleCanvas)
	mux.HandleFunc("/v1/viewport", s.handleViewport)
	mux.HandleFunc("/v1/drag/begin", s.handleDragBegin)
	mux.HandleFunc("/v1/drag/move", s.handleDragMove)
	mux.HandleFunc("/v1/drag/end", s.handleDragEnd)
	mux.HandleFunc("/v1/reset", s.handleReset)
	mux.HandleFunc("/v1/reports", s.handleReports)

	// Static file handler (catch-all for the canvas page)
	mux.Handle("/", s.handleStatic())

	// Middleware: Logging, Panic Recovery, Security Headers, HTTP spans
	handler := withLogging(withRecovery(withSecureHeaders(otelhttp.NewHandler(mux, "flowcanvas-d"))))

	// Use default port if addr is empty
	if addr == "" {
		addr = ":8095"
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// SetStaticFS sets the filesystem for serving static web assets
func (s *Server) SetStaticFS(fs fs.FS) {
	s.staticFS = fs
}

// SetTLS configures the server to use TLS
func (s *Server) SetTLS(certFile, keyFile string) {
	s.tlsCertFile = certFile
	s.tlsKeyFile = keyFile
}

// Start runs the HTTP server (blocking)
func (s *Server) Start() error {
	if s.tlsCertFile != "" && s.tlsKeyFile != "" {
		fmt.Printf(`{"level":"info","msg":"server_starting_tls","addr":"%s"}`+"\n", s.server.Addr)
		if err := s.server.ListenAndServeTLS(s.tlsCertFile, s.tlsKeyFile); err != http.ErrServerClosed {
			return err
		}
	} else {
		fmt.Printf(`{"level":"info","msg":"server_starting","addr":"%s"}`+"\n", s.server.Addr)
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println(`{"level":"info","msg":"server_stopping"}`)
	return s.server.Shutdown(ctx)
}

// handleScene returns the rendered scene as JSON.
func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	scene := s.render()
	writeJSON(w, r, http.StatusOK, scene)
}

// handleNodes returns the node collection.
func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, r, http.StatusOK, s.editor.Nodes())
}

// handleCanvas returns the scene as a server-rendered HTML fragment.
func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	scene := s.render()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := canvas.WriteHTML(w, scene); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_render_canvas","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
	}
}

// handleViewport reports (GET) or attaches (POST) the canvas origin in
// pointer coordinates.
func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, r, http.StatusOK, ViewportResponse{Viewport: s.editor.Viewport()})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json_body"}`, http.StatusBadRequest)
		return
	}

	_, span := s.tracer.Start(r.Context(), "flowcanvas.viewport")
	defer span.End()
	span.SetAttributes(attribute.Float64("flowcanvas.origin_x", req.X), attribute.Float64("flowcanvas.origin_y", req.Y))

	s.editor.AttachViewport(canvas.Point{X: req.X, Y: req.Y})
	writeJSON(w, r, http.StatusOK, ViewportResponse{Viewport: s.editor.Viewport()})
}

// handleDragBegin grabs a node. Unknown nodes leave the editor idle.
func (s *Server) handleDragBegin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json_body"}`, http.StatusBadRequest)
		return
	}
	if req.NodeID == "" {
		http.Error(w, `{"error":"missing_required_fields"}`, http.StatusBadRequest)
		return
	}

	_, span := s.tracer.Start(r.Context(), "flowcanvas.drag.begin")
	defer span.End()

	ok := s.editor.BeginDrag(req.NodeID, canvas.Point{X: req.X, Y: req.Y})
	span.SetAttributes(
		attribute.String("flowcanvas.node_id", req.NodeID),
		attribute.Bool("flowcanvas.accepted", ok),
	)

	resp := DragResponse{State: "idle"}
	if ok {
		resp.State = "dragging"
		resp.NodeID = req.NodeID
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// handleDragMove moves the grabbed node, if any.
func (s *Server) handleDragMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json_body"}`, http.StatusBadRequest)
		return
	}

	_, span := s.tracer.Start(r.Context(), "flowcanvas.drag.move")
	defer span.End()

	node, ok := s.editor.UpdateDrag(canvas.Point{X: req.X, Y: req.Y})
	span.SetAttributes(attribute.Bool("flowcanvas.accepted", ok))
	if !ok {
		writeJSON(w, r, http.StatusOK, DragResponse{State: "idle"})
		return
	}

	span.SetAttributes(
		attribute.String("flowcanvas.node_id", node.ID),
		attribute.Float64("flowcanvas.x", node.Position.X),
		attribute.Float64("flowcanvas.y", node.Position.Y),
	)
	writeJSON(w, r, http.StatusOK, DragResponse{State: "dragging", NodeID: node.ID, Node: &node})
}

// handleDragEnd releases the grabbed node. It accepts an empty body so the
// page can fire it from pointerleave via sendBeacon.
func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	_, span := s.tracer.Start(r.Context(), "flowcanvas.drag.end")
	defer span.End()

	was := s.editor.EndDrag()
	span.SetAttributes(attribute.Bool("flowcanvas.was_dragging", was))
	writeJSON(w, r, http.StatusOK, DragResponse{State: "idle"})
}

// handleReset restores the seed layout.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	_, span := s.tracer.Start(r.Context(), "flowcanvas.reset")
	defer span.End()

	s.editor.Reset()
	fmt.Printf(`{"level":"info","msg":"canvas_reset","trace_id":"%s"}`+"\n", getTraceID(r.Context()))
	writeJSON(w, r, http.StatusOK, DragResponse{State: "idle"})
}

// handleReports generates and streams CSV reports of the current layout.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	reportType := reports.ReportType(q.Get("type"))
	if reportType == "" {
		http.Error(w, `{"error":"missing_type"}`, http.StatusBadRequest)
		return
	}

	params := reports.ReportParams{
		Filters: make(map[string]interface{}),
	}
	if status := q.Get("status"); status != "" {
		params.Filters["status"] = status
	}
	if from := q.Get("from"); from != "" {
		params.Filters["from"] = from
	}

	gen, err := reports.NewReportGenerator(reportType, s.editor)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"invalid_report_type","details":%q}`, err.Error()), http.StatusBadRequest)
		return
	}

	reader, err := gen.Generate(r.Context(), params)
	if err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_generate_report","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
		http.Error(w, `{"error":"report_generation_failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	filename := fmt.Sprintf("flowcanvas_%s_%d.csv", reportType, time.Now().Unix())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if _, err := io.Copy(w, reader); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_stream_report","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
	}
}

// render renders the scene and publishes the skipped-connection gauge.
func (s *Server) render() canvas.Scene {
	scene := s.editor.Render()
	canvas.ConnectionsSkipped.Set(float64(len(scene.Skipped)))
	return scene
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_encode_response","trace_id":"%s","path":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), r.URL.Path, err)
	}
}

// handleStatic serves the embedded canvas page with index fallback
func (s *Server) handleStatic() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.staticFS == nil {
			http.NotFound(w, r)
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/")

		// Skip API routes
		if strings.HasPrefix(path, "v1/") {
			http.NotFound(w, r)
			return
		}

		// Try to serve the file directly
		if path != "" {
			if file, err := s.staticFS.Open(path); err == nil {
				defer file.Close()
				if stat, err := file.Stat(); err == nil && !stat.IsDir() {
					// Set content type based on extension
					if strings.HasSuffix(path, ".css") {
						w.Header().Set("Content-Type", "text/css")
					} else if strings.HasSuffix(path, ".js") {
						w.Header().Set("Content-Type", "application/javascript")
					} else if strings.HasSuffix(path, ".html") {
						w.Header().Set("Content-Type", "text/html")
					}
					io.Copy(w, file)
					return
				}
			}
		}

		// Fallback to index.html
		if indexFile, err := s.staticFS.Open("index.html"); err == nil {
			defer indexFile.Close()
			w.Header().Set("Content-Type", "text/html")
			io.Copy(w, indexFile)
			return
		}

		// If index.html not found, 404
		http.NotFound(w, r)
	})
}

// handleHealth returns simple status
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// Middleware: Panic Recovery
func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				fmt.Printf(`{"level":"error","msg":"panic_recovered","error":"%v","path":"%s"}`+"\n", err, r.URL.Path)
				http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Middleware: Request Logging
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 1. Extract or Generate Trace ID
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = generateTraceID()
		}

		// 2. Inject into Context
		ctx := context.WithValue(r.Context(), traceIDKey, traceID)
		r = r.WithContext(ctx)

		// Wrap writer to capture status code
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		// 3. Set response header
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(ww, r)

		// Pointer moves arrive at frame rate; keep them out of the request log.
		if r.URL.Path == "/v1/drag/move" && ww.status == http.StatusOK {
			return
		}

		duration := time.Since(start)
		fmt.Printf(`{"level":"info","msg":"http_request","trace_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`+"\n",
			traceID, r.Method, r.URL.Path, ww.status, duration.Milliseconds())
	})
}

func generateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Fallback if random fails (unlikely)
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

func getTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// statusWriter captures HTTP status code
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Middleware: Secure Headers
func withSecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:;")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		next.ServeHTTP(w, r)
	})
}
