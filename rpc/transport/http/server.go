package http

import (
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

func NewHttpServerTransport() transport.IRPCServerTransport {
	return &httpServerTransport{}
}

type httpServerTransport struct {
	handler  transport.ServerHandleFunc
	config   common.ServerConfig
	server   *http.Server
	serverMu sync.Mutex
	closed   bool
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *httpServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *httpServerTransport) Listen(config common.ServerConfig) error {
	t.config = config

	t.serverMu.Lock()
	if t.closed {
		t.serverMu.Unlock()
		return nil
	}
	t.server = &http.Server{
		Addr:              config.Endpoint,
		Handler:           t.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := t.server
	t.serverMu.Unlock()

	Logger.Infof("Starting HTTP server on %s", config.Endpoint)

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (t *httpServerTransport) Close() error {
	t.serverMu.Lock()
	defer t.serverMu.Unlock()

	t.closed = true
	if t.server == nil {
		return nil
	}
	return t.server.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// routes builds the request multiplexer:
//
//	POST /         requests addressing the provider
//	POST /{host}   requests addressing one host object
//	GET  /metrics  prometheus metrics of the process
func (t *httpServerTransport) routes() http.Handler {
	mux := http.NewServeMux()

	handle := t.handleRequest
	if t.config.LogLevel == "debug" {
		handle = loggerMiddleware(handle)
	}

	mux.HandleFunc("POST /{$}", handle)
	mux.HandleFunc("POST /{host}", handle)
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	return mux
}

// handleRequest handles incoming HTTP requests and writes the response to the writer
func (t *httpServerTransport) handleRequest(w http.ResponseWriter, r *http.Request) {
	// empty for the provider route
	hostID := r.PathValue("host")

	// Read request body
	body, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return
	}

	resp := t.handler(hostID, body)

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err = w.Write(resp); err != nil {
		Logger.Warningf("Failed to write response: %v", err)
	}
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create custom response writer to capture status code
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	}
}
