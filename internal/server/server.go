// Package server exposes the enrichment pipeline over HTTP: a JSON
// process listing, a kill endpoint, and the static dashboard page.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/wesoudshoorn/locohost/internal/logger"
	"github.com/wesoudshoorn/locohost/pkg/model"
)

//go:embed index.html
var indexHTML []byte

// Enumerator runs one enumeration cycle. Each request gets its own cycle;
// there is no cross-request cache.
type Enumerator interface {
	Enumerate(ctx context.Context) []model.ProcessEntry
}

// Terminator force-kills a pid, reporting failure as a message instead of
// an error.
type Terminator func(pid int) (bool, string)

// killResponse is the body of POST /api/kill/{pid}. The HTTP status is
// always 200; success is reported in-band.
type killResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Server is the HTTP front of the pipeline.
type Server struct {
	enumerator Enumerator
	terminate  Terminator
	port       int
	server     *http.Server
	router     *httprouter.Router
}

func New(enumerator Enumerator, terminate Terminator, port int) *Server {
	s := &Server{
		enumerator: enumerator,
		terminate:  terminate,
		port:       port,
		router:     httprouter.New(),
	}
	s.setupRoutes()
	return s
}

// Start blocks serving HTTP until Stop or a listener error.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}
	logger.Info("serving on http://localhost:%d", s.port)
	return s.server.ListenAndServe()
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Handler returns the full handler chain, exported for tests.
func (s *Server) Handler() http.Handler {
	return corsHandler(s.router)
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/index.html", s.handleIndex)
	s.router.GET("/api/processes", s.handleProcesses)
	s.router.POST("/api/kill/:pid", s.handleKill)

	// Preflight short-circuits with an empty 200; corsHandler already set
	// the headers.
	s.router.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// corsHandler permits all origins on all routes, including 404s.
func corsHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

// handleProcesses always answers 200 with a JSON array. An empty array
// covers both "nothing listening" and "enumeration failed"; callers cannot
// and should not tell these apart.
func (s *Server) handleProcesses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	entries := s.enumerator.Enumerate(r.Context())
	if entries == nil {
		entries = []model.ProcessEntry{}
	}
	writeJSON(w, entries)
}

func (s *Server) handleKill(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	pid, err := strconv.Atoi(ps.ByName("pid"))
	if err != nil {
		writeJSON(w, killResponse{Success: false, Error: "invalid pid"})
		return
	}
	ok, msg := s.terminate(pid)
	if !ok {
		logger.Info("kill %d failed: %s", pid, msg)
	}
	writeJSON(w, killResponse{Success: ok, Error: msg})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write response: %v", err)
	}
}
