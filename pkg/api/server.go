// Package api is the remote endpoint set the relay forwards to: the agent,
// review and page routes, the project resources, and an HTTP mirror of the
// MCP methods.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/theapemachine/grok-agent-mcp/pkg/resources"
	"github.com/theapemachine/grok-agent-mcp/pkg/tools"
	"github.com/theapemachine/grok-agent-mcp/pkg/upstream"
)

// maxBodyBytes bounds request bodies, diffs included.
const maxBodyBytes = 10 << 20

// Options configures a Server. Diffs, when set, lets git_review_and_commit on
// the mirror fall back to the server's own working tree.
type Options struct {
	Service *Service
	Diffs   tools.DiffSource
	Token   string
	Logger  *log.Logger
}

// Server contains the configured router and the registries behind /api/mcp.
type Server struct {
	router    *chi.Mux
	service   *Service
	tools     *tools.Registry
	resources *resources.Registry
	log       *log.Logger
}

// New constructs a Server with middleware and routes configured.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Service == nil {
		opts.Service = NewService(ServiceOptions{Logger: opts.Logger})
	}

	s := &Server{
		router:    chi.NewRouter(),
		service:   opts.Service,
		tools:     tools.NewDefaultRegistry(opts.Service, opts.Diffs),
		resources: resources.NewDefaultRegistry(opts.Service),
		log:       opts.Logger,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(opts.Logger))
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(bearerAuth(opts.Token))
		r.Post("/agent", s.handleAgent)
		r.Post("/review", s.handleReview)
		r.Post("/process_page", s.handleProcessPage)
		r.Get("/project/history", s.handleProjectHistory)
		r.Get("/project/context", s.handleProjectContext)
		r.Post("/mcp", s.handleMCP)
		r.Get("/contract", s.handleContract)
	})

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.log.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("Remote endpoints listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}

	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	var req upstream.AgentRequest
	if !s.decode(w, r, &req) {
		return
	}

	response, err := s.service.QueryAgent(r.Context(), req.Prompt, req.Context)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, upstream.AgentReply{
		Response:  response,
		Timestamp: s.service.now(),
	})
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	diff, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
		return
	}

	reply, err := s.service.ReviewDiff(r.Context(), string(diff))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleProcessPage(w http.ResponseWriter, r *http.Request) {
	var req upstream.PageRequest
	if !s.decode(w, r, &req) {
		return
	}

	reply, err := s.service.ProcessPage(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleProjectHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.service.History(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleProjectContext(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Context(r.Context()))
}

func (s *Server) handleContract(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, upstream.NewContract())
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "path", r.URL.Path, "error", err, "request_id", middleware.GetReqID(r.Context()))
	}
	writeError(w, status, err)
}
