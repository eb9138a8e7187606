// Package dashboard serves the results dashboard and per-test log views
// over HTTP.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/azirolabs/resultdash/collector"
	"github.com/azirolabs/resultdash/config"
)

const shutdownTimeout = 5 * time.Second

// Server owns the HTTP surface: the dashboard page, per-test log views
// and static file fallthrough. Every request triggers a fresh collect, so
// the page always reflects the artifacts on disk.
type Server struct {
	logger    zerolog.Logger
	cfg       config.Config
	collector *collector.Collector
	mux       *http.ServeMux
	static    http.Handler
}

// New creates a server around the given collector.
func New(logger zerolog.Logger, cfg config.Config, c *collector.Collector) *Server {
	s := &Server{
		logger:    logger,
		cfg:       cfg,
		collector: c,
		static:    http.FileServer(http.Dir(cfg.StaticDir)),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/log/", s.handleLog)
	mux.HandleFunc("/", s.handleIndex)
	s.mux = mux
	return s
}

// Handler returns the root handler for all dashboard routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves the dashboard until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Int("port", s.cfg.Port).
			Str("product", s.cfg.ProductName).
			Msg("dashboard listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to serve dashboard: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down dashboard: %w", err)
	}
	return nil
}

// handleIndex renders the dashboard on "/" and hands every other path to
// the static file server.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.static.ServeHTTP(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	run := s.collector.Collect()
	view := buildView(s.cfg.ProductName, run, s.collector.History())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, "dashboard.html", view); err != nil {
		s.logger.Error().Err(err).Msg("failed to render dashboard")
	}
}

// handleLog renders the log slice recorded for one test. The name is the
// rest of the path; a literal "%3A%3A" left over from over-eager clients
// is accepted in place of "::".
func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/log/")
	name = strings.ReplaceAll(name, "%3A%3A", "::")

	run := s.collector.Collect()
	content := "Log content not available for this test."
	if test := run.FindTest(name); test != nil && test.Log != nil {
		if text := s.collector.ReadLog(test.Log); text != "" {
			content = text
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	view := struct {
		Name    string
		Content string
	}{Name: name, Content: content}
	if err := pageTemplates.ExecuteTemplate(w, "log.html", view); err != nil {
		s.logger.Error().Err(err).Msg("failed to render log view")
	}
}
