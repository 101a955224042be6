// Package server provides the HTTP API over a skill corpus: listing,
// fetching, and linting skills as JSON for editor integrations and
// dashboards.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/skillctl/skillctl/pkg/lint"
	"github.com/skillctl/skillctl/pkg/logger"
	"github.com/skillctl/skillctl/pkg/skill"
)

// Config holds the server configuration.
type Config struct {
	Host string
	Port int
}

// Validate validates the server configuration.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

// Server serves the skill corpus over HTTP.
type Server struct {
	router    *mux.Router
	discovery *skill.Discovery
	linter    *lint.Linter
	config    *Config
	server    *http.Server
}

// New creates a Server over the given discovery.
func New(config *Config, discovery *skill.Discovery, linter *lint.Linter) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}

	s := &Server{
		router:    mux.NewRouter(),
		discovery: discovery,
		linter:    linter,
		config:    config,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/skills", s.handleListSkills).Methods("GET", "OPTIONS")
	// The lint route must come first: {name:.+} is greedy and would
	// otherwise swallow the /lint suffix.
	api.HandleFunc("/skills/{name:.+}/lint", s.handleLintSkill).Methods("GET", "OPTIONS")
	api.HandleFunc("/skills/{name:.+}", s.handleGetSkill).Methods("GET", "OPTIONS")
	api.HandleFunc("/lint", s.handleLint).Methods("GET", "OPTIONS")
	api.HandleFunc("/healthz", s.handleHealthz).Methods("GET")

	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")

	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.corsMiddleware)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until the context is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.G(ctx).WithField("addr", addr).Info("skill API listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

// skillSummary is the list representation of a skill.
type skillSummary struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      string   `json:"category,omitempty"`
	License       string   `json:"license,omitempty"`
	AllowedTools  []string `json:"allowedTools,omitempty"`
	UserInvocable bool     `json:"userInvocable"`
	Builtin       bool     `json:"builtin,omitempty"`
}

// skillDetail is the full representation of a skill, including the body.
type skillDetail struct {
	skillSummary
	Compatibility string `json:"compatibility,omitempty"`
	Author        string `json:"author,omitempty"`
	Version       string `json:"version,omitempty"`
	Directory     string `json:"directory,omitempty"`
	Content       string `json:"content"`
}

func summarize(s *skill.Skill) skillSummary {
	return skillSummary{
		Name:          s.Name,
		Description:   s.Description,
		Category:      s.Metadata.Category,
		License:       s.License,
		AllowedTools:  s.AllowedTools,
		UserInvocable: s.UserInvocable,
		Builtin:       s.Builtin,
	}
}

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := s.discovery.DiscoverSkills()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	category := r.URL.Query().Get("category")

	names := make([]string, 0, len(skills))
	for name := range skills {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]skillSummary, 0, len(names))
	for _, name := range names {
		sk := skills[name]
		if category != "" && sk.Metadata.Category != category {
			continue
		}
		summaries = append(summaries, summarize(sk))
	}

	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{"skills": summaries})
}

func (s *Server) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	sk, err := s.discovery.GetSkill(name)
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}

	detail := skillDetail{
		skillSummary:  summarize(sk),
		Compatibility: sk.Compatibility,
		Author:        sk.Metadata.Author,
		Version:       sk.Metadata.Version,
		Directory:     sk.Directory,
		Content:       sk.Content,
	}
	s.writeJSON(w, r, http.StatusOK, detail)
}

// handleLintSkill lints a single skill's directory. Builtin skills have no
// on-disk directory and cannot be linted this way.
func (s *Server) handleLintSkill(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	sk, err := s.discovery.GetSkill(name)
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}
	if sk.Directory == "" {
		s.writeError(w, r, http.StatusUnprocessableEntity,
			errors.Errorf("skill '%s' is builtin and has no directory to lint", name))
		return
	}

	report, err := s.linter.LintFile(r.Context(), sk.Directory)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	report, err := s.linter.LintDirs(r.Context(), s.discovery.Dirs())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.G(r.Context()).WithError(err).Error("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logger.G(r.Context()).WithError(err).Debug("request failed")
	s.writeJSON(w, r, status, map[string]string{"error": err.Error()})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.G(r.Context()).WithFields(map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("request handled")
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
