// Package dashboard serves the project collection and its exports over HTTP.
package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/application"
	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/domain/selection"
	"github.com/felixgeelhaar/taskport/pkg/exchange"
	"github.com/felixgeelhaar/taskport/pkg/infrastructure/download"
)

//go:embed templates/*
var templatesFS embed.FS

// maxImportBytes caps uploaded import files.
const maxImportBytes = 32 << 20

// Server is the dashboard HTTP server.
type Server struct {
	addr     string
	repo     project.Repository
	exchange *application.ExchangeService
	importer *application.ImportService
	logger   *slog.Logger
	server   *http.Server
	tmpl     *template.Template
}

// NewServer creates a new dashboard server.
func NewServer(addr string, repo project.Repository, svc *application.ExchangeService, importer *application.ImportService, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	funcMap := template.FuncMap{
		"formatDate": formatDate,
		"join":       func(s []string) string { return strings.Join(s, exchange.AssigneeSeparator) },
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Server{
		addr:     addr,
		repo:     repo,
		exchange: svc,
		importer: importer,
		logger:   logger,
		tmpl:     tmpl,
	}, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/projects", s.handleAPIProjects)
	mux.HandleFunc("GET /api/formats", s.handleAPIFormats)
	mux.HandleFunc("GET /export/{format}", s.handleExport)
	mux.HandleFunc("POST /import/{format}", s.handleImport)

	return mux
}

// Start starts the dashboard server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	s.logger.Info("dashboard server starting", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// PageData holds data for template rendering.
type PageData struct {
	Title    string
	Projects []project.Project
	Formats  []exchange.Format
	Stats    Stats
	Error    string
}

// Stats summarises the collection.
type Stats struct {
	Projects  int
	Tasks     int
	Completed int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := PageData{Title: "Projects", Formats: s.exchange.Registry().Formats()}

	projects, err := s.repo.Load(r.Context())
	if err != nil {
		data.Error = err.Error()
	} else {
		data.Projects = projects
		data.Stats = calculateStats(projects)
	}

	s.render(w, "index.html", data)
}

func (s *Server) handleAPIProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.repo.Load(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleAPIFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]exchange.Format{
		"export": s.exchange.Registry().Formats(),
		"import": s.exchange.Registry().ImportFormats(),
	})
}

// handleExport serves /export/{format}?kind=&project=&task= as an attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := exchange.ParseFormat(r.PathValue("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	q := r.URL.Query()
	kind, err := exchange.ParseKind(q.Get("kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	projects, err := s.repo.Load(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	selected, err := application.SelectForExport(projects, q["project"], q["task"], kind)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	dl := download.NewHTTPDownloader(w)
	svc := s.exchange.WithDownloader(dl)
	if _, err := svc.ExportAndDownload(r.Context(), format, selected, kind); err != nil {
		s.logger.Error("export request failed", "format", format, "error", err)
		if !dl.Committed() {
			http.Error(w, err.Error(), statusFor(err))
		}
	}
}

// ImportResponse reports a completed import.
type ImportResponse struct {
	ProjectsAdded   int      `json:"projectsAdded"`
	ProjectsUpdated int      `json:"projectsUpdated"`
	TasksAdded      int      `json:"tasksAdded"`
	TasksUpdated    int      `json:"tasksUpdated"`
	Orphans         []string `json:"orphans"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format, err := exchange.ParseFormat(r.PathValue("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	res, err := s.importer.ImportFile(r.Context(), format, body)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	orphans := make([]string, 0, len(res.Orphans))
	for _, t := range res.Orphans {
		orphans = append(orphans, t.ID)
	}
	writeJSON(w, http.StatusOK, ImportResponse{
		ProjectsAdded:   res.ProjectsAdded,
		ProjectsUpdated: res.ProjectsUpdated,
		TasksAdded:      res.TasksAdded,
		TasksUpdated:    res.TasksUpdated,
		Orphans:         orphans,
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, project.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, project.ErrParse), errors.Is(err, project.ErrValidation), errors.Is(err, selection.ErrAmbiguousTask):
		return http.StatusBadRequest
	case errors.Is(err, selection.ErrUnknownProject), errors.Is(err, selection.ErrUnknownTask):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func calculateStats(projects []project.Project) Stats {
	stats := Stats{Projects: len(projects)}
	for _, p := range projects {
		for _, t := range p.Tasks {
			stats.Tasks++
			if t.Status == project.TaskCompleted {
				stats.Completed++
			}
		}
	}
	return stats
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return exchange.FormatDate(t)
}
