package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baxromumarov/upfolio/internal/core"
	"github.com/baxromumarov/upfolio/internal/store"
)

// Services are the application services the handlers call into.
type Services struct {
	Store     *store.Store
	Scraper   core.JobScraper
	Assistant *core.JobAssistantService
	Resumes   *core.ResumeService
	Chat      *core.ChatService
}

type Options struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	StaticDir          string
	InitialCredits     int
	// TrustProxy rewrites RemoteAddr from X-Forwarded-For and X-Real-IP,
	// which the per-client rate limit keys on.
	TrustProxy bool
	Logger             *slog.Logger
}

type Server struct {
	router    *chi.Mux
	store     *store.Store
	scraper   core.JobScraper
	assistant *core.JobAssistantService
	resumes   *core.ResumeService
	chat      *core.ChatService
	limiter   *clientLimiter
	opts      Options
	logger    *slog.Logger
}

func NewServer(svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		router:    chi.NewRouter(),
		store:     svc.Store,
		scraper:   svc.Scraper,
		assistant: svc.Assistant,
		resumes:   svc.Resumes,
		chat:      svc.Chat,
		limiter:   newClientLimiter(opts.RateLimitPerMinute, 10*time.Minute),
		opts:      opts,
		logger:    logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	if s.opts.TrustProxy {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", userHeader},
		MaxAge:         300,
	}))

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Post("/users", s.handleCreateUser)

		r.Get("/profiles", s.handleListProfiles)
		r.Get("/profiles/{username}", s.handleGetProfile)
		r.With(s.limiter.middleware).Post("/profiles/{username}/chat", s.handleChat)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Get("/me", s.handleMe)
			r.With(s.limiter.middleware).Post("/scrape", s.handleScrape)
			r.With(s.limiter.middleware).Post("/job-assistant", s.handleJobAssistant)

			r.Get("/applications", s.handleListApplications)
			r.Get("/applications/{id}", s.handleGetApplication)
			r.Delete("/applications/{id}", s.handleDeleteApplication)

			r.Get("/resumes", s.handleListResumes)
			r.Post("/resumes", s.handleCreateResume)
			r.Post("/resumes/import", s.handleImportResume)
			r.Get("/resumes/{id}", s.handleGetResume)
			r.Put("/resumes/{id}", s.handleUpdateResume)
			r.Delete("/resumes/{id}", s.handleDeleteResume)
			r.Post("/resumes/{id}/{action}", s.handleResumeTransition)
		})
	})

	// Serve static files
	if dir := s.opts.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			FileServer(s.router, "/", http.Dir(dir))
		}
	}
}

func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit any URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, r)
	})
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "unavailable", "database unreachable")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

type errorResponse struct {
	Error               string `json:"error"`
	Code                string `json:"code"`
	ManualInputRequired bool   `json:"manual_input_required,omitempty"`
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
