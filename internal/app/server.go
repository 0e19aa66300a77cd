package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/localrag/internal/api/handlers"
	"github.com/markdave123-py/localrag/internal/config"
	"github.com/markdave123-py/localrag/internal/core/jobs"
	"github.com/markdave123-py/localrag/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, ingestSvc *services.IngestService, querySvc *services.QueryService, jobMgr *jobs.Manager) *Server {
	docHandler := handlers.NewDocumentHandler(ingestSvc, jobMgr)
	queryHandler := handlers.NewQueryHandler(querySvc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Group(func(rt chi.Router) {
		rt.Use(middleware.Timeout(60 * time.Second))

		rt.Post("/upload", docHandler.Upload)
		rt.Post("/upload-pdf", docHandler.UploadPDF)
		rt.Get("/jobs/{job_id}", docHandler.GetJob)
		rt.Get("/documents", docHandler.ListDocuments)
		rt.Get("/pdf/{doc_id}", docHandler.GetPDF)
		rt.Get("/query", queryHandler.Query)
	})

	// Streamed answers can legitimately outlive the request timeout, so this
	// route lives outside the timeout group.
	r.Get("/query-stream", queryHandler.QueryStream)

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
