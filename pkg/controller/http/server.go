package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// AnalyzeUseCase is the part of the pipeline the HTTP API serves
type AnalyzeUseCase interface {
	AnalyzeDocument(ctx context.Context, session *model.Session, source, text string) (*model.Report, error)
	Analyze(ctx context.Context, session *model.Session, fields model.ExtractedFields) (*model.Report, error)
	Report(ctx context.Context, id model.ReportID) (*model.Report, error)
	Reports(ctx context.Context, limit int) ([]*model.Report, error)
}

// CatalogUseCase serves catalog search and the per-code destination map
type CatalogUseCase interface {
	Search(query string, limit int) ([]*model.ClassificationEntry, error)
	Detail(code string) (*model.CodeDetail, error)
}

type Server struct {
	router       *chi.Mux
	analyzeUC    AnalyzeUseCase
	catalogUC    CatalogUseCase
	refs         *model.ReferenceData
	maxBodyBytes int64
}

type Options func(*Server)

func WithReferenceData(refs *model.ReferenceData) Options {
	return func(s *Server) {
		s.refs = refs
	}
}

func WithCatalog(catalogUC CatalogUseCase) Options {
	return func(s *Server) {
		s.catalogUC = catalogUC
	}
}

func WithMaxBodyBytes(n int64) Options {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

const defaultMaxBodyBytes = 1 << 20

func New(analyzeUC AnalyzeUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		analyzeUC:    analyzeUC,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.analyzeFieldsHandler)
		r.Post("/analyze/text", s.analyzeTextHandler)
		r.Get("/reports", s.listReportsHandler)
		r.Get("/reports/{id}", s.getReportHandler)
		if s.refs != nil {
			r.Get("/catalog", s.catalogHandler)
		}
		if s.catalogUC != nil {
			r.Get("/catalog/search", s.catalogSearchHandler)
			r.Get("/catalog/{code}", s.catalogDetailHandler)
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests and puts a request-scoped
// logger into the context
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With(slog.String("request_id", middleware.GetReqID(r.Context())))
		r = r.WithContext(logging.With(r.Context(), logger))

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
