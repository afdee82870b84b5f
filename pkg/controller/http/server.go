package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kataribe-dev/kataribe/pkg/usecase"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

type Options func(*Server)

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler(uc))

	r.Route("/api/t/{tenantID}", func(r chi.Router) {
		r.Use(tenantMiddleware)

		r.Post("/chat", chatHandler(uc))
		r.Get("/quota", quotaHandler(uc))

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", listEntriesHandler(uc))
			r.Post("/", createEntryHandler(uc))
			r.Post("/{entryID}/summary", summaryHandler(uc))
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
