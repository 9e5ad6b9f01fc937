package http

import (
	"net/http"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	DefaultUserHeader    = "X-User-ID"
	DefaultMaxUploadSize = 32 << 20
)

type Server struct {
	router        *chi.Mux
	uc            *usecase.UseCases
	userHeader    string
	maxUploadSize int64
}

type Options func(*Server)

// WithUserHeader sets the trusted header carrying the caller identity
func WithUserHeader(name string) Options {
	return func(s *Server) {
		if name != "" {
			s.userHeader = name
		}
	}
}

func WithMaxUploadSize(size int64) Options {
	return func(s *Server) {
		if size > 0 {
			s.maxUploadSize = size
		}
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:        r,
		uc:            uc,
		userHeader:    DefaultUserHeader,
		maxUploadSize: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler)

		r.Group(func(r chi.Router) {
			r.Use(identityMiddleware(s.userHeader))
			s.routes(r)
		})
	})

	return s
}

func (s *Server) routes(r chi.Router) {
	r.Route("/agents", func(r chi.Router) {
		r.Post("/", s.createAgent)
		r.Get("/", s.listAgents)
		r.Get("/{agentID}", s.getAgent)
		r.Put("/{agentID}", s.updateAgent)
		r.Delete("/{agentID}", s.deleteAgent)
		r.Get("/{agentID}/documents", s.listDocuments)
		r.Get("/{agentID}/metrics", s.agentMetrics)
	})

	r.Get("/stats", s.ownerStats)

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", s.uploadDocument)
		r.Get("/status/{id}", s.documentStatus)
		r.Delete("/{documentID}", s.deleteDocument)
	})

	r.Route("/chats", func(r chi.Router) {
		r.Post("/", s.createChat)
		r.Get("/", s.listChats)
		r.Get("/{chatID}", s.getChat)
		r.Delete("/{chatID}", s.deleteChat)
		r.Get("/{chatID}/messages", s.listMessages)
		r.Post("/{chatID}/messages", s.sendMessage)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger logs every request and hands a request scoped logger to handlers
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

	logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
	ctx := logging.With(r.Context(), logger)

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

	next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
