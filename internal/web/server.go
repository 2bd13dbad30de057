package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jaminalder/tictactoe-minimax/internal/app"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
)

const defaultHeartbeat = 15 * time.Second

// Option configures the HTTP handler.
type Option func(*handlers)

// WithHeartbeat sets the SSE keep-alive interval.
func WithHeartbeat(d time.Duration) Option {
	return func(h *handlers) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// WithDefaultMode sets the mode used when a create form omits it.
func WithDefaultMode(m domain.Mode) Option {
	return func(h *handlers) { h.defaultMode = m }
}

// NewServer wires routes and returns an http.Handler. It also installs the
// board fragment as the service's broadcast payload.
func NewServer(s *app.Service, logger *slog.Logger, opts ...Option) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{
		svc:       s,
		tpl:       loadTemplates(),
		log:       logger.With("component", "web"),
		heartbeat: defaultHeartbeat,
	}
	for _, opt := range opts {
		opt(h)
	}
	s.SetRenderer(func(gs app.GameState) []byte { return h.tpl.renderBoard(gs, "") })

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Post("/play", h.play)
		r.Post("/reset", h.reset)
		r.Get("/events", h.events)
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/games/{id}", h.apiGame)
		r.Post("/minimax", h.apiMinimax)
	})
	return r
}

// requestLogger logs one line per request once the handler returns.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
