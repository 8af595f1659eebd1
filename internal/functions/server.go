// Package functions is the HTTP proxy that keeps the TMDB token and the
// Supabase service key off client machines. Requests are dispatched by an
// action query parameter on two endpoints, /api (metadata) and /database
// (bookmarks, content and avatars).
package functions

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// Backend is what the proxy serves from
type Backend struct {
	Bookmarks domain.BookmarkStore
	Content   domain.ContentSource
	Avatars   domain.AvatarStore
	Metadata  domain.MetadataSource
}

// Options configures the HTTP surface
type Options struct {
	CORSOrigins []string
	RateLimit   int // requests per RateWindow per IP; 0 disables limiting
	RateWindow  time.Duration
	JWTSecret   string // when set, user-scoped actions require a matching bearer token
}

// Server is the proxy
type Server struct {
	backend  Backend
	opts     Options
	verifier *TokenVerifier
	logger   *slog.Logger

	api     map[string]action
	dbGet   map[string]action
	dbWrite map[string]action
}

// NewServer creates the proxy
func NewServer(backend Backend, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RateWindow == 0 {
		opts.RateWindow = time.Minute
	}
	s := &Server{
		backend:  backend,
		opts:     opts,
		verifier: NewTokenVerifier(opts.JWTSecret),
		logger:   logger,
	}
	s.api = s.apiActions()
	s.dbGet = s.databaseGetActions()
	s.dbWrite = s.databasePostActions()
	return s
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(httprate.Limit(s.opts.RateLimit, s.opts.RateWindow, httprate.WithKeyFuncs(httprate.KeyByIP)))
		}
		r.Use(s.recordMetrics)

		r.Get("/api", s.dispatch("api", s.api))
		r.Get("/database", s.dispatch("database", s.dbGet))
		r.Post("/database", s.dispatch("database", s.dbWrite))
	})

	return r
}

// dispatch looks up ?action= in actions and writes its result
func (s *Server) dispatch(endpoint string, actions map[string]action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("action")
		run, ok := actions[name]
		if !ok {
			metrics.RecordProxyAction(endpoint, "unknown", "invalid")
			writeActionError(w, domain.ErrInvalidAction)
			return
		}

		result, err := run(r)
		if err != nil {
			outcome := writeActionError(w, err)
			metrics.RecordProxyAction(endpoint, name, outcome)
			s.logger.Warn("proxy action failed",
				"endpoint", endpoint,
				"action", name,
				"error", err,
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
			return
		}

		metrics.RecordProxyAction(endpoint, name, "ok")
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) recordMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordHTTPRequest(r.Method, r.URL.Path, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"action", r.URL.Query().Get("action"),
			"status", status,
			"duration", time.Since(start),
		)
	})
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("proxy listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("proxy shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
