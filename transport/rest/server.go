package rest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 30 * time.Second
	requestTimeout    = 10 * time.Second
)

// NewRouter mounts the game API, the health check and the socket endpoint.
func NewRouter(logger *zap.Logger, games gameService, socket http.Handler) http.Handler {
	h := NewHandlers(logger, games)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/ping", h.PingHandler)
	router.Handle("/ws", socket)

	router.Route("/api/games", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Post("/", h.CreateGame)
		r.Get("/{code}", h.GetGame)
		r.Delete("/{code}", h.DeleteGame)
		r.Post("/{code}/join", h.JoinGame)
		r.Post("/{code}/reset", h.ResetGame)
		r.Post("/{code}/connect", h.ConnectGame)
	})

	return router
}

// requestLogger writes one zap entry per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	log := logger.With(zap.String("component", "http"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Debug("request served",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("http_method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

type Server struct {
	logger *zap.Logger
	srv    *http.Server
}

// NewServer prepares an HTTP server. Requests inherit ctx so open sockets are
// closed when ctx is cancelled.
func NewServer(ctx context.Context, logger *zap.Logger, port string, handler http.Handler) *Server {
	return &Server{
		logger: logger.With(zap.String("component", "http_server")),
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			IdleTimeout:       idleTimeout,
			BaseContext: func(net.Listener) context.Context {
				return ctx
			},
		},
	}
}

// Start blocks until the server stops. A graceful shutdown is not an error.
func (that *Server) Start() error {
	that.logger.Info("http server started", zap.String("addr", that.srv.Addr))

	if err := that.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	that.logger.Info("http server stopped")

	return nil
}
