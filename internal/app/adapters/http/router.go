package http

import (
	"context"
	"errors"
	"fmt"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
	"net/http"
	"time"
	"twitchbot/internal/app/adapters/http/handlers"
	"twitchbot/internal/app/adapters/http/middlewares"
	"twitchbot/internal/app/ports"
	"twitchbot/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	Addr    string
	GinMode string
	// AuthToken protects /metrics (Bearer) and pprof (basic auth as admin).
	// pprof is not exposed without it.
	AuthToken string
}

type Router struct {
	router      *gin.Engine
	handlers    *handlers.Handlers
	middlewares *middlewares.Middlewares

	log  logger.Logger
	opts Options
}

func NewRouter(log logger.Logger, status ports.StatusPort, opts Options) *Router {
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}

	r := &Router{
		router:      gin.New(),
		handlers:    handlers.New(log, status),
		middlewares: middlewares.New(),
		log:         log,
		opts:        opts,
	}
	r.router.Use(gin.Recovery())

	r.router.GET("/health", r.handlers.HealthHandler)

	if opts.AuthToken == "" {
		r.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		return r
	}

	r.router.GET("/metrics", r.middlewares.Auth(opts.AuthToken), gin.WrapH(promhttp.Handler()))

	pprofGroup := r.router.Group("/", gin.BasicAuth(gin.Accounts{
		"admin": opts.AuthToken,
	}))
	pprof.Register(pprofGroup)
	return r
}

func (r *Router) Handler() http.Handler {
	return r.router
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (r *Router) Run(ctx context.Context) error {
	srv := r.newServer(r.opts.Addr, r.router)

	errCh := make(chan error, 1)
	go func() {
		r.log.Info("HTTP server listening", slog.String("addr", r.opts.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (r *Router) newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
}
