package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfryer1193/memento/internal/middleware"
	"github.com/dfryer1193/memento/internal/rest"
	"github.com/dfryer1193/memento/internal/scheduler"
	"github.com/dfryer1193/memento/memento/application"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(loadConfig configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read API, the generate endpoint, feeds and the web page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.close(); err != nil {
					log.Error().Err(err).Msg("Failed to close post store")
				}
			}()

			if !a.service.CanGenerate() {
				log.Warn().Msg("OPENAI_API_KEY is not set; generation requests will fail")
			}

			if cfg.Schedule != "" {
				sched, err := scheduler.New(cfg.Schedule, a.service)
				if err != nil {
					return err
				}
				sched.Start()
				defer sched.Stop()
			}

			ctx, stop := notifyShutdown(cmd.Context())
			defer stop()

			return serve(ctx, cfg.Server.Port, newRouter(a.service))
		},
	}
}

func newRouter(service *application.PostService) *gin.Engine {
	r := gin.New()
	r.Use(middleware.LoggingMiddleware())
	r.Use(gin.CustomRecovery(middleware.HandlePanics()))

	rest.NewApi(r, rest.NewPostHandler(service, application.NewMarkdownRenderer()))
	return r
}

// notifyShutdown returns a context cancelled on interrupt or SIGTERM
func notifyShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// serve runs the HTTP server until ctx is done, then shuts it down gracefully
func serve(ctx context.Context, port int, handler http.Handler) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
