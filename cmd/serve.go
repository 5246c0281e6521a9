package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"influencer-platform/backend/pkg/di"
	"influencer-platform/backend/pkg/router"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run health checks in the background and serve the ops endpoints",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting influencerd", "version", cfg.Server.Version, "env", cfg.Server.Env)

	container, err := di.Build(ctx, cfg, log)
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := container.Close(closeCtx); err != nil {
			log.LogError(err, "Failed to release resources")
		}
	}()

	container.Health.Start(ctx)

	r := router.New(container, cfg)
	r.SetupRoutes()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r.Engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Ops server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.LogError(err, "Ops server failed")
			return err
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.LogError(err, "Server forced to shutdown")
		return err
	}

	log.Info("Server exited gracefully")
	return nil
}
