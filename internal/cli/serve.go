package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"docqa/internal/api/handlers"
	"docqa/internal/server"
)

// ServeCmd runs the HTTP API.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Start the HTTP API serving PDF question answering and notebooks.",
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	c, err := build(cfg)
	if err != nil {
		return err
	}

	maxBytes := int64(cfg.Server.MaxUploadMB) << 20
	fetch := handlers.NewHTTPFetcher(time.Duration(cfg.Server.DownloadTimeoutSecs)*time.Second, maxBytes)
	router := server.NewRouter(server.RouterConfig{
		NotebookHandler: handlers.NewNotebookHandler(c.notebooks, fetch),
		MaxBodyBytes:    maxBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited")
	return nil
}
