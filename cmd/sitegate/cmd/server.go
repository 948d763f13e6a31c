package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/jalvarado/sitegate/api"
	"github.com/jalvarado/sitegate/internal/config"
	"github.com/jalvarado/sitegate/session"
	"github.com/jalvarado/sitegate/settings"
	bboltstore "github.com/jalvarado/sitegate/settings/bbolt"
	reststore "github.com/jalvarado/sitegate/settings/rest"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the password gate server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLogLevel(cfg.Logging.Level),
		}))
		slog.SetDefault(logger)

		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		codec, err := session.NewCodec([]byte(cfg.Gate.Secret))
		if err != nil {
			return fmt.Errorf("failed to initialize session codec: %w", err)
		}
		validator := session.NewValidator(codec, store,
			session.WithValidatorLogger(logger),
			session.WithFetchTimeout(cfg.Store.Timeout),
		)

		limiter := api.NewFixedWindowLimiter(cfg.Gate.RateLimitWindow, cfg.Gate.RateLimitAttempts)
		defer limiter.Close()

		a := api.New(codec, validator, store,
			api.WithLogger(logger),
			api.WithAdminIDs(cfg.Gate.AdminIDs),
			api.WithAttemptLimiter(limiter),
		)

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)
		r.Use(api.SecurityHeaders)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/api/v1", a.Router())

		server := &http.Server{
			Addr:              cfg.ListenAddr(),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		logger.Info("server started", "addr", cfg.ListenAddr())

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

// openStore selects the settings backend: the remote REST store when a
// URL is configured, the embedded database otherwise.
func openStore(cfg *config.Config) (settings.Store, func(), error) {
	if cfg.Store.URL != "" {
		opts := []reststore.Option{
			reststore.WithHTTPClient(&http.Client{Timeout: cfg.Store.Timeout}),
		}
		if cfg.Store.AuthToken != "" {
			opts = append(opts, reststore.WithAuthToken(cfg.Store.AuthToken))
		}
		return reststore.NewStore(cfg.Store.URL, opts...), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := bboltstore.NewStoreFromFile(cfg.Store.Path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	return store, func() { store.Close() }, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
