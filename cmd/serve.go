package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/macrocam/macrocam/internal/analyzer"
	"github.com/macrocam/macrocam/internal/config"
	"github.com/macrocam/macrocam/internal/handlers"
	"github.com/macrocam/macrocam/internal/storage"
	"github.com/macrocam/macrocam/internal/uploads"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		port         string
		uploadsDir   string
		uploadPolicy string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the image analysis gateway",
		Long: `Starts the analysis gateway on the specified port.

Clients POST a multipart "image" field to /analyze-image. The gateway
saves the upload, runs the analyzer command with the image's absolute
path as its last argument and returns the analyzer's stdout as
{"macros": "..."}. By default the analyzer is "macrocam analyze".`,
		Example: `  # Start gateway on default port 5001
  macrocam serve

  # Delete uploads once analyzed
  macrocam serve --upload-policy delete

  # Use a custom analyzer
  MACROCAM_ANALYZER_COMMAND="python3 main.py" macrocam serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg.Gateway
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("uploads-dir") {
				cfg.UploadsDir = uploadsDir
			}
			if cmd.Flags().Changed("upload-policy") {
				cfg.UploadPolicy = uploadPolicy
				check := *opts.cfg
				check.Gateway = cfg
				if err := check.Validate(); err != nil {
					return err
				}
			}

			analyzerArgs, err := analyzerCommand(cfg.AnalyzerCommand)
			if err != nil {
				return err
			}

			store := uploads.New(cfg.UploadsDir)
			if err := store.Ensure(); err != nil {
				return err
			}

			handler := handlers.New(handlers.Options{
				Uploads:        store,
				Analyzer:       analyzer.NewCommand(analyzerArgs, cfg.AnalyzerTimeout),
				Analyses:       storage.New(cfg.HistorySize),
				UploadPolicy:   cfg.UploadPolicy,
				MaxUploadBytes: cfg.MaxUploadBytes,
			})

			gin.SetMode(gin.ReleaseMode)
			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, ctx := errgroup.WithContext(cmd.Context())

			g.Go(func() error {
				slog.Info("Macrocam gateway available",
					"addr", addr,
					"url", "http://localhost"+addr+"/analyze-image",
					"analyzer", analyzerArgs,
					"upload_policy", cfg.UploadPolicy,
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})

			if cfg.UploadPolicy == config.UploadPolicyTTL {
				g.Go(func() error {
					return store.RunSweeper(ctx, cfg.UploadsTTL, sweepInterval(cfg.UploadsTTL))
				})
			}

			// Wait for context cancellation (Ctrl+C) or server error
			g.Go(func() error {
				<-ctx.Done()
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			})

			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "5001", "Port to listen on")
	cmd.Flags().StringVar(&uploadsDir, "uploads-dir", "uploads", "Directory for received images")
	cmd.Flags().StringVar(&uploadPolicy, "upload-policy", config.UploadPolicyKeep, "What to do with processed uploads: keep, delete, ttl")

	return cmd
}

// analyzerCommand defaults to this binary's own analyze subcommand.
func analyzerCommand(configured []string) ([]string, error) {
	if len(configured) > 0 {
		return configured, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate macrocam executable: %w", err)
	}
	return []string{exe, "analyze"}, nil
}

func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	switch {
	case interval < time.Second:
		return time.Second
	case interval > time.Hour:
		return time.Hour
	default:
		return interval
	}
}
