package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/galleria"
	"github.com/sagarc03/galleria/config"
	"github.com/sagarc03/galleria/filesystem"
	"github.com/sagarc03/galleria/gcs"
	galleriahttp "github.com/sagarc03/galleria/http"
	"github.com/sagarc03/galleria/keybackend"
	"github.com/sagarc03/galleria/s3store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the galleria HTTP server.

Store settings are checked on every request, so the server starts even when
they are incomplete and reports the problem to clients instead.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5708, "HTTP server port")
	serveCmd.Flags().Duration("ttl", galleria.DefaultSignedURLTTL, "validity of issued URLs")

	rootCmd.AddCommand(serveCmd)
}

// newRegistry returns the drivers of every built-in backend.
func newRegistry() *galleria.Registry {
	r := galleria.NewRegistry()
	r.Register(galleria.BackendGCS, galleria.DriverFunc(gcs.Open))
	r.Register(galleria.BackendS3, galleria.DriverFunc(s3store.Open))
	r.Register(galleria.BackendFilesystem, galleria.DriverFunc(filesystem.Open))
	return r
}

// openObjects serves the local bucket so that filesystem signed URLs resolve.
// Every configured key pair is accepted for verification.
func openObjects(cfg galleria.StoreConfig) (*galleriahttp.ObjectsConfig, func() error, error) {
	pairs, err := keybackend.LoadKeyPairs(cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := filesystem.OpenStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	return &galleriahttp.ObjectsConfig{
		Bucket:   cfg.Bucket,
		Source:   store,
		Verifier: galleria.NewSignatureVerifier(keybackend.NewSecretStore(pairs)),
	}, store.Close, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Store.Validate(); err != nil {
		slog.Warn("store configuration is incomplete, requests will fail until it is fixed", "err", err)
	}

	service := galleria.NewIssuerService(newRegistry(), cfg.ServiceConfig())

	handlerConfig := galleriahttp.HandlerConfig{
		Gallery: galleriahttp.GalleryManifest{
			Directory: cfg.Gallery.Directory,
			Images:    cfg.Gallery.Images,
		},
		CORS:   cfg.CORS,
		Logger: slog.Default(),
	}

	if cfg.Store.Backend == galleria.BackendFilesystem {
		objects, closeObjects, objErr := openObjects(cfg.Store)
		if objErr != nil {
			slog.Warn("objects route disabled", "err", objErr)
		} else {
			defer func() { _ = closeObjects() }()
			handlerConfig.Objects = objects
			slog.Info("serving local bucket", "bucket", cfg.Store.Bucket, "root", cfg.Store.Root)
		}
	}

	handler := galleriahttp.NewHandler(&handlerConfig, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr, "backend", cfg.Store.Backend, "ttl", cfg.SignedURL.TTL)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
