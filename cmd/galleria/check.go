package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/galleria"
	"github.com/sagarc03/galleria/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every gallery image has both variants",
	Long: `Check the configured store for the optimized and original variant of
every configured gallery image:

  {directory}/optimized/{filename}
  {directory}/original/{filename}

Exits non-zero when a variant is missing.`,
	RunE: runCheck,
}

var checkJSON bool

// errIncompleteLayout is returned when at least one variant is missing.
var errIncompleteLayout = errors.New("gallery layout is incomplete")

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if cfg.Gallery.Directory == "" || len(cfg.Gallery.Images) == 0 {
		return errors.New("gallery directory and images must be configured")
	}

	service := galleria.NewIssuerService(newRegistry(), cfg.ServiceConfig())
	statuses, err := service.CheckLayout(cmd.Context(), cfg.Gallery.Directory, cfg.Gallery.Images)
	if err != nil {
		return err
	}

	missing := 0
	for _, s := range statuses {
		if !s.Complete() {
			missing++
		}
	}

	if checkJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(statuses); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		for _, s := range statuses {
			if s.Complete() {
				slog.Info("ok", "image", s.Filename)
				continue
			}
			slog.Warn("missing variant", "image", s.Filename, "optimized", s.Optimized, "original", s.Original)
		}
	}

	if missing > 0 {
		return fmt.Errorf("%w: %d of %d images", errIncompleteLayout, missing, len(statuses))
	}
	slog.Info("check complete", "images", len(statuses))
	return nil
}
