package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/galleria/config"
)

var version = "dev"

// flushLogs is set by PersistentPreRunE once logging is configured.
var flushLogs = func() {}

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "galleria",
	Short:   "Signed URL service for photo galleries",
	Long: `Galleria issues short-lived signed URLs for gallery images kept in
Google Cloud Storage, an S3-compatible store or a local directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")
		envFiles, _ := cmd.Flags().GetStringSlice("env-file")

		cfg, err := config.Load(configFiles, cmd.Flags(), envFiles...)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		flushLogs = setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushLogs()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringSlice("config", nil, "config file paths, later files override earlier ones (default: ./config.yaml)")
	pf.StringSlice("env-file", nil, "dotenv files to load (default: ./.env)")
	pf.String("log-level", "", "log level: debug, info, warn, error (env: GALLERIA_LOG_LEVEL)")

	pf.String("backend", "", "storage backend: gcs, s3, filesystem (env: GALLERIA_STORE_BACKEND)")
	pf.String("project-id", "", "cloud project id (env: GOOGLE_CLOUD_PROJECT_ID)")
	pf.String("bucket", "", "bucket name (env: GOOGLE_CLOUD_BUCKET_NAME)")
	pf.String("key-file", "", "credentials file (env: GOOGLE_CLOUD_KEYFILE)")
	pf.String("cdn-host", "", "host substituted into signed URLs (env: CDN_URL)")
	pf.String("endpoint", "", "custom storage endpoint (s3, gcs emulator)")
	pf.String("region", "", "s3 region")
	pf.String("root", "", "storage root directory (filesystem backend)")
	pf.String("public-url", "", "public base URL of this server (filesystem backend)")

	pf.String("directory", "", "gallery directory (env: GALLERIA_GALLERY_DIRECTORY)")
	pf.StringSlice("images", nil, "gallery image filenames (env: GALLERIA_GALLERY_IMAGES)")
}

func main() {
	err := rootCmd.Execute()
	flushLogs()
	if err != nil {
		os.Exit(1)
	}
}
