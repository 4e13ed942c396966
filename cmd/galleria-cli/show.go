package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/galleria"
	"github.com/sagarc03/galleria/galleryclient"
)

var showOriginal bool

var showCmd = &cobra.Command{
	Use:   "show <filename>",
	Short: "Print the signed URL of one image",
	Long: `Request a single signed URL.

Examples:
  galleria-cli show beach.jpg
  galleria-cli show --original -d trip beach.jpg
  galleria-cli show -q beach.jpg | xargs curl -O`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showOriginal, "original", false, "request the full resolution variant")
}

func runShow(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := buildConfig()
	if err != nil {
		return reportError(err)
	}

	client, err := galleryclient.New(cfg)
	if err != nil {
		return reportError(err)
	}

	dir := cfg.Directory
	if dir == "" {
		manifest, manifestErr := client.Images(ctx)
		if manifestErr != nil {
			return reportError(manifestErr)
		}
		dir = manifest.Directory
	}

	ref := galleria.ImageRef{
		Directory:  dir,
		Filename:   args[0],
		Resolution: galleria.ResolutionFor(showOriginal),
	}

	u, err := client.SignedURL(ctx, ref)
	if err != nil {
		return reportError(err)
	}

	return getFormatter().FormatURL(os.Stdout, ref.Filename, u)
}
