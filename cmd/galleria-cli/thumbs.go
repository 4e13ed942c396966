package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var thumbsSelect int

var thumbsCmd = &cobra.Command{
	Use:   "thumbs",
	Short: "Load the gallery and print its URLs",
	Long: `Request a thumbnail URL for every image, one at a time, then the full
resolution URL of the selected image.

Loading stops at the first failed thumbnail; the remaining images stay in the
loading state and the error is printed with the gallery.

Examples:
  galleria-cli thumbs
  galleria-cli thumbs --select 2
  galleria-cli thumbs -d trip --images beach.jpg,sunset.jpg --json`,
	Args: cobra.NoArgs,
	RunE: runThumbs,
}

func init() {
	thumbsCmd.Flags().IntVar(&thumbsSelect, "select", 0, "index of the image to show at full resolution")
}

func runThumbs(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	_, gallery, err := openGallery(ctx)
	if err != nil {
		return reportError(err)
	}

	if err := gallery.Select(ctx, thumbsSelect); err != nil {
		return reportError(err)
	}

	_, loadErr := gallery.LoadThumbnails(ctx)
	gallery.Wait()

	if err := getFormatter().FormatGallery(os.Stdout, gallery.Snapshot()); err != nil {
		return err
	}
	return loadErr
}
