package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/galleria/galleryclient"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the gallery interactively",
	Long: `Load every thumbnail, then pick images, or step with next and previous,
to fetch their full resolution URL. Navigation wraps around at both ends.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

const (
	itemNext     = "next →"
	itemPrev     = "← previous"
	itemQuit     = "quit"
	fixedItemsAt = 2 // images start after next and previous
)

func runBrowse(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	_, gallery, err := openGallery(ctx)
	if err != nil {
		return reportError(err)
	}

	attempted, loadErr := gallery.LoadThumbnails(ctx)
	if loadErr != nil && !quiet {
		fmt.Fprintf(os.Stderr, "thumbnails stopped after %d of %d requests\n", attempted, gallery.Len())
	}

	if err := gallery.Select(ctx, 0); err != nil {
		return reportError(err)
	}

	formatter := getFormatter()
	for {
		gallery.Wait()
		snap := gallery.Snapshot()
		if err := formatter.FormatGallery(os.Stdout, snap); err != nil {
			return err
		}

		choice, err := promptChoice(snap)
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		switch {
		case choice == 0:
			gallery.Next(ctx)
		case choice == 1:
			gallery.Prev(ctx)
		case choice == fixedItemsAt+len(snap.Slots):
			return nil
		default:
			if err := gallery.Select(ctx, choice-fixedItemsAt); err != nil {
				return reportError(err)
			}
		}
	}
}

// promptChoice returns the index of the chosen menu item. The cursor starts
// on the selected image.
func promptChoice(snap galleryclient.Snapshot) (int, error) {
	items := make([]string, 0, len(snap.Slots)+fixedItemsAt+1)
	items = append(items, itemNext, itemPrev)
	for _, s := range snap.Slots {
		items = append(items, fmt.Sprintf("%s (%s)", s.Filename, s.State))
	}
	items = append(items, itemQuit)

	prompt := promptui.Select{
		Label:     fmt.Sprintf("%s [%d/%d]", snap.Directory, snap.Selected+1, len(snap.Slots)),
		Items:     items,
		CursorPos: snap.Selected + fixedItemsAt,
		Size:      10,
	}

	i, _, err := prompt.Run()
	return i, err
}
