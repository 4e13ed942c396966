package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagarc03/galleria"
	"github.com/sagarc03/galleria/config"
	"github.com/sagarc03/galleria/filesystem"
)

var addCmd = &cobra.Command{
	Use:   "add [flags] <image> [image] ...",
	Short: "Import images into the local store",
	Long: `Import images into the filesystem backend in the gallery layout:

  {root}/{bucket}/{directory}/original/{filename}
  {root}/{bucket}/{directory}/optimized/{filename}

Each argument is stored as the original. The optimized variant is read from
--optimized-dir under the same filename, or is a copy of the original when
that flag is not set.

Examples:
  # Add two images to the configured gallery directory
  galleria add --root ./data --bucket photos --directory trip beach.jpg sunset.jpg

  # Use pre-scaled copies for the optimized variant
  galleria add --optimized-dir ./web ./raw/beach.jpg

  # Skip images that are already present
  galleria add --no-clobber ./raw/*.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addOptimizedDir string
	addNoClobber    bool
	addQuiet        bool
)

func init() {
	addCmd.Flags().StringVar(&addOptimizedDir, "optimized-dir", "", "directory holding optimized copies with the same filenames")
	addCmd.Flags().BoolVarP(&addNoClobber, "no-clobber", "n", false, "skip images whose variants already exist")
	addCmd.Flags().BoolVarP(&addQuiet, "quiet", "q", false, "suppress per-image output")
	rootCmd.AddCommand(addCmd)
}

// imageEntry is one image to import with the sources of its two variants.
type imageEntry struct {
	filename  string
	original  string
	optimized string
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if cfg.Store.Backend != galleria.BackendFilesystem {
		return fmt.Errorf("add only supports the %s backend, got %q", galleria.BackendFilesystem, cfg.Store.Backend)
	}
	if cfg.Store.Root == "" {
		return errors.New("storage root is not configured")
	}
	if !galleria.IsValidFilename(cfg.Store.Bucket) {
		return fmt.Errorf("invalid bucket name %q", cfg.Store.Bucket)
	}
	if cfg.Gallery.Directory == "" {
		return errors.New("gallery directory is not configured")
	}

	entries, err := collectImages(args, addOptimizedDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Store.Root, 0o750); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(cfg.Store.Root)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}
	defer func() { _ = root.Close() }()

	store := filesystem.NewFileStorage(root, filesystem.Options{Bucket: cfg.Store.Bucket})

	added := 0
	skipped := 0

	for _, entry := range entries {
		original := galleria.ImageRef{Directory: cfg.Gallery.Directory, Filename: entry.filename, Resolution: galleria.ResolutionOriginal}
		optimized := galleria.ImageRef{Directory: cfg.Gallery.Directory, Filename: entry.filename, Resolution: galleria.ResolutionThumbnail}
		if err := original.Validate(); err != nil {
			return fmt.Errorf("add %s: %w", entry.filename, err)
		}

		if addNoClobber {
			complete, existsErr := hasBothVariants(ctx, store, original, optimized)
			if existsErr != nil {
				return fmt.Errorf("add %s: %w", entry.filename, existsErr)
			}
			if complete {
				skipped++
				if !addQuiet {
					slog.Info("skipped (exists)", "image", entry.filename)
				}
				continue
			}
		}

		if err := importFile(ctx, store, entry.original, original.Key()); err != nil {
			return err
		}
		if err := importFile(ctx, store, entry.optimized, optimized.Key()); err != nil {
			return err
		}

		added++
		if !addQuiet {
			slog.Info("added", "image", entry.filename, "directory", cfg.Gallery.Directory)
		}
	}

	slog.Info("add complete", "added", added, "skipped", skipped)
	return nil
}

func hasBothVariants(ctx context.Context, store *filesystem.Store, refs ...galleria.ImageRef) (bool, error) {
	for _, ref := range refs {
		ok, err := store.Exists(ctx, ref.Key())
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func importFile(ctx context.Context, store *filesystem.Store, source, key string) error {
	f, err := os.Open(source) //#nosec G304 -- path is a user-provided image
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer func() { _ = f.Close() }()

	res, err := store.Write(ctx, key, f)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	slog.Debug("wrote object", "key", key, "bytes", res.BytesWritten, "etag", res.ETag)
	return nil
}

// collectImages resolves the variant sources of every argument. Directories
// are rejected; the gallery layout is flat.
func collectImages(args []string, optimizedDir string) ([]imageEntry, error) {
	entries := make([]imageEntry, 0, len(args))
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", arg)
		}

		name := filepath.Base(arg)
		if !galleria.IsValidFilename(name) {
			return nil, fmt.Errorf("invalid image filename %q", name)
		}

		entry := imageEntry{filename: name, original: arg, optimized: arg}
		if optimizedDir != "" {
			entry.optimized = filepath.Join(optimizedDir, name)
			if _, err := os.Stat(entry.optimized); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil, fmt.Errorf("optimized copy of %s not found in %s", name, optimizedDir)
				}
				return nil, err
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
