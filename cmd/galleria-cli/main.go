package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/galleria/galleryclient"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	endpoint    string
	directory   string
	images      []string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "galleria-cli",
	Version: version,
	Short:   "Client for galleria signed URL servers",
	Long: `galleria-cli loads a gallery from a galleria server: a thumbnail URL
for every image and a full resolution URL for the selected one.

The image list comes from the active profile, GALLERIA_DIRECTORY and
GALLERIA_IMAGES, or the --directory and --images flags. When none of them
name a gallery, the server's manifest is used.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.galleria/config.yaml, env: GALLERIA_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile name (env: GALLERIA_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:5708, env: GALLERIA_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&directory, "directory", "d", "", "gallery directory (env: GALLERIA_DIRECTORY)")
	rootCmd.PersistentFlags().StringSliceVar(&images, "images", nil, "gallery image filenames (env: GALLERIA_IMAGES)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(thumbsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := galleryclient.ConfigPathFromEnv(); p != "" {
		return p
	}
	return galleryclient.DefaultConfigPath()
}

// buildConfig merges the profile, env vars and flags (flags take precedence).
func buildConfig() (*galleryclient.Config, error) {
	var configs []*galleryclient.Config

	name := profileName
	if name == "" {
		name = galleryclient.ProfileFromEnv()
	}

	configPath := getConfigPath()
	if configPath != "" {
		file, err := galleryclient.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := file.GetProfile(name)
			if profileErr != nil && (name != "" || !errors.Is(profileErr, galleryclient.ErrNoProfiles)) {
				return nil, profileErr
			}
			configs = append(configs, galleryclient.ConfigFromProfile(p))
		case cfgFile != "" || name != "":
			// only an explicitly requested file or profile must exist
			return nil, err
		}
	}

	configs = append(configs,
		galleryclient.ConfigFromEnv(),
		&galleryclient.Config{Endpoint: endpoint, Directory: directory, Images: images},
	)

	return galleryclient.MergeConfig(configs...).WithDefaults(), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() galleryclient.Formatter {
	return galleryclient.NewFormatter(jsonOutput, quiet)
}

// openGallery builds a client and a gallery, falling back to the server's
// manifest when the configuration does not name the images.
func openGallery(ctx context.Context) (*galleryclient.Client, *galleryclient.Gallery, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, nil, err
	}

	client, err := galleryclient.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.HasManifest() {
		manifest, manifestErr := client.Images(ctx)
		if manifestErr != nil {
			return nil, nil, fmt.Errorf("fetch manifest: %w", manifestErr)
		}
		if cfg.Directory == "" {
			cfg.Directory = manifest.Directory
		}
		if len(cfg.Images) == 0 {
			cfg.Images = manifest.Images
		}
	}

	gallery, err := galleryclient.NewGallery(client, cfg.Directory, cfg.Images)
	if err != nil {
		return nil, nil, err
	}
	return client, gallery, nil
}

// reportError prints err with the active formatter and returns it.
func reportError(err error) error {
	_ = getFormatter().FormatError(os.Stderr, err)
	return err
}
