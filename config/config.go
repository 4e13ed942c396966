package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/galleria"
	galleriahttp "github.com/sagarc03/galleria/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for galleria.
//
// Store is deliberately not validated here: missing store settings are
// reported per request by galleria.IssuerService.
type Config struct {
	Env       string                  `mapstructure:"env" validate:"required,oneof=dev prod"`
	Server    ServerConfig            `mapstructure:"server"`
	Store     galleria.StoreConfig    `mapstructure:"store"`
	SignedURL SignedURLConfig         `mapstructure:"signed_url"`
	Gallery   GalleryConfig           `mapstructure:"gallery"`
	CORS      galleriahttp.CORSConfig `mapstructure:"cors"`
	Log       LogConfig               `mapstructure:"log"`
	Sentry    SentryConfig            `mapstructure:"sentry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// SignedURLConfig controls issued URLs.
type SignedURLConfig struct {
	TTL time.Duration `mapstructure:"ttl" validate:"gt=0,lte=168h"`
}

// GalleryConfig is the image manifest served to clients.
type GalleryConfig struct {
	Directory string   `mapstructure:"directory" validate:"omitempty,excludesall=\\?#"`
	Images    []string `mapstructure:"images" validate:"dive,required,excludesall=/\\?#"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string  `mapstructure:"dsn" validate:"omitempty,url"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// ServiceConfig returns the issuer configuration.
func (c *Config) ServiceConfig() galleria.ServiceConfig {
	return galleria.ServiceConfig{Store: c.Store, TTL: c.SignedURL.TTL}
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":       "server.port",
	"backend":    "store.backend",
	"project-id": "store.project_id",
	"bucket":     "store.bucket",
	"key-file":   "store.key_file",
	"cdn-host":   "store.cdn_host",
	"endpoint":   "store.endpoint",
	"region":     "store.region",
	"root":       "store.root",
	"public-url": "store.public_url",
	"directory":  "gallery.directory",
	"images":     "gallery.images",
	"ttl":        "signed_url.ttl",
	"log-level":  "log.level",
}

// envAliases are environment variables accepted in addition to the
// GALLERIA_ prefixed names.
var envAliases = map[string][]string{
	"store.project_id":  {"GOOGLE_CLOUD_PROJECT_ID"},
	"store.bucket":      {"GOOGLE_CLOUD_BUCKET_NAME"},
	"store.key_file":    {"GOOGLE_CLOUD_KEYFILE"},
	"store.credentials": {"GOOGLE_CLOUD_CREDENTIALS"},
	"store.cdn_host":    {"CDN_URL"},
	"sentry.dsn":        {"SENTRY_DSN"},
}

// storeKeys have no defaults, so they must be bound explicitly to be seen by
// Unmarshal when set only through the environment.
var storeKeys = []string{
	"store.project_id",
	"store.bucket",
	"store.key_file",
	"store.credentials",
	"store.cdn_host",
	"store.endpoint",
	"store.root",
	"store.public_url",
	"sentry.dsn",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

func bindEnv(v *viper.Viper) {
	for _, key := range storeKeys {
		names := []string{"GALLERIA_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
		names = append(names, envAliases[key]...)
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 5708)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("store.backend", galleria.BackendGCS)
	v.SetDefault("store.region", "")
	v.SetDefault("store.path_style", false)

	v.SetDefault("signed_url.ttl", galleria.DefaultSignedURLTTL)

	v.SetDefault("gallery.directory", "")
	v.SetDefault("gallery.images", []string{})

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowedmethods", []string{"GET", "OPTIONS"})
	v.SetDefault("cors.maxage", 300)

	v.SetDefault("log.level", "info")

	v.SetDefault("sentry.environment", "")
	v.SetDefault("sentry.sample_rate", 1.0)
}

// loadDotEnv loads .env files into the process environment. Variables that
// are already set win; a missing file is not an error.
func loadDotEnv(files []string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("error reading env file", "file", f, "err", err)
		}
	}
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > .env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
//   - envFiles: dotenv files to load (defaults to ".env")
func Load(configFiles []string, flags *pflag.FlagSet, envFiles ...string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables, after loading .env into the process
	loadDotEnv(envFiles)
	v.SetEnvPrefix("GALLERIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
