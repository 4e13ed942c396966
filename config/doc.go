// Package config provides configuration loading and validation for galleria.
//
// The package handles YAML configuration files, .env files, environment
// variables and CLI flags with automatic merging and validation using
// go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. .env file (never overrides variables already in the environment)
//  4. Environment variables (GALLERIA_ prefix, plus the aliases below)
//  5. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with GALLERIA_ prefix:
//   - server.port → GALLERIA_SERVER_PORT
//   - store.bucket → GALLERIA_STORE_BUCKET
//   - gallery.images → GALLERIA_GALLERY_IMAGES (comma separated)
//
// The store settings also accept GOOGLE_CLOUD_PROJECT_ID,
// GOOGLE_CLOUD_BUCKET_NAME, GOOGLE_CLOUD_KEYFILE, GOOGLE_CLOUD_CREDENTIALS
// and CDN_URL. The prefixed name wins when both are set.
//
// # Validation
//
// Server, signed URL, gallery, log and sentry settings are validated at
// load time. Store settings are not: an incomplete store configuration lets
// the server start and every signed-url request fails with a configuration
// error until it is fixed.
package config
