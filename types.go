package galleria

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultSignedURLTTL is how long an issued URL stays valid.
const DefaultSignedURLTTL = time.Hour

// MaxSignedURLTTL is the longest validity the supported signing schemes accept.
const MaxSignedURLTTL = 7 * 24 * time.Hour

type Resolution string

const (
	ResolutionThumbnail Resolution = "thumbnail"
	ResolutionOriginal  Resolution = "original"
)

func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionThumbnail, ResolutionOriginal:
		return true
	default:
		return false
	}
}

// Folder returns the bucket folder that stores this variant.
func (r Resolution) Folder() string {
	if r == ResolutionOriginal {
		return "original"
	}
	return "optimized"
}

func ParseResolution(s string) (Resolution, error) {
	res := Resolution(s)
	if !res.IsValid() {
		return "", fmt.Errorf("invalid resolution: %s (valid: thumbnail, original)", s)
	}
	return res, nil
}

// ResolutionFor maps the boolean "original" flag of the HTTP API.
func ResolutionFor(original bool) Resolution {
	if original {
		return ResolutionOriginal
	}
	return ResolutionThumbnail
}

// ImageRef identifies one variant of a logical gallery image.
type ImageRef struct {
	Directory  string
	Filename   string
	Resolution Resolution
}

// Key returns the object key: {directory}/{optimized|original}/{filename}.
func (r ImageRef) Key() string {
	return r.Directory + "/" + r.Resolution.Folder() + "/" + r.Filename
}

// Validate checks that both path components are present and safe to embed in
// an object key.
func (r ImageRef) Validate() error {
	if r.Directory == "" || r.Filename == "" {
		return fmt.Errorf("validate image ref: %w: directory and filename are required", ErrInvalidInput)
	}
	if !IsValidPath(r.Directory) {
		return fmt.Errorf("validate image ref: %w: invalid directory %q", ErrInvalidInput, r.Directory)
	}
	if !IsValidFilename(r.Filename) {
		return fmt.Errorf("validate image ref: %w: invalid filename %q", ErrInvalidInput, r.Filename)
	}
	if r.Resolution != "" && !r.Resolution.IsValid() {
		return fmt.Errorf("validate image ref: %w: invalid resolution %q", ErrInvalidInput, r.Resolution)
	}
	return nil
}

// SignedURL is a freshly minted read URL. It is never cached.
type SignedURL struct {
	URL       string    `json:"signedUrl"`
	ExpiresAt time.Time `json:"-"`
}

const (
	BackendGCS        = "gcs"
	BackendS3         = "s3"
	BackendFilesystem = "filesystem"
)

// StoreConfig holds everything a driver needs to open an ObjectStore.
// ProjectID, Bucket and one of KeyFile or Credentials are required for every
// backend; the remaining fields are backend specific.
type StoreConfig struct {
	Backend     string `mapstructure:"backend"`
	ProjectID   string `mapstructure:"project_id"`
	Bucket      string `mapstructure:"bucket"`
	KeyFile     string `mapstructure:"key_file"`
	Credentials string `mapstructure:"credentials"`
	CDNHost     string `mapstructure:"cdn_host"`

	Endpoint  string `mapstructure:"endpoint"`   // gcs, s3: custom API endpoint
	Region    string `mapstructure:"region"`     // s3
	PathStyle bool   `mapstructure:"path_style"` // s3
	Root      string `mapstructure:"root"`       // filesystem: storage root directory
	PublicURL string `mapstructure:"public_url"` // filesystem: base URL of the objects route
}

// Validate reports the missing required fields as a single ErrConfigMissing.
func (c StoreConfig) Validate() error {
	var missing []string
	if c.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if c.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if c.KeyFile == "" && c.Credentials == "" {
		missing = append(missing, "key_file or credentials")
	}
	if len(missing) > 0 {
		return fmt.Errorf("validate store config: %w: %s", ErrConfigMissing, strings.Join(missing, ", "))
	}

	if c.CDNHost != "" {
		if _, _, err := parseCDNHost(c.CDNHost); err != nil {
			return fmt.Errorf("validate store config: %w: %v", ErrConfigMissing, err)
		}
	}

	return nil
}

// LoadCredentials returns the raw credential document, preferring the key
// file when both forms are configured.
func (c StoreConfig) LoadCredentials() ([]byte, error) {
	if c.KeyFile != "" {
		data, err := os.ReadFile(c.KeyFile) //nolint:gosec // Path is from trusted config
		if err != nil {
			return nil, fmt.Errorf("read key file: %w: %v", ErrCredentialParse, err)
		}
		return data, nil
	}
	if c.Credentials != "" {
		return []byte(c.Credentials), nil
	}
	return nil, errors.New("load credentials: no credentials configured")
}
