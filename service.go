package galleria

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"
)

// ObjectStore is one bucket of an object storage backend.
//
// Implementations exist for Google Cloud Storage, S3-compatible stores and a
// sandboxed local directory. A store is opened per request and closed when the
// request is done.
type ObjectStore interface {
	// Exists reports whether an object with the given key exists.
	// A missing object is (false, nil); any other failure is an error.
	Exists(ctx context.Context, key string) (bool, error)

	// SignedURL returns a URL granting read access to key for the given
	// duration, signed with the store's versioned signing scheme.
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Close releases the underlying client.
	Close() error
}

// Driver opens an ObjectStore from configuration.
//
// Open must wrap credential decoding failures with ErrCredentialParse and any
// other construction failure with ErrClientInit, and must not contact the
// store.
type Driver interface {
	Open(ctx context.Context, cfg StoreConfig) (ObjectStore, error)
}

// DriverFunc adapts a function to the Driver interface.
type DriverFunc func(ctx context.Context, cfg StoreConfig) (ObjectStore, error)

func (f DriverFunc) Open(ctx context.Context, cfg StoreConfig) (ObjectStore, error) {
	return f(ctx, cfg)
}

// Registry maps backend names to drivers. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
}

func NewRegistry() *Registry {
	return &Registry{drivers: make(map[string]Driver)}
}

// Register adds or replaces the driver for name.
func (r *Registry) Register(name string, d Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[name] = d
}

func (r *Registry) Lookup(name string) (Driver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drivers[name]
	return d, ok
}

// Names returns the registered backend names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ServiceConfig holds configuration options for IssuerService.
type ServiceConfig struct {
	Store StoreConfig
	TTL   time.Duration // Validity of issued URLs (default: 1h)
}

// IssueRequest is the query of the signed-url endpoint.
type IssueRequest struct {
	Directory string
	Filename  string
	Original  bool
}

// Ref returns the image reference addressed by the request.
func (r IssueRequest) Ref() ImageRef {
	return ImageRef{
		Directory:  r.Directory,
		Filename:   r.Filename,
		Resolution: ResolutionFor(r.Original),
	}
}

// IssuerService mints signed URLs. It holds no per-request state; every call
// validates configuration and opens its own store client.
type IssuerService struct {
	drivers *Registry
	cfg     StoreConfig
	ttl     time.Duration
	now     func() time.Time
}

func NewIssuerService(drivers *Registry, cfg ServiceConfig) *IssuerService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}
	if drivers == nil {
		drivers = NewRegistry()
	}
	return &IssuerService{
		drivers: drivers,
		cfg:     cfg.Store,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue resolves req to an object key, confirms the object exists and returns
// a signed read URL for it.
//
// The method performs the following steps:
//  1. Validates the store configuration (no store contact on failure)
//  2. Validates directory and filename
//  3. Resolves the configured backend driver
//  4. Opens the store client with the configured credentials
//  5. Checks the object exists
//  6. Signs a read URL valid for the configured TTL
//  7. Rewrites the URL onto the CDN host when one is configured
//
// Every failure is an *IssueError tagged with the stage it happened in.
// A panic inside a driver is recovered and reported as StageUnexpected with
// the stack trace in Details.
func (s *IssuerService) Issue(ctx context.Context, req IssueRequest) (result SignedURL, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ie := newIssueError(StageUnexpected, "unexpected error while generating signed URL", fmt.Errorf("%w: %v", ErrUnexpected, rec))
			ie.Details = string(debug.Stack())
			result, err = SignedURL{}, ie
		}
	}()

	if err := s.cfg.Validate(); err != nil {
		return SignedURL{}, newIssueError(StageConfig, "server configuration is incomplete", err)
	}

	if req.Directory == "" || req.Filename == "" {
		return SignedURL{}, newIssueError(StageValidation, "directory and filename are required", ErrInvalidInput)
	}

	ref := req.Ref()
	if err := ref.Validate(); err != nil {
		return SignedURL{}, newIssueError(StageValidation, "invalid directory or filename", err)
	}

	driver, ok := s.drivers.Lookup(s.cfg.Backend)
	if !ok {
		return SignedURL{}, newIssueError(StageImport,
			fmt.Sprintf("storage backend %q is not available", s.cfg.Backend),
			fmt.Errorf("lookup driver: %w: %s", ErrBackendUnavailable, s.cfg.Backend))
	}

	store, err := s.open(ctx, driver)
	if err != nil {
		return SignedURL{}, err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close object store", "backend", s.cfg.Backend, "err", closeErr)
		}
	}()

	key := ref.Key()

	exists, err := store.Exists(ctx, key)
	if err != nil {
		return SignedURL{}, storeOperationError(key, "failed to check image existence", err)
	}
	if !exists {
		ie := newIssueError(StageNotFound, "image not found: "+key, ErrNotFound)
		ie.Key = key
		return SignedURL{}, ie
	}

	issuedAt := s.now()
	signed, err := store.SignedURL(ctx, key, s.ttl)
	if err != nil {
		return SignedURL{}, storeOperationError(key, "failed to generate signed URL", err)
	}

	if s.cfg.CDNHost != "" {
		signed, err = RewriteHost(signed, s.cfg.CDNHost)
		if err != nil {
			return SignedURL{}, storeOperationError(key, "failed to rewrite signed URL", err)
		}
	}

	return SignedURL{URL: signed, ExpiresAt: issuedAt.Add(s.ttl)}, nil
}

func (s *IssuerService) open(ctx context.Context, driver Driver) (ObjectStore, error) {
	store, err := driver.Open(ctx, s.cfg)
	switch {
	case err == nil:
		return store, nil
	case errors.Is(err, ErrCredentialParse):
		return nil, newIssueError(StageCredentialParse, "failed to parse storage credentials", err)
	default:
		return nil, newIssueError(StageClientInit, "failed to initialize storage client", err)
	}
}

func storeOperationError(key, message string, err error) *IssueError {
	ie := newIssueError(StageStoreOperation, message, fmt.Errorf("%w: %w", ErrStoreOperation, err))
	ie.Key = key
	ie.Details = err.Error()
	return ie
}

// LayoutStatus reports which variants of one gallery image exist.
type LayoutStatus struct {
	Filename  string `json:"filename"`
	Optimized bool   `json:"optimized"`
	Original  bool   `json:"original"`
}

// Complete reports whether both variants exist.
func (l LayoutStatus) Complete() bool {
	return l.Optimized && l.Original
}

// CheckLayout verifies that every image has both its optimized and original
// variant under directory. It opens a single store for the whole batch and
// stops at the first store error.
func (s *IssuerService) CheckLayout(ctx context.Context, directory string, images []string) ([]LayoutStatus, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("check layout: %w", err)
	}

	driver, ok := s.drivers.Lookup(s.cfg.Backend)
	if !ok {
		return nil, fmt.Errorf("check layout: %w: %s", ErrBackendUnavailable, s.cfg.Backend)
	}

	store, err := driver.Open(ctx, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("check layout: %w", err)
	}
	defer func() { _ = store.Close() }()

	statuses := make([]LayoutStatus, 0, len(images))
	for _, name := range images {
		if err := ctx.Err(); err != nil {
			return statuses, fmt.Errorf("check layout: %w", err)
		}

		status := LayoutStatus{Filename: name}
		for _, res := range []Resolution{ResolutionThumbnail, ResolutionOriginal} {
			ref := ImageRef{Directory: directory, Filename: name, Resolution: res}
			if err := ref.Validate(); err != nil {
				return statuses, fmt.Errorf("check layout: %w", err)
			}

			exists, err := store.Exists(ctx, ref.Key())
			if err != nil {
				return statuses, fmt.Errorf("check layout '%s': %w", ref.Key(), err)
			}

			if res == ResolutionOriginal {
				status.Original = exists
			} else {
				status.Optimized = exists
			}
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}
