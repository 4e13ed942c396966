// Package filesystem provides a local directory backend for galleria.
//
// Each bucket is a directory under a storage root opened with os.Root, so
// keys cannot escape it. Signed URLs use the native stowry scheme and point
// at the objects route of the galleria server, which verifies them with
// galleria.SignatureVerifier before serving the file.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/galleria"
	"github.com/sagarc03/galleria/keybackend"
)

// ObjectsPrefix is the route prefix under which the server exposes buckets.
const ObjectsPrefix = "/objects"

// Options configures a Store.
type Options struct {
	Bucket    string
	PublicURL string // base URL of the galleria server, e.g. http://localhost:5708
	AccessKey string
	SecretKey string
}

// Store provides bucket scoped file operations and URL signing.
type Store struct {
	root  *os.Root
	opts  Options
	owned bool
	nowFn func() time.Time
}

// WriteResult is returned by Write.
type WriteResult struct {
	BytesWritten int64
	ETag         string
}

// NewFileStorage creates a new Store over root. The caller keeps ownership of
// root; Close does not close it.
func NewFileStorage(root *os.Root, opts Options) *Store {
	opts.PublicURL = strings.TrimSuffix(opts.PublicURL, "/")
	return &Store{root: root, opts: opts, nowFn: time.Now}
}

// Open is the galleria.Driver for the filesystem backend. It opens cfg.Root
// and signs with the first key pair of the configured credentials.
func Open(_ context.Context, cfg galleria.StoreConfig) (galleria.ObjectStore, error) {
	s, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// OpenStore is Open returning the concrete type, for callers that also need
// Get and Write.
func OpenStore(cfg galleria.StoreConfig) (*Store, error) {
	pairs, err := keybackend.LoadKeyPairs(cfg)
	if err != nil {
		return nil, fmt.Errorf("filesystem: %w", err)
	}

	if cfg.Root == "" {
		return nil, fmt.Errorf("filesystem: %w: storage root is not configured", galleria.ErrClientInit)
	}
	if cfg.PublicURL == "" {
		return nil, fmt.Errorf("filesystem: %w: public url is not configured", galleria.ErrClientInit)
	}
	if !galleria.IsValidFilename(cfg.Bucket) {
		return nil, fmt.Errorf("filesystem: %w: invalid bucket name %q", galleria.ErrClientInit, cfg.Bucket)
	}

	root, err := os.OpenRoot(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("filesystem: %w: %v", galleria.ErrClientInit, err)
	}

	s := NewFileStorage(root, Options{
		Bucket:    cfg.Bucket,
		PublicURL: cfg.PublicURL,
		AccessKey: pairs[0].AccessKey,
		SecretKey: pairs[0].SecretKey,
	})
	s.owned = true
	return s, nil
}

func (s *Store) objectPath(key string) string {
	return path.Join(s.opts.Bucket, key)
}

// Exists reports whether key is a regular file in the bucket.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	info, err := s.root.Stat(s.objectPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}

	return info.Mode().IsRegular(), nil
}

// SignedURL returns {PublicURL}/objects/{bucket}/{key} carrying a native
// signature valid for expiry.
func (s *Store) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.opts.AccessKey == "" || s.opts.SecretKey == "" {
		return "", errors.New("sign url: no signing key configured")
	}
	if expiry < time.Second || expiry > galleria.MaxSignedURLTTL {
		return "", fmt.Errorf("sign url: expiry %s out of range", expiry)
	}

	signedPath := "/" + s.objectPath(key)
	return galleria.Presign(s.opts.PublicURL+ObjectsPrefix, s.opts.AccessKey, s.opts.SecretKey, signedPath, expiry, s.nowFn()), nil
}

// Get opens an object for reading. Returns galleria.ErrNotFound if the file does not exist.
func (s *Store) Get(ctx context.Context, key string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(s.objectPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, galleria.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, galleria.ErrNotFound
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically writes content to key using a temp file and rename.
// It creates intermediate directories as needed and returns the number of
// bytes written and a SHA256-based etag. The operation respects context cancellation.
func (s *Store) Write(ctx context.Context, key string, content io.Reader) (WriteResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return WriteResult{}, ctxErr
	}

	if !galleria.IsValidPath(key) {
		return WriteResult{}, fmt.Errorf("write %s: %w", key, galleria.ErrInvalidInput)
	}

	dest := s.objectPath(key)
	if err := s.root.MkdirAll(path.Dir(dest), 0o755); err != nil {
		return WriteResult{}, fmt.Errorf("could not create intermediate directories: %w", err)
	}

	tmpFile := path.Join(s.opts.Bucket, tmpFileName())
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return WriteResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	written, err := io.Copy(w, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return WriteResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return WriteResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	if err := t.Close(); err != nil {
		return WriteResult{}, fmt.Errorf("could not close written file: %w", err)
	}

	if renameErr := s.root.Rename(tmpFile, dest); renameErr != nil {
		return WriteResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	success = true
	return WriteResult{BytesWritten: written, ETag: hex.EncodeToString(h.Sum(nil))}, nil
}

// Close closes the storage root when the Store opened it itself.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.root.Close()
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
