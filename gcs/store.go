// Package gcs is the Google Cloud Storage backend for galleria.
//
// Credentials are a service-account JSON document, read from the configured
// key file or given inline. The client email and private key of that
// document sign V4 URLs locally; only Exists talks to the bucket.
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/sagarc03/galleria"
)

// ServiceAccount holds the fields of a service-account key used for signing.
type ServiceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// ParseServiceAccount decodes a service-account JSON document. Every error
// wraps galleria.ErrCredentialParse.
func ParseServiceAccount(data []byte) (ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return ServiceAccount{}, fmt.Errorf("parse service account: %w: %v", galleria.ErrCredentialParse, err)
	}
	if sa.Type != "" && sa.Type != "service_account" {
		return ServiceAccount{}, fmt.Errorf("parse service account: %w: unsupported credential type %q", galleria.ErrCredentialParse, sa.Type)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return ServiceAccount{}, fmt.Errorf("parse service account: %w: client_email and private_key are required", galleria.ErrCredentialParse)
	}
	return sa, nil
}

// Store is one GCS bucket.
type Store struct {
	client  *storage.Client
	bucket  string
	account ServiceAccount
	now     func() time.Time
}

// New wraps an existing client. The store takes ownership of client and
// closes it on Close.
func New(client *storage.Client, bucket string, account ServiceAccount) *Store {
	return &Store{
		client:  client,
		bucket:  bucket,
		account: account,
		now:     time.Now,
	}
}

// Open is the galleria.Driver for the gcs backend.
func Open(ctx context.Context, cfg galleria.StoreConfig) (galleria.ObjectStore, error) {
	raw, err := cfg.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("gcs: %w", err)
	}

	account, err := ParseServiceAccount(raw)
	if err != nil {
		return nil, fmt.Errorf("gcs: %w", err)
	}

	opts := []option.ClientOption{option.WithCredentialsJSON(raw)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: %w: %v", galleria.ErrClientInit, err)
	}

	return New(client, cfg.Bucket, account), nil
}

// Exists reads the object attributes. storage.ErrObjectNotExist is reported
// as a missing object.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.Bucket(s.bucket).Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("get object attrs: %w", err)
	}
	return true, nil
}

// SignedURL returns a V4 signed GET URL valid for expiry.
func (s *Store) SignedURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	u, err := storage.SignedURL(s.bucket, key, &storage.SignedURLOptions{
		GoogleAccessID: s.account.ClientEmail,
		PrivateKey:     []byte(s.account.PrivateKey),
		Method:         http.MethodGet,
		Expires:        s.now().Add(expiry),
		Scheme:         storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("sign url: %w", err)
	}
	return u, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
