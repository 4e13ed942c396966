// Package s3store is the S3-compatible backend for galleria.
//
// It works against AWS S3 and against compatible stores (MinIO, R2, Ceph)
// through StoreConfig.Endpoint and StoreConfig.PathStyle.
package s3store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sagarc03/galleria"
)

// DefaultRegion is used when StoreConfig.Region is empty.
const DefaultRegion = "us-east-1"

// Credentials is the credential document of the s3 backend.
type Credentials struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token,omitempty"`
}

// ParseCredentials decodes an s3 credential document. Every error wraps
// galleria.ErrCredentialParse.
func ParseCredentials(data []byte) (Credentials, error) {
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return Credentials{}, fmt.Errorf("parse s3 credentials: %w: %v", galleria.ErrCredentialParse, err)
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return Credentials{}, fmt.Errorf("parse s3 credentials: %w: access_key_id and secret_access_key are required", galleria.ErrCredentialParse)
	}
	return c, nil
}

// Store is one S3 bucket.
type Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

// New builds a Store from explicit options.
func New(bucket, region, endpoint string, pathStyle bool, creds Credentials) *Store {
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				creds.AccessKeyID,
				creds.SecretAccessKey,
				creds.SessionToken,
			)
		},
	}

	if endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = pathStyle
		})
	}

	client := s3.New(s3.Options{}, opts...)

	return &Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
	}
}

// Open is the galleria.Driver for the s3 backend.
func Open(_ context.Context, cfg galleria.StoreConfig) (galleria.ObjectStore, error) {
	raw, err := cfg.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("s3: %w", err)
	}

	creds, err := ParseCredentials(raw)
	if err != nil {
		return nil, fmt.Errorf("s3: %w", err)
	}

	return New(cfg.Bucket, cfg.Region, cfg.Endpoint, cfg.PathStyle, creds), nil
}

// Exists issues a HeadObject request. NotFound and NoSuchKey responses are
// reported as a missing object.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("head object: %w", err)
}

// SignedURL presigns a GetObject request valid for expiry.
func (s *Store) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}

	result, err := s.presigner.PresignGetObject(ctx, input, func(po *s3.PresignOptions) {
		po.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}

	return result.URL, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *Store) Close() error {
	return nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &noSuchKey)
}
