package galleria

import (
	"crypto/hmac"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	stowrysign "github.com/sagarc03/stowry-go"
)

// MaxExpiresSeconds bounds the X-Stowry-Expires parameter (7 days).
const MaxExpiresSeconds = 604800

// SecretStore looks up the secret key for an access key.
type SecretStore interface {
	Lookup(accessKey string) (string, error)
}

// SignatureVerifier verifies URLs signed with the native stowry scheme. The
// filesystem backend mints these URLs and the objects route checks them.
type SignatureVerifier struct {
	store SecretStore
	now   func() time.Time
}

func NewSignatureVerifier(store SecretStore) *SignatureVerifier {
	return &SignatureVerifier{store: store, now: time.Now}
}

// Verify checks the signature parameters of a GET request for path.
//
// Required query parameters:
//   - X-Stowry-Credential: access key
//   - X-Stowry-Date: unix timestamp of signing
//   - X-Stowry-Expires: validity in seconds (1-604800)
//   - X-Stowry-Signature: hex HMAC-SHA256 over method, path, date and expires
//
// Returns an error wrapping ErrUnauthorized if verification fails.
func (v *SignatureVerifier) Verify(method, path string, query url.Values) error {
	credential := query.Get(stowrysign.StowryCredentialParam)
	date := query.Get(stowrysign.StowryDateParam)
	expires := query.Get(stowrysign.StowryExpiresParam)
	signature := query.Get(stowrysign.StowrySignatureParam)

	if credential == "" || date == "" || expires == "" || signature == "" {
		return fmt.Errorf("missing required signature parameters: %w", ErrUnauthorized)
	}

	timestamp, err := strconv.ParseInt(date, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", stowrysign.StowryDateParam, ErrUnauthorized)
	}

	expiresSeconds, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || expiresSeconds <= 0 || expiresSeconds > MaxExpiresSeconds {
		return fmt.Errorf("invalid %s: must be between 1 and %d: %w", stowrysign.StowryExpiresParam, MaxExpiresSeconds, ErrUnauthorized)
	}

	if v.now().After(time.Unix(timestamp, 0).Add(time.Duration(expiresSeconds) * time.Second)) {
		return fmt.Errorf("signature expired: %w", ErrUnauthorized)
	}

	secretKey, err := v.store.Lookup(credential)
	if err != nil {
		return fmt.Errorf("invalid access key: %w", ErrUnauthorized)
	}

	expected := stowrysign.Sign(secretKey, method, path, timestamp, expiresSeconds)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch: %w", ErrUnauthorized)
	}

	return nil
}

// Presign returns endpoint+path with native signature parameters for a GET
// of path valid for expiry, signed at now.
func Presign(endpoint, accessKey, secretKey, path string, expiry time.Duration, now time.Time) string {
	timestamp := now.Unix()
	expires := int64(expiry / time.Second)
	sig := stowrysign.Sign(secretKey, http.MethodGet, path, timestamp, expires)

	query := url.Values{}
	query.Set(stowrysign.StowryCredentialParam, accessKey)
	query.Set(stowrysign.StowryDateParam, strconv.FormatInt(timestamp, 10))
	query.Set(stowrysign.StowryExpiresParam, strconv.FormatInt(expires, 10))
	query.Set(stowrysign.StowrySignatureParam, sig)

	escaped := (&url.URL{Path: path}).EscapedPath()
	return endpoint + escaped + "?" + query.Encode()
}
