package galleria_test

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/sagarc03/galleria"
	"github.com/sagarc03/galleria/keybackend"
	stowrysign "github.com/sagarc03/stowry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureVerifier_Verify(t *testing.T) {
	const (
		accessKey = "GALLERYTEST"
		secretKey = "testsecret123"
		path      = "/photos/summer/optimized/beach.jpg"
	)

	store := keybackend.NewMapSecretStore(map[string]string{
		accessKey: secretKey,
	})

	verifier := galleria.NewSignatureVerifier(store)

	validTimestamp := time.Now().Unix()
	validExpires := int64(900)
	validSignature := stowrysign.Sign(secretKey, "GET", path, validTimestamp, validExpires)

	expiredTimestamp := time.Now().Add(-2 * time.Hour).Unix()
	expiredSignature := stowrysign.Sign(secretKey, "GET", path, expiredTimestamp, validExpires)

	query := func(cred string, ts int64, expires, sig string) url.Values {
		q := url.Values{}
		if cred != "" {
			q.Set(stowrysign.StowryCredentialParam, cred)
		}
		if ts != 0 {
			q.Set(stowrysign.StowryDateParam, fmt.Sprintf("%d", ts))
		}
		if expires != "" {
			q.Set(stowrysign.StowryExpiresParam, expires)
		}
		if sig != "" {
			q.Set(stowrysign.StowrySignatureParam, sig)
		}
		return q
	}

	tests := []struct {
		name      string
		path      string
		query     url.Values
		wantError string
	}{
		{
			name:  "valid signature",
			path:  path,
			query: query(accessKey, validTimestamp, "900", validSignature),
		},
		{
			name:      "empty query",
			path:      path,
			query:     url.Values{},
			wantError: "missing required signature parameters",
		},
		{
			name:      "missing signature",
			path:      path,
			query:     query(accessKey, validTimestamp, "900", ""),
			wantError: "missing required signature parameters",
		},
		{
			name:      "expires zero",
			path:      path,
			query:     query(accessKey, validTimestamp, "0", validSignature),
			wantError: "must be between 1 and 604800",
		},
		{
			name:      "expires too large",
			path:      path,
			query:     query(accessKey, validTimestamp, "604801", validSignature),
			wantError: "must be between 1 and 604800",
		},
		{
			name:      "expired signature",
			path:      path,
			query:     query(accessKey, expiredTimestamp, "900", expiredSignature),
			wantError: "signature expired",
		},
		{
			name:      "unknown access key",
			path:      path,
			query:     query("WRONGKEY", validTimestamp, "900", validSignature),
			wantError: "invalid access key",
		},
		{
			name:      "signature for another path",
			path:      "/photos/summer/original/beach.jpg",
			query:     query(accessKey, validTimestamp, "900", validSignature),
			wantError: "signature mismatch",
		},
		{
			name:      "tampered signature",
			path:      path,
			query:     query(accessKey, validTimestamp, "900", "deadbeef"),
			wantError: "signature mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifier.Verify("GET", tt.path, tt.query)
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, galleria.ErrUnauthorized)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestPresign_RoundTrip(t *testing.T) {
	store := keybackend.NewMapSecretStore(map[string]string{"KEY": "secret"})
	verifier := galleria.NewSignatureVerifier(store)

	path := "/photos/summer/original/beach day.jpg"
	signed := galleria.Presign("http://localhost:5708/objects", "KEY", "secret", path, time.Hour, time.Now())

	u, err := url.Parse(signed)
	require.NoError(t, err)

	assert.Equal(t, "/objects"+path, u.Path)
	assert.Equal(t, "3600", u.Query().Get(stowrysign.StowryExpiresParam))
	assert.NoError(t, verifier.Verify("GET", path, u.Query()))
}
