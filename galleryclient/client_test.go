package galleryclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/galleria"
	"github.com/sagarc03/galleria/galleryclient"
)

const (
	testTimeout = 2 * time.Second
	testTick    = 5 * time.Millisecond
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *galleryclient.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := galleryclient.New(&galleryclient.Config{Endpoint: server.URL + "/"})
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := galleryclient.New(nil)
		assert.ErrorIs(t, err, galleryclient.ErrConfigRequired)
	})

	t.Run("empty endpoint uses default", func(t *testing.T) {
		client, err := galleryclient.New(&galleryclient.Config{})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("with options", func(t *testing.T) {
		client, err := galleryclient.New(&galleryclient.Config{},
			galleryclient.WithHTTPClient(&http.Client{}),
			galleryclient.WithTimeout(time.Second),
		)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestClient_SignedURL(t *testing.T) {
	t.Run("thumbnail", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/signed-url", r.URL.Path)
			assert.Equal(t, "trip 2024", r.URL.Query().Get("directory"))
			assert.Equal(t, "beach.jpg", r.URL.Query().Get("filename"))
			assert.Equal(t, "false", r.URL.Query().Get("original"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"signedUrl":"https://storage.example.com/x?sig=1"}`))
		})

		u, err := client.SignedURL(context.Background(), galleria.ImageRef{
			Directory:  "trip 2024",
			Filename:   "beach.jpg",
			Resolution: galleria.ResolutionThumbnail,
		})
		require.NoError(t, err)
		assert.Equal(t, "https://storage.example.com/x?sig=1", u)
	})

	t.Run("original", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "true", r.URL.Query().Get("original"))
			_, _ = w.Write([]byte(`{"signedUrl":"https://x"}`))
		})

		_, err := client.SignedURL(context.Background(), galleria.ImageRef{
			Directory:  "trip",
			Filename:   "beach.jpg",
			Resolution: galleria.ResolutionOriginal,
		})
		require.NoError(t, err)
	})

	t.Run("server error with details", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"failed to check image existence","details":"head object: timeout"}`))
		})

		_, err := client.SignedURL(context.Background(), thumb("a.jpg"))
		require.Error(t, err)

		var apiErr *galleryclient.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, "failed to check image existence", apiErr.Message)
		assert.Equal(t, "head object: timeout", galleryclient.ErrorDetails(err))
		assert.ErrorIs(t, err, galleryclient.ErrServer)
	})

	t.Run("not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"image not found: trip/optimized/a.jpg"}`))
		})

		_, err := client.SignedURL(context.Background(), thumb("a.jpg"))
		assert.ErrorIs(t, err, galleryclient.ErrNotFound)
		assert.Contains(t, err.Error(), "trip/optimized/a.jpg")
	})

	t.Run("non-json error body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		})

		_, err := client.SignedURL(context.Background(), thumb("a.jpg"))
		assert.ErrorIs(t, err, galleryclient.ErrInvalidResponse)
	})

	t.Run("non-json success body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`https://not-json`))
		})

		_, err := client.SignedURL(context.Background(), thumb("a.jpg"))
		assert.ErrorIs(t, err, galleryclient.ErrInvalidResponse)
	})

	t.Run("missing signedUrl", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := client.SignedURL(context.Background(), thumb("a.jpg"))
		assert.ErrorIs(t, err, galleryclient.ErrInvalidResponse)
	})

	t.Run("transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		endpoint := server.URL
		server.Close()

		client, err := galleryclient.New(&galleryclient.Config{Endpoint: endpoint})
		require.NoError(t, err)

		_, err = client.SignedURL(context.Background(), thumb("a.jpg"))
		assert.ErrorIs(t, err, galleryclient.ErrRequestFailed)
	})
}

func TestClient_Images(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/images", r.URL.Path)
		_, _ = w.Write([]byte(`{"directory":"trip","images":["a.jpg","b.jpg"]}`))
	})

	m, err := client.Images(context.Background())
	require.NoError(t, err)
	assert.Equal(t, galleryclient.Manifest{Directory: "trip", Images: []string{"a.jpg", "b.jpg"}}, m)
}

func TestAPIError(t *testing.T) {
	err := &galleryclient.APIError{StatusCode: http.StatusNotFound, Message: "gone"}

	assert.True(t, err.IsNotFound())
	assert.Equal(t, "server error: 404 - gone", err.Error())
	assert.ErrorIs(t, err, galleryclient.ErrNotFound)
	assert.NotErrorIs(t, err, galleryclient.ErrBadRequest)
}
