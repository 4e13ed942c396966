package e2e_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sagarc03/galleria"
	"github.com/sagarc03/galleria/filesystem"
	"github.com/sagarc03/galleria/galleryclient"
	galleriahttp "github.com/sagarc03/galleria/http"
	"github.com/sagarc03/galleria/keybackend"
)

const (
	testBucket      = "photos"
	testDirectory   = "trip"
	testCredentials = `[{"access_key":"GALLERYKEY","secret_key":"gallery-secret"},{"access_key":"OLDKEY","secret_key":"old-secret"}]`
)

// testGallery is a galleria server over a local bucket, reachable through a
// real listener so signed URLs can be followed.
type testGallery struct {
	URL    string
	Root   string
	Store  *filesystem.Store
	Client *galleryclient.Client
}

type serverOptions struct {
	images  []string
	cdnHost string
	// mutate adjusts the store config before the service is built.
	mutate func(*galleria.StoreConfig)
}

func startGallery(t *testing.T, opts serverOptions) *testGallery {
	t.Helper()

	root := t.TempDir()
	srv := httptest.NewUnstartedServer(nil)
	t.Cleanup(srv.Close)
	baseURL := "http://" + srv.Listener.Addr().String()

	storeCfg := galleria.StoreConfig{
		Backend:     galleria.BackendFilesystem,
		ProjectID:   "e2e",
		Bucket:      testBucket,
		Credentials: testCredentials,
		CDNHost:     opts.cdnHost,
		Root:        root,
		PublicURL:   baseURL,
	}
	if opts.mutate != nil {
		opts.mutate(&storeCfg)
	}

	registry := galleria.NewRegistry()
	registry.Register(galleria.BackendFilesystem, galleria.DriverFunc(filesystem.Open))
	service := galleria.NewIssuerService(registry, galleria.ServiceConfig{Store: storeCfg})

	pairs, err := keybackend.ParseKeyPairs([]byte(testCredentials))
	require.NoError(t, err)

	store, err := filesystem.OpenStore(galleria.StoreConfig{
		Bucket:      testBucket,
		Credentials: testCredentials,
		Root:        root,
		PublicURL:   baseURL,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	handler := galleriahttp.NewHandler(&galleriahttp.HandlerConfig{
		Gallery: galleriahttp.GalleryManifest{Directory: testDirectory, Images: opts.images},
		Objects: &galleriahttp.ObjectsConfig{
			Bucket:   testBucket,
			Source:   store,
			Verifier: galleria.NewSignatureVerifier(keybackend.NewSecretStore(pairs)),
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, service)
	srv.Config.Handler = handler.Router()
	srv.Start()

	client, err := galleryclient.New(&galleryclient.Config{Endpoint: srv.URL})
	require.NoError(t, err)

	return &testGallery{URL: srv.URL, Root: root, Store: store, Client: client}
}

// put writes one variant of an image into the bucket.
func (g *testGallery) put(t *testing.T, res galleria.Resolution, filename, content string) {
	t.Helper()
	ref := galleria.ImageRef{Directory: testDirectory, Filename: filename, Resolution: res}
	_, err := g.Store.Write(context.Background(), ref.Key(), bytes.NewReader([]byte(content)))
	require.NoError(t, err)
}

// putBoth writes both variants of an image.
func (g *testGallery) putBoth(t *testing.T, filename string) {
	t.Helper()
	g.put(t, galleria.ResolutionThumbnail, filename, "thumb:"+filename)
	g.put(t, galleria.ResolutionOriginal, filename, "full:"+filename)
}

// fetch follows a signed URL and returns the status and body.
func fetch(t *testing.T, rawURL string) (int, string) {
	t.Helper()
	resp, err := http.Get(rawURL) //nolint:gosec,noctx // test URL
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func writeKeyFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "keys-*.json")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}
