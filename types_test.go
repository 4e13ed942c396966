package galleria_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sagarc03/galleria"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolution_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		res   galleria.Resolution
		valid bool
	}{
		{name: "thumbnail is valid", res: galleria.ResolutionThumbnail, valid: true},
		{name: "original is valid", res: galleria.ResolutionOriginal, valid: true},
		{name: "empty is invalid", res: "", valid: false},
		{name: "folder name is not a resolution", res: "optimized", valid: false},
		{name: "uppercase is invalid", res: "ORIGINAL", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.res.IsValid())
		})
	}
}

func TestParseResolution(t *testing.T) {
	res, err := galleria.ParseResolution("original")
	require.NoError(t, err)
	assert.Equal(t, galleria.ResolutionOriginal, res)

	_, err = galleria.ParseResolution("full")
	assert.Error(t, err)
}

func TestImageRef_Key(t *testing.T) {
	tests := []struct {
		name string
		ref  galleria.ImageRef
		want string
	}{
		{
			name: "thumbnail maps to optimized folder",
			ref:  galleria.ImageRef{Directory: "summer", Filename: "beach.jpg", Resolution: galleria.ResolutionThumbnail},
			want: "summer/optimized/beach.jpg",
		},
		{
			name: "original maps to original folder",
			ref:  galleria.ImageRef{Directory: "summer", Filename: "beach.jpg", Resolution: galleria.ResolutionOriginal},
			want: "summer/original/beach.jpg",
		},
		{
			name: "empty resolution defaults to optimized",
			ref:  galleria.ImageRef{Directory: "summer", Filename: "beach.jpg"},
			want: "summer/optimized/beach.jpg",
		},
		{
			name: "nested directory",
			ref:  galleria.ImageRef{Directory: "trips/2023", Filename: "a.png", Resolution: galleria.ResolutionOriginal},
			want: "trips/2023/original/a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.Key())
		})
	}
}

func TestIssueRequest_Ref(t *testing.T) {
	req := galleria.IssueRequest{Directory: "d", Filename: "f.jpg", Original: true}
	assert.Equal(t, "d/original/f.jpg", req.Ref().Key())

	req.Original = false
	assert.Equal(t, "d/optimized/f.jpg", req.Ref().Key())
}

func TestImageRef_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ref     galleria.ImageRef
		wantErr bool
	}{
		{name: "valid", ref: galleria.ImageRef{Directory: "summer", Filename: "beach.jpg"}},
		{name: "filename with space", ref: galleria.ImageRef{Directory: "summer", Filename: "IMG 001.jpg"}},
		{name: "missing directory", ref: galleria.ImageRef{Filename: "beach.jpg"}, wantErr: true},
		{name: "missing filename", ref: galleria.ImageRef{Directory: "summer"}, wantErr: true},
		{name: "traversal in directory", ref: galleria.ImageRef{Directory: "../secret", Filename: "a.jpg"}, wantErr: true},
		{name: "slash in filename", ref: galleria.ImageRef{Directory: "summer", Filename: "optimized/a.jpg"}, wantErr: true},
		{name: "bad resolution", ref: galleria.ImageRef{Directory: "summer", Filename: "a.jpg", Resolution: "huge"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, galleria.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStoreConfig_Validate(t *testing.T) {
	valid := galleria.StoreConfig{ProjectID: "proj", Bucket: "photos", Credentials: "{}"}

	tests := []struct {
		name        string
		mutate      func(c *galleria.StoreConfig)
		wantErr     bool
		wantMessage string
	}{
		{name: "valid inline credentials", mutate: func(c *galleria.StoreConfig) {}},
		{name: "valid key file", mutate: func(c *galleria.StoreConfig) { c.Credentials = ""; c.KeyFile = "/k.json" }},
		{name: "missing project", mutate: func(c *galleria.StoreConfig) { c.ProjectID = "" }, wantErr: true, wantMessage: "project_id"},
		{name: "missing bucket", mutate: func(c *galleria.StoreConfig) { c.Bucket = "" }, wantErr: true, wantMessage: "bucket"},
		{name: "missing credentials", mutate: func(c *galleria.StoreConfig) { c.Credentials = "" }, wantErr: true, wantMessage: "key_file or credentials"},
		{name: "valid cdn host", mutate: func(c *galleria.StoreConfig) { c.CDNHost = "https://cdn.example.com" }},
		{name: "cdn host with path", mutate: func(c *galleria.StoreConfig) { c.CDNHost = "https://cdn.example.com/img" }, wantErr: true, wantMessage: "cdn host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, galleria.ErrConfigMissing)
			assert.Contains(t, err.Error(), tt.wantMessage)
		})
	}
}

func TestStoreConfig_LoadCredentials(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		data, err := galleria.StoreConfig{Credentials: `{"a":1}`}.LoadCredentials()
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(data))
	})

	t.Run("key file preferred", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "key.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"file":true}`), 0o600))

		data, err := galleria.StoreConfig{KeyFile: path, Credentials: `{"a":1}`}.LoadCredentials()
		require.NoError(t, err)
		assert.Equal(t, `{"file":true}`, string(data))
	})

	t.Run("unreadable key file", func(t *testing.T) {
		_, err := galleria.StoreConfig{KeyFile: filepath.Join(t.TempDir(), "nope.json")}.LoadCredentials()
		assert.ErrorIs(t, err, galleria.ErrCredentialParse)
	})
}
