package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestMultiHandler(t *testing.T) {
	var infoBuf, errorBuf bytes.Buffer
	info := slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	errs := slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError})

	logger := slog.New(newMultiHandler(info, errs)).With("component", "test")

	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger.Info("hello")
	logger.WithGroup("req").Error("boom", "status", 500)

	assert.Contains(t, infoBuf.String(), "msg=hello component=test")
	assert.Contains(t, infoBuf.String(), "msg=boom component=test req.status=500")
	assert.NotContains(t, errorBuf.String(), "hello")
	assert.Contains(t, errorBuf.String(), "msg=boom")
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	web := filepath.Join(dir, "web")
	require.NoError(t, os.Mkdir(web, 0o755))

	raw := filepath.Join(dir, "beach.jpg")
	require.NoError(t, os.WriteFile(raw, []byte("raw"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(web, "beach.jpg"), []byte("web"), 0o644))

	t.Run("original only", func(t *testing.T) {
		entries, err := collectImages([]string{raw}, "")
		require.NoError(t, err)
		assert.Equal(t, []imageEntry{{filename: "beach.jpg", original: raw, optimized: raw}}, entries)
	})

	t.Run("optimized dir", func(t *testing.T) {
		entries, err := collectImages([]string{raw}, web)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, filepath.Join(web, "beach.jpg"), entries[0].optimized)
	})

	t.Run("missing optimized copy", func(t *testing.T) {
		_, err := collectImages([]string{raw}, dir+"/nope")
		assert.ErrorContains(t, err, "optimized copy of beach.jpg not found")
	})

	t.Run("directory rejected", func(t *testing.T) {
		_, err := collectImages([]string{web}, "")
		assert.ErrorContains(t, err, "is a directory")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := collectImages([]string{filepath.Join(dir, "missing.jpg")}, "")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
