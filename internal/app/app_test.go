package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/narvanalabs/timeline/internal/dom"
	"github.com/narvanalabs/timeline/internal/timeline"
	"github.com/narvanalabs/timeline/pkg/config"
	"github.com/narvanalabs/timeline/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "data.yaml")
	require.NoError(t, os.WriteFile(data, []byte("- title: A\n  date: 2023-01-01\n"), 0o644))

	icons := filepath.Join(dir, "icons")
	require.NoError(t, os.Mkdir(icons, 0o755))

	return &config.Config{
		DataSource:       data,
		IconsDir:         icons,
		IconsURL:         "icons",
		FetchTimeout:     time.Second,
		IconProbeTimeout: time.Second,
		DataCacheTTL:     time.Minute,
	}
}

func TestNewProber(t *testing.T) {
	t.Run("local icons dir uses the file system", func(t *testing.T) {
		cfg := baseConfig(t)
		assert.IsType(t, &timeline.FSProber{}, NewProber(cfg))
	})

	t.Run("absolute icons URL uses HTTP", func(t *testing.T) {
		cfg := baseConfig(t)
		cfg.IconsURL = "https://cdn.example.com/icons"
		assert.IsType(t, &timeline.HTTPProber{}, NewProber(cfg))
	})

	t.Run("missing icons dir disables probing", func(t *testing.T) {
		cfg := baseConfig(t)
		cfg.IconsDir = filepath.Join(t.TempDir(), "missing")
		assert.Nil(t, NewProber(cfg))
	})
}

func TestPipelineLoadsAndInvalidates(t *testing.T) {
	cfg := baseConfig(t)
	p := New(cfg, logger.Discard())

	path, ok := p.LocalDataFile()
	require.True(t, ok)
	assert.Equal(t, cfg.DataSource, path)

	c := dom.NewContainer("timeline")
	report := p.Loader.Load(context.Background(), c)
	require.NoError(t, report.Err)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, os.WriteFile(cfg.DataSource, []byte("- title: A\n- title: B\n"), 0o644))

	p.Loader.Load(context.Background(), c)
	assert.Equal(t, 1, c.Len(), "cached data should still be served")

	p.Invalidate()
	p.Loader.Load(context.Background(), c)
	assert.Equal(t, 2, c.Len(), "invalidate should force a fresh fetch")
}

func TestRemoteSourceHasNoLocalFile(t *testing.T) {
	cfg := baseConfig(t)
	cfg.DataSource = "https://example.com/data.yaml"

	_, ok := New(cfg, logger.Discard()).LocalDataFile()
	assert.False(t, ok)
}
