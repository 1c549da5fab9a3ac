package scenario

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "scenario-test", cfg.App.Name)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 5.0, cfg.Kernel.TakerFeeBps)
	assert.Equal(t, 0.5, cfg.Kernel.TickSize)
	assert.Equal(t, 256, cfg.Kernel.Capacity)
	assert.Equal(t, int64(42), cfg.Feed.Seed)
	assert.Equal(t, 1000, cfg.Feed.Ticks)
	assert.Equal(t, "random_quoter", cfg.Strategy.Mode)
	assert.Equal(t, int64(5), cfg.Strategy.RangeTicks)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(path, cfg))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}
