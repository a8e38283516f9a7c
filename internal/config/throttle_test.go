package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cerebrum/internal/cognition"
)

func TestThrottleFileLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "throttle.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"enabled":true,"max_per_minute":10,"adaptive":true,"perf_threshold":0.4}`), 0644))

	tf := NewThrottleFile(path)
	cfg, err := tf.Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxPerMinute)
	assert.True(t, cfg.Adaptive)
}

func TestThrottleFileMissingFallsBackToDefaults(t *testing.T) {
	tf := NewThrottleFile(filepath.Join(t.TempDir(), "absent.json"))
	cfg, err := tf.Load()
	assert.Error(t, err)
	assert.Equal(t, cognition.DefaultThrottleConfig(), cfg)
}

func TestThrottleFileKeepsLastGood(t *testing.T) {
	path := filepath.Join(t.TempDir(), "throttle.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"enabled":true,"max_per_minute":10}`), 0644))

	tf := NewThrottleFile(path)
	_, err := tf.Load()
	require.NoError(t, err)

	// corrupt the file; the last good config survives
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))
	cfg, err := tf.Load()
	assert.Error(t, err)
	assert.Equal(t, 10, cfg.MaxPerMinute)
}
