package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/config"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/watcher"
)

func TestEffectiveInterval_SubMinimumOverrideIsClamped(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	got := effectiveInterval(cfg, 500*time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, got)

	// the override never reaches the config, so it still validates
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30, cfg.Watch.IntervalSec)

	w := watcher.New(nil, watcher.Options{FetchInterval: got}, nil)
	assert.Equal(t, watcher.MinFetchInterval, w.FetchInterval())
}

func TestEffectiveInterval_FallsBackToConfig(t *testing.T) {
	cfg := &config.Config{Watch: config.WatchConfig{IntervalSec: 45}}

	assert.Equal(t, 45*time.Second, effectiveInterval(cfg, 0))
	assert.Equal(t, time.Minute, effectiveInterval(cfg, time.Minute))
}
