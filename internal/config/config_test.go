package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/postdeck/internal/compose"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)
	assert.Equal(t, "/", cfg.Backend.SubmitPath)
	assert.Equal(t, 2*time.Minute, cfg.Backend.HTTPTimeout)
	assert.Equal(t, 20, cfg.Poll.Attempts)
	assert.Equal(t, 3*time.Second, cfg.Poll.Interval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "grid", cfg.Platforms.VKLayout)

	targets := cfg.Targets()
	assert.True(t, targets.Targets[compose.Telegram].Publish)
	assert.False(t, targets.Targets[compose.VK].Publish)
}

func TestOverrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"POSTDECK_BASE_URL":      "https://post.example.com",
		"POSTDECK_POLL_INTERVAL": "500ms",
		"POSTDECK_PUBLISH":       "vk,ok",
		"POSTDECK_CHANNEL_VK":    "club42",
		"POSTDECK_TZ":            "Europe/Moscow",
		"POSTDECK_SIGNATURES":    "-- Team; ;Follow us",
	}))

	require.NoError(t, err)
	assert.Equal(t, "https://post.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, []string{"-- Team", "Follow us"}, cfg.Signatures())

	targets := cfg.Targets()
	assert.False(t, targets.Targets[compose.Telegram].Publish)
	assert.Equal(t, compose.Target{Publish: true, Channel: "club42"}, targets.Targets[compose.VK])
	assert.True(t, targets.Targets[compose.OK].Publish)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", loc.String())
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad zone", env: map[string]string{"POSTDECK_TZ": "Mars/Olympus"}},
		{name: "zero attempts", env: map[string]string{"POSTDECK_POLL_ATTEMPTS": "0"}},
		{name: "unknown platform", env: map[string]string{"POSTDECK_PUBLISH": "myspace"}},
		{name: "bad duration", env: map[string]string{"POSTDECK_POLL_INTERVAL": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(tt.env))
			assert.Error(t, err)
		})
	}
}
