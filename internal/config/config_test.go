package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8888, cfg.Server.Port)
	assert.True(t, cfg.HTTP.Enabled)
	assert.Equal(t, 8088, cfg.HTTP.Port)
	assert.Equal(t, ProfileClassic, cfg.Chat.Profile)
	assert.Equal(t, "general", cfg.Chat.DefaultRoom)
	assert.Equal(t, 4096, cfg.Chat.MaxFrameSize)
	assert.Equal(t, 256, cfg.Chat.SendBuffer)
	assert.Equal(t, 10*time.Second, cfg.Chat.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("CHAT_PROFILE", ProfileEnvelope)
	t.Setenv("CHAT_DEFAULT_ROOM", "lobby")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, ProfileEnvelope, cfg.Chat.Profile)
	assert.Equal(t, "lobby", cfg.Chat.DefaultRoom)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsUnknownProfile(t *testing.T) {
	t.Setenv("CHAT_PROFILE", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown chat profile")
}
