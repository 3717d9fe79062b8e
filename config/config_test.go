package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNewConfigFrom_Defaults(t *testing.T) {
	t.Setenv("DIFY_API_KEY", "")
	c, err := NewConfigFrom(writeConfig(t, "port: \":9000\"\n"))
	require.NoError(t, err)

	assert.Equal(t, ":9000", c.Port)
	assert.Equal(t, "dify", c.Chat.Provider)
	assert.Equal(t, "https://api.dify.ai/v1", c.Chat.Dify.BaseUrl)
	assert.Equal(t, "r69-user", c.Chat.Dify.User)
	assert.Equal(t, 2.0, c.Chat.RateLimit)
	assert.Equal(t, 5, c.Chat.Burst)
	assert.Equal(t, 50*time.Millisecond, c.Character.SettleDelay)
	assert.Equal(t, 5*time.Second, c.Character.ReadyTimeout)
	assert.Equal(t, 30*time.Second, c.Character.TransitionTimeout)
	assert.Equal(t, 3*time.Second, c.Character.GestureTier1)
	assert.Equal(t, 6*time.Second, c.Character.GestureTier2)
	assert.Equal(t, []string{"castoff", "change"}, c.Command.Exact)
	assert.Equal(t, "すみません、エラーが発生しました", c.Phrases.Error)
}

func TestNewConfigFrom_FileAndEnv(t *testing.T) {
	t.Setenv("DIFY_API_KEY", "app-secret")
	c, err := NewConfigFrom(writeConfig(t, `
chat:
  dify:
    base_url: http://dify.local/v1
character:
  settle_delay: 0s
  gesture_tier1: 1500ms
  clips:
    normal:
      idle: normal/loop.mp4
`))
	require.NoError(t, err)

	assert.Equal(t, "app-secret", c.Chat.Dify.ApiKey)
	assert.Equal(t, "http://dify.local/v1", c.Chat.Dify.BaseUrl)
	assert.Zero(t, c.Character.SettleDelay)
	assert.Equal(t, 1500*time.Millisecond, c.Character.GestureTier1)
	assert.Equal(t, "normal/loop.mp4", c.Character.Clips["normal"]["idle"])
}

func TestNewConfigFrom_MissingExplicitFile(t *testing.T) {
	_, err := NewConfigFrom(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
