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
	path := filepath.Join(t.TempDir(), "vtuber.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, v, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NotNil(t, v)

	def := Default()
	assert.Equal(t, def.Window, cfg.Window)
	assert.Equal(t, def.Effects, cfg.Effects)
	assert.Equal(t, def.Speech.Keywords, cfg.Speech.Keywords)
	assert.Equal(t, def.Chat.Keywords, cfg.Chat.Keywords)
	assert.Equal(t, 2*time.Second, cfg.UI.SplashDuration)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
audio:
  threshold: 0.05
speech:
  keywords: [cute, wow]
  backoff: 250ms
effects:
  hearts: 10
  sparkles: 5
avatar:
  default_model: neko
chat:
  url: ws://127.0.0.1:9000/chat
  keywords:
    - keyword: kitty
      model: neko
log:
  level: debug
`)

	cfg, _, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.05, cfg.Audio.Threshold, 1e-9)
	assert.Equal(t, []string{"cute", "wow"}, cfg.Speech.Keywords)
	assert.Equal(t, 250*time.Millisecond, cfg.Speech.Backoff)
	assert.Equal(t, 10, cfg.Effects.Hearts)
	assert.Equal(t, 5, cfg.Effects.Sparkles)
	assert.Equal(t, 180, cfg.Effects.GlowDuration, "unset keys keep defaults")
	assert.Equal(t, "neko", cfg.Avatar.DefaultModel)
	assert.Equal(t, "ws://127.0.0.1:9000/chat", cfg.Chat.URL)
	assert.Equal(t, []ChatKeyword{{Keyword: "kitty", Model: "neko"}}, cfg.Chat.Keywords)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VTUBER_AVATAR_DEFAULT_MODEL", "evil")

	cfg, _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "evil", cfg.Avatar.DefaultModel)
}

func TestLoad_InvalidFileRejected(t *testing.T) {
	path := writeConfig(t, `
audio:
  threshold: 3
log:
  level: loud
`)

	_, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio.threshold")
	assert.Contains(t, err.Error(), "log.level")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero window",
			mutate:  func(c *Config) { c.Window.Width = 0 },
			wantErr: "window size",
		},
		{
			name:    "zero threshold",
			mutate:  func(c *Config) { c.Audio.Threshold = 0 },
			wantErr: "audio.threshold",
		},
		{
			name:    "no glow",
			mutate:  func(c *Config) { c.Effects.GlowDuration = 0 },
			wantErr: "effects.glow_duration",
		},
		{
			name:    "negative hearts",
			mutate:  func(c *Config) { c.Effects.Hearts = -1 },
			wantErr: "must not be negative",
		},
		{
			name:    "cap below burst",
			mutate:  func(c *Config) { c.Effects.MaxParticles = 50 },
			wantErr: "effects.max_particles",
		},
		{
			name:    "no default model",
			mutate:  func(c *Config) { c.Avatar.DefaultModel = "" },
			wantErr: "avatar.default_model",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
