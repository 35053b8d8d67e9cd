package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/labos/internal/logger"
	"github.com/HendryAvila/labos/internal/session"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(LegacyAPIKeyEnv, "")
	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, "openai/gpt-oss-120b", cfg.Chat.Model)
	assert.Equal(t, session.DefaultVerifyCap, cfg.Verify.SessionCap)
	assert.Equal(t, session.SettingsKey, cfg.Terminal.SettingsKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LABOS_DATA_DIR", dir)
	t.Setenv("LABOS_CHAT_MODEL", "test/model")
	t.Setenv("LABOS_CHAT_TEMPERATURE", "0.2")
	t.Setenv("LABOS_CHAT_MAX_TOKENS", "64")
	t.Setenv("LABOS_VERIFY_TIMEOUT", "3s")
	t.Setenv("LABOS_LOG_LEVEL", "debug")
	t.Setenv("LABOS_LOG_JSON", "true")
	t.Setenv("LABOS_TERMINAL_SESSION_ID", "abc")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "test/model", cfg.Chat.Model)
	assert.InDelta(t, 0.2, cfg.Chat.Temperature, 1e-9)
	assert.Equal(t, 64, cfg.Chat.MaxTokens)
	assert.Equal(t, 3*time.Second, cfg.Verify.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "abc", cfg.Terminal.SessionID)
}

func TestLoad_APIKey(t *testing.T) {
	t.Run("Should accept the legacy variable", func(t *testing.T) {
		t.Setenv(LegacyAPIKeyEnv, "legacy-key")
		cfg, err := Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "legacy-key", cfg.Chat.APIKey)
	})

	t.Run("Should prefer the prefixed variable", func(t *testing.T) {
		t.Setenv(LegacyAPIKeyEnv, "legacy-key")
		t.Setenv("LABOS_CHAT_API_KEY", "new-key")
		cfg, err := Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "new-key", cfg.Chat.APIKey)
	})
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"LABOS_LOG_LEVEL":         "loud",
		"LABOS_CHAT_TEMPERATURE":  "5",
		"LABOS_CHAT_ENDPOINT":     "not a url",
		"LABOS_VERIFY_SESSION_CAP": "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config: validate")
		})
	}
}

func TestComponentConfigs(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/tmp/labos-test"
	cfg.Chat.APIKey = "k"
	cfg.Log.Level = "warn"

	assert.Equal(t, "k", cfg.ChatClient().APIKey)
	assert.Equal(t, cfg.Chat.Endpoint, cfg.ChatClient().Endpoint)
	assert.Equal(t, cfg.Verify.Endpoint, cfg.VerifyClient().Endpoint)
	assert.Equal(t, "/tmp/labos-test", cfg.Store().DataDir)
	assert.Equal(t, logger.WarnLevel, cfg.Logger().Level)
}
