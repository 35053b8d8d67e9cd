// Package config loads labos configuration from built-in defaults and
// LABOS_* environment variables.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/HendryAvila/labos/internal/chat"
	"github.com/HendryAvila/labos/internal/logger"
	"github.com/HendryAvila/labos/internal/session"
	"github.com/HendryAvila/labos/internal/verify"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LABOS_"

// LegacyAPIKeyEnv is honored when LABOS_CHAT_API_KEY is unset.
const LegacyAPIKeyEnv = "OPENROUTER_API_KEY"

// ─── Types ───────────────────────────────────────────────────────────────────

// Config is the complete runtime configuration.
type Config struct {
	DataDir  string         `koanf:"data_dir" validate:"required"`
	Log      LogConfig      `koanf:"log"`
	Chat     ChatConfig     `koanf:"chat"`
	Verify   VerifyConfig   `koanf:"verify"`
	Corpus   CorpusConfig   `koanf:"corpus"`
	Terminal TerminalConfig `koanf:"terminal"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error disabled"`
	JSON  bool   `koanf:"json"`
}

type ChatConfig struct {
	Endpoint    string        `koanf:"endpoint" validate:"required,url"`
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model" validate:"required"`
	Temperature float64       `koanf:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `koanf:"max_tokens" validate:"gt=0"`
	SiteURL     string        `koanf:"site_url"`
	SiteName    string        `koanf:"site_name"`
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
}

type VerifyConfig struct {
	Endpoint   string        `koanf:"endpoint" validate:"required,url"`
	Timeout    time.Duration `koanf:"timeout" validate:"gt=0"`
	SessionCap int           `koanf:"session_cap" validate:"gte=1"`
}

// CorpusConfig selects the content bundle. An empty Path uses the embedded
// corpus; ChunksDir optionally adds markdown knowledge chunks.
type CorpusConfig struct {
	Path      string `koanf:"path"`
	ChunksDir string `koanf:"chunks_dir"`
}

// TerminalConfig identifies the persisted terminal state. An empty
// SessionID starts a fresh session.
type TerminalConfig struct {
	SettingsKey string `koanf:"settings_key" validate:"required"`
	SessionID   string `koanf:"session_id"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	c, v := chat.DefaultConfig(), verify.DefaultConfig()
	return Config{
		DataDir: filepath.Join(home, ".labos"),
		Log:     LogConfig{Level: string(logger.InfoLevel)},
		Chat: ChatConfig{
			Endpoint:    c.Endpoint,
			Model:       c.Model,
			Temperature: c.Temperature,
			MaxTokens:   c.MaxTokens,
			SiteURL:     c.SiteURL,
			SiteName:    c.SiteName,
			Timeout:     c.Timeout,
		},
		Verify: VerifyConfig{
			Endpoint:   v.Endpoint,
			Timeout:    v.Timeout,
			SessionCap: session.DefaultVerifyCap,
		},
		Terminal: TerminalConfig{SettingsKey: session.SettingsKey},
	}
}

// ─── Loading ─────────────────────────────────────────────────────────────────

// Load layers defaults, the legacy API key variable and LABOS_* variables,
// then validates the result.
func Load(ctx context.Context) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	legacy := env.Provider(".", env.Opt{
		Prefix: LegacyAPIKeyEnv,
		TransformFunc: func(key, value string) (string, any) {
			if key != LegacyAPIKeyEnv || value == "" {
				return "", nil
			}
			return "chat.api_key", value
		},
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, fmt.Errorf("config: load %s: %w", LegacyAPIKeyEnv, err)
	}

	prefixed := env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return envPath(k, key), value
		},
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Debug("config loaded", "data_dir", cfg.DataDir, "model", cfg.Chat.Model)
	return &cfg, nil
}

// envPath maps LABOS_CHAT_API_KEY to chat.api_key. Top-level keys that
// contain an underscore, like data_dir, are matched as a whole first.
func envPath(k *koanf.Koanf, key string) string {
	s := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if s == "" {
		return ""
	}
	if k.Exists(s) {
		return s
	}
	section, rest, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + rest
}

// Validate checks cfg against its field constraints.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config: validate: %w", err)
	}
	return nil
}

// ─── Component configs ───────────────────────────────────────────────────────

// ChatClient returns the chat client configuration.
func (c *Config) ChatClient() chat.Config {
	out := chat.DefaultConfig()
	out.Endpoint = c.Chat.Endpoint
	out.APIKey = c.Chat.APIKey
	out.Model = c.Chat.Model
	out.Temperature = c.Chat.Temperature
	out.MaxTokens = c.Chat.MaxTokens
	out.SiteURL = c.Chat.SiteURL
	out.SiteName = c.Chat.SiteName
	out.Timeout = c.Chat.Timeout
	return out
}

// VerifyClient returns the web verifier configuration.
func (c *Config) VerifyClient() verify.Config {
	return verify.Config{Endpoint: c.Verify.Endpoint, Timeout: c.Verify.Timeout}
}

// Store returns the session store configuration.
func (c *Config) Store() session.StoreConfig {
	out := session.DefaultStoreConfig()
	out.DataDir = c.DataDir
	return out
}

// Logger returns the logger configuration.
func (c *Config) Logger() logger.Config {
	out := logger.DefaultConfig()
	out.Level = logger.ParseLevel(c.Log.Level)
	out.JSON = c.Log.JSON
	return out
}
