// Package config loads ChatSphere settings from defaults, an optional TOML
// file, an optional .env file and CHATSPHERE_* environment variables, in
// that order of precedence (last wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/papercomputeco/chatsphere/pkg/backend"
	"github.com/papercomputeco/chatsphere/pkg/prompt"
	"github.com/papercomputeco/chatsphere/pkg/session"
	"github.com/papercomputeco/chatsphere/pkg/speech"
)

const (
	// DefaultPath is read when no --config path is given and the file exists.
	DefaultPath = "chatsphere.toml"

	// DefaultEnvFile is read when it exists. It never overrides variables
	// already set in the environment.
	DefaultEnvFile = ".env"

	envPrefix = "CHATSPHERE_"
)

// Config is the complete runtime configuration.
type Config struct {
	// Persona is the assistant's name in the system prompt and transcript.
	Persona string `toml:"persona" env:"PERSONA"`

	// RecordUserOnFailure keeps the user's utterance in the transcript when
	// the backend call fails.
	RecordUserOnFailure bool `toml:"record_user_on_failure" env:"RECORD_USER_ON_FAILURE"`

	Backend BackendConfig `toml:"backend" envPrefix:"BACKEND_"`
	Speech  SpeechConfig  `toml:"speech" envPrefix:"SPEECH_"`
	UI      UIConfig      `toml:"ui" envPrefix:"UI_"`
	Log     LogConfig     `toml:"log" envPrefix:"LOG_"`
}

// BackendConfig selects and parameterizes the model backend.
type BackendConfig struct {
	Kind        string  `toml:"kind" env:"KIND"` // "hosted" or "local"
	Model       string  `toml:"model" env:"MODEL"`
	URL         string  `toml:"url" env:"URL"`
	APIKey      string  `toml:"api_key" env:"API_KEY"`
	Temperature float64 `toml:"temperature" env:"TEMPERATURE"`
	MaxTokens   int     `toml:"max_tokens" env:"MAX_TOKENS"`
}

// SpeechConfig controls the optional microphone input.
type SpeechConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Command string `toml:"command" env:"COMMAND"`
	Model   string `toml:"model" env:"MODEL"`
	URL     string `toml:"url" env:"URL"`
	APIKey  string `toml:"api_key" env:"API_KEY"`
}

// UIConfig holds presentation settings shared by the surfaces.
type UIConfig struct {
	Theme  string `toml:"theme" env:"THEME"`
	Listen string `toml:"listen" env:"LISTEN"`
}

// LogConfig controls logging.
type LogConfig struct {
	Debug bool   `toml:"debug" env:"DEBUG"`
	File  string `toml:"file" env:"FILE"`
}

// Default returns the built-in configuration: a local model server with
// temperature 0.5 and a 256-token cap.
func Default() Config {
	return Config{
		Persona:             prompt.DefaultPersona,
		RecordUserOnFailure: true,
		Backend: BackendConfig{
			Kind:        string(backend.KindLocal),
			Model:       "llama3",
			Temperature: 0.5,
			MaxTokens:   256,
		},
		Speech: SpeechConfig{
			Enabled: true,
			Command: speech.DefaultRecordCommand,
			Model:   speech.DefaultTranscriptionModel,
		},
		UI: UIConfig{
			Theme:  string(session.ThemeDark),
			Listen: ":8501",
		},
	}
}

// LoadOptions locate the optional files. Empty fields use the defaults,
// which are skipped silently when absent.
type LoadOptions struct {
	Path    string
	EnvFile string
}

// Load builds a Config. An explicitly named file that does not exist is an
// error; the default files are optional.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	path, required := opts.Path, true
	if path == "" {
		path, required = DefaultPath, false
	}
	if err := decodeFile(path, required, &cfg); err != nil {
		return Config{}, err
	}

	envFile, required := opts.EnvFile, true
	if envFile == "" {
		envFile, required = DefaultEnvFile, false
	}
	if err := godotenv.Load(envFile); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	applyCredentialFallbacks(&cfg)

	return cfg, nil
}

func decodeFile(path string, required bool, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// applyCredentialFallbacks accepts the variable names the providers document.
func applyCredentialFallbacks(cfg *Config) {
	if cfg.Backend.APIKey == "" {
		cfg.Backend.APIKey = os.Getenv("HUGGINGFACEHUB_API_TOKEN")
	}
	if cfg.Speech.APIKey == "" {
		cfg.Speech.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch backend.Kind(c.Backend.Kind) {
	case backend.KindHosted:
		if c.Backend.APIKey == "" {
			return fmt.Errorf("backend.api_key (or HUGGINGFACEHUB_API_TOKEN) is required when backend.kind=hosted")
		}
	case backend.KindLocal:
	default:
		return fmt.Errorf("invalid backend.kind: %q (valid options: hosted, local)", c.Backend.Kind)
	}

	if c.Backend.Model == "" {
		return fmt.Errorf("backend.model is required")
	}
	if c.Backend.Temperature < 0 || c.Backend.Temperature > 2 {
		return fmt.Errorf("backend.temperature must be between 0 and 2, got %v", c.Backend.Temperature)
	}
	if c.Backend.MaxTokens <= 0 {
		return fmt.Errorf("backend.max_tokens must be positive, got %d", c.Backend.MaxTokens)
	}
	if _, err := session.ParseTheme(c.UI.Theme); err != nil {
		return fmt.Errorf("ui.theme: %w", err)
	}
	return nil
}

// Theme returns the parsed UI theme, falling back to dark.
func (c Config) Theme() session.Theme {
	t, err := session.ParseTheme(c.UI.Theme)
	if err != nil {
		return session.ThemeDark
	}
	return t
}

// BackendParams converts the backend section into backend.Params.
func (c Config) BackendParams() backend.Params {
	return backend.Params{
		Model:       c.Backend.Model,
		Temperature: c.Backend.Temperature,
		MaxTokens:   c.Backend.MaxTokens,
	}
}
