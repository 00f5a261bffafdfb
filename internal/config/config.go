package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the only persisted config file schema.
type Config struct {
	GatewayURL       string `toml:"gateway_url"`
	Token            string `toml:"token"`
	Agent            string `toml:"agent"` // claude|codex|gemini
	SandboxTimeoutMS int64  `toml:"sandbox_timeout_ms"`
	InputDir         string `toml:"input_dir"`
	OutputDir        string `toml:"output_dir"`
	Source           string `toml:"-"`
}

func Default() Config {
	return Config{
		Agent:            "claude",
		SandboxTimeoutMS: int64(time.Hour / time.Millisecond),
		InputDir:         "input",
		OutputDir:        "output",
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".factotum", "config.toml")
}

// Load reads the config file (DefaultPath when path is empty) and applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv("FACTOTUM_GATEWAY_URL")); env != "" {
		cfg.GatewayURL = env
	}
	if env := strings.TrimSpace(os.Getenv("FACTOTUM_TOKEN")); env != "" {
		cfg.Token = env
	}
	if env := strings.TrimSpace(os.Getenv("FACTOTUM_AGENT")); env != "" {
		cfg.Agent = env
	}
	return cfg
}

// SandboxTimeout returns the configured sandbox lifetime.
func (c Config) SandboxTimeout() time.Duration {
	if c.SandboxTimeoutMS <= 0 {
		return time.Hour
	}
	return time.Duration(c.SandboxTimeoutMS) * time.Millisecond
}
