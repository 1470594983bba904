package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config is the pipeline configuration surface.
type Config struct {
	// Timeout overrides the default AI budget when positive.
	Timeout       time.Duration `json:"-"`
	TimeoutString string        `json:"timeout"`
	// MarkdownOnly suppresses the JSON artifact mirror.
	MarkdownOnly bool `json:"markdown_only"`
	// MaxConcurrency bounds collector fan-out across competitors.
	MaxConcurrency int `json:"max_concurrency"`
}

func (c Config) Merge(override Config) Config {
	result := c
	if override.Timeout > 0 {
		result.Timeout = override.Timeout
	}
	if strings.TrimSpace(override.TimeoutString) != "" {
		result.TimeoutString = strings.TrimSpace(override.TimeoutString)
	}
	if override.MarkdownOnly {
		result.MarkdownOnly = true
	}
	if override.MaxConcurrency > 0 {
		result.MaxConcurrency = override.MaxConcurrency
	}
	return result
}

// LoadConfig layers an optional JSON config file (REPORT_CONFIG_FILE) under
// environment overrides and applies defaults.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("REPORT_CONFIG_FILE")); path != "" {
		fileCfg, err := loadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	envCfg, err := loadConfigEnv()
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.Merge(envCfg)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		if c.TimeoutString != "" {
			if parsed, err := time.ParseDuration(c.TimeoutString); err == nil {
				c.Timeout = parsed
			}
		}
		if c.Timeout <= 0 {
			c.Timeout = DefaultTimeout
		}
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 4
	}
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read report config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse report config: %w", err)
	}
	return cfg, nil
}

func loadConfigEnv() (Config, error) {
	cfg := Config{}
	if raw := strings.TrimSpace(os.Getenv("REPORT_TIMEOUT")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse REPORT_TIMEOUT: %w", err)
		}
		cfg.TimeoutString = raw
		cfg.Timeout = parsed
	}
	if raw := strings.TrimSpace(os.Getenv("REPORT_MARKDOWN_ONLY")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse REPORT_MARKDOWN_ONLY: %w", err)
		}
		cfg.MarkdownOnly = parsed
	}
	if raw := strings.TrimSpace(os.Getenv("REPORT_MAX_CONCURRENCY")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse REPORT_MAX_CONCURRENCY: %w", err)
		}
		if parsed > 0 {
			cfg.MaxConcurrency = parsed
		}
	}
	return cfg, nil
}
