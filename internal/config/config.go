package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings vitrina needs to reach the storefront API.
type Config struct {
	APIBase        string
	RequestTimeout time.Duration
	RefreshEvery   time.Duration
}

const (
	defaultConfigPath     = "~/.config/vitrina/config.toml"
	defaultAPIBase        = "127.0.0.1:8000"
	defaultRequestTimeout = 10 * time.Second
	defaultRefreshEvery   = 30 * time.Second
)

// Load locates and parses the config file, falling back to defaults when
// missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIBase:        defaultAPIBase,
		RequestTimeout: defaultRequestTimeout,
		RefreshEvery:   defaultRefreshEvery,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase        string `toml:"api_base"`
		RequestTimeout int    `toml:"request_timeout"`
		Refresh        int    `toml:"refresh"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.APIBase = strings.TrimSpace(raw.APIBase)
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if raw.RequestTimeout > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeout) * time.Second
	}
	if raw.Refresh > 0 {
		cfg.RefreshEvery = time.Duration(raw.Refresh) * time.Second
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
