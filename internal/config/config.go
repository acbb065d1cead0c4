// Package config loads relicctl's application configuration: the resource
// directory holding static game data, and default optimizer parameters,
// following a global-then-project-then-CLI precedence chain.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Sentinel errors surfaced while loading configuration.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("failed to read config file")
	ErrConfigInvalid      = errors.New("invalid config")
	ErrResourceDirEmpty   = errors.New("resource_dir must not be empty")
)

// Config holds relicctl's runtime configuration.
type Config struct {
	ResourceDir      string `json:"resource_dir"`       //nolint:tagliatelle // snake_case for config file
	DefaultTopN      int    `json:"default_top_n"`      //nolint:tagliatelle // snake_case for config file
	DefaultMaxVessel int    `json:"default_max_vessel"` //nolint:tagliatelle // snake_case for config file
	DeadlineMillis   int    `json:"deadline_millis"`    //nolint:tagliatelle // snake_case for config file
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".relicctl.json"

// DefaultConfig returns the configuration used when no config file
// overrides a field.
func DefaultConfig() Config {
	return Config{
		ResourceDir:      "resources",
		DefaultTopN:      5,
		DefaultMaxVessel: 3,
		DeadlineMillis:   2000,
	}
}

// Sources tracks which config files contributed to a loaded Config.
type Sources struct {
	Global  string
	Project string
}

// getGlobalConfigPath returns ~/.config/relicctl/config.json, honoring
// XDG_CONFIG_HOME in env (checked before os.Getenv so callers can inject a
// deterministic environment in tests).
func getGlobalConfigPath(env []string) string {
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok {
			return filepath.Join(after, "relicctl", "config.json")
		}
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "relicctl", "config.json")
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".config", "relicctl", "config.json")
	}

	return ""
}

// Load resolves configuration with the following precedence (highest
// wins): defaults, global user config, project config (or an explicit
// path), CLI overrides.
func Load(workDir, explicitPath string, overrides Config, hasResourceDirOverride bool, env []string) (Config, Sources, error) {
	cfg := DefaultConfig()

	var sources Sources

	globalCfg, globalPath, err := loadGlobalConfig(env)
	if err != nil {
		return Config{}, Sources{}, err
	}

	sources.Global = globalPath
	cfg = merge(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, explicitPath)
	if err != nil {
		return Config{}, Sources{}, err
	}

	sources.Project = projectPath
	cfg = merge(cfg, projectCfg)

	if hasResourceDirOverride {
		cfg.ResourceDir = overrides.ResourceDir
	}

	if err := validate(cfg); err != nil {
		return Config{}, Sources{}, err
	}

	return cfg, sources, nil
}

func loadGlobalConfig(env []string) (Config, string, error) {
	path := getGlobalConfigPath(env)
	if path == "" {
		return Config{}, "", nil
	}

	cfg, loaded, err := loadConfigFile(path, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	return cfg, path, nil
}

func loadProjectConfig(workDir, explicitPath string) (Config, string, error) {
	var path string

	mustExist := explicitPath != ""

	if mustExist {
		path = explicitPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		if _, err := os.Stat(path); err != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, explicitPath)
		}
	} else {
		path = filepath.Join(workDir, ConfigFileName)
	}

	cfg, loaded, err := loadConfigFile(path, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	return cfg, path, nil
}

func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		if mustExist {
			return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return Config{}, false, nil
	}

	cfg, err := parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.ResourceDir != "" {
		base.ResourceDir = overlay.ResourceDir
	}

	if overlay.DefaultTopN != 0 {
		base.DefaultTopN = overlay.DefaultTopN
	}

	if overlay.DefaultMaxVessel != 0 {
		base.DefaultMaxVessel = overlay.DefaultMaxVessel
	}

	if overlay.DeadlineMillis != 0 {
		base.DeadlineMillis = overlay.DeadlineMillis
	}

	return base
}

func validate(cfg Config) error {
	if cfg.ResourceDir == "" {
		return ErrResourceDirEmpty
	}

	return nil
}

// Format renders cfg as indented JSON.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}
