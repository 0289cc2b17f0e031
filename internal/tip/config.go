package tip

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	DBPath  string `json:"db_path"`
	TmpPath string `json:"tmp_path"`
	DataDir string `json:"data_dir"`
	Editor  string `json:"editor,omitempty"`
	Theme   string `json:"theme,omitempty"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global   string // Path to global config if loaded, empty otherwise
	Explicit string // Path to -c/--config file if given, empty otherwise
}

// Default paths, relative to the home directory.
const (
	defaultDBPath  = "~/.tips/db.yaml"
	defaultTmpPath = "~/.tips/tmp_file.yaml"
	defaultDataDir = "~/.tips/data"
	defaultTheme   = "solarized-dark"
)

// DefaultConfig returns the default configuration. Paths are unresolved.
func DefaultConfig() Config {
	return Config{
		DBPath:  defaultDBPath,
		TmpPath: defaultTmpPath,
		DataDir: defaultDataDir,
		Theme:   defaultTheme,
	}
}

// GlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/tips/config.json if set, otherwise ~/.config/tips/config.json.
// Returns empty string if home directory cannot be determined.
func GlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "tips", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "tips", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	ConfigPath      string            // -c/--config flag value
	DBOverride      string            // --db flag value; empty means no override
	DataDirOverride string            // --data-dir flag value; empty means no override
	Env             map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/tips/config.json or $XDG_CONFIG_HOME/tips/config.json)
// 3. Explicit config file via ConfigPath (if non-empty, must exist)
// 4. CLI overrides.
//
// All paths in the returned Config are absolute. "~/" and relative paths are
// resolved against $HOME.
func LoadConfig(input LoadConfigInput) (Config, error) {
	cfg := DefaultConfig()

	globalPath := GlobalConfigPath(input.Env)
	if globalPath != "" {
		globalCfg, loaded, err := loadConfigFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Sources.Global = globalPath
			cfg = mergeConfig(cfg, globalCfg)
		}
	}

	if input.ConfigPath != "" {
		explicitCfg, _, err := loadConfigFile(input.ConfigPath, true)
		if err != nil {
			return Config{}, err
		}

		cfg.Sources.Explicit = input.ConfigPath
		cfg = mergeConfig(cfg, explicitCfg)
	}

	if input.DBOverride != "" {
		cfg.DBPath = input.DBOverride
	}

	if input.DataDirOverride != "" {
		cfg.DataDir = input.DataDirOverride
	}

	home := input.Env["HOME"]

	for _, path := range []*string{&cfg.DBPath, &cfg.TmpPath, &cfg.DataDir} {
		resolved, err := resolvePath(*path, home)
		if err != nil {
			return Config{}, err
		}

		*path = resolved
	}

	return cfg, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files return zero config.
// Returns the config, whether file was loaded, and any error.
func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}

			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, parseErr := ParseConfig(data)
	if parseErr != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

// ParseConfig parses JSONC config data. Keys that are present must not be empty.
func ParseConfig(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	// Check which path fields were explicitly set to empty
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	for _, key := range []string{"db_path", "tmp_path", "data_dir"} {
		if val, exists := raw[key]; exists {
			if str, ok := val.(string); ok && str == "" {
				return Config{}, fmt.Errorf("%w: %s", ErrPathEmpty, key)
			}
		}
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.DBPath != "" {
		base.DBPath = overlay.DBPath
	}

	if overlay.TmpPath != "" {
		base.TmpPath = overlay.TmpPath
	}

	if overlay.DataDir != "" {
		base.DataDir = overlay.DataDir
	}

	if overlay.Editor != "" {
		base.Editor = overlay.Editor
	}

	if overlay.Theme != "" {
		base.Theme = overlay.Theme
	}

	return base
}

func resolvePath(path, home string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}

	if home == "" {
		return "", fmt.Errorf("%w: %s", ErrHomeNotSet, path)
	}

	if path == "~" {
		return home, nil
	}

	path = strings.TrimPrefix(path, "~/")

	return filepath.Join(home, path), nil
}

// FormatConfig renders cfg as indented JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}
