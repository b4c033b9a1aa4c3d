package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const fileName = "config.yaml"

// Load builds the configuration from defaults, the config file and the
// command line, in increasing priority, and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := cfg.merge(path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a config file over the defaults, ignoring flags.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.merge(path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the first existing config in the working directory
// or the user config directory.
func findConfigFile() string {
	for _, path := range []string{fileName, filepath.Join(ConfigDir(), fileName)} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "TLJEngine")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "TLJEngine")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tlj-engine")
	}
	return filepath.Join(home, ".config", "tlj-engine")
}

// merge decodes a YAML file over c. Relative data paths in the file are
// taken relative to the file's directory.
func (c *Config) merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}

	base := filepath.Dir(path)
	if file.Data.Archives != nil {
		c.Data.Archives = resolve(base, file.Data.Archives)
	}
	if file.Data.Dirs != nil {
		c.Data.Dirs = resolve(base, file.Data.Dirs)
	}
	return nil
}

func resolve(base string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			out[i] = p
		} else {
			out[i] = filepath.Join(base, p)
		}
	}
	return out
}
