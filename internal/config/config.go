// Package config handles engine tool configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Config holds all settings.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Server  ServerConfig  `yaml:"server"`
	Export  ExportConfig  `yaml:"export"`
	Picking PickingConfig `yaml:"picking"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds game data locations.
type DataConfig struct {
	Archives []string `yaml:"archives"` // XARC archives, later entries take priority
	Dirs     []string `yaml:"dirs"`     // Loose asset directories, searched after archives
}

// ServerConfig holds inspection server settings.
type ServerConfig struct {
	Listen       string        `yaml:"listen"`
	RequestLog   bool          `yaml:"request_log"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// ExportConfig holds glTF export settings.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
	Binary    bool   `yaml:"binary"` // .glb instead of .gltf
}

// PickingConfig holds defaults for pick requests.
type PickingConfig struct {
	DefaultFacing float32 `yaml:"default_facing"` // Degrees
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"` // console or json
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Archives: []string{"xarc/april.xarc"},
		},
		Server: ServerConfig{
			Listen:       "127.0.0.1:8100",
			RequestLog:   false,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Export: ExportConfig{
			OutputDir: "export",
			Binary:    true,
		},
		Picking: PickingConfig{
			DefaultFacing: 0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "console",
			LogFile: "",
		},
	}
}

// Validate reports the first setting the tools cannot run with.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen: empty address")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server: negative timeout")
	}
	return nil
}
