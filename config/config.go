package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type AIConfig struct {
	Provider     string  `toml:"provider"`
	Model        string  `toml:"model"`
	BaseURL      string  `toml:"base_url,omitempty"`
	Temperature  float32 `toml:"temperature"`
	MaxToolCalls int     `toml:"max_tool_calls"`
}

type WorkspaceConfig struct {
	DiagnosticsCommand string `toml:"diagnostics_command,omitempty"`
}

type ServerConfig struct {
	Listen string `toml:"listen"`
}

// Config is the application configuration read from settings.toml.
// The API key is not part of it: it lives in settings.json inside the
// user's settings folder (see LoadSettings).
type Config struct {
	DataDirectory   string          `toml:"data_directory"`
	SettingsFolder  string          `toml:"settings_folder"`
	InstructionFile string          `toml:"instruction_file"`
	AI              AIConfig        `toml:"ai"`
	Workspace       WorkspaceConfig `toml:"workspace"`
	Server          ServerConfig    `toml:"server"`
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) SettingsDir() string {
	return ExpandPath(c.SettingsFolder)
}

func (c *Config) applyEnvOverrides() {
	if folder := os.Getenv("MAPLE_SETTINGS_FOLDER"); folder != "" {
		c.SettingsFolder = folder
	}
	if p := os.Getenv("MAPLE_PROVIDER"); p != "" {
		c.AI.Provider = p
	}
	if m := os.Getenv("MAPLE_MODEL"); m != "" {
		c.AI.Model = m
	}
	if dataDir := os.Getenv("MAPLE_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if n := os.Getenv("MAPLE_MAX_TOOL_CALLS"); n != "" {
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			c.AI.MaxToolCalls = v
		}
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.DataDirectory == "" {
		c.DataDirectory = def.DataDirectory
	}
	if c.InstructionFile == "" {
		c.InstructionFile = def.InstructionFile
	}
	if c.AI.Provider == "" {
		c.AI.Provider = def.AI.Provider
	}
	if c.AI.MaxToolCalls <= 0 {
		c.AI.MaxToolCalls = def.AI.MaxToolCalls
	}
	if c.Server.Listen == "" {
		c.Server.Listen = def.Server.Listen
	}
}

// Load reads settings.toml (creating it from the template on first run),
// applies environment overrides and makes sure the data directory exists.
func Load() (*Config, error) {
	return LoadFrom(GetSettingsFilePath())
}

// LoadFrom is Load with an explicit settings.toml path.
func LoadFrom(settingsPath string) (*Config, error) {
	cfg := DefaultConfig()

	if !FileExists(settingsPath) {
		if err := CreateDefaultConfig(settingsPath); err != nil {
			return nil, fmt.Errorf("failed to create config: %w", err)
		}
	} else if _, err := toml.DecodeFile(settingsPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	return cfg, nil
}
