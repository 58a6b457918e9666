package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
)

// ErrSettingsFolder reports a missing or unusable settings folder.
var ErrSettingsFolder = errors.New("settings folder is not configured or not a directory")

// Settings is the content of settings.json in the user's settings folder.
type Settings struct {
	APIKey string `json:"API_KEY,omitempty"`
}

// Enabled reports whether AI features can run with these settings.
func (s *Settings) Enabled() bool {
	return s != nil && s.APIKey != ""
}

const SettingsFileName = "settings.json"

func checkFolder(folder string) (string, error) {
	if folder == "" {
		return "", ErrSettingsFolder
	}
	abs, err := filepath.Abs(ExpandPath(folder))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSettingsFolder, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSettingsFolder, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrSettingsFolder, abs)
	}
	return abs, nil
}

// LoadSettings reads settings.json from folder.
//
// A missing settings.json is not an error: it yields empty Settings, which
// leaves AI features disabled. An unusable folder, an unreadable file or
// malformed JSON return an error the caller reports once before degrading.
func LoadSettings(folder string) (*Settings, error) {
	dir, err := checkFolder(folder)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, SettingsFileName)
	log.Debug().Str("path", path).Msg("loading settings")

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Msg("settings.json not found, AI features will be limited")
		return &Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &s, nil
}

// LoadInstructionFile reads the optional instruction document. A missing
// file yields "" without error.
func LoadInstructionFile(folder, name string) (string, error) {
	dir, err := checkFolder(folder)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("path", path).Msg("instruction file not found")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read instruction file %s: %w", path, err)
	}
	return string(data), nil
}

// SaveConfig writes cfg to settingsPath with user-only permissions.
func SaveConfig(cfg *Config, settingsPath string) error {
	if err := EnsureDir(filepath.Dir(settingsPath)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.OpenFile(settingsPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

func CreateDefaultConfig(settingsPath string) error {
	if err := EnsureDir(filepath.Dir(settingsPath)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if FileExists(settingsPath) {
		return nil
	}
	if err := os.WriteFile(settingsPath, []byte(GenerateConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
