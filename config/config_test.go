package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromCreatesTemplate(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MAPLE_DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("MAPLE_SETTINGS_FOLDER", "")
	t.Setenv("MAPLE_PROVIDER", "")
	t.Setenv("MAPLE_MODEL", "")
	t.Setenv("MAPLE_MAX_TOOL_CALLS", "")

	path := filepath.Join(dir, "settings.toml")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if !FileExists(path) {
		t.Error("expected settings.toml to be created")
	}
	if cfg.AI.Provider != "gemini" {
		t.Errorf("provider: got %q, want gemini", cfg.AI.Provider)
	}
	if cfg.AI.MaxToolCalls != 10 {
		t.Errorf("max_tool_calls: got %d, want 10", cfg.AI.MaxToolCalls)
	}
	if cfg.InstructionFile != "Instruction.md" {
		t.Errorf("instruction_file: got %q", cfg.InstructionFile)
	}
	if info, err := os.Stat(cfg.DataDir()); err != nil || !info.IsDir() {
		t.Errorf("data dir not created: %v", err)
	}
}

func TestLoadFromParsesAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	content := `
data_directory = "` + filepath.ToSlash(filepath.Join(dir, "data")) + `"
settings_folder = "/opt/maple"

[ai]
provider = "ollama"
model = "llama3.1:latest"
temperature = 0.2
max_tool_calls = 3
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MAPLE_DATA_DIR", "")
	t.Setenv("MAPLE_SETTINGS_FOLDER", "")
	t.Setenv("MAPLE_PROVIDER", "")
	t.Setenv("MAPLE_MODEL", "gemma3")
	t.Setenv("MAPLE_MAX_TOOL_CALLS", "")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.AI.Provider != "ollama" {
		t.Errorf("provider: got %q", cfg.AI.Provider)
	}
	if cfg.AI.Model != "gemma3" {
		t.Errorf("env override not applied: got %q", cfg.AI.Model)
	}
	if cfg.AI.MaxToolCalls != 3 {
		t.Errorf("max_tool_calls: got %d", cfg.AI.MaxToolCalls)
	}
	if cfg.SettingsFolder != "/opt/maple" {
		t.Errorf("settings_folder: got %q", cfg.SettingsFolder)
	}
	if cfg.Server.Listen == "" {
		t.Error("expected default listen address")
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("MAPLE_TEST_DIR", "/srv")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", "/home/tester"},
		{"~/maple", "/home/tester/maple"},
		{"$MAPLE_TEST_DIR/x", "/srv/x"},
		{"/abs/path", "/abs/path"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
