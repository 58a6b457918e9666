package config

func DefaultConfig() *Config {
	return &Config{
		DataDirectory:   GetDefaultDataDir(),
		SettingsFolder:  "",
		InstructionFile: "Instruction.md",
		AI: AIConfig{
			Provider:     "gemini",
			Model:        "",
			Temperature:  1,
			MaxToolCalls: 10,
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:7878",
		},
	}
}

func GenerateConfigTemplate() string {
	return `# Maple Configuration
# Location: ~/.config/maple/settings.toml
# This file uses TOML format: https://toml.io

# Directory for the debug log and the tool audit database
data_directory = "~/.local/share/maple"

# Folder holding settings.json ({"API_KEY": "..."}) and the instruction file.
# AI features stay disabled until this points at a folder with an API key.
settings_folder = ""

# Instruction document inside settings_folder, sent with every request
instruction_file = "Instruction.md"

[ai]
# gemini, ollama, openai, openrouter or anthropic
provider = "gemini"

# Leave empty for the provider default
model = ""

temperature = 1.0

# Upper bound on tool calls the model may chain for one user message
max_tool_calls = 10

[workspace]
# Command whose "file:line:col: message" output is reported as diagnostics
# Example: "go vet ./..."
diagnostics_command = ""

[server]
# Address of the websocket bridge started by "maple serve"
listen = "127.0.0.1:7878"
`
}
