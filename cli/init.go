package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"maple/config"
)

var initAPIKey string

const instructionTemplate = `# Instructions for Maple

Describe how the assistant should work in this project: coding style,
languages, things to avoid. This file is sent with every request.
`

var initCmd = &cobra.Command{
	Use:   "init FOLDER",
	Short: "Create a settings folder and point settings.toml at it",
	Long: `Create FOLDER with settings.json and Instruction.md (existing files are
kept) and store it as settings_folder in settings.toml.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.GetSettingsFilePath()
		}
		cfg, err := config.LoadFrom(path)
		if err != nil {
			return err
		}

		folder, err := filepath.Abs(config.ExpandPath(args[0]))
		if err != nil {
			return err
		}
		if err := os.MkdirAll(folder, 0700); err != nil {
			return fmt.Errorf("failed to create settings folder: %w", err)
		}

		settingsFile := filepath.Join(folder, config.SettingsFileName)
		if !config.FileExists(settingsFile) || initAPIKey != "" {
			data, err := json.MarshalIndent(config.Settings{APIKey: initAPIKey}, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(settingsFile, append(data, '\n'), 0600); err != nil {
				return fmt.Errorf("failed to write %s: %w", settingsFile, err)
			}
		}

		instructionFile := filepath.Join(folder, cfg.InstructionFile)
		if !config.FileExists(instructionFile) {
			if err := os.WriteFile(instructionFile, []byte(instructionTemplate), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", instructionFile, err)
			}
		}

		cfg.SettingsFolder = folder
		if err := config.SaveConfig(cfg, path); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Settings folder: %s\n", folder)
		if initAPIKey == "" {
			fmt.Fprintf(out, "Add your API key to %s to enable AI features.\n", settingsFile)
		}
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initAPIKey, "api-key", "", "API key to store in settings.json")
}
