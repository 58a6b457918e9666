// Package cli is the maple command tree.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const Version = "v0.1.0"

var (
	configPath    string
	workspaceRoot string
)

var RootCmd = &cobra.Command{
	Use:   "maple",
	Short: "AI coding assistant that reads and edits your workspace",
	Long: `maple chats with a hosted model about the code in your workspace.

The model can read, write and edit files; every change is confirmed first.
Run without a subcommand to open the terminal chat.`,
	Version:      Version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to settings.toml (default ~/.config/maple/settings.toml)")
	RootCmd.PersistentFlags().StringVarP(&workspaceRoot, "workspace", "w", "", "Workspace folder (default current directory)")

	RootCmd.AddCommand(chatCmd, serveCmd, askCmd, mcpCmd, auditCmd, initCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
