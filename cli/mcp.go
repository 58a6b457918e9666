package cli

import (
	"os"

	"github.com/spf13/cobra"

	"maple/mcp"
	"maple/tools"
)

var mcpAllowWrites bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the file tools to an MCP client over stdio",
	Long: `Serve read_file, write_file and edit_file over the Model Context Protocol
on stdin/stdout. Writes and edits are refused unless --allow-writes is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		var confirm tools.Confirmer = tools.Deny
		if mcpAllowWrites {
			confirm = tools.AutoApprove
		}
		r, err := a.registry(a.ws, confirm)
		if err != nil {
			return err
		}
		return mcp.NewServer(r, Version).Serve(ctx, os.Stdin, os.Stdout)
	},
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpAllowWrites, "allow-writes", false, "Apply write_file and edit_file calls without confirmation")
}
