package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"maple/bridge"
	"maple/chat"
	"maple/tools"
)

var (
	askFile    string
	askYes     bool
	askContext bool
)

var askCmd = &cobra.Command{
	Use:   "ask PROMPT...",
	Short: "Ask one question and print the answer",
	Long: `Ask one question without opening the chat. File writes and edits are
refused unless --yes is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		var confirm tools.Confirmer = tools.Deny
		if askYes {
			confirm = tools.AutoApprove
		}
		r, err := a.registry(a.ws, confirm)
		if err != nil {
			return err
		}
		orch, _, err := a.orchestrator(r)
		if err != nil {
			return err
		}

		var contextInfo string
		if askFile != "" {
			a.ws.SetActiveFile(askFile)
			askContext = true
		}
		if askContext {
			contextInfo = a.ws.ContextInfo()
		}

		p := &printer{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
		return orch.Ask(ctx, chat.NewSession(), p, strings.Join(args, " "), contextInfo)
	},
}

func init() {
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "Active file sent as context")
	askCmd.Flags().BoolVar(&askContext, "context", false, "Include the active file or selection as context")
	askCmd.Flags().BoolVarP(&askYes, "yes", "y", false, "Apply file writes and edits without asking")
}

// printer is a bridge.Poster for plain terminals. Replies are printed when
// their stream ends, so tool tags never reach the output.
type printer struct {
	out    io.Writer
	errOut io.Writer
}

func (p *printer) Post(m bridge.Outbound) {
	switch m.Type {
	case bridge.TypeAddMessage:
		if m.IsLoading {
			fmt.Fprintln(p.errOut, m.Value)
			return
		}
		fmt.Fprintln(p.out, m.Value)
	case bridge.TypeEndBotStream:
		if m.Value != "" {
			fmt.Fprintln(p.out, m.Value)
		}
	case bridge.TypeShowError:
		fmt.Fprintln(p.errOut, m.Value)
	}
}

var _ bridge.Poster = (*printer)(nil)
