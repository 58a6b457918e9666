package cli

import (
	"github.com/spf13/cobra"

	"maple/bridge"
	"maple/chat"
	"maple/ui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the terminal chat",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	b := ui.NewBridge()
	r, err := a.registry(a.ws, b)
	if err != nil {
		return err
	}

	// A missing key is reported in the chat on the first message.
	orch, title, _ := a.orchestrator(r)
	ctrl := chat.NewController(orch, a.ws, b)

	a.watchSettings(ctx, func() {
		o, title, err := a.orchestrator(r)
		if err != nil {
			b.Post(bridge.AddMessage("Settings reloaded, AI is disabled: "+err.Error(), bridge.SenderBot))
		} else {
			b.Post(bridge.AddMessage("Settings reloaded, using "+title+".", bridge.SenderBot))
		}
		ctrl.SetOrchestrator(o)
	})

	err = ui.Run(ctx, b, ui.NewChatView(ctx, ctrl, title))
	cancel()
	ctrl.Wait()
	return err
}
