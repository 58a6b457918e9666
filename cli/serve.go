package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"maple/bridge"
	"maple/chat"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat over a websocket for editor integrations",
	Long: `Serve the chat protocol on /ws. Every connection is its own chat with its
own active file; file changes are confirmed through the connected view.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		a.watchSettings(ctx, nil)

		srv := bridge.NewServer(func(conn *bridge.Conn) bridge.Handler {
			ws, err := a.newWorkspace(a.ws.Folders()[0])
			if err != nil {
				log.Error().Err(err).Msg("failed to open workspace for connection")
				ws = a.ws
			}
			r, err := a.registry(ws, conn)
			if err != nil {
				log.Error().Err(err).Msg("failed to build tools for connection")
				return chat.NewController(nil, ws, conn)
			}
			orch, title, _ := a.orchestrator(r)
			log.Info().Str("model", title).Msg("view connected")
			return chat.NewController(orch, ws, conn)
		})

		addr := listenAddr
		if addr == "" {
			addr = a.cfg.Server.Listen
		}
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Listen address (default from settings.toml)")
}
