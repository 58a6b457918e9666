package ui

import "maple/bridge"

// outboundMsg carries a protocol message from the chat core into the
// bubbletea event loop.
type outboundMsg struct {
	bridge.Outbound
}

// confirmMsg asks the user to approve a file change. The answer goes to
// reply exactly once.
type confirmMsg struct {
	prompt string
	reply  chan bool
}

type markdownRenderedMsg struct {
	index    int
	content  string
	rendered string
}

type clearStatusMsg struct {
	seq int
}
