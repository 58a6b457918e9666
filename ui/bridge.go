package ui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"maple/bridge"
)

// ErrNotRunning is returned by Confirm before the program starts or after it
// exits.
var ErrNotRunning = errors.New("terminal UI is not running")

// Bridge connects the chat core, which runs outside the bubbletea loop, to
// the program. It is the core's bridge.Poster and tools.Confirmer.
type Bridge struct {
	mu      sync.RWMutex
	program *tea.Program
	done    chan struct{}
}

func NewBridge() *Bridge {
	return &Bridge{done: make(chan struct{})}
}

// Attach sets the program messages are delivered to.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = p
}

// Detach marks the program as finished; pending confirmations are rejected.
func (b *Bridge) Detach() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.program != nil {
		b.program = nil
		close(b.done)
	}
}

func (b *Bridge) send(msg tea.Msg) bool {
	b.mu.RLock()
	p := b.program
	b.mu.RUnlock()
	if p == nil {
		return false
	}
	p.Send(msg)
	return true
}

// Post implements bridge.Poster.
func (b *Bridge) Post(msg bridge.Outbound) {
	b.send(outboundMsg{msg})
}

// Confirm implements tools.Confirmer with a modal y/n prompt.
func (b *Bridge) Confirm(ctx context.Context, prompt string) (bool, error) {
	reply := make(chan bool, 1)
	if !b.send(confirmMsg{prompt: prompt, reply: reply}) {
		return false, ErrNotRunning
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-b.done:
		return false, ErrNotRunning
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
