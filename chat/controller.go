package chat

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"maple/bridge"
	"maple/model"
	"maple/workspace"
)

const (
	busyMessage      = "Error: Maple is still working on the previous message. Wait for it to finish."
	disabledMessage  = "AI is not configured. Add your API_KEY to settings.json in the settings folder, then try again."
	selectionNoteLen = 100
)

// Workspace is the editor state the controller reads and updates.
type Workspace interface {
	ActiveFile() string
	SetActiveFile(path string)
	SetSelection(text string)
	Selection() string
	ContextInfo() string
	Diagnostics(ctx context.Context) ([]workspace.FileDiagnostics, error)
}

// Controller handles the inbound messages of one view. It owns a session and
// runs at most one AI request for it at a time.
type Controller struct {
	post    bridge.Poster
	ws      Workspace
	session *Session

	mu   sync.Mutex
	orch *Orchestrator
	busy bool
	wg   sync.WaitGroup
}

// NewController returns a controller for a fresh session. orch may be nil
// when no provider is configured.
func NewController(orch *Orchestrator, ws Workspace, post bridge.Poster) *Controller {
	return &Controller{
		post:    post,
		ws:      ws,
		session: NewSession(),
		orch:    orch,
	}
}

func (c *Controller) Session() *Session { return c.session }

// SetOrchestrator swaps the orchestrator used for future messages, e.g. after
// the settings were reloaded. nil disables AI.
func (c *Controller) SetOrchestrator(orch *Orchestrator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orch = orch
}

// Handle implements bridge.Handler. AI requests run in the background; Wait
// blocks until they finish.
func (c *Controller) Handle(ctx context.Context, msg bridge.Inbound) {
	switch msg.Type {
	case bridge.TypeMessage:
		c.handleMessage(ctx, msg)
	case bridge.TypeGetDiagnostics:
		c.handleDiagnostics(ctx)
	case bridge.TypeSetActiveFile:
		c.ws.SetActiveFile(msg.Value)
		if msg.Selection != "" {
			c.ws.SetSelection(msg.Selection)
		}
		log.Debug().Str("file", c.ws.ActiveFile()).Msg("active file changed")
	default:
		log.Warn().Str("type", msg.Type).Msg("unknown message type from view")
	}
}

// Wait blocks until no request is running.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Busy reports whether a request is running.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Controller) handleMessage(ctx context.Context, msg bridge.Inbound) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		c.post.Post(bridge.AddMessage(busyMessage, bridge.SenderBot))
		return
	}
	orch := c.orch
	if orch == nil {
		c.mu.Unlock()
		log.Warn().Msg("message received but AI is disabled")
		c.post.Post(bridge.AddMessage(disabledMessage, bridge.SenderBot))
		c.post.Post(bridge.TurnComplete())
		return
	}
	c.busy = true
	c.wg.Add(1)
	c.mu.Unlock()

	var contextInfo string
	if msg.IncludeContext {
		contextInfo = c.ws.ContextInfo()
		if note := c.contextNote(); note != "" {
			c.post.Post(bridge.AddMessage(note, bridge.SenderUser))
		}
	}

	go func() {
		defer func() {
			c.mu.Lock()
			c.busy = false
			c.mu.Unlock()
			c.wg.Done()
		}()
		if err := orch.Ask(ctx, c.session, c.post, msg.Value, contextInfo); err != nil {
			log.Debug().Err(err).Str("session", c.session.ID).Msg("request ended with error")
		}
	}()
}

// contextNote tells the user what was attached to the message.
func (c *Controller) contextNote() string {
	if sel := c.ws.Selection(); sel != "" {
		preview := model.Truncate(sel, selectionNoteLen)
		if len(preview) < len(sel) {
			preview += "..."
		}
		return fmt.Sprintf("You included selection:\n```\n%s\n```", preview)
	}
	if f := c.ws.ActiveFile(); f != "" {
		return fmt.Sprintf("You included file: `%s`", filepath.Base(f))
	}
	return ""
}

func (c *Controller) handleDiagnostics(ctx context.Context) {
	diags, err := c.ws.Diagnostics(ctx)
	if err != nil {
		log.Error().Err(err).Msg("diagnostics failed")
		c.post.Post(bridge.ShowError(fmt.Sprintf("Error collecting diagnostics: %v", err)))
		return
	}
	c.post.Post(bridge.Diagnostics(diags))
}
