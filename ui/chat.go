// Package ui is the terminal front end of the assistant. It renders the view
// protocol emitted by the chat core and sends user input back through a
// bridge.Handler.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog/log"

	"maple/bridge"
)

const (
	inputHeight   = 3
	statusTimeout = 4 * time.Second
	fileCommand   = "/file "
)

type entry struct {
	sender    string
	content   string
	rendered  string
	loading   bool
	streaming bool
	isError   bool
	at        time.Time
}

// ChatView is the bubbletea model of the chat screen.
type ChatView struct {
	ctx     context.Context
	handler bridge.Handler

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	entries        []entry
	inputEnabled   bool
	includeContext bool
	confirm        *ConfirmationState

	title       string
	status      string
	statusError bool
	statusSeq   int

	width, height int
}

// NewChatView returns the chat screen. Input is handed to h; title is shown in
// the status line (typically the model name).
func NewChatView(ctx context.Context, h bridge.Handler, title string) ChatView {
	ta := textarea.New()
	ta.Placeholder = "Ask Maple... (alt+enter for a new line)"
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(inputHeight)
	ta.SetWidth(80)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return ChatView{
		ctx:          ctx,
		handler:      h,
		viewport:     viewport.New(80, 20),
		textarea:     ta,
		spinner:      sp,
		inputEnabled: true,
		title:        title,
		width:        80,
		height:       24,
	}
}

func (c ChatView) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, c.spinner.Tick)
}

func (c ChatView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width, c.height = msg.Width, msg.Height
		c.viewport.Width = msg.Width
		c.viewport.Height = max(msg.Height-inputHeight-2, 1)
		c.textarea.SetWidth(msg.Width)
		c.refresh(true)
		return c, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		if c.hasLoading() {
			c.refresh(false)
		}
		return c, cmd

	case outboundMsg:
		cmd := c.apply(msg.Outbound)
		c.refresh(true)
		return c, cmd

	case confirmMsg:
		if c.confirm != nil {
			// one prompt at a time; the tool loop never asks twice at once
			msg.reply <- false
			return c, nil
		}
		c.confirm = &ConfirmationState{Title: "Apply change?", Message: msg.prompt, reply: msg.reply}
		return c, nil

	case markdownRenderedMsg:
		if msg.index < len(c.entries) && c.entries[msg.index].content == msg.content {
			c.entries[msg.index].rendered = msg.rendered
			c.refresh(false)
		}
		return c, nil

	case clearStatusMsg:
		if msg.seq == c.statusSeq {
			c.status = ""
			c.statusError = false
		}
		return c, nil

	case tea.KeyMsg:
		return c.handleKey(msg)
	}
	return c, nil
}

func (c ChatView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if c.confirm != nil {
		switch msg.String() {
		case "y", "Y":
			c.confirm.answer(true)
			c.confirm = nil
		case "n", "N", "esc":
			c.confirm.answer(false)
			c.confirm = nil
		case "ctrl+c":
			c.confirm.answer(false)
			return c, tea.Quit
		}
		return c, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return c, tea.Quit

	case "ctrl+d":
		return c, c.send(bridge.Inbound{Type: bridge.TypeGetDiagnostics})

	case "ctrl+t":
		c.includeContext = !c.includeContext
		return c, nil

	case "ctrl+y":
		reply := c.lastReply()
		if reply == "" {
			return c, c.setStatus("Nothing to copy yet", false)
		}
		if err := clipboard.WriteAll(reply); err != nil {
			log.Warn().Err(err).Msg("clipboard write failed")
			return c, c.setStatus("Copy failed: "+err.Error(), true)
		}
		return c, c.setStatus("Copied last reply", false)

	case "pgup", "pgdown":
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return c, cmd

	case "enter":
		return c.submit()
	}

	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)
	return c, cmd
}

// submit sends the input. Plain text goes to the assistant; "/file PATH"
// changes the active file.
func (c ChatView) submit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(c.textarea.Value())
	if value == "" || !c.inputEnabled {
		return c, nil
	}
	c.textarea.Reset()

	if path, ok := strings.CutPrefix(value, fileCommand); ok {
		path = strings.TrimSpace(path)
		return c, tea.Batch(
			c.send(bridge.Inbound{Type: bridge.TypeSetActiveFile, Value: path}),
			c.setStatus("Active file: "+path, false),
		)
	}

	c.entries = append(c.entries, entry{sender: bridge.SenderUser, content: value, rendered: value, at: time.Now()})
	c.inputEnabled = false
	c.textarea.Blur()
	c.refresh(true)
	return c, c.send(bridge.Inbound{Type: bridge.TypeMessage, Value: value, IncludeContext: c.includeContext})
}

// send hands msg to the handler off the event loop.
func (c ChatView) send(msg bridge.Inbound) tea.Cmd {
	if c.handler == nil {
		return nil
	}
	h, ctx := c.handler, c.ctx
	return func() tea.Msg {
		h.Handle(ctx, msg)
		return nil
	}
}

// apply updates the screen for one protocol message.
func (c *ChatView) apply(m bridge.Outbound) tea.Cmd {
	switch m.Type {
	case bridge.TypeAddMessage:
		e := entry{sender: m.Sender, content: m.Value, rendered: m.Value, loading: m.IsLoading, at: time.Now()}
		if !m.IsLoading && m.Sender == bridge.SenderBot {
			e.isError = strings.Contains(strings.ToLower(m.Value), "error")
		}
		c.entries = append(c.entries, e)
		if m.Sender == bridge.SenderBot && !m.IsLoading && !e.isError {
			return c.render(len(c.entries) - 1)
		}

	case bridge.TypeClearLastBotMessage:
		if n := len(c.entries); n > 0 && c.entries[n-1].loading {
			c.entries = c.entries[:n-1]
		}

	case bridge.TypeStartBotStream:
		c.entries = append(c.entries, entry{sender: bridge.SenderBot, content: m.Chunk, rendered: m.Chunk, streaming: true, at: time.Now()})

	case bridge.TypeAppendBotStream:
		if i := c.streamIndex(); i >= 0 {
			c.entries[i].content += m.Chunk
			c.entries[i].rendered = c.entries[i].content
		} else {
			c.entries = append(c.entries, entry{sender: bridge.SenderBot, content: m.Chunk, rendered: m.Chunk, streaming: true, at: time.Now()})
		}

	case bridge.TypeEndBotStream:
		i := c.streamIndex()
		if i < 0 {
			c.entries = append(c.entries, entry{sender: bridge.SenderBot, at: time.Now()})
			i = len(c.entries) - 1
		}
		c.entries[i].streaming = false
		c.entries[i].content = m.Value
		c.entries[i].rendered = m.Value
		if strings.TrimSpace(m.Value) == "" {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return nil
		}
		return c.render(i)

	case bridge.TypeDiagnostics:
		text := FormatDiagnostics(m.Diagnostics)
		c.entries = append(c.entries, entry{sender: bridge.SenderBot, content: text, rendered: text, at: time.Now()})
		return c.render(len(c.entries) - 1)

	case bridge.TypeShowError:
		return c.setStatus(m.Value, true)

	case bridge.TypeTurnComplete:
		c.inputEnabled = true
		return c.textarea.Focus()

	default:
		log.Debug().Str("type", m.Type).Msg("ignoring message in terminal UI")
	}
	return nil
}

func (c *ChatView) render(index int) tea.Cmd {
	content, width := c.entries[index].content, c.width
	return func() tea.Msg {
		return markdownRenderedMsg{index: index, content: content, rendered: renderMarkdown(content, width)}
	}
}

func (c *ChatView) setStatus(text string, isError bool) tea.Cmd {
	c.statusSeq++
	c.status, c.statusError = text, isError
	seq := c.statusSeq
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

func (c ChatView) streamIndex() int {
	for i := len(c.entries) - 1; i >= 0; i-- {
		if c.entries[i].streaming {
			return i
		}
	}
	return -1
}

func (c ChatView) hasLoading() bool {
	for _, e := range c.entries {
		if e.loading {
			return true
		}
	}
	return false
}

func (c ChatView) lastReply() string {
	for i := len(c.entries) - 1; i >= 0; i-- {
		e := c.entries[i]
		if e.sender == bridge.SenderBot && !e.loading && !e.streaming && !e.isError {
			return e.content
		}
	}
	return ""
}

func (c *ChatView) refresh(gotoBottom bool) {
	if len(c.entries) == 0 {
		c.viewport.SetContent(DimStyle.Render("No messages yet. Ask Maple something."))
		return
	}

	var sb strings.Builder
	for _, e := range c.entries {
		timestamp := DimStyle.Render(e.at.Format("[15:04]"))
		switch {
		case e.loading:
			fmt.Fprintf(&sb, "%s %s %s\n\n", timestamp, c.spinner.View(), DimStyle.Render(e.content))
		case e.sender == bridge.SenderUser:
			fmt.Fprintf(&sb, "%s %s\n", timestamp, UserStyle.Render("You"))
			for _, line := range strings.Split(e.rendered, "\n") {
				fmt.Fprintf(&sb, "%s %s\n", UserStyle.Render(codeBar), line)
			}
			sb.WriteString("\n")
		case e.isError:
			fmt.Fprintf(&sb, "%s %s\n%s\n\n", timestamp, ErrorStyle.Render("Maple"), ErrorStyle.Render(e.rendered))
		case e.streaming:
			fmt.Fprintf(&sb, "%s %s\n%s▋\n\n", timestamp, AssistantStyle.Render("Maple"), e.rendered)
		default:
			fmt.Fprintf(&sb, "%s %s\n%s\n\n", timestamp, AssistantStyle.Render("Maple"), e.rendered)
		}
	}

	c.viewport.SetContent(sb.String())
	if gotoBottom {
		c.viewport.GotoBottom()
	}
}

func (c ChatView) statusLine() string {
	if c.status != "" {
		text := runewidth.Truncate(c.status, max(c.width-2, 10), "...")
		if c.statusError {
			return ErrorStyle.Render(text)
		}
		return StatusStyle.Render(text)
	}

	ctxFlag := "off"
	if c.includeContext {
		ctxFlag = "on"
	}
	left := runewidth.Truncate(fmt.Sprintf("%s  context:%s", c.title, ctxFlag), max(c.width/2, 10), "...")
	help := FormatFooter("enter", "Send", "ctrl+t", "Context", "ctrl+d", "Diagnostics", "ctrl+y", "Copy", "ctrl+c", "Quit")
	return StatusStyle.Render(left) + "  " + help
}

func (c ChatView) View() string {
	if c.confirm != nil {
		return RenderConfirmationModal(*c.confirm, c.width, c.height)
	}
	return c.viewport.View() + "\n" + c.statusLine() + "\n" + c.textarea.View()
}
