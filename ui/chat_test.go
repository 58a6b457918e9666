package ui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"maple/bridge"
	"maple/workspace"
)

type recordingHandler struct {
	mu   sync.Mutex
	msgs []bridge.Inbound
}

func (h *recordingHandler) Handle(_ context.Context, msg bridge.Inbound) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msg)
}

func step(t *testing.T, c ChatView, msg tea.Msg) (ChatView, tea.Cmd) {
	t.Helper()
	m, cmd := c.Update(msg)
	next, ok := m.(ChatView)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return next, cmd
}

func post(t *testing.T, c ChatView, msgs ...bridge.Outbound) ChatView {
	t.Helper()
	for _, m := range msgs {
		c, _ = step(t, c, outboundMsg{m})
	}
	return c
}

func TestApplyStreamSequence(t *testing.T) {
	c := NewChatView(context.Background(), nil, "test")
	c.inputEnabled = false

	c = post(t, c,
		bridge.Loading("Maple is thinking..."),
		bridge.ClearLastBotMessage(),
		bridge.StartBotStream("Hel"),
		bridge.AppendBotStream("lo"),
	)
	if len(c.entries) != 1 || !c.entries[0].streaming || c.entries[0].content != "Hello" {
		t.Fatalf("entries while streaming = %+v", c.entries)
	}

	c = post(t, c, bridge.EndBotStream("Hello!"))
	if c.entries[0].streaming || c.entries[0].content != "Hello!" {
		t.Errorf("entry after end = %+v", c.entries[0])
	}
	if c.inputEnabled {
		t.Error("input enabled before turnComplete")
	}

	c = post(t, c, bridge.TurnComplete())
	if !c.inputEnabled {
		t.Error("input still disabled after turnComplete")
	}
	if got := c.lastReply(); got != "Hello!" {
		t.Errorf("lastReply = %q", got)
	}
}

func TestApplyClearOnlyRemovesLoading(t *testing.T) {
	c := NewChatView(context.Background(), nil, "test")
	c = post(t, c,
		bridge.AddMessage("hi", bridge.SenderUser),
		bridge.ClearLastBotMessage(),
	)
	if len(c.entries) != 1 {
		t.Fatalf("clear removed a non-loading entry: %+v", c.entries)
	}
}

func TestApplyErrorStyling(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"Sorry, an error occurred: Error processing AI request: boom", true},
		{"Result for `read_file`", false},
	}
	for _, tt := range tests {
		c := post(t, NewChatView(context.Background(), nil, "test"), bridge.AddMessage(tt.value, bridge.SenderBot))
		if c.entries[0].isError != tt.wantErr {
			t.Errorf("%q: isError = %v, want %v", tt.value, c.entries[0].isError, tt.wantErr)
		}
	}
}

func TestApplyShowError(t *testing.T) {
	c := post(t, NewChatView(context.Background(), nil, "test"), bridge.ShowError("Error processing AI request: boom"))
	if !c.statusError || !strings.Contains(c.status, "boom") {
		t.Errorf("status = %q (error %v)", c.status, c.statusError)
	}
}

func TestSubmit(t *testing.T) {
	h := &recordingHandler{}
	c := NewChatView(context.Background(), h, "test")
	c.includeContext = true
	c.textarea.SetValue("explain this")

	c, cmd := step(t, c, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("no command returned for submit")
	}
	cmd()

	if c.inputEnabled {
		t.Error("input still enabled after send")
	}
	if len(c.entries) != 1 || c.entries[0].sender != bridge.SenderUser {
		t.Errorf("entries = %+v", c.entries)
	}
	if len(h.msgs) != 1 || h.msgs[0].Type != bridge.TypeMessage || h.msgs[0].Value != "explain this" || !h.msgs[0].IncludeContext {
		t.Errorf("handler got %+v", h.msgs)
	}

	// Disabled input ignores enter.
	c.textarea.SetValue("again")
	if _, cmd := step(t, c, tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("submit while busy returned a command")
	}
}

func TestSubmitFileCommand(t *testing.T) {
	h := &recordingHandler{}
	c := NewChatView(context.Background(), h, "test")
	c.textarea.SetValue("/file src/main.go")

	c, cmd := step(t, c, tea.KeyMsg{Type: tea.KeyEnter})
	if len(c.entries) != 0 {
		t.Errorf("file command added a chat entry: %+v", c.entries)
	}
	if !c.inputEnabled {
		t.Error("file command disabled input")
	}
	// Batch of the handler call and the status timer; run only the former.
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("command returned %T, want tea.BatchMsg", cmd())
	}
	batch[0]()
	if len(h.msgs) != 1 || h.msgs[0].Type != bridge.TypeSetActiveFile || h.msgs[0].Value != "src/main.go" {
		t.Errorf("handler got %+v", h.msgs)
	}
}

func TestConfirmModal(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"y", true},
		{"n", false},
		{"esc", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			c := NewChatView(context.Background(), nil, "test")
			reply := make(chan bool, 1)
			c, _ = step(t, c, confirmMsg{prompt: "AI proposes to write 'a.txt'", reply: reply})
			if !strings.Contains(c.View(), "a.txt") {
				t.Error("modal does not show the prompt")
			}

			var key tea.KeyMsg
			if tt.key == "esc" {
				key = tea.KeyMsg{Type: tea.KeyEsc}
			} else {
				key = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tt.key)}
			}
			c, _ = step(t, c, key)

			if c.confirm != nil {
				t.Error("modal still open")
			}
			if got := <-reply; got != tt.want {
				t.Errorf("reply = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBridgeConfirmNotRunning(t *testing.T) {
	ok, err := NewBridge().Confirm(context.Background(), "write?")
	if ok || err != ErrNotRunning {
		t.Errorf("Confirm = %v, %v; want false, ErrNotRunning", ok, err)
	}
}

func TestFormatDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		files []workspace.FileDiagnostics
		want  []string
	}{
		{"none", nil, []string{"Diagnostics:", "No diagnostics found."}},
		{
			"one error",
			[]workspace.FileDiagnostics{{
				URI: "file:///p/main.go",
				Diagnostics: []workspace.Diagnostic{{
					Range:    workspace.Range{Start: workspace.Position{Line: 4}},
					Message:  "undefined: x",
					Severity: workspace.SeverityError,
				}},
			}},
			[]string{"File: file:///p/main.go", "  - [Error] undefined: x (L5)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDiagnostics(tt.files)
			if !strings.HasPrefix(got, "```text\n") || !strings.HasSuffix(got, "```") {
				t.Errorf("not fenced: %q", got)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("missing %q in %q", w, got)
				}
			}
		})
	}
}

func TestFrameCodeBlocks(t *testing.T) {
	in := "text\n" + codeBar + " code line\nafter"
	got := frameCodeBlocks(in, 20)
	lines := strings.Split(got, "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines: %q", len(lines), got)
	}
	if lines[2] != "code line" {
		t.Errorf("code line = %q", lines[2])
	}
	if !strings.Contains(lines[1], "━") || !strings.Contains(lines[3], "━") {
		t.Errorf("code block not framed: %q", got)
	}
}
