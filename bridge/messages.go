// Package bridge defines the message protocol between the chat core and the
// view that renders it, and serves that protocol over a websocket.
package bridge

import (
	"encoding/json"

	"maple/workspace"
)

// Outbound message types, sent to the view.
const (
	TypeAddMessage          = "addMessage"
	TypeClearLastBotMessage = "clearLastBotMessage"
	TypeStartBotStream      = "startBotStream"
	TypeAppendBotStream     = "appendBotStream"
	TypeEndBotStream        = "endBotStream"
	TypeDiagnostics         = "diagnostics"
	TypeShowError           = "showError"
	TypeTurnComplete        = "turnComplete"
	TypeConfirmRequest      = "confirmRequest"
)

// Inbound message types, sent by the view.
const (
	TypeMessage         = "message"
	TypeGetDiagnostics  = "getDiagnostics"
	TypeSetActiveFile   = "setActiveFile"
	TypeConfirmResponse = "confirmResponse"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Outbound is a message to the view. Which fields are meaningful depends on
// Type; MarshalJSON emits exactly those.
type Outbound struct {
	Type        string
	Value       string
	Sender      string
	IsLoading   bool
	Chunk       string
	Diagnostics []workspace.FileDiagnostics
	ConfirmID   string
}

func (m Outbound) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": m.Type}
	switch m.Type {
	case TypeAddMessage:
		out["value"] = m.Value
		out["sender"] = m.Sender
		if m.IsLoading {
			out["isLoading"] = true
		}
	case TypeStartBotStream:
		out["initialChunk"] = m.Chunk
	case TypeAppendBotStream:
		out["chunk"] = m.Chunk
	case TypeEndBotStream:
		out["fullResponse"] = m.Value
	case TypeDiagnostics:
		diags := m.Diagnostics
		if diags == nil {
			diags = []workspace.FileDiagnostics{}
		}
		out["value"] = diags
	case TypeShowError:
		out["value"] = m.Value
	case TypeConfirmRequest:
		out["id"] = m.ConfirmID
		out["value"] = m.Value
	}
	return json.Marshal(out)
}

func AddMessage(value, sender string) Outbound {
	return Outbound{Type: TypeAddMessage, Value: value, Sender: sender}
}

// Loading is a bot message shown as a progress indicator. The view replaces
// it on the next clearLastBotMessage.
func Loading(value string) Outbound {
	return Outbound{Type: TypeAddMessage, Value: value, Sender: SenderBot, IsLoading: true}
}

func ClearLastBotMessage() Outbound {
	return Outbound{Type: TypeClearLastBotMessage}
}

func StartBotStream(initialChunk string) Outbound {
	return Outbound{Type: TypeStartBotStream, Chunk: initialChunk}
}

func AppendBotStream(chunk string) Outbound {
	return Outbound{Type: TypeAppendBotStream, Chunk: chunk}
}

func EndBotStream(fullResponse string) Outbound {
	return Outbound{Type: TypeEndBotStream, Value: fullResponse}
}

func Diagnostics(d []workspace.FileDiagnostics) Outbound {
	return Outbound{Type: TypeDiagnostics, Diagnostics: d}
}

func ShowError(msg string) Outbound {
	return Outbound{Type: TypeShowError, Value: msg}
}

// TurnComplete tells the view the request is finished and input can be
// enabled again. It is sent once per user message, on every path.
func TurnComplete() Outbound {
	return Outbound{Type: TypeTurnComplete}
}

func ConfirmRequest(id, prompt string) Outbound {
	return Outbound{Type: TypeConfirmRequest, ConfirmID: id, Value: prompt}
}

// Inbound is a message from the view.
type Inbound struct {
	Type           string `json:"type"`
	Value          string `json:"value,omitempty"`
	IncludeContext bool   `json:"includeContext,omitempty"`
	Selection      string `json:"selection,omitempty"`
	ID             string `json:"id,omitempty"`
	Accepted       bool   `json:"accepted,omitempty"`
}

// Poster delivers messages to the view. Delivery is fire-and-forget.
type Poster interface {
	Post(msg Outbound)
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(msg Outbound)

func (f PosterFunc) Post(msg Outbound) { f(msg) }
