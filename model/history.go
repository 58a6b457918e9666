package model

import (
	"fmt"
	"time"
)

// History is the ordered, append-only conversation of a chat session.
// It is not safe for concurrent use; a session owns exactly one.
type History struct {
	turns []Turn
}

// Turns returns a copy of the turns recorded so far.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Last returns the most recent turn.
func (h *History) Last() (Turn, bool) {
	if len(h.turns) == 0 {
		return Turn{}, false
	}
	return h.turns[len(h.turns)-1], true
}

// AppendUser records a user turn made of the given text parts.
func (h *History) AppendUser(texts ...string) {
	parts := make([]Part, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, TextPart(t))
	}
	h.append(Turn{Role: RoleUser, Parts: parts})
}

// AppendModel records a model turn. When call is non-nil it is stored as a
// function-call part after the text.
func (h *History) AppendModel(text string, call *ToolCall) {
	var parts []Part
	if text != "" {
		parts = append(parts, TextPart(text))
	}
	if call != nil {
		c := *call
		parts = append(parts, Part{FunctionCall: &c})
	}
	h.append(Turn{Role: RoleModel, Parts: parts})
}

// AppendFunction records a tool result. It must directly follow the model
// turn that requested the call.
func (h *History) AppendFunction(result ToolResult) error {
	last, ok := h.Last()
	if !ok || last.Role != RoleModel {
		return fmt.Errorf("function result for %s does not follow a model turn", result.Name)
	}
	var requested bool
	for _, p := range last.Parts {
		if p.FunctionCall != nil && p.FunctionCall.Name == result.Name {
			requested = true
		}
	}
	if !requested {
		return fmt.Errorf("function result for %s has no matching call", result.Name)
	}
	r := result
	h.append(Turn{Role: RoleFunction, Parts: []Part{{FunctionResponse: &r}}})
	return nil
}

func (h *History) append(t Turn) {
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	h.turns = append(h.turns, t)
}
