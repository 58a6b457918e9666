package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Role identifies who produced a turn in the conversation.
type Role string

const (
	RoleUser     Role = "user"
	RoleModel    Role = "model"
	RoleFunction Role = "function"
)

// ToolCall is a model-initiated request to run a named local operation.
//
// Raw, Start and End locate the tag the call was scraped from inside the
// accumulated model text, so the span can be removed from displayed prose.
type ToolCall struct {
	Name      string
	Arguments map[string]any
	Raw       string
	Start     int
	End       int
}

// StringArg returns a string argument, or "" when missing or not a string.
func (c ToolCall) StringArg(key string) string {
	if v, ok := c.Arguments[key].(string); ok {
		return v
	}
	return ""
}

// ToolResult is the outcome of executing a ToolCall. Content is always
// human-readable, including on failure.
type ToolResult struct {
	Name    string
	Content string
}

// Part is one unit of content within a turn. Exactly one field is set.
type Part struct {
	Text             string
	FunctionCall     *ToolCall
	FunctionResponse *ToolResult
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// Turn is one role-tagged entry in the conversation history.
type Turn struct {
	Role      Role
	Parts     []Part
	Timestamp time.Time
}

// Text concatenates the text parts of the turn.
func (t Turn) Text() string {
	var sb strings.Builder
	for _, p := range t.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
