package tools

import (
	"context"
	"time"

	"maple/model"
	"maple/toolcall"
)

// Record describes one executed tool call.
type Record struct {
	SessionID string
	Tool      string
	FilePath  string
	Result    string
	Outcome   string
	Time      time.Time
}

// Recorder persists executed tool calls.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

type sessionKey struct{}

// WithSession tags ctx with the chat session a dispatch belongs to.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionFrom returns the session id set by WithSession, or "".
func SessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

const previewLen = 200

// NewRecord builds the audit record for call and its result.
func NewRecord(ctx context.Context, call model.ToolCall, result string) Record {
	preview := model.Truncate(result, previewLen)
	return Record{
		SessionID: SessionFrom(ctx),
		Tool:      call.Name,
		FilePath:  call.StringArg(toolcall.ArgFilePath),
		Result:    preview,
		Outcome:   Outcome(result),
		Time:      time.Now(),
	}
}
