// Package chat runs conversations: the turn loop that streams model output,
// executes the tool calls it contains and feeds results back, and the
// controller that connects that loop to a view.
package chat

import (
	"time"

	"github.com/google/uuid"

	"maple/model"
)

// Session is one conversation. It owns its history; only the orchestrator
// appends to it, and only one request runs per session at a time.
type Session struct {
	ID      string
	Started time.Time
	History model.History
}

func NewSession() *Session {
	return &Session{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
}
