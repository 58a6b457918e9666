// Package tools dispatches model tool calls to local handlers.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"

	"maple/model"
	"maple/toolcall"
)

// Name identifies a tool. Only registered names can be dispatched.
type Name string

const (
	ReadFile  Name = toolcall.ReadFile
	WriteFile Name = toolcall.WriteFile
	EditFile  Name = toolcall.EditFile
)

// Handler executes a tool. The result is shown to the model, so failures are
// reported as readable strings rather than Go errors.
type Handler func(ctx context.Context, args map[string]any) string

type entry struct {
	def     mcptypes.Tool
	handler Handler
}

// Registry maps tool names to handlers.
type Registry struct {
	mu       sync.RWMutex
	entries  map[Name]entry
	order    []Name
	recorder Recorder
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[Name]entry)}
}

// SetRecorder makes Dispatch record every executed call.
func (r *Registry) SetRecorder(rec Recorder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorder = rec
}

// Register adds a tool. The definition name must equal name.
func (r *Registry) Register(name Name, def mcptypes.Tool, h Handler) error {
	if name == "" {
		return errors.New("tool name is empty")
	}
	if h == nil {
		return fmt.Errorf("tool %s has no handler", name)
	}
	if def.Name != string(name) {
		return fmt.Errorf("tool %s: definition is named %q", name, def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.entries[name] = entry{def: def, handler: h}
	r.order = append(r.order, name)
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[Name(name)]
	return ok
}

// Definitions returns the tool declarations in registration order.
func (r *Registry) Definitions() []mcptypes.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]mcptypes.Tool, 0, len(r.order))
	for _, n := range r.order {
		defs = append(defs, r.entries[n].def)
	}
	return defs
}

// Dispatch runs call and returns its result. It never fails: unknown tools and
// handler panics become error strings.
func (r *Registry) Dispatch(ctx context.Context, call model.ToolCall) (result model.ToolResult) {
	result.Name = call.Name

	r.mu.RLock()
	e, ok := r.entries[Name(call.Name)]
	rec := r.recorder
	r.mu.RUnlock()

	if !ok {
		result.Content = "Error: Unknown function: " + call.Name
		return result
	}

	log.Debug().Str("tool", call.Name).Interface("args", redact(call.Arguments)).Msg("executing tool")

	defer func() {
		if p := recover(); p != nil {
			log.Error().Str("tool", call.Name).Interface("panic", p).Msg("tool handler panicked")
			result.Content = fmt.Sprintf("Runtime error in %s: %v", call.Name, p)
		}
		if rec != nil {
			if err := rec.Record(ctx, NewRecord(ctx, call, result.Content)); err != nil {
				log.Warn().Err(err).Str("tool", call.Name).Msg("failed to record tool call")
			}
		}
	}()

	result.Content = e.handler(ctx, call.Arguments)
	log.Debug().Str("tool", call.Name).Int("result_len", len(result.Content)).Msg("tool finished")
	return result
}

// redact keeps file bodies out of the log.
func redact(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && len(s) > 120 {
			v = model.Truncate(s, 120) + "..."
		}
		out[k] = v
	}
	return out
}

// Outcome classifies a tool result for the audit log.
func Outcome(content string) string {
	switch {
	case strings.HasPrefix(content, "Error"), strings.HasPrefix(content, "Runtime error"):
		return "error"
	case strings.HasSuffix(content, "cancelled."):
		return "cancelled"
	default:
		return "ok"
	}
}
