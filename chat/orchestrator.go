package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"

	"maple/bridge"
	"maple/model"
	"maple/toolcall"
	"maple/tools"
)

const (
	thinkingMessage  = "Maple is thinking..."
	emptyResponse    = "The model returned an empty response."
	emptyPlaceholder = "(empty response)"
	previewLen       = 200
	DefaultMaxCalls  = 10
)

// Dispatcher executes tool calls. *tools.Registry implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, call model.ToolCall) model.ToolResult
	Definitions() []mcptypes.Tool
}

// InstructionSource supplies the user's instruction document, "" for none.
type InstructionSource interface {
	Text() string
}

// StaticInstructions is an InstructionSource with fixed text.
type StaticInstructions string

func (s StaticInstructions) Text() string { return string(s) }

// Options tune the turn loop.
type Options struct {
	// MaxToolCalls bounds the tool executions for one user message.
	MaxToolCalls int
	Temperature  float32
}

// Orchestrator drives the conversation loop against a provider.
type Orchestrator struct {
	provider     model.Provider
	tools        Dispatcher
	instructions InstructionSource
	opts         Options
}

func NewOrchestrator(p model.Provider, d Dispatcher, inst InstructionSource, opts Options) *Orchestrator {
	if opts.MaxToolCalls <= 0 {
		opts.MaxToolCalls = DefaultMaxCalls
	}
	if inst == nil {
		inst = StaticInstructions("")
	}
	return &Orchestrator{provider: p, tools: d, instructions: inst, opts: opts}
}

// SystemInstruction combines the instruction document with the description of
// the tool protocol.
func (o *Orchestrator) SystemInstruction() string {
	var parts []string
	if doc := strings.TrimSpace(o.instructions.Text()); doc != "" {
		parts = append(parts, "System Instructions:\n"+doc)
	}
	if o.tools != nil {
		if proto := toolcall.Instructions(o.tools.Definitions()); proto != "" {
			parts = append(parts, proto)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Ask records a user message, prefixed by contextInfo when set, and runs the
// loop until the model answers without a tool call.
func (o *Orchestrator) Ask(ctx context.Context, s *Session, post bridge.Poster, prompt, contextInfo string) error {
	var parts []string
	if contextInfo != "" {
		parts = append(parts, fmt.Sprintf("Additional context:\n```\n%s\n```\n", contextInfo))
	}
	parts = append(parts, prompt)
	s.History.AppendUser(parts...)
	log.Debug().Str("session", s.ID).Int("turns", s.History.Len()).Msg("user message added")

	return o.Run(ctx, s, post)
}

// Run generates model turns over the session history until one contains no
// tool call, the tool call limit is hit, or an error occurs. Every path ends
// with a turnComplete message. Errors are reported to the view and recorded in
// the history before being returned.
func (o *Orchestrator) Run(ctx context.Context, s *Session, post bridge.Poster) error {
	system := o.SystemInstruction()
	calls := 0

	post.Post(bridge.Loading(thinkingMessage))

	for {
		state := newStreamState(post)
		req := model.Request{
			SystemInstruction: system,
			History:           s.History.Turns(),
			Temperature:       o.opts.Temperature,
		}

		err := o.provider.Chat(ctx, req, state.onChunk)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		if err != nil && !errors.Is(err, model.ErrStopStream) {
			return o.fail(s, post, state, err)
		}

		if state.Call == nil {
			o.finish(s, post, state)
			return nil
		}

		call := *state.Call
		if state.Started {
			post.Post(bridge.EndBotStream(state.Display()))
		}
		s.History.AppendModel(state.Text, &call)
		log.Debug().Str("session", s.ID).Str("tool", call.Name).Msg("model requested tool call")

		if calls >= o.opts.MaxToolCalls {
			return o.refuse(s, post, call)
		}
		calls++

		post.Post(bridge.Loading(fmt.Sprintf("Calling: `%s(...)`...", call.Name)))
		result := o.dispatch(ctx, s, call)
		if err := s.History.AppendFunction(result); err != nil {
			return o.fail(s, post, nil, err)
		}

		post.Post(bridge.ClearLastBotMessage())
		post.Post(bridge.AddMessage(resultPreview(result), bridge.SenderBot))

		if ctx.Err() != nil {
			return o.fail(s, post, nil, ctx.Err())
		}
		post.Post(bridge.Loading(thinkingMessage))
	}
}

func (o *Orchestrator) dispatch(ctx context.Context, s *Session, call model.ToolCall) model.ToolResult {
	if o.tools == nil {
		return model.ToolResult{Name: call.Name, Content: "Error: Unknown function: " + call.Name}
	}
	return o.tools.Dispatch(tools.WithSession(ctx, s.ID), call)
}

func (o *Orchestrator) finish(s *Session, post bridge.Poster, state *StreamState) {
	if state.Started {
		post.Post(bridge.EndBotStream(state.Text))
	} else {
		post.Post(bridge.ClearLastBotMessage())
		post.Post(bridge.AddMessage(emptyResponse, bridge.SenderBot))
	}

	text := state.Text
	if text == "" {
		text = emptyPlaceholder
	}
	s.History.AppendModel(text, nil)
	post.Post(bridge.TurnComplete())
}

// refuse answers a call past the limit without running it, so the history
// keeps its call/result pairing.
func (o *Orchestrator) refuse(s *Session, post bridge.Poster, call model.ToolCall) error {
	log.Warn().Str("session", s.ID).Int("limit", o.opts.MaxToolCalls).Msg("tool call limit reached")

	result := model.ToolResult{
		Name: call.Name,
		Content: fmt.Sprintf("Error: Tool call limit of %d reached for this message. %s was not executed.",
			o.opts.MaxToolCalls, call.Name),
	}
	if err := s.History.AppendFunction(result); err != nil {
		return o.fail(s, post, nil, err)
	}

	post.Post(bridge.ClearLastBotMessage())
	post.Post(bridge.AddMessage(fmt.Sprintf(
		"Stopped after %d tool calls. Send another message to let Maple continue.", o.opts.MaxToolCalls),
		bridge.SenderBot))
	post.Post(bridge.TurnComplete())
	return nil
}

func (o *Orchestrator) fail(s *Session, post bridge.Poster, state *StreamState, err error) error {
	msg := "Error processing AI request: " + err.Error()
	log.Error().Err(err).Str("session", s.ID).Msg("AI request failed")

	if state != nil && state.Started {
		post.Post(bridge.EndBotStream(state.Display()))
	}
	post.Post(bridge.ClearLastBotMessage())
	post.Post(bridge.AddMessage("Sorry, an error occurred: "+msg, bridge.SenderBot))
	post.Post(bridge.ShowError(msg))
	s.History.AppendModel("Error: "+msg, nil)
	post.Post(bridge.TurnComplete())
	return fmt.Errorf("AI request failed: %w", err)
}

func resultPreview(r model.ToolResult) string {
	content := model.Truncate(r.Content, previewLen)
	if len(content) < len(r.Content) {
		content += "..."
	}
	return fmt.Sprintf("Result for `%s`:\n```\n%s\n```", r.Name, content)
}
