package model

import (
	"context"
	"errors"
)

// ErrStopStream is returned by a StreamCallback to halt consumption of the
// response stream. Providers return it unchanged so callers can tell a
// deliberate stop from a failure.
var ErrStopStream = errors.New("stream stopped by consumer")

// StreamCallback is called for each fragment of a streamed response.
type StreamCallback func(chunk string) error

// Request is everything a provider needs for one generation call.
type Request struct {
	SystemInstruction string
	History           []Turn
	Temperature       float32
}

// ModelInfo describes a model offered by a provider.
type ModelInfo struct {
	Name         string // Display name
	InternalName string // Name sent to the API
	Provider     string
}

// Provider abstracts the hosted generative-AI APIs behind one streaming call.
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations import model, and the orchestrator
// uses Provider without importing the provider package.
type Provider interface {
	// Chat streams a response for req, invoking callback for every fragment.
	Chat(ctx context.Context, req Request, callback StreamCallback) error

	// ListModels returns available models for this provider.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// GetModel returns the model name used for API calls.
	GetModel() string

	// GetDisplayName returns the model name formatted for UI display.
	GetDisplayName() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}
