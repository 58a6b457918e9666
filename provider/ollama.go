package provider

import (
	"context"
	"errors"
	"fmt"

	"maple/model"
	"maple/ollama"
)

// OllamaProvider wraps ollama.Client to implement model.Provider.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL. If empty, defaults to "http://localhost:11434".
//   - model: The model name to use. If empty, defaults to "llama3.1:latest".
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// Chat implements model.Provider. The system instruction is sent as a leading
// system message.
func (p *OllamaProvider) Chat(ctx context.Context, req model.Request, callback model.StreamCallback) error {
	messages := ConvertToOllamaMessages(req.SystemInstruction, FlattenHistory(req.History))
	options := map[string]any{"temperature": req.Temperature}

	err := p.client.Chat(ctx, messages, options, ollama.StreamCallback(callback))
	if err != nil && !errors.Is(err, model.ErrStopStream) {
		return fmt.Errorf("Ollama streaming error: %w", err)
	}
	return err
}

// ListModels implements model.Provider.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	names, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]model.ModelInfo, 0, len(names))
	for _, n := range names {
		result = append(result, model.ModelInfo{
			Name:         n,
			InternalName: n, // Ollama uses same name for display and API
			Provider:     string(ProviderTypeOllama),
		})
	}
	return result, nil
}

func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// GetDisplayName returns the model name; Ollama has no vendor prefix.
func (p *OllamaProvider) GetDisplayName() string {
	return p.client.GetModel()
}

func (p *OllamaProvider) SetModel(model string) {
	p.client.SetModel(model)
}

func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
