package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"maple/model"
)

// OpenRouterProvider implements model.Provider against OpenRouter, which is
// OpenAI-compatible, using the OpenAI Go SDK.
type OpenRouterProvider struct {
	client  openai.Client
	model   string
	baseURL string
	apiKey  string
}

// NewOpenRouterProvider creates a new OpenRouter provider instance.
//
// Parameters:
//   - baseURL: OpenRouter API base URL ("https://openrouter.ai/api/v1")
//   - apiKey: OpenRouter API key
//   - model: Initial model to use (can be changed with SetModel)
func NewOpenRouterProvider(baseURL, apiKey, model string) (*OpenRouterProvider, error) {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}
	if model == "" {
		model = "google/gemini-2.5-flash"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenRouterProvider{
		client:  client,
		model:   model,
		baseURL: baseURL,
		apiKey:  apiKey,
	}, nil
}

// Chat implements model.Provider with streaming.
func (p *OpenRouterProvider) Chat(ctx context.Context, req model.Request, callback model.StreamCallback) error {
	params := openai.ChatCompletionNewParams{
		Messages:    ConvertToOpenAIMessages(req.SystemInstruction, FlattenHistory(req.History)),
		Model:       openai.ChatModel(p.model),
		Temperature: openai.Float(float64(req.Temperature)),
	}
	return streamOpenAI(ctx, p.client, params, callback, "OpenRouter")
}

// ListModels implements model.Provider with prefix stripping.
func (p *OpenRouterProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	modelsPage, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list OpenRouter models: %w", err)
	}

	result := make([]model.ModelInfo, 0, len(modelsPage.Data))
	for _, m := range modelsPage.Data {
		result = append(result, model.ModelInfo{
			Name:         stripProviderPrefix(m.ID), // Display: "llama-3.2-90b-instruct"
			InternalName: m.ID,                      // API: "meta-llama/llama-3.2-90b-instruct"
			Provider:     string(ProviderTypeOpenRouter),
		})
	}

	return result, nil
}

// GetModel returns the full model name with vendor prefix for API calls.
// Example: "google/gemini-2.5-flash"
func (p *OpenRouterProvider) GetModel() string {
	return p.model
}

// GetDisplayName returns the model name with vendor prefix stripped.
// Example: "google/gemini-2.5-flash" → "gemini-2.5-flash"
func (p *OpenRouterProvider) GetDisplayName() string {
	return stripProviderPrefix(p.model)
}

func (p *OpenRouterProvider) SetModel(model string) {
	p.model = model
}

// Ping implements model.Provider by attempting to list models.
func (p *OpenRouterProvider) Ping(ctx context.Context) error {
	_, err := p.client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("OpenRouter ping failed: %w", err)
	}
	return nil
}

// stripProviderPrefix removes vendor prefixes from OpenRouter model names.
// "meta-llama/llama-3.2-90b-instruct" → "llama-3.2-90b-instruct"
func stripProviderPrefix(modelName string) string {
	if idx := strings.Index(modelName, "/"); idx != -1 {
		return modelName[idx+1:]
	}
	return modelName
}
