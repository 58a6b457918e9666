// Package provider adapts hosted generative-AI APIs to model.Provider.
//
// Every adapter streams plain text. Tool calls travel inside that text as
// tags (see package toolcall), so no adapter declares native tools and tool
// results are replayed to the model as user text.
//
// # Architecture
//
//   - model.Provider defines the contract
//   - GeminiProvider is the default (google.golang.org/genai)
//   - OllamaProvider, OpenAIProvider, OpenRouterProvider, AnthropicProvider
//     are alternatives selected in settings.toml
//   - NewProvider creates a provider from Config, InitializeProvider from the
//     application config and settings
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:   provider.ProviderTypeGemini,
//	    APIKey: settings.APIKey,
//	})
//	if err != nil {
//	    // handle error
//	}
//	err = p.Chat(ctx, model.Request{History: history.Turns()}, callback)
package provider

// Note: The Provider interface and StreamCallback are defined in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeGemini     ProviderType = "gemini"
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // Unused for Ollama
}
