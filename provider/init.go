package provider

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"maple/config"
	"maple/model"
)

// ErrAIDisabled means the configured provider needs an API key and
// settings.json does not provide one.
var ErrAIDisabled = errors.New("AI API key (API_KEY) not found in settings.json; AI features are disabled")

// InitializeProvider creates the provider selected in cfg, taking the API key
// from settings. settings may be nil when settings.json could not be loaded.
//
// The provider package owns the provider lifecycle, so this logic lives here
// rather than in config or the UI.
func InitializeProvider(cfg *config.Config, settings *config.Settings) (model.Provider, error) {
	providerType := MapProviderIDToType(cfg.AI.Provider)

	apiKey := ""
	if settings != nil {
		apiKey = settings.APIKey
	}
	if apiKey == "" && RequiresAPIKey(providerType) {
		return nil, ErrAIDisabled
	}

	p, err := NewProvider(Config{
		Type:    providerType,
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider %s: %w", cfg.AI.Provider, err)
	}

	log.Debug().Str("provider", string(providerType)).Str("model", p.GetModel()).Msg("provider initialized")
	return p, nil
}
