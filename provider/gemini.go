package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"maple/model"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiSafetyCategories are the harm categories whose blocking is disabled.
// Code, file contents and logs routinely trip the default thresholds.
var geminiSafetyCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

// GeminiProvider implements model.Provider with the Google Gen AI SDK
// against the Gemini Developer API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini provider.
//
// Parameters:
//   - baseURL: optional API endpoint override, empty for the public endpoint
//   - apiKey: Gemini API key (required)
//   - model: initial model, default "gemini-2.5-flash"
func NewGeminiProvider(baseURL, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// Chat implements model.Provider by streaming GenerateContent.
func (p *GeminiProvider) Chat(ctx context.Context, req model.Request, callback model.StreamCallback) error {
	contents := convertToGeminiContents(req.History)
	cfg := buildGeminiConfig(req)

	for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, contents, cfg) {
		if err != nil {
			return fmt.Errorf("Gemini streaming error: %w", err)
		}
		text := resp.Text()
		if text == "" || callback == nil {
			continue
		}
		if err := callback(text); err != nil {
			return err
		}
	}
	return nil
}

func buildGeminiConfig(req model.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	for _, c := range geminiSafetyCategories {
		cfg.SafetySettings = append(cfg.SafetySettings, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockThresholdBlockNone,
		})
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	return cfg
}

// convertToGeminiContents maps the flattened history onto Gemini's user and
// model roles.
func convertToGeminiContents(turns []model.Turn) []*genai.Content {
	messages := FlattenHistory(turns)
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == roleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents
}

// ListModels implements model.Provider, keeping models that can generate
// content.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	var result []model.ModelInfo
	for m, err := range p.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list Gemini models: %w", err)
		}
		if !supportsGenerate(m.SupportedActions) {
			continue
		}
		id := strings.TrimPrefix(m.Name, "models/")
		result = append(result, model.ModelInfo{
			Name:         id,
			InternalName: id,
			Provider:     string(ProviderTypeGemini),
		})
	}
	return result, nil
}

func supportsGenerate(actions []string) bool {
	if len(actions) == 0 {
		return true
	}
	for _, a := range actions {
		if a == "generateContent" {
			return true
		}
	}
	return false
}

func (p *GeminiProvider) GetModel() string {
	return p.model
}

func (p *GeminiProvider) GetDisplayName() string {
	return p.model
}

func (p *GeminiProvider) SetModel(model string) {
	p.model = model
}

// Ping implements model.Provider by fetching the active model's metadata.
func (p *GeminiProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.Get(ctx, p.model, nil); err != nil {
		return fmt.Errorf("Gemini ping failed: %w", err)
	}
	return nil
}
