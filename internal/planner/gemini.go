package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	generateTimeout = 20 * time.Second
	listTimeout     = 10 * time.Second
)

// modelsAPI is the part of genai.Models used by GeminiClient.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	List(ctx context.Context, config *genai.ListModelsConfig) (genai.Page[genai.Model], error)
}

// GeminiClient generates text with Google's Gemini API.
type GeminiClient struct {
	models modelsAPI
	model  string
}

// NewGeminiClient creates a client for apiKey. An empty model selects DefaultModel.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("planner: create genai client: %w", err)
	}
	return newGeminiClient(client.Models, model), nil
}

func newGeminiClient(models modelsAPI, model string) *GeminiClient {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiClient{models: models, model: model}
}

// Model returns the default model name.
func (c *GeminiClient) Model() string { return c.model }

// Generate sends prompt as a single user turn and returns the response text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts Options) (*Generation, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	model := opts.Model
	if model == "" {
		model = c.model
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()
	resp, err := c.models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(temperature),
			MaxOutputTokens: maxTokens,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("planner: generate with %s: %w", model, err)
	}
	return &Generation{Text: resp.Text(), Model: model}, nil
}

// ListModels returns the first page of models available to the API key.
func (c *GeminiClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()
	page, err := c.models.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("planner: list models: %w", err)
	}
	out := make([]ModelInfo, 0, len(page.Items))
	for _, m := range page.Items {
		if m == nil {
			continue
		}
		out = append(out, ModelInfo{
			Name:             m.Name,
			DisplayName:      m.DisplayName,
			Description:      m.Description,
			InputTokenLimit:  m.InputTokenLimit,
			OutputTokenLimit: m.OutputTokenLimit,
			SupportedActions: m.SupportedActions,
		})
	}
	return out, nil
}
