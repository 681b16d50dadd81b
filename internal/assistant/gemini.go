package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiDialer opens a Gemini client for a given API key.
// A nil generation setting leaves the model's default in place; zero is applied as given.
type GeminiDialer struct {
	Model       string
	Temperature *float32
	TopP        *float32
	MaxTokens   *int32
	// Options are appended to the client options, e.g. option.WithEndpoint in tests.
	Options []option.ClientOption
}

// GeminiClient generates text with a single Gemini model.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

func (d GeminiDialer) Dial(ctx context.Context, apiKey string) (Generator, error) {
	client, err := d.NewClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NewClient creates a GeminiClient. Callers must Close it.
func (d GeminiDialer) NewClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if strings.TrimSpace(d.Model) == "" {
		return nil, &ServiceError{Kind: KindModel, Err: fmt.Errorf("no model configured")}
	}
	opts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, d.Options...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, classify(d.Model, fmt.Errorf("failed to create Gemini client: %w", err))
	}

	model := client.GenerativeModel(d.Model)
	d.configure(model)

	return &GeminiClient{
		client: client,
		model:  model,
		name:   d.Model,
	}, nil
}

func (d GeminiDialer) configure(model *genai.GenerativeModel) {
	if d.Temperature != nil {
		model.SetTemperature(*d.Temperature)
	}
	if d.TopP != nil {
		model.SetTopP(*d.TopP)
	}
	if d.MaxTokens != nil {
		model.SetMaxOutputTokens(*d.MaxTokens)
	}
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// Generate sends prompt as a single user turn and returns the concatenated text parts.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classify(g.name, fmt.Errorf("failed to generate content: %w", err))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &ServiceError{Kind: KindEmpty, Model: g.name}
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}
	if builder.Len() == 0 {
		return "", &ServiceError{Kind: KindEmpty, Model: g.name}
	}
	return builder.String(), nil
}

// CheckModel asks the API whether the configured model exists.
func (g *GeminiClient) CheckModel(ctx context.Context) error {
	if _, err := g.model.Info(ctx); err != nil {
		return classify(g.name, fmt.Errorf("failed to fetch model info: %w", err))
	}
	return nil
}
