package client

import (
	"context"
	"fmt"
	"strings"

	"notesmarket/dashboard/internal/config"

	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// TextGenerator produces article text from a prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini backed TextGenerator. The API key is
// taken from cfg only.
func NewGeminiGenerator(ctx context.Context, cfg config.GeminiConfig) (TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash-lite"
	}

	return &geminiGenerator{client: client, model: model}, nil
}

func (g *geminiGenerator) Model() string {
	return g.model
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("failed to generate content: empty response from %s", g.model)
	}

	log.Debugf("Generated %d characters with %s", len(text), g.model)
	return text, nil
}
