package generation

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/actuallystonmai/product-recommendation-service/internal/config"
)

type generateContentAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiCompleter calls a Gemini model through the GenAI SDK.
type GeminiCompleter struct {
	models      generateContentAPI
	model       string
	maxTokens   int32
	temperature float32
}

func NewGeminiCompleter(ctx context.Context, cfg config.GenerationConfig) (*GeminiCompleter, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiCompleter{
		models:      client.Models,
		model:       cfg.GeminiModel,
		maxTokens:   int32(cfg.MaxTokens),
		temperature: float32(cfg.Temperature),
	}, nil
}

func (g *GeminiCompleter) Name() string { return config.ProviderGemini }

func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate %s: %w", g.model, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini generate: no candidates returned")
	}
	return resp.Text(), nil
}
