package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Generator performs one single-turn completion and returns the response text.
type Generator interface {
	Generate(ctx context.Context, apiKey, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error)
}

// GeminiGenerator talks to the Gemini API. A client is built for every call
// from the key handed in, nothing is kept between calls.
type GeminiGenerator struct {
	// BaseURL overrides the API endpoint when set.
	BaseURL string
}

func (g GeminiGenerator) Generate(ctx context.Context, apiKey, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if result == nil {
		return "", ErrNoText
	}
	return result.Text(), nil
}
