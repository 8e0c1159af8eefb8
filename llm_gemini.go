package quizbuilder

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiLLM generates text with Google's Gemini models
type GeminiLLM struct {
	client *genai.Client
	config ModelConfig
}

// NewGeminiLLM creates a Gemini client using the Gemini API backend
func NewGeminiLLM(ctx context.Context, mc ModelConfig) (*GeminiLLM, error) {
	cc := &genai.ClientConfig{
		APIKey:  mc.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if mc.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: mc.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiLLM{client: client, config: mc}, nil
}

// Generate asks Gemini for a JSON response to the prompt
func (g *GeminiLLM) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.config.Model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(g.config.Temperature),
			MaxOutputTokens:  int32(g.config.MaxTokens),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate question: %w", err)
	}

	raw := result.Text()
	if raw == "" {
		return "", errors.New("empty response from Gemini")
	}
	VerboseLog("Received response from %s: %d characters", g.config.Model, len(raw))
	return raw, nil
}
