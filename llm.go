package quizbuilder

import (
	"context"
	"fmt"
)

// Supported model providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// LLM turns a prompt into one complete text response.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// LLMFunc adapts a function to the LLM interface
type LLMFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f(ctx, prompt)
func (f LLMFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ModelConfig selects and tunes the hosted model
type ModelConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	APIKey      string  `yaml:"-"`
	BaseURL     string  `yaml:"base_url,omitempty"`
}

// DefaultModelConfig favours varied questions over deterministic ones.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Provider:    ProviderOpenAI,
		Model:       "gpt-4o",
		Temperature: 0.8,
		MaxTokens:   500,
	}
}

// Validate checks the model settings
func (mc ModelConfig) Validate() error {
	switch mc.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("%w: unknown model provider %q", ErrInvalidConfiguration, mc.Provider)
	}
	if mc.Model == "" {
		return fmt.Errorf("%w: model name is required", ErrInvalidConfiguration)
	}
	if mc.Temperature < 0 || mc.Temperature > 2 {
		return fmt.Errorf("%w: temperature %.2f out of range [0, 2]", ErrInvalidConfiguration, mc.Temperature)
	}
	if mc.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive", ErrInvalidConfiguration)
	}
	return nil
}

// NewLLM builds the client for the configured provider.
func NewLLM(ctx context.Context, mc ModelConfig) (LLM, error) {
	if err := mc.Validate(); err != nil {
		return nil, err
	}
	if mc.APIKey == "" {
		return nil, fmt.Errorf("%w: API key for %s is required", ErrMissingDependency, mc.Provider)
	}

	switch mc.Provider {
	case ProviderGemini:
		return NewGeminiLLM(ctx, mc)
	default:
		return NewOpenAILLM(mc), nil
	}
}
