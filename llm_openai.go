package quizbuilder

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAILLM generates text with the OpenAI chat completions API
type OpenAILLM struct {
	client *openai.Client
	config ModelConfig
}

// NewOpenAILLM creates a new OpenAI backed LLM
func NewOpenAILLM(mc ModelConfig) *OpenAILLM {
	cfg := openai.DefaultConfig(mc.APIKey)
	if mc.BaseURL != "" {
		cfg.BaseURL = mc.BaseURL
	}
	return &OpenAILLM{
		client: openai.NewClientWithConfig(cfg),
		config: mc,
	}
}

// Generate sends the prompt as a single user message and returns the reply text
func (o *OpenAILLM) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: o.config.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert quiz question generator. Always answer with a single JSON object.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: o.config.Temperature,
			MaxTokens:   o.config.MaxTokens,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate question: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", o.config.Model)
	}

	VerboseLog("Received response from %s, finish reason %s", o.config.Model, resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}
