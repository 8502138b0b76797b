package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"voicekit/core"
)

// Config holds the configuration for the OpenAI reply generator
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// OpenAILLM generates conversational replies with the chat completions API
type OpenAILLM struct {
	config Config
	client *openai.Client
	logger *core.Logger
}

// NewOpenAILLM creates a new OpenAI reply generator with the provided config
func NewOpenAILLM(config Config, logger *core.Logger) *OpenAILLM {
	if config.Model == "" {
		config.Model = openai.GPT3Dot5Turbo
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 150
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &OpenAILLM{
		config: config,
		client: openai.NewClient(config.APIKey),
		logger: logger,
	}
}

// Reply requests a single chat completion for the latest user utterance.
// The conversation context accumulated by the caller is deliberately not
// part of the request; only systemPrompt and userText are sent.
func (s *OpenAILLM) Reply(ctx context.Context, systemPrompt, userText string) (string, error) {
	if s.config.APIKey == "" {
		return "", errors.New("OpenAI API key is required")
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.config.Model,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: completion returned no choices")
	}

	s.logger.Debugf("OpenAI LLM: completion used %d tokens", resp.Usage.TotalTokens)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
