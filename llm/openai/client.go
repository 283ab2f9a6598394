package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/alt-coder/codegraph-go/llm"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient implements LLMProvider interface for OpenAI's models
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a client from the given configuration.
func NewOpenAIClient(config *Config) (*OpenAIClient, error) {
	if config == nil {
		var err error
		config, err = NewConfigFromEnv()
		if err != nil {
			return nil, err
		}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// CallLLM implements the generic interface, converting messages internally
func (c *OpenAIClient) CallLLM(ctx context.Context, messages []llm.Message) (llm.Message, error) {
	result := llm.Message{}
	if len(messages) == 0 {
		return result, fmt.Errorf("no messages to send")
	}

	request := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    c.convertToOpenAIMessages(messages),
		Temperature: c.config.Temperature,
	}
	if c.config.MaxTokens > 0 {
		request.MaxTokens = c.config.MaxTokens
	}

	// Make API call with retries
	var response openai.ChatCompletionResponse
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		response, lastErr = c.client.CreateChatCompletion(ctx, request)
		if lastErr == nil {
			break
		}

		if attempt < c.config.MaxRetries {
			// Wait before retry with exponential backoff
			waitTime := time.Duration(attempt+1) * time.Second
			select {
			case <-time.After(waitTime):
				continue
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	if lastErr != nil {
		return result, fmt.Errorf("failed after %d retries: %w", c.config.MaxRetries, lastErr)
	}

	if len(response.Choices) == 0 {
		return result, fmt.Errorf("no choices returned from OpenAI API")
	}

	result.Role = llm.RoleAssistant
	result.Content = response.Choices[0].Message.Content
	return result, nil
}

// GetName returns the provider identifier
func (c *OpenAIClient) GetName() string {
	return "openai"
}

// convertToOpenAIMessages converts generic messages to OpenAI format
func (c *OpenAIClient) convertToOpenAIMessages(messages []llm.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := msg.Role
		switch role {
		case llm.RoleSystem, llm.RoleUser, llm.RoleAssistant:
		default:
			role = llm.RoleUser
		}
		out = append(out, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return out
}
