package gemini

import (
	"context"
	"fmt"

	"github.com/alt-coder/codegraph-go/llm"
	"google.golang.org/genai"
)

// GeminiClient implements LLMProvider interface for Google's Gemini models
type GeminiClient struct {
	genaiClient *genai.Client
	config      *Config
}

// NewGeminiClient creates a client from the given configuration.
func NewGeminiClient(ctx context.Context, config *Config) (*GeminiClient, error) {
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

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: config.Backend,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{
		genaiClient: genaiClient,
		config:      config,
	}, nil
}

// CallLLM implements the generic interface, converting messages internally
func (c *GeminiClient) CallLLM(ctx context.Context, messages []llm.Message) (llm.Message, error) {
	result := llm.Message{}
	if len(messages) == 0 {
		return result, fmt.Errorf("no messages to send")
	}

	genaiMessages := c.convertToGenaiMessages(messages)

	response, err := c.genaiClient.Models.GenerateContent(ctx, c.config.Model, genaiMessages, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.config.Temperature),
	})
	if err != nil {
		return result, fmt.Errorf("failed to generate content: %w", err)
	}

	result.Role = llm.RoleAssistant
	result.Content = response.Text()
	return result, nil
}

// GetName returns the provider identifier
func (c *GeminiClient) GetName() string {
	return "gemini"
}

// convertToGenaiMessages converts generic messages to Gemini format
func (c *GeminiClient) convertToGenaiMessages(messages []llm.Message) []*genai.Content {
	var genaiMessages []*genai.Content
	for _, msg := range messages {
		genaiMessages = append(genaiMessages, &genai.Content{
			Role: getRole(msg.Role),
			Parts: []*genai.Part{
				{Text: msg.Content},
			},
		})
	}
	return genaiMessages
}

// getRole maps generic roles onto the two roles Gemini understands.
func getRole(role string) string {
	switch role {
	case llm.RoleAssistant:
		return genai.RoleModel
	default:
		return genai.RoleUser
	}
}
