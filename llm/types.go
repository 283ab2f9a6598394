package llm

import "context"

// Message represents a generic chat message that can be used across
// different LLM providers.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string // The actual message content
}

// LLMProvider is the contract the agent's capabilities (recommend, create,
// repair, explain) program against. All implementations must honor context
// cancellation.
type LLMProvider interface {
	// CallLLM sends messages to the LLM and returns the response
	CallLLM(ctx context.Context, messages []Message) (Message, error)

	// GetName returns the name/identifier of the LLM provider
	GetName() string
}

// Config holds configuration settings shared by LLM providers.
type Config struct {
	Provider    string  // Provider name (e.g., "gemini", "openai")
	Model       string  // Model name to use
	Temperature float32 // Response creativity (0.0 to 1.0)
	MaxRetries  int     // Maximum retry attempts for failed requests
	APIKey      string  // API key for authentication
}

const (
	// RoleSystem is used for system-level messages
	RoleSystem = "system"
	// RoleUser is used for user messages
	RoleUser = "user"
	// RoleAssistant is used for assistant messages
	RoleAssistant = "assistant"
)
