package llm

import (
	"context"
	"errors"
	"strings"
)

// MockProvider implements LLMProvider for testing purposes. It supports
// fixed response sequences, pattern-based responses keyed on the last user
// message, and error simulation.
type MockProvider struct {
	name          string
	responses     []string
	responseIndex int
	simulateError bool
	errorMessage  string
	patterns      map[string]string // Pattern-based responses
	callCount     int               // Track number of calls for testing
}

// NewMockProvider creates a new mock LLM provider with configurable responses
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		name:     name,
		patterns: make(map[string]string),
	}
}

// CallLLM simulates an LLM call and returns configured responses or errors
func (m *MockProvider) CallLLM(ctx context.Context, messages []Message) (Message, error) {
	m.callCount++

	if err := ctx.Err(); err != nil {
		return Message{}, err
	}

	if m.simulateError {
		if m.errorMessage != "" {
			return Message{}, errors.New(m.errorMessage)
		}
		return Message{}, errors.New("simulated API error from " + m.name)
	}

	// Pattern-based responses match against the last user message first
	if len(m.patterns) > 0 && len(messages) > 0 {
		lastMessage := messages[len(messages)-1]
		if lastMessage.Role == RoleUser {
			userInput := strings.ToLower(lastMessage.Content)
			for pattern, response := range m.patterns {
				if strings.Contains(userInput, strings.ToLower(pattern)) {
					return Message{Role: RoleAssistant, Content: response}, nil
				}
			}
		}
	}

	if len(m.responses) == 0 {
		return Message{Role: RoleAssistant, Content: "Default mock response"}, nil
	}

	response := m.responses[m.responseIndex]
	// Cycle through responses for multiple calls
	m.responseIndex = (m.responseIndex + 1) % len(m.responses)

	return Message{Role: RoleAssistant, Content: response}, nil
}

// GetName returns the mock provider name
func (m *MockProvider) GetName() string {
	return m.name
}

// SetResponses configures the responses that the mock will return
func (m *MockProvider) SetResponses(responses ...string) {
	m.responses = responses
	m.responseIndex = 0
}

// AddResponse adds a single response to the response list
func (m *MockProvider) AddResponse(response string) {
	m.responses = append(m.responses, response)
}

// SetError configures the mock to simulate an error
func (m *MockProvider) SetError(shouldError bool, errorMessage string) {
	m.simulateError = shouldError
	m.errorMessage = errorMessage
}

// SetResponsePattern configures responses based on input keywords, for
// example {"fix": "SELECT 1"}.
func (m *MockProvider) SetResponsePattern(patterns map[string]string) {
	m.patterns = patterns
}

// GetCallCount returns the number of times CallLLM has been called
func (m *MockProvider) GetCallCount() int {
	return m.callCount
}

// Reset resets the mock provider to initial state
func (m *MockProvider) Reset() {
	m.responseIndex = 0
	m.simulateError = false
	m.errorMessage = ""
	m.patterns = make(map[string]string)
	m.callCount = 0
}
