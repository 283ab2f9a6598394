// Package structured turns raw LLM text into the structured values the
// coding-agent workflow stores in state: fenced code snippets and YAML
// step plans.
package structured

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alt-coder/codegraph-go/llm"
	yaml "gopkg.in/yaml.v3"
)

// Config holds common configuration for structured parsing
type Config struct {
	MaxRetries int           // Maximum retry attempts when the model returns unparseable output
	Timeout    time.Duration // LLM call timeout
}

// DefaultConfig returns a default configuration for structured parsing
func DefaultConfig() *Config {
	return &Config{
		MaxRetries: 3,
		Timeout:    30 * time.Second,
	}
}

// ValidateConfig validates the configuration parameters
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if config.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be greater than zero")
	}
	return nil
}

// Plan is the structured recommendation the recommend step produces.
type Plan struct {
	Steps   []string `yaml:"steps" description:"Ordered, concrete analysis steps"`
	Summary string   `yaml:"summary,omitempty" description:"One-line overview of the approach"`
}

// Text renders the plan as the numbered-step text embedded into the create
// prompt.
func (p *Plan) Text() string {
	var b strings.Builder
	if p.Summary != "" {
		b.WriteString(p.Summary)
		b.WriteString("\n")
	}
	for i, step := range p.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return strings.TrimRight(b.String(), "\n")
}

var fencedBlock = regexp.MustCompile("(?s)```([a-zA-Z0-9_-]*)[ \t]*\n(.*?)```")

// ExtractCodeBlock returns the contents of the first fenced block tagged
// with lang, falling back to the first fenced block of any language and
// finally to the trimmed text itself. Models fence their code most of the
// time, but not reliably.
func ExtractCodeBlock(text, lang string) string {
	matches := fencedBlock.FindAllStringSubmatch(text, -1)
	for _, m := range matches {
		if strings.EqualFold(m[1], lang) {
			return strings.TrimSpace(m[2])
		}
	}
	if len(matches) > 0 {
		return strings.TrimSpace(matches[0][2])
	}
	return strings.TrimSpace(text)
}

// ParsePlan decodes a YAML plan, accepting either a bare document or one
// wrapped in a fenced block.
func ParsePlan(text string) (*Plan, error) {
	payload := ExtractCodeBlock(text, "yaml")
	var plan Plan
	if err := yaml.Unmarshal([]byte(payload), &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if len(plan.Steps) == 0 {
		return nil, fmt.Errorf("parse plan: no steps found")
	}
	return &plan, nil
}

// Parser asks an LLM for structured output and retries when the response
// does not parse.
type Parser struct {
	provider llm.LLMProvider
	config   *Config
}

// NewParser creates a new structured parser with the specified LLM provider and configuration
func NewParser(provider llm.LLMProvider, config *Config) (*Parser, error) {
	if provider == nil {
		return nil, fmt.Errorf("llm provider cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	return &Parser{provider: provider, config: config}, nil
}

// ExtractPlan prompts for a YAML step plan and parses the response,
// retrying on unparseable output.
func (p *Parser) ExtractPlan(ctx context.Context, messages []llm.Message) (*Plan, error) {
	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		response, err := p.call(ctx, messages)
		if err != nil {
			return nil, err
		}
		plan, err := ParsePlan(response.Content)
		if err == nil {
			return plan, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no parseable plan after %d attempts: %w", p.config.MaxRetries+1, lastErr)
}

// ExtractCode prompts for code and returns the fenced snippet from the
// response.
func (p *Parser) ExtractCode(ctx context.Context, messages []llm.Message, lang string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		response, err := p.call(ctx, messages)
		if err != nil {
			return "", err
		}
		code := ExtractCodeBlock(response.Content, lang)
		if code != "" {
			return code, nil
		}
		lastErr = fmt.Errorf("empty code response")
	}
	return "", fmt.Errorf("no code after %d attempts: %w", p.config.MaxRetries+1, lastErr)
}

func (p *Parser) call(ctx context.Context, messages []llm.Message) (llm.Message, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()
	return p.provider.CallLLM(callCtx, messages)
}
