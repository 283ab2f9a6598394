// Package agent assembles the coding-agent graph into a ready-to-run SQL
// analyst: LLM-backed planning, query generation, repair and explanation
// around a pluggable execution runner.
package agent

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/alt-coder/codegraph-go/core"
)

// KeyQuestion is the state field carrying the user's question into a run.
const KeyQuestion = "question"

// Config holds the SQL analyst settings. All fields have working defaults;
// a zero config runs the full pipeline without human review.
type Config struct {
	// Dialect names the SQL dialect for prompts, e.g. "sqlite".
	Dialect string `yaml:"dialect"`
	// SchemaDescription is the table/column text embedded into prompts.
	SchemaDescription string `yaml:"schema_description"`

	// HumanInTheLoop inserts the review step between generation and
	// execution.
	HumanInTheLoop bool `yaml:"human_in_the_loop"`
	// BypassRecommendedSteps skips the planning step.
	BypassRecommendedSteps bool `yaml:"bypass_recommended_steps"`
	// BypassExplainCode skips the explanation step.
	BypassExplainCode bool `yaml:"bypass_explain_code"`

	// MaxRetries bounds the fix/execute loop. Default: 3.
	MaxRetries int `yaml:"max_retries"`
	// ReportFields lists the state fields included in the final report.
	ReportFields []string `yaml:"report_fields"`
	// QueryTimeout bounds one execution attempt. Zero disables the bound.
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		Dialect:    "sqlite",
		MaxRetries: core.DefaultMaxRetries,
		ReportFields: []string{
			KeyQuestion,
			core.KeyRecommendedSteps,
			core.KeyCodeSnippet,
			core.KeyExecutionResult,
			core.KeyError,
		},
		QueryTimeout: 30 * time.Second,
	}
}

// LoadConfig reads a YAML config file over the defaults, so omitted fields
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative, got %d", c.MaxRetries)
	}
	if len(c.ReportFields) == 0 {
		return fmt.Errorf("report_fields cannot be empty")
	}
	if c.QueryTimeout < 0 {
		return fmt.Errorf("query_timeout cannot be negative")
	}
	return nil
}
