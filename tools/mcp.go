// Package tools connects the workflow to external execution backends over
// the Model Context Protocol.
package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/client"
	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/transport"
)

// MCPRunnerConfig configures a connection to an MCP server that exposes a
// code-execution tool.
type MCPRunnerConfig struct {
	Command     string        // Command launching the MCP server over stdio
	Args        []string      // Arguments for the command
	Tool        string        // Name of the tool that executes code
	CodeArg     string        // Tool argument carrying the snippet, default "code"
	CallTimeout time.Duration // Per-call timeout, default 30s
}

// Validate checks the configuration is complete.
func (c *MCPRunnerConfig) Validate() error {
	if c.Command == "" {
		return fmt.Errorf("mcp runner: command is required")
	}
	if c.Tool == "" {
		return fmt.Errorf("mcp runner: tool name is required")
	}
	return nil
}

// MCPRunner executes code snippets by calling a tool on an MCP server. It
// satisfies the runner.Runner contract: the error return carries transport
// failures as well as tool-reported execution errors, so the workflow can
// route them into the fix loop.
type MCPRunner struct {
	config MCPRunnerConfig

	mu  sync.Mutex
	cli *client.Client
}

// NewMCPRunner creates a runner for the given server configuration. The
// connection is established lazily on first use.
func NewMCPRunner(config MCPRunnerConfig) (*MCPRunner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.CodeArg == "" {
		config.CodeArg = "code"
	}
	if config.CallTimeout <= 0 {
		config.CallTimeout = 30 * time.Second
	}
	return &MCPRunner{config: config}, nil
}

// Run sends the snippet to the configured tool and returns its textual
// output. A tool result flagged as an error comes back as an error so the
// caller treats it like any other execution failure. The handle argument is
// ignored; the MCP server owns its own data access.
func (r *MCPRunner) Run(ctx context.Context, code string, _ any) (any, error) {
	cli, err := r.connect()
	if err != nil {
		return nil, err
	}

	request := &protocol.CallToolRequest{
		Name: r.config.Tool,
		Arguments: map[string]any{
			r.config.CodeArg: code,
		},
	}

	callCtx, cancel := context.WithTimeout(ctx, r.config.CallTimeout)
	defer cancel()

	result, err := cli.CallTool(callCtx, request)
	if err != nil {
		return nil, fmt.Errorf("mcp tool call failed: %w", err)
	}

	text := collectText(result)
	if result.IsError {
		if text == "" {
			text = "tool reported an error with no output"
		}
		return nil, fmt.Errorf("%s", text)
	}
	return text, nil
}

// HasTool reports whether the server exposes the configured tool. Useful as
// a startup check before wiring the runner into a workflow.
func (r *MCPRunner) HasTool(ctx context.Context) (bool, error) {
	cli, err := r.connect()
	if err != nil {
		return false, err
	}

	listCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tools, err := cli.ListTools(listCtx)
	if err != nil {
		return false, fmt.Errorf("failed to list tools: %w", err)
	}
	for _, tool := range tools.Tools {
		if tool.Name == r.config.Tool {
			return true, nil
		}
	}
	return false, nil
}

// Close shuts down the MCP connection.
func (r *MCPRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cli == nil {
		return nil
	}
	err := r.cli.Close()
	r.cli = nil
	return err
}

func (r *MCPRunner) connect() (*client.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cli != nil {
		return r.cli, nil
	}

	t, err := transport.NewStdioClientTransport(r.config.Command, r.config.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to create stdio transport: %w", err)
	}

	cli, err := client.NewClient(t, client.WithClientInfo(&protocol.Implementation{
		Name:    "codegraph-runner",
		Version: "1.0.0",
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}

	r.cli = cli
	return cli, nil
}

// collectText joins the text content items of a tool result.
func collectText(result *protocol.CallToolResult) string {
	var parts []string
	for _, item := range result.Content {
		if item.GetType() != "text" {
			continue
		}
		if textContent, ok := item.(*protocol.TextContent); ok {
			parts = append(parts, textContent.Text)
		}
	}
	return strings.Join(parts, "\n")
}
