package mcpclient

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// searchDocsTool is the tool exposed by a meilidocs server.
const searchDocsTool = "search_docs"

// ServerConfig describes how to reach a meilidocs server.
// Supports two transport types:
// - Command transport (stdio): Provide "command" field
// - Streamable HTTP transport: Provide "url" field
type ServerConfig struct {
	Command string            `json:"command,omitempty"` // Command to execute (for stdio transport)
	Args    []string          `json:"args,omitempty"`    // Command arguments
	URL     string            `json:"url,omitempty"`     // Streamable HTTP endpoint
	Env     map[string]string `json:"env,omitempty"`     // Environment variables (stdio only)
}

// Client is an MCP client connected to a meilidocs server.
type Client struct {
	session *mcp.ClientSession
	logger  *slog.Logger
	nextID  atomic.Int64

	mu       sync.Mutex
	progress map[string][]string // progress token -> status messages
}

// New connects to the server described by config.
func New(ctx context.Context, config ServerConfig, logger *slog.Logger) (*Client, error) {
	c := &Client{
		logger:   logger,
		progress: make(map[string][]string),
	}

	client := mcp.NewClient(
		&mcp.Implementation{
			Name:    "meilidocs-client",
			Version: "1.0.0",
		},
		&mcp.ClientOptions{
			ProgressNotificationHandler: c.handleProgress,
		},
	)

	var transport mcp.Transport
	var transportType string

	if config.URL != "" {
		transport = &mcp.StreamableClientTransport{
			Endpoint: config.URL,
		}
		transportType = "streamable-http"
	} else if config.Command != "" {
		cmd := exec.Command(config.Command, config.Args...)
		if len(config.Env) > 0 {
			env := os.Environ()
			for k, v := range config.Env {
				env = append(env, fmt.Sprintf("%s=%s", k, v))
			}
			cmd.Env = env
		}
		transport = &mcp.CommandTransport{Command: cmd}
		transportType = "stdio"
	} else {
		return nil, fmt.Errorf("no transport configured: must provide either 'command' or 'url'")
	}

	// Connect also runs the initialize handshake
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to meilidocs server (%s): %w", transportType, err)
	}

	logger.Info("Connected to meilidocs server", "transport", transportType)

	c.session = session
	return c, nil
}

func (c *Client) handleProgress(ctx context.Context, req *mcp.ProgressNotificationClientRequest) {
	token := fmt.Sprint(req.Params.ProgressToken)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress[token] = append(c.progress[token], req.Params.Message)
}

// SearchDocs calls search_docs and returns its text, whether the server
// flagged it as a failure, and the progress token used for the call.
func (c *Client) SearchDocs(ctx context.Context, query string) (text string, failed bool, token string, err error) {
	token = fmt.Sprintf("search-%d", c.nextID.Add(1))

	result, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Meta:      mcp.Meta{"progressToken": token},
		Name:      searchDocsTool,
		Arguments: map[string]any{"query": query},
	})
	if err != nil {
		return "", false, token, fmt.Errorf("tools/call failed: %w", err)
	}

	if len(result.Content) == 0 {
		return "", result.IsError, token, fmt.Errorf("%s returned no content", searchDocsTool)
	}
	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return "", result.IsError, token, fmt.Errorf("%s returned %T, want text", searchDocsTool, result.Content[0])
	}

	c.logger.Debug("search_docs completed", "query", query, "failed", result.IsError)
	return textContent.Text, result.IsError, token, nil
}

// Progress returns the status messages received so far for token.
// Notifications may arrive shortly after the call they belong to returns.
func (c *Client) Progress(token string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.progress[token]...)
}

// Close terminates the connection.
func (c *Client) Close() error {
	if err := c.session.Close(); err != nil {
		c.logger.Warn("meilidocs session close error", "error", err)
		return err
	}
	return nil
}
