package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nimec77/tandem/pkg/model"
)

const (
	clientName    = "tandem"
	clientVersion = "1.0.0"
)

// Client manages connections to external tool servers and routes tool
// invocations to the owning server. The registry is built once during
// construction and read-only afterward, so concurrent lookups need no
// synchronization.
type Client struct {
	sessions map[string]*mcpsdk.ClientSession
	routes   map[string]string // tool name -> server name
	defs     []model.ToolDefinition
	log      *slog.Logger
}

// NewClient launches the configured tool servers and performs the discovery
// handshake with each. Startup is best-effort per server: a server whose
// process or handshake fails is logged as a warning and excluded; with every
// server failing the client simply reports no tools available.
func NewClient(ctx context.Context, servers map[string]ServerSpec, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		sessions: map[string]*mcpsdk.ClientSession{},
		routes:   map[string]string{},
		log:      logger,
	}

	// Registration order is deterministic so name collisions resolve the
	// same way on every start.
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)

	defsByName := map[string]model.ToolDefinition{}
	for _, name := range names {
		c.connectServer(ctx, name, servers[name], defsByName)
	}

	toolNames := make([]string, 0, len(defsByName))
	for name := range defsByName {
		toolNames = append(toolNames, name)
	}
	sort.Strings(toolNames)
	for _, name := range toolNames {
		c.defs = append(c.defs, defsByName[name])
	}

	return c
}

func (c *Client) connectServer(ctx context.Context, name string, spec ServerSpec, defsByName map[string]model.ToolDefinition) {
	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Env = os.Environ()
	for k, v := range spec.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	cli := mcpsdk.NewClient(&mcpsdk.Implementation{Name: clientName, Version: clientVersion}, nil)
	session, err := cli.Connect(ctx, &mcpsdk.CommandTransport{Command: cmd}, nil)
	if err != nil {
		c.log.Warn("mcp server connect failed", "server", name, "error", err)
		return
	}

	resp, err := session.ListTools(ctx, nil)
	if err != nil {
		c.log.Warn("mcp tool discovery failed", "server", name, "error", err)
		_ = session.Close()
		return
	}

	c.sessions[name] = session
	for _, tl := range resp.Tools {
		schema, err := schemaToMap(tl.InputSchema)
		if err != nil {
			c.log.Warn("mcp tool schema unusable", "server", name, "tool", tl.Name, "error", err)
			continue
		}
		if prev, ok := c.routes[tl.Name]; ok {
			c.log.Warn("mcp tool name collision, last registration wins",
				"tool", tl.Name, "previous", prev, "server", name)
		}
		c.routes[tl.Name] = name
		defsByName[tl.Name] = model.ToolDefinition{
			Name:        tl.Name,
			Description: tl.Description,
			InputSchema: schema,
		}
	}
	c.log.Info("mcp server connected", "server", name, "tools", len(resp.Tools))
}

// HasTools reports whether any tool survived discovery.
func (c *Client) HasTools() bool {
	return len(c.routes) > 0
}

// ToolDefinitions returns the registry flattened across all connected
// servers, sorted by tool name.
func (c *Client) ToolDefinitions() []model.ToolDefinition {
	out := make([]model.ToolDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Invoke routes a tool call to the owning server and flattens the result
// into text. An unrecognized name yields ErrUnknownTool.
func (c *Client) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	server, ok := c.routes[name]
	if !ok {
		return "", &ToolError{Tool: name, Err: ErrUnknownTool}
	}
	session := c.sessions[server]

	res, err := session.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", &ToolError{Tool: name, Err: err}
	}

	out := flattenContent(res.Content)
	if res.IsError {
		return "", &ToolError{Tool: name, Err: fmt.Errorf("server reported failure: %s", out)}
	}
	return out, nil
}

// Shutdown releases every connection. Failures are logged, never surfaced;
// the process is exiting regardless.
func (c *Client) Shutdown() {
	for name, session := range c.sessions {
		if err := session.Close(); err != nil {
			c.log.Warn("mcp server shutdown failed", "server", name, "error", err)
		}
	}
}

// schemaToMap converts the SDK's schema representation into the plain
// JSON-Schema object the providers serialize.
func schemaToMap(schema any) (map[string]any, error) {
	if schema == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}, nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// flattenContent joins text content blocks; non-text blocks fall back to
// their JSON form so nothing the server returned is dropped.
func flattenContent(content []mcpsdk.Content) string {
	var parts []string
	for _, item := range content {
		if text, ok := item.(*mcpsdk.TextContent); ok {
			parts = append(parts, text.Text)
			continue
		}
		if raw, err := json.Marshal(item); err == nil {
			parts = append(parts, string(raw))
		}
	}
	return strings.Join(parts, "\n")
}
