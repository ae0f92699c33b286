package mcp

import (
	"encoding/json"
	"fmt"
	"os"
)

// ServerSpec declares how to launch one tool server: a child process spoken
// to over stdio.
type ServerSpec struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// ConfigError reports a malformed tool-server launch specification.
type ConfigError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := e.Reason
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("mcp config %s: %s", e.Path, msg)
	}
	return "mcp config: " + msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LoadConfig reads a tool-server configuration file. Both the bare
// {"<name>": {command, args, env}} map and the {"mcpServers": {...}} wrapper
// used by several desktop AI tools are accepted, so existing configurations
// port over unchanged.
func LoadConfig(path string) (map[string]ServerSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	servers, err := ParseConfig(raw)
	if err != nil {
		if cfgErr, ok := err.(*ConfigError); ok {
			cfgErr.Path = path
		}
		return nil, err
	}
	return servers, nil
}

// ParseConfig decodes a tool-server configuration document.
func ParseConfig(raw []byte) (map[string]ServerSpec, error) {
	var wrapper struct {
		MCPServers map[string]ServerSpec `json:"mcpServers"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.MCPServers != nil {
		return validateServers(wrapper.MCPServers)
	}

	var servers map[string]ServerSpec
	if err := json.Unmarshal(raw, &servers); err != nil {
		return nil, &ConfigError{Reason: "not a server map", Err: err}
	}
	return validateServers(servers)
}

func validateServers(servers map[string]ServerSpec) (map[string]ServerSpec, error) {
	for name, spec := range servers {
		if spec.Command == "" {
			return nil, &ConfigError{Reason: fmt.Sprintf("server %q has no command", name)}
		}
	}
	return servers, nil
}
