package mcp

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfigBareMap(t *testing.T) {
	raw := []byte(`{
		"filesystem": {"command": "mcp-fs", "args": ["--root", "/tmp"]},
		"fetch": {"command": "mcp-fetch", "env": {"TIMEOUT": "30"}}
	}`)
	servers, err := ParseConfig(raw)
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(servers))
	}
	fs := servers["filesystem"]
	if fs.Command != "mcp-fs" || len(fs.Args) != 2 || fs.Args[1] != "/tmp" {
		t.Fatalf("filesystem spec incomplete: %+v", fs)
	}
	if servers["fetch"].Env["TIMEOUT"] != "30" {
		t.Fatalf("env not parsed: %+v", servers["fetch"])
	}
}

func TestParseConfigMCPServersWrapper(t *testing.T) {
	raw := []byte(`{"mcpServers": {"filesystem": {"command": "mcp-fs"}}}`)
	servers, err := ParseConfig(raw)
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if len(servers) != 1 || servers["filesystem"].Command != "mcp-fs" {
		t.Fatalf("wrapper form not accepted: %+v", servers)
	}
}

func TestParseConfigRejectsMissingCommand(t *testing.T) {
	_, err := ParseConfig([]byte(`{"broken": {"args": ["x"]}}`))
	if err == nil || !strings.Contains(err.Error(), `server "broken" has no command`) {
		t.Fatalf("expected missing-command error, got %v", err)
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
}

func TestParseConfigRejectsNonObject(t *testing.T) {
	if _, err := ParseConfig([]byte(`["not", "a", "map"]`)); err == nil {
		t.Fatal("expected error for non-object document")
	}
	if _, err := ParseConfig([]byte(`{invalid json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servers.json")
	if err := os.WriteFile(path, []byte(`{"fs": {"command": "mcp-fs"}}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	servers, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if servers["fs"].Command != "mcp-fs" {
		t.Fatalf("unexpected servers: %+v", servers)
	}

	_, err = LoadConfig(filepath.Join(dir, "missing.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "missing.json") {
		t.Fatalf("error should name the file: %v", err)
	}
}
