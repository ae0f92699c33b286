package toolbuiltin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const maxReadBytes = 1 << 20 // 1 MiB

// ListDirTool lists directory entries beneath a fixed root.
type ListDirTool struct {
	root string
}

// NewListDirTool constructs a ListDirTool rooted at dir; an empty dir means
// the current working directory.
func NewListDirTool(dir string) *ListDirTool {
	return &ListDirTool{root: resolveRoot(dir)}
}

func (t *ListDirTool) Name() string { return "list_directory" }

func (t *ListDirTool) Description() string {
	return "List the entries of a directory inside the workspace."
}

func (t *ListDirTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Directory path relative to the workspace root.",
			},
		},
	}
}

func (t *ListDirTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target, err := resolvePath(t.root, args)
	if err != nil {
		return "", err
	}
	entries, err := os.ReadDir(target)
	if err != nil {
		return "", fmt.Errorf("list directory: %w", err)
	}

	var b strings.Builder
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		b.WriteString(name)
		b.WriteByte('\n')
	}
	if b.Len() == 0 {
		return "(empty)", nil
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// ReadFileTool returns file contents beneath a fixed root, capped at 1 MiB.
type ReadFileTool struct {
	root string
}

// NewReadFileTool constructs a ReadFileTool rooted at dir.
func NewReadFileTool(dir string) *ReadFileTool {
	return &ReadFileTool{root: resolveRoot(dir)}
}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Description() string {
	return "Read a text file inside the workspace."
}

func (t *ReadFileTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "File path relative to the workspace root.",
			},
		},
		"required": []any{"path"},
	}
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target, err := resolvePath(t.root, args)
	if err != nil {
		return "", err
	}
	f, err := os.Open(target)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxReadBytes))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}

func resolveRoot(dir string) string {
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
		return "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// resolvePath joins the requested path onto the root and rejects anything
// that escapes it.
func resolvePath(root string, args map[string]any) (string, error) {
	rel, _ := args["path"].(string)
	if rel == "" {
		rel = "."
	}
	target := filepath.Clean(filepath.Join(root, rel))
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the workspace root", rel)
	}
	return target, nil
}
