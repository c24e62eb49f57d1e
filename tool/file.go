package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/multimind/internal/util"
)

// File tools give agents plain filesystem access rooted at a base directory.
// Paths are resolved against the root and must stay inside it; the tools do
// not sandbox beyond that, matching the contract that resource policy belongs
// to each tool.

// NewReadFileTool returns a tool that reads a file and returns its content.
func NewReadFileTool(root string) Tool {
	return NewFunctionTool(
		"read_file",
		"Read a text file and return its content.",
		util.ObjectSchema(map[string]any{
			"path": util.StringProperty("Path of the file to read, relative to the working directory"),
		}, "path"),
		func(_ context.Context, args map[string]any) (any, error) {
			path, err := resolvePath(root, args["path"])
			if err != nil {
				return nil, err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			return map[string]any{
				"path":    path,
				"content": string(data),
			}, nil
		},
	)
}

// NewWriteFileTool returns a tool that writes content to a file, creating
// parent directories as needed.
func NewWriteFileTool(root string) Tool {
	return NewFunctionTool(
		"write_file",
		"Write text content to a file, creating it if necessary.",
		util.ObjectSchema(map[string]any{
			"path":    util.StringProperty("Path of the file to write, relative to the working directory"),
			"content": util.StringProperty("The full content to write"),
		}, "path", "content"),
		func(_ context.Context, args map[string]any) (any, error) {
			path, err := resolvePath(root, args["path"])
			if err != nil {
				return nil, err
			}
			content, _ := args["content"].(string)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create directory for %s: %w", path, err)
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", path, err)
			}
			return map[string]any{
				"path":    path,
				"written": len(content),
			}, nil
		},
	)
}

// NewListFilesTool returns a tool that lists directory entries.
func NewListFilesTool(root string) Tool {
	return NewFunctionTool(
		"list_files",
		"List the entries of a directory.",
		util.ObjectSchema(map[string]any{
			"path": util.StringProperty("Directory to list, relative to the working directory; defaults to the working directory itself"),
		}),
		func(_ context.Context, args map[string]any) (any, error) {
			raw := args["path"]
			if raw == nil || raw == "" {
				raw = "."
			}
			path, err := resolvePath(root, raw)
			if err != nil {
				return nil, err
			}
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("list %s: %w", path, err)
			}
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				name := e.Name()
				if e.IsDir() {
					name += "/"
				}
				names = append(names, name)
			}
			return map[string]any{
				"path":    path,
				"entries": names,
			}, nil
		},
	)
}

// resolvePath joins a model-supplied path with the root and rejects escapes
// above it.
func resolvePath(root string, raw any) (string, error) {
	rel, ok := raw.(string)
	if !ok || rel == "" {
		return "", fmt.Errorf("path must be a non-empty string")
	}
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(filepath.Join(root, rel))
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", rel, err)
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %q: %w", root, err)
	}
	if abs != rootAbs && !isWithin(rootAbs, abs) {
		return "", fmt.Errorf("path %q escapes the working directory", rel)
	}
	return abs, nil
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
