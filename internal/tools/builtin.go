package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joescharf/coda/internal/filectx"
)

// listFilesLimit caps the directory walk so a huge tree cannot blow up the
// prompt.
const listFilesLimit = 500

// ReadFile exposes project file contents to the model.
type ReadFile struct {
	Files *filectx.Provider
}

func (t *ReadFile) Name() string { return "read_file" }

func (t *ReadFile) Description() string {
	return "Read the contents of a file inside the project. Input: {\"path\": \"relative/path\"}."
}

func (t *ReadFile) InputSchema() map[string]any {
	return map[string]any{
		"path": map[string]any{
			"type":        "string",
			"description": "File path relative to the project root",
		},
	}
}

func (t *ReadFile) Invoke(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("parse read_file args: %w", err)
	}
	if in.Path == "" {
		return "", fmt.Errorf("read_file: path is required")
	}

	info, err := t.Files.Resolve(in.Path)
	if err != nil {
		return "", err
	}
	if !info.InProject {
		return "", fmt.Errorf("read_file: %s is outside the project root", in.Path)
	}
	if !info.Exists {
		return "", fmt.Errorf("read_file: %s does not exist", in.Path)
	}
	return info.Content, nil
}

// ListFiles exposes the project tree to the model.
type ListFiles struct {
	Files *filectx.Provider
}

func (t *ListFiles) Name() string { return "list_files" }

func (t *ListFiles) Description() string {
	return "List files under a project directory. Input: {\"dir\": \"relative/path\"} (optional, defaults to the root)."
}

func (t *ListFiles) InputSchema() map[string]any {
	return map[string]any{
		"dir": map[string]any{
			"type":        "string",
			"description": "Directory relative to the project root; defaults to the root",
		},
	}
}

func (t *ListFiles) Invoke(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Dir string `json:"dir"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("parse list_files args: %w", err)
		}
	}

	root := t.Files.Root()
	start := root
	if in.Dir != "" {
		info, err := t.Files.Resolve(in.Dir)
		if err != nil {
			return "", err
		}
		if !info.InProject {
			return "", fmt.Errorf("list_files: %s is outside the project root", in.Dir)
		}
		start = info.AbsPath
	}

	var paths []string
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != start && (name == "node_modules" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, rel)
		if len(paths) >= listFilesLimit {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("list files: %w", err)
	}

	if len(paths) == 0 {
		return "(no files)", nil
	}
	out := strings.Join(paths, "\n")
	if len(paths) >= listFilesLimit {
		out += "\n(truncated)"
	}
	return out, nil
}
