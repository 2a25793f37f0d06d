// Package filectx resolves file paths against the active project context.
// It owns the project root boundary and the read-only registry consumed by
// the edit applier, and renders file contents into prompt sections.
package filectx

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joescharf/coda/internal/editblock"
)

// Provider is the file-context collaborator for one conversation turn.
type Provider struct {
	root     string
	editable map[string]bool
	readOnly map[string]bool
}

// New creates a provider rooted at the given project directory.
func New(root string) (*Provider, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", abs)
	}
	return &Provider{
		root:     abs,
		editable: map[string]bool{},
		readOnly: map[string]bool{},
	}, nil
}

// Root returns the absolute project root.
func (p *Provider) Root() string { return p.root }

// AddEditable registers a file the agent may modify and include in prompts.
func (p *Provider) AddEditable(path string) error {
	rel, err := p.relative(path)
	if err != nil {
		return err
	}
	delete(p.readOnly, rel)
	p.editable[rel] = true
	return nil
}

// AddReadOnly registers a file included in prompts but rejected for edits.
func (p *Provider) AddReadOnly(path string) error {
	rel, err := p.relative(path)
	if err != nil {
		return err
	}
	delete(p.editable, rel)
	p.readOnly[rel] = true
	return nil
}

// EditableFiles returns the registered editable paths, sorted.
func (p *Provider) EditableFiles() []string { return sortedKeys(p.editable) }

// ReadOnlyFiles returns the registered read-only paths, sorted.
func (p *Provider) ReadOnlyFiles() []string { return sortedKeys(p.readOnly) }

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *Provider) relative(path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(p.root, path)
	}
	abs = filepath.Clean(abs)
	if !p.inProject(abs) {
		return "", &editblock.FileOutsideProjectError{Path: path}
	}
	rel, err := filepath.Rel(p.root, abs)
	if err != nil {
		return "", fmt.Errorf("relativize %s: %w", path, err)
	}
	return rel, nil
}

func (p *Provider) inProject(abs string) bool {
	return abs == p.root || strings.HasPrefix(abs, p.root+string(filepath.Separator))
}

// Resolve implements editblock.FileContext.
func (p *Provider) Resolve(path string) (editblock.FileInfo, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(p.root, path)
	}
	abs = filepath.Clean(abs)

	info := editblock.FileInfo{
		AbsPath:   abs,
		InProject: p.inProject(abs),
	}
	if info.InProject {
		if rel, err := filepath.Rel(p.root, abs); err == nil {
			info.ReadOnly = p.readOnly[rel]
		}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return info, nil
		}
		return info, fmt.Errorf("read %s: %w", path, err)
	}
	info.Exists = true
	info.Content = string(data)
	return info, nil
}

// ContextPrompt renders the registered files as two fenced prompt sections,
// read-only first. Missing files are listed by name without content.
func (p *Provider) ContextPrompt() (string, error) {
	var sb strings.Builder

	write := func(header string, paths []string) error {
		if len(paths) == 0 {
			return nil
		}
		sb.WriteString(header + "\n\n")
		for _, rel := range paths {
			info, err := p.Resolve(rel)
			if err != nil {
				return err
			}
			if !info.Exists {
				fmt.Fprintf(&sb, "%s (missing)\n\n", rel)
				continue
			}
			fmt.Fprintf(&sb, "%s\n```\n%s\n```\n\n", rel, strings.TrimRight(info.Content, "\n"))
		}
		return nil
	}

	if err := write("Read-only files (edits to these will be rejected):", p.ReadOnlyFiles()); err != nil {
		return "", err
	}
	if err := write("Editable files:", p.EditableFiles()); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
