package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/coda/internal/filectx"
)

func newFiles(t *testing.T) *filectx.Provider {
	t.Helper()
	p, err := filectx.New(t.TempDir())
	require.NoError(t, err)
	return p
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
}

func TestRegistry(t *testing.T) {
	files := newFiles(t)
	read := &ReadFile{Files: files}
	list := &ListFiles{Files: files}

	r := NewRegistry(read, list)
	assert.Equal(t, 2, r.Len())

	got, ok := r.Get("read_file")
	require.True(t, ok)
	assert.Equal(t, read, got)

	_, ok = r.Get("launch_missiles")
	assert.False(t, ok)

	names := []string{}
	for _, tool := range r.List() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"read_file", "list_files"}, names)

	assert.Panics(t, func() { NewRegistry(read, read) })
}

func TestReadFile(t *testing.T) {
	files := newFiles(t)
	write(t, files.Root(), "main.go", "package main\n")

	tool := &ReadFile{Files: files}

	out, err := tool.Invoke(context.Background(), json.RawMessage(`{"path":"main.go"}`))
	require.NoError(t, err)
	assert.Equal(t, "package main\n", out)

	_, err = tool.Invoke(context.Background(), json.RawMessage(`{"path":"missing.go"}`))
	assert.ErrorContains(t, err, "does not exist")

	_, err = tool.Invoke(context.Background(), json.RawMessage(`{"path":"../etc/passwd"}`))
	assert.ErrorContains(t, err, "outside the project root")

	_, err = tool.Invoke(context.Background(), json.RawMessage(`{}`))
	assert.ErrorContains(t, err, "path is required")
}

func TestListFiles(t *testing.T) {
	files := newFiles(t)
	write(t, files.Root(), "a.go", "")
	write(t, files.Root(), "pkg/b.go", "")
	write(t, files.Root(), ".git/config", "")

	tool := &ListFiles{Files: files}

	out, err := tool.Invoke(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, out, "a.go")
	assert.Contains(t, out, filepath.Join("pkg", "b.go"))
	assert.NotContains(t, out, ".git")

	out, err = tool.Invoke(context.Background(), json.RawMessage(`{"dir":"pkg"}`))
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join("pkg", "b.go"))
	assert.NotContains(t, out, "a.go\n")
}

func TestUnknownToolError(t *testing.T) {
	err := &UnknownToolError{Name: "nope"}
	assert.Equal(t, "unknown tool: nope", err.Error())
}
