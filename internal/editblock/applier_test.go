package editblock

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFiles is a minimal FileContext rooted at a temp dir.
type testFiles struct {
	root     string
	readOnly map[string]bool
}

func newTestFiles(t *testing.T) *testFiles {
	t.Helper()
	return &testFiles{root: t.TempDir(), readOnly: map[string]bool{}}
}

func (f *testFiles) write(t *testing.T, rel, content string) {
	t.Helper()
	abs := filepath.Join(f.root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
}

func (f *testFiles) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.root, rel))
	require.NoError(t, err)
	return string(data)
}

func (f *testFiles) Resolve(path string) (FileInfo, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(f.root, path)
	}
	abs = filepath.Clean(abs)
	inProject := abs == f.root || strings.HasPrefix(abs, f.root+string(filepath.Separator))

	info := FileInfo{AbsPath: abs, InProject: inProject, ReadOnly: f.readOnly[path]}
	data, err := os.ReadFile(abs)
	if err == nil {
		info.Exists = true
		info.Content = string(data)
	}
	return info, nil
}

func TestApplier_RenameScenario(t *testing.T) {
	files := newTestFiles(t)
	files.write(t, "calc.py", "def add(a,b): return a+b")

	applier := &Applier{Files: files}
	blocks := []Block{&SearchReplaceBlock{
		FilePath:       "calc.py",
		SearchContent:  "def add(a,b):",
		ReplaceContent: "def sum(a,b):",
		Status:         StatusPending,
	}}

	applier.ApplyAll(context.Background(), blocks)

	assert.Equal(t, StatusApplied, blocks[0].BlockStatus())
	assert.Equal(t, "def sum(a,b): return a+b", files.read(t, "calc.py"))
}

func TestApplier_SearchNotFoundLeavesFileUntouched(t *testing.T) {
	files := newTestFiles(t)
	files.write(t, "main.go", "package main\n")

	applier := &Applier{Files: files}
	block := &SearchReplaceBlock{
		FilePath:       "main.go",
		SearchContent:  "package nothere",
		ReplaceContent: "package elsewhere",
		Status:         StatusPending,
	}
	applier.ApplyAll(context.Background(), []Block{block})

	assert.Equal(t, StatusFailed, block.Status)
	assert.Contains(t, block.StatusMessage, "search content not found")
	assert.Equal(t, "package main\n", files.read(t, "main.go"))

	// Retrying the same apply is safe: same failure, file still untouched.
	block.Status = StatusPending
	applier.ApplyAll(context.Background(), []Block{block})
	assert.Equal(t, StatusFailed, block.Status)
	assert.Equal(t, "package main\n", files.read(t, "main.go"))
}

func TestApplier_DoubleApplyIsNotIdempotent(t *testing.T) {
	files := newTestFiles(t)
	files.write(t, "x.txt", "old value")

	applier := &Applier{Files: files}
	block := &SearchReplaceBlock{
		FilePath:       "x.txt",
		SearchContent:  "old",
		ReplaceContent: "new",
		Status:         StatusPending,
	}

	applier.ApplyAll(context.Background(), []Block{block})
	require.Equal(t, StatusApplied, block.Status)
	require.Equal(t, "new value", files.read(t, "x.txt"))

	// Second apply of the same block fails: the search content was already
	// replaced. Expected behavior, not a bug.
	block.Status = StatusPending
	applier.ApplyAll(context.Background(), []Block{block})
	assert.Equal(t, StatusFailed, block.Status)
	assert.Equal(t, "new value", files.read(t, "x.txt"))
}

func TestApplier_CreatesFileOnEmptySearch(t *testing.T) {
	files := newTestFiles(t)

	applier := &Applier{Files: files}
	block := &SearchReplaceBlock{
		FilePath:       "pkg/util/new.go",
		SearchContent:  "",
		ReplaceContent: "package util\n",
		Status:         StatusPending,
	}
	applier.ApplyAll(context.Background(), []Block{block})

	assert.Equal(t, StatusApplied, block.Status)
	assert.Equal(t, "package util\n", files.read(t, "pkg/util/new.go"))
}

func TestApplier_FirstMatchOnly(t *testing.T) {
	files := newTestFiles(t)
	files.write(t, "dup.txt", "foo bar foo")

	applier := &Applier{Files: files}
	block := &SearchReplaceBlock{
		FilePath:       "dup.txt",
		SearchContent:  "foo",
		ReplaceContent: "baz",
		Status:         StatusPending,
	}
	applier.ApplyAll(context.Background(), []Block{block})

	assert.Equal(t, StatusApplied, block.Status)
	assert.Equal(t, "baz bar foo", files.read(t, "dup.txt"))
}

func TestApplier_SequentialBlocksSameFile(t *testing.T) {
	files := newTestFiles(t)
	files.write(t, "f.txt", "alpha")

	first := &SearchReplaceBlock{FilePath: "f.txt", SearchContent: "alpha", ReplaceContent: "beta", Status: StatusPending}
	second := &SearchReplaceBlock{FilePath: "f.txt", SearchContent: "beta", ReplaceContent: "gamma", Status: StatusPending}

	applier := &Applier{Files: files}
	applier.ApplyAll(context.Background(), []Block{first, second})

	assert.Equal(t, StatusApplied, first.Status)
	assert.Equal(t, StatusApplied, second.Status)
	assert.Equal(t, "gamma", files.read(t, "f.txt"))
}

func TestApplier_ReversedOrderFails(t *testing.T) {
	files := newTestFiles(t)
	files.write(t, "f.txt", "alpha")

	// "beta" only exists after the alpha->beta block runs; reversing the
	// order makes the first block fail.
	second := &SearchReplaceBlock{FilePath: "f.txt", SearchContent: "beta", ReplaceContent: "gamma", Status: StatusPending}
	first := &SearchReplaceBlock{FilePath: "f.txt", SearchContent: "alpha", ReplaceContent: "beta", Status: StatusPending}

	applier := &Applier{Files: files}
	applier.ApplyAll(context.Background(), []Block{second, first})

	assert.Equal(t, StatusFailed, second.Status)
	assert.Contains(t, second.StatusMessage, "search content not found")
	assert.Equal(t, StatusApplied, first.Status)
	assert.Equal(t, "beta", files.read(t, "f.txt"))
}

func TestApplier_ReadOnlyFile(t *testing.T) {
	files := newTestFiles(t)
	files.write(t, "locked.go", "package locked")
	files.readOnly["locked.go"] = true

	applier := &Applier{Files: files}
	block := &SearchReplaceBlock{FilePath: "locked.go", SearchContent: "locked", ReplaceContent: "open", Status: StatusPending}
	applier.ApplyAll(context.Background(), []Block{block})

	assert.Equal(t, StatusFailed, block.Status)
	assert.Contains(t, block.StatusMessage, "read-only")
	assert.Equal(t, "package locked", files.read(t, "locked.go"))
}

func TestApplier_FileOutsideProject(t *testing.T) {
	files := newTestFiles(t)

	applier := &Applier{Files: files}
	block := &SearchReplaceBlock{FilePath: "../escape.txt", SearchContent: "", ReplaceContent: "nope", Status: StatusPending}
	applier.ApplyAll(context.Background(), []Block{block})

	assert.Equal(t, StatusFailed, block.Status)
	assert.Contains(t, block.StatusMessage, "outside project root")
}

func TestApplier_ShellBlocksSkippedOnEditFailure(t *testing.T) {
	files := newTestFiles(t)
	files.write(t, "a.txt", "content")

	bad := &SearchReplaceBlock{FilePath: "a.txt", SearchContent: "missing", ReplaceContent: "x", Status: StatusPending}
	shell := &ShellCommandBlock{Commands: []string{"true"}, Status: StatusPending}

	applier := &Applier{Files: files, Shell: &ExecShell{Dir: files.root}}
	applier.ApplyAll(context.Background(), []Block{bad, shell})

	assert.Equal(t, StatusFailed, bad.Status)
	assert.Equal(t, StatusPending, shell.Status)
	assert.Contains(t, shell.StatusMessage, "skipped")
}

func TestApplier_ShellBlocksRunAfterEdits(t *testing.T) {
	files := newTestFiles(t)
	files.write(t, "a.txt", "old")

	edit := &SearchReplaceBlock{FilePath: "a.txt", SearchContent: "old", ReplaceContent: "new", Status: StatusPending}
	shell := &ShellCommandBlock{Commands: []string{"cat a.txt"}, Status: StatusPending}

	applier := &Applier{Files: files, Shell: &ExecShell{Dir: files.root}}
	applier.ApplyAll(context.Background(), []Block{shell, edit})

	require.Equal(t, StatusApplied, edit.Status)
	assert.Equal(t, StatusApplied, shell.Status)
	// The command saw the post-edit tree.
	assert.Contains(t, shell.StatusMessage, "new")
}

func TestApplier_ShellCommandFailure(t *testing.T) {
	files := newTestFiles(t)

	shell := &ShellCommandBlock{Commands: []string{"exit 3"}, Status: StatusPending}
	applier := &Applier{Files: files, Shell: &ExecShell{Dir: files.root}}
	applier.ApplyAll(context.Background(), []Block{shell})

	assert.Equal(t, StatusFailed, shell.Status)
	assert.Contains(t, shell.StatusMessage, "exited 3")
}

func TestApplier_ShellDisabled(t *testing.T) {
	files := newTestFiles(t)

	shell := &ShellCommandBlock{Commands: []string{"true"}, Status: StatusPending}
	applier := &Applier{Files: files}
	applier.ApplyAll(context.Background(), []Block{shell})

	assert.Equal(t, StatusPending, shell.Status)
	assert.Contains(t, shell.StatusMessage, "disabled")
}

func TestFormatFailures(t *testing.T) {
	blocks := []Block{
		&SearchReplaceBlock{FilePath: "ok.go", Status: StatusApplied},
		&SearchReplaceBlock{FilePath: "bad.go", Status: StatusFailed, StatusMessage: "search content not found in bad.go"},
	}
	out := FormatFailures(blocks)
	assert.Contains(t, out, "- bad.go: search content not found")
	assert.NotContains(t, out, "ok.go")

	assert.Equal(t, "", FormatFailures([]Block{&SearchReplaceBlock{Status: StatusApplied}}))
}
