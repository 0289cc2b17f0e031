package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CLI provides a clean interface for running CLI commands in tests.
// It manages a temp directory used as HOME and environment variables.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

// NewCLI creates a new test CLI with a temp directory as HOME.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	dir := t.TempDir()

	return &CLI{
		t:   t,
		Dir: dir,
		Env: map[string]string{"HOME": dir},
	}
}

// Run executes the CLI with the given args and returns stdout, stderr, and exit code.
// Args should not include "tips" - it is added automatically.
func (r *CLI) Run(args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"tips"}, args...)
	code := Run(nil, &outBuf, &errBuf, fullArgs, r.Env, nil)

	return outBuf.String(), errBuf.String(), code
}

// RunWithInput executes the CLI with stdin and returns stdout, stderr, and exit code.
// stdin must be a string or io.Reader; panics otherwise.
func (r *CLI) RunWithInput(stdin any, args ...string) (string, string, int) {
	var inReader io.Reader
	switch v := stdin.(type) {
	case string:
		inReader = strings.NewReader(v)
	case io.Reader:
		inReader = v
	default:
		panic(fmt.Sprintf("stdin must be string or io.Reader, got %T", stdin))
	}

	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"tips"}, args...)
	code := Run(inReader, &outBuf, &errBuf, fullArgs, r.Env, nil)

	return outBuf.String(), errBuf.String(), code
}

// MustRun executes the CLI and fails the test if the command returns non-zero.
// Returns trimmed stdout on success.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code != 0 {
		r.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail executes the CLI and fails the test if the command succeeds.
// Returns trimmed stderr.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code == 0 {
		r.t.Fatalf("command %v should have failed but succeeded\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// Init runs "init --yes", creating the collection with its welcome tip.
func (r *CLI) Init() {
	r.t.Helper()

	r.MustRun("init", "--yes")
}

// TipsDir returns the default ~/.tips directory.
func (r *CLI) TipsDir() string {
	return filepath.Join(r.Dir, ".tips")
}

// DBPath returns the default collection file path.
func (r *CLI) DBPath() string {
	return filepath.Join(r.TipsDir(), "db.yaml")
}

// DataDir returns the default content directory.
func (r *CLI) DataDir() string {
	return filepath.Join(r.TipsDir(), "data")
}

// ReadDB returns the collection file's contents.
func (r *CLI) ReadDB() string {
	r.t.Helper()

	content, err := os.ReadFile(r.DBPath())
	if err != nil {
		r.t.Fatalf("failed to read collection: %v", err)
	}

	return string(content)
}

// ContentFiles returns the names of all content files.
func (r *CLI) ContentFiles() []string {
	r.t.Helper()

	entries, err := os.ReadDir(r.DataDir())
	if err != nil {
		r.t.Fatalf("failed to read data dir: %v", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}

// UseEditor writes script as an executable editor and points $EDITOR at it.
// The script receives the template path as $1.
func (r *CLI) UseEditor(script string) string {
	r.t.Helper()

	path := filepath.Join(r.t.TempDir(), "mock-editor")

	err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o700)
	if err != nil {
		r.t.Fatalf("failed to create mock editor: %v", err)
	}

	r.Env["EDITOR"] = path

	return path
}

// UseDocumentEditor installs an editor that replaces the template with doc.
func (r *CLI) UseDocumentEditor(doc string) string {
	r.t.Helper()

	return r.UseEditor("cat > \"$1\" <<'TIPS_EOF'\n" + doc + "\nTIPS_EOF\n")
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}

// AssertNotContains fails the test if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("content should NOT contain %q\ncontent:\n%s", substr, content)
	}
}
