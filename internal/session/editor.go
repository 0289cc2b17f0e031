package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/calvinalkan/tips/internal/tip"
)

// Editor opens path for the user and returns once they are done with it.
type Editor interface {
	Edit(ctx context.Context, path string) error
}

// EditorFunc adapts a function to [Editor].
type EditorFunc func(ctx context.Context, path string) error

// Edit calls f.
func (f EditorFunc) Edit(ctx context.Context, path string) error {
	return f(ctx, path)
}

// ExecEditor runs an external editor binary as `Command <path>` and waits
// for it to exit.
type ExecEditor struct {
	Command string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// Edit runs the editor synchronously. A spawn failure or a non-zero exit is
// reported as tip.ErrEditorFailed.
func (e ExecEditor) Edit(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, e.Command, path)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return fmt.Errorf("%w: %s exit code %d", tip.ErrEditorFailed, e.Command, exitErr.ExitCode())
		}

		return fmt.Errorf("%w: %w", tip.ErrEditorFailed, runErr)
	}

	return nil
}

// ResolveEditor checks for an available editor using the env map.
// Priority: configured -> $EDITOR -> vi -> nano -> error.
func ResolveEditor(configured string, env map[string]string) (string, error) {
	if configured != "" {
		_, lookErr := exec.LookPath(configured)
		if lookErr == nil {
			return configured, nil
		}
	}

	if editor := env["EDITOR"]; editor != "" {
		_, lookErr := exec.LookPath(editor)
		if lookErr == nil {
			return editor, nil
		}
	}

	for _, fallback := range []string{"vi", "nano"} {
		_, lookErr := exec.LookPath(fallback)
		if lookErr == nil {
			return fallback, nil
		}
	}

	return "", tip.ErrNoEditorFound
}
