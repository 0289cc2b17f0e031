package cli

import (
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/calvinalkan/tips/internal/session"
)

const ttyPath = "/dev/tty"

// newSession resolves the editor and returns a session running it. The
// returned cleanup must be called once the session is done.
func (a *app) newSession() (*session.Session, func(), error) {
	command, err := session.ResolveEditor(a.cfg.Editor, a.env)
	if err != nil {
		return nil, nil, err
	}

	stdin, cleanup := a.editorInput()

	a.log.Debug("resolved editor", zap.String("editor", command))

	s := session.New(session.Config{
		FS:      a.fs,
		Content: a.store,
		Editor: session.ExecEditor{
			Command: command,
			Stdin:   stdin,
			Stdout:  a.stdout,
			Stderr:  a.stderr,
		},
		TmpPath: a.cfg.TmpPath,
		Log:     a.log,
		Now:     a.now,
	})

	return s, cleanup, nil
}

// editorInput returns the stream the editor reads keystrokes from. That is
// stdin when it is a terminal. When stdin is a pipe (as for `add -`, whose
// input is already consumed) the controlling terminal is opened instead, if
// there is one.
func (a *app) editorInput() (io.Reader, func()) {
	if file, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return file, func() {}
	}

	tty, err := os.Open(ttyPath)
	if err != nil {
		a.log.Debug("no controlling terminal for editor", zap.Error(err))

		return a.stdin, func() {}
	}

	return tty, func() { _ = tty.Close() }
}
