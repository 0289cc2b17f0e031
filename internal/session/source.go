package session

import (
	"fmt"

	"github.com/calvinalkan/tips/internal/fs"
	"github.com/calvinalkan/tips/internal/tip"
)

type sourceKind int

const (
	sourceInteractive sourceKind = iota
	sourceFile
	sourceText
)

// Source is where the initial content of a new tip comes from.
type Source struct {
	kind sourceKind
	path string
	text string
}

// FromFile starts the template with the contents of the file at path.
func FromFile(path string) Source {
	return Source{kind: sourceFile, path: path}
}

// FromText starts the template with text, typically read from a pipe.
func FromText(text string) Source {
	return Source{kind: sourceText, text: text}
}

// Interactive starts the template with [tip.Placeholder].
func Interactive() Source {
	return Source{kind: sourceInteractive}
}

func (s Source) String() string {
	switch s.kind {
	case sourceFile:
		return "file " + s.path
	case sourceText:
		return "stdin"
	default:
		return "interactive"
	}
}

func (s Source) read(fsys fs.FS) (string, error) {
	switch s.kind {
	case sourceFile:
		data, err := fsys.ReadFile(s.path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", s.path, err)
		}

		return string(data), nil
	case sourceText:
		return s.text, nil
	default:
		return tip.Placeholder, nil
	}
}
