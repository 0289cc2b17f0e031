package present

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const (
	fallbackExtension = "txt"
	terminalFormatter = "terminal16m"
)

// Highlight writes content with 24-bit terminal colors. The lexer is picked
// by file extension (without the dot), defaulting to plain text, and the
// colors by theme, defaulting to chroma's fallback style.
func Highlight(w io.Writer, content, extension, theme string) error {
	if extension == "" {
		extension = fallbackExtension
	}

	lexer := lexers.Match("file." + strings.TrimPrefix(extension, "."))
	if lexer == nil {
		lexer = lexers.Get(extension)
	}

	if lexer == nil {
		lexer = lexers.Fallback
	}

	lexer = chroma.Coalesce(lexer)

	formatter := formatters.Get(terminalFormatter)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return fmt.Errorf("highlight: %w", err)
	}

	if err := formatter.Format(w, styles.Get(theme), iterator); err != nil {
		return fmt.Errorf("highlight: %w", err)
	}

	return nil
}

// KnownTheme reports whether theme names a registered color theme.
func KnownTheme(theme string) bool {
	_, ok := styles.Registry[theme]

	return ok
}
