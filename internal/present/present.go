// Package present renders tips for a terminal: a summary table for listings
// and a header plus (optionally highlighted) content for a single tip.
package present

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/calvinalkan/tips/internal/tip"
)

const (
	columnSep  = " | "
	ellipsis   = "…"
	minSubject = 8
)

// Table writes one row per tip (id, subject, tags) between two dashed rules.
// Columns are padded by display width, so wide runes line up. If width is
// positive and the rows do not fit, subjects are truncated.
func Table(w io.Writer, tips []tip.Tip, width int) error {
	rows := make([][3]string, 0, len(tips))
	for _, t := range tips {
		rows = append(rows, cells(t))
	}

	return writeTable(w, rows, width)
}

// Header writes the summary row of a single tip between dashed rules.
func Header(w io.Writer, t tip.Tip, width int) error {
	return writeTable(w, [][3]string{cells(t)}, width)
}

func cells(t tip.Tip) [3]string {
	return [3]string{
		fmt.Sprint(t.Metadata.ID),
		t.Metadata.Subject,
		strings.Join(t.Metadata.Tags, " "),
	}
}

func writeTable(w io.Writer, rows [][3]string, width int) error {
	var widths [3]int

	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	// A tags column only exists if some tip has tags.
	columns := 3
	if widths[2] == 0 {
		columns = 2
	}

	lineWidth := func() int {
		total := (columns - 1) * len(columnSep)
		for _, cw := range widths[:columns] {
			total += cw
		}

		return total
	}

	if width > 0 && lineWidth() > width {
		widths[1] = min(widths[1], max(minSubject, widths[1]-(lineWidth()-width)))
	}

	rule := strings.Repeat("-", lineWidth())

	var b strings.Builder

	b.WriteString(rule)
	b.WriteString("\n")

	for _, row := range rows {
		subject := row[1]
		if runewidth.StringWidth(subject) > widths[1] {
			subject = runewidth.Truncate(subject, widths[1], ellipsis)
		}

		parts := []string{
			runewidth.FillRight(row[0], widths[0]),
			runewidth.FillRight(subject, widths[1]),
			runewidth.FillLeft(row[2], widths[2]),
		}

		b.WriteString(strings.TrimRight(strings.Join(parts[:columns], columnSep), " "))
		b.WriteString("\n")
	}

	b.WriteString(rule)
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())

	return err
}

// ShowOptions controls [Show].
type ShowOptions struct {
	// NoHeader suppresses the summary row.
	NoHeader bool

	// Highlight renders content with terminal colors. Otherwise content is
	// written as is.
	Highlight bool

	// Theme names the color theme used when highlighting.
	Theme string

	// Width limits the header row. Zero means unlimited.
	Width int
}

// Show writes t's header row followed by its content.
func Show(w io.Writer, t tip.Tip, content string, opts ShowOptions) error {
	if !opts.NoHeader {
		if err := Header(w, t, opts.Width); err != nil {
			return err
		}
	}

	if opts.Highlight {
		return Highlight(w, content, t.Metadata.DataExtension, opts.Theme)
	}

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	_, err := io.WriteString(w, content)

	return err
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w any) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}

	return false
}

// Width returns the column count of the terminal behind w, or 0 if w is not
// a terminal.
func Width(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return 0
	}

	cols, _, err := term.GetSize(int(file.Fd()))
	if err != nil {
		return 0
	}

	return cols
}
