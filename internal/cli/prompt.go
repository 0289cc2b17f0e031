package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// confirm asks question and reports whether the answer was y or Y.
//
// On a terminal the question is asked through a line editor. Otherwise the
// question is written to out and one line is read from in; no input at all
// counts as no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return confirmTerminal(question)
	}

	_, _ = fmt.Fprint(out, question)

	if in == nil {
		_, _ = fmt.Fprintln(out)

		return false, nil
	}

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}

	if !strings.HasSuffix(answer, "\n") {
		_, _ = fmt.Fprintln(out)
	}

	return isYes(answer), nil
}

func confirmTerminal(question string) (bool, error) {
	line := liner.NewLiner()
	defer func() { _ = line.Close() }()

	line.SetCtrlCAborts(true)

	answer, err := line.Prompt(question)
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("read answer: %w", err)
	}

	return isYes(answer), nil
}

func isYes(answer string) bool {
	switch strings.TrimSpace(answer) {
	case "y", "Y":
		return true
	default:
		return false
	}
}
