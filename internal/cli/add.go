package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/calvinalkan/tips/internal/session"
)

var (
	errTooManyArgs = errors.New("too many arguments")
	errNoStdin     = errors.New("no input to read from stdin")
)

// AddCmd returns the add command.
func AddCmd(a *app) *Command {
	return &Command{
		Flags:   flag.NewFlagSet("add", flag.ContinueOnError),
		Usage:   "add [file|-]",
		Aliases: []string{"a"},
		Short:   "Add a tip, prints its ID",
		Long: `Add a tip through your editor. Prints the new tip's ID on success.

The editor opens a template: subject and tags above the separator line,
content below it. The content starts out as a placeholder, the contents of
<file>, or whatever is piped in when the argument is "-".

Saving without filling in the subject or tags aborts.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execAdd(ctx, io, a, args)
		},
	}
}

func execAdd(ctx context.Context, io *IO, a *app, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: %v", errTooManyArgs, args[1:])
	}

	src, err := addSource(a, args)
	if err != nil {
		return err
	}

	coll, err := a.store.Load()
	if err != nil {
		return err
	}

	s, cleanup, err := a.newSession()
	if err != nil {
		return err
	}
	defer cleanup()

	created, err := s.Create(ctx, src, coll)
	if err != nil {
		return err
	}

	if err := coll.Add(created); err != nil {
		return err
	}

	if err := a.store.Save(coll); err != nil {
		return err
	}

	a.log.Info("added tip", zap.Uint64("id", created.Metadata.ID), zap.Stringer("source", src))

	io.Println(created.Metadata.ID)

	return nil
}

func addSource(a *app, args []string) (session.Source, error) {
	if len(args) == 0 {
		return session.Interactive(), nil
	}

	if args[0] != "-" {
		return session.FromFile(args[0]), nil
	}

	if a.stdin == nil {
		return session.Source{}, errNoStdin
	}

	piped, err := io.ReadAll(a.stdin)
	if err != nil {
		return session.Source{}, fmt.Errorf("reading stdin: %w", err)
	}

	return session.FromText(string(piped)), nil
}
