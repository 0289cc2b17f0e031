package cli

import (
	"context"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/calvinalkan/tips/internal/tip"
)

// UpdateCmd returns the update command.
func UpdateCmd(a *app) *Command {
	return &Command{
		Flags:   flag.NewFlagSet("update", flag.ContinueOnError),
		Usage:   "update <id>",
		Aliases: []string{"u"},
		Short:   "Edit a tip",
		Long: `Open a tip in your editor with its current subject, tags and content.

Changed content is saved to the tip's content file, changed subject, tags
or data_extension to the collection. Saving without changes does nothing.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execUpdate(ctx, io, a, args)
		},
	}
}

func execUpdate(ctx context.Context, io *IO, a *app, args []string) error {
	var raw string
	if len(args) > 0 {
		raw = args[0]
	}

	id, err := tip.ParseID(raw)
	if err != nil {
		return err
	}

	coll, err := a.store.Load()
	if err != nil {
		return err
	}

	target, err := coll.Find(id)
	if err != nil {
		return err
	}

	s, cleanup, err := a.newSession()
	if err != nil {
		return err
	}
	defer cleanup()

	changes, err := s.Modify(ctx, target)
	if err != nil {
		return err
	}

	if !changes.Any() {
		io.Println("No changes to tip", id)

		return nil
	}

	// Content changes are already on disk; the collection carries
	// last_updated either way.
	if err := a.store.Save(coll); err != nil {
		return err
	}

	a.log.Info("updated tip",
		zap.Uint64("id", id),
		zap.Bool("content_changed", changes.Content),
		zap.Bool("metadata_changed", changes.Metadata))

	io.Println("Updated tip", id)

	return nil
}
