package cli

import (
	"context"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/calvinalkan/tips/internal/present"
	"github.com/calvinalkan/tips/internal/tip"
)

const removeQuestion = "Sure you want to delete tip ? [y/n]: "

// RemoveCmd returns the remove command.
func RemoveCmd(a *app) *Command {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	fs.BoolP("yes", "y", false, "Do not ask for confirmation")

	return &Command{
		Flags:   fs,
		Usage:   "remove <id> [flags]",
		Aliases: []string{"r"},
		Short:   "Delete a tip",
		Long: `Delete a tip and its content file.

The tip's summary is printed and you are asked to confirm with y or Y.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execRemove(io, a, fs, args)
		},
	}
}

func execRemove(io *IO, a *app, fs *flag.FlagSet, args []string) error {
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

	if err := present.Header(io.Out(), *target, present.Width(a.stdout)); err != nil {
		return err
	}

	if yes, _ := fs.GetBool("yes"); !yes {
		ok, err := confirm(a.stdin, io.Out(), removeQuestion)
		if err != nil {
			return err
		}

		if !ok {
			return tip.ErrAborted
		}
	}

	removed, err := coll.Remove(id)
	if err != nil {
		return err
	}

	// The collection must never reference a removed content file.
	if err := a.store.Save(coll); err != nil {
		return err
	}

	if err := a.store.RemoveContent(removed.ContentRef); err != nil {
		return err
	}

	a.log.Info("removed tip", zap.Uint64("id", id), zap.String("ref", removed.ContentRef))

	io.Println("Removed tip", id)

	return nil
}
