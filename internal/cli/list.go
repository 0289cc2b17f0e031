package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/calvinalkan/tips/internal/present"
	"github.com/calvinalkan/tips/internal/tip"
)

const listAll = "all"

// ListCmd returns the list command.
func ListCmd(a *app) *Command {
	return &Command{
		Flags:   flag.NewFlagSet("list", flag.ContinueOnError),
		Usage:   "list [pattern] [component]",
		Aliases: []string{"l"},
		Short:   "List tips, optionally filtered",
		Long: `List tips as a table of id, subject and tags, in the order they were added.

Without a pattern (or with the pattern "all") every tip is listed. Otherwise
pattern is a regular expression matched against component, one of
subject, tags, content or all (default). Tags are matched in quoted form,
so anchor them as '^"name"$'.

Exits 1 if nothing matches.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execList(io, a, args)
		},
	}
}

func execList(io *IO, a *app, args []string) error {
	if len(args) > 2 {
		return fmt.Errorf("%w: %v", errTooManyArgs, args[2:])
	}

	pattern := listAll
	if len(args) > 0 {
		pattern = args[0]
	}

	component := tip.ComponentAll

	if len(args) > 1 {
		parsed, err := tip.ParseComponent(args[1])
		if err != nil {
			return err
		}

		component = parsed
	}

	coll, err := a.store.Load()
	if err != nil {
		return err
	}

	tips := coll.Tips

	if pattern != listAll {
		tips, err = tip.Search(coll, pattern, component, a.store)
		if err != nil {
			return err
		}

		a.log.Debug("searched",
			zap.String("pattern", pattern),
			zap.Stringer("component", component),
			zap.Int("matches", len(tips)))
	}

	if len(tips) == 0 {
		return fmt.Errorf("%w: %s", tip.ErrNoResults, pattern)
	}

	return present.Table(io.Out(), tips, present.Width(a.stdout))
}
