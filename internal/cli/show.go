package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tips/internal/present"
	"github.com/calvinalkan/tips/internal/tip"
)

// ShowCmd returns the show command.
func ShowCmd(a *app) *Command {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.Bool("no-header", false, "Omit the id/subject/tags row (also TIPS_SHOW_NOHEADER)")
	fs.Bool("color", false, "Highlight content even when stdout is not a terminal")

	return &Command{
		Flags:   fs,
		Usage:   "show <id>",
		Aliases: []string{"s"},
		Short:   "Show a tip",
		Long: `Show a tip's id, subject and tags followed by its content.

On a terminal the content is highlighted according to the tip's
data_extension, using the configured theme.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execShow(io, a, fs, args)
		},
	}
}

func execShow(io *IO, a *app, fs *flag.FlagSet, args []string) error {
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

	found, err := coll.Find(id)
	if err != nil {
		return err
	}

	content, err := a.store.ReadContent(found.ContentRef)
	if err != nil {
		return err
	}

	noHeader, _ := fs.GetBool("no-header")
	forceColor, _ := fs.GetBool("color")

	_, envNoHeader := a.env["TIPS_SHOW_NOHEADER"]

	opts := present.ShowOptions{
		NoHeader:  noHeader || envNoHeader,
		Highlight: forceColor || present.IsTerminal(a.stdout),
		Theme:     a.cfg.Theme,
		Width:     present.Width(a.stdout),
	}

	if opts.Highlight && !present.KnownTheme(opts.Theme) {
		io.Warn("unknown theme "+opts.Theme, "set \"theme\" in the config to a chroma style name")
	}

	return present.Show(io.Out(), *found, content, opts)
}
