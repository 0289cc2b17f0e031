package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tips/internal/tip"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg *tip.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execPrintConfig(io, cfg)
		},
	}
}

func execPrintConfig(io *IO, cfg *tip.Config) error {
	formatted, err := tip.FormatConfig(*cfg)
	if err != nil {
		return err
	}

	io.Println(formatted)

	io.Println("")
	io.Println("# Sources:")

	if cfg.Sources.Global != "" {
		io.Println("#   global:", cfg.Sources.Global)
	}

	if cfg.Sources.Explicit != "" {
		io.Println("#   explicit:", cfg.Sources.Explicit)
	}

	if cfg.Sources.Global == "" && cfg.Sources.Explicit == "" {
		io.Println("#   (using defaults only)")
	}

	return nil
}
