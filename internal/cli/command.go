package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tips/internal/tip"
)

// Command defines a CLI command with unified help generation.
type Command struct {
	// Flags defines command-specific flags.
	// The FlagSet name is not used - command identity comes from Usage.
	Flags *flag.FlagSet

	// Usage is the freeform usage string shown after "tips" in help.
	// Includes the command name and arguments/flags.
	// Examples: "show <id>", "list [pattern] [component]"
	Usage string

	// Aliases are alternative names the command can be invoked by.
	Aliases []string

	// Short is a one-line description for the global help listing.
	Short string

	// Long is the full description shown in command help.
	// If empty, Short is used instead.
	Long string

	// Exec runs the command after flags are parsed.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// Matches reports whether name is the command's name or one of its aliases.
func (c *Command) Matches(name string) bool {
	return c.Name() == name || slices.Contains(c.Aliases, name)
}

// HelpLine returns the short help line for the main usage display.
func (c *Command) HelpLine() string {
	usage := c.Usage
	if len(c.Aliases) > 0 {
		usage = strings.Join(append([]string{c.Name()}, c.Aliases...), "|") + strings.TrimPrefix(c.Usage, c.Name())
	}

	return fmt.Sprintf("  %-30s %s", usage, c.Short)
}

// PrintHelp prints the full help output for "tips <cmd> --help".
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: tips", c.Usage)

	if len(c.Aliases) > 0 {
		o.Println("Aliases:", strings.Join(c.Aliases, ", "))
	}

	o.Println()

	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	o.Println(desc)

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("%s", buf.String())
	}
}

// Run parses flags and executes the command. Returns exit code.
// Handles error printing internally for consistent output ordering.
//
// User aborts (see tip.IsUserAbort) print their bare message; everything else
// is prefixed with "error:". Both exit 1.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{}) // discard pflag output

	err := c.Flags.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)
			return 0
		}
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o)
		return 1
	}

	if err := c.Exec(ctx, o, c.Flags.Args()); err != nil {
		if tip.IsUserAbort(err) {
			o.ErrPrintln(capitalize(err.Error()))
			return 1
		}

		o.ErrPrintln("error:", err)
		return 1
	}

	return 0
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	r, size := utf8.DecodeRuneInString(s)

	return string(unicode.ToUpper(r)) + s[size:]
}
