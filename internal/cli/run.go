package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/calvinalkan/tips/internal/fs"
	"github.com/calvinalkan/tips/internal/store"
	"github.com/calvinalkan/tips/internal/tip"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// app is what every command needs: resolved config, storage, the streams
// and environment of this invocation.
type app struct {
	cfg    *tip.Config
	fs     fs.FS
	store  *store.Store
	log    *zap.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	env    map[string]string
	now    func() time.Time
}

func commands(a *app) []*Command {
	return []*Command{
		AddCmd(a),
		ListCmd(a),
		ShowCmd(a),
		UpdateCmd(a),
		RemoveCmd(a),
		InitCmd(a),
		PrintConfigCmd(a.cfg),
	}
}

// Run is the main entry point. Returns exit code.
//
// A signal received on sigCh cancels the context passed to the running
// command, which kills a running editor. sigCh may be nil.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	if len(args) < minArgs {
		printUsage(out)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if len(flags.remaining) == 0 || flags.remaining[0] == "-h" || flags.remaining[0] == helpFlag {
		printUsage(out)

		return 0
	}

	log := newLogger(errOut, flags.verbose || env["TIPS_DEBUG"] != "")
	defer func() { _ = log.Sync() }()

	cfg, err := tip.LoadConfig(tip.LoadConfigInput{
		ConfigPath:      flags.configPath,
		DBOverride:      flags.dbPath,
		DataDirOverride: flags.dataDir,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	log.Debug("config loaded",
		zap.String("db_path", cfg.DBPath),
		zap.String("data_dir", cfg.DataDir),
		zap.String("global", cfg.Sources.Global),
		zap.String("explicit", cfg.Sources.Explicit))

	fsys := fs.NewReal()
	a := &app{
		cfg:    &cfg,
		fs:     fsys,
		store:  store.New(fsys, cfg, log),
		log:    log,
		stdin:  stdin,
		stdout: out,
		stderr: errOut,
		env:    env,
		now:    time.Now,
	}

	name := flags.remaining[0]

	var cmd *Command

	for _, c := range commands(a) {
		if c.Matches(name) {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case sig := <-sigCh:
				log.Debug("received signal", zap.Stringer("signal", sig))
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	ioCtx := NewIO(out, errOut)

	if code := cmd.Run(ctx, ioCtx, flags.remaining[1:]); code != 0 {
		return code
	}

	// Finish handles warnings and exit code
	return ioCtx.Finish()
}

type globalFlags struct {
	configPath string
	dbPath     string
	dataDir    string
	verbose    bool
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -v/--verbose
	if arg == "-v" || arg == "--verbose" {
		flags.verbose = true

		return consumedOne, nil
	}

	// Flags taking a value: -c/--config, --db, --data-dir
	valueFlags := []struct {
		short, long string
		dst         *string
	}{
		{short: "-c", long: "--config", dst: &flags.configPath},
		{long: "--db", dst: &flags.dbPath},
		{long: "--data-dir", dst: &flags.dataDir},
	}

	for _, vf := range valueFlags {
		if arg == vf.long || (vf.short != "" && arg == vf.short) {
			if idx+1 >= len(args) {
				return consumedNone, fmt.Errorf("%w: %s", tip.ErrFlagRequiresArg, arg)
			}

			*vf.dst = args[idx+1]

			return consumedTwo, nil
		}

		if after, ok := strings.CutPrefix(arg, vf.long+"="); ok {
			*vf.dst = after

			return consumedOne, nil
		}
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", tip.ErrUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(writer io.Writer) {
	fprintln(writer, `tips - keep and find small notes

Usage: tips [options] <command> [args]

Options:
  -c, --config <file>   Use specified config file
  --db <file>           Use this collection file
  --data-dir <dir>      Use this content directory
  -v, --verbose         Log diagnostics to stderr (also TIPS_DEBUG=1)

Commands:`)

	for _, c := range commands(&app{cfg: &tip.Config{}}) {
		fprintln(writer, c.HelpLine())
	}
}
