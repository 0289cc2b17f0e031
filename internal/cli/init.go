package cli

import (
	"context"
	"fmt"
	"path/filepath"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/calvinalkan/tips/internal/tip"
)

const (
	initQuestion    = "Go ahead and create them ? [y/n]: "
	configDirPerms  = 0o750
	configFilePerms = 0o600
)

// InitCmd returns the init command.
func InitCmd(a *app) *Command {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.BoolP("yes", "y", false, "Do not ask for confirmation")

	return &Command{
		Flags: fs,
		Usage: "init [flags]",
		Short: "Create the collection and config",
		Long: `Create the data directory, a collection holding a welcome tip and,
unless one exists, the global config file with the current settings.

Refuses to touch an existing collection.`,
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execInit(io, a, fs)
		},
	}
}

func execInit(io *IO, a *app, fs *flag.FlagSet) error {
	initialized, err := a.store.Initialized()
	if err != nil {
		return err
	}

	if initialized {
		return fmt.Errorf("%w: %s", tip.ErrAlreadyInitialized, a.cfg.DBPath)
	}

	configPath, err := a.missingGlobalConfig()
	if err != nil {
		return err
	}

	if yes, _ := fs.GetBool("yes"); !yes {
		io.Println("Following directories and files will be created:")

		if configPath != "" {
			io.Printf("\tfile      %s\n", configPath)
		}

		paths := a.store.Paths()
		for _, dir := range paths[:len(paths)-1] {
			io.Printf("\tdirectory %s\n", dir)
		}

		io.Printf("\tfile      %s\n", paths[len(paths)-1])

		ok, err := confirm(a.stdin, io.Out(), initQuestion)
		if err != nil {
			return err
		}

		if !ok {
			return tip.ErrAborted
		}
	}

	if err := a.store.Init(a.now()); err != nil {
		return err
	}

	if configPath != "" {
		if err := a.writeGlobalConfig(configPath); err != nil {
			return err
		}
	}

	io.Println("Initialized", a.cfg.DBPath)

	return nil
}

// missingGlobalConfig returns the global config path if no file exists there
// yet, or "" if there is nothing to create.
func (a *app) missingGlobalConfig() (string, error) {
	path := tip.GlobalConfigPath(a.env)
	if path == "" {
		return "", nil
	}

	exists, err := a.fs.Exists(path)
	if err != nil {
		return "", fmt.Errorf("checking config: %w", err)
	}

	if exists {
		return "", nil
	}

	return path, nil
}

func (a *app) writeGlobalConfig(path string) error {
	formatted, err := tip.FormatConfig(*a.cfg)
	if err != nil {
		return err
	}

	if err := a.fs.MkdirAll(filepath.Dir(path), configDirPerms); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if err := a.fs.WriteFileAtomic(path, []byte(formatted+"\n"), configFilePerms); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	a.log.Info("wrote config", zap.String("path", path))

	return nil
}
