package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/asynkron/goedit/internal/config"
)

func (e *env) runConfig(_ context.Context, args []string) int {
	fs := e.newFlagSet("config", "[-dir D] get KEY | set KEY VALUE | list | init [-force]")
	dir := fs.String("dir", "", "project directory (default: working directory)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return ExitUsage
	}

	action, rest := fs.Arg(0), fs.Args()[1:]
	if action == "init" {
		return e.runConfigInit(*dir, rest)
	}

	cfg, _, err := e.loadConfig(*dir)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}

	switch action {
	case "get":
		if len(rest) != 1 {
			fs.Usage()
			return ExitUsage
		}
		value, ok := cfg.Get(rest[0])
		if !ok {
			fmt.Fprintf(e.stderr, "%s is not set\n", rest[0])
			return ExitFailure
		}
		fmt.Fprintln(e.stdout, value)
		return ExitOK

	case "set":
		if len(rest) != 2 {
			fs.Usage()
			return ExitUsage
		}
		if err := cfg.Set(rest[0], rest[1]); err != nil {
			fmt.Fprintln(e.stderr, err)
			return ExitFailure
		}
		if err := cfg.Save(); err != nil {
			fmt.Fprintln(e.stderr, err)
			return ExitFailure
		}
		return ExitOK

	case "list":
		if len(rest) != 0 {
			fs.Usage()
			return ExitUsage
		}
		for _, key := range cfg.Keys() {
			value, _ := cfg.Get(key)
			fmt.Fprintf(e.stdout, "%s = %v\n", key, value)
		}
		return ExitOK

	default:
		fmt.Fprintf(e.stderr, "unknown config action %q\n", action)
		fs.Usage()
		return ExitUsage
	}
}

func (e *env) runConfigInit(dir string, args []string) int {
	fs := e.newFlagSet("config init", "[-force]")
	force := fs.Bool("force", false, "overwrite an existing configuration file")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(e.stderr, "failed to determine working directory: %v\n", err)
			return ExitFailure
		}
		dir = wd
	}
	cfg, err := config.Init(dir, *force)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}
	fmt.Fprintf(e.stdout, "Wrote %s\n", cfg.Path())
	return ExitOK
}
