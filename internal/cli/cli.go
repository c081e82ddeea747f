// Package cli implements the goedit command line: generating, applying and
// reconciling unified diffs, applying JSON edit batches and managing the
// project configuration.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/asynkron/goedit/internal/config"
	"github.com/asynkron/goedit/internal/logging"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

const usage = `Usage: goedit [-v] <command> [options] [arguments]

Commands:
  diff       print a unified diff between two files
  apply      apply a unified diff to a file
  reconcile  make a file follow the formatting of another
  edit       apply a JSON batch of file edits
  config     get, set, list or initialise configuration

Run "goedit <command> -h" for the options of a command.
`

// env carries the streams and shared services of one invocation.
type env struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	verbose bool
}

// logger returns the zap-backed logger for the invocation. Warnings and
// errors are always written to stderr; -v or general.verbose enables debug.
func (e *env) logger(settings config.Settings) logging.Logger {
	level := logging.LevelWarn
	if e.verbose || settings.Verbose {
		level = logging.LevelDebug
	}
	return logging.NewZapLogger(level, e.stderr)
}

// Run executes goedit with the provided CLI arguments.
// It returns a POSIX-style exit code indicating whether execution succeeded.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine, but other errors should be surfaced to help with debugging.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
			return ExitFailure
		}
	}

	flagSet := flag.NewFlagSet("goedit", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.Usage = func() { fmt.Fprint(stderr, usage) }
	verbose := flagSet.Bool("v", false, "enable debug logging")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return ExitUsage
	}

	e := &env{stdin: stdin, stdout: stdout, stderr: stderr, verbose: *verbose}
	ctx = logging.WithTraceID(ctx, logging.NewTraceID())

	command, cmdArgs := rest[0], rest[1:]
	switch command {
	case "diff":
		return e.runDiff(ctx, cmdArgs)
	case "apply":
		return e.runApply(ctx, cmdArgs)
	case "reconcile":
		return e.runReconcile(ctx, cmdArgs)
	case "edit":
		return e.runEdit(ctx, cmdArgs)
	case "config":
		return e.runConfig(ctx, cmdArgs)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return ExitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", command, usage)
		return ExitUsage
	}
}

// newFlagSet returns a flag set for a subcommand that reports parse errors
// on stderr.
func (e *env) newFlagSet(name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet("goedit "+name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: goedit %s %s\n", name, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags parses args and maps failures to an exit code; ok is false
// when the caller should return code.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK, false
		}
		return ExitUsage, false
	}
	return ExitOK, true
}

// loadConfig loads the project configuration from dir, or from the working
// directory when dir is empty.
func (e *env) loadConfig(dir string) (*config.Config, string, error) {
	if strings.TrimSpace(dir) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = wd
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, "", err
	}
	return cfg, dir, nil
}

// readInput reads path, or stdin when path is empty or "-".
func (e *env) readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(e.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
