package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/asynkron/goedit/internal/config"
	"github.com/asynkron/goedit/internal/editops"
	"github.com/asynkron/goedit/internal/files"
	"github.com/asynkron/goedit/internal/logging"
	"github.com/asynkron/goedit/internal/render"
	"github.com/asynkron/goedit/internal/tui"
	"github.com/asynkron/goedit/pkg/patch"
)

// reviewFunc shows a diff for confirmation. Tests replace it.
var reviewFunc = tui.Review

func (e *env) runDiff(ctx context.Context, args []string) int {
	fs := e.newFlagSet("diff", "[options] ORIGINAL MODIFIED")
	contextLines := fs.Int("context", -1, "lines of context around each change (default from diff.context)")
	color := fs.String("color", render.ColorAuto, "colour output: auto, always or never")
	markdown := fs.Bool("markdown", false, "render the diff as markdown")
	width := fs.Int("width", 80, "wrap width for -markdown")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return ExitUsage
	}

	cfg, _, err := e.loadConfig("")
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}
	settings := cfg.Settings()
	logger := e.logger(settings)

	profile, err := render.ProfileForMode(*color, e.stdout)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitUsage
	}

	originalPath, modifiedPath := fs.Arg(0), fs.Arg(1)
	original, err := e.readInput(originalPath)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}
	modified, err := e.readInput(modifiedPath)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}

	n := *contextLines
	if n < 0 {
		n = settings.DiffContext
	}
	diff := patch.GenerateWithOptions(original, modified, patch.GenerateOptions{
		Context:   n,
		FromLabel: originalPath,
		ToLabel:   modifiedPath,
	})
	logger.Debug(ctx, "Generated diff",
		logging.Field("original", originalPath),
		logging.Field("modified", modifiedPath),
		logging.Field("context", n),
	)

	if *markdown {
		out, err := render.Markdown(diff, *width)
		if err != nil {
			fmt.Fprintln(e.stderr, err)
			return ExitFailure
		}
		fmt.Fprint(e.stdout, out)
		return ExitOK
	}
	fmt.Fprint(e.stdout, render.Colorize(diff, profile))
	return ExitOK
}

func (e *env) runApply(ctx context.Context, args []string) int {
	fs := e.newFlagSet("apply", "[options] FILE [DIFF]")
	verify := fs.Bool("verify", false, "reject hunks whose context does not match the file")
	ignoreWhitespace := fs.Bool("ignore-whitespace", false, "ignore whitespace when verifying context")
	emptyAfter := fs.Bool("empty-range-after", false, `insert "-N,0" hunks after line N, as diff -U0 writes them`)
	noBackup := fs.Bool("no-backup", false, "do not back up the file before patching")
	dryRun := fs.Bool("dry-run", false, "print the patched text instead of writing it")
	review := fs.Bool("review", false, "review the change interactively before writing")
	dir := fs.String("dir", "", "project directory (default: working directory)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return ExitUsage
	}
	target, diffPath := fs.Arg(0), fs.Arg(1)
	if *review && (diffPath == "" || diffPath == "-") {
		fmt.Fprintln(e.stderr, "-review reads keys from stdin, so the diff must come from a file")
		return ExitUsage
	}

	cfg, root, err := e.loadConfig(*dir)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}
	settings := cfg.Settings()
	mgr, err := e.newManager(root, settings, patch.Options{
		VerifyContext:          *verify || settings.VerifyContext,
		IgnoreWhitespace:       *ignoreWhitespace || settings.IgnoreWhitespace,
		EmptyRangeInsertsAfter: *emptyAfter,
	}, !*noBackup)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}

	diff, err := e.readInput(diffPath)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}

	if *dryRun || *review {
		preview, err := mgr.PreviewPatch(ctx, target, diff)
		if err != nil {
			return e.reportError(err)
		}
		if *dryRun {
			fmt.Fprint(e.stdout, preview.After)
			return ExitOK
		}
		change := patch.GenerateWithOptions(preview.Before, preview.After, patch.GenerateOptions{
			Context:   settings.DiffContext,
			FromLabel: target,
			ToLabel:   target,
		})
		accepted, err := reviewFunc(ctx, target, change, e.stdin, e.stdout)
		if err != nil {
			fmt.Fprintln(e.stderr, err)
			return ExitFailure
		}
		if !accepted {
			fmt.Fprintf(e.stderr, "Discarded changes to %s\n", target)
			return ExitOK
		}
	}

	result, err := mgr.ApplyPatch(ctx, target, diff)
	if err != nil {
		return e.reportError(err)
	}
	e.printResult(result)
	return ExitOK
}

func (e *env) runReconcile(_ context.Context, args []string) int {
	fs := e.newFlagSet("reconcile", "[-write] ORIGINAL UPDATED")
	write := fs.Bool("write", false, "rewrite UPDATED in place instead of printing")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return ExitUsage
	}

	original, err := e.readInput(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}
	updated, err := e.readInput(fs.Arg(1))
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}

	reconciled := patch.Reconcile(original, updated)
	if !*write {
		fmt.Fprint(e.stdout, reconciled)
		return ExitOK
	}
	if fs.Arg(1) == "-" {
		fmt.Fprintln(e.stderr, "-write needs UPDATED to be a file")
		return ExitUsage
	}
	store, err := files.NewDirStore(filepath.Dir(fs.Arg(1)))
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}
	if err := store.Write(filepath.Base(fs.Arg(1)), reconciled); err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}
	return ExitOK
}

func (e *env) runEdit(ctx context.Context, args []string) int {
	fs := e.newFlagSet("edit", "[options] [OPERATIONS.json]")
	dryRun := fs.Bool("dry-run", false, "show what would change without writing")
	keepGoing := fs.Bool("continue", false, "keep applying operations after a failure")
	noBackup := fs.Bool("no-backup", false, "do not back up files before changing them")
	dir := fs.String("dir", "", "project directory (default: working directory)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return ExitUsage
	}

	data, err := e.readInput(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}
	batch, err := editops.Parse([]byte(data))
	if err != nil {
		return e.reportError(err)
	}

	cfg, root, err := e.loadConfig(*dir)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}
	settings := cfg.Settings()
	mgr, err := e.newManager(root, settings, patch.Options{
		VerifyContext:    settings.VerifyContext,
		IgnoreWhitespace: settings.IgnoreWhitespace,
	}, !*noBackup)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return ExitFailure
	}

	outcomes, err := editops.Apply(ctx, mgr, batch, editops.Options{DryRun: *dryRun, ContinueOnError: *keepGoing})
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			fmt.Fprintf(e.stdout, "failed  %s\n", outcome.Operation.Path)
			continue
		}
		e.printResult(outcome.Result)
	}
	if err != nil {
		return e.reportError(err)
	}
	return ExitOK
}

func (e *env) newManager(root string, settings config.Settings, opts patch.Options, backups bool) (*files.Manager, error) {
	store, err := files.NewDirStore(root)
	if err != nil {
		return nil, err
	}
	return files.NewManager(store, files.ManagerOptions{
		BackupDir:    settings.BackupDir,
		Backups:      backups && settings.CreateBackups,
		DiffDisabled: !settings.DiffEnabled,
		Patch:        opts,
		Logger:       e.logger(settings),
	}), nil
}

func (e *env) printResult(result files.Result) {
	status := "updated"
	if !result.Changed {
		status = "unchanged"
	}
	change := patch.GenerateWithOptions(result.Before, result.After, patch.GenerateOptions{Context: 0})
	fmt.Fprintf(e.stdout, "%-9s %s (%s, %s)\n", status, result.Path, result.Mode, render.Stat(change))
	if result.Backup != "" {
		fmt.Fprintf(e.stdout, "          backup: %s\n", result.Backup)
	}
}

// reportError prints err, expanding structured patch failures into the
// hunk-by-hunk report.
func (e *env) reportError(err error) int {
	var pe *patch.Error
	if errors.As(err, &pe) {
		fmt.Fprintln(e.stderr, err)
		fmt.Fprintln(e.stderr)
		fmt.Fprintln(e.stderr, patch.FormatError(pe))
		return ExitFailure
	}
	var validation *editops.ValidationError
	if errors.As(err, &validation) {
		fmt.Fprintln(e.stderr, "invalid operations:", validation)
		return ExitFailure
	}
	fmt.Fprintln(e.stderr, err)
	return ExitFailure
}
