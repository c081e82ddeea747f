package files

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/asynkron/goedit/internal/logging"
	"github.com/asynkron/goedit/pkg/patch"
)

// Update modes reported in Result.Mode.
const (
	ModePatch     = "patch"
	ModeOverwrite = "overwrite"
)

// DefaultBackupDir is used when ManagerOptions.BackupDir is empty.
const DefaultBackupDir = ".goedit-backups"

// ManagerOptions configure a Manager.
type ManagerOptions struct {
	// BackupDir receives a copy of every file before it is patched. Backups
	// mirror the file's path below this directory.
	BackupDir string
	Backups   bool
	// DiffDisabled makes ApplyChanges write diff-looking content verbatim
	// instead of applying it.
	DiffDisabled bool
	Patch        patch.Options
	Logger       logging.Logger
}

// Result describes a single file update.
type Result struct {
	Path   string `json:"path"`
	Mode   string `json:"mode"`
	Before string `json:"before"`
	After  string `json:"after"`
	// Backup is the backup location, empty when no backup was written.
	Backup  string `json:"backup,omitempty"`
	Changed bool   `json:"changed"`
}

// Manager applies diffs and full-content updates to files in a Store while
// preserving their formatting conventions.
type Manager struct {
	store   Store
	options ManagerOptions
	logger  logging.Logger
}

// NewManager returns a Manager writing through store.
func NewManager(store Store, opts ManagerOptions) *Manager {
	if opts.BackupDir == "" {
		opts.BackupDir = DefaultBackupDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Manager{store: store, options: opts, logger: logger}
}

// LooksLikeDiff reports whether content should be treated as a unified diff:
// after leading whitespace it starts with "---" and it contains a "+++" line.
func LooksLikeDiff(content string) bool {
	return strings.HasPrefix(trimLeadingSpace(content), "---") && strings.Contains(content, "\n+++")
}

func trimLeadingSpace(content string) string {
	return strings.TrimLeft(content, " \t\r\n")
}

// Contents returns the content of path, or "" when the file does not exist.
func (m *Manager) Contents(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := m.store.Read(path)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return content, nil
}

// Backup copies path into the backup directory and returns the backup
// location. A missing source is not an error; ok is false in that case.
func (m *Manager) Backup(ctx context.Context, path string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	target := m.backupPath(path)
	err := m.store.Copy(path, target)
	if errors.Is(err, ErrNotFound) {
		m.logger.Debug(ctx, "Skipping backup of missing file", logging.Field("path", path))
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("backup %s: %w", path, err)
	}
	m.logger.Debug(ctx, "Created backup", logging.Field("path", path), logging.Field("backup", target))
	return target, true, nil
}

// backupPath keeps backups inside BackupDir even for absolute or
// parent-relative paths.
func (m *Manager) backupPath(path string) string {
	return filepath.Join(m.options.BackupDir, filepath.Clean(string(filepath.Separator)+path))
}

// ApplyPatch applies a unified diff to path and writes the reconciled result.
// The file is backed up first when backups are enabled. Patch failures are
// wrapped with the path and still unwrap to *patch.Error.
func (m *Manager) ApplyPatch(ctx context.Context, path, diff string) (Result, error) {
	result, err := m.patch(ctx, path, diff, m.options.Backups)
	if err != nil {
		return Result{}, err
	}
	return m.commit(ctx, result)
}

// ApplyChanges updates path from content, which is either a unified diff or
// the complete new file text.
func (m *Manager) ApplyChanges(ctx context.Context, path, content string) (Result, error) {
	if !m.options.DiffDisabled && LooksLikeDiff(content) {
		return m.ApplyPatch(ctx, path, trimLeadingSpace(content))
	}
	result, err := m.overwrite(ctx, path, content, m.options.Backups)
	if err != nil {
		return Result{}, err
	}
	return m.commit(ctx, result)
}

// Preview computes what ApplyChanges would write without touching the store.
func (m *Manager) Preview(ctx context.Context, path, content string) (Result, error) {
	if !m.options.DiffDisabled && LooksLikeDiff(content) {
		return m.patch(ctx, path, trimLeadingSpace(content), false)
	}
	return m.overwrite(ctx, path, content, false)
}

// PreviewPatch computes what ApplyPatch would write without touching the
// store.
func (m *Manager) PreviewPatch(ctx context.Context, path, diff string) (Result, error) {
	return m.patch(ctx, path, diff, false)
}

func (m *Manager) patch(ctx context.Context, path, diff string, backup bool) (Result, error) {
	original, err := m.Contents(ctx, path)
	if err != nil {
		return Result{}, err
	}
	result := Result{Path: path, Mode: ModePatch, Before: original}
	if backup {
		if result.Backup, _, err = m.Backup(ctx, path); err != nil {
			return Result{}, err
		}
	}

	patched, err := patch.ApplyWithOptions(original, diff, m.options.Patch)
	if err != nil {
		m.logger.Warn(ctx, "Failed to apply diff", logging.Field("path", path), logging.Field("error", err.Error()))
		return Result{}, fmt.Errorf("apply diff to %s: %w", path, err)
	}
	result.After = patch.Reconcile(original, patched)
	result.Changed = result.After != original
	return result, nil
}

func (m *Manager) overwrite(ctx context.Context, path, content string, backup bool) (Result, error) {
	original, err := m.Contents(ctx, path)
	if err != nil {
		return Result{}, err
	}
	result := Result{Path: path, Mode: ModeOverwrite, Before: original}
	if backup {
		if result.Backup, _, err = m.Backup(ctx, path); err != nil {
			return Result{}, err
		}
	}
	result.After = patch.Reconcile(original, content)
	result.Changed = result.After != original
	return result, nil
}

func (m *Manager) commit(ctx context.Context, result Result) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := m.store.Write(result.Path, result.After); err != nil {
		m.logger.Error(ctx, "Failed to write file", err, logging.Field("path", result.Path))
		return Result{}, fmt.Errorf("write %s: %w", result.Path, err)
	}
	m.logger.Info(ctx, "Updated file",
		logging.Field("path", result.Path),
		logging.Field("mode", result.Mode),
		logging.Field("changed", result.Changed),
	)
	return result, nil
}
