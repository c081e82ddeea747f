// Package editops applies batches of file edits described as JSON, the form
// in which an assistant proposes changes to several files at once.
package editops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/asynkron/goedit/internal/files"
)

// Operation kinds.
const (
	KindDiff    = "diff"
	KindContent = "content"
)

// Operation is a single file edit.
type Operation struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// Batch is an ordered list of edits.
type Batch struct {
	Operations []Operation `json:"operations"`
}

// ValidationError lists every schema violation found in a batch.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "operations failed schema validation"
	}
	return strings.Join(e.Issues, "; ")
}

// Parse decodes and validates a JSON operation batch.
func Parse(data []byte) (Batch, error) {
	if strings.TrimSpace(string(data)) == "" {
		return Batch{}, &ValidationError{Issues: []string{"operations document is empty"}}
	}
	if !json.Valid(data) {
		return Batch{}, errors.New("editops: operations are not valid JSON")
	}

	loader, err := loadSchema()
	if err != nil {
		return Batch{}, fmt.Errorf("editops: load schema: %w", err)
	}
	result, err := gojsonschema.Validate(loader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Batch{}, fmt.Errorf("editops: schema validation error: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return Batch{}, &ValidationError{Issues: issues}
	}

	var batch Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return Batch{}, fmt.Errorf("editops: decode operations: %w", err)
	}
	return batch, nil
}

// Options control how a batch is applied.
type Options struct {
	// DryRun computes every result without writing.
	DryRun bool
	// ContinueOnError records a failing operation in its Outcome and moves
	// on to the next one instead of stopping the batch.
	ContinueOnError bool
}

// Outcome is the result of one operation.
type Outcome struct {
	Operation Operation
	Result    files.Result
	Err       error
}

// Applier is the subset of files.Manager used to apply operations.
type Applier interface {
	ApplyPatch(ctx context.Context, path, diff string) (files.Result, error)
	ApplyChanges(ctx context.Context, path, content string) (files.Result, error)
	Preview(ctx context.Context, path, content string) (files.Result, error)
	PreviewPatch(ctx context.Context, path, diff string) (files.Result, error)
}

// Apply runs the batch in order. Without ContinueOnError it stops at the
// first failure and returns the outcomes gathered so far with the error.
func Apply(ctx context.Context, applier Applier, batch Batch, opts Options) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(batch.Operations))
	var failures []error
	for _, op := range batch.Operations {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		result, err := applyOne(ctx, applier, op, opts.DryRun)
		outcomes = append(outcomes, Outcome{Operation: op, Result: result, Err: err})
		if err == nil {
			continue
		}
		if !opts.ContinueOnError {
			return outcomes, err
		}
		failures = append(failures, err)
	}
	return outcomes, errors.Join(failures...)
}

func applyOne(ctx context.Context, applier Applier, op Operation, dryRun bool) (files.Result, error) {
	switch op.Kind {
	case KindDiff:
		if dryRun {
			return applier.PreviewPatch(ctx, op.Path, op.Content)
		}
		return applier.ApplyPatch(ctx, op.Path, op.Content)
	case KindContent:
		if dryRun {
			return applier.Preview(ctx, op.Path, op.Content)
		}
		return applier.ApplyChanges(ctx, op.Path, op.Content)
	default:
		return files.Result{}, fmt.Errorf("editops: unknown operation kind %q for %s", op.Kind, op.Path)
	}
}
