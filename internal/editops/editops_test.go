package editops

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asynkron/goedit/internal/files"
	"github.com/asynkron/goedit/pkg/patch"
)

func TestSchemaRequiresOperationFields(t *testing.T) {
	t.Parallel()

	schemaMap, err := Schema()
	require.NoError(t, err)

	properties, ok := schemaMap["properties"].(map[string]any)
	require.True(t, ok, "expected schema properties to be present")
	operations, ok := properties["operations"].(map[string]any)
	require.True(t, ok)
	items, ok := operations["items"].(map[string]any)
	require.True(t, ok)
	require.ElementsMatch(t, []any{"path", "kind", "content"}, items["required"])
}

func TestParseValidBatch(t *testing.T) {
	t.Parallel()

	batch, err := Parse([]byte(`{"operations":[
		{"path":"a.txt","kind":"content","content":"hello\n"},
		{"path":"b.txt","kind":"diff","content":"@@ -1 +1 @@\n-x\n+y\n"}
	]}`))
	require.NoError(t, err)
	require.Equal(t, []Operation{
		{Path: "a.txt", Kind: KindContent, Content: "hello\n"},
		{Path: "b.txt", Kind: KindDiff, Content: "@@ -1 +1 @@\n-x\n+y\n"},
	}, batch.Operations)
}

func TestParseReportsAllSchemaIssues(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"operations":[{"path":"","kind":"rename","content":"x"},{"kind":"diff","content":"y"}]}`))
	var validation *ValidationError
	require.True(t, errors.As(err, &validation), "expected ValidationError, got %v", err)
	require.GreaterOrEqual(t, len(validation.Issues), 3)
	require.Contains(t, err.Error(), "kind")
	require.Contains(t, err.Error(), "path")
}

func TestParseRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("   "))
	require.Error(t, err)

	_, err = Parse([]byte(`{"operations": [`))
	require.ErrorContains(t, err, "not valid JSON")

	_, err = Parse([]byte(`{"operations":[{"path":1,"kind":"diff","content":"x"}]}`))
	var validation *ValidationError
	require.True(t, errors.As(err, &validation))
}

func newManager(seed map[string]string) (*files.Manager, *files.MemoryStore) {
	store := files.NewMemoryStore(seed)
	return files.NewManager(store, files.ManagerOptions{}), store
}

func TestApplyRunsOperationsInOrder(t *testing.T) {
	t.Parallel()

	mgr, store := newManager(map[string]string{"b.txt": "x\n"})
	batch := Batch{Operations: []Operation{
		{Path: "a.txt", Kind: KindContent, Content: "hello\n"},
		{Path: "b.txt", Kind: KindDiff, Content: "@@ -1 +1 @@\n-x\n+y\n"},
	}}

	outcomes, err := Apply(context.Background(), mgr, batch, Options{})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	require.Equal(t, files.ModeOverwrite, outcomes[0].Result.Mode)
	require.Equal(t, files.ModePatch, outcomes[1].Result.Mode)
	require.Equal(t, map[string]string{"a.txt": "hello\n", "b.txt": "y\n"}, store.Snapshot())
}

func TestApplyDryRunLeavesStoreUntouched(t *testing.T) {
	t.Parallel()

	seed := map[string]string{"b.txt": "x\n"}
	mgr, store := newManager(seed)
	batch := Batch{Operations: []Operation{
		{Path: "a.txt", Kind: KindContent, Content: "hello\n"},
		{Path: "b.txt", Kind: KindDiff, Content: "@@ -1 +1 @@\n-x\n+y\n"},
	}}

	outcomes, err := Apply(context.Background(), mgr, batch, Options{DryRun: true})
	require.NoError(t, err)
	require.Equal(t, "y\n", outcomes[1].Result.After)
	require.Equal(t, seed, store.Snapshot())
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	mgr, store := newManager(map[string]string{"b.txt": "x\n"})
	batch := Batch{Operations: []Operation{
		{Path: "b.txt", Kind: KindDiff, Content: "@@ -9 +9 @@\n-x\n+y\n"},
		{Path: "a.txt", Kind: KindContent, Content: "hello\n"},
	}}

	outcomes, err := Apply(context.Background(), mgr, batch, Options{})
	require.ErrorIs(t, err, patch.ErrContextOutOfRange)
	require.Len(t, outcomes, 1)
	require.Equal(t, map[string]string{"b.txt": "x\n"}, store.Snapshot())
}

func TestApplyContinueOnErrorRecordsFailures(t *testing.T) {
	t.Parallel()

	mgr, store := newManager(map[string]string{"b.txt": "x\n"})
	batch := Batch{Operations: []Operation{
		{Path: "b.txt", Kind: KindDiff, Content: "@@ -1 +1 @@\n*x\n"},
		{Path: "a.txt", Kind: KindContent, Content: "hello\n"},
		{Path: "c.txt", Kind: "rename", Content: ""},
	}}

	outcomes, err := Apply(context.Background(), mgr, batch, Options{ContinueOnError: true})
	require.Error(t, err)
	require.ErrorIs(t, err, patch.ErrUnknownDiffMarker)
	require.Len(t, outcomes, 3)
	require.Error(t, outcomes[0].Err)
	require.NoError(t, outcomes[1].Err)
	require.ErrorContains(t, outcomes[2].Err, "unknown operation kind")
	require.Equal(t, "hello\n", store.Snapshot()["a.txt"])
}

func TestApplyHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mgr, _ := newManager(nil)

	outcomes, err := Apply(ctx, mgr, Batch{Operations: []Operation{{Path: "a", Kind: KindContent, Content: "x"}}}, Options{})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, outcomes)
}
