package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndQueryRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &Run{
		AnalysisID: "170623_NB501073_0015",
		ResultsID:  "results_2017-06-26_20-11-26",
		RootDir:    "/data/output/170623_NB501073_0015",
		IsValid:    false,
		Checks: []Check{
			{Name: "root_exists", Status: true, Note: "whether the analysis directory exists"},
			{Name: "expected_static_files_exist", Status: false, Note: "settings.txt missing"},
		},
	}
	require.NoError(t, store.RecordRun(ctx, run))
	assert.NotEmpty(t, run.ID, "a UUID should be assigned")
	assert.False(t, run.CreatedAt.IsZero())

	runs, err := store.Runs(ctx, "170623_NB501073_0015", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "results_2017-06-26_20-11-26", got.ResultsID)
	assert.False(t, got.IsValid)
	require.Len(t, got.Checks, 2)
	assert.Equal(t, "root_exists", got.Checks[0].Name, "checks keep battery order")
	assert.False(t, got.Checks[1].Status)
}

func TestRunsMostRecentFirstAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordRun(ctx, &Run{
			AnalysisID: "run1",
			RootDir:    "/data/run1",
			IsValid:    i == 2,
		}))
	}

	runs, err := store.Runs(ctx, "run1", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].IsValid, "newest run first")
}

func TestRunsFiltersByAnalysis(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordRun(ctx, &Run{AnalysisID: "a", RootDir: "/a", IsValid: true}))
	require.NoError(t, store.RecordRun(ctx, &Run{AnalysisID: "b", RootDir: "/b", IsValid: true}))

	runs, err := store.Runs(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "a", runs[0].AnalysisID)

	all, err := store.Runs(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestEmptyHistory(t *testing.T) {
	store := newTestStore(t)

	runs, err := store.Runs(context.Background(), "unknown", 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
