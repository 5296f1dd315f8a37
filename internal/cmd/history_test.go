package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/surveyor/internal/report"
)

func TestPrintHistoryEmpty(t *testing.T) {
	store, err := report.NewStore(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	defer store.Close()

	var out bytes.Buffer
	require.NoError(t, printHistory(&out, store, "", 0, false))
	assert.Contains(t, out.String(), "no recorded validation runs")
}

func TestPrintHistoryShowsRunsAndChecks(t *testing.T) {
	store, err := report.NewStore(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.RecordRun(context.Background(), &report.Run{
		AnalysisID: "run1",
		ResultsID:  "results1",
		RootDir:    "/data/run1",
		IsValid:    false,
		Checks: []report.Check{
			{Name: "root_exists", Status: true},
			{Name: "expected_static_files_exist", Status: false},
		},
	}))

	var out bytes.Buffer
	require.NoError(t, printHistory(&out, store, "run1", 0, true))

	assert.Contains(t, out.String(), "INVALID")
	assert.Contains(t, out.String(), "run1 (results1)")
	assert.Contains(t, out.String(), "[PASS] root_exists")
	assert.Contains(t, out.String(), "[FAIL] expected_static_files_exist")
}
