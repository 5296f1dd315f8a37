package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/surveyor/internal/analysis"
	"github.com/harrison/surveyor/internal/config"
	"github.com/harrison/surveyor/internal/report"
)

// fixtureAnalysis builds a complete analysis output tree under a temp dir.
func fixtureAnalysis(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"samples.pairs.csv":          "S1,S2\n",
		"samples.fastq-raw.csv":      "S1,/fastq/S1_R1.fastq.gz\nS2,/fastq/S2_R1.fastq.gz\n",
		"settings.txt":               "GENOME hg19\n",
		"summary-combined.wes.csv":   "#SAMPLE,MAPPED READS\nS1,100\nS2,200\n",
		"targets.bed":                "chr1\t100\t200\n",
		"logs-qsub/sns.wes.S1.o123":  "job finished\n",
		"BAM-GATK-RA-RC/S1.dd.bam":   "bam",
		"VCF-GATK-HC/S1.vcf":         "vcf",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Schema.OutputIndex = map[string][]string{
		analysis.ParentKey:   nil,
		"BAM-GATK-RA-RC":     {"*.bam"},
		"VCF-GATK-HC":        {"*.vcf"},
		analysis.QsubLogsKey: nil,
	}
	cfg.ReportDB = filepath.Join(t.TempDir(), "reports.db")
	return cfg
}

func TestRunValidateValidAnalysis(t *testing.T) {
	root := fixtureAnalysis(t)
	cfg := testConfig(t)

	var out bytes.Buffer
	err := runValidate(&out, cfg, validateOptions{Dir: root, AnalysisID: "run1"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "[PASS] root_exists")
	assert.Contains(t, out.String(), "Result: VALID")
}

func TestRunValidateInvalidAnalysisReturnsError(t *testing.T) {
	root := fixtureAnalysis(t)
	require.NoError(t, os.Remove(filepath.Join(root, "settings.txt")))
	cfg := testConfig(t)

	var out bytes.Buffer
	err := runValidate(&out, cfg, validateOptions{Dir: root, AnalysisID: "run1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, analysis.ErrAnalysisInvalid))
	assert.Contains(t, out.String(), "[FAIL] expected_static_files_exist")
	assert.Contains(t, out.String(), "Result: INVALID")
}

func TestRunValidateRecordsRun(t *testing.T) {
	root := fixtureAnalysis(t)
	cfg := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, runValidate(&out, cfg, validateOptions{
		Dir:        root,
		AnalysisID: "run1",
		ResultsID:  "results1",
	}))

	store, err := report.NewStore(cfg.ReportDB)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Runs(context.Background(), "run1", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].IsValid)
	assert.Equal(t, "results1", runs[0].ResultsID)
	assert.Len(t, runs[0].Checks, 4)
}

func TestRunValidateNoRecord(t *testing.T) {
	root := fixtureAnalysis(t)
	cfg := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, runValidate(&out, cfg, validateOptions{
		Dir:        root,
		AnalysisID: "run1",
		NoRecord:   true,
	}))

	_, err := os.Stat(cfg.ReportDB)
	assert.True(t, os.IsNotExist(err), "report DB should not be created with --no-record")
}

func TestRunValidateWritesSnapshot(t *testing.T) {
	root := fixtureAnalysis(t)
	cfg := testConfig(t)
	snapPath := filepath.Join(t.TempDir(), "snapshot.json")

	var out bytes.Buffer
	require.NoError(t, runValidate(&out, cfg, validateOptions{
		Dir:        root,
		AnalysisID: "run1",
		Snapshot:   snapPath,
		NoRecord:   true,
	}))

	data, err := os.ReadFile(snapPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"analysis_id": "run1"`)
	assert.Contains(t, string(data), `"is_valid": true`)
}

func TestRunValidateMissingRoot(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	err := runValidate(&out, cfg, validateOptions{
		Dir:        filepath.Join(t.TempDir(), "missing"),
		AnalysisID: "run1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, analysis.ErrItemMissing))
}
