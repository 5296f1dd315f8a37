package analysis

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplesFromManifest(t *testing.T) {
	root := validFixture(t)

	a, err := New(root, "run1", testSchema(), &Options{ResultsID: "results1"})
	require.NoError(t, err)

	samples, err := a.Samples()
	require.NoError(t, err)
	require.Len(t, samples, 2)

	s1 := samples[0]
	assert.Equal(t, "S1", s1.ID)
	assert.Equal(t, "S1*", s1.SearchPattern)
	assert.Equal(t, "run1", s1.AnalysisID)
	assert.Equal(t, "results1", s1.ResultsID)
	assert.Equal(t, a.RootDir, s1.RootDir)
	assert.True(t, s1.AnalysisIsValid)
}

func TestSampleInheritsResolvedRegistries(t *testing.T) {
	root := validFixture(t)

	a, err := New(root, "run1", testSchema(), nil)
	require.NoError(t, err)

	samples, err := a.BuildSamples("S1")
	require.NoError(t, err)
	s := samples[0]

	assert.Equal(t, a.Dirs("BAM-GATK-RA-RC"), s.Dirs("BAM-GATK-RA-RC"))
	assert.Equal(t, a.Files(TargetsBEDKey), s.Files(TargetsBEDKey))
	assert.Equal(t, a.StaticFile(SettingsKey), s.StaticFile(SettingsKey))
}

func TestSampleSnapshotIsImmutable(t *testing.T) {
	root := validFixture(t)

	a, err := New(root, "run1", testSchema(), nil)
	require.NoError(t, err)

	samples, err := a.BuildSamples("S1")
	require.NoError(t, err)
	s := samples[0]

	before := s.Dirs("BAM-GATK-RA-RC")

	// Re-resolving the parent after sample construction must not change
	// the sample's view
	require.NoError(t, os.RemoveAll(filepath.Join(root, "BAM-GATK-RA-RC")))
	a.resolveDirs()

	assert.Empty(t, a.Dirs("BAM-GATK-RA-RC"))
	assert.Equal(t, before, s.Dirs("BAM-GATK-RA-RC"), "sample holds a one-time copy")
}

func TestLookupOutputScopedToSample(t *testing.T) {
	root := validFixture(t)

	a, err := New(root, "run1", testSchema(), nil)
	require.NoError(t, err)

	samples, err := a.BuildSamples("S1")
	require.NoError(t, err)

	got, err := samples[0].LookupOutput("BAM-GATK-RA-RC", "*.bam")
	require.NoError(t, err)
	require.Len(t, got, 1, "S2's bam must not match S1's pattern")
	assert.Equal(t, "S1.dd.ra.rc.bam", filepath.Base(got[0]))
}

func TestLookupOutputEmptyIsValid(t *testing.T) {
	root := validFixture(t)

	a, err := New(root, "run1", testSchema(), nil)
	require.NoError(t, err)

	samples, err := a.BuildSamples("S9")
	require.NoError(t, err)

	got, err := samples[0].LookupOutput("BAM-GATK-RA-RC", "*.bam")
	require.NoError(t, err, "no output yet is not an error")
	assert.Empty(t, got)
}

func TestLookupOutputMissingStepDir(t *testing.T) {
	root := validFixture(t)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "VCF-GATK-HC")))

	a, err := New(root, "run1", testSchema(), nil)
	require.NoError(t, err)

	samples, err := a.BuildSamples("S1")
	require.NoError(t, err)

	_, err = samples[0].LookupOutput("VCF-GATK-HC", "*.vcf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrItemMissing), "unresolved step dir is an item-missing error, got %v", err)
}
