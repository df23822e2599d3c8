package modelfile

import (
	"math"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtRand/cPecan/seqio"
)

const sample = `# kmer level_mean level_sd noise_mean noise_sd noise_lambda
AAAAA	80.5	1.2	1.5	0.3	3.0
AAAAC	78.1	1.1	1.4	0.25

`

func TestParseReadsFieldsAndSkipsComments(t *testing.T) {
	table, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, table, 2)

	a := table["AAAAA"]
	assert.Equal(t, 80.5, a.LevelMean)
	assert.Equal(t, 1.2, a.LevelSD)
	assert.Equal(t, 3.0, a.NoiseLambda)

	c := table["AAAAC"]
	assert.Equal(t, 0.0, c.NoiseLambda)
}

func TestParseRejectsShortLines(t *testing.T) {
	_, err := Parse(strings.NewReader("AAAAA\t80.5\n"))
	assert.Error(t, err)
}

func TestParseRejectsBadNumber(t *testing.T) {
	_, err := Parse(strings.NewReader("AAAAA\tnotanumber\t1.2\t1.5\t0.3\n"))
	assert.Error(t, err)
}

func TestLoadReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/model.tsv"
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, table, 2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/model.tsv")
	assert.Error(t, err)
}

func TestBuildGaussianEmissionsRegistersEveryKmer(t *testing.T) {
	table, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	g := table.BuildGaussianEmissions(-5.0)
	g.Scale(1.0, 0.0, 1.0)

	logP := g.MatchLogProb("AAAAA", seqio.Event{Mean: 80.5})
	assert.False(t, math.IsInf(logP, -1))
}
