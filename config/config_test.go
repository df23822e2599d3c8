package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: 0.2\ngapGamma: 1.5\n"), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.2, p.Threshold)
	assert.Equal(t, 1.5, p.GapGamma)
	// untouched fields keep their defaults
	assert.Equal(t, Default().TraceBackDiagonals, p.TraceBackDiagonals)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	p := Default()
	p.Threshold = 1.5
	assert.Error(t, p.Validate())
}

func TestValidateRejectsNegativeWindow(t *testing.T) {
	p := Default()
	p.TraceBackDiagonals = -1
	assert.Error(t, p.Validate())
}
