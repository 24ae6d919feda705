package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Gobd/fhiroas/internal/config"
	"github.com/Gobd/fhiroas/openapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, openapi.DefaultMaxChainDepth, cfg.MaxChainDepth)
	assert.False(t, cfg.Enhance)
	assert.ErrorIs(t, cfg.Validate(), config.ErrNoCapability)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("FHIROAS_CAPABILITY", "cs.json")
	t.Setenv("FHIROAS_DEFINITIONS", "a,b")
	t.Setenv("FHIROAS_ENHANCE", "true")
	t.Setenv("FHIROAS_FORMAT", "yaml")

	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "cs.json", cfg.Capability)
	assert.Equal(t, []string{"a", "b"}, cfg.Definitions)
	assert.True(t, cfg.Enhance)
	assert.Equal(t, "yaml", cfg.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "fhiroas.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
capability: CapabilityStatement.json
definitions:
  - definitions
output: openapi.yaml
format: yaml
enhance: true
max_chain_depth: 3
packages:
  - name: fhir.r4.ukcore.stu3.currentbuild
    version: 0.0.8-pre-release
`), 0o600))

	cfg, err := config.Load(config.New(), file)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	opts := cfg.CompilerOptions()
	assert.True(t, opts.Enhance)
	assert.Equal(t, 3, opts.MaxChainDepth)
	assert.Equal(t, []openapi.Package{{Name: "fhir.r4.ukcore.stu3.currentbuild", Version: "0.0.8-pre-release"}}, opts.Packages)
	assert.Equal(t, []string{"definitions"}, cfg.Definitions)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(config.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := config.Config{Capability: "cs.json", Format: "json", LogFormat: "json"}
	assert.NoError(t, valid.Validate())

	badFormat := valid
	badFormat.Format = "xml"
	assert.ErrorIs(t, badFormat.Validate(), config.ErrFormat)

	badLog := valid
	badLog.LogFormat = "text"
	assert.ErrorIs(t, badLog.Validate(), config.ErrLogFormat)

	badDepth := valid
	badDepth.MaxChainDepth = -1
	assert.Error(t, badDepth.Validate())
}
