package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/variscan/domain"
	"github.com/ludo-technologies/variscan/internal/config"
)

func TestConfigurationLoader_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".variscan.toml")
	require.NoError(t, os.WriteFile(path, []byte(`classifierNormalization = ["*Custom"]
cleanupDerivedCopies = true

[matching]
emitMoves = true

[output]
format = "json"
`), 0644))

	req, err := NewConfigurationLoader(nil).LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"*Custom"}, req.ClassifierNormalization)
	assert.True(t, req.CleanupDerivedCopies)
	assert.True(t, req.EmitMoves)
	assert.Equal(t, domain.OutputFormatJSON, req.OutputFormat)
	assert.Equal(t, 0.5, req.StructuralThreshold)
}

func TestConfigurationLoader_LoadConfigError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[matching]\nstructuralThreshold = 2.0\n"), 0644))

	_, err := NewConfigurationLoader(nil).LoadConfig(path)
	require.Error(t, err)
	var domainErr domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeConfigError, domainErr.Code)
}

func TestConfigurationLoader_MergeConfig(t *testing.T) {
	base := config.DefaultConfig().ToDiffRequest(nil)
	base.ClassifierNormalization = []string{"*Custom"}
	base.OutputFormat = domain.OutputFormatYAML
	base.StructuralThreshold = 0.6

	fs := pflag.NewFlagSet("diff", pflag.ContinueOnError)
	format := fs.String("format", "text", "")
	threshold := fs.Float64("structural-threshold", 0.5, "")
	moves := fs.Bool("emit-moves", false, "")
	classifiers := fs.StringSlice("classifier-normalization", nil, "")
	require.NoError(t, fs.Parse([]string{"--format", "json", "--emit-moves"}))

	override := &domain.DiffRequest{
		LeftPath:                "a",
		RightPath:               "b",
		OutputFormat:            domain.OutputFormat(*format),
		StructuralThreshold:     *threshold,
		EmitMoves:               *moves,
		ClassifierNormalization: *classifiers,
	}

	merged := NewConfigurationLoader(nil).MergeConfig(base, override, config.NewFlagTrackerFromFlagSet(fs))

	assert.Equal(t, "a", merged.LeftPath)
	assert.Equal(t, "b", merged.RightPath)
	assert.Equal(t, domain.OutputFormatJSON, merged.OutputFormat, "explicit flag wins")
	assert.True(t, merged.EmitMoves, "explicit flag wins")
	assert.Equal(t, 0.6, merged.StructuralThreshold, "config value survives an unset flag")
	assert.Equal(t, []string{"*Custom"}, merged.ClassifierNormalization)
	assert.Equal(t, "leading", merged.LeadingVariantID)

	// A nil tracker keeps the configured values
	merged = NewConfigurationLoader(nil).MergeConfig(base, override, nil)
	assert.Equal(t, domain.OutputFormatYAML, merged.OutputFormat)
	assert.Equal(t, "a", merged.LeftPath)
}
