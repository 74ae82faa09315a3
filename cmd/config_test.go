package cmd

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "refdiff", configBaseName)
	assert.Equal(t, "refdiff.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "format", formatFlagName)
	assert.Equal(t, "exclude", excludeFlagName)
	assert.Equal(t, "parallel", runParallelFlagName)
	assert.Equal(t, "run.parallel", runParallelConfigKey)
	assert.Equal(t, "paths.exclude", excludeConfigKey)
	assert.Equal(t, "match.max_name_distance", maxNameDistanceKey)
	assert.Equal(t, "match.similarity_threshold", similarityThresholdKey)
	assert.Equal(t, "git.repository", gitRepositoryKey)
	assert.Equal(t, ".refdiff-reports", defaultReportsDir)
	assert.Equal(t, "table", defaultFormat)
	assert.Equal(t, 1, defaultRunParallel)
	assert.Equal(t, "REFDIFF", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestMatchConfigDefaults(t *testing.T) {
	assert.InDelta(t, 0.4, matchConfig().MaxOperationNameDistance, 1e-9)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelInfo))
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	configureLogger(filepath.Join(t.TempDir(), "refdiff.log"), true)

	assert.NotNil(t, globalLogger)
	assert.True(t, globalLogger.Enabled(t.Context(), slog.LevelDebug))
}
