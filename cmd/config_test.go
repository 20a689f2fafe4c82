package cmd

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "splice.dev/pkg/splice/internal/model"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "splice", configBaseName)
	assert.Equal(t, "splice.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "mix", mixFlagName)
	assert.Equal(t, "dependency", dependencyFlagName)
	assert.Equal(t, "parallel", parallelFlagName)
	assert.Equal(t, "fetch.parallel", fetchParallelConfigKey)
	assert.Equal(t, "patch.parallel", patchParallelConfigKey)
	assert.Equal(t, "lock.path", lockPathConfigKey)
	assert.Equal(t, ".splice-out", defaultOutputDir)
	assert.Equal(t, "splice.lock", defaultLockPath)
	assert.Equal(t, 4, defaultFetchParallel)
	assert.Equal(t, 4, defaultPatchParallel)
	assert.Equal(t, "SPLICE", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestSetupArgs_Defaults(t *testing.T) {
	args, err := setupArgs()
	require.NoError(t, err)

	assert.Equal(t, []m.MirrorConfig{{URL: defaultMirrorURL}}, args.Mirrors)
	assert.Equal(t, m.Path(defaultLockPath), args.LockPath)
	assert.Equal(t, defaultFetchParallel, args.Parallel)
}

func TestSetupArgs_MirrorsFromConfig(t *testing.T) {
	viper.Set(mirrorsConfigKey, []map[string]any{
		{"url": "https://mirror.example.com/maven2", "username": "ci", "password": "secret"},
		{"url": "https://repo.example.com/maven2"},
	})
	t.Cleanup(func() {
		viper.Set(mirrorsConfigKey, []map[string]string{{"url": defaultMirrorURL}})
	})

	args, err := setupArgs()
	require.NoError(t, err)

	assert.Equal(t, []m.MirrorConfig{
		{URL: "https://mirror.example.com/maven2", Username: "ci", Password: "secret"},
		{URL: "https://repo.example.com/maven2"},
	}, args.Mirrors)
}

func TestFetchTimeout(t *testing.T) {
	assert.Equal(t, defaultFetchTimeout, fetchTimeout())

	viper.Set(fetchTimeoutConfigKey, 5)
	t.Cleanup(func() { viper.Set(fetchTimeoutConfigKey, int64(defaultFetchTimeout.Seconds())) })

	assert.Equal(t, 5*time.Second, fetchTimeout())
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
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	logPath := filepath.Join(t.TempDir(), "splice.log")

	configureLogger(logPath, true)
	require.NotNil(t, globalLogger)
	assert.True(t, globalLogger.Enabled(t.Context(), slog.LevelDebug))

	configureLogger(logPath, false)
	assert.False(t, globalLogger.Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, globalLogger.Enabled(t.Context(), slog.LevelInfo))
}
