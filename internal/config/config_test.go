package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Redis.FeedbackTTL)
	assert.Equal(t, "outfit-events", cfg.Kafka.Topics.OutfitEvents)
	assert.Equal(t, DefaultEngineConfig(), cfg.Engine)
	assert.Equal(t, RateLimitConfig{Requests: 300, Window: time.Minute}, cfg.Security.RateLimit)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := []byte(`
engine:
  weights:
    color: 0.5
  ranking:
    max_overlap: 0.6
storage:
  driver: sqlite
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), yaml, 0o600))
	t.Setenv("ENGINE_GENERATOR_MAX_CANDIDATES", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Engine.Weights.Color)
	assert.Equal(t, 0.6, cfg.Engine.Ranking.MaxOverlap)
	assert.Equal(t, 500, cfg.Engine.Generator.MaxCandidates)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	// untouched keys keep their defaults
	assert.Equal(t, 0.15, cfg.Engine.Weights.Fabric)
}

func TestLoad_RejectsNegativeGeneratorLimits(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{"ENGINE_GENERATOR_MAX_ACCESSORIES", "-1"},
		{"ENGINE_GENERATOR_MAX_PER_SLOT", "-3"},
		{"ENGINE_GENERATOR_MAX_CANDIDATES", "-100"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tt.env, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGeneratorConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultEngineConfig().Generator.Validate())
	assert.NoError(t, GeneratorConfig{}.Validate())
	assert.Error(t, GeneratorConfig{MaxAccessories: -1}.Validate())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
