package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENGINE_COMMAND", "ENGINE_TEMPLATE_VARIANTS", "ENGINE_TIMEOUT", "SNAPSHOT_BACKEND", "ENGINE_MAX_CONCURRENCY", "ENGINE_PREPARE_COMMAND"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	assert.Equal(t, []string{"/bin/sh", "cascade.sh"}, cfg.Engine.Command)
	assert.Equal(t, []string{"BASELINE:NGRAMS"}, cfg.Engine.Variants)
	assert.Equal(t, 10*time.Minute, cfg.Engine.Timeout)
	assert.Equal(t, "file", cfg.Snapshot.Backend)
	assert.Equal(t, 4, cfg.Engine.MaxConcurrent)
	assert.Empty(t, cfg.Engine.PrepareCommand)
}

func TestLoad_EngineOverrides(t *testing.T) {
	t.Setenv("ENGINE_COMMAND", "/bin/sh  cascade.sh")
	t.Setenv("ENGINE_TIMEOUT", "90s")
	t.Setenv("ENGINE_TEMPLATE_VARIANTS", "BASELINE:NGRAMS, WEGFG:PARSE ,")
	t.Setenv("ENGINE_PICK_SEED", "42")

	cfg := Load()

	assert.Equal(t, []string{"/bin/sh", "cascade.sh"}, cfg.Engine.Command)
	assert.Equal(t, 90*time.Second, cfg.Engine.Timeout)
	assert.Equal(t, []string{"BASELINE:NGRAMS", "WEGFG:PARSE"}, cfg.Engine.Variants)
	assert.Equal(t, int64(42), cfg.Engine.PickSeed)
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	assert.Equal(t, time.Second, getEnvAsDuration("SOME_DURATION", time.Second))
}
