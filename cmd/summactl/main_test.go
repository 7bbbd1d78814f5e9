package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeedbackArg(t *testing.T) {
	zero, two := 0, 2
	tests := []struct {
		name      string
		arg       string
		concept   string
		iteration *int
		value     string
		wantErr   bool
	}{
		{name: "plain", arg: "gpu=accept", concept: "gpu", value: "accept"},
		{name: "with iteration", arg: "neural nets@2=REJECT", concept: "neural nets", iteration: &two, value: "reject"},
		{name: "at sign inside concept", arg: "a@b=accept", concept: "a@b", value: "accept"},
		{name: "zero iteration", arg: "x@0=recommendation", concept: "x", iteration: &zero, value: "recommendation"},
		{name: "missing value", arg: "gpu=", wantErr: true},
		{name: "missing concept", arg: "=accept", wantErr: true},
		{name: "no separator", arg: "gpu", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := parseFeedbackArg(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.concept, item.Concept)
			assert.Equal(t, tt.iteration, item.Iteration)
			assert.Equal(t, tt.value, item.Value)
		})
	}
}

func TestCollectFeedback_MergesJSONAndArgs(t *testing.T) {
	items, err := collectFeedback(`[{"concept":"a","iteration":1,"value":"reject","weight":0.5}]`, []string{"b=accept"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "a", items[0].Concept)
	require.NotNil(t, items[0].Iteration)
	assert.Equal(t, 1, *items[0].Iteration)
	require.NotNil(t, items[0].Weight)
	assert.Equal(t, 0.5, *items[0].Weight)
	assert.Equal(t, "b", items[1].Concept)

	items, err = collectFeedback("", nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = collectFeedback("{not json", nil)
	assert.Error(t, err)
}

func setupEnv(t *testing.T) {
	t.Helper()
	script, err := filepath.Abs(filepath.Join("..", "..", "pkg", "engine", "testdata", "fake_engine.sh"))
	require.NoError(t, err)

	dir := t.TempDir()
	t.Setenv("ENGINE_COMMAND", "/bin/sh "+script)
	t.Setenv("ENGINE_IOBASEDIR", dir)
	t.Setenv("ENGINE_TEMP_DIR", dir)
	t.Setenv("ENGINE_TEMPLATE_VARIANTS", "BASELINE:NGRAMS,WERWFG:PARSE")
	t.Setenv("SNAPSHOT_BACKEND", "file")
	t.Setenv("SNAPSHOT_DIR", filepath.Join(dir, "snapshots"))
	t.Setenv("LOG_FILE_PATH", filepath.Join(dir, "app.log.json"))
	t.Setenv("ENGINE_LOG_FILE_PATH", filepath.Join(dir, "engine.log.json"))
	t.Setenv("LOCK_BACKEND", "local")
	t.Setenv("NATS_URL", "")
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestTemplatesWarm_InMemory(t *testing.T) {
	setupEnv(t)
	require.NoError(t, runCLI(t, "--memory", "templates", "warm", "D31", "D32"))
}

func TestTemplatesWarm_ReportsFailures(t *testing.T) {
	setupEnv(t)
	t.Setenv("FAKE_ENGINE_MODE", "fail")

	err := runCLI(t, "--memory", "templates", "warm", "D31")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 topics failed")
}

func TestAssignmentCommands_RequireUser(t *testing.T) {
	setupEnv(t)
	err := runCLI(t, "--memory", "assignment", "list")
	assert.Error(t, err)

	err = runCLI(t, "--memory", "assignment", "list", "--user", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --user")
}

func TestOpenContainer_NeedsDatabaseWithoutMemory(t *testing.T) {
	setupEnv(t)
	t.Setenv("DB_CONNECTION_STRING", "")

	err := runCLI(t, "user", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_CONNECTION_STRING")
}
