package engine

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/pkg/apperror"
	"summarizer-session-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, timeout time.Duration) *ProcessGateway {
	t.Helper()
	g, err := NewProcessGateway(Config{
		Command: []string{"/bin/sh", filepath.Join("testdata", "fake_engine.sh")},
		BaseDir: t.TempDir(),
		TempDir: t.TempDir(),
		Timeout: timeout,
	}, logger.NewNopLogger(), nil)
	require.NoError(t, err)
	return g
}

func TestColdStart_ParsesResultAndSnapshot(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("FAKE_ENGINE_ARGS_FILE", argsFile)
	g := newTestGateway(t, 10*time.Second)

	res, err := g.ColdStart(context.Background(), "D31", entity.DefaultVariant)
	require.NoError(t, err)

	assert.Equal(t, []string{"First sentence about D31.", "Second sentence."}, res.Summary)
	assert.Equal(t, []int{3, 7}, res.SentenceIds)
	assert.Equal(t, []int64{3}, res.ConfirmatorySummary)
	assert.Equal(t, []int64{7}, res.ExploratorySummary)
	// empty weights fall back to fbs_weights
	assert.Equal(t, map[string]float64{"alpha": 0.5}, res.Weights)
	assert.Equal(t, "run-D31", res.RunId)
	assert.Equal(t, []byte("state:D31:"), res.Snapshot)

	require.Len(t, res.Interactions, 2)
	assert.Equal(t, 0.9, res.Interactions[0].Uncertainty)
	assert.Equal(t, -1, res.Interactions[0].Iteration)
	assert.Equal(t, entity.InteractionRecommendation, res.Interactions[1].Value)
	assert.Equal(t, recommendationIteration, res.Interactions[1].Iteration)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	line := string(args)
	assert.Contains(t, line, "summarize D31 -s PROPAGATION --max_iteration_count 1 --pickleout")
	assert.Contains(t, line, "--oracle ilp_feedback")
	assert.NotContains(t, line, "--concept_type")
	assert.True(t, strings.HasPrefix(line, "-out "))
}

func TestColdStart_VariantArguments(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("FAKE_ENGINE_ARGS_FILE", argsFile)
	g := newTestGateway(t, 10*time.Second)

	_, err := g.ColdStart(context.Background(), "D31", entity.Variant{Propagation: entity.PropagationWERWFG, Concept: entity.ConceptParse})
	require.NoError(t, err)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "--concept_type parse -rw 1.0 -1.0 1024 200 0.6 0.25")
}

func TestContinue_PassesSnapshotAndLabels(t *testing.T) {
	labelsCopy := filepath.Join(t.TempDir(), "labels.json")
	t.Setenv("FAKE_ENGINE_LABELS_COPY", labelsCopy)
	g := newTestGateway(t, 10*time.Second)

	labels := []Label{
		{Concept: "alpha", Value: entity.InteractionAccept, Iteration: 0, Weight: 1},
		{Concept: "beta", Value: entity.InteractionReject, Iteration: 0},
	}
	res, err := g.Continue(context.Background(), []byte("state:D31:+"), labels)
	require.NoError(t, err)

	assert.Equal(t, []string{"Summary of round 2."}, res.Summary)
	assert.Equal(t, []byte("state:D31:++"), res.Snapshot)

	proposals := res.Proposals()
	require.Len(t, proposals, 1)
	assert.Equal(t, "concept_2", proposals[0].Concept)
	assert.Equal(t, 0.7, proposals[0].Uncertainty)

	raw, err := os.ReadFile(labelsCopy)
	require.NoError(t, err)
	var written []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &written))
	require.Len(t, written, 2)
	assert.Equal(t, "alpha", written[0]["concept"])
	assert.Equal(t, "accept", written[0]["value"])
	assert.Equal(t, "reject", written[1]["value"])
}

func TestScore(t *testing.T) {
	g := newTestGateway(t, 10*time.Second)

	score, err := g.Score(context.Background(), "D31", "some text to rate")
	require.NoError(t, err)
	assert.Equal(t, &RougeScore{R1: 0.5, R2: 0.25, R4: 0.125}, score)
}

func TestFailureClassification(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		kind     error
		exitCode int
	}{
		{"non-zero exit", "fail", apperror.ErrEngineExecutionFailed, 3},
		{"unparsable result", "bad_json", apperror.ErrEngineResultInvalid, 0},
		{"result without summary", "no_summary", apperror.ErrEngineResultInvalid, 0},
		{"missing output snapshot", "no_pickle", apperror.ErrEngineResultInvalid, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FAKE_ENGINE_MODE", tt.mode)
			g := newTestGateway(t, 10*time.Second)

			res, err := g.ColdStart(context.Background(), "D31", entity.DefaultVariant)
			assert.Nil(t, res)
			require.ErrorIs(t, err, tt.kind)
			assert.True(t, apperror.IsEngineFailure(err))

			var engineErr *Error
			require.True(t, errors.As(err, &engineErr))
			assert.Equal(t, SubcommandSummarize, engineErr.Subcommand)
			assert.Equal(t, tt.exitCode, engineErr.ExitCode)
		})
	}
}

func TestExecutionFailureKeepsOutput(t *testing.T) {
	t.Setenv("FAKE_ENGINE_MODE", "fail")
	g := newTestGateway(t, 10*time.Second)

	_, err := g.Continue(context.Background(), []byte("state"), nil)
	var engineErr *Error
	require.True(t, errors.As(err, &engineErr))
	assert.Contains(t, engineErr.Stdout, "loading corpus")
	assert.Contains(t, engineErr.Stderr, "solver exploded")
	assert.Contains(t, err.Error(), "solver exploded")
}

func TestTimeoutKillsProcess(t *testing.T) {
	t.Setenv("FAKE_ENGINE_MODE", "sleep")
	g := newTestGateway(t, 200*time.Millisecond)

	start := time.Now()
	_, err := g.ColdStart(context.Background(), "D31", entity.DefaultVariant)
	assert.ErrorIs(t, err, apperror.ErrEngineTimeout)
	assert.Less(t, time.Since(start), 8*time.Second)
}

func TestInvocationsUseSeparateTempDirs(t *testing.T) {
	tempRoot := t.TempDir()
	g, err := NewProcessGateway(Config{
		Command: []string{"/bin/sh", filepath.Join("testdata", "fake_engine.sh")},
		TempDir: tempRoot,
		Timeout: 10 * time.Second,
	}, logger.NewNopLogger(), nil)
	require.NoError(t, err)

	_, err = g.ColdStart(context.Background(), "D31", entity.DefaultVariant)
	require.NoError(t, err)

	// scratch directories are removed after each run
	entries, err := os.ReadDir(tempRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewProcessGateway_RequiresCommand(t *testing.T) {
	_, err := NewProcessGateway(Config{}, logger.NewNopLogger(), nil)
	assert.Error(t, err)
}

func newPrepareGateway(t *testing.T, workDir string) *ProcessGateway {
	t.Helper()
	script, err := filepath.Abs(filepath.Join("testdata", "fake_engine.sh"))
	require.NoError(t, err)
	g, err := NewProcessGateway(Config{
		Command:        []string{"/bin/sh", script},
		WorkDir:        workDir,
		TempDir:        t.TempDir(),
		Timeout:        10 * time.Second,
		PrepareCommand: []string{"/bin/sh", script, "prepare"},
		PrepareMarker:  ".prepared",
	}, logger.NewNopLogger(), nil)
	require.NoError(t, err)
	return g
}

func TestPrepare_RunsOnceThenSkipsOnMarker(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("FAKE_ENGINE_ARGS_FILE", argsFile)
	workDir := t.TempDir()
	g := newPrepareGateway(t, workDir)

	require.NoError(t, g.Prepare(context.Background()))
	assert.FileExists(t, filepath.Join(workDir, ".prepared"))

	require.NoError(t, g.Prepare(context.Background()))

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"prepare"}, strings.Fields(string(args)))
}

func TestPrepare_SkipsWhenMarkerExists(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("FAKE_ENGINE_ARGS_FILE", argsFile)
	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, ".prepared"), nil, 0o644))

	require.NoError(t, newPrepareGateway(t, workDir).Prepare(context.Background()))
	assert.NoFileExists(t, argsFile)
}

func TestPrepare_Failure(t *testing.T) {
	t.Setenv("FAKE_ENGINE_MODE", "fail")
	workDir := t.TempDir()

	err := newPrepareGateway(t, workDir).Prepare(context.Background())
	require.ErrorIs(t, err, apperror.ErrEngineExecutionFailed)
	var engineErr *Error
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, "prepare", engineErr.Subcommand)
	assert.Contains(t, engineErr.Stdout, "solver exploded")
	assert.NoFileExists(t, filepath.Join(workDir, ".prepared"))
}

func TestPrepare_NoCommandIsNoop(t *testing.T) {
	g := newTestGateway(t, time.Second)
	assert.NoError(t, g.Prepare(context.Background()))
}
