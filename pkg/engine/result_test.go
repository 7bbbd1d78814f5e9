package engine

import (
	"testing"

	"summarizer-session-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult_Aliases(t *testing.T) {
	res, err := parseResult([]byte(`{
		"summary": [],
		"weights": {"a": 1},
		"fbs_weights": {"b": 2},
		"interactions": [{"concept": "a", "iteration": 1, "value": "ACCEPT", "uncertainty": 0.1, "uncertainity": 0.9}],
		"details": [{"concept": "ignored"}]
	}`))
	require.NoError(t, err)

	assert.Empty(t, res.Summary)
	assert.Equal(t, map[string]float64{"a": 1}, res.Weights)
	require.Len(t, res.Interactions, 1)
	assert.Equal(t, entity.InteractionAccept, res.Interactions[0].Value)
	// the correctly spelled key wins
	assert.Equal(t, 0.1, res.Interactions[0].Uncertainty)
	assert.NotNil(t, res.SentenceIds)
}

func TestParseResult_Rejects(t *testing.T) {
	for name, body := range map[string]string{
		"missing summary": `{"details": []}`,
		"bad value":       `{"summary": ["x"], "details": [{"concept": "a", "value": "maybe"}]}`,
		"empty concept":   `{"summary": ["x"], "details": [{"value": "accept"}]}`,
		"not json":        `summary`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseResult([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestParseRouge(t *testing.T) {
	score, err := parseRouge([]byte(`{"R1": 0.4, "R2": 0.2, "R4": 0.0}`))
	require.NoError(t, err)
	assert.Equal(t, 0.4, score.R1)

	_, err = parseRouge([]byte(`{"R1": 0.4}`))
	assert.Error(t, err)
}

func TestProposals_SkipsEchoesAndDuplicates(t *testing.T) {
	res := &Result{Interactions: []*entity.Interaction{
		{Concept: "known", Iteration: 0, Value: entity.InteractionAccept},
		{Concept: "new", Iteration: -1, Weight: 0.3},
		{Concept: "new", Iteration: -2, Weight: 0.1},
		{Concept: "other", Iteration: -2},
	}}

	proposals := res.Proposals()
	require.Len(t, proposals, 2)
	assert.Equal(t, "new", proposals[0].Concept)
	assert.Equal(t, 0.3, proposals[0].Weight)
	assert.Equal(t, "other", proposals[1].Concept)
}

func TestSummarizeArgs(t *testing.T) {
	args := summarizeArgs("D31", entity.Variant{Propagation: entity.PropagationWEGFG, Concept: entity.ConceptNgrams}, "/tmp/out.pkl")
	assert.Equal(t, []string{
		"D31", "-s", "PROPAGATION", "--max_iteration_count", "1",
		"--pickleout", "/tmp/out.pkl", "--oracle", "ilp_feedback",
		"-gb", "4.0", "0.0", "128", "16", "0.6",
	}, args)
}
