package memory

import "summarizer-session-be/internal/entity"

func copyWeights(w map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

func copyInteractions(in []*entity.Interaction) []*entity.Interaction {
	out := make([]*entity.Interaction, 0, len(in))
	for _, i := range in {
		c := *i
		out = append(out, &c)
	}
	return out
}

func copyTemplate(t entity.AssignmentTemplate) *entity.AssignmentTemplate {
	t.Summary = append([]string{}, t.Summary...)
	t.SentenceIds = append([]int{}, t.SentenceIds...)
	t.ConfirmatorySummary = append([]int64{}, t.ConfirmatorySummary...)
	t.ExploratorySummary = append([]int64{}, t.ExploratorySummary...)
	t.Weights = copyWeights(t.Weights)
	t.Interactions = copyInteractions(t.Interactions)
	return &t
}

// copyIteration returns the iteration without interactions, like the row mapper does.
func copyIteration(it entity.Iteration) *entity.Iteration {
	it.Summary = append([]string{}, it.Summary...)
	it.SentenceIds = append([]int{}, it.SentenceIds...)
	it.ConfirmatorySummary = append([]int64{}, it.ConfirmatorySummary...)
	it.ExploratorySummary = append([]int64{}, it.ExploratorySummary...)
	it.Weights = copyWeights(it.Weights)
	it.Interactions = []*entity.Interaction{}
	return &it
}
