package memory

import (
	"sort"

	"summarizer-session-be/internal/entity"
)

func sortIterations(items []*entity.Iteration) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].AssignmentId != items[j].AssignmentId {
			return items[i].AssignmentId.String() < items[j].AssignmentId.String()
		}
		return items[i].Number < items[j].Number
	})
}

func sortUsers(items []*entity.User) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].Id.String() < items[j].Id.String()
	})
}
