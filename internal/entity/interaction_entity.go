package entity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type InteractionValue string

const (
	InteractionRecommendation InteractionValue = "recommendation"
	InteractionAccept         InteractionValue = "accept"
	InteractionReject         InteractionValue = "reject"
)

// ParseInteractionValue accepts the lower case wire form as well as the upper case names.
func ParseInteractionValue(s string) (InteractionValue, error) {
	switch InteractionValue(strings.ToLower(s)) {
	case InteractionRecommendation:
		return InteractionRecommendation, nil
	case InteractionAccept:
		return InteractionAccept, nil
	case InteractionReject:
		return InteractionReject, nil
	}
	return "", fmt.Errorf("%q is not a valid interaction value", s)
}

func (v InteractionValue) IsLabel() bool {
	return v == InteractionAccept || v == InteractionReject
}

// InteractionKey is the merge identity of an interaction: the concept plus the
// iteration it was introduced at. Generated ids play no part in it.
type InteractionKey struct {
	Concept   string
	Iteration int
}

func (k InteractionKey) String() string {
	return fmt.Sprintf("%s@%d", k.Concept, k.Iteration)
}

type Interaction struct {
	Id          uuid.UUID
	IterationId uuid.UUID
	Concept     string
	Iteration   int
	Value       InteractionValue
	Weight      float64
	Uncertainty float64
}

type InteractionParams struct {
	IterationId uuid.UUID
	Concept     string
	Iteration   int
	Value       InteractionValue
	Weight      float64
	Uncertainty float64
}

func NewInteraction(p InteractionParams) *Interaction {
	return &Interaction{
		Id:          uuid.New(),
		IterationId: p.IterationId,
		Concept:     p.Concept,
		Iteration:   p.Iteration,
		Value:       p.Value,
		Weight:      p.Weight,
		Uncertainty: p.Uncertainty,
	}
}

func (i *Interaction) Key() InteractionKey {
	return InteractionKey{Concept: i.Concept, Iteration: i.Iteration}
}

// Clone copies the content under a fresh identity.
func (i *Interaction) Clone() *Interaction {
	c := *i
	c.Id = uuid.New()
	return &c
}
