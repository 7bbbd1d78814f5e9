package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Topic string

type PropagationType string
type ConceptType string

const (
	PropagationBaseline PropagationType = "BASELINE"
	PropagationWEGFG    PropagationType = "WEGFG"
	PropagationWERWFG   PropagationType = "WERWFG"

	ConceptNgrams ConceptType = "NGRAMS"
	ConceptParse  ConceptType = "PARSE"
)

// Variant is the configuration a template was cold started with.
type Variant struct {
	Propagation PropagationType
	Concept     ConceptType
}

var DefaultVariant = Variant{Propagation: PropagationBaseline, Concept: ConceptNgrams}

func (v Variant) String() string {
	return fmt.Sprintf("%s:%s", v.Propagation, v.Concept)
}

// ParseVariant reads "PROPAGATION:CONCEPT", e.g. "BASELINE:NGRAMS".
func ParseVariant(s string) (Variant, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return Variant{}, fmt.Errorf("variant %q must look like PROPAGATION:CONCEPT", s)
	}
	v := Variant{
		Propagation: PropagationType(strings.ToUpper(parts[0])),
		Concept:     ConceptType(strings.ToUpper(parts[1])),
	}
	switch v.Propagation {
	case PropagationBaseline, PropagationWEGFG, PropagationWERWFG:
	default:
		return Variant{}, fmt.Errorf("unknown propagation type %q", parts[0])
	}
	switch v.Concept {
	case ConceptNgrams, ConceptParse:
	default:
		return Variant{}, fmt.Errorf("unknown concept type %q", parts[1])
	}
	return v, nil
}

// AssignmentTemplate is the seed a topic's sessions start from. Apart from
// ReuseCount it is never changed after creation.
type AssignmentTemplate struct {
	Id                  uuid.UUID
	Topic               Topic
	Variant             Variant
	Summary             []string
	SentenceIds         []int
	ConfirmatorySummary []int64
	ExploratorySummary  []int64
	Weights             map[string]float64
	Interactions        []*Interaction
	SnapshotHandle      string
	RunId               string
	ReuseCount          int
	CreatedAt           time.Time
}
