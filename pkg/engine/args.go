package engine

import (
	"strings"

	"summarizer-session-be/internal/entity"
)

const (
	SubcommandSummarize = "summarize"
	SubcommandContinue  = "continue"
	SubcommandRouge     = "rouge"
)

// summarizeArgs builds the cold start arguments that follow the subcommand.
func summarizeArgs(topic entity.Topic, variant entity.Variant, pickleOut string) []string {
	args := []string{
		string(topic),
		"-s", "PROPAGATION",
		"--max_iteration_count", "1",
		"--pickleout", pickleOut,
		"--oracle", "ilp_feedback",
	}
	if variant.Concept == entity.ConceptParse {
		args = append(args, "--concept_type", strings.ToLower(string(entity.ConceptParse)))
	}
	switch variant.Propagation {
	case entity.PropagationWERWFG:
		args = append(args, "-rw", "1.0", "-1.0", "1024", "200", "0.6", "0.25")
	case entity.PropagationWEGFG:
		args = append(args, "-gb", "4.0", "0.0", "128", "16", "0.6")
	}
	return args
}

func continueArgs(pickleIn, pickleOut, labels string) []string {
	return []string{
		"--picklein", pickleIn,
		"--pickleout", pickleOut,
		"--oracle_labels", labels,
	}
}

func rougeArgs(topic entity.Topic, input string) []string {
	return []string{string(topic), input}
}
