package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"summarizer-session-be/internal/bootstrap"
	"summarizer-session-be/internal/dto"
	"summarizer-session-be/internal/entity"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newAssignmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assignment",
		Aliases: []string{"a"},
		Short:   "Work with a user's assignments",
	}
	cmd.PersistentFlags().String("user", "", "User id (required)")
	cmd.MarkPersistentFlagRequired("user")

	getOrCreate := &cobra.Command{
		Use:   "get-or-create <topic>",
		Short: "Return the user's assignment for a topic, creating it from a template",
		Args:  cobra.ExactArgs(1),
		RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, cmd *cobra.Command, args []string) error {
			userId, err := userFlag(cmd)
			if err != nil {
				return err
			}
			a, err := c.AssignmentService.GetOrCreateAssignment(ctx, userId, entity.Topic(args[0]))
			if err != nil {
				return err
			}
			return printAssignment(cmd, a)
		}),
	}

	activate := &cobra.Command{
		Use:   "activate <assignment-id>",
		Short: "Make an assignment the user's active session",
		Args:  cobra.ExactArgs(1),
		RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, cmd *cobra.Command, args []string) error {
			userId, assignmentId, err := userAndAssignment(cmd, args[0])
			if err != nil {
				return err
			}
			a, err := c.AssignmentService.ActivateAssignment(ctx, assignmentId, userId)
			if err != nil {
				return err
			}
			return printAssignment(cmd, a)
		}),
	}

	feedback := &cobra.Command{
		Use:   "feedback <assignment-id> [concept[@iteration]=value ...]",
		Short: "Record a feedback round and advance the assignment",
		Long: `Record labels for the current iteration and ask the engine for the next one.

Items are given either as arguments, e.g.
  summactl assignment feedback <id> --user <uid> "neural nets=accept" "gpu@0=reject"
or as a JSON array with --items (use "-" to read it from stdin):
  [{"concept":"gpu","iteration":0,"value":"reject"}]`,
		Args: cobra.MinimumNArgs(1),
		RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, cmd *cobra.Command, args []string) error {
			userId, assignmentId, err := userAndAssignment(cmd, args[0])
			if err != nil {
				return err
			}
			raw, _ := cmd.Flags().GetString("items")
			items, err := collectFeedback(raw, args[1:])
			if err != nil {
				return err
			}
			a, err := c.AssignmentService.RecordFeedback(ctx, assignmentId, userId, &dto.RecordFeedbackRequest{Items: items})
			if err != nil {
				return err
			}
			return printAssignment(cmd, a)
		}),
	}
	feedback.Flags().String("items", "", "Feedback items as a JSON array, or - for stdin")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the user's assignments",
		Args:  cobra.NoArgs,
		RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, cmd *cobra.Command, args []string) error {
			userId, err := userFlag(cmd)
			if err != nil {
				return err
			}
			assignments, err := c.AssignmentService.ListAssignments(ctx, userId)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(assignments)
			}
			if len(assignments) == 0 {
				color.Yellow("No assignments")
				return nil
			}
			for _, a := range assignments {
				printAssignmentLine(a)
			}
			return nil
		}),
	}

	active := &cobra.Command{
		Use:   "active",
		Short: "Show the user's active assignment",
		Args:  cobra.NoArgs,
		RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, cmd *cobra.Command, args []string) error {
			userId, err := userFlag(cmd)
			if err != nil {
				return err
			}
			a, err := c.AssignmentService.GetActiveAssignment(ctx, userId)
			if err != nil {
				return err
			}
			return printAssignment(cmd, a)
		}),
	}

	get := &cobra.Command{
		Use:   "get <assignment-id>",
		Short: "Show an assignment with all of its iterations",
		Args:  cobra.ExactArgs(1),
		RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, cmd *cobra.Command, args []string) error {
			userId, assignmentId, err := userAndAssignment(cmd, args[0])
			if err != nil {
				return err
			}
			a, err := c.AssignmentService.GetAssignment(ctx, assignmentId, userId)
			if err != nil {
				return err
			}
			return printAssignment(cmd, a)
		}),
	}

	cmd.AddCommand(getOrCreate, activate, feedback, list, active, get)
	return cmd
}

func userFlag(cmd *cobra.Command) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("user")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --user %q: %w", raw, err)
	}
	return id, nil
}

func userAndAssignment(cmd *cobra.Command, rawAssignment string) (uuid.UUID, uuid.UUID, error) {
	userId, err := userFlag(cmd)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	assignmentId, err := uuid.Parse(rawAssignment)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid assignment id %q: %w", rawAssignment, err)
	}
	return userId, assignmentId, nil
}

// collectFeedback merges the --items JSON with positional items. An empty
// result is a valid round that only asks the engine for the next iteration.
func collectFeedback(rawJSON string, args []string) ([]dto.FeedbackItem, error) {
	var items []dto.FeedbackItem
	if rawJSON != "" {
		data := []byte(rawJSON)
		if rawJSON == "-" {
			var err error
			if data, err = io.ReadAll(os.Stdin); err != nil {
				return nil, err
			}
		}
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parse --items: %w", err)
		}
	}
	for _, arg := range args {
		item, err := parseFeedbackArg(arg)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// parseFeedbackArg reads "concept=value" or "concept@iteration=value".
func parseFeedbackArg(arg string) (dto.FeedbackItem, error) {
	eq := strings.LastIndex(arg, "=")
	if eq <= 0 || eq == len(arg)-1 {
		return dto.FeedbackItem{}, fmt.Errorf("feedback item %q: want concept[@iteration]=value", arg)
	}
	concept, value := arg[:eq], arg[eq+1:]

	item := dto.FeedbackItem{Concept: concept, Value: strings.ToLower(value)}
	if at := strings.LastIndex(concept, "@"); at > 0 {
		if n, err := strconv.Atoi(concept[at+1:]); err == nil {
			item.Concept = concept[:at]
			item.Iteration = &n
		}
	}
	return item, nil
}

func printAssignment(cmd *cobra.Command, a *dto.AssignmentResponse) error {
	if jsonOutput(cmd) {
		return printJSON(a)
	}
	printAssignmentLine(a)

	current := a.Current()
	if current == nil {
		return nil
	}
	color.Cyan("Iteration %d (%s)", current.Number, current.SnapshotHandle)
	for _, sentence := range current.Summary {
		fmt.Printf("  %s\n", sentence)
	}
	if len(current.Interactions) > 0 {
		color.Cyan("Concepts")
		for _, in := range current.Interactions {
			line := fmt.Sprintf("  %-32s @%-3d %-14s w=%.3f", in.Concept, in.Iteration, in.Value, in.Weight)
			switch entity.InteractionValue(in.Value) {
			case entity.InteractionAccept:
				color.Green("%s", line)
			case entity.InteractionReject:
				color.Red("%s", line)
			default:
				fmt.Println(line)
			}
		}
	}
	return nil
}

func printAssignmentLine(a *dto.AssignmentResponse) {
	marker := " "
	if a.IsActive {
		marker = color.GreenString("*")
	}
	rounds := 0
	if current := a.Current(); current != nil {
		rounds = current.Number
	}
	fmt.Printf("%s %s  %-24s round %d  template %s\n", marker, a.Id, a.Topic, rounds, a.TemplateId)
}
