package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"summarizer-session-be/internal/bootstrap"
	"summarizer-session-be/internal/dto"
	"summarizer-session-be/internal/entity"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect and warm topic templates",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <topic>",
			Short: "List the stored templates of a topic",
			Args:  cobra.ExactArgs(1),
			RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, cmd *cobra.Command, args []string) error {
				templates, err := c.TemplateService.ListTemplates(ctx, entity.Topic(args[0]))
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return printJSON(templates)
				}
				if len(templates) == 0 {
					color.Yellow("No templates for %s yet", args[0])
					return nil
				}
				for _, t := range templates {
					fmt.Printf("%s  %-18s reused %-4d %s\n", t.Id, t.Variant, t.ReuseCount, t.SnapshotHandle)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "warm <topic>...",
			Short: "Cold start the templates of topics that have none",
			Args:  cobra.MinimumNArgs(1),
			RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, cmd *cobra.Command, args []string) error {
				failed := 0
				for _, topic := range args {
					start := time.Now()
					templates, err := c.TemplateService.GetOrCreateTemplates(ctx, entity.Topic(topic))
					if err != nil {
						color.Red("%s: %v", topic, err)
						failed++
						continue
					}
					color.Green("%s: %d template(s) ready in %s", topic, len(templates), time.Since(start).Round(time.Millisecond))
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d topics failed", failed, len(args))
				}
				return nil
			}),
		},
	)

	return cmd
}

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <topic> [text]",
		Short: "Compute ROUGE scores of a text against a topic's references",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, cmd *cobra.Command, args []string) error {
			text, err := scoreText(cmd, args)
			if err != nil {
				return err
			}
			score, err := c.AssignmentService.ScoreText(ctx, &dto.ScoreRequest{Topic: args[0], Text: text})
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(score)
			}
			fmt.Printf("R1 %.4f  R2 %.4f  R4 %.4f\n", score.R1, score.R2, score.R4)
			return nil
		}),
	}
	cmd.Flags().String("file", "", "Read the text from a file")
	return cmd
}

func scoreText(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case len(args) == 2:
		return args[1], nil
	}
	return "", fmt.Errorf("give the text as an argument or with --file")
}
