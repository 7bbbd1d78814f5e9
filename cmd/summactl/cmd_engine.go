package main

import (
	"context"

	"summarizer-session-be/internal/bootstrap"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newEngineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engine",
		Short: "Engine maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "prepare",
		Short: "Run the engine setup command unless it already ran",
		Args:  cobra.NoArgs,
		RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, cmd *cobra.Command, args []string) error {
			if err := c.Gateway.Prepare(ctx); err != nil {
				return err
			}
			color.Green("Engine ready")
			return nil
		}),
	})
	return cmd
}
