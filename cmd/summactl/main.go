package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"summarizer-session-be/internal/bootstrap"
	"summarizer-session-be/internal/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "summactl",
		Short: "Operate interactive summarization sessions",
		Long: `summactl drives the session backend directly: it registers users, hands out
assignments, records feedback rounds and warms topic templates.

Configuration is read from the environment (and .env when present).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().Bool("memory", false, "Keep sessions in process memory instead of Postgres")
	rootCmd.PersistentFlags().Bool("quiet", true, "Silence SQL logging")

	rootCmd.AddCommand(
		newUserCmd(),
		newAssignmentCmd(),
		newTemplatesCmd(),
		newScoreCmd(),
		newEngineCmd(),
		newLogsCmd(),
	)

	return rootCmd
}

// openContainer builds the service container from the global flags. The caller
// must Close it.
func openContainer(cmd *cobra.Command) (*bootstrap.Container, error) {
	inMemory, _ := cmd.Flags().GetBool("memory")
	quiet, _ := cmd.Flags().GetBool("quiet")

	cfg := config.Load()
	if !inMemory && cfg.Database.Connection == "" {
		return nil, fmt.Errorf("DB_CONNECTION_STRING is not set (use --memory for a throwaway session)")
	}
	return bootstrap.NewContainer(cmd.Context(), cfg, bootstrap.Options{InMemory: inMemory, Quiet: quiet})
}

// withContainer runs fn against a fresh container.
func withContainer(fn func(ctx context.Context, c *bootstrap.Container, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := openContainer(cmd)
		if err != nil {
			return err
		}
		defer c.Close()
		return fn(cmd.Context(), c, cmd, args)
	}
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// printJSON writes v indented to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
