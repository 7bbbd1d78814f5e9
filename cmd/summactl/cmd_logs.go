package main

import (
	"fmt"
	"strings"

	"summarizer-session-be/internal/config"
	"summarizer-session-be/internal/pkg/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent application or engine log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engineLogs, _ := cmd.Flags().GetBool("engine")
			level, _ := cmd.Flags().GetString("level")
			limit, _ := cmd.Flags().GetInt("limit")

			cfg := config.Load()
			path := cfg.App.LogFilePath
			if engineLogs {
				path = cfg.App.EngineLogPath
			}
			entries, err := logger.ReadEntries(path, strings.ToUpper(level), limit, 0)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(entries)
			}
			for _, e := range entries {
				line := fmt.Sprintf("%s %-5s [%s] %s", e.Timestamp, e.Level, e.Module, e.Message)
				switch e.Level {
				case "ERROR":
					color.Red("%s", line)
				case "WARN":
					color.Yellow("%s", line)
				default:
					fmt.Println(line)
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("engine", false, "Read the captured engine output instead")
	cmd.Flags().String("level", "", "Only entries of this level (debug, info, warn, error)")
	cmd.Flags().Int("limit", 50, "Maximum entries, newest first")
	return cmd
}
