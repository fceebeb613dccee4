package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/orrery/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show behavioral statistics",
	Long: `Stats summarizes the recorded history: how many outcomes have been
logged, your overall completion rate, and the hours of the day you
finish the most.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	fmt.Fprintln(cmd.OutOrStdout(), ui.Statistics(s.engine.GetStatistics()))
	return nil
}
