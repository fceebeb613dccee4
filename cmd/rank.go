package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/orrery/internal/ui"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank actionable tasks for right now",
	Long: `Rank scores every actionable task by how likely you are to actually
finish it at this moment, given your predicted energy, your history
with this kind of task, deadlines, and how often you've deferred it.
Tasks blocked by unfinished dependencies are left out entirely.`,
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	uc := s.engine.CurrentContext(ctx)
	fmt.Fprintln(cmd.OutOrStdout(), ui.Context(uc))

	ranked := s.engine.RankTasks(ctx, s.tasks)
	fmt.Fprintln(cmd.OutOrStdout(), ui.RankedList(ranked))
	return nil
}
