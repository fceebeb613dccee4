package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify <task>",
	Short: "Check whether now is a good moment to surface a task",
	Long: `Notify runs the interruption gate for one task: it declines when
your calendar says you're busy, when your productivity is low outside
working hours, when you've already logged a heavy day, or when the
task's completion odds are poor right now. Exits 0 when the task should
be surfaced, 1 otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	f, err := s.find(args[0])
	if err != nil {
		return err
	}

	if !s.engine.ShouldNotify(ctx, f) {
		fmt.Fprintf(cmd.OutOrStdout(), "hold %s\n", f.Title)
		cmd.SilenceUsage = true
		return fmt.Errorf("not a good moment")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "surface %s\n", f.Title)
	return nil
}
