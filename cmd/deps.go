package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Manage blocking dependencies between tasks",
}

var depsAddCmd = &cobra.Command{
	Use:   "add <blocker> <blocked>",
	Short: "Make one task block another",
	Long: `Deps add records that the first task must be completed before the
second becomes actionable. Edges that would create a cycle are
rejected and the graph is left untouched.`,
	Args: cobra.ExactArgs(2),
	RunE: runDepsAdd,
}

var depsRemoveCmd = &cobra.Command{
	Use:   "remove <blocker> <blocked>",
	Short: "Remove a blocking dependency",
	Args:  cobra.ExactArgs(2),
	RunE:  runDepsRemove,
}

var depsShowCmd = &cobra.Command{
	Use:   "show <task>",
	Short: "Show what blocks a task and what it blocks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDepsShow,
}

func init() {
	depsCmd.AddCommand(depsAddCmd, depsRemoveCmd, depsShowCmd)
	rootCmd.AddCommand(depsCmd)
}

func runDepsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	blocker, err := s.find(args[0])
	if err != nil {
		return err
	}
	blocked, err := s.find(args[1])
	if err != nil {
		return err
	}

	if err := s.graph.AddDependency(blocker.ID, blocked.ID); err != nil {
		return fmt.Errorf("%s -> %s: %w", blocker.Title, blocked.Title, err)
	}
	blocked.DependencyCount = s.graph.DependencyCount(blocked.ID)
	s.update(blocked)
	if err := s.saveState(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s now blocks %s\n", blocker.Title, blocked.Title)
	return nil
}

func runDepsRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	blocker, err := s.find(args[0])
	if err != nil {
		return err
	}
	blocked, err := s.find(args[1])
	if err != nil {
		return err
	}

	s.graph.RemoveDependency(blocker.ID, blocked.ID)
	blocked.DependencyCount = s.graph.DependencyCount(blocked.ID)
	s.update(blocked)
	if err := s.saveState(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s no longer blocks %s\n", blocker.Title, blocked.Title)
	return nil
}

func runDepsShow(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	blockers := s.graph.Blockers(f.ID)
	if len(blockers) == 0 {
		fmt.Fprintf(out, "%s is actionable\n", f.Title)
	} else {
		fmt.Fprintf(out, "%s is blocked by:\n", f.Title)
		for _, id := range blockers {
			fmt.Fprintf(out, "  %s\n", s.titleFor(id))
		}
	}
	if blocked := s.graph.Blocked(f.ID); len(blocked) > 0 {
		fmt.Fprintf(out, "%s blocks:\n", f.Title)
		for _, id := range blocked {
			fmt.Fprintf(out, "  %s\n", s.titleFor(id))
		}
	}
	return nil
}
