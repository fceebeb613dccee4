package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/orrery/internal/task"
	"github.com/papapumpkin/orrery/internal/telemetry"
)

var (
	addEnergy   string
	addKind     string
	addMinutes  int
	addSubtasks int
	addDeadline string

	deferReason string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every task with its blockers",
	RunE:  runList,
}

var completeCmd = &cobra.Command{
	Use:   "complete <task>",
	Short: "Mark a task done",
	Long: `Complete records the outcome in your behavioral history, learns
personal context from the task (vendors, preferred times), removes the
task from the dependency graph, and reports anything that completing it
unblocked. The task reference can be an ID, an ID prefix, or a title
substring.`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

var deferCmd = &cobra.Command{
	Use:   "defer <task>",
	Short: "Defer a task, optionally with a reason",
	Args:  cobra.ExactArgs(1),
	RunE:  runDefer,
}

func init() {
	addCmd.Flags().StringVar(&addEnergy, "energy", "medium", "energy required: low, medium, or high")
	addCmd.Flags().StringVar(&addKind, "kind", "obligation", "task kind: obligation or aspirational")
	addCmd.Flags().IntVar(&addMinutes, "minutes", 0, "estimated minutes to complete")
	addCmd.Flags().IntVar(&addSubtasks, "subtasks", 0, "number of subtasks")
	addCmd.Flags().StringVar(&addDeadline, "deadline", "", "deadline (RFC 3339 or YYYY-MM-DD)")

	deferCmd.Flags().StringVar(&deferReason, "reason", "", "why the task is being deferred")

	rootCmd.AddCommand(addCmd, listCmd, completeCmd, deferCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	title := strings.Join(args, " ")
	f := task.Facts{
		ID:               task.NewID(),
		Title:            title,
		RawInput:         title,
		Energy:           task.EnergyLevel(addEnergy),
		Kind:             task.Kind(addKind),
		EstimatedMinutes: addMinutes,
		SubtaskCount:     addSubtasks,
		CreatedAt:        time.Now(),
	}
	if addDeadline != "" {
		d, err := parseDeadline(addDeadline)
		if err != nil {
			return err
		}
		f.Deadline = &d
	}

	s.tasks = append(s.tasks, f)
	if err := s.saveState(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", f.Title, shortID(f.ID))
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if len(s.tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no tasks")
		return nil
	}
	for _, t := range s.tasks {
		line := fmt.Sprintf("%s  %s", shortID(t.ID), t.Title)
		if blockers := s.graph.Blockers(t.ID); len(blockers) > 0 {
			var names []string
			for _, b := range blockers {
				names = append(names, s.titleFor(b))
			}
			line += fmt.Sprintf("  [blocked by %s]", strings.Join(names, ", "))
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

func runComplete(cmd *cobra.Command, args []string) error {
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

	elapsed := time.Since(f.CreatedAt)
	s.engine.RecordCompletion(ctx, f, &elapsed)

	freed := s.graph.CompleteTask(f.ID)
	s.remove(f.ID)
	if err := s.saveState(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "completed %s\n", f.Title)
	for _, id := range freed {
		s.telem.Record(telemetry.KindUnblocked, id.String(), nil)
		fmt.Fprintf(cmd.OutOrStdout(), "unblocked %s\n", s.titleFor(id))
	}
	return nil
}

func runDefer(cmd *cobra.Command, args []string) error {
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

	s.engine.RecordDefer(ctx, f, deferReason)
	f.DeferCount++
	s.update(f)
	if err := s.saveState(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deferred %s (%d deferrals)\n", f.Title, f.DeferCount)
	return nil
}

// titleFor renders a task ID as its title when known, falling back to
// the short ID for tasks no longer on the list.
func (s *session) titleFor(id task.ID) string {
	for _, t := range s.tasks {
		if t.ID == id {
			return t.Title
		}
	}
	return shortID(id)
}

func parseDeadline(raw string) (time.Time, error) {
	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return d, nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad deadline %q: use RFC 3339 or YYYY-MM-DD", raw)
	}
	// A date-only deadline means end of that day.
	return d.Add(24*time.Hour - time.Second), nil
}
