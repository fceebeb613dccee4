package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/orrery/internal/knowledge"
	"github.com/papapumpkin/orrery/internal/ui"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Show and edit learned personal context",
	Long: `Context lists what orrery has learned about you: vendors it has
seen in your completed tasks and the hours and weekdays you tend to
finish things. Entries you set by hand are pinned and never overwritten
by learning.`,
	RunE: runContextList,
}

var contextSetCmd = &cobra.Command{
	Use:   "set <category> <key> <value>",
	Short: "Pin a personal context entry",
	Args:  cobra.ExactArgs(3),
	RunE:  runContextSet,
}

var contextDeleteCmd = &cobra.Command{
	Use:   "delete <category> <key>",
	Short: "Forget a personal context entry",
	Args:  cobra.ExactArgs(2),
	RunE:  runContextDelete,
}

func init() {
	contextCmd.AddCommand(contextSetCmd, contextDeleteCmd)
	rootCmd.AddCommand(contextCmd)
}

func runContextList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	fmt.Fprintln(cmd.OutOrStdout(), ui.PersonalContext(s.engine.PersonalContext()))
	return nil
}

func runContextSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	s.engine.UpdatePersonalContext(knowledge.Entry{
		Category: args[0],
		Key:      args[1],
		Value:    args[2],
		LastSeen: time.Now(),
	})
	fmt.Fprintf(cmd.OutOrStdout(), "set %s/%s = %s\n", args[0], args[1], args[2])
	return nil
}

func runContextDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	s.engine.DeletePersonalContext(args[0], args[1])
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s/%s\n", args[0], args[1])
	return nil
}
