package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"EchoVerse/models"
	"EchoVerse/pkg/reminder"
)

func newRemindersCmd(sf *storeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "List, poll and acknowledge reminders",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print every reminder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sf.open()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer s.Close()
			items, err := reminder.NewScheduler(s).All(cmd.Context())
			if err != nil {
				return err
			}
			if items == nil {
				items = []models.Reminder{}
			}
			return writeJSON(cmd.OutOrStdout(), items)
		},
	}

	due := &cobra.Command{
		Use:   "due",
		Short: "Print undelivered reminders that are due now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sf.open()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer s.Close()
			items, err := reminder.NewScheduler(s).ListDue(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), items)
		},
	}

	ack := &cobra.Command{
		Use:   "ack <id>",
		Short: "Mark a reminder delivered, or snooze it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sf.open()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer s.Close()

			var snooze *int
			if cmd.Flags().Changed("snooze") {
				n, _ := cmd.Flags().GetInt("snooze")
				snooze = &n
			}
			if err := reminder.NewScheduler(s).Acknowledge(cmd.Context(), args[0], snooze); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	ack.Flags().Int("snooze", 0, "Reschedule this many minutes from now instead of marking delivered")

	cmd.AddCommand(list, due, ack)
	return cmd
}
