package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"EchoVerse/models"
)

func newHistoryCmd(sf *storeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Chat history operations",
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Write the chat history as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sf.open()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer s.Close()
			hist, err := s.LoadHistory(cmd.Context())
			if err != nil {
				return err
			}
			if hist == nil {
				hist = []models.Message{}
			}

			path, _ := cmd.Flags().GetString("out")
			if path == "" {
				return writeJSON(cmd.OutOrStdout(), hist)
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := writeJSON(f, hist); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	export.Flags().StringP("out", "o", "", "Output file (default stdout)")

	cmd.AddCommand(export)
	return cmd
}

func newResetCmd(sf *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Wipe history, reminders and uploaded content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sf.open()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer s.Close()
			if err := s.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✨ all data cleared")
			return nil
		},
	}
}
