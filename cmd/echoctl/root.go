package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"EchoVerse/pkg/config"
	"EchoVerse/pkg/store"
)

type storeFlags struct {
	backend string
	dsn     string
	dataDir string
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	sf := &storeFlags{}

	root := &cobra.Command{
		Use:          "echoctl",
		Short:        "Operate on the assistant's history, reminders and uploads",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&sf.backend, "backend", cfg.StoreBackend, "Store backend: file, sqlite or mysql")
	root.PersistentFlags().StringVar(&sf.dsn, "dsn", cfg.StoreDSN, "DSN for the sqlite or mysql backend")
	root.PersistentFlags().StringVar(&sf.dataDir, "data-dir", cfg.DataDir, "Directory of the file backend")

	root.AddCommand(newRemindersCmd(sf), newHistoryCmd(sf), newResetCmd(sf))
	return root
}

func (sf *storeFlags) open() (store.Store, error) {
	return store.Open(sf.backend, sf.dsn, sf.dataDir)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
