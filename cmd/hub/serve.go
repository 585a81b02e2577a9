package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/homehub/internal/cli"
	"github.com/Veraticus/homehub/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Start the HTTP API for reminders and expenses.

Every expense request first writes any ledger rows that recurring expenses
owe up to today, so the ledger is current without a background job.`,
		RunE: runServe,
	}

	cmd.Flags().String("bind", "", "address to listen on (overrides server.bind)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	bind := cfg.ServerBind
	if flag, _ := cmd.Flags().GetString("bind"); flag != "" {
		bind = flag
	}

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := interrupts.HandleInterrupts(cmd.Context(), "Server", "")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	rem, exp := newServices(store)
	return server.New(bind, rem, exp).Run(ctx)
}
