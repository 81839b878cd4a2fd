package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cacamba_bot/internal/app"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cacamba-bot",
		Short:         "WhatsApp auto-responder for dumpster rental budgets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.SetupEnvironment()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().Msg("Starting chatbot")
			if err := app.Run(ctx, app.LoadConfig()); err != nil {
				log.Error().Err(err).Msg("Chatbot stopped with error")
				return err
			}
			return nil
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "rows",
		Short: "Load the price sheet once and print its rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return app.PrintRows(ctx, app.LoadConfig(), cmd.OutOrStdout())
		},
	})

	return root
}
