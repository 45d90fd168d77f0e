package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/humanbelnik/lootsplit/internal/app"
	"github.com/humanbelnik/lootsplit/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:          "lootsplit",
		Short:        "Room-scoped live sync for boss reward splits",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to env file (defaults to .env)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Go(cmd.Context(), config.Load(configPath))
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Migrate(cmd.Context(), config.Load(configPath))
		},
	}

	root.AddCommand(serve, migrate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
