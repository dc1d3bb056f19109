package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

// @title Inventario API
// @version 1.0
// @description Inventory products with optional image and video attachments.
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := &cli.Command{
		Name:   "inventario",
		Usage:  "inventory list server",
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server (default)",
				Action: serveAction,
			},
			{
				Name:   "migrate",
				Usage:  "apply the database schema and exit",
				Action: migrateAction,
			},
		},
	}

	err := cmd.Run(ctx, os.Args)
	stop()
	if err != nil {
		slog.Error("command_failed", "error", err)
		os.Exit(1)
	}
}
