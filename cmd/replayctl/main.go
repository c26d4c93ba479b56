package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"flight-event-mock-service/internal/cli"
	"flight-event-mock-service/internal/infrastructure/config"
	"flight-event-mock-service/internal/infrastructure/container"
	"flight-event-mock-service/pkg/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "replayctl",
	Short: "Operate flight event playback from the command line",
}

func main() {
	cli.SetupCLI(rootCmd, loadServices)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadServices(ctx context.Context) (*cli.Services, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	app, err := container.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &cli.Services{
		Events:   app.Events,
		Sessions: app.Sessions,
		Close: func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			app.Close(closeCtx)
			_ = log.Sync()
		},
	}, nil
}
