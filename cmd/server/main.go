package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BioHazard786/roomrelay/internal/config"
	"github.com/BioHazard786/roomrelay/internal/logging"
	"github.com/BioHazard786/roomrelay/internal/server"
	"github.com/BioHazard786/roomrelay/internal/version"
)

// rootCmd runs the relay. It takes no flags; the port comes from PORT.
var rootCmd = &cobra.Command{
	Use:   "roomrelay",
	Short: "WebRTC signaling relay",
	Long: `roomrelay brokers WebRTC offers, answers and ICE candidates between peers
that share a room. It never carries media.

Environment:
  PORT                            listening port (default 10000)
  LOG_LEVEL                       debug, info, warn or error (default info)
  RELAY_MAX_MESSAGES_PER_SECOND   per-connection inbound limit, 0 disables (default 50)`,
	Version: version.Version,
	Args:    cobra.NoArgs,
	RunE:    runServer,
}

// runServer starts the relay and waits for SIGINT or SIGTERM.
func runServer(cmd *cobra.Command, args []string) error {
	logger := logging.Init(slog.LevelInfo)

	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting roomrelay",
		"version", version.Version,
		"port", cfg.Port,
		"max_messages_per_second", cfg.MaxMessagesPerSecond,
	)

	return server.New(cfg, logger).ListenAndServe(ctx)
}

func main() {
	// Do not print usage when error occurs
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
