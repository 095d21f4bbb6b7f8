package main

import (
	"log/slog"

	"github.com/BioHazard786/roomrelay/cmd/relayctl/cmd"
	"github.com/BioHazard786/roomrelay/internal/logging"
)

func main() {
	// Quiet unless LOG_LEVEL asks otherwise; the UI owns the terminal.
	logging.Init(slog.LevelError)
	cmd.Execute()
}
