package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/BioHazard786/roomrelay/internal/relayclient"
	"github.com/BioHazard786/roomrelay/internal/signaling"
	"github.com/BioHazard786/roomrelay/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <room>",
	Short: "Join a room and follow its members and host live",
	Long: `Join a room as a silent member and show membership and host changes as the
relay reports them. The watcher counts as a member while it runs, so it can
become host when earlier members leave.

Examples:
  relayctl watch lobby`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		room := args[0]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		stopSpinner := ui.RunConnectionSpinner("Connecting to relay...")
		client := relayclient.NewClient(cfg.RelayURL, relayclient.Options{
			Codec:  codec(),
			Logger: slog.Default(),
		})
		err = client.Connect(cmd.Context())
		stopSpinner()
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.Join(room); err != nil {
			return err
		}

		roomsURL := cfg.Endpoint("/rooms")
		model := ui.NewWatchModel(room, client.Incoming(), func(ctx context.Context) ([]signaling.RoomInfo, error) {
			return relayclient.FetchRooms(ctx, roomsURL)
		})
		if err := ui.RunWatch(model); err != nil {
			return err
		}
		if model.Disconnected() {
			ui.PrintWarning("Relay closed the connection")
		}
		return nil
	},
}
