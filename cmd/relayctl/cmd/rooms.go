package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/BioHazard786/roomrelay/internal/relayclient"
	"github.com/BioHazard786/roomrelay/internal/ui"
)

var flagOutput string

var roomsCmd = &cobra.Command{
	Use:     "rooms",
	Aliases: []string{"ls"},
	Short:   "List live rooms with their host and members",
	Long: `List every live room on the relay.

Examples:
  relayctl rooms
  relayctl rooms --output csv
  relayctl rooms -r wss://relay.example.com/ws -o markdown`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		rooms, err := relayclient.FetchRooms(ctx, cfg.Endpoint("/rooms"))
		if err != nil {
			return err
		}
		return ui.RenderRooms(os.Stdout, rooms, flagOutput)
	},
}

func init() {
	roomsCmd.Flags().StringVarP(&flagOutput, "output", "o", ui.FormatTable, "output format: table, csv or markdown")
}
