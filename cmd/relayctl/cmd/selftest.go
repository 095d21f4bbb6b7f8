package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/BioHazard786/roomrelay/internal/selftest"
	"github.com/BioHazard786/roomrelay/internal/ui"
)

var (
	flagRoom     string
	flagTimeout  time.Duration
	flagLoopback bool
)

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Connect two WebRTC peers through the relay and ping over a data channel",
	Long: `Run two local WebRTC peers through the relay. The first joins a fresh room and
becomes host, the second joins and is announced to it, and the pair trade
offer, answer and ICE candidates through the relay until a data channel opens.

Examples:
  relayctl selftest
  relayctl selftest --stun none --loopback
  relayctl selftest --room my-room --msgpack`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		stopSpinner := ui.RunConnectionSpinner("Running self test...")
		res, err := selftest.Run(cmd.Context(), selftest.Options{
			RelayURL:    cfg.RelayURL,
			RoomsURL:    cfg.Endpoint("/rooms"),
			STUNServers: cfg.GetSTUNServers(),
			TURNServers: cfg.GetTURNServers(),
			TURNUser:    cfg.TURNUser,
			TURNPass:    cfg.TURNPass,
			RelayOnly:   cfg.RelayOnly,
			Room:        flagRoom,
			Codec:       codec(),
			Loopback:    flagLoopback,
			Timeout:     flagTimeout,
			Logger:      slog.Default(),
		})
		stopSpinner()
		if err != nil {
			return err
		}

		ui.PrintSuccessf("Peers connected through %s", cfg.RelayURL)
		fmt.Println(ui.SelftestView(res))
		return nil
	},
}

func init() {
	selftestCmd.Flags().StringVar(&flagRoom, "room", "", "room to use (default: random words)")
	selftestCmd.Flags().DurationVar(&flagTimeout, "timeout", selftest.DefaultTimeout, "give up after this long")
	selftestCmd.Flags().BoolVar(&flagLoopback, "loopback", false, "allow 127.0.0.1 candidates")
}
