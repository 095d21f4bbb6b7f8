package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/BioHazard786/roomrelay/internal/config"
	"github.com/BioHazard786/roomrelay/internal/signaling"
	"github.com/BioHazard786/roomrelay/internal/ui"
	"github.com/BioHazard786/roomrelay/internal/version"
)

var (
	flagRelay     string
	flagSTUN      string
	flagTURN      string
	flagTURNUser  string
	flagTURNPass  string
	flagRelayOnly bool
	flagMsgpack   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "relayctl",
	Short: "Inspect and exercise a roomrelay signaling server",
	Long: `relayctl talks to a running roomrelay server. It lists live rooms, watches a
room's membership and host changes as they happen, and runs an end to end
WebRTC self test through the relay.

The relay address comes from --relay, then RELAY_URL, then ws://localhost:10000/ws.`,
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagRelay, "relay", "r", "", "relay websocket URL (env RELAY_URL)")
	rootCmd.PersistentFlags().StringVar(&flagSTUN, "stun", "", `STUN server URL, or "none" (env STUN_SERVER)`)
	rootCmd.PersistentFlags().StringVar(&flagTURN, "turn", "", "TURN server host, e.g. turn:turn.example.com (env TURN_SERVER)")
	rootCmd.PersistentFlags().StringVar(&flagTURNUser, "turn-user", "", "TURN username (env TURN_USERNAME)")
	rootCmd.PersistentFlags().StringVar(&flagTURNPass, "turn-pass", "", "TURN password (env TURN_PASSWORD)")
	rootCmd.PersistentFlags().BoolVar(&flagRelayOnly, "relay-only", false, "only use TURN relay candidates")
	rootCmd.PersistentFlags().BoolVar(&flagMsgpack, "msgpack", false, "speak MessagePack binary frames instead of JSON")

	rootCmd.AddCommand(roomsCmd, watchCmd, selftestCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

func loadConfig() (*config.Client, error) {
	return config.LoadClient(config.Options{
		RelayURL:   flagRelay,
		STUNServer: flagSTUN,
		TURNServer: flagTURN,
		TURNUser:   flagTURNUser,
		TURNPass:   flagTURNPass,
		RelayOnly:  flagRelayOnly,
	})
}

func codec() signaling.Codec {
	if flagMsgpack {
		return signaling.CodecMsgpack
	}
	return signaling.CodecJSON
}
