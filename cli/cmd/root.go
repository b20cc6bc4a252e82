package cmd

import (
	"github.com/spf13/cobra"
)

var relayURL string

var rootCmd = &cobra.Command{
	Use:   "relayctl",
	Short: "hookbridge relay CLI",
	Long: `relayctl is the operator CLI for the hookbridge webhook relay.

Check relay health, simulate the subscription validation handshake, and
send test events through the forwarding pipeline.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&relayURL, "relay-url", "http://localhost:8090", "base URL of the relay service")
}
