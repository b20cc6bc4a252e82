package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/hookbridge/hookbridge/cli/internal/client"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show relay health and delivery stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := client.New(relayURL).Status()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
