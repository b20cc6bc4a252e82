package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hookbridge/hookbridge/cli/internal/client"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a test event through the relay",
	Example: `  relayctl send --json '{"eventType":"Custom.Order.Placed","data":{"id":42}}'
  relayctl send --file batch.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonData, _ := cmd.Flags().GetString("json")
		file, _ := cmd.Flags().GetString("file")

		var payload []byte
		switch {
		case jsonData != "":
			payload = []byte(jsonData)
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read payload file: %w", err)
			}
			payload = data
		default:
			return fmt.Errorf("either --json or --file is required")
		}

		if !json.Valid(payload) {
			return fmt.Errorf("payload is not valid JSON; the relay would acknowledge and drop it")
		}

		outcome, err := client.New(relayURL).SendEvent(payload)
		if err != nil {
			return err
		}

		if outcome.OK {
			fmt.Printf("forwarded to %s: status %d after %d attempt(s)\n",
				outcome.Target, outcome.ForwardedStatus, outcome.Attempts)
			return nil
		}
		return fmt.Errorf("delivery failed (target=%s attempts=%d): %s",
			outcome.Target, outcome.Attempts, outcome.Error)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Simulate the subscription validation handshake",
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("code")

		outcome, err := client.New(relayURL).Validate(code)
		if err != nil {
			return err
		}

		if outcome.ValidationResponse != code {
			return fmt.Errorf("handshake echo mismatch: sent %q, got %q", code, outcome.ValidationResponse)
		}
		fmt.Printf("handshake ok: validationResponse=%q\n", outcome.ValidationResponse)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(validateCmd)

	sendCmd.Flags().String("json", "", "JSON event payload (object or array)")
	sendCmd.Flags().String("file", "", "file containing the JSON payload")

	validateCmd.Flags().String("code", "relayctl-test", "validation code to echo")
}
