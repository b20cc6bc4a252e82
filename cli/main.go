package main

import (
	"os"

	"github.com/hookbridge/hookbridge/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
