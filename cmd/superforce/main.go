package main

import (
	"os"

	"github.com/moyan/superforce/backend/cmd/superforce/commands"
)

// main is the entry point for the superforce CLI:
// go run ./cmd/superforce [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
