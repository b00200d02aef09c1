package main

// Main entry point of the application
// Executes the Cobra root command (renders chart.png by default)
// Handles command execution errors

import (
	"fmt"
	"os"

	"sales-chart/cmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
