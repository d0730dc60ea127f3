// ABOUTME: Entry point for the cropfit CLI
// ABOUTME: Executes the root command and exits non-zero on error

package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
