// Package main is the entry point for the paint-quote CLI.
package main

import (
	"os"

	"paint-quote/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
