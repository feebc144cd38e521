// Package main is the entry point for the wadesk CLI.
package main

import (
	"os"

	"github.com/wadesk/wadesk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
