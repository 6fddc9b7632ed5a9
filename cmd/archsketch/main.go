// Package main provides the archsketch binary entry point.
package main

import (
	"os"

	"github.com/archsketch/archsketch/commands"
)

var version = "0.1.0"

func main() {
	if err := commands.NewRootCmd(version).Execute(); err != nil {
		os.Exit(1)
	}
}
