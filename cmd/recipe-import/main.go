// Package main is the entry point for the recipe-import CLI.
package main

import (
	"os"

	"github.com/Birgy1002/rezept-pwa/cmd/recipe-import/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
