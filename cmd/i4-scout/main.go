// Package main is the entry point for i4-scout.
package main

import (
	"os"

	"github.com/aaearon/i4-scout/cmd/i4-scout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
