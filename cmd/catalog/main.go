//go:build !test

// Code coverage for main is ignored; the commands are tested in internal/cli.
package main

import (
	"os"

	"github.com/jbweber/homelab/catalog/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
