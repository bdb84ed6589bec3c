// Package main is the textintel CLI entry point.
package main

import (
	"fmt"
	"os"
)

// Set by the release build.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
