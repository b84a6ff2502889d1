// Package main is the entry point for the ytmanifest command line tool.
package main

import (
	"os"

	"github.com/therealutkarshpriyadarshi/ytmanifest/cmd/ytmanifest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
