// Package main provides the travelog CLI, a thin operational surface over
// the storage backends: it wires configuration to whichever backend is
// selected and exposes status and maintenance commands.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
