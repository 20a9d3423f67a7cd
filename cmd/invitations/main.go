/*
Package main provides the CLI entry point for the invitation dispatcher.
*/
package main

import (
	"os"

	"fair-invitations/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
