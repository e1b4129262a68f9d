// Package main provides the entry point for the policyqa CLI.
package main

import (
	"os"

	"github.com/policyqa/policyqa/cmd/policyqa/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
