package main

import (
	"os"

	"github.com/spf13/cobra"

	"principal/internal/interfaces/cli/hash"
	"principal/internal/interfaces/cli/seed"
	"principal/internal/interfaces/cli/token"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "principal",
		Short: "Principal - identity management tooling",
		Long:  `Principal provides tooling around the identity value object: password hashing, identity provisioning, and principal token transport.`,
	}

	rootCmd.AddCommand(
		hash.NewCommand(),
		seed.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
