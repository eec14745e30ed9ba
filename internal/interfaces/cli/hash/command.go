// Package hash implements the password hashing command.
package hash

import (
	"fmt"

	"github.com/spf13/cobra"

	"principal/internal/infrastructure/auth"
)

var cost int

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash <password>",
		Short: "Hash a password with bcrypt",
		Long:  `Hash a raw password with bcrypt, producing the stored credential form for an identity.`,
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}

	cmd.Flags().IntVarP(&cost, "cost", "c", 12, "bcrypt cost factor (4-31)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	encoder := auth.NewBcryptEncoder(cost)

	hashed, err := encoder.Hash(args[0])
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), hashed)
	return nil
}
