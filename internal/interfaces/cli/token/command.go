// Package token implements the principal token commands.
package token

import (
	"fmt"

	"github.com/spf13/cobra"

	"principal/internal/domain/identity"
	"principal/internal/infrastructure/auth"
	"principal/internal/infrastructure/config"
)

var (
	username string
	roles    []string
	secret   string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and inspect principal tokens",
	}

	cmd.PersistentFlags().StringVar(&secret, "secret", "", "signing secret (defaults to auth.token_secret from config)")

	cmd.AddCommand(newIssueCommand(), newParseCommand())

	return cmd
}

func newIssueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed principal token",
		RunE:  runIssue,
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "principal username")
	cmd.Flags().StringSliceVarP(&roles, "roles", "r", nil, "bare role names granted to the principal")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <token>",
		Short: "Verify a principal token and print the identity it carries",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
}

func tokenService() (*auth.TokenService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	signingSecret := secret
	if signingSecret == "" {
		signingSecret = cfg.Auth.TokenSecret
	}
	if signingSecret == "" {
		return nil, fmt.Errorf("no signing secret: set --secret or auth.token_secret")
	}

	return auth.NewTokenService(signingSecret, cfg.Auth.TokenExpMinutes), nil
}

func runIssue(cmd *cobra.Command, args []string) error {
	svc, err := tokenService()
	if err != nil {
		return err
	}

	id, err := identity.WithUsername(username).Roles(roles...).Build()
	if err != nil {
		return fmt.Errorf("failed to build identity: %w", err)
	}

	signed, err := svc.Issue(id)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), signed)
	return nil
}

func runParse(cmd *cobra.Command, args []string) error {
	svc, err := tokenService()
	if err != nil {
		return err
	}

	id, err := svc.Parse(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), id.String())
	return nil
}
