// Package seed implements identity provisioning from configuration.
package seed

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"principal/internal/domain/identity"
	"principal/internal/infrastructure/auth"
	"principal/internal/infrastructure/cache"
	"principal/internal/infrastructure/config"
	"principal/internal/infrastructure/store"
	"principal/internal/shared/logger"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Provision identities from configuration",
		Long:  `Build the identities declared under seed_users, encoding their passwords with bcrypt, and push them to the configured principal cache.`,
		RunE:  run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger().Named("seed")

	if len(cfg.Seed) == 0 {
		log.Warn("no seed_users configured, nothing to do")
		return nil
	}

	encoder := auth.NewBcryptEncoder(cfg.Auth.BcryptCost)
	identities, err := buildIdentities(cfg.Seed, encoder)
	if err != nil {
		return err
	}

	manager := store.NewMemoryManager()
	ctx := cmd.Context()
	for _, id := range identities {
		if err := manager.CreateIdentity(ctx, id); err != nil {
			return fmt.Errorf("failed to register %s: %w", id.Username(), err)
		}
		log.Info("provisioned identity",
			"username", id.Username(),
			"authorities", id.AuthorityStrings(),
			"enabled", id.Enabled())
	}

	if cfg.Redis.Addr == "" {
		log.Info("no redis configured, skipping principal cache push", "count", len(identities))
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	principals := cache.NewPrincipalStoreWithConfig(client, log,
		cfg.Redis.KeyPrefix, time.Duration(cfg.Redis.TTLMinutes)*time.Minute)

	for _, id := range identities {
		if err := principals.Store(ctx, id); err != nil {
			return fmt.Errorf("failed to cache %s: %w", id.Username(), err)
		}
	}

	log.Info("pushed identities to principal cache", "count", len(identities), "addr", cfg.Redis.Addr)
	return nil
}

// buildIdentities turns seed entries into immutable identities, encoding each
// password exactly once at build time.
func buildIdentities(seed []config.SeedUser, encoder *auth.BcryptEncoder) ([]*identity.Identity, error) {
	identities := make([]*identity.Identity, 0, len(seed))
	for _, user := range seed {
		id, err := identity.WithUsername(user.Username).
			Password(user.Password).
			PasswordEncoder(encoder.Func()).
			Roles(user.Roles...).
			Disabled(user.Disabled).
			AccountLocked(user.Locked).
			Build()
		if err != nil {
			return nil, fmt.Errorf("invalid seed user %q: %w", user.Username, err)
		}
		identities = append(identities, id)
	}
	return identities, nil
}
