// Package config loads application configuration from file and environment.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"principal/internal/shared/logger"
)

type Config struct {
	Logger logger.Config `mapstructure:"logger"`
	Redis  RedisConfig   `mapstructure:"redis"`
	Auth   AuthConfig    `mapstructure:"auth"`
	Seed   []SeedUser    `mapstructure:"seed_users" validate:"dive"`
}

type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db" validate:"min=0,max=15"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	TTLMinutes int    `mapstructure:"ttl_minutes" validate:"min=0"`
}

type AuthConfig struct {
	BcryptCost      int    `mapstructure:"bcrypt_cost" validate:"omitempty,min=4,max=31"`
	TokenSecret     string `mapstructure:"token_secret"`
	TokenExpMinutes int    `mapstructure:"token_exp_minutes" validate:"min=0"`
}

// SeedUser describes an identity provisioned at startup. Roles are bare
// names; the canonical role prefix is applied when the identity is built.
type SeedUser struct {
	Username string   `mapstructure:"username" validate:"required"`
	Password string   `mapstructure:"password" validate:"required"`
	Roles    []string `mapstructure:"roles"`
	Disabled bool     `mapstructure:"disabled"`
	Locked   bool     `mapstructure:"locked"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("PRINCIPAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// a missing file is fine, defaults and env vars still apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.key_prefix", "principal:identity:")
	viper.SetDefault("redis.ttl_minutes", 30)

	viper.SetDefault("auth.bcrypt_cost", 12)
	viper.SetDefault("auth.token_exp_minutes", 15)
}
