package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the process-level settings, read from the environment with an
// optional .env file
type Config struct {
	Port              string `mapstructure:"PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int    `mapstructure:"REDIS_DB"`
	ProvidersFile     string `mapstructure:"PROVIDERS_FILE"`
	WorkerConcurrency int    `mapstructure:"WORKER_CONCURRENCY"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so bind the ones
	// without defaults explicitly
	for _, key := range []string{"DATABASE_URL", "REDIS_PASSWORD"} {
		if err := viper.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PROVIDERS_FILE", "providers.yaml")
	viper.SetDefault("WORKER_CONCURRENCY", 4)

	// The .env file is optional; the environment alone is enough
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return &config, nil
}
