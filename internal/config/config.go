package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the ERP gateway.
type Config struct {
	HTTPAddr  string `mapstructure:"HTTP_ADDR"`
	PublicURL string `mapstructure:"PUBLIC_URL"`

	DBDriver string `mapstructure:"DB_DRIVER"` // sqlite|postgres
	DBDSN    string `mapstructure:"DB_DSN"`

	AuthSecret   string `mapstructure:"AUTH_SECRET"`
	TokenTTLHour int    `mapstructure:"TOKEN_TTL_HOURS"`

	BlobBasePath string `mapstructure:"BLOB_BASE_PATH"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	Push PushConfig `mapstructure:"PUSH"`
}

// PushConfig carries VAPID material for web-push delivery. Empty keys
// disable dispatch; notices are still persisted.
type PushConfig struct {
	VAPIDPublicKey  string `mapstructure:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `mapstructure:"VAPID_PRIVATE_KEY"`
	Subject         string `mapstructure:"SUBJECT"` // mailto: or https: contact
}

// Load reads config.yaml (if present) and ERP_-prefixed environment
// variables, with sane defaults for local development.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("PUBLIC_URL", "")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_DSN", "")
	viper.SetDefault("AUTH_SECRET", "dev-only-secret-change-me")
	viper.SetDefault("TOKEN_TTL_HOURS", 8)
	viper.SetDefault("BLOB_BASE_PATH", "./data")
	viper.SetDefault("CORS_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("PUSH.SUBJECT", "mailto:admin@brightprep.example")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("config.yaml not found, using environment variables and defaults")
		} else {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("ERP")
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
