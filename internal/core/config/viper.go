package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*ProjectionAPIConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultProjectionAPIConfig
	v.SetDefault("projection_api.host", "0.0.0.0")
	v.SetDefault("projection_api.port", 50051)
	v.SetDefault("projection_api.max_connections", 1000)
	v.SetDefault("projection_api.request_timeout", "30s")
	v.SetDefault("projection_api.max_mask_bytes", 256*1024)
	v.SetDefault("projection_api.data_dir", "./data")

	// Bind environment variables with MF_ prefix
	v.SetEnvPrefix("MF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check: reject secrets in config files
	// Secrets must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &ProjectionAPIConfig{
		Host:           v.GetString("projection_api.host"),
		Port:           v.GetInt("projection_api.port"),
		MaxConnections: v.GetInt("projection_api.max_connections"),
		RequestTimeout: v.GetDuration("projection_api.request_timeout"),
		MaxMaskBytes:   v.GetInt("projection_api.max_mask_bytes"),
		DataDir:        v.GetString("projection_api.data_dir"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range, positive values for connections, timeout, mask size.
func validateConfig(cfg *ProjectionAPIConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.MaxConnections <= 0 {
		return fmt.Errorf("max_connections must be positive, got %d", cfg.MaxConnections)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxMaskBytes <= 0 {
		return fmt.Errorf("max_mask_bytes must be positive, got %d", cfg.MaxMaskBytes)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("hmac_secret") || v.IsSet("projection_api.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use MF_HMAC_SECRET environment variable)")
	}
	return nil
}
