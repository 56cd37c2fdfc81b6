// Package config loads runtime configuration from a YAML file and the
// environment. Secrets (database URL, API key) come from environment
// variables only and never from the config file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyMaxRevisions      = "max_revisions"
	cfgKeyDefaultRowCap     = "default_row_cap"
	cfgKeyLargeTables       = "large_tables"
	cfgKeySchemaCacheTTL    = "schema_cache_ttl"
	cfgKeyExecutionTimeout  = "execution_timeout"
	cfgKeyGenerationTimeout = "generation_timeout"
	cfgKeyResponseCacheTTL  = "response_cache_ttl"
	cfgKeyModel             = "model"
	cfgKeyListenAddr        = "listen_addr"
	cfgKeyLogFile           = "log_file"

	envDatabaseURL = "DATABASE_URL"
	envAPIKey      = "ANTHROPIC_API_KEY"
)

// Config holds everything the pipeline and server need at startup.
type Config struct {
	MaxRevisions      int
	DefaultRowCap     int
	LargeTables       []string
	SchemaCacheTTL    time.Duration
	ExecutionTimeout  time.Duration
	GenerationTimeout time.Duration
	ResponseCacheTTL  time.Duration
	Model             string
	ListenAddr        string
	LogFile           string

	DatabaseURL string
	APIKey      string
}

// Load reads config.yaml from configDir when one exists and applies
// defaults otherwise. A missing config file is not an error.
func Load(configDir string) (*Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyMaxRevisions, 2)
	v.SetDefault(cfgKeyDefaultRowCap, 100)
	v.SetDefault(cfgKeyLargeTables, []string{"nota", "falta", "matricula", "financeiro"})
	v.SetDefault(cfgKeySchemaCacheTTL, "24h")
	v.SetDefault(cfgKeyExecutionTimeout, "15s")
	v.SetDefault(cfgKeyGenerationTimeout, "30s")
	v.SetDefault(cfgKeyResponseCacheTTL, "5m")
	v.SetDefault(cfgKeyModel, "claude-haiku-4-5-20251001")
	v.SetDefault(cfgKeyListenAddr, ":8080")
	v.SetDefault(cfgKeyLogFile, "portal-academico.log")

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		MaxRevisions:      v.GetInt(cfgKeyMaxRevisions),
		DefaultRowCap:     v.GetInt(cfgKeyDefaultRowCap),
		LargeTables:       v.GetStringSlice(cfgKeyLargeTables),
		SchemaCacheTTL:    v.GetDuration(cfgKeySchemaCacheTTL),
		ExecutionTimeout:  v.GetDuration(cfgKeyExecutionTimeout),
		GenerationTimeout: v.GetDuration(cfgKeyGenerationTimeout),
		ResponseCacheTTL:  v.GetDuration(cfgKeyResponseCacheTTL),
		Model:             v.GetString(cfgKeyModel),
		ListenAddr:        v.GetString(cfgKeyListenAddr),
		LogFile:           v.GetString(cfgKeyLogFile),
		DatabaseURL:       os.Getenv(envDatabaseURL),
		APIKey:            os.Getenv(envAPIKey),
	}
	return cfg, nil
}

// Validate checks the secrets that have no sane default.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%s environment variable is required", envDatabaseURL)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%s environment variable is required", envAPIKey)
	}
	return nil
}
