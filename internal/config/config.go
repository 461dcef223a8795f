// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/shelfsync/shelfsync/internal/common"
	"github.com/shelfsync/shelfsync/internal/engine"
	"github.com/shelfsync/shelfsync/internal/llm"
	"github.com/shelfsync/shelfsync/internal/partner"
	"github.com/shelfsync/shelfsync/internal/warehouse"
)

// Config aggregates every external dependency's settings.
type Config struct {
	Warehouse warehouse.Config
	Refs      warehouse.DemandRefs
	Partner   partner.Config
	LLM       llm.Config
	Engine    engine.Config
	CachePath string
	CacheTTL  time.Duration
	StoreID   string
}

// Load reads configuration with this precedence:
// 1. Viper configuration (config file or SHELFSYNC_ env vars)
// 2. Direct environment variables (WAREHOUSE_*, OPENAI_API_KEY, ...)
// 3. Defaults
func Load() (*Config, error) {
	cfg := &Config{
		Warehouse: warehouse.Config{
			APIURL:      viper.GetString("warehouse.api_url"),
			AccessToken: viper.GetString("warehouse.access_token"),
		},
		Refs: warehouse.DemandRefs{
			OrganizationID: viper.GetString("warehouse.organization_id"),
			CounterpartyID: viper.GetString("warehouse.counterparty_id"),
			StoreID:        viper.GetString("warehouse.store_id"),
		},
		Partner: partner.Config{
			BaseURL: viper.GetString("partner.base_url"),
			Timeout: viper.GetDuration("partner.timeout"),
		},
		LLM: llm.Config{
			Provider:    viper.GetString("llm.provider"),
			APIKey:      viper.GetString("llm.api_key"),
			BaseURL:     viper.GetString("llm.base_url"),
			Model:       viper.GetString("llm.model"),
			MaxRetries:  viper.GetInt("llm.max_retries"),
			RetryDelay:  viper.GetDuration("llm.retry_delay"),
			CacheTTL:    viper.GetDuration("llm.cache_ttl"),
			RateLimit:   viper.GetInt("llm.rate_limit"),
			Temperature: viper.GetFloat64("llm.temperature"),
			MaxTokens:   viper.GetInt("llm.max_tokens"),
		},
		Engine: engine.Config{
			Workers:     viper.GetInt("reconcile.workers"),
			Threshold:   viper.GetFloat64("reconcile.threshold"),
			CallTimeout: viper.GetDuration("reconcile.call_timeout"),
		},
		CachePath: ExpandPath(viper.GetString("cache.path")),
		CacheTTL:  viper.GetDuration("cache.ttl"),
		StoreID:   viper.GetString("warehouse.main_store_id"),
	}

	// Environment fallbacks for credentials kept out of config files
	if cfg.Warehouse.AccessToken == "" {
		cfg.Warehouse.AccessToken = os.Getenv("WAREHOUSE_ACCESS_TOKEN")
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = providerKeyFromEnv(cfg.LLM.Provider)
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.CachePath == "" {
		cfg.CachePath = ExpandPath("$HOME/.local/share/shelfsync/predictions.db")
	}

	return cfg, nil
}

// providerKeyFromEnv maps a provider name to its conventional API key
// variable.
func providerKeyFromEnv(provider string) string {
	switch provider {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

// ValidateReconcile checks the settings the reconcile workflow needs.
func (c *Config) ValidateReconcile() error {
	if err := c.Warehouse.Validate(); err != nil {
		return err
	}
	if err := c.Partner.Validate(); err != nil {
		return err
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("%w: LLM API key is required (llm.api_key or provider env var)", common.ErrMissingConfig)
	}
	return nil
}

// ValidateDemand checks the settings the demand workflow needs.
func (c *Config) ValidateDemand() error {
	if err := c.Warehouse.Validate(); err != nil {
		return err
	}
	return c.Refs.Validate()
}
