package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/shelfsync/internal/common"
)

func TestLoad(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()

	viper.Set("warehouse.api_url", "https://wh.example/api")
	viper.Set("warehouse.access_token", "token-1")
	viper.Set("warehouse.organization_id", "org-1")
	viper.Set("warehouse.counterparty_id", "agent-1")
	viper.Set("warehouse.store_id", "store-1")
	viper.Set("warehouse.main_store_id", "store-1")
	viper.Set("partner.base_url", "https://partner.example")
	viper.Set("llm.provider", "anthropic")
	viper.Set("llm.api_key", "sk-test")
	viper.Set("reconcile.workers", 8)
	viper.Set("cache.ttl", "48h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://wh.example/api", cfg.Warehouse.APIURL)
	assert.Equal(t, "token-1", cfg.Warehouse.AccessToken)
	assert.Equal(t, "org-1", cfg.Refs.OrganizationID)
	assert.Equal(t, "https://partner.example", cfg.Partner.BaseURL)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 8, cfg.Engine.Workers)
	assert.Equal(t, 48*time.Hour, cfg.CacheTTL)
	assert.NotEmpty(t, cfg.CachePath, "cache path must default when unset")

	require.NoError(t, cfg.ValidateReconcile())
	require.NoError(t, cfg.ValidateDemand())
}

func TestLoadDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider, "provider must default to openai")
	assert.NotEmpty(t, cfg.CachePath)
}

func TestValidateReconcile(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()

	viper.Set("warehouse.api_url", "https://wh.example/api")
	viper.Set("warehouse.access_token", "token-1")

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.ValidateReconcile()
	require.Error(t, err, "partner base URL is missing")
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestValidateDemand(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()

	viper.Set("warehouse.api_url", "https://wh.example/api")
	viper.Set("warehouse.access_token", "token-1")

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.ValidateDemand()
	require.Error(t, err, "demand refs are missing")
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}
