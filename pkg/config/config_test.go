package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("app:\n  name: radar\nllm:\n  provider: claude\n  model: claude-sonnet-4-5\n"))
	require.NoError(t, err)

	assert.Equal(t, "radar", cfg.App.Name)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, 1000, cfg.LLM.MaxTokens)
	assert.Equal(t, []string{"tencent", "eastmoney"}, cfg.DataSources.Order)
	assert.Equal(t, 0.995, cfg.Analysis.Defaults.MA5Ratio)
	assert.Equal(t, "未知", cfg.Analysis.Defaults.SectorName)
	assert.Equal(t, time.Second, cfg.Analysis.BatchDelay)
}

func TestParse_MonitorDefaultsOverride(t *testing.T) {
	cfg, err := Parse([]byte("analysis:\n  batch_delay: 250ms\n  monitor_defaults:\n    minutes_since_open: 3\n"))
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Analysis.BatchDelay)
	assert.Equal(t, 3, cfg.Analysis.Defaults.MinutesSinceOpen)
	assert.Equal(t, 0.98, cfg.Analysis.Defaults.MA20Ratio)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("llm:\n  provider: nobody\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("data_sources:\n  order: [sina]\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("notify:\n  webhook_url: not-a-url\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("app: ["))
	assert.Error(t, err)
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "deepseek")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DATA_SOURCES", "eastmoney")

	cfg, err := Parse([]byte(""))
	require.NoError(t, err)

	assert.Equal(t, "deepseek", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.True(t, cfg.LLM.Configured())
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, []string{"eastmoney"}, cfg.DataSources.Order)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nats:\n  url: nats://127.0.0.1:4222\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.NATS.Enabled())
	assert.Equal(t, "patterns.triggered", cfg.NATS.Subject)

	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.API.Port)

	_, err = LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "radar", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=radar sslmode=disable TimeZone=Asia/Shanghai", c.DSN())
}
