package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
[solana]
program_id = "PariMutue1Program1111111111111111111111111"
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.Solana.RPCEndpoint)
	assert.Equal(t, "confirmed", cfg.Solana.Commitment)
	assert.Equal(t, 5*time.Minute, cfg.Scanner.Interval.Duration)
	assert.Equal(t, "full", cfg.Mode)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PARISCAN_MODE", "serve")
	t.Setenv("PARISCAN_SCANNER_INTERVAL", "30s")
	t.Setenv("PARISCAN_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "serve", cfg.Mode)
	assert.Equal(t, 30*time.Second, cfg.Scanner.Interval.Duration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "turbo"
	cfg.Solana.Commitment = "instant"
	cfg.Scanner.Interval = duration{time.Second}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "commitment")
	assert.Contains(t, err.Error(), "interval")
	assert.Contains(t, err.Error(), "program_id")
}

func TestValidateTelegramHalfConfigured(t *testing.T) {
	cfg := Defaults()
	cfg.Solana.ProgramID = "prog"
	cfg.Notify.TelegramToken = "token-without-chat"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.Password = "hunter2"
	cfg.S3.SecretKey = "sekrit"
	cfg.Server.APIKey = ""

	red := RedactedConfig(&cfg)
	assert.Equal(t, "***", red.Postgres.Password)
	assert.Equal(t, "***", red.S3.SecretKey)
	assert.Empty(t, red.Server.APIKey)
	assert.Equal(t, "hunter2", cfg.Postgres.Password)
}
