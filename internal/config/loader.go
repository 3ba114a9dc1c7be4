package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PARISCAN_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PARISCAN_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Solana ──
	setStr(&cfg.Solana.RPCEndpoint, "PARISCAN_SOLANA_RPC_ENDPOINT")
	setStr(&cfg.Solana.ProgramID, "PARISCAN_SOLANA_PROGRAM_ID")
	setStr(&cfg.Solana.Commitment, "PARISCAN_SOLANA_COMMITMENT")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "PARISCAN_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "PARISCAN_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "PARISCAN_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "PARISCAN_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "PARISCAN_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "PARISCAN_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "PARISCAN_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "PARISCAN_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "PARISCAN_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "PARISCAN_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "PARISCAN_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "PARISCAN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PARISCAN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PARISCAN_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PARISCAN_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PARISCAN_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "PARISCAN_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "PARISCAN_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "PARISCAN_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PARISCAN_S3_REGION")
	setStr(&cfg.S3.Bucket, "PARISCAN_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "PARISCAN_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PARISCAN_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PARISCAN_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PARISCAN_S3_FORCE_PATH_STYLE")

	// ── Scanner ──
	setDuration(&cfg.Scanner.Interval, "PARISCAN_SCANNER_INTERVAL")
	setInt(&cfg.Scanner.DecodeShards, "PARISCAN_SCANNER_DECODE_SHARDS")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "PARISCAN_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "PARISCAN_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "PARISCAN_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "PARISCAN_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "PARISCAN_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "PARISCAN_SERVER_RATE_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "PARISCAN_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "PARISCAN_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "PARISCAN_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "PARISCAN_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "PARISCAN_MODE")
	setStr(&cfg.LogLevel, "PARISCAN_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
