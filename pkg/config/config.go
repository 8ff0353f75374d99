package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for one coinbuy invocation.
// Everything is environment-driven with sensible defaults; credentials
// themselves live in the credentials store, not here.
type Config struct {
	ServiceName string // "coinbuy"
	Env         string // "dev", "uat", "prod"
	LogLevel    string // "debug", "info", ...

	FundingCurrency string // currency paying for the buy, e.g. "USD"
	TargetAsset     string // asset being bought, e.g. "BTC"

	PollInterval    time.Duration // settlement poll interval
	MaxWait         time.Duration // total settlement wait bound; 0 = unbounded
	StrictPairMatch bool          // error instead of picking the first of several matching products

	APIBaseURL string // venue REST base URL; credential file api_uri wins if set
	FeedURL    string // venue websocket feed URL; empty disables the price preview

	CredentialsSource     string // "file" or "aws"
	CredentialsPath       string // file source: path to the credentials JSON
	CredentialsSecretName string // aws source: Secrets Manager secret name
	AWSRegion             string

	NATSURL    string // empty disables lifecycle event publishing
	RedisAddr  string // empty disables the snapshot store
	RedisDB    int
	RedisPass  string
	StatusPort int // 0 disables the local status/metrics server

	RequestsPerSecond int // venue rate limit
	Burst             int
}

// Load loads configuration from environment variables and a .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	return &Config{
		ServiceName:           GetEnv("SERVICE_NAME", "coinbuy"),
		Env:                   GetEnv("ENV", "dev"),
		LogLevel:              GetEnv("LOG_LEVEL", "info"),
		FundingCurrency:       GetEnv("FUNDING_CURRENCY", "USD"),
		TargetAsset:           GetEnv("TARGET_ASSET", "BTC"),
		PollInterval:          GetEnvDuration("POLL_INTERVAL", 2*time.Second),
		MaxWait:               GetEnvDuration("MAX_WAIT", 0),
		StrictPairMatch:       GetEnvBool("STRICT_PAIR_MATCH", false),
		APIBaseURL:            GetEnv("COINBASE_API_URL", "https://api.exchange.coinbase.com"),
		FeedURL:               GetEnv("COINBASE_FEED_URL", ""),
		CredentialsSource:     GetEnv("CREDENTIALS_SOURCE", "file"),
		CredentialsPath:       GetEnv("CREDENTIALS_PATH", defaultCredentialsPath()),
		CredentialsSecretName: GetEnv("CREDENTIALS_SECRET_NAME", "coinbuy/credentials"),
		AWSRegion:             GetEnv("AWS_REGION", "us-east-2"),
		NATSURL:               GetEnv("NATS_URL", ""),
		RedisAddr:             GetEnv("REDIS_ADDR", ""),
		RedisDB:               GetEnvInt("REDIS_DB", 0),
		RedisPass:             GetEnv("REDIS_PASS", ""),
		StatusPort:            GetEnvInt("STATUS_PORT", 0),
		RequestsPerSecond:     GetEnvInt("VENUE_RPS", 5),
		Burst:                 GetEnvInt("VENUE_BURST", 10),
	}
}

// defaultCredentialsPath resolves ~/.config/coinbuy/credentials.json,
// falling back to the working directory when no home is available.
func defaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "credentials.json"
	}
	return filepath.Join(home, ".config", "coinbuy", "credentials.json")
}
