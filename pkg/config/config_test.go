package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear any env vars that would override defaults
	envVars := []string{
		"SERVICE_NAME", "ENV", "LOG_LEVEL",
		"FUNDING_CURRENCY", "TARGET_ASSET",
		"POLL_INTERVAL", "MAX_WAIT", "STRICT_PAIR_MATCH",
		"COINBASE_API_URL", "COINBASE_FEED_URL",
		"CREDENTIALS_SOURCE", "CREDENTIALS_PATH", "CREDENTIALS_SECRET_NAME",
		"NATS_URL", "REDIS_ADDR", "REDIS_DB", "STATUS_PORT",
		"VENUE_RPS", "VENUE_BURST",
	}
	for _, key := range envVars {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ServiceName != "coinbuy" {
		t.Errorf("expected ServiceName=coinbuy, got %s", cfg.ServiceName)
	}
	if cfg.Env != "dev" {
		t.Errorf("expected Env=dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel=info, got %s", cfg.LogLevel)
	}
	if cfg.FundingCurrency != "USD" {
		t.Errorf("expected FundingCurrency=USD, got %s", cfg.FundingCurrency)
	}
	if cfg.TargetAsset != "BTC" {
		t.Errorf("expected TargetAsset=BTC, got %s", cfg.TargetAsset)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("expected PollInterval=2s, got %v", cfg.PollInterval)
	}
	if cfg.MaxWait != 0 {
		t.Errorf("expected MaxWait=0, got %v", cfg.MaxWait)
	}
	if cfg.StrictPairMatch {
		t.Error("expected StrictPairMatch=false")
	}
	if cfg.APIBaseURL != "https://api.exchange.coinbase.com" {
		t.Errorf("expected default API base URL, got %s", cfg.APIBaseURL)
	}
	if cfg.FeedURL != "" {
		t.Errorf("expected empty FeedURL, got %s", cfg.FeedURL)
	}
	if cfg.CredentialsSource != "file" {
		t.Errorf("expected CredentialsSource=file, got %s", cfg.CredentialsSource)
	}
	if cfg.CredentialsPath == "" {
		t.Error("expected a non-empty default credentials path")
	}
	if cfg.NATSURL != "" {
		t.Errorf("expected empty NATSURL, got %s", cfg.NATSURL)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("expected empty RedisAddr, got %s", cfg.RedisAddr)
	}
	if cfg.StatusPort != 0 {
		t.Errorf("expected StatusPort=0, got %d", cfg.StatusPort)
	}
	if cfg.RequestsPerSecond != 5 {
		t.Errorf("expected RequestsPerSecond=5, got %d", cfg.RequestsPerSecond)
	}
	if cfg.Burst != 10 {
		t.Errorf("expected Burst=10, got %d", cfg.Burst)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "coinbuy-test")
	t.Setenv("ENV", "prod")
	t.Setenv("FUNDING_CURRENCY", "EUR")
	t.Setenv("TARGET_ASSET", "ETH")
	t.Setenv("POLL_INTERVAL", "500ms")
	t.Setenv("MAX_WAIT", "10m")
	t.Setenv("STRICT_PAIR_MATCH", "true")
	t.Setenv("COINBASE_API_URL", "https://api-public.sandbox.exchange.coinbase.com")
	t.Setenv("CREDENTIALS_SOURCE", "aws")
	t.Setenv("NATS_URL", "nats://nats:4222")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("STATUS_PORT", "9104")
	t.Setenv("VENUE_RPS", "2")

	cfg := Load()

	if cfg.ServiceName != "coinbuy-test" {
		t.Errorf("expected ServiceName=coinbuy-test, got %s", cfg.ServiceName)
	}
	if cfg.Env != "prod" {
		t.Errorf("expected Env=prod, got %s", cfg.Env)
	}
	if cfg.FundingCurrency != "EUR" {
		t.Errorf("expected FundingCurrency=EUR, got %s", cfg.FundingCurrency)
	}
	if cfg.TargetAsset != "ETH" {
		t.Errorf("expected TargetAsset=ETH, got %s", cfg.TargetAsset)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("expected PollInterval=500ms, got %v", cfg.PollInterval)
	}
	if cfg.MaxWait != 10*time.Minute {
		t.Errorf("expected MaxWait=10m, got %v", cfg.MaxWait)
	}
	if !cfg.StrictPairMatch {
		t.Error("expected StrictPairMatch=true")
	}
	if cfg.APIBaseURL != "https://api-public.sandbox.exchange.coinbase.com" {
		t.Errorf("unexpected APIBaseURL %s", cfg.APIBaseURL)
	}
	if cfg.CredentialsSource != "aws" {
		t.Errorf("expected CredentialsSource=aws, got %s", cfg.CredentialsSource)
	}
	if cfg.NATSURL != "nats://nats:4222" {
		t.Errorf("unexpected NATSURL %s", cfg.NATSURL)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Errorf("unexpected RedisAddr %s", cfg.RedisAddr)
	}
	if cfg.StatusPort != 9104 {
		t.Errorf("expected StatusPort=9104, got %d", cfg.StatusPort)
	}
	if cfg.RequestsPerSecond != 2 {
		t.Errorf("expected RequestsPerSecond=2, got %d", cfg.RequestsPerSecond)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "not-a-duration")
	t.Setenv("REDIS_DB", "not-an-int")
	t.Setenv("STRICT_PAIR_MATCH", "not-a-bool")

	cfg := Load()

	if cfg.PollInterval != 2*time.Second {
		t.Errorf("expected fallback PollInterval=2s, got %v", cfg.PollInterval)
	}
	if cfg.RedisDB != 0 {
		t.Errorf("expected fallback RedisDB=0, got %d", cfg.RedisDB)
	}
	if cfg.StrictPairMatch {
		t.Error("expected fallback StrictPairMatch=false")
	}
}
