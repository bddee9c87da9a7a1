package config

import (
	"log/slog"
	"os"
	"time"
)

type Config struct {
	Port string
	Env  string

	// ChainID names the network the service signs for (VRSC mainnet,
	// VRSCTEST testnet). Wallets reject envelopes whose chain id does not
	// match the daemon they talk to.
	ChainID string

	RPCPrimaryURL  string
	RPCFallbackURL string
	RPCUser        string
	RPCPassword    string
	RPCTimeout     time.Duration

	// SigningIdentity is the service identity whose key, held by the daemon
	// wallet, signs outbound requests. Empty means login and creation flows
	// fail with a configuration error.
	SigningIdentity string

	// CallbackBaseURL is the externally reachable base URL wallets deliver
	// responses to.
	CallbackBaseURL string

	PendingTTL   time.Duration
	CompletedTTL time.Duration

	JWTSecret string
	JWTExpiry time.Duration
}

func Load() Config {
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		ChainID:         getEnv("CHAIN_ID", "VRSCTEST"),
		RPCPrimaryURL:   getEnv("RPC_PRIMARY_URL", "http://127.0.0.1:27486"),
		RPCFallbackURL:  getEnv("RPC_FALLBACK_URL", ""),
		RPCUser:         getEnv("RPC_USER", ""),
		RPCPassword:     getEnv("RPC_PASSWORD", ""),
		RPCTimeout:      getDuration("RPC_TIMEOUT", 30*time.Second),
		SigningIdentity: getEnv("SIGNING_IDENTITY", ""),
		CallbackBaseURL: getEnv("CALLBACK_BASE_URL", "http://localhost:8080"),
		PendingTTL:      getDuration("PENDING_TTL", 10*time.Minute),
		CompletedTTL:    getDuration("COMPLETED_TTL", 2*time.Minute),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		JWTExpiry:       getDuration("JWT_EXPIRY", 24*time.Hour),
	}

	if cfg.Env == "production" && cfg.JWTSecret == "dev-secret-change-in-production" {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}

	if cfg.SigningIdentity == "" {
		slog.Warn("SIGNING_IDENTITY not set — login and timestamp creation will fail until configured")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
