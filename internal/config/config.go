package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vijay-talsangi/tourist-app/types"
)

const (
	defaultAppName         = "tourpayd"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultCurrency        = "INR"
	defaultShutdownDelay   = 10 * time.Second
	defaultInclusionWait   = 2 * time.Minute
	defaultHistoryTTL      = 15 * time.Minute
	inclusionWaitEnvVar    = "INCLUSION_TIMEOUT"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	RPCUrl          string
	ChainID         int64
	ContractAddress string

	// WalletKey is an optional hex private key binding the server's wallet
	// session at boot. Meant for development deployments only.
	WalletKey string

	// RedisURL switches history snapshots from process memory to Redis
	// when set.
	RedisURL   string
	HistoryTTL time.Duration

	CurrencyCode     string
	InclusionTimeout time.Duration
	ShutdownPeriod   time.Duration
	EnableMetrics    bool
}

// Load reads configuration values from the environment.
func Load() (Config, error) {
	cfg := Config{
		AppName:          getEnv("APP_NAME", defaultAppName),
		AppEnv:           getEnv("APP_ENV", defaultAppEnv),
		Port:             getEnv("PORT", defaultPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		RPCUrl:           os.Getenv("RPC_URL"),
		ContractAddress:  os.Getenv("CONTRACT_ADDRESS"),
		WalletKey:        os.Getenv("WALLET_KEY"),
		RedisURL:         os.Getenv("REDIS_URL"),
		HistoryTTL:       defaultHistoryTTL,
		CurrencyCode:     getEnv("CURRENCY_CODE", defaultCurrency),
		InclusionTimeout: defaultInclusionWait,
		ShutdownPeriod:   defaultShutdownDelay,
		EnableMetrics:    os.Getenv("ENABLE_METRICS") == "true",
	}

	if v := os.Getenv("CHAIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CHAIN_ID: %w", err)
		}
		cfg.ChainID = id
	}

	if v := os.Getenv(inclusionWaitEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", inclusionWaitEnvVar, err)
		}
		cfg.InclusionTimeout = d
	}

	if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv("HISTORY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid HISTORY_TTL: %w", err)
		}
		cfg.HistoryTTL = d
	}

	if cfg.RPCUrl == "" {
		return Config{}, fmt.Errorf("RPC_URL must be set")
	}
	if cfg.ContractAddress == "" {
		return Config{}, fmt.Errorf("CONTRACT_ADDRESS must be set")
	}
	if cfg.ChainID <= 0 {
		return Config{}, fmt.Errorf("CHAIN_ID must be set to a positive integer")
	}

	return cfg, nil
}

// Address returns the listen address for the HTTP server.
func (c Config) Address() string {
	return ":" + c.Port
}

// Core maps the service configuration onto the payment core's Config.
func (c Config) Core() *types.Config {
	return &types.Config{
		RPCUrl:           c.RPCUrl,
		ChainID:          c.ChainID,
		ContractAddress:  c.ContractAddress,
		CurrencyCode:     c.CurrencyCode,
		InclusionTimeout: c.InclusionTimeout,
		LogLevel:         c.LogLevel,
		EnableMetrics:    c.EnableMetrics,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
