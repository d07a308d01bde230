package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	Logger LoggerConfig
	DB     DBConfig
	Node   NodeConfig
	Wallet WalletConfig

	// MetricsAddr enables the Prometheus scrape listener when non-empty.
	MetricsAddr string
}

type LoggerConfig struct {
	Level string
}

type DBConfig struct {
	Type     string
	Path     string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

// NodeConfig describes how to reach the co-located Lightning node.
type NodeConfig struct {
	BaseURL  string
	Password string

	ReconnectDelay   time.Duration
	FeePollInterval  time.Duration
	FeeRetryInterval time.Duration

	// FeeEstimateAmountSat is the probe amount used when asking the node
	// for a liquidity fee quote.
	FeeEstimateAmountSat int64
}

type WalletConfig struct {
	// MaxPendingPayments caps simultaneously in-flight outgoing payments.
	MaxPendingPayments int

	// InvoiceExpirySeconds is the expiry requested on created invoices.
	InvoiceExpirySeconds int64
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "nwcd"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		Logger: LoggerConfig{
			Level: getenv("LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Type:     getenv("DATABASE_TYPE", "sqlite"),
			Path:     getenv("DATABASE_PATH", "nwcd.db"),
			Host:     getenv("DATABASE_HOST", "localhost"),
			Port:     getenv("DATABASE_PORT", "5432"),
			Name:     getenv("DATABASE_NAME", "nwcd"),
			User:     getenv("DATABASE_USER", "postgres"),
			Password: getenv("DATABASE_PASSWORD", ""),
			SSLMode:  getenv("DATABASE_SSLMODE", "disable"),
		},
		Node: NodeConfig{
			BaseURL:              strings.TrimRight(getenv("NODE_URL", "http://127.0.0.1:9740"), "/"),
			Password:             strings.TrimSpace(getenv("NODE_PASSWORD", "")),
			ReconnectDelay:       getenvDuration("NODE_RECONNECT_DELAY", 3*time.Second),
			FeePollInterval:      getenvDuration("NODE_FEE_POLL_INTERVAL", 10*time.Minute),
			FeeRetryInterval:     getenvDuration("NODE_FEE_RETRY_INTERVAL", time.Minute),
			FeeEstimateAmountSat: getenvInt64("NODE_FEE_ESTIMATE_AMOUNT_SAT", 100_000),
		},
		Wallet: WalletConfig{
			MaxPendingPayments:   int(getenvInt64("WALLET_MAX_PENDING_PAYMENTS", 5)),
			InvoiceExpirySeconds: getenvInt64("WALLET_INVOICE_EXPIRY_SECONDS", 86_400),
		},
		MetricsAddr: getenv("METRICS_ADDR", ""),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
