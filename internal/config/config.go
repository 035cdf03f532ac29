package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Gateway     GatewayConfig
	Attestation AttestationConfig
	Paymaster   PaymasterConfig
	Chains      map[string]ChainConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// GatewayConfig holds payment gateway configuration
type GatewayConfig struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
	// TreasuryWalletRef is the managed wallet payroll disbursements are
	// sent from on the gasless path.
	TreasuryWalletRef string
	// RequestsPerSecond throttles outbound gateway calls; the provider
	// enforces roughly 35 rps.
	RequestsPerSecond float64
	Burst             int
}

// AttestationConfig holds attestation service configuration
type AttestationConfig struct {
	BaseURL      string
	PollInterval time.Duration
	MaxAttempts  int
}

// PaymasterConfig holds fee-abstraction configuration
type PaymasterConfig struct {
	DefaultPolicyID    string
	SlippagePercent    float64
	ReceiptInterval    time.Duration
	ReceiptMaxAttempts int
}

// ChainConfig holds per-chain addresses and RPC endpoint
type ChainConfig struct {
	RPCURL             string
	USDCAddress        string
	TokenMessenger     string
	MessageTransmitter string
	DomainID           uint32
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "payrollchain"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Gateway: GatewayConfig{
			BaseURL:           getEnv("GATEWAY_BASE_URL", "https://api.sandbox.payments.example.com"),
			APIKey:            getEnv("GATEWAY_API_KEY", ""),
			WebhookSecret:     getEnv("GATEWAY_WEBHOOK_SECRET", ""),
			TreasuryWalletRef: getEnv("GATEWAY_TREASURY_WALLET_REF", ""),
			RequestsPerSecond: getEnvAsFloat("GATEWAY_RPS", 30),
			Burst:             getEnvAsInt("GATEWAY_BURST", 5),
		},
		Attestation: AttestationConfig{
			BaseURL:      getEnv("ATTESTATION_BASE_URL", "https://iris-api-sandbox.circle.com"),
			PollInterval: getEnvAsDuration("ATTESTATION_POLL_INTERVAL", 30*time.Second),
			MaxAttempts:  getEnvAsInt("ATTESTATION_MAX_ATTEMPTS", 20),
		},
		Paymaster: PaymasterConfig{
			DefaultPolicyID:    getEnv("PAYMASTER_POLICY_ID", ""),
			SlippagePercent:    getEnvAsFloat("PAYMASTER_SLIPPAGE_PERCENT", 10),
			ReceiptInterval:    getEnvAsDuration("RECEIPT_POLL_INTERVAL", 5*time.Second),
			ReceiptMaxAttempts: getEnvAsInt("RECEIPT_MAX_ATTEMPTS", 24),
		},
		Chains: loadChains(),
	}
}

// SupportedChains returns the names of configured chains.
func (c *Config) SupportedChains() []string {
	names := make([]string, 0, len(c.Chains))
	for name := range c.Chains {
		names = append(names, name)
	}
	return names
}

func loadChains() map[string]ChainConfig {
	chains := map[string]ChainConfig{
		"ethereum": {
			RPCURL:             getEnv("ETHEREUM_RPC_URL", "https://ethereum-sepolia-rpc.publicnode.com"),
			USDCAddress:        getEnv("ETHEREUM_USDC_ADDRESS", "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238"),
			TokenMessenger:     getEnv("ETHEREUM_TOKEN_MESSENGER", "0x9f3B8679c73C2Fef8b59B4f3444d4e156fb70AA5"),
			MessageTransmitter: getEnv("ETHEREUM_MESSAGE_TRANSMITTER", "0x7865fAfC2db2093669d92c0F33AeEF291086BEFD"),
			DomainID:           0,
		},
		"base": {
			RPCURL:             getEnv("BASE_RPC_URL", "https://sepolia.base.org"),
			USDCAddress:        getEnv("BASE_USDC_ADDRESS", "0x036CbD53842c5426634e7929541eC2318f3dCF7e"),
			TokenMessenger:     getEnv("BASE_TOKEN_MESSENGER", "0x9f3B8679c73C2Fef8b59B4f3444d4e156fb70AA5"),
			MessageTransmitter: getEnv("BASE_MESSAGE_TRANSMITTER", "0x7865fAfC2db2093669d92c0F33AeEF291086BEFD"),
			DomainID:           6,
		},
		"arbitrum": {
			RPCURL:             getEnv("ARBITRUM_RPC_URL", "https://sepolia-rollup.arbitrum.io/rpc"),
			USDCAddress:        getEnv("ARBITRUM_USDC_ADDRESS", "0x75faf114eafb1BDbe2F0316DF893fd58CE46AA4d"),
			TokenMessenger:     getEnv("ARBITRUM_TOKEN_MESSENGER", "0x9f3B8679c73C2Fef8b59B4f3444d4e156fb70AA5"),
			MessageTransmitter: getEnv("ARBITRUM_MESSAGE_TRANSMITTER", "0xaCF1ceeF35caAc005e15888dDb8A3515C41B4872"),
			DomainID:           3,
		},
		"polygon": {
			RPCURL:             getEnv("POLYGON_RPC_URL", "https://rpc-amoy.polygon.technology"),
			USDCAddress:        getEnv("POLYGON_USDC_ADDRESS", "0x41E94Eb019C0762f9Bfcf9Fb1E58725BfB0e7582"),
			TokenMessenger:     getEnv("POLYGON_TOKEN_MESSENGER", "0x9f3B8679c73C2Fef8b59B4f3444d4e156fb70AA5"),
			MessageTransmitter: getEnv("POLYGON_MESSAGE_TRANSMITTER", "0x7865fAfC2db2093669d92c0F33AeEF291086BEFD"),
			DomainID:           7,
		},
	}

	// PAYROLL_CHAINS restricts the supported set, e.g. "ethereum,base".
	if filter := os.Getenv("PAYROLL_CHAINS"); filter != "" {
		allowed := map[string]bool{}
		for _, name := range strings.Split(filter, ",") {
			allowed[strings.TrimSpace(strings.ToLower(name))] = true
		}
		for name := range chains {
			if !allowed[name] {
				delete(chains, name)
			}
		}
	}

	return chains
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
