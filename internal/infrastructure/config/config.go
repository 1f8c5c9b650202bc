package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string                 `mapstructure:"environment"`
	LogLevel    string                 `mapstructure:"log_level"`
	Server      ServerConfig           `mapstructure:"server"`
	Database    DatabaseConfig         `mapstructure:"database"`
	Redis       RedisConfig            `mapstructure:"redis"`
	Chains      map[string]ChainConfig `mapstructure:"chains"`
	Attestation AttestationConfig      `mapstructure:"attestation"`
	Bridge      BridgeConfig           `mapstructure:"bridge"`
	Pools       PoolsConfig            `mapstructure:"pools"`
	Workers     WorkersConfig          `mapstructure:"workers"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Host            string   `mapstructure:"host"`
	ReadTimeout     int      `mapstructure:"read_timeout"`
	WriteTimeout    int      `mapstructure:"write_timeout"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimitPerMin int      `mapstructure:"rate_limit_per_min"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string `mapstructure:"migrations_path"`
}

type RedisConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	MaxRetries int    `mapstructure:"max_retries"`
	PoolSize   int    `mapstructure:"pool_size"`
}

// ChainConfig describes one supported chain: its RPC endpoint, CCTP
// domain, and well-known contract addresses.
type ChainConfig struct {
	Name               string        `mapstructure:"name"`
	ChainID            int64         `mapstructure:"chain_id"`
	Domain             uint32        `mapstructure:"domain"`
	RPC                string        `mapstructure:"rpc"`
	USDC               string        `mapstructure:"usdc"`
	TokenMessenger     string        `mapstructure:"token_messenger"`
	MessageTransmitter string        `mapstructure:"message_transmitter"`
	V2Factory          string        `mapstructure:"v2_factory"`
	V2Router           string        `mapstructure:"v2_router"`
	V3Factory          string        `mapstructure:"v3_factory"`
	V3PositionManager  string        `mapstructure:"v3_position_manager"`
	FastTransfer       bool          `mapstructure:"fast_transfer"`
	Tokens             []TokenConfig `mapstructure:"tokens"`
}

type TokenConfig struct {
	Address  string `mapstructure:"address"`
	Symbol   string `mapstructure:"symbol"`
	Name     string `mapstructure:"name"`
	Decimals int    `mapstructure:"decimals"`
}

// AttestationConfig configures the Iris attestation API client.
type AttestationConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Environment string `mapstructure:"environment"` // "sandbox" or "mainnet"
	Timeout     int    `mapstructure:"timeout"`     // seconds
}

// BridgeConfig configures the transfer state machine.
type BridgeConfig struct {
	// SignerKey is the hex-encoded private key driving transactions.
	SignerKey string `mapstructure:"signer_key"`
	// PollInterval is the delay between attestation polls, in seconds.
	PollInterval int `mapstructure:"poll_interval"`
	// MaxPollAttempts bounds the attestation poll loop.
	MaxPollAttempts int `mapstructure:"max_poll_attempts"`
	// PollTimeout bounds each individual poll request, in seconds.
	PollTimeout int `mapstructure:"poll_timeout"`
	// MaxFeeBps is the depositForBurn maxFee as a fraction of the amount,
	// in basis points.
	MaxFeeBps int64 `mapstructure:"max_fee_bps"`
	// GasHeadroomPercent is added on top of the node's gas estimate.
	GasHeadroomPercent int64 `mapstructure:"gas_headroom_percent"`
	// ChainSettleDelay is the wait before re-verifying the destination
	// chain ID, in milliseconds.
	ChainSettleDelay int `mapstructure:"chain_settle_delay_ms"`
	// ConfirmationTimeout bounds waiting for a tx receipt, in seconds.
	ConfirmationTimeout int `mapstructure:"confirmation_timeout"`
}

// PoolsConfig configures the pool browser cache.
type PoolsConfig struct {
	CacheTTL    int    `mapstructure:"cache_ttl"`    // seconds
	MaxV2Pools  int    `mapstructure:"max_v2_pools"` // enumeration cap per chain
	RefreshSpec string `mapstructure:"refresh_spec"` // cron expression
}

// WorkersConfig configures background workers.
type WorkersConfig struct {
	ResumeEnabled  bool `mapstructure:"resume_enabled"`
	ResumeInterval int  `mapstructure:"resume_interval"` // seconds
}

// PollIntervalDuration returns the poll interval as a duration.
func (b BridgeConfig) PollIntervalDuration() time.Duration {
	return time.Duration(b.PollInterval) * time.Second
}

// PollTimeoutDuration returns the per-poll timeout as a duration.
func (b BridgeConfig) PollTimeoutDuration() time.Duration {
	return time.Duration(b.PollTimeout) * time.Second
}

// Load reads configuration from configs/config.yaml with environment
// variable overrides.
func Load() (*Config, error) {
	// Load .env if present; ignore absence.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if len(c.Chains) == 0 {
		return fmt.Errorf("at least one chain must be configured")
	}
	seen := make(map[int64]string, len(c.Chains))
	for name, chain := range c.Chains {
		if chain.ChainID == 0 {
			return fmt.Errorf("chain %q: chain_id is required", name)
		}
		if chain.RPC == "" {
			return fmt.Errorf("chain %q: rpc is required", name)
		}
		if prev, dup := seen[chain.ChainID]; dup {
			return fmt.Errorf("chains %q and %q share chain_id %d", prev, name, chain.ChainID)
		}
		seen[chain.ChainID] = name
	}
	if c.Bridge.MaxPollAttempts <= 0 {
		return fmt.Errorf("bridge.max_poll_attempts must be positive")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.rate_limit_per_min", 100)
	viper.SetDefault("server.allowed_origins", []string{"*"})

	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 300)
	viper.SetDefault("database.migrations_path", "migrations")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)

	viper.SetDefault("attestation.environment", "sandbox")
	viper.SetDefault("attestation.timeout", 30)

	// 5s interval x 120 attempts = roughly ten minutes of polling.
	viper.SetDefault("bridge.poll_interval", 5)
	viper.SetDefault("bridge.max_poll_attempts", 120)
	viper.SetDefault("bridge.poll_timeout", 10)
	viper.SetDefault("bridge.max_fee_bps", 5)
	viper.SetDefault("bridge.gas_headroom_percent", 50)
	viper.SetDefault("bridge.chain_settle_delay_ms", 500)
	viper.SetDefault("bridge.confirmation_timeout", 180)

	viper.SetDefault("pools.cache_ttl", 600)
	viper.SetDefault("pools.max_v2_pools", 200)
	viper.SetDefault("pools.refresh_spec", "@every 10m")

	viper.SetDefault("workers.resume_enabled", true)
	viper.SetDefault("workers.resume_interval", 60)
}
