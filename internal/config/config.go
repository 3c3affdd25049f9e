package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var hexAddressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port      int    `envconfig:"SAZON_PORT" default:"8080"`
	LogLevel  string `envconfig:"SAZON_LOG_LEVEL" default:"info"`
	LogDir    string `envconfig:"SAZON_LOG_DIR" default:"./logs"`
	PublicURL string `envconfig:"SAZON_PUBLIC_URL" default:"http://localhost:8080"`

	PolygonRPCURL string `envconfig:"SAZON_POLYGON_RPC_URL" default:"https://polygon-rpc.com"`
	MainnetRPCURL string `envconfig:"SAZON_MAINNET_RPC_URL" default:"https://ethereum-rpc.publicnode.com"`
	ChainID       int64  `envconfig:"SAZON_CHAIN_ID" default:"137"`

	TokenAddress string `envconfig:"SAZON_TOKEN_ADDRESS" default:"0xf4EE4b895803b55F35802114Ce882231f26ac36D"`
	TokenSymbol  string `envconfig:"SAZON_TOKEN_SYMBOL" default:"SAZON"`

	PriceURL      string `envconfig:"SAZON_PRICE_URL" default:"https://app.uniswap.org/explore/tokens/polygon/0xf4ee4b895803b55f35802114ce882231f26ac36d"`
	ExplorerURL   string `envconfig:"SAZON_EXPLORER_URL" default:"https://polygonscan.com/token/0xf4ee4b895803b55f35802114ce882231f26ac36d"`
	BackgroundURL string `envconfig:"SAZON_BACKGROUND_URL" default:"https://amaranth-adequate-condor-278.mypinata.cloud/ipfs/QmVfEoPSGHFGByQoGxUUwPq2qzE4uKXT7CSKVaigPANmjZ"`
}

// Load reads configuration from .env file (if present) then from environment variables.
// Environment variables override .env values.
func Load() (*Config, error) {
	// godotenv does NOT override already-set env vars.
	envFiles := []string{".env"}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				slog.Warn("failed to load .env file", "file", f, "error", err)
			} else {
				slog.Info("loaded .env file", "file", f)
			}
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be 1-65535, got %d", ErrInvalidConfig, c.Port)
	}
	if c.ChainID <= 0 {
		return fmt.Errorf("%w: chain id must be positive, got %d", ErrInvalidConfig, c.ChainID)
	}
	if !hexAddressRegex.MatchString(c.TokenAddress) {
		return fmt.Errorf("%w: token address must be 0x + 40 hex characters, got %q", ErrInvalidConfig, c.TokenAddress)
	}
	if strings.TrimSpace(c.TokenSymbol) == "" {
		return fmt.Errorf("%w: token symbol must not be empty", ErrInvalidConfig)
	}

	urls := map[string]string{
		"SAZON_PUBLIC_URL":      c.PublicURL,
		"SAZON_POLYGON_RPC_URL": c.PolygonRPCURL,
		"SAZON_MAINNET_RPC_URL": c.MainnetRPCURL,
		"SAZON_PRICE_URL":       c.PriceURL,
		"SAZON_EXPLORER_URL":    c.ExplorerURL,
	}
	for name, u := range urls {
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, name)
		}
	}
	return nil
}

// NetworkName returns the display name for the configured chain.
func (c *Config) NetworkName() string {
	if name, ok := networkNames[c.ChainID]; ok {
		return name
	}
	return fmt.Sprintf("Chain %d", c.ChainID)
}
