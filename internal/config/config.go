package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Cart snapshot backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr     string `env:"PET_SHOP_ADDR,default=:8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	JWTSecret   string `env:"JWT_SECRET"`

	AllowResetProducts bool `env:"ALLOW_RESET_PRODUCTS,default=false"`

	Cart        CartConfig
	Delivery    DeliveryConfig
	Recommender RecommenderConfig
}

// CartConfig selects where cart snapshots live.
type CartConfig struct {
	Store string `env:"CART_STORE,default=memory"`
}

// DeliveryConfig carries per-box capacity and the shipping fee charged per box.
type DeliveryConfig struct {
	MaxWeightKg    float64 `env:"BOX_MAX_WEIGHT_KG,default=10"`
	MaxVolumeCm3   float64 `env:"BOX_MAX_VOLUME_CM3,default=40000"`
	ShippingPerBox float64 `env:"SHIPPING_PER_BOX,default=50"`
}

// RecommenderConfig configures the optional remote recommendation service.
type RecommenderConfig struct {
	URL         string        `env:"RECOMMENDER_URL"`
	Timeout     time.Duration `env:"RECOMMENDER_TIMEOUT,default=800ms"`
	RPS         float64       `env:"RECOMMENDER_RPS,default=5"`
	BasketsFile string        `env:"BASKETS_FILE"`
}

// Load reads configuration from environment variables, loading a .env file first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	c.Cart.Store = strings.ToLower(strings.TrimSpace(c.Cart.Store))
	switch c.Cart.Store {
	case "":
		c.Cart.Store = StoreMemory
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("CART_STORE=postgres requires DATABASE_URL")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("CART_STORE=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown CART_STORE %q", c.Cart.Store)
	}
	if c.Delivery.MaxWeightKg < 0 || c.Delivery.MaxVolumeCm3 < 0 {
		return errors.New("box capacity must not be negative")
	}
	if c.Delivery.ShippingPerBox < 0 {
		return errors.New("SHIPPING_PER_BOX must not be negative")
	}
	if c.Recommender.RPS < 0 {
		return errors.New("RECOMMENDER_RPS must not be negative")
	}
	return nil
}
