// Package config loads storefront configuration from an optional YAML file
// and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
)

const (
	GatewaySimulated = "simulated"
	GatewayApprove   = "approve"
	GatewayDecline   = "decline"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Cart     CartConfig     `yaml:"cart"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Payment  PaymentConfig  `yaml:"payment"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

type ServerConfig struct {
	HTTPPort           string        `yaml:"http_port"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type StorageConfig struct {
	Driver        string         `yaml:"driver"`
	SQLitePath    string         `yaml:"sqlite_path"`
	RedisAddr     string         `yaml:"redis_addr"`
	RedisPassword string         `yaml:"redis_password"`
	RedisDB       int            `yaml:"redis_db"`
	RedisPrefix   string         `yaml:"redis_prefix"`
	RedisTTL      time.Duration  `yaml:"redis_ttl"`
	MongoURI      string         `yaml:"mongo_uri"`
	MongoDatabase string         `yaml:"mongo_database"`
	Postgres      PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"db_name"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type PricingConfig struct {
	FlatShippingMinor     int64                   `yaml:"flat_shipping"`
	FreeShippingOverMinor int64                   `yaml:"free_shipping_over"`
	TaxRateBP             int64                   `yaml:"tax_rate_bp"`
	Promos                map[string]pricing.Rule `yaml:"promos"`
}

type CartConfig struct {
	PromoLatency time.Duration `yaml:"promo_latency"`
	// IdleTTL is how long an unused cart stays in memory; it must outlive checkout sessions.
	IdleTTL               time.Duration `yaml:"idle_ttl"`
	CleanupInterval       time.Duration `yaml:"cleanup_interval"`
	NotificationRetention time.Duration `yaml:"notification_retention"`
}

type CheckoutConfig struct {
	PaymentTimeout  time.Duration `yaml:"payment_timeout"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	Currency        string        `yaml:"currency"`
}

type PaymentConfig struct {
	Gateway     string                `yaml:"gateway"`
	Latency     time.Duration         `yaml:"latency"`
	SuccessRate float64               `yaml:"success_rate"`
	Breaker     circuitbreaker.Config `yaml:"breaker"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

func Default() Config {
	rules := pricing.DefaultRules()
	return Config{
		Server: ServerConfig{
			HTTPPort:           "8080",
			RequestTimeout:     30 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			MaxRequestBodySize: 1 << 20, // 1MB
		},
		Log: LogConfig{Level: "info"},
		Storage: StorageConfig{
			Driver:        storage.DriverSQLite,
			SQLitePath:    "storefront.db",
			RedisAddr:     "localhost:6379",
			RedisPrefix:   "storefront",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "storefront",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "postgres",
				Password: "postgres",
				DBName:   "storefront",
			},
		},
		Catalog: CatalogConfig{Path: "catalog.db"},
		Pricing: PricingConfig{
			FlatShippingMinor:     rules.FlatShippingMinor,
			FreeShippingOverMinor: rules.FreeShippingOverMinor,
			TaxRateBP:             rules.TaxRateBP,
			Promos:                rules.Promos,
		},
		Cart: CartConfig{
			PromoLatency:          time.Second,
			IdleTTL:               time.Hour,
			CleanupInterval:       time.Minute,
			NotificationRetention: time.Hour,
		},
		Checkout: CheckoutConfig{
			PaymentTimeout:  10 * time.Second,
			SessionTTL:      30 * time.Minute,
			CleanupInterval: time.Minute,
			Currency:        "KES",
		},
		Payment: PaymentConfig{
			Gateway:     GatewaySimulated,
			Latency:     2 * time.Second,
			SuccessRate: 0.8,
			Breaker:     circuitbreaker.DefaultConfig("payment-gateway"),
		},
		Kafka: KafkaConfig{Topic: "orders.placed"},
	}
}

// Load starts from Default, overlays the YAML file at path (when path is not empty),
// then environment variables, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config %q: %w", path, err)
		}
		// a promo table in the file replaces the default catalog instead of merging into it
		cfg.Pricing.Promos = nil
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
		if cfg.Pricing.Promos == nil {
			cfg.Pricing.Promos = pricing.DefaultPromos()
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error

	c.Server.HTTPPort = getEnv("HTTP_PORT", c.Server.HTTPPort)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.SQLitePath = getEnv("SQLITE_PATH", c.Storage.SQLitePath)
	c.Storage.RedisAddr = getEnv("REDIS_ADDR", c.Storage.RedisAddr)
	c.Storage.RedisPassword = getEnv("REDIS_PASSWORD", c.Storage.RedisPassword)
	c.Storage.MongoURI = getEnv("MONGO_URI", c.Storage.MongoURI)
	c.Storage.MongoDatabase = getEnv("MONGO_DB_NAME", c.Storage.MongoDatabase)
	c.Storage.Postgres.Host = getEnv("DB_HOST", c.Storage.Postgres.Host)
	c.Storage.Postgres.User = getEnv("DB_USER", c.Storage.Postgres.User)
	c.Storage.Postgres.Password = getEnv("DB_PASSWORD", c.Storage.Postgres.Password)
	c.Storage.Postgres.DBName = getEnv("DB_NAME", c.Storage.Postgres.DBName)
	if port, err := getEnvInt("DB_PORT", c.Storage.Postgres.Port); err != nil {
		errs = append(errs, err)
	} else {
		c.Storage.Postgres.Port = port
	}

	c.Catalog.Path = getEnv("CATALOG_DB_PATH", c.Catalog.Path)

	c.Payment.Gateway = getEnv("PAYMENT_GATEWAY", c.Payment.Gateway)
	if d, err := getEnvDuration("PAYMENT_LATENCY", c.Payment.Latency); err != nil {
		errs = append(errs, err)
	} else {
		c.Payment.Latency = d
	}
	if rate, err := getEnvFloat("PAYMENT_SUCCESS_RATE", c.Payment.SuccessRate); err != nil {
		errs = append(errs, err)
	} else {
		c.Payment.SuccessRate = rate
	}
	if d, err := getEnvDuration("PAYMENT_TIMEOUT", c.Checkout.PaymentTimeout); err != nil {
		errs = append(errs, err)
	} else {
		c.Checkout.PaymentTimeout = d
	}
	if d, err := getEnvDuration("PROMO_LATENCY", c.Cart.PromoLatency); err != nil {
		errs = append(errs, err)
	} else {
		c.Cart.PromoLatency = d
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		c.Kafka.Brokers = splitList(brokers)
	}
	c.Kafka.Topic = getEnv("KAFKA_TOPIC", c.Kafka.Topic)

	return errors.Join(errs...)
}

// Validate rejects configurations the storefront cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case storage.DriverMemory, storage.DriverSQLite, storage.DriverRedis, storage.DriverMongo, storage.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}
	switch c.Payment.Gateway {
	case GatewaySimulated, GatewayApprove, GatewayDecline:
	default:
		errs = append(errs, fmt.Errorf("payment.gateway: unknown gateway %q", c.Payment.Gateway))
	}
	if c.Payment.SuccessRate < 0 || c.Payment.SuccessRate > 1 {
		errs = append(errs, fmt.Errorf("payment.success_rate: %v is outside [0, 1]", c.Payment.SuccessRate))
	}
	if c.Checkout.PaymentTimeout <= 0 {
		errs = append(errs, errors.New("checkout.payment_timeout must be positive"))
	}
	if c.Cart.IdleTTL > 0 && c.Cart.IdleTTL < c.Checkout.SessionTTL {
		errs = append(errs, fmt.Errorf("cart.idle_ttl: %s is shorter than checkout.session_ttl %s", c.Cart.IdleTTL, c.Checkout.SessionTTL))
	}
	if c.Pricing.TaxRateBP < 0 || c.Pricing.FlatShippingMinor < 0 || c.Pricing.FreeShippingOverMinor < 0 {
		errs = append(errs, errors.New("pricing: amounts and rates must not be negative"))
	}
	for code, rule := range c.Pricing.Promos {
		if code != pricing.NormalizeCode(code) {
			errs = append(errs, fmt.Errorf("pricing.promos: code %q must be lower case", code))
		}
		if rule.Kind != pricing.RulePercent && rule.Kind != pricing.RuleFlat {
			errs = append(errs, fmt.Errorf("pricing.promos.%s: unknown kind %q", code, rule.Kind))
		}
		if rule.Value < 0 || (rule.Kind == pricing.RulePercent && rule.Value > 10000) {
			errs = append(errs, fmt.Errorf("pricing.promos.%s: value %d out of range", code, rule.Value))
		}
	}
	if c.Server.HTTPPort == "" {
		errs = append(errs, errors.New("server.http_port is required"))
	}
	return errors.Join(errs...)
}

func (c *Config) PricingRules() pricing.Rules {
	return pricing.Rules{
		FlatShippingMinor:     c.Pricing.FlatShippingMinor,
		FreeShippingOverMinor: c.Pricing.FreeShippingOverMinor,
		TaxRateBP:             c.Pricing.TaxRateBP,
		Promos:                c.Pricing.Promos,
	}
}

func (c *Config) StorageOptions() storage.Options {
	s := c.Storage
	return storage.Options{
		Driver:        s.Driver,
		SQLitePath:    s.SQLitePath,
		RedisAddr:     s.RedisAddr,
		RedisPassword: s.RedisPassword,
		RedisDB:       s.RedisDB,
		RedisPrefix:   s.RedisPrefix,
		RedisTTL:      s.RedisTTL,
		MongoURI:      s.MongoURI,
		MongoDatabase: s.MongoDatabase,
		Postgres: storage.Credentials{
			Host:     s.Postgres.Host,
			Port:     s.Postgres.Port,
			User:     s.Postgres.User,
			Password: s.Postgres.Password,
			DBName:   s.Postgres.DBName,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
