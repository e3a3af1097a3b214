// Package config loads the YAML service configuration and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names the environment variable that points at the config file.
const ConfigPathEnv = "STREAMTICKET_CONFIG"

// DefaultConfigPath is used when neither flag nor environment names a file.
const DefaultConfigPath = "config.yaml"

// AppConfig holds process-level options from the command line.
type AppConfig struct {
	ConfigPath string
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig names the database.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// JWTConfig configures user token signing.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// OTPConfig configures SMS login codes.
type OTPConfig struct {
	Secret string        `yaml:"secret"`
	Period time.Duration `yaml:"period"`
}

// RedisConfig configures the product cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	ProductTTL time.Duration `yaml:"product_ttl"`
}

// KafkaConfig configures the order event stream. No brokers disables publishing.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LogConfig configures logrus and the optional rotating file.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Config is the full service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	OTP      OTPConfig      `yaml:"otp"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Log      LogConfig      `yaml:"log"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{DSN: "data/streamticket.db"},
		JWT:      JWTConfig{Expiry: 7 * 24 * time.Hour},
		OTP:      OTPConfig{Period: 300 * time.Second},
		Redis:    RedisConfig{ProductTTL: 5 * time.Minute},
		Kafka:    KafkaConfig{Topic: "orders.events"},
		Log:      LogConfig{Level: "info", MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 30},
	}
}

// ResolveConfigPath picks the config file: explicit flag, then environment, then default.
func ResolveConfigPath(flagPath string) string {
	if p := strings.TrimSpace(flagPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnv)); p != "" {
		return p
	}
	return DefaultConfigPath
}

// ConfigExists reports whether path names a readable file.
func ConfigExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads path (a missing file is not an error), applies environment overrides and validates.
func Load(path string) (Config, error) {
	cfg := Default()
	data, errRead := os.ReadFile(path)
	switch {
	case errRead == nil:
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
		}
	case errors.Is(errRead, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
	}

	if errEnv := applyEnv(&cfg); errEnv != nil {
		return Config{}, errEnv
	}
	cfg.fillDefaults()
	return cfg, nil
}

// LoadDatabaseDSN returns only the database DSN from path.
func LoadDatabaseDSN(path string) (string, error) {
	cfg, err := Load(path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return "", errors.New("config: database.dsn is empty")
	}
	return cfg.Database.DSN, nil
}

// LoadJWTConfig returns the JWT section from path and requires a secret.
func LoadJWTConfig(path string) (JWTConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return JWTConfig{}, err
	}
	if cfg.JWT.Secret == "" {
		return JWTConfig{}, errors.New("config: jwt.secret is required")
	}
	return cfg.JWT, nil
}

// Validate checks settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database.dsn is empty")
	}
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret is required (set JWT_SECRET)")
	}
	return nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = def.HTTP.Addr
	}
	if c.HTTP.RequestTimeout <= 0 {
		c.HTTP.RequestTimeout = def.HTTP.RequestTimeout
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = def.HTTP.ShutdownTimeout
	}
	if c.JWT.Expiry <= 0 {
		c.JWT.Expiry = def.JWT.Expiry
	}
	if c.OTP.Period <= 0 {
		c.OTP.Period = def.OTP.Period
	}
	if c.OTP.Secret == "" {
		c.OTP.Secret = c.JWT.Secret
	}
	if c.Redis.ProductTTL <= 0 {
		c.Redis.ProductTTL = def.Redis.ProductTTL
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = def.Kafka.Topic
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// applyEnv lets deployment environments override the file.
func applyEnv(cfg *Config) error {
	if v, ok := lookup("HTTP_ADDR"); ok {
		cfg.HTTP.Addr = v
	}
	if v, ok := lookup("DATABASE_DSN"); ok {
		cfg.Database.DSN = v
	}
	if v, ok := lookup("JWT_SECRET"); ok {
		cfg.JWT.Secret = v
	}
	if v, ok := lookup("OTP_SECRET"); ok {
		cfg.OTP.Secret = v
	}
	if v, ok := lookup("REDIS_ADDR"); ok {
		cfg.Redis.Addr = v
	}
	if v, ok := lookup("REDIS_PASSWORD"); ok {
		cfg.Redis.Password = v
	}
	if v, ok := lookup("REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v, ok := lookup("KAFKA_TOPIC"); ok {
		cfg.Kafka.Topic = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup("LOG_FILE"); ok {
		cfg.Log.File = v
	}
	if v, ok := lookup("HTTP_REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: HTTP_REQUEST_TIMEOUT: %w", err)
		}
		cfg.HTTP.RequestTimeout = d
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
