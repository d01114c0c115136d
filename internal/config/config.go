package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Storage     StorageConfig     `yaml:"storage"`
	Redis       RedisConfig       `yaml:"redis"`
	Services    ServicesConfig    `yaml:"services"`
	Auth        AuthConfig        `yaml:"auth"`
	Codes       CodesConfig       `yaml:"codes"`
	Cache       CacheConfig       `yaml:"cache"`
	Clicks      ClicksConfig      `yaml:"clicks"`
	ClickWorker ClickWorkerConfig `yaml:"click_worker"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
}

type DatabaseConfig struct {
	PrimaryDSN      string        `yaml:"primary_dsn"`
	ReplicaDSNs     []string      `yaml:"replica_dsns"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
}

// StorageConfig selects the links backend. Driver is "postgres", "sqlite" or
// "memory"; a libsql:// or wss:// SQLiteDSN is served by the libSQL driver.
type StorageConfig struct {
	Driver    string `yaml:"driver"`
	SQLiteDSN string `yaml:"sqlite_dsn"`
}

type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	StreamName string `yaml:"stream_name"`
}

type ServicesConfig struct {
	LinkServiceAddr     string `yaml:"link_service_addr"`
	LinkServicePort     string `yaml:"link_service_port"`
	APIGatewayPort      string `yaml:"api_gateway_port"`
	RedirectServicePort string `yaml:"redirect_service_port"`
	BaseURL             string `yaml:"base_url"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type CodesConfig struct {
	Length      int `yaml:"length"`
	MaxAttempts int `yaml:"max_attempts"`
}

type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	L1Capacity int           `yaml:"l1_capacity"`
	L1TTL      time.Duration `yaml:"l1_ttl"`
	L2TTL      time.Duration `yaml:"l2_ttl"`
}

// ClicksConfig drives the redirect-side click accountant. Mode is "direct"
// (gRPC IncrementClicks) or "stream" (Redis stream consumed by click-worker).
type ClicksConfig struct {
	Mode      string        `yaml:"mode"`
	Workers   int           `yaml:"workers"`
	QueueSize int           `yaml:"queue_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

type ClickWorkerConfig struct {
	ConsumerGroup string        `yaml:"consumer_group"`
	ConsumerName  string        `yaml:"consumer_name"`
	BatchSize     int           `yaml:"batch_size"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	BlockTime     time.Duration `yaml:"block_time"`
}

type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			MaxConns:        25,
			MinConns:        5,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
		Storage: StorageConfig{
			Driver:    "postgres",
			SQLiteDSN: "file:shortlinks.db?_pragma=busy_timeout(5000)",
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			StreamName: "clicks:stream",
		},
		Services: ServicesConfig{
			LinkServiceAddr:     "localhost:50051",
			LinkServicePort:     "50051",
			APIGatewayPort:      "8080",
			RedirectServicePort: "8081",
			BaseURL:             "http://localhost:8081",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Codes: CodesConfig{
			Length:      8,
			MaxAttempts: 10,
		},
		Cache: CacheConfig{
			Enabled:    true,
			L1Capacity: 10000,
			L1TTL:      2 * time.Second,
			L2TTL:      10 * time.Minute,
		},
		Clicks: ClicksConfig{
			Mode:      "direct",
			Workers:   4,
			QueueSize: 1024,
			Timeout:   2 * time.Second,
		},
		ClickWorker: ClickWorkerConfig{
			ConsumerGroup: "clicks-group",
			ConsumerName:  "worker-1",
			BatchSize:     100,
			PollInterval:  time.Second,
			BlockTime:     5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 100,
			Window:   time.Minute,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and finally environment variables, which always win.
func Load() (*Config, error) {
	// Load .env if it exists (local dev), ignore if not (K8s uses ConfigMaps/Secrets)
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Database.PrimaryDSN = getEnv("DB_PRIMARY_DSN", c.Database.PrimaryDSN)
	replicas := c.Database.ReplicaDSNs
	for _, key := range []string{"DB_REPLICA1_DSN", "DB_REPLICA2_DSN", "DB_REPLICA3_DSN"} {
		if dsn := os.Getenv(key); dsn != "" {
			replicas = append(replicas, dsn)
		}
	}
	c.Database.ReplicaDSNs = nonEmpty(replicas)
	c.Database.MaxConns = int32(getEnvAsInt("DB_MAX_CONNS", int(c.Database.MaxConns)))
	c.Database.MinConns = int32(getEnvAsInt("DB_MIN_CONNS", int(c.Database.MinConns)))
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Database.MaxConnIdleTime)

	c.Storage.Driver = strings.ToLower(getEnv("STORAGE_DRIVER", c.Storage.Driver))
	c.Storage.SQLiteDSN = getEnv("SQLITE_DSN", c.Storage.SQLiteDSN)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)
	c.Redis.StreamName = getEnv("REDIS_STREAM_NAME", c.Redis.StreamName)

	c.Services.LinkServiceAddr = getEnv("LINK_SERVICE_ADDR", c.Services.LinkServiceAddr)
	c.Services.LinkServicePort = getEnv("LINK_SERVICE_PORT", c.Services.LinkServicePort)
	c.Services.APIGatewayPort = getEnv("API_GATEWAY_PORT", c.Services.APIGatewayPort)
	c.Services.RedirectServicePort = getEnv("REDIRECT_SERVICE_PORT", c.Services.RedirectServicePort)
	c.Services.BaseURL = strings.TrimRight(getEnv("BASE_URL", c.Services.BaseURL), "/")

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = getEnvAsDuration("JWT_TOKEN_TTL", c.Auth.TokenTTL)

	c.Codes.Length = getEnvAsInt("CODE_LENGTH", c.Codes.Length)
	c.Codes.MaxAttempts = getEnvAsInt("CODE_MAX_ATTEMPTS", c.Codes.MaxAttempts)

	c.Cache.Enabled = getEnvAsBool("CACHE_ENABLED", c.Cache.Enabled)
	c.Cache.L1Capacity = getEnvAsInt("CACHE_L1_CAPACITY", c.Cache.L1Capacity)
	c.Cache.L1TTL = getEnvAsDuration("CACHE_L1_TTL", c.Cache.L1TTL)
	c.Cache.L2TTL = getEnvAsDuration("CACHE_L2_TTL", c.Cache.L2TTL)

	c.Clicks.Mode = strings.ToLower(getEnv("CLICKS_MODE", c.Clicks.Mode))
	c.Clicks.Workers = getEnvAsInt("CLICKS_WORKERS", c.Clicks.Workers)
	c.Clicks.QueueSize = getEnvAsInt("CLICKS_QUEUE_SIZE", c.Clicks.QueueSize)
	c.Clicks.Timeout = getEnvAsDuration("CLICKS_TIMEOUT", c.Clicks.Timeout)

	c.ClickWorker.ConsumerGroup = getEnv("CLICK_WORKER_CONSUMER_GROUP", c.ClickWorker.ConsumerGroup)
	c.ClickWorker.ConsumerName = getEnv("CLICK_WORKER_CONSUMER_NAME", c.ClickWorker.ConsumerName)
	c.ClickWorker.BatchSize = getEnvAsInt("CLICK_WORKER_BATCH_SIZE", c.ClickWorker.BatchSize)
	c.ClickWorker.PollInterval = getEnvAsDuration("CLICK_WORKER_POLL_INTERVAL", c.ClickWorker.PollInterval)
	c.ClickWorker.BlockTime = getEnvAsDuration("CLICK_WORKER_BLOCK_TIME", c.ClickWorker.BlockTime)

	c.RateLimit.Enabled = getEnvAsBool("RATE_LIMIT_ENABLED", c.RateLimit.Enabled)
	c.RateLimit.Requests = getEnvAsInt("RATE_LIMIT_REQUESTS", c.RateLimit.Requests)
	c.RateLimit.Window = getEnvAsDuration("RATE_LIMIT_WINDOW", c.RateLimit.Window)
}

// Validate rejects values no process can run with. Secrets and DSNs are
// checked by the processes that need them.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: want postgres, sqlite or memory", c.Storage.Driver)
	}
	switch c.Clicks.Mode {
	case "direct", "stream":
	default:
		return fmt.Errorf("invalid CLICKS_MODE %q: want direct or stream", c.Clicks.Mode)
	}
	if c.Codes.Length < 3 || c.Codes.Length > 20 {
		return fmt.Errorf("invalid CODE_LENGTH %d: must be between 3 and 20", c.Codes.Length)
	}
	if c.Codes.MaxAttempts < 1 {
		return fmt.Errorf("invalid CODE_MAX_ATTEMPTS %d: must be positive", c.Codes.MaxAttempts)
	}
	if c.Clicks.Workers < 1 || c.Clicks.QueueSize < 1 {
		return fmt.Errorf("click accountant needs at least one worker and a non-empty queue")
	}
	return nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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
