package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tair/empowhr-payroll/pkg/database"
)

// Config is the full service configuration.
type Config struct {
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	Environment    string `mapstructure:"environment"`
	LogLevel       string `mapstructure:"log_level"`

	HTTP      HTTPConfig      `mapstructure:"http"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type HTTPConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type GRPCConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
}

// DirectoryConfig points at the users table owned by the user service.
// An empty Host means the payroll database itself holds the users table.
type DirectoryConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Table    string `mapstructure:"table"`
	Enforce  bool   `mapstructure:"enforce"`
}

type GatewayConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	StripeSecretKey  string        `mapstructure:"stripe_secret_key"`
	Currency         string        `mapstructure:"currency"`
	ClientURL        string        `mapstructure:"client_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	BreakerFailures  int           `mapstructure:"breaker_failures"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
	ProductImageURL  string        `mapstructure:"product_image_url"`
	AllowedCountries []string      `mapstructure:"allowed_countries"`
	APIURL           string        `mapstructure:"api_url"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
}

type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// envBindings maps config keys onto the environment variable names the
// deployment already uses.
var envBindings = map[string]string{
	"service_name":              "OTEL_SERVICE_NAME",
	"service_version":           "SERVICE_VERSION",
	"environment":               "ENVIRONMENT",
	"log_level":                 "LOG_LEVEL",
	"http.port":                 "HTTP_PORT",
	"http.allowed_origins":      "CORS_ALLOWED_ORIGINS",
	"grpc.port":                 "GRPC_PORT",
	"database.driver":           "DB_DRIVER",
	"database.host":             "DB_HOST",
	"database.port":             "DB_PORT",
	"database.user":             "DB_USER",
	"database.password":         "DB_PASSWORD",
	"database.name":             "DB_NAME",
	"database.sslmode":          "DB_SSLMODE",
	"database.path":             "DB_PATH",
	"directory.host":            "USERS_DB_HOST",
	"directory.port":            "USERS_DB_PORT",
	"directory.user":            "USERS_DB_USER",
	"directory.password":        "USERS_DB_PASSWORD",
	"directory.name":            "USERS_DB_NAME",
	"directory.sslmode":         "USERS_DB_SSLMODE",
	"directory.table":           "USERS_TABLE",
	"directory.enforce":         "USERS_DIRECTORY_ENFORCE",
	"gateway.enabled":           "STRIPE_ENABLED",
	"gateway.stripe_secret_key": "STRIPE_SECRET_KEY",
	"gateway.currency":          "STRIPE_CURRENCY",
	"gateway.client_url":        "CLIENT_URL",
	"gateway.timeout":           "STRIPE_TIMEOUT",
	"gateway.breaker_failures":  "STRIPE_BREAKER_FAILURES",
	"gateway.breaker_cooldown":  "STRIPE_BREAKER_COOLDOWN",
	"gateway.api_url":           "STRIPE_API_URL",
	"kafka.brokers":             "KAFKA_BROKERS",
	"kafka.group_id":            "KAFKA_GROUP_ID",
	"redis.addr":                "REDIS_ADDR",
	"redis.password":            "REDIS_PASSWORD",
	"redis.db":                  "REDIS_DB",
	"redis.rate_limit":          "RATE_LIMIT_PER_WINDOW",
	"redis.rate_window":         "RATE_LIMIT_WINDOW",
	"auth.jwt_secret":           "JWT_SECRET",
	"auth.issuer":               "JWT_ISSUER",
	"tracing.enabled":           "TRACING_ENABLED",
	"tracing.jaeger_endpoint":   "JAEGER_ENDPOINT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "payroll-service")
	v.SetDefault("service_version", "1.0.0")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http.port", "8083")
	v.SetDefault("http.allowed_origins", []string{"*"})
	v.SetDefault("grpc.port", "9093")
	v.SetDefault("database.driver", database.DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "payrolldb")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("directory.port", "5432")
	v.SetDefault("directory.sslmode", "disable")
	v.SetDefault("directory.table", "users")
	v.SetDefault("directory.enforce", true)
	v.SetDefault("gateway.enabled", true)
	v.SetDefault("gateway.currency", "usd")
	v.SetDefault("gateway.client_url", "http://localhost:5173")
	v.SetDefault("gateway.timeout", 15*time.Second)
	v.SetDefault("gateway.breaker_failures", 5)
	v.SetDefault("gateway.breaker_cooldown", 30*time.Second)
	v.SetDefault("gateway.allowed_countries", []string{"US", "CA", "GB", "AU", "DE", "FR", "JP", "IN", "BD"})
	v.SetDefault("kafka.group_id", "payroll-reconciler")
	v.SetDefault("redis.rate_limit", 30)
	v.SetDefault("redis.rate_window", time.Minute)
	v.SetDefault("tracing.enabled", true)
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
}

// Load reads .env (when present), an optional YAML file and the environment,
// in increasing order of precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Comma-separated env values arrive as a single element.
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	cfg.HTTP.AllowedOrigins = splitList(cfg.HTTP.AllowedOrigins)
	cfg.Gateway.AllowedCountries = splitList(cfg.Gateway.AllowedCountries)

	return cfg, nil
}

// Validate reports configuration that would leave the service unusable.
func (c *Config) Validate() error {
	if c.Gateway.Enabled && c.Gateway.StripeSecretKey == "" {
		return errors.New("STRIPE_SECRET_KEY is required when the payment gateway is enabled")
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway timeout must be positive, got %s", c.Gateway.Timeout)
	}
	if c.Gateway.BreakerFailures <= 0 {
		return fmt.Errorf("gateway breaker failures must be positive, got %d", c.Gateway.BreakerFailures)
	}
	switch c.Database.Driver {
	case database.DriverPostgres, database.DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

// IsDevelopment reports whether console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// DatabaseConfig converts the payroll store settings for pkg/database.
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{
		Driver:   c.Database.Driver,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		User:     c.Database.User,
		Password: c.Database.Password,
		DBName:   c.Database.Name,
		SSLMode:  c.Database.SSLMode,
		Path:     c.Database.Path,
	}
}

// DirectoryDatabaseConfig converts the user directory settings. ok is false
// when the directory shares the payroll database.
func (c *Config) DirectoryDatabaseConfig() (cfg database.Config, ok bool) {
	if c.Directory.Host == "" {
		return database.Config{}, false
	}
	return database.Config{
		Driver:   database.DriverPostgres,
		Host:     c.Directory.Host,
		Port:     c.Directory.Port,
		User:     c.Directory.User,
		Password: c.Directory.Password,
		DBName:   c.Directory.Name,
		SSLMode:  c.Directory.SSLMode,
	}, true
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
