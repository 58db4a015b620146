// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Mongo     MongoConfig     `koanf:"mongo"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Mail      MailConfig      `koanf:"mail"`
	Billing   BillingConfig   `koanf:"billing"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	FrontendURL string `koanf:"frontend_url"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type MongoConfig struct {
	URL      string `koanf:"url"`
	Database string `koanf:"database"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	PrivateKeyPath     string        `koanf:"private_key_path"`
	PublicKeyPath      string        `koanf:"public_key_path"`
	AccessTokenExpire  time.Duration `koanf:"access_token_expire"`
	RefreshTokenExpire time.Duration `koanf:"refresh_token_expire"`
	Issuer             string        `koanf:"issuer"`
	Audience           string        `koanf:"audience"`
	AutoGenerateKeys   bool          `koanf:"auto_generate_keys"`
}

type RateLimitConfig struct {
	Requests      int `koanf:"requests"`
	Burst         int `koanf:"burst"`
	AuthRequests  int `koanf:"auth_requests"`
	AuthBurst     int `koanf:"auth_burst"`
	ResetRequests int `koanf:"reset_requests"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// MailConfig leaves SMTPHost empty to log outgoing mail instead of sending it.
type MailConfig struct {
	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     int    `koanf:"smtp_port"`
	SMTPUser     string `koanf:"smtp_user"`
	SMTPPassword string `koanf:"smtp_password"`
	From         string `koanf:"from"`
}

type BillingConfig struct {
	StripeSecretKey     string `koanf:"stripe_secret_key"`
	StripeWebhookSecret string `koanf:"stripe_webhook_secret"`
	PriceIDPro          string `koanf:"price_id_pro"`
	PriceIDEnterprise   string `koanf:"price_id_enterprise"`
}

// Enabled reports whether server-side processor credentials are present.
// Secret (sk_) and restricted (rk_) keys both qualify.
func (b BillingConfig) Enabled() bool {
	return strings.HasPrefix(b.StripeSecretKey, "sk_") ||
		strings.HasPrefix(b.StripeSecretKey, "rk_")
}

// Load builds a Config from defaults, an optional YAML file and the
// environment, in that order of precedence.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":         "Nexus",
		"app.version":      "1.0.0",
		"app.environment":  "development",
		"app.frontend_url": "http://localhost:5173",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.auto_migrate":       true,

		"mongo.database": "nexus",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"jwt.access_token_expire":  "15m",
		"jwt.refresh_token_expire": "168h",
		"jwt.issuer":               "nexus",
		"jwt.audience":             "nexus-api",
		"jwt.private_key_path":     "keys/private.pem",
		"jwt.public_key_path":      "keys/public.pem",
		"jwt.auto_generate_keys":   false,

		"rate_limit.requests":       100,
		"rate_limit.burst":          20,
		"rate_limit.auth_requests":  20,
		"rate_limit.auth_burst":     5,
		"rate_limit.reset_requests": 3,

		"cors.allowed_origins": []string{"http://localhost:5173"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "nexus-api",

		"mail.smtp_port": 587,
		"mail.from":      "Nexus <noreply@nexus.local>",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"DATABASE_AUTO_MIGRATE":       "database.auto_migrate",
	"MONGO_URL":                   "mongo.url",
	"MONGO_DATABASE":              "mongo.database",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"FRONTEND_URL":                "app.frontend_url",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_PRIVATE_KEY_PATH":        "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":         "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_REFRESH_TOKEN_EXPIRE":    "jwt.refresh_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"JWT_AUDIENCE":                "jwt.audience",
	"JWT_AUTO_GENERATE_KEYS":      "jwt.auto_generate_keys",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"RATE_LIMIT_AUTH_REQUESTS":    "rate_limit.auth_requests",
	"RATE_LIMIT_AUTH_BURST":       "rate_limit.auth_burst",
	"RATE_LIMIT_RESET_REQUESTS":   "rate_limit.reset_requests",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"SMTP_HOST":                   "mail.smtp_host",
	"SMTP_PORT":                   "mail.smtp_port",
	"SMTP_USER":                   "mail.smtp_user",
	"SMTP_PASSWORD":               "mail.smtp_password",
	"MAIL_FROM":                   "mail.from",
	"STRIPE_SECRET_KEY":           "billing.stripe_secret_key",
	"STRIPE_WEBHOOK_SECRET":       "billing.stripe_webhook_secret",
	"STRIPE_PRICE_PRO":            "billing.price_id_pro",
	"STRIPE_PRICE_ENTERPRISE":     "billing.price_id_enterprise",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

// validate reports every problem at once.
func validate(c *Config) error {
	var errs []error
	need := func(value, env string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", env))
		}
	}

	need(c.Database.URL, "DATABASE_URL")
	need(c.Mongo.URL, "MONGO_URL")
	need(c.Redis.URL, "REDIS_URL")
	need(c.JWT.PrivateKeyPath, "JWT_PRIVATE_KEY_PATH")
	need(c.JWT.PublicKeyPath, "JWT_PUBLIC_KEY_PATH")

	if c.CORS.AllowCredentials && slices.Contains(c.CORS.AllowedOrigins, "*") {
		errs = append(errs, errors.New("CORS wildcard '*' cannot be used with allow_credentials"))
	}

	if c.Billing.Enabled() {
		need(c.Billing.StripeWebhookSecret, "STRIPE_WEBHOOK_SECRET")
	}

	if c.IsProduction() {
		if c.Otel.Enabled && c.Otel.Insecure {
			errs = append(errs, errors.New("OTEL_INSECURE must be false in production"))
		}
		if c.JWT.AutoGenerateKeys {
			errs = append(errs, errors.New("JWT_AUTO_GENERATE_KEYS must be false in production"))
		}
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server read and write timeouts must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
