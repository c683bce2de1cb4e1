package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultReportURL is the endpoint the original skill reported to.
const DefaultReportURL = "https://www.evanpatton.com/alexa/report"

func Load() (*Config, error) {
	return LoadFrom(viper.New(), "./configs", ".", "/app/configs")
}

// LoadFrom reads config.yaml from the first matching path and overlays the environment.
// A missing file is not an error.
func LoadFrom(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	v.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	v.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	v.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	v.BindEnv("queue.url", "NATS_URL", "APP_QUEUE_URL")
	v.BindEnv("jwt.secret", "JWT_SECRET", "APP_JWT_SECRET")
	v.BindEnv("report.url", "REPORT_URL", "APP_REPORT_URL")
	v.BindEnv("vault.token", "VAULT_TOKEN", "APP_VAULT_TOKEN")
	v.BindEnv("logging.level", "LOG_LEVEL", "APP_LOGGING_LEVEL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "appinventor-skill")
	v.SetDefault("app.version", "v0.1.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.body_limit", 256*1024)

	v.SetDefault("skill.path", "/skill")

	v.SetDefault("report.url", DefaultReportURL)
	v.SetDefault("report.timeout", 5*time.Second)
	v.SetDefault("report.breaker.max_requests", 1)
	v.SetDefault("report.breaker.interval", time.Minute)
	v.SetDefault("report.breaker.timeout", 30*time.Second)
	v.SetDefault("report.breaker.failure_threshold", 5)

	v.SetDefault("session.backend", "envelope")
	v.SetDefault("session.ttl", time.Hour)

	v.SetDefault("i18n.fallback_locale", "en")
	v.SetDefault("i18n.selection", "random")

	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("queue.driver", "none")
	v.SetDefault("queue.subject", "appinventor.reports")

	v.SetDefault("jwt.token_duration", time.Hour)
	v.SetDefault("jwt.issuer", "appinventor-skill")

	v.SetDefault("vault.mount", "secret")

	v.SetDefault("opentelemetry.service_name", "appinventor-skill")
	v.SetDefault("opentelemetry.jaeger.endpoint", "http://jaeger:14268/api/traces")
	v.SetDefault("opentelemetry.jaeger.sampler_param", 1.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("rate_limiting.max_requests", 120)
	v.SetDefault("rate_limiting.window", time.Minute)

	v.SetDefault("circuit_breaker.max_requests", 3)
	v.SetDefault("circuit_breaker.interval", time.Minute)
	v.SetDefault("circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.failure_threshold", 0.6)
}

// Validate rejects values the service cannot start with.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case "envelope", "memory":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("config: session.backend=redis requires redis.url")
		}
	default:
		return fmt.Errorf("config: unknown session.backend %q", c.Session.Backend)
	}

	switch c.Queue.Driver {
	case "", "none":
	case "nats", "rabbitmq":
		if c.Queue.URL == "" {
			return fmt.Errorf("config: queue.driver=%s requires queue.url", c.Queue.Driver)
		}
	default:
		return fmt.Errorf("config: unknown queue.driver %q", c.Queue.Driver)
	}

	switch c.I18n.Selection {
	case "random", "first":
	default:
		return fmt.Errorf("config: unknown i18n.selection %q", c.I18n.Selection)
	}

	if c.Report.URL == "" {
		return errors.New("config: report.url is required")
	}
	if c.Report.Timeout <= 0 {
		return errors.New("config: report.timeout must be positive")
	}

	return nil
}
