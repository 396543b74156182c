package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	dbpkg "github.com/yungbote/neurobridge-content/internal/data/db"
	"github.com/yungbote/neurobridge-content/internal/modules/content/tools"
	"github.com/yungbote/neurobridge-content/internal/observability"
	"github.com/yungbote/neurobridge-content/internal/platform/envutil"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

type DatabaseConfig struct {
	Driver           string        `yaml:"driver"`
	SQLitePath       string        `yaml:"sqlite_path"`
	PostgresHost     string        `yaml:"postgres_host"`
	PostgresPort     string        `yaml:"postgres_port"`
	PostgresUser     string        `yaml:"postgres_user"`
	PostgresPassword string        `yaml:"postgres_password"`
	PostgresName     string        `yaml:"postgres_name"`
	SlowThreshold    time.Duration `yaml:"slow_threshold"`
}

type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Environment string  `yaml:"environment"`
	Version     string  `yaml:"version"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	LogMode  string `yaml:"log_mode"`
	HTTPAddr string `yaml:"http_addr"`

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Otel     OtelConfig     `yaml:"otel"`

	JWTSecretKey   string        `yaml:"jwt_secret_key"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
	CORSOrigins    []string      `yaml:"cors_origins"`

	AgentMaxToolCalls int           `yaml:"agent_max_tool_calls"`
	MetricsEnabled    bool          `yaml:"metrics_enabled"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

func defaultConfig() Config {
	return Config{
		LogMode:  "development",
		HTTPAddr: ":8080",
		Database: DatabaseConfig{
			Driver:       "sqlite",
			SQLitePath:   "content.db",
			PostgresHost: "localhost",
			PostgresPort: "5432",
			PostgresName: "content",
		},
		Redis: RedisConfig{Channel: "content"},
		Otel: OtelConfig{
			ServiceName: "contentd",
			Environment: "development",
			SampleRatio: 1,
		},
		AccessTokenTTL:    time.Hour,
		AgentMaxToolCalls: tools.DefaultMaxCalls,
		MetricsEnabled:    true,
		ShutdownTimeout:   10 * time.Second,
	}
}

// LoadConfig layers defaults, the YAML file named by CONFIG_FILE, then
// environment variables. Later layers win.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()
	if path := envutil.String("CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if cfg.AgentMaxToolCalls <= 0 {
		cfg.AgentMaxToolCalls = tools.DefaultMaxCalls
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.HTTPAddr = envutil.String("HTTP_ADDR", cfg.HTTPAddr)

	cfg.Database.Driver = envutil.String("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.SQLitePath = envutil.String("SQLITE_PATH", cfg.Database.SQLitePath)
	cfg.Database.PostgresHost = envutil.String("POSTGRES_HOST", cfg.Database.PostgresHost)
	cfg.Database.PostgresPort = envutil.String("POSTGRES_PORT", cfg.Database.PostgresPort)
	cfg.Database.PostgresUser = envutil.String("POSTGRES_USER", cfg.Database.PostgresUser)
	cfg.Database.PostgresPassword = envutil.String("POSTGRES_PASSWORD", cfg.Database.PostgresPassword)
	cfg.Database.PostgresName = envutil.String("POSTGRES_NAME", cfg.Database.PostgresName)
	cfg.Database.SlowThreshold = envutil.Duration("DB_SLOW_THRESHOLD", cfg.Database.SlowThreshold)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Channel = envutil.String("REDIS_CHANNEL", cfg.Redis.Channel)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", cfg.Otel.Environment)
	cfg.Otel.Version = envutil.String("OTEL_SERVICE_VERSION", cfg.Otel.Version)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	if raw := envutil.String("OTEL_SAMPLE_RATIO", ""); raw != "" {
		if ratio, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Otel.SampleRatio = ratio
		}
	}

	cfg.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.JWTSecretKey)
	cfg.AccessTokenTTL = envutil.Duration("ACCESS_TOKEN_TTL", cfg.AccessTokenTTL)
	if raw := envutil.String("CORS_ORIGINS", ""); raw != "" {
		cfg.CORSOrigins = splitList(raw)
	}

	cfg.AgentMaxToolCalls = envutil.Int("AGENT_MAX_TOOL_CALLS", cfg.AgentMaxToolCalls)
	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.ShutdownTimeout = envutil.Duration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DatabaseConfig converts the database section for the db package.
func (c Config) DatabaseConfig() dbpkg.Config {
	return c.Database.toDB()
}

func (c DatabaseConfig) toDB() dbpkg.Config {
	return dbpkg.Config{
		Driver:           c.Driver,
		SQLitePath:       c.SQLitePath,
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
		SlowThreshold:    c.SlowThreshold,
	}
}

func (c OtelConfig) toOtel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.Enabled,
		ServiceName: c.ServiceName,
		Environment: c.Environment,
		Version:     c.Version,
		Endpoint:    c.Endpoint,
		Headers:     c.Headers,
		Insecure:    c.Insecure,
		SampleRatio: c.SampleRatio,
	}
}

// Summary lists the settings worth a startup log line. Secrets stay out.
func (c Config) Summary(log *logger.Logger) {
	log.Info("config loaded",
		"http_addr", c.HTTPAddr,
		"db_driver", c.Database.Driver,
		"redis_enabled", c.Redis.Addr != "",
		"auth_enabled", c.JWTSecretKey != "",
		"otel_enabled", c.Otel.Enabled,
		"metrics_enabled", c.MetricsEnabled,
		"agent_max_tool_calls", c.AgentMaxToolCalls,
	)
}
