package config

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gridpulse-lab/gridpulse/internal/core/retry"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "GRIDPULSE_"

// Config represents the top-level application config.
type Config struct {
	Server       ServerConfig    `koanf:"server"`
	Database     DatabaseConfig  `koanf:"database"`
	ConnectRetry RetryConfig     `koanf:"connect_retry"`
	Broker       BrokerConfig    `koanf:"broker"`
	Ingestion    IngestionConfig `koanf:"ingestion"`
	Energy       EnergyConfig    `koanf:"energy"`
	Snapshot     SnapshotConfig  `koanf:"snapshot"`
	Logging      LoggingConfig   `koanf:"logging"`
	Metrics      MetricsConfig   `koanf:"metrics"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Mode            string        `koanf:"mode"` // debug | release
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// DSN wins over the discrete fields when set.
	DSN      string `koanf:"dsn"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`

	PoolSize        int           `koanf:"pool_size"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	PingTimeout     time.Duration `koanf:"ping_timeout"`
}

// EffectiveDSN returns DSN, or a postgres URL built from the discrete fields.
func (d DatabaseConfig) EffectiveDSN() string {
	if strings.TrimSpace(d.DSN) != "" {
		return d.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{d.SSLMode}}.Encode()
	}
	return u.String()
}

type RetryConfig struct {
	MaxAttempts  int           `koanf:"max_attempts"`
	InitialDelay time.Duration `koanf:"initial_delay"`
	Multiplier   float64       `koanf:"multiplier"`
	MaxDelay     time.Duration `koanf:"max_delay"`
}

// Policy converts the config into a retry.Policy.
func (r RetryConfig) Policy() retry.Policy {
	return retry.Policy{
		MaxAttempts:  r.MaxAttempts,
		InitialDelay: r.InitialDelay,
		Multiplier:   r.Multiplier,
		MaxDelay:     r.MaxDelay,
	}
}

type BrokerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	Topics          []string      `koanf:"topics"`
	ClientIDPrefix  string        `koanf:"client_id_prefix"`
	ReconnectPeriod time.Duration `koanf:"reconnect_period"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
}

// URL returns the broker address in paho form.
func (b BrokerConfig) URL() string {
	return "tcp://" + net.JoinHostPort(b.Host, strconv.Itoa(b.Port))
}

type IngestionConfig struct {
	DrainTimeout   time.Duration `koanf:"drain_timeout"`
	HandlerTimeout time.Duration `koanf:"handler_timeout"`
}

type EnergyConfig struct {
	Timezone              string  `koanf:"timezone"`
	SampleIntervalSeconds int     `koanf:"sample_interval_seconds"`
	EmissionFactor        float64 `koanf:"emission_factor"`
	KWDivisor             float64 `koanf:"kw_divisor"`
	DefaultDevice         string  `koanf:"default_device"`
}

// Location loads the configured time zone.
func (e EnergyConfig) Location() (*time.Location, error) {
	return time.LoadLocation(e.Timezone)
}

type SnapshotConfig struct {
	StaleAfter time.Duration `koanf:"stale_after"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug | info | warn | error
	Format string `koanf:"format"` // text | json
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		if strings.TrimSpace(c.Database.Host) == "" {
			return fmt.Errorf("database.host is required when database.dsn is empty")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database.port %d (must be 1-65535)", c.Database.Port)
		}
		if strings.TrimSpace(c.Database.Name) == "" {
			return fmt.Errorf("database.name is required when database.dsn is empty")
		}
	}
	if c.Database.PoolSize <= 0 {
		return fmt.Errorf("database.pool_size must be > 0")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns must be >= 0")
	}

	if c.ConnectRetry.MaxAttempts <= 0 {
		return fmt.Errorf("connect_retry.max_attempts must be > 0")
	}
	if c.ConnectRetry.InitialDelay < 0 {
		return fmt.Errorf("connect_retry.initial_delay must be >= 0")
	}
	if c.ConnectRetry.Multiplier < 1 {
		return fmt.Errorf("connect_retry.multiplier must be >= 1")
	}
	if c.ConnectRetry.MaxDelay < c.ConnectRetry.InitialDelay {
		return fmt.Errorf("connect_retry.max_delay must be >= connect_retry.initial_delay")
	}

	if strings.TrimSpace(c.Broker.Host) == "" {
		return fmt.Errorf("broker.host is required")
	}
	if c.Broker.Port <= 0 || c.Broker.Port > 65535 {
		return fmt.Errorf("invalid broker.port %d (must be 1-65535)", c.Broker.Port)
	}
	if len(c.Broker.Topics) == 0 {
		return fmt.Errorf("broker.topics must name at least one topic")
	}
	for _, topic := range c.Broker.Topics {
		if strings.TrimSpace(topic) == "" {
			return fmt.Errorf("broker.topics contains an empty topic")
		}
	}
	if c.Broker.ReconnectPeriod <= 0 {
		return fmt.Errorf("broker.reconnect_period must be > 0")
	}
	if c.Broker.ConnectTimeout <= 0 {
		return fmt.Errorf("broker.connect_timeout must be > 0")
	}

	if c.Ingestion.DrainTimeout <= 0 {
		return fmt.Errorf("ingestion.drain_timeout must be > 0")
	}
	if c.Ingestion.HandlerTimeout < 0 {
		return fmt.Errorf("ingestion.handler_timeout must be >= 0")
	}

	if _, err := c.Energy.Location(); err != nil {
		return fmt.Errorf("invalid energy.timezone %q: %w", c.Energy.Timezone, err)
	}
	if c.Energy.SampleIntervalSeconds < 1 {
		return fmt.Errorf("energy.sample_interval_seconds must be >= 1")
	}
	if math.IsNaN(c.Energy.EmissionFactor) || math.IsInf(c.Energy.EmissionFactor, 0) || c.Energy.EmissionFactor < 0 {
		return fmt.Errorf("energy.emission_factor must be a non-negative number")
	}
	if math.IsNaN(c.Energy.KWDivisor) || math.IsInf(c.Energy.KWDivisor, 0) || c.Energy.KWDivisor <= 0 {
		return fmt.Errorf("energy.kw_divisor must be > 0")
	}

	if c.Snapshot.StaleAfter <= 0 {
		return fmt.Errorf("snapshot.stale_after must be > 0")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q (must be debug, info, warn or error)", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging.format %q (must be text or json)", c.Logging.Format)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}

	return nil
}

// legacyEnv maps the flat variable names of existing deployments onto
// config keys. GRIDPULSE_* variables still win over these.
var legacyEnv = map[string]string{
	"MQTT_HOST":     "broker.host",
	"MQTT_PORT":     "broker.port",
	"MQTT_USER":     "broker.username",
	"MQTT_PASSWORD": "broker.password",
	"MQTT_TOPICS":   "broker.topics",
	"DB_HOST":       "database.host",
	"DB_PORT":       "database.port",
	"DB_USER":       "database.user",
	"DB_PASSWORD":   "database.password",
	"DB_NAME":       "database.name",
}

// Load parses config from defaults, file, legacy env names and GRIDPULSE_
// env vars (in increasing precedence), then validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                    8080,
		"server.host":                    "0.0.0.0",
		"server.mode":                    "release",
		"server.shutdown_timeout":        "10s",
		"database.dsn":                   "",
		"database.host":                  "localhost",
		"database.port":                  5432,
		"database.user":                  "root",
		"database.password":              "thaipbs",
		"database.name":                  "power_real_a_1",
		"database.sslmode":               "disable",
		"database.pool_size":             10,
		"database.max_idle_conns":        10,
		"database.conn_max_lifetime":     "5m",
		"database.ping_timeout":          "5s",
		"connect_retry.max_attempts":     10,
		"connect_retry.initial_delay":    "2s",
		"connect_retry.multiplier":       1.5,
		"connect_retry.max_delay":        "30s",
		"broker.host":                    "172.16.202.63",
		"broker.port":                    1883,
		"broker.username":                "admin",
		"broker.password":                "public",
		"broker.topics":                  []string{"sensor/3phase10"},
		"broker.client_id_prefix":        "gridpulse-",
		"broker.reconnect_period":        "2s",
		"broker.connect_timeout":         "10s",
		"ingestion.drain_timeout":        "10s",
		"ingestion.handler_timeout":      "0s",
		"energy.timezone":                "Asia/Bangkok",
		"energy.sample_interval_seconds": 5,
		"energy.emission_factor":         0.566,
		"energy.kw_divisor":              1.0,
		"energy.default_device":          "sensor/3phase10",
		"snapshot.stale_after":           "60s",
		"logging.level":                  "info",
		"logging.format":                 "text",
		"metrics.enabled":                true,
		"metrics.path":                   "/metrics",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		mapped, ok := legacyEnv[key]
		if !ok {
			return "", nil
		}
		return mapped, envValue(mapped, value)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load legacy env vars: %w", err)
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		mapped := strings.Replace(strings.ToLower(strings.TrimPrefix(key, envPrefix)), "__", ".", -1)
		return mapped, envValue(mapped, value)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envValue splits comma-separated list keys.
func envValue(key, value string) interface{} {
	if key != "broker.topics" {
		return value
	}
	var topics []string
	for _, t := range strings.Split(value, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}
