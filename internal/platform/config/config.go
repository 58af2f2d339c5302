// Package config loads service configuration: defaults, then an optional YAML
// file named by AVG_CONFIG_FILE, then AVG_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	platformstrings "avgverzoek/pkg/platform/strings"
)

// EnvConfigFile names the optional YAML file.
const EnvConfigFile = "AVG_CONFIG_FILE"

const devSigningKey = "dev-secret-key-change-in-production"

type Config struct {
	Server    Server          `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	JWT       JWTConfig       `yaml:"jwt"`
	Lockout   LockoutConfig   `yaml:"lockout"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// AdminToken guards /admin routes; empty disables them.
	AdminToken string `yaml:"admin_token"`
}

// DatabaseConfig selects PostgreSQL. An empty DSN runs on in-memory stores.
type DatabaseConfig struct {
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	TxTimeout    time.Duration `yaml:"tx_timeout"`
	AutoMigrate  bool          `yaml:"auto_migrate"`
}

// RedisConfig backs the token revocation list. An empty URL keeps it in memory.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// KafkaConfig enables status-change publishing. No brokers means events are
// only logged.
type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	Topic             string   `yaml:"topic"`
	ClientID          string   `yaml:"client_id"`
	Partitions        int32    `yaml:"partitions"`
	ReplicationFactor int16    `yaml:"replication_factor"`
}

type JWTConfig struct {
	SigningKey string        `yaml:"signing_key"`
	Issuer     string        `yaml:"issuer"`
	TTL        time.Duration `yaml:"ttl"`
}

// LockoutConfig limits failed logins per e-mail and client IP. MaxAttempts
// failures inside Window lock the pair for LockDuration.
type LockoutConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	Window       time.Duration `yaml:"window"`
	LockDuration time.Duration `yaml:"lock_duration"`
}

// SendGridConfig enables reminder e-mail. An empty API key logs reminders instead.
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

type SchedulerConfig struct {
	Enabled      bool   `yaml:"enabled"`
	ReminderCron string `yaml:"reminder_cron"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Default returns a configuration that runs locally without external services.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			TxTimeout:    5 * time.Second,
			AutoMigrate:  true,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic:             "access-request.status-changed",
			ClientID:          "avgverzoek",
			Partitions:        3,
			ReplicationFactor: 1,
		},
		JWT: JWTConfig{
			SigningKey: devSigningKey,
			Issuer:     "avgverzoek",
			TTL:        8 * time.Hour,
		},
		Lockout: LockoutConfig{
			MaxAttempts:  5,
			Window:       15 * time.Minute,
			LockDuration: 15 * time.Minute,
		},
		SendGrid: SendGridConfig{
			FromEmail: "noreply@avgverzoek.nl",
			FromName:  "AVG Verzoek",
		},
		Scheduler: SchedulerConfig{
			Enabled:      true,
			ReminderCron: "0 0 7 * * *",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// FromEnv loads configuration using AVG_CONFIG_FILE when set.
func FromEnv() (*Config, error) {
	return Load(os.Getenv(EnvConfigFile))
}

// Load applies the YAML file at path (if non-empty) over the defaults, then
// environment overrides, then validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.overrideWithEnv(); err != nil {
		return nil, err
	}
	cfg.Kafka.Brokers = platformstrings.DedupeAndTrim(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) overrideWithEnv() error {
	setString := func(key string, dst *string) {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}

	setString("AVG_ADDR", &c.Server.Addr)
	setString("AVG_ADMIN_TOKEN", &c.Server.AdminToken)
	setString("AVG_DATABASE_DSN", &c.Database.DSN)
	setString("AVG_REDIS_URL", &c.Redis.URL)
	setString("AVG_KAFKA_TOPIC", &c.Kafka.Topic)
	setString("AVG_JWT_SIGNING_KEY", &c.JWT.SigningKey)
	setString("AVG_SENDGRID_API_KEY", &c.SendGrid.APIKey)
	setString("AVG_SENDGRID_FROM", &c.SendGrid.FromEmail)
	setString("AVG_REMINDER_CRON", &c.Scheduler.ReminderCron)
	setString("AVG_LOG_LEVEL", &c.Log.Level)
	setString("AVG_LOG_FORMAT", &c.Log.Format)

	if val := os.Getenv("AVG_KAFKA_BROKERS"); val != "" {
		c.Kafka.Brokers = platformstrings.SplitList(val)
	}
	if val := os.Getenv("AVG_JWT_TTL"); val != "" {
		ttl, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parse AVG_JWT_TTL: %w", err)
		}
		c.JWT.TTL = ttl
	}
	if val := os.Getenv("AVG_SCHEDULER_ENABLED"); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parse AVG_SCHEDULER_ENABLED: %w", err)
		}
		c.Scheduler.Enabled = enabled
	}
	return nil
}

// Validate checks that the configuration can start the service.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server addr is required"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server shutdown_timeout must be positive"))
	}
	if len(c.JWT.SigningKey) < 32 {
		errs = append(errs, errors.New("jwt signing_key must be at least 32 bytes"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("jwt ttl must be positive"))
	}
	if c.Lockout.MaxAttempts <= 0 || c.Lockout.Window <= 0 || c.Lockout.LockDuration <= 0 {
		errs = append(errs, errors.New("lockout max_attempts, window and lock_duration must be positive"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka topic is required when brokers are set"))
	}
	if c.Scheduler.Enabled {
		if _, err := ParseCron(c.Scheduler.ReminderCron); err != nil {
			errs = append(errs, fmt.Errorf("scheduler reminder_cron: %w", err))
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// UsesDevSigningKey reports whether the built-in development key is active.
func (c *Config) UsesDevSigningKey() bool {
	return c.JWT.SigningKey == devSigningKey
}

// ParseCron parses a six-field (seconds-first) cron expression.
func ParseCron(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return parser.Parse(spec)
}
