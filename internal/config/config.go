// Package config defines all configuration structures for the CaseClock
// service.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"

	"github.com/socialhomes/CaseClock/internal/domain/deadline"
	"github.com/socialhomes/CaseClock/internal/domain/sla"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN renders the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the breach event stream parameters.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	BreachTopic     string        `mapstructure:"breach_topic"`
	ProducerRetries int           `mapstructure:"producer_retries"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequiredAcks    int           `mapstructure:"required_acks"`
}

// WorkerConfig holds the background sweep parameters.
type WorkerConfig struct {
	// ScanInterval is how often the compliance sweep runs over the open
	// caseload.
	ScanInterval time.Duration `mapstructure:"scan_interval"`

	// ScanTimeout bounds a single sweep.
	ScanTimeout time.Duration `mapstructure:"scan_timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "text"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
}

// EscalationConfig holds the advisory stage-dwell settings.
type EscalationConfig struct {
	// DefaultDwell is how long a case may sit at one stage before it reads
	// as stale.
	DefaultDwell time.Duration `mapstructure:"default_dwell"`

	// StageDwell overrides the default per stage name.
	StageDwell map[string]time.Duration `mapstructure:"stage_dwell"`
}

// WorklistConfig holds the application-service tunables.
type WorklistConfig struct {
	AssessmentTTL  time.Duration `mapstructure:"assessment_ttl"`
	BreachDedupTTL time.Duration `mapstructure:"breach_dedup_ttl"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the whole service.  The
// statutory day counts and SLA thresholds live here too: they are policy
// that operators may need to adjust without a release, never literals
// scattered through evaluator code.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Log        LogConfig        `mapstructure:"log"`
	Rules      deadline.Rules   `mapstructure:"rules"`
	Thresholds sla.Thresholds   `mapstructure:"thresholds"`
	Escalation EscalationConfig `mapstructure:"escalation"`
	Worklist   WorklistConfig   `mapstructure:"worklist"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.BreachTopic == "" {
		return fmt.Errorf("config: kafka.breach_topic is required")
	}

	// Worker
	if c.Worker.ScanInterval <= 0 {
		return fmt.Errorf("config: worker.scan_interval must be positive, got %s", c.Worker.ScanInterval)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	// Rules: a zero day count would derive deadlines at the creation
	// instant, which can only be a configuration mistake.
	for priority, days := range c.Rules.RepairTargetDays {
		if days < 1 {
			return fmt.Errorf("config: rules.repair_target_days[%s] must be ≥ 1, got %d", priority, days)
		}
	}
	if c.Rules.ComplaintAcknowledgeWorkingDays < 1 {
		return fmt.Errorf("config: rules.complaint_acknowledge_working_days must be ≥ 1, got %d", c.Rules.ComplaintAcknowledgeWorkingDays)
	}
	for stage, days := range c.Rules.ComplaintRespondWorkingDays {
		if days < 1 {
			return fmt.Errorf("config: rules.complaint_respond_working_days[%s] must be ≥ 1, got %d", stage, days)
		}
	}
	if c.Rules.HazardEmergencyActionWindow <= 0 {
		return fmt.Errorf("config: rules.hazard_emergency_action_window must be positive, got %s", c.Rules.HazardEmergencyActionWindow)
	}

	// Thresholds
	if c.Thresholds.RepairWindowFraction <= 0 || c.Thresholds.RepairWindowFraction >= 1 {
		return fmt.Errorf("config: thresholds.repair_window_fraction %v is out of range (0, 1)", c.Thresholds.RepairWindowFraction)
	}
	if c.Thresholds.ApproachingWorkingDays < 0 {
		return fmt.Errorf("config: thresholds.approaching_working_days must be ≥ 0, got %d", c.Thresholds.ApproachingWorkingDays)
	}
	if c.Thresholds.WatchWorkingDays < c.Thresholds.ApproachingWorkingDays {
		return fmt.Errorf("config: thresholds.watch_working_days %d must not be below approaching_working_days %d",
			c.Thresholds.WatchWorkingDays, c.Thresholds.ApproachingWorkingDays)
	}

	return nil
}
