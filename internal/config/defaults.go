// Package config provides configuration loading, defaults, and validation
// for the CaseClock service.
package config

import (
	"time"

	"github.com/socialhomes/CaseClock/internal/domain/deadline"
	"github.com/socialhomes/CaseClock/internal/domain/sla"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultDBHost   = "localhost"
	DefaultDBPort   = 5432
	DefaultDBName   = "caseclock"
	DefaultMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "caseclock"

	DefaultKafkaBroker = "localhost:9092"
	DefaultBreachTopic = "caseclock.breaches"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// DefaultScanInterval matches the nightly-plus operational cadence the
	// compliance sweep was designed for.
	DefaultScanInterval = 4 * time.Hour

	DefaultStageDwell = 28 * 24 * time.Hour
)

// ApplyDefaults fills every zero-value field in cfg with the service
// default.  Fields that have already been set by the caller are left
// unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 5 * time.Minute
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.BreachTopic == "" {
		cfg.Kafka.BreachTopic = DefaultBreachTopic
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = time.Second
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.ScanInterval == 0 {
		cfg.Worker.ScanInterval = DefaultScanInterval
	}
	if cfg.Worker.ScanTimeout == 0 {
		cfg.Worker.ScanTimeout = 10 * time.Minute
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Domain policy ─────────────────────────────────────────────────────────
	defaults := deadline.DefaultRules()
	if len(cfg.Rules.RepairTargetDays) == 0 {
		cfg.Rules.RepairTargetDays = defaults.RepairTargetDays
	}
	if cfg.Rules.ComplaintAcknowledgeWorkingDays == 0 {
		cfg.Rules.ComplaintAcknowledgeWorkingDays = defaults.ComplaintAcknowledgeWorkingDays
	}
	if len(cfg.Rules.ComplaintRespondWorkingDays) == 0 {
		cfg.Rules.ComplaintRespondWorkingDays = defaults.ComplaintRespondWorkingDays
	}
	if cfg.Rules.HazardEmergencyActionWindow == 0 {
		cfg.Rules.HazardEmergencyActionWindow = defaults.HazardEmergencyActionWindow
	}
	if cfg.Rules.HazardInvestigateWorkingDays == 0 {
		cfg.Rules.HazardInvestigateWorkingDays = defaults.HazardInvestigateWorkingDays
	}
	if cfg.Rules.HazardSummariseWorkingDays == 0 {
		cfg.Rules.HazardSummariseWorkingDays = defaults.HazardSummariseWorkingDays
	}
	if cfg.Rules.HazardSafetyWorksWorkingDays == 0 {
		cfg.Rules.HazardSafetyWorksWorkingDays = defaults.HazardSafetyWorksWorkingDays
	}
	if cfg.Rules.HazardFullRepairCalendarDays == 0 {
		cfg.Rules.HazardFullRepairCalendarDays = defaults.HazardFullRepairCalendarDays
	}

	thresholds := sla.DefaultThresholds()
	if cfg.Thresholds.RepairWindowFraction == 0 {
		cfg.Thresholds.RepairWindowFraction = thresholds.RepairWindowFraction
	}
	if cfg.Thresholds.ApproachingWorkingDays == 0 {
		cfg.Thresholds.ApproachingWorkingDays = thresholds.ApproachingWorkingDays
	}
	if cfg.Thresholds.WatchWorkingDays == 0 {
		cfg.Thresholds.WatchWorkingDays = thresholds.WatchWorkingDays
	}

	if cfg.Escalation.DefaultDwell == 0 {
		cfg.Escalation.DefaultDwell = DefaultStageDwell
	}

	if cfg.Worklist.AssessmentTTL == 0 {
		cfg.Worklist.AssessmentTTL = time.Minute
	}
	if cfg.Worklist.BreachDedupTTL == 0 {
		cfg.Worklist.BreachDedupTTL = 24 * time.Hour
	}
}
