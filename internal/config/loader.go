package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "CASECLOCK"

// newViper builds a pre-configured Viper instance: YAML file type,
// CASECLOCK_ env prefix, automatic env binding, and a key replacer that maps
// "." to "_" so that nested keys like "database.host" resolve to
// "CASECLOCK_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerKeys(v)
	return v
}

// registerKeys declares every scalar key to viper.  Env overrides only reach
// Unmarshal for keys viper already knows, so each one is seeded with its
// zero value; real defaults are applied later by ApplyDefaults.
func registerKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.port", "server.mode", "server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
		"database.host", "database.port", "database.user", "database.password", "database.db_name",
		"database.ssl_mode", "database.max_conns", "database.min_conns",
		"database.conn_max_lifetime", "database.conn_max_idle_time",
		"redis.addr", "redis.password", "redis.db", "redis.pool_size", "redis.min_idle_conns",
		"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout", "redis.default_ttl", "redis.key_prefix",
		"kafka.brokers", "kafka.breach_topic", "kafka.producer_retries",
		"kafka.batch_timeout", "kafka.write_timeout", "kafka.required_acks",
		"worker.scan_interval", "worker.scan_timeout",
		"log.level", "log.format", "log.output", "log.enable_caller", "log.enable_stacktrace",
		"rules.complaint_acknowledge_working_days", "rules.hazard_emergency_action_window",
		"rules.hazard_investigate_working_days", "rules.hazard_summarise_working_days",
		"rules.hazard_safety_works_working_days", "rules.hazard_full_repair_calendar_days",
		"thresholds.repair_window_fraction", "thresholds.approaching_working_days", "thresholds.watch_working_days",
		"escalation.default_dwell",
		"worklist.assessment_ttl", "worklist.breach_dedup_ttl",
	} {
		v.SetDefault(key, nil)
	}
}

// Load reads the YAML file at configPath, merges any CASECLOCK_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.  It returns a fully-populated *Config or a descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CASECLOCK_* environment
// variables, with no config file required.  This is the preferred loading
// strategy for containerised deployments.
//
// Environment variable naming convention:
//
//	CASECLOCK_<SECTION>_<FIELD>   e.g.  CASECLOCK_DATABASE_HOST, CASECLOCK_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	v := newViper()
	// No config file; rely solely on env vars and defaults.
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  It is intended for
// hot-reloading non-critical settings such as log level and SLA thresholds;
// callers are responsible for applying only the safe subset of changes at
// runtime.
//
// Watch is non-blocking; it starts a background goroutine managed by viper.
// A changed file that fails to parse or validate does not reach onChange.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read; errors are ignored here, callers should call Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			// The running config stays in force until a valid file lands.
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// Intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
