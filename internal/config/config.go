package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/invariant"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/lease"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/migration"
)

// Config is read from the environment. When CONFIG_FILE names a YAML file
// its values are the fallback for every unset variable.
type Config struct {
	Relay     EndpointConfig  `yaml:"relay"`
	Coretime  EndpointConfig  `yaml:"coretime"`
	RPC       RPCConfig       `yaml:"rpc"`
	Migration MigrationConfig `yaml:"migration"`
	Checks    ChecksConfig    `yaml:"checks"`
	Lease     LeaseConfig     `yaml:"lease"`
	Report    ReportConfig    `yaml:"report"`
	Alert     AlertConfig     `yaml:"alert"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

type EndpointConfig struct {
	RPCURL string `yaml:"rpc_url"`
}

type RPCConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
}

type MigrationConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type ChecksConfig struct {
	Disabled      []string `yaml:"disabled"`
	CoreMaskWidth int      `yaml:"core_mask_width"`
}

type LeaseConfig struct {
	Offset          int64 `yaml:"offset"`
	Period          int64 `yaml:"period"`
	TimeSlicePeriod int64 `yaml:"timeslice_period"`
}

type ReportConfig struct {
	Format string `yaml:"format"`
	DBURL  string `yaml:"db_url"`
}

type AlertConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url"`
	WebhookURL      string `yaml:"webhook_url"`
}

type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaults() *Config {
	return &Config{
		RPC: RPCConfig{
			Timeout:        30 * time.Second,
			RateLimitBurst: 10,
		},
		Migration: MigrationConfig{
			Timeout:      migration.DefaultMigrationTimeout,
			PollInterval: migration.DefaultPollInterval,
		},
		Checks: ChecksConfig{
			CoreMaskWidth: invariant.DefaultOptions().CoreMaskWidth,
		},
		Lease: LeaseConfig{
			Offset:          lease.DefaultOffset,
			Period:          lease.DefaultPeriod,
			TimeSlicePeriod: lease.DefaultTimeSlicePeriod,
		},
		Report:  ReportConfig{Format: "text"},
		Tracing: TracingConfig{Insecure: true, SampleRatio: 1},
		Metrics: MetricsConfig{Job: "coretime-check"},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Relay.RPCURL = getEnv("RELAY_CHAIN_RPC", cfg.Relay.RPCURL)
	cfg.Coretime.RPCURL = getEnv("CORETIME_CHAIN_RPC", cfg.Coretime.RPCURL)

	cfg.RPC.Timeout = getEnvDuration("RPC_TIMEOUT_SEC", time.Second, cfg.RPC.Timeout)
	cfg.RPC.RateLimitRPS = getEnvFloat("RPC_RATE_LIMIT_RPS", cfg.RPC.RateLimitRPS)
	cfg.RPC.RateLimitBurst = getEnvInt("RPC_RATE_LIMIT_BURST", cfg.RPC.RateLimitBurst)

	cfg.Migration.Timeout = getEnvDuration("MIGRATION_TIMEOUT_SEC", time.Second, cfg.Migration.Timeout)
	cfg.Migration.PollInterval = getEnvDuration("MIGRATION_POLL_INTERVAL_MS", time.Millisecond, cfg.Migration.PollInterval)

	if v := os.Getenv("CHECKS_DISABLED"); v != "" {
		cfg.Checks.Disabled = splitList(v)
	}
	cfg.Checks.CoreMaskWidth = getEnvInt("CORE_MASK_WIDTH", cfg.Checks.CoreMaskWidth)

	cfg.Lease.Offset = getEnvInt64("LEASE_OFFSET", cfg.Lease.Offset)
	cfg.Lease.Period = getEnvInt64("LEASE_PERIOD", cfg.Lease.Period)
	cfg.Lease.TimeSlicePeriod = getEnvInt64("TIMESLICE_PERIOD", cfg.Lease.TimeSlicePeriod)

	cfg.Report.Format = strings.ToLower(getEnv("REPORT_FORMAT", cfg.Report.Format))
	cfg.Report.DBURL = getEnv("REPORT_DB_URL", cfg.Report.DBURL)

	cfg.Alert.SlackWebhookURL = getEnv("ALERT_SLACK_WEBHOOK_URL", cfg.Alert.SlackWebhookURL)
	cfg.Alert.WebhookURL = getEnv("ALERT_WEBHOOK_URL", cfg.Alert.WebhookURL)

	cfg.Tracing.Endpoint = getEnv("TRACING_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.Insecure = getEnvBool("TRACING_INSECURE", cfg.Tracing.Insecure)
	cfg.Tracing.SampleRatio = getEnvFloat("TRACING_SAMPLE_RATIO", cfg.Tracing.SampleRatio)

	cfg.Metrics.PushgatewayURL = getEnv("PUSHGATEWAY_URL", cfg.Metrics.PushgatewayURL)
	cfg.Metrics.Job = getEnv("PUSHGATEWAY_JOB", cfg.Metrics.Job)

	cfg.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(getEnv("LOG_FORMAT", cfg.Log.Format))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Relay.RPCURL == "" {
		return fmt.Errorf("RELAY_CHAIN_RPC is required")
	}
	if c.Coretime.RPCURL == "" {
		return fmt.Errorf("CORETIME_CHAIN_RPC is required")
	}
	if c.RPC.Timeout <= 0 {
		return fmt.Errorf("RPC_TIMEOUT_SEC must be positive")
	}
	if c.RPC.RateLimitRPS < 0 {
		return fmt.Errorf("RPC_RATE_LIMIT_RPS must not be negative")
	}
	if c.Migration.Timeout <= 0 {
		return fmt.Errorf("MIGRATION_TIMEOUT_SEC must be positive")
	}
	if c.Migration.PollInterval <= 0 {
		return fmt.Errorf("MIGRATION_POLL_INTERVAL_MS must be positive")
	}
	if c.Migration.PollInterval > c.Migration.Timeout {
		return fmt.Errorf("MIGRATION_POLL_INTERVAL_MS (%s) exceeds MIGRATION_TIMEOUT_SEC (%s)", c.Migration.PollInterval, c.Migration.Timeout)
	}
	if c.Checks.CoreMaskWidth <= 0 {
		return fmt.Errorf("CORE_MASK_WIDTH must be positive")
	}
	if _, err := c.DisabledChecks(); err != nil {
		return fmt.Errorf("CHECKS_DISABLED: %w", err)
	}
	if err := c.LeaseParams().Validate(); err != nil {
		return err
	}
	switch c.Report.Format {
	case "text", "json":
	default:
		return fmt.Errorf("REPORT_FORMAT must be text or json, got %q", c.Report.Format)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// DisabledChecks resolves the configured check names.
func (c *Config) DisabledChecks() (map[invariant.Check]bool, error) {
	out := make(map[invariant.Check]bool, len(c.Checks.Disabled))
	for _, name := range c.Checks.Disabled {
		check, err := invariant.ParseCheck(name)
		if err != nil {
			return nil, err
		}
		out[check] = true
	}
	return out, nil
}

func (c *Config) LeaseParams() lease.Params {
	return lease.Params{
		Offset:          c.Lease.Offset,
		Period:          c.Lease.Period,
		TimeSlicePeriod: c.Lease.TimeSlicePeriod,
	}
}

// CheckerOptions builds the invariant checker options. Call only on a
// validated Config.
func (c *Config) CheckerOptions() invariant.Options {
	disabled, _ := c.DisabledChecks()
	return invariant.Options{
		Disabled:      disabled,
		Lease:         c.LeaseParams(),
		CoreMaskWidth: c.Checks.CoreMaskWidth,
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration reads an integer count of unit.
func getEnvDuration(key string, unit, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i) * unit
		}
	}
	return fallback
}
