package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the inventory engine.
// It merges file defaults and environment overrides to support both local and
// deployed runs.
type Config struct {
	ServiceName string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	HoldWindowMin      time.Duration
	HoldWindowMax      time.Duration
	HoldWindowStaffMax time.Duration

	SweepInterval  time.Duration
	SweepBatchSize int

	IdempotencyTTL time.Duration

	MaxDBConns         int32
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		Name     string `yaml:"name"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Holds struct {
		WindowMinMinutes      int `yaml:"window_min_minutes"`
		WindowMaxMinutes      int `yaml:"window_max_minutes"`
		WindowStaffMaxMinutes int `yaml:"window_staff_max_minutes"`
		SweepIntervalSeconds  int `yaml:"sweep_interval_seconds"`
		SweepBatchSize        int `yaml:"sweep_batch_size"`
	} `yaml:"holds"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceName:        "inventory-engine",
		HTTPPort:           8080,
		GRPCPort:           9090,
		HoldWindowMin:      5 * time.Minute,
		HoldWindowMax:      120 * time.Minute,
		HoldWindowStaffMax: 2880 * time.Minute,
		SweepInterval:      time.Minute,
		SweepBatchSize:     100,
		IdempotencyTTL:     24 * time.Hour,
		MaxDBConns:         20,
		OutboxPollInterval: 2 * time.Second,
		OutboxBatchSize:    100,
		OutboxClaimTTL:     30 * time.Second,
		OutboxMaxRetries:   5,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.Name != "" {
			cfg.ServiceName = f.Service.Name
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Holds.WindowMinMinutes > 0 {
			cfg.HoldWindowMin = time.Duration(f.Holds.WindowMinMinutes) * time.Minute
		}
		if f.Holds.WindowMaxMinutes > 0 {
			cfg.HoldWindowMax = time.Duration(f.Holds.WindowMaxMinutes) * time.Minute
		}
		if f.Holds.WindowStaffMaxMinutes > 0 {
			cfg.HoldWindowStaffMax = time.Duration(f.Holds.WindowStaffMaxMinutes) * time.Minute
		}
		if f.Holds.SweepIntervalSeconds > 0 {
			cfg.SweepInterval = time.Duration(f.Holds.SweepIntervalSeconds) * time.Second
		}
		if f.Holds.SweepBatchSize > 0 {
			cfg.SweepBatchSize = f.Holds.SweepBatchSize
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.HoldWindowMin = time.Duration(envInt("HOLD_WINDOW_MIN_MINUTES", int(cfg.HoldWindowMin.Minutes()))) * time.Minute
	cfg.HoldWindowMax = time.Duration(envInt("HOLD_WINDOW_MAX_MINUTES", int(cfg.HoldWindowMax.Minutes()))) * time.Minute
	cfg.HoldWindowStaffMax = time.Duration(envInt("HOLD_WINDOW_STAFF_MAX_MINUTES", int(cfg.HoldWindowStaffMax.Minutes()))) * time.Minute
	cfg.SweepInterval = time.Duration(envInt("SWEEP_INTERVAL_SECONDS", int(cfg.SweepInterval.Seconds()))) * time.Second
	cfg.SweepBatchSize = envInt("SWEEP_BATCH_SIZE", cfg.SweepBatchSize)
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL.Hours()))) * time.Hour

	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxClaimTTL = time.Duration(envInt("OUTBOX_CLAIM_TTL_SECONDS", int(cfg.OutboxClaimTTL.Seconds()))) * time.Second
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.HoldWindowMin > cfg.HoldWindowMax {
		return Config{}, fmt.Errorf("hold window min %s exceeds max %s", cfg.HoldWindowMin, cfg.HoldWindowMax)
	}
	if cfg.HoldWindowMax > cfg.HoldWindowStaffMax {
		return Config{}, fmt.Errorf("hold window max %s exceeds staff max %s", cfg.HoldWindowMax, cfg.HoldWindowStaffMax)
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
