package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"
	_ "time/tzdata" // SCHEDULER_TIMEZONE must resolve without system zoneinfo

	"benefits_jobs/internal/domain/schedule"

	"github.com/joho/godotenv"
)

// JobConfig is the schedule of one recurring job.
type JobConfig struct {
	Cadence  schedule.Cadence
	CronSpec string
}

// PoolConfig sizes the database connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL        string
	DatabasePool       PoolConfig
	LogLevel           string
	Environment        string
	Location           *time.Location
	CurrencyConversion JobConfig
	AdjustmentSync     JobConfig
	JobTimeout         time.Duration

	// Job-run overrides.
	RunOffSchedule          bool
	OverrideOrganizationIDs []int64
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.DatabasePool, err = loadPool()
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	tz := getEnv("SCHEDULER_TIMEZONE", "UTC")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_TIMEZONE: %w", err)
	}

	cfg.CurrencyConversion, err = loadJob("CURRENCY_CONVERSION_CADENCE", "FOUR_TIMES_DAILY", "CRON_SPEC_CURRENCY_CONVERSION", "0 12,15,18,21 * * *")
	if err != nil {
		return nil, err
	}
	cfg.AdjustmentSync, err = loadJob("ADJUSTMENT_SYNC_CADENCE", "DAILY", "CRON_SPEC_ADJUSTMENT_SYNC", "0 12,15,18,21 * * *")
	if err != nil {
		return nil, err
	}

	cfg.JobTimeout, err = time.ParseDuration(getEnv("JOB_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_TIMEOUT: %w", err)
	}
	if cfg.JobTimeout <= 0 {
		return nil, fmt.Errorf("invalid JOB_TIMEOUT: must be > 0")
	}

	cfg.RunOffSchedule, err = strconv.ParseBool(getEnv("RUN_OFF_SCHEDULE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_OFF_SCHEDULE: %w", err)
	}

	cfg.OverrideOrganizationIDs, err = parseIDList(os.Getenv("OVERRIDE_ORGANIZATION_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid OVERRIDE_ORGANIZATION_IDS: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func loadPool() (PoolConfig, error) {
	var pool PoolConfig
	var err error
	if pool.MaxOpenConns, err = positiveInt("DB_MAX_OPEN_CONNS", "10"); err != nil {
		return PoolConfig{}, err
	}
	if pool.MaxIdleConns, err = positiveInt("DB_MAX_IDLE_CONNS", "10"); err != nil {
		return PoolConfig{}, err
	}
	if pool.ConnMaxLifetime, err = time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m")); err != nil {
		return PoolConfig{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}
	if pool.ConnMaxIdleTime, err = time.ParseDuration(getEnv("DB_CONN_MAX_IDLE_TIME", "1m")); err != nil {
		return PoolConfig{}, fmt.Errorf("invalid DB_CONN_MAX_IDLE_TIME: %w", err)
	}
	return pool, nil
}

func positiveInt(key, fallback string) (int, error) {
	n, err := strconv.Atoi(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be > 0", key)
	}
	return n, nil
}

func loadJob(cadenceKey, defaultCadence, cronKey, defaultCron string) (JobConfig, error) {
	cadence, err := schedule.ParseCadence(getEnv(cadenceKey, defaultCadence))
	if err != nil {
		return JobConfig{}, fmt.Errorf("invalid %s: %w", cadenceKey, err)
	}
	return JobConfig{Cadence: cadence, CronSpec: getEnv(cronKey, defaultCron)}, nil
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
