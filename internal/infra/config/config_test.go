package config

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"benefits_jobs/internal/domain/schedule"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/benefits")
	for _, key := range []string{
		"LOG_LEVEL", "ENVIRONMENT", "SCHEDULER_TIMEZONE", "CURRENCY_CONVERSION_CADENCE",
		"CRON_SPEC_CURRENCY_CONVERSION", "ADJUSTMENT_SYNC_CADENCE", "CRON_SPEC_ADJUSTMENT_SYNC",
		"JOB_TIMEOUT", "RUN_OFF_SCHEDULE", "OVERRIDE_ORGANIZATION_IDS",
		"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.Environment != "development" {
		t.Errorf("LogLevel/Environment = %q/%q, want info/development", cfg.LogLevel, cfg.Environment)
	}
	if cfg.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", cfg.Location)
	}
	if cfg.CurrencyConversion.Cadence != schedule.CadenceFourTimesDaily || cfg.CurrencyConversion.CronSpec != "0 12,15,18,21 * * *" {
		t.Errorf("CurrencyConversion = %+v", cfg.CurrencyConversion)
	}
	if cfg.AdjustmentSync.Cadence != schedule.CadenceDaily {
		t.Errorf("AdjustmentSync.Cadence = %q, want DAILY", cfg.AdjustmentSync.Cadence)
	}
	if cfg.JobTimeout != 5*time.Minute {
		t.Errorf("JobTimeout = %v, want 5m", cfg.JobTimeout)
	}
	if cfg.RunOffSchedule || len(cfg.OverrideOrganizationIDs) != 0 {
		t.Errorf("overrides = %v/%v, want none", cfg.RunOffSchedule, cfg.OverrideOrganizationIDs)
	}
	wantPool := PoolConfig{MaxOpenConns: 10, MaxIdleConns: 10, ConnMaxLifetime: 5 * time.Minute, ConnMaxIdleTime: time.Minute}
	if cfg.DatabasePool != wantPool {
		t.Errorf("DatabasePool = %+v, want %+v", cfg.DatabasePool, wantPool)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/benefits")
	t.Setenv("ADJUSTMENT_SYNC_CADENCE", "weekly")
	t.Setenv("CRON_SPEC_ADJUSTMENT_SYNC", "0 6,9 * * *")
	t.Setenv("RUN_OFF_SCHEDULE", "true")
	t.Setenv("OVERRIDE_ORGANIZATION_IDS", "12, 7,,40")
	t.Setenv("SCHEDULER_TIMEZONE", "America/New_York")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.AdjustmentSync.Cadence != schedule.CadenceWeekly || cfg.AdjustmentSync.CronSpec != "0 6,9 * * *" {
		t.Errorf("AdjustmentSync = %+v", cfg.AdjustmentSync)
	}
	if !cfg.RunOffSchedule {
		t.Error("RunOffSchedule = false, want true")
	}
	if !reflect.DeepEqual(cfg.OverrideOrganizationIDs, []int64{12, 7, 40}) {
		t.Errorf("OverrideOrganizationIDs = %v, want [12 7 40]", cfg.OverrideOrganizationIDs)
	}
	if cfg.Location.String() != "America/New_York" {
		t.Errorf("Location = %v, want America/New_York", cfg.Location)
	}
	if cfg.DatabasePool.MaxOpenConns != 25 || cfg.DatabasePool.ConnMaxLifetime != 30*time.Minute {
		t.Errorf("DatabasePool = %+v, want 25 open conns and 30m lifetime", cfg.DatabasePool)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing database url", env: map[string]string{"DATABASE_URL": ""}},
		{name: "bad cadence", env: map[string]string{"CURRENCY_CONVERSION_CADENCE": "HOURLY"}},
		{name: "bad timezone", env: map[string]string{"SCHEDULER_TIMEZONE": "Mars/Olympus"}},
		{name: "bad bool", env: map[string]string{"RUN_OFF_SCHEDULE": "maybe"}},
		{name: "bad ids", env: map[string]string{"OVERRIDE_ORGANIZATION_IDS": "1,two"}},
		{name: "bad timeout", env: map[string]string{"JOB_TIMEOUT": "soon"}},
		{name: "zero pool size", env: map[string]string{"DB_MAX_OPEN_CONNS": "0"}},
		{name: "bad pool size", env: map[string]string{"DB_MAX_IDLE_CONNS": "many"}},
		{name: "bad conn lifetime", env: map[string]string{"DB_CONN_MAX_LIFETIME": "forever"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/benefits")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadBadCadenceWrapsUnknownCadence(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/benefits")
	t.Setenv("CURRENCY_CONVERSION_CADENCE", "HOURLY")
	if _, err := Load(); !errors.Is(err, schedule.ErrUnknownCadence) {
		t.Fatalf("error = %v, want ErrUnknownCadence", err)
	}
}
