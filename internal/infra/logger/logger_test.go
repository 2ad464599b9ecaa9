package logger

import (
	"testing"

	"benefits_jobs/internal/infra/config"

	"github.com/sirupsen/logrus"
)

func TestInit(t *testing.T) {
	Init(&config.AppConfig{LogLevel: "debug", Environment: "production"})
	if Log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v, want debug", Log.GetLevel())
	}
	if _, ok := Log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("formatter = %T, want *logrus.JSONFormatter", Log.Formatter)
	}

	Init(&config.AppConfig{LogLevel: "loud", Environment: "development"})
	if Log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want info fallback", Log.GetLevel())
	}
	if _, ok := Log.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("formatter = %T, want *logrus.TextFormatter", Log.Formatter)
	}
}

func TestComponent(t *testing.T) {
	e := Component("scheduler")
	if e.Data["component"] != "scheduler" {
		t.Fatalf("component field = %v, want scheduler", e.Data["component"])
	}
}
