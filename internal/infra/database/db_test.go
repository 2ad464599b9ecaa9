package database

import (
	"context"
	"testing"
	"time"

	"benefits_jobs/internal/infra/config"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestApplyPool(t *testing.T) {
	db, _ := newMock(t)
	applyPool(db, config.PoolConfig{MaxOpenConns: 7, MaxIdleConns: 3, ConnMaxLifetime: time.Minute, ConnMaxIdleTime: time.Second})

	if got := db.Stats().MaxOpenConnections; got != 7 {
		t.Fatalf("MaxOpenConnections = %d, want 7", got)
	}
}

func TestMigrate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS currencies").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate error: %v", err)
	}
	expectationsMet(t, mock)
}
