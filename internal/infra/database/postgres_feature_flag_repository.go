// internal/infra/database/postgres_feature_flag_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq" // For pq.Array
)

// PostgresFeatureFlagRepository reads per-organization allow-lists.
type PostgresFeatureFlagRepository struct {
	db *sql.DB
}

func NewPostgresFeatureFlagRepository(db *sql.DB) *PostgresFeatureFlagRepository {
	return &PostgresFeatureFlagRepository{db: db}
}

func (r *PostgresFeatureFlagRepository) IsEnabled(ctx context.Context, flagKey string, organizationID int64) (bool, error) {
	query := `SELECT EXISTS (
                   SELECT 1 FROM feature_flag_allow_list WHERE flag_key = $1 AND organization_id = $2
               )`
	var enabled bool
	if err := r.db.QueryRowContext(ctx, query, flagKey, organizationID).Scan(&enabled); err != nil {
		return false, fmt.Errorf("error checking feature flag %s: %w", flagKey, err)
	}
	return enabled, nil
}

func (r *PostgresFeatureFlagRepository) FilterEnabled(ctx context.Context, flagKey string, organizationIDs []int64) ([]int64, error) {
	if len(organizationIDs) == 0 {
		return nil, nil
	}

	query := `SELECT organization_id
               FROM feature_flag_allow_list
               WHERE flag_key = $1 AND organization_id = ANY($2::bigint[])
               ORDER BY organization_id`
	rows, err := r.db.QueryContext(ctx, query, flagKey, pq.Array(organizationIDs))
	if err != nil {
		return nil, fmt.Errorf("error filtering feature flag %s: %w", flagKey, err)
	}
	defer rows.Close()

	enabled := make([]int64, 0, len(organizationIDs))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning allow-listed organization: %w", err)
		}
		enabled = append(enabled, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allow-listed organizations: %w", err)
	}
	return enabled, nil
}
