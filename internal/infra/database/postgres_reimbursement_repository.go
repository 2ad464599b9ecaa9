// internal/infra/database/postgres_reimbursement_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"benefits_jobs/internal/domain/reimbursement"
)

var ErrReimbursementRequestNotFound = fmt.Errorf("reimbursement request not found")
var ErrAdjustmentNotFound = fmt.Errorf("pending reimbursement adjustment not found")

const selectRequestColumns = `SELECT rr.id, rr.reimbursement_wallet_id, rr.reimbursement_request_category_id,
                      rr.transaction_amount, rr.transaction_currency_code, rr.usd_amount, rr.transaction_to_usd_rate,
                      rr.amount, rr.benefit_currency_code, rr.transaction_to_benefit_rate, rr.use_custom_rate,
                      rr.created_at, rr.updated_at,
                      w.organization_id, w.direct_payment_enabled,
                      c.label, c.benefit_currency_code
               FROM reimbursement_requests rr
               JOIN reimbursement_wallets w ON w.id = rr.reimbursement_wallet_id
               LEFT JOIN reimbursement_request_categories c ON c.id = rr.reimbursement_request_category_id`

type PostgresReimbursementRepository struct {
	db *sql.DB
}

func NewPostgresReimbursementRepository(db *sql.DB) *PostgresReimbursementRepository {
	return &PostgresReimbursementRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*reimbursement.Request, error) {
	r := &reimbursement.Request{}
	w := &reimbursement.Wallet{}
	var categoryLabel, categoryCurrency sql.NullString
	err := row.Scan(
		&r.ID, &r.WalletID, &r.CategoryID,
		&r.TransactionAmount, &r.TransactionCurrencyCode, &r.UsdAmount, &r.TransactionToUsdRate,
		&r.Amount, &r.BenefitCurrencyCode, &r.TransactionToBenefitRate, &r.UseCustomRate,
		&r.CreatedAt, &r.UpdatedAt,
		&w.OrganizationID, &w.DirectPaymentEnabled,
		&categoryLabel, &categoryCurrency,
	)
	if err != nil {
		return nil, err
	}
	w.ID = r.WalletID
	r.Wallet = w
	if r.CategoryID.Valid {
		r.Category = &reimbursement.Category{
			ID:                  r.CategoryID.Int64,
			Label:               categoryLabel.String,
			BenefitCurrencyCode: categoryCurrency,
		}
	}
	return r, nil
}

func (r *PostgresReimbursementRepository) GetByID(ctx context.Context, id int64) (*reimbursement.Request, error) {
	query := selectRequestColumns + ` WHERE rr.id = $1`
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReimbursementRequestNotFound
		}
		return nil, fmt.Errorf("error getting reimbursement request by ID: %w", err)
	}
	return req, nil
}

func (r *PostgresReimbursementRepository) ListOrganizationIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT DISTINCT organization_id FROM reimbursement_wallets ORDER BY organization_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing organizations: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning organization ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizations: %w", err)
	}
	return ids, nil
}

func (r *PostgresReimbursementRepository) ListPendingConversions(ctx context.Context, organizationID int64) ([]*reimbursement.Request, error) {
	query := selectRequestColumns + `
               WHERE w.organization_id = $1 AND rr.usd_amount IS NULL AND rr.transaction_amount IS NOT NULL
               ORDER BY rr.created_at ASC, rr.id ASC`
	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("error querying pending conversions: %w", err)
	}
	defer rows.Close()

	requests := make([]*reimbursement.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning reimbursement request row: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reimbursement request rows: %w", err)
	}
	return requests, nil
}

const updateCurrencyFieldsQuery = `UPDATE reimbursement_requests
               SET transaction_amount = $1, transaction_currency_code = $2, usd_amount = $3,
                   transaction_to_usd_rate = $4, amount = $5, benefit_currency_code = $6,
                   transaction_to_benefit_rate = $7, use_custom_rate = $8, updated_at = NOW()
               WHERE id = $9
               RETURNING updated_at`

func updateCurrencyFields(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, req *reimbursement.Request) error {
	err := q.QueryRowContext(ctx, updateCurrencyFieldsQuery,
		req.TransactionAmount, req.TransactionCurrencyCode, req.UsdAmount,
		req.TransactionToUsdRate, req.Amount, req.BenefitCurrencyCode,
		req.TransactionToBenefitRate, req.UseCustomRate, req.ID,
	).Scan(&req.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrReimbursementRequestNotFound
		}
		return fmt.Errorf("error updating reimbursement request currency fields: %w", err)
	}
	return nil
}

func (r *PostgresReimbursementRepository) UpdateCurrencyFields(ctx context.Context, req *reimbursement.Request) error {
	return updateCurrencyFields(ctx, r.db, req)
}

func (r *PostgresReimbursementRepository) ListPendingAdjustments(ctx context.Context, organizationID int64) ([]*reimbursement.Adjustment, error) {
	query := `SELECT a.id, a.reimbursement_request_id, a.adjusted_usd_amount, a.created_at, a.processed_at
               FROM reimbursement_adjustments a
               JOIN reimbursement_requests rr ON rr.id = a.reimbursement_request_id
               JOIN reimbursement_wallets w ON w.id = rr.reimbursement_wallet_id
               WHERE w.organization_id = $1 AND a.processed_at IS NULL
               ORDER BY a.created_at ASC, a.id ASC`
	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("error querying pending adjustments: %w", err)
	}
	defer rows.Close()

	adjustments := make([]*reimbursement.Adjustment, 0)
	for rows.Next() {
		a := &reimbursement.Adjustment{}
		if err := rows.Scan(&a.ID, &a.ReimbursementRequestID, &a.AdjustedUsdAmount, &a.CreatedAt, &a.ProcessedAt); err != nil {
			return nil, fmt.Errorf("error scanning adjustment row: %w", err)
		}
		adjustments = append(adjustments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating adjustment rows: %w", err)
	}
	return adjustments, nil
}

func (r *PostgresReimbursementRepository) SaveAdjustment(ctx context.Context, req *reimbursement.Request, adjustmentID int64, processedAt time.Time) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for adjustment: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	if err := updateCurrencyFields(ctx, txn, req); err != nil {
		return err
	}

	res, err := txn.ExecContext(ctx, `UPDATE reimbursement_adjustments SET processed_at = $1
               WHERE id = $2 AND processed_at IS NULL`, processedAt, adjustmentID)
	if err != nil {
		return fmt.Errorf("error marking adjustment %d processed: %w", adjustmentID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error marking adjustment %d processed: %w", adjustmentID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrAdjustmentNotFound, adjustmentID)
	}

	return txn.Commit()
}
