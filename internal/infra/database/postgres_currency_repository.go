// internal/infra/database/postgres_currency_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"benefits_jobs/internal/domain/currency"

	"github.com/shopspring/decimal"
)

var ErrCurrencyNotFound = fmt.Errorf("currency not found")
var ErrExchangeRateNotFound = fmt.Errorf("exchange rate not found")

// PostgresCurrencyRepository serves minor units and exchange rates.
type PostgresCurrencyRepository struct {
	db *sql.DB
}

func NewPostgresCurrencyRepository(db *sql.DB) *PostgresCurrencyRepository {
	return &PostgresCurrencyRepository{db: db}
}

func (r *PostgresCurrencyRepository) GetCurrency(ctx context.Context, code string) (*currency.Currency, error) {
	query := `SELECT code, name, minor_unit FROM currencies WHERE code = $1`
	c := currency.Currency{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(&c.Code, &c.Name, &c.MinorUnit)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrCurrencyNotFound, code)
		}
		return nil, fmt.Errorf("error getting currency %s: %w", code, err)
	}
	return &c, nil
}

func (r *PostgresCurrencyRepository) GetMinorUnit(ctx context.Context, code string) (int, error) {
	c, err := r.GetCurrency(ctx, code)
	if err != nil {
		return 0, err
	}
	return c.MinorUnit, nil
}

// GetExchangeRate returns the newest rate from source to target dated on or before asOfDate.
func (r *PostgresCurrencyRepository) GetExchangeRate(ctx context.Context, source, target string, asOfDate time.Time) (*currency.ExchangeRate, error) {
	if source == target {
		return &currency.ExchangeRate{Source: source, Target: target, Rate: decimal.NewFromInt(1), AsOfDate: asOfDate}, nil
	}

	query := `SELECT source_currency, target_currency, rate, as_of_date
               FROM fx_rates
               WHERE source_currency = $1 AND target_currency = $2 AND as_of_date <= $3
               ORDER BY as_of_date DESC LIMIT 1`
	dateOnly := time.Date(asOfDate.Year(), asOfDate.Month(), asOfDate.Day(), 0, 0, 0, 0, time.UTC)
	rate := currency.ExchangeRate{}
	err := r.db.QueryRowContext(ctx, query, source, target, dateOnly).Scan(&rate.Source, &rate.Target, &rate.Rate, &rate.AsOfDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s->%s as of %s", ErrExchangeRateNotFound, source, target, dateOnly.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("error getting exchange rate %s->%s: %w", source, target, err)
	}
	return &rate, nil
}

func (r *PostgresCurrencyRepository) GetRate(ctx context.Context, source, target string, asOfDate time.Time) (decimal.Decimal, error) {
	rate, err := r.GetExchangeRate(ctx, source, target, asOfDate)
	if err != nil {
		return decimal.Zero, err
	}
	return rate.Rate, nil
}
