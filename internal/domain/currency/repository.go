// internal/domain/currency/repository.go
package currency

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNegativeMinorUnit = fmt.Errorf("currency minor unit must not be negative")

// MinorUnitRepository resolves the number of decimal places of a currency.
type MinorUnitRepository interface {
	GetMinorUnit(ctx context.Context, currencyCode string) (int, error)
}

// RateRepository resolves the exchange rate from source to target valid on asOfDate.
type RateRepository interface {
	GetRate(ctx context.Context, source, target string, asOfDate time.Time) (decimal.Decimal, error)
}
