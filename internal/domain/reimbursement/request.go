// internal/domain/reimbursement/request.go
package reimbursement

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the benefit category a request is filed under.
// BenefitCurrencyCode comes from the category's wallet association; unset means USD.
type Category struct {
	ID                  int64
	Label               string
	BenefitCurrencyCode sql.NullString
}

// Wallet is the member wallet the request is paid from.
type Wallet struct {
	ID                   int64
	OrganizationID       int64
	DirectPaymentEnabled bool
}

// Request mirrors the currency fields of the 'reimbursement_requests' table.
// Amount is in the benefit currency's minor units. Fields that legacy rows may
// lack are nullable.
type Request struct {
	ID         int64
	WalletID   int64
	CategoryID sql.NullInt64
	Category   *Category // nil when the request has no category
	Wallet     *Wallet

	TransactionAmount        sql.NullInt64
	TransactionCurrencyCode  sql.NullString
	UsdAmount                sql.NullInt64
	TransactionToUsdRate     decimal.NullDecimal
	Amount                   int64
	BenefitCurrencyCode      sql.NullString
	TransactionToBenefitRate decimal.NullDecimal
	UseCustomRate            bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Adjustment is a USD amount decided by the external adjudicator for a request.
type Adjustment struct {
	ID                     int64
	ReimbursementRequestID int64
	AdjustedUsdAmount      int64
	CreatedAt              time.Time
	ProcessedAt            sql.NullTime
}
