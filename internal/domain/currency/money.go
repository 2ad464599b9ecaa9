// internal/domain/currency/money.go
package currency

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// USD is the reporting currency every reimbursement is also converted into.
const USD = "USD"

// Money is an exact decimal amount in an ISO-4217 currency.
type Money struct {
	Amount       decimal.Decimal
	CurrencyCode string
}

func NewMoney(amount decimal.Decimal, currencyCode string) Money {
	return Money{Amount: amount, CurrencyCode: currencyCode}
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.String(), m.CurrencyCode)
}

// Currency is a row of the 'currencies' table.
type Currency struct {
	Code      string
	Name      string
	MinorUnit int
}

// ExchangeRate converts one unit of Source into Rate units of Target, valid as of AsOfDate.
type ExchangeRate struct {
	Source   string
	Target   string
	Rate     decimal.Decimal
	AsOfDate time.Time
}
