// internal/app/currency_service.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"benefits_jobs/internal/domain/currency"
	"benefits_jobs/internal/domain/reimbursement"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Currency engine errors.
var ErrInvalidExchangeRate = fmt.Errorf("invalid exchange rate")
var ErrInvalidCurrencyConversionRequest = fmt.Errorf("invalid currency conversion request")
var ErrInvalidAdjustmentRequest = fmt.Errorf("invalid reimbursement adjustment request")

// ConvertOptions carries the optional inputs of Convert.
// A zero AsOfDate means today; an invalid Rate means look it up.
type ConvertOptions struct {
	Rate     decimal.NullDecimal
	AsOfDate time.Time
}

// ConversionResult is the converted minor-unit amount and the rate that produced it.
type ConversionResult struct {
	Amount int64
	Rate   decimal.Decimal
}

type CurrencyService struct {
	minorUnits currency.MinorUnitRepository
	rates      currency.RateRepository
	logger     *logrus.Entry
	now        func() time.Time
}

func NewCurrencyService(minorUnits currency.MinorUnitRepository, rates currency.RateRepository, logger *logrus.Entry) *CurrencyService {
	return &CurrencyService{
		minorUnits: minorUnits,
		rates:      rates,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *CurrencyService) minorUnit(ctx context.Context, currencyCode string) (int, error) {
	mu, err := s.minorUnits.GetMinorUnit(ctx, currencyCode)
	if err != nil {
		return 0, fmt.Errorf("failed to get minor unit for %s: %w", currencyCode, err)
	}
	if mu < 0 {
		return 0, fmt.Errorf("%w: %s has minor unit %d", currency.ErrNegativeMinorUnit, currencyCode, mu)
	}
	return mu, nil
}

// ToMoney turns an integer amount of minor units into a decimal Money value.
func (s *CurrencyService) ToMoney(ctx context.Context, amount int64, currencyCode string) (currency.Money, error) {
	mu, err := s.minorUnit(ctx, currencyCode)
	if err != nil {
		return currency.Money{}, err
	}
	value := currency.Quo(decimal.NewFromInt(amount), decimal.New(1, int32(mu)))
	return currency.NewMoney(value, currencyCode), nil
}

// ToMinorUnitAmount is the inverse of ToMoney.
func (s *CurrencyService) ToMinorUnitAmount(ctx context.Context, money currency.Money) (int64, error) {
	mu, err := s.minorUnit(ctx, money.CurrencyCode)
	if err != nil {
		return 0, err
	}
	amount, err := currency.RoundToInt(currency.Mul(money.Amount, decimal.New(1, int32(mu))))
	if err != nil {
		return 0, fmt.Errorf("failed to convert %s to minor units: %w", money, err)
	}
	return amount, nil
}

// Convert converts amount minor units of source into minor units of target.
// The amount is multiplied by the rate first and only then rescaled by the
// difference in minor units.
func (s *CurrencyService) Convert(ctx context.Context, amount int64, source, target string, opts ConvertOptions) (ConversionResult, error) {
	asOf := opts.AsOfDate
	if asOf.IsZero() {
		asOf = s.now()
	}
	asOf = time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())

	rate := opts.Rate.Decimal
	if !opts.Rate.Valid {
		var err error
		rate, err = s.rates.GetRate(ctx, source, target, asOf)
		if err != nil {
			return ConversionResult{}, fmt.Errorf("failed to get %s->%s rate as of %s: %w", source, target, asOf.Format("2006-01-02"), err)
		}
	}
	if rate.Sign() <= 0 {
		return ConversionResult{}, fmt.Errorf("%w: %s->%s rate %s", ErrInvalidExchangeRate, source, target, rate)
	}

	sourceMU, err := s.minorUnit(ctx, source)
	if err != nil {
		return ConversionResult{}, err
	}
	targetMU, err := s.minorUnit(ctx, target)
	if err != nil {
		return ConversionResult{}, err
	}

	targetAmount := currency.Mul(decimal.NewFromInt(amount), rate)
	targetAmount = currency.Shift(targetAmount, targetMU-sourceMU)
	converted, err := currency.RoundToInt(targetAmount)
	if err != nil {
		return ConversionResult{}, fmt.Errorf("failed to convert %d %s to %s: %w", amount, source, target, err)
	}
	return ConversionResult{Amount: converted, Rate: rate}, nil
}

// benefitCurrency resolves the currency the request's benefit is denominated in.
func benefitCurrency(c *reimbursement.Category) string {
	if c.BenefitCurrencyCode.Valid && strings.TrimSpace(c.BenefitCurrencyCode.String) != "" {
		return c.BenefitCurrencyCode.String
	}
	return currency.USD
}

// ProcessReimbursementRequest fills the currency fields of a freshly submitted
// request: the transaction amount, its USD conversion and its benefit-currency
// conversion. Both conversions are anchored to the request's creation date.
// The request is mutated in place; persisting it is up to the caller.
func (s *CurrencyService) ProcessReimbursementRequest(ctx context.Context, transaction currency.Money, req *reimbursement.Request, customRate decimal.NullDecimal) (*reimbursement.Request, error) {
	if req.Category == nil {
		return nil, fmt.Errorf("%w: request %d has no category", ErrInvalidCurrencyConversionRequest, req.ID)
	}
	if req.Wallet == nil {
		return nil, fmt.Errorf("%w: request %d has no wallet", ErrInvalidCurrencyConversionRequest, req.ID)
	}

	benefitCode := benefitCurrency(req.Category)
	if customRate.Valid {
		switch {
		case benefitCode != currency.USD:
			return nil, fmt.Errorf("%w: custom rate not allowed for %s benefit", ErrInvalidCurrencyConversionRequest, benefitCode)
		case transaction.CurrencyCode == currency.USD:
			return nil, fmt.Errorf("%w: custom rate not allowed for USD transactions", ErrInvalidCurrencyConversionRequest)
		case req.Wallet.DirectPaymentEnabled:
			return nil, fmt.Errorf("%w: custom rate not allowed for direct payment wallet %d", ErrInvalidCurrencyConversionRequest, req.Wallet.ID)
		}
	}

	transactionAmount, err := s.ToMinorUnitAmount(ctx, transaction)
	if err != nil {
		return nil, err
	}

	opts := ConvertOptions{Rate: customRate, AsOfDate: req.CreatedAt}
	usd, err := s.Convert(ctx, transactionAmount, transaction.CurrencyCode, currency.USD, opts)
	if err != nil {
		return nil, err
	}
	benefit, err := s.Convert(ctx, transactionAmount, transaction.CurrencyCode, benefitCode, opts)
	if err != nil {
		return nil, err
	}

	req.TransactionAmount = nullInt64(transactionAmount)
	req.TransactionCurrencyCode = nullString(transaction.CurrencyCode)
	req.UsdAmount = nullInt64(usd.Amount)
	req.TransactionToUsdRate = decimal.NewNullDecimal(usd.Rate)
	req.Amount = benefit.Amount
	req.BenefitCurrencyCode = nullString(benefitCode)
	req.TransactionToBenefitRate = decimal.NewNullDecimal(benefit.Rate)
	req.UseCustomRate = customRate.Valid

	s.logger.WithFields(logrus.Fields{
		"reimbursement_request_id": req.ID,
		"transaction":              transaction.String(),
		"usd_amount":               usd.Amount,
		"benefit_amount":           benefit.Amount,
		"benefit_currency":         benefitCode,
	}).Debug("Reimbursement request converted")
	return req, nil
}

// ProcessReimbursementRequestAdjustment re-derives the transaction and benefit
// amounts from an adjudicated USD amount, using the rates stored at submission.
func (s *CurrencyService) ProcessReimbursementRequestAdjustment(ctx context.Context, req *reimbursement.Request, adjustedUsdAmount int64) (*reimbursement.Request, error) {
	logger := s.logger.WithFields(logrus.Fields{
		"reimbursement_request_id": req.ID,
		"adjusted_usd_amount":      adjustedUsdAmount,
	})

	// Legacy rows predate currency tracking: the amount is the USD amount.
	if !req.BenefitCurrencyCode.Valid {
		logger.Debug("Request has no benefit currency, overwriting amount")
		req.Amount = adjustedUsdAmount
		return req, nil
	}
	if req.UsdAmount.Valid && req.UsdAmount.Int64 == adjustedUsdAmount {
		logger.Debug("Adjusted USD amount unchanged")
		return req, nil
	}

	var missing []string
	if !req.TransactionCurrencyCode.Valid {
		missing = append(missing, "transaction_currency_code")
	}
	if !req.TransactionToUsdRate.Valid {
		missing = append(missing, "transaction_to_usd_rate")
	}
	if !req.TransactionToBenefitRate.Valid {
		missing = append(missing, "transaction_to_benefit_rate")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: request %d is missing %s", ErrInvalidAdjustmentRequest, req.ID, strings.Join(missing, ", "))
	}

	usdRate := req.TransactionToUsdRate.Decimal
	if usdRate.Sign() <= 0 {
		return nil, fmt.Errorf("%w: stored transaction_to_usd_rate %s on request %d", ErrInvalidExchangeRate, usdRate, req.ID)
	}
	usdToTransaction := currency.Quo(decimal.NewFromInt(1), usdRate)

	transactionCode := req.TransactionCurrencyCode.String
	transaction, err := s.Convert(ctx, adjustedUsdAmount, currency.USD, transactionCode, ConvertOptions{Rate: decimal.NewNullDecimal(usdToTransaction)})
	if err != nil {
		return nil, err
	}
	benefit, err := s.Convert(ctx, transaction.Amount, transactionCode, req.BenefitCurrencyCode.String, ConvertOptions{Rate: req.TransactionToBenefitRate})
	if err != nil {
		return nil, err
	}

	req.UsdAmount = nullInt64(adjustedUsdAmount)
	req.TransactionAmount = nullInt64(transaction.Amount)
	req.Amount = benefit.Amount

	logger.WithFields(logrus.Fields{
		"transaction_amount": transaction.Amount,
		"benefit_amount":     benefit.Amount,
	}).Debug("Reimbursement request adjusted")
	return req, nil
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: true}
}
