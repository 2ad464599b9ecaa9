// internal/app/reimbursement_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"benefits_jobs/internal/domain/reimbursement"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// RunSummary counts the outcome of one job run for one organization.
type RunSummary struct {
	Processed int
	Failed    int
}

// ReimbursementService holds the bodies of the reimbursement currency jobs.
type ReimbursementService struct {
	reimbursementRepo reimbursement.Repository
	currency          *CurrencyService
	logger            *logrus.Entry
	now               func() time.Time
}

func NewReimbursementService(rr reimbursement.Repository, cs *CurrencyService, logger *logrus.Entry) *ReimbursementService {
	return &ReimbursementService{
		reimbursementRepo: rr,
		currency:          cs,
		logger:            logger,
		now:               time.Now,
	}
}

// ConvertPendingRequests converts every submitted but unconverted request of an organization.
func (s *ReimbursementService) ConvertPendingRequests(ctx context.Context, organizationID int64) (RunSummary, error) {
	logger := s.logger.WithField("organization_id", organizationID)

	pending, err := s.reimbursementRepo.ListPendingConversions(ctx, organizationID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("failed to list pending conversions for organization %d: %w", organizationID, err)
	}
	if len(pending) == 0 {
		logger.Debug("No reimbursement requests pending conversion")
		return RunSummary{}, nil
	}
	logger.Infof("Found %d reimbursement requests pending conversion", len(pending))

	var summary RunSummary
	for _, req := range pending {
		reqLogger := logger.WithField("reimbursement_request_id", req.ID)
		if err := s.convertRequest(ctx, req); err != nil {
			reqLogger.WithError(err).Error("Failed to convert reimbursement request")
			summary.Failed++
			continue
		}
		summary.Processed++
	}

	logger.WithFields(logrus.Fields{"processed": summary.Processed, "failed": summary.Failed}).Info("Currency conversion run finished")
	return summary, nil
}

func (s *ReimbursementService) convertRequest(ctx context.Context, req *reimbursement.Request) error {
	if !req.TransactionAmount.Valid || !req.TransactionCurrencyCode.Valid {
		return fmt.Errorf("%w: request %d has no transaction amount", ErrInvalidCurrencyConversionRequest, req.ID)
	}
	transaction, err := s.currency.ToMoney(ctx, req.TransactionAmount.Int64, req.TransactionCurrencyCode.String)
	if err != nil {
		return err
	}

	customRate := decimal.NullDecimal{}
	if req.UseCustomRate {
		if !req.TransactionToUsdRate.Valid {
			return fmt.Errorf("%w: request %d uses a custom rate but has none recorded", ErrInvalidCurrencyConversionRequest, req.ID)
		}
		customRate = req.TransactionToUsdRate
	}
	if _, err := s.currency.ProcessReimbursementRequest(ctx, transaction, req, customRate); err != nil {
		return err
	}
	if err := s.reimbursementRepo.UpdateCurrencyFields(ctx, req); err != nil {
		return fmt.Errorf("failed to save currency fields: %w", err)
	}
	return nil
}

// ApplyPendingAdjustments re-derives request amounts from adjudicated USD amounts.
func (s *ReimbursementService) ApplyPendingAdjustments(ctx context.Context, organizationID int64) (RunSummary, error) {
	logger := s.logger.WithField("organization_id", organizationID)

	adjustments, err := s.reimbursementRepo.ListPendingAdjustments(ctx, organizationID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("failed to list pending adjustments for organization %d: %w", organizationID, err)
	}
	if len(adjustments) == 0 {
		logger.Debug("No pending reimbursement adjustments")
		return RunSummary{}, nil
	}
	logger.Infof("Found %d pending reimbursement adjustments", len(adjustments))

	var summary RunSummary
	for _, adj := range adjustments {
		adjLogger := logger.WithFields(logrus.Fields{
			"adjustment_id":            adj.ID,
			"reimbursement_request_id": adj.ReimbursementRequestID,
		})

		req, err := s.reimbursementRepo.GetByID(ctx, adj.ReimbursementRequestID)
		if err != nil {
			adjLogger.WithError(err).Error("Failed to load reimbursement request for adjustment")
			summary.Failed++
			continue
		}
		if _, err := s.currency.ProcessReimbursementRequestAdjustment(ctx, req, adj.AdjustedUsdAmount); err != nil {
			adjLogger.WithError(err).Error("Failed to adjust reimbursement request")
			summary.Failed++
			continue
		}
		if err := s.reimbursementRepo.SaveAdjustment(ctx, req, adj.ID, s.now()); err != nil {
			adjLogger.WithError(err).Error("Failed to save reimbursement adjustment")
			summary.Failed++
			continue
		}
		summary.Processed++
	}

	logger.WithFields(logrus.Fields{"processed": summary.Processed, "failed": summary.Failed}).Info("Adjustment run finished")
	return summary, nil
}
