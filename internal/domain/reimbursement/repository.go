// internal/domain/reimbursement/repository.go
package reimbursement

import (
	"context"
	"time"
)

// Repository defines persistence for reimbursement requests and their adjustments.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Request, error)
	ListOrganizationIDs(ctx context.Context) ([]int64, error)
	// ListPendingConversions returns requests of an organization that have a
	// transaction amount but were never converted.
	ListPendingConversions(ctx context.Context, organizationID int64) ([]*Request, error)
	UpdateCurrencyFields(ctx context.Context, r *Request) error

	ListPendingAdjustments(ctx context.Context, organizationID int64) ([]*Adjustment, error)
	// SaveAdjustment persists the re-derived request fields and marks the
	// adjustment processed in one transaction.
	SaveAdjustment(ctx context.Context, r *Request, adjustmentID int64, processedAt time.Time) error
}
