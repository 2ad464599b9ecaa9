// internal/domain/featureflag/repository.go
package featureflag

import "context"

// Repository answers allow-list questions for feature flags keyed by organization.
type Repository interface {
	IsEnabled(ctx context.Context, flagKey string, organizationID int64) (bool, error)
	// FilterEnabled returns the subset of organizationIDs allowed for flagKey.
	FilterEnabled(ctx context.Context, flagKey string, organizationIDs []int64) ([]int64, error)
}
