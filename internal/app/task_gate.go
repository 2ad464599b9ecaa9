// internal/app/task_gate.go
package app

import (
	"context"
	"fmt"
	"time"

	"benefits_jobs/internal/domain/featureflag"
	"benefits_jobs/internal/domain/schedule"

	"github.com/sirupsen/logrus"
)

// TaskRequest describes one scheduled task evaluation for one organization.
type TaskRequest struct {
	Name           string
	FlagKey        string
	Cadence        schedule.Cadence
	CronExpression string
	OrganizationID int64
	Now            time.Time
}

// RunOverrides come from job-run configuration.
// RunOffSchedule runs the task regardless of its schedule; a non-empty
// OrganizationIDs restricts scheduled runs to those organizations.
type RunOverrides struct {
	RunOffSchedule  bool
	OrganizationIDs []int64
}

func (o RunOverrides) allows(organizationID int64) bool {
	if len(o.OrganizationIDs) == 0 {
		return true
	}
	for _, id := range o.OrganizationIDs {
		if id == organizationID {
			return true
		}
	}
	return false
}

// TaskGate decides whether a scheduled task should run for an organization.
type TaskGate struct {
	flags  featureflag.Repository
	logger *logrus.Entry
}

func NewTaskGate(flags featureflag.Repository, logger *logrus.Entry) *TaskGate {
	return &TaskGate{flags: flags, logger: logger}
}

// ShouldRunTask returns false for organizations outside the task's allow-list.
// Otherwise it returns true when RunOffSchedule is set, or when the schedule
// fires and the organization passes the override filter.
func (g *TaskGate) ShouldRunTask(ctx context.Context, req TaskRequest, overrides RunOverrides) (bool, error) {
	logger := g.logger.WithFields(logrus.Fields{
		"task":            req.Name,
		"organization_id": req.OrganizationID,
	})

	enabled, err := g.flags.IsEnabled(ctx, req.FlagKey, req.OrganizationID)
	if err != nil {
		return false, fmt.Errorf("failed to check flag %s for organization %d: %w", req.FlagKey, req.OrganizationID, err)
	}
	if !enabled {
		logger.Debug("Organization not in allow-list")
		return false, nil
	}

	if overrides.RunOffSchedule {
		logger.Info("Running off schedule")
		return true, nil
	}

	if !schedule.ShouldFire(req.Cadence, req.CronExpression, req.Now) {
		logger.WithField("cadence", req.Cadence).Debug("Outside execution window")
		return false, nil
	}
	if !overrides.allows(req.OrganizationID) {
		logger.Debug("Organization excluded by override filter")
		return false, nil
	}
	return true, nil
}
