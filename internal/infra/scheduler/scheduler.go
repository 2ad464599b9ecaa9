package scheduler

import (
	"context"
	"fmt"
	"time"

	"benefits_jobs/internal/app"
	"benefits_jobs/internal/domain/featureflag"
	"benefits_jobs/internal/domain/schedule"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a recurring, per-organization unit of work.
type Job struct {
	Name     string
	FlagKey  string
	Cadence  schedule.Cadence
	CronSpec string
	Run      func(ctx context.Context, organizationID int64) (app.RunSummary, error)
}

// OrganizationLister lists the organizations a job may run for.
type OrganizationLister interface {
	ListOrganizationIDs(ctx context.Context) ([]int64, error)
}

type JobScheduler struct {
	cronEngine    *cron.Cron
	gate          *app.TaskGate
	flags         featureflag.Repository
	organizations OrganizationLister
	overrides     app.RunOverrides
	location      *time.Location
	jobTimeout    time.Duration
	logger        *logrus.Entry
	now           func() time.Time
}

func NewJobScheduler(
	gate *app.TaskGate,
	flags featureflag.Repository,
	organizations OrganizationLister,
	overrides app.RunOverrides,
	location *time.Location,
	jobTimeout time.Duration,
	logger *logrus.Entry,
) *JobScheduler {
	return &JobScheduler{
		cronEngine:    cron.New(cron.WithLocation(location)),
		gate:          gate,
		flags:         flags,
		organizations: organizations,
		overrides:     overrides,
		location:      location,
		jobTimeout:    jobTimeout,
		logger:        logger,
		now:           time.Now,
	}
}

// Register validates the job's cron spec and adds it to the cron engine.
// The cron spec drives the ticks; the cadence decides which ticks run.
func (s *JobScheduler) Register(job Job) error {
	parsed, err := cron.ParseStandard(job.CronSpec)
	if err != nil {
		return fmt.Errorf("invalid cron spec %q for job %s: %w", job.CronSpec, job.Name, err)
	}
	if _, err := schedule.ParseBaseHours(job.CronSpec); err != nil {
		return fmt.Errorf("job %s: %w", job.Name, err)
	}
	if spec, ok := parsed.(*cron.SpecSchedule); ok && !ticksInsideWindow(spec) {
		s.logger.WithFields(logrus.Fields{
			"job":       job.Name,
			"cron_spec": job.CronSpec,
		}).Warnf("No tick falls within %s of the hour; the job will only run off schedule", schedule.ExecutionWindow)
	}

	_, err = s.cronEngine.AddFunc(job.CronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		s.runJob(ctx, job)
	})
	if err != nil {
		return fmt.Errorf("could not add cron job %s: %w", job.Name, err)
	}
	s.logger.WithFields(logrus.Fields{
		"job":       job.Name,
		"cadence":   job.Cadence,
		"cron_spec": job.CronSpec,
	}).Info("Job registered")
	return nil
}

// runJob evaluates the gate for every allow-listed organization and runs the job for the ones that pass.
func (s *JobScheduler) runJob(ctx context.Context, job Job) {
	now := s.now().In(s.location)
	logger := s.logger.WithFields(logrus.Fields{
		"job":    job.Name,
		"run_id": uuid.NewString(),
	})
	logger.Info("Job tick")

	orgIDs, err := s.organizations.ListOrganizationIDs(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to list organizations")
		return
	}
	// One batched allow-list query narrows the organizations; the gate still
	// checks each remaining one so ShouldRunTask stays the single decision point.
	orgIDs, err = s.flags.FilterEnabled(ctx, job.FlagKey, orgIDs)
	if err != nil {
		logger.WithError(err).Error("Failed to filter organizations by allow-list")
		return
	}

	var ran int
	for _, orgID := range orgIDs {
		orgLogger := logger.WithField("organization_id", orgID)
		ok, err := s.gate.ShouldRunTask(ctx, app.TaskRequest{
			Name:           job.Name,
			FlagKey:        job.FlagKey,
			Cadence:        job.Cadence,
			CronExpression: job.CronSpec,
			OrganizationID: orgID,
			Now:            now,
		}, s.overrides)
		if err != nil {
			orgLogger.WithError(err).Error("Failed to evaluate task gate")
			continue
		}
		if !ok {
			continue
		}

		summary, err := job.Run(ctx, orgID)
		if err != nil {
			orgLogger.WithError(err).Error("Job run failed")
			continue
		}
		ran++
		orgLogger.WithFields(logrus.Fields{
			"processed": summary.Processed,
			"failed":    summary.Failed,
		}).Info("Job run finished")
	}
	logger.WithField("organizations_run", ran).Info("Job tick finished")
}

// ticksInsideWindow reports whether any minute the spec fires at lies within
// the execution window that opens at the top of each trigger hour.
func ticksInsideWindow(spec *cron.SpecSchedule) bool {
	lastMinute := uint(schedule.ExecutionWindow / time.Minute)
	windowMinutes := uint64(1)<<(lastMinute+1) - 1
	return spec.Minute&windowMinutes != 0
}

func (s *JobScheduler) Start() {
	s.logger.Info("Starting job scheduler...")
	s.cronEngine.Start()
}

func (s *JobScheduler) Stop() {
	s.logger.Info("Stopping job scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Job scheduler gracefully stopped.")
}
