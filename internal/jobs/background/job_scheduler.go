// Package background runs the periodic maintenance jobs: report precompute
// per tenant and overdue management-action alerts.
package background

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sstcore/internal/analytics"
	"sstcore/internal/models"
	"sstcore/internal/repositories"
	"sstcore/internal/store"
)

const (
	tenantListLimit   = 1000
	reportLookback    = 30 * 24 * time.Hour
	tenantConcurrency = 5
)

type JobScheduler struct {
	scheduler gocron.Scheduler
	analytics *analytics.Service
	tenants   repositories.TenantRepository
	actions   repositories.ManagementActionRepository
	logger    zerolog.Logger

	mu   sync.RWMutex
	jobs map[string]gocron.Job
}

func NewJobScheduler(svc *analytics.Service, tenants repositories.TenantRepository, actions repositories.ManagementActionRepository, logger zerolog.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		analytics: svc,
		tenants:   tenants,
		actions:   actions,
		logger:    logger.With().Str("component", "scheduler").Logger(),
		jobs:      make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.Info().Int("jobs", len(js.jobs)).Msg("starting background scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info().Msg("stopping background scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	reportsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.precomputeReports, context.Background()),
		gocron.WithName("report-precompute"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		js.logger.Error().Err(err).Msg("could not register report precompute job")
	} else {
		js.jobs["report-precompute"] = reportsJob
	}

	overdueJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.flagOverdueActions, context.Background()),
		gocron.WithName("overdue-actions"),
	)
	if err != nil {
		js.logger.Error().Err(err).Msg("could not register overdue actions job")
	} else {
		js.jobs["overdue-actions"] = overdueJob
	}
}

// precomputeReports warms the report cache for every active tenant so
// dashboard loads hit Redis instead of scanning records.
func (js *JobScheduler) precomputeReports(ctx context.Context) error {
	tenants, err := js.tenants.List(ctx, tenantListLimit, 0)
	if err != nil {
		js.logger.Error().Err(err).Msg("could not list tenants for report precompute")
		return err
	}

	window := analytics.Window{
		From: time.Now().Add(-reportLookback),
		To:   time.Now(),
	}

	semaphore := make(chan struct{}, tenantConcurrency)
	var wg sync.WaitGroup
	for _, tenant := range tenants {
		if tenant.Status != models.TenantActive {
			continue
		}

		wg.Add(1)
		go func(tenantID uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			handle, err := store.NewHandle(tenantID)
			if err != nil {
				return
			}
			if _, err := js.analytics.SupervisorMetrics(ctx, handle, window); err != nil {
				js.logger.Warn().Err(err).Str("tenant", tenantID.String()).Msg("supervisor metrics precompute failed")
			}
			if _, err := js.analytics.PerformanceReport(ctx, handle, window); err != nil {
				js.logger.Warn().Err(err).Str("tenant", tenantID.String()).Msg("performance report precompute failed")
			}
		}(tenant.ID)
	}
	wg.Wait()

	js.logger.Info().Int("tenants", len(tenants)).Msg("report precompute completed")
	return nil
}

// flagOverdueActions logs pending management actions whose due date has
// passed, per tenant.
func (js *JobScheduler) flagOverdueActions(ctx context.Context) error {
	tenants, err := js.tenants.List(ctx, tenantListLimit, 0)
	if err != nil {
		js.logger.Error().Err(err).Msg("could not list tenants for overdue check")
		return err
	}

	now := time.Now()
	for _, tenant := range tenants {
		if tenant.Status != models.TenantActive {
			continue
		}
		handle, err := store.NewHandle(tenant.ID)
		if err != nil {
			continue
		}

		actions, err := js.actions.ListAll(ctx, handle)
		if err != nil {
			js.logger.Warn().Err(err).Str("tenant", tenant.ID.String()).Msg("could not list actions for overdue check")
			continue
		}

		overdue := 0
		for _, action := range actions {
			if !action.Completed && !action.DueDate.IsZero() && action.DueDate.Before(now) {
				overdue++
			}
		}
		if overdue > 0 {
			js.logger.Warn().Str("tenant", tenant.Name).Int("overdue", overdue).Msg("tenant has overdue management actions")
		}
	}
	return nil
}
