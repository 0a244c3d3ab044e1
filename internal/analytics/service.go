// Package analytics aggregates workflow closure data into supervisor and
// performance reports. Pure reads: nothing here mutates workflow state.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"sstcore/internal/apperrors"
	"sstcore/internal/caching"
	"sstcore/internal/models"
	"sstcore/internal/repositories"
	"sstcore/internal/store"
)

// Window bounds a report. A zero To means "now".
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (w Window) contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

type SupervisorMetric struct {
	Supervisor      string  `json:"supervisor"`
	ClosedCount     int     `json:"closed_count"`
	AvgClosureHours float64 `json:"avg_closure_hours"`
}

// SupervisorReport aggregates closures within a window grouped by closer.
// An empty window yields zeroed totals and no rows, never an error.
type SupervisorReport struct {
	Window      Window             `json:"window"`
	TotalClosed int                `json:"total_closed"`
	OpenBacklog int                `json:"open_backlog"`
	Supervisors []SupervisorMetric `json:"supervisors"`
}

type UserPerformance struct {
	Email     string `json:"email"`
	Submitted int    `json:"submitted"`
	Closed    int    `json:"closed"`
	Actions   int    `json:"actions"`
}

type PerformanceReport struct {
	Window         Window            `json:"window"`
	TotalSubmitted int               `json:"total_submitted"`
	TotalClosed    int               `json:"total_closed"`
	TotalActions   int               `json:"total_actions"`
	Users          []UserPerformance `json:"users"`
}

type Service struct {
	records   repositories.FormRecordRepository
	actions   repositories.ManagementActionRepository
	cache     caching.CacheService
	reportTTL time.Duration
	logger    zerolog.Logger
}

func NewService(records repositories.FormRecordRepository, actions repositories.ManagementActionRepository, cache caching.CacheService, reportTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		records:   records,
		actions:   actions,
		cache:     cache,
		reportTTL: reportTTL,
		logger:    logger.With().Str("component", "analytics").Logger(),
	}
}

func normalizeWindow(op string, w Window) (Window, error) {
	if w.To.IsZero() {
		w.To = time.Now()
	}
	if w.To.Before(w.From) {
		return w, apperrors.Invalid(op, "window end precedes its start")
	}
	return w, nil
}

func (s *Service) SupervisorMetrics(ctx context.Context, h store.Handle, w Window) (*SupervisorReport, error) {
	const op = "analytics.SupervisorMetrics"

	w, err := normalizeWindow(op, w)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("supervisors:%d:%d", w.From.Unix(), w.To.Unix())
	if data, err := s.cache.GetReport(ctx, h.TenantID(), cacheKey); err == nil && data != nil {
		var report SupervisorReport
		if err := json.Unmarshal(data, &report); err == nil {
			return &report, nil
		}
	}

	records, err := s.records.ListAll(ctx, h)
	if err != nil {
		return nil, err
	}

	report := &SupervisorReport{Window: w, Supervisors: []SupervisorMetric{}}
	type agg struct {
		count int
		hours float64
	}
	bySupervisor := make(map[string]*agg)

	for _, r := range records {
		if r.Status != models.RecordClosed {
			report.OpenBacklog++
			continue
		}
		if r.Closure == nil || !w.contains(r.Closure.ClosedAt) {
			continue
		}
		report.TotalClosed++
		a := bySupervisor[r.Closure.ClosedBy]
		if a == nil {
			a = &agg{}
			bySupervisor[r.Closure.ClosedBy] = a
		}
		a.count++
		a.hours += r.Closure.ClosedAt.Sub(r.CreatedAt).Hours()
	}

	for supervisor, a := range bySupervisor {
		report.Supervisors = append(report.Supervisors, SupervisorMetric{
			Supervisor:      supervisor,
			ClosedCount:     a.count,
			AvgClosureHours: a.hours / float64(a.count),
		})
	}
	sort.Slice(report.Supervisors, func(i, j int) bool {
		return report.Supervisors[i].ClosedCount > report.Supervisors[j].ClosedCount
	})

	s.cacheReport(ctx, h, cacheKey, report)
	return report, nil
}

func (s *Service) PerformanceReport(ctx context.Context, h store.Handle, w Window) (*PerformanceReport, error) {
	const op = "analytics.PerformanceReport"

	w, err := normalizeWindow(op, w)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("performance:%d:%d", w.From.Unix(), w.To.Unix())
	if data, err := s.cache.GetReport(ctx, h.TenantID(), cacheKey); err == nil && data != nil {
		var report PerformanceReport
		if err := json.Unmarshal(data, &report); err == nil {
			return &report, nil
		}
	}

	records, err := s.records.ListAll(ctx, h)
	if err != nil {
		return nil, err
	}
	actions, err := s.actions.ListAll(ctx, h)
	if err != nil {
		return nil, err
	}

	report := &PerformanceReport{Window: w, Users: []UserPerformance{}}
	byUser := make(map[string]*UserPerformance)
	lookup := func(email string) *UserPerformance {
		u := byUser[email]
		if u == nil {
			u = &UserPerformance{Email: email}
			byUser[email] = u
		}
		return u
	}

	for _, r := range records {
		if w.contains(r.CreatedAt) {
			lookup(r.SubmittedBy).Submitted++
			report.TotalSubmitted++
		}
		if r.Status == models.RecordClosed && r.Closure != nil && w.contains(r.Closure.ClosedAt) {
			lookup(r.Closure.ClosedBy).Closed++
			report.TotalClosed++
		}
	}
	for _, a := range actions {
		if w.contains(a.CreatedAt) {
			lookup(a.CreatedBy).Actions++
			report.TotalActions++
		}
	}

	for _, u := range byUser {
		report.Users = append(report.Users, *u)
	}
	sort.Slice(report.Users, func(i, j int) bool {
		return report.Users[i].Email < report.Users[j].Email
	})

	s.cacheReport(ctx, h, cacheKey, report)
	return report, nil
}

func (s *Service) cacheReport(ctx context.Context, h store.Handle, key string, report any) {
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.SetReport(ctx, h.TenantID(), key, data, s.reportTTL); err != nil {
		s.logger.Warn().Err(err).Str("report", key).Msg("failed to cache report")
	}
}
