// Package scheduler runs the periodic jobs of the service.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hardware-management-api/internal/auth"
	"hardware-management-api/internal/models"
	"hardware-management-api/internal/notify"
	"hardware-management-api/internal/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	// PruneSchedule is how often expired revocations are dropped
	PruneSchedule = "@every 15m"
	// ReminderWindow is how far ahead of a joining date HR is reminded
	ReminderWindow = 7
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	store    store.Store
	revoked  *auth.RevocationList
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time

	reminderSpec string
}

// New creates a scheduler. reminderSpec is a standard five-field cron
// expression; an empty value disables onboarding reminders.
func New(st store.Store, revoked *auth.RevocationList, notifier notify.Notifier, reminderSpec string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Scheduler{
		cron:         cron.New(),
		store:        st,
		revoked:      revoked,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
		reminderSpec: reminderSpec,
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start() error {
	if s.revoked != nil {
		if _, err := s.cron.AddFunc(PruneSchedule, func() { s.PruneRevocations() }); err != nil {
			return fmt.Errorf("schedule revocation pruning: %w", err)
		}
	}
	if s.reminderSpec != "" {
		if _, err := s.cron.AddFunc(s.reminderSpec, s.runReminders); err != nil {
			return fmt.Errorf("schedule onboarding reminders %q: %w", s.reminderSpec, err)
		}
	}

	s.logger.Info("starting scheduler", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("stopping scheduler")
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PruneRevocations drops revoked tokens that have expired anyway
func (s *Scheduler) PruneRevocations() int {
	n := s.revoked.Prune(s.now())
	if n > 0 {
		s.logger.Debug("pruned revoked tokens", zap.Int("count", n), zap.Int("remaining", s.revoked.Len()))
	}
	return n
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	n, err := s.SendOnboardingReminders(ctx)
	if err != nil {
		s.logger.Error("onboarding reminders failed", zap.Error(err))
		return
	}
	s.logger.Info("onboarding reminders sent", zap.Int("count", n))
}

// DueOnboarding returns the pending new-hire requests joining within the
// reminder window, soonest first
func DueOnboarding(requests []models.AssetRequest, now time.Time) []models.OnboardingEntry {
	var due []models.OnboardingEntry
	for _, r := range requests {
		days, ok := r.DaysUntil(now)
		if !ok || days < 0 || days > ReminderWindow {
			continue
		}
		due = append(due, models.OnboardingEntry{Request: r, DaysUntilJoin: days})
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].DaysUntilJoin < due[j].DaysUntilJoin })
	return due
}

// SendOnboardingReminders notifies about every new hire joining soon whose
// request is still pending
func (s *Scheduler) SendOnboardingReminders(ctx context.Context) (int, error) {
	requests, err := s.store.ListRequests(ctx, store.RequestFilter{
		Status:      models.RequestPending,
		NewHireOnly: true,
	})
	if err != nil {
		return 0, fmt.Errorf("list new-hire requests: %w", err)
	}

	sent := 0
	for _, entry := range DueOnboarding(requests, s.now()) {
		r := entry.Request
		err := s.notifier.Notify(ctx, notify.Event{
			Type:    notify.OnboardingReminder,
			Message: fmt.Sprintf("%s joins in %d day(s) and the %s request is still pending", r.EmployeeName, entry.DaysUntilJoin, r.Category),
			Actor:   r.RequestedBy,
			Metadata: map[string]string{
				"request_id":   fmt.Sprint(r.ID),
				"joining_date": r.JoiningDate,
			},
		})
		if err != nil {
			s.logger.Warn("onboarding reminder failed", zap.Int64("request_id", r.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}
