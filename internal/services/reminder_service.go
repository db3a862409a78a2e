package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"panini/internal/core"
	"panini/internal/storage"
)

// ReminderService manages calendar reminders.
type ReminderService struct {
	repo  *storage.SQLiteRepository
	newID func() string
}

// NewReminderService creates a reminder service.
func NewReminderService(repo *storage.SQLiteRepository) *ReminderService {
	return &ReminderService{repo: repo, newID: uuid.NewString}
}

func normalizeReminder(r core.Reminder) core.Reminder {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	if r.Repeat == "" {
		r.Repeat = core.RepeatNever
	}
	if r.AllDay {
		r.Date = core.DateOf(r.Date).Time
	}
	return r
}

// Create validates r and stores it under a new id.
func (s *ReminderService) Create(ctx context.Context, r core.Reminder) (core.Reminder, error) {
	r = normalizeReminder(r)
	if errs := r.Validate(); len(errs) > 0 {
		return core.Reminder{}, errs
	}
	r.ID = s.newID()
	if err := s.repo.CreateReminder(ctx, r); err != nil {
		return core.Reminder{}, err
	}
	return r, nil
}

// Update replaces an existing reminder.
func (s *ReminderService) Update(ctx context.Context, r core.Reminder) (core.Reminder, error) {
	r = normalizeReminder(r)
	if errs := r.Validate(); len(errs) > 0 {
		return core.Reminder{}, errs
	}
	if err := s.repo.UpdateReminder(ctx, r); err != nil {
		return core.Reminder{}, err
	}
	return r, nil
}

// Delete removes a reminder.
func (s *ReminderService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteReminder(ctx, id)
}

// Get returns core.ErrNotFound for unknown ids.
func (s *ReminderService) Get(ctx context.Context, id string) (core.Reminder, error) {
	return s.repo.GetReminder(ctx, id)
}

// List returns every reminder ordered by date.
func (s *ReminderService) List(ctx context.Context) ([]core.Reminder, error) {
	return s.repo.ListReminders(ctx)
}

// Upcoming selects the reminders shown on the dashboard for the day of now.
func (s *ReminderService) Upcoming(ctx context.Context, now time.Time) ([]core.Reminder, error) {
	today := core.DateOf(now).Time

	var oneShot, recurring []core.Reminder
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		oneShot, err = s.repo.UpcomingOneShotReminders(gctx, today, core.OneShotReminderLimit)
		return err
	})
	g.Go(func() (err error) {
		recurring, err = s.repo.RecurringReminders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("upcoming reminders: %w", err)
	}

	candidates := append(oneShot, recurring...)
	return core.SelectUpcoming(candidates, today, core.UpcomingReminderLimit), nil
}
