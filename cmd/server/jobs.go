package main

import (
	"context"

	paymentapp "github.com/propcore/backend/internal/application/payment"
	tenancyapp "github.com/propcore/backend/internal/application/tenancy"
	"github.com/propcore/backend/internal/infrastructure/config"
	"github.com/propcore/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// Sweep job names, used in logs and metrics
const (
	jobRentReminders = "rent_reminders"
	jobLateTenants   = "late_tenants"
	jobArchiveDead   = "archive_dead_letters"
)

type reminderSweeper interface {
	Sweep(ctx context.Context) (paymentapp.ReminderSweepResult, error)
}

type lateSweeper interface {
	Sweep(ctx context.Context) (tenancyapp.LateSweepResult, error)
}

type deadLetterArchiver interface {
	Archive(ctx context.Context) (int, error)
}

type sweepJobs struct {
	reminders reminderSweeper
	late      lateSweeper
	archiver  deadLetterArchiver
}

// jobs adapts the sweep services to scheduler jobs. Each job reports the
// number of records it changed.
func (s sweepJobs) jobs(cfg config.SchedulerConfig) []scheduler.Job {
	return []scheduler.Job{
		{
			Name:     jobRentReminders,
			Interval: cfg.ReminderSweepInterval,
			Run: func(ctx context.Context) (int, error) {
				res, err := s.reminders.Sweep(ctx)
				return res.Sent + res.Cancelled, err
			},
		},
		{
			Name:     jobLateTenants,
			Interval: cfg.LateSweepInterval,
			Run: func(ctx context.Context) (int, error) {
				res, err := s.late.Sweep(ctx)
				return res.MadeLate, err
			},
		},
		{
			Name:     jobArchiveDead,
			Interval: cfg.DeadLetterSweepInterval,
			Run:      s.archiver.Archive,
		},
	}
}

func newScheduler(cfg *config.Config, log *zap.Logger, sweeps sweepJobs) (*scheduler.Scheduler, error) {
	schedulerConfig := scheduler.DefaultConfig()
	schedulerConfig.JobTimeout = cfg.Scheduler.JobTimeout
	return scheduler.New(schedulerConfig, log, sweeps.jobs(cfg.Scheduler)...)
}
