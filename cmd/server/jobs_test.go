package main

import (
	"context"
	"errors"
	"testing"
	"time"

	paymentapp "github.com/propcore/backend/internal/application/payment"
	tenancyapp "github.com/propcore/backend/internal/application/tenancy"
	"github.com/propcore/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubReminders struct {
	res paymentapp.ReminderSweepResult
	err error
}

func (s stubReminders) Sweep(context.Context) (paymentapp.ReminderSweepResult, error) {
	return s.res, s.err
}

type stubLate struct{ res tenancyapp.LateSweepResult }

func (s stubLate) Sweep(context.Context) (tenancyapp.LateSweepResult, error) { return s.res, nil }

type stubArchiver struct{ n int }

func (s stubArchiver) Archive(context.Context) (int, error) { return s.n, nil }

func TestSweepJobs(t *testing.T) {
	sweeps := sweepJobs{
		reminders: stubReminders{res: paymentapp.ReminderSweepResult{Due: 5, Sent: 3, Cancelled: 1, Failed: 1}},
		late:      stubLate{res: tenancyapp.LateSweepResult{Checked: 10, MadeLate: 2}},
		archiver:  stubArchiver{n: 7},
	}
	cfg := config.SchedulerConfig{
		ReminderSweepInterval:   time.Hour,
		LateSweepInterval:       6 * time.Hour,
		DeadLetterSweepInterval: 24 * time.Hour,
	}

	jobs := sweeps.jobs(cfg)
	require.Len(t, jobs, 3)

	want := map[string]struct {
		interval  time.Duration
		processed int
	}{
		jobRentReminders: {time.Hour, 4},
		jobLateTenants:   {6 * time.Hour, 2},
		jobArchiveDead:   {24 * time.Hour, 7},
	}
	for _, job := range jobs {
		w, ok := want[job.Name]
		require.True(t, ok, job.Name)
		assert.Equal(t, w.interval, job.Interval, job.Name)
		n, err := job.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, w.processed, n, job.Name)
	}
}

func TestSweepJobs_PropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	sweeps := sweepJobs{
		reminders: stubReminders{err: boom},
		late:      stubLate{},
		archiver:  stubArchiver{},
	}
	jobs := sweeps.jobs(config.SchedulerConfig{ReminderSweepInterval: time.Minute, LateSweepInterval: time.Minute, DeadLetterSweepInterval: time.Minute})
	_, err := jobs[0].Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestNewScheduler(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		ReminderSweepInterval:   time.Hour,
		LateSweepInterval:       time.Hour,
		DeadLetterSweepInterval: time.Hour,
		JobTimeout:              time.Minute,
	}}
	s, err := newScheduler(cfg, zap.NewNop(), sweepJobs{
		reminders: stubReminders{},
		late:      stubLate{},
		archiver:  stubArchiver{},
	})
	require.NoError(t, err)
	require.NotNil(t, s)
}
