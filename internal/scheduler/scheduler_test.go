package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentacar-backend/internal/config"
	"rentacar-backend/internal/jobs"
)

func TestNewScheduler(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.ExpireUnpaidReservations = "0 * * * * *"
	cfg.Scheduler.CompleteFinishedReservations = "0 0 * * * *"

	s, err := NewScheduler(jobs.NewJobRunner(nil, &jobs.Services{}, cfg), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries())

	s.Start()
	s.Stop()
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.ExpireUnpaidReservations = "every minute"
	cfg.Scheduler.CompleteFinishedReservations = "0 0 * * * *"

	_, err := NewScheduler(jobs.NewJobRunner(nil, &jobs.Services{}, cfg), time.UTC)
	assert.Error(t, err)
}
