package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rentacar-backend/internal/config"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
	"rentacar-backend/internal/service"
)

// Job names accepted by the cronjob -run-once flag
const (
	JobExpireUnpaidReservations     = "expire-unpaid-reservations"
	JobCompleteFinishedReservations = "complete-finished-reservations"
	JobAll                          = "all"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	reservationRepo repository.ReservationRepository
	services        *Services
	config          *config.Config
	now             func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Reservation service.ReservationService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(reservationRepo repository.ReservationRepository, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		reservationRepo: reservationRepo,
		services:        services,
		config:          cfg,
		now:             time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	start := time.Now()
	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
}

// RunAllJobs runs every job once (for manual execution)
func (jr *JobRunner) RunAllJobs() {
	jr.ExpireUnpaidReservations()
	jr.CompleteFinishedReservations()
}

// Run executes one job by name. It reports false for an unknown name.
func (jr *JobRunner) Run(name string) bool {
	switch name {
	case JobExpireUnpaidReservations:
		jr.ExpireUnpaidReservations()
	case JobCompleteFinishedReservations:
		jr.CompleteFinishedReservations()
	case JobAll:
		jr.RunAllJobs()
	default:
		return false
	}
	return true
}

func (jr *JobRunner) systemActor() string {
	return jr.config.Reservation.SystemActor
}

// jobContext tags one job run so its audit entries share a request id
func jobContext(jobName string) context.Context {
	return context.WithValue(context.Background(), logger.RequestIDKey, jobName+"-"+uuid.NewString()[:8])
}
