package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Matchmaker drives the periodic matchmaking sweep. The core logic lives
// in GameManager.DrainReadyUsers; this is only the scheduler around it.
type Matchmaker struct {
	logger   *slog.Logger
	manager  *GameManager
	interval time.Duration

	scheduler gocron.Scheduler
}

func NewMatchmaker(logger *slog.Logger, manager *GameManager, interval time.Duration) *Matchmaker {
	return &Matchmaker{
		logger:   logger,
		manager:  manager,
		interval: interval,
	}
}

// Start schedules the sweep at the configured interval.
func (that *Matchmaker) Start(ctx context.Context) error {
	log := that.logger.With("component", "matchmaker")

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(that.interval),
		gocron.NewTask(func() {
			if sweepErr := that.manager.DrainReadyUsers(ctx); sweepErr != nil {
				log.Error("matchmaking sweep failed", "error", sweepErr)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule matchmaking sweep: %w", err)
	}

	scheduler.Start()
	that.scheduler = scheduler

	log.Info("matchmaker started", "interval", that.interval)

	return nil
}

// Stop shuts the scheduler down and waits for a running sweep to finish.
func (that *Matchmaker) Stop() error {
	if that.scheduler == nil {
		return nil
	}

	if err := that.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}

	return nil
}
