package services

import (
	"context"
	"log"
	"time"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/config"
	"github.com/go-co-op/gocron/v2"
)

// StartResetScheduler runs the weekly reset at 00:00 UTC on the configured
// weekday and the monthly reset on the 1st at 00:05 UTC. The jobs are
// idempotent and serialized against applies by the versioned ledger saves.
// The returned scheduler should be shut down on exit.
func StartResetScheduler(points *PointsService, leaderboard *LeaderboardService, cfg config.PointsConfig) (gocron.Scheduler, error) {
	weekday, err := cfg.WeeklyResetWeekday()
	if err != nil {
		return nil, err
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.WeeklyJob(1, gocron.NewWeekdays(weekday), gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			count, err := points.ResetWeekly(ctx)
			if err != nil {
				log.Printf("[Scheduler] weekly reset failed: %v", err)
				return
			}
			leaderboard.Invalidate()
			log.Printf("[Scheduler] weekly points reset on %d ledgers", count)
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.MonthlyJob(1, gocron.NewDaysOfTheMonth(1), gocron.NewAtTimes(gocron.NewAtTime(0, 5, 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			count, err := points.ResetMonthly(ctx)
			if err != nil {
				log.Printf("[Scheduler] monthly reset failed: %v", err)
				return
			}
			leaderboard.Invalidate()
			log.Printf("[Scheduler] monthly points reset on %d ledgers", count)
		}),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	return scheduler, nil
}
