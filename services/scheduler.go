package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartRankScheduler recomputes leaderboard ranks every interval. The caller
// owns the returned scheduler and must Shutdown it.
func (s *LeaderboardService) StartRankScheduler(interval time.Duration) (gocron.Scheduler, error) {
	if interval <= 0 {
		interval = time.Minute
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if _, err := s.RecomputeRanks(ctx); err != nil {
				s.log.Error("[Scheduler] rank job failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	s.log.Info("[Scheduler] rank job started", "interval", interval.String())
	return sched, nil
}
