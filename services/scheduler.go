// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartRankingScheduler refreshes the leaderboard snapshot on a fixed
// interval so the public endpoint does not rescan profiles per request.
func (s *GamificationService) StartRankingScheduler(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	sched, _ := gocron.NewScheduler()
	sched.Start()

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		ranked, err := s.GetUserRanking(ctx, 100)
		if err != nil {
			log.Printf("[Scheduler] Leaderboard refresh failed: %v", err)
			return
		}

		s.mu.Lock()
		s.rankingCache = ranked
		s.rankingAt = time.Now()
		s.mu.Unlock()
	}

	// Warm the cache right away, then on every tick.
	go refresh()
	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(refresh),
	)
}
