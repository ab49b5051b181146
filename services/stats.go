package services

import (
	"context"
	"sort"
	"time"

	"autvision-gamification/models"
)

// RankedUser is one leaderboard row, decorated with its derived level.
type RankedUser struct {
	Position     int                    `json:"position"`
	ID           string                 `json:"id"`
	DisplayName  string                 `json:"display_name"`
	Email        string                 `json:"email"`
	XP           int64                  `json:"xp"`
	Tokens       int64                  `json:"tokens"`
	Streak       int                    `json:"streak"`
	CurrentLevel models.LevelDefinition `json:"current_level"`
}

// GlobalStats is the admin-panel aggregate view. Computed by folding
// over every profile row, fine for an admin-only, low-cardinality
// query; revisit if the user count grows past what one scan tolerates.
type GlobalStats struct {
	TotalUsers             int          `json:"total_users"`
	ActiveUsers            int          `json:"active_users"`
	AverageXP              float64      `json:"average_xp"`
	TotalXPDistributed     int64        `json:"total_xp_distributed"`
	TotalTokensDistributed int64        `json:"total_tokens_distributed"`
	MissionCompletions     int          `json:"mission_completions"`
	BadgeEarnings          int          `json:"badge_earnings"`
	TopUsers               []RankedUser `json:"top_users"`
}

const topUsersCount = 10

// GetGlobalStats folds all profile rows into the aggregate admin view.
func (s *GamificationService) GetGlobalStats(ctx context.Context) (*GlobalStats, error) {
	profiles, err := s.Store.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	stats := &GlobalStats{}
	for i := range profiles {
		p := fillDefaults(&profiles[i])
		stats.TotalUsers++
		if p.XP > 0 {
			stats.ActiveUsers++
		}
		stats.TotalXPDistributed += p.XP
		stats.TotalTokensDistributed += p.Tokens
		stats.MissionCompletions += len(p.CompletedMissionIDs)
		stats.BadgeEarnings += len(p.EarnedBadgeIDs)
	}
	if stats.TotalUsers > 0 {
		stats.AverageXP = float64(stats.TotalXPDistributed) / float64(stats.TotalUsers)
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].XP > profiles[j].XP
	})
	limit := topUsersCount
	if len(profiles) < limit {
		limit = len(profiles)
	}
	stats.TopUsers = rankProfiles(profiles[:limit])

	return stats, nil
}

// GetUserRanking returns the top users by XP. Limit is clamped to
// [1, 100] with a default of 10.
func (s *GamificationService) GetUserRanking(ctx context.Context, limit int) ([]RankedUser, error) {
	if limit <= 0 {
		limit = topUsersCount
	}
	if limit > 100 {
		limit = 100
	}

	profiles, err := s.Store.TopProfilesByXP(ctx, limit)
	if err != nil {
		return nil, err
	}
	return rankProfiles(profiles), nil
}

func rankProfiles(profiles []models.UserProfile) []RankedUser {
	ranked := make([]RankedUser, len(profiles))
	for i := range profiles {
		p := fillDefaults(&profiles[i])
		ranked[i] = RankedUser{
			Position:     i + 1,
			ID:           p.ID,
			DisplayName:  p.DisplayName,
			Email:        p.Email,
			XP:           p.XP,
			Tokens:       p.Tokens,
			Streak:       p.Streak,
			CurrentLevel: models.LevelFor(p.XP),
		}
	}
	return ranked
}

// InitializeDefaults seeds the mission and badge catalog tables when
// they are empty. Safe to call on every boot or admin-panel load: the
// probe is a count, and the bulk insert skips existing ids anyway.
func (s *GamificationService) InitializeDefaults(ctx context.Context) error {
	missions, err := s.Store.CountMissions(ctx)
	if err != nil {
		return err
	}
	if missions == 0 {
		if err := s.Store.SeedMissions(ctx, models.DefaultMissions); err != nil {
			return err
		}
		s.Events.Event("catalog_seeded", map[string]interface{}{
			"table": "missions", "count": len(models.DefaultMissions),
		})
	}

	badges, err := s.Store.CountBadges(ctx)
	if err != nil {
		return err
	}
	if badges == 0 {
		if err := s.Store.SeedBadges(ctx, models.DefaultBadges); err != nil {
			return err
		}
		s.Events.Event("catalog_seeded", map[string]interface{}{
			"table": "badges", "count": len(models.DefaultBadges),
		})
	}
	return nil
}

// CachedRanking returns the scheduler-refreshed leaderboard snapshot,
// falling back to a live query when the cache is empty or stale.
func (s *GamificationService) CachedRanking(ctx context.Context, limit int) ([]RankedUser, error) {
	s.mu.RLock()
	cache, at := s.rankingCache, s.rankingAt
	s.mu.RUnlock()

	if len(cache) >= limit && limit > 0 && time.Since(at) < 5*time.Minute {
		return cache[:limit], nil
	}
	return s.GetUserRanking(ctx, limit)
}
