package services

import (
	"context"
	"time"

	"autvision-gamification/models"
)

// WelcomeTokenBonus is granted once, on the full-profile bootstrap tier.
const WelcomeTokenBonus = 100

// insertStrategy shapes the desired profile into a column payload for
// one bootstrap tier. Tiers are tried in order, widest first; a stricter
// live schema that rejects unknown columns still accepts a later tier.
type insertStrategy struct {
	name string
	// welcomeBonus marks the one tier whose payload persists the
	// welcome tokens. Narrow tiers write a zero balance.
	welcomeBonus bool
	payload      func(p *models.UserProfile) map[string]interface{}
}

var insertStrategies = []insertStrategy{
	{
		name:         "full",
		welcomeBonus: true,
		payload: func(p *models.UserProfile) map[string]interface{} {
			return map[string]interface{}{
				"email":                 p.Email,
				"display_name":          p.DisplayName,
				"role":                  p.Role,
				"xp":                    p.XP,
				"tokens":                p.Tokens,
				"level":                 p.Level,
				"completed_mission_ids": p.CompletedMissionIDs,
				"earned_badge_ids":      p.EarnedBadgeIDs,
				"streak":                p.Streak,
				"total_interactions":    p.TotalInteractions,
				"last_login":            p.LastLogin,
				"created_date":          p.CreatedDate,
			}
		},
	},
	{
		name: "minimal",
		payload: func(p *models.UserProfile) map[string]interface{} {
			return map[string]interface{}{
				"email":        p.Email,
				"display_name": p.DisplayName,
				"created_date": p.CreatedDate,
			}
		},
	},
	{
		name: "identifier-only",
		payload: func(p *models.UserProfile) map[string]interface{} {
			return map[string]interface{}{}
		},
	},
}

// CreateUserProfile bootstraps the user's row, trying each insert tier
// until one succeeds. The insert itself is conditional on the id, so a
// concurrent bootstrap loses quietly and the read-back converges both
// callers on the winner's row. Returns nil when every tier fails; the
// caller decides whether to degrade (GetUserProgress does).
func (s *GamificationService) CreateUserProfile(ctx context.Context, userID string) *models.UserProfile {
	desired := s.defaultProfile(userID)

	for _, strat := range insertStrategies {
		if err := s.Store.InsertProfile(ctx, userID, strat.payload(desired)); err != nil {
			s.Events.Event("bootstrap_tier_failed", map[string]interface{}{
				"user_id": userID, "tier": strat.name, "error": err.Error(),
			})
			continue
		}

		s.Events.Event("profile_created", map[string]interface{}{
			"user_id": userID, "tier": strat.name,
		})

		// Read back so both sides of a bootstrap race see the same row.
		// Narrow tiers also come back here with their persisted shape.
		if stored, err := s.Store.GetProfile(ctx, userID); err == nil {
			return fillDefaults(stored)
		}
		// Read-back failed: report only what this tier actually wrote.
		// A narrow tier never persisted the welcome bonus, so the caller
		// must not be promised a spendable balance.
		fallback := *desired
		if !strat.welcomeBonus {
			fallback.Tokens = 0
		}
		return fillDefaults(&fallback)
	}

	s.Events.Event("bootstrap_failed", map[string]interface{}{"user_id": userID})
	return nil
}

// defaultProfile is the fully populated in-memory shape for a brand-new
// user: level 1, zero XP, welcome token bonus, empty award sets.
func (s *GamificationService) defaultProfile(userID string) *models.UserProfile {
	now := time.Now()
	return &models.UserProfile{
		ID:                  userID,
		Role:                "user",
		XP:                  0,
		Tokens:              WelcomeTokenBonus,
		Level:               1,
		CompletedMissionIDs: models.StringList{},
		EarnedBadgeIDs:      models.StringList{},
		Streak:              0,
		TotalInteractions:   0,
		LastLogin:           &now,
		CreatedDate:         now,
	}
}

// fillDefaults normalizes a row that may have been created by a narrow
// bootstrap tier or by an older schema: callers always see a fully
// populated profile no matter which columns actually exist.
func fillDefaults(p *models.UserProfile) *models.UserProfile {
	if p.CompletedMissionIDs == nil {
		p.CompletedMissionIDs = models.StringList{}
	}
	if p.EarnedBadgeIDs == nil {
		p.EarnedBadgeIDs = models.StringList{}
	}
	if p.Level < 1 {
		p.Level = models.LevelFor(p.XP).Level
	}
	if p.Role == "" {
		p.Role = "user"
	}
	if p.CreatedDate.IsZero() {
		p.CreatedDate = time.Now()
	}
	return p
}
