package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"autvision-gamification/models"
	"autvision-gamification/store"
)

// Data-integrity errors: a caller referenced a catalog entry that does
// not exist. These indicate a config or caller bug and are never masked.
var (
	ErrUnknownMission = errors.New("unknown mission")
	ErrUnknownBadge   = errors.New("unknown badge")
)

// GamificationService is the stateless facade over the profile store.
// All invariants (monotonic XP, at-most-once awards, guarded spends,
// idempotent bootstrap) live here; the store only moves rows.
type GamificationService struct {
	Store  store.ProfileStore
	Events EventLogger

	mu           sync.RWMutex
	rankingCache []RankedUser
	rankingAt    time.Time
}

func NewGamificationService(st store.ProfileStore, events EventLogger) *GamificationService {
	if events == nil {
		events = NewLogEmitter()
	}
	return &GamificationService{Store: st, Events: events}
}

// XPGrantResult reports the outcome of an XP/token grant so callers can
// surface level-up notifications.
type XPGrantResult struct {
	NewXP     int64                  `json:"new_xp"`
	NewTokens int64                  `json:"new_tokens"`
	LeveledUp bool                   `json:"leveled_up"`
	NewLevel  models.LevelDefinition `json:"new_level"`
}

// MissionRewards is what a mission completion paid out.
type MissionRewards struct {
	XP     int64 `json:"xp"`
	Tokens int64 `json:"tokens"`
}

// MissionResult is the structured outcome of CompleteMission. A repeat
// completion is Success=false with a message, not an error.
type MissionResult struct {
	Success bool            `json:"success"`
	Mission *models.Mission `json:"mission,omitempty"`
	Rewards *MissionRewards `json:"rewards,omitempty"`
	Message string          `json:"message,omitempty"`
}

// BadgeResult is the structured outcome of AwardBadge.
type BadgeResult struct {
	Success bool   `json:"success"`
	BadgeID string `json:"badge_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// SpendResult is the structured outcome of SpendTokens.
type SpendResult struct {
	Success   bool   `json:"success"`
	NewTokens int64  `json:"new_tokens,omitempty"`
	Message   string `json:"message,omitempty"`
}

// GetUserProgress returns the user's decorated progress, bootstrapping
// the row on first access. It never fails: when the store is down or
// every bootstrap tier is rejected, the caller gets a synthesized fresh
// profile instead of an error. A transient outage degrades a user to
// "new account", it does not block them.
func (s *GamificationService) GetUserProgress(ctx context.Context, userID string) *models.UserProgress {
	profile, err := s.Store.GetProfile(ctx, userID)
	if err == nil {
		return s.decorate(profile)
	}

	if errors.Is(err, store.ErrNotFound) {
		if created := s.CreateUserProfile(ctx, userID); created != nil {
			return s.decorate(created)
		}
	} else {
		s.Events.Event("progress_read_failed", map[string]interface{}{
			"user_id": userID, "error": err.Error(),
		})
	}

	// Degraded default: looks like a fresh account, minus the welcome
	// bonus. Nothing was persisted, so nothing spendable is promised.
	s.Events.Event("progress_fallback", map[string]interface{}{"user_id": userID})
	fallback := s.defaultProfile(userID)
	fallback.Tokens = 0
	return s.decorate(fallback)
}

// AddXPAndTokens grants xpDelta XP and tokenDelta tokens, persisting the
// new totals and the re-derived level in one write. Crossing one or more
// level thresholds credits every crossed level's token reward through
// recursive zero-XP grants (which cannot level up again), so a single
// large grant pays out each intermediate level in turn.
func (s *GamificationService) AddXPAndTokens(ctx context.Context, userID string, xpDelta, tokenDelta int64, reason string) (*XPGrantResult, error) {
	if xpDelta < 0 || tokenDelta < 0 {
		return nil, fmt.Errorf("negative delta (xp=%d, tokens=%d) for user %s", xpDelta, tokenDelta, userID)
	}

	profile, err := s.profileForMutation(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldLevel := models.LevelFor(profile.XP)
	newXP := profile.XP + xpDelta
	newTokens := profile.Tokens + tokenDelta
	newLevel := models.LevelFor(newXP)

	if err := s.Store.UpdateProfile(ctx, userID, map[string]interface{}{
		"xp":     newXP,
		"tokens": newTokens,
		"level":  newLevel.Level,
	}); err != nil {
		return nil, err
	}

	result := &XPGrantResult{
		NewXP:     newXP,
		NewTokens: newTokens,
		LeveledUp: newLevel.Level > oldLevel.Level,
		NewLevel:  newLevel,
	}

	s.Events.Event("xp_granted", map[string]interface{}{
		"user_id": userID, "xp": xpDelta, "tokens": tokenDelta, "reason": reason,
	})

	if result.LeveledUp {
		s.Events.Event("level_up", map[string]interface{}{
			"user_id": userID, "from": oldLevel.Level, "to": newLevel.Level, "title": newLevel.Title,
		})
		for _, crossed := range models.LevelsCrossed(oldLevel.Level, newLevel.Level) {
			if crossed.TokenReward == 0 {
				continue
			}
			bonus, err := s.AddXPAndTokens(ctx, userID, 0, crossed.TokenReward,
				fmt.Sprintf("level_up_%d", crossed.Level))
			if err != nil {
				return result, err
			}
			result.NewTokens = bonus.NewTokens
		}
	}

	return result, nil
}

// CompleteMission marks missionID done for the user and pays out its
// rewards. Repeating a completed mission is a Success=false no-op; an id
// missing from the catalog is a data-integrity error and is propagated.
func (s *GamificationService) CompleteMission(ctx context.Context, userID, missionID string) (*MissionResult, error) {
	profile, err := s.profileForMutation(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile.CompletedMissionIDs.Contains(missionID) {
		return &MissionResult{Success: false, Message: "already completed"}, nil
	}

	mission, ok := models.MissionByID[missionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMission, missionID)
	}

	completed := append(models.StringList{}, profile.CompletedMissionIDs...)
	completed = append(completed, missionID)
	if err := s.Store.UpdateProfile(ctx, userID, map[string]interface{}{
		"completed_mission_ids": completed,
	}); err != nil {
		return nil, err
	}

	if _, err := s.AddXPAndTokens(ctx, userID, mission.XPReward, mission.TokenReward, "mission_"+missionID); err != nil {
		return nil, err
	}

	if mission.BadgeRewardID != "" {
		if _, err := s.AwardBadge(ctx, userID, mission.BadgeRewardID); err != nil {
			return nil, err
		}
	}

	// Side table is best-effort: a failure here is logged, never surfaced.
	if err := s.Store.RecordUserMission(ctx, userID, missionID); err != nil {
		s.Events.Event("user_mission_write_failed", map[string]interface{}{
			"user_id": userID, "mission_id": missionID, "error": err.Error(),
		})
	}

	s.Events.Event("mission_completed", map[string]interface{}{
		"user_id": userID, "mission_id": missionID,
	})

	return &MissionResult{
		Success: true,
		Mission: &mission,
		Rewards: &MissionRewards{XP: mission.XPReward, Tokens: mission.TokenReward},
	}, nil
}

// AwardBadge adds badgeID to the user's earned set. Awarding an already
// earned badge is a Success=false no-op. Badges carry no inherent XP or
// token reward.
func (s *GamificationService) AwardBadge(ctx context.Context, userID, badgeID string) (*BadgeResult, error) {
	if _, ok := models.BadgeByID[badgeID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBadge, badgeID)
	}

	profile, err := s.profileForMutation(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile.EarnedBadgeIDs.Contains(badgeID) {
		return &BadgeResult{Success: false, Message: "already earned"}, nil
	}

	earned := append(models.StringList{}, profile.EarnedBadgeIDs...)
	earned = append(earned, badgeID)
	if err := s.Store.UpdateProfile(ctx, userID, map[string]interface{}{
		"earned_badge_ids": earned,
	}); err != nil {
		return nil, err
	}

	s.Events.Event("badge_awarded", map[string]interface{}{
		"user_id": userID, "badge_id": badgeID,
	})
	return &BadgeResult{Success: true, BadgeID: badgeID}, nil
}

// SpendTokens deducts amount from the user's balance. Overspending is
// refused with a structured result; the balance never goes negative.
func (s *GamificationService) SpendTokens(ctx context.Context, userID string, amount int64, reason string) (*SpendResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("spend amount must be positive, got %d for user %s", amount, userID)
	}

	profile, err := s.profileForMutation(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile.Tokens < amount {
		return &SpendResult{Success: false, Message: "insufficient tokens"}, nil
	}

	newTokens := profile.Tokens - amount
	if err := s.Store.UpdateProfile(ctx, userID, map[string]interface{}{
		"tokens": newTokens,
	}); err != nil {
		return nil, err
	}

	s.Events.Event("tokens_spent", map[string]interface{}{
		"user_id": userID, "amount": amount, "reason": reason, "balance": newTokens,
	})
	return &SpendResult{Success: true, NewTokens: newTokens}, nil
}

// RecordActivity bumps the interaction counters and applies the streak
// rule: same-day repeats leave the streak alone, exactly one day of gap
// extends it, anything longer restarts it at 1.
func (s *GamificationService) RecordActivity(ctx context.Context, userID string) (*models.UserProgress, error) {
	profile, err := s.profileForMutation(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	streak := nextStreak(profile.Streak, profile.LastActivity, now)

	fields := map[string]interface{}{
		"streak":             streak,
		"total_interactions": profile.TotalInteractions + 1,
		"last_activity":      now,
		"last_login":         now,
	}
	if err := s.Store.UpdateProfile(ctx, userID, fields); err != nil {
		return nil, err
	}

	profile.Streak = streak
	profile.TotalInteractions++
	profile.LastActivity = &now
	profile.LastLogin = &now
	return s.decorate(profile), nil
}

// nextStreak applies the consecutive-day rule against UTC calendar
// days. Both timestamps are normalized to UTC first: the stored value
// and the server clock may carry different locations, and comparing
// their wall-clock dates directly would shift the day boundary.
func nextStreak(current int, last *time.Time, now time.Time) int {
	if last == nil {
		return 1
	}
	ly, lm, ld := last.In(time.UTC).Date()
	ny, nm, nd := now.In(time.UTC).Date()
	lastDay := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	gap := int(today.Sub(lastDay).Hours() / 24)
	switch {
	case gap == 0:
		if current < 1 {
			return 1
		}
		return current
	case gap == 1:
		return current + 1
	default:
		return 1
	}
}

// profileForMutation reads the profile, bootstrapping the row when it
// does not exist yet. Unlike GetUserProgress, store failures here are
// propagated: silently dropping a reward or a spend would be worse than
// surfacing the error.
func (s *GamificationService) profileForMutation(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.Store.GetProfile(ctx, userID)
	if err == nil {
		return s.repairLevel(ctx, userID, fillDefaults(profile)), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if created := s.CreateUserProfile(ctx, userID); created != nil {
		return created, nil
	}
	return nil, fmt.Errorf("profile %s missing and bootstrap failed", userID)
}

// repairLevel re-persists the derived level when the stored cache has
// drifted (rows created by a narrow bootstrap tier, or touched by an
// older build). Best effort: a failed repair is logged and the derived
// value still flows through in memory.
func (s *GamificationService) repairLevel(ctx context.Context, userID string, p *models.UserProfile) *models.UserProfile {
	derived := models.LevelFor(p.XP).Level
	if p.Level == derived {
		return p
	}
	if err := s.Store.UpdateProfile(ctx, userID, map[string]interface{}{
		"level": derived,
	}); err != nil {
		s.Events.Event("level_repair_failed", map[string]interface{}{
			"user_id": userID, "error": err.Error(),
		})
	}
	p.Level = derived
	return p
}

func (s *GamificationService) decorate(profile *models.UserProfile) *models.UserProgress {
	p := fillDefaults(profile)
	level := models.LevelFor(p.XP)
	p.Level = level.Level // stored level is a cache of the derivation
	return &models.UserProgress{
		UserProfile:  *p,
		CurrentLevel: level,
		Progress:     models.ProgressToNext(p.XP),
	}
}
