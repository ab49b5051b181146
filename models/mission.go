package models

import "time"

// Mission types group how progress toward the goal is counted.
const (
	MissionTypeAchievement = "achievement"
	MissionTypeDaily       = "daily"
	MissionTypeWeekly      = "weekly"
)

// Mission is an immutable catalog entry. Completion is tracked on the
// user profile (CompletedMissionIDs), not here.
type Mission struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `json:"description"`
	Type          string    `gorm:"type:varchar(16);default:'achievement'" json:"type"`
	Goal          int       `gorm:"default:1" json:"goal"`
	XPReward      int64     `gorm:"default:0" json:"xp_reward"`
	TokenReward   int64     `gorm:"default:0" json:"token_reward"`
	BadgeRewardID string    `json:"badge_reward_id,omitempty"`
	Category      string    `gorm:"type:varchar(32)" json:"category"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// DefaultMissions seeds the missions table on first boot. IDs are stable;
// changing one orphans completions already recorded against it.
var DefaultMissions = []Mission{
	{
		ID:            "first_chat",
		Title:         "First Contact",
		Description:   "Send your first message to an AutVision agent",
		Type:          MissionTypeAchievement,
		Goal:          1,
		XPReward:      50,
		TokenReward:   5,
		BadgeRewardID: "first_chat",
		Category:      "onboarding",
	},
	{
		ID:          "daily_login",
		Title:       "Daily Check-in",
		Description: "Log in to the platform today",
		Type:        MissionTypeDaily,
		Goal:        1,
		XPReward:    10,
		TokenReward: 2,
		Category:    "engagement",
	},
	{
		ID:          "ten_chats",
		Title:       "Conversationalist",
		Description: "Send 10 messages to your agents",
		Type:        MissionTypeAchievement,
		Goal:        10,
		XPReward:    100,
		TokenReward: 10,
		Category:    "engagement",
	},
	{
		ID:            "first_agent",
		Title:         "Agent Architect",
		Description:   "Configure your first agent",
		Type:          MissionTypeAchievement,
		Goal:          1,
		XPReward:      75,
		TokenReward:   10,
		BadgeRewardID: "agent_architect",
		Category:      "configuration",
	},
	{
		ID:          "first_routine",
		Title:       "Routine Builder",
		Description: "Create your first automation routine",
		Type:        MissionTypeAchievement,
		Goal:        1,
		XPReward:    75,
		TokenReward: 10,
		Category:    "configuration",
	},
	{
		ID:            "week_streak",
		Title:         "Week Warrior",
		Description:   "Stay active 7 days in a row",
		Type:          MissionTypeWeekly,
		Goal:          7,
		XPReward:      200,
		TokenReward:   25,
		BadgeRewardID: "week_warrior",
		Category:      "engagement",
	},
	{
		ID:          "profile_complete",
		Title:       "All Set Up",
		Description: "Fill in your display name and avatar",
		Type:        MissionTypeAchievement,
		Goal:        1,
		XPReward:    25,
		TokenReward: 5,
		Category:    "onboarding",
	},
	{
		ID:            "invite_friend",
		Title:         "Recruiter",
		Description:   "Invite a teammate to AutVision",
		Type:          MissionTypeAchievement,
		Goal:          1,
		XPReward:      150,
		TokenReward:   30,
		BadgeRewardID: "recruiter",
		Category:      "growth",
	},
}

// MissionByID indexes the static catalog. A miss here for a completion
// request is a data-integrity error, not a runtime condition.
var MissionByID = func() map[string]Mission {
	m := make(map[string]Mission, len(DefaultMissions))
	for _, mission := range DefaultMissions {
		m[mission.ID] = mission
	}
	return m
}()
