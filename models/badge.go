package models

import "time"

// Badge rarities, lowest to highest.
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Badge is an immutable catalog entry. Possession is tracked on the user
// profile (EarnedBadgeIDs); badges carry no XP or token reward themselves.
type Badge struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	IconURL     string    `gorm:"type:text" json:"icon_url,omitempty"`
	Color       string    `gorm:"type:varchar(16)" json:"color"`
	Rarity      string    `gorm:"type:varchar(16);default:'common'" json:"rarity"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// DefaultBadges seeds the badges table on first boot.
var DefaultBadges = []Badge{
	{
		ID:          "first_chat",
		Name:        "First Contact",
		Description: "Sent a first message to an agent",
		Icon:        "💬",
		Color:       "#4F8EF7",
		Rarity:      RarityCommon,
	},
	{
		ID:          "agent_architect",
		Name:        "Agent Architect",
		Description: "Configured a first agent",
		Icon:        "🤖",
		Color:       "#9B59B6",
		Rarity:      RarityCommon,
	},
	{
		ID:          "week_warrior",
		Name:        "Week Warrior",
		Description: "Seven consecutive days of activity",
		Icon:        "🗓️",
		Color:       "#E67E22",
		Rarity:      RarityRare,
	},
	{
		ID:          "recruiter",
		Name:        "Recruiter",
		Description: "Brought a teammate onto the platform",
		Icon:        "🤝",
		Color:       "#2ECC71",
		Rarity:      RarityRare,
	},
	{
		ID:          "level_5",
		Name:        "Specialist",
		Description: "Reached level 5",
		Icon:        "💎",
		Color:       "#1ABC9C",
		Rarity:      RarityEpic,
	},
	{
		ID:          "early_adopter",
		Name:        "Early Adopter",
		Description: "Joined during the beta",
		Icon:        "🚀",
		Color:       "#F1C40F",
		Rarity:      RarityLegendary,
	},
}

// BadgeByID indexes the static catalog.
var BadgeByID = func() map[string]Badge {
	m := make(map[string]Badge, len(DefaultBadges))
	for _, b := range DefaultBadges {
		m[b.ID] = b
	}
	return m
}()
