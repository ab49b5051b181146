package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores a JSON array of ids in a jsonb column. Used for the
// completed-mission and earned-badge sets on UserProfile.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type %T for StringList", src)
	}
}

// Contains reports whether id is already in the list.
func (l StringList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// UserProfile is one row of the userprofile table, keyed by the external
// identity id. It is created lazily on first access, never eagerly at
// signup, so every reader must tolerate its absence.
type UserProfile struct {
	ID          string `gorm:"primaryKey" json:"id"` // external identity id
	Email       string `gorm:"index" json:"email"`
	DisplayName string `gorm:"column:display_name" json:"display_name"`
	Role        string `gorm:"default:'user'" json:"role"`
	PlanID      string `gorm:"column:plan_id" json:"plan_id"`

	// Gamification state. XP only grows; Tokens is a spendable balance
	// that never drops below zero; Level caches LevelFor(XP).
	XP     int64 `gorm:"default:0" json:"xp"`
	Tokens int64 `gorm:"default:0" json:"tokens"`
	Level  int   `gorm:"default:1" json:"level"`

	CompletedMissionIDs StringList `gorm:"column:completed_mission_ids;type:jsonb" json:"completed_mission_ids"`
	EarnedBadgeIDs      StringList `gorm:"column:earned_badge_ids;type:jsonb" json:"earned_badge_ids"`

	Streak            int        `gorm:"default:0" json:"streak"`
	TotalInteractions int64      `gorm:"default:0" json:"total_interactions"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
	LastActivity      *time.Time `json:"last_activity,omitempty"`
	CreatedDate       time.Time  `gorm:"autoCreateTime" json:"created_date"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName keeps the legacy table name used by the admin dashboard.
func (UserProfile) TableName() string {
	return "userprofile"
}

// UserProgress is a UserProfile decorated with derived level data.
// This is the shape every caller of the service sees.
type UserProgress struct {
	UserProfile
	CurrentLevel LevelDefinition `json:"current_level"`
	Progress     LevelProgress   `json:"progress"`
}

// UserMission is a best-effort per-user per-mission completion row.
// Failures writing it are logged, never propagated.
type UserMission struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"index;not null" json:"user_id"`
	MissionID   string    `gorm:"index;not null" json:"mission_id"`
	CompletedAt time.Time `gorm:"autoCreateTime" json:"completed_at"`
}
