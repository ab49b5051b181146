package models

// LevelDefinition is one rung of the XP ladder. XPRequired thresholds are
// strictly increasing; level 1 starts at 0 so every user has a level.
type LevelDefinition struct {
	Level       int    `json:"level"`
	XPRequired  int64  `json:"xp_required"`
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	TokenReward int64  `json:"token_reward"`
}

// XPSystem is the static level ladder, ordered ascending by XPRequired.
// Loaded once at process start, never mutated at runtime.
var XPSystem = []LevelDefinition{
	{Level: 1, XPRequired: 0, Title: "Beginner", Icon: "🌱", TokenReward: 0},
	{Level: 2, XPRequired: 100, Title: "Explorer", Icon: "⭐", TokenReward: 25},
	{Level: 3, XPRequired: 250, Title: "Apprentice", Icon: "🔥", TokenReward: 50},
	{Level: 4, XPRequired: 500, Title: "Operator", Icon: "⚡", TokenReward: 75},
	{Level: 5, XPRequired: 1000, Title: "Specialist", Icon: "💎", TokenReward: 100},
	{Level: 6, XPRequired: 2000, Title: "Expert", Icon: "🚀", TokenReward: 150},
	{Level: 7, XPRequired: 3500, Title: "Master", Icon: "👑", TokenReward: 200},
	{Level: 8, XPRequired: 5500, Title: "Grandmaster", Icon: "🏆", TokenReward: 300},
	{Level: 9, XPRequired: 8000, Title: "Legend", Icon: "🌟", TokenReward: 400},
	{Level: 10, XPRequired: 12000, Title: "Visionary", Icon: "🔮", TokenReward: 500},
}

// LevelFor returns the highest level whose threshold is covered by xp.
// Negative XP (should not happen) maps to level 1.
func LevelFor(xp int64) LevelDefinition {
	for i := len(XPSystem) - 1; i >= 0; i-- {
		if xp >= XPSystem[i].XPRequired {
			return XPSystem[i]
		}
	}
	return XPSystem[0]
}

// LevelProgress describes position within the current level band.
// NextLevel is nil at the top of the ladder.
type LevelProgress struct {
	ProgressPercent float64          `json:"progress_percent"`
	XPNeeded        int64            `json:"xp_needed"`
	NextLevel       *LevelDefinition `json:"next_level,omitempty"`
}

// ProgressToNext computes linear progress between the current level's
// threshold and the next one. At max level it reports 100% with nothing left.
func ProgressToNext(xp int64) LevelProgress {
	cur := LevelFor(xp)
	if cur.Level >= XPSystem[len(XPSystem)-1].Level {
		return LevelProgress{ProgressPercent: 100, XPNeeded: 0, NextLevel: nil}
	}

	next := XPSystem[cur.Level] // ladder is dense: index == level-1
	span := next.XPRequired - cur.XPRequired
	pct := float64(xp-cur.XPRequired) / float64(span) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	needed := next.XPRequired - xp
	if needed < 0 {
		needed = 0
	}
	return LevelProgress{ProgressPercent: pct, XPNeeded: needed, NextLevel: &next}
}

// LevelsCrossed returns the definitions of every level in (from, to],
// in ascending order. Used to credit each crossed level's token reward.
func LevelsCrossed(from, to int) []LevelDefinition {
	var crossed []LevelDefinition
	for _, def := range XPSystem {
		if def.Level > from && def.Level <= to {
			crossed = append(crossed, def)
		}
	}
	return crossed
}

// MaxLevel is the top of the ladder.
func MaxLevel() LevelDefinition {
	return XPSystem[len(XPSystem)-1]
}
