package models

import "testing"

func TestXPSystem_ThresholdsStrictlyIncreasing(t *testing.T) {
	for i := 1; i < len(XPSystem); i++ {
		if XPSystem[i].XPRequired <= XPSystem[i-1].XPRequired {
			t.Errorf("XPSystem[%d].XPRequired = %d, not greater than previous %d",
				i, XPSystem[i].XPRequired, XPSystem[i-1].XPRequired)
		}
	}
	if XPSystem[0].XPRequired != 0 {
		t.Errorf("level 1 threshold = %d, want 0", XPSystem[0].XPRequired)
	}
	if XPSystem[0].Level != 1 {
		t.Errorf("first ladder entry level = %d, want 1", XPSystem[0].Level)
	}
}

func TestLevelFor_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		xp   int64
		want int
	}{
		{"zero xp", 0, 1},
		{"negative xp defends to level 1", -50, 1},
		{"just below level 2", 99, 1},
		{"exactly level 2 threshold", 100, 2},
		{"mid band", 150, 2},
		{"exactly level 3 threshold", 250, 3},
		{"huge xp caps at max level", 10_000_000, XPSystem[len(XPSystem)-1].Level},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := LevelFor(tc.xp).Level; got != tc.want {
				t.Errorf("LevelFor(%d).Level = %d, want %d", tc.xp, got, tc.want)
			}
		})
	}
}

func TestLevelFor_Monotonic(t *testing.T) {
	prev := 0
	for xp := int64(0); xp <= 13000; xp += 7 {
		level := LevelFor(xp).Level
		if level < prev {
			t.Fatalf("LevelFor(%d).Level = %d, below previous %d", xp, level, prev)
		}
		prev = level
	}
}

func TestProgressToNext_Bounds(t *testing.T) {
	for xp := int64(0); xp <= 13000; xp += 13 {
		p := ProgressToNext(xp)
		if p.ProgressPercent < 0 || p.ProgressPercent > 100 {
			t.Fatalf("ProgressToNext(%d).ProgressPercent = %f, out of [0,100]", xp, p.ProgressPercent)
		}
		if p.XPNeeded < 0 {
			t.Fatalf("ProgressToNext(%d).XPNeeded = %d, negative", xp, p.XPNeeded)
		}
		atMax := LevelFor(xp).Level == MaxLevel().Level
		if atMax != (p.NextLevel == nil) {
			t.Fatalf("ProgressToNext(%d): NextLevel nil = %v, at max = %v", xp, p.NextLevel == nil, atMax)
		}
	}
}

func TestProgressToNext_Values(t *testing.T) {
	p := ProgressToNext(50)
	if p.ProgressPercent != 50 {
		t.Errorf("ProgressPercent at 50/100 xp = %f, want 50", p.ProgressPercent)
	}
	if p.XPNeeded != 50 {
		t.Errorf("XPNeeded = %d, want 50", p.XPNeeded)
	}
	if p.NextLevel == nil || p.NextLevel.Level != 2 {
		t.Errorf("NextLevel = %+v, want level 2", p.NextLevel)
	}
}

func TestProgressToNext_MaxLevel(t *testing.T) {
	p := ProgressToNext(MaxLevel().XPRequired + 500)
	if p.ProgressPercent != 100 || p.XPNeeded != 0 || p.NextLevel != nil {
		t.Errorf("at max level got %+v, want {100 0 <nil>}", p)
	}
}

func TestLevelsCrossed(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []int
	}{
		{"no crossing", 2, 2, nil},
		{"single level", 1, 2, []int{2}},
		{"double crossing", 1, 3, []int{2, 3}},
		{"mid ladder", 4, 6, []int{5, 6}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := LevelsCrossed(tc.from, tc.to)
			if len(got) != len(tc.want) {
				t.Fatalf("LevelsCrossed(%d, %d) = %d levels, want %d", tc.from, tc.to, len(got), len(tc.want))
			}
			for i, def := range got {
				if def.Level != tc.want[i] {
					t.Errorf("crossed[%d].Level = %d, want %d", i, def.Level, tc.want[i])
				}
			}
		})
	}
}

func TestCatalogIntegrity(t *testing.T) {
	// Every badge a mission rewards must exist in the badge catalog.
	for _, m := range DefaultMissions {
		if m.BadgeRewardID == "" {
			continue
		}
		if _, ok := BadgeByID[m.BadgeRewardID]; !ok {
			t.Errorf("mission %s rewards unknown badge %s", m.ID, m.BadgeRewardID)
		}
	}
	if len(MissionByID) != len(DefaultMissions) {
		t.Errorf("duplicate mission ids: index has %d entries for %d missions", len(MissionByID), len(DefaultMissions))
	}
	if len(BadgeByID) != len(DefaultBadges) {
		t.Errorf("duplicate badge ids: index has %d entries for %d badges", len(BadgeByID), len(DefaultBadges))
	}
}

func TestStringList_Contains(t *testing.T) {
	l := StringList{"a", "b"}
	if !l.Contains("a") || l.Contains("c") {
		t.Errorf("Contains misbehaved: %v", l)
	}
}

func TestStringList_ScanValueRoundTrip(t *testing.T) {
	v, err := StringList{"first_chat", "week_streak"}.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	var back StringList
	if err := back.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(back) != 2 || back[0] != "first_chat" || back[1] != "week_streak" {
		t.Errorf("round trip = %v", back)
	}

	var empty StringList
	if err := empty.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("Scan(nil) = %v, want empty list", empty)
	}
}
