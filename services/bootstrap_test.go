package services

import (
	"context"
	"errors"
	"testing"

	"autvision-gamification/models"
)

func TestCreateUserProfile_FullTierSucceeds(t *testing.T) {
	svc, st, rec := newTestService()

	p := svc.CreateUserProfile(context.Background(), "u1")
	if p == nil {
		t.Fatal("CreateUserProfile returned nil")
	}
	if p.Tokens != WelcomeTokenBonus || p.Level != 1 || p.Role != "user" {
		t.Errorf("bootstrapped profile = tokens %d level %d role %q", p.Tokens, p.Level, p.Role)
	}
	if len(st.insertAttempts) != 1 {
		t.Errorf("insert attempts = %d, want 1", len(st.insertAttempts))
	}
	if rec.count("bootstrap_tier_failed") != 0 {
		t.Errorf("tier failures = %d, want 0", rec.count("bootstrap_tier_failed"))
	}
	if !rec.has("profile_created") {
		t.Error("no profile_created event")
	}
}

func TestCreateUserProfile_FallsBackToMinimalTier(t *testing.T) {
	svc, st, rec := newTestService()
	// A stricter live schema without the gamification columns: the full
	// payload is rejected, the minimal one goes through.
	st.rejectColumns = map[string]bool{"xp": true}

	p := svc.CreateUserProfile(context.Background(), "u1")
	if p == nil {
		t.Fatal("CreateUserProfile returned nil")
	}
	if got := len(st.insertAttempts); got != 2 {
		t.Fatalf("insert attempts = %d, want 2 (full then minimal)", got)
	}
	if _, hasXP := st.insertAttempts[1]["xp"]; hasXP {
		t.Error("second attempt still carried the rejected column")
	}
	if rec.count("bootstrap_tier_failed") != 1 {
		t.Errorf("tier failures = %d, want 1", rec.count("bootstrap_tier_failed"))
	}
	// Narrow rows still come back normalized.
	if p.CompletedMissionIDs == nil || p.EarnedBadgeIDs == nil {
		t.Error("narrow-tier profile has nil award sets")
	}
	if p.Level != 1 {
		t.Errorf("Level = %d, want 1", p.Level)
	}
}

func TestCreateUserProfile_FallsBackToIdentifierOnly(t *testing.T) {
	svc, st, _ := newTestService()
	st.rejectColumns = map[string]bool{"xp": true, "email": true}

	p := svc.CreateUserProfile(context.Background(), "u1")
	if p == nil {
		t.Fatal("CreateUserProfile returned nil")
	}
	if got := len(st.insertAttempts); got != 3 {
		t.Fatalf("insert attempts = %d, want 3 (all tiers tried)", got)
	}
	if len(st.insertAttempts[2]) != 0 {
		t.Errorf("last attempt payload = %v, want empty", st.insertAttempts[2])
	}
	if p.ID != "u1" {
		t.Errorf("ID = %q, want u1", p.ID)
	}
}

func TestCreateUserProfile_ReadBackFailureMatchesTier(t *testing.T) {
	t.Run("narrow tier promises no welcome bonus", func(t *testing.T) {
		svc, st, _ := newTestService()
		st.rejectColumns = map[string]bool{"xp": true}
		st.getErr = errors.New("read replica down")

		p := svc.CreateUserProfile(context.Background(), "u1")
		if p == nil {
			t.Fatal("CreateUserProfile returned nil")
		}
		if p.Tokens != 0 {
			t.Errorf("Tokens = %d, want 0 (minimal tier never wrote the bonus)", p.Tokens)
		}
		if p.Level != 1 || p.CompletedMissionIDs == nil {
			t.Errorf("fallback not normalized: level %d, sets %v", p.Level, p.CompletedMissionIDs)
		}
	})

	t.Run("full tier keeps the bonus it wrote", func(t *testing.T) {
		svc, st, _ := newTestService()
		st.getErr = errors.New("read replica down")

		p := svc.CreateUserProfile(context.Background(), "u1")
		if p == nil {
			t.Fatal("CreateUserProfile returned nil")
		}
		if p.Tokens != WelcomeTokenBonus {
			t.Errorf("Tokens = %d, want %d", p.Tokens, WelcomeTokenBonus)
		}
	})
}

func TestCreateUserProfile_AllTiersFailReturnsNil(t *testing.T) {
	svc, st, rec := newTestService()
	st.insertErr = errors.New("database is on fire")

	if p := svc.CreateUserProfile(context.Background(), "u1"); p != nil {
		t.Errorf("got %+v, want nil when every tier fails", p)
	}
	if rec.count("bootstrap_tier_failed") != len(insertStrategies) {
		t.Errorf("tier failures = %d, want %d", rec.count("bootstrap_tier_failed"), len(insertStrategies))
	}
	if !rec.has("bootstrap_failed") {
		t.Error("no bootstrap_failed event")
	}
}

func TestCreateUserProfile_LosingRaceReturnsWinnersRow(t *testing.T) {
	svc, st, _ := newTestService()

	// The row already exists: the conditional insert is a quiet no-op and
	// the read-back must return the existing state, not the defaults.
	existing := svc.defaultProfile("u1")
	existing.XP = 500
	existing.Tokens = 42
	st.profiles["u1"] = existing

	p := svc.CreateUserProfile(context.Background(), "u1")
	if p == nil {
		t.Fatal("CreateUserProfile returned nil")
	}
	if p.XP != 500 || p.Tokens != 42 {
		t.Errorf("got xp %d tokens %d, want the pre-existing 500/42", p.XP, p.Tokens)
	}
}

func TestFillDefaults(t *testing.T) {
	p := fillDefaults(&models.UserProfile{ID: "u1", XP: 300})
	if p.CompletedMissionIDs == nil || p.EarnedBadgeIDs == nil {
		t.Error("award sets still nil")
	}
	if p.Role != "user" {
		t.Errorf("Role = %q, want user", p.Role)
	}
	if p.Level != 3 {
		t.Errorf("Level = %d, want 3 (derived from 300 xp)", p.Level)
	}
	if p.CreatedDate.IsZero() {
		t.Error("CreatedDate still zero")
	}
}
