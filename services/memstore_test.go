package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"autvision-gamification/models"
	"autvision-gamification/store"
)

// memStore is an in-memory ProfileStore with failure injection, used to
// exercise the service without a database.
type memStore struct {
	mu           sync.Mutex
	profiles     map[string]*models.UserProfile
	missions     map[string]models.Mission
	badges       map[string]models.Badge
	userMissions []models.UserMission

	// rejectColumns simulates a stricter live schema: an insert whose
	// payload contains any of these column names is rejected.
	rejectColumns map[string]bool

	getErr         error
	insertErr      error
	updateErr      error
	listErr        error
	recordErr      error
	insertAttempts []map[string]interface{}
}

func newMemStore() *memStore {
	return &memStore{
		profiles: make(map[string]*models.UserProfile),
		missions: make(map[string]models.Mission),
		badges:   make(map[string]models.Badge),
	}
}

func copyProfile(p *models.UserProfile) *models.UserProfile {
	cp := *p
	cp.CompletedMissionIDs = append(models.StringList{}, p.CompletedMissionIDs...)
	cp.EarnedBadgeIDs = append(models.StringList{}, p.EarnedBadgeIDs...)
	return &cp
}

func (m *memStore) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyProfile(p), nil
}

func (m *memStore) InsertProfile(ctx context.Context, id string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertAttempts = append(m.insertAttempts, fields)
	if m.insertErr != nil {
		return m.insertErr
	}
	for col := range fields {
		if m.rejectColumns[col] {
			return errors.New("column " + col + " does not exist")
		}
	}
	if _, exists := m.profiles[id]; exists {
		return nil // conflict: do nothing
	}
	p := &models.UserProfile{ID: id}
	applyFields(p, fields)
	m.profiles[id] = p
	return nil
}

func (m *memStore) UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	p, ok := m.profiles[id]
	if !ok {
		return store.ErrNotFound
	}
	applyFields(p, fields)
	return nil
}

func (m *memStore) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.UserProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, *copyProfile(p))
	}
	return out, nil
}

func (m *memStore) TopProfilesByXP(ctx context.Context, limit int) ([]models.UserProfile, error) {
	all, err := m.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[j].XP > all[i].XP {
				all[i], all[j] = all[j], all[i]
			}
		}
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memStore) CountMissions(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.missions)), nil
}

func (m *memStore) CountBadges(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.badges)), nil
}

func (m *memStore) SeedMissions(ctx context.Context, missions []models.Mission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ms := range missions {
		if _, exists := m.missions[ms.ID]; !exists {
			m.missions[ms.ID] = ms
		}
	}
	return nil
}

func (m *memStore) SeedBadges(ctx context.Context, badges []models.Badge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range badges {
		if _, exists := m.badges[b.ID]; !exists {
			m.badges[b.ID] = b
		}
	}
	return nil
}

func (m *memStore) UpdateBadgeIcon(ctx context.Context, badgeID, iconURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.badges[badgeID]
	if !ok {
		return store.ErrNotFound
	}
	b.IconURL = iconURL
	m.badges[badgeID] = b
	return nil
}

func (m *memStore) RecordUserMission(ctx context.Context, userID, missionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.userMissions = append(m.userMissions, models.UserMission{
		UserID: userID, MissionID: missionID, CompletedAt: time.Now(),
	})
	return nil
}

func applyFields(p *models.UserProfile, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "email":
			p.Email = v.(string)
		case "display_name":
			p.DisplayName = v.(string)
		case "role":
			p.Role = v.(string)
		case "plan_id":
			p.PlanID = v.(string)
		case "xp":
			p.XP = v.(int64)
		case "tokens":
			p.Tokens = v.(int64)
		case "level":
			p.Level = v.(int)
		case "completed_mission_ids":
			p.CompletedMissionIDs = append(models.StringList{}, v.(models.StringList)...)
		case "earned_badge_ids":
			p.EarnedBadgeIDs = append(models.StringList{}, v.(models.StringList)...)
		case "streak":
			p.Streak = v.(int)
		case "total_interactions":
			p.TotalInteractions = v.(int64)
		case "last_login":
			p.LastLogin = toTimePtr(v)
		case "last_activity":
			p.LastActivity = toTimePtr(v)
		case "created_date":
			p.CreatedDate = v.(time.Time)
		}
	}
}

func toTimePtr(v interface{}) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case *time.Time:
		return t
	default:
		return nil
	}
}

// eventRecorder captures emitted domain events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Name   string
	Fields map[string]interface{}
}

func (r *eventRecorder) Event(name string, fields map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Name: name, Fields: fields})
}

func (r *eventRecorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Name == name {
			n++
		}
	}
	return n
}

func (r *eventRecorder) has(name string) bool {
	return r.count(name) > 0
}
