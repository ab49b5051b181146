package store

import (
	"context"
	"errors"
	"fmt"

	"autvision-gamification/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements ProfileStore against Postgres through GORM.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}
	return &profile, nil
}

// InsertProfile creates a row from a partial column set. ON CONFLICT (id)
// DO NOTHING makes concurrent bootstraps for the same user a no-op for
// the loser; both callers converge on the same row with the next read.
func (s *GormStore) InsertProfile(ctx context.Context, id string, fields map[string]interface{}) error {
	row := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		row[k] = v
	}
	row["id"] = id

	err := s.DB.WithContext(ctx).
		Model(&models.UserProfile{}).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("insert profile %s: %w", id, err)
	}
	return nil
}

func (s *GormStore) UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error {
	res := s.DB.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update profile %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	if err := s.DB.WithContext(ctx).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (s *GormStore) TopProfilesByXP(ctx context.Context, limit int) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	err := s.DB.WithContext(ctx).
		Order("xp DESC").
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("top profiles: %w", err)
	}
	return profiles, nil
}

func (s *GormStore) CountMissions(ctx context.Context) (int64, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Mission{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count missions: %w", err)
	}
	return count, nil
}

func (s *GormStore) CountBadges(ctx context.Context) (int64, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Badge{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count badges: %w", err)
	}
	return count, nil
}

// SeedMissions bulk-inserts catalog rows, skipping ids that already
// exist so re-seeding a partially populated catalog is safe.
func (s *GormStore) SeedMissions(ctx context.Context, missions []models.Mission) error {
	if len(missions) == 0 {
		return nil
	}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&missions).Error
	if err != nil {
		return fmt.Errorf("seed missions: %w", err)
	}
	return nil
}

func (s *GormStore) SeedBadges(ctx context.Context, badges []models.Badge) error {
	if len(badges) == 0 {
		return nil
	}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&badges).Error
	if err != nil {
		return fmt.Errorf("seed badges: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateBadgeIcon(ctx context.Context, badgeID, iconURL string) error {
	res := s.DB.WithContext(ctx).
		Model(&models.Badge{}).
		Where("id = ?", badgeID).
		Update("icon_url", iconURL)
	if res.Error != nil {
		return fmt.Errorf("update badge icon %s: %w", badgeID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) RecordUserMission(ctx context.Context, userID, missionID string) error {
	row := models.UserMission{
		ID:        uuid.NewString(),
		UserID:    userID,
		MissionID: missionID,
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("record user mission %s/%s: %w", userID, missionID, err)
	}
	return nil
}
