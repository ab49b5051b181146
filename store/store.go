package store

import (
	"context"
	"errors"

	"autvision-gamification/models"
)

// ErrNotFound is returned when a lookup matches zero rows. Callers must
// treat it as a state ("bootstrap needed", "nothing to update"), not a
// transport failure; the two are never conflated.
var ErrNotFound = errors.New("store: not found")

// ProfileStore is the row-level contract the gamification core depends
// on. The relational engine behind it is an external collaborator; only
// this surface matters. Inserts are conditional (insert-if-absent keyed
// on the profile id) so concurrent bootstraps converge on one row.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*models.UserProfile, error)

	// InsertProfile inserts a userprofile row from a partial column set,
	// ignoring the insert when a row with this id already exists.
	InsertProfile(ctx context.Context, id string, fields map[string]interface{}) error

	// UpdateProfile applies fields to the row with this id. Returns
	// ErrNotFound when the row does not exist.
	UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error

	ListProfiles(ctx context.Context) ([]models.UserProfile, error)
	TopProfilesByXP(ctx context.Context, limit int) ([]models.UserProfile, error)

	// Catalog seeding. Counts are cheap existence probes.
	CountMissions(ctx context.Context) (int64, error)
	CountBadges(ctx context.Context) (int64, error)
	SeedMissions(ctx context.Context, missions []models.Mission) error
	SeedBadges(ctx context.Context, badges []models.Badge) error

	// UpdateBadgeIcon points a catalog badge at an uploaded icon asset.
	UpdateBadgeIcon(ctx context.Context, badgeID, iconURL string) error

	// RecordUserMission writes the best-effort user_missions side row.
	RecordUserMission(ctx context.Context, userID, missionID string) error
}
