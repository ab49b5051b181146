// workers/profile_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"autvision-gamification/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// IdentityUser matches the JSON shape of the identity service's change
// feed. Only the denormalized fields mirrored onto userprofile matter.
type IdentityUser struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	FirstName   *string   `json:"first_name,omitempty"`
	LastName    *string   `json:"last_name,omitempty"`
	Role        string    `json:"role"`
	PlanID      string    `json:"plan_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type identityChangesResponse struct {
	Users []IdentityUser `json:"users"`
}

// ProfileSyncWorker mirrors identity fields (email, display name, role,
// plan) from the identity service into existing userprofile rows. It
// never creates rows: profile creation stays lazy and belongs to the
// gamification bootstrap, so the mirror is update-only.
type ProfileSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewProfileSyncWorker(db *gorm.DB, identityBaseURL, endpointPath, serviceToken string) *ProfileSyncWorker {
	return &ProfileSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      identityBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Profile Sync Worker (identity service → userprofile)…")
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	// Initial pass backfills identity fields for rows bootstrapped while
	// the worker was down.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial profile sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Profile sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Profile Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent mirror write so incremental
// fetches only ask for what changed since.
func (w *ProfileSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM userprofile").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

func (w *ProfileSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid identity service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to identity service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("identity service non-200 response: %d (%s)", resp.StatusCode, string(body))
	}

	var response identityChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode identity service response: %w", err)
	}

	if len(response.Users) == 0 {
		log.Printf("[SYNC] ✅ No identity changes since %s", sinceStr)
		return nil
	}

	log.Printf("[SYNC] 📥 Mirroring %d identity change(s)…", len(response.Users))

	var updated, missing, failed int
	for _, u := range response.Users {
		res := w.db.Model(&models.UserProfile{}).
			Where("id = ?", u.ID).
			Updates(map[string]interface{}{
				"email":        u.Email,
				"display_name": displayNameFor(u),
				"role":         u.Role,
				"plan_id":      u.PlanID,
			})
		switch {
		case res.Error != nil:
			failed++
			log.Printf("[SYNC] ⚠️ Failed to mirror identity for %s: %v", u.ID, res.Error)
		case res.RowsAffected == 0:
			// No gamification row yet. Bootstrap will pick the fields
			// up on first access; nothing to mirror onto.
			missing++
		default:
			updated++
		}
	}

	log.Printf("[SYNC] ✅ Mirrored %d identity change(s) (%d updated, %d not bootstrapped, %d errors)",
		len(response.Users), updated, missing, failed)
	return nil
}

var titleCaser = cases.Title(language.English)

// displayNameFor prefers the identity service's display name and falls
// back to a title-cased "First Last" composition.
func displayNameFor(u IdentityUser) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	return titleCaser.String(strings.Join(parts, " "))
}
