// handlers/gamification_routes.go
package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"autvision-gamification/middleware"
	"autvision-gamification/models"
	"autvision-gamification/services"
	"autvision-gamification/store"
	"autvision-gamification/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// SetupGamificationRoutes wires the user-facing and admin surface. The
// gateway forwards /api/v1/gamification/* here with auth context headers.
func SetupGamificationRoutes(app *fiber.App, svc *services.GamificationService, st store.ProfileStore) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	// Never errors: the service degrades to a synthesized fresh profile
	// when the store is unavailable.
	securedGroup.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		return c.JSON(svc.GetUserProgress(c.UserContext(), userID))
	})

	securedGroup.Post("/user/activity", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		progress, err := svc.RecordActivity(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to record activity",
				"cause": err.Error(),
			})
		}
		return c.JSON(progress)
	})

	securedGroup.Post("/user/missions/:id/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		missionID := c.Params("id")

		result, err := svc.CompleteMission(c.UserContext(), userID, missionID)
		if err != nil {
			if errors.Is(err, services.ErrUnknownMission) || errors.Is(err, services.ErrUnknownBadge) {
				return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
					"error": "unknown catalog entry",
					"cause": err.Error(),
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "mission completion failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	securedGroup.Post("/user/tokens/spend", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			Amount int64  `json:"amount"`
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if req.Amount <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be positive"})
		}

		result, err := svc.SpendTokens(c.UserContext(), userID, req.Amount, req.Reason)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "token spend failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	// Public leaderboard, served from the scheduler-refreshed snapshot.
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		ranked, err := svc.CachedRanking(c.UserContext(), limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"leaderboard": ranked})
	})

	app.Get("/levels", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"levels": models.XPSystem})
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	adminGroup.Post("/xp/grant", func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
			XP     int64  `json:"xp"`
			Tokens int64  `json:"tokens"`
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
		}
		if req.XP < 0 || req.Tokens < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "xp and tokens must be non-negative"})
		}

		result, err := svc.AddXPAndTokens(c.UserContext(), req.UserID, req.XP, req.Tokens, req.Reason)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "XP grant failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	adminGroup.Post("/badges/award", func(c *fiber.Ctx) error {
		var req struct {
			UserID  string `json:"user_id"`
			BadgeID string `json:"badge_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if req.UserID == "" || req.BadgeID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and badge_id are required"})
		}

		result, err := svc.AwardBadge(c.UserContext(), req.UserID, req.BadgeID)
		if err != nil {
			if errors.Is(err, services.ErrUnknownBadge) {
				return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
					"error": "unknown badge",
					"cause": err.Error(),
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "badge award failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	adminGroup.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := svc.GetGlobalStats(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to compute stats",
				"cause": err.Error(),
			})
		}
		return c.JSON(stats)
	})

	adminGroup.Post("/catalog/init", func(c *fiber.Ctx) error {
		if err := svc.InitializeDefaults(c.UserContext()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "catalog initialization failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"success": true})
	})

	// Badge icon asset upload: stored on R2 when configured, otherwise
	// under the local uploads dir served by /uploads.
	adminGroup.Post("/badges/:id/icon", func(c *fiber.Ctx) error {
		badgeID := c.Params("id")
		badge, ok := models.BadgeByID[badgeID]
		if !ok {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unknown badge", "badge_id": badgeID})
		}

		iconFile, err := c.FormFile("icon")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "icon file is required"})
		}
		if iconFile.Size > 2*1024*1024 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "icon too large (max 2MB)"})
		}

		ext := filepath.Ext(iconFile.Filename)
		if ext == "" {
			ext = ".png"
		}
		key := fmt.Sprintf("badges/%s-%s%s", slug.Make(badge.Name), uuid.NewString()[:8], ext)

		var iconURL string
		if utils.R2Enabled() {
			iconURL, err = utils.UploadFileToR2(iconFile, key)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to upload icon",
					"cause": err.Error(),
				})
			}
		} else {
			localPath := utils.UploadPath(key)
			if err := utils.SaveIcon(iconFile, localPath); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to save icon locally",
					"cause": err.Error(),
				})
			}
			iconURL = "/" + localPath
		}

		if err := st.UpdateBadgeIcon(c.UserContext(), badgeID, iconURL); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to persist icon URL",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"badge_id": badgeID, "icon_url": iconURL})
	})
}
