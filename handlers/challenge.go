package handlers

import (
	"path/filepath"
	"time"

	"github.com/Talha3818/gaming-site-sub000/middleware"
	"github.com/Talha3818/gaming-site-sub000/services"
	"github.com/Talha3818/gaming-site-sub000/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SetupChallengeRoutes wires the user-facing challenge endpoints.
func SetupChallengeRoutes(app *fiber.App, challengeSvc *services.ChallengeService, gameSvc *services.GameService, ledger *services.WalletLedger) {
	// 🔓 Public browse routes
	app.Get("/games", func(c *fiber.Ctx) error {
		games, err := gameSvc.ListGames(c.Context(), true)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(games)
	})

	app.Get("/challenges", func(c *fiber.Ctx) error {
		filter := services.ChallengeFilter{
			GameID:  c.Query("game_id"),
			Status:  c.Query("status"),
			Page:    c.QueryInt("page", 1),
			PerPage: c.QueryInt("per_page", 20),
		}
		challenges, total, err := challengeSvc.ListChallenges(c.Context(), filter)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(fiber.Map{
			"challenges": challenges,
			"total":      total,
			"page":       filter.Page,
			"per_page":   filter.PerPage,
		})
	})

	app.Get("/challenges/:id", func(c *fiber.Ctx) error {
		ch, err := challengeSvc.GetChallenge(c.Context(), c.Params("id"))
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(ch)
	})

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/challenges", func(c *fiber.Ctx) error {
		type Req struct {
			GameID             string `json:"game_id"`
			BetAmount          int64  `json:"bet_amount"`
			ScheduledMatchTime string `json:"scheduled_match_time"` // RFC3339
			MatchDurationMins  int    `json:"match_duration_mins"`
			PlayerCount        int    `json:"player_count"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		scheduled, err := time.Parse(time.RFC3339, req.ScheduledMatchTime)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid scheduled_match_time (use RFC3339)"})
		}

		userID := middleware.UserID(c)
		if _, err := ledger.EnsureUser(c.Context(), userID, middleware.UserName(c)); err != nil {
			return errJSON(c, err)
		}

		ch, err := challengeSvc.CreateChallenge(c.Context(), services.CreateChallengeInput{
			CreatorID:          userID,
			GameID:             req.GameID,
			BetAmount:          req.BetAmount,
			ScheduledMatchTime: scheduled,
			MatchDurationMins:  req.MatchDurationMins,
			PlayerCount:        req.PlayerCount,
		})
		if err != nil {
			return errJSON(c, err)
		}
		return c.Status(201).JSON(ch)
	})

	secured.Post("/challenges/:id/accept", func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)
		if _, err := ledger.EnsureUser(c.Context(), userID, middleware.UserName(c)); err != nil {
			return errJSON(c, err)
		}
		ch, err := challengeSvc.AcceptChallenge(c.Context(), c.Params("id"), userID)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(ch)
	})

	secured.Post("/challenges/:id/extend", func(c *fiber.Ctx) error {
		type Req struct {
			Hours int `json:"hours"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		ch, err := challengeSvc.ExtendChallenge(c.Context(), c.Params("id"), middleware.UserID(c), req.Hours)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(ch)
	})

	secured.Post("/challenges/:id/cancel", func(c *fiber.Ctx) error {
		ch, err := challengeSvc.CancelChallenge(c.Context(), c.Params("id"), middleware.UserID(c))
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(ch)
	})

	// Proof screenshot → R2, then attach the URL to the caller's slot.
	secured.Post("/challenges/:id/proof", func(c *fiber.Ctx) error {
		screenshot, err := c.FormFile("screenshot")
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "screenshot file is required"})
		}
		ext := filepath.Ext(screenshot.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "proofs/" + c.Params("id") + "/" + uuid.NewString() + ext
		url, err := utils.UploadImageToR2(screenshot, key)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload screenshot"})
		}

		ch, err := challengeSvc.SubmitProof(c.Context(), c.Params("id"), middleware.UserID(c), url)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(ch)
	})

	secured.Get("/users/me/challenges", func(c *fiber.Ctx) error {
		challenges, err := challengeSvc.ListMyChallenges(c.Context(), middleware.UserID(c))
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(challenges)
	})

	// Room code is only visible to players once the admin provides it.
	secured.Get("/challenges/:id/room-code", func(c *fiber.Ctx) error {
		ch, err := challengeSvc.GetChallenge(c.Context(), c.Params("id"))
		if err != nil {
			return errJSON(c, err)
		}
		if !ch.IsPlayer(middleware.UserID(c), ch.Participants) {
			return c.Status(403).JSON(fiber.Map{"error": "only players can view the room code"})
		}
		if ch.AdminRoomCode == "" {
			return c.Status(404).JSON(fiber.Map{"error": "room code not provided yet"})
		}
		return c.JSON(fiber.Map{
			"room_code":   ch.AdminRoomCode,
			"provided_at": ch.RoomCodeProvidedAt,
		})
	})
}
