package handlers

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Talha3818/gaming-site-sub000/middleware"
	"github.com/Talha3818/gaming-site-sub000/models"
	"github.com/Talha3818/gaming-site-sub000/services"
	"github.com/Talha3818/gaming-site-sub000/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type createChallengeRequest struct {
	GameID             string `json:"game_id"`
	BetAmount          int64  `json:"bet_amount"`
	ScheduledMatchTime string `json:"scheduled_match_time"` // RFC3339
	MatchDurationMins  int    `json:"match_duration_mins"`
	PlayerCount        int    `json:"player_count"`
}

func (r createChallengeRequest) toInput(creatorID string) (services.CreateChallengeInput, error) {
	scheduled, err := time.Parse(time.RFC3339, r.ScheduledMatchTime)
	if err != nil {
		return services.CreateChallengeInput{}, fmt.Errorf("%w: invalid scheduled_match_time (use RFC3339)", services.ErrValidation)
	}
	return services.CreateChallengeInput{
		CreatorID:          creatorID,
		GameID:             r.GameID,
		BetAmount:          r.BetAmount,
		ScheduledMatchTime: scheduled,
		MatchDurationMins:  r.MatchDurationMins,
		PlayerCount:        r.PlayerCount,
	}, nil
}

func parseFormInt(c *fiber.Ctx, key string) (int, error) {
	return strconv.Atoi(c.FormValue(key))
}

func parseFormInt64(c *fiber.Ctx, key string) (int64, error) {
	return strconv.ParseInt(c.FormValue(key), 10, 64)
}

// SetupAdminRoutes wires the admin-only surface: match mediation,
// dispute settlement, payment review, the game catalog, and platform
// settings.
func SetupAdminRoutes(app *fiber.App, admin *services.AdminService, challenges *services.ChallengeService, games *services.GameService, payments *services.PaymentsService, settings *services.SettingsService) {
	grp := app.Group("/admin", middleware.UserContextMiddleware(), middleware.AdminOnly())

	// Challenge mediation.

	grp.Get("/challenges", func(c *fiber.Ctx) error {
		result, total, err := challenges.ListChallenges(c.Context(), services.ChallengeFilter{
			GameID:  c.Query("game_id"),
			Status:  c.Query("status"),
			Page:    c.QueryInt("page", 1),
			PerPage: c.QueryInt("per_page", 20),
		})
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(fiber.Map{"challenges": result, "total": total})
	})

	// Challenge detail with the full money trail for dispute review.
	grp.Get("/challenges/:id", func(c *fiber.Ctx) error {
		ch, err := challenges.GetChallenge(c.Context(), c.Params("id"))
		if err != nil {
			return errJSON(c, err)
		}
		var entries []models.WalletTransaction
		if err := admin.DB.WithContext(c.Context()).
			Where("related_id = ?", ch.ID).
			Order("created_at ASC").
			Find(&entries).Error; err != nil {
			return errJSON(c, err)
		}
		return c.JSON(fiber.Map{"challenge": ch, "ledger": entries})
	})

	grp.Post("/challenges", func(c *fiber.Ctx) error {
		var req createChallengeRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		in, err := req.toInput(middleware.UserID(c))
		if err != nil {
			return errJSON(c, err)
		}
		in.IsAdminAuthored = true
		ch, err := challenges.CreateChallenge(c.Context(), in)
		if err != nil {
			return errJSON(c, err)
		}
		return c.Status(201).JSON(ch)
	})

	grp.Post("/challenges/:id/start", func(c *fiber.Ctx) error {
		var req struct {
			RoomCode string `json:"room_code"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		ch, err := admin.StartMatch(c.Context(), c.Params("id"), middleware.UserID(c), req.RoomCode)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(ch)
	})

	grp.Post("/challenges/:id/room-code", func(c *fiber.Ctx) error {
		var req struct {
			RoomCode string `json:"room_code"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		ch, err := admin.ProvideRoomCode(c.Context(), c.Params("id"), middleware.UserID(c), req.RoomCode)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(ch)
	})

	grp.Put("/challenges/:id/room-code", func(c *fiber.Ctx) error {
		var req struct {
			RoomCode string `json:"room_code"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		ch, err := admin.UpdateRoomCode(c.Context(), c.Params("id"), middleware.UserID(c), req.RoomCode)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(ch)
	})

	grp.Post("/challenges/:id/resolve", func(c *fiber.Ctx) error {
		var req struct {
			WinnerID  string   `json:"winner_id"`
			WinnerIDs []string `json:"winner_ids"`
			Notes     string   `json:"notes"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		var selection services.WinnerSelection
		switch {
		case req.WinnerID != "" && len(req.WinnerIDs) > 0:
			return c.Status(400).JSON(fiber.Map{"error": "set winner_id or winner_ids, not both"})
		case req.WinnerID != "":
			selection = services.SingleWinner(req.WinnerID)
		default:
			selection = services.MultiWinner(req.WinnerIDs)
		}
		ch, payouts, err := admin.ResolveDispute(c.Context(), c.Params("id"), middleware.UserID(c), selection, req.Notes)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(fiber.Map{"challenge": ch, "payouts": payouts})
	})

	grp.Post("/challenges/:id/cancel", func(c *fiber.Ctx) error {
		var req struct {
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		ch, err := admin.CancelChallenge(c.Context(), c.Params("id"), middleware.UserID(c), req.Reason)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(ch)
	})

	// Payment review.

	grp.Get("/deposits", func(c *fiber.Ctx) error {
		deps, err := payments.ListPendingDeposits(c.Context())
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(fiber.Map{"deposits": deps})
	})

	grp.Post("/deposits/:id/review", func(c *fiber.Ctx) error {
		var req struct {
			Approve bool   `json:"approve"`
			Note    string `json:"note"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		dep, err := payments.ReviewDeposit(c.Context(), c.Params("id"), middleware.UserID(c), req.Approve, req.Note)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(dep)
	})

	grp.Get("/withdrawals", func(c *fiber.Ctx) error {
		wds, err := payments.ListPendingWithdrawals(c.Context())
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(fiber.Map{"withdrawals": wds})
	})

	grp.Post("/withdrawals/:id/review", func(c *fiber.Ctx) error {
		var req struct {
			Approve    bool   `json:"approve"`
			PaymentRef string `json:"payment_ref"`
			Note       string `json:"note"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		wd, err := payments.ReviewWithdrawal(c.Context(), c.Params("id"), middleware.UserID(c), req.Approve, req.PaymentRef, req.Note)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(wd)
	})

	// Game catalog.

	grp.Get("/games", func(c *fiber.Ctx) error {
		list, err := games.ListGames(c.Context(), false)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(fiber.Map{"games": list})
	})

	grp.Post("/games", func(c *fiber.Ctx) error {
		in := services.GameInput{
			Name: c.FormValue("name"),
		}
		if v, err := parseFormInt(c, "default_duration_mins"); err == nil {
			in.DefaultDurationMins = v
		}
		if v, err := parseFormInt64(c, "min_bet"); err == nil {
			in.MinBet = v
		}
		if v, err := parseFormInt64(c, "max_bet"); err == nil {
			in.MaxBet = v
		}
		if fh, err := c.FormFile("logo"); err == nil {
			key := "games/" + uuid.NewString() + filepath.Ext(fh.Filename)
			url, err := utils.UploadImageToR2(fh, key)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": err.Error()})
			}
			in.LogoURL = url
		}
		game, err := games.CreateGame(c.Context(), in)
		if err != nil {
			return errJSON(c, err)
		}
		return c.Status(201).JSON(game)
	})

	grp.Put("/games/:id", func(c *fiber.Ctx) error {
		in := services.GameInput{
			Name:   c.FormValue("name"),
			MinBet: -1,
			MaxBet: -1,
		}
		if v, err := parseFormInt(c, "default_duration_mins"); err == nil {
			in.DefaultDurationMins = v
		}
		if v, err := parseFormInt64(c, "min_bet"); err == nil {
			in.MinBet = v
		}
		if v, err := parseFormInt64(c, "max_bet"); err == nil {
			in.MaxBet = v
		}
		if fh, err := c.FormFile("logo"); err == nil {
			key := "games/" + uuid.NewString() + filepath.Ext(fh.Filename)
			url, err := utils.UploadImageToR2(fh, key)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": err.Error()})
			}
			in.LogoURL = url
		}
		var active *bool
		switch c.FormValue("is_active") {
		case "true":
			t := true
			active = &t
		case "false":
			f := false
			active = &f
		}
		game, err := games.UpdateGame(c.Context(), c.Params("id"), in, active)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(game)
	})

	// Platform settings.

	grp.Get("/settings", func(c *fiber.Ctx) error {
		current, err := settings.Current(c.Context())
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(current)
	})

	grp.Put("/settings", func(c *fiber.Ctx) error {
		var next models.PlatformSettings
		if err := c.BodyParser(&next); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		created, err := settings.Update(c.Context(), middleware.UserID(c), next)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(created)
	})
}
