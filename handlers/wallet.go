package handlers

import (
	"github.com/Talha3818/gaming-site-sub000/middleware"
	"github.com/Talha3818/gaming-site-sub000/services"

	"github.com/gofiber/fiber/v2"
)

// SetupWalletRoutes wires balance/history reads and the bKash
// deposit/withdrawal flows.
func SetupWalletRoutes(app *fiber.App, ledger *services.WalletLedger, payments *services.PaymentsService, settings *services.SettingsService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/users/me/wallet", func(c *fiber.Ctx) error {
		user, err := ledger.EnsureUser(c.Context(), middleware.UserID(c), middleware.UserName(c))
		if err != nil {
			return errJSON(c, err)
		}
		history, err := ledger.History(c.Context(), user.ID, c.QueryInt("limit", 50))
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(fiber.Map{
			"balance":      user.Balance,
			"wins":         user.Wins,
			"losses":       user.Losses,
			"transactions": history,
		})
	})

	// The platform bKash number users send deposits to.
	secured.Get("/payments/deposit-info", func(c *fiber.Ctx) error {
		current, err := settings.Current(c.Context())
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(fiber.Map{"bkash_number": current.BkashNumber})
	})

	secured.Post("/deposits", func(c *fiber.Ctx) error {
		type Req struct {
			Amount     int64  `json:"amount"`
			BkashTrxID string `json:"bkash_trx_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		userID := middleware.UserID(c)
		if _, err := ledger.EnsureUser(c.Context(), userID, middleware.UserName(c)); err != nil {
			return errJSON(c, err)
		}
		dep, err := payments.RequestDeposit(c.Context(), userID, req.Amount, req.BkashTrxID)
		if err != nil {
			return errJSON(c, err)
		}
		return c.Status(201).JSON(dep)
	})

	secured.Post("/withdrawals", func(c *fiber.Ctx) error {
		type Req struct {
			Amount      int64  `json:"amount"`
			BkashNumber string `json:"bkash_number"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		wd, err := payments.RequestWithdrawal(c.Context(), middleware.UserID(c), req.Amount, req.BkashNumber)
		if err != nil {
			return errJSON(c, err)
		}
		return c.Status(201).JSON(wd)
	})
}
