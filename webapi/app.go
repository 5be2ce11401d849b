// Package webapi exposes the ledger over HTTP with Fiber: account
// registration and snapshots, deposit and withdrawal requests, the
// resolution hook for the external reviewer, the plan catalog, and the
// investment lifecycle.
package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/moneta-ict/ledger/pkg/service/approval"
	"github.com/moneta-ict/ledger/pkg/service/investment"
	"github.com/moneta-ict/ledger/pkg/service/ledger"
)

// Services bundles the application services the handlers depend on.
type Services struct {
	Ledger     *ledger.Service
	Investment *investment.Service
	Approval   *approval.Service
}

// NewApp builds the Fiber application with all routes registered.
func NewApp(svc Services) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ledger is up")
	})

	AccountRoutes(app, svc)
	TransactionRoutes(app, svc)
	PlanRoutes(app, svc)
	InvestmentRoutes(app, svc)

	return app
}
