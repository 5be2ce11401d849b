package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/moneta-ict/ledger/infra"
	infrarepo "github.com/moneta-ict/ledger/infra/repository"
	"github.com/moneta-ict/ledger/pkg/config"
	"github.com/moneta-ict/ledger/pkg/lock"
	"github.com/moneta-ict/ledger/pkg/plan"
	"github.com/moneta-ict/ledger/pkg/service/approval"
	"github.com/moneta-ict/ledger/pkg/service/investment"
	"github.com/moneta-ict/ledger/pkg/service/ledger"
	"github.com/moneta-ict/ledger/webapi"
)

func main() {
	if err := run(); err != nil {
		charmlog.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	level, err := charmlog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = charmlog.InfoLevel
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	db, err := infra.NewDBConnection(cfg.Database, cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := infrarepo.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	uow := infrarepo.NewUoW(db)
	locks := lock.NewKeyed()

	ledgerSvc := ledger.New(uow, cfg.Ledger, locks, logger)
	investmentSvc := investment.New(uow, plan.Default(), cfg.Investment, locks, logger)
	approvalSvc := approval.New(uow, cfg.Approval, logger)

	// Accrual and maturity sweep. Hourly is fine: credits are back-dated to
	// their day boundary, so cadence never changes the ledger contents.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if _, err := investmentSvc.AccrueDailyReturns(ctx, time.Now()); err != nil {
				logger.Error("accrual run failed", "error", err)
			}
			if _, err := investmentSvc.CloseMatured(ctx, time.Now()); err != nil {
				logger.Error("maturity run failed", "error", err)
			}
			cancel()
		}
	}()

	app := webapi.NewApp(webapi.Services{
		Ledger:     ledgerSvc,
		Investment: investmentSvc,
		Approval:   approvalSvc,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", "env", cfg.Env, "address", addr)
	return app.Listen(addr)
}
