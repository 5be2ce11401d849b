// Command cli is the back-office operator tool. It lists the pending
// review queue, applies verdicts, and runs the accrual and maturity sweeps,
// all against the same database as the server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/moneta-ict/ledger/infra"
	infrarepo "github.com/moneta-ict/ledger/infra/repository"
	"github.com/moneta-ict/ledger/pkg/config"
	"github.com/moneta-ict/ledger/pkg/domain"
	"github.com/moneta-ict/ledger/pkg/lock"
	"github.com/moneta-ict/ledger/pkg/plan"
	"github.com/moneta-ict/ledger/pkg/service/investment"
	"github.com/moneta-ict/ledger/pkg/service/ledger"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func usage() {
	fmt.Println("Usage: cli <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  pending                          list transactions awaiting review")
	fmt.Println("  approve <tx_id> <resolver>       approve a pending transaction")
	fmt.Println("  reject <tx_id> <resolver>        reject a pending transaction")
	fmt.Println("  accrue                           credit due daily returns")
	fmt.Println("  close-matured                    complete matured investments")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Println(red("Failed to load configuration:"), err)
		os.Exit(1)
	}
	db, err := infra.NewDBConnection(cfg.Database, cfg.Env)
	if err != nil {
		fmt.Println(red("Failed to connect to database:"), err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	uow := infrarepo.NewUoW(db)
	locks := lock.NewKeyed()
	ledgerSvc := ledger.New(uow, cfg.Ledger, locks, logger)
	investmentSvc := investment.New(uow, plan.Default(), cfg.Investment, locks, logger)

	ctx := context.Background()

	switch os.Args[1] {
	case "pending":
		list, err := ledgerSvc.PendingTransactions(ctx)
		if err != nil {
			fmt.Println(red("Error:"), err)
			os.Exit(1)
		}
		if len(list) == 0 {
			fmt.Println("Review queue is empty.")
			return
		}
		for _, t := range list {
			printPending(t)
		}
	case "approve", "reject":
		if len(os.Args) < 4 {
			fmt.Printf("Usage: cli %s <tx_id> <resolver>\n", os.Args[1])
			os.Exit(1)
		}
		txID, err := uuid.Parse(os.Args[2])
		if err != nil {
			fmt.Println(red("Invalid transaction id:"), err)
			os.Exit(1)
		}
		decision := ledger.DecisionApprove
		if os.Args[1] == "reject" {
			decision = ledger.DecisionReject
		}
		if err := ledgerSvc.Resolve(ctx, txID, decision, os.Args[3]); err != nil {
			fmt.Println(red("Error:"), err)
			os.Exit(1)
		}
		if decision == ledger.DecisionApprove {
			fmt.Println(green("Approved"), txID)
		} else {
			fmt.Println(red("Rejected"), txID)
		}
	case "accrue":
		credited, err := investmentSvc.AccrueDailyReturns(ctx, time.Now())
		if err != nil {
			fmt.Println(red("Error:"), err)
			os.Exit(1)
		}
		fmt.Printf("Credited %s daily returns.\n", bold(credited))
	case "close-matured":
		closed, err := investmentSvc.CloseMatured(ctx, time.Now())
		if err != nil {
			fmt.Println(red("Error:"), err)
			os.Exit(1)
		}
		fmt.Printf("Closed %s matured investments.\n", bold(closed))
	default:
		usage()
		os.Exit(1)
	}
}

func printPending(t *domain.Transaction) {
	kind := yellow(string(t.Kind))
	age := time.Since(t.CreatedAt).Round(time.Second)
	fmt.Printf("%s  %s  %s  account=%s  age=%s\n",
		bold(t.ID), kind, t.Amount, t.AccountID, age)
	if t.Kind == domain.TxDeposit && t.ProofRef != "" {
		fmt.Printf("    proof: %s\n", t.ProofRef)
	}
	if t.Kind == domain.TxWithdrawal {
		fmt.Printf("    payout: %s %s (%s)\n",
			t.Payout.BankName, t.Payout.AccountNumber, t.Payout.AccountType)
	}
}
