package webapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"

	"github.com/moneta-ict/ledger/infra/repository/memory"
	"github.com/moneta-ict/ledger/pkg/config"
	"github.com/moneta-ict/ledger/pkg/lock"
	"github.com/moneta-ict/ledger/pkg/plan"
	"github.com/moneta-ict/ledger/pkg/service/approval"
	"github.com/moneta-ict/ledger/pkg/service/investment"
	"github.com/moneta-ict/ledger/pkg/service/ledger"
)

type APITestSuite struct {
	suite.Suite
	app *fiber.App
}

func (s *APITestSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := memory.NewUoW()
	locks := lock.NewKeyed()

	s.app = NewApp(Services{
		Ledger: ledger.New(uow, config.Ledger{GrantWelcomeBonus: true, GrantReferralBonus: true}, locks, logger),
		Investment: investment.New(uow, plan.Default(), config.Investment{}, locks, logger),
		Approval: approval.New(uow, config.Approval{
			PollInterval: 10 * time.Millisecond,
			WaitTimeout:  time.Second,
			ProofWindow:  15 * time.Minute,
		}, logger),
	})
}

func (s *APITestSuite) request(method, path, body string) (int, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close() //nolint:errcheck

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func (s *APITestSuite) registerAccount() map[string]any {
	status, body := s.request("POST", "/accounts",
		`{"name":"Maria Gomez","email":"maria@example.com","country":"CO"}`)
	s.Require().Equal(fiber.StatusCreated, status)
	return body["data"].(map[string]any)
}

func (s *APITestSuite) TestRegisterAccount() {
	data := s.registerAccount()
	s.Equal("CO", data["country"])
	s.Equal("COP", data["currency"])
	s.Equal("12000", data["balance"])
	s.Equal("$ 12.000 COP", data["balance_display"])
	s.Len(data["referral_code"], 6)
}

func (s *APITestSuite) TestRegisterAccount_Validation() {
	status, _ := s.request("POST", "/accounts", `{"name":"M","email":"bad","country":"CO"}`)
	s.Equal(fiber.StatusBadRequest, status)

	status, _ = s.request("POST", "/accounts", `{"name":"Maria","email":"m@e.com","country":"BR"}`)
	s.Equal(fiber.StatusBadRequest, status)
}

func (s *APITestSuite) TestDepositFlow() {
	acct := s.registerAccount()
	id := acct["id"].(string)

	status, body := s.request("POST", "/accounts/"+id+"/deposits",
		`{"amount":"40000","proof_ref":"receipt-1"}`)
	s.Require().Equal(fiber.StatusCreated, status)
	txID := body["data"].(map[string]any)["transaction_id"].(string)

	// Pending: no balance change yet.
	status, body = s.request("GET", "/accounts/"+id, "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal("12000", body["data"].(map[string]any)["balance"])

	status, body = s.request("GET", "/transactions/"+txID+"/status", "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal("reviewing", body["data"].(map[string]any)["state"])

	status, _ = s.request("POST", "/transactions/"+txID+"/resolve",
		`{"decision":"approve","resolver":"ops@backoffice"}`)
	s.Require().Equal(fiber.StatusOK, status)

	status, body = s.request("GET", "/accounts/"+id, "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal("52000", body["data"].(map[string]any)["balance"])

	// A second verdict conflicts.
	status, _ = s.request("POST", "/transactions/"+txID+"/resolve",
		`{"decision":"reject","resolver":"ops2"}`)
	s.Equal(fiber.StatusConflict, status)
}

func (s *APITestSuite) TestDeposit_BelowMinimum() {
	acct := s.registerAccount()
	status, _ := s.request("POST", "/accounts/"+acct["id"].(string)+"/deposits",
		`{"amount":"100"}`)
	s.Equal(fiber.StatusBadRequest, status)
}

func (s *APITestSuite) TestWithdrawalFlow() {
	acct := s.registerAccount()
	id := acct["id"].(string)
	s.approveDeposit(id, "40000")

	status, body := s.request("POST", "/accounts/"+id+"/withdrawals",
		`{"amount":"25000","bank_name":"Bancolombia","account_number":"123456"}`)
	s.Require().Equal(fiber.StatusCreated, status)
	txID := body["data"].(map[string]any)["transaction_id"].(string)

	// Hold applies immediately.
	status, body = s.request("GET", "/accounts/"+id, "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal("27000", body["data"].(map[string]any)["balance"])

	// Rejection restores the hold.
	status, _ = s.request("POST", "/transactions/"+txID+"/resolve",
		`{"decision":"reject","resolver":"ops"}`)
	s.Require().Equal(fiber.StatusOK, status)

	status, body = s.request("GET", "/accounts/"+id, "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal("52000", body["data"].(map[string]any)["balance"])
}

func (s *APITestSuite) TestWithdrawal_InsufficientBalance() {
	acct := s.registerAccount()
	status, _ := s.request("POST", "/accounts/"+acct["id"].(string)+"/withdrawals",
		`{"amount":"25000","bank_name":"Bancolombia","account_number":"123456"}`)
	s.Equal(fiber.StatusUnprocessableEntity, status)
}

func (s *APITestSuite) TestPendingQueue() {
	acct := s.registerAccount()
	id := acct["id"].(string)

	status, _ := s.request("POST", "/accounts/"+id+"/deposits", `{"amount":"40000"}`)
	s.Require().Equal(fiber.StatusCreated, status)

	status, body := s.request("GET", "/transactions/pending", "")
	s.Require().Equal(fiber.StatusOK, status)
	queue := body["data"].([]any)
	s.Len(queue, 1)
	s.Equal("deposit", queue[0].(map[string]any)["kind"])
}

func (s *APITestSuite) TestPlans() {
	status, body := s.request("GET", "/plans?country=CO&sort=min", "")
	s.Require().Equal(fiber.StatusOK, status)
	plans := body["data"].([]any)
	s.Len(plans, 12)
	first := plans[0].(map[string]any)
	s.Equal("starter", first["id"])
	s.Equal("$ 50.000 COP", first["min_investment_display"])

	status, body = s.request("GET", "/plans/supreme?country=PE", "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal("supreme", body["data"].(map[string]any)["id"])

	status, _ = s.request("GET", "/plans?country=XX", "")
	s.Equal(fiber.StatusBadRequest, status)

	status, _ = s.request("GET", "/plans/nonexistent", "")
	s.Equal(fiber.StatusNotFound, status)
}

func (s *APITestSuite) TestInvestmentFlow() {
	acct := s.registerAccount()
	id := acct["id"].(string)
	s.approveDeposit(id, "88000")

	status, body := s.request("POST", "/accounts/"+id+"/investments",
		`{"plan_id":"starter","amount":"50000"}`)
	s.Require().Equal(fiber.StatusCreated, status)
	inv := body["data"].(map[string]any)
	s.Equal("starter", inv["plan_id"])
	s.Equal("8600", inv["daily_return"])
	s.Equal("active", inv["status"])

	status, body = s.request("GET", "/accounts/"+id+"/investments", "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Len(body["data"].([]any), 1)

	status, body = s.request("GET", "/accounts/"+id+"/snapshot", "")
	s.Require().Equal(fiber.StatusOK, status)
	snap := body["data"].(map[string]any)
	s.Equal(float64(1), snap["active_investments"])

	// Same-instant accrual credits nothing.
	status, body = s.request("POST", "/investments/accrue", "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal(float64(0), body["data"].(map[string]any)["credits"])
}

func (s *APITestSuite) TestInvestment_BelowPlanMinimum() {
	acct := s.registerAccount()
	id := acct["id"].(string)
	s.approveDeposit(id, "100000")

	status, _ := s.request("POST", "/accounts/"+id+"/investments",
		`{"plan_id":"basico","amount":"60000"}`)
	s.Equal(fiber.StatusBadRequest, status)
}

func (s *APITestSuite) approveDeposit(accountID, amount string) {
	status, body := s.request("POST", "/accounts/"+accountID+"/deposits",
		`{"amount":"`+amount+`","proof_ref":"receipt"}`)
	s.Require().Equal(fiber.StatusCreated, status)
	txID := body["data"].(map[string]any)["transaction_id"].(string)
	status, _ = s.request("POST", "/transactions/"+txID+"/resolve",
		`{"decision":"approve","resolver":"ops"}`)
	s.Require().Equal(fiber.StatusOK, status)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
