// Package account exposes the account and ledger endpoints.
package account

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nestbank/nestbank/config"
	"github.com/nestbank/nestbank/pkg/domain"
	"github.com/nestbank/nestbank/pkg/fundingsource"
	authsvc "github.com/nestbank/nestbank/pkg/service/auth"
	"github.com/nestbank/nestbank/pkg/service/ledger"
	"github.com/nestbank/nestbank/webapi/common"
	"github.com/nestbank/nestbank/webapi/middleware"
)

// Routes registers the account endpoints. All of them require an
// authenticated session.
//
//   - POST /account                  : open an account of the requested type.
//   - GET  /account                  : list the caller's accounts.
//   - POST /account/:id/fund         : fund the account.
//   - GET  /account/:id/transactions : list the account's history.
func Routes(app *fiber.App, ledgerSvc *ledger.Service, authSvc *authsvc.Service, cfg *config.AppConfig) {
	jwt := middleware.Protected(cfg.Session)
	session := middleware.SessionRequired(authSvc)
	app.Post("/account", jwt, session, CreateAccount(ledgerSvc))
	app.Get("/account", jwt, session, GetAccounts(ledgerSvc))
	app.Post("/account/:id/fund", jwt, session, Fund(ledgerSvc, cfg))
	app.Get("/account/:id/transactions", jwt, session, GetTransactions(ledgerSvc))
}

// CreateAccount returns the handler for opening an account.
func CreateAccount(ledgerSvc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, ok := middleware.CallerID(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing user context", fiber.StatusUnauthorized)
		}
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err
		}
		accountType, err := domain.ParseAccountType(input.AccountType)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account type", err)
		}
		a, err := ledgerSvc.CreateAccount(c.Context(), callerID, accountType)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", a)
	}
}

// GetAccounts returns the handler for listing the caller's accounts.
func GetAccounts(ledgerSvc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, ok := middleware.CallerID(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing user context", fiber.StatusUnauthorized)
		}
		accounts, err := ledgerSvc.GetAccounts(c.Context(), callerID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts", accounts)
	}
}

// Fund returns the handler for funding an account. The funding source and
// the configured amount cap are checked here, before the ledger engine runs.
func Fund(ledgerSvc *ledger.Service, cfg *config.AppConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, ok := middleware.CallerID(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing user context", fiber.StatusUnauthorized)
		}
		accountID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", nil, "account ID must be a valid UUID", fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[FundRequest](c)
		if input == nil {
			return err
		}
		if input.AmountCents > cfg.Funding.MaxAmountCents {
			return common.ProblemDetailsJSON(c, "Amount too large",
				fmt.Errorf("%w: amount exceeds the maximum of %d cents", domain.ErrValidation, cfg.Funding.MaxAmountCents))
		}
		src := fundingsource.Source{
			Kind:          fundingsource.Kind(input.FundingSource),
			CardNumber:    input.CardNumber,
			RoutingNumber: input.RoutingNumber,
		}
		if err := fundingsource.Validate(src); err != nil {
			return common.ProblemDetailsJSON(c, "Invalid funding source", err)
		}
		description := input.Description
		if description == "" {
			description = defaultDescription(src.Kind)
		}
		entry, account, err := ledgerSvc.Fund(c.Context(), accountID, callerID, input.AmountCents, description)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Funding failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account funded", FundResponse{
			Transaction:     entry,
			NewBalanceCents: account.Balance,
		})
	}
}

// GetTransactions returns the handler for listing account history.
func GetTransactions(ledgerSvc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, ok := middleware.CallerID(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing user context", fiber.StatusUnauthorized)
		}
		accountID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", nil, "account ID must be a valid UUID", fiber.StatusBadRequest)
		}
		entries, err := ledgerSvc.GetTransactions(c.Context(), accountID, callerID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions", entries)
	}
}

func defaultDescription(kind fundingsource.Kind) string {
	switch kind {
	case fundingsource.KindCard:
		return "Card deposit"
	case fundingsource.KindBankTransfer:
		return "Bank transfer deposit"
	default:
		return "Deposit"
	}
}
