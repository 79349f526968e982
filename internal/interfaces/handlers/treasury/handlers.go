package treasury

import (
	treasurysvc "equify-backend/internal/application/treasury"
	"equify-backend/internal/middleware"
	"equify-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Handlers holds dependencies for treasury endpoints.
type Handlers struct {
	Service *treasurysvc.Service
}

// CreateDeposit POST /api/v1/treasury/deposits — request a cash deposit into
// a company or employee cash portfolio.
func (h *Handlers) CreateDeposit(c *fiber.Ctx) error {
	var body struct {
		CompanyID  string `json:"company_id"`
		EmployeeID string `json:"employee_id"`
		Amount     string `json:"amount"`
		Currency   string `json:"currency"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var companyID uuid.UUID
	if body.CompanyID != "" {
		parsed, err := uuid.Parse(body.CompanyID)
		if err != nil {
			return response.Error(c, "Invalid UUID format for company_id", fiber.StatusBadRequest, nil)
		}
		companyID = parsed
	} else if actor.CompanyID != nil {
		companyID = *actor.CompanyID
	} else {
		return response.Error(c, "company_id is required", fiber.StatusBadRequest, nil)
	}

	var employeeID *uuid.UUID
	if body.EmployeeID != "" {
		parsed, err := uuid.Parse(body.EmployeeID)
		if err != nil {
			return response.Error(c, "Invalid UUID format for employee_id", fiber.StatusBadRequest, nil)
		}
		employeeID = &parsed
	} else if actor.EmployeeID != nil {
		employeeID = actor.EmployeeID
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		return response.Error(c, "amount must be a decimal string", fiber.StatusBadRequest, nil)
	}

	transfer, err := h.Service.CreateDeposit(c.Context(), *actor, treasurysvc.CreateDepositInput{
		CompanyID:  companyID,
		EmployeeID: employeeID,
		Amount:     amount,
		Currency:   body.Currency,
	})
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.SuccessCreated(c, "Deposit requested", fiber.Map{"transfer": transfer}, nil)
}

// Approve POST /api/v1/treasury/transfers/:transfer_id/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
	transferID, err := uuid.Parse(c.Params("transfer_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for transfer_id", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	transfer, err := h.Service.ApproveCashTransfer(c.Context(), *actor, transferID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Deposit approved", fiber.Map{"transfer": transfer}, nil)
}

// Reject POST /api/v1/treasury/transfers/:transfer_id/reject
func (h *Handlers) Reject(c *fiber.Ctx) error {
	transferID, err := uuid.Parse(c.Params("transfer_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for transfer_id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "reason is required", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	transfer, err := h.Service.RejectCashTransfer(c.Context(), *actor, transferID, body.Reason)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Deposit rejected", fiber.Map{"transfer": transfer}, nil)
}

// ListCashTransfers GET /api/v1/treasury/transfers?status=
func (h *Handlers) ListCashTransfers(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	transfers, err := h.Service.ListCashTransfers(c.Context(), *actor, c.Query("status"))
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Cash transfers", fiber.Map{"transfers": transfers}, nil)
}

// ListShareTransfers GET /api/v1/treasury/share-transfers
func (h *Handlers) ListShareTransfers(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	transfers, err := h.Service.ListShareTransfers(c.Context(), *actor)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Share transfers", fiber.Map{"transfers": transfers}, nil)
}

// ListPortfolios GET /api/v1/treasury/portfolios — portfolios visible to the
// actor.
func (h *Handlers) ListPortfolios(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	portfolios, err := h.Service.GetPortfolios(c.Context(), *actor)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Portfolios", fiber.Map{"portfolios": portfolios}, nil)
}
