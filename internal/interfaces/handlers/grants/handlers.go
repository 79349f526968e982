package grants

import (
	"time"

	grantsvc "equify-backend/internal/application/grants"
	"equify-backend/internal/middleware"
	"equify-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Handlers holds dependencies for grant endpoints.
type Handlers struct {
	Service *grantsvc.Service
}

type scheduleEntryBody struct {
	VestingDate  string `json:"vesting_date"`
	SharesToVest int64  `json:"shares_to_vest"`
}

type createGrantBody struct {
	EmployeeID    string              `json:"employee_id"`
	PlanType      string              `json:"plan_type"`
	TotalShares   int64               `json:"total_shares"`
	ExercisePrice string              `json:"exercise_price"`
	Currency      string              `json:"currency"`
	GrantDate     string              `json:"grant_date"`
	Schedule      []scheduleEntryBody `json:"schedule"`
}

// Create POST /api/v1/grants — create a grant with its vesting schedule.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body createGrantBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	employeeID, err := uuid.Parse(body.EmployeeID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for employee_id", fiber.StatusBadRequest, nil)
	}

	in := grantsvc.CreateGrantInput{
		EmployeeID:  employeeID,
		PlanType:    body.PlanType,
		TotalShares: body.TotalShares,
		Currency:    body.Currency,
	}
	if body.ExercisePrice != "" {
		price, err := decimal.NewFromString(body.ExercisePrice)
		if err != nil {
			return response.Error(c, "exercise_price must be a decimal string", fiber.StatusBadRequest, nil)
		}
		in.ExercisePrice = &price
	}
	if body.GrantDate != "" {
		d, err := time.Parse("2006-01-02", body.GrantDate)
		if err != nil {
			return response.Error(c, "grant_date must be a YYYY-MM-DD date", fiber.StatusBadRequest, nil)
		}
		in.GrantDate = d
	}
	for _, entry := range body.Schedule {
		d, err := time.Parse("2006-01-02", entry.VestingDate)
		if err != nil {
			return response.Error(c, "vesting_date must be a YYYY-MM-DD date", fiber.StatusBadRequest, nil)
		}
		in.Schedule = append(in.Schedule, grantsvc.ScheduleEntry{
			VestingDate:  d,
			SharesToVest: entry.SharesToVest,
		})
	}

	grant, err := h.Service.CreateGrant(c.Context(), *actor, in)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.SuccessCreated(c, "Grant created", fiber.Map{"grant": grant}, nil)
}

// Get GET /api/v1/grants/:grant_id — grant with vesting events.
func (h *Handlers) Get(c *fiber.Ctx) error {
	grantID, err := uuid.Parse(c.Params("grant_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for grant_id", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.Service.GetGrant(c.Context(), *actor, grantID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Grant", result, nil)
}

// List GET /api/v1/grants — scoped to the actor.
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	grants, err := h.Service.ListGrants(c.Context(), *actor)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Grants", fiber.Map{"grants": grants}, nil)
}
