package vesting

import (
	"time"

	vestingsvc "equify-backend/internal/application/vesting"
	"equify-backend/internal/middleware"
	"equify-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers holds dependencies for vesting endpoints.
type Handlers struct {
	Service *vestingsvc.Service
}

func parseAsOf(c *fiber.Ctx) (time.Time, error) {
	asOfStr := c.Query("as_of")
	if asOfStr == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", asOfStr)
}

// Refresh POST /api/v1/vesting/refresh?as_of=YYYY-MM-DD — advance due events.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	asOf, err := parseAsOf(c)
	if err != nil {
		return response.Error(c, "as_of must be a YYYY-MM-DD date", fiber.StatusBadRequest, nil)
	}
	advanced, err := h.Service.Refresh(c.Context(), asOf)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Vesting refreshed", fiber.Map{"advanced": advanced}, nil)
}

// TransferVested POST /api/v1/vesting/transfer-vested — move vested RSU/RSA
// shares into employee portfolios.
func (h *Handlers) TransferVested(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	asOf, err := parseAsOf(c)
	if err != nil {
		return response.Error(c, "as_of must be a YYYY-MM-DD date", fiber.StatusBadRequest, nil)
	}
	transferred, err := h.Service.TransferVested(c.Context(), *actor, asOf)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Vested shares transferred", fiber.Map{"transferred": transferred}, nil)
}

// List GET /api/v1/vesting?status= — vesting events scoped to the actor.
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	events, err := h.Service.ListEvents(c.Context(), *actor, c.Query("status"))
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Vesting events", fiber.Map{"vesting_events": events}, nil)
}
