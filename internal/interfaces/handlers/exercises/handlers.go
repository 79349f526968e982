package exercises

import (
	"equify-backend/internal/application/settlement"
	"equify-backend/internal/middleware"
	"equify-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers holds dependencies for exercise-order endpoints.
type Handlers struct {
	Service *settlement.Service
}

// Create POST /api/v1/exercises — employee requests exercise of a vesting
// event.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body struct {
		VestingEventID string `json:"vesting_event_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.VestingEventID == "" {
		return response.Error(c, "vesting_event_id is required", fiber.StatusBadRequest, nil)
	}
	eventID, err := uuid.Parse(body.VestingEventID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for vesting_event_id", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	order, err := h.Service.CreateOrder(c.Context(), *actor, eventID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.SuccessCreated(c, "Exercise order created", fiber.Map{"order": order}, nil)
}

// Approve POST /api/v1/exercises/:order_id/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for order_id", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	order, err := h.Service.Approve(c.Context(), *actor, orderID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Exercise order approved", fiber.Map{"order": order}, nil)
}

// Reject POST /api/v1/exercises/:order_id/reject — reason is mandatory.
func (h *Handlers) Reject(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for order_id", fiber.StatusBadRequest, nil)
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

	order, err := h.Service.Reject(c.Context(), *actor, orderID, body.Reason)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Exercise order rejected", fiber.Map{"order": order}, nil)
}

// Cancel POST /api/v1/exercises/:order_id/cancel — owning employee withdraws
// a pending order.
func (h *Handlers) Cancel(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for order_id", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	order, err := h.Service.Cancel(c.Context(), *actor, orderID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Exercise order cancelled", fiber.Map{"order": order}, nil)
}

// Process POST /api/v1/exercises/:order_id/process — settle an approved
// order.
func (h *Handlers) Process(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for order_id", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	order, err := h.Service.Process(c.Context(), *actor, orderID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Exercise order processed", fiber.Map{"order": order}, nil)
}

// Get GET /api/v1/exercises/:order_id
func (h *Handlers) Get(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for order_id", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	order, err := h.Service.GetOrder(c.Context(), *actor, orderID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Exercise order", fiber.Map{"order": order}, nil)
}

// List GET /api/v1/exercises?status= — scoped to the actor.
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	orders, err := h.Service.ListOrders(c.Context(), *actor, c.Query("status"))
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Exercise orders", fiber.Map{"orders": orders}, nil)
}
