package middleware

import (
	"equify-backend/internal/domain"
	"equify-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with standard
// error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals("auth", user)
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// GetActor builds the explicit Actor passed into services from the session
// user. Returns nil when not authenticated or the session shape is invalid.
func GetActor(c *fiber.Ctx) *domain.Actor {
	u := GetUser(c)
	if u == nil {
		return nil
	}
	m, ok := u.(map[string]interface{})
	if !ok {
		return nil
	}
	idStr, _ := m["user_id"].(string)
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return nil
	}
	actor := &domain.Actor{UserID: userID}
	actor.Role, _ = m["role"].(string)
	actor.CompanyID = parseOptionalUUID(m["company_id"])
	actor.EmployeeID = parseOptionalUUID(m["employee_id"])
	if raw, ok := m["permissions"].([]interface{}); ok {
		for _, p := range raw {
			if s, ok := p.(string); ok {
				actor.Permissions = append(actor.Permissions, s)
			}
		}
	}
	return actor
}

func parseOptionalUUID(v interface{}) *uuid.UUID {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
