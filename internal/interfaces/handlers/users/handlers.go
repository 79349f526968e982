package users

import (
	"context"
	"strings"

	"equify-backend/internal/application/emails"
	userssvc "equify-backend/internal/application/users"
	"equify-backend/internal/middleware"
	"equify-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for user account endpoints.
type Handlers struct {
	Service     *userssvc.Service
	EmailSender emails.Sender // optional; nil disables the welcome email
}

var userErrorStatus = map[string]int{
	"Invalid email format":     fiber.StatusBadRequest,
	"Invalid password format":  fiber.StatusBadRequest,
	"Email already registered": fiber.StatusConflict,
	"User not found":           fiber.StatusNotFound,
	"Missing user ID":          fiber.StatusBadRequest,
	"Missing update fields":    fiber.StatusBadRequest,
}

func userError(c *fiber.Ctx, err error) error {
	msg := err.Error()
	if code, ok := userErrorStatus[msg]; ok {
		return response.Error(c, msg, code, nil)
	}
	if strings.HasPrefix(msg, "Full name") || strings.HasPrefix(msg, "Invalid") || strings.HasPrefix(msg, "No valid") {
		return response.Error(c, msg, fiber.StatusBadRequest, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// Register POST /api/v1/users — create an account. Links a pre-provisioned
// employee record with the same email if one exists.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var body userssvc.CreateUserInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.CreateUser(c.Context(), body)
	if err != nil {
		return userError(c, err)
	}

	if h.EmailSender != nil {
		first := strings.SplitN(user.Fullname, " ", 2)[0]
		if err := h.EmailSender.SendWelcome(context.Background(), user.Email, first); err != nil {
			log.Warn().Err(err).Str("email", user.Email).Msg("welcome email failed")
		}
	}

	return response.SuccessCreated(c, "User created", fiber.Map{
		"user": fiber.Map{
			"user_id":  user.UserID,
			"email":    user.Email,
			"fullname": user.Fullname,
			"role":     user.Role,
		},
	}, nil)
}

// Me GET /api/v1/users/me — the acting user's profile.
func (h *Handlers) Me(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	user, err := h.Service.ViewUser(c.Context(), actor.UserID.String())
	if err != nil {
		return userError(c, err)
	}
	return response.Success(c, "User", fiber.Map{"user": user}, nil)
}

// UpdateRole PATCH /api/v1/users/:user_id/role — governed role change.
func (h *Handlers) UpdateRole(c *fiber.Ctx) error {
	var body struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil || body.Role == "" {
		return response.Error(c, "role is required", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var companyID *string
	if actor.CompanyID != nil {
		s := actor.CompanyID.String()
		companyID = &s
	}
	user, err := h.Service.UpdateUserRole(c.Context(), userssvc.UpdateUserRoleInput{
		ActorUserID:  actor.UserID.String(),
		ActorRole:    actor.Role,
		TargetUserID: c.Params("user_id"),
		TargetRole:   body.Role,
		CompanyID:    companyID,
	})
	if err != nil {
		return roleError(c, err)
	}
	return response.Success(c, "Role updated", fiber.Map{"user": user}, nil)
}

// Remove DELETE /api/v1/users/:user_id — detach a user from the company.
func (h *Handlers) Remove(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var companyID *string
	if actor.CompanyID != nil {
		s := actor.CompanyID.String()
		companyID = &s
	}
	err := h.Service.RemoveUserFromCompany(c.Context(), userssvc.RemoveUserFromCompanyInput{
		ActorUserID:  actor.UserID.String(),
		ActorRole:    actor.Role,
		TargetUserID: c.Params("user_id"),
		CompanyID:    companyID,
	})
	if err != nil {
		return roleError(c, err)
	}
	return response.Success(c, "User removed from company", nil, nil)
}

var roleErrorStatus = map[string]int{
	"Only super admins can assign company_admin or super_admin": fiber.StatusForbidden,
	"Target user not found":                                     fiber.StatusNotFound,
	"Cannot modify users outside your company":                  fiber.StatusForbidden,
	"Users cannot modify their own role":                        fiber.StatusForbidden,
	"Company must have at least one company_admin":              fiber.StatusConflict,
	"Invalid target role":                                       fiber.StatusBadRequest,
	"You cannot remove yourself from the company":               fiber.StatusForbidden,
	"User not found":                                            fiber.StatusNotFound,
}

func roleError(c *fiber.Ctx, err error) error {
	if code, ok := roleErrorStatus[err.Error()]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
