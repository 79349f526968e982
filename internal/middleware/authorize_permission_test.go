package middleware

import (
	"net/http/httptest"
	"testing"

	"equify-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func permApp(permission string, sessionUser interface{}) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if sessionUser != nil {
			c.Locals("user", sessionUser)
		}
		return c.Next()
	})
	app.Get("/guarded", AuthorizePermission(permission), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func statusOf(t *testing.T, app *fiber.App) int {
	resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthorizePermission_NoSession(t *testing.T) {
	app := permApp(constants.ViewData, nil)
	assert.Equal(t, fiber.StatusUnauthorized, statusOf(t, app))
}

func TestAuthorizePermission_RoleAllowed(t *testing.T) {
	app := permApp(constants.ApproveCashTransfers, map[string]interface{}{
		"user_id": "u-1", "role": constants.FinanceAdmin,
	})
	assert.Equal(t, fiber.StatusOK, statusOf(t, app))
}

func TestAuthorizePermission_RoleForbidden(t *testing.T) {
	app := permApp(constants.ApproveCashTransfers, map[string]interface{}{
		"user_id": "u-1", "role": constants.Employee,
	})
	assert.Equal(t, fiber.StatusForbidden, statusOf(t, app))
}

func TestAuthorizePermission_ExplicitFlagBypassesRole(t *testing.T) {
	app := permApp(constants.ApproveCashTransfers, map[string]interface{}{
		"user_id":     "u-1",
		"role":        constants.Employee,
		"permissions": []interface{}{constants.ApproveCashTransfers},
	})
	assert.Equal(t, fiber.StatusOK, statusOf(t, app))
}

func TestAuthorizePermission_UnknownPermission(t *testing.T) {
	app := permApp("not_a_permission", map[string]interface{}{
		"user_id": "u-1", "role": constants.SuperAdmin,
	})
	assert.Equal(t, fiber.StatusInternalServerError, statusOf(t, app))
}

func TestAuthorizePermission_RequestExerciseIsEmployeeOnly(t *testing.T) {
	app := permApp(constants.RequestExercise, map[string]interface{}{
		"user_id": "u-1", "role": constants.FinanceAdmin,
	})
	assert.Equal(t, fiber.StatusForbidden, statusOf(t, app))

	app = permApp(constants.RequestExercise, map[string]interface{}{
		"user_id": "u-1", "role": constants.Employee,
	})
	assert.Equal(t, fiber.StatusOK, statusOf(t, app))
}
