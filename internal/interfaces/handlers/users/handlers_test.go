package users

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	userssvc "equify-backend/internal/application/users"
	"equify-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingSender struct {
	mu       sync.Mutex
	welcomes []string
}

func (r *recordingSender) SendWelcome(ctx context.Context, toEmail, firstName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.welcomes = append(r.welcomes, toEmail+"|"+firstName)
	return nil
}

func (r *recordingSender) SendOrderOutcome(ctx context.Context, toEmail, fullname, orderNumber, outcome string, reason *string) error {
	return nil
}

func setupUsersHandlers(t *testing.T) (*gorm.DB, *fiber.App, *recordingSender, map[string]interface{}) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Employee{}))

	sender := &recordingSender{}
	h := &Handlers{Service: &userssvc.Service{DB: db}, EmailSender: sender}

	session := map[string]interface{}{}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if len(session) > 0 {
			c.Locals("user", session)
		}
		return c.Next()
	})
	app.Post("/api/v1/users", h.Register)
	app.Get("/api/v1/users/me", h.Me)
	app.Patch("/api/v1/users/:user_id/role", h.UpdateRole)
	app.Delete("/api/v1/users/:user_id", h.Remove)

	return db, app, sender, session
}

func postJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) (int, map[string]interface{}) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestRegister_CreatesUserAndSendsWelcome(t *testing.T) {
	db, app, sender, _ := setupUsersHandlers(t)

	status, out := postJSON(t, app, "POST", "/api/v1/users", map[string]string{
		"email":    "jane@acme.test",
		"password": "hunter2!x",
		"fullname": "jane doe",
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "success", out["status"])
	user := out["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "jane@acme.test", user["email"])
	assert.Equal(t, "Jane Doe", user["fullname"])
	assert.Equal(t, "employee", user["role"])

	var stored domain.User
	require.NoError(t, db.Where("email = ?", "jane@acme.test").First(&stored).Error)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.welcomes, 1)
	assert.Equal(t, "jane@acme.test|Jane", sender.welcomes[0])
}

func TestRegister_InvalidEmailIs400(t *testing.T) {
	_, app, _, _ := setupUsersHandlers(t)
	status, out := postJSON(t, app, "POST", "/api/v1/users", map[string]string{
		"email":    "nope",
		"password": "hunter2!x",
		"fullname": "Jane Doe",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "error", out["status"])
}

func TestRegister_DuplicateEmailIs409(t *testing.T) {
	_, app, _, _ := setupUsersHandlers(t)
	body := map[string]string{"email": "jane@acme.test", "password": "hunter2!x", "fullname": "Jane Doe"}

	status, _ := postJSON(t, app, "POST", "/api/v1/users", body)
	require.Equal(t, fiber.StatusCreated, status)
	status, _ = postJSON(t, app, "POST", "/api/v1/users", body)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestMe_RequiresSession(t *testing.T) {
	_, app, _, _ := setupUsersHandlers(t)
	status, _ := postJSON(t, app, "GET", "/api/v1/users/me", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestUpdateRole_ForbiddenMessagesMapToStatus(t *testing.T) {
	db, app, _, session := setupUsersHandlers(t)

	companyID := uuid.New()
	admin := domain.User{Email: "admin@acme.test", PasswordHash: "x", Fullname: "Admin", Role: "company_admin", CompanyID: &companyID}
	require.NoError(t, db.Create(&admin).Error)
	target := domain.User{Email: "emp@acme.test", PasswordHash: "x", Fullname: "Emp", Role: "employee", CompanyID: &companyID}
	require.NoError(t, db.Create(&target).Error)

	session["user_id"] = admin.UserID.String()
	session["role"] = admin.Role
	session["company_id"] = companyID.String()

	status, out := postJSON(t, app, "PATCH", "/api/v1/users/"+target.UserID.String()+"/role", map[string]string{"role": "hr_admin"})
	require.Equal(t, fiber.StatusOK, status)
	user := out["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "hr_admin", user["role"])

	// company_admin cannot hand out company_admin
	status, _ = postJSON(t, app, "PATCH", "/api/v1/users/"+target.UserID.String()+"/role", map[string]string{"role": "company_admin"})
	assert.Equal(t, fiber.StatusForbidden, status)

	// invalid role
	status, _ = postJSON(t, app, "PATCH", "/api/v1/users/"+target.UserID.String()+"/role", map[string]string{"role": "warlord"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestRemove_SelfRemovalIs403(t *testing.T) {
	db, app, _, session := setupUsersHandlers(t)

	companyID := uuid.New()
	admin := domain.User{Email: "admin@acme.test", PasswordHash: "x", Fullname: "Admin", Role: "company_admin", CompanyID: &companyID}
	require.NoError(t, db.Create(&admin).Error)

	session["user_id"] = admin.UserID.String()
	session["role"] = admin.Role
	session["company_id"] = companyID.String()

	status, _ := postJSON(t, app, "DELETE", "/api/v1/users/"+admin.UserID.String(), nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestRemove_DetachesTarget(t *testing.T) {
	db, app, _, session := setupUsersHandlers(t)

	companyID := uuid.New()
	admin := domain.User{Email: "admin@acme.test", PasswordHash: "x", Fullname: "Admin", Role: "company_admin", CompanyID: &companyID}
	require.NoError(t, db.Create(&admin).Error)
	second := domain.User{Email: "admin2@acme.test", PasswordHash: "x", Fullname: "Admin Two", Role: "company_admin", CompanyID: &companyID}
	require.NoError(t, db.Create(&second).Error)
	target := domain.User{Email: "emp@acme.test", PasswordHash: "x", Fullname: "Emp", Role: "hr_admin", CompanyID: &companyID}
	require.NoError(t, db.Create(&target).Error)

	session["user_id"] = admin.UserID.String()
	session["role"] = admin.Role
	session["company_id"] = companyID.String()

	status, _ := postJSON(t, app, "DELETE", "/api/v1/users/"+target.UserID.String(), nil)
	require.Equal(t, fiber.StatusOK, status)

	var detached domain.User
	require.NoError(t, db.Where("user_id = ?", target.UserID).First(&detached).Error)
	assert.Nil(t, detached.CompanyID)
	assert.Equal(t, "employee", detached.Role)
}
