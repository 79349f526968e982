package companies

import (
	companysvc "equify-backend/internal/application/companies"
	"equify-backend/internal/middleware"
	"equify-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers holds dependencies for company endpoints.
type Handlers struct {
	Service *companysvc.Service
}

// Create POST /api/v1/companies — create a company and seed its portfolios.
// The creator becomes company_admin; their session is refreshed so the new
// scope applies immediately.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body companysvc.CreateCompanyInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	company, err := h.Service.CreateCompany(c.Context(), *actor, body)
	if err != nil {
		return response.DomainError(c, err)
	}

	if m, ok := middleware.GetUser(c).(map[string]interface{}); ok {
		m["company_id"] = company.CompanyID.String()
		m["role"] = "company_admin"
	}
	return response.SuccessCreated(c, "Company created", fiber.Map{"company": company}, nil)
}

// Get GET /api/v1/companies/:company_id — company with its employees.
func (h *Handlers) Get(c *fiber.Ctx) error {
	companyID, err := uuid.Parse(c.Params("company_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for company_id", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.Service.GetCompany(c.Context(), *actor, companyID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Company", result, nil)
}

// CreateEmployee POST /api/v1/companies/employees — register an employee at
// the actor's company.
func (h *Handlers) CreateEmployee(c *fiber.Ctx) error {
	var body companysvc.CreateEmployeeInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	employee, err := h.Service.CreateEmployee(c.Context(), *actor, body)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.SuccessCreated(c, "Employee created", fiber.Map{"employee": employee}, nil)
}

// ListEmployees GET /api/v1/companies/employees
func (h *Handlers) ListEmployees(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	employees, err := h.Service.ListEmployees(c.Context(), *actor)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Employees", fiber.Map{"employees": employees}, nil)
}
