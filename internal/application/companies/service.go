package companies

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"equify-backend/internal/application/ledger"
	"equify-backend/internal/domain"
	"equify-backend/internal/pkg/constants"
	"equify-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service manages companies and their employee records.
type Service struct {
	DB *gorm.DB
}

type CreateCompanyInput struct {
	Name             string `json:"name"`
	CountryCode      string `json:"country_code"`
	Currency         string `json:"currency"`
	AuthorizedShares int64  `json:"authorized_shares"`
}

func generateCompanyCode(name string, companyID uuid.UUID) string {
	onlyLetters := regexp.MustCompile(`[^A-Za-z]`).ReplaceAllString(name, "")
	prefix := strings.ToUpper(onlyLetters)
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	for len(prefix) < 2 {
		prefix += "X"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(companyID.String(), "-", ""))
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return prefix + "-" + suffix
}

// CreateCompany creates a company, seeds its reserved-share pool (funded with
// the authorized share count) and its treasury cash portfolio, and promotes
// the creating user to company_admin of the new company.
func (s *Service) CreateCompany(ctx context.Context, actor domain.Actor, in CreateCompanyInput) (*domain.Company, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if in.AuthorizedShares <= 0 {
		return nil, fmt.Errorf("%w: authorized_shares must be positive", domain.ErrValidation)
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if !validation.IsValidCurrency(in.Currency) {
		return nil, fmt.Errorf("%w: invalid currency %q", domain.ErrValidation, in.Currency)
	}

	companyID := uuid.New()
	company := &domain.Company{
		CompanyID:        companyID,
		Name:             strings.TrimSpace(in.Name),
		Code:             generateCompanyCode(in.Name, companyID),
		CountryCode:      strings.ToUpper(in.CountryCode),
		Currency:         in.Currency,
		AuthorizedShares: in.AuthorizedShares,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(company).Error; err != nil {
			return err
		}

		reserved := &domain.Portfolio{
			CompanyID:       companyID,
			Kind:            domain.PortfolioCompanyReserved,
			Name:            "Reserved Share Pool",
			TotalShares:     in.AuthorizedShares,
			AvailableShares: in.AuthorizedShares,
			Currency:        in.Currency,
		}
		if err := tx.Create(reserved).Error; err != nil {
			return err
		}

		treasury := &domain.Portfolio{
			CompanyID: companyID,
			Kind:      domain.PortfolioCompanyCash,
			Name:      "Company Treasury",
			Currency:  in.Currency,
		}
		if err := tx.Create(treasury).Error; err != nil {
			return err
		}

		if err := tx.Model(&domain.User{}).
			Where("user_id = ?", actor.UserID).
			Updates(map[string]interface{}{
				"company_id": companyID,
				"role":       constants.CompanyAdmin,
			}).Error; err != nil {
			return err
		}

		return ledger.RecordEvent(tx, "company", companyID, "CREATED", actor.UserID, map[string]interface{}{
			"code":              company.Code,
			"authorized_shares": in.AuthorizedShares,
		})
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

// GetCompany returns the company with its employees.
func (s *Service) GetCompany(ctx context.Context, actor domain.Actor, companyID uuid.UUID) (map[string]interface{}, error) {
	if actor.CompanyID == nil || *actor.CompanyID != companyID {
		return nil, fmt.Errorf("%w: not a member of this company", domain.ErrForbidden)
	}
	var company domain.Company
	if err := s.DB.WithContext(ctx).Where("company_id = ?", companyID).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: company %s", domain.ErrNotFound, companyID)
		}
		return nil, err
	}

	var employees []domain.Employee
	if err := s.DB.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&employees).Error; err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"company_id":        company.CompanyID,
		"name":              company.Name,
		"code":              company.Code,
		"country_code":      company.CountryCode,
		"currency":          company.Currency,
		"authorized_shares": company.AuthorizedShares,
		"createdAt":         company.CreatedAt,
		"updatedAt":         company.UpdatedAt,
		"employees":         employees,
	}, nil
}

type CreateEmployeeInput struct {
	Fullname string     `json:"fullname"`
	Email    string     `json:"email"`
	UserID   *uuid.UUID `json:"user_id"`
}

// CreateEmployee registers an employee at the actor's company and seeds their
// cash portfolio. If a user account is linked, that user is stamped with the
// employee and company ids so future sessions carry employee scope.
func (s *Service) CreateEmployee(ctx context.Context, actor domain.Actor, in CreateEmployeeInput) (*domain.Employee, error) {
	if actor.CompanyID == nil {
		return nil, fmt.Errorf("%w: actor is not attached to a company", domain.ErrForbidden)
	}
	if !validation.IsValidFullname(in.Fullname) {
		return nil, fmt.Errorf("%w: invalid fullname", domain.ErrValidation)
	}
	if !validation.IsValidEmail(in.Email) {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	companyID := *actor.CompanyID

	var company domain.Company
	if err := s.DB.WithContext(ctx).Where("company_id = ?", companyID).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: company %s", domain.ErrNotFound, companyID)
		}
		return nil, err
	}

	employee := &domain.Employee{
		CompanyID: companyID,
		UserID:    in.UserID,
		Fullname:  strings.TrimSpace(in.Fullname),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Status:    "active",
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&domain.Employee{}).
			Where("company_id = ? AND email = ?", companyID, employee.Email).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: employee with this email already exists", domain.ErrConflict)
		}

		if err := tx.Create(employee).Error; err != nil {
			return err
		}

		cash := &domain.Portfolio{
			CompanyID:  companyID,
			EmployeeID: &employee.EmployeeID,
			Kind:       domain.PortfolioEmployeeCash,
			Name:       "Cash",
			Currency:   company.Currency,
		}
		if err := tx.Create(cash).Error; err != nil {
			return err
		}

		if in.UserID != nil {
			if err := tx.Model(&domain.User{}).
				Where("user_id = ?", *in.UserID).
				Updates(map[string]interface{}{
					"company_id":  companyID,
					"employee_id": employee.EmployeeID,
				}).Error; err != nil {
				return err
			}
		}

		return ledger.RecordEvent(tx, "employee", employee.EmployeeID, "CREATED", actor.UserID, map[string]interface{}{
			"email": employee.Email,
		})
	})
	if err != nil {
		return nil, err
	}
	return employee, nil
}

// ListEmployees returns the employees of the actor's company.
func (s *Service) ListEmployees(ctx context.Context, actor domain.Actor) ([]domain.Employee, error) {
	if actor.CompanyID == nil {
		return nil, fmt.Errorf("%w: actor is not attached to a company", domain.ErrForbidden)
	}
	var employees []domain.Employee
	err := s.DB.WithContext(ctx).
		Where("company_id = ?", *actor.CompanyID).
		Order("created_at ASC").
		Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}
