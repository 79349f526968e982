package users

import (
	"context"
	"errors"
	"strings"
	"unicode"

	policies "equify-backend/internal/application/policies/user"
	"equify-backend/internal/domain"
	"equify-backend/internal/pkg/constants"
	"equify-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service holds DB and Redis for user account operations.
type Service struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

type CreateUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Fullname string `json:"fullname"`
}

// CreateUser registers a new account with the employee role. The caller
// sanitizes password_hash before returning the model.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if in.Email == "" || !validation.IsValidEmail(in.Email) {
		return nil, errors.New("Invalid email format")
	}
	if in.Password == "" || !validation.IsValidPassword(in.Password) {
		return nil, errors.New("Invalid password format")
	}
	trimmed := strings.TrimSpace(in.Fullname)
	if trimmed == "" {
		return nil, errors.New("Full name is required and must be a non-empty string")
	}
	if !validation.IsValidFullname(trimmed) {
		return nil, errors.New("Full name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)")
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	fullname := titleCaseAndNormalize(trimmed)

	var existing domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, errors.New("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Fullname:     fullname,
		Role:         constants.Employee,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}

	// Link a pre-provisioned employee record with a matching email, if any.
	var emp domain.Employee
	if err := s.DB.WithContext(ctx).Where("email = ? AND user_id IS NULL", email).First(&emp).Error; err == nil {
		if err := s.DB.WithContext(ctx).Model(&domain.Employee{}).
			Where("employee_id = ?", emp.EmployeeID).
			Update("user_id", u.UserID).Error; err != nil {
			return nil, err
		}
		if err := s.DB.WithContext(ctx).Model(&domain.User{}).
			Where("user_id = ?", u.UserID).
			Updates(map[string]interface{}{
				"company_id":  emp.CompanyID,
				"employee_id": emp.EmployeeID,
			}).Error; err != nil {
			return nil, err
		}
		u.CompanyID = &emp.CompanyID
		u.EmployeeID = &emp.EmployeeID
	}
	return u, nil
}

// ViewUser returns a user by ID.
func (s *Service) ViewUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, errors.New("Missing user ID")
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("User not found")
		}
		return nil, err
	}
	return &u, nil
}

type UpdateUserRoleInput struct {
	ActorUserID  string
	ActorRole    string
	TargetUserID string
	TargetRole   string
	CompanyID    *string
}

// UpdateUserRole changes a user's role after the governance policy passes and
// destroys the target's sessions so the new role takes effect immediately.
func (s *Service) UpdateUserRole(ctx context.Context, in UpdateUserRoleInput) (*domain.User, error) {
	if err := policies.ValidateRoleAssignment(s.DB, policies.ValidateRoleAssignmentParams{
		ActorRole:    in.ActorRole,
		TargetRole:   in.TargetRole,
		ActorUserID:  in.ActorUserID,
		TargetUserID: in.TargetUserID,
		CompanyID:    in.CompanyID,
	}); err != nil {
		return nil, err
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", in.TargetUserID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("User not found")
		}
		return nil, err
	}
	u.Role = in.TargetRole
	if err := s.DB.WithContext(ctx).Save(&u).Error; err != nil {
		return nil, err
	}
	if s.Rdb != nil {
		policies.DestroyUserSessions(ctx, s.Rdb, in.TargetUserID)
	}
	return &u, nil
}

type RemoveUserFromCompanyInput struct {
	ActorUserID  string
	ActorRole    string
	TargetUserID string
	CompanyID    *string
}

// RemoveUserFromCompany detaches a user from their company, demotes them to
// employee and destroys their sessions.
func (s *Service) RemoveUserFromCompany(ctx context.Context, in RemoveUserFromCompanyInput) error {
	target, err := policies.ValidateCompanyMembershipChange(s.DB, policies.ValidateCompanyMembershipChangeParams{
		ActorUserID:  in.ActorUserID,
		ActorRole:    in.ActorRole,
		TargetUserID: in.TargetUserID,
		CompanyID:    in.CompanyID,
	})
	if err != nil {
		return err
	}
	target.CompanyID = nil
	target.EmployeeID = nil
	target.Role = constants.Employee
	if err := s.DB.WithContext(ctx).Save(target).Error; err != nil {
		return err
	}
	if s.Rdb != nil {
		policies.DestroyUserSessions(ctx, s.Rdb, in.TargetUserID)
	}
	return nil
}

// UpdateUser updates allowed profile fields. Allowed: email, password,
// fullname.
func (s *Service) UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) (*domain.User, error) {
	if userID == "" {
		return nil, errors.New("Missing user ID")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, errors.New("Invalid user ID format (must be a valid UUID)")
	}
	if len(fields) == 0 {
		return nil, errors.New("Missing update fields")
	}

	allowed := map[string]bool{"email": true, "password": true, "fullname": true}
	upd := make(map[string]interface{})
	for k, v := range fields {
		if allowed[k] {
			upd[k] = v
		}
	}
	if len(upd) == 0 {
		return nil, errors.New("No valid update fields provided")
	}

	if e, ok := upd["email"].(string); ok && e != "" {
		if !validation.IsValidEmail(e) {
			return nil, errors.New("Invalid email format")
		}
		upd["email"] = strings.TrimSpace(strings.ToLower(e))
	}
	if p, ok := upd["password"].(string); ok && p != "" {
		if !validation.IsValidPassword(p) {
			return nil, errors.New("Invalid password format")
		}
		hash, _ := bcrypt.GenerateFromPassword([]byte(p), 10)
		upd["password_hash"] = string(hash)
		delete(upd, "password")
	}
	if fn, ok := upd["fullname"].(string); ok {
		trimmed := strings.TrimSpace(fn)
		if trimmed == "" {
			return nil, errors.New("Full name must be a non-empty string")
		}
		if !validation.IsValidFullname(trimmed) {
			return nil, errors.New("Full name contains invalid characters")
		}
		upd["fullname"] = titleCaseAndNormalize(trimmed)
	}

	if e, ok := upd["email"].(string); ok {
		var dup domain.User
		if err := s.DB.WithContext(ctx).Where("email = ? AND user_id != ?", e, userID).First(&dup).Error; err == nil {
			return nil, errors.New("Email already registered")
		}
	}

	result := s.DB.WithContext(ctx).Model(&domain.User{}).Where("user_id = ?", userID).Updates(upd)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errors.New("User not found")
	}

	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func titleCaseAndNormalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	var b strings.Builder
	capitalize := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !capitalize {
				b.WriteRune(' ')
				capitalize = true
			}
			continue
		}
		if capitalize {
			b.WriteRune(unicode.ToUpper(r))
			capitalize = false
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
