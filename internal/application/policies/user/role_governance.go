package policies

import (
	"errors"

	"equify-backend/internal/domain"
	"equify-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrOnlySuperAdminsCanAssignAdmin   = errors.New("Only super admins can assign company_admin or super_admin")
	ErrTargetUserNotFound              = errors.New("Target user not found")
	ErrCannotModifyUsersOutsideCompany = errors.New("Cannot modify users outside your company")
	ErrUsersCannotModifyTheirOwnRole   = errors.New("Users cannot modify their own role")
	ErrCompanyMustHaveACompanyAdmin    = errors.New("Company must have at least one company_admin")
	ErrInvalidTargetRole               = errors.New("Invalid target role")
	ErrYouCannotRemoveYourself         = errors.New("You cannot remove yourself from the company")
)

type ValidateRoleAssignmentParams struct {
	ActorRole    string
	TargetRole   string
	ActorUserID  string
	TargetUserID string
	CompanyID    *string
}

func sameCompany(companyIDStr *string, companyIDUUID *uuid.UUID) bool {
	if companyIDStr == nil && companyIDUUID == nil {
		return true
	}
	if companyIDStr == nil || companyIDUUID == nil {
		return false
	}
	return *companyIDStr == companyIDUUID.String()
}

// ValidateRoleAssignment enforces role-change governance: only super admins
// may hand out company_admin or super_admin, users never change their own
// role, role changes stay within the actor's company, and a company cannot
// lose its last company_admin.
func ValidateRoleAssignment(db *gorm.DB, params ValidateRoleAssignmentParams) error {
	if !constants.IsValidRole(params.TargetRole) {
		return ErrInvalidTargetRole
	}
	if (params.TargetRole == constants.CompanyAdmin || params.TargetRole == constants.SuperAdmin) &&
		params.ActorRole != constants.SuperAdmin {
		return ErrOnlySuperAdminsCanAssignAdmin
	}
	if params.TargetUserID == "" {
		return nil
	}
	var target domain.User
	if err := db.Where("user_id = ?", params.TargetUserID).First(&target).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrTargetUserNotFound
		}
		return err
	}
	if !sameCompany(params.CompanyID, target.CompanyID) {
		return ErrCannotModifyUsersOutsideCompany
	}
	if params.ActorUserID == params.TargetUserID && params.ActorRole != constants.SuperAdmin {
		return ErrUsersCannotModifyTheirOwnRole
	}
	if target.Role == constants.CompanyAdmin && params.TargetRole != constants.CompanyAdmin {
		var count int64
		if params.CompanyID == nil {
			db.Model(&domain.User{}).Where("company_id IS NULL AND role = ?", constants.CompanyAdmin).Count(&count)
		} else {
			db.Model(&domain.User{}).Where("company_id = ? AND role = ?", params.CompanyID, constants.CompanyAdmin).Count(&count)
		}
		if count <= 1 {
			return ErrCompanyMustHaveACompanyAdmin
		}
	}
	return nil
}

type ValidateCompanyMembershipChangeParams struct {
	ActorUserID  string
	ActorRole    string
	TargetUserID string
	CompanyID    *string
}

// ValidateCompanyMembershipChange guards removing a user from a company: the
// target must exist in the actor's company, users cannot remove themselves,
// and the last company_admin cannot be removed.
func ValidateCompanyMembershipChange(db *gorm.DB, params ValidateCompanyMembershipChangeParams) (*domain.User, error) {
	if params.ActorUserID == params.TargetUserID {
		return nil, ErrYouCannotRemoveYourself
	}
	var target domain.User
	if err := db.Where("user_id = ?", params.TargetUserID).First(&target).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTargetUserNotFound
		}
		return nil, err
	}
	if !sameCompany(params.CompanyID, target.CompanyID) {
		return nil, ErrCannotModifyUsersOutsideCompany
	}
	if target.Role == constants.CompanyAdmin {
		var count int64
		db.Model(&domain.User{}).Where("company_id = ? AND role = ?", params.CompanyID, constants.CompanyAdmin).Count(&count)
		if count <= 1 {
			return nil, ErrCompanyMustHaveACompanyAdmin
		}
	}
	return &target, nil
}
