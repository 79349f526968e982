package policies

import (
	"testing"

	"equify-backend/internal/domain"
	"equify-backend/internal/pkg/constants"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPolicyTest(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, role string, companyID *uuid.UUID) domain.User {
	u := domain.User{
		Email:        uuid.NewString() + "@test.co",
		PasswordHash: "x",
		Fullname:     "Test User",
		Role:         role,
		CompanyID:    companyID,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func strPtr(id uuid.UUID) *string {
	s := id.String()
	return &s
}

func TestValidateRoleAssignment_InvalidRole(t *testing.T) {
	db := setupPolicyTest(t)
	err := ValidateRoleAssignment(db, ValidateRoleAssignmentParams{
		ActorRole:  constants.CompanyAdmin,
		TargetRole: "warlord",
	})
	assert.Equal(t, ErrInvalidTargetRole, err)
}

func TestValidateRoleAssignment_AdminRolesNeedSuperAdmin(t *testing.T) {
	db := setupPolicyTest(t)

	err := ValidateRoleAssignment(db, ValidateRoleAssignmentParams{
		ActorRole:  constants.CompanyAdmin,
		TargetRole: constants.CompanyAdmin,
	})
	assert.Equal(t, ErrOnlySuperAdminsCanAssignAdmin, err)

	err = ValidateRoleAssignment(db, ValidateRoleAssignmentParams{
		ActorRole:  constants.HRAdmin,
		TargetRole: constants.SuperAdmin,
	})
	assert.Equal(t, ErrOnlySuperAdminsCanAssignAdmin, err)

	err = ValidateRoleAssignment(db, ValidateRoleAssignmentParams{
		ActorRole:  constants.SuperAdmin,
		TargetRole: constants.CompanyAdmin,
	})
	assert.NoError(t, err)
}

func TestValidateRoleAssignment_TargetNotFound(t *testing.T) {
	db := setupPolicyTest(t)
	err := ValidateRoleAssignment(db, ValidateRoleAssignmentParams{
		ActorRole:    constants.CompanyAdmin,
		TargetRole:   constants.HRAdmin,
		ActorUserID:  uuid.NewString(),
		TargetUserID: uuid.NewString(),
	})
	assert.Equal(t, ErrTargetUserNotFound, err)
}

func TestValidateRoleAssignment_CrossCompanyBlocked(t *testing.T) {
	db := setupPolicyTest(t)
	companyA := uuid.New()
	companyB := uuid.New()
	actor := createUser(t, db, constants.CompanyAdmin, &companyA)
	target := createUser(t, db, constants.Employee, &companyB)

	err := ValidateRoleAssignment(db, ValidateRoleAssignmentParams{
		ActorRole:    actor.Role,
		TargetRole:   constants.HRAdmin,
		ActorUserID:  actor.UserID.String(),
		TargetUserID: target.UserID.String(),
		CompanyID:    strPtr(companyA),
	})
	assert.Equal(t, ErrCannotModifyUsersOutsideCompany, err)
}

func TestValidateRoleAssignment_SelfChangeBlocked(t *testing.T) {
	db := setupPolicyTest(t)
	companyID := uuid.New()
	actor := createUser(t, db, constants.CompanyAdmin, &companyID)
	// A second admin so the last-admin guard is not what trips.
	createUser(t, db, constants.CompanyAdmin, &companyID)

	err := ValidateRoleAssignment(db, ValidateRoleAssignmentParams{
		ActorRole:    actor.Role,
		TargetRole:   constants.HRAdmin,
		ActorUserID:  actor.UserID.String(),
		TargetUserID: actor.UserID.String(),
		CompanyID:    strPtr(companyID),
	})
	assert.Equal(t, ErrUsersCannotModifyTheirOwnRole, err)
}

func TestValidateRoleAssignment_LastCompanyAdminProtected(t *testing.T) {
	db := setupPolicyTest(t)
	companyID := uuid.New()
	super := createUser(t, db, constants.SuperAdmin, nil)
	lastAdmin := createUser(t, db, constants.CompanyAdmin, &companyID)

	err := ValidateRoleAssignment(db, ValidateRoleAssignmentParams{
		ActorRole:    super.Role,
		TargetRole:   constants.Employee,
		ActorUserID:  super.UserID.String(),
		TargetUserID: lastAdmin.UserID.String(),
		CompanyID:    strPtr(companyID),
	})
	assert.Equal(t, ErrCompanyMustHaveACompanyAdmin, err)

	// With a second admin the downgrade passes.
	createUser(t, db, constants.CompanyAdmin, &companyID)
	err = ValidateRoleAssignment(db, ValidateRoleAssignmentParams{
		ActorRole:    super.Role,
		TargetRole:   constants.Employee,
		ActorUserID:  super.UserID.String(),
		TargetUserID: lastAdmin.UserID.String(),
		CompanyID:    strPtr(companyID),
	})
	assert.NoError(t, err)
}

func TestValidateCompanyMembershipChange_SelfRemovalBlocked(t *testing.T) {
	db := setupPolicyTest(t)
	id := uuid.NewString()
	_, err := ValidateCompanyMembershipChange(db, ValidateCompanyMembershipChangeParams{
		ActorUserID:  id,
		ActorRole:    constants.CompanyAdmin,
		TargetUserID: id,
	})
	assert.Equal(t, ErrYouCannotRemoveYourself, err)
}

func TestValidateCompanyMembershipChange_TargetNotFound(t *testing.T) {
	db := setupPolicyTest(t)
	_, err := ValidateCompanyMembershipChange(db, ValidateCompanyMembershipChangeParams{
		ActorUserID:  uuid.NewString(),
		ActorRole:    constants.CompanyAdmin,
		TargetUserID: uuid.NewString(),
	})
	assert.Equal(t, ErrTargetUserNotFound, err)
}

func TestValidateCompanyMembershipChange_LastAdminProtected(t *testing.T) {
	db := setupPolicyTest(t)
	companyID := uuid.New()
	actor := createUser(t, db, constants.SuperAdmin, nil)
	lastAdmin := createUser(t, db, constants.CompanyAdmin, &companyID)

	_, err := ValidateCompanyMembershipChange(db, ValidateCompanyMembershipChangeParams{
		ActorUserID:  actor.UserID.String(),
		ActorRole:    actor.Role,
		TargetUserID: lastAdmin.UserID.String(),
		CompanyID:    strPtr(companyID),
	})
	assert.Equal(t, ErrCompanyMustHaveACompanyAdmin, err)
}

func TestValidateCompanyMembershipChange_ReturnsTarget(t *testing.T) {
	db := setupPolicyTest(t)
	companyID := uuid.New()
	actor := createUser(t, db, constants.CompanyAdmin, &companyID)
	createUser(t, db, constants.CompanyAdmin, &companyID)
	target := createUser(t, db, constants.Employee, &companyID)

	got, err := ValidateCompanyMembershipChange(db, ValidateCompanyMembershipChangeParams{
		ActorUserID:  actor.UserID.String(),
		ActorRole:    actor.Role,
		TargetUserID: target.UserID.String(),
		CompanyID:    strPtr(companyID),
	})
	require.NoError(t, err)
	assert.Equal(t, target.UserID, got.UserID)
}
