package constants

// PermissionRoles maps each permission to the roles allowed to perform it.
// A session may additionally carry explicit permission flags that bypass the
// role check (see middleware.AuthorizePermission).
var PermissionRoles = map[string][]string{
	ViewData:              {Employee, HRAdmin, FinanceAdmin, OperationsAdmin, CompanyAdmin, SuperAdmin},
	RequestExercise:       {Employee},
	ApproveExerciseOrders: {FinanceAdmin, CompanyAdmin, HRAdmin, OperationsAdmin, SuperAdmin},
	ProcessExerciseOrders: {FinanceAdmin, OperationsAdmin, CompanyAdmin, SuperAdmin},
	ApproveCashTransfers:  {FinanceAdmin, CompanyAdmin, OperationsAdmin, SuperAdmin},
	CreateGrant:           {HRAdmin, CompanyAdmin, SuperAdmin},
	ManageCompanies:       {CompanyAdmin, SuperAdmin},
	ManageEmployees:       {HRAdmin, CompanyAdmin, SuperAdmin},
	RefreshVesting:        {HRAdmin, FinanceAdmin, OperationsAdmin, CompanyAdmin, SuperAdmin},
	AssignRole:            {CompanyAdmin, SuperAdmin},
	RemoveUser:            {CompanyAdmin, SuperAdmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the
// permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
