package constants

const (
	Employee        = "employee"
	HRAdmin         = "hr_admin"
	FinanceAdmin    = "finance_admin"
	OperationsAdmin = "operations_admin"
	CompanyAdmin    = "company_admin"
	SuperAdmin      = "super_admin"
)

// ValidRoles is the set of allowed values for User.Role.
var ValidRoles = []string{Employee, HRAdmin, FinanceAdmin, OperationsAdmin, CompanyAdmin, SuperAdmin}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
