package domain

import "github.com/google/uuid"

// Actor is the authenticated principal performing an operation. Handlers
// build it from the session and pass it into services explicitly; business
// logic never resolves identity from ambient state.
type Actor struct {
	UserID      uuid.UUID
	EmployeeID  *uuid.UUID
	CompanyID   *uuid.UUID
	Role        string
	Permissions []string
}

// HasPermission reports whether the actor carries an explicit permission
// flag (in addition to whatever its role grants).
func (a Actor) HasPermission(permission string) bool {
	for _, p := range a.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// IsEmployee reports whether the actor is the given employee.
func (a Actor) IsEmployee(employeeID uuid.UUID) bool {
	return a.EmployeeID != nil && *a.EmployeeID == employeeID
}
