package constants

const (
	ViewData              = "view_data"
	RequestExercise       = "request_exercise"
	ApproveExerciseOrders = "approve_exercise_orders"
	ProcessExerciseOrders = "process_exercise_orders"
	ApproveCashTransfers  = "approve_cash_transfers"
	CreateGrant           = "create_grant"
	ManageCompanies       = "manage_companies"
	ManageEmployees       = "manage_employees"
	RefreshVesting        = "refresh_vesting"
	AssignRole            = "assign_role"
	RemoveUser            = "remove_user"
)
