package domain

// Plan types.
const (
	PlanESOP = "esop"
	PlanRSU  = "rsu"
	PlanRSA  = "rsa"
)

// Portfolio kinds.
const (
	PortfolioCompanyReserved = "company_reserved"
	PortfolioEmployeeVested  = "employee_vested"
	PortfolioCompanyCash     = "company_cash"
	PortfolioEmployeeCash    = "employee_cash"
)

// VestingEvent statuses.
const (
	VestingPending         = "pending"
	VestingDue             = "due"
	VestingVested          = "vested"
	VestingPendingExercise = "pending_exercise"
	VestingExercised       = "exercised"
	VestingTransferred     = "transferred"
	VestingForfeited       = "forfeited"
	VestingCancelled       = "cancelled"
)

// ExerciseOrder statuses.
const (
	OrderPending   = "pending"
	OrderApproved  = "approved"
	OrderRejected  = "rejected"
	OrderProcessed = "processed"
	OrderCancelled = "cancelled"
)

// CashTransfer statuses and types.
const (
	TransferPending   = "pending"
	TransferApproved  = "approved"
	TransferRejected  = "rejected"
	TransferProcessed = "processed"

	CashTransferCompanyDeposit     = "company_deposit"
	CashTransferEmployeeDeposit    = "employee_deposit"
	CashTransferExerciseSettlement = "exercise_settlement"
)

// ShareTransfer types.
const (
	ShareTransferVesting      = "vesting"
	ShareTransferForfeiture   = "forfeiture"
	ShareTransferExercise     = "exercise"
	ShareTransferCancellation = "cancellation"
)

// OrderStatusTerminal reports whether an exercise order status admits no
// further transition. Terminal orders do not block a new order on the same
// vesting event.
func OrderStatusTerminal(status string) bool {
	switch status {
	case OrderRejected, OrderProcessed, OrderCancelled:
		return true
	}
	return false
}

// VestingStatusTerminal reports whether a vesting event has reached the end
// of its lifecycle.
func VestingStatusTerminal(status string) bool {
	switch status {
	case VestingExercised, VestingTransferred, VestingForfeited, VestingCancelled:
		return true
	}
	return false
}
