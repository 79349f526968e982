package domain

import "errors"

// Sentinel errors for the ledger core. Services return these (possibly
// wrapped with %w for detail); handlers map them to HTTP status codes with
// errors.Is.
var (
	// ErrValidation: bad input (empty rejection reason, non-positive amount...).
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState: operation attempted from the wrong lifecycle state.
	ErrInvalidState = errors.New("invalid state for operation")
	// ErrInsufficientFunds: cash balance below the required amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientShares: share portfolio cannot cover the movement.
	ErrInsufficientShares = errors.New("insufficient shares")
	// ErrPortfolioNotFound: a required portfolio does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")
	// ErrNotFound: entity lookup miss.
	ErrNotFound = errors.New("not found")
	// ErrConflict: optimistic-lock failure or duplicate active record.
	ErrConflict = errors.New("conflict")
	// ErrForbidden: actor not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrStoreUnavailable: transient data-store failure; caller should retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)
