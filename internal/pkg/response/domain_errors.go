package response

import (
	"errors"

	"equify-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// DomainError maps a service error wrapping one of the domain sentinels onto
// the standard error shape. Unknown errors become 500 without leaking the
// message.
func DomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrForbidden):
		return Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrPortfolioNotFound), errors.Is(err, domain.ErrNotFound):
		return NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrConflict):
		return Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, domain.ErrInsufficientShares):
		return Error(c, err.Error(), fiber.StatusUnprocessableEntity, nil)
	case errors.Is(err, domain.ErrStoreUnavailable):
		return Error(c, "Service temporarily unavailable", fiber.StatusServiceUnavailable, nil)
	default:
		return Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
