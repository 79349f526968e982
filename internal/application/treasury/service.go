package treasury

import (
	"context"
	"errors"
	"fmt"
	"time"

	"equify-backend/internal/application/ledger"
	"equify-backend/internal/domain"
	"equify-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service manages cash deposits into company and employee cash portfolios.
// Deposits are created pending and only credit a balance when an operator
// approves them; approval and the credit commit in one transaction.
type Service struct {
	DB *gorm.DB
}

// CreateDepositInput describes a requested deposit. EmployeeID nil means a
// company treasury deposit.
type CreateDepositInput struct {
	CompanyID  uuid.UUID
	EmployeeID *uuid.UUID
	Amount     decimal.Decimal
	Currency   string
}

// CreateDeposit records a pending cash deposit. The target portfolio must
// already exist; the balance is untouched until approval.
func (s *Service) CreateDeposit(ctx context.Context, actor domain.Actor, in CreateDepositInput) (*domain.CashTransfer, error) {
	if !validation.IsPositiveAmount(in.Amount) {
		return nil, fmt.Errorf("%w: amount must be positive with at most two decimal places", domain.ErrValidation)
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if !validation.IsValidCurrency(in.Currency) {
		return nil, fmt.Errorf("%w: invalid currency %q", domain.ErrValidation, in.Currency)
	}

	transferType := domain.CashTransferCompanyDeposit
	if in.EmployeeID != nil {
		transferType = domain.CashTransferEmployeeDeposit
		if actor.EmployeeID != nil && !actor.IsEmployee(*in.EmployeeID) {
			return nil, fmt.Errorf("%w: cannot deposit into another employee's portfolio", domain.ErrForbidden)
		}
	}

	var transfer *domain.CashTransfer
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target *domain.Portfolio
		var err error
		if in.EmployeeID != nil {
			target, err = ledger.EmployeePortfolio(tx, in.CompanyID, *in.EmployeeID, domain.PortfolioEmployeeCash)
		} else {
			target, err = ledger.CompanyPortfolio(tx, in.CompanyID, domain.PortfolioCompanyCash)
		}
		if err != nil {
			return err
		}

		transfer = &domain.CashTransfer{
			TransferNumber: fmt.Sprintf("CT-%d", time.Now().UnixMilli()),
			TransferType:   transferType,
			CompanyID:      in.CompanyID,
			EmployeeID:     in.EmployeeID,
			ToPortfolioID:  &target.PortfolioID,
			Amount:         in.Amount,
			Currency:       in.Currency,
			Status:         domain.TransferPending,
		}
		if err := tx.Create(transfer).Error; err != nil {
			return err
		}
		return ledger.RecordEvent(tx, "cash_transfer", transfer.TransferID, "DEPOSIT_REQUESTED", actor.UserID, map[string]interface{}{
			"amount":   in.Amount.String(),
			"currency": in.Currency,
			"type":     transferType,
		})
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

// ApproveCashTransfer flips a pending deposit to processed and credits the
// target portfolio, all in one transaction. A transfer already decided yields
// ErrInvalidState.
func (s *Service) ApproveCashTransfer(ctx context.Context, actor domain.Actor, transferID uuid.UUID) (*domain.CashTransfer, error) {
	var transfer domain.CashTransfer
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transfer_id = ?", transferID).First(&transfer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: cash transfer %s", domain.ErrNotFound, transferID)
			}
			return err
		}
		if transfer.Status != domain.TransferPending {
			return fmt.Errorf("%w: cash transfer is %s, expected pending", domain.ErrInvalidState, transfer.Status)
		}
		if transfer.ToPortfolioID == nil {
			return fmt.Errorf("%w: cash transfer has no target portfolio", domain.ErrValidation)
		}

		var target domain.Portfolio
		if err := tx.Where("portfolio_id = ?", *transfer.ToPortfolioID).First(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: portfolio %s", domain.ErrPortfolioNotFound, *transfer.ToPortfolioID)
			}
			return err
		}
		if err := ledger.ApplyCashDelta(tx, &target, transfer.Amount); err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&domain.CashTransfer{}).
			Where("transfer_id = ? AND status = ?", transferID, domain.TransferPending).
			Updates(map[string]interface{}{
				"status":      domain.TransferProcessed,
				"approved_by": actor.UserID,
				"approved_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: cash transfer decided concurrently", domain.ErrConflict)
		}
		transfer.Status = domain.TransferProcessed
		transfer.ApprovedBy = &actor.UserID
		transfer.ApprovedAt = &now

		return ledger.RecordEvent(tx, "cash_transfer", transfer.TransferID, "DEPOSIT_APPROVED", actor.UserID, map[string]interface{}{
			"amount":       transfer.Amount.String(),
			"portfolio_id": target.PortfolioID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

// RejectCashTransfer declines a pending deposit with a required reason. No
// balance changes.
func (s *Service) RejectCashTransfer(ctx context.Context, actor domain.Actor, transferID uuid.UUID, reason string) (*domain.CashTransfer, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrValidation)
	}
	var transfer domain.CashTransfer
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transfer_id = ?", transferID).First(&transfer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: cash transfer %s", domain.ErrNotFound, transferID)
			}
			return err
		}
		if transfer.Status != domain.TransferPending {
			return fmt.Errorf("%w: cash transfer is %s, expected pending", domain.ErrInvalidState, transfer.Status)
		}
		res := tx.Model(&domain.CashTransfer{}).
			Where("transfer_id = ? AND status = ?", transferID, domain.TransferPending).
			Updates(map[string]interface{}{
				"status":           domain.TransferRejected,
				"rejection_reason": reason,
				"approved_by":      actor.UserID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: cash transfer decided concurrently", domain.ErrConflict)
		}
		transfer.Status = domain.TransferRejected
		transfer.RejectionReason = &reason
		return ledger.RecordEvent(tx, "cash_transfer", transfer.TransferID, "DEPOSIT_REJECTED", actor.UserID, map[string]interface{}{
			"reason": reason,
		})
	})
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

// ListCashTransfers returns cash transfers scoped to the actor, newest first.
func (s *Service) ListCashTransfers(ctx context.Context, actor domain.Actor, status string) ([]domain.CashTransfer, error) {
	q := s.DB.WithContext(ctx).Model(&domain.CashTransfer{})
	switch {
	case actor.EmployeeID != nil:
		q = q.Where("employee_id = ?", *actor.EmployeeID)
	case actor.CompanyID != nil:
		q = q.Where("company_id = ?", *actor.CompanyID)
	default:
		return nil, fmt.Errorf("%w: actor has no company or employee scope", domain.ErrForbidden)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var transfers []domain.CashTransfer
	if err := q.Order("created_at DESC").Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// ListShareTransfers returns share transfers scoped to the actor, newest
// first.
func (s *Service) ListShareTransfers(ctx context.Context, actor domain.Actor) ([]domain.ShareTransfer, error) {
	q := s.DB.WithContext(ctx).Model(&domain.ShareTransfer{})
	switch {
	case actor.EmployeeID != nil:
		q = q.Where("employee_id = ?", *actor.EmployeeID)
	case actor.CompanyID != nil:
		q = q.Where("company_id = ?", *actor.CompanyID)
	default:
		return nil, fmt.Errorf("%w: actor has no company or employee scope", domain.ErrForbidden)
	}
	var transfers []domain.ShareTransfer
	if err := q.Order("created_at DESC").Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// GetPortfolios returns the portfolios visible to the actor. Employees see
// their own portfolios; company operators see every portfolio at the company.
func (s *Service) GetPortfolios(ctx context.Context, actor domain.Actor) ([]domain.Portfolio, error) {
	q := s.DB.WithContext(ctx).Model(&domain.Portfolio{})
	switch {
	case actor.EmployeeID != nil:
		q = q.Where("employee_id = ?", *actor.EmployeeID)
	case actor.CompanyID != nil:
		q = q.Where("company_id = ?", *actor.CompanyID)
	default:
		return nil, fmt.Errorf("%w: actor has no company or employee scope", domain.ErrForbidden)
	}
	var portfolios []domain.Portfolio
	if err := q.Order("created_at ASC").Find(&portfolios).Error; err != nil {
		return nil, err
	}
	return portfolios, nil
}
