package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"equify-backend/internal/application/emails"
	"equify-backend/internal/application/ledger"
	"equify-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service drives an ExerciseOrder through its lifecycle:
// pending → approved → processed, with rejected/cancelled as terminal
// alternates. Every operation takes the acting principal explicitly. Process
// performs the paired cash and share movements inside a single database
// transaction so a failure at any step leaves no partial state.
type Service struct {
	DB          *gorm.DB
	EmailSender emails.Sender // optional; nil disables notifications
}

// CreateOrder records an employee's request to exercise a vested ESOP
// vesting event. The order is created even when the cash snapshot shows a
// shortfall (sufficient_funds=false) so the attempt is auditable; blocking
// the confirm action on a shortfall is the caller's concern. At most one
// non-terminal order may exist per vesting event.
func (s *Service) CreateOrder(ctx context.Context, actor domain.Actor, vestingEventID uuid.UUID) (*domain.ExerciseOrder, error) {
	var order *domain.ExerciseOrder

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event domain.VestingEvent
		if err := tx.Where("event_id = ?", vestingEventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: vesting event %s", domain.ErrNotFound, vestingEventID)
			}
			return err
		}
		if !actor.IsEmployee(event.EmployeeID) {
			return fmt.Errorf("%w: only the owning employee may request exercise", domain.ErrForbidden)
		}
		if !event.RequiresExercise {
			return fmt.Errorf("%w: vesting event does not require exercise", domain.ErrValidation)
		}
		if event.Status != domain.VestingPendingExercise && event.Status != domain.VestingVested {
			return fmt.Errorf("%w: vesting event is %s, not exercisable", domain.ErrInvalidState, event.Status)
		}
		if event.ExercisePrice == nil {
			return fmt.Errorf("%w: vesting event has no exercise price", domain.ErrValidation)
		}

		var active int64
		if err := tx.Model(&domain.ExerciseOrder{}).
			Where("vesting_event_id = ? AND status IN ?", event.EventID, []string{domain.OrderPending, domain.OrderApproved}).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: an active exercise order already exists for this vesting event", domain.ErrConflict)
		}

		cash, err := ledger.EmployeePortfolio(tx, event.CompanyID, event.EmployeeID, domain.PortfolioEmployeeCash)
		if err != nil {
			return err
		}

		cost := event.ExercisePrice.Mul(decimal.NewFromInt(event.SharesToVest))
		order = &domain.ExerciseOrder{
			OrderNumber:           fmt.Sprintf("EXO-%d", time.Now().UnixMilli()),
			CompanyID:             event.CompanyID,
			EmployeeID:            event.EmployeeID,
			GrantID:               event.GrantID,
			VestingEventID:        event.EventID,
			SharesToExercise:      event.SharesToVest,
			ExercisePricePerShare: *event.ExercisePrice,
			TotalExerciseCost:     cost,
			CashPortfolioID:       cash.PortfolioID,
			CashBalanceAtOrder:    cash.CashBalance,
			SufficientFunds:       cash.CashBalance.GreaterThanOrEqual(cost),
			Status:                domain.OrderPending,
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		if event.Status != domain.VestingPendingExercise {
			if err := tx.Model(&domain.VestingEvent{}).
				Where("event_id = ?", event.EventID).
				Update("status", domain.VestingPendingExercise).Error; err != nil {
				return err
			}
		}

		return ledger.RecordEvent(tx, "exercise_order", order.OrderID, "CREATED", actor.UserID, map[string]interface{}{
			"order_number":     order.OrderNumber,
			"shares":           order.SharesToExercise,
			"total_cost":       order.TotalExerciseCost,
			"sufficient_funds": order.SufficientFunds,
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Approve moves a pending order to approved. No cash or shares move yet.
func (s *Service) Approve(ctx context.Context, actor domain.Actor, orderID uuid.UUID) (*domain.ExerciseOrder, error) {
	var order domain.ExerciseOrder

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadOrder(tx, orderID, &order); err != nil {
			return err
		}
		res := tx.Model(&domain.ExerciseOrder{}).
			Where("order_id = ? AND status = ?", orderID, domain.OrderPending).
			Update("status", domain.OrderApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order is %s, expected pending", domain.ErrInvalidState, order.Status)
		}
		order.Status = domain.OrderApproved
		return ledger.RecordEvent(tx, "exercise_order", orderID, "APPROVED", actor.UserID, nil)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Reject moves a pending order to rejected with a mandatory reason and
// reverts the vesting event to pending_exercise so the employee may
// resubmit.
func (s *Service) Reject(ctx context.Context, actor domain.Actor, orderID uuid.UUID, reason string) (*domain.ExerciseOrder, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrValidation)
	}
	var order domain.ExerciseOrder

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadOrder(tx, orderID, &order); err != nil {
			return err
		}
		res := tx.Model(&domain.ExerciseOrder{}).
			Where("order_id = ? AND status = ?", orderID, domain.OrderPending).
			Updates(map[string]interface{}{
				"status":           domain.OrderRejected,
				"rejection_reason": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order is %s, expected pending", domain.ErrInvalidState, order.Status)
		}
		order.Status = domain.OrderRejected
		order.RejectionReason = &reason

		if err := tx.Model(&domain.VestingEvent{}).
			Where("event_id = ?", order.VestingEventID).
			Update("status", domain.VestingPendingExercise).Error; err != nil {
			return err
		}
		return ledger.RecordEvent(tx, "exercise_order", orderID, "REJECTED", actor.UserID, map[string]interface{}{
			"reason": reason,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(order, "rejected")
	return &order, nil
}

// Cancel lets the owning employee withdraw their own pending order. The
// vesting event reverts to pending_exercise.
func (s *Service) Cancel(ctx context.Context, actor domain.Actor, orderID uuid.UUID) (*domain.ExerciseOrder, error) {
	var order domain.ExerciseOrder

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadOrder(tx, orderID, &order); err != nil {
			return err
		}
		if !actor.IsEmployee(order.EmployeeID) {
			return fmt.Errorf("%w: only the owning employee may cancel", domain.ErrForbidden)
		}
		res := tx.Model(&domain.ExerciseOrder{}).
			Where("order_id = ? AND status = ?", orderID, domain.OrderPending).
			Update("status", domain.OrderCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order is %s, expected pending", domain.ErrInvalidState, order.Status)
		}
		order.Status = domain.OrderCancelled

		if err := tx.Model(&domain.VestingEvent{}).
			Where("event_id = ?", order.VestingEventID).
			Update("status", domain.VestingPendingExercise).Error; err != nil {
			return err
		}
		return ledger.RecordEvent(tx, "exercise_order", orderID, "CANCELLED", actor.UserID, nil)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Process settles an approved order: debits the employee cash portfolio and
// credits the company's by total_exercise_cost, moves the exercised shares
// from the company reserved pool to the employee vested pool, and writes a
// CashTransfer and a ShareTransfer as audit entries. The whole sequence runs
// in one transaction; portfolio mutations are version-guarded and the final
// approved→processed status flip is conditional, so concurrent Process calls
// on the same order settle it exactly once.
func (s *Service) Process(ctx context.Context, actor domain.Actor, orderID uuid.UUID) (*domain.ExerciseOrder, error) {
	var order domain.ExerciseOrder
	now := time.Now()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadOrder(tx, orderID, &order); err != nil {
			return err
		}
		if order.Status != domain.OrderApproved {
			return fmt.Errorf("%w: order is %s, expected approved", domain.ErrInvalidState, order.Status)
		}

		employeeCash, err := ledger.EmployeePortfolio(tx, order.CompanyID, order.EmployeeID, domain.PortfolioEmployeeCash)
		if err != nil {
			return err
		}
		companyCash, err := ledger.CompanyPortfolio(tx, order.CompanyID, domain.PortfolioCompanyCash)
		if err != nil {
			return err
		}

		// Balance may have changed since the order snapshot; re-check here.
		if employeeCash.CashBalance.LessThan(order.TotalExerciseCost) {
			return fmt.Errorf("%w: balance %s, cost %s", domain.ErrInsufficientFunds, employeeCash.CashBalance, order.TotalExerciseCost)
		}

		if err := ledger.ApplyCashDelta(tx, employeeCash, order.TotalExerciseCost.Neg()); err != nil {
			return err
		}
		if err := ledger.ApplyCashDelta(tx, companyCash, order.TotalExerciseCost); err != nil {
			return err
		}

		cashTransfer := &domain.CashTransfer{
			TransferNumber:  fmt.Sprintf("CT-%d", time.Now().UnixMilli()),
			TransferType:    domain.CashTransferExerciseSettlement,
			CompanyID:       order.CompanyID,
			EmployeeID:      &order.EmployeeID,
			FromPortfolioID: &employeeCash.PortfolioID,
			ToPortfolioID:   &companyCash.PortfolioID,
			ExerciseOrderID: &order.OrderID,
			Amount:          order.TotalExerciseCost,
			Currency:        employeeCash.Currency,
			Status:          domain.TransferProcessed,
			ApprovedBy:      &actor.UserID,
			ApprovedAt:      &now,
		}
		if err := tx.Create(cashTransfer).Error; err != nil {
			return err
		}

		reserved, err := ledger.CompanyPortfolio(tx, order.CompanyID, domain.PortfolioCompanyReserved)
		if err != nil {
			return err
		}
		if reserved.AvailableShares < order.SharesToExercise {
			return fmt.Errorf("%w: reserved pool has %d available, need %d", domain.ErrInsufficientShares, reserved.AvailableShares, order.SharesToExercise)
		}
		vested, err := ledger.EnsureEmployeeVestedPortfolio(tx, order.CompanyID, order.EmployeeID)
		if err != nil {
			return err
		}

		if err := ledger.ApplyShareDelta(tx, reserved, -order.SharesToExercise, -order.SharesToExercise); err != nil {
			return err
		}
		if err := ledger.ApplyShareDelta(tx, vested, order.SharesToExercise, order.SharesToExercise); err != nil {
			return err
		}

		shareTransfer := &domain.ShareTransfer{
			TransferNumber:    fmt.Sprintf("ST-%d", time.Now().UnixMilli()),
			TransferType:      domain.ShareTransferExercise,
			CompanyID:         order.CompanyID,
			GrantID:           order.GrantID,
			EmployeeID:        order.EmployeeID,
			FromPortfolioID:   reserved.PortfolioID,
			ToPortfolioID:     vested.PortfolioID,
			SharesTransferred: order.SharesToExercise,
			TransferDate:      now,
			Status:            domain.TransferProcessed,
			ExerciseOrderID:   &order.OrderID,
		}
		if err := tx.Create(shareTransfer).Error; err != nil {
			return err
		}

		// At-most-once guard: the status flip only succeeds if the order is
		// still approved in the database.
		res := tx.Model(&domain.ExerciseOrder{}).
			Where("order_id = ? AND status = ?", orderID, domain.OrderApproved).
			Updates(map[string]interface{}{
				"status":       domain.OrderProcessed,
				"processed_at": now,
				"processed_by": actor.UserID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order settled concurrently", domain.ErrConflict)
		}
		order.Status = domain.OrderProcessed
		order.ProcessedAt = &now
		order.ProcessedBy = &actor.UserID

		if err := tx.Model(&domain.VestingEvent{}).
			Where("event_id = ?", order.VestingEventID).
			Update("status", domain.VestingExercised).Error; err != nil {
			return err
		}

		return ledger.RecordEvent(tx, "exercise_order", orderID, "PROCESSED", actor.UserID, map[string]interface{}{
			"cash_transfer":  cashTransfer.TransferNumber,
			"share_transfer": shareTransfer.TransferNumber,
			"amount":         order.TotalExerciseCost,
			"shares":         order.SharesToExercise,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(order, "processed")
	return &order, nil
}

// GetOrder returns a single order, visible to its employee or to admins of
// its company.
func (s *Service) GetOrder(ctx context.Context, actor domain.Actor, orderID uuid.UUID) (*domain.ExerciseOrder, error) {
	var order domain.ExerciseOrder
	if err := loadOrder(s.DB.WithContext(ctx), orderID, &order); err != nil {
		return nil, err
	}
	if !actor.IsEmployee(order.EmployeeID) && (actor.CompanyID == nil || *actor.CompanyID != order.CompanyID) {
		return nil, fmt.Errorf("%w: order belongs to another company", domain.ErrForbidden)
	}
	return &order, nil
}

// ListOrders returns orders scoped to the actor: an employee sees their own,
// company operators see the whole company's, newest first.
func (s *Service) ListOrders(ctx context.Context, actor domain.Actor, status string) ([]domain.ExerciseOrder, error) {
	q := s.DB.WithContext(ctx).Model(&domain.ExerciseOrder{})
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
	var orders []domain.ExerciseOrder
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func loadOrder(tx *gorm.DB, orderID uuid.UUID, out *domain.ExerciseOrder) error {
	err := tx.Where("order_id = ?", orderID).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: exercise order %s", domain.ErrNotFound, orderID)
	}
	return err
}

// notify sends a best-effort outcome email after commit; failures are logged
// and never affect the settlement result.
func (s *Service) notify(order domain.ExerciseOrder, outcome string) {
	if s.EmailSender == nil {
		return
	}
	var emp domain.Employee
	if err := s.DB.Where("employee_id = ?", order.EmployeeID).First(&emp).Error; err != nil {
		return
	}
	if err := s.EmailSender.SendOrderOutcome(context.Background(), emp.Email, emp.Fullname, order.OrderNumber, outcome, order.RejectionReason); err != nil {
		log.Warn().Err(err).Str("order", order.OrderNumber).Msg("settlement notification failed")
	}
}
