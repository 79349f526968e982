package vesting

import (
	"context"
	"fmt"
	"time"

	"equify-backend/internal/application/ledger"
	"equify-backend/internal/domain"

	"gorm.io/gorm"
)

// Service advances vesting-event lifecycle state from wall-clock time.
// Refresh is idempotent: a second run with the same as-of date advances
// nothing. Per-event updates are conditional on the status read, so the
// refresher is safe to invoke concurrently with itself and with the
// settlement engine.
type Service struct {
	DB *gorm.DB
}

// Refresh applies, in one pass over non-terminal events with
// vesting_date <= asOf:
//
//	rule 1: pending → due
//	rule 2: due → pending_exercise (exercise required) or vested (RSU/RSA)
//
// A pending event due today reaches pending_exercise/vested in the same
// call. Returns the count of events advanced.
func (s *Service) Refresh(ctx context.Context, asOf time.Time) (int, error) {
	var events []domain.VestingEvent
	err := s.DB.WithContext(ctx).
		Where("status IN ? AND vesting_date <= ?", []string{domain.VestingPending, domain.VestingDue}, asOf).
		Order("vesting_date ASC").
		Find(&events).Error
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	advanced := 0
	for _, ev := range events {
		status := ev.Status
		moved := false

		if status == domain.VestingPending {
			res := s.DB.WithContext(ctx).Model(&domain.VestingEvent{}).
				Where("event_id = ? AND status = ?", ev.EventID, domain.VestingPending).
				Update("status", domain.VestingDue)
			if res.Error != nil {
				return advanced, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, res.Error)
			}
			if res.RowsAffected == 0 {
				// advanced by a concurrent refresh; leave it to that pass
				continue
			}
			status = domain.VestingDue
			moved = true
		}

		if status == domain.VestingDue {
			next := domain.VestingVested
			if ev.RequiresExercise {
				next = domain.VestingPendingExercise
			}
			res := s.DB.WithContext(ctx).Model(&domain.VestingEvent{}).
				Where("event_id = ? AND status = ?", ev.EventID, domain.VestingDue).
				Update("status", next)
			if res.Error != nil {
				return advanced, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, res.Error)
			}
			if res.RowsAffected > 0 {
				moved = true
			}
		}

		if moved {
			advanced++
		}
	}
	return advanced, nil
}

// TransferVested moves shares for vested (RSU/RSA) events from the company
// reserved pool to the employee vested portfolio, records a
// ShareTransfer(type=vesting) and marks the events transferred. Each event
// settles in its own transaction so one bad event does not block the rest.
// Returns the count of events transferred.
func (s *Service) TransferVested(ctx context.Context, actor domain.Actor, asOf time.Time) (int, error) {
	var events []domain.VestingEvent
	err := s.DB.WithContext(ctx).
		Where("status = ?", domain.VestingVested).
		Order("vesting_date ASC").
		Find(&events).Error
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	transferred := 0
	for _, ev := range events {
		ev := ev
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			reserved, err := ledger.CompanyPortfolio(tx, ev.CompanyID, domain.PortfolioCompanyReserved)
			if err != nil {
				return err
			}
			if reserved.AvailableShares < ev.SharesToVest {
				return fmt.Errorf("%w: reserved pool has %d available, need %d", domain.ErrInsufficientShares, reserved.AvailableShares, ev.SharesToVest)
			}
			vested, err := ledger.EnsureEmployeeVestedPortfolio(tx, ev.CompanyID, ev.EmployeeID)
			if err != nil {
				return err
			}
			if err := ledger.ApplyShareDelta(tx, reserved, -ev.SharesToVest, -ev.SharesToVest); err != nil {
				return err
			}
			if err := ledger.ApplyShareDelta(tx, vested, ev.SharesToVest, ev.SharesToVest); err != nil {
				return err
			}

			st := &domain.ShareTransfer{
				TransferNumber:    fmt.Sprintf("ST-%d", time.Now().UnixMilli()),
				TransferType:      domain.ShareTransferVesting,
				CompanyID:         ev.CompanyID,
				GrantID:           ev.GrantID,
				EmployeeID:        ev.EmployeeID,
				FromPortfolioID:   reserved.PortfolioID,
				ToPortfolioID:     vested.PortfolioID,
				SharesTransferred: ev.SharesToVest,
				TransferDate:      asOf,
				Status:            domain.TransferProcessed,
			}
			if err := tx.Create(st).Error; err != nil {
				return err
			}

			res := tx.Model(&domain.VestingEvent{}).
				Where("event_id = ? AND status = ?", ev.EventID, domain.VestingVested).
				Update("status", domain.VestingTransferred)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: vesting event transferred concurrently", domain.ErrConflict)
			}
			return ledger.RecordEvent(tx, "vesting_event", ev.EventID, "TRANSFERRED", actor.UserID, map[string]interface{}{
				"shares":          ev.SharesToVest,
				"transfer_number": st.TransferNumber,
			})
		})
		if err != nil {
			return transferred, err
		}
		transferred++
	}
	return transferred, nil
}

// ListEvents returns vesting events scoped to the actor, soonest first.
func (s *Service) ListEvents(ctx context.Context, actor domain.Actor, status string) ([]domain.VestingEvent, error) {
	q := s.DB.WithContext(ctx).Model(&domain.VestingEvent{})
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
	var events []domain.VestingEvent
	if err := q.Order("vesting_date ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
