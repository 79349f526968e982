package grants

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

// Service manages equity grants and their vesting schedules.
type Service struct {
	DB *gorm.DB
}

// ScheduleEntry is one tranche of a grant's vesting schedule.
type ScheduleEntry struct {
	VestingDate  time.Time `json:"vesting_date"`
	SharesToVest int64     `json:"shares_to_vest"`
}

type CreateGrantInput struct {
	EmployeeID    uuid.UUID        `json:"employee_id"`
	PlanType      string           `json:"plan_type"`
	TotalShares   int64            `json:"total_shares"`
	ExercisePrice *decimal.Decimal `json:"exercise_price"`
	Currency      string           `json:"currency"`
	GrantDate     time.Time        `json:"grant_date"`
	Schedule      []ScheduleEntry  `json:"schedule"`
}

func validPlanType(planType string) bool {
	switch planType {
	case domain.PlanESOP, domain.PlanRSU, domain.PlanRSA:
		return true
	}
	return false
}

// CreateGrant creates a grant and its vesting events in one transaction.
// ESOP grants require an exercise price and their events carry
// requires_exercise; RSU/RSA events vest into owned shares without a paid
// step. The schedule must sum exactly to total_shares, and the company
// reserved pool must have enough available shares to back the grant. Shares
// are not locked at grant time; availability is enforced again at each
// transfer.
func (s *Service) CreateGrant(ctx context.Context, actor domain.Actor, in CreateGrantInput) (*domain.Grant, error) {
	if actor.CompanyID == nil {
		return nil, fmt.Errorf("%w: actor is not attached to a company", domain.ErrForbidden)
	}
	if !validPlanType(in.PlanType) {
		return nil, fmt.Errorf("%w: invalid plan type %q", domain.ErrValidation, in.PlanType)
	}
	if in.TotalShares <= 0 {
		return nil, fmt.Errorf("%w: total_shares must be positive", domain.ErrValidation)
	}
	if in.PlanType == domain.PlanESOP {
		if in.ExercisePrice == nil || !validation.IsPositiveAmount(*in.ExercisePrice) {
			return nil, fmt.Errorf("%w: esop grants require a positive exercise price", domain.ErrValidation)
		}
	} else if in.ExercisePrice != nil {
		return nil, fmt.Errorf("%w: %s grants do not carry an exercise price", domain.ErrValidation, in.PlanType)
	}
	if len(in.Schedule) == 0 {
		return nil, fmt.Errorf("%w: vesting schedule is required", domain.ErrValidation)
	}
	var scheduled int64
	for _, entry := range in.Schedule {
		if entry.SharesToVest <= 0 {
			return nil, fmt.Errorf("%w: each schedule entry must vest a positive share count", domain.ErrValidation)
		}
		if entry.VestingDate.IsZero() {
			return nil, fmt.Errorf("%w: each schedule entry needs a vesting date", domain.ErrValidation)
		}
		scheduled += entry.SharesToVest
	}
	if scheduled != in.TotalShares {
		return nil, fmt.Errorf("%w: schedule sums to %d shares, grant total is %d", domain.ErrValidation, scheduled, in.TotalShares)
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if !validation.IsValidCurrency(in.Currency) {
		return nil, fmt.Errorf("%w: invalid currency %q", domain.ErrValidation, in.Currency)
	}
	if in.GrantDate.IsZero() {
		in.GrantDate = time.Now()
	}
	companyID := *actor.CompanyID

	grant := &domain.Grant{
		CompanyID:     companyID,
		EmployeeID:    in.EmployeeID,
		PlanType:      in.PlanType,
		TotalShares:   in.TotalShares,
		ExercisePrice: in.ExercisePrice,
		Currency:      in.Currency,
		GrantDate:     in.GrantDate,
		Status:        "active",
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var employee domain.Employee
		if err := tx.Where("employee_id = ? AND company_id = ?", in.EmployeeID, companyID).First(&employee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: employee %s at company %s", domain.ErrNotFound, in.EmployeeID, companyID)
			}
			return err
		}

		reserved, err := ledger.CompanyPortfolio(tx, companyID, domain.PortfolioCompanyReserved)
		if err != nil {
			return err
		}
		var outstanding int64
		if err := tx.Model(&domain.Grant{}).
			Where("company_id = ? AND status = ?", companyID, "active").
			Select("COALESCE(SUM(total_shares), 0)").
			Scan(&outstanding).Error; err != nil {
			return err
		}
		if outstanding+in.TotalShares > reserved.AvailableShares {
			return fmt.Errorf("%w: reserved pool has %d available, %d already granted, need %d more",
				domain.ErrInsufficientShares, reserved.AvailableShares, outstanding, in.TotalShares)
		}

		if err := tx.Create(grant).Error; err != nil {
			return err
		}

		requiresExercise := grant.RequiresExercise()
		for _, entry := range in.Schedule {
			event := &domain.VestingEvent{
				GrantID:          grant.GrantID,
				CompanyID:        companyID,
				EmployeeID:       in.EmployeeID,
				VestingDate:      entry.VestingDate,
				SharesToVest:     entry.SharesToVest,
				Status:           domain.VestingPending,
				ExercisePrice:    in.ExercisePrice,
				RequiresExercise: requiresExercise,
			}
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}

		return ledger.RecordEvent(tx, "grant", grant.GrantID, "CREATED", actor.UserID, map[string]interface{}{
			"plan_type":    grant.PlanType,
			"total_shares": grant.TotalShares,
			"tranches":     len(in.Schedule),
		})
	})
	if err != nil {
		return nil, err
	}
	return grant, nil
}

// GetGrant returns a grant with its vesting events, visible to the owning
// employee or to operators at its company.
func (s *Service) GetGrant(ctx context.Context, actor domain.Actor, grantID uuid.UUID) (map[string]interface{}, error) {
	var grant domain.Grant
	if err := s.DB.WithContext(ctx).Where("grant_id = ?", grantID).First(&grant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: grant %s", domain.ErrNotFound, grantID)
		}
		return nil, err
	}
	if !actor.IsEmployee(grant.EmployeeID) && (actor.CompanyID == nil || *actor.CompanyID != grant.CompanyID) {
		return nil, fmt.Errorf("%w: grant belongs to another company", domain.ErrForbidden)
	}

	var events []domain.VestingEvent
	if err := s.DB.WithContext(ctx).
		Where("grant_id = ?", grantID).
		Order("vesting_date ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"grant":          grant,
		"vesting_events": events,
	}, nil
}

// ListGrants returns grants scoped to the actor, newest first.
func (s *Service) ListGrants(ctx context.Context, actor domain.Actor) ([]domain.Grant, error) {
	q := s.DB.WithContext(ctx).Model(&domain.Grant{})
	switch {
	case actor.EmployeeID != nil:
		q = q.Where("employee_id = ?", *actor.EmployeeID)
	case actor.CompanyID != nil:
		q = q.Where("company_id = ?", *actor.CompanyID)
	default:
		return nil, fmt.Errorf("%w: actor has no company or employee scope", domain.ErrForbidden)
	}
	var grants []domain.Grant
	if err := q.Order("grant_date DESC").Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}
