package ledger

import (
	"errors"
	"fmt"

	"equify-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Shared portfolio access layer. All balance mutations go through the
// version-guarded helpers here: the UPDATE is conditional on the version
// read, so two concurrent settlements against the same portfolio cannot
// lose an update — the loser gets domain.ErrConflict and retries with a
// fresh read.

// CompanyPortfolio returns the company-scoped portfolio of the given kind.
func CompanyPortfolio(tx *gorm.DB, companyID uuid.UUID, kind string) (*domain.Portfolio, error) {
	var p domain.Portfolio
	err := tx.Where("company_id = ? AND employee_id IS NULL AND kind = ?", companyID, kind).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: company %s kind %s", domain.ErrPortfolioNotFound, companyID, kind)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// EmployeePortfolio returns the employee-scoped portfolio of the given kind.
func EmployeePortfolio(tx *gorm.DB, companyID, employeeID uuid.UUID, kind string) (*domain.Portfolio, error) {
	var p domain.Portfolio
	err := tx.Where("company_id = ? AND employee_id = ? AND kind = ?", companyID, employeeID, kind).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: employee %s kind %s", domain.ErrPortfolioNotFound, employeeID, kind)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureEmployeeVestedPortfolio returns the employee's vested-share
// portfolio, creating it with zero balances on first use (first exercise or
// first vested transfer for this employee at this company).
func EnsureEmployeeVestedPortfolio(tx *gorm.DB, companyID, employeeID uuid.UUID) (*domain.Portfolio, error) {
	p, err := EmployeePortfolio(tx, companyID, employeeID, domain.PortfolioEmployeeVested)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrPortfolioNotFound) {
		return nil, err
	}
	created := &domain.Portfolio{
		CompanyID:  companyID,
		EmployeeID: &employeeID,
		Kind:       domain.PortfolioEmployeeVested,
		Name:       "Vested Shares",
	}
	if err := tx.Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

// ApplyCashDelta adds delta (may be negative) to the portfolio's cash
// balance under the version guard. A negative resulting balance is rejected
// with ErrInsufficientFunds; a stale version yields ErrConflict. On success
// the in-memory portfolio reflects the new balance and version.
func ApplyCashDelta(tx *gorm.DB, p *domain.Portfolio, delta decimal.Decimal) error {
	if !p.IsCash() {
		return fmt.Errorf("%w: portfolio %s holds shares, not cash", domain.ErrValidation, p.PortfolioID)
	}
	newBalance := p.CashBalance.Add(delta)
	if newBalance.IsNegative() {
		return fmt.Errorf("%w: balance %s, delta %s", domain.ErrInsufficientFunds, p.CashBalance, delta)
	}
	res := tx.Model(&domain.Portfolio{}).
		Where("portfolio_id = ? AND version = ?", p.PortfolioID, p.Version).
		Updates(map[string]interface{}{
			"cash_balance": newBalance,
			"version":      p.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: portfolio %s version %d is stale", domain.ErrConflict, p.PortfolioID, p.Version)
	}
	p.CashBalance = newBalance
	p.Version++
	return nil
}

// ApplyShareDelta adjusts total and available share counts under the version
// guard. Either count going negative is rejected with ErrInsufficientShares.
func ApplyShareDelta(tx *gorm.DB, p *domain.Portfolio, totalDelta, availableDelta int64) error {
	if p.IsCash() {
		return fmt.Errorf("%w: portfolio %s holds cash, not shares", domain.ErrValidation, p.PortfolioID)
	}
	newTotal := p.TotalShares + totalDelta
	newAvailable := p.AvailableShares + availableDelta
	if newTotal < 0 || newAvailable < 0 {
		return fmt.Errorf("%w: total %d, available %d after delta", domain.ErrInsufficientShares, newTotal, newAvailable)
	}
	if newAvailable > newTotal {
		return fmt.Errorf("%w: available %d would exceed total %d", domain.ErrValidation, newAvailable, newTotal)
	}
	res := tx.Model(&domain.Portfolio{}).
		Where("portfolio_id = ? AND version = ?", p.PortfolioID, p.Version).
		Updates(map[string]interface{}{
			"total_shares":     newTotal,
			"available_shares": newAvailable,
			"version":          p.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: portfolio %s version %d is stale", domain.ErrConflict, p.PortfolioID, p.Version)
	}
	p.TotalShares = newTotal
	p.AvailableShares = newAvailable
	p.Version++
	return nil
}
