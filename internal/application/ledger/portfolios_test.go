package ledger

import (
	"testing"

	"equify-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLedgerTest(t *testing.T) (*gorm.DB, uuid.UUID, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Portfolio{}, &domain.LedgerEvent{}))
	return db, uuid.New(), uuid.New()
}

func TestApplyCashDelta_CreditAndDebit(t *testing.T) {
	db, companyID, employeeID := setupLedgerTest(t)
	p := domain.Portfolio{
		CompanyID: companyID, EmployeeID: &employeeID,
		Kind: domain.PortfolioEmployeeCash, Name: "Cash", Currency: "USD",
	}
	require.NoError(t, db.Create(&p).Error)

	require.NoError(t, ApplyCashDelta(db, &p, decimal.RequireFromString("100.50")))
	assert.True(t, p.CashBalance.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, int64(1), p.Version)

	require.NoError(t, ApplyCashDelta(db, &p, decimal.RequireFromString("-40.00")))
	assert.True(t, p.CashBalance.Equal(decimal.RequireFromString("60.50")))
	assert.Equal(t, int64(2), p.Version)

	var stored domain.Portfolio
	require.NoError(t, db.Where("portfolio_id = ?", p.PortfolioID).First(&stored).Error)
	assert.True(t, stored.CashBalance.Equal(p.CashBalance))
	assert.Equal(t, p.Version, stored.Version)
}

func TestApplyCashDelta_RejectsOverdraft(t *testing.T) {
	db, companyID, _ := setupLedgerTest(t)
	p := domain.Portfolio{
		CompanyID: companyID, Kind: domain.PortfolioCompanyCash, Name: "Company Treasury",
		CashBalance: decimal.RequireFromString("30.00"), Currency: "USD",
	}
	require.NoError(t, db.Create(&p).Error)

	err := ApplyCashDelta(db, &p, decimal.RequireFromString("-30.01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, p.CashBalance.Equal(decimal.RequireFromString("30.00")))
	assert.Equal(t, int64(0), p.Version)
}

func TestApplyCashDelta_StaleVersionConflicts(t *testing.T) {
	db, companyID, _ := setupLedgerTest(t)
	p := domain.Portfolio{
		CompanyID: companyID, Kind: domain.PortfolioCompanyCash, Name: "Company Treasury", Currency: "USD",
	}
	require.NoError(t, db.Create(&p).Error)

	// Two readers hold the same version; the second write must lose.
	stale := p
	require.NoError(t, ApplyCashDelta(db, &p, decimal.RequireFromString("10.00")))

	err := ApplyCashDelta(db, &stale, decimal.RequireFromString("5.00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)

	var stored domain.Portfolio
	require.NoError(t, db.Where("portfolio_id = ?", p.PortfolioID).First(&stored).Error)
	assert.True(t, stored.CashBalance.Equal(decimal.RequireFromString("10.00")))
}

func TestApplyCashDelta_SharePortfolioRejected(t *testing.T) {
	db, companyID, _ := setupLedgerTest(t)
	p := domain.Portfolio{
		CompanyID: companyID, Kind: domain.PortfolioCompanyReserved, Name: "Reserved Share Pool",
		TotalShares: 100, AvailableShares: 100, Currency: "USD",
	}
	require.NoError(t, db.Create(&p).Error)

	err := ApplyCashDelta(db, &p, decimal.RequireFromString("1.00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestApplyShareDelta_GuardsCounts(t *testing.T) {
	db, companyID, _ := setupLedgerTest(t)
	p := domain.Portfolio{
		CompanyID: companyID, Kind: domain.PortfolioCompanyReserved, Name: "Reserved Share Pool",
		TotalShares: 100, AvailableShares: 100, Currency: "USD",
	}
	require.NoError(t, db.Create(&p).Error)

	require.NoError(t, ApplyShareDelta(db, &p, -40, -40))
	assert.Equal(t, int64(60), p.TotalShares)
	assert.Equal(t, int64(60), p.AvailableShares)
	assert.Equal(t, int64(1), p.Version)

	err := ApplyShareDelta(db, &p, -100, -100)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientShares)

	err = ApplyShareDelta(db, &p, 0, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEnsureEmployeeVestedPortfolio_CreatesOnce(t *testing.T) {
	db, companyID, employeeID := setupLedgerTest(t)

	first, err := EnsureEmployeeVestedPortfolio(db, companyID, employeeID)
	require.NoError(t, err)
	assert.Equal(t, domain.PortfolioEmployeeVested, first.Kind)
	assert.Equal(t, "Vested Shares", first.Name)
	assert.Zero(t, first.TotalShares)

	second, err := EnsureEmployeeVestedPortfolio(db, companyID, employeeID)
	require.NoError(t, err)
	assert.Equal(t, first.PortfolioID, second.PortfolioID)

	var count int64
	require.NoError(t, db.Model(&domain.Portfolio{}).Where("company_id = ?", companyID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCompanyPortfolio_NotFound(t *testing.T) {
	db, companyID, _ := setupLedgerTest(t)
	_, err := CompanyPortfolio(db, companyID, domain.PortfolioCompanyCash)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPortfolioNotFound)
}
