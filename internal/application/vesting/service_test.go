package vesting

import (
	"context"
	"testing"
	"time"

	"equify-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupVestingTest(t *testing.T) (*gorm.DB, *Service, uuid.UUID, domain.Employee) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Company{}, &domain.Employee{}, &domain.Portfolio{}, &domain.Grant{},
		&domain.VestingEvent{}, &domain.ShareTransfer{}, &domain.LedgerEvent{},
	))

	companyID := uuid.New()
	require.NoError(t, db.Create(&domain.Company{
		CompanyID: companyID, Name: "Acme", Code: "AC-222222", Currency: "USD", AuthorizedShares: 5000,
	}).Error)
	emp := domain.Employee{CompanyID: companyID, Fullname: "Sam Lee", Email: "sam@acme.test", Status: "active"}
	require.NoError(t, db.Create(&emp).Error)
	require.NoError(t, db.Create(&domain.Portfolio{
		CompanyID: companyID, Kind: domain.PortfolioCompanyReserved, Name: "Reserved Share Pool",
		TotalShares: 5000, AvailableShares: 5000, Currency: "USD",
	}).Error)

	return db, &Service{DB: db}, companyID, emp
}

func seedEvent(t *testing.T, db *gorm.DB, companyID uuid.UUID, emp domain.Employee, date time.Time, shares int64, requiresExercise bool, status string) domain.VestingEvent {
	grant := domain.Grant{
		CompanyID: companyID, EmployeeID: emp.EmployeeID,
		PlanType: domain.PlanRSU, TotalShares: shares, Currency: "USD",
		GrantDate: date.AddDate(-1, 0, 0), Status: "active",
	}
	if requiresExercise {
		grant.PlanType = domain.PlanESOP
	}
	require.NoError(t, db.Create(&grant).Error)

	ev := domain.VestingEvent{
		GrantID: grant.GrantID, CompanyID: companyID, EmployeeID: emp.EmployeeID,
		VestingDate: date, SharesToVest: shares, Status: status, RequiresExercise: requiresExercise,
	}
	require.NoError(t, db.Create(&ev).Error)
	return ev
}

func eventStatus(t *testing.T, db *gorm.DB, id uuid.UUID) string {
	var ev domain.VestingEvent
	require.NoError(t, db.Where("event_id = ?", id).First(&ev).Error)
	return ev.Status
}

func TestRefresh_AdvancesDueEventsInOnePass(t *testing.T) {
	db, svc, companyID, emp := setupVestingTest(t)
	now := time.Now()

	rsu := seedEvent(t, db, companyID, emp, now.AddDate(0, 0, -1), 100, false, domain.VestingPending)
	esop := seedEvent(t, db, companyID, emp, now.AddDate(0, 0, -1), 200, true, domain.VestingPending)
	future := seedEvent(t, db, companyID, emp, now.AddDate(0, 1, 0), 300, false, domain.VestingPending)

	advanced, err := svc.Refresh(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, advanced)

	assert.Equal(t, domain.VestingVested, eventStatus(t, db, rsu.EventID))
	assert.Equal(t, domain.VestingPendingExercise, eventStatus(t, db, esop.EventID))
	assert.Equal(t, domain.VestingPending, eventStatus(t, db, future.EventID))
}

func TestRefresh_Idempotent(t *testing.T) {
	db, svc, companyID, emp := setupVestingTest(t)
	now := time.Now()
	seedEvent(t, db, companyID, emp, now.AddDate(0, 0, -1), 100, false, domain.VestingPending)

	advanced, err := svc.Refresh(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, advanced)

	advanced, err = svc.Refresh(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, advanced)
}

func TestRefresh_DueEventAdvancesToTerminalState(t *testing.T) {
	db, svc, companyID, emp := setupVestingTest(t)
	now := time.Now()
	ev := seedEvent(t, db, companyID, emp, now.AddDate(0, 0, -2), 100, true, domain.VestingDue)

	advanced, err := svc.Refresh(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, advanced)
	assert.Equal(t, domain.VestingPendingExercise, eventStatus(t, db, ev.EventID))
}

func TestTransferVested_MovesSharesAndConserves(t *testing.T) {
	db, svc, companyID, emp := setupVestingTest(t)
	now := time.Now()
	ev := seedEvent(t, db, companyID, emp, now.AddDate(0, 0, -1), 400, false, domain.VestingVested)

	actor := domain.Actor{UserID: uuid.New(), CompanyID: &companyID, Role: "operations_admin"}
	n, err := svc.TransferVested(context.Background(), actor, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var reserved domain.Portfolio
	require.NoError(t, db.Where("company_id = ? AND kind = ?", companyID, domain.PortfolioCompanyReserved).First(&reserved).Error)
	assert.Equal(t, int64(4600), reserved.TotalShares)
	assert.Equal(t, int64(4600), reserved.AvailableShares)

	var vested domain.Portfolio
	require.NoError(t, db.Where("company_id = ? AND employee_id = ? AND kind = ?", companyID, emp.EmployeeID, domain.PortfolioEmployeeVested).First(&vested).Error)
	assert.Equal(t, int64(400), vested.TotalShares)
	assert.Equal(t, int64(5000), reserved.TotalShares+vested.TotalShares)

	var transfer domain.ShareTransfer
	require.NoError(t, db.Where("employee_id = ?", emp.EmployeeID).First(&transfer).Error)
	assert.Equal(t, domain.ShareTransferVesting, transfer.TransferType)
	assert.Equal(t, int64(400), transfer.SharesTransferred)
	assert.Equal(t, domain.TransferProcessed, transfer.Status)

	assert.Equal(t, domain.VestingTransferred, eventStatus(t, db, ev.EventID))
}

func TestTransferVested_SkipsNonVestedStatuses(t *testing.T) {
	db, svc, companyID, emp := setupVestingTest(t)
	now := time.Now()
	seedEvent(t, db, companyID, emp, now.AddDate(0, 0, -1), 100, true, domain.VestingPendingExercise)
	seedEvent(t, db, companyID, emp, now.AddDate(0, 1, 0), 100, false, domain.VestingPending)

	actor := domain.Actor{UserID: uuid.New(), CompanyID: &companyID, Role: "operations_admin"}
	n, err := svc.TransferVested(context.Background(), actor, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTransferVested_InsufficientReservedShares(t *testing.T) {
	db, svc, companyID, emp := setupVestingTest(t)
	now := time.Now()
	ev := seedEvent(t, db, companyID, emp, now.AddDate(0, 0, -1), 400, false, domain.VestingVested)

	require.NoError(t, db.Model(&domain.Portfolio{}).
		Where("company_id = ? AND kind = ?", companyID, domain.PortfolioCompanyReserved).
		Updates(map[string]interface{}{"total_shares": 50, "available_shares": 50}).Error)

	actor := domain.Actor{UserID: uuid.New(), CompanyID: &companyID, Role: "operations_admin"}
	n, err := svc.TransferVested(context.Background(), actor, now)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientShares)
	assert.Zero(t, n)
	assert.Equal(t, domain.VestingVested, eventStatus(t, db, ev.EventID))
}

func TestListEvents_ScopedToActor(t *testing.T) {
	db, svc, companyID, emp := setupVestingTest(t)
	now := time.Now()
	seedEvent(t, db, companyID, emp, now, 100, false, domain.VestingPending)

	employeeActor := domain.Actor{UserID: uuid.New(), EmployeeID: &emp.EmployeeID, CompanyID: &companyID, Role: "employee"}
	events, err := svc.ListEvents(context.Background(), employeeActor, "")
	require.NoError(t, err)
	assert.Len(t, events, 1)

	companyActor := domain.Actor{UserID: uuid.New(), CompanyID: &companyID, Role: "hr_admin"}
	events, err = svc.ListEvents(context.Background(), companyActor, domain.VestingPending)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	_, err = svc.ListEvents(context.Background(), domain.Actor{UserID: uuid.New(), Role: "employee"}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
