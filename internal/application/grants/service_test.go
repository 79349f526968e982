package grants

import (
	"context"
	"testing"
	"time"

	"equify-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupGrantsTest(t *testing.T) (*gorm.DB, *Service, uuid.UUID, domain.Employee) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Company{}, &domain.Employee{}, &domain.Portfolio{},
		&domain.Grant{}, &domain.VestingEvent{}, &domain.LedgerEvent{},
	))

	companyID := uuid.New()
	require.NoError(t, db.Create(&domain.Company{
		CompanyID: companyID, Name: "Acme", Code: "AC-444444", Currency: "USD", AuthorizedShares: 1000,
	}).Error)
	emp := domain.Employee{CompanyID: companyID, Fullname: "Ana Ruiz", Email: "ana@acme.test", Status: "active"}
	require.NoError(t, db.Create(&emp).Error)
	require.NoError(t, db.Create(&domain.Portfolio{
		CompanyID: companyID, Kind: domain.PortfolioCompanyReserved, Name: "Reserved Share Pool",
		TotalShares: 1000, AvailableShares: 1000, Currency: "USD",
	}).Error)

	return db, &Service{DB: db}, companyID, emp
}

func quarterlySchedule(start time.Time, perTranche int64, tranches int) []ScheduleEntry {
	entries := make([]ScheduleEntry, 0, tranches)
	for i := 0; i < tranches; i++ {
		entries = append(entries, ScheduleEntry{
			VestingDate:  start.AddDate(0, 3*i, 0),
			SharesToVest: perTranche,
		})
	}
	return entries
}

func TestCreateGrant_ESOPCreatesVestingEvents(t *testing.T) {
	db, svc, companyID, emp := setupGrantsTest(t)
	actor := domain.Actor{UserID: uuid.New(), CompanyID: &companyID, Role: "hr_admin"}
	price := decimal.RequireFromString("1.50")
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	grant, err := svc.CreateGrant(context.Background(), actor, CreateGrantInput{
		EmployeeID:    emp.EmployeeID,
		PlanType:      domain.PlanESOP,
		TotalShares:   400,
		ExercisePrice: &price,
		GrantDate:     start,
		Schedule:      quarterlySchedule(start, 100, 4),
	})
	require.NoError(t, err)
	assert.Equal(t, "active", grant.Status)
	assert.Equal(t, "USD", grant.Currency)

	var events []domain.VestingEvent
	require.NoError(t, db.Where("grant_id = ?", grant.GrantID).Order("vesting_date ASC").Find(&events).Error)
	require.Len(t, events, 4)
	for _, ev := range events {
		assert.Equal(t, domain.VestingPending, ev.Status)
		assert.Equal(t, int64(100), ev.SharesToVest)
		assert.True(t, ev.RequiresExercise)
		require.NotNil(t, ev.ExercisePrice)
		assert.True(t, ev.ExercisePrice.Equal(price))
	}
}

func TestCreateGrant_RSUEventsDoNotRequireExercise(t *testing.T) {
	db, svc, companyID, emp := setupGrantsTest(t)
	actor := domain.Actor{UserID: uuid.New(), CompanyID: &companyID, Role: "hr_admin"}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	grant, err := svc.CreateGrant(context.Background(), actor, CreateGrantInput{
		EmployeeID:  emp.EmployeeID,
		PlanType:    domain.PlanRSU,
		TotalShares: 200,
		GrantDate:   start,
		Schedule:    quarterlySchedule(start, 100, 2),
	})
	require.NoError(t, err)

	var events []domain.VestingEvent
	require.NoError(t, db.Where("grant_id = ?", grant.GrantID).Find(&events).Error)
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.False(t, ev.RequiresExercise)
		assert.Nil(t, ev.ExercisePrice)
	}
}

func TestCreateGrant_ScheduleMustSumToTotal(t *testing.T) {
	_, svc, companyID, emp := setupGrantsTest(t)
	actor := domain.Actor{UserID: uuid.New(), CompanyID: &companyID, Role: "hr_admin"}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateGrant(context.Background(), actor, CreateGrantInput{
		EmployeeID:  emp.EmployeeID,
		PlanType:    domain.PlanRSU,
		TotalShares: 300,
		GrantDate:   start,
		Schedule:    quarterlySchedule(start, 100, 2),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateGrant_ESOPRequiresExercisePrice(t *testing.T) {
	_, svc, companyID, emp := setupGrantsTest(t)
	actor := domain.Actor{UserID: uuid.New(), CompanyID: &companyID, Role: "hr_admin"}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateGrant(context.Background(), actor, CreateGrantInput{
		EmployeeID:  emp.EmployeeID,
		PlanType:    domain.PlanESOP,
		TotalShares: 100,
		GrantDate:   start,
		Schedule:    quarterlySchedule(start, 100, 1),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	price := decimal.RequireFromString("2.00")
	_, err = svc.CreateGrant(context.Background(), actor, CreateGrantInput{
		EmployeeID:    emp.EmployeeID,
		PlanType:      domain.PlanRSU,
		TotalShares:   100,
		ExercisePrice: &price,
		GrantDate:     start,
		Schedule:      quarterlySchedule(start, 100, 1),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateGrant_ReservedPoolBacksOutstandingGrants(t *testing.T) {
	_, svc, companyID, emp := setupGrantsTest(t)
	actor := domain.Actor{UserID: uuid.New(), CompanyID: &companyID, Role: "hr_admin"}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateGrant(context.Background(), actor, CreateGrantInput{
		EmployeeID:  emp.EmployeeID,
		PlanType:    domain.PlanRSU,
		TotalShares: 800,
		GrantDate:   start,
		Schedule:    quarterlySchedule(start, 200, 4),
	})
	require.NoError(t, err)

	// 800 of 1000 already granted; 300 more exceeds the pool.
	_, err = svc.CreateGrant(context.Background(), actor, CreateGrantInput{
		EmployeeID:  emp.EmployeeID,
		PlanType:    domain.PlanRSU,
		TotalShares: 300,
		GrantDate:   start,
		Schedule:    quarterlySchedule(start, 100, 3),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientShares)
}

func TestCreateGrant_UnknownEmployee(t *testing.T) {
	_, svc, companyID, _ := setupGrantsTest(t)
	actor := domain.Actor{UserID: uuid.New(), CompanyID: &companyID, Role: "hr_admin"}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateGrant(context.Background(), actor, CreateGrantInput{
		EmployeeID:  uuid.New(),
		PlanType:    domain.PlanRSU,
		TotalShares: 100,
		GrantDate:   start,
		Schedule:    quarterlySchedule(start, 100, 1),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetGrant_Visibility(t *testing.T) {
	_, svc, companyID, emp := setupGrantsTest(t)
	admin := domain.Actor{UserID: uuid.New(), CompanyID: &companyID, Role: "hr_admin"}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	grant, err := svc.CreateGrant(context.Background(), admin, CreateGrantInput{
		EmployeeID:  emp.EmployeeID,
		PlanType:    domain.PlanRSU,
		TotalShares: 100,
		GrantDate:   start,
		Schedule:    quarterlySchedule(start, 100, 1),
	})
	require.NoError(t, err)

	owner := domain.Actor{UserID: uuid.New(), EmployeeID: &emp.EmployeeID, CompanyID: &companyID, Role: "employee"}
	got, err := svc.GetGrant(context.Background(), owner, grant.GrantID)
	require.NoError(t, err)
	assert.Len(t, got["vesting_events"], 1)

	otherCompany := uuid.New()
	stranger := domain.Actor{UserID: uuid.New(), CompanyID: &otherCompany, Role: "hr_admin"}
	_, err = svc.GetGrant(context.Background(), stranger, grant.GrantID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListGrants_ScopedToActor(t *testing.T) {
	db, svc, companyID, emp := setupGrantsTest(t)
	admin := domain.Actor{UserID: uuid.New(), CompanyID: &companyID, Role: "hr_admin"}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	other := domain.Employee{CompanyID: companyID, Fullname: "Bo Chen", Email: "bo@acme.test", Status: "active"}
	require.NoError(t, db.Create(&other).Error)

	for _, e := range []uuid.UUID{emp.EmployeeID, other.EmployeeID} {
		_, err := svc.CreateGrant(context.Background(), admin, CreateGrantInput{
			EmployeeID:  e,
			PlanType:    domain.PlanRSU,
			TotalShares: 100,
			GrantDate:   start,
			Schedule:    quarterlySchedule(start, 100, 1),
		})
		require.NoError(t, err)
	}

	grants, err := svc.ListGrants(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, grants, 2)

	owner := domain.Actor{UserID: uuid.New(), EmployeeID: &emp.EmployeeID, CompanyID: &companyID, Role: "employee"}
	grants, err = svc.ListGrants(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}
