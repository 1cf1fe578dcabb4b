package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/maisonlabs/courtier/internal/analytics/domain"
	appointmentdomain "github.com/maisonlabs/courtier/internal/appointment/domain"
	"github.com/maisonlabs/courtier/internal/clock"
	communicationdomain "github.com/maisonlabs/courtier/internal/communication/domain"
	contractdomain "github.com/maisonlabs/courtier/internal/contract/domain"
	mandatedomain "github.com/maisonlabs/courtier/internal/mandate/domain"
	paymentdomain "github.com/maisonlabs/courtier/internal/payment/domain"
	propertydomain "github.com/maisonlabs/courtier/internal/property/domain"
	taskdomain "github.com/maisonlabs/courtier/internal/task/domain"
	"github.com/maisonlabs/courtier/internal/tenant"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	svc      domain.Service
	clock    *clock.FakeClock
	identity tenant.Identity
	agencyID snowflake.ID
	userID   snowflake.ID
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&contractdomain.Contract{},
		&mandatedomain.Mandate{},
		&paymentdomain.Payment{},
		&taskdomain.Task{},
		&communicationdomain.Communication{},
		&propertydomain.Property{},
		&appointmentdomain.Appointment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(now)
	svc := New(Params{DB: db, Log: zap.NewNop(), Clock: fake})

	agencyID := node.Generate()
	userID := node.Generate()
	return &fixture{
		db:       db,
		node:     node,
		svc:      svc,
		clock:    fake,
		identity: tenant.Identity{UserID: userID, Role: userdomain.RoleAgent, AgencyID: agencyID},
		agencyID: agencyID,
		userID:   userID,
	}
}

func (f *fixture) createContract(t *testing.T, signed time.Time, commission float64, contractType string) {
	t.Helper()
	contract := contractdomain.Contract{
		ID:             f.node.Generate(),
		ContractNumber: "CTR-000001",
		Type:           contractType,
		Status:         contractdomain.StatusCompleted,
		SignedDate:     &signed,
		Price:          commission * 20,
		Commission:     commission,
		UserID:         f.userID,
		PropertyID:     f.node.Generate(),
		ClientID:       f.node.Generate(),
		AgencyID:       f.agencyID,
		CreatedAt:      signed,
		UpdatedAt:      signed,
	}
	require.NoError(t, f.db.Create(&contract).Error)
}

func (f *fixture) createMandate(t *testing.T, created time.Time) {
	t.Helper()
	mandate := mandatedomain.Mandate{
		ID:            f.node.Generate(),
		MandateNumber: "MAND-000001",
		Type:          mandatedomain.TypeExclusive,
		Status:        mandatedomain.StatusActive,
		StartDate:     created,
		Price:         250000,
		UserID:        f.userID,
		PropertyID:    f.node.Generate(),
		ClientID:      f.node.Generate(),
		AgencyID:      f.agencyID,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, f.db.Create(&mandate).Error)
}

func TestDashboardKPIs(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	// Two completed sales this month, one last month.
	f.createContract(t, time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC), 5000, contractdomain.TypeSale)
	f.createContract(t, time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC), 3000, contractdomain.TypeSale)
	f.createContract(t, time.Date(2025, time.February, 20, 10, 0, 0, 0, time.UTC), 4000, contractdomain.TypeSale)

	// Four mandates this month, two last month.
	for i := 0; i < 4; i++ {
		f.createMandate(t, time.Date(2025, time.March, 2+i, 9, 0, 0, 0, time.UTC))
	}
	f.createMandate(t, time.Date(2025, time.February, 5, 9, 0, 0, 0, time.UTC))
	f.createMandate(t, time.Date(2025, time.February, 6, 9, 0, 0, 0, time.UTC))

	dashboard, err := f.svc.Dashboard(context.Background(), f.identity, domain.DashboardRequest{})
	require.NoError(t, err)

	kpis := dashboard.KPIs
	assert.InDelta(t, 8000, kpis.MonthlyRevenue, 0.001)
	assert.InDelta(t, 4000, kpis.LastMonthRevenue, 0.001)
	assert.InDelta(t, 12000, kpis.YearToDateRevenue, 0.001)
	assert.InDelta(t, 100, kpis.RevenueGrowth, 0.001)

	assert.Equal(t, int64(4), kpis.NewMandates)
	assert.Equal(t, int64(2), kpis.LastMonthMandates)
	assert.InDelta(t, 100, kpis.MandateGrowth, 0.001)

	assert.Equal(t, int64(2), kpis.CompletedSales)
	assert.Equal(t, int64(1), kpis.LastMonthSales)
	assert.InDelta(t, 50, kpis.ConversionRate, 0.001)
	assert.InDelta(t, 50, kpis.LastMonthConversionRate, 0.001)
}

func TestDashboardZeroBaseline(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	f.createContract(t, time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC), 5000, contractdomain.TypeSale)

	dashboard, err := f.svc.Dashboard(context.Background(), f.identity, domain.DashboardRequest{})
	require.NoError(t, err)

	// No last-month activity: every growth figure stays at zero instead of
	// dividing by zero.
	kpis := dashboard.KPIs
	assert.Zero(t, kpis.RevenueGrowth)
	assert.Zero(t, kpis.MandateGrowth)
	assert.Zero(t, kpis.SalesGrowth)
	assert.Zero(t, kpis.ConversionRate)
	assert.Zero(t, kpis.ConversionChange)
}

func TestDashboardRejectsBadPeriods(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	_, err := f.svc.Dashboard(context.Background(), f.identity, domain.DashboardRequest{Period: "quarter"})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	_, err = f.svc.Dashboard(context.Background(), f.identity, domain.DashboardRequest{Period: domain.PeriodCustom})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	start := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	_, err = f.svc.Dashboard(context.Background(), f.identity, domain.DashboardRequest{
		Period:    domain.PeriodCustom,
		StartDate: &start,
		EndDate:   &end,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestRevenueWeekSeries(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC) // a Saturday
	f := newFixture(t, now)

	f.createContract(t, time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC), 2000, contractdomain.TypeSale)

	report, err := f.svc.Revenue(context.Background(), f.identity, domain.DashboardRequest{Period: domain.PeriodWeek})
	require.NoError(t, err)

	// Seven zero-filled day buckets ending today, labelled with French day
	// abbreviations.
	require.Len(t, report.Points, 7)
	assert.Equal(t, "Dim", report.Points[0].Label)
	assert.Equal(t, "Sam", report.Points[6].Label)
	assert.InDelta(t, 2000, report.Total, 0.001)

	var nonZero int
	for _, point := range report.Points {
		if point.Amount > 0 {
			nonZero++
			assert.Equal(t, "Mer", point.Label)
		}
	}
	assert.Equal(t, 1, nonZero)
}

func TestRevenueYearBucketsByMonth(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	f.createContract(t, time.Date(2024, time.November, 5, 10, 0, 0, 0, time.UTC), 1500, contractdomain.TypeSale)
	f.createContract(t, time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC), 500, contractdomain.TypeRental)

	report, err := f.svc.Revenue(context.Background(), f.identity, domain.DashboardRequest{Period: domain.PeriodYear})
	require.NoError(t, err)

	// Trailing twelve calendar months.
	require.Len(t, report.Points, 12)
	assert.Equal(t, "2024-04", report.Points[0].Label)
	assert.Equal(t, "2025-03", report.Points[11].Label)
	assert.InDelta(t, 2000, report.Total, 0.001)
}

func TestOperationalDashboard(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	due := now.Add(2 * time.Hour)
	overdue := now.Add(-48 * time.Hour)
	tasks := []taskdomain.Task{
		{ID: f.node.Generate(), Title: "Appeler M. Dupont", Status: taskdomain.StatusPending, Priority: taskdomain.PriorityUrgent, DueDate: &due, UserID: f.userID, AgencyID: f.agencyID},
		{ID: f.node.Generate(), Title: "Visite villa Cannes", Status: taskdomain.StatusPending, Priority: taskdomain.PriorityHigh, DueDate: &overdue, UserID: f.userID, AgencyID: f.agencyID},
		{ID: f.node.Generate(), Title: "Classer les dossiers", Status: taskdomain.StatusPending, Priority: taskdomain.PriorityLow, DueDate: &due, UserID: f.userID, AgencyID: f.agencyID},
		{ID: f.node.Generate(), Title: "Rappeler le notaire", Status: taskdomain.StatusCompleted, Priority: taskdomain.PriorityUrgent, DueDate: &due, UserID: f.userID, AgencyID: f.agencyID},
	}
	require.NoError(t, f.db.Create(&tasks).Error)

	comms := []communicationdomain.Communication{
		{ID: f.node.Generate(), Type: communicationdomain.TypeEmail, Subject: "Offre reçue", Status: communicationdomain.StatusSent, SentAt: now.Add(-30 * time.Minute), UserID: f.userID, AgencyID: f.agencyID},
		{ID: f.node.Generate(), Type: communicationdomain.TypeEmail, Subject: "Compromis signé", Status: communicationdomain.StatusRead, SentAt: now.Add(-5 * time.Hour), UserID: f.userID, AgencyID: f.agencyID},
		{ID: f.node.Generate(), Type: communicationdomain.TypeSMS, Subject: "Rappel", Status: communicationdomain.StatusSent, SentAt: now.Add(-time.Hour), UserID: f.userID, AgencyID: f.agencyID},
	}
	require.NoError(t, f.db.Create(&comms).Error)

	dashboard, err := f.svc.OperationalDashboard(context.Background(), f.identity)
	require.NoError(t, err)

	// Open HIGH/URGENT tasks only; the completed one does not count.
	assert.Equal(t, int64(2), dashboard.CallsToMake)
	// Email with SENT status only; the read one and the SMS do not count.
	assert.Equal(t, int64(1), dashboard.UnreadEmails)

	require.Len(t, dashboard.Tasks, 3)
	assert.Equal(t, "Appeler M. Dupont", dashboard.Tasks[0].Title)
	assert.Equal(t, domain.TaskCategoryCall, dashboard.Tasks[0].Category)
	assert.Equal(t, domain.PriorityBucketHigh, dashboard.Tasks[0].Priority)
	assert.Equal(t, domain.TaskCategoryVisit, dashboard.Tasks[1].Category)
	assert.Equal(t, domain.TaskCategoryAdmin, dashboard.Tasks[2].Category)

	require.Len(t, dashboard.RecentEmails, 2)
	assert.Equal(t, "30 min", dashboard.RecentEmails[0].Age)
	assert.True(t, dashboard.RecentEmails[0].Unread)
	assert.False(t, dashboard.RecentEmails[1].Unread)

	require.Len(t, dashboard.WeekRevenue, 7)
}

func TestDashboardScopedByAgency(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	f.createContract(t, time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC), 5000, contractdomain.TypeSale)

	other := tenant.Identity{UserID: f.node.Generate(), Role: userdomain.RoleAgent, AgencyID: f.node.Generate()}
	dashboard, err := f.svc.Dashboard(context.Background(), other, domain.DashboardRequest{})
	require.NoError(t, err)
	assert.Zero(t, dashboard.KPIs.MonthlyRevenue)
	assert.Empty(t, dashboard.RecentDeals)
}
