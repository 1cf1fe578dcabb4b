package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/maisonlabs/courtier/internal/clock"
	mandatedomain "github.com/maisonlabs/courtier/internal/mandate/domain"
	paymentdomain "github.com/maisonlabs/courtier/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newSchedulerFixture(t *testing.T, now time.Time) (*Scheduler, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&mandatedomain.Mandate{}, &paymentdomain.Payment{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(now)
	sched, err := New(Params{DB: db, Log: zap.NewNop(), Clock: fake})
	require.NoError(t, err)
	return sched, db, node, fake
}

func TestExpireMandatesJob(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	sched, db, node, _ := newSchedulerFixture(t, now)

	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)
	agencyID := node.Generate()

	mandates := []mandatedomain.Mandate{
		{ID: node.Generate(), MandateNumber: "MAND-000001", Type: mandatedomain.TypeExclusive, Status: mandatedomain.StatusActive, StartDate: past.AddDate(-1, 0, 0), EndDate: &past, Price: 100000, UserID: node.Generate(), PropertyID: node.Generate(), ClientID: node.Generate(), AgencyID: agencyID},
		{ID: node.Generate(), MandateNumber: "MAND-000002", Type: mandatedomain.TypeSimple, Status: mandatedomain.StatusActive, StartDate: past, EndDate: &future, Price: 100000, UserID: node.Generate(), PropertyID: node.Generate(), ClientID: node.Generate(), AgencyID: agencyID},
		{ID: node.Generate(), MandateNumber: "MAND-000003", Type: mandatedomain.TypeSimple, Status: mandatedomain.StatusActive, StartDate: past, Price: 100000, UserID: node.Generate(), PropertyID: node.Generate(), ClientID: node.Generate(), AgencyID: agencyID},
		{ID: node.Generate(), MandateNumber: "MAND-000004", Type: mandatedomain.TypeSimple, Status: mandatedomain.StatusCancelled, StartDate: past, EndDate: &past, Price: 100000, UserID: node.Generate(), PropertyID: node.Generate(), ClientID: node.Generate(), AgencyID: agencyID},
	}
	require.NoError(t, db.Create(&mandates).Error)

	require.NoError(t, sched.ExpireMandatesJob(context.Background()))

	status := func(id snowflake.ID) string {
		var mandate mandatedomain.Mandate
		require.NoError(t, db.First(&mandate, "id = ?", id).Error)
		return mandate.Status
	}
	assert.Equal(t, mandatedomain.StatusExpired, status(mandates[0].ID))
	assert.Equal(t, mandatedomain.StatusActive, status(mandates[1].ID))
	// No end date means no expiry.
	assert.Equal(t, mandatedomain.StatusActive, status(mandates[2].ID))
	assert.Equal(t, mandatedomain.StatusCancelled, status(mandates[3].ID))
}

func TestOverduePaymentsJob(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	sched, db, node, fake := newSchedulerFixture(t, now)

	past := now.AddDate(0, 0, -10)
	future := now.AddDate(0, 0, 10)
	agencyID := node.Generate()

	payments := []paymentdomain.Payment{
		{ID: node.Generate(), PaymentNumber: "PAY-000001", Amount: 1200, Status: paymentdomain.StatusPending, DueDate: &past, UserID: node.Generate(), AgencyID: agencyID},
		{ID: node.Generate(), PaymentNumber: "PAY-000002", Amount: 900, Status: paymentdomain.StatusPending, DueDate: &future, UserID: node.Generate(), AgencyID: agencyID},
		{ID: node.Generate(), PaymentNumber: "PAY-000003", Amount: 500, Status: paymentdomain.StatusPaid, DueDate: &past, UserID: node.Generate(), AgencyID: agencyID},
	}
	require.NoError(t, db.Create(&payments).Error)

	require.NoError(t, sched.OverduePaymentsJob(context.Background()))

	status := func(id snowflake.ID) string {
		var payment paymentdomain.Payment
		require.NoError(t, db.First(&payment, "id = ?", id).Error)
		return payment.Status
	}
	assert.Equal(t, paymentdomain.StatusOverdue, status(payments[0].ID))
	assert.Equal(t, paymentdomain.StatusPending, status(payments[1].ID))
	assert.Equal(t, paymentdomain.StatusPaid, status(payments[2].ID))

	// The not-yet-due payment flips once the clock passes its due date.
	fake.Advance(11 * 24 * time.Hour)
	require.NoError(t, sched.OverduePaymentsJob(context.Background()))
	assert.Equal(t, paymentdomain.StatusOverdue, status(payments[1].ID))
}

func TestRunOnceAggregatesJobs(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	sched, db, node, _ := newSchedulerFixture(t, now)

	past := now.AddDate(0, 0, -1)
	mandate := mandatedomain.Mandate{ID: node.Generate(), MandateNumber: "MAND-000001", Type: mandatedomain.TypeSimple, Status: mandatedomain.StatusActive, StartDate: past.AddDate(0, -6, 0), EndDate: &past, Price: 100000, UserID: node.Generate(), PropertyID: node.Generate(), ClientID: node.Generate(), AgencyID: node.Generate()}
	payment := paymentdomain.Payment{ID: node.Generate(), PaymentNumber: "PAY-000001", Amount: 1200, Status: paymentdomain.StatusPending, DueDate: &past, UserID: node.Generate(), AgencyID: node.Generate()}
	require.NoError(t, db.Create(&mandate).Error)
	require.NoError(t, db.Create(&payment).Error)

	require.NoError(t, sched.RunOnce(context.Background()))

	var got mandatedomain.Mandate
	require.NoError(t, db.First(&got, "id = ?", mandate.ID).Error)
	assert.Equal(t, mandatedomain.StatusExpired, got.Status)

	var gotPayment paymentdomain.Payment
	require.NoError(t, db.First(&gotPayment, "id = ?", payment.ID).Error)
	assert.Equal(t, paymentdomain.StatusOverdue, gotPayment.Status)
}
