package sequence

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openCounterDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Counter{}))
	return db
}

func TestNextFormat(t *testing.T) {
	db := openCounterDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	agencyID := node.Generate()

	number, err := Next(context.Background(), db, PrefixContract, agencyID)
	require.NoError(t, err)
	assert.Equal(t, "CTR-000001", number)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z]+-\d{6}$`), number)
}

func TestNextIncrements(t *testing.T) {
	db := openCounterDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	agencyID := node.Generate()

	for i := 1; i <= 5; i++ {
		number, err := Next(context.Background(), db, PrefixMandate, agencyID)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("MAND-%06d", i), number)
	}
}

func TestNextScopesPerAgencyAndPrefix(t *testing.T) {
	db := openCounterDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	agencyA := node.Generate()
	agencyB := node.Generate()

	numberA, err := Next(context.Background(), db, PrefixOffer, agencyA)
	require.NoError(t, err)
	numberA2, err := Next(context.Background(), db, PrefixOffer, agencyA)
	require.NoError(t, err)
	numberB, err := Next(context.Background(), db, PrefixOffer, agencyB)
	require.NoError(t, err)
	numberPay, err := Next(context.Background(), db, PrefixPayment, agencyA)
	require.NoError(t, err)

	assert.Equal(t, "OFF-000001", numberA)
	assert.Equal(t, "OFF-000002", numberA2)
	assert.Equal(t, "OFF-000001", numberB)
	assert.Equal(t, "PAY-000001", numberPay)
}

func TestNextRollsBackWithTransaction(t *testing.T) {
	db := openCounterDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	agencyID := node.Generate()

	_, err = Next(context.Background(), db, PrefixContract, agencyID)
	require.NoError(t, err)

	rollback := fmt.Errorf("boom")
	err = db.Transaction(func(tx *gorm.DB) error {
		number, err := Next(context.Background(), tx, PrefixContract, agencyID)
		require.NoError(t, err)
		assert.Equal(t, "CTR-000002", number)
		return rollback
	})
	require.ErrorIs(t, err, rollback)

	// The aborted increment is not consumed.
	number, err := Next(context.Background(), db, PrefixContract, agencyID)
	require.NoError(t, err)
	assert.Equal(t, "CTR-000002", number)
}

func TestNextRejectsInvalidScope(t *testing.T) {
	db := openCounterDB(t)

	_, err := Next(context.Background(), db, "", 1)
	assert.ErrorIs(t, err, ErrInvalidScope)

	_, err = Next(context.Background(), db, PrefixContract, 0)
	assert.ErrorIs(t, err, ErrInvalidScope)
}
