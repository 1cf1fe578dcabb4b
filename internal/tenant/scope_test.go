package tenant

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type scopedRow struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	AgencyID snowflake.ID `gorm:"index"`
}

func openScopeDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&scopedRow{}))
	return db
}

func TestScope(t *testing.T) {
	db := openScopeDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	agencyA := node.Generate()
	agencyB := node.Generate()
	rows := []scopedRow{
		{ID: node.Generate(), AgencyID: agencyA},
		{ID: node.Generate(), AgencyID: agencyA},
		{ID: node.Generate(), AgencyID: agencyB},
	}
	require.NoError(t, db.Create(&rows).Error)

	count := func(id Identity) int64 {
		var total int64
		require.NoError(t, db.Model(&scopedRow{}).Scopes(Scope(id)).Count(&total).Error)
		return total
	}

	t.Run("agency user sees only its own rows", func(t *testing.T) {
		assert.Equal(t, int64(2), count(Identity{UserID: node.Generate(), AgencyID: agencyA}))
		assert.Equal(t, int64(1), count(Identity{UserID: node.Generate(), AgencyID: agencyB}))
	})

	t.Run("super admin sees everything", func(t *testing.T) {
		assert.Equal(t, int64(3), count(Identity{UserID: node.Generate(), SuperAdmin: true}))
	})

	t.Run("no agency and no super admin matches nothing", func(t *testing.T) {
		assert.Equal(t, int64(0), count(Identity{UserID: node.Generate()}))
	})
}

func TestCanAccess(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	agencyA := node.Generate()
	agencyB := node.Generate()

	assert.True(t, CanAccess(Identity{UserID: 1, AgencyID: agencyA}, agencyA))
	assert.False(t, CanAccess(Identity{UserID: 1, AgencyID: agencyA}, agencyB))
	assert.True(t, CanAccess(Identity{UserID: 1, SuperAdmin: true}, agencyB))
	assert.False(t, CanAccess(Identity{UserID: 1}, agencyA))
}

func TestIdentityContext(t *testing.T) {
	id := Identity{UserID: 42, AgencyID: 7, Role: "AGENT"}
	ctx := WithIdentity(context.Background(), id)

	got, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = IdentityFromContext(context.Background())
	assert.False(t, ok)
}
