package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/maisonlabs/courtier/internal/clock"
	"github.com/maisonlabs/courtier/internal/config"
	"github.com/maisonlabs/courtier/internal/migration"
	"github.com/maisonlabs/courtier/internal/observability"
	"github.com/maisonlabs/courtier/internal/scheduler"
	"github.com/maisonlabs/courtier/internal/seed"
	"github.com/maisonlabs/courtier/internal/server"
	"github.com/maisonlabs/courtier/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
		fx.Invoke(seedSuperAdmin),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// seedSuperAdmin runs after the schema migration hook registered by
// migration.Module.
func seedSuperAdmin(lc fx.Lifecycle, gdb *gorm.DB, node *snowflake.Node) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return seed.EnsureSuperAdmin(gdb.WithContext(ctx), node)
		},
	})
}
