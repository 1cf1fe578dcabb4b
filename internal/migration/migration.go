package migration

import (
	"context"

	agencydomain "github.com/maisonlabs/courtier/internal/agency/domain"
	appointmentdomain "github.com/maisonlabs/courtier/internal/appointment/domain"
	clientdomain "github.com/maisonlabs/courtier/internal/client/domain"
	cmsdomain "github.com/maisonlabs/courtier/internal/cms/domain"
	communicationdomain "github.com/maisonlabs/courtier/internal/communication/domain"
	contractdomain "github.com/maisonlabs/courtier/internal/contract/domain"
	documentdomain "github.com/maisonlabs/courtier/internal/document/domain"
	mandatedomain "github.com/maisonlabs/courtier/internal/mandate/domain"
	offerdomain "github.com/maisonlabs/courtier/internal/offer/domain"
	paymentdomain "github.com/maisonlabs/courtier/internal/payment/domain"
	propertydomain "github.com/maisonlabs/courtier/internal/property/domain"
	savedsearchdomain "github.com/maisonlabs/courtier/internal/savedsearch/domain"
	"github.com/maisonlabs/courtier/internal/sequence"
	taskdomain "github.com/maisonlabs/courtier/internal/task/domain"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(Run),
)

// Models is the full schema in dependency order.
func Models() []any {
	return []any{
		&agencydomain.Agency{},
		&userdomain.User{},
		&clientdomain.Client{},
		&propertydomain.Property{},
		&propertydomain.PropertyPhoto{},
		&mandatedomain.Mandate{},
		&contractdomain.Contract{},
		&offerdomain.Offer{},
		&paymentdomain.Payment{},
		&taskdomain.Task{},
		&appointmentdomain.Appointment{},
		&communicationdomain.Communication{},
		&documentdomain.Document{},
		&savedsearchdomain.SavedSearch{},
		&cmsdomain.Page{},
		&cmsdomain.Post{},
		&sequence.Counter{},
	}
}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	DB        *gorm.DB
	Log       *zap.Logger
}

func Run(p Params) {
	log := p.Log.Named("migration")
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("running schema migration")
			return p.DB.WithContext(ctx).AutoMigrate(Models()...)
		},
	})
}
