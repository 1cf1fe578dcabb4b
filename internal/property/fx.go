package property

import (
	"github.com/maisonlabs/courtier/internal/property/repository"
	"github.com/maisonlabs/courtier/internal/property/service"
	"go.uber.org/fx"
)

var Module = fx.Module("property.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
