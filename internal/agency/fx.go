package agency

import (
	"github.com/maisonlabs/courtier/internal/agency/repository"
	"github.com/maisonlabs/courtier/internal/agency/service"
	"go.uber.org/fx"
)

var Module = fx.Module("agency.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
