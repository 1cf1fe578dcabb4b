package client

import (
	"github.com/maisonlabs/courtier/internal/client/repository"
	"github.com/maisonlabs/courtier/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
