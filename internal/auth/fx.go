package auth

import (
	"github.com/maisonlabs/courtier/internal/auth/repository"
	"github.com/maisonlabs/courtier/internal/auth/service"
	"github.com/maisonlabs/courtier/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(token.NewSigner),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
