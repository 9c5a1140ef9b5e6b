package service

import (
	"log/slog"

	"github.com/mkadlec/theater-api/internal/notifier"
	postgres "github.com/mkadlec/theater-api/internal/repository/postgres"
	redis "github.com/mkadlec/theater-api/internal/repository/redis"
	"github.com/mkadlec/theater-api/internal/service/content"
	"github.com/mkadlec/theater-api/internal/service/identity"
	"github.com/mkadlec/theater-api/internal/service/inventory"
)

type Services struct {
	Inventory *inventory.Service
	Identity  *identity.Service
	Content   *content.Service
}

func NewServices(
	store *postgres.Store,
	tokens identity.TokenStore,
	limiter *redis.SlidingWindowLimiter,
	mailer notifier.Notifier,
	logger *slog.Logger,
) *Services {
	return &Services{
		Inventory: inventory.New(store, limiter, mailer, logger),
		Identity:  identity.New(store, tokens),
		Content:   content.New(store),
	}
}
