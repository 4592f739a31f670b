// Package pins is the pin persistence module: saved place markers with
// categories, reviews and favorites.
package pins

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"localist_backend/internal/events"
	apphttp "localist_backend/internal/http"
	"localist_backend/internal/pins/handler"
	"localist_backend/internal/pins/repository"
	"localist_backend/internal/pins/service"
	"localist_backend/platform/logger"
	"localist_backend/platform/validator"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

func (m *Module) Name() string {
	return "pins"
}

// Repository exposes the pin store to other modules (map core mirror,
// reverse-geocode worker).
func (m *Module) Repository() repository.Repository {
	return m.repo
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/pins")
	m.handler.RegisterRoutes(group)
}

var _ apphttp.Module = (*Module)(nil)
