//go:build wireinject
// +build wireinject

package di

import (
	"clinicore/config"
	"clinicore/infras/kafka"
	"clinicore/infras/otel"
	"clinicore/infras/postgres"
	"clinicore/infras/redis"
	"clinicore/internal/events"
	"clinicore/shared/cache"
	"clinicore/transport/http"
	"clinicore/transport/http/middleware"
	"clinicore/transport/http/router"

	appointmentRepository "clinicore/internal/domains/appointment/repository"
	appointmentService "clinicore/internal/domains/appointment/service"
	availabilityRepository "clinicore/internal/domains/availability/repository"
	availabilityService "clinicore/internal/domains/availability/service"
	procedureRepository "clinicore/internal/domains/procedure/repository"
	procedureService "clinicore/internal/domains/procedure/service"
	resourceRepository "clinicore/internal/domains/resource/repository"
	resourceService "clinicore/internal/domains/resource/service"
	slotRepository "clinicore/internal/domains/slot/repository"
	slotService "clinicore/internal/domains/slot/service"

	appointmentHandler "clinicore/internal/handlers/appointment"
	availabilityHandler "clinicore/internal/handlers/availability"
	procedureHandler "clinicore/internal/handlers/procedure"
	resourceHandler "clinicore/internal/handlers/resource"
	slotHandler "clinicore/internal/handlers/slot"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	events.NewPublisher,
)

var resourceDomain = wire.NewSet(
	resourceRepository.New,
	resourceService.New,
)

var procedureDomain = wire.NewSet(
	procedureRepository.New,
	procedureService.New,
)

var availabilityDomain = wire.NewSet(
	availabilityRepository.New,
	availabilityService.New,
)

var slotDomain = wire.NewSet(
	slotRepository.New,
	slotService.New,
)

var appointmentDomain = wire.NewSet(
	appointmentRepository.New,
	appointmentService.New,
)

var domains = wire.NewSet(
	resourceDomain,
	procedureDomain,
	availabilityDomain,
	slotDomain,
	appointmentDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	resourceHandler.New,
	procedureHandler.New,
	availabilityHandler.New,
	slotHandler.New,
	appointmentHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
