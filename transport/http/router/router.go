package router

import (
	"clinicore/config"
	"clinicore/internal/handlers/appointment"
	"clinicore/internal/handlers/availability"
	"clinicore/internal/handlers/procedure"
	"clinicore/internal/handlers/resource"
	"clinicore/internal/handlers/slot"
	"clinicore/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type DomainHandlers struct {
	Resource     resource.Handler
	Procedure    procedure.Handler
	Availability availability.Handler
	Slot         slot.Handler
	Appointment  appointment.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	AppMiddleware  middleware.AppMiddleware
	Auth           middleware.Auth
	Config         *config.Config
}

func (r *Router) SetupRoutes(router chi.Router) {
	if r.Config.App.CORS.Enable {
		router.Use(cors.Handler(cors.Options{
			AllowCredentials: r.Config.App.CORS.AllowCredentials,
			AllowedHeaders:   r.Config.App.CORS.AllowedHeaders,
			AllowedMethods:   r.Config.App.CORS.AllowedMethods,
			AllowedOrigins:   r.Config.App.CORS.AllowedOrigins,
			MaxAge:           r.Config.App.CORS.MaxAgeSeconds,
		}))
	}

	router.Use(r.AppMiddleware.Tracing)

	if r.Config.App.RateLimiter.Enable {
		router.Use(r.AppMiddleware.RateLimit())
	}

	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(r.Auth.APIKey)
		routerGroup.Use(r.Auth.Tenant)

		r.DomainHandlers.Resource.Router(routerGroup)
		r.DomainHandlers.Procedure.Router(routerGroup)
		r.DomainHandlers.Availability.Router(routerGroup)
		r.DomainHandlers.Slot.Router(routerGroup)
		r.DomainHandlers.Appointment.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, appMiddleware middleware.AppMiddleware, auth middleware.Auth, cfg *config.Config) Router {
	return Router{
		DomainHandlers: domainHandlers,
		AppMiddleware:  appMiddleware,
		Auth:           auth,
		Config:         cfg,
	}
}
