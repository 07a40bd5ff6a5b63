package availability

import (
	"net/http"

	"clinicore/infras/otel"
	"clinicore/internal/domains/availability/model/dto"
	"clinicore/internal/domains/availability/service"
	"clinicore/shared/constant"
	"clinicore/shared/validator"
	"clinicore/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Availability
	otel    otel.Otel
}

func New(service service.Availability, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/availabilities", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateAvailability)
		routerGroup.Delete("/{id}", handler.DeleteAvailability)
		routerGroup.Post("/windows", handler.GetEffectiveWindows)
	})

	router.Get("/resources/{id}/availabilities", handler.GetAvailabilitiesByResource)
}

// CreateAvailability records an availability or blackout for a resource.
// @Summary Create an availability record
// @Description Record a one-off or recurring availability or blackout window.
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.CreateAvailabilityRequest true "Availability payload"
// @Success 201 {object} response.Data[dto.AvailabilityResponse] "Availability created"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/availabilities [post]
// @Security ApiKeyAuth
func (handler *Handler) CreateAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateAvailability")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)

	var req dto.CreateAvailabilityRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	availability, err := handler.service.Create(ctx, tenantID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create availability")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Availability created successfully")

	response.WithJSON(w, http.StatusCreated, availability)
}

// GetAvailabilitiesByResource lists the availability records of a resource.
// @Summary Get availabilities by resource
// @Description Retrieve every availability and blackout record for the resource.
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Data[dto.GetAvailabilitiesResponse] "List of availabilities"
// @Failure 500 {object} response.Error
// @Router /v1/resources/{id}/availabilities [get]
// @Security ApiKeyAuth
func (handler *Handler) GetAvailabilitiesByResource(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailabilitiesByResource")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	resourceID := chi.URLParam(r, constant.RequestParamID)

	availabilities, err := handler.service.List(ctx, tenantID, resourceID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list availabilities")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Availabilities retrieved successfully")

	response.WithJSON(w, http.StatusOK, availabilities)
}

// DeleteAvailability removes an availability record.
// @Summary Delete an availability record
// @Description Remove the availability or blackout record.
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Availability ID"
// @Success 200 {object} response.Message "Availability deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/availabilities/{id} [delete]
// @Security ApiKeyAuth
func (handler *Handler) DeleteAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteAvailability")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, tenantID, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete availability")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Availability deleted successfully")

	response.WithMessage(w, http.StatusOK, "Availability deleted successfully")
}

// GetEffectiveWindows resolves the bookable windows for a set of resources.
// @Summary Resolve effective windows
// @Description Expand recurrences and subtract blackouts over the query window.
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.EffectiveWindowsRequest true "Window query"
// @Success 200 {object} response.Data[dto.EffectiveWindowsResponse] "Effective windows"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/availabilities/windows [post]
// @Security ApiKeyAuth
func (handler *Handler) GetEffectiveWindows(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetEffectiveWindows")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)

	var req dto.EffectiveWindowsRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	windows, err := handler.service.EffectiveWindows(ctx, tenantID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to resolve effective windows")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Effective windows resolved successfully")

	response.WithJSON(w, http.StatusOK, dto.EffectiveWindowsResponse{Windows: windows})
}
