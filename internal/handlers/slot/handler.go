package slot

import (
	"net/http"

	"clinicore/infras/otel"
	"clinicore/internal/domains/slot/model"
	"clinicore/internal/domains/slot/model/dto"
	"clinicore/internal/domains/slot/service"
	"clinicore/shared/constant"
	gDto "clinicore/shared/dto"
	"clinicore/shared/validator"
	"clinicore/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Slot
	otel    otel.Otel
}

func New(service service.Slot, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/slots", func(routerGroup chi.Router) {
		routerGroup.Post("/generate", handler.GenerateSlots)
		routerGroup.Get("/", handler.GetSlots)
		routerGroup.Get("/{id}", handler.GetSlotByID)
	})
}

// GenerateSlots searches bookable candidates for a procedure.
// @Summary Generate bookable slots
// @Description Search candidate start times with full resource assignments over a window.
// @Tags Slot
// @Accept json
// @Produce json
// @Param payload body dto.GenerateSlotsRequest true "Generation request"
// @Success 200 {object} response.Data[dto.GenerateSlotsResponse] "Candidate slots"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/slots/generate [post]
// @Security ApiKeyAuth
func (handler *Handler) GenerateSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GenerateSlots")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)

	var req dto.GenerateSlotsRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	candidates, err := handler.service.Generate(ctx, tenantID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to generate slots")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Slots generated successfully")

	response.WithJSON(w, http.StatusOK, candidates)
}

// GetSlots retrieves persisted slots based on query parameters.
// @Summary Get all slots
// @Description Retrieve persisted slots with optional procedure filtering and pagination.
// @Tags Slot
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param procedure_id query string false "Filter by procedure"
// @Success 200 {object} response.Data[dto.GetSlotsResponse] "List of slots"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/slots [get]
// @Security ApiKeyAuth
func (handler *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSlots")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	procedureID := r.URL.Query().Get(model.FieldProcedureID)

	slots, err := handler.service.GetAll(ctx, tenantID, queryParams, procedureID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get slots")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Slots retrieved successfully")

	response.WithJSON(w, http.StatusOK, slots)
}

// GetSlotByID retrieves a persisted slot by its ID.
// @Summary Get a slot by ID
// @Description Retrieve a persisted slot by its unique identifier.
// @Tags Slot
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Data[dto.SlotResponse] "Slot details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/slots/{id} [get]
// @Security ApiKeyAuth
func (handler *Handler) GetSlotByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSlotByID")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	slot, err := handler.service.Get(ctx, tenantID, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get slot by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Slot retrieved successfully")

	response.WithJSON(w, http.StatusOK, slot)
}
