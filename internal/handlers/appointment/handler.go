package appointment

import (
	"net/http"

	"clinicore/infras/otel"
	"clinicore/internal/domains/appointment/model"
	"clinicore/internal/domains/appointment/model/dto"
	"clinicore/internal/domains/appointment/service"
	"clinicore/shared/constant"
	gDto "clinicore/shared/dto"
	"clinicore/shared/validator"
	"clinicore/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Appointment
	otel    otel.Otel
}

func New(service service.Appointment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/appointments", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateAppointment)
		routerGroup.Get("/", handler.GetAppointments)
		routerGroup.Get("/{id}", handler.GetAppointmentByID)
		routerGroup.Post("/{id}/transition", handler.TransitionAppointment)
	})
}

// CreateAppointment books an appointment atomically.
// @Summary Book an appointment
// @Description Book a persisted slot or an ad hoc start time; conflicts return alternatives.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param payload body dto.CreateAppointmentRequest true "Booking payload"
// @Success 201 {object} response.Data[dto.AppointmentResponse] "Appointment booked"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments [post]
// @Security ApiKeyAuth
func (handler *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateAppointment")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)

	var req dto.CreateAppointmentRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	appointment, err := handler.service.Create(ctx, tenantID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create appointment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Appointment created successfully")

	response.WithJSON(w, http.StatusCreated, appointment)
}

// GetAppointments retrieves all appointments based on query parameters.
// @Summary Get all appointments
// @Description Retrieve appointments with optional filtering and pagination.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param contact_id query string false "Filter by contact"
// @Param slot_id query string false "Filter by slot"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Data[dto.GetAppointmentsResponse] "List of appointments"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments [get]
// @Security ApiKeyAuth
func (handler *Handler) GetAppointments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAppointments")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	contactID := r.URL.Query().Get(model.FieldContactID)
	slotID := r.URL.Query().Get(model.FieldSlotID)
	status := r.URL.Query().Get(model.FieldStatus)

	appointments, err := handler.service.GetAll(ctx, tenantID, queryParams, contactID, slotID, status)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get appointments")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Appointments retrieved successfully")

	response.WithJSON(w, http.StatusOK, appointments)
}

// GetAppointmentByID retrieves an appointment by its ID.
// @Summary Get an appointment by ID
// @Description Retrieve an appointment with its reservations and preferences.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Data[dto.AppointmentResponse] "Appointment details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments/{id} [get]
// @Security ApiKeyAuth
func (handler *Handler) GetAppointmentByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAppointmentByID")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	appointment, err := handler.service.Get(ctx, tenantID, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get appointment by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Appointment retrieved successfully")

	response.WithJSON(w, http.StatusOK, appointment)
}

// TransitionAppointment moves an appointment through its lifecycle.
// @Summary Transition an appointment
// @Description Advance, cancel or no-show an appointment; holds are released accordingly.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body dto.TransitionRequest true "Target status"
// @Success 200 {object} response.Data[dto.AppointmentResponse] "Updated appointment"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments/{id}/transition [post]
// @Security ApiKeyAuth
func (handler *Handler) TransitionAppointment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".TransitionAppointment")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	var req dto.TransitionRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	appointment, err := handler.service.Transition(ctx, tenantID, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to transition appointment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Appointment transitioned successfully")

	response.WithJSON(w, http.StatusOK, appointment)
}
