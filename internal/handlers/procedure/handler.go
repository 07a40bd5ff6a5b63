package procedure

import (
	"net/http"

	"clinicore/infras/otel"
	"clinicore/internal/domains/procedure/model"
	"clinicore/internal/domains/procedure/model/dto"
	"clinicore/internal/domains/procedure/service"
	"clinicore/shared"
	"clinicore/shared/constant"
	gDto "clinicore/shared/dto"
	"clinicore/shared/validator"
	"clinicore/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Procedure
	otel    otel.Otel
}

func New(service service.Procedure, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/procedures", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateProcedure)
		routerGroup.Get("/", handler.GetProcedures)
		routerGroup.Get("/{id}", handler.GetProcedureByID)
		routerGroup.Patch("/{id}", handler.UpdateProcedure)
		routerGroup.Delete("/{id}", handler.DeactivateProcedure)
		routerGroup.Get("/{id}/duration", handler.GetTotalDuration)
		routerGroup.Put("/{id}/composition", handler.SetComposition)
		routerGroup.Post("/{id}/requirements", handler.AddRequirement)
		routerGroup.Delete("/{id}/requirements/{requirementID}", handler.RemoveRequirement)
	})
}

// CreateProcedure registers a new bookable procedure.
// @Summary Create a new procedure
// @Description Create a single or composite procedure with duration and buffers.
// @Tags Procedure
// @Accept json
// @Produce json
// @Param payload body dto.CreateProcedureRequest true "Procedure payload"
// @Success 201 {object} response.Data[dto.ProcedureResponse] "Procedure created"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/procedures [post]
// @Security ApiKeyAuth
func (handler *Handler) CreateProcedure(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateProcedure")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)

	var req dto.CreateProcedureRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	procedure, err := handler.service.Create(ctx, tenantID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create procedure")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Procedure created successfully")

	response.WithJSON(w, http.StatusCreated, procedure)
}

// GetProcedures retrieves all procedures based on query parameters.
// @Summary Get all procedures
// @Description Retrieve all procedures with optional filtering and pagination.
// @Tags Procedure
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param kind query string false "Filter by kind"
// @Param active query boolean false "Filter by active status"
// @Success 200 {object} response.Data[dto.GetProceduresResponse] "List of procedures"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/procedures [get]
// @Security ApiKeyAuth
func (handler *Handler) GetProcedures(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetProcedures")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldTenantID,
				Operator: gDto.FilterOperatorEq,
				Value:    tenantID,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldName,
				Operator: gDto.FilterOperatorLike,
				Value:    r.URL.Query().Get(model.FieldName),
				Table:    model.TableName,
			},
		},
	}

	if kind := r.URL.Query().Get(model.FieldKind); kind != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldKind,
			Operator: gDto.FilterOperatorEq,
			Value:    kind,
			Table:    model.TableName,
		})
	}

	if active := shared.ConvertStringToBool(r.URL.Query().Get(model.FieldActive)); active != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldActive,
			Operator: gDto.FilterOperatorEq,
			Value:    *active,
			Table:    model.TableName,
		})
	}

	procedures, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get procedures")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Procedures retrieved successfully")

	response.WithJSON(w, http.StatusOK, procedures)
}

// GetProcedureByID retrieves a procedure by its ID.
// @Summary Get a procedure by ID
// @Description Retrieve a procedure with its composition and requirements.
// @Tags Procedure
// @Accept json
// @Produce json
// @Param id path string true "Procedure ID"
// @Success 200 {object} response.Data[dto.ProcedureResponse] "Procedure details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/procedures/{id} [get]
// @Security ApiKeyAuth
func (handler *Handler) GetProcedureByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetProcedureByID")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	procedure, err := handler.service.Get(ctx, tenantID, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get procedure by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Procedure retrieved successfully")

	response.WithJSON(w, http.StatusOK, procedure)
}

// UpdateProcedure updates an existing procedure by its ID.
// @Summary Update a procedure by ID
// @Description Update the details of an existing procedure.
// @Tags Procedure
// @Accept json
// @Produce json
// @Param id path string true "Procedure ID"
// @Param payload body dto.UpdateProcedureRequest true "Fields to update"
// @Success 200 {object} response.Message "Procedure updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/procedures/{id} [patch]
// @Security ApiKeyAuth
func (handler *Handler) UpdateProcedure(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateProcedure")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	var req dto.UpdateProcedureRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, tenantID, id, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update procedure")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Procedure updated successfully")

	response.WithMessage(w, http.StatusOK, "Procedure updated successfully")
}

// DeactivateProcedure retires a procedure from booking.
// @Summary Deactivate a procedure by ID
// @Description Mark a procedure inactive; existing appointments are kept.
// @Tags Procedure
// @Accept json
// @Produce json
// @Param id path string true "Procedure ID"
// @Success 200 {object} response.Message "Procedure deactivated successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/procedures/{id} [delete]
// @Security ApiKeyAuth
func (handler *Handler) DeactivateProcedure(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeactivateProcedure")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Deactivate(ctx, tenantID, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to deactivate procedure")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Procedure deactivated successfully")

	response.WithMessage(w, http.StatusOK, "Procedure deactivated successfully")
}

// GetTotalDuration computes the end-to-end duration of a procedure.
// @Summary Get total procedure duration
// @Description Compute duration including buffers, children and gaps.
// @Tags Procedure
// @Accept json
// @Produce json
// @Param id path string true "Procedure ID"
// @Success 200 {object} response.Data[dto.TotalDurationResponse] "Total duration in minutes"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/procedures/{id}/duration [get]
// @Security ApiKeyAuth
func (handler *Handler) GetTotalDuration(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTotalDuration")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	minutes, err := handler.service.TotalDuration(ctx, tenantID, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to compute total duration")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Total duration computed successfully")

	response.WithJSON(w, http.StatusOK, dto.TotalDurationResponse{ProcedureID: id, TotalDuration: minutes})
}

// SetComposition replaces the ordered child steps of a composite procedure.
// @Summary Set procedure composition
// @Description Replace the ordered list of child procedures and gaps.
// @Tags Procedure
// @Accept json
// @Produce json
// @Param id path string true "Procedure ID"
// @Param payload body dto.SetCompositionRequest true "Composition payload"
// @Success 200 {object} response.Message "Composition set successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/procedures/{id}/composition [put]
// @Security ApiKeyAuth
func (handler *Handler) SetComposition(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SetComposition")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	var req dto.SetCompositionRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.SetComposition(ctx, tenantID, id, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to set composition")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Composition set successfully")

	response.WithMessage(w, http.StatusOK, "Composition set successfully")
}

// AddRequirement attaches a resource requirement to a procedure.
// @Summary Add a procedure requirement
// @Description Attach a role requirement with quantity and policy to a procedure.
// @Tags Procedure
// @Accept json
// @Produce json
// @Param id path string true "Procedure ID"
// @Param payload body dto.AddRequirementRequest true "Requirement payload"
// @Success 201 {object} response.Data[dto.RequirementResponse] "Requirement added"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/procedures/{id}/requirements [post]
// @Security ApiKeyAuth
func (handler *Handler) AddRequirement(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".AddRequirement")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	var req dto.AddRequirementRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	requirement, err := handler.service.AddRequirement(ctx, tenantID, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to add requirement")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Requirement added successfully")

	response.WithJSON(w, http.StatusCreated, requirement)
}

// RemoveRequirement detaches a resource requirement from a procedure.
// @Summary Remove a procedure requirement
// @Description Remove the requirement from the procedure.
// @Tags Procedure
// @Accept json
// @Produce json
// @Param id path string true "Procedure ID"
// @Param requirementID path string true "Requirement ID"
// @Success 200 {object} response.Message "Requirement removed successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/procedures/{id}/requirements/{requirementID} [delete]
// @Security ApiKeyAuth
func (handler *Handler) RemoveRequirement(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RemoveRequirement")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)
	requirementID := chi.URLParam(r, "requirementID")

	if err := handler.service.RemoveRequirement(ctx, tenantID, id, requirementID); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to remove requirement")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Requirement removed successfully")

	response.WithMessage(w, http.StatusOK, "Requirement removed successfully")
}
