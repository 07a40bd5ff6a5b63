package resource

import (
	"net/http"

	"clinicore/infras/otel"
	"clinicore/internal/domains/resource/model"
	"clinicore/internal/domains/resource/model/dto"
	"clinicore/internal/domains/resource/service"
	"clinicore/shared"
	"clinicore/shared/constant"
	gDto "clinicore/shared/dto"
	"clinicore/shared/validator"
	"clinicore/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Resource
	otel    otel.Otel
}

func New(service service.Resource, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/resources", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateResource)
		routerGroup.Get("/", handler.GetResources)
		routerGroup.Get("/low-stock", handler.GetLowStock)
		routerGroup.Get("/{id}", handler.GetResourceByID)
		routerGroup.Patch("/{id}", handler.UpdateResource)
		routerGroup.Delete("/{id}", handler.DeactivateResource)
		routerGroup.Post("/{id}/inventory", handler.AdjustInventory)
		routerGroup.Post("/{id}/roles", handler.AssignRole)
		routerGroup.Delete("/{id}/roles/{roleID}", handler.UnassignRole)
	})

	router.Route("/roles", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRole)
		routerGroup.Get("/{roleID}/resources", handler.GetResourcesByRole)
	})
}

// CreateResource registers a new schedulable resource.
// @Summary Create a new resource
// @Description Create a resource under a subtype with its reservation policy.
// @Tags Resource
// @Accept json
// @Produce json
// @Param payload body dto.CreateResourceRequest true "Resource payload"
// @Success 201 {object} response.Data[dto.ResourceResponse] "Resource created"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/resources [post]
// @Security ApiKeyAuth
func (handler *Handler) CreateResource(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateResource")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)

	var req dto.CreateResourceRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	resource, err := handler.service.Create(ctx, tenantID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create resource")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Resource created successfully")

	response.WithJSON(writer, http.StatusCreated, resource)
}

// GetResources retrieves all resources based on query parameters.
// @Summary Get all resources
// @Description Retrieve all resources with optional filtering and pagination.
// @Tags Resource
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param subtype_id query string false "Filter by subtype"
// @Param active query boolean false "Filter by active status"
// @Success 200 {object} response.Data[dto.GetResourcesResponse] "List of resources"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/resources [get]
// @Security ApiKeyAuth
func (handler *Handler) GetResources(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetResources")
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

	if subtypeID := r.URL.Query().Get(model.FieldSubtypeID); subtypeID != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldSubtypeID,
			Operator: gDto.FilterOperatorEq,
			Value:    subtypeID,
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

	resources, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get resources")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Resources retrieved successfully")

	response.WithJSON(w, http.StatusOK, resources)
}

// GetResourceByID retrieves a resource by its ID.
// @Summary Get a resource by ID
// @Description Retrieve a resource by its unique identifier.
// @Tags Resource
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Data[dto.ResourceResponse] "Resource details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/resources/{id} [get]
// @Security ApiKeyAuth
func (handler *Handler) GetResourceByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetResourceByID")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	resource, err := handler.service.Get(ctx, tenantID, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get resource by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Resource retrieved successfully")

	response.WithJSON(w, http.StatusOK, resource)
}

// UpdateResource updates an existing resource by its ID.
// @Summary Update a resource by ID
// @Description Update the details of an existing resource.
// @Tags Resource
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body dto.UpdateResourceRequest true "Fields to update"
// @Success 200 {object} response.Message "Resource updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/resources/{id} [patch]
// @Security ApiKeyAuth
func (handler *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateResource")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	var req dto.UpdateResourceRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, tenantID, id, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update resource")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Resource updated successfully")

	response.WithMessage(w, http.StatusOK, "Resource updated successfully")
}

// DeactivateResource retires a resource from scheduling.
// @Summary Deactivate a resource by ID
// @Description Mark a resource inactive; history is kept and future bookings stop.
// @Tags Resource
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Message "Resource deactivated successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/resources/{id} [delete]
// @Security ApiKeyAuth
func (handler *Handler) DeactivateResource(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeactivateResource")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Deactivate(ctx, tenantID, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to deactivate resource")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Resource deactivated successfully")

	response.WithMessage(w, http.StatusOK, "Resource deactivated successfully")
}

// AdjustInventory applies a signed delta to a consumable's stock.
// @Summary Adjust consumable inventory
// @Description Apply a positive or negative delta to quantity on hand.
// @Tags Resource
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body dto.AdjustInventoryRequest true "Adjustment payload"
// @Success 200 {object} response.Data[dto.ResourceResponse] "Updated resource"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/resources/{id}/inventory [post]
// @Security ApiKeyAuth
func (handler *Handler) AdjustInventory(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".AdjustInventory")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	var req dto.AdjustInventoryRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	resource, err := handler.service.AdjustInventory(ctx, tenantID, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to adjust inventory")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Inventory adjusted successfully")

	response.WithJSON(w, http.StatusOK, resource)
}

// GetLowStock lists consumables at or below their threshold.
// @Summary List low stock consumables
// @Description Retrieve active consumables whose quantity on hand reached the threshold.
// @Tags Resource
// @Accept json
// @Produce json
// @Success 200 {object} response.Data[[]dto.ResourceResponse] "Low stock resources"
// @Failure 500 {object} response.Error
// @Router /v1/resources/low-stock [get]
// @Security ApiKeyAuth
func (handler *Handler) GetLowStock(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetLowStock")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)

	resources, err := handler.service.ListLowStock(ctx, tenantID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list low stock resources")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Low stock resources retrieved successfully")

	response.WithJSON(w, http.StatusOK, resources)
}

// CreateRole registers a new resource role.
// @Summary Create a resource role
// @Description Create a role that procedures can require resources by.
// @Tags Resource
// @Accept json
// @Produce json
// @Param payload body dto.CreateRoleRequest true "Role payload"
// @Success 201 {object} response.Data[dto.RoleResponse] "Role created"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/roles [post]
// @Security ApiKeyAuth
func (handler *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRole")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)

	var req dto.CreateRoleRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	role, err := handler.service.CreateRole(ctx, tenantID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create role")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Role created successfully")

	response.WithJSON(w, http.StatusCreated, role)
}

// AssignRole attaches a resource to a role with a priority.
// @Summary Assign a role to a resource
// @Description Attach the resource to a role; priority orders generator picks.
// @Tags Resource
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body dto.AssignRoleRequest true "Assignment payload"
// @Success 200 {object} response.Message "Role assigned successfully"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/resources/{id}/roles [post]
// @Security ApiKeyAuth
func (handler *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".AssignRole")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)

	var req dto.AssignRoleRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.AssignRole(ctx, tenantID, id, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to assign role")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Role assigned successfully")

	response.WithMessage(w, http.StatusOK, "Role assigned successfully")
}

// UnassignRole detaches a resource from a role.
// @Summary Unassign a role from a resource
// @Description Remove the role assignment from the resource.
// @Tags Resource
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param roleID path string true "Role ID"
// @Success 200 {object} response.Message "Role unassigned successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/resources/{id}/roles/{roleID} [delete]
// @Security ApiKeyAuth
func (handler *Handler) UnassignRole(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UnassignRole")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	id := chi.URLParam(r, constant.RequestParamID)
	roleID := chi.URLParam(r, "roleID")

	if err := handler.service.UnassignRole(ctx, tenantID, id, roleID); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to unassign role")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Role unassigned successfully")

	response.WithMessage(w, http.StatusOK, "Role unassigned successfully")
}

// GetResourcesByRole lists the resources attached to a role.
// @Summary Get resources by role
// @Description Retrieve the resources assigned to the role in priority order.
// @Tags Resource
// @Accept json
// @Produce json
// @Param roleID path string true "Role ID"
// @Param active_only query boolean false "Only active resources"
// @Success 200 {object} response.Data[[]dto.ResourceResponse] "Resources for the role"
// @Failure 500 {object} response.Error
// @Router /v1/roles/{roleID}/resources [get]
// @Security ApiKeyAuth
func (handler *Handler) GetResourcesByRole(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetResourcesByRole")
	defer scope.End()

	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)
	roleID := chi.URLParam(r, "roleID")

	activeOnly := false
	if active := shared.ConvertStringToBool(r.URL.Query().Get("active_only")); active != nil {
		activeOnly = *active
	}

	resources, err := handler.service.ListByRole(ctx, tenantID, roleID, activeOnly)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list resources by role")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Resources by role retrieved successfully")

	response.WithJSON(w, http.StatusOK, resources)
}
