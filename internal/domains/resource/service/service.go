package service

import (
	"context"
	"fmt"

	"clinicore/config"
	"clinicore/infras/otel"
	"clinicore/internal/domains/resource/model"
	"clinicore/internal/domains/resource/model/dto"
	"clinicore/internal/domains/resource/repository"
	"clinicore/internal/events"
	"clinicore/shared"
	"clinicore/shared/cache"
	"clinicore/shared/constant"
	gDto "clinicore/shared/dto"
	"clinicore/shared/failure"
	gModel "clinicore/shared/model"
	"clinicore/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetResource    = "resource:get"
	cacheGetAllResource = "resource:gets"
	cacheCountResource  = "resource:count"

	// Walking the parent chain past this depth means the hierarchy is broken
	// even if no cycle was detected yet.
	maxHierarchyDepth = 32
)

type Resource interface {
	Create(ctx context.Context, tenantID string, req dto.CreateResourceRequest) (dto.ResourceResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetResourcesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, tenantID, id string) (dto.ResourceResponse, error)
	Update(ctx context.Context, tenantID, id string, req dto.UpdateResourceRequest) error
	Deactivate(ctx context.Context, tenantID, id string) error

	CreateRole(ctx context.Context, tenantID string, req dto.CreateRoleRequest) (dto.RoleResponse, error)
	AssignRole(ctx context.Context, tenantID, resourceID string, req dto.AssignRoleRequest) error
	UnassignRole(ctx context.Context, tenantID, resourceID, roleID string) error

	AdjustInventory(ctx context.Context, tenantID, id string, req dto.AdjustInventoryRequest) (dto.ResourceResponse, error)
	ListByRole(ctx context.Context, tenantID, roleID string, activeOnly bool) ([]dto.ResourceResponse, error)
	ListLowStock(ctx context.Context, tenantID string) ([]dto.ResourceResponse, error)
}

type serviceImpl struct {
	repo   repository.Resource
	cfg    *config.Config
	cache  cache.RedisCache
	otel   otel.Otel
	events events.Publisher
}

func New(repo repository.Resource, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, events events.Publisher) Resource {
	return &serviceImpl{
		repo:   repo,
		cfg:    cfg,
		cache:  cache,
		otel:   otel,
		events: events,
	}
}

func (s *serviceImpl) Create(ctx context.Context, tenantID string, req dto.CreateResourceRequest) (res dto.ResourceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	subtype, err := s.repo.GetSubtype(ctx, req.SubtypeID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get resource subtype")

		return res, err
	}

	if subtype.ID == constant.Empty {
		return res, failure.Validation("unknown resource subtype")
	}

	if err = subtype.ConfigSchema.ValidateConfig(req.Config); err != nil {
		return res, failure.BadRequest(err)
	}

	resource := req.ToModel(tenantID, user)

	if resource.ParentResourceID != nil {
		if err = s.checkHierarchy(ctx, tenantID, resource.ID, *resource.ParentResourceID); err != nil {
			return res, err
		}
	}

	if err = s.repo.Insert(ctx, resource); err != nil {
		return res, err
	}

	s.invalidateCatalog(ctx)

	res.FromModel(resource)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetResourcesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllResource, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for resources")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count resources")

		return res, fmt.Errorf("failed to count resources: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get resources")

		return res, fmt.Errorf("failed to get resources: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save resources to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountResource, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for resource count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count resources")

		return res, fmt.Errorf("failed to count resources: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save resource count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, tenantID, id string) (res dto.ResourceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetResource, tenantID, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for resource")

		return res, nil
	}

	resource, err := s.getResource(ctx, tenantID, id)
	if err != nil {
		return res, err
	}

	res.FromModel(resource)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save resource to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, tenantID, id string, req dto.UpdateResourceRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	current, err := s.getResource(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if !current.Active {
		return failure.InactiveResource(fmt.Sprintf("resource %s is inactive", current.Name))
	}

	if req.Config != nil {
		subtype, err := s.repo.GetSubtype(ctx, current.SubtypeID)
		if err != nil {
			log.Error().Err(err).Msg("failed to get resource subtype")

			return err
		}

		if err = subtype.ConfigSchema.ValidateConfig(req.Config); err != nil {
			return failure.BadRequest(err)
		}
	}

	if req.ParentResourceID != nil {
		if err = s.checkHierarchy(ctx, tenantID, id, *req.ParentResourceID); err != nil {
			return err
		}
	}

	fields := shared.TransformFields(req, user)
	if req.ReservationMode == model.ReservationModeExclusive {
		fields[model.FieldMaxConcurrent] = 1
	}

	if err = s.repo.Update(ctx, fields, shared.FilterByTenantAndID(tenantID, id, model.FieldID, model.TableName)); err != nil {
		return err
	}

	s.invalidateCatalog(ctx)

	return nil
}

func (s *serviceImpl) Deactivate(ctx context.Context, tenantID, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Deactivate")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	current, err := s.getResource(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if !current.Active {
		return nil
	}

	fields := map[string]any{
		model.FieldActive:        false,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}

	if err = s.repo.Update(ctx, fields, shared.FilterByTenantAndID(tenantID, id, model.FieldID, model.TableName)); err != nil {
		return err
	}

	s.invalidateCatalog(ctx)

	return nil
}

func (s *serviceImpl) CreateRole(ctx context.Context, tenantID string, req dto.CreateRoleRequest) (res dto.RoleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.CreateRole")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	role := req.ToModel(tenantID, user)

	if err = s.repo.InsertRole(ctx, role); err != nil {
		return res, err
	}

	res.FromModel(role)

	return res, nil
}

func (s *serviceImpl) AssignRole(ctx context.Context, tenantID, resourceID string, req dto.AssignRoleRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.AssignRole")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	resource, err := s.getResource(ctx, tenantID, resourceID)
	if err != nil {
		return err
	}

	if !resource.Active {
		return failure.InactiveResource(fmt.Sprintf("resource %s is inactive", resource.Name))
	}

	role, err := s.repo.GetRole(ctx, tenantID, req.RoleID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get resource role")

		return err
	}

	if role.ID == constant.Empty {
		return failure.NotFound("resource role not found")
	}

	exists, err := s.repo.AssignmentExists(ctx, resourceID, req.RoleID)
	if err != nil {
		log.Error().Err(err).Msg("failed to check role assignment")

		return err
	}

	if exists {
		return failure.Conflict("resource already fills this role")
	}

	now := timezone.Now()

	return s.repo.InsertAssignment(ctx, model.ResourceRoleAssignment{
		ID:         uuid.NewString(),
		ResourceID: resourceID,
		RoleID:     req.RoleID,
		Priority:   req.Priority,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	})
}

func (s *serviceImpl) UnassignRole(ctx context.Context, tenantID, resourceID, roleID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.UnassignRole")
	defer scope.End()
	defer scope.TraceIfError(err)

	if _, err = s.getResource(ctx, tenantID, resourceID); err != nil {
		return err
	}

	exists, err := s.repo.AssignmentExists(ctx, resourceID, roleID)
	if err != nil {
		log.Error().Err(err).Msg("failed to check role assignment")

		return err
	}

	if !exists {
		return failure.NotFound("role assignment not found")
	}

	return s.repo.DeleteAssignment(ctx, resourceID, roleID)
}

// AdjustInventory applies a signed stock delta to a consumable resource. The
// underlying update refuses to drive quantity below zero; a rejected delta
// surfaces as an insufficient inventory failure carrying the current count.
func (s *serviceImpl) AdjustInventory(ctx context.Context, tenantID, id string, req dto.AdjustInventoryRequest) (res dto.ResourceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.AdjustInventory")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	current, err := s.getResource(ctx, tenantID, id)
	if err != nil {
		return res, err
	}

	if !current.Consumable {
		return res, failure.Validation("resource is not a consumable")
	}

	if !current.Active {
		return res, failure.InactiveResource(fmt.Sprintf("resource %s is inactive", current.Name))
	}

	updated, err := s.repo.AdjustQuantity(ctx, tenantID, id, req.Delta, user)
	if repository.IsQuantityConstraint(err) {
		return res, failure.InsufficientInventory(fmt.Sprintf("insufficient stock for %s: %d on hand", current.Name, current.QuantityOnHand))
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to adjust resource inventory")

		return res, err
	}

	if current.QuantityOnHand > current.QuantityThreshold && updated.QuantityOnHand <= updated.QuantityThreshold {
		s.events.ResourceLowStock(ctx, events.LowStockEvent{
			TenantID:          tenantID,
			ResourceID:        updated.ID,
			ResourceName:      updated.Name,
			QuantityOnHand:    updated.QuantityOnHand,
			QuantityThreshold: updated.QuantityThreshold,
			OccurredAt:        timezone.Now(),
		})
	}

	s.invalidateCatalog(ctx)

	res.FromModel(updated)

	return res, nil
}

func (s *serviceImpl) ListByRole(ctx context.Context, tenantID, roleID string, activeOnly bool) (res []dto.ResourceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.ListByRole")
	defer scope.End()
	defer scope.TraceIfError(err)

	resources, err := s.repo.ListByRole(ctx, tenantID, roleID, activeOnly)
	if err != nil {
		log.Error().Err(err).Msg("failed to list resources by role")

		return nil, err
	}

	res = make([]dto.ResourceResponse, len(resources))
	for i, resource := range resources {
		res[i].FromModel(resource.Resource)
	}

	return res, nil
}

func (s *serviceImpl) ListLowStock(ctx context.Context, tenantID string) (res []dto.ResourceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.ListLowStock")
	defer scope.End()
	defer scope.TraceIfError(err)

	resources, err := s.repo.ListLowStock(ctx, tenantID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list low stock resources")

		return nil, err
	}

	res = make([]dto.ResourceResponse, len(resources))
	for i, resource := range resources {
		res[i].FromModel(resource)
	}

	return res, nil
}

func (s *serviceImpl) getResource(ctx context.Context, tenantID, id string) (model.Resource, error) {
	resource, err := s.repo.Get(ctx, shared.FilterByTenantAndID(tenantID, id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get resource")

		return resource, fmt.Errorf("failed to get resource: %w", err)
	}

	if resource.ID == constant.Empty {
		return resource, failure.NotFound("resource not found") //nolint:wrapcheck
	}

	return resource, nil
}

// checkHierarchy walks the parent chain from parentID and rejects a link that
// would make resourceID its own ancestor.
func (s *serviceImpl) checkHierarchy(ctx context.Context, tenantID, resourceID, parentID string) error {
	current := parentID

	for depth := 0; depth < maxHierarchyDepth; depth++ {
		if current == resourceID {
			return failure.Validation("resource hierarchy must not contain cycles")
		}

		parent, err := s.repo.Get(ctx, shared.FilterByTenantAndID(tenantID, current, model.FieldID, model.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to resolve parent resource")

			return fmt.Errorf("failed to resolve parent resource: %w", err)
		}

		if parent.ID == constant.Empty {
			return failure.Validation("parent resource not found")
		}

		if parent.ParentResourceID == nil {
			return nil
		}

		current = *parent.ParentResourceID
	}

	return failure.Validation("resource hierarchy is too deep")
}

func (s *serviceImpl) invalidateCatalog(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetResource)
		shared.InvalidateCaches(c, s.cache, cacheGetAllResource)
		shared.InvalidateCaches(c, s.cache, cacheCountResource)
	}()
}
