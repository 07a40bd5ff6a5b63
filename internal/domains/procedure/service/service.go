package service

import (
	"context"
	"fmt"

	"clinicore/config"
	"clinicore/infras/otel"
	"clinicore/internal/domains/procedure/model"
	"clinicore/internal/domains/procedure/model/dto"
	"clinicore/internal/domains/procedure/repository"
	"clinicore/shared"
	"clinicore/shared/cache"
	"clinicore/shared/constant"
	gDto "clinicore/shared/dto"
	"clinicore/shared/failure"
	"clinicore/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetProcedure    = "procedure:get"
	cacheGetAllProcedure = "procedure:gets"
	cacheCountProcedure  = "procedure:count"
)

type Procedure interface {
	Create(ctx context.Context, tenantID string, req dto.CreateProcedureRequest) (dto.ProcedureResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetProceduresResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, tenantID, id string) (dto.ProcedureResponse, error)
	Update(ctx context.Context, tenantID, id string, req dto.UpdateProcedureRequest) error
	Deactivate(ctx context.Context, tenantID, id string) error

	SetComposition(ctx context.Context, tenantID, procedureID string, req dto.SetCompositionRequest) error
	AddRequirement(ctx context.Context, tenantID, procedureID string, req dto.AddRequirementRequest) (dto.RequirementResponse, error)
	RemoveRequirement(ctx context.Context, tenantID, procedureID, requirementID string) error

	TotalDuration(ctx context.Context, tenantID, id string) (int, error)
	Requirements(ctx context.Context, tenantID, procedureID string) ([]model.ProcedureRequirement, error)
	GetModel(ctx context.Context, tenantID, id string) (model.Procedure, error)
}

type serviceImpl struct {
	repo  repository.Procedure
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Procedure, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Procedure {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, tenantID string, req dto.CreateProcedureRequest) (res dto.ProcedureResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".procedure.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if req.Kind == model.KindAtomic && req.DurationMinutes <= 0 {
		return res, failure.Validation("atomic procedures need a positive duration")
	}

	procedure := req.ToModel(tenantID, user)

	if err = s.repo.Insert(ctx, procedure); err != nil {
		return res, err
	}

	s.invalidateCatalog(ctx)

	res.FromModel(procedure)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetProceduresResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".procedure.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllProcedure, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for procedures")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count procedures")

		return res, fmt.Errorf("failed to count procedures: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get procedures")

		return res, fmt.Errorf("failed to get procedures: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save procedures to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".procedure.Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountProcedure, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for procedure count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count procedures")

		return res, fmt.Errorf("failed to count procedures: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save procedure count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, tenantID, id string) (res dto.ProcedureResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".procedure.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetProcedure, tenantID, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for procedure")

		return res, nil
	}

	procedure, err := s.GetModel(ctx, tenantID, id)
	if err != nil {
		return res, err
	}

	compositions, err := s.repo.GetCompositions(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get procedure compositions")

		return res, err
	}

	requirements, err := s.repo.GetRequirements(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get procedure requirements")

		return res, err
	}

	res.FromModel(procedure)
	res.AttachDetails(compositions, requirements)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save procedure to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, tenantID, id string, req dto.UpdateProcedureRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".procedure.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	current, err := s.GetModel(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if !current.Active {
		return failure.Validation("procedure is inactive")
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), shared.FilterByTenantAndID(tenantID, id, model.FieldID, model.TableName)); err != nil {
		return err
	}

	s.invalidateCatalog(ctx)

	return nil
}

func (s *serviceImpl) Deactivate(ctx context.Context, tenantID, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".procedure.Deactivate")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if _, err = s.GetModel(ctx, tenantID, id); err != nil {
		return err
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

// SetComposition replaces the ordered child list of a composite procedure.
// Children must exist in the same tenant, and the link may not close a cycle
// through the composition graph.
func (s *serviceImpl) SetComposition(ctx context.Context, tenantID, procedureID string, req dto.SetCompositionRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".procedure.SetComposition")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	parent, err := s.GetModel(ctx, tenantID, procedureID)
	if err != nil {
		return err
	}

	if parent.Kind != model.KindComposite {
		return failure.Validation("only composite procedures have children")
	}

	for _, child := range req.Children {
		if child.ChildProcedureID == procedureID {
			return failure.Validation("procedure cannot contain itself")
		}

		if _, err = s.GetModel(ctx, tenantID, child.ChildProcedureID); err != nil {
			return err
		}

		if err = s.checkCycle(ctx, procedureID, child.ChildProcedureID, map[string]bool{}); err != nil {
			return err
		}
	}

	if err = s.repo.ReplaceCompositions(ctx, procedureID, req.ToModels(procedureID, user)); err != nil {
		return err
	}

	s.invalidateCatalog(ctx)

	return nil
}

func (s *serviceImpl) AddRequirement(ctx context.Context, tenantID, procedureID string, req dto.AddRequirementRequest) (res dto.RequirementResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".procedure.AddRequirement")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if _, err = s.GetModel(ctx, tenantID, procedureID); err != nil {
		return res, err
	}

	requirement := req.ToModel(procedureID, user)

	if err = requirement.Validate(); err != nil {
		return res, err
	}

	if err = s.repo.InsertRequirement(ctx, requirement); err != nil {
		return res, err
	}

	s.invalidateCatalog(ctx)

	res.FromModel(requirement)

	return res, nil
}

func (s *serviceImpl) RemoveRequirement(ctx context.Context, tenantID, procedureID, requirementID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".procedure.RemoveRequirement")
	defer scope.End()
	defer scope.TraceIfError(err)

	if _, err = s.GetModel(ctx, tenantID, procedureID); err != nil {
		return err
	}

	if err = s.repo.DeleteRequirement(ctx, procedureID, requirementID); err != nil {
		return err
	}

	s.invalidateCatalog(ctx)

	return nil
}

// TotalDuration resolves the end-to-end minutes a procedure occupies: its own
// buffers plus, for composites, every child's total and the gaps between them.
func (s *serviceImpl) TotalDuration(ctx context.Context, tenantID, id string) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".procedure.TotalDuration")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.totalDuration(ctx, tenantID, id, map[string]bool{})
}

// totalDuration recurses over the composition tree. path holds only the
// ancestors of the current node: a child sequenced at two positions, or
// shared by two branches, is not a cycle and contributes each time.
func (s *serviceImpl) totalDuration(ctx context.Context, tenantID, id string, path map[string]bool) (int, error) {
	if path[id] {
		return 0, failure.Validation("procedure composition contains a cycle")
	}

	path[id] = true
	defer delete(path, id)

	procedure, err := s.GetModel(ctx, tenantID, id)
	if err != nil {
		return 0, err
	}

	if procedure.Kind == model.KindAtomic {
		return procedure.BufferBefore + procedure.DurationMinutes + procedure.BufferAfter, nil
	}

	compositions, err := s.repo.GetCompositions(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get procedure compositions")

		return 0, err
	}

	total := procedure.BufferBefore + procedure.BufferAfter
	for _, child := range compositions {
		childTotal, err := s.totalDuration(ctx, tenantID, child.ChildProcedureID, path)
		if err != nil {
			return 0, err
		}

		total += childTotal + child.GapAfterMinutes
	}

	return total, nil
}

func (s *serviceImpl) Requirements(ctx context.Context, tenantID, procedureID string) (res []model.ProcedureRequirement, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".procedure.Requirements")
	defer scope.End()
	defer scope.TraceIfError(err)

	if _, err = s.GetModel(ctx, tenantID, procedureID); err != nil {
		return nil, err
	}

	return s.repo.GetRequirements(ctx, procedureID)
}

func (s *serviceImpl) GetModel(ctx context.Context, tenantID, id string) (model.Procedure, error) {
	procedure, err := s.repo.Get(ctx, shared.FilterByTenantAndID(tenantID, id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get procedure")

		return procedure, fmt.Errorf("failed to get procedure: %w", err)
	}

	if procedure.ID == constant.Empty {
		return procedure, failure.NotFound("procedure not found") //nolint:wrapcheck
	}

	return procedure, nil
}

// checkCycle walks the composition graph below childID looking for parentID.
func (s *serviceImpl) checkCycle(ctx context.Context, parentID, childID string, visited map[string]bool) error {
	if visited[childID] {
		return nil
	}
	visited[childID] = true

	compositions, err := s.repo.GetCompositions(ctx, childID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get procedure compositions")

		return err
	}

	for _, comp := range compositions {
		if comp.ChildProcedureID == parentID {
			return failure.Validation("procedure composition contains a cycle")
		}

		if err = s.checkCycle(ctx, parentID, comp.ChildProcedureID, visited); err != nil {
			return err
		}
	}

	return nil
}

func (s *serviceImpl) invalidateCatalog(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetProcedure)
		shared.InvalidateCaches(c, s.cache, cacheGetAllProcedure)
		shared.InvalidateCaches(c, s.cache, cacheCountProcedure)
	}()
}
