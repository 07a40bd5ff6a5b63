package service

import (
	"context"
	"fmt"
	"time"

	"clinicore/config"
	"clinicore/infras/otel"
	"clinicore/internal/domains/availability/model"
	"clinicore/internal/domains/availability/model/dto"
	"clinicore/internal/domains/availability/repository"
	resourceModel "clinicore/internal/domains/resource/model"
	resourceRepo "clinicore/internal/domains/resource/repository"
	"clinicore/shared"
	"clinicore/shared/constant"
	gDto "clinicore/shared/dto"
	"clinicore/shared/failure"

	"github.com/rs/zerolog/log"
)

type Availability interface {
	Create(ctx context.Context, tenantID string, req dto.CreateAvailabilityRequest) (dto.AvailabilityResponse, error)
	List(ctx context.Context, tenantID, resourceID string) (dto.GetAvailabilitiesResponse, error)
	Delete(ctx context.Context, tenantID, id string) error

	// EffectiveWindows expands every matching record over the query window
	// and returns the bookable stretches per resource with the reservation
	// policy in force. Results always come from the store, never a cache.
	EffectiveWindows(ctx context.Context, tenantID string, req dto.EffectiveWindowsRequest) ([]model.EffectiveWindow, error)
}

type serviceImpl struct {
	repo      repository.Availability
	resources resourceRepo.Resource
	cfg       *config.Config
	otel      otel.Otel
}

func New(repo repository.Availability, resources resourceRepo.Resource, cfg *config.Config, otel otel.Otel) Availability {
	return &serviceImpl{
		repo:      repo,
		resources: resources,
		cfg:       cfg,
		otel:      otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, tenantID string, req dto.CreateAvailabilityRequest) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	resource, err := s.resources.Get(ctx, shared.FilterByTenantAndID(tenantID, req.ResourceID, resourceModel.FieldID, resourceModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get resource")

		return res, fmt.Errorf("failed to get resource: %w", err)
	}

	if resource.ID == constant.Empty {
		return res, failure.NotFound("resource not found")
	}

	if !resource.Active {
		return res, failure.InactiveResource(fmt.Sprintf("resource %s is inactive", resource.Name))
	}

	availability := req.ToModel(tenantID, user)

	if err = availability.Validate(); err != nil {
		return res, err
	}

	if err = s.repo.Insert(ctx, availability); err != nil {
		return res, err
	}

	res.FromModel(availability)

	return res, nil
}

func (s *serviceImpl) List(ctx context.Context, tenantID, resourceID string) (res dto.GetAvailabilitiesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.List")
	defer scope.End()
	defer scope.TraceIfError(err)

	models, err := s.repo.GetAll(ctx,
		gDto.QueryParams{SortBy: model.FieldStartAt, SortDir: "ASC"},
		gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorAnd,
			Filters: []any{
				gDto.Filter{Field: constant.FieldTenantID, Value: tenantID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
				gDto.Filter{Field: model.FieldResourceID, Value: resourceID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			},
		})
	if err != nil {
		log.Error().Err(err).Msg("failed to list availabilities")

		return res, fmt.Errorf("failed to list availabilities: %w", err)
	}

	res.FromModels(models)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, tenantID, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	availability, err := s.repo.Get(ctx, shared.FilterByTenantAndID(tenantID, id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get availability")

		return fmt.Errorf("failed to get availability: %w", err)
	}

	if availability.ID == constant.Empty {
		return failure.NotFound("availability not found")
	}

	return s.repo.Delete(ctx, shared.FilterByTenantAndID(tenantID, id, model.FieldID, model.TableName))
}

func (s *serviceImpl) EffectiveWindows(ctx context.Context, tenantID string, req dto.EffectiveWindowsRequest) (res []model.EffectiveWindow, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.EffectiveWindows")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !req.From.Before(req.To) {
		return nil, failure.Validation("query window start must be before end")
	}

	resources, err := s.resources.GetAll(ctx, gDto.QueryParams{},
		gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorAnd,
			Filters: []any{
				gDto.Filter{Field: constant.FieldTenantID, Value: tenantID, Operator: gDto.FilterOperatorEq, Table: resourceModel.TableName},
				gDto.Filter{Field: resourceModel.FieldID, Value: req.ResourceIDs, Operator: gDto.FilterOperatorIn, Table: resourceModel.TableName},
			},
		})
	if err != nil {
		log.Error().Err(err).Msg("failed to get resources")

		return nil, fmt.Errorf("failed to get resources: %w", err)
	}

	records, err := s.repo.ListForResources(ctx, tenantID, req.ResourceIDs, req.To)
	if err != nil {
		log.Error().Err(err).Msg("failed to list availabilities")

		return nil, fmt.Errorf("failed to list availabilities: %w", err)
	}

	byResource := make(map[string][]model.ResourceAvailability)
	for _, record := range records {
		byResource[record.ResourceID] = append(byResource[record.ResourceID], record)
	}

	for _, resource := range resources {
		res = append(res, expandResource(resource, byResource[resource.ID], req.From, req.To)...)
	}

	return res, nil
}

// expandResource turns one resource's records into effective windows over
// [from, to). A resource with no available records is fully available at its
// defaults. Blocked occurrences subtract from every window they touch,
// including that default one.
func expandResource(resource resourceModel.Resource, records []model.ResourceAvailability, from, to time.Time) []model.EffectiveWindow {
	var blocked []model.Interval

	hasAvailable := false

	for _, record := range records {
		if record.Kind == model.KindBlocked {
			blocked = append(blocked, record.Occurrences(from, to)...)

			continue
		}

		hasAvailable = true
	}
	blocked = model.Merge(blocked)

	if !hasAvailable {
		var windows []model.EffectiveWindow

		for _, window := range model.Subtract([]model.Interval{{Start: from, End: to}}, blocked) {
			windows = append(windows, model.EffectiveWindow{
				ResourceID:      resource.ID,
				Start:           window.Start,
				End:             window.End,
				ReservationMode: resource.ReservationMode,
				MaxConcurrent:   resource.EffectiveCapacity(),
			})
		}

		return windows
	}

	var windows []model.EffectiveWindow

	for _, record := range records {
		if record.Kind != model.KindAvailable {
			continue
		}

		mode := resource.ReservationMode
		if record.OverrideMode != nil {
			mode = *record.OverrideMode
		}

		capacity := resource.EffectiveCapacity()
		if record.OverrideMax != nil {
			capacity = *record.OverrideMax
		}
		if mode == resourceModel.ReservationModeExclusive {
			capacity = 1
		}

		for _, window := range model.Subtract(record.Occurrences(from, to), blocked) {
			windows = append(windows, model.EffectiveWindow{
				ResourceID:      resource.ID,
				Start:           window.Start,
				End:             window.End,
				ReservationMode: mode,
				MaxConcurrent:   capacity,
			})
		}
	}

	return windows
}
