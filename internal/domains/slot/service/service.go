package service

import (
	"context"
	"sort"
	"time"

	"clinicore/config"
	"clinicore/infras/otel"
	availabilityModel "clinicore/internal/domains/availability/model"
	availabilityDto "clinicore/internal/domains/availability/model/dto"
	availabilityService "clinicore/internal/domains/availability/service"
	appointmentModel "clinicore/internal/domains/appointment/model"
	appointmentRepo "clinicore/internal/domains/appointment/repository"
	procedureModel "clinicore/internal/domains/procedure/model"
	procedureService "clinicore/internal/domains/procedure/service"
	resourceModel "clinicore/internal/domains/resource/model"
	resourceRepo "clinicore/internal/domains/resource/repository"
	"clinicore/internal/domains/slot/model"
	"clinicore/internal/domains/slot/model/dto"
	"clinicore/internal/domains/slot/repository"
	"clinicore/shared"
	"clinicore/shared/constant"
	gDto "clinicore/shared/dto"
	"clinicore/shared/failure"
	gModel "clinicore/shared/model"

	"github.com/google/uuid"
)

type Slot interface {
	Generate(ctx context.Context, tenantID string, req dto.GenerateSlotsRequest) (dto.GenerateSlotsResponse, error)
	GetAll(ctx context.Context, tenantID string, params gDto.QueryParams, procedureID string) (dto.GetSlotsResponse, error)
	Get(ctx context.Context, tenantID, id string) (dto.SlotResponse, error)

	// GetModel and BuildCandidate back the booking flow: a booking either
	// references a persisted slot or names a start time that has to be
	// re-validated against live availability.
	GetModel(ctx context.Context, tenantID, id string) (model.ProcedureSlot, error)
	BuildCandidate(ctx context.Context, tenantID, procedureID string, startAt time.Time, prefs []dto.SlotPreference) (model.Candidate, error)
	Alternatives(ctx context.Context, tenantID, procedureID string, around time.Time, limit int) ([]model.Candidate, error)
}

type serviceImpl struct {
	repo         repository.Slot
	procedures   procedureService.Procedure
	availability availabilityService.Availability
	resources    resourceRepo.Resource
	appointments appointmentRepo.Appointment
	cfg          *config.Config
	otel         otel.Otel
}

func New(
	repo repository.Slot,
	procedures procedureService.Procedure,
	availability availabilityService.Availability,
	resources resourceRepo.Resource,
	appointments appointmentRepo.Appointment,
	cfg *config.Config,
	otl otel.Otel,
) Slot {
	return &serviceImpl{
		repo:         repo,
		procedures:   procedures,
		availability: availability,
		resources:    resources,
		appointments: appointments,
		cfg:          cfg,
		otel:         otl,
	}
}

func (s *serviceImpl) Generate(ctx context.Context, tenantID string, req dto.GenerateSlotsRequest) (res dto.GenerateSlotsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.Generate")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !req.From.Before(req.To) {
		return res, failure.Validation("from must be before to")
	}

	granularity := req.GranularityMinutes
	if granularity <= 0 {
		granularity = s.cfg.Booking.SlotGranularityMinutes
	}

	candidates, err := s.search(ctx, tenantID, req.ProcedureID, req.From, req.To, granularity, req.Preferences, s.cfg.Booking.MaxCandidates)
	if err != nil {
		return res, err
	}

	res.ProcedureID = req.ProcedureID
	res.Candidates = make([]dto.CandidateResponse, 0, len(candidates))

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := time.Now()

	for _, candidate := range candidates {
		item := dto.CandidateResponse{
			StartAt:     candidate.StartAt,
			EndAt:       candidate.EndAt,
			Assignments: candidate.Assignments,
		}

		if req.Persist {
			slot := model.ProcedureSlot{
				ID:             uuid.NewString(),
				TenantID:       tenantID,
				ProcedureID:    req.ProcedureID,
				StartAt:        candidate.StartAt,
				EndAt:          candidate.EndAt,
				Status:         model.StatusAvailable,
				GenerationType: model.GenerationManual,
				Metadata: gModel.Metadata{
					CreatedAt:  now,
					ModifiedAt: now,
					CreatedBy:  user,
					ModifiedBy: user,
				},
			}

			if err = s.repo.Insert(ctx, slot); err != nil {
				return res, err
			}

			item.SlotID = &slot.ID
		}

		res.Candidates = append(res.Candidates, item)
	}

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, tenantID string, params gDto.QueryParams, procedureID string) (res dto.GetSlotsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldTenantID, Operator: gDto.FilterOperatorEq, Value: tenantID, Table: model.TableName},
		},
	}

	if procedureID != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field: model.FieldProcedureID, Operator: gDto.FilterOperatorEq, Value: procedureID, Table: model.TableName,
		})
	}

	slots, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		return res, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return res, err
	}

	res.FromModels(slots, total)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, tenantID, id string) (res dto.SlotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	slot, err := s.GetModel(ctx, tenantID, id)
	if err != nil {
		return res, err
	}

	res.FromModel(slot)

	return res, nil
}

func (s *serviceImpl) GetModel(ctx context.Context, tenantID, id string) (slot model.ProcedureSlot, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.GetModel")
	defer scope.End()
	defer scope.TraceIfError(err)

	slot, err = s.repo.Get(ctx, shared.FilterByTenantAndID(tenantID, id, model.FieldID, model.TableName))
	if err != nil {
		return slot, err
	}

	if slot.ID == constant.Empty {
		return slot, failure.NotFound(model.EntityName)
	}

	return slot, nil
}

func (s *serviceImpl) BuildCandidate(ctx context.Context, tenantID, procedureID string, startAt time.Time, prefs []dto.SlotPreference) (candidate model.Candidate, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.BuildCandidate")
	defer scope.End()
	defer scope.TraceIfError(err)

	candidates, err := s.search(ctx, tenantID, procedureID, startAt, startAt.Add(time.Minute), 1, prefs, 1)
	if err != nil {
		return candidate, err
	}

	if len(candidates) == 0 {
		return candidate, failure.Conflict("requested time cannot satisfy the procedure's resource requirements")
	}

	return candidates[0], nil
}

func (s *serviceImpl) Alternatives(ctx context.Context, tenantID, procedureID string, around time.Time, limit int) (candidates []model.Candidate, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.Alternatives")
	defer scope.End()
	defer scope.TraceIfError(err)

	if limit <= 0 {
		limit = s.cfg.Booking.MaxCandidates
	}

	return s.search(ctx, tenantID, procedureID, around, around.Add(24*time.Hour), s.cfg.Booking.SlotGranularityMinutes, nil, limit)
}

// rolePool carries everything the assembler needs for one requirement: the
// candidate resources in priority order plus their live windows and existing
// reservations over the search horizon.
type rolePool struct {
	requirement procedureModel.ProcedureRequirement
	resources   []resourceRepo.RoleResource
}

func (s *serviceImpl) search(
	ctx context.Context,
	tenantID, procedureID string,
	from, to time.Time,
	granularityMinutes int,
	prefs []dto.SlotPreference,
	limit int,
) ([]model.Candidate, error) {
	totalMinutes, err := s.procedures.TotalDuration(ctx, tenantID, procedureID)
	if err != nil {
		return nil, err
	}

	requirements, err := s.procedures.Requirements(ctx, tenantID, procedureID)
	if err != nil {
		return nil, err
	}

	if len(requirements) == 0 {
		return nil, failure.Validation("procedure has no resource requirements")
	}

	pools := make([]rolePool, 0, len(requirements))
	resourceIDs := make([]string, 0)

	for _, requirement := range requirements {
		members, err := s.resources.ListByRole(ctx, tenantID, requirement.RoleID, true)
		if err != nil {
			return nil, err
		}

		pools = append(pools, rolePool{requirement: requirement, resources: members})

		for _, member := range members {
			resourceIDs = append(resourceIDs, member.ID)
		}
	}

	if len(resourceIDs) == 0 {
		return nil, nil
	}

	duration := time.Duration(totalMinutes) * time.Minute
	horizon := to.Add(duration)

	windowsByResource, err := s.windowsByResource(ctx, tenantID, resourceIDs, from, horizon)
	if err != nil {
		return nil, err
	}

	busy, err := s.appointments.Overlapping(ctx, tenantID, resourceIDs, from, horizon)
	if err != nil {
		return nil, err
	}

	busyByResource := make(map[string][]appointmentModel.AppointmentResource)
	for _, reservation := range busy {
		busyByResource[reservation.ResourceID] = append(busyByResource[reservation.ResourceID], reservation)
	}

	candidates := make([]model.Candidate, 0)

	for start := from; start.Before(to); start = start.Add(time.Duration(granularityMinutes) * time.Minute) {
		assignments, ok := assemble(pools, windowsByResource, busyByResource, prefs, start, totalMinutes)
		if !ok {
			continue
		}

		candidates = append(candidates, model.Candidate{
			StartAt:     start,
			EndAt:       start.Add(duration),
			Assignments: assignments,
		})

		if len(candidates) >= limit {
			break
		}
	}

	return candidates, nil
}

func (s *serviceImpl) windowsByResource(ctx context.Context, tenantID string, resourceIDs []string, from, to time.Time) (map[string][]availabilityModel.EffectiveWindow, error) {
	windows, err := s.availability.EffectiveWindows(ctx, tenantID, availabilityDto.EffectiveWindowsRequest{
		ResourceIDs: resourceIDs,
		From:        from,
		To:          to,
	})
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]availabilityModel.EffectiveWindow)
	for _, window := range windows {
		grouped[window.ResourceID] = append(grouped[window.ResourceID], window)
	}

	return grouped, nil
}

// assemble tries to staff one candidate start. Roles are filled in input
// order; a resource serves at most one role per candidate. Required
// preferences that name a pooled resource must end up assigned, otherwise the
// start is rejected.
func assemble(
	pools []rolePool,
	windowsByResource map[string][]availabilityModel.EffectiveWindow,
	busyByResource map[string][]appointmentModel.AppointmentResource,
	prefs []dto.SlotPreference,
	start time.Time,
	totalMinutes int,
) ([]model.Assignment, bool) {
	preferred := make(map[string]bool)
	mandatory := make(map[string]bool)

	for _, pref := range prefs {
		switch pref.Kind {
		case appointmentModel.PreferenceRequired:
			mandatory[pref.ResourceID] = true
		case appointmentModel.PreferencePreferred:
			preferred[pref.ResourceID] = true
		}
	}

	assignments := make([]model.Assignment, 0)
	taken := make(map[string]bool)

	for _, pool := range pools {
		offsetStart, offsetEnd := pool.requirement.Window(totalMinutes)
		reservedStart := start.Add(time.Duration(offsetStart) * time.Minute)
		reservedEnd := start.Add(time.Duration(offsetEnd) * time.Minute)

		chosen := chooseForRole(pool, windowsByResource, busyByResource, preferred, mandatory, taken, reservedStart, reservedEnd)
		if chosen == nil {
			if pool.requirement.Required {
				return nil, false
			}

			continue
		}

		for _, pick := range chosen {
			taken[pick.resource.ID] = true

			assignments = append(assignments, model.Assignment{
				RoleID:        pool.requirement.RoleID,
				ResourceID:    pick.resource.ID,
				ReservedStart: reservedStart,
				ReservedEnd:   reservedEnd,
				Mode:          pick.mode,
				Capacity:      pick.capacity,
				Quantity:      pick.quantity,
				Consumable:    pick.resource.Consumable,
			})
		}
	}

	for _, assignment := range assignments {
		delete(mandatory, assignment.ResourceID)
	}

	if len(mandatory) > 0 {
		return nil, false
	}

	return assignments, true
}

type pick struct {
	resource  resourceModel.Resource
	mode      string
	capacity  int
	quantity  int
	conflicts int
	rank      int
}

// chooseForRole ranks every eligible pool member and keeps enough of them to
// cover quantity_min. A non-consumable member contributes one unit; a
// consumable one contributes up to its stock on hand. Required preferences
// come first, then preferred ones, then fewest existing reservations, then
// the role's configured priority order.
func chooseForRole(
	pool rolePool,
	windowsByResource map[string][]availabilityModel.EffectiveWindow,
	busyByResource map[string][]appointmentModel.AppointmentResource,
	preferred, mandatory, taken map[string]bool,
	reservedStart, reservedEnd time.Time,
) []pick {
	eligible := make([]pick, 0, len(pool.resources))

	for rank, member := range pool.resources {
		if taken[member.ID] {
			continue
		}

		mode, capacity, covered := coveringPolicy(windowsByResource[member.ID], reservedStart, reservedEnd)
		if !covered {
			continue
		}

		if member.Consumable && member.QuantityOnHand < 1 {
			continue
		}

		conflicts := overlapping(busyByResource[member.ID], reservedStart, reservedEnd)

		if mode == resourceModel.ReservationModeExclusive && len(conflicts) > 0 {
			continue
		}

		if mode == resourceModel.ReservationModeShared && peakConcurrency(conflicts, reservedStart, reservedEnd)+1 > capacity {
			continue
		}

		eligible = append(eligible, pick{
			resource:  member.Resource,
			mode:      mode,
			capacity:  capacity,
			conflicts: len(conflicts),
			rank:      rank,
		})
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		left, right := eligible[i], eligible[j]

		if mandatory[left.resource.ID] != mandatory[right.resource.ID] {
			return mandatory[left.resource.ID]
		}

		if preferred[left.resource.ID] != preferred[right.resource.ID] {
			return preferred[left.resource.ID]
		}

		if left.conflicts != right.conflicts {
			return left.conflicts < right.conflicts
		}

		return left.rank < right.rank
	})

	remaining := pool.requirement.QuantityMin
	chosen := make([]pick, 0, len(eligible))

	for _, candidate := range eligible {
		if remaining == 0 {
			break
		}

		candidate.quantity = 1
		if candidate.resource.Consumable {
			candidate.quantity = min(remaining, candidate.resource.QuantityOnHand)
		}

		chosen = append(chosen, candidate)
		remaining -= candidate.quantity
	}

	if remaining > 0 {
		return nil
	}

	return chosen
}

// coveringPolicy reports whether a single effective window spans the whole
// reservation and, if so, the reservation mode and capacity in force there.
func coveringPolicy(windows []availabilityModel.EffectiveWindow, start, end time.Time) (string, int, bool) {
	for _, window := range windows {
		if !window.Start.After(start) && !window.End.Before(end) {
			return window.ReservationMode, window.MaxConcurrent, true
		}
	}

	return constant.Empty, 0, false
}

func overlapping(reservations []appointmentModel.AppointmentResource, start, end time.Time) []appointmentModel.AppointmentResource {
	overlaps := make([]appointmentModel.AppointmentResource, 0)

	for _, reservation := range reservations {
		if reservation.ReservedStart.Before(end) && start.Before(reservation.ReservedEnd) {
			overlaps = append(overlaps, reservation)
		}
	}

	return overlaps
}

// peakConcurrency sweeps the reservation boundaries inside the window and
// returns the highest simultaneous count.
func peakConcurrency(reservations []appointmentModel.AppointmentResource, start, end time.Time) int {
	points := make([]time.Time, 0, len(reservations)*2+1)
	points = append(points, start)

	for _, reservation := range reservations {
		if reservation.ReservedStart.After(start) && reservation.ReservedStart.Before(end) {
			points = append(points, reservation.ReservedStart)
		}
	}

	peak := 0

	for _, point := range points {
		count := 0

		for _, reservation := range reservations {
			if !reservation.ReservedStart.After(point) && reservation.ReservedEnd.After(point) {
				count++
			}
		}

		if count > peak {
			peak = count
		}
	}

	return peak
}
