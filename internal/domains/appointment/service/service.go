package service

import (
	"context"
	"time"

	"clinicore/config"
	"clinicore/infras/otel"
	"clinicore/internal/domains/appointment/model"
	"clinicore/internal/domains/appointment/model/dto"
	"clinicore/internal/domains/appointment/repository"
	resourceModel "clinicore/internal/domains/resource/model"
	slotModel "clinicore/internal/domains/slot/model"
	slotDto "clinicore/internal/domains/slot/model/dto"
	slotRepo "clinicore/internal/domains/slot/repository"
	slotService "clinicore/internal/domains/slot/service"
	"clinicore/internal/events"
	"clinicore/shared"
	"clinicore/shared/constant"
	gDto "clinicore/shared/dto"
	"clinicore/shared/failure"
	gModel "clinicore/shared/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Appointment interface {
	Create(ctx context.Context, tenantID string, req dto.CreateAppointmentRequest) (dto.AppointmentResponse, error)
	Get(ctx context.Context, tenantID, id string) (dto.AppointmentResponse, error)
	GetAll(ctx context.Context, tenantID string, params gDto.QueryParams, contactID, slotID, status string) (dto.GetAppointmentsResponse, error)
	Transition(ctx context.Context, tenantID, id string, req dto.TransitionRequest) (dto.AppointmentResponse, error)
}

type serviceImpl struct {
	repo   repository.Appointment
	slots  slotRepo.Slot
	finder slotService.Slot
	events events.Publisher
	cfg    *config.Config
	otel   otel.Otel
}

func New(
	repo repository.Appointment,
	slots slotRepo.Slot,
	finder slotService.Slot,
	publisher events.Publisher,
	cfg *config.Config,
	otl otel.Otel,
) Appointment {
	return &serviceImpl{
		repo:   repo,
		slots:  slots,
		finder: finder,
		events: publisher,
		cfg:    cfg,
		otel:   otl,
	}
}

func (s *serviceImpl) Create(ctx context.Context, tenantID string, req dto.CreateAppointmentRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = req.Validate(); err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var (
		slot      slotModel.ProcedureSlot
		persisted bool
	)

	if req.SlotID != nil {
		slot, err = s.finder.GetModel(ctx, tenantID, *req.SlotID)
		if err != nil {
			return res, err
		}

		if slot.Status != slotModel.StatusAvailable {
			return res, failure.Conflict("slot is no longer available")
		}

		persisted = true
	} else {
		slot = slotModel.ProcedureSlot{
			ID:             uuid.NewString(),
			TenantID:       tenantID,
			ProcedureID:    *req.ProcedureID,
			StartAt:        *req.StartAt,
			Status:         slotModel.StatusAvailable,
			GenerationType: slotModel.GenerationAuto,
		}
	}

	candidate, err := s.finder.BuildCandidate(ctx, tenantID, slot.ProcedureID, slot.StartAt, slotPreferences(req.Preferences))
	if err != nil {
		if failure.IsConflict(err) {
			return res, s.rejectWithAlternatives(ctx, tenantID, slot.ProcedureID, slot.StartAt, slot.EndAt, err)
		}

		return res, err
	}

	slot.EndAt = candidate.EndAt

	appointment, reservations, preferences := buildBooking(tenantID, slot.ID, candidate, req, user)

	if err = s.book(ctx, tenantID, slot, candidate, appointment, reservations, preferences, persisted, user); err != nil {
		if failure.IsConflict(err) {
			return res, s.rejectWithAlternatives(ctx, tenantID, slot.ProcedureID, slot.StartAt, slot.EndAt, err)
		}

		return res, err
	}

	s.events.AppointmentCreated(ctx, events.AppointmentEvent{
		TenantID:      tenantID,
		AppointmentID: appointment.ID,
		SlotID:        slot.ID,
		ProcedureID:   slot.ProcedureID,
		ContactID:     stringValue(req.ContactID),
		Status:        appointment.Status,
	})

	res.FromModel(appointment)
	res.AttachDetails(reservations, preferences)

	return res, nil
}

// book runs the whole reservation inside one transaction: lock the resources
// in a stable order, re-verify conflicts and capacity under lock, decrement
// consumable stock, then write the appointment with its reservation rows and
// the slot state.
func (s *serviceImpl) book(
	ctx context.Context,
	tenantID string,
	slot slotModel.ProcedureSlot,
	candidate slotModel.Candidate,
	appointment model.Appointment,
	reservations []model.AppointmentResource,
	preferences []model.AppointmentPreference,
	persisted bool,
	user string,
) (err error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Error().Err(rollbackErr).Msg("failed to rollback booking transaction")
			}
		}
	}()

	resourceIDs := make([]string, 0, len(candidate.Assignments))
	for _, assignment := range candidate.Assignments {
		resourceIDs = append(resourceIDs, assignment.ResourceID)
	}

	if err = s.repo.LockResourcesTx(ctx, tx, resourceIDs); err != nil {
		return err
	}

	held, err := s.repo.OverlappingTx(ctx, tx, tenantID, resourceIDs, candidate.StartAt, candidate.EndAt)
	if err != nil {
		return err
	}

	if err = verifyUnderLock(candidate.Assignments, held); err != nil {
		return err
	}

	for _, assignment := range candidate.Assignments {
		if !assignment.Consumable {
			continue
		}

		if err = s.repo.DecrementStockTx(ctx, tx, tenantID, assignment.ResourceID, assignment.Quantity, user); err != nil {
			if repository.IsStockConstraint(err) {
				return failure.InsufficientInventory("consumable stock ran out before the booking completed")
			}

			return err
		}
	}

	if persisted {
		// The pre-transaction status read raced every other Create; only a
		// conditional flip inside the transaction settles who got the slot.
		if err = s.slots.ClaimTx(ctx, tx, tenantID, slot.ID, user); err != nil {
			if slotRepo.IsSlotTaken(err) {
				return failure.Conflict("slot is no longer available")
			}

			return err
		}
	} else {
		slot.Status = slotModel.StatusBooked
		slot.Metadata = gModel.Metadata{
			CreatedAt:  time.Now(),
			ModifiedAt: time.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		}

		err = s.slots.InsertTx(ctx, tx, slot)
	}

	if err != nil {
		return err
	}

	if err = s.repo.InsertTx(ctx, tx, appointment); err != nil {
		return err
	}

	if err = s.repo.InsertResourcesTx(ctx, tx, reservations); err != nil {
		return err
	}

	if len(preferences) > 0 {
		if err = s.repo.InsertPreferencesTx(ctx, tx, preferences); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// verifyUnderLock replays the generator's conflict checks against the rows
// visible inside the transaction. The generator worked on a snapshot; a
// competing booking may have landed since.
func verifyUnderLock(assignments []slotModel.Assignment, held []model.AppointmentResource) error {
	byResource := make(map[string][]model.AppointmentResource)
	for _, row := range held {
		byResource[row.ResourceID] = append(byResource[row.ResourceID], row)
	}

	for _, assignment := range assignments {
		var overlapping []model.AppointmentResource

		for _, row := range byResource[assignment.ResourceID] {
			if row.ReservedStart.Before(assignment.ReservedEnd) && assignment.ReservedStart.Before(row.ReservedEnd) {
				overlapping = append(overlapping, row)
			}
		}

		if len(overlapping) == 0 {
			continue
		}

		if assignment.Mode == resourceModel.ReservationModeExclusive {
			return failure.Conflict("resource was booked by a concurrent request")
		}

		// Shared capacity bounds instantaneous concurrency, not the number
		// of overlapping rows: two disjoint holds inside the window only
		// ever occupy one seat at a time.
		peak := peakHeld(overlapping, assignment.ReservedStart, assignment.ReservedEnd)
		if peak+1 > assignment.Capacity {
			return failure.Conflict("resource was booked by a concurrent request")
		}
	}

	return nil
}

// peakHeld is the highest number of reservations simultaneously held at any
// instant of [start, end). Concurrency only steps up at a reservation start,
// so sampling those boundaries finds the peak.
func peakHeld(reservations []model.AppointmentResource, start, end time.Time) int {
	points := make([]time.Time, 0, len(reservations)+1)
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

func (s *serviceImpl) rejectWithAlternatives(ctx context.Context, tenantID, procedureID string, startAt, endAt time.Time, cause error) error {
	// endAt is zero when no candidate could be assembled for the start.
	if endAt.IsZero() {
		endAt = startAt
	}

	s.events.BookingConflict(ctx, events.ConflictEvent{
		TenantID:    tenantID,
		ProcedureID: procedureID,
		WindowStart: startAt,
		WindowEnd:   endAt,
		Reason:      cause.Error(),
	})

	alternatives, err := s.finder.Alternatives(ctx, tenantID, procedureID, startAt, s.cfg.Booking.ConflictAlternatives)
	if err != nil {
		log.Error().Err(err).Msg("failed to compute alternative slots")

		return cause //nolint:wrapcheck
	}

	return failure.ConflictWithDetails(cause.Error(), alternatives)
}

func (s *serviceImpl) Get(ctx context.Context, tenantID, id string) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	appointment, err := s.getModel(ctx, tenantID, id)
	if err != nil {
		return res, err
	}

	reservations, err := s.repo.GetResources(ctx, id)
	if err != nil {
		return res, err
	}

	preferences, err := s.repo.GetPreferences(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(appointment)
	res.AttachDetails(reservations, preferences)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, tenantID string, params gDto.QueryParams, contactID, slotID, status string) (res dto.GetAppointmentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldTenantID, Operator: gDto.FilterOperatorEq, Value: tenantID, Table: model.TableName},
		},
	}

	if contactID != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field: model.FieldContactID, Operator: gDto.FilterOperatorEq, Value: contactID, Table: model.TableName,
		})
	}

	if slotID != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field: model.FieldSlotID, Operator: gDto.FilterOperatorEq, Value: slotID, Table: model.TableName,
		})
	}

	if status != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: status, Table: model.TableName,
		})
	}

	appointments, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		return res, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return res, err
	}

	res.FromModels(appointments, total)

	return res, nil
}

func (s *serviceImpl) Transition(ctx context.Context, tenantID, id string, req dto.TransitionRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.Transition")
	defer scope.End()
	defer scope.TraceIfError(err)

	appointment, err := s.getModel(ctx, tenantID, id)
	if err != nil {
		return res, err
	}

	if err = model.ValidateTransition(appointment.Status, req.Status); err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := time.Now()

	updates := map[string]any{
		model.FieldStatus:        req.Status,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: user,
	}

	switch req.Status {
	case model.StatusCancelled:
		updates[model.FieldCancelledAt] = now
	case model.StatusCompleted:
		updates[model.FieldCompletedAt] = now
	}

	if err = s.applyTransition(ctx, tenantID, appointment, req.Status, updates, now, user); err != nil {
		return res, err
	}

	appointment.Status = req.Status

	switch req.Status {
	case model.StatusCancelled:
		appointment.CancelledAt = &now

		s.events.AppointmentCancelled(ctx, events.AppointmentEvent{
			TenantID:      tenantID,
			AppointmentID: appointment.ID,
			SlotID:        appointment.SlotID,
			ContactID:     stringValue(appointment.ContactID),
			Status:        appointment.Status,
		})
	case model.StatusCompleted:
		appointment.CompletedAt = &now

		s.events.AppointmentCompleted(ctx, events.AppointmentEvent{
			TenantID:      tenantID,
			AppointmentID: appointment.ID,
			SlotID:        appointment.SlotID,
			ContactID:     stringValue(appointment.ContactID),
			Status:        appointment.Status,
		})
	}

	res.FromModel(appointment)

	return res, nil
}

// applyTransition writes the appointment, its reservation rows, and the slot
// in one transaction. Reservation rows mirror the appointment status so the
// overlap query can exclude released holds. Cancelling frees the slot for
// rebooking; consumed stock is not returned.
func (s *serviceImpl) applyTransition(
	ctx context.Context,
	tenantID string,
	appointment model.Appointment,
	target string,
	updates map[string]any,
	now time.Time,
	user string,
) (err error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Error().Err(rollbackErr).Msg("failed to rollback transition transaction")
			}
		}
	}()

	if err = s.repo.UpdateTx(ctx, tx, updates, shared.FilterByTenantAndID(tenantID, appointment.ID, model.FieldID, model.TableName)); err != nil {
		return err
	}

	reservationFilter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldAppointmentID, Operator: gDto.FilterOperatorEq, Value: appointment.ID, Table: model.ResourceTableName},
		},
	}

	if err = s.repo.UpdateResourcesTx(ctx, tx, map[string]any{
		model.FieldStatus:        target,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: user,
	}, reservationFilter); err != nil {
		return err
	}

	if slotUpdates := slotUpdatesFor(target, now, user); slotUpdates != nil {
		if err = s.slots.UpdateTx(ctx, tx, slotUpdates,
			shared.FilterByTenantAndID(tenantID, appointment.SlotID, slotModel.FieldID, slotModel.TableName)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func slotUpdatesFor(target string, now time.Time, user string) map[string]any {
	switch target {
	case model.StatusCancelled:
		return map[string]any{
			slotModel.FieldStatus:    slotModel.StatusAvailable,
			constant.FieldModifiedAt: now,
			constant.FieldModifiedBy: user,
		}
	case model.StatusCompleted:
		return map[string]any{
			slotModel.FieldCompletedAt: now,
			constant.FieldModifiedAt:   now,
			constant.FieldModifiedBy:   user,
		}
	default:
		return nil
	}
}

func (s *serviceImpl) getModel(ctx context.Context, tenantID, id string) (appointment model.Appointment, err error) {
	appointment, err = s.repo.Get(ctx, shared.FilterByTenantAndID(tenantID, id, model.FieldID, model.TableName))
	if err != nil {
		return appointment, err
	}

	if appointment.ID == constant.Empty {
		return appointment, failure.NotFound(model.EntityName)
	}

	return appointment, nil
}

func buildBooking(
	tenantID, slotID string,
	candidate slotModel.Candidate,
	req dto.CreateAppointmentRequest,
	user string,
) (model.Appointment, []model.AppointmentResource, []model.AppointmentPreference) {
	now := time.Now()

	metadata := gModel.Metadata{
		CreatedAt:  now,
		ModifiedAt: now,
		CreatedBy:  user,
		ModifiedBy: user,
	}

	appointment := model.Appointment{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		SlotID:    slotID,
		ContactID: req.ContactID,
		Status:    model.StatusScheduled,
		Notes:     req.Notes,
		Metadata:  metadata,
	}

	reservations := make([]model.AppointmentResource, 0, len(candidate.Assignments))
	for _, assignment := range candidate.Assignments {
		reservations = append(reservations, model.AppointmentResource{
			ID:              uuid.NewString(),
			AppointmentID:   appointment.ID,
			ResourceID:      assignment.ResourceID,
			RoleID:          assignment.RoleID,
			ReservedStart:   assignment.ReservedStart,
			ReservedEnd:     assignment.ReservedEnd,
			ReservationMode: assignment.Mode,
			Status:          model.StatusScheduled,
			Quantity:        assignment.Quantity,
			Metadata:        metadata,
		})
	}

	preferences := make([]model.AppointmentPreference, 0, len(req.Preferences))
	for _, item := range req.Preferences {
		preferences = append(preferences, model.AppointmentPreference{
			ID:            uuid.NewString(),
			AppointmentID: appointment.ID,
			RoleID:        item.RoleID,
			ResourceID:    item.ResourceID,
			Strength:      item.Strength,
			Metadata:      metadata,
		})
	}

	return appointment, reservations, preferences
}

func slotPreferences(items []dto.PreferenceItem) []slotDto.SlotPreference {
	prefs := make([]slotDto.SlotPreference, 0, len(items))
	for _, item := range items {
		prefs = append(prefs, slotDto.SlotPreference{
			ResourceID: item.ResourceID,
			Kind:       item.Strength,
		})
	}

	return prefs
}

func stringValue(value *string) string {
	if value == nil {
		return constant.Empty
	}

	return *value
}
