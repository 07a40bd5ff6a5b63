package service_test

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"clinicore/config"
	otelMocks "clinicore/infras/otel/mocks"
	appointmentMocks "clinicore/internal/domains/appointment/mocks"
	"clinicore/internal/domains/appointment/model"
	"clinicore/internal/domains/appointment/model/dto"
	"clinicore/internal/domains/appointment/repository"
	"clinicore/internal/domains/appointment/service"
	availabilityMocks "clinicore/internal/domains/availability/mocks"
	availabilityService "clinicore/internal/domains/availability/service"
	procedureMocks "clinicore/internal/domains/procedure/mocks"
	procedureModel "clinicore/internal/domains/procedure/model"
	procedureService "clinicore/internal/domains/procedure/service"
	resourceMocks "clinicore/internal/domains/resource/mocks"
	resourceModel "clinicore/internal/domains/resource/model"
	resourceRepo "clinicore/internal/domains/resource/repository"
	slotMocks "clinicore/internal/domains/slot/mocks"
	slotModel "clinicore/internal/domains/slot/model"
	slotRepo "clinicore/internal/domains/slot/repository"
	slotService "clinicore/internal/domains/slot/service"
	"clinicore/internal/events"
	eventMocks "clinicore/internal/events/mocks"
	cacheMocks "clinicore/shared/cache/mocks"
	gDto "clinicore/shared/dto"
	"clinicore/shared/failure"
)

const testTenant = "tenant-1"

type bookingMocks struct {
	appointments   *appointmentMocks.MockAppointment
	slots          *slotMocks.MockSlot
	procedures     *procedureMocks.MockProcedure
	availabilities *availabilityMocks.MockAvailability
	resources      *resourceMocks.MockResource
	publisher      *eventMocks.MockPublisher
	db             sqlmock.Sqlmock
	conn           *sqlx.DB
}

// beginTx hands the service a transaction backed by sqlmock so commit and
// rollback expectations can be asserted while every statement stays on the
// mocked repository.
func (m *bookingMocks) beginTx(t *testing.T) {
	t.Helper()

	m.db.ExpectBegin()

	tx, err := m.conn.Beginx()
	require.NoError(t, err)

	m.appointments.EXPECT().BeginTx(gomock.Any()).Return(tx, nil)
}

func newBooking(t *testing.T) (service.Appointment, *bookingMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	rawDB, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })

	deps := &bookingMocks{
		appointments:   appointmentMocks.NewMockAppointment(ctrl),
		slots:          slotMocks.NewMockSlot(ctrl),
		procedures:     procedureMocks.NewMockProcedure(ctrl),
		availabilities: availabilityMocks.NewMockAvailability(ctrl),
		resources:      resourceMocks.NewMockResource(ctrl),
		publisher:      eventMocks.NewMockPublisher(ctrl),
		db:             mockDB,
		conn:           sqlx.NewDb(rawDB, "sqlmock"),
	}

	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	mockOtel := otelMocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Booking.SlotGranularityMinutes = 15
	cfg.Booking.MaxCandidates = 50

	procedures := procedureService.New(deps.procedures, cfg, mockCache, mockOtel)
	availability := availabilityService.New(deps.availabilities, deps.resources, cfg, mockOtel)
	finder := slotService.New(deps.slots, procedures, availability, deps.resources, deps.appointments, cfg, mockOtel)

	svc := service.New(deps.appointments, deps.slots, finder, deps.publisher, cfg, mockOtel)

	return svc, deps
}

func exclusiveRoom(id string) resourceModel.Resource {
	return resourceModel.Resource{
		ID:              id,
		TenantID:        testTenant,
		SubtypeID:       "subtype-room",
		Name:            "Room " + id,
		ReservationMode: resourceModel.ReservationModeExclusive,
		MaxConcurrent:   1,
		Active:          true,
	}
}

func scanProcedure() procedureModel.Procedure {
	return procedureModel.Procedure{
		ID:              "proc-1",
		TenantID:        testTenant,
		Name:            "CT Scan",
		Kind:            procedureModel.KindAtomic,
		DurationMinutes: 30,
		Active:          true,
	}
}

func roomRequirement() procedureModel.ProcedureRequirement {
	return procedureModel.ProcedureRequirement{
		ID:          "req-1",
		ProcedureID: "proc-1",
		RoleID:      "role-room",
		QuantityMin: 1,
		Required:    true,
	}
}

// expectSearch wires the generator's read path: the procedure, its
// requirements, the role pool, fully open availability, and the reservation
// snapshot.
func expectSearch(deps *bookingMocks, resources []resourceModel.Resource, snapshot []model.AppointmentResource) {
	deps.procedures.EXPECT().Get(gomock.Any(), gomock.Any()).Return(scanProcedure(), nil).AnyTimes()
	deps.procedures.EXPECT().GetRequirements(gomock.Any(), "proc-1").
		Return([]procedureModel.ProcedureRequirement{roomRequirement()}, nil).AnyTimes()

	members := make([]resourceRepo.RoleResource, 0, len(resources))
	for i, member := range resources {
		members = append(members, resourceRepo.RoleResource{Resource: member, Priority: i + 1})
	}

	deps.resources.EXPECT().ListByRole(gomock.Any(), testTenant, "role-room", true).Return(members, nil).AnyTimes()
	deps.resources.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(resources, nil).AnyTimes()
	deps.availabilities.EXPECT().ListForResources(gomock.Any(), testTenant, gomock.Any(), gomock.Any()).
		Return(nil, nil).AnyTimes()
	deps.appointments.EXPECT().Overlapping(gomock.Any(), testTenant, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(snapshot, nil).AnyTimes()
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)

	return parsed
}

func TestAppointmentService_Create_AdHocStart(t *testing.T) {
	svc, deps := newBooking(t)

	room := exclusiveRoom("room-1")
	expectSearch(deps, []resourceModel.Resource{room}, nil)

	start := mustTime(t, "2026-02-02T09:00:00Z")

	deps.beginTx(t)
	deps.appointments.EXPECT().LockResourcesTx(gomock.Any(), gomock.Any(), []string{"room-1"}).Return(nil)
	deps.appointments.EXPECT().OverlappingTx(gomock.Any(), gomock.Any(), testTenant, []string{"room-1"}, start, start.Add(30*time.Minute)).
		Return(nil, nil)

	var storedSlot slotModel.ProcedureSlot

	deps.slots.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, slot slotModel.ProcedureSlot) error {
			storedSlot = slot

			return nil
		})

	var storedAppointment model.Appointment

	deps.appointments.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, appointment model.Appointment) error {
			storedAppointment = appointment

			return nil
		})

	var storedReservations []model.AppointmentResource

	deps.appointments.EXPECT().InsertResourcesTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, reservations []model.AppointmentResource) error {
			storedReservations = reservations

			return nil
		})

	deps.db.ExpectCommit()
	deps.publisher.EXPECT().AppointmentCreated(gomock.Any(), gomock.Any())

	procedureID := "proc-1"
	contactID := "contact-1"

	res, err := svc.Create(context.Background(), testTenant, dto.CreateAppointmentRequest{
		ProcedureID: &procedureID,
		StartAt:     &start,
		ContactID:   &contactID,
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusScheduled, res.Status)
	require.Len(t, res.Resources, 1)
	assert.Equal(t, "room-1", res.Resources[0].ResourceID)

	assert.Equal(t, slotModel.StatusBooked, storedSlot.Status)
	assert.Equal(t, slotModel.GenerationAuto, storedSlot.GenerationType)
	assert.Equal(t, start, storedSlot.StartAt)
	assert.Equal(t, start.Add(30*time.Minute), storedSlot.EndAt)

	assert.Equal(t, storedSlot.ID, storedAppointment.SlotID)
	require.Len(t, storedReservations, 1)
	assert.Equal(t, storedAppointment.ID, storedReservations[0].AppointmentID)
	assert.Equal(t, model.StatusScheduled, storedReservations[0].Status)

	require.NoError(t, deps.db.ExpectationsWereMet())
}

func TestAppointmentService_Create_ConcurrentBookingRollsBack(t *testing.T) {
	svc, deps := newBooking(t)

	room := exclusiveRoom("room-1")
	expectSearch(deps, []resourceModel.Resource{room}, nil)

	start := mustTime(t, "2026-02-02T09:00:00Z")

	deps.beginTx(t)
	deps.appointments.EXPECT().LockResourcesTx(gomock.Any(), gomock.Any(), []string{"room-1"}).Return(nil)
	deps.appointments.EXPECT().OverlappingTx(gomock.Any(), gomock.Any(), testTenant, []string{"room-1"}, start, start.Add(30*time.Minute)).
		Return([]model.AppointmentResource{{
			ResourceID:    "room-1",
			ReservedStart: start,
			ReservedEnd:   start.Add(30 * time.Minute),
			Status:        model.StatusScheduled,
		}}, nil)
	deps.db.ExpectRollback()

	deps.publisher.EXPECT().BookingConflict(gomock.Any(), gomock.Any())

	procedureID := "proc-1"

	_, err := svc.Create(context.Background(), testTenant, dto.CreateAppointmentRequest{
		ProcedureID: &procedureID,
		StartAt:     &start,
	})

	require.Error(t, err)
	assert.True(t, failure.IsConflict(err))

	require.NoError(t, deps.db.ExpectationsWereMet())
}

func TestAppointmentService_Create_SharedCapacityCountsPeakNotRows(t *testing.T) {
	svc, deps := newBooking(t)

	chair := resourceModel.Resource{
		ID:              "chair-1",
		TenantID:        testTenant,
		SubtypeID:       "subtype-chair",
		Name:            "Infusion Chair",
		ReservationMode: resourceModel.ReservationModeShared,
		MaxConcurrent:   2,
		Active:          true,
	}

	start := mustTime(t, "2026-02-02T09:00:00Z")

	// Two disjoint holds inside the requested window. Row count says two,
	// but at no instant is more than one seat occupied.
	held := []model.AppointmentResource{
		{
			ResourceID:    "chair-1",
			ReservedStart: start,
			ReservedEnd:   start.Add(10 * time.Minute),
			Status:        model.StatusScheduled,
		},
		{
			ResourceID:    "chair-1",
			ReservedStart: start.Add(20 * time.Minute),
			ReservedEnd:   start.Add(30 * time.Minute),
			Status:        model.StatusScheduled,
		},
	}

	expectSearch(deps, []resourceModel.Resource{chair}, held)

	deps.beginTx(t)
	deps.appointments.EXPECT().LockResourcesTx(gomock.Any(), gomock.Any(), []string{"chair-1"}).Return(nil)
	deps.appointments.EXPECT().OverlappingTx(gomock.Any(), gomock.Any(), testTenant, []string{"chair-1"}, start, start.Add(30*time.Minute)).
		Return(held, nil)

	deps.slots.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	deps.appointments.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	deps.appointments.EXPECT().InsertResourcesTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	deps.db.ExpectCommit()
	deps.publisher.EXPECT().AppointmentCreated(gomock.Any(), gomock.Any())

	procedureID := "proc-1"

	res, err := svc.Create(context.Background(), testTenant, dto.CreateAppointmentRequest{
		ProcedureID: &procedureID,
		StartAt:     &start,
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusScheduled, res.Status)

	require.NoError(t, deps.db.ExpectationsWereMet())
}

func TestAppointmentService_Create_PersistedSlotClaimedConditionally(t *testing.T) {
	svc, deps := newBooking(t)

	room := exclusiveRoom("room-1")
	expectSearch(deps, []resourceModel.Resource{room}, nil)

	start := mustTime(t, "2026-02-02T09:00:00Z")

	deps.slots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(slotModel.ProcedureSlot{
		ID:          "slot-1",
		TenantID:    testTenant,
		ProcedureID: "proc-1",
		StartAt:     start,
		EndAt:       start.Add(30 * time.Minute),
		Status:      slotModel.StatusAvailable,
	}, nil)

	deps.beginTx(t)
	deps.appointments.EXPECT().LockResourcesTx(gomock.Any(), gomock.Any(), []string{"room-1"}).Return(nil)
	deps.appointments.EXPECT().OverlappingTx(gomock.Any(), gomock.Any(), testTenant, []string{"room-1"}, start, start.Add(30*time.Minute)).
		Return(nil, nil)

	deps.slots.EXPECT().ClaimTx(gomock.Any(), gomock.Any(), testTenant, "slot-1", gomock.Any()).Return(nil)
	deps.appointments.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	deps.appointments.EXPECT().InsertResourcesTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	deps.db.ExpectCommit()
	deps.publisher.EXPECT().AppointmentCreated(gomock.Any(), gomock.Any())

	slotID := "slot-1"

	res, err := svc.Create(context.Background(), testTenant, dto.CreateAppointmentRequest{
		SlotID: &slotID,
	})

	require.NoError(t, err)
	assert.Equal(t, "slot-1", res.SlotID)

	require.NoError(t, deps.db.ExpectationsWereMet())
}

func TestAppointmentService_Create_SlotClaimedByOtherTransaction(t *testing.T) {
	svc, deps := newBooking(t)

	room := exclusiveRoom("room-1")
	expectSearch(deps, []resourceModel.Resource{room}, nil)

	start := mustTime(t, "2026-02-02T09:00:00Z")

	// The status read before the transaction still sees the slot available;
	// the conditional flip inside the transaction is what loses the race.
	deps.slots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(slotModel.ProcedureSlot{
		ID:          "slot-1",
		TenantID:    testTenant,
		ProcedureID: "proc-1",
		StartAt:     start,
		EndAt:       start.Add(30 * time.Minute),
		Status:      slotModel.StatusAvailable,
	}, nil)

	deps.beginTx(t)
	deps.appointments.EXPECT().LockResourcesTx(gomock.Any(), gomock.Any(), []string{"room-1"}).Return(nil)
	deps.appointments.EXPECT().OverlappingTx(gomock.Any(), gomock.Any(), testTenant, []string{"room-1"}, start, start.Add(30*time.Minute)).
		Return(nil, nil)

	deps.slots.EXPECT().ClaimTx(gomock.Any(), gomock.Any(), testTenant, "slot-1", gomock.Any()).
		Return(slotRepo.ErrSlotTaken())
	deps.db.ExpectRollback()

	deps.publisher.EXPECT().BookingConflict(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, event events.ConflictEvent) {
			assert.Equal(t, start, event.WindowStart)
			assert.Equal(t, start.Add(30*time.Minute), event.WindowEnd)
		})

	slotID := "slot-1"

	_, err := svc.Create(context.Background(), testTenant, dto.CreateAppointmentRequest{
		SlotID: &slotID,
	})

	require.Error(t, err)
	assert.True(t, failure.IsConflict(err))

	require.NoError(t, deps.db.ExpectationsWereMet())
}

func TestAppointmentService_Create_InsufficientStockLeavesNothingBehind(t *testing.T) {
	svc, deps := newBooking(t)

	dye := resourceModel.Resource{
		ID:              "dye-1",
		TenantID:        testTenant,
		SubtypeID:       "subtype-consumable",
		Name:            "Contrast Dye",
		ReservationMode: resourceModel.ReservationModeShared,
		MaxConcurrent:   100,
		Consumable:      true,
		QuantityOnHand:  3,
		Active:          true,
	}

	expectSearch(deps, []resourceModel.Resource{dye}, nil)

	start := mustTime(t, "2026-02-02T09:00:00Z")

	deps.beginTx(t)
	deps.appointments.EXPECT().LockResourcesTx(gomock.Any(), gomock.Any(), []string{"dye-1"}).Return(nil)
	deps.appointments.EXPECT().OverlappingTx(gomock.Any(), gomock.Any(), testTenant, []string{"dye-1"}, gomock.Any(), gomock.Any()).
		Return(nil, nil)
	deps.appointments.EXPECT().DecrementStockTx(gomock.Any(), gomock.Any(), testTenant, "dye-1", 1, gomock.Any()).
		Return(repository.ErrStockConstraint())
	deps.db.ExpectRollback()

	procedureID := "proc-1"

	_, err := svc.Create(context.Background(), testTenant, dto.CreateAppointmentRequest{
		ProcedureID: &procedureID,
		StartAt:     &start,
	})

	require.Error(t, err)
	assert.True(t, failure.IsInsufficientInventory(err))

	require.NoError(t, deps.db.ExpectationsWereMet())
}

func TestAppointmentService_Create_BookedSlotRejected(t *testing.T) {
	svc, deps := newBooking(t)

	deps.slots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(slotModel.ProcedureSlot{
		ID:       "slot-1",
		TenantID: testTenant,
		Status:   slotModel.StatusBooked,
	}, nil)

	slotID := "slot-1"

	_, err := svc.Create(context.Background(), testTenant, dto.CreateAppointmentRequest{
		SlotID: &slotID,
	})

	require.Error(t, err)
	assert.True(t, failure.IsConflict(err))
}

func TestAppointmentService_Create_MissingForm(t *testing.T) {
	svc, _ := newBooking(t)

	_, err := svc.Create(context.Background(), testTenant, dto.CreateAppointmentRequest{})

	require.Error(t, err)
	assert.True(t, failure.IsValidation(err))
}

func TestAppointmentService_Transition_CancelFreesSlot(t *testing.T) {
	svc, deps := newBooking(t)

	deps.appointments.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Appointment{
		ID:       "appt-1",
		TenantID: testTenant,
		SlotID:   "slot-1",
		Status:   model.StatusScheduled,
	}, nil)

	deps.beginTx(t)

	deps.appointments.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, updates map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, model.StatusCancelled, updates[model.FieldStatus])
			assert.NotNil(t, updates[model.FieldCancelledAt])

			return nil
		})

	deps.appointments.EXPECT().UpdateResourcesTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, updates map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, model.StatusCancelled, updates[model.FieldStatus])

			return nil
		})

	deps.slots.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, updates map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, slotModel.StatusAvailable, updates[slotModel.FieldStatus])

			return nil
		})

	deps.db.ExpectCommit()
	deps.publisher.EXPECT().AppointmentCancelled(gomock.Any(), gomock.Any())

	res, err := svc.Transition(context.Background(), testTenant, "appt-1", dto.TransitionRequest{Status: model.StatusCancelled})

	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, res.Status)
	assert.NotNil(t, res.CancelledAt)

	require.NoError(t, deps.db.ExpectationsWereMet())
}

func TestAppointmentService_Transition_SkippingStatesRejected(t *testing.T) {
	svc, deps := newBooking(t)

	deps.appointments.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Appointment{
		ID:       "appt-1",
		TenantID: testTenant,
		SlotID:   "slot-1",
		Status:   model.StatusScheduled,
	}, nil)

	_, err := svc.Transition(context.Background(), testTenant, "appt-1", dto.TransitionRequest{Status: model.StatusInProgress})

	require.Error(t, err)
	assert.True(t, failure.IsValidation(err))
}

func TestAppointmentService_Transition_TerminalStateRejected(t *testing.T) {
	svc, deps := newBooking(t)

	deps.appointments.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Appointment{
		ID:       "appt-1",
		TenantID: testTenant,
		SlotID:   "slot-1",
		Status:   model.StatusCancelled,
	}, nil)

	_, err := svc.Transition(context.Background(), testTenant, "appt-1", dto.TransitionRequest{Status: model.StatusConfirmed})

	require.Error(t, err)
	assert.True(t, failure.IsValidation(err))
}
