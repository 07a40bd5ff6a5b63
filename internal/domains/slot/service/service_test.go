package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"clinicore/config"
	"clinicore/infras/otel/mocks"
	appointmentMocks "clinicore/internal/domains/appointment/mocks"
	appointmentModel "clinicore/internal/domains/appointment/model"
	availabilityMocks "clinicore/internal/domains/availability/mocks"
	availabilityService "clinicore/internal/domains/availability/service"
	procedureMocks "clinicore/internal/domains/procedure/mocks"
	procedureModel "clinicore/internal/domains/procedure/model"
	procedureService "clinicore/internal/domains/procedure/service"
	resourceMocks "clinicore/internal/domains/resource/mocks"
	resourceModel "clinicore/internal/domains/resource/model"
	resourceRepo "clinicore/internal/domains/resource/repository"
	slotMocks "clinicore/internal/domains/slot/mocks"
	"clinicore/internal/domains/slot/model"
	"clinicore/internal/domains/slot/model/dto"
	"clinicore/internal/domains/slot/service"
	cacheMocks "clinicore/shared/cache/mocks"
	"clinicore/shared/failure"
)

const testTenant = "tenant-1"

type generatorMocks struct {
	slots         *slotMocks.MockSlot
	procedures    *procedureMocks.MockProcedure
	availabilites *availabilityMocks.MockAvailability
	resources     *resourceMocks.MockResource
	appointments  *appointmentMocks.MockAppointment
}

func newGenerator(t *testing.T) (service.Slot, generatorMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	deps := generatorMocks{
		slots:         slotMocks.NewMockSlot(ctrl),
		procedures:    procedureMocks.NewMockProcedure(ctrl),
		availabilites: availabilityMocks.NewMockAvailability(ctrl),
		resources:     resourceMocks.NewMockResource(ctrl),
		appointments:  appointmentMocks.NewMockAppointment(ctrl),
	}

	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Booking.SlotGranularityMinutes = 15
	cfg.Booking.MaxCandidates = 50

	procedures := procedureService.New(deps.procedures, cfg, mockCache, mockOtel)
	availability := availabilityService.New(deps.availabilites, deps.resources, cfg, mockOtel)

	svc := service.New(deps.slots, procedures, availability, deps.resources, deps.appointments, cfg, mockOtel)

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

func scanProcedure(minutes int) procedureModel.Procedure {
	return procedureModel.Procedure{
		ID:              "proc-1",
		TenantID:        testTenant,
		Name:            "CT Scan",
		Kind:            procedureModel.KindAtomic,
		DurationMinutes: minutes,
		Active:          true,
	}
}

func roomRequirement(required bool, quantity int) procedureModel.ProcedureRequirement {
	return procedureModel.ProcedureRequirement{
		ID:          "req-1",
		ProcedureID: "proc-1",
		RoleID:      "role-room",
		QuantityMin: quantity,
		Required:    required,
	}
}

func expectProcedure(deps generatorMocks, procedure procedureModel.Procedure, requirements []procedureModel.ProcedureRequirement) {
	deps.procedures.EXPECT().Get(gomock.Any(), gomock.Any()).Return(procedure, nil).AnyTimes()
	deps.procedures.EXPECT().GetRequirements(gomock.Any(), procedure.ID).Return(requirements, nil)
}

func expectFullyOpen(deps generatorMocks, resources ...resourceModel.Resource) {
	deps.resources.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(resources, nil)
	deps.availabilites.EXPECT().ListForResources(gomock.Any(), testTenant, gomock.Any(), gomock.Any()).
		Return(nil, nil)
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)

	return parsed
}

func TestSlotService_Generate_ExclusiveRoom(t *testing.T) {
	svc, deps := newGenerator(t)

	room := exclusiveRoom("room-1")

	expectProcedure(deps, scanProcedure(30), []procedureModel.ProcedureRequirement{roomRequirement(true, 1)})
	deps.resources.EXPECT().ListByRole(gomock.Any(), testTenant, "role-room", true).
		Return([]resourceRepo.RoleResource{{Resource: room, Priority: 1}}, nil)
	expectFullyOpen(deps, room)
	deps.appointments.EXPECT().Overlapping(gomock.Any(), testTenant, []string{"room-1"}, gomock.Any(), gomock.Any()).
		Return(nil, nil)

	from := mustTime(t, "2026-02-02T09:00:00Z")

	res, err := svc.Generate(context.Background(), testTenant, dto.GenerateSlotsRequest{
		ProcedureID:        "proc-1",
		From:               from,
		To:                 from.Add(time.Hour),
		GranularityMinutes: 30,
	})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)

	first := res.Candidates[0]
	assert.Nil(t, first.SlotID)
	assert.Equal(t, from, first.StartAt)
	assert.Equal(t, from.Add(30*time.Minute), first.EndAt)
	require.Len(t, first.Assignments, 1)
	assert.Equal(t, "room-1", first.Assignments[0].ResourceID)
	assert.Equal(t, resourceModel.ReservationModeExclusive, first.Assignments[0].Mode)
	assert.Equal(t, from, first.Assignments[0].ReservedStart)
	assert.Equal(t, from.Add(30*time.Minute), first.Assignments[0].ReservedEnd)

	assert.Equal(t, from.Add(30*time.Minute), res.Candidates[1].StartAt)
}

func TestSlotService_Generate_SkipsConflictedStarts(t *testing.T) {
	svc, deps := newGenerator(t)

	room := exclusiveRoom("room-1")

	expectProcedure(deps, scanProcedure(30), []procedureModel.ProcedureRequirement{roomRequirement(true, 1)})
	deps.resources.EXPECT().ListByRole(gomock.Any(), testTenant, "role-room", true).
		Return([]resourceRepo.RoleResource{{Resource: room, Priority: 1}}, nil)
	expectFullyOpen(deps, room)

	from := mustTime(t, "2026-02-02T09:00:00Z")

	deps.appointments.EXPECT().Overlapping(gomock.Any(), testTenant, []string{"room-1"}, gomock.Any(), gomock.Any()).
		Return([]appointmentModel.AppointmentResource{{
			ResourceID:    "room-1",
			ReservedStart: from,
			ReservedEnd:   from.Add(30 * time.Minute),
			Status:        appointmentModel.StatusScheduled,
		}}, nil)

	res, err := svc.Generate(context.Background(), testTenant, dto.GenerateSlotsRequest{
		ProcedureID:        "proc-1",
		From:               from,
		To:                 from.Add(time.Hour),
		GranularityMinutes: 30,
	})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, from.Add(30*time.Minute), res.Candidates[0].StartAt)
}

func TestSlotService_Generate_SharedCapacitySweep(t *testing.T) {
	svc, deps := newGenerator(t)

	scanner := resourceModel.Resource{
		ID:              "scanner-1",
		TenantID:        testTenant,
		SubtypeID:       "subtype-device",
		Name:            "Scanner",
		ReservationMode: resourceModel.ReservationModeShared,
		MaxConcurrent:   2,
		Active:          true,
	}

	expectProcedure(deps, scanProcedure(30), []procedureModel.ProcedureRequirement{roomRequirement(true, 1)})
	deps.resources.EXPECT().ListByRole(gomock.Any(), testTenant, "role-room", true).
		Return([]resourceRepo.RoleResource{{Resource: scanner, Priority: 1}}, nil)
	expectFullyOpen(deps, scanner)

	from := mustTime(t, "2026-02-02T09:00:00Z")
	half := from.Add(30 * time.Minute)

	deps.appointments.EXPECT().Overlapping(gomock.Any(), testTenant, []string{"scanner-1"}, gomock.Any(), gomock.Any()).
		Return([]appointmentModel.AppointmentResource{
			{ResourceID: "scanner-1", ReservedStart: from, ReservedEnd: half, Status: appointmentModel.StatusScheduled},
			{ResourceID: "scanner-1", ReservedStart: from, ReservedEnd: half, Status: appointmentModel.StatusConfirmed},
		}, nil)

	res, err := svc.Generate(context.Background(), testTenant, dto.GenerateSlotsRequest{
		ProcedureID:        "proc-1",
		From:               from,
		To:                 from.Add(time.Hour),
		GranularityMinutes: 30,
	})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, half, res.Candidates[0].StartAt)
}

func TestSlotService_Generate_RequirementSubWindow(t *testing.T) {
	svc, deps := newGenerator(t)

	room := exclusiveRoom("room-1")

	requirement := roomRequirement(true, 1)
	requirement.OffsetStart = intPtr(10)
	requirement.OffsetEnd = intPtr(20)

	expectProcedure(deps, scanProcedure(30), []procedureModel.ProcedureRequirement{requirement})
	deps.resources.EXPECT().ListByRole(gomock.Any(), testTenant, "role-room", true).
		Return([]resourceRepo.RoleResource{{Resource: room, Priority: 1}}, nil)
	expectFullyOpen(deps, room)
	deps.appointments.EXPECT().Overlapping(gomock.Any(), testTenant, []string{"room-1"}, gomock.Any(), gomock.Any()).
		Return(nil, nil)

	from := mustTime(t, "2026-02-02T09:00:00Z")

	res, err := svc.Generate(context.Background(), testTenant, dto.GenerateSlotsRequest{
		ProcedureID:        "proc-1",
		From:               from,
		To:                 from.Add(30 * time.Minute),
		GranularityMinutes: 30,
	})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	require.Len(t, res.Candidates[0].Assignments, 1)
	assert.Equal(t, from.Add(10*time.Minute), res.Candidates[0].Assignments[0].ReservedStart)
	assert.Equal(t, from.Add(20*time.Minute), res.Candidates[0].Assignments[0].ReservedEnd)
}

func TestSlotService_Generate_Persist(t *testing.T) {
	svc, deps := newGenerator(t)

	room := exclusiveRoom("room-1")

	expectProcedure(deps, scanProcedure(30), []procedureModel.ProcedureRequirement{roomRequirement(true, 1)})
	deps.resources.EXPECT().ListByRole(gomock.Any(), testTenant, "role-room", true).
		Return([]resourceRepo.RoleResource{{Resource: room, Priority: 1}}, nil)
	expectFullyOpen(deps, room)
	deps.appointments.EXPECT().Overlapping(gomock.Any(), testTenant, []string{"room-1"}, gomock.Any(), gomock.Any()).
		Return(nil, nil)

	var stored []model.ProcedureSlot

	deps.slots.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, slot model.ProcedureSlot) error {
			stored = append(stored, slot)

			return nil
		}).Times(2)

	from := mustTime(t, "2026-02-02T09:00:00Z")

	res, err := svc.Generate(context.Background(), testTenant, dto.GenerateSlotsRequest{
		ProcedureID:        "proc-1",
		From:               from,
		To:                 from.Add(time.Hour),
		GranularityMinutes: 30,
		Persist:            true,
	})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	require.Len(t, stored, 2)

	for i, candidate := range res.Candidates {
		require.NotNil(t, candidate.SlotID)
		assert.Equal(t, stored[i].ID, *candidate.SlotID)
		assert.Equal(t, model.StatusAvailable, stored[i].Status)
		assert.Equal(t, model.GenerationManual, stored[i].GenerationType)
		assert.Equal(t, candidate.StartAt, stored[i].StartAt)
	}
}

func TestSlotService_Generate_OptionalRoleSkipped(t *testing.T) {
	svc, deps := newGenerator(t)

	room := exclusiveRoom("room-1")

	optional := procedureModel.ProcedureRequirement{
		ID:          "req-2",
		ProcedureID: "proc-1",
		RoleID:      "role-assistant",
		QuantityMin: 1,
		Required:    false,
	}

	expectProcedure(deps, scanProcedure(30), []procedureModel.ProcedureRequirement{roomRequirement(true, 1), optional})
	deps.resources.EXPECT().ListByRole(gomock.Any(), testTenant, "role-room", true).
		Return([]resourceRepo.RoleResource{{Resource: room, Priority: 1}}, nil)
	deps.resources.EXPECT().ListByRole(gomock.Any(), testTenant, "role-assistant", true).
		Return(nil, nil)
	expectFullyOpen(deps, room)
	deps.appointments.EXPECT().Overlapping(gomock.Any(), testTenant, []string{"room-1"}, gomock.Any(), gomock.Any()).
		Return(nil, nil)

	from := mustTime(t, "2026-02-02T09:00:00Z")

	res, err := svc.Generate(context.Background(), testTenant, dto.GenerateSlotsRequest{
		ProcedureID:        "proc-1",
		From:               from,
		To:                 from.Add(30 * time.Minute),
		GranularityMinutes: 30,
	})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	require.Len(t, res.Candidates[0].Assignments, 1)
	assert.Equal(t, "role-room", res.Candidates[0].Assignments[0].RoleID)
}

func TestSlotService_BuildCandidate_RequiredPreferenceConflict(t *testing.T) {
	svc, deps := newGenerator(t)

	busyRoom := exclusiveRoom("room-1")
	freeRoom := exclusiveRoom("room-2")

	expectProcedure(deps, scanProcedure(30), []procedureModel.ProcedureRequirement{roomRequirement(true, 1)})
	deps.resources.EXPECT().ListByRole(gomock.Any(), testTenant, "role-room", true).
		Return([]resourceRepo.RoleResource{
			{Resource: busyRoom, Priority: 1},
			{Resource: freeRoom, Priority: 2},
		}, nil)
	expectFullyOpen(deps, busyRoom, freeRoom)

	start := mustTime(t, "2026-02-02T09:00:00Z")

	deps.appointments.EXPECT().Overlapping(gomock.Any(), testTenant, []string{"room-1", "room-2"}, gomock.Any(), gomock.Any()).
		Return([]appointmentModel.AppointmentResource{{
			ResourceID:    "room-1",
			ReservedStart: start,
			ReservedEnd:   start.Add(30 * time.Minute),
			Status:        appointmentModel.StatusScheduled,
		}}, nil)

	_, err := svc.BuildCandidate(context.Background(), testTenant, "proc-1", start, []dto.SlotPreference{
		{ResourceID: "room-1", Kind: appointmentModel.PreferenceRequired},
	})

	require.Error(t, err)
	assert.True(t, failure.IsConflict(err))
}

func TestSlotService_BuildCandidate_PreferredWins(t *testing.T) {
	svc, deps := newGenerator(t)

	firstRoom := exclusiveRoom("room-1")
	preferredRoom := exclusiveRoom("room-2")

	expectProcedure(deps, scanProcedure(30), []procedureModel.ProcedureRequirement{roomRequirement(true, 1)})
	deps.resources.EXPECT().ListByRole(gomock.Any(), testTenant, "role-room", true).
		Return([]resourceRepo.RoleResource{
			{Resource: firstRoom, Priority: 1},
			{Resource: preferredRoom, Priority: 2},
		}, nil)
	expectFullyOpen(deps, firstRoom, preferredRoom)
	deps.appointments.EXPECT().Overlapping(gomock.Any(), testTenant, []string{"room-1", "room-2"}, gomock.Any(), gomock.Any()).
		Return(nil, nil)

	start := mustTime(t, "2026-02-02T09:00:00Z")

	candidate, err := svc.BuildCandidate(context.Background(), testTenant, "proc-1", start, []dto.SlotPreference{
		{ResourceID: "room-2", Kind: appointmentModel.PreferencePreferred},
	})

	require.NoError(t, err)
	require.Len(t, candidate.Assignments, 1)
	assert.Equal(t, "room-2", candidate.Assignments[0].ResourceID)
}

func TestSlotService_Generate_NoRequirements(t *testing.T) {
	svc, deps := newGenerator(t)

	expectProcedure(deps, scanProcedure(30), nil)

	from := mustTime(t, "2026-02-02T09:00:00Z")

	_, err := svc.Generate(context.Background(), testTenant, dto.GenerateSlotsRequest{
		ProcedureID: "proc-1",
		From:        from,
		To:          from.Add(time.Hour),
	})

	require.Error(t, err)
	assert.True(t, failure.IsValidation(err))
}

func intPtr(v int) *int { return &v }
