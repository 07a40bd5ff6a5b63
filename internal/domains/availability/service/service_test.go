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
	availabilityMocks "clinicore/internal/domains/availability/mocks"
	"clinicore/internal/domains/availability/model"
	"clinicore/internal/domains/availability/model/dto"
	"clinicore/internal/domains/availability/service"
	resourceMocks "clinicore/internal/domains/resource/mocks"
	resourceModel "clinicore/internal/domains/resource/model"
	"clinicore/shared/failure"
)

const testTenant = "tenant-1"

func newService(t *testing.T) (service.Availability, *availabilityMocks.MockAvailability, *resourceMocks.MockResource) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := availabilityMocks.NewMockAvailability(ctrl)
	resources := resourceMocks.NewMockResource(ctrl)

	svc := service.New(repo, resources, &config.Config{}, mocks.NewOtel())

	return svc, repo, resources
}

func day(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)

	return parsed
}

func TestCreate_InactiveResourceRejected(t *testing.T) {
	svc, _, resources := newService(t)

	resources.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(resourceModel.Resource{ID: "res-1", TenantID: testTenant, Name: "Laser", Active: false}, nil)

	_, err := svc.Create(context.Background(), testTenant, dto.CreateAvailabilityRequest{
		ResourceID: "res-1",
		StartAt:    day(t, "2026-09-01T09:00:00Z"),
		EndAt:      day(t, "2026-09-01T17:00:00Z"),
		Kind:       model.KindAvailable,
		RangeType:  model.RangeNoEnd,
	})

	require.Error(t, err)
	assert.True(t, failure.IsInactiveResource(err))
}

func TestCreate_InvalidWindowRejected(t *testing.T) {
	svc, _, resources := newService(t)

	resources.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(resourceModel.Resource{ID: "res-1", TenantID: testTenant, Active: true}, nil)

	_, err := svc.Create(context.Background(), testTenant, dto.CreateAvailabilityRequest{
		ResourceID: "res-1",
		StartAt:    day(t, "2026-09-01T17:00:00Z"),
		EndAt:      day(t, "2026-09-01T09:00:00Z"),
		Kind:       model.KindAvailable,
		RangeType:  model.RangeNoEnd,
	})

	require.Error(t, err)
	assert.True(t, failure.IsValidation(err))
}

func TestEffectiveWindows_BlackoutSplitsWindow(t *testing.T) {
	svc, repo, resources := newService(t)

	from := day(t, "2026-09-01T00:00:00Z")
	to := day(t, "2026-09-02T00:00:00Z")

	resources.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]resourceModel.Resource{{
			ID:              "res-1",
			TenantID:        testTenant,
			ReservationMode: resourceModel.ReservationModeExclusive,
			MaxConcurrent:   1,
			Active:          true,
		}}, nil)

	repo.EXPECT().
		ListForResources(gomock.Any(), testTenant, []string{"res-1"}, to).
		Return([]model.ResourceAvailability{
			{
				ID:         "av-1",
				TenantID:   testTenant,
				ResourceID: "res-1",
				StartAt:    day(t, "2026-09-01T09:00:00Z"),
				EndAt:      day(t, "2026-09-01T17:00:00Z"),
				Kind:       model.KindAvailable,
				RangeType:  model.RangeNoEnd,
			},
			{
				ID:         "av-2",
				TenantID:   testTenant,
				ResourceID: "res-1",
				StartAt:    day(t, "2026-09-01T12:00:00Z"),
				EndAt:      day(t, "2026-09-01T13:00:00Z"),
				Kind:       model.KindBlocked,
				RangeType:  model.RangeNoEnd,
			},
		}, nil)

	windows, err := svc.EffectiveWindows(context.Background(), testTenant, dto.EffectiveWindowsRequest{
		ResourceIDs: []string{"res-1"},
		From:        from,
		To:          to,
	})

	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, day(t, "2026-09-01T09:00:00Z"), windows[0].Start)
	assert.Equal(t, day(t, "2026-09-01T12:00:00Z"), windows[0].End)
	assert.Equal(t, day(t, "2026-09-01T13:00:00Z"), windows[1].Start)
	assert.Equal(t, day(t, "2026-09-01T17:00:00Z"), windows[1].End)
	assert.Equal(t, resourceModel.ReservationModeExclusive, windows[0].ReservationMode)
	assert.Equal(t, 1, windows[0].MaxConcurrent)
}

func TestEffectiveWindows_NoRecordsMeansDefaultOpen(t *testing.T) {
	svc, repo, resources := newService(t)

	from := day(t, "2026-09-01T00:00:00Z")
	to := day(t, "2026-09-02T00:00:00Z")

	resources.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]resourceModel.Resource{{
			ID:              "res-1",
			TenantID:        testTenant,
			ReservationMode: resourceModel.ReservationModeShared,
			MaxConcurrent:   3,
			Active:          true,
		}}, nil)

	repo.EXPECT().
		ListForResources(gomock.Any(), testTenant, []string{"res-1"}, to).
		Return(nil, nil)

	windows, err := svc.EffectiveWindows(context.Background(), testTenant, dto.EffectiveWindowsRequest{
		ResourceIDs: []string{"res-1"},
		From:        from,
		To:          to,
	})

	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, from, windows[0].Start)
	assert.Equal(t, to, windows[0].End)
	assert.Equal(t, 3, windows[0].MaxConcurrent)
}

func TestEffectiveWindows_BlockedOnlyCarvesDefaultOpen(t *testing.T) {
	svc, repo, resources := newService(t)

	from := day(t, "2026-09-01T00:00:00Z")
	to := day(t, "2026-09-02T00:00:00Z")

	resources.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]resourceModel.Resource{{
			ID:              "res-1",
			TenantID:        testTenant,
			ReservationMode: resourceModel.ReservationModeShared,
			MaxConcurrent:   2,
			Active:          true,
		}}, nil)

	repo.EXPECT().
		ListForResources(gomock.Any(), testTenant, []string{"res-1"}, to).
		Return([]model.ResourceAvailability{{
			ID:         "av-1",
			TenantID:   testTenant,
			ResourceID: "res-1",
			StartAt:    day(t, "2026-09-01T12:00:00Z"),
			EndAt:      day(t, "2026-09-01T13:00:00Z"),
			Kind:       model.KindBlocked,
			RangeType:  model.RangeNoEnd,
		}}, nil)

	windows, err := svc.EffectiveWindows(context.Background(), testTenant, dto.EffectiveWindowsRequest{
		ResourceIDs: []string{"res-1"},
		From:        from,
		To:          to,
	})

	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, from, windows[0].Start)
	assert.Equal(t, day(t, "2026-09-01T12:00:00Z"), windows[0].End)
	assert.Equal(t, day(t, "2026-09-01T13:00:00Z"), windows[1].Start)
	assert.Equal(t, to, windows[1].End)
	assert.Equal(t, 2, windows[0].MaxConcurrent)
}

func TestEffectiveWindows_OverridesApply(t *testing.T) {
	svc, repo, resources := newService(t)

	from := day(t, "2026-09-01T00:00:00Z")
	to := day(t, "2026-09-02T00:00:00Z")

	sharedMode := resourceModel.ReservationModeShared
	maxFive := 5

	resources.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]resourceModel.Resource{{
			ID:              "res-1",
			TenantID:        testTenant,
			ReservationMode: resourceModel.ReservationModeExclusive,
			MaxConcurrent:   1,
			Active:          true,
		}}, nil)

	repo.EXPECT().
		ListForResources(gomock.Any(), testTenant, []string{"res-1"}, to).
		Return([]model.ResourceAvailability{{
			ID:           "av-1",
			TenantID:     testTenant,
			ResourceID:   "res-1",
			StartAt:      day(t, "2026-09-01T09:00:00Z"),
			EndAt:        day(t, "2026-09-01T17:00:00Z"),
			Kind:         model.KindAvailable,
			RangeType:    model.RangeNoEnd,
			OverrideMode: &sharedMode,
			OverrideMax:  &maxFive,
		}}, nil)

	windows, err := svc.EffectiveWindows(context.Background(), testTenant, dto.EffectiveWindowsRequest{
		ResourceIDs: []string{"res-1"},
		From:        from,
		To:          to,
	})

	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, resourceModel.ReservationModeShared, windows[0].ReservationMode)
	assert.Equal(t, 5, windows[0].MaxConcurrent)
}

func TestEffectiveWindows_InvertedQueryRejected(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.EffectiveWindows(context.Background(), testTenant, dto.EffectiveWindowsRequest{
		ResourceIDs: []string{"res-1"},
		From:        day(t, "2026-09-02T00:00:00Z"),
		To:          day(t, "2026-09-01T00:00:00Z"),
	})

	require.Error(t, err)
	assert.True(t, failure.IsValidation(err))
}
