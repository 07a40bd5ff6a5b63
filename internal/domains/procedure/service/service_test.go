package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"clinicore/config"
	"clinicore/infras/otel/mocks"
	procedureMocks "clinicore/internal/domains/procedure/mocks"
	"clinicore/internal/domains/procedure/model"
	"clinicore/internal/domains/procedure/model/dto"
	"clinicore/internal/domains/procedure/service"
	cacheMocks "clinicore/shared/cache/mocks"
	"clinicore/shared/constant"
	"clinicore/shared/failure"
)

const testTenant = "tenant-1"

func atomic(id, name string, duration, before, after int) model.Procedure {
	return model.Procedure{
		ID:              id,
		TenantID:        testTenant,
		Name:            name,
		Kind:            model.KindAtomic,
		DurationMinutes: duration,
		BufferBefore:    before,
		BufferAfter:     after,
		Active:          true,
	}
}

func composite(id, name string, before, after int) model.Procedure {
	return model.Procedure{
		ID:           id,
		TenantID:     testTenant,
		Name:         name,
		Kind:         model.KindComposite,
		BufferBefore: before,
		BufferAfter:  after,
		Active:       true,
	}
}

func newService(t *testing.T) (service.Procedure, *procedureMocks.MockProcedure, *cacheMocks.MockRedisCache) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockRepo := procedureMocks.NewMockProcedure(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return service.New(mockRepo, cfg, mockCache, mockOtel), mockRepo, mockCache
}

func TestProcedureService_TotalDuration_Composite(t *testing.T) {
	svc, mockRepo, _ := newService(t)

	// MRI with contrast: prep 15m, 5m gap, scan 30m, wrapped in 5m buffers.
	mri := composite("mri", "MRI With Contrast", 5, 5)
	prep := atomic("prep", "Contrast Prep", 15, 0, 0)
	scan := atomic("scan", "MRI Scan", 30, 0, 0)

	gomock.InOrder(
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(mri, nil),
		mockRepo.EXPECT().GetCompositions(gomock.Any(), "mri").Return([]model.ProcedureComposition{
			{ID: "c1", ProcedureID: "mri", ChildProcedureID: "prep", Position: 0, GapAfterMinutes: 5},
			{ID: "c2", ProcedureID: "mri", ChildProcedureID: "scan", Position: 1, GapAfterMinutes: 0},
		}, nil),
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(prep, nil),
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(scan, nil),
	)

	total, err := svc.TotalDuration(context.Background(), testTenant, "mri")

	require.NoError(t, err)
	assert.Equal(t, 60, total)
}

func TestProcedureService_TotalDuration_Atomic(t *testing.T) {
	svc, mockRepo, _ := newService(t)

	mockRepo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(atomic("cleaning", "Dental Cleaning", 30, 5, 10), nil)

	total, err := svc.TotalDuration(context.Background(), testTenant, "cleaning")

	require.NoError(t, err)
	assert.Equal(t, 45, total)
}

func TestProcedureService_TotalDuration_Cycle(t *testing.T) {
	svc, mockRepo, _ := newService(t)

	a := composite("a", "A", 0, 0)
	b := composite("b", "B", 0, 0)

	gomock.InOrder(
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(a, nil),
		mockRepo.EXPECT().GetCompositions(gomock.Any(), "a").Return([]model.ProcedureComposition{
			{ID: "c1", ProcedureID: "a", ChildProcedureID: "b"},
		}, nil),
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(b, nil),
		mockRepo.EXPECT().GetCompositions(gomock.Any(), "b").Return([]model.ProcedureComposition{
			{ID: "c2", ProcedureID: "b", ChildProcedureID: "a"},
		}, nil),
	)

	_, err := svc.TotalDuration(context.Background(), testTenant, "a")

	assert.Error(t, err)
	assert.True(t, failure.IsValidation(err))
}

func TestProcedureService_TotalDuration_RepeatedChild(t *testing.T) {
	svc, mockRepo, _ := newService(t)

	// Rinse twice in sequence: only an ancestor repeating is a cycle, a
	// child sequenced at two positions counts both times.
	facial := composite("facial", "Facial", 0, 0)
	rinse := atomic("rinse", "Rinse", 10, 0, 0)

	gomock.InOrder(
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(facial, nil),
		mockRepo.EXPECT().GetCompositions(gomock.Any(), "facial").Return([]model.ProcedureComposition{
			{ID: "c1", ProcedureID: "facial", ChildProcedureID: "rinse", Position: 0, GapAfterMinutes: 5},
			{ID: "c2", ProcedureID: "facial", ChildProcedureID: "rinse", Position: 1, GapAfterMinutes: 0},
		}, nil),
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(rinse, nil),
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(rinse, nil),
	)

	total, err := svc.TotalDuration(context.Background(), testTenant, "facial")

	require.NoError(t, err)
	assert.Equal(t, 25, total)
}

func TestProcedureService_SetComposition(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.SetCompositionRequest
		setupMock func(mockRepo *procedureMocks.MockProcedure)
		wantErr   bool
	}{
		{
			name: "successful replace",
			req: dto.SetCompositionRequest{
				Children: []dto.CompositionItem{{ChildProcedureID: "prep", GapAfterMinutes: 5}},
			},
			setupMock: func(mockRepo *procedureMocks.MockProcedure) {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(composite("mri", "MRI", 5, 5), nil)
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(atomic("prep", "Prep", 15, 0, 0), nil)
				mockRepo.EXPECT().GetCompositions(gomock.Any(), "prep").Return(nil, nil)
				mockRepo.EXPECT().ReplaceCompositions(gomock.Any(), "mri", gomock.Any()).Return(nil)
			},
		},
		{
			name: "self reference rejected",
			req: dto.SetCompositionRequest{
				Children: []dto.CompositionItem{{ChildProcedureID: "mri"}},
			},
			setupMock: func(mockRepo *procedureMocks.MockProcedure) {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(composite("mri", "MRI", 5, 5), nil)
			},
			wantErr: true,
		},
		{
			name: "atomic parent rejected",
			req: dto.SetCompositionRequest{
				Children: []dto.CompositionItem{{ChildProcedureID: "prep"}},
			},
			setupMock: func(mockRepo *procedureMocks.MockProcedure) {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(atomic("mri", "MRI", 30, 0, 0), nil)
			},
			wantErr: true,
		},
		{
			name: "cycle through child rejected",
			req: dto.SetCompositionRequest{
				Children: []dto.CompositionItem{{ChildProcedureID: "child"}},
			},
			setupMock: func(mockRepo *procedureMocks.MockProcedure) {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(composite("mri", "MRI", 5, 5), nil)
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(composite("child", "Child", 0, 0), nil)
				mockRepo.EXPECT().GetCompositions(gomock.Any(), "child").Return([]model.ProcedureComposition{
					{ID: "c1", ProcedureID: "child", ChildProcedureID: "mri"},
				}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, _ := newService(t)
			tt.setupMock(mockRepo)

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
			err := svc.SetComposition(ctx, testTenant, "mri", tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, failure.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcedureService_AddRequirement_Validation(t *testing.T) {
	end := 10
	start := 20

	tests := []struct {
		name    string
		req     dto.AddRequirementRequest
		wantErr bool
	}{
		{
			name: "valid requirement",
			req:  dto.AddRequirementRequest{RoleID: "role-1", QuantityMin: 1, Required: true},
		},
		{
			name:    "quantity_max below quantity_min",
			req:     dto.AddRequirementRequest{RoleID: "role-1", QuantityMin: 3, QuantityMax: intPtr(2)},
			wantErr: true,
		},
		{
			name:    "offset window inverted",
			req:     dto.AddRequirementRequest{RoleID: "role-1", QuantityMin: 1, OffsetStart: &start, OffsetEnd: &end},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, _ := newService(t)

			mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(composite("mri", "MRI", 0, 0), nil)
			if !tt.wantErr {
				mockRepo.EXPECT().InsertRequirement(gomock.Any(), gomock.Any()).Return(nil)
			}

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
			_, err := svc.AddRequirement(ctx, testTenant, "mri", tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, failure.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcedureService_Create_AtomicNeedsDuration(t *testing.T) {
	svc, _, _ := newService(t)

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
	_, err := svc.Create(ctx, testTenant, dto.CreateProcedureRequest{
		Name: "Broken",
		Kind: model.KindAtomic,
	})

	assert.Error(t, err)
	assert.True(t, failure.IsValidation(err))
}

func intPtr(i int) *int {
	return &i
}
