package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"clinicore/config"
	"clinicore/infras/otel/mocks"
	resourceMocks "clinicore/internal/domains/resource/mocks"
	"clinicore/internal/domains/resource/model"
	"clinicore/internal/domains/resource/model/dto"
	"clinicore/internal/domains/resource/repository"
	"clinicore/internal/domains/resource/service"
	eventMocks "clinicore/internal/events/mocks"
	cacheMocks "clinicore/shared/cache/mocks"
	"clinicore/shared/constant"
	"clinicore/shared/failure"
	gModel "clinicore/shared/model"
	"clinicore/shared/timezone"
)

const testTenant = "tenant-1"

func newResource(id string) model.Resource {
	return model.Resource{
		ID:              id,
		TenantID:        testTenant,
		SubtypeID:       "subtype-1",
		Name:            "Treatment Room 1",
		ReservationMode: model.ReservationModeExclusive,
		MaxConcurrent:   1,
		Active:          true,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  "system",
			ModifiedBy: "system",
		},
	}
}

func TestResourceService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := resourceMocks.NewMockResource(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockEvents := eventMocks.NewMockPublisher(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, mockEvents)

	subtype := model.ResourceSubtype{
		ID:     "subtype-1",
		TypeID: "type-1",
		Code:   "treatment_room",
		Name:   "Treatment Room",
		ConfigSchema: model.ConfigSchema{
			"floor":       model.ConfigKindNumber,
			"has_oxygen":  model.ConfigKindBool,
			"description": model.ConfigKindString,
		},
	}

	tests := []struct {
		name      string
		req       dto.CreateResourceRequest
		setupMock func()
		wantErr   bool
		errCheck  func(error) bool
	}{
		{
			name: "successful creation",
			req: dto.CreateResourceRequest{
				SubtypeID:       "subtype-1",
				Name:            "Treatment Room 1",
				ReservationMode: model.ReservationModeExclusive,
				Config:          model.JSONMap{"floor": float64(2)},
			},
			setupMock: func() {
				mockRepo.EXPECT().
					GetSubtype(gomock.Any(), "subtype-1").
					Return(subtype, nil)

				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "unknown subtype",
			req: dto.CreateResourceRequest{
				SubtypeID:       "missing",
				Name:            "Room",
				ReservationMode: model.ReservationModeExclusive,
			},
			setupMock: func() {
				mockRepo.EXPECT().
					GetSubtype(gomock.Any(), "missing").
					Return(model.ResourceSubtype{}, nil)
			},
			wantErr:  true,
			errCheck: failure.IsValidation,
		},
		{
			name: "config violates subtype schema",
			req: dto.CreateResourceRequest{
				SubtypeID:       "subtype-1",
				Name:            "Room",
				ReservationMode: model.ReservationModeExclusive,
				Config:          model.JSONMap{"floor": "second"},
			},
			setupMock: func() {
				mockRepo.EXPECT().
					GetSubtype(gomock.Any(), "subtype-1").
					Return(subtype, nil)
			},
			wantErr: true,
		},
		{
			name: "repository error",
			req: dto.CreateResourceRequest{
				SubtypeID:       "subtype-1",
				Name:            "Room",
				ReservationMode: model.ReservationModeShared,
				MaxConcurrent:   3,
			},
			setupMock: func() {
				mockRepo.EXPECT().
					GetSubtype(gomock.Any(), "subtype-1").
					Return(subtype, nil)

				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
			res, err := svc.Create(ctx, testTenant, tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errCheck != nil {
					assert.True(t, tt.errCheck(err))
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, testTenant, res.TenantID)
				assert.True(t, res.Active)
			}
		})
	}
}

func TestResourceService_Create_ExclusiveForcesSingleConcurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := resourceMocks.NewMockResource(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockEvents := eventMocks.NewMockPublisher(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, mockEvents)

	mockRepo.EXPECT().
		GetSubtype(gomock.Any(), "subtype-1").
		Return(model.ResourceSubtype{ID: "subtype-1"}, nil)

	var inserted model.Resource
	mockRepo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, res model.Resource) error {
			inserted = res

			return nil
		})

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
	_, err := svc.Create(ctx, testTenant, dto.CreateResourceRequest{
		SubtypeID:       "subtype-1",
		Name:            "X-Ray Machine",
		ReservationMode: model.ReservationModeExclusive,
		MaxConcurrent:   5,
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, inserted.MaxConcurrent)
}

func TestResourceService_Update_HierarchyCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := resourceMocks.NewMockResource(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockEvents := eventMocks.NewMockPublisher(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, mockEvents)

	// building-1 -> wing-1 -> room-1; linking building-1 under room-1 closes a cycle
	building := newResource("building-1")
	wing := newResource("wing-1")
	wing.ParentResourceID = stringPtr("building-1")
	room := newResource("room-1")
	room.ParentResourceID = stringPtr("wing-1")

	gomock.InOrder(
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(building, nil),
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room, nil),
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(wing, nil),
	)

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
	err := svc.Update(ctx, testTenant, "building-1", dto.UpdateResourceRequest{
		ParentResourceID: stringPtr("room-1"),
	})

	assert.Error(t, err)
	assert.True(t, failure.IsValidation(err))
}

func TestResourceService_AdjustInventory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := resourceMocks.NewMockResource(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockEvents := eventMocks.NewMockPublisher(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, mockEvents)

	consumable := newResource("gloves-1")
	consumable.Name = "Nitrile Gloves"
	consumable.Consumable = true
	consumable.QuantityOnHand = 12
	consumable.QuantityThreshold = 10

	tests := []struct {
		name      string
		id        string
		delta     int
		setupMock func()
		wantErr   bool
		errCheck  func(error) bool
		wantQty   int
	}{
		{
			name:  "successful decrement",
			id:    "gloves-1",
			delta: -2,
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(consumable, nil)

				updated := consumable
				updated.QuantityOnHand = 10

				mockRepo.EXPECT().
					AdjustQuantity(gomock.Any(), testTenant, "gloves-1", -2, gomock.Any()).
					Return(updated, nil)

				mockEvents.EXPECT().
					ResourceLowStock(gomock.Any(), gomock.Any())
			},
			wantQty: 10,
		},
		{
			name:  "insufficient stock",
			id:    "gloves-1",
			delta: -20,
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(consumable, nil)

				mockRepo.EXPECT().
					AdjustQuantity(gomock.Any(), testTenant, "gloves-1", -20, gomock.Any()).
					Return(model.Resource{}, repository.ErrQuantityConstraint())
			},
			wantErr:  true,
			errCheck: failure.IsInsufficientInventory,
		},
		{
			name:  "not a consumable",
			id:    "room-1",
			delta: -1,
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(newResource("room-1"), nil)
			},
			wantErr:  true,
			errCheck: failure.IsValidation,
		},
		{
			name:  "resource not found",
			id:    "missing",
			delta: -1,
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Resource{}, nil)
			},
			wantErr:  true,
			errCheck: failure.IsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
			res, err := svc.AdjustInventory(ctx, testTenant, tt.id, dto.AdjustInventoryRequest{Delta: tt.delta})

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errCheck != nil {
					assert.True(t, tt.errCheck(err))
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantQty, res.QuantityOnHand)
			}
		})
	}
}

func TestResourceService_AssignRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := resourceMocks.NewMockResource(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockEvents := eventMocks.NewMockPublisher(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	svc := service.New(mockRepo, cfg, mockCache, mockOtel, mockEvents)

	nurse := model.ResourceRole{ID: "role-nurse", TenantID: testTenant, Code: "nurse", Name: "Nurse", Active: true}

	tests := []struct {
		name      string
		setupMock func()
		wantErr   bool
		errCheck  func(error) bool
	}{
		{
			name: "successful assignment",
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newResource("res-1"), nil)
				mockRepo.EXPECT().GetRole(gomock.Any(), testTenant, "role-nurse").Return(nurse, nil)
				mockRepo.EXPECT().AssignmentExists(gomock.Any(), "res-1", "role-nurse").Return(false, nil)
				mockRepo.EXPECT().InsertAssignment(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "duplicate assignment",
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newResource("res-1"), nil)
				mockRepo.EXPECT().GetRole(gomock.Any(), testTenant, "role-nurse").Return(nurse, nil)
				mockRepo.EXPECT().AssignmentExists(gomock.Any(), "res-1", "role-nurse").Return(true, nil)
			},
			wantErr:  true,
			errCheck: failure.IsConflict,
		},
		{
			name: "inactive resource",
			setupMock: func() {
				inactive := newResource("res-1")
				inactive.Active = false
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(inactive, nil)
			},
			wantErr:  true,
			errCheck: failure.IsInactiveResource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
			err := svc.AssignRole(ctx, testTenant, "res-1", dto.AssignRoleRequest{RoleID: "role-nurse", Priority: 1})

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errCheck != nil {
					assert.True(t, tt.errCheck(err))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func stringPtr(s string) *string {
	return &s
}
