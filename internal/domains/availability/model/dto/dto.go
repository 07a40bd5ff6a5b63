package dto

import (
	"time"

	"clinicore/internal/domains/availability/model"
	gDto "clinicore/shared/dto"
	gModel "clinicore/shared/model"
	"clinicore/shared/timezone"

	"github.com/google/uuid"
)

type CreateAvailabilityRequest struct {
	ResourceID   string                  `json:"resource_id"   validate:"required,uuid"`
	StartAt      time.Time               `json:"start_at"      validate:"required"`
	EndAt        time.Time               `json:"end_at"        validate:"required"`
	Kind         string                  `json:"kind"          validate:"required,oneof=available blocked"`
	Recurrence   *model.RecurrenceColumn `json:"recurrence"`
	RangeType    string                  `json:"range_type"    validate:"required,oneof=no_end end_date count"`
	RangeEnd     *time.Time              `json:"range_end"`
	RangeCount   *int                    `json:"range_count"   validate:"omitempty,gte=1"`
	OverrideMode *string                 `json:"override_mode" validate:"omitempty,oneof=exclusive shared"`
	OverrideMax  *int                    `json:"override_max"  validate:"omitempty,gte=1"`
}

func (c *CreateAvailabilityRequest) ToModel(tenantID, user string) model.ResourceAvailability {
	availability := model.ResourceAvailability{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		ResourceID:   c.ResourceID,
		StartAt:      c.StartAt,
		EndAt:        c.EndAt,
		Kind:         c.Kind,
		RangeType:    c.RangeType,
		RangeEnd:     c.RangeEnd,
		RangeCount:   c.RangeCount,
		OverrideMode: c.OverrideMode,
		OverrideMax:  c.OverrideMax,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}

	if c.Recurrence != nil {
		availability.Recurrence = *c.Recurrence
	}

	return availability
}

type EffectiveWindowsRequest struct {
	ResourceIDs []string  `json:"resource_ids" validate:"required,min=1,dive,uuid"`
	From        time.Time `json:"from"         validate:"required"`
	To          time.Time `json:"to"           validate:"required"`
}

type AvailabilityResponse struct {
	ID           string                 `json:"id"`
	ResourceID   string                 `json:"resource_id"`
	StartAt      time.Time              `json:"start_at"`
	EndAt        time.Time              `json:"end_at"`
	Kind         string                 `json:"kind"`
	Recurrence   model.RecurrenceColumn `json:"recurrence,omitempty"`
	RangeType    string                 `json:"range_type"`
	RangeEnd     *time.Time             `json:"range_end,omitempty"`
	RangeCount   *int                   `json:"range_count,omitempty"`
	OverrideMode *string                `json:"override_mode,omitempty"`
	OverrideMax  *int                   `json:"override_max,omitempty"`
	gDto.Metadata
}

func (r *AvailabilityResponse) FromModel(mod model.ResourceAvailability) {
	r.ID = mod.ID
	r.ResourceID = mod.ResourceID
	r.StartAt = mod.StartAt
	r.EndAt = mod.EndAt
	r.Kind = mod.Kind
	r.Recurrence = mod.Recurrence
	r.RangeType = mod.RangeType
	r.RangeEnd = mod.RangeEnd
	r.RangeCount = mod.RangeCount
	r.OverrideMode = mod.OverrideMode
	r.OverrideMax = mod.OverrideMax
	r.Metadata.FromModel(mod.Metadata)
}

type GetAvailabilitiesResponse struct {
	Availabilities []AvailabilityResponse `json:"availabilities"`
}

func (g *GetAvailabilitiesResponse) FromModels(models []model.ResourceAvailability) {
	g.Availabilities = make([]AvailabilityResponse, len(models))
	for i, mod := range models {
		g.Availabilities[i].FromModel(mod)
	}
}

type EffectiveWindowsResponse struct {
	Windows []model.EffectiveWindow `json:"windows"`
}
