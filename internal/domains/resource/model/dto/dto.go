package dto

import (
	"clinicore/internal/domains/resource/model"
	"clinicore/shared"
	gDto "clinicore/shared/dto"
	gModel "clinicore/shared/model"
	"clinicore/shared/timezone"

	"github.com/google/uuid"
)

type CreateResourceRequest struct {
	SubtypeID         string        `json:"subtype_id"         validate:"required,uuid"`
	Name              string        `json:"name"               validate:"required,max=150"`
	ReservationMode   string        `json:"reservation_mode"   validate:"required,oneof=exclusive shared"`
	MaxConcurrent     int           `json:"max_concurrent"     validate:"omitempty,gte=1"`
	ParentResourceID  *string       `json:"parent_resource_id" validate:"omitempty,uuid"`
	Consumable        bool          `json:"consumable"`
	QuantityOnHand    int           `json:"quantity_on_hand"   validate:"gte=0"`
	QuantityThreshold int           `json:"quantity_threshold" validate:"gte=0"`
	StaffID           *string       `json:"staff_id"           validate:"omitempty"`
	Config            model.JSONMap `json:"config"`
}

func (c *CreateResourceRequest) ToModel(tenantID, user string) model.Resource {
	maxConcurrent := c.MaxConcurrent
	if c.ReservationMode == model.ReservationModeExclusive || maxConcurrent == 0 {
		maxConcurrent = 1
	}

	return model.Resource{
		ID:                uuid.NewString(),
		TenantID:          tenantID,
		SubtypeID:         c.SubtypeID,
		Name:              c.Name,
		ReservationMode:   c.ReservationMode,
		MaxConcurrent:     maxConcurrent,
		ParentResourceID:  c.ParentResourceID,
		Consumable:        c.Consumable,
		QuantityOnHand:    c.QuantityOnHand,
		QuantityThreshold: c.QuantityThreshold,
		StaffID:           c.StaffID,
		Active:            true,
		Config:            c.Config,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateResourceRequest struct {
	Name              string        `db:"name"               json:"name"               validate:"omitempty,max=150"`
	ReservationMode   string        `db:"reservation_mode"   json:"reservation_mode"   validate:"omitempty,oneof=exclusive shared"`
	MaxConcurrent     int           `db:"max_concurrent"     json:"max_concurrent"     validate:"omitempty,gte=1"`
	ParentResourceID  *string       `db:"parent_resource_id" json:"parent_resource_id" validate:"omitempty,uuid"`
	QuantityThreshold int           `db:"quantity_threshold" json:"quantity_threshold" validate:"omitempty,gte=0"`
	StaffID           *string       `db:"staff_id"           json:"staff_id"           validate:"omitempty"`
	Config            model.JSONMap `db:"config"             json:"config"             validate:"omitempty"`
}

type CreateRoleRequest struct {
	Code string `json:"code" validate:"required,max=60"`
	Name string `json:"name" validate:"required,max=150"`
}

func (c *CreateRoleRequest) ToModel(tenantID, user string) model.ResourceRole {
	return model.ResourceRole{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Code:     c.Code,
		Name:     c.Name,
		Active:   true,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type AssignRoleRequest struct {
	RoleID   string `json:"role_id"  validate:"required,uuid"`
	Priority int    `json:"priority" validate:"gte=0"`
}

type AdjustInventoryRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type ResourceResponse struct {
	ID                string        `json:"id"`
	TenantID          string        `json:"tenant_id"`
	SubtypeID         string        `json:"subtype_id"`
	Name              string        `json:"name"`
	ReservationMode   string        `json:"reservation_mode"`
	MaxConcurrent     int           `json:"max_concurrent"`
	ParentResourceID  *string       `json:"parent_resource_id,omitempty"`
	Consumable        bool          `json:"consumable"`
	QuantityOnHand    int           `json:"quantity_on_hand"`
	QuantityThreshold int           `json:"quantity_threshold"`
	StaffID           *string       `json:"staff_id,omitempty"`
	Active            bool          `json:"active"`
	Config            model.JSONMap `json:"config,omitempty"`
	gDto.Metadata
}

func (r *ResourceResponse) FromModel(mod model.Resource) {
	r.ID = mod.ID
	r.TenantID = mod.TenantID
	r.SubtypeID = mod.SubtypeID
	r.Name = mod.Name
	r.ReservationMode = mod.ReservationMode
	r.MaxConcurrent = mod.MaxConcurrent
	r.ParentResourceID = mod.ParentResourceID
	r.Consumable = mod.Consumable
	r.QuantityOnHand = mod.QuantityOnHand
	r.QuantityThreshold = mod.QuantityThreshold
	r.StaffID = mod.StaffID
	r.Active = mod.Active
	r.Config = mod.Config
	r.Metadata.FromModel(mod.Metadata)
}

type GetResourcesResponse struct {
	Resources []ResourceResponse `json:"resources"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetResourcesResponse) FromModels(models []model.Resource, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Resources = make([]ResourceResponse, len(models))
	for i, mod := range models {
		r.Resources[i].FromModel(mod)
	}
}

type RoleResponse struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	gDto.Metadata
}

func (r *RoleResponse) FromModel(mod model.ResourceRole) {
	r.ID = mod.ID
	r.Code = mod.Code
	r.Name = mod.Name
	r.Active = mod.Active
	r.Metadata.FromModel(mod.Metadata)
}
