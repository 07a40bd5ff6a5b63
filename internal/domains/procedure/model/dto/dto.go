package dto

import (
	"clinicore/internal/domains/procedure/model"
	"clinicore/shared"
	gDto "clinicore/shared/dto"
	gModel "clinicore/shared/model"
	"clinicore/shared/timezone"

	"github.com/google/uuid"
)

type CreateProcedureRequest struct {
	Name            string `json:"name"             validate:"required,max=150"`
	Kind            string `json:"kind"             validate:"required,oneof=atomic composite"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0"`
	BufferBefore    int    `json:"buffer_before"    validate:"gte=0"`
	BufferAfter     int    `json:"buffer_after"     validate:"gte=0"`
}

func (c *CreateProcedureRequest) ToModel(tenantID, user string) model.Procedure {
	return model.Procedure{
		ID:              uuid.NewString(),
		TenantID:        tenantID,
		Name:            c.Name,
		Kind:            c.Kind,
		DurationMinutes: c.DurationMinutes,
		BufferBefore:    c.BufferBefore,
		BufferAfter:     c.BufferAfter,
		Active:          true,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateProcedureRequest struct {
	Name            string `db:"name"             json:"name"             validate:"omitempty,max=150"`
	DurationMinutes int    `db:"duration_minutes" json:"duration_minutes" validate:"omitempty,gte=0"`
	BufferBefore    int    `db:"buffer_before"    json:"buffer_before"    validate:"omitempty,gte=0"`
	BufferAfter     int    `db:"buffer_after"     json:"buffer_after"     validate:"omitempty,gte=0"`
}

type CompositionItem struct {
	ChildProcedureID string `json:"child_procedure_id" validate:"required,uuid"`
	GapAfterMinutes  int    `json:"gap_after_minutes"  validate:"gte=0"`
}

type SetCompositionRequest struct {
	Children []CompositionItem `json:"children" validate:"required,min=1,dive"`
}

func (s *SetCompositionRequest) ToModels(procedureID, user string) []model.ProcedureComposition {
	now := timezone.Now()

	items := make([]model.ProcedureComposition, len(s.Children))
	for i, child := range s.Children {
		items[i] = model.ProcedureComposition{
			ID:               uuid.NewString(),
			ProcedureID:      procedureID,
			ChildProcedureID: child.ChildProcedureID,
			Position:         i,
			GapAfterMinutes:  child.GapAfterMinutes,
			Metadata: gModel.Metadata{
				CreatedAt:  now,
				ModifiedAt: now,
				CreatedBy:  user,
				ModifiedBy: user,
			},
		}
	}

	return items
}

type AddRequirementRequest struct {
	RoleID      string `json:"role_id"      validate:"required,uuid"`
	QuantityMin int    `json:"quantity_min" validate:"required,gte=1"`
	QuantityMax *int   `json:"quantity_max" validate:"omitempty,gte=1"`
	Required    bool   `json:"required"`
	OffsetStart *int   `json:"offset_start" validate:"omitempty,gte=0"`
	OffsetEnd   *int   `json:"offset_end"   validate:"omitempty,gte=0"`
}

func (a *AddRequirementRequest) ToModel(procedureID, user string) model.ProcedureRequirement {
	return model.ProcedureRequirement{
		ID:          uuid.NewString(),
		ProcedureID: procedureID,
		RoleID:      a.RoleID,
		QuantityMin: a.QuantityMin,
		QuantityMax: a.QuantityMax,
		Required:    a.Required,
		OffsetStart: a.OffsetStart,
		OffsetEnd:   a.OffsetEnd,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type CompositionResponse struct {
	ChildProcedureID string `json:"child_procedure_id"`
	Position         int    `json:"position"`
	GapAfterMinutes  int    `json:"gap_after_minutes"`
}

type RequirementResponse struct {
	ID          string `json:"id"`
	RoleID      string `json:"role_id"`
	QuantityMin int    `json:"quantity_min"`
	QuantityMax *int   `json:"quantity_max,omitempty"`
	Required    bool   `json:"required"`
	OffsetStart *int   `json:"offset_start,omitempty"`
	OffsetEnd   *int   `json:"offset_end,omitempty"`
}

func (r *RequirementResponse) FromModel(mod model.ProcedureRequirement) {
	r.ID = mod.ID
	r.RoleID = mod.RoleID
	r.QuantityMin = mod.QuantityMin
	r.QuantityMax = mod.QuantityMax
	r.Required = mod.Required
	r.OffsetStart = mod.OffsetStart
	r.OffsetEnd = mod.OffsetEnd
}

type ProcedureResponse struct {
	ID              string                `json:"id"`
	TenantID        string                `json:"tenant_id"`
	Name            string                `json:"name"`
	Kind            string                `json:"kind"`
	DurationMinutes int                   `json:"duration_minutes"`
	BufferBefore    int                   `json:"buffer_before"`
	BufferAfter     int                   `json:"buffer_after"`
	Active          bool                  `json:"active"`
	Compositions    []CompositionResponse `json:"compositions,omitempty"`
	Requirements    []RequirementResponse `json:"requirements,omitempty"`
	gDto.Metadata
}

func (p *ProcedureResponse) FromModel(mod model.Procedure) {
	p.ID = mod.ID
	p.TenantID = mod.TenantID
	p.Name = mod.Name
	p.Kind = mod.Kind
	p.DurationMinutes = mod.DurationMinutes
	p.BufferBefore = mod.BufferBefore
	p.BufferAfter = mod.BufferAfter
	p.Active = mod.Active
	p.Metadata.FromModel(mod.Metadata)
}

func (p *ProcedureResponse) AttachDetails(compositions []model.ProcedureComposition, requirements []model.ProcedureRequirement) {
	p.Compositions = make([]CompositionResponse, len(compositions))
	for i, comp := range compositions {
		p.Compositions[i] = CompositionResponse{
			ChildProcedureID: comp.ChildProcedureID,
			Position:         comp.Position,
			GapAfterMinutes:  comp.GapAfterMinutes,
		}
	}

	p.Requirements = make([]RequirementResponse, len(requirements))
	for i, req := range requirements {
		p.Requirements[i].FromModel(req)
	}
}

type GetProceduresResponse struct {
	Procedures []ProcedureResponse `json:"procedures"`
	TotalPage  int                 `json:"total_page"`
	TotalData  int                 `json:"total_data"`
}

func (g *GetProceduresResponse) FromModels(models []model.Procedure, totalData, limit int) {
	g.TotalData = totalData
	g.TotalPage = shared.CalculateTotalPage(totalData, limit)

	g.Procedures = make([]ProcedureResponse, len(models))
	for i, mod := range models {
		g.Procedures[i].FromModel(mod)
	}
}

type TotalDurationResponse struct {
	ProcedureID   string `json:"procedure_id"`
	TotalDuration int    `json:"total_duration_minutes"`
}
