package dto

import (
	"time"

	"clinicore/internal/domains/slot/model"
)

type SlotPreference struct {
	ResourceID string `json:"resource_id" validate:"required,uuid"`
	Kind       string `json:"kind" validate:"required,oneof=preferred required"`
}

type GenerateSlotsRequest struct {
	ProcedureID        string           `json:"procedure_id" validate:"required,uuid"`
	From               time.Time        `json:"from" validate:"required"`
	To                 time.Time        `json:"to" validate:"required"`
	GranularityMinutes int              `json:"granularity_minutes" validate:"omitempty,min=1"`
	Persist            bool             `json:"persist"`
	Preferences        []SlotPreference `json:"preferences" validate:"omitempty,dive"`
}

type CandidateResponse struct {
	SlotID      *string            `json:"slot_id,omitempty"`
	StartAt     time.Time          `json:"start_at"`
	EndAt       time.Time          `json:"end_at"`
	Assignments []model.Assignment `json:"assignments"`
}

type GenerateSlotsResponse struct {
	ProcedureID string              `json:"procedure_id"`
	Candidates  []CandidateResponse `json:"candidates"`
}

type SlotResponse struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenant_id"`
	ProcedureID    string     `json:"procedure_id"`
	StartAt        time.Time  `json:"start_at"`
	EndAt          time.Time  `json:"end_at"`
	Status         string     `json:"status"`
	GenerationType string     `json:"generation_type"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (dto *SlotResponse) FromModel(slot model.ProcedureSlot) {
	dto.ID = slot.ID
	dto.TenantID = slot.TenantID
	dto.ProcedureID = slot.ProcedureID
	dto.StartAt = slot.StartAt
	dto.EndAt = slot.EndAt
	dto.Status = slot.Status
	dto.GenerationType = slot.GenerationType
	dto.CompletedAt = slot.CompletedAt
	dto.CreatedAt = slot.CreatedAt
}

type GetSlotsResponse struct {
	Slots []SlotResponse `json:"slots"`
	Total int            `json:"total"`
}

func (dto *GetSlotsResponse) FromModels(slots []model.ProcedureSlot, total int) {
	dto.Slots = make([]SlotResponse, 0, len(slots))
	dto.Total = total

	for _, slot := range slots {
		var item SlotResponse

		item.FromModel(slot)
		dto.Slots = append(dto.Slots, item)
	}
}
