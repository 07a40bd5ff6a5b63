package dto

import (
	"time"

	"clinicore/internal/domains/appointment/model"
	"clinicore/shared/failure"
)

type PreferenceItem struct {
	RoleID     string `json:"role_id" validate:"omitempty,uuid"`
	ResourceID string `json:"resource_id" validate:"required,uuid"`
	Strength   string `json:"strength" validate:"required,oneof=preferred required"`
}

// CreateAppointmentRequest books a procedure either against a persisted slot
// or against an ad hoc start time. Exactly one of the two forms must be used.
type CreateAppointmentRequest struct {
	SlotID      *string          `json:"slot_id" validate:"omitempty,uuid"`
	ProcedureID *string          `json:"procedure_id" validate:"omitempty,uuid"`
	StartAt     *time.Time       `json:"start_at"`
	ContactID   *string          `json:"contact_id" validate:"omitempty,uuid"`
	Notes       *string          `json:"notes" validate:"omitempty,max=2000"`
	Preferences []PreferenceItem `json:"preferences" validate:"omitempty,dive"`
}

func (req *CreateAppointmentRequest) Validate() error {
	if req.SlotID != nil && req.ProcedureID != nil {
		return failure.Validation("slot_id and procedure_id are mutually exclusive")
	}

	if req.SlotID == nil && (req.ProcedureID == nil || req.StartAt == nil) {
		return failure.Validation("either slot_id or procedure_id with start_at is required")
	}

	return nil
}

type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed checked_in in_progress completed cancelled no_show"`
}

type ReservationResponse struct {
	ID              string    `json:"id"`
	ResourceID      string    `json:"resource_id"`
	RoleID          string    `json:"role_id"`
	ReservedStart   time.Time `json:"reserved_start"`
	ReservedEnd     time.Time `json:"reserved_end"`
	ReservationMode string    `json:"reservation_mode"`
	Status          string    `json:"status"`
	Quantity        int       `json:"quantity"`
}

type PreferenceResponse struct {
	ID         string `json:"id"`
	RoleID     string `json:"role_id"`
	ResourceID string `json:"resource_id"`
	Strength   string `json:"strength"`
}

type AppointmentResponse struct {
	ID          string                `json:"id"`
	TenantID    string                `json:"tenant_id"`
	SlotID      string                `json:"slot_id"`
	ContactID   *string               `json:"contact_id,omitempty"`
	Status      string                `json:"status"`
	Notes       *string               `json:"notes,omitempty"`
	CancelledAt *time.Time            `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	Resources   []ReservationResponse `json:"resources,omitempty"`
	Preferences []PreferenceResponse  `json:"preferences,omitempty"`
}

func (dto *AppointmentResponse) FromModel(appointment model.Appointment) {
	dto.ID = appointment.ID
	dto.TenantID = appointment.TenantID
	dto.SlotID = appointment.SlotID
	dto.ContactID = appointment.ContactID
	dto.Status = appointment.Status
	dto.Notes = appointment.Notes
	dto.CancelledAt = appointment.CancelledAt
	dto.CompletedAt = appointment.CompletedAt
	dto.CreatedAt = appointment.CreatedAt
}

func (dto *AppointmentResponse) AttachDetails(resources []model.AppointmentResource, preferences []model.AppointmentPreference) {
	dto.Resources = make([]ReservationResponse, 0, len(resources))
	dto.Preferences = make([]PreferenceResponse, 0, len(preferences))

	for _, resource := range resources {
		dto.Resources = append(dto.Resources, ReservationResponse{
			ID:              resource.ID,
			ResourceID:      resource.ResourceID,
			RoleID:          resource.RoleID,
			ReservedStart:   resource.ReservedStart,
			ReservedEnd:     resource.ReservedEnd,
			ReservationMode: resource.ReservationMode,
			Status:          resource.Status,
			Quantity:        resource.Quantity,
		})
	}

	for _, preference := range preferences {
		dto.Preferences = append(dto.Preferences, PreferenceResponse{
			ID:         preference.ID,
			RoleID:     preference.RoleID,
			ResourceID: preference.ResourceID,
			Strength:   preference.Strength,
		})
	}
}

type GetAppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

func (dto *GetAppointmentsResponse) FromModels(appointments []model.Appointment, total int) {
	dto.Appointments = make([]AppointmentResponse, 0, len(appointments))
	dto.Total = total

	for _, appointment := range appointments {
		var item AppointmentResponse

		item.FromModel(appointment)
		dto.Appointments = append(dto.Appointments, item)
	}
}
