package model

import (
	"time"

	"clinicore/shared/failure"
	"clinicore/shared/model"
)

const (
	TableName  = "appointments"
	EntityName = "appointment"

	FieldID          = "id"
	FieldTenantID    = "tenant_id"
	FieldSlotID      = "slot_id"
	FieldContactID   = "contact_id"
	FieldStatus      = "status"
	FieldNotes       = "notes"
	FieldCancelledAt = "cancelled_at"
	FieldCompletedAt = "completed_at"
)

const (
	ResourceTableName  = "appointment_resources"
	ResourceEntityName = "appointment_resource"

	PreferenceTableName  = "appointment_preferences"
	PreferenceEntityName = "appointment_preference"

	FieldAppointmentID = "appointment_id"
	FieldResourceID    = "resource_id"
	FieldRoleID        = "role_id"
	FieldReservedStart = "reserved_start"
	FieldReservedEnd   = "reserved_end"
	FieldQuantity      = "quantity"
	FieldStrength      = "strength"
)

const (
	StatusScheduled  = "scheduled"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked_in"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"

	PreferencePreferred = "preferred"
	PreferenceRequired  = "required"
)

// transitions is the forward path of the lifecycle; cancellation and no-show
// are reachable from any non-terminal state.
var transitions = map[string]string{
	StatusScheduled:  StatusConfirmed,
	StatusConfirmed:  StatusCheckedIn,
	StatusCheckedIn:  StatusInProgress,
	StatusInProgress: StatusCompleted,
}

func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled || status == StatusNoShow
}

// ValidateTransition reports whether from → to is a legal lifecycle step.
func ValidateTransition(from, to string) error {
	if IsTerminal(from) {
		return failure.Validation("appointment is already in a terminal state")
	}

	if to == StatusCancelled || to == StatusNoShow {
		return nil
	}

	if transitions[from] != to {
		return failure.Validation("invalid appointment status transition")
	}

	return nil
}

// ActiveStatuses are the reservation-holding states counted in overlap and
// capacity checks.
func ActiveStatuses() []string {
	return []string{StatusScheduled, StatusConfirmed, StatusCheckedIn, StatusInProgress, StatusCompleted}
}

type Appointment struct {
	ID          string     `db:"id"`
	TenantID    string     `db:"tenant_id"`
	SlotID      string     `db:"slot_id"`
	ContactID   *string    `db:"contact_id"`
	Status      string     `db:"status"`
	Notes       *string    `db:"notes"`
	CancelledAt *time.Time `db:"cancelled_at"`
	CompletedAt *time.Time `db:"completed_at"`
	model.Metadata
}

// AppointmentResource is the reservation itself: a resource held for a role
// over a sub-window, with quantity for consumables.
type AppointmentResource struct {
	ID              string    `db:"id"`
	AppointmentID   string    `db:"appointment_id"`
	ResourceID      string    `db:"resource_id"`
	RoleID          string    `db:"role_id"`
	ReservedStart   time.Time `db:"reserved_start"`
	ReservedEnd     time.Time `db:"reserved_end"`
	ReservationMode string    `db:"reservation_mode"`
	Status          string    `db:"status"`
	Quantity        int       `db:"quantity"`
	model.Metadata
}

// AppointmentPreference records a role→resource wish considered only at
// booking time.
type AppointmentPreference struct {
	ID            string `db:"id"`
	AppointmentID string `db:"appointment_id"`
	RoleID        string `db:"role_id"`
	ResourceID    string `db:"resource_id"`
	Strength      string `db:"strength"`
	model.Metadata
}
