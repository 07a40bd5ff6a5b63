package model

import (
	"time"

	"clinicore/shared/model"
)

const (
	TableName  = "procedure_slots"
	EntityName = "procedure_slot"

	FieldID             = "id"
	FieldTenantID       = "tenant_id"
	FieldProcedureID    = "procedure_id"
	FieldStartAt        = "start_at"
	FieldEndAt          = "end_at"
	FieldStatus         = "status"
	FieldGenerationType = "generation_type"
	FieldCompletedAt    = "completed_at"
)

const (
	StatusAvailable = "available"
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
	StatusBlocked   = "blocked"

	GenerationManual = "manual"
	GenerationAuto   = "auto"
)

// ProcedureSlot is a candidate or booked window for one procedure instance.
// Manually generated slots are persisted up front; auto ones exist only in
// memory until a booking stores them.
type ProcedureSlot struct {
	ID             string     `db:"id"`
	TenantID       string     `db:"tenant_id"`
	ProcedureID    string     `db:"procedure_id"`
	StartAt        time.Time  `db:"start_at"`
	EndAt          time.Time  `db:"end_at"`
	Status         string     `db:"status"`
	GenerationType string     `db:"generation_type"`
	CompletedAt    *time.Time `db:"completed_at"`
	model.Metadata
}

// Assignment pins one resource to one role for a sub-window of a candidate.
// Quantity is the units consumed for consumables, always 1 otherwise.
// Capacity carries the concurrency bound in force so the booking transaction
// can re-verify it under lock.
type Assignment struct {
	RoleID        string    `json:"role_id"`
	ResourceID    string    `json:"resource_id"`
	ReservedStart time.Time `json:"reserved_start"`
	ReservedEnd   time.Time `json:"reserved_end"`
	Mode          string    `json:"reservation_mode"`
	Capacity      int       `json:"capacity"`
	Quantity      int       `json:"quantity"`
	Consumable    bool      `json:"consumable"`
}

// Candidate is one start the generator found workable, with the resources it
// picked per role.
type Candidate struct {
	StartAt     time.Time    `json:"start_at"`
	EndAt       time.Time    `json:"end_at"`
	Assignments []Assignment `json:"assignments"`
}
