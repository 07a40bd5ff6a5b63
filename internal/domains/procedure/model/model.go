package model

import (
	"clinicore/shared/failure"
	"clinicore/shared/model"
)

const (
	TableName  = "procedures"
	EntityName = "procedure"

	FieldID              = "id"
	FieldTenantID        = "tenant_id"
	FieldName            = "name"
	FieldKind            = "kind"
	FieldDurationMinutes = "duration_minutes"
	FieldBufferBefore    = "buffer_before"
	FieldBufferAfter     = "buffer_after"
	FieldActive          = "active"
)

const (
	CompositionTableName  = "procedure_compositions"
	CompositionEntityName = "procedure_composition"

	RequirementTableName  = "procedure_requirements"
	RequirementEntityName = "procedure_requirement"

	FieldProcedureID      = "procedure_id"
	FieldChildProcedureID = "child_procedure_id"
	FieldPosition         = "position"
	FieldGapAfterMinutes  = "gap_after_minutes"
	FieldRoleID           = "role_id"
)

const (
	KindAtomic    = "atomic"
	KindComposite = "composite"
)

// Procedure is a bookable service. An atomic procedure carries its own
// duration; a composite one derives duration from its ordered children.
type Procedure struct {
	ID              string `db:"id"`
	TenantID        string `db:"tenant_id"`
	Name            string `db:"name"`
	Kind            string `db:"kind"`
	DurationMinutes int    `db:"duration_minutes"`
	BufferBefore    int    `db:"buffer_before"`
	BufferAfter     int    `db:"buffer_after"`
	Active          bool   `db:"active"`
	model.Metadata
}

// ProcedureComposition is one ordered child of a composite procedure.
// GapAfterMinutes is idle time between this child and the next.
type ProcedureComposition struct {
	ID               string `db:"id"`
	ProcedureID      string `db:"procedure_id"`
	ChildProcedureID string `db:"child_procedure_id"`
	Position         int    `db:"position"`
	GapAfterMinutes  int    `db:"gap_after_minutes"`
	model.Metadata
}

// ProcedureRequirement states how many resources of a role the procedure
// needs. Offsets, when set, narrow the reservation to a sub-window of the
// slot, in minutes from slot start.
type ProcedureRequirement struct {
	ID          string `db:"id"`
	ProcedureID string `db:"procedure_id"`
	RoleID      string `db:"role_id"`
	QuantityMin int    `db:"quantity_min"`
	QuantityMax *int   `db:"quantity_max"`
	Required    bool   `db:"required"`
	OffsetStart *int   `db:"offset_start"`
	OffsetEnd   *int   `db:"offset_end"`
	model.Metadata
}

func (r *ProcedureRequirement) Validate() error {
	if r.QuantityMin < 1 {
		return failure.Validation("quantity_min must be at least 1")
	}

	if r.QuantityMax != nil && *r.QuantityMax < r.QuantityMin {
		return failure.Validation("quantity_max must not be below quantity_min")
	}

	if r.OffsetStart != nil && *r.OffsetStart < 0 {
		return failure.Validation("offset_start must not be negative")
	}

	if r.OffsetEnd != nil && *r.OffsetEnd < 0 {
		return failure.Validation("offset_end must not be negative")
	}

	if r.OffsetStart != nil && r.OffsetEnd != nil && *r.OffsetStart >= *r.OffsetEnd {
		return failure.Validation("offset_start must be before offset_end")
	}

	return nil
}

// Window resolves the requirement's reservation sub-window against a slot of
// totalMinutes. Missing offsets fall back to the slot bounds.
func (r *ProcedureRequirement) Window(totalMinutes int) (start, end int) {
	start = 0
	end = totalMinutes

	if r.OffsetStart != nil {
		start = *r.OffsetStart
	}

	if r.OffsetEnd != nil && *r.OffsetEnd < end {
		end = *r.OffsetEnd
	}

	return start, end
}
