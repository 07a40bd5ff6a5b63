package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"clinicore/shared/model"
)

const (
	TableName  = "resources"
	EntityName = "resource"

	FieldID                = "id"
	FieldTenantID          = "tenant_id"
	FieldSubtypeID         = "subtype_id"
	FieldName              = "name"
	FieldReservationMode   = "reservation_mode"
	FieldMaxConcurrent     = "max_concurrent"
	FieldParentResourceID  = "parent_resource_id"
	FieldConsumable        = "consumable"
	FieldQuantityOnHand    = "quantity_on_hand"
	FieldQuantityThreshold = "quantity_threshold"
	FieldStaffID           = "staff_id"
	FieldActive            = "active"
	FieldConfig            = "config"
)

const (
	TypeTableName    = "resource_types"
	TypeEntityName   = "resource_type"
	SubtypeTableName = "resource_subtypes"
	SubtypeEntity    = "resource_subtype"

	RoleTableName  = "resource_roles"
	RoleEntityName = "resource_role"

	AssignmentTableName  = "resource_role_assignments"
	AssignmentEntityName = "resource_role_assignment"

	FieldRoleID     = "role_id"
	FieldResourceID = "resource_id"
	FieldPriority   = "priority"
	FieldCode       = "code"
	FieldTypeID     = "type_id"
)

const (
	ReservationModeExclusive = "exclusive"
	ReservationModeShared    = "shared"
)

var ErrInvalidJSONColumn = errors.New("unsupported type for json column")

// JSONMap is a jsonb column holding a flat key/value configuration.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}

	return json.Marshal(m) //nolint:wrapcheck
}

func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = nil

		return nil
	}

	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m) //nolint:wrapcheck
	case string:
		return json.Unmarshal([]byte(v), m) //nolint:wrapcheck
	default:
		return fmt.Errorf("%w: %T", ErrInvalidJSONColumn, src)
	}
}

// ConfigSchema declares per-subtype configuration keys with their expected
// kind (string, number or bool). Resource config is validated against it at
// write time instead of carrying a free-form bag.
type ConfigSchema map[string]string

const (
	ConfigKindString = "string"
	ConfigKindNumber = "number"
	ConfigKindBool   = "bool"
)

func (s ConfigSchema) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}

	return json.Marshal(s) //nolint:wrapcheck
}

func (s *ConfigSchema) Scan(src any) error {
	if src == nil {
		*s = nil

		return nil
	}

	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s) //nolint:wrapcheck
	case string:
		return json.Unmarshal([]byte(v), s) //nolint:wrapcheck
	default:
		return fmt.Errorf("%w: %T", ErrInvalidJSONColumn, src)
	}
}

// ValidateConfig checks a resource config against the schema. Unknown keys and
// kind mismatches are rejected.
func (s ConfigSchema) ValidateConfig(config JSONMap) error {
	for key, value := range config {
		kind, ok := s[key]
		if !ok {
			return fmt.Errorf("config key %q is not declared by the subtype schema", key)
		}

		switch kind {
		case ConfigKindString:
			if _, ok := value.(string); !ok {
				return fmt.Errorf("config key %q must be a string", key)
			}
		case ConfigKindNumber:
			switch value.(type) {
			case float64, int, int64:
			default:
				return fmt.Errorf("config key %q must be a number", key)
			}
		case ConfigKindBool:
			if _, ok := value.(bool); !ok {
				return fmt.Errorf("config key %q must be a bool", key)
			}
		default:
			return fmt.Errorf("subtype schema declares unknown kind %q for key %q", kind, key)
		}
	}

	return nil
}

// ResourceType is the top level of the classification taxonomy.
type ResourceType struct {
	ID   string `db:"id"`
	Code string `db:"code"`
	Name string `db:"name"`
	model.Metadata
}

// ResourceSubtype belongs to exactly one type; every resource belongs to
// exactly one subtype.
type ResourceSubtype struct {
	ID           string       `db:"id"`
	TypeID       string       `db:"type_id"`
	Code         string       `db:"code"`
	Name         string       `db:"name"`
	ConfigSchema ConfigSchema `db:"config_schema"`
	model.Metadata
}

// Resource is a bookable unit: a person, room, piece of equipment or
// consumable stock.
type Resource struct {
	ID                string  `db:"id"`
	TenantID          string  `db:"tenant_id"`
	SubtypeID         string  `db:"subtype_id"`
	Name              string  `db:"name"`
	ReservationMode   string  `db:"reservation_mode"`
	MaxConcurrent     int     `db:"max_concurrent"`
	ParentResourceID  *string `db:"parent_resource_id"`
	Consumable        bool    `db:"consumable"`
	QuantityOnHand    int     `db:"quantity_on_hand"`
	QuantityThreshold int     `db:"quantity_threshold"`
	StaffID           *string `db:"staff_id"`
	Active            bool    `db:"active"`
	Config            JSONMap `db:"config"`
	model.Metadata
}

// EffectiveCapacity returns the concurrency bound for the resource's default
// reservation mode: 1 for exclusive, max_concurrent for shared.
func (r *Resource) EffectiveCapacity() int {
	if r.ReservationMode == ReservationModeExclusive {
		return 1
	}

	return r.MaxConcurrent
}

// ResourceRole is a named capability a procedure can require.
type ResourceRole struct {
	ID       string `db:"id"`
	TenantID string `db:"tenant_id"`
	Code     string `db:"code"`
	Name     string `db:"name"`
	Active   bool   `db:"active"`
	model.Metadata
}

// ResourceRoleAssignment links a resource to a role it can fill; lower
// priority wins when the slot generator has to choose.
type ResourceRoleAssignment struct {
	ID         string `db:"id"`
	ResourceID string `db:"resource_id"`
	RoleID     string `db:"role_id"`
	Priority   int    `db:"priority"`
	model.Metadata
}
