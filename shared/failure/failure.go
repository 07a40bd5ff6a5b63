package failure

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind discriminates business failures so callers can react to the category
// without parsing messages.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindValidation            Kind = "validation"
	KindConflict              Kind = "conflict"
	KindInsufficientInventory Kind = "insufficient_inventory"
	KindInactiveResource      Kind = "inactive_resource"
	KindUnauthorized          Kind = "unauthorized"
	KindStorage               Kind = "storage"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error returns the failure message.
func (e *Failure) Error() string {
	return e.Message
}

// NotFound returns a new Failure for an unknown entity id.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: entityName + " not found",
	}
}

// Validation returns a new Failure for malformed input or broken business invariants.
func Validation(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: msg,
	}
}

// Validationf returns a formatted Validation failure.
func Validationf(format string, args ...any) error {
	return Validation(fmt.Sprintf(format, args...))
}

// Conflict returns a new Failure for a double-booked resource or exceeded shared capacity.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// ConflictWithDetails returns a Conflict failure carrying a payload, used to
// hand alternative slot candidates back to the caller alongside the failure.
func ConflictWithDetails(message string, details any) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
		Details: details,
	}
}

// InsufficientInventory returns a new Failure for a consumable adjustment
// that would drive quantity on hand negative.
func InsufficientInventory(message string) error {
	return &Failure{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindInsufficientInventory,
		Message: message,
	}
}

// InactiveResource returns a new Failure for an operation against a deactivated
// resource or procedure.
func InactiveResource(message string) error {
	return &Failure{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindInactiveResource,
		Message: message,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Kind:    KindUnauthorized,
		Message: msg,
	}
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Kind:    KindValidation,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return Validation(msg)
}

// Storage wraps a storage-layer error (connectivity, constraint violations not
// covered by the business taxonomy). Retry policy belongs to the caller.
func Storage(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Kind:    KindStorage,
			Message: err.Error(),
		}
	}

	return nil
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		}
	}

	return nil
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetDetails returns the payload attached to a failure, or nil.
func GetDetails(err error) any {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Details
	}

	return nil
}

// GetKind returns the failure kind, or KindStorage for untyped errors.
func GetKind(err error) Kind {
	var fail *Failure
	if errors.As(err, &fail) && fail.Kind != "" {
		return fail.Kind
	}

	return KindStorage
}

// IsKind reports whether err is a Failure of the given kind.
func IsKind(err error, kind Kind) bool {
	var fail *Failure

	return errors.As(err, &fail) && fail.Kind == kind
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// IsConflict reports whether err is a conflict failure.
func IsConflict(err error) bool { return IsKind(err, KindConflict) }

// IsInsufficientInventory reports whether err is an inventory failure.
func IsInsufficientInventory(err error) bool { return IsKind(err, KindInsufficientInventory) }

// IsInactiveResource reports whether err is an inactive-resource failure.
func IsInactiveResource(err error) bool { return IsKind(err, KindInactiveResource) }
