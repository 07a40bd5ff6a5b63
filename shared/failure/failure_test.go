package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"clinicore/shared/failure"

	"github.com/stretchr/testify/assert"
)

func TestFailureCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind failure.Kind
	}{
		{"not found", failure.NotFound("resource"), http.StatusNotFound, failure.KindNotFound},
		{"validation", failure.Validation("quantity_min must not exceed quantity_max"), http.StatusBadRequest, failure.KindValidation},
		{"conflict", failure.Conflict("resource already reserved"), http.StatusConflict, failure.KindConflict},
		{"insufficient inventory", failure.InsufficientInventory("stock would go negative"), http.StatusUnprocessableEntity, failure.KindInsufficientInventory},
		{"inactive resource", failure.InactiveResource("resource is deactivated"), http.StatusUnprocessableEntity, failure.KindInactiveResource},
		{"storage", failure.Storage(errors.New("connection refused")), http.StatusInternalServerError, failure.KindStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, failure.GetCode(tt.err))
			assert.Equal(t, tt.wantKind, failure.GetKind(tt.err))
			assert.True(t, failure.IsKind(tt.err, tt.wantKind))
		})
	}
}

func TestGetCodeUntypedError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("boom")))
	assert.Equal(t, failure.KindStorage, failure.GetKind(errors.New("boom")))
}

func TestIsKindWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("create appointment: %w", failure.Conflict("room double-booked"))

	assert.True(t, failure.IsConflict(wrapped))
	assert.False(t, failure.IsNotFound(wrapped))
	assert.Equal(t, http.StatusConflict, failure.GetCode(wrapped))
}

func TestConflictWithDetails(t *testing.T) {
	details := []string{"2026-09-01T09:00:00Z", "2026-09-01T10:00:00Z"}
	err := failure.ConflictWithDetails("resource already reserved", details)

	var fail *failure.Failure
	assert.True(t, errors.As(err, &fail))
	assert.Equal(t, details, fail.Details)
}
