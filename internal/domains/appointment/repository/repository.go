package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicore/infras/otel"
	"clinicore/infras/postgres"
	"clinicore/internal/domains/appointment/model"
	"clinicore/shared/constant"
	gDto "clinicore/shared/dto"
	"clinicore/shared/logger"
	gRepo "clinicore/shared/repository"
	"clinicore/shared/timezone"

	"github.com/jmoiron/sqlx"
)

var errStockConstraint = errors.New("stock decrement rejected")

// ErrStockConstraint reports a consumable decrement that would have driven
// quantity on hand below zero.
func ErrStockConstraint() error { return errStockConstraint }

func IsStockConstraint(err error) bool { return errors.Is(err, errStockConstraint) }

type Appointment interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Appointment, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Appointment, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error

	GetResources(ctx context.Context, appointmentID string) ([]model.AppointmentResource, error)
	GetPreferences(ctx context.Context, appointmentID string) ([]model.AppointmentPreference, error)

	// Overlapping returns every reservation-holding row on the given
	// resources that intersects [from, to).
	Overlapping(ctx context.Context, tenantID string, resourceIDs []string, from, to time.Time) ([]model.AppointmentResource, error)

	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	LockResourcesTx(ctx context.Context, tx *sqlx.Tx, resourceIDs []string) error
	OverlappingTx(ctx context.Context, tx *sqlx.Tx, tenantID string, resourceIDs []string, from, to time.Time) ([]model.AppointmentResource, error)
	DecrementStockTx(ctx context.Context, tx *sqlx.Tx, tenantID, resourceID string, quantity int, user string) error
	InsertTx(ctx context.Context, tx *sqlx.Tx, appointment model.Appointment) error
	InsertResourcesTx(ctx context.Context, tx *sqlx.Tx, resources []model.AppointmentResource) error
	InsertPreferencesTx(ctx context.Context, tx *sqlx.Tx, preferences []model.AppointmentPreference) error
	UpdateTx(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	UpdateResourcesTx(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Appointment]
	resources   gRepo.Repository[model.AppointmentResource]
	preferences gRepo.Repository[model.AppointmentPreference]
	db          *postgres.Connection
	otel        otel.Otel
}

func New(db *postgres.Connection, otl otel.Otel) Appointment {
	return &repositoryImpl{
		Repository:  gRepo.NewRepository[model.Appointment](model.EntityName, model.TableName, model.FieldID, db, otl),
		resources:   gRepo.NewRepository[model.AppointmentResource](model.ResourceEntityName, model.ResourceTableName, model.FieldID, db, otl),
		preferences: gRepo.NewRepository[model.AppointmentPreference](model.PreferenceEntityName, model.PreferenceTableName, model.FieldID, db, otl),
		db:          db,
		otel:        otl,
	}
}

func (repo *repositoryImpl) GetResources(ctx context.Context, appointmentID string) ([]model.AppointmentResource, error) {
	return repo.resources.GetAll(ctx,
		gDto.QueryParams{SortBy: model.FieldReservedStart, SortDir: "ASC"},
		gDto.FilterGroup{
			Filters: []any{
				gDto.Filter{Field: model.FieldAppointmentID, Value: appointmentID, Operator: gDto.FilterOperatorEq, Table: model.ResourceTableName},
			},
		})
}

func (repo *repositoryImpl) GetPreferences(ctx context.Context, appointmentID string) ([]model.AppointmentPreference, error) {
	return repo.preferences.GetAll(ctx,
		gDto.QueryParams{},
		gDto.FilterGroup{
			Filters: []any{
				gDto.Filter{Field: model.FieldAppointmentID, Value: appointmentID, Operator: gDto.FilterOperatorEq, Table: model.PreferenceTableName},
			},
		})
}

const overlappingQuery = `
	SELECT ar.*
	FROM appointment_resources ar
	JOIN appointments a ON a.id = ar.appointment_id
	WHERE a.tenant_id = :tenant_id
	  AND ar.resource_id IN (:resource_ids)
	  AND ar.status NOT IN ('cancelled', 'no_show')
	  AND ar.reserved_start < :to
	  AND :from < ar.reserved_end
	ORDER BY ar.reserved_start ASC`

func (repo *repositoryImpl) Overlapping(ctx context.Context, tenantID string, resourceIDs []string, from, to time.Time) ([]model.AppointmentResource, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.Overlapping")
	defer scope.End()

	if len(resourceIDs) == 0 {
		return nil, nil
	}

	query, args, err := repo.bindOverlapping(tenantID, resourceIDs, from, to)
	if err != nil {
		return nil, err
	}

	query = repo.db.Read.Rebind(query)

	var reservations []model.AppointmentResource
	if err := repo.db.Read.SelectContext(ctx, &reservations, query, args...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to list overlapping reservations: %w", err)
	}

	return reservations, nil
}

func (repo *repositoryImpl) OverlappingTx(ctx context.Context, tx *sqlx.Tx, tenantID string, resourceIDs []string, from, to time.Time) ([]model.AppointmentResource, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.OverlappingTx")
	defer scope.End()

	if len(resourceIDs) == 0 {
		return nil, nil
	}

	query, args, err := repo.bindOverlapping(tenantID, resourceIDs, from, to)
	if err != nil {
		return nil, err
	}

	query = tx.Rebind(query)

	var reservations []model.AppointmentResource
	if err := tx.SelectContext(ctx, &reservations, query, args...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to list overlapping reservations: %w", err)
	}

	return reservations, nil
}

func (repo *repositoryImpl) bindOverlapping(tenantID string, resourceIDs []string, from, to time.Time) (string, []any, error) {
	query, args, err := sqlx.Named(overlappingQuery, map[string]any{
		"tenant_id":    tenantID,
		"resource_ids": resourceIDs,
		"from":         from,
		"to":           to,
	})
	if err != nil {
		logger.ErrorWithStack(err)

		return "", nil, fmt.Errorf("failed to bind overlap query: %w", err)
	}

	query, args, err = sqlx.In(query, args...)
	if err != nil {
		logger.ErrorWithStack(err)

		return "", nil, fmt.Errorf("failed to expand overlap query: %w", err)
	}

	return query, args, nil
}

// LockResourcesTx takes row locks on the resources in ascending id order so
// two racing bookings always acquire them in the same sequence.
func (repo *repositoryImpl) LockResourcesTx(ctx context.Context, tx *sqlx.Tx, resourceIDs []string) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.LockResourcesTx")
	defer scope.End()

	if len(resourceIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In("SELECT id FROM resources WHERE id IN (?) ORDER BY id FOR UPDATE", resourceIDs)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to expand lock query: %w", err)
	}

	query = tx.Rebind(query)

	var locked []string
	if err := tx.SelectContext(ctx, &locked, query, args...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to lock resources: %w", err)
	}

	if len(locked) != len(uniqueStrings(resourceIDs)) {
		return fmt.Errorf("failed to lock resources: %d of %d found", len(locked), len(uniqueStrings(resourceIDs)))
	}

	return nil
}

func (repo *repositoryImpl) DecrementStockTx(ctx context.Context, tx *sqlx.Tx, tenantID, resourceID string, quantity int, user string) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.DecrementStockTx")
	defer scope.End()

	query := tx.Rebind(`
		UPDATE resources
		SET quantity_on_hand = quantity_on_hand - ?,
		    modified_at = ?,
		    modified_by = ?
		WHERE tenant_id = ?
		  AND id = ?
		  AND quantity_on_hand - ? >= 0`)

	result, err := tx.ExecContext(ctx, query, quantity, timezone.Now(), user, tenantID, resourceID, quantity)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to read decrement result: %w", err)
	}

	if affected == 0 {
		return errStockConstraint
	}

	return nil
}

func (repo *repositoryImpl) InsertResourcesTx(ctx context.Context, tx *sqlx.Tx, reservations []model.AppointmentResource) error {
	return repo.resources.InsertBulkTx(ctx, tx, reservations)
}

func (repo *repositoryImpl) InsertPreferencesTx(ctx context.Context, tx *sqlx.Tx, preferences []model.AppointmentPreference) error {
	if len(preferences) == 0 {
		return nil
	}

	return repo.preferences.InsertBulkTx(ctx, tx, preferences)
}

func (repo *repositoryImpl) UpdateResourcesTx(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error {
	return repo.resources.UpdateTx(ctx, tx, req, filter)
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0:0]

	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	return out
}
