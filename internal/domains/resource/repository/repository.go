package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clinicore/infras/otel"
	"clinicore/infras/postgres"
	"clinicore/internal/domains/resource/model"
	"clinicore/shared/constant"
	gDto "clinicore/shared/dto"
	"clinicore/shared/logger"
	gRepo "clinicore/shared/repository"
	"clinicore/shared/timezone"
)

// RoleResource is a resource joined with the priority of its role assignment.
type RoleResource struct {
	model.Resource
	Priority int `db:"priority"`
}

type Resource interface {
	Insert(ctx context.Context, model model.Resource) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Resource, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Resource, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error

	GetSubtype(ctx context.Context, id string) (model.ResourceSubtype, error)

	InsertRole(ctx context.Context, role model.ResourceRole) error
	GetRole(ctx context.Context, tenantID, id string) (model.ResourceRole, error)
	GetAllRoles(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.ResourceRole, error)

	InsertAssignment(ctx context.Context, assignment model.ResourceRoleAssignment) error
	AssignmentExists(ctx context.Context, resourceID, roleID string) (bool, error)
	DeleteAssignment(ctx context.Context, resourceID, roleID string) error

	ListByRole(ctx context.Context, tenantID, roleID string, activeOnly bool) ([]RoleResource, error)
	ListLowStock(ctx context.Context, tenantID string) ([]model.Resource, error)
	AdjustQuantity(ctx context.Context, tenantID, id string, delta int, user string) (model.Resource, error)
}

var errQuantityConstraint = errors.New("quantity adjustment rejected")

// ErrQuantityConstraint reports a rejected inventory adjustment: it would have
// driven quantity on hand below zero.
func ErrQuantityConstraint() error { return errQuantityConstraint }

// IsQuantityConstraint reports whether err is a rejected inventory adjustment.
func IsQuantityConstraint(err error) bool { return errors.Is(err, errQuantityConstraint) }

type repositoryImpl struct {
	gRepo.Repository[model.Resource]
	subtypes    gRepo.Repository[model.ResourceSubtype]
	roles       gRepo.Repository[model.ResourceRole]
	assignments gRepo.Repository[model.ResourceRoleAssignment]
	db          *postgres.Connection
	otel        otel.Otel
}

func New(db *postgres.Connection, otl otel.Otel) Resource {
	return &repositoryImpl{
		Repository:  gRepo.NewRepository[model.Resource](model.EntityName, model.TableName, model.FieldID, db, otl),
		subtypes:    gRepo.NewRepository[model.ResourceSubtype](model.SubtypeEntity, model.SubtypeTableName, model.FieldID, db, otl),
		roles:       gRepo.NewRepository[model.ResourceRole](model.RoleEntityName, model.RoleTableName, model.FieldID, db, otl),
		assignments: gRepo.NewRepository[model.ResourceRoleAssignment](model.AssignmentEntityName, model.AssignmentTableName, model.FieldID, db, otl),
		db:          db,
		otel:        otl,
	}
}

func (repo *repositoryImpl) GetSubtype(ctx context.Context, id string) (model.ResourceSubtype, error) {
	return repo.subtypes.Get(ctx, gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.SubtypeTableName},
		},
	})
}

func (repo *repositoryImpl) InsertRole(ctx context.Context, role model.ResourceRole) error {
	return repo.roles.Insert(ctx, role)
}

func (repo *repositoryImpl) GetRole(ctx context.Context, tenantID, id string) (model.ResourceRole, error) {
	return repo.roles.Get(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: constant.FieldTenantID, Value: tenantID, Operator: gDto.FilterOperatorEq, Table: model.RoleTableName},
			gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.RoleTableName},
		},
	})
}

func (repo *repositoryImpl) GetAllRoles(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.ResourceRole, error) {
	return repo.roles.GetAll(ctx, params, filter)
}

func (repo *repositoryImpl) InsertAssignment(ctx context.Context, assignment model.ResourceRoleAssignment) error {
	return repo.assignments.Insert(ctx, assignment)
}

func (repo *repositoryImpl) AssignmentExists(ctx context.Context, resourceID, roleID string) (bool, error) {
	return repo.assignments.Exist(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldResourceID, Value: resourceID, Operator: gDto.FilterOperatorEq, Table: model.AssignmentTableName},
			gDto.Filter{Field: model.FieldRoleID, Value: roleID, Operator: gDto.FilterOperatorEq, Table: model.AssignmentTableName},
		},
	})
}

func (repo *repositoryImpl) DeleteAssignment(ctx context.Context, resourceID, roleID string) error {
	return repo.assignments.Delete(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldResourceID, Value: resourceID, Operator: gDto.FilterOperatorEq, Table: model.AssignmentTableName},
			gDto.Filter{Field: model.FieldRoleID, Value: roleID, Operator: gDto.FilterOperatorEq, Table: model.AssignmentTableName},
		},
	})
}

func (repo *repositoryImpl) ListByRole(ctx context.Context, tenantID, roleID string, activeOnly bool) ([]RoleResource, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".resource.ListByRole")
	defer scope.End()

	query := `
		SELECT r.*, a.priority
		FROM resources r
		JOIN resource_role_assignments a ON a.resource_id = r.id
		WHERE r.tenant_id = :tenant_id
		  AND a.role_id = :role_id`
	if activeOnly {
		query += `
		  AND r.active`
	}
	query += `
		ORDER BY a.priority ASC, r.created_at ASC`

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	args := map[string]any{
		"tenant_id": tenantID,
		"role_id":   roleID,
	}

	var resources []RoleResource

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	if err := prepare.SelectContext(ctx, &resources, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to list resources by role: %w", err)
	}

	return resources, nil
}

func (repo *repositoryImpl) ListLowStock(ctx context.Context, tenantID string) ([]model.Resource, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".resource.ListLowStock")
	defer scope.End()

	query := `
		SELECT *
		FROM resources
		WHERE tenant_id = :tenant_id
		  AND consumable
		  AND active
		  AND quantity_on_hand <= quantity_threshold
		ORDER BY quantity_on_hand ASC, created_at ASC`

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var resources []model.Resource

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	if err := prepare.SelectContext(ctx, &resources, map[string]any{"tenant_id": tenantID}); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to list low stock resources: %w", err)
	}

	return resources, nil
}

// AdjustQuantity applies a signed delta to a consumable's stock. The quantity
// check and the update are a single statement, so a racing adjustment can
// never drive the count negative.
func (repo *repositoryImpl) AdjustQuantity(ctx context.Context, tenantID, id string, delta int, user string) (model.Resource, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".resource.AdjustQuantity")
	defer scope.End()

	query := `
		UPDATE resources
		SET quantity_on_hand = quantity_on_hand + :delta,
		    modified_at = :modified_at,
		    modified_by = :modified_by
		WHERE tenant_id = :tenant_id
		  AND id = :id
		  AND quantity_on_hand + :delta >= 0
		RETURNING *`

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	args := map[string]any{
		"tenant_id":   tenantID,
		"id":          id,
		"delta":       delta,
		"modified_at": timezone.Now(),
		"modified_by": user,
	}

	var updated model.Resource

	prepare, err := repo.db.Write.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return updated, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	err = prepare.GetContext(ctx, &updated, args)
	if errors.Is(err, sql.ErrNoRows) {
		return updated, errQuantityConstraint
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return updated, fmt.Errorf("failed to adjust resource quantity: %w", err)
	}

	return updated, nil
}
