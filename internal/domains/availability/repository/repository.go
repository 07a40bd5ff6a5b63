package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"time"

	"clinicore/infras/otel"
	"clinicore/infras/postgres"
	"clinicore/internal/domains/availability/model"
	"clinicore/shared/constant"
	gDto "clinicore/shared/dto"
	gRepo "clinicore/shared/repository"
)

type Availability interface {
	Insert(ctx context.Context, model model.ResourceAvailability) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.ResourceAvailability, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.ResourceAvailability, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error

	ListForResources(ctx context.Context, tenantID string, resourceIDs []string, before time.Time) ([]model.ResourceAvailability, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.ResourceAvailability]
}

func New(db *postgres.Connection, otl otel.Otel) Availability {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.ResourceAvailability](model.EntityName, model.TableName, model.FieldID, db, otl),
	}
}

// ListForResources returns every record that could yield an occurrence before
// the given instant; recurrence expansion happens in the service.
func (repo *repositoryImpl) ListForResources(ctx context.Context, tenantID string, resourceIDs []string, before time.Time) ([]model.ResourceAvailability, error) {
	return repo.GetAll(ctx,
		gDto.QueryParams{SortBy: model.FieldStartAt, SortDir: "ASC"},
		gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorAnd,
			Filters: []any{
				gDto.Filter{Field: constant.FieldTenantID, Value: tenantID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
				gDto.Filter{Field: model.FieldResourceID, Value: resourceIDs, Operator: gDto.FilterOperatorIn, Table: model.TableName},
				gDto.Filter{Field: model.FieldStartAt, Value: before, Operator: gDto.FilterOperatorLess, Table: model.TableName},
			},
		})
}
