package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"clinicore/infras/otel"
	"clinicore/infras/postgres"
	"clinicore/internal/domains/procedure/model"
	gDto "clinicore/shared/dto"
	"clinicore/shared/logger"
	gRepo "clinicore/shared/repository"
)

type Procedure interface {
	Insert(ctx context.Context, model model.Procedure) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Procedure, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Procedure, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error

	GetCompositions(ctx context.Context, procedureID string) ([]model.ProcedureComposition, error)
	ReplaceCompositions(ctx context.Context, procedureID string, items []model.ProcedureComposition) error

	GetRequirements(ctx context.Context, procedureID string) ([]model.ProcedureRequirement, error)
	InsertRequirement(ctx context.Context, requirement model.ProcedureRequirement) error
	DeleteRequirement(ctx context.Context, procedureID, requirementID string) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Procedure]
	compositions gRepo.Repository[model.ProcedureComposition]
	requirements gRepo.Repository[model.ProcedureRequirement]
	db           *postgres.Connection
	otel         otel.Otel
}

func New(db *postgres.Connection, otl otel.Otel) Procedure {
	return &repositoryImpl{
		Repository:   gRepo.NewRepository[model.Procedure](model.EntityName, model.TableName, model.FieldID, db, otl),
		compositions: gRepo.NewRepository[model.ProcedureComposition](model.CompositionEntityName, model.CompositionTableName, model.FieldID, db, otl),
		requirements: gRepo.NewRepository[model.ProcedureRequirement](model.RequirementEntityName, model.RequirementTableName, model.FieldID, db, otl),
		db:           db,
		otel:         otl,
	}
}

func (repo *repositoryImpl) GetCompositions(ctx context.Context, procedureID string) ([]model.ProcedureComposition, error) {
	return repo.compositions.GetAll(ctx,
		gDto.QueryParams{SortBy: model.FieldPosition, SortDir: "ASC"},
		gDto.FilterGroup{
			Filters: []any{
				gDto.Filter{Field: model.FieldProcedureID, Value: procedureID, Operator: gDto.FilterOperatorEq, Table: model.CompositionTableName},
			},
		})
}

// ReplaceCompositions swaps the full child list in one transaction so readers
// never observe a half-written composition.
func (repo *repositoryImpl) ReplaceCompositions(ctx context.Context, procedureID string, items []model.ProcedureComposition) error {
	tx, err := repo.compositions.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				logger.ErrorWithStack(rollbackErr)
			}
		}
	}()

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldProcedureID, Value: procedureID, Operator: gDto.FilterOperatorEq, Table: model.CompositionTableName},
		},
	}

	if err = repo.compositions.DeleteTx(ctx, tx, filter); err != nil {
		return err
	}

	if len(items) > 0 {
		if err = repo.compositions.InsertBulkTx(ctx, tx, items); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit composition update: %w", err)
	}

	return nil
}

func (repo *repositoryImpl) GetRequirements(ctx context.Context, procedureID string) ([]model.ProcedureRequirement, error) {
	return repo.requirements.GetAll(ctx,
		gDto.QueryParams{SortBy: "created_at", SortDir: "ASC"},
		gDto.FilterGroup{
			Filters: []any{
				gDto.Filter{Field: model.FieldProcedureID, Value: procedureID, Operator: gDto.FilterOperatorEq, Table: model.RequirementTableName},
			},
		})
}

func (repo *repositoryImpl) InsertRequirement(ctx context.Context, requirement model.ProcedureRequirement) error {
	return repo.requirements.Insert(ctx, requirement)
}

func (repo *repositoryImpl) DeleteRequirement(ctx context.Context, procedureID, requirementID string) error {
	return repo.requirements.Delete(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldProcedureID, Value: procedureID, Operator: gDto.FilterOperatorEq, Table: model.RequirementTableName},
			gDto.Filter{Field: model.FieldID, Value: requirementID, Operator: gDto.FilterOperatorEq, Table: model.RequirementTableName},
		},
	})
}
