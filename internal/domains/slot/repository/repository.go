package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"clinicore/infras/otel"
	"clinicore/infras/postgres"
	"clinicore/internal/domains/slot/model"
	"clinicore/shared/constant"
	gDto "clinicore/shared/dto"
	"clinicore/shared/logger"
	gRepo "clinicore/shared/repository"
	"clinicore/shared/timezone"

	"github.com/jmoiron/sqlx"
)

var errSlotTaken = errors.New("slot claim rejected")

// ErrSlotTaken reports a claim on a slot that was no longer available.
func ErrSlotTaken() error { return errSlotTaken }

func IsSlotTaken(err error) bool { return errors.Is(err, errSlotTaken) }

type Slot interface {
	Insert(ctx context.Context, model model.ProcedureSlot) error
	InsertBulk(ctx context.Context, models []model.ProcedureSlot) error
	InsertTx(ctx context.Context, tx *sqlx.Tx, model model.ProcedureSlot) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.ProcedureSlot, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.ProcedureSlot, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error

	// ClaimTx flips an available slot to booked. Claiming a slot any other
	// transaction already booked returns ErrSlotTaken.
	ClaimTx(ctx context.Context, tx *sqlx.Tx, tenantID, slotID, user string) error
}

type repositoryImpl struct {
	gRepo.Repository[model.ProcedureSlot]
	otel otel.Otel
}

func New(db *postgres.Connection, otl otel.Otel) Slot {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.ProcedureSlot](model.EntityName, model.TableName, model.FieldID, db, otl),
		otel:       otl,
	}
}

func (repo *repositoryImpl) ClaimTx(ctx context.Context, tx *sqlx.Tx, tenantID, slotID, user string) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".slot.ClaimTx")
	defer scope.End()

	query := tx.Rebind(`
		UPDATE procedure_slots
		SET status = ?,
		    modified_at = ?,
		    modified_by = ?
		WHERE tenant_id = ?
		  AND id = ?
		  AND status = ?`)

	result, err := tx.ExecContext(ctx, query,
		model.StatusBooked, timezone.Now(), user, tenantID, slotID, model.StatusAvailable)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to claim slot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to read claim result: %w", err)
	}

	if affected == 0 {
		return errSlotTaken
	}

	return nil
}
