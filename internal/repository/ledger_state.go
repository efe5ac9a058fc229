package repository

import (
	"context"

	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type LedgerStateRepository interface {
	Get(ctx context.Context) (*entity.LedgerState, error)
	Upsert(ctx context.Context, state *entity.LedgerState) error
}

type ledgerStateRepository struct{}

func NewLedgerStateRepository() *ledgerStateRepository {
	return &ledgerStateRepository{}
}

func (r *ledgerStateRepository) Get(ctx context.Context) (*entity.LedgerState, error) {
	var result entity.LedgerState
	if err := xcontext.DB(ctx).Take(&result, "id=?", entity.LedgerStateID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ledgerStateRepository) Upsert(ctx context.Context, state *entity.LedgerState) error {
	state.ID = entity.LedgerStateID
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"admin", "paused", "updated_at"}),
		}).Create(state).Error
}
