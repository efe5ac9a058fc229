package repository

import (
	"context"

	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
)

type LedgerEventRepository interface {
	Create(ctx context.Context, events ...*entity.LedgerEvent) error
	GetByQuestID(ctx context.Context, questID string, offset, limit int) ([]entity.LedgerEvent, error)
}

type ledgerEventRepository struct{}

func NewLedgerEventRepository() *ledgerEventRepository {
	return &ledgerEventRepository{}
}

func (r *ledgerEventRepository) Create(ctx context.Context, events ...*entity.LedgerEvent) error {
	if len(events) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Create(events).Error
}

func (r *ledgerEventRepository) GetByQuestID(
	ctx context.Context, questID string, offset, limit int,
) ([]entity.LedgerEvent, error) {
	var result []entity.LedgerEvent
	err := xcontext.DB(ctx).
		Where("quest_id=?", questID).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
