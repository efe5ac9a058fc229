package repository

import (
	"context"
	"errors"

	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClaimRecordRepository interface {
	// Get returns an empty record when the principal never received anything
	// from the quest.
	Get(ctx context.Context, questID, principal string) (*entity.ClaimRecord, error)
	GetByQuestID(ctx context.Context, questID string) ([]entity.ClaimRecord, error)
	Upsert(ctx context.Context, record *entity.ClaimRecord) error
}

type claimRecordRepository struct{}

func NewClaimRecordRepository() *claimRecordRepository {
	return &claimRecordRepository{}
}

func (r *claimRecordRepository) Get(ctx context.Context, questID, principal string) (*entity.ClaimRecord, error) {
	var result entity.ClaimRecord
	err := xcontext.DB(ctx).Take(&result, "quest_id=? AND principal=?", questID, principal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.ClaimRecord{QuestID: questID, Principal: principal}, nil
		}

		return nil, err
	}

	return &result, nil
}

func (r *claimRecordRepository) GetByQuestID(ctx context.Context, questID string) ([]entity.ClaimRecord, error) {
	var result []entity.ClaimRecord
	if err := xcontext.DB(ctx).Where("quest_id=?", questID).Order("created_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *claimRecordRepository) Upsert(ctx context.Context, record *entity.ClaimRecord) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "quest_id"},
				{Name: "principal"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"amount":     record.Amount,
				"claimed":    record.Claimed,
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).Create(record).Error
}
