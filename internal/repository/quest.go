package repository

import (
	"context"

	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
)

type QuestRepository interface {
	Create(ctx context.Context, quest *entity.Quest) error
	GetByID(ctx context.Context, id string) (*entity.Quest, error)
	Exists(ctx context.Context, id string) (bool, error)
	GetAllIDs(ctx context.Context) ([]string, error)
	GetActive(ctx context.Context) ([]entity.Quest, error)
	NextSeq(ctx context.Context) (int64, error)
	Update(ctx context.Context, quest *entity.Quest) error
}

type questRepository struct{}

func NewQuestRepository() *questRepository {
	return &questRepository{}
}

func (r *questRepository) Create(ctx context.Context, quest *entity.Quest) error {
	return xcontext.DB(ctx).Create(quest).Error
}

func (r *questRepository) GetByID(ctx context.Context, id string) (*entity.Quest, error) {
	var result entity.Quest
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *questRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := xcontext.DB(ctx).Model(&entity.Quest{}).Where("id=?", id).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// GetAllIDs returns every quest id in creation order.
func (r *questRepository) GetAllIDs(ctx context.Context) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).Model(&entity.Quest{}).Order("seq ASC").Pluck("id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questRepository) GetActive(ctx context.Context) ([]entity.Quest, error) {
	var result []entity.Quest
	if err := xcontext.DB(ctx).Where("is_active=?", true).Order("seq ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questRepository) NextSeq(ctx context.Context) (int64, error) {
	var seq struct{ Max int64 }
	err := xcontext.DB(ctx).Model(&entity.Quest{}).Select("COALESCE(MAX(seq), 0) AS max").Scan(&seq).Error
	if err != nil {
		return 0, err
	}

	return seq.Max + 1, nil
}

// Update writes the mutable columns of quest. Creator, asset, deadline and
// the winner cap never change after creation.
func (r *questRepository) Update(ctx context.Context, quest *entity.Quest) error {
	return xcontext.DB(ctx).
		Model(&entity.Quest{}).
		Where("id=?", quest.ID).
		Updates(map[string]any{
			"amount":                   quest.Amount,
			"is_active":                quest.IsActive,
			"total_winners":            quest.TotalWinners,
			"total_reward_distributed": quest.TotalRewardDistributed,
		}).Error
}
