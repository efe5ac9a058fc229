package repository

import (
	"context"
	"errors"
	"math/big"

	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssetObligationRepository interface {
	Get(ctx context.Context, asset string) (*big.Int, error)
	GetAll(ctx context.Context) ([]entity.AssetObligation, error)
	Set(ctx context.Context, asset string, owed *big.Int) error

	// Add adjusts the obligation by delta, which may be negative.
	Add(ctx context.Context, asset string, delta *big.Int) error
}

type assetObligationRepository struct{}

func NewAssetObligationRepository() *assetObligationRepository {
	return &assetObligationRepository{}
}

func (r *assetObligationRepository) Get(ctx context.Context, asset string) (*big.Int, error) {
	var result entity.AssetObligation
	if err := xcontext.DB(ctx).Take(&result, "asset=?", asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return big.NewInt(0), nil
		}

		return nil, err
	}

	return result.Owed.Big(), nil
}

func (r *assetObligationRepository) GetAll(ctx context.Context) ([]entity.AssetObligation, error) {
	var result []entity.AssetObligation
	if err := xcontext.DB(ctx).Order("asset ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *assetObligationRepository) Set(ctx context.Context, asset string, owed *big.Int) error {
	record := &entity.AssetObligation{Asset: asset, Owed: entity.NewBigInt(owed)}
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "asset"}},
			DoUpdates: clause.AssignmentColumns([]string{"owed", "updated_at"}),
		}).Create(record).Error
}

// Add is a read-modify-write. Callers hold the ledger guard, so no other
// writer interleaves.
func (r *assetObligationRepository) Add(ctx context.Context, asset string, delta *big.Int) error {
	owed, err := r.Get(ctx, asset)
	if err != nil {
		return err
	}

	return r.Set(ctx, asset, owed.Add(owed, delta))
}
