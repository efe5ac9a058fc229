package repository

import (
	"context"
	"errors"

	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SupportedAssetRepository interface {
	Set(ctx context.Context, asset string, supported bool) error
	IsSupported(ctx context.Context, asset string) (bool, error)
	GetSupported(ctx context.Context) ([]string, error)
}

type supportedAssetRepository struct{}

func NewSupportedAssetRepository() *supportedAssetRepository {
	return &supportedAssetRepository{}
}

func (r *supportedAssetRepository) Set(ctx context.Context, asset string, supported bool) error {
	record := &entity.SupportedAsset{Asset: asset, Supported: supported}
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "asset"}},
			DoUpdates: clause.AssignmentColumns([]string{"supported", "updated_at"}),
		}).Create(record).Error
}

func (r *supportedAssetRepository) IsSupported(ctx context.Context, asset string) (bool, error) {
	var result entity.SupportedAsset
	if err := xcontext.DB(ctx).Take(&result, "asset=?", asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, err
	}

	return result.Supported, nil
}

func (r *supportedAssetRepository) GetSupported(ctx context.Context) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).Model(&entity.SupportedAsset{}).
		Where("supported=?", true).
		Order("asset ASC").
		Pluck("asset", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
