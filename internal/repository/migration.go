package repository

import (
	"context"

	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
)

type MigrationRepository interface {
	Create(ctx context.Context, version string) error
	Exists(ctx context.Context, version string) (bool, error)
}

type migrationRepository struct{}

func NewMigrationRepository() *migrationRepository {
	return &migrationRepository{}
}

func (r *migrationRepository) Create(ctx context.Context, version string) error {
	return xcontext.DB(ctx).Create(&entity.Migration{Version: version}).Error
}

func (r *migrationRepository) Exists(ctx context.Context, version string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Migration{}).Where("version=?", version).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
