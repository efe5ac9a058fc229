package repository

import (
	"context"

	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
)

type VaultTransferRepository interface {
	Create(ctx context.Context, transfers ...*entity.VaultTransfer) error
	GetByStatus(ctx context.Context, status entity.VaultTransferStatus) ([]entity.VaultTransfer, error)
}

type vaultTransferRepository struct{}

func NewVaultTransferRepository() *vaultTransferRepository {
	return &vaultTransferRepository{}
}

func (r *vaultTransferRepository) Create(ctx context.Context, transfers ...*entity.VaultTransfer) error {
	if len(transfers) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Create(transfers).Error
}

func (r *vaultTransferRepository) GetByStatus(
	ctx context.Context, status entity.VaultTransferStatus,
) ([]entity.VaultTransfer, error) {
	var result []entity.VaultTransfer
	if err := xcontext.DB(ctx).Where("status=?", status).Order("id ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
