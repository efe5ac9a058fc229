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

type VaultBookRepository interface {
	GetBalance(ctx context.Context, asset, account string) (*big.Int, error)
	SetBalance(ctx context.Context, asset, account string, balance *big.Int) error
	GetAllowance(ctx context.Context, asset, owner, spender string) (*big.Int, error)
	SetAllowance(ctx context.Context, asset, owner, spender string, amount *big.Int) error
}

type vaultBookRepository struct{}

func NewVaultBookRepository() *vaultBookRepository {
	return &vaultBookRepository{}
}

func (r *vaultBookRepository) GetBalance(ctx context.Context, asset, account string) (*big.Int, error) {
	var result entity.VaultBalance
	err := xcontext.DB(ctx).Take(&result, "asset=? AND account=?", asset, account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return big.NewInt(0), nil
		}

		return nil, err
	}

	return result.Balance.Big(), nil
}

func (r *vaultBookRepository) SetBalance(ctx context.Context, asset, account string, balance *big.Int) error {
	record := &entity.VaultBalance{Asset: asset, Account: account, Balance: entity.NewBigInt(balance)}
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "asset"}, {Name: "account"}},
			DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
		}).Create(record).Error
}

func (r *vaultBookRepository) GetAllowance(ctx context.Context, asset, owner, spender string) (*big.Int, error) {
	var result entity.VaultAllowance
	err := xcontext.DB(ctx).Take(&result, "asset=? AND owner=? AND spender=?", asset, owner, spender).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return big.NewInt(0), nil
		}

		return nil, err
	}

	return result.Amount.Big(), nil
}

func (r *vaultBookRepository) SetAllowance(
	ctx context.Context, asset, owner, spender string, amount *big.Int,
) error {
	record := &entity.VaultAllowance{
		Asset:   asset,
		Owner:   owner,
		Spender: spender,
		Amount:  entity.NewBigInt(amount),
	}

	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "asset"}, {Name: "owner"}, {Name: "spender"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).Create(record).Error
}
