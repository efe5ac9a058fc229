package vault

import (
	"context"
	"math/big"

	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/internal/repository"
)

// bookVault keeps balances and allowances in the ledger database. Its writes
// join the caller's transaction.
type bookVault struct {
	escrow   string
	bookRepo repository.VaultBookRepository
}

func NewBookVault(escrow string, bookRepo repository.VaultBookRepository) *bookVault {
	return &bookVault{escrow: escrow, bookRepo: bookRepo}
}

func (v *bookVault) Address() string {
	return v.escrow
}

func (v *bookVault) Allowance(ctx context.Context, asset, owner string) (*big.Int, error) {
	return v.bookRepo.GetAllowance(ctx, asset, owner, v.escrow)
}

func (v *bookVault) BalanceOf(ctx context.Context, asset, account string) (*big.Int, error) {
	return v.bookRepo.GetBalance(ctx, asset, account)
}

func (v *bookVault) TransferFrom(ctx context.Context, asset, owner string, amount *big.Int) error {
	allowance, err := v.Allowance(ctx, asset, owner)
	if err != nil {
		return err
	}

	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}

	if err := v.move(ctx, asset, owner, v.escrow, amount); err != nil {
		return err
	}

	return v.bookRepo.SetAllowance(ctx, asset, owner, v.escrow, allowance.Sub(allowance, amount))
}

func (v *bookVault) Transfer(ctx context.Context, asset, recipient string, amount *big.Int) error {
	return v.move(ctx, asset, v.escrow, recipient, amount)
}

func (v *bookVault) NativeBalance(ctx context.Context) (*big.Int, error) {
	return v.bookRepo.GetBalance(ctx, entity.NativeAsset, v.escrow)
}

func (v *bookVault) TransferNative(ctx context.Context, recipient string, amount *big.Int) error {
	return v.move(ctx, entity.NativeAsset, v.escrow, recipient, amount)
}

func (v *bookVault) ReceiveNative(ctx context.Context, sender string, amount *big.Int) error {
	balance, err := v.bookRepo.GetBalance(ctx, entity.NativeAsset, v.escrow)
	if err != nil {
		return err
	}

	return v.bookRepo.SetBalance(ctx, entity.NativeAsset, v.escrow, balance.Add(balance, amount))
}

func (v *bookVault) Mint(ctx context.Context, asset, account string, amount *big.Int) error {
	balance, err := v.bookRepo.GetBalance(ctx, asset, account)
	if err != nil {
		return err
	}

	return v.bookRepo.SetBalance(ctx, asset, account, balance.Add(balance, amount))
}

func (v *bookVault) Approve(ctx context.Context, asset, owner string, amount *big.Int) error {
	return v.bookRepo.SetAllowance(ctx, asset, owner, v.escrow, amount)
}

func (v *bookVault) move(ctx context.Context, asset, from, to string, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}

	fromBalance, err := v.bookRepo.GetBalance(ctx, asset, from)
	if err != nil {
		return err
	}

	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	if err := v.bookRepo.SetBalance(ctx, asset, from, fromBalance.Sub(fromBalance, amount)); err != nil {
		return err
	}

	toBalance, err := v.bookRepo.GetBalance(ctx, asset, to)
	if err != nil {
		return err
	}

	return v.bookRepo.SetBalance(ctx, asset, to, toBalance.Add(toBalance, amount))
}
