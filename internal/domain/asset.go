package domain

import (
	"context"
	"math/big"

	"github.com/questx-lab/quest-escrow/internal/domain/vault"
	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/internal/model"
	"github.com/questx-lab/quest-escrow/internal/repository"
	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/ethutil"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
)

type AssetDomain interface {
	AddSupported(context.Context, *model.AddSupportedAssetRequest) (*model.AddSupportedAssetResponse, error)
	RemoveSupported(context.Context, *model.RemoveSupportedAssetRequest) (*model.RemoveSupportedAssetResponse, error)
	IsSupported(context.Context, *model.IsAssetSupportedRequest) (*model.IsAssetSupportedResponse, error)
	WithdrawAllBalance(context.Context, *model.WithdrawAllAssetBalanceRequest) (*model.WithdrawAllAssetBalanceResponse, error)
	WithdrawAllNativeBalance(context.Context, *model.WithdrawAllNativeBalanceRequest) (*model.WithdrawAllNativeBalanceResponse, error)
	DepositNative(context.Context, *model.DepositNativeRequest) (*model.DepositNativeResponse, error)
	GetObligation(context.Context, *model.GetObligationRequest) (*model.GetObligationResponse, error)
}

type assetDomain struct {
	gate               *ledgerGate
	supportedAssetRepo repository.SupportedAssetRepository
	obligationRepo     repository.AssetObligationRepository
	vault              vault.Vault
}

func NewAssetDomain(
	gate *ledgerGate,
	supportedAssetRepo repository.SupportedAssetRepository,
	obligationRepo repository.AssetObligationRepository,
	vault vault.Vault,
) *assetDomain {
	return &assetDomain{
		gate:               gate,
		supportedAssetRepo: supportedAssetRepo,
		obligationRepo:     obligationRepo,
		vault:              vault,
	}
}

func (d *assetDomain) AddSupported(
	ctx context.Context, req *model.AddSupportedAssetRequest,
) (*model.AddSupportedAssetResponse, error) {
	if err := d.setSupported(ctx, "add_supported_asset", req.Asset, true); err != nil {
		return nil, err
	}

	return &model.AddSupportedAssetResponse{}, nil
}

func (d *assetDomain) RemoveSupported(
	ctx context.Context, req *model.RemoveSupportedAssetRequest,
) (*model.RemoveSupportedAssetResponse, error) {
	if err := d.setSupported(ctx, "remove_supported_asset", req.Asset, false); err != nil {
		return nil, err
	}

	return &model.RemoveSupportedAssetResponse{}, nil
}

// setSupported only affects future quests. Quests already funded with the
// asset keep working.
func (d *assetDomain) setSupported(ctx context.Context, name, s string, supported bool) error {
	return d.gate.run(ctx, name, gateOptions{onlyAdmin: true}, func(
		ctx context.Context, state *entity.LedgerState, em *emitter,
	) error {
		asset, err := parseAddress(s, "asset")
		if err != nil {
			return err
		}

		if err := d.supportedAssetRepo.Set(ctx, asset, supported); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot set supported asset: %v", err)
			return errorx.Unknown
		}

		em.emit(&entity.LedgerEvent{
			Type:  entity.AssetSupportChangedEvent,
			Asset: asset,
			Data:  entity.Map{"supported": supported},
		})

		return nil
	})
}

func (d *assetDomain) IsSupported(
	ctx context.Context, req *model.IsAssetSupportedRequest,
) (*model.IsAssetSupportedResponse, error) {
	asset, err := ethutil.NormalizeAddress(req.Asset)
	if err == ethutil.ErrZeroAddress {
		return &model.IsAssetSupportedResponse{Supported: false}, nil
	}

	if err != nil {
		return nil, errorx.New(errorx.InvalidArgument, "Invalid asset")
	}

	supported, err := d.supportedAssetRepo.IsSupported(ctx, asset)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check supported asset: %v", err)
		return nil, errorx.Unknown
	}

	return &model.IsAssetSupportedResponse{Supported: supported}, nil
}

// WithdrawAllBalance sweeps what the escrow account holds of asset above the
// budgets still owed to active quests.
func (d *assetDomain) WithdrawAllBalance(
	ctx context.Context, req *model.WithdrawAllAssetBalanceRequest,
) (*model.WithdrawAllAssetBalanceResponse, error) {
	var withdrawable *big.Int
	err := d.gate.run(ctx, "withdraw_all_asset_balance", gateOptions{onlyAdmin: true}, func(
		ctx context.Context, state *entity.LedgerState, em *emitter,
	) error {
		asset, err := parseAddress(req.Asset, "asset")
		if err != nil {
			return err
		}

		withdrawable, err = d.withdrawable(ctx, asset)
		if err != nil {
			return err
		}

		if withdrawable.Sign() <= 0 {
			return errorx.New(errorx.NothingToClaim, "Nothing to withdraw")
		}

		err = d.gate.transfer(ctx, &entity.VaultTransfer{
			Method:       entity.TransferMethod,
			Asset:        asset,
			Counterparty: state.Admin,
			Amount:       entity.NewBigInt(withdrawable),
		}, func() error {
			return d.vault.Transfer(ctx, asset, state.Admin, withdrawable)
		})
		if err != nil {
			return err
		}

		em.emit(&entity.LedgerEvent{
			Type:      entity.AssetWithdrawnEvent,
			Principal: state.Admin,
			Asset:     asset,
			Amount:    entity.NewBigInt(withdrawable),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.WithdrawAllAssetBalanceResponse{Amount: withdrawable.String()}, nil
}

func (d *assetDomain) WithdrawAllNativeBalance(
	ctx context.Context, req *model.WithdrawAllNativeBalanceRequest,
) (*model.WithdrawAllNativeBalanceResponse, error) {
	var balance *big.Int
	err := d.gate.run(ctx, "withdraw_all_native_balance", gateOptions{onlyAdmin: true}, func(
		ctx context.Context, state *entity.LedgerState, em *emitter,
	) error {
		var err error
		balance, err = d.vault.NativeBalance(ctx)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get native balance: %v", err)
			return errorx.Unknown
		}

		if balance.Sign() <= 0 {
			return errorx.New(errorx.NothingToClaim, "Nothing to withdraw")
		}

		err = d.gate.transfer(ctx, &entity.VaultTransfer{
			Method:       entity.TransferNativeMethod,
			Asset:        entity.NativeAsset,
			Counterparty: state.Admin,
			Amount:       entity.NewBigInt(balance),
		}, func() error {
			return d.vault.TransferNative(ctx, state.Admin, balance)
		})
		if err != nil {
			return err
		}

		em.emit(&entity.LedgerEvent{
			Type:      entity.NativeWithdrawnEvent,
			Principal: state.Admin,
			Asset:     entity.NativeAsset,
			Amount:    entity.NewBigInt(balance),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.WithdrawAllNativeBalanceResponse{Amount: balance.String()}, nil
}

// DepositNative accepts native currency from anyone, paused or not.
func (d *assetDomain) DepositNative(
	ctx context.Context, req *model.DepositNativeRequest,
) (*model.DepositNativeResponse, error) {
	amount, err := parseNonNegativeAmount(req.Amount, "amount")
	if err != nil {
		return nil, err
	}

	sender := xcontext.RequestUserID(ctx)
	if sender == "" {
		sender = ethutil.ZeroAddress
	}

	err = d.gate.run(ctx, "deposit_native", gateOptions{ignorePause: true}, func(
		ctx context.Context, state *entity.LedgerState, em *emitter,
	) error {
		err := d.gate.transfer(ctx, &entity.VaultTransfer{
			Method:       entity.ReceiveNativeMethod,
			Asset:        entity.NativeAsset,
			Counterparty: sender,
			Amount:       entity.NewBigInt(amount),
		}, func() error {
			return d.vault.ReceiveNative(ctx, sender, amount)
		})
		if err != nil {
			return err
		}

		em.emit(&entity.LedgerEvent{
			Type:      entity.NativeDepositedEvent,
			Principal: sender,
			Asset:     entity.NativeAsset,
			Amount:    entity.NewBigInt(amount),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.DepositNativeResponse{}, nil
}

func (d *assetDomain) GetObligation(
	ctx context.Context, req *model.GetObligationRequest,
) (*model.GetObligationResponse, error) {
	asset, err := parseAddress(req.Asset, "asset")
	if err != nil {
		return nil, err
	}

	owed, err := d.obligationRepo.Get(ctx, asset)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get obligation: %v", err)
		return nil, errorx.Unknown
	}

	balance, err := d.vault.BalanceOf(ctx, asset, d.vault.Address())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get escrow balance: %v", err)
		return nil, errorx.Unknown
	}

	withdrawable := new(big.Int).Sub(balance, owed)
	if withdrawable.Sign() < 0 {
		withdrawable.SetInt64(0)
	}

	return &model.GetObligationResponse{
		Asset:        asset,
		Owed:         owed.String(),
		Balance:      balance.String(),
		Withdrawable: withdrawable.String(),
	}, nil
}

func (d *assetDomain) withdrawable(ctx context.Context, asset string) (*big.Int, error) {
	owed, err := d.obligationRepo.Get(ctx, asset)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get obligation: %v", err)
		return nil, errorx.Unknown
	}

	balance, err := d.vault.BalanceOf(ctx, asset, d.vault.Address())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get escrow balance: %v", err)
		return nil, errorx.Unknown
	}

	return balance.Sub(balance, owed), nil
}
