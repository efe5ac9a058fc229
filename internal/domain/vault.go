package domain

import (
	"context"

	"github.com/questx-lab/quest-escrow/internal/domain/vault"
	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/internal/model"
	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
)

// VaultDomain exposes the balances of the vault, and a faucet when the vault
// keeps its own book.
type VaultDomain interface {
	Mint(context.Context, *model.MintRequest) (*model.MintResponse, error)
	Approve(context.Context, *model.ApproveRequest) (*model.ApproveResponse, error)
	GetBalance(context.Context, *model.GetBalanceRequest) (*model.GetBalanceResponse, error)
}

type vaultDomain struct {
	gate  *ledgerGate
	vault vault.Vault
}

func NewVaultDomain(gate *ledgerGate, vault vault.Vault) *vaultDomain {
	return &vaultDomain{gate: gate, vault: vault}
}

func (d *vaultDomain) Mint(ctx context.Context, req *model.MintRequest) (*model.MintResponse, error) {
	faucet, ok := d.vault.(vault.Faucet)
	if !ok {
		return nil, vault.ErrUnsupported
	}

	err := d.gate.run(ctx, "mint", gateOptions{onlyAdmin: true, ignorePause: true}, func(
		ctx context.Context, state *entity.LedgerState, em *emitter,
	) error {
		asset, err := parseAddress(req.Asset, "asset")
		if err != nil {
			return err
		}

		account, err := parseAddress(req.Account, "account")
		if err != nil {
			return err
		}

		amount, err := parseNonNegativeAmount(req.Amount, "amount")
		if err != nil {
			return err
		}

		if err := faucet.Mint(ctx, asset, account, amount); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot mint: %v", err)
			return errorx.Unknown
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.MintResponse{}, nil
}

// Approve sets how much of asset the escrow account may pull from the
// caller. It does not enter the ledger gate, approvals belong to the asset.
func (d *vaultDomain) Approve(ctx context.Context, req *model.ApproveRequest) (*model.ApproveResponse, error) {
	faucet, ok := d.vault.(vault.Faucet)
	if !ok {
		return nil, vault.ErrUnsupported
	}

	owner, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	asset, err := parseAddress(req.Asset, "asset")
	if err != nil {
		return nil, err
	}

	amount, err := parseNonNegativeAmount(req.Amount, "amount")
	if err != nil {
		return nil, err
	}

	if err := faucet.Approve(ctx, asset, owner, amount); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot approve: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ApproveResponse{}, nil
}

func (d *vaultDomain) GetBalance(
	ctx context.Context, req *model.GetBalanceRequest,
) (*model.GetBalanceResponse, error) {
	asset, err := parseAddress(req.Asset, "asset")
	if err != nil {
		return nil, err
	}

	account, err := parseAddress(req.Account, "account")
	if err != nil {
		return nil, err
	}

	balance, err := d.vault.BalanceOf(ctx, asset, account)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get balance: %v", err)
		return nil, errorx.Unknown
	}

	allowance, err := d.vault.Allowance(ctx, asset, account)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get allowance: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetBalanceResponse{Balance: balance.String(), Allowance: allowance.String()}, nil
}
