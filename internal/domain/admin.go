package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/quest-escrow/internal/domain/vault"
	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/internal/model"
	"github.com/questx-lab/quest-escrow/internal/repository"
	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/ethutil"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"gorm.io/gorm"
)

type AdminDomain interface {
	Pause(context.Context, *model.PauseRequest) (*model.PauseResponse, error)
	Unpause(context.Context, *model.UnpauseRequest) (*model.UnpauseResponse, error)
	TransferAdmin(context.Context, *model.TransferAdminRequest) (*model.TransferAdminResponse, error)
	GetLedgerState(context.Context, *model.GetLedgerStateRequest) (*model.GetLedgerStateResponse, error)
}

type adminDomain struct {
	gate               *ledgerGate
	ledgerStateRepo    repository.LedgerStateRepository
	supportedAssetRepo repository.SupportedAssetRepository
	vault              vault.Vault
}

func NewAdminDomain(
	gate *ledgerGate,
	ledgerStateRepo repository.LedgerStateRepository,
	supportedAssetRepo repository.SupportedAssetRepository,
	vault vault.Vault,
) *adminDomain {
	return &adminDomain{
		gate:               gate,
		ledgerStateRepo:    ledgerStateRepo,
		supportedAssetRepo: supportedAssetRepo,
		vault:              vault,
	}
}

// InitLedger creates the ledger state with admin as administrator. An
// already initialized ledger is left untouched.
func InitLedger(ctx context.Context, ledgerStateRepo repository.LedgerStateRepository, admin string) error {
	_, err := ledgerStateRepo.Get(ctx)
	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	addr, err := ethutil.NormalizeAddress(admin)
	if err != nil {
		return err
	}

	return ledgerStateRepo.Upsert(ctx, &entity.LedgerState{Admin: addr})
}

func (d *adminDomain) Pause(ctx context.Context, req *model.PauseRequest) (*model.PauseResponse, error) {
	err := d.gate.run(ctx, "pause", gateOptions{onlyAdmin: true}, func(
		ctx context.Context, state *entity.LedgerState, em *emitter,
	) error {
		state.Paused = true
		if err := d.ledgerStateRepo.Upsert(ctx, state); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot pause ledger: %v", err)
			return errorx.Unknown
		}

		em.emit(&entity.LedgerEvent{Type: entity.LedgerPausedEvent, Principal: state.Admin})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.PauseResponse{}, nil
}

func (d *adminDomain) Unpause(ctx context.Context, req *model.UnpauseRequest) (*model.UnpauseResponse, error) {
	err := d.gate.run(ctx, "unpause", gateOptions{onlyAdmin: true, ignorePause: true}, func(
		ctx context.Context, state *entity.LedgerState, em *emitter,
	) error {
		if !state.Paused {
			return errorx.New(errorx.InvalidState, "Ledger is not paused")
		}

		state.Paused = false
		if err := d.ledgerStateRepo.Upsert(ctx, state); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot unpause ledger: %v", err)
			return errorx.Unknown
		}

		em.emit(&entity.LedgerEvent{Type: entity.LedgerUnpausedEvent, Principal: state.Admin})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.UnpauseResponse{}, nil
}

func (d *adminDomain) TransferAdmin(
	ctx context.Context, req *model.TransferAdminRequest,
) (*model.TransferAdminResponse, error) {
	err := d.gate.run(ctx, "transfer_admin", gateOptions{onlyAdmin: true, ignorePause: true}, func(
		ctx context.Context, state *entity.LedgerState, em *emitter,
	) error {
		newAdmin, err := parseAddress(req.NewAdmin, "new admin")
		if err != nil {
			return err
		}

		previous := state.Admin
		state.Admin = newAdmin
		if err := d.ledgerStateRepo.Upsert(ctx, state); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot transfer admin: %v", err)
			return errorx.Unknown
		}

		em.emit(&entity.LedgerEvent{
			Type:      entity.AdminTransferredEvent,
			Principal: newAdmin,
			Data:      entity.Map{"previous": previous},
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.TransferAdminResponse{}, nil
}

func (d *adminDomain) GetLedgerState(
	ctx context.Context, req *model.GetLedgerStateRequest,
) (*model.GetLedgerStateResponse, error) {
	state, err := d.ledgerStateRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidState, "Ledger is not initialized")
		}

		xcontext.Logger(ctx).Errorf("Cannot get ledger state: %v", err)
		return nil, errorx.Unknown
	}

	assets, err := d.supportedAssetRepo.GetSupported(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get supported assets: %v", err)
		return nil, errorx.Unknown
	}

	if assets == nil {
		assets = []string{}
	}

	return &model.GetLedgerStateResponse{
		Admin:           state.Admin,
		Paused:          state.Paused,
		EscrowAccount:   d.vault.Address(),
		SupportedAssets: assets,
	}, nil
}
