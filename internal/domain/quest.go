package domain

import (
	"context"
	"math/big"

	"github.com/questx-lab/quest-escrow/internal/common"
	"github.com/questx-lab/quest-escrow/internal/domain/vault"
	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/internal/model"
	"github.com/questx-lab/quest-escrow/internal/repository"
	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
)

type QuestDomain interface {
	Create(context.Context, *model.CreateQuestRequest) (*model.CreateQuestResponse, error)
	Cancel(context.Context, *model.CancelQuestRequest) (*model.CancelQuestResponse, error)
	UpdateStatus(context.Context, *model.UpdateQuestStatusRequest) (*model.UpdateQuestStatusResponse, error)
	ClaimRemainingReward(context.Context, *model.ClaimRemainingRewardRequest) (*model.ClaimRemainingRewardResponse, error)
	Get(context.Context, *model.GetQuestRequest) (*model.GetQuestResponse, error)
	GetAllIDs(context.Context, *model.GetAllQuestIDsRequest) (*model.GetAllQuestIDsResponse, error)
	GetEvents(context.Context, *model.GetQuestEventsRequest) (*model.GetQuestEventsResponse, error)
}

type questDomain struct {
	gate               *ledgerGate
	questRepo          repository.QuestRepository
	supportedAssetRepo repository.SupportedAssetRepository
	obligationRepo     repository.AssetObligationRepository
	ledgerEventRepo    repository.LedgerEventRepository
	vault              vault.Vault
}

func NewQuestDomain(
	gate *ledgerGate,
	questRepo repository.QuestRepository,
	supportedAssetRepo repository.SupportedAssetRepository,
	obligationRepo repository.AssetObligationRepository,
	ledgerEventRepo repository.LedgerEventRepository,
	vault vault.Vault,
) *questDomain {
	return &questDomain{
		gate:               gate,
		questRepo:          questRepo,
		supportedAssetRepo: supportedAssetRepo,
		obligationRepo:     obligationRepo,
		ledgerEventRepo:    ledgerEventRepo,
		vault:              vault,
	}
}

func (d *questDomain) Create(
	ctx context.Context, req *model.CreateQuestRequest,
) (*model.CreateQuestResponse, error) {
	creator, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	var quest *entity.Quest
	err = d.gate.run(ctx, "create_quest", gateOptions{}, func(
		ctx context.Context, state *entity.LedgerState, em *emitter,
	) error {
		if req.ID == "" {
			return errorx.New(errorx.InvalidArgument, "Not allow an empty quest id")
		}

		asset, err := parseAddress(req.Asset, "asset")
		if err != nil {
			return err
		}

		supported, err := d.supportedAssetRepo.IsSupported(ctx, asset)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check supported asset: %v", err)
			return errorx.Unknown
		}

		if !supported {
			return errorx.New(errorx.InvalidArgument, "Asset is not supported")
		}

		amount, ok := common.ParseAmount(req.Amount)
		if !ok || amount.Sign() <= 0 {
			return errorx.New(errorx.InvalidArgument, "Amount must be a positive integer")
		}

		if req.Deadline <= d.gate.now().Unix() {
			return errorx.New(errorx.InvalidArgument, "Deadline must be in the future")
		}

		if req.MaxWinners <= 0 {
			return errorx.New(errorx.InvalidArgument, "Max winners must be positive")
		}

		allowance, err := d.vault.Allowance(ctx, asset, creator)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get allowance: %v", err)
			return errorx.Unknown
		}

		if allowance.Cmp(amount) < 0 {
			return errorx.New(errorx.InsufficientFunds, "Allowance is not enough to fund the quest")
		}

		exists, err := d.questRepo.Exists(ctx, req.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check quest existence: %v", err)
			return errorx.Unknown
		}

		if exists {
			return errorx.New(errorx.InvalidState, "Quest id is already used")
		}

		err = d.gate.transfer(ctx, &entity.VaultTransfer{
			Method:       entity.TransferFromMethod,
			Asset:        asset,
			Counterparty: creator,
			Amount:       entity.NewBigInt(amount),
		}, func() error {
			return d.vault.TransferFrom(ctx, asset, creator, amount)
		})
		if err != nil {
			return err
		}

		seq, err := d.questRepo.NextSeq(ctx)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get next quest seq: %v", err)
			return errorx.Unknown
		}

		quest = &entity.Quest{
			Base:                   entity.Base{ID: req.ID},
			Seq:                    seq,
			Creator:                creator,
			Asset:                  asset,
			Amount:                 entity.NewBigInt(amount),
			Deadline:               req.Deadline,
			IsActive:               true,
			MaxWinners:             req.MaxWinners,
			TotalRewardDistributed: entity.ZeroBigInt(),
		}

		if err := d.questRepo.Create(ctx, quest); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create quest: %v", err)
			return errorx.Unknown
		}

		if err := d.obligationRepo.Add(ctx, asset, amount); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot increase obligation: %v", err)
			return errorx.Unknown
		}

		em.emit(&entity.LedgerEvent{
			Type:      entity.QuestCreatedEvent,
			QuestID:   quest.ID,
			Principal: creator,
			Asset:     asset,
			Amount:    entity.NewBigInt(amount),
			Data: entity.Map{
				"deadline":    req.Deadline,
				"max_winners": req.MaxWinners,
			},
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.CreateQuestResponse{Quest: convertQuest(quest)}, nil
}

// Cancel deactivates the quest and refunds its original amount to the
// creator, whatever was already distributed.
func (d *questDomain) Cancel(
	ctx context.Context, req *model.CancelQuestRequest,
) (*model.CancelQuestResponse, error) {
	var refunded *big.Int
	err := d.gate.run(ctx, "cancel_quest", gateOptions{onlyAdmin: true}, func(
		ctx context.Context, state *entity.LedgerState, em *emitter,
	) error {
		quest, err := loadQuest(ctx, d.questRepo, req.ID)
		if err != nil {
			return err
		}

		if !quest.IsActive {
			return errorx.New(errorx.InvalidState, "Quest is not active")
		}

		balance, err := d.vault.BalanceOf(ctx, quest.Asset, d.vault.Address())
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get escrow balance: %v", err)
			return errorx.Unknown
		}

		refunded = quest.Amount.Big()
		if balance.Cmp(refunded) < 0 {
			return errorx.New(errorx.InsufficientFunds, "Escrow balance is not enough to refund the quest")
		}

		quest.IsActive = false
		if err := d.questRepo.Update(ctx, quest); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update quest: %v", err)
			return errorx.Unknown
		}

		if err := d.obligationRepo.Add(ctx, quest.Asset, new(big.Int).Neg(quest.Remaining())); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot decrease obligation: %v", err)
			return errorx.Unknown
		}

		err = d.gate.transfer(ctx, &entity.VaultTransfer{
			Method:       entity.TransferMethod,
			Asset:        quest.Asset,
			Counterparty: quest.Creator,
			Amount:       entity.NewBigInt(refunded),
		}, func() error {
			return d.vault.Transfer(ctx, quest.Asset, quest.Creator, refunded)
		})
		if err != nil {
			return err
		}

		em.emit(&entity.LedgerEvent{
			Type:      entity.QuestCancelledEvent,
			QuestID:   quest.ID,
			Principal: quest.Creator,
			Asset:     quest.Asset,
			Amount:    entity.NewBigInt(refunded),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.CancelQuestResponse{Refunded: refunded.String()}, nil
}

func (d *questDomain) UpdateStatus(
	ctx context.Context, req *model.UpdateQuestStatusRequest,
) (*model.UpdateQuestStatusResponse, error) {
	err := d.gate.run(ctx, "update_quest_status", gateOptions{onlyAdmin: true}, func(
		ctx context.Context, state *entity.LedgerState, em *emitter,
	) error {
		quest, err := loadQuest(ctx, d.questRepo, req.ID)
		if err != nil {
			return err
		}

		if quest.IsActive != req.IsActive {
			delta := quest.Remaining()
			if !req.IsActive {
				delta.Neg(delta)
			}

			if err := d.obligationRepo.Add(ctx, quest.Asset, delta); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot adjust obligation: %v", err)
				return errorx.Unknown
			}
		}

		quest.IsActive = req.IsActive
		if err := d.questRepo.Update(ctx, quest); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update quest: %v", err)
			return errorx.Unknown
		}

		em.emit(&entity.LedgerEvent{
			Type:    entity.QuestStatusUpdatedEvent,
			QuestID: quest.ID,
			Asset:   quest.Asset,
			Data:    entity.Map{"is_active": req.IsActive},
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.UpdateQuestStatusResponse{}, nil
}

// ClaimRemainingReward pays the undistributed budget of an inactive quest
// back to its creator once the cooldown after the deadline elapsed.
func (d *questDomain) ClaimRemainingReward(
	ctx context.Context, req *model.ClaimRemainingRewardRequest,
) (*model.ClaimRemainingRewardResponse, error) {
	var remaining *big.Int
	err := d.gate.run(ctx, "claim_remaining_reward", gateOptions{}, func(
		ctx context.Context, state *entity.LedgerState, em *emitter,
	) error {
		quest, err := loadQuest(ctx, d.questRepo, req.ID)
		if err != nil {
			return err
		}

		if err := common.VerifyCaller(state, xcontext.RequestUserID(ctx), quest.Creator); err != nil {
			return errorx.New(errorx.Unauthorized, "Only creator or administrator can claim the remaining reward")
		}

		if quest.IsActive {
			return errorx.New(errorx.InvalidState, "Quest is still active")
		}

		unlockAt := quest.Deadline + int64(common.ClaimCooldown.Seconds())
		if d.gate.now().Unix() < unlockAt {
			return errorx.New(errorx.TooEarly, "Remaining reward is locked until %d", unlockAt)
		}

		remaining = quest.Remaining()
		if remaining.Sign() <= 0 {
			return errorx.New(errorx.NothingToClaim, "Nothing to claim")
		}

		quest.Amount = entity.NewBigInt(quest.TotalRewardDistributed.Big())
		if err := d.questRepo.Update(ctx, quest); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update quest: %v", err)
			return errorx.Unknown
		}

		err = d.gate.transfer(ctx, &entity.VaultTransfer{
			Method:       entity.TransferMethod,
			Asset:        quest.Asset,
			Counterparty: quest.Creator,
			Amount:       entity.NewBigInt(remaining),
		}, func() error {
			return d.vault.Transfer(ctx, quest.Asset, quest.Creator, remaining)
		})
		if err != nil {
			return err
		}

		em.emit(&entity.LedgerEvent{
			Type:      entity.ResidueClaimedEvent,
			QuestID:   quest.ID,
			Principal: quest.Creator,
			Asset:     quest.Asset,
			Amount:    entity.NewBigInt(remaining),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.ClaimRemainingRewardResponse{Amount: remaining.String()}, nil
}

func (d *questDomain) Get(ctx context.Context, req *model.GetQuestRequest) (*model.GetQuestResponse, error) {
	quest, err := loadQuest(ctx, d.questRepo, req.ID)
	if err != nil {
		return nil, err
	}

	return &model.GetQuestResponse{Quest: convertQuest(quest)}, nil
}

func (d *questDomain) GetAllIDs(
	ctx context.Context, req *model.GetAllQuestIDsRequest,
) (*model.GetAllQuestIDsResponse, error) {
	ids, err := d.questRepo.GetAllIDs(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quest ids: %v", err)
		return nil, errorx.Unknown
	}

	if ids == nil {
		ids = []string{}
	}

	return &model.GetAllQuestIDsResponse{IDs: ids}, nil
}

func (d *questDomain) GetEvents(
	ctx context.Context, req *model.GetQuestEventsRequest,
) (*model.GetQuestEventsResponse, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if req.Limit == 0 {
		req.Limit = apiCfg.DefaultLimit
	}

	if req.Limit < 0 || req.Offset < 0 {
		return nil, errorx.New(errorx.InvalidArgument, "Limit and offset must not be negative")
	}

	if req.Limit > apiCfg.MaxLimit {
		return nil, errorx.New(errorx.InvalidArgument, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	if _, err := loadQuest(ctx, d.questRepo, req.QuestID); err != nil {
		return nil, err
	}

	events, err := d.ledgerEventRepo.GetByQuestID(ctx, req.QuestID, req.Offset, req.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quest events: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.LedgerEvent{}
	for i := range events {
		result = append(result, convertLedgerEvent(&events[i]))
	}

	return &model.GetQuestEventsResponse{Events: result}, nil
}
