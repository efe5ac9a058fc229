package domain

import (
	"context"
	"math/big"

	"github.com/questx-lab/quest-escrow/internal/domain/vault"
	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/internal/model"
	"github.com/questx-lab/quest-escrow/internal/repository"
	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
)

type RewardDomain interface {
	Send(context.Context, *model.SendRewardRequest) (*model.SendRewardResponse, error)
	SendReferrers(context.Context, *model.SendReferrerRewardsRequest) (*model.SendReferrerRewardsResponse, error)
	GetAmountClaimed(context.Context, *model.GetRewardAmountClaimedRequest) (*model.GetRewardAmountClaimedResponse, error)
	HasClaimed(context.Context, *model.HasClaimedRewardRequest) (*model.HasClaimedRewardResponse, error)
}

type rewardDomain struct {
	gate            *ledgerGate
	questRepo       repository.QuestRepository
	claimRecordRepo repository.ClaimRecordRepository
	obligationRepo  repository.AssetObligationRepository
	vault           vault.Vault
}

func NewRewardDomain(
	gate *ledgerGate,
	questRepo repository.QuestRepository,
	claimRecordRepo repository.ClaimRecordRepository,
	obligationRepo repository.AssetObligationRepository,
	vault vault.Vault,
) *rewardDomain {
	return &rewardDomain{
		gate:            gate,
		questRepo:       questRepo,
		claimRecordRepo: claimRecordRepo,
		obligationRepo:  obligationRepo,
		vault:           vault,
	}
}

// Send pays a winner and its referrers from the budget of an active quest.
// Every record is written before the first transfer.
func (d *rewardDomain) Send(
	ctx context.Context, req *model.SendRewardRequest,
) (*model.SendRewardResponse, error) {
	var total *big.Int
	err := d.gate.run(ctx, "send_reward", gateOptions{onlyAdmin: true}, func(
		ctx context.Context, state *entity.LedgerState, em *emitter,
	) error {
		quest, err := d.activeQuest(ctx, req.QuestID)
		if err != nil {
			return err
		}

		referrers, referrerTotal, err := parseReferrers(req.Referrers, req.ReferrerAmounts)
		if err != nil {
			return err
		}

		mainAmount, err := parseNonNegativeAmount(req.MainAmount, "main amount")
		if err != nil {
			return err
		}

		winner, err := parsePayoutRecipient(req.Winner, mainAmount, "winner")
		if err != nil {
			return err
		}

		total = new(big.Int).Add(mainAmount, referrerTotal)
		if err := d.checkBudget(quest, total); err != nil {
			return err
		}

		winnerRecord, err := d.claimRecordRepo.Get(ctx, quest.ID, winner)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get claim record: %v", err)
			return errorx.Unknown
		}

		if !req.SkipClaimedCheck && winnerRecord.Claimed {
			return errorx.New(errorx.AlreadyClaimed, "Winner already claimed the reward")
		}

		if quest.TotalWinners >= quest.MaxWinners {
			return errorx.New(errorx.LimitReached, "Quest reached the maximum of winners")
		}

		// A winner takes a slot only on its first payment. Re-sends with the
		// claimed check skipped reuse it.
		if !winnerRecord.Claimed {
			quest.TotalWinners++
		}

		if err := d.distribute(ctx, quest, total); err != nil {
			return err
		}

		winnerRecord.Amount = entity.NewBigInt(new(big.Int).Add(&winnerRecord.Amount.Int, mainAmount))
		winnerRecord.Claimed = true
		if err := d.claimRecordRepo.Upsert(ctx, winnerRecord); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update winner claim record: %v", err)
			return errorx.Unknown
		}

		if mainAmount.Sign() > 0 {
			err := d.gate.transfer(ctx, &entity.VaultTransfer{
				Method:       entity.TransferMethod,
				Asset:        quest.Asset,
				Counterparty: winner,
				Amount:       entity.NewBigInt(mainAmount),
			}, func() error {
				return d.vault.Transfer(ctx, quest.Asset, winner, mainAmount)
			})
			if err != nil {
				return err
			}
		}

		if err := d.payReferrers(ctx, quest, referrers); err != nil {
			return err
		}

		em.emit(&entity.LedgerEvent{
			Type:      entity.RewardDistributedEvent,
			QuestID:   quest.ID,
			Principal: winner,
			Asset:     quest.Asset,
			Amount:    entity.NewBigInt(mainAmount),
			Data: entity.Map{
				"total":              total.String(),
				"skip_claimed_check": req.SkipClaimedCheck,
			},
		})
		emitReferrerEvents(em, quest, referrers)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.SendRewardResponse{Total: total.String()}, nil
}

// SendReferrers pays referrers only. It never touches the winner count nor
// any claim record.
func (d *rewardDomain) SendReferrers(
	ctx context.Context, req *model.SendReferrerRewardsRequest,
) (*model.SendReferrerRewardsResponse, error) {
	var total *big.Int
	err := d.gate.run(ctx, "send_referrer_rewards", gateOptions{onlyAdmin: true}, func(
		ctx context.Context, state *entity.LedgerState, em *emitter,
	) error {
		quest, err := d.activeQuest(ctx, req.QuestID)
		if err != nil {
			return err
		}

		referrers, referrerTotal, err := parseReferrers(req.Referrers, req.ReferrerAmounts)
		if err != nil {
			return err
		}

		total = referrerTotal
		if err := d.checkBudget(quest, total); err != nil {
			return err
		}

		if err := d.distribute(ctx, quest, total); err != nil {
			return err
		}

		if err := d.payReferrers(ctx, quest, referrers); err != nil {
			return err
		}

		emitReferrerEvents(em, quest, referrers)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.SendReferrerRewardsResponse{Total: total.String()}, nil
}

func (d *rewardDomain) GetAmountClaimed(
	ctx context.Context, req *model.GetRewardAmountClaimedRequest,
) (*model.GetRewardAmountClaimedResponse, error) {
	record, err := d.getRecord(ctx, req.QuestID, req.Principal)
	if err != nil {
		return nil, err
	}

	return &model.GetRewardAmountClaimedResponse{Amount: record.Amount.String()}, nil
}

func (d *rewardDomain) HasClaimed(
	ctx context.Context, req *model.HasClaimedRewardRequest,
) (*model.HasClaimedRewardResponse, error) {
	record, err := d.getRecord(ctx, req.QuestID, req.Principal)
	if err != nil {
		return nil, err
	}

	return &model.HasClaimedRewardResponse{Claimed: record.Claimed}, nil
}

func (d *rewardDomain) getRecord(ctx context.Context, questID, principal string) (*entity.ClaimRecord, error) {
	addr, err := parseAddress(principal, "principal")
	if err != nil {
		return nil, err
	}

	record, err := d.claimRecordRepo.Get(ctx, questID, addr)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get claim record: %v", err)
		return nil, errorx.Unknown
	}

	return record, nil
}

func (d *rewardDomain) activeQuest(ctx context.Context, id string) (*entity.Quest, error) {
	quest, err := loadQuest(ctx, d.questRepo, id)
	if err != nil {
		return nil, err
	}

	if !quest.IsActive {
		return nil, errorx.New(errorx.InvalidState, "Quest is not active")
	}

	return quest, nil
}

func (d *rewardDomain) checkBudget(quest *entity.Quest, total *big.Int) error {
	if total.Sign() == 0 {
		return errorx.New(errorx.InvalidArgument, "Total reward must be positive")
	}

	if total.Cmp(quest.Remaining()) > 0 {
		return errorx.New(errorx.InsufficientFunds, "Quest budget is not enough")
	}

	return nil
}

// distribute books total against the quest budget and the asset obligation.
func (d *rewardDomain) distribute(ctx context.Context, quest *entity.Quest, total *big.Int) error {
	quest.TotalRewardDistributed = entity.NewBigInt(new(big.Int).Add(&quest.TotalRewardDistributed.Int, total))
	if err := d.questRepo.Update(ctx, quest); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update quest: %v", err)
		return errorx.Unknown
	}

	if err := d.obligationRepo.Add(ctx, quest.Asset, new(big.Int).Neg(total)); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decrease obligation: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *rewardDomain) payReferrers(ctx context.Context, quest *entity.Quest, referrers []payout) error {
	for _, p := range referrers {
		if p.amount.Sign() == 0 {
			continue
		}

		p := p
		err := d.gate.transfer(ctx, &entity.VaultTransfer{
			Method:       entity.TransferMethod,
			Asset:        quest.Asset,
			Counterparty: p.recipient,
			Amount:       entity.NewBigInt(p.amount),
		}, func() error {
			return d.vault.Transfer(ctx, quest.Asset, p.recipient, p.amount)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func emitReferrerEvents(em *emitter, quest *entity.Quest, referrers []payout) {
	for _, p := range referrers {
		if p.amount.Sign() == 0 {
			continue
		}

		em.emit(&entity.LedgerEvent{
			Type:      entity.ReferrerRewardEvent,
			QuestID:   quest.ID,
			Principal: p.recipient,
			Asset:     quest.Asset,
			Amount:    entity.NewBigInt(p.amount),
		})
	}
}
